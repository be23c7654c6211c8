package helpers

import (
	"encoding/json"
	"errors"
	"net/http"

	"community/internal/apperrors"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		return
	}
}

// Error пишет {code, message}. Внутренние причины клиенту не отдаются.
func Error(w http.ResponseWriter, err error) {
	e := apperrors.From(err)
	JSON(w, e.HTTPStatus, ErrorResponse{Code: e.Code, Message: e.Message})
}

// MaxBodyBytes: предел тела запроса для Decode.
const MaxBodyBytes = 1 << 20

// Decode читает JSON-тело не длиннее MaxBodyBytes; неизвестные поля допускаются.
func Decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return apperrors.Invalid("пустое тело запроса")
	}
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return (&apperrors.Error{
				Code:       "PAYLOAD_TOO_LARGE",
				Message:    "слишком большое тело запроса",
				HTTPStatus: http.StatusRequestEntityTooLarge,
			}).Wrap(err)
		}
		return apperrors.Invalid("невалидный JSON").Wrap(err)
	}
	return nil
}

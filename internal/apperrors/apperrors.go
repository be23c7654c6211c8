// Package apperrors: клиентские ошибки сервиса: код, сообщение и HTTP-статус.
package apperrors

import (
	"errors"
	"net/http"
)

const (
	CodeConflict        = "CONFLICT"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeNotFound        = "NOT_FOUND"
	CodeInvalid         = "INVALID_INPUT"
	CodeInternal        = "INTERNAL"
)

type Error struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap прикрепляет причину, не меняя код.
func (e *Error) Wrap(err error) *Error {
	cp := *e
	cp.Err = err
	return &cp
}

func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg, HTTPStatus: http.StatusConflict}
}

// Unauthorized: неверные учётные данные или невалидный токен.
func Unauthorized(msg string) *Error {
	return &Error{Code: CodeUnauthorized, Message: msg, HTTPStatus: http.StatusUnauthorized}
}

// Unauthenticated: в контексте запроса нет пользователя.
func Unauthenticated(msg string) *Error {
	return &Error{Code: CodeUnauthenticated, Message: msg, HTTPStatus: http.StatusUnauthorized}
}

func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg, HTTPStatus: http.StatusNotFound}
}

func Invalid(msg string) *Error {
	return &Error{Code: CodeInvalid, Message: msg, HTTPStatus: http.StatusBadRequest}
}

func Internal(err error) *Error {
	return &Error{Code: CodeInternal, Message: "внутренняя ошибка сервера", HTTPStatus: http.StatusInternalServerError, Err: err}
}

// From приводит любую ошибку к *Error; неизвестные считаются внутренними.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}

// Is сравнивает по коду.
func Is(err error, code string) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

package handlers

import (
	"net/http"

	"community/internal/logger"
	"community/internal/models"
	"community/internal/reqctx"
	"community/internal/services"
	helpers "community/internal/utils/helpers"

	"go.uber.org/zap"
)

type AuthHandler struct {
	accounts *services.AccountService
	creds    *services.CredentialService
}

func NewAuthHandler(accounts *services.AccountService, creds *services.CredentialService) *AuthHandler {
	return &AuthHandler{accounts: accounts, creds: creds}
}

// Signup godoc
// @Summary Регистрация аккаунта
// @Tags auth
// @Accept json
// @Produce json
// @Param input body models.SignUpRequest true "Данные регистрации"
// @Success 200 {object} models.SignUpResponse
// @Failure 400 {object} helpers.ErrorResponse
// @Failure 409 {object} helpers.ErrorResponse "userid уже занят"
// @Router /signup [post]
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignUpRequest
	if err := helpers.Decode(w, r, &req); err != nil {
		logger.WithCtx(r.Context()).Warn("Ошибка декодирования JSON в Signup", zap.Error(err))
		helpers.Error(w, err)
		return
	}

	userID, err := h.accounts.Signup(r.Context(), req.UserID, req.Password, req.Username)
	if err != nil {
		helpers.Error(w, err)
		return
	}

	helpers.JSON(w, http.StatusOK, models.SignUpResponse{UserID: userID})
}

// Signin godoc
// @Summary Вход по userid и паролю
// @Description Возвращает bearer-токен в теле и в заголовке Authorization.
// @Tags auth
// @Accept json
// @Produce json
// @Param input body models.LoginRequest true "Данные для входа"
// @Success 200 {object} models.LoginResponse
// @Failure 401 {object} helpers.ErrorResponse "Неверный userid или пароль"
// @Router /signin [post]
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := helpers.Decode(w, r, &req); err != nil {
		logger.WithCtx(r.Context()).Warn("Ошибка декодирования JSON в Signin", zap.Error(err))
		helpers.Error(w, err)
		return
	}

	session, err := h.creds.Login(r.Context(), req.UserID, req.Password)
	if err != nil {
		helpers.Error(w, err)
		return
	}

	ctx := reqctx.WithAuth(r.Context(), session.Auth)
	logger.WithCtx(ctx).Info("Токен выдан", zap.Time("expires_at", session.ExpiresAt))

	w.Header().Set("Authorization", "Bearer "+session.Token)
	helpers.JSON(w, http.StatusOK, models.LoginResponse{Token: session.Token})
}

// Profile godoc
// @Summary Профиль текущего пользователя
// @Tags account
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} models.ProfileResponse
// @Failure 401 {object} helpers.ErrorResponse
// @Failure 404 {object} helpers.ErrorResponse
// @Router /profile [get]
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.accounts.GetProfile(r.Context())
	if err != nil {
		helpers.Error(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, profile)
}

// Points godoc
// @Summary Баланс баллов текущего пользователя
// @Tags account
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} models.PointsResponse
// @Failure 401 {object} helpers.ErrorResponse
// @Failure 404 {object} helpers.ErrorResponse
// @Router /points [get]
func (h *AuthHandler) Points(w http.ResponseWriter, r *http.Request) {
	points, err := h.accounts.GetPoints(r.Context())
	if err != nil {
		helpers.Error(w, err)
		return
	}
	helpers.JSON(w, http.StatusOK, points)
}

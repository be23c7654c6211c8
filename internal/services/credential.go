package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"community/internal/apperrors"
	"community/internal/logger"
	"community/internal/models"
	"community/internal/reqctx"
	"community/internal/repository"

	"go.uber.org/zap"
)

type PasswordHasher interface {
	Hash(raw string) (string, error)
	Verify(raw, digest string) bool
}

type TokenProvider interface {
	Issue(userID string) (token string, expiresAt time.Time, err error)
	Resolve(token string) (userID string, err error)
}

// Session: результат успешного входа. Токен и есть сессия: на сервере ничего не хранится.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Auth      reqctx.AuthContext
}

type CredentialService struct {
	store  repository.Store
	hasher PasswordHasher
	tokens TokenProvider
}

func NewCredentialService(store repository.Store, hasher PasswordHasher, tokens TokenProvider) *CredentialService {
	return &CredentialService{store: store, hasher: hasher, tokens: tokens}
}

func (s *CredentialService) Register(ctx context.Context, userID, rawPassword, displayName string) (string, error) {
	log := logger.WithCtx(ctx)
	userID = strings.TrimSpace(userID)
	log.Info("Регистрация аккаунта (service)", zap.String("userid", userID))

	if userID == "" || rawPassword == "" {
		log.Warn("Валидация не пройдена: пустой userid или пароль")
		return "", apperrors.Invalid("userid и pw обязательны")
	}

	hashed, err := s.hasher.Hash(rawPassword)
	if err != nil {
		log.Error("Ошибка хеширования пароля", zap.Error(err))
		return "", apperrors.Internal(err)
	}

	account := &models.Account{
		UserID:       userID,
		PasswordHash: hashed,
		Username:     strings.TrimSpace(displayName),
	}
	if err := s.store.Repos().Accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			log.Warn("userid уже занят (service)", zap.String("userid", userID))
			return "", apperrors.Conflict("userid уже занят").Wrap(err)
		}
		log.Error("Ошибка создания аккаунта (service)", zap.Error(err))
		return "", apperrors.Internal(err)
	}

	log.Info("Аккаунт зарегистрирован (service)", zap.String("userid", userID))
	return account.UserID, nil
}

// Login проверяет пароль через hasher и выпускает bearer-токен.
// Неизвестный userid и неверный пароль неразличимы для клиента.
func (s *CredentialService) Login(ctx context.Context, userID, rawPassword string) (*Session, error) {
	log := logger.WithCtx(ctx)
	log.Info("Попытка входа (service)", zap.String("userid", userID))

	account, err := s.store.Repos().Accounts.GetByUserID(ctx, strings.TrimSpace(userID))
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Error("Ошибка получения аккаунта (service)", zap.Error(err))
			return nil, apperrors.Internal(err)
		}
		log.Warn("Аккаунт не найден (service)", zap.String("userid", userID))
		return nil, apperrors.Unauthorized("неверный userid или пароль")
	}

	if !s.hasher.Verify(rawPassword, account.PasswordHash) {
		log.Warn("Неверный пароль (service)", zap.String("userid", userID))
		return nil, apperrors.Unauthorized("неверный userid или пароль")
	}

	token, exp, err := s.tokens.Issue(account.UserID)
	if err != nil {
		log.Error("Ошибка генерации токена", zap.Error(err))
		return nil, apperrors.Internal(err)
	}

	log.Info("Вход выполнен (service)", zap.String("userid", account.UserID), zap.Time("expires_at", exp))
	return &Session{
		Token:     token,
		ExpiresAt: exp,
		Auth:      reqctx.AuthContext{UserID: account.UserID},
	}, nil
}

// Authenticate разбирает bearer-токен и кладёт AuthContext в контекст запроса.
func (s *CredentialService) Authenticate(ctx context.Context, token string) (context.Context, error) {
	userID, err := s.tokens.Resolve(token)
	if err != nil {
		logger.WithCtx(ctx).Warn("Токен отклонён (service)", zap.Error(err))
		return ctx, apperrors.Unauthorized("неверный или просроченный токен").Wrap(err)
	}
	return reqctx.WithAuth(ctx, reqctx.AuthContext{UserID: userID}), nil
}

// CurrentUserID читает личность, уже привязанную к запросу; токен повторно не проверяется.
func (s *CredentialService) CurrentUserID(ctx context.Context) (string, bool) {
	userID, ok := reqctx.GetUserID(ctx)
	if !ok {
		logger.WithCtx(ctx).Debug("В контексте нет данных аутентификации")
	}
	return userID, ok
}

package services

import (
	"context"
	"errors"

	"community/internal/apperrors"
	"community/internal/logger"
	"community/internal/models"
	"community/internal/repository"

	"go.uber.org/zap"
)

type AccountService struct {
	creds *CredentialService
	store repository.Store
}

func NewAccountService(creds *CredentialService, store repository.Store) *AccountService {
	return &AccountService{creds: creds, store: store}
}

func (s *AccountService) Signup(ctx context.Context, userID, rawPassword, displayName string) (string, error) {
	return s.creds.Register(ctx, userID, rawPassword, displayName)
}

func (s *AccountService) GetProfile(ctx context.Context) (*models.ProfileResponse, error) {
	account, err := s.currentAccount(ctx)
	if err != nil {
		return nil, err
	}
	return &models.ProfileResponse{UserID: account.UserID, Username: account.Username}, nil
}

func (s *AccountService) GetPoints(ctx context.Context) (*models.PointsResponse, error) {
	account, err := s.currentAccount(ctx)
	if err != nil {
		return nil, err
	}
	return &models.PointsResponse{Points: account.Points}, nil
}

func (s *AccountService) currentAccount(ctx context.Context) (*models.Account, error) {
	userID, ok := s.creds.CurrentUserID(ctx)
	if !ok {
		return nil, apperrors.Unauthenticated("требуется аутентификация")
	}

	account, err := s.store.Repos().Accounts.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logger.WithCtx(ctx).Warn("Аккаунт текущего пользователя не найден (service)", zap.String("userid", userID))
			return nil, apperrors.NotFound("Member not found").Wrap(err)
		}
		logger.WithCtx(ctx).Error("Ошибка получения аккаунта (service)", zap.Error(err))
		return nil, apperrors.Internal(err)
	}
	return account, nil
}

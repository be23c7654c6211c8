package repository

import (
	"context"
	"fmt"

	"community/internal/logger"
	"community/internal/models"

	"go.uber.org/zap"
)

type AccountRepo interface {
	Create(ctx context.Context, a *models.Account) error
	GetByUserID(ctx context.Context, userID string) (*models.Account, error)
	AddPoints(ctx context.Context, userID string, delta int) error
}

type accountRepo struct{ db DBTX }

func NewAccountRepo(db DBTX) AccountRepo { return &accountRepo{db: db} }

func (r *accountRepo) Create(ctx context.Context, a *models.Account) error {
	logger.WithCtx(ctx).Info("Создание аккаунта (repo)", zap.String("userid", a.UserID))
	const q = `
		INSERT INTO accounts (userid, pw, username, points)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`
	err := r.db.QueryRow(ctx, q, a.UserID, a.PasswordHash, a.Username, a.Points).Scan(&a.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("account %s: %w", a.UserID, ErrDuplicate)
	}
	if err != nil {
		logger.WithCtx(ctx).Error("Ошибка создания аккаунта (repo)", zap.Error(err))
	}
	return err
}

func (r *accountRepo) GetByUserID(ctx context.Context, userID string) (*models.Account, error) {
	logger.WithCtx(ctx).Debug("Получение аккаунта (repo)", zap.String("userid", userID))
	const q = `SELECT userid, pw, username, points, created_at FROM accounts WHERE userid = $1`

	var a models.Account
	err := r.db.QueryRow(ctx, q, userID).Scan(&a.UserID, &a.PasswordHash, &a.Username, &a.Points, &a.CreatedAt)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return &a, nil
}

// AddPoints меняет баланс одним UPDATE: строка блокируется до конца транзакции,
// поэтому параллельные начисления одному аккаунту не теряются.
func (r *accountRepo) AddPoints(ctx context.Context, userID string, delta int) error {
	logger.WithCtx(ctx).Debug("Изменение баллов (repo)", zap.String("userid", userID), zap.Int("delta", delta))
	tag, err := r.db.Exec(ctx, `UPDATE accounts SET points = points + $1 WHERE userid = $2`, delta, userID)
	if err != nil {
		logger.WithCtx(ctx).Error("Ошибка изменения баллов (repo)", zap.String("userid", userID), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %s: %w", userID, ErrNotFound)
	}
	return nil
}

package repository

import (
	"context"
	"fmt"

	"community/internal/models"
)

type ArticleRepo interface {
	Create(ctx context.Context, a *models.Article) error
	GetByID(ctx context.Context, id string) (*models.Article, error)
	// GetForUpdate читает статью и блокирует её строку до конца транзакции.
	GetForUpdate(ctx context.Context, id string) (*models.Article, error)
	Update(ctx context.Context, a *models.Article) error
	Delete(ctx context.Context, id string) (int64, error)
}

type articleRepo struct{ db DBTX }

func NewArticleRepo(db DBTX) ArticleRepo { return &articleRepo{db: db} }

func (r *articleRepo) Create(ctx context.Context, a *models.Article) error {
	const q = `
		INSERT INTO articles (article_id, account_userid, title, contents)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, q, a.ID, a.OwnerID, a.Title, a.Contents).Scan(&a.CreatedAt, &a.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("article %s: %w", a.ID, ErrDuplicate)
	}
	if isForeignKeyViolation(err) {
		return fmt.Errorf("article %s: %w", a.ID, ErrNotFound)
	}
	return err
}

const selectArticle = `
	SELECT article_id, account_userid, title, contents, created_at, updated_at
	FROM articles WHERE article_id = $1`

func (r *articleRepo) GetByID(ctx context.Context, id string) (*models.Article, error) {
	return r.get(ctx, selectArticle, id)
}

func (r *articleRepo) GetForUpdate(ctx context.Context, id string) (*models.Article, error) {
	return r.get(ctx, selectArticle+" FOR UPDATE", id)
}

func (r *articleRepo) get(ctx context.Context, q, id string) (*models.Article, error) {
	var a models.Article
	if err := r.db.QueryRow(ctx, q, id).Scan(
		&a.ID, &a.OwnerID, &a.Title, &a.Contents, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, notFoundOr(err)
	}
	return &a, nil
}

func (r *articleRepo) Update(ctx context.Context, a *models.Article) error {
	const q = `
		UPDATE articles
		SET title = $1,
		    contents = $2,
		    updated_at = NOW()
		WHERE article_id = $3
		RETURNING updated_at
	`
	return notFoundOr(r.db.QueryRow(ctx, q, a.Title, a.Contents, a.ID).Scan(&a.UpdatedAt))
}

func (r *articleRepo) Delete(ctx context.Context, id string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM articles WHERE article_id = $1`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

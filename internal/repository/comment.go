package repository

import (
	"context"
	"fmt"

	"community/internal/models"
)

type CommentRepo interface {
	Create(ctx context.Context, c *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	ListByArticle(ctx context.Context, articleID string) ([]*models.Comment, error)
	Delete(ctx context.Context, id string) error
	DeleteByArticle(ctx context.Context, articleID string) (int64, error)
}

type commentRepo struct{ db DBTX }

func NewCommentRepo(db DBTX) CommentRepo { return &commentRepo{db: db} }

func (r *commentRepo) Create(ctx context.Context, c *models.Comment) error {
	const q = `
		INSERT INTO comments (comment_id, article_id, account_userid, contents)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, q, c.ID, c.ArticleID, c.OwnerID, c.Contents).Scan(&c.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("comment %s: %w", c.ID, ErrDuplicate)
	}
	if isForeignKeyViolation(err) {
		return fmt.Errorf("comment %s: %w", c.ID, ErrNotFound)
	}
	return err
}

func (r *commentRepo) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	const q = `
		SELECT comment_id, article_id, account_userid, contents, created_at
		FROM comments WHERE comment_id = $1
	`
	var c models.Comment
	if err := r.db.QueryRow(ctx, q, id).Scan(&c.ID, &c.ArticleID, &c.OwnerID, &c.Contents, &c.CreatedAt); err != nil {
		return nil, notFoundOr(err)
	}
	return &c, nil
}

func (r *commentRepo) ListByArticle(ctx context.Context, articleID string) ([]*models.Comment, error) {
	const q = `
		SELECT comment_id, article_id, account_userid, contents, created_at
		FROM comments WHERE article_id = $1
	`
	rows, err := r.db.Query(ctx, q, articleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []*models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.ArticleID, &c.OwnerID, &c.Contents, &c.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

func (r *commentRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM comments WHERE comment_id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("comment %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *commentRepo) DeleteByArticle(ctx context.Context, articleID string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM comments WHERE article_id = $1`, articleID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

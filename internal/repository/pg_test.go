package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"community/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sqlInsertAccount  = `INSERT INTO accounts (userid, pw, username, points) VALUES ($1, $2, $3, $4) RETURNING created_at`
	sqlSelectAccount  = `SELECT userid, pw, username, points, created_at FROM accounts WHERE userid = $1`
	sqlAddPoints      = `UPDATE accounts SET points = points + $1 WHERE userid = $2`
	sqlInsertArticle  = `INSERT INTO articles (article_id, account_userid, title, contents) VALUES ($1, $2, $3, $4) RETURNING created_at, updated_at`
	sqlSelectArticle  = `SELECT article_id, account_userid, title, contents, created_at, updated_at FROM articles WHERE article_id = $1`
	sqlLockArticle    = sqlSelectArticle + ` FOR UPDATE`
	sqlUpdateArticle  = `UPDATE articles SET title = $1, contents = $2, updated_at = NOW() WHERE article_id = $3 RETURNING updated_at`
	sqlDeleteArticle  = `DELETE FROM articles WHERE article_id = $1`
	sqlInsertComment  = `INSERT INTO comments (comment_id, article_id, account_userid, contents) VALUES ($1, $2, $3, $4) RETURNING created_at`
	sqlSelectComment  = `SELECT comment_id, article_id, account_userid, contents, created_at FROM comments WHERE comment_id = $1`
	sqlListComments   = `SELECT comment_id, article_id, account_userid, contents, created_at FROM comments WHERE article_id = $1`
	sqlDeleteComment  = `DELETE FROM comments WHERE comment_id = $1`
	sqlDeleteComments = `DELETE FROM comments WHERE article_id = $1`
)

var (
	articleCols = []string{"article_id", "account_userid", "title", "contents", "created_at", "updated_at"}
	commentCols = []string{"comment_id", "article_id", "account_userid", "contents", "created_at"}
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

// pgx.BeginFunc всегда делает отложенный Rollback; после Commit он возвращает ErrTxClosed.
func expectCommit(mock pgxmock.PgxPoolIface) {
	mock.ExpectCommit()
	mock.ExpectRollback().WillReturnError(pgx.ErrTxClosed)
}

func expectRollback(mock pgxmock.PgxPoolIface) {
	mock.ExpectRollback()
	mock.ExpectRollback().WillReturnError(pgx.ErrTxClosed)
}

func TestAccountRepo_Create(t *testing.T) {
	mock := newMockPool(t)
	repos := NewPostgresStore(mock).Repos()
	now := time.Now()

	mock.ExpectQuery(sqlInsertAccount).
		WithArgs("userid", "digest", "username", 0).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))

	a := &models.Account{UserID: "userid", PasswordHash: "digest", Username: "username"}
	require.NoError(t, repos.Accounts.Create(context.Background(), a))
	assert.Equal(t, now, a.CreatedAt)
}

func TestAccountRepo_Create_Duplicate(t *testing.T) {
	mock := newMockPool(t)
	repos := NewPostgresStore(mock).Repos()

	mock.ExpectQuery(sqlInsertAccount).
		WithArgs("userid", "digest", "", 0).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repos.Accounts.Create(context.Background(), &models.Account{UserID: "userid", PasswordHash: "digest"})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestAccountRepo_GetByUserID(t *testing.T) {
	mock := newMockPool(t)
	repos := NewPostgresStore(mock).Repos()
	now := time.Now()

	mock.ExpectQuery(sqlSelectAccount).
		WithArgs("userid").
		WillReturnRows(pgxmock.NewRows([]string{"userid", "pw", "username", "points", "created_at"}).
			AddRow("userid", "digest", "username", 7, now))
	mock.ExpectQuery(sqlSelectAccount).
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows([]string{"userid", "pw", "username", "points", "created_at"}))

	a, err := repos.Accounts.GetByUserID(context.Background(), "userid")
	require.NoError(t, err)
	assert.Equal(t, &models.Account{UserID: "userid", PasswordHash: "digest", Username: "username", Points: 7, CreatedAt: now}, a)

	_, err = repos.Accounts.GetByUserID(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAccountRepo_AddPoints(t *testing.T) {
	mock := newMockPool(t)
	repos := NewPostgresStore(mock).Repos()

	mock.ExpectExec(sqlAddPoints).WithArgs(3, "userid").WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(sqlAddPoints).WithArgs(-2, "ghost").WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	require.NoError(t, repos.Accounts.AddPoints(context.Background(), "userid", 3))
	assert.ErrorIs(t, repos.Accounts.AddPoints(context.Background(), "ghost", -2), ErrNotFound)
}

func TestArticleRepo_CreateAndGet(t *testing.T) {
	mock := newMockPool(t)
	repos := NewPostgresStore(mock).Repos()
	now := time.Now()

	mock.ExpectQuery(sqlInsertArticle).
		WithArgs("a1", "userid", "title", "contents").
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectQuery(sqlSelectArticle).
		WithArgs("a1").
		WillReturnRows(pgxmock.NewRows(articleCols).AddRow("a1", "userid", "title", "contents", now, now))
	mock.ExpectQuery(sqlLockArticle).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(articleCols))

	in := &models.Article{ID: "a1", OwnerID: "userid", Title: "title", Contents: "contents"}
	require.NoError(t, repos.Articles.Create(context.Background(), in))
	assert.Equal(t, now, in.CreatedAt)

	got, err := repos.Articles.GetByID(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, in, got)

	_, err = repos.Articles.GetForUpdate(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestArticleRepo_Create_MissingOwner(t *testing.T) {
	mock := newMockPool(t)
	repos := NewPostgresStore(mock).Repos()

	mock.ExpectQuery(sqlInsertArticle).
		WithArgs("a1", "ghost", "t", "c").
		WillReturnError(&pgconn.PgError{Code: "23503"})

	err := repos.Articles.Create(context.Background(), &models.Article{ID: "a1", OwnerID: "ghost", Title: "t", Contents: "c"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestArticleRepo_UpdateAndDelete(t *testing.T) {
	mock := newMockPool(t)
	repos := NewPostgresStore(mock).Repos()
	now := time.Now()

	mock.ExpectQuery(sqlUpdateArticle).
		WithArgs("new title", "new contents", "a1").
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(now))
	mock.ExpectQuery(sqlUpdateArticle).
		WithArgs("t", "c", "missing").
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}))
	mock.ExpectExec(sqlDeleteArticle).WithArgs("a1").WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(sqlDeleteArticle).WithArgs("a1").WillReturnResult(pgxmock.NewResult("DELETE", 0))

	a := &models.Article{ID: "a1", Title: "new title", Contents: "new contents"}
	require.NoError(t, repos.Articles.Update(context.Background(), a))
	assert.Equal(t, now, a.UpdatedAt)

	err := repos.Articles.Update(context.Background(), &models.Article{ID: "missing", Title: "t", Contents: "c"})
	assert.ErrorIs(t, err, ErrNotFound)

	n, err := repos.Articles.Delete(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repos.Articles.Delete(context.Background(), "a1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCommentRepo(t *testing.T) {
	mock := newMockPool(t)
	repos := NewPostgresStore(mock).Repos()
	now := time.Now()

	mock.ExpectQuery(sqlInsertComment).
		WithArgs("c1", "a1", "userid", "text").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))
	mock.ExpectQuery(sqlInsertComment).
		WithArgs("c2", "missing", "userid", "text").
		WillReturnError(&pgconn.PgError{Code: "23503"})
	mock.ExpectQuery(sqlSelectComment).
		WithArgs("c1").
		WillReturnRows(pgxmock.NewRows(commentCols).AddRow("c1", "a1", "userid", "text", now))
	mock.ExpectQuery(sqlListComments).
		WithArgs("a1").
		WillReturnRows(pgxmock.NewRows(commentCols).
			AddRow("c1", "a1", "userid", "text", now).
			AddRow("c3", "a1", "other", "more", now))
	mock.ExpectQuery(sqlListComments).
		WithArgs("empty").
		WillReturnRows(pgxmock.NewRows(commentCols))
	mock.ExpectExec(sqlDeleteComment).WithArgs("c1").WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(sqlDeleteComment).WithArgs("c1").WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(sqlDeleteComments).WithArgs("a1").WillReturnResult(pgxmock.NewResult("DELETE", 2))

	ctx := context.Background()
	require.NoError(t, repos.Comments.Create(ctx, &models.Comment{ID: "c1", ArticleID: "a1", OwnerID: "userid", Contents: "text"}))
	assert.ErrorIs(t, repos.Comments.Create(ctx, &models.Comment{ID: "c2", ArticleID: "missing", OwnerID: "userid", Contents: "text"}), ErrNotFound)

	c, err := repos.Comments.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "a1", c.ArticleID)
	assert.Equal(t, "userid", c.OwnerID)

	list, err := repos.Comments.ListByArticle(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c3", list[1].ID)

	list, err = repos.Comments.ListByArticle(ctx, "empty")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	require.NoError(t, repos.Comments.Delete(ctx, "c1"))
	assert.ErrorIs(t, repos.Comments.Delete(ctx, "c1"), ErrNotFound)

	n, err := repos.Comments.DeleteByArticle(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestPgStore_InTx_Commit(t *testing.T) {
	mock := newMockPool(t)
	store := NewPostgresStore(mock)

	mock.ExpectBegin()
	mock.ExpectExec(sqlAddPoints).WithArgs(2, "commenter").WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(sqlAddPoints).WithArgs(1, "owner").WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	expectCommit(mock)

	err := store.InTx(context.Background(), func(r Repos) error {
		if err := r.Accounts.AddPoints(context.Background(), "commenter", 2); err != nil {
			return err
		}
		return r.Accounts.AddPoints(context.Background(), "owner", 1)
	})
	assert.NoError(t, err)
}

func TestPgStore_InTx_RollbackOnError(t *testing.T) {
	mock := newMockPool(t)
	store := NewPostgresStore(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(sqlLockArticle).
		WithArgs("a1").
		WillReturnRows(pgxmock.NewRows(articleCols).AddRow("a1", "owner", "t", "c", time.Now(), time.Now()))
	mock.ExpectExec(sqlAddPoints).WithArgs(-3, "owner").WillReturnError(errors.New("deadlock detected"))
	expectRollback(mock)

	err := store.InTx(context.Background(), func(r Repos) error {
		a, err := r.Articles.GetForUpdate(context.Background(), "a1")
		if err != nil {
			return err
		}
		return r.Accounts.AddPoints(context.Background(), a.OwnerID, -3)
	})
	assert.EqualError(t, err, "deadlock detected")
}

func TestPgStore_InTx_BeginFails(t *testing.T) {
	mock := newMockPool(t)
	store := NewPostgresStore(mock)

	mock.ExpectBegin().WillReturnError(errors.New("pool closed"))

	called := false
	err := store.InTx(context.Background(), func(Repos) error {
		called = true
		return nil
	})
	assert.EqualError(t, err, "pool closed")
	assert.False(t, called)
}

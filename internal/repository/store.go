package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound  = errors.New("запись не найдена")
	ErrDuplicate = errors.New("запись уже существует")
)

// Repos: набор репозиториев, привязанных к одному соединению или транзакции.
type Repos struct {
	Accounts AccountRepo
	Articles ArticleRepo
	Comments CommentRepo
}

// Store отдаёт репозитории вне транзакции и выполняет единицу работы атомарно:
// если fn вернула ошибку, ни одно изменение не сохраняется.
type Store interface {
	Repos() Repos
	InTx(ctx context.Context, fn func(r Repos) error) error
}

// DBTX: общее между *pgxpool.Pool и pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Pool: DBTX, умеющий открывать транзакции (*pgxpool.Pool).
type Pool interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

var _ Pool = (*pgxpool.Pool)(nil)

type pgStore struct {
	pool Pool
}

func NewPostgresStore(pool Pool) Store {
	return &pgStore{pool: pool}
}

func (s *pgStore) Repos() Repos {
	return newPgRepos(s.pool)
}

func (s *pgStore) InTx(ctx context.Context, fn func(r Repos) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(newPgRepos(tx))
	})
}

func newPgRepos(db DBTX) Repos {
	return Repos{
		Accounts: NewAccountRepo(db),
		Articles: NewArticleRepo(db),
		Comments: NewCommentRepo(db),
	}
}

func notFoundOr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isForeignKeyViolation: владелец или родительская статья исчезли до вставки.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

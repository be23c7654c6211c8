package services

import (
	"context"
	"testing"
	"time"

	"community/internal/reqctx"
	"community/internal/repository"
	"community/internal/utils"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	store    *repository.MemoryStore
	creds    *CredentialService
	accounts *AccountService
	articles ArticleService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := repository.NewMemoryStore()
	creds := NewCredentialService(store, utils.NewBcryptHasher(bcrypt.MinCost), utils.NewJWTProvider("mysecret", 15*time.Minute))
	return &testEnv{
		store:    store,
		creds:    creds,
		accounts: NewAccountService(creds, store),
		articles: NewArticleService(store, creds),
	}
}

// signupAndLogin регистрирует пользователя и возвращает контекст запроса с его AuthContext.
func (e *testEnv) signupAndLogin(t *testing.T, userID string) context.Context {
	t.Helper()
	ctx := context.Background()
	_, err := e.accounts.Signup(ctx, userID, "passw0rd", "username")
	require.NoError(t, err)

	session, err := e.creds.Login(ctx, userID, "passw0rd")
	require.NoError(t, err)
	return reqctx.WithAuth(ctx, session.Auth)
}

func (e *testEnv) points(t *testing.T, ctx context.Context) int {
	t.Helper()
	p, err := e.accounts.GetPoints(ctx)
	require.NoError(t, err)
	return p.Points
}

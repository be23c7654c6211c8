package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"community/internal/handlers"
	"community/internal/middleware"
	"community/internal/repository"
	"community/internal/services"
	"community/internal/utils"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()
	store := repository.NewMemoryStore()
	creds := services.NewCredentialService(store, utils.NewBcryptHasher(bcrypt.MinCost), utils.NewJWTProvider("mysecret", 15*time.Minute))
	accounts := services.NewAccountService(creds, store)
	articles := services.NewArticleService(store, creds)

	router := mux.NewRouter()
	InitRoutes(router,
		handlers.NewAuthHandler(accounts, creds),
		handlers.NewArticleHandler(articles),
		creds,
		middleware.NewRateLimiter(1000, 1000),
	)
	return router
}

func do(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func signin(t *testing.T, router http.Handler, userID string) string {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/signup", "", map[string]string{"userid": userID, "pw": "passw0rd", "username": "username"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, userID, decode(t, rec)["userid"])

	rec = do(t, router, http.MethodPost, "/signin", "", map[string]string{"userid": userID, "pw": "passw0rd"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	token, _ := decode(t, rec)["token"].(string)
	require.NotEmpty(t, token)
	assert.Equal(t, "Bearer "+token, rec.Header().Get("Authorization"))
	return token
}

func points(t *testing.T, router http.Handler, token string) float64 {
	t.Helper()
	rec := do(t, router, http.MethodGet, "/points", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	p, _ := decode(t, rec)["points"].(float64)
	return p
}

func TestSignupSigninProfile(t *testing.T) {
	router := newTestRouter(t)
	token := signin(t, router, "userid")

	rec := do(t, router, http.MethodGet, "/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "userid", body["userid"])
	assert.Equal(t, "username", body["username"])
	assert.NotEmpty(t, rec.Header().Get(middleware.HeaderRequestID))

	assert.Equal(t, float64(0), points(t, router, token))
}

func TestSignup_Duplicate(t *testing.T) {
	router := newTestRouter(t)
	signin(t, router, "userid")

	rec := do(t, router, http.MethodPost, "/signup", "", map[string]string{"userid": "userid", "pw": "other", "username": "x"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", decode(t, rec)["code"])
}

func TestSignin_WrongPassword(t *testing.T) {
	router := newTestRouter(t)
	signin(t, router, "userid")

	rec := do(t, router, http.MethodPost, "/signin", "", map[string]string{"userid": "userid", "pw": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Header().Get("Authorization"))
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	router := newTestRouter(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/profile"},
		{http.MethodGet, "/points"},
		{http.MethodPost, "/article"},
		{http.MethodPut, "/article"},
		{http.MethodGet, "/article/x"},
		{http.MethodDelete, "/article/x"},
		{http.MethodPost, "/comments"},
		{http.MethodDelete, "/comments/x"},
	} {
		rec := do(t, router, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.method+" "+tc.path)

		rec = do(t, router, tc.method, tc.path, "garbage", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.method+" "+tc.path)
	}
}

func TestArticleAndCommentFlow(t *testing.T) {
	router := newTestRouter(t)
	owner := signin(t, router, "owner")
	commenter := signin(t, router, "commenter")

	rec := do(t, router, http.MethodPost, "/article", owner, map[string]string{"articleTitle": "articleTitle", "articleContents": "articleContents"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	articleID, _ := decode(t, rec)["articleId"].(string)
	require.NotEmpty(t, articleID)
	assert.Equal(t, float64(3), points(t, router, owner))

	rec = do(t, router, http.MethodPut, "/article", owner, map[string]string{"articleId": articleID, "articleTitle": "updateArticleTitle", "articleContents": "updateArticleContents"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, articleID, decode(t, rec)["articleId"])

	rec = do(t, router, http.MethodPost, "/comments", commenter, map[string]string{"articleId": articleID, "commentContents": "commentsContents"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	commentID, _ := decode(t, rec)["commentId"].(string)
	require.NotEmpty(t, commentID)
	assert.Equal(t, float64(2), points(t, router, commenter))
	assert.Equal(t, float64(4), points(t, router, owner))

	rec = do(t, router, http.MethodGet, "/article/"+articleID, commenter, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, articleID, body["articleId"])
	assert.Equal(t, []any{commentID}, body["commentsId"])

	rec = do(t, router, http.MethodDelete, "/comments/"+commentID, commenter, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, commentID, decode(t, rec)["commentId"])
	assert.Equal(t, float64(0), points(t, router, commenter))
	assert.Equal(t, float64(3), points(t, router, owner))

	rec = do(t, router, http.MethodGet, "/article/"+articleID, owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, decode(t, rec)["commentsId"])

	rec = do(t, router, http.MethodDelete, "/article/"+articleID, owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode(t, rec)["count"])
	assert.Equal(t, float64(0), points(t, router, owner))

	rec = do(t, router, http.MethodGet, "/article/"+articleID, owner, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestComment_UnknownArticle(t *testing.T) {
	router := newTestRouter(t)
	token := signin(t, router, "userid")

	rec := do(t, router, http.MethodPost, "/comments", token, map[string]string{"articleId": "missing", "commentContents": "c"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, float64(0), points(t, router, token))
}

func TestBadJSON(t *testing.T) {
	router := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/signup", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOversizedBodyRejected(t *testing.T) {
	router := newTestRouter(t)
	token := signin(t, router, "userid")

	huge := strings.Repeat("x", 2<<20)
	rec := do(t, router, http.MethodPost, "/article", token, map[string]string{"articleTitle": "t", "articleContents": huge})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, float64(0), points(t, router, token))
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)
	signin(t, router, "userid")

	rec := do(t, router, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "community_http_requests_total")
}

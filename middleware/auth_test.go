package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"rkive-api/config"
	"rkive-api/models"
	"rkive-api/services"
	"rkive-api/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuth(t *testing.T) (*gin.Engine, *services.AccountService, *services.TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	settings := testutil.NewSettings(t)
	prevDB, prevSettings := config.DB, config.Current
	config.DB, config.Current = db, settings
	t.Cleanup(func() { config.DB, config.Current = prevDB, prevSettings })

	router := gin.New()
	router.GET("/me", AuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": *CurrentUserID(c), "email": CurrentAccount(c).Email})
	})
	router.GET("/staff", AuthMiddleware(), RequireRole(models.RoleStaff), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/open", RequireRole(models.RoleStaff), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return router, services.NewAccountService(db), services.NewTokenService(db, services.NewRedisService(nil), settings)
}

func issue(t *testing.T, accounts *services.AccountService, tokens *services.TokenService, email string, roles ...string) (*models.Account, string) {
	t.Helper()
	account, err := accounts.Create(services.AccountInput{
		Email: email, Password: "secret1", RePassword: "secret1", Roles: roles,
	})
	require.NoError(t, err)
	pair, err := tokens.IssuePair(account)
	require.NoError(t, err)
	return account, pair.Access
}

func request(router *gin.Engine, path string, prepare func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if prepare != nil {
		prepare(req)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func bearer(token string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func TestAuthMiddlewareAcceptsHeaderAndCookie(t *testing.T) {
	router, accounts, tokens := setupAuth(t)
	_, access := issue(t, accounts, tokens, "ann@example.com", "student")

	assert.Equal(t, http.StatusOK, request(router, "/me", bearer(access)).Code)

	w := request(router, "/me", func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: AccessCookie, Value: access})
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ann@example.com")
}

func TestAuthMiddlewareRejects(t *testing.T) {
	router, accounts, tokens := setupAuth(t)
	account, access := issue(t, accounts, tokens, "bob@example.com", "student")

	assert.Equal(t, http.StatusUnauthorized, request(router, "/me", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, request(router, "/me", func(r *http.Request) {
		r.Header.Set("Authorization", "Token "+access)
	}).Code)
	assert.Equal(t, http.StatusUnauthorized, request(router, "/me", bearer("not-a-jwt")).Code)

	pair, err := tokens.IssuePair(account)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, request(router, "/me", bearer(pair.Refresh)).Code, "refresh token is not an access token")

	inactive := false
	_, err = accounts.Update(account.ID, services.AccountPatch{IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, request(router, "/me", bearer(access)).Code)
}

func TestRequireRole(t *testing.T) {
	router, accounts, tokens := setupAuth(t)
	_, student := issue(t, accounts, tokens, "s@example.com", "student")
	_, staff := issue(t, accounts, tokens, "staff@example.com", "staff")
	_, root := issue(t, accounts, tokens, "root@example.com", "superuser")

	assert.Equal(t, http.StatusForbidden, request(router, "/staff", bearer(student)).Code)
	assert.Equal(t, http.StatusOK, request(router, "/staff", bearer(staff)).Code)
	assert.Equal(t, http.StatusOK, request(router, "/staff", bearer(root)).Code)
	assert.Equal(t, http.StatusForbidden, request(router, "/open", nil).Code)
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORSMiddleware([]string{"https://app.example"}), SecurityHeaders())
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := request(router, "/ping", func(r *http.Request) { r.Header.Set("Origin", "https://app.example") })
	assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "SAMEORIGIN", w.Header().Get("X-Frame-Options"))

	w = request(router, "/ping", func(r *http.Request) { r.Header.Set("Origin", "https://evil.example") })
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

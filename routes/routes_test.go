package routes

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"rkive-api/config"
	"rkive-api/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	prevDB, prevSettings := config.DB, config.Current
	config.DB = testutil.NewDB(t)
	config.Current = testutil.NewSettings(t)
	t.Cleanup(func() { config.DB, config.Current = prevDB, prevSettings })

	router := gin.New()
	SetupRoutes(router)
	return router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealth(t *testing.T) {
	w := get(newRouter(t), "/api/v1/health")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","message":"rkive API is running"}`, w.Body.String())
}

func TestUnknownRoute(t *testing.T) {
	w := get(newRouter(t), "/api/v1/nothing-here")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProtectedGroupsRequireAuth(t *testing.T) {
	router := newRouter(t)
	for _, path := range []string{"/api/v1/user-role", "/api/v1/document-count", "/api/v1/accounts", "/api/v1/reviews"} {
		assert.Equal(t, http.StatusUnauthorized, get(router, path).Code, path)
	}
	assert.Equal(t, http.StatusOK, get(router, "/api/v1/manuscripts").Code)
}

func TestMediaIsServed(t *testing.T) {
	router := newRouter(t)
	path := filepath.Join(config.Current.MediaRoot, "manuscripts", "a.pdf")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))

	w := get(router, "/media/manuscripts/a.pdf")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "%PDF-1.4", w.Body.String())
}

func TestLogsAndStatsNeedToken(t *testing.T) {
	router := newRouter(t)
	assert.Equal(t, http.StatusUnauthorized, get(router, "/logs?token=").Code)

	config.Current.LogAccessToken = "let-me-in"
	assert.Equal(t, http.StatusUnauthorized, get(router, "/monitor/stats?token=wrong").Code)

	w := get(router, "/monitor/stats?token=let-me-in")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"goroutines"`)
	assert.Contains(t, w.Body.String(), `"reviews_pending":0`)
}

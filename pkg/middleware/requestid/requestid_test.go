package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(capture *string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware())
	router.GET("/ping", func(c *gin.Context) {
		*capture = Value(c)
		c.String(http.StatusOK, "pong")
	})
	return router
}

func TestGeneratesIDWhenMissing(t *testing.T) {
	var seen string
	router := newRouter(&seen)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.NotEmpty(t, seen)
	_, err := uuid.Parse(seen)
	assert.NoError(t, err)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))
}

func TestKeepsInboundID(t *testing.T) {
	var seen string
	router := newRouter(&seen)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "trace-abc-123")
	router.ServeHTTP(rec, req)

	assert.Equal(t, "trace-abc-123", seen)
	assert.Equal(t, "trace-abc-123", rec.Header().Get("X-Request-ID"))
}

func TestReplacesOversizedInboundID(t *testing.T) {
	var seen string
	router := newRouter(&seen)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("x", maxInboundLen+1))
	router.ServeHTTP(rec, req)

	require.NotEmpty(t, seen)
	_, err := uuid.Parse(seen)
	assert.NoError(t, err)
}

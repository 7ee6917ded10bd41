package common

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, rate string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	limit, err := LimiterMiddleware(rate, nil)
	require.NoError(t, err)
	r.Use(CORSMiddleware(), RequestIdMiddleware())
	r.GET("/ping", limit, func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return r
}

func TestLimiterMiddleware(t *testing.T) {
	r := newEngine(t, "2-M")
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{200, 200, http.StatusTooManyRequests}, codes)

	_, err := LimiterMiddleware("two-per-minute", nil)
	assert.Error(t, err)
}

func TestRequestIdMiddleware(t *testing.T) {
	r := newEngine(t, "100-S")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	_, err := uuid.Parse(w.Header().Get(RequestIdHeader))
	assert.NoError(t, err)

	id := uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIdHeader, id)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, id, w.Header().Get(RequestIdHeader))
}

func TestCORSMiddleware(t *testing.T) {
	r := newEngine(t, "100-S")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/ping", nil))
	assert.Equal(t, 204, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"collaborative-whiteboard/internal/repository/mocks"
)

func setupRouter(stateRepo *mocks.StateRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimit(stateRepo, 10, time.Second))
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return router
}

func TestRateLimitAllowsUnderLimit(t *testing.T) {
	stateRepo := new(mocks.StateRepository)
	stateRepo.On("CheckRateLimit", mock.Anything, mock.Anything, 10, time.Second).Return(false, nil)

	router := setupRouter(stateRepo)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitBlocksWhenExceeded(t *testing.T) {
	stateRepo := new(mocks.StateRepository)
	stateRepo.On("CheckRateLimit", mock.Anything, mock.Anything, 10, time.Second).Return(true, nil)

	router := setupRouter(stateRepo)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRateLimitFailsOpenOnStorageError(t *testing.T) {
	stateRepo := new(mocks.StateRepository)
	stateRepo.On("CheckRateLimit", mock.Anything, mock.Anything, 10, time.Second).
		Return(false, errors.New("redis down"))

	router := setupRouter(stateRepo)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

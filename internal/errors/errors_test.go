package errors

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapKeepsCode(t *testing.T) {
	inner := InvalidArg("page")
	wrapped := Wrap(fmt.Errorf("outer: %w", inner), "ignored", http.StatusTeapot)
	assert.Equal(t, http.StatusBadRequest, wrapped.Code)
	assert.Nil(t, Wrap(nil, "x", 500))

	plain := Wrap(fmt.Errorf("boom"), "load", http.StatusBadGateway)
	assert.Equal(t, http.StatusBadGateway, GetCode(plain))
	assert.Equal(t, "load: boom", plain.Error())
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, http.StatusOK, GetCode(nil))
	assert.Equal(t, http.StatusInternalServerError, GetCode(fmt.Errorf("x")))
	assert.Equal(t, http.StatusNotFound, GetCode(fmt.Errorf("wrap: %w", ErrChatRoomNotFound)))
}

func TestRootCause(t *testing.T) {
	base := fmt.Errorf("base")
	err := LookupFailed(1, 5, fmt.Errorf("mid: %w", base))
	assert.Equal(t, base, RootCause(err))
	assert.True(t, Is(err, base))
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RecoveryMiddleware(), ErrorHandlerMiddleware())
	r.GET("/panic", func(c *gin.Context) { panic("oops") })
	r.GET("/err", func(c *gin.Context) { _ = c.Error(ErrChatRoomNotFound) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/err", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"chatroom not found"}`, w.Body.String())
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func serve(h http.Handler) (int, map[string]interface{}) {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	var body map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w.Code, body
}

func TestHealth_AllUp(t *testing.T) {
	ok := pingFunc(func(context.Context) error { return nil })
	code, body := serve(NewHealth(map[string]Pinger{"postgres": ok, "mongo": ok}))

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestHealth_Degraded(t *testing.T) {
	ok := pingFunc(func(context.Context) error { return nil })
	down := pingFunc(func(context.Context) error { return errors.New("connection refused") })
	code, body := serve(NewHealth(map[string]Pinger{"postgres": ok, "redis": down}))

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "degraded", body["status"])
	services, ok2 := body["services"].(map[string]interface{})
	require.True(t, ok2)
	assert.Equal(t, "connection refused", services["redis"])
	assert.Equal(t, "ok", services["postgres"])
}

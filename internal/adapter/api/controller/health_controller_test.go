package controller_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/verduleria-api/internal/adapter/api/controller"
	"github.com/hugohenrick/verduleria-api/pkg/logger"
	"github.com/stretchr/testify/assert"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	tests := []struct {
		name   string
		db     controller.Pinger
		redis  controller.Pinger
		status int
		body   string
	}{
		{"todo arriba", pinger{}, pinger{}, http.StatusOK, `{"ok":true,"database":"up","redis":"up"}`},
		{"sin redis configurado", pinger{}, nil, http.StatusOK, `{"ok":true,"database":"up"}`},
		{"redis caído no tumba el servicio", pinger{}, pinger{err: errors.New("down")}, http.StatusOK, `{"ok":true,"database":"up","redis":"down"}`},
		{"base caída", pinger{err: errors.New("down")}, nil, http.StatusServiceUnavailable, `{"ok":false,"database":"down"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			r := gin.New()
			r.GET("/health", controller.NewHealthController(tt.db, tt.redis, logger.Nop()).Health)

			w := do(r, http.MethodGet, "/health", "")
			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

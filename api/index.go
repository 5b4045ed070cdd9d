package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"shopwave/app"
	"shopwave/config"
	_ "shopwave/docs"
	"shopwave/libs"
	"shopwave/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	application *app.App
	initErr     error
	once        sync.Once
)

func initApp() {
	once.Do(func() {
		gin.SetMode(gin.ReleaseMode)

		cfg := config.LoadConfig()
		logger, err := libs.NewLogger(cfg.AppEnv, cfg.LogLevel)
		if err != nil {
			logger = zap.NewNop()
		}

		application, initErr = app.New(context.Background(), cfg, logger)
		if initErr != nil {
			logger.Error("failed to initialize application", zap.Error(initErr))
			return
		}
		go application.Carts.Run(context.Background())
	})
}

// Handler is the serverless entry point. Cart saves run in the background,
// so each invocation waits for them before returning.
func Handler(w http.ResponseWriter, r *http.Request) {
	initApp()
	if initErr != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(models.ErrorResponse{Success: false, Message: "Service unavailable"})
		return
	}
	application.Router.ServeHTTP(w, r)
	application.Carts.Wait()
	application.Orders.Wait()
}

package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/jbeeko/contacts-worker/internal/kv"
	"github.com/jbeeko/contacts-worker/internal/middleware"
	"github.com/jbeeko/contacts-worker/internal/server"
	"github.com/labstack/echo/v4"
)

// HealthHandler reports whether the service is up and its KV backend
// reachable.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

// CheckHealth answers 200 when every check passes and 503 otherwise.
// With health checks disabled only liveness is reported.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	checks := map[string]any{}
	response := map[string]any{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"backend":     h.server.Config.KV.Backend,
		"checks":      checks,
	}

	obs := h.server.Config.Observability
	pinger, canPing := h.server.Store.(kv.Pinger)

	if obs.HealthChecks.Enabled && canPing {
		ctx, cancel := context.WithTimeout(c.Request().Context(), obs.HealthChecks.Timeout)
		defer cancel()

		storeStart := time.Now()
		if err := pinger.Ping(ctx); err != nil {
			checks["kv"] = map[string]any{
				"status":        "unhealthy",
				"response_time": time.Since(storeStart).String(),
				"error":         err.Error(),
			}
			response["status"] = "unhealthy"

			logger.Error().
				Err(err).
				Dur("response_time", time.Since(storeStart)).
				Msg("kv health check failed")

			if app := h.server.LoggerService.GetApplication(); app != nil {
				app.RecordCustomEvent("HealthCheckError", map[string]any{
					"check_type":       "kv",
					"backend":          h.server.Config.KV.Backend,
					"response_time_ms": time.Since(storeStart).Milliseconds(),
					"error_message":    err.Error(),
				})
			}

			return c.JSON(http.StatusServiceUnavailable, response)
		}

		checks["kv"] = map[string]any{
			"status":        "healthy",
			"response_time": time.Since(storeStart).String(),
		}
	}

	logger.Debug().
		Dur("total_duration", time.Since(start)).
		Msg("health check passed")

	return c.JSON(http.StatusOK, response)
}

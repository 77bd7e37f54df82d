package health

import (
	"context"
	"time"

	"agritoken-backend/internal/middleware"
	"agritoken-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Handlers for health endpoints.
type Handlers struct {
	Rdb        *redis.Client
	DB         DBPinger
	GatewayURL string
	AdminKey   string
}

// Status GET /api/health — lightweight liveness probe.
func (h *Handlers) Status(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Detail GET /health/json — full dependency and traffic report.
func (h *Handlers) Detail(c *fiber.Ctx) error {
	result := CollectHealth(c.Context(), h.Rdb, h.DB, h.GatewayURL)
	return c.JSON(result)
}

// Reset GET /health/reset?key= — clears request counters. Requires admin key.
func (h *Handlers) Reset(c *fiber.Ctx) error {
	if h.AdminKey == "" || c.Query("key") != h.AdminKey {
		return response.Error(c, "Unauthorized", fiber.StatusForbidden, nil)
	}
	ctx := context.Background()
	_ = h.Rdb.Del(ctx,
		middleware.KeyReqTotal,
		middleware.KeyReqErrors,
		middleware.KeyResTime,
		middleware.KeyResCount,
		middleware.KeyStartTime,
		middleware.KeyLastReq,
	).Err()
	return response.Success(c, "Health counters reset", nil)
}

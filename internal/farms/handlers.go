package farms

import (
	"context"
	"errors"
	"time"

	"agritoken-backend/internal/assets"
	"agritoken-backend/internal/normalize"
	"agritoken-backend/internal/pkg/apperr"
	"agritoken-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *Service
	// TokenizeTimeout bounds the asset-gateway round-trip.
	TokenizeTimeout time.Duration
}

// CreateFarm POST /api/v1/farms
func (h *Handlers) CreateFarm(c *fiber.Ctx) error {
	var raw map[string]interface{}
	if err := c.BodyParser(&raw); err != nil || len(raw) == 0 {
		return response.Error(c, "No data provided", fiber.StatusBadRequest, nil)
	}
	farm, err := h.Service.Create(c.Context(), raw)
	if err != nil {
		return farmError(c, err)
	}
	return response.SuccessCreated(c, "Farm created successfully", farm)
}

// ListFarms GET /api/v1/farms
func (h *Handlers) ListFarms(c *fiber.Ctx) error {
	farms, err := h.Service.List(c.Context())
	if err != nil {
		return farmError(c, err)
	}
	return response.SuccessList(c, farms, len(farms))
}

// GetFarm GET /api/v1/farms/:farm_id
func (h *Handlers) GetFarm(c *fiber.Ctx) error {
	farmID, err := uuid.Parse(c.Params("farm_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for farm_id", fiber.StatusBadRequest, nil)
	}
	farm, err := h.Service.Get(c.Context(), farmID)
	if err != nil {
		return farmError(c, err)
	}
	return response.Success(c, "", farm)
}

// UpdateFarm PUT /api/v1/farms/:farm_id
func (h *Handlers) UpdateFarm(c *fiber.Ctx) error {
	farmID, err := uuid.Parse(c.Params("farm_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for farm_id", fiber.StatusBadRequest, nil)
	}
	var raw map[string]interface{}
	if err := c.BodyParser(&raw); err != nil || len(raw) == 0 {
		return response.Error(c, "No data provided", fiber.StatusBadRequest, nil)
	}
	farm, err := h.Service.Update(c.Context(), farmID, raw)
	if err != nil {
		return farmError(c, err)
	}
	return response.Success(c, "Farm updated successfully", farm)
}

// DeleteFarm DELETE /api/v1/farms/:farm_id
func (h *Handlers) DeleteFarm(c *fiber.Ctx) error {
	farmID, err := uuid.Parse(c.Params("farm_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for farm_id", fiber.StatusBadRequest, nil)
	}
	if err := h.Service.Delete(c.Context(), farmID); err != nil {
		return farmError(c, err)
	}
	return response.Success(c, "Farm deleted successfully", nil)
}

// TokenizeFarm POST /api/v1/farms/:farm_id/tokenize
func (h *Handlers) TokenizeFarm(c *fiber.Ctx) error {
	farmID, err := uuid.Parse(c.Params("farm_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for farm_id", fiber.StatusBadRequest, nil)
	}

	timeout := h.TokenizeTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := contextWithTimeout(c, timeout)
	defer cancel()

	farm, err := h.Service.Tokenize(ctx, farmID)
	if err != nil {
		return farmError(c, err)
	}
	return response.Success(c, "Farm tokenized successfully", farm)
}

// GetStats GET /api/v1/farms/stats
func (h *Handlers) GetStats(c *fiber.Ctx) error {
	stats, err := h.Service.Stats(c.Context())
	if err != nil {
		return farmError(c, err)
	}
	return response.Success(c, "", stats)
}

func farmError(c *fiber.Ctx, err error) error {
	var nerr *normalize.Error
	if errors.As(err, &nerr) {
		return response.Error(c, "Invalid record", fiber.StatusBadRequest, fiber.Map{"field": nerr.Field})
	}
	var aerr *apperr.Error
	if errors.As(err, &aerr) {
		details := fiber.Map{}
		if aerr.Field != "" {
			details["field"] = aerr.Field
		}
		return response.Error(c, aerr.Message, apperr.StatusCode(aerr), details)
	}
	switch {
	case errors.Is(err, ErrFarmNotFound):
		return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
	case errors.Is(err, ErrAlreadyTokenized), errors.Is(err, ErrSupplyBelowSold):
		return response.Error(c, err.Error(), fiber.StatusConflict, nil)
	case errors.Is(err, assets.ErrIndeterminate):
		return response.Error(c, err.Error(), fiber.StatusGatewayTimeout, nil)
	default:
		return response.Error(c, err.Error(), apperr.StatusCode(err), nil)
	}
}

func contextWithTimeout(c *fiber.Ctx, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context(), d)
}

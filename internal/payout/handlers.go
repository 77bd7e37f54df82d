package payout

import (
	"errors"

	"agritoken-backend/internal/ledger"
	"agritoken-backend/internal/pkg/apperr"
	"agritoken-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Handlers struct {
	Service *Service
}

type distributeRequest struct {
	FarmID       string  `json:"farm_id"`
	PayoutAmount float64 `json:"payout_amount"`
	PayoutDate   string  `json:"payout_date"`
	Description  string  `json:"description"`
}

type distributeResponseLine struct {
	InvestorEmail string          `json:"investor_email"`
	TokensOwned   int64           `json:"tokens_owned"`
	Amount        decimal.Decimal `json:"amount"`
}

type distributeResponse struct {
	PayoutPerToken decimal.Decimal          `json:"payout_per_token"`
	TotalTokens    int64                    `json:"total_tokens"`
	PerHolding     []distributeResponseLine `json:"per_holding"`
}

// Distribute POST /api/v1/payouts/distribute — the payout simulation. Moving
// actual funds stays with the caller; this records the accounting state.
func (h *Handlers) Distribute(c *fiber.Ctx) error {
	var req distributeRequest
	if err := c.BodyParser(&req); err != nil || req.FarmID == "" {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	farmID, err := uuid.Parse(req.FarmID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for farm_id", fiber.StatusBadRequest, nil)
	}

	report, err := h.Service.Distribute(c.Context(), DistributeInput{
		FarmID:       farmID,
		PayoutAmount: decimal.NewFromFloat(req.PayoutAmount),
		PayoutDate:   req.PayoutDate,
		Description:  req.Description,
	})
	if err != nil {
		return payoutError(c, err)
	}

	out := distributeResponse{
		PayoutPerToken: report.PayoutPerToken,
		TotalTokens:    report.TotalTokens,
		PerHolding:     make([]distributeResponseLine, len(report.Lines)),
	}
	for i, line := range report.Lines {
		out.PerHolding[i] = distributeResponseLine{
			InvestorEmail: line.InvestorEmail,
			TokensOwned:   line.TokensOwned,
			Amount:        line.Amount,
		}
	}
	return response.Success(c, "Payout distributed successfully", out)
}

// History GET /api/v1/payouts/history/:farm_id
func (h *Handlers) History(c *fiber.Ctx) error {
	farmID, err := uuid.Parse(c.Params("farm_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for farm_id", fiber.StatusBadRequest, nil)
	}
	events, err := h.Service.History(c.Context(), farmID)
	if err != nil {
		return payoutError(c, err)
	}
	return response.SuccessList(c, events, len(events))
}

func payoutError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrInvalidAmount):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	case errors.Is(err, ledger.ErrFarmNotFound):
		return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
	case errors.Is(err, ErrNoHoldings):
		return response.Error(c, err.Error(), fiber.StatusConflict, nil)
	case errors.Is(err, ledger.ErrBatchApplyFailed):
		return response.Error(c, err.Error(), fiber.StatusBadGateway, nil)
	default:
		return response.Error(c, err.Error(), apperr.StatusCode(err), nil)
	}
}

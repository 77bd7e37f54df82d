package invest

import (
	"errors"
	"math"

	"agritoken-backend/internal/assets"
	"agritoken-backend/internal/ledger"
	"agritoken-backend/internal/pkg/apperr"
	"agritoken-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

type Handlers struct {
	Service       *Service
	StripeCreator PaymentIntentCreator
}

// PaymentIntentCreator abstracts Stripe PaymentIntent creation for testability.
type PaymentIntentCreator interface {
	Create(amountCents int64, currency string, metadata map[string]string) (*PaymentIntentResult, error)
}

type PaymentIntentResult struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

// RealStripeCreator uses the Stripe Go SDK to create PaymentIntents.
type RealStripeCreator struct {
	SecretKey string
}

func (r *RealStripeCreator) Create(amountCents int64, currency string, metadata map[string]string) (*PaymentIntentResult, error) {
	if r.SecretKey == "" {
		return nil, fiber.NewError(fiber.StatusNotImplemented, "Stripe integration pending")
	}
	stripe.Key = r.SecretKey
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
		Metadata: metadata,
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, err
	}
	return &PaymentIntentResult{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

type acquireRequest struct {
	FarmID        string `json:"farm_id"`
	InvestorEmail string `json:"investor_email"`
	WalletAddress string `json:"wallet_address"`
	Tokens        int64  `json:"tokens"`
}

// Acquire POST /api/v1/invest/acquire
func (h *Handlers) Acquire(c *fiber.Ctx) error {
	var req acquireRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	farmID, err := uuid.Parse(req.FarmID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for farm_id", fiber.StatusBadRequest, nil)
	}

	result, err := h.Service.Acquire(c.Context(), AcquireInput{
		FarmID:        farmID,
		InvestorEmail: req.InvestorEmail,
		WalletAddress: req.WalletAddress,
		Tokens:        req.Tokens,
	})
	if err != nil {
		return investError(c, err)
	}
	return response.SuccessCreated(c, "Tokens acquired successfully", result)
}

// CreatePaymentIntent POST /api/v1/invest/payment-intent — only creates the
// Stripe PaymentIntent; token transfer happens on webhook/confirmation.
func (h *Handlers) CreatePaymentIntent(c *fiber.Ctx) error {
	var req acquireRequest
	if err := c.BodyParser(&req); err != nil || req.FarmID == "" || req.Tokens <= 0 {
		return response.Error(c, "Missing required fields", fiber.StatusBadRequest, nil)
	}
	farmID, err := uuid.Parse(req.FarmID)
	if err != nil {
		return response.Error(c, "Invalid UUID format for farm_id", fiber.StatusBadRequest, nil)
	}

	farm, err := h.Service.loadFarm(c.Context(), farmID)
	if err != nil {
		return investError(c, err)
	}
	amountCents := int64(math.Round(farm.PricePerToken * float64(req.Tokens) * 100))

	pi, err := h.StripeCreator.Create(amountCents, "usd", map[string]string{
		"farm_id":        farmID.String(),
		"investor_email": req.InvestorEmail,
	})
	if err != nil {
		if fe, ok := err.(*fiber.Error); ok {
			return response.Error(c, fe.Message, fe.Code, nil)
		}
		return response.Error(c, "Failed to create payment intent", fiber.StatusBadGateway, nil)
	}
	return response.Success(c, "Payment intent created", pi)
}

// Portfolio GET /api/v1/invest/portfolio?investor_email=...
func (h *Handlers) Portfolio(c *fiber.Ctx) error {
	email := c.Query("investor_email")
	holdings, err := h.Service.Portfolio(c.Context(), email)
	if err != nil {
		return investError(c, err)
	}
	return response.SuccessList(c, holdings, len(holdings))
}

// FarmHoldings GET /api/v1/invest/farm-holdings/:farm_id
func (h *Handlers) FarmHoldings(c *fiber.Ctx) error {
	farmID, err := uuid.Parse(c.Params("farm_id"))
	if err != nil {
		return response.Error(c, "Invalid UUID format for farm_id", fiber.StatusBadRequest, nil)
	}
	holdings, err := h.Service.FarmHoldings(c.Context(), farmID)
	if err != nil {
		return investError(c, err)
	}
	return response.SuccessList(c, holdings, len(holdings))
}

func investError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ledger.ErrInvalidQuantity),
		errors.Is(err, ErrInvalidInvestor),
		errors.Is(err, ErrInvalidWallet),
		errors.Is(err, assets.ErrInvalidTransfer):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	case errors.Is(err, ErrFarmNotFound), errors.Is(err, ledger.ErrFarmNotFound):
		return response.Error(c, err.Error(), fiber.StatusNotFound, nil)
	case errors.Is(err, ledger.ErrOversubscribed), errors.Is(err, ErrNotTokenized):
		return response.Error(c, err.Error(), fiber.StatusConflict, nil)
	case errors.Is(err, assets.ErrIndeterminate):
		return response.Error(c, err.Error(), fiber.StatusGatewayTimeout, nil)
	default:
		return response.Error(c, err.Error(), apperr.StatusCode(err), nil)
	}
}

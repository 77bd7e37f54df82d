// Package payout computes and applies proportional cash distributions to a
// farm's holders. Allocation is pure decimal arithmetic: same holdings
// snapshot plus same amount always yields an identical report, including
// where the residual cent lands.
package payout

import (
	"agritoken-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Rounding policy: 4 places for the per-token rate, 2 for money amounts,
// both half away from zero (decimal.Round semantics).
const (
	rateScale   = 4
	amountScale = 2
)

// Line is one holding's share of a payout.
type Line struct {
	HoldingID     uuid.UUID       `json:"holding_id"`
	InvestorEmail string          `json:"investor_email"`
	TokensOwned   int64           `json:"tokens_owned"`
	Amount        decimal.Decimal `json:"amount"`
}

// Report is the full distribution for one payout event. Lines keep the
// ledger's insertion order.
type Report struct {
	PayoutPerToken decimal.Decimal `json:"payout_per_token"`
	TotalTokens    int64           `json:"total_tokens"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Lines          []Line          `json:"per_holding"`
}

// Allocate splits totalAmount across holdings in proportion to tokens owned.
//
// Conservation: the rounded line amounts must sum to totalAmount rounded to
// cents. Any residual from rounding goes to the holding with the most tokens;
// ties break by insertion order, so the result is deterministic.
func Allocate(totalAmount decimal.Decimal, holdings []domain.Holding) (*Report, error) {
	if totalAmount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	var totalTokens int64
	for _, h := range holdings {
		totalTokens += h.TokensOwned
	}
	if len(holdings) == 0 || totalTokens == 0 {
		return nil, ErrNoHoldings
	}

	perToken := totalAmount.Div(decimal.NewFromInt(totalTokens)).Round(rateScale)

	target := totalAmount.Round(amountScale)
	sum := decimal.Zero
	lines := make([]Line, len(holdings))
	residualIdx := 0
	for i, h := range holdings {
		amount := perToken.Mul(decimal.NewFromInt(h.TokensOwned)).Round(amountScale)
		lines[i] = Line{
			HoldingID:     h.HoldingID,
			InvestorEmail: h.InvestorEmail,
			TokensOwned:   h.TokensOwned,
			Amount:        amount,
		}
		sum = sum.Add(amount)
		if h.TokensOwned > holdings[residualIdx].TokensOwned {
			residualIdx = i
		}
	}

	if residual := target.Sub(sum); !residual.IsZero() {
		lines[residualIdx].Amount = lines[residualIdx].Amount.Add(residual)
	}

	return &Report{
		PayoutPerToken: perToken,
		TotalTokens:    totalTokens,
		TotalAmount:    target,
		Lines:          lines,
	}, nil
}

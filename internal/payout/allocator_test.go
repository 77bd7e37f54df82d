package payout

import (
	"testing"

	"agritoken-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(tokens ...int64) []domain.Holding {
	holdings := make([]domain.Holding, len(tokens))
	for i, n := range tokens {
		holdings[i] = domain.Holding{
			HoldingID:   uuid.New(),
			TokensOwned: n,
			Position:    int64(i + 1),
		}
	}
	return holdings
}

func sumLines(r *Report) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range r.Lines {
		sum = sum.Add(l.Amount)
	}
	return sum
}

func TestAllocate_EvenSplit(t *testing.T) {
	holdings := fixture(100, 250, 650)
	report, err := Allocate(decimal.NewFromFloat(1000.00), holdings)
	require.NoError(t, err)

	assert.True(t, report.PayoutPerToken.Equal(decimal.RequireFromString("1.0000")),
		"payoutPerToken = %s", report.PayoutPerToken)
	assert.Equal(t, int64(1000), report.TotalTokens)
	assert.True(t, report.Lines[0].Amount.Equal(decimal.RequireFromString("100.00")))
	assert.True(t, report.Lines[1].Amount.Equal(decimal.RequireFromString("250.00")))
	assert.True(t, report.Lines[2].Amount.Equal(decimal.RequireFromString("650.00")))
	assert.True(t, sumLines(report).Equal(decimal.RequireFromString("1000.00")))
}

func TestAllocate_ResidualCentToFirstOnTie(t *testing.T) {
	holdings := fixture(1, 1, 1)
	report, err := Allocate(decimal.NewFromFloat(1.00), holdings)
	require.NoError(t, err)

	assert.True(t, report.PayoutPerToken.Equal(decimal.RequireFromString("0.3333")),
		"payoutPerToken = %s", report.PayoutPerToken)
	// Raw shares 0.3333 round to 0.33 each; the missing cent goes to the
	// first holding by insertion order since all tokensOwned tie.
	assert.True(t, report.Lines[0].Amount.Equal(decimal.RequireFromString("0.34")))
	assert.True(t, report.Lines[1].Amount.Equal(decimal.RequireFromString("0.33")))
	assert.True(t, report.Lines[2].Amount.Equal(decimal.RequireFromString("0.33")))
	assert.True(t, sumLines(report).Equal(decimal.RequireFromString("1.00")))
}

func TestAllocate_ResidualGoesToLargestHolder(t *testing.T) {
	holdings := fixture(1, 5, 1)
	report, err := Allocate(decimal.NewFromFloat(1.00), holdings)
	require.NoError(t, err)

	// perToken = 1/7 = 0.1429; shares 0.14 / 0.71 / 0.14 = 0.99.
	assert.True(t, report.Lines[1].Amount.Equal(decimal.RequireFromString("0.72")),
		"largest holder absorbs the residual, got %s", report.Lines[1].Amount)
	assert.True(t, sumLines(report).Equal(decimal.RequireFromString("1.00")))
}

func TestAllocate_ConservationAcrossFixtures(t *testing.T) {
	cases := []struct {
		name   string
		tokens []int64
		amount string
	}{
		{"three_uneven", []int64{3, 7, 11}, "100.00"},
		{"prime_supply", []int64{13, 17, 19, 23}, "999.99"},
		{"single_holder", []int64{42}, "1234.56"},
		{"many_small", []int64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, "0.97"},
		{"cent_amount", []int64{100, 200}, "0.01"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			amount := decimal.RequireFromString(tc.amount)
			report, err := Allocate(amount, fixture(tc.tokens...))
			require.NoError(t, err)
			assert.True(t, sumLines(report).Equal(amount.Round(2)),
				"sum %s != total %s", sumLines(report), amount)
		})
	}
}

func TestAllocate_Deterministic(t *testing.T) {
	holdings := fixture(3, 7, 11, 11, 2)
	amount := decimal.RequireFromString("55.55")

	first, err := Allocate(amount, holdings)
	require.NoError(t, err)
	second, err := Allocate(amount, holdings)
	require.NoError(t, err)

	require.Len(t, second.Lines, len(first.Lines))
	for i := range first.Lines {
		assert.Equal(t, first.Lines[i].HoldingID, second.Lines[i].HoldingID)
		assert.True(t, first.Lines[i].Amount.Equal(second.Lines[i].Amount))
	}
}

func TestAllocate_NoHoldings(t *testing.T) {
	_, err := Allocate(decimal.NewFromInt(100), nil)
	assert.ErrorIs(t, err, ErrNoHoldings)

	// Holdings present but zero tokens owned in total.
	_, err = Allocate(decimal.NewFromInt(100), []domain.Holding{{HoldingID: uuid.New()}})
	assert.ErrorIs(t, err, ErrNoHoldings)
}

func TestAllocate_InvalidAmount(t *testing.T) {
	_, err := Allocate(decimal.Zero, fixture(10))
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = Allocate(decimal.NewFromInt(-5), fixture(10))
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

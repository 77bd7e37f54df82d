package payout

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"agritoken-backend/internal/domain"
	"agritoken-backend/internal/ledger"
	"agritoken-backend/internal/pkg/farmlock"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupPayoutTest(t *testing.T) (*Service, *gorm.DB, domain.FarmRecord) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.FarmRecord{}, &domain.Holding{}, &domain.PayoutEvent{}, &domain.Transaction{},
	))

	farm := domain.FarmRecord{
		FarmName:    "Langs Farm",
		FarmerEmail: "langs@farm.example",
		TotalTokens: 1000,
		Status:      domain.FarmStatusTokenized,
	}
	require.NoError(t, db.Create(&farm).Error)

	led := &ledger.Service{DB: db}
	svc := &Service{DB: db, Ledger: led, Locks: farmlock.NewRegistry()}
	return svc, db, farm
}

func seedHoldings(t *testing.T, svc *Service, farm domain.FarmRecord, tokens ...int64) {
	t.Helper()
	for i, n := range tokens {
		_, err := svc.Ledger.Append(context.Background(), domain.Holding{
			FarmID:        farm.FarmID,
			InvestorEmail: string(rune('a'+i)) + "@invest.example",
			TokensOwned:   n,
		})
		require.NoError(t, err)
	}
}

func TestDistribute_AppliesAndPersistsEvent(t *testing.T) {
	svc, db, farm := setupPayoutTest(t)
	seedHoldings(t, svc, farm, 100, 250, 650)

	report, err := svc.Distribute(context.Background(), DistributeInput{
		FarmID:       farm.FarmID,
		PayoutAmount: decimal.NewFromFloat(1000.00),
		PayoutDate:   "2026-03-01",
		Description:  "Harvest payout",
	})
	require.NoError(t, err)
	assert.True(t, report.PayoutPerToken.Equal(decimal.RequireFromString("1.0000")))

	holdings, err := svc.Ledger.ByFarm(context.Background(), farm.FarmID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, holdings[0].TotalPayoutsReceived)
	assert.Equal(t, 250.0, holdings[1].TotalPayoutsReceived)
	assert.Equal(t, 650.0, holdings[2].TotalPayoutsReceived)
	for _, h := range holdings {
		assert.NotNil(t, h.LastPayoutAt)
	}

	events, err := svc.History(context.Background(), farm.FarmID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 1000.0, events[0].TotalAmount)
	assert.Equal(t, "Harvest payout", events[0].Description)

	// The persisted breakdown reproduces the report.
	var lines []Line
	require.NoError(t, json.Unmarshal(events[0].Breakdown, &lines))
	require.Len(t, lines, 3)
	assert.Equal(t, report.Lines[0].HoldingID, lines[0].HoldingID)
	assert.True(t, lines[2].Amount.Equal(decimal.RequireFromString("650.00")))

	var audits []domain.Transaction
	require.NoError(t, db.Where("farm_id = ? AND type = ?", farm.FarmID, domain.TxTypePayout).Find(&audits).Error)
	assert.Len(t, audits, 1)
}

func TestDistribute_RepeatedEventsAccumulate(t *testing.T) {
	svc, _, farm := setupPayoutTest(t)
	seedHoldings(t, svc, farm, 100, 900)

	for i := 0; i < 3; i++ {
		_, err := svc.Distribute(context.Background(), DistributeInput{
			FarmID:       farm.FarmID,
			PayoutAmount: decimal.NewFromFloat(500.00),
			PayoutDate:   "2026-03-01",
		})
		require.NoError(t, err)
	}

	holdings, err := svc.Ledger.ByFarm(context.Background(), farm.FarmID)
	require.NoError(t, err)
	assert.Equal(t, 150.0, holdings[0].TotalPayoutsReceived)
	assert.Equal(t, 1350.0, holdings[1].TotalPayoutsReceived)
}

func TestDistribute_NoHoldingsWritesNothing(t *testing.T) {
	svc, db, farm := setupPayoutTest(t)

	_, err := svc.Distribute(context.Background(), DistributeInput{
		FarmID:       farm.FarmID,
		PayoutAmount: decimal.NewFromFloat(100.00),
	})
	assert.ErrorIs(t, err, ErrNoHoldings)

	var count int64
	require.NoError(t, db.Model(&domain.PayoutEvent{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDistribute_UnknownFarm(t *testing.T) {
	svc, _, _ := setupPayoutTest(t)
	_, err := svc.Distribute(context.Background(), DistributeInput{
		FarmID:       uuid.New(),
		PayoutAmount: decimal.NewFromFloat(100.00),
	})
	assert.ErrorIs(t, err, ledger.ErrFarmNotFound)
}

func TestDistribute_InvalidAmount(t *testing.T) {
	svc, _, farm := setupPayoutTest(t)
	seedHoldings(t, svc, farm, 100)
	_, err := svc.Distribute(context.Background(), DistributeInput{
		FarmID:       farm.FarmID,
		PayoutAmount: decimal.Zero,
	})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

// Concurrent distributions against one farm must serialize: after N payouts
// of the same amount every holding holds exactly N times its single-event
// share, never a duplicated or torn update.
func TestDistribute_ConcurrentSameFarmSerializes(t *testing.T) {
	svc, _, farm := setupPayoutTest(t)
	seedHoldings(t, svc, farm, 100, 250, 650)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Distribute(context.Background(), DistributeInput{
				FarmID:       farm.FarmID,
				PayoutAmount: decimal.NewFromFloat(1000.00),
				PayoutDate:   "2026-03-01",
			})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	holdings, err := svc.Ledger.ByFarm(context.Background(), farm.FarmID)
	require.NoError(t, err)
	assert.Equal(t, float64(100*n), holdings[0].TotalPayoutsReceived)
	assert.Equal(t, float64(250*n), holdings[1].TotalPayoutsReceived)
	assert.Equal(t, float64(650*n), holdings[2].TotalPayoutsReceived)

	events, err := svc.History(context.Background(), farm.FarmID)
	require.NoError(t, err)
	assert.Len(t, events, n)
}

package farms

import (
	"context"
	"fmt"
	"testing"

	"agritoken-backend/internal/assets"
	"agritoken-backend/internal/domain"
	"agritoken-backend/internal/pkg/apperr"
	"agritoken-backend/internal/pkg/farmlock"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// stubLedger is an assets.Ledger double with scriptable outcomes.
type stubLedger struct {
	createCalls int
	createRef   assets.AssetRef
	createErr   error
	transferRef assets.TxRef
	transferErr error
}

func (s *stubLedger) CreateAsset(ctx context.Context, p assets.CreateAssetParams) (assets.AssetRef, error) {
	s.createCalls++
	if s.createErr != nil {
		return "", s.createErr
	}
	return s.createRef, nil
}

func (s *stubLedger) Transfer(ctx context.Context, p assets.TransferParams) (assets.TxRef, error) {
	if s.transferErr != nil {
		return "", s.transferErr
	}
	return s.transferRef, nil
}

func setupFarmsTest(t *testing.T) (*Service, *stubLedger, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.FarmRecord{}, &domain.Holding{}))
	stub := &stubLedger{createRef: "745123"}
	return &Service{DB: db, Assets: stub, Locks: farmlock.NewRegistry()}, stub, db
}

func validSubmission() map[string]interface{} {
	return map[string]interface{}{
		"Farm Name":             "Langs Farm",
		"Farmer Email":          "langs@farm.example",
		"Wallet Address":        "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567ABCDEFGHIJKLMNOPQRSTUVWXYZ",
		"Number of Tokens":      float64(1000),
		"Price per Token (USD)": 12.5,
		"Token Name":            "Langs Maize Token",
		"Token Unit":            "LANMAI",
	}
}

func TestCreate_NormalizesAndStores(t *testing.T) {
	svc, _, _ := setupFarmsTest(t)
	farm, err := svc.Create(context.Background(), validSubmission())
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, farm.FarmID)
	assert.Equal(t, domain.FarmStatusPending, farm.Status)
	assert.Equal(t, int64(1000), farm.TokensAvailable())
	assert.Nil(t, farm.AssetRef)
}

func TestCreate_ValidationFailures(t *testing.T) {
	svc, _, _ := setupFarmsTest(t)

	cases := []struct {
		name  string
		mut   func(map[string]interface{})
		field string
	}{
		{"missing_name", func(m map[string]interface{}) { delete(m, "Farm Name") }, "farm_name"},
		{"bad_email", func(m map[string]interface{}) { m["Farmer Email"] = "nope" }, "farmer_email"},
		{"bad_wallet", func(m map[string]interface{}) { m["Wallet Address"] = "short" }, "wallet_address"},
		{"zero_tokens", func(m map[string]interface{}) { m["Number of Tokens"] = float64(0) }, "total_tokens"},
		{"negative_price", func(m map[string]interface{}) { m["Price per Token (USD)"] = -1.0 }, "price_per_token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := validSubmission()
			tc.mut(raw)
			_, err := svc.Create(context.Background(), raw)
			var aerr *apperr.Error
			require.ErrorAs(t, err, &aerr)
			assert.Equal(t, tc.field, aerr.Field)
			assert.Equal(t, apperr.Validation, aerr.Kind)
		})
	}
}

func TestTokenize_AttachesAssetRef(t *testing.T) {
	svc, stub, _ := setupFarmsTest(t)
	farm, err := svc.Create(context.Background(), validSubmission())
	require.NoError(t, err)

	tokenized, err := svc.Tokenize(context.Background(), farm.FarmID)
	require.NoError(t, err)
	require.NotNil(t, tokenized.AssetRef)
	assert.Equal(t, "745123", *tokenized.AssetRef)
	assert.Equal(t, domain.FarmStatusTokenized, tokenized.Status)
	assert.NotNil(t, tokenized.TokenizedAt)
	assert.Equal(t, 1, stub.createCalls)
}

func TestTokenize_RejectsRetokenization(t *testing.T) {
	svc, stub, _ := setupFarmsTest(t)
	farm, err := svc.Create(context.Background(), validSubmission())
	require.NoError(t, err)

	_, err = svc.Tokenize(context.Background(), farm.FarmID)
	require.NoError(t, err)

	_, err = svc.Tokenize(context.Background(), farm.FarmID)
	assert.ErrorIs(t, err, ErrAlreadyTokenized)
	assert.Equal(t, 1, stub.createCalls, "no duplicate asset minted")
}

func TestTokenize_IndeterminateCommitsNothing(t *testing.T) {
	svc, stub, _ := setupFarmsTest(t)
	farm, err := svc.Create(context.Background(), validSubmission())
	require.NoError(t, err)

	stub.createErr = fmt.Errorf("%w: request timed out", assets.ErrIndeterminate)
	_, err = svc.Tokenize(context.Background(), farm.FarmID)
	assert.ErrorIs(t, err, assets.ErrIndeterminate)

	reloaded, err := svc.Get(context.Background(), farm.FarmID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.AssetRef)
	assert.Equal(t, domain.FarmStatusPending, reloaded.Status)
}

func TestUpdate_CannotShrinkSupplyBelowSold(t *testing.T) {
	svc, _, db := setupFarmsTest(t)
	farm, err := svc.Create(context.Background(), validSubmission())
	require.NoError(t, err)

	farm.TokensSold = 600
	require.NoError(t, db.Save(farm).Error)

	raw := validSubmission()
	raw["Number of Tokens"] = float64(500)
	_, err = svc.Update(context.Background(), farm.FarmID, raw)
	assert.ErrorIs(t, err, ErrSupplyBelowSold)
}

func TestUpdate_KeepsTokenizedStatus(t *testing.T) {
	svc, _, _ := setupFarmsTest(t)
	ctx := context.Background()
	farm, err := svc.Create(ctx, validSubmission())
	require.NoError(t, err)
	_, err = svc.Tokenize(ctx, farm.FarmID)
	require.NoError(t, err)

	// No status key in the edit: lifecycle state must survive the update.
	raw := validSubmission()
	raw["Farm Location"] = "Nakuru County"
	updated, err := svc.Update(ctx, farm.FarmID, raw)
	require.NoError(t, err)
	assert.Equal(t, domain.FarmStatusTokenized, updated.Status)
	assert.Equal(t, "Nakuru County", updated.Location)
	require.NotNil(t, updated.AssetRef)

	// An explicit pending status cannot undo tokenization either.
	raw = validSubmission()
	raw["status"] = domain.FarmStatusPending
	updated, err = svc.Update(ctx, farm.FarmID, raw)
	require.NoError(t, err)
	assert.Equal(t, domain.FarmStatusTokenized, updated.Status)

	// Other explicit transitions still apply.
	raw = validSubmission()
	raw["status"] = domain.FarmStatusActive
	updated, err = svc.Update(ctx, farm.FarmID, raw)
	require.NoError(t, err)
	assert.Equal(t, domain.FarmStatusActive, updated.Status)
}

func TestDelete_Terminal(t *testing.T) {
	svc, _, _ := setupFarmsTest(t)
	farm, err := svc.Create(context.Background(), validSubmission())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), farm.FarmID))
	_, err = svc.Get(context.Background(), farm.FarmID)
	assert.ErrorIs(t, err, ErrFarmNotFound)

	assert.ErrorIs(t, svc.Delete(context.Background(), farm.FarmID), ErrFarmNotFound)
}

func TestStats(t *testing.T) {
	svc, _, _ := setupFarmsTest(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, validSubmission())
	require.NoError(t, err)
	second := validSubmission()
	second["Farm Name"] = "Green Acres"
	second["Number of Tokens"] = float64(500)
	second["Price per Token (USD)"] = 10.0
	_, err = svc.Create(ctx, second)
	require.NoError(t, err)

	_, err = svc.Tokenize(ctx, first.FarmID)
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalFarms)
	assert.Equal(t, int64(1), stats.TokenizedFarms)
	assert.Equal(t, int64(1), stats.PendingFarms)
	assert.Equal(t, int64(1500), stats.TotalTokens)
	assert.Equal(t, 1000*12.5+500*10.0, stats.TotalValueUSD)
}

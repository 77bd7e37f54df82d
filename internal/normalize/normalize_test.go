package normalize

import (
	"encoding/json"
	"testing"

	"agritoken-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func legacyFarm() map[string]interface{} {
	return map[string]interface{}{
		"Farm Name":             "Langs Farm",
		"Farm Email":            "langs@farm.example",
		"Farmer Name":           "Lang Smith",
		"Wallet Address":        "ABCDEFGHIJKLMNOPQRSTUVWXYZ2345672345672345672345672345672A",
		"Farm Size (Acres)":     120.5,
		"Crop Type":             "Maize",
		"Farm Location":         "Nakuru, Kenya",
		"Number of Tokens":      float64(1000),
		"Token Name":            "Langs Maize Token",
		"Token Unit":            "LANMAI",
		"Price per Token (USD)": 12.5,
		"Harvest Date":          "2026-03-01",
		"Payout Method":         "ALGO",
		"ASA ID":                float64(745123),
	}
}

func TestFarm_LegacyAliases(t *testing.T) {
	f, err := Farm(legacyFarm())
	require.NoError(t, err)

	assert.Equal(t, "Langs Farm", f.FarmName)
	assert.Equal(t, "langs@farm.example", f.FarmerEmail) // "Farm Email" alias
	assert.Equal(t, int64(1000), f.TotalTokens)
	assert.Equal(t, int64(1000), f.TokensAvailable()) // defaults to total when nothing sold
	assert.Equal(t, 12.5, f.PricePerToken)
	require.NotNil(t, f.AssetRef)
	assert.Equal(t, "745123", *f.AssetRef) // "ASA ID" alias, numeric coerced
	assert.Equal(t, domain.FarmStatusTokenized, f.Status)
}

func TestFarm_FarmerEmailPreferredOverFarmEmail(t *testing.T) {
	raw := legacyFarm()
	raw["Farmer Email"] = "farmer@farm.example"
	f, err := Farm(raw)
	require.NoError(t, err)
	assert.Equal(t, "farmer@farm.example", f.FarmerEmail)
}

func TestFarm_StatusDefaultsPendingWithoutAsset(t *testing.T) {
	raw := legacyFarm()
	delete(raw, "ASA ID")
	f, err := Farm(raw)
	require.NoError(t, err)
	assert.Nil(t, f.AssetRef)
	assert.Equal(t, domain.FarmStatusPending, f.Status)
}

func TestFarm_InsuranceTypeDefault(t *testing.T) {
	raw := legacyFarm()
	raw["Insurance Enabled"] = true
	f, err := Farm(raw)
	require.NoError(t, err)
	assert.Equal(t, DefaultInsuranceType, f.InsuranceType)
}

func TestFarm_CoercionFailureNamesField(t *testing.T) {
	raw := legacyFarm()
	raw["Number of Tokens"] = "lots"
	_, err := Farm(raw)
	var nerr *Error
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, "Number of Tokens", nerr.Field)
}

func TestFarm_Idempotent(t *testing.T) {
	once, err := Farm(legacyFarm())
	require.NoError(t, err)

	// Round-trip through JSON to get the canonical-key mapping.
	b, err := json.Marshal(once)
	require.NoError(t, err)
	var canonical map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &canonical))

	twice, err := Farm(canonical)
	require.NoError(t, err)
	assert.Equal(t, once.FarmName, twice.FarmName)
	assert.Equal(t, once.FarmerEmail, twice.FarmerEmail)
	assert.Equal(t, once.TotalTokens, twice.TotalTokens)
	assert.Equal(t, once.TokensSold, twice.TokensSold)
	assert.Equal(t, once.PricePerToken, twice.PricePerToken)
	assert.Equal(t, once.AssetRef, twice.AssetRef)
	assert.Equal(t, once.Status, twice.Status)
}

func TestHolding_LegacyAliases(t *testing.T) {
	raw := map[string]interface{}{
		"Investor Email":   "ada@invest.example",
		"Tokens Purchased": float64(250),
		"Amount Invested":  3125.0,
	}
	h, err := Holding(raw)
	require.NoError(t, err)
	assert.Equal(t, "ada@invest.example", h.InvestorEmail)
	assert.Equal(t, int64(250), h.TokensOwned)
	assert.Equal(t, 3125.0, h.CostBasis)
	assert.Equal(t, 3125.0, h.EstValue) // defaults to cost basis
	assert.Equal(t, 0.0, h.TotalPayoutsReceived)
}

func TestHolding_Idempotent(t *testing.T) {
	raw := map[string]interface{}{
		"Investor Email": "ada@invest.example",
		"Tokens Owned":   float64(250),
		"Cost Basis":     3125.0,
	}
	once, err := Holding(raw)
	require.NoError(t, err)

	b, err := json.Marshal(once)
	require.NoError(t, err)
	var canonical map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &canonical))

	twice, err := Holding(canonical)
	require.NoError(t, err)
	assert.Equal(t, once.InvestorEmail, twice.InvestorEmail)
	assert.Equal(t, once.TokensOwned, twice.TokensOwned)
	assert.Equal(t, once.CostBasis, twice.CostBasis)
	assert.Equal(t, once.EstValue, twice.EstValue)
	assert.Equal(t, once.TotalPayoutsReceived, twice.TotalPayoutsReceived)
}

func TestHolding_CoercionFailureNamesField(t *testing.T) {
	raw := map[string]interface{}{
		"Investor Email": "ada@invest.example",
		"Tokens Owned":   "two hundred",
	}
	_, err := Holding(raw)
	var nerr *Error
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, "Tokens Owned", nerr.Field)
}

func TestRecord_Dispatch(t *testing.T) {
	rec, err := Record(map[string]interface{}{
		"Investor Email": "ada@invest.example",
		"Tokens Owned":   float64(10),
	})
	require.NoError(t, err)
	_, ok := rec.(domain.Holding)
	assert.True(t, ok)

	rec, err = Record(legacyFarm())
	require.NoError(t, err)
	_, ok = rec.(domain.FarmRecord)
	assert.True(t, ok)

	_, err = Record(map[string]interface{}{"unrelated": 1})
	assert.Error(t, err)
}

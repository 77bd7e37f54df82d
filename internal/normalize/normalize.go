// Package normalize maps heterogeneous stored farm and holding records onto
// the canonical domain schema. The legacy JSON files went through several
// schema versions ("Asset ID" vs "ASA ID", "Farmer Email" vs "Farm Email",
// snake_case vs title-case keys); each canonical field resolves an ordered
// alias list so the drift stays an auditable table instead of scattered
// lookups.
package normalize

import (
	"fmt"
	"strconv"
	"strings"

	"agritoken-backend/internal/domain"

	"github.com/google/uuid"
)

// DefaultInsuranceType applies when a farm record carries insurance but no type.
const DefaultInsuranceType = "Parametric Weather-Based"

// Alias lists, first match wins. Canonical (json tag) keys come first so a
// normalized record resolves to itself.
var (
	farmNameKeys      = []string{"farm_name", "Farm Name"}
	farmerNameKeys    = []string{"farmer_name", "Farmer Name"}
	farmerEmailKeys   = []string{"farmer_email", "Farmer Email", "Farm Email"}
	farmPhoneKeys     = []string{"farm_phone", "Farm Phone"}
	walletKeys        = []string{"wallet_address", "Wallet Address"}
	locationKeys      = []string{"location", "Farm Location"}
	cropTypeKeys      = []string{"crop_type", "Crop Type"}
	sizeAcresKeys     = []string{"size_acres", "Farm Size (Acres)"}
	totalTokensKeys   = []string{"total_tokens", "Number of Tokens", "Total Tokens"}
	tokensSoldKeys    = []string{"tokens_sold", "Tokens Sold"}
	pricePerTokenKeys = []string{"price_per_token", "Price per Token (USD)", "Price per Token"}
	tokenNameKeys     = []string{"token_name", "Token Name"}
	tokenUnitKeys     = []string{"token_unit", "Token Unit"}
	harvestDateKeys   = []string{"harvest_date", "Harvest Date"}
	payoutMethodKeys  = []string{"payout_method", "Payout Method"}
	insuranceOnKeys   = []string{"insurance_enabled", "Insurance Enabled"}
	insuranceTypeKeys = []string{"insurance_type", "Insurance Type"}
	statusKeys        = []string{"status", "Status"}
	assetRefKeys      = []string{"asset_ref", "Asset ID", "ASA ID"}
	contractKeys      = []string{"contract_address", "Contract Address"}
	farmIDKeys        = []string{"farm_id", "Farm ID"}

	holdingIDKeys     = []string{"holding_id", "Holding ID"}
	investorEmailKeys = []string{"investor_email", "Investor Email", "User Email"}
	tokensOwnedKeys   = []string{"tokens_owned", "Tokens Owned", "Tokens Purchased"}
	costBasisKeys     = []string{"cost_basis", "Cost Basis", "Amount Invested", "Total Paid"}
	estValueKeys      = []string{"est_value", "Estimated Value", "Current Value"}
	realizedPnLKeys   = []string{"realized_pnl", "Realized PnL"}
	totalPayoutsKeys  = []string{"total_payouts_received", "Total Payouts Received", "Payouts Received"}
	positionKeys      = []string{"position", "Position"}
)

// Record normalizes a raw mapping into a FarmRecord or a Holding, deciding
// the variant by discriminating keys: investor records carry an investor
// email, farm records a farm name.
func Record(raw map[string]interface{}) (interface{}, error) {
	if hasAny(raw, investorEmailKeys) {
		return Holding(raw)
	}
	if hasAny(raw, farmNameKeys) {
		return Farm(raw)
	}
	return nil, &Error{Field: "", Reason: "record is neither a farm nor a holding"}
}

// HasStatus reports whether the raw record explicitly carries a status key.
// Farm fills a default status when none is present; callers that must not
// overwrite an existing lifecycle state check this before applying it.
func HasStatus(raw map[string]interface{}) bool {
	return hasAny(raw, statusKeys)
}

// Farm normalizes a raw farm record. Pure; idempotent over its own output.
func Farm(raw map[string]interface{}) (domain.FarmRecord, error) {
	var f domain.FarmRecord
	var err error

	if f.FarmID, err = uuidField(raw, farmIDKeys); err != nil {
		return domain.FarmRecord{}, err
	}
	f.FarmName = strField(raw, farmNameKeys)
	f.FarmerName = strField(raw, farmerNameKeys)
	f.FarmerEmail = strField(raw, farmerEmailKeys)
	f.FarmPhone = strField(raw, farmPhoneKeys)
	f.WalletAddress = strField(raw, walletKeys)
	f.Location = strField(raw, locationKeys)
	f.CropType = strField(raw, cropTypeKeys)
	if f.SizeAcres, err = floatField(raw, sizeAcresKeys, 0); err != nil {
		return domain.FarmRecord{}, err
	}
	if f.TotalTokens, err = intField(raw, totalTokensKeys, 0); err != nil {
		return domain.FarmRecord{}, err
	}
	if f.TokensSold, err = intField(raw, tokensSoldKeys, 0); err != nil {
		return domain.FarmRecord{}, err
	}
	if f.PricePerToken, err = floatField(raw, pricePerTokenKeys, 0); err != nil {
		return domain.FarmRecord{}, err
	}
	f.TokenName = strField(raw, tokenNameKeys)
	f.TokenUnit = strField(raw, tokenUnitKeys)
	f.HarvestDate = strField(raw, harvestDateKeys)
	f.PayoutMethod = strField(raw, payoutMethodKeys)
	f.InsuranceEnabled = boolField(raw, insuranceOnKeys)
	f.InsuranceType = strField(raw, insuranceTypeKeys)
	if f.InsuranceEnabled && f.InsuranceType == "" {
		f.InsuranceType = DefaultInsuranceType
	}
	if ref := strField(raw, assetRefKeys); ref != "" {
		f.AssetRef = &ref
	}
	if ca := strField(raw, contractKeys); ca != "" {
		f.ContractAddress = &ca
	}
	f.Status = strField(raw, statusKeys)
	if f.Status == "" {
		if f.AssetRef != nil {
			f.Status = domain.FarmStatusTokenized
		} else {
			f.Status = domain.FarmStatusPending
		}
	}
	return f, nil
}

// Holding normalizes a raw holding record. Pure; idempotent over its own output.
func Holding(raw map[string]interface{}) (domain.Holding, error) {
	var h domain.Holding
	var err error

	if h.HoldingID, err = uuidField(raw, holdingIDKeys); err != nil {
		return domain.Holding{}, err
	}
	if h.FarmID, err = uuidField(raw, farmIDKeys); err != nil {
		return domain.Holding{}, err
	}
	h.InvestorEmail = strField(raw, investorEmailKeys)
	if h.TokensOwned, err = intField(raw, tokensOwnedKeys, 0); err != nil {
		return domain.Holding{}, err
	}
	if h.CostBasis, err = floatField(raw, costBasisKeys, 0); err != nil {
		return domain.Holding{}, err
	}
	// Legacy records carry no mark; a fresh holding is worth what was paid.
	if h.EstValue, err = floatField(raw, estValueKeys, h.CostBasis); err != nil {
		return domain.Holding{}, err
	}
	if h.RealizedPnL, err = floatField(raw, realizedPnLKeys, 0); err != nil {
		return domain.Holding{}, err
	}
	if h.TotalPayoutsReceived, err = floatField(raw, totalPayoutsKeys, 0); err != nil {
		return domain.Holding{}, err
	}
	if h.Position, err = intField(raw, positionKeys, 0); err != nil {
		return domain.Holding{}, err
	}
	return h, nil
}

func hasAny(raw map[string]interface{}, keys []string) bool {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
				continue
			}
			return true
		}
	}
	return false
}

func firstPresent(raw map[string]interface{}, keys []string) (string, interface{}, bool) {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
				continue
			}
			return k, v, true
		}
	}
	return "", nil, false
}

func strField(raw map[string]interface{}, keys []string) string {
	_, v, ok := firstPresent(raw, keys)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		// Legacy "Asset ID" is numeric; keep integral values unpadded.
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func intField(raw map[string]interface{}, keys []string, def int64) (int64, error) {
	key, v, ok := firstPresent(raw, keys)
	if !ok {
		return def, nil
	}
	switch t := v.(type) {
	case int64:
		return t, nil
	case int:
		return int64(t), nil
	case float64:
		if t != float64(int64(t)) {
			return 0, &Error{Field: key, Value: v, Reason: "not an integer"}
		}
		return int64(t), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0, &Error{Field: key, Value: v, Reason: "not an integer"}
		}
		return n, nil
	default:
		return 0, &Error{Field: key, Value: v, Reason: "not an integer"}
	}
}

func floatField(raw map[string]interface{}, keys []string, def float64) (float64, error) {
	key, v, ok := firstPresent(raw, keys)
	if !ok {
		return def, nil
	}
	switch t := v.(type) {
	case float64:
		return t, nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, &Error{Field: key, Value: v, Reason: "not a number"}
		}
		return f, nil
	default:
		return 0, &Error{Field: key, Value: v, Reason: "not a number"}
	}
}

func boolField(raw map[string]interface{}, keys []string) bool {
	_, v, ok := firstPresent(raw, keys)
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.EqualFold(strings.TrimSpace(t), "true")
	default:
		return false
	}
}

func uuidField(raw map[string]interface{}, keys []string) (uuid.UUID, error) {
	key, v, ok := firstPresent(raw, keys)
	if !ok {
		return uuid.Nil, nil
	}
	s, isStr := v.(string)
	if !isStr {
		return uuid.Nil, &Error{Field: key, Value: v, Reason: "not a UUID"}
	}
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, &Error{Field: key, Value: v, Reason: "not a UUID"}
	}
	return id, nil
}

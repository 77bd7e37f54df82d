package farms

import (
	"context"
	"time"

	"agritoken-backend/internal/assets"
	"agritoken-backend/internal/domain"
	"agritoken-backend/internal/normalize"
	"agritoken-backend/internal/pkg/apperr"
	"agritoken-backend/internal/pkg/farmlock"
	"agritoken-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Service owns the farm store: CRUD, lifecycle transitions and tokenization.
type Service struct {
	DB     *gorm.DB
	Assets assets.Ledger
	Locks  *farmlock.Registry
}

// Create validates and stores a new farm submission. Raw payloads may arrive
// under any historical key schema; they pass through the normalizer first.
func (s *Service) Create(ctx context.Context, raw map[string]interface{}) (*domain.FarmRecord, error) {
	farm, err := normalize.Farm(raw)
	if err != nil {
		return nil, err
	}
	if err := validateFarm(&farm); err != nil {
		return nil, err
	}
	farm.FarmID = uuid.Nil // store assigns identity
	farm.TokensSold = 0
	farm.AssetRef = nil
	farm.ContractAddress = nil
	farm.TokenizedAt = nil
	farm.Status = domain.FarmStatusPending

	if err := s.DB.WithContext(ctx).Create(&farm).Error; err != nil {
		return nil, err
	}
	return &farm, nil
}

// List returns all farms.
func (s *Service) List(ctx context.Context) ([]domain.FarmRecord, error) {
	var farms []domain.FarmRecord
	if err := s.DB.WithContext(ctx).Order("created_at ASC").Find(&farms).Error; err != nil {
		return nil, err
	}
	return farms, nil
}

// Get returns one farm by id.
func (s *Service) Get(ctx context.Context, farmID uuid.UUID) (*domain.FarmRecord, error) {
	var farm domain.FarmRecord
	if err := s.DB.WithContext(ctx).Where("farm_id = ?", farmID).First(&farm).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrFarmNotFound
		}
		return nil, err
	}
	return &farm, nil
}

// Update applies edits to a farm's descriptive fields and status. Identity,
// sold-token count and the asset reference are not editable here.
func (s *Service) Update(ctx context.Context, farmID uuid.UUID, raw map[string]interface{}) (*domain.FarmRecord, error) {
	edits, err := normalize.Farm(raw)
	if err != nil {
		return nil, err
	}

	unlock := s.Locks.Lock(farmID)
	defer unlock()

	farm, err := s.Get(ctx, farmID)
	if err != nil {
		return nil, err
	}
	if edits.TotalTokens < farm.TokensSold {
		return nil, ErrSupplyBelowSold
	}

	farm.FarmName = edits.FarmName
	farm.FarmerName = edits.FarmerName
	farm.FarmerEmail = edits.FarmerEmail
	farm.FarmPhone = edits.FarmPhone
	farm.WalletAddress = edits.WalletAddress
	farm.Location = edits.Location
	farm.CropType = edits.CropType
	farm.SizeAcres = edits.SizeAcres
	farm.TotalTokens = edits.TotalTokens
	farm.PricePerToken = edits.PricePerToken
	farm.TokenName = edits.TokenName
	farm.TokenUnit = edits.TokenUnit
	farm.HarvestDate = edits.HarvestDate
	farm.PayoutMethod = edits.PayoutMethod
	farm.InsuranceEnabled = edits.InsuranceEnabled
	farm.InsuranceType = edits.InsuranceType
	// Status only changes on an explicit edit; the normalizer fills a default
	// for absent keys, and an edit never undoes tokenization.
	if normalize.HasStatus(raw) && edits.Status != "" {
		if !(farm.Tokenized() && edits.Status == domain.FarmStatusPending) {
			farm.Status = edits.Status
		}
	}
	if err := validateFarm(farm); err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Save(farm).Error; err != nil {
		return nil, err
	}
	return farm, nil
}

// Delete removes a farm record. Deletion is an explicit terminal operation;
// nothing else in the lifecycle drops records.
func (s *Service) Delete(ctx context.Context, farmID uuid.UUID) error {
	unlock := s.Locks.Lock(farmID)
	defer unlock()

	res := s.DB.WithContext(ctx).Where("farm_id = ?", farmID).Delete(&domain.FarmRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrFarmNotFound
	}
	return nil
}

// Tokenize mints the on-chain asset for a farm and attaches the AssetRef.
//
// CreateAsset is not idempotent, so re-tokenization is rejected outright, and
// the AssetRef is persisted immediately once known. The gateway round-trip
// happens with no farm lock held; the lock covers only the local
// read-modify-write on either side of it. An Indeterminate outcome commits
// nothing locally.
func (s *Service) Tokenize(ctx context.Context, farmID uuid.UUID) (*domain.FarmRecord, error) {
	unlock := s.Locks.Lock(farmID)
	farm, err := s.Get(ctx, farmID)
	if err != nil {
		unlock()
		return nil, err
	}
	if farm.Tokenized() {
		unlock()
		return nil, ErrAlreadyTokenized
	}
	params := assets.CreateAssetParams{
		Name:        farm.TokenName,
		UnitName:    farm.TokenUnit,
		TotalSupply: farm.TotalTokens,
		Decimals:    0,
		Controllers: []string{farm.WalletAddress},
	}
	if params.Name == "" {
		params.Name = farm.FarmName
	}
	unlock()

	ref, err := s.Assets.CreateAsset(ctx, params)
	if err != nil {
		return nil, err
	}

	unlock = s.Locks.Lock(farmID)
	defer unlock()

	farm, err = s.Get(ctx, farmID)
	if err != nil {
		return nil, err
	}
	if farm.Tokenized() {
		// A concurrent call minted first; ours created a duplicate asset that
		// operations must reclaim. Surface the conflict rather than overwrite.
		log.Error().Str("farm_id", farmID.String()).Str("orphan_asset", string(ref)).
			Msg("duplicate asset minted by concurrent tokenization")
		return nil, ErrAlreadyTokenized
	}

	refStr := string(ref)
	now := time.Now().UTC()
	farm.AssetRef = &refStr
	farm.Status = domain.FarmStatusTokenized
	farm.TokenizedAt = &now
	if err := s.DB.WithContext(ctx).Save(farm).Error; err != nil {
		return nil, err
	}

	log.Info().Str("farm_id", farmID.String()).Str("asset_ref", refStr).Msg("farm tokenized")
	return farm, nil
}

// Stats aggregates platform-level numbers for the dashboard.
type Stats struct {
	TotalFarms     int64   `json:"total_farms"`
	TokenizedFarms int64   `json:"tokenized_farms"`
	PendingFarms   int64   `json:"pending_farms"`
	TotalTokens    int64   `json:"total_tokens"`
	TotalValueUSD  float64 `json:"total_value_usd"`
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	farms, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := &Stats{TotalFarms: int64(len(farms))}
	for _, f := range farms {
		if f.Tokenized() {
			out.TokenizedFarms++
		}
		out.TotalTokens += f.TotalTokens
		out.TotalValueUSD += float64(f.TotalTokens) * f.PricePerToken
	}
	out.PendingFarms = out.TotalFarms - out.TokenizedFarms
	return out, nil
}

func validateFarm(f *domain.FarmRecord) error {
	if f.FarmName == "" {
		return apperr.Field("farm_name", "Farm name is required")
	}
	if f.FarmerEmail == "" || !validation.IsValidEmail(f.FarmerEmail) {
		return apperr.Field("farmer_email", "A valid farmer email is required")
	}
	if f.WalletAddress != "" && !validation.IsValidWalletAddress(f.WalletAddress) {
		return apperr.Field("wallet_address", "Invalid Algorand wallet address format")
	}
	if f.TotalTokens <= 0 {
		return apperr.Field("total_tokens", "Total tokens must be a positive integer")
	}
	if f.PricePerToken < 0 {
		return apperr.Field("price_per_token", "Price per token cannot be negative")
	}
	return nil
}

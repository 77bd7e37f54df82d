// Package invest handles investor acquisitions: on-chain token transfer,
// then the holdings ledger append, plus portfolio views.
package invest

import (
	"context"

	"agritoken-backend/internal/assets"
	"agritoken-backend/internal/domain"
	"agritoken-backend/internal/ledger"
	"agritoken-backend/internal/pkg/farmlock"
	"agritoken-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Service struct {
	DB     *gorm.DB
	Ledger *ledger.Service
	Assets assets.Ledger
	Locks  *farmlock.Registry
}

// AcquireInput is a token purchase request. Tokens are bought at the farm's
// current PricePerToken; the caller has already settled payment.
type AcquireInput struct {
	FarmID        uuid.UUID
	InvestorEmail string
	WalletAddress string
	Tokens        int64
}

// AcquireResult reports the recorded holding and the on-chain transfer.
type AcquireResult struct {
	HoldingID uuid.UUID    `json:"holding_id"`
	Tokens    int64        `json:"tokens"`
	CostBasis float64      `json:"cost_basis"`
	ChainTx   assets.TxRef `json:"chain_tx"`
}

// Acquire validates the purchase, moves tokens on chain and appends the
// holding. The chain transfer happens with no farm lock held; if it fails,
// nothing is recorded locally. The ledger append re-checks supply under the
// per-farm lock, so concurrent acquisitions cannot oversubscribe.
func (s *Service) Acquire(ctx context.Context, in AcquireInput) (*AcquireResult, error) {
	if in.Tokens <= 0 {
		return nil, ledger.ErrInvalidQuantity
	}
	if !validation.IsValidEmail(in.InvestorEmail) {
		return nil, ErrInvalidInvestor
	}
	if !validation.IsValidWalletAddress(in.WalletAddress) {
		return nil, ErrInvalidWallet
	}

	unlock := s.Locks.Lock(in.FarmID)
	farm, err := s.loadFarm(ctx, in.FarmID)
	if err != nil {
		unlock()
		return nil, err
	}
	if !farm.Tokenized() {
		unlock()
		return nil, ErrNotTokenized
	}
	if farm.TokensAvailable() < in.Tokens {
		unlock()
		return nil, ledger.ErrOversubscribed
	}
	assetRef := assets.AssetRef(*farm.AssetRef)
	fromAddr := farm.WalletAddress
	price := farm.PricePerToken
	unlock()

	txRef, err := s.Assets.Transfer(ctx, assets.TransferParams{
		Asset:  assetRef,
		From:   fromAddr,
		To:     in.WalletAddress,
		Amount: in.Tokens,
	})
	if err != nil {
		return nil, err
	}

	cost, _ := decimal.NewFromFloat(price).
		Mul(decimal.NewFromInt(in.Tokens)).
		Round(2).Float64()

	unlock = s.Locks.Lock(in.FarmID)
	defer unlock()

	holdingID, err := s.Ledger.Append(ctx, domain.Holding{
		FarmID:        in.FarmID,
		InvestorEmail: in.InvestorEmail,
		TokensOwned:   in.Tokens,
		CostBasis:     cost,
		EstValue:      cost,
	})
	if err != nil {
		// Tokens already moved on chain; operations must reclaim them.
		log.Error().Str("farm_id", in.FarmID.String()).Str("chain_tx", string(txRef)).
			Err(err).Msg("chain transfer succeeded but ledger append failed")
		return nil, err
	}

	txRefStr := string(txRef)
	audit := domain.Transaction{
		Type:          domain.TxTypeAcquire,
		FarmID:        in.FarmID,
		HoldingID:     &holdingID,
		InvestorEmail: in.InvestorEmail,
		Amount:        cost,
		Tokens:        in.Tokens,
		ChainTxRef:    &txRefStr,
	}
	if err := s.DB.WithContext(ctx).Create(&audit).Error; err != nil {
		return nil, err
	}

	return &AcquireResult{
		HoldingID: holdingID,
		Tokens:    in.Tokens,
		CostBasis: cost,
		ChainTx:   txRef,
	}, nil
}

// Portfolio returns an investor's holdings with their running payout state.
func (s *Service) Portfolio(ctx context.Context, investorEmail string) ([]domain.Holding, error) {
	if !validation.IsValidEmail(investorEmail) {
		return nil, ErrInvalidInvestor
	}
	return s.Ledger.ByInvestor(ctx, investorEmail)
}

// FarmHoldings returns a farm's cap table in insertion order.
func (s *Service) FarmHoldings(ctx context.Context, farmID uuid.UUID) ([]domain.Holding, error) {
	if _, err := s.loadFarm(ctx, farmID); err != nil {
		return nil, err
	}
	return s.Ledger.ByFarm(ctx, farmID)
}

func (s *Service) loadFarm(ctx context.Context, farmID uuid.UUID) (*domain.FarmRecord, error) {
	var farm domain.FarmRecord
	if err := s.DB.WithContext(ctx).Where("farm_id = ?", farmID).First(&farm).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrFarmNotFound
		}
		return nil, err
	}
	return &farm, nil
}

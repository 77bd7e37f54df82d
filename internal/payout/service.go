package payout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"agritoken-backend/internal/domain"
	"agritoken-backend/internal/ledger"
	"agritoken-backend/internal/pkg/farmlock"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Service runs payout events: allocate, then apply to the holdings ledger and
// persist the event row in one transaction.
type Service struct {
	DB     *gorm.DB
	Ledger *ledger.Service
	Locks  *farmlock.Registry
}

// DistributeInput is the payout simulation request.
type DistributeInput struct {
	FarmID       uuid.UUID
	PayoutAmount decimal.Decimal
	PayoutDate   string
	Description  string
}

// Distribute computes the proportional distribution for a farm and records it.
// The per-farm lock serializes concurrent distributions for the same farm;
// the full batch (N holding updates + the event row) commits all-or-nothing.
// Moving actual funds is the caller's concern.
func (s *Service) Distribute(ctx context.Context, in DistributeInput) (*Report, error) {
	unlock := s.Locks.Lock(in.FarmID)
	defer unlock()

	var farm domain.FarmRecord
	if err := s.DB.WithContext(ctx).Where("farm_id = ?", in.FarmID).First(&farm).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ledger.ErrFarmNotFound
		}
		return nil, err
	}

	holdings, err := s.Ledger.ByFarm(ctx, in.FarmID)
	if err != nil {
		return nil, err
	}

	report, err := Allocate(in.PayoutAmount, holdings)
	if err != nil {
		return nil, err
	}

	ts := time.Now().UTC()
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, line := range report.Lines {
			amount, _ := line.Amount.Float64()
			if err := s.Ledger.ApplyPayoutTx(tx, line.HoldingID, amount, ts); err != nil {
				return err
			}
		}

		breakdown, err := json.Marshal(report.Lines)
		if err != nil {
			return err
		}
		totalAmount, _ := report.TotalAmount.Float64()
		perToken, _ := report.PayoutPerToken.Float64()
		event := domain.PayoutEvent{
			FarmID:         in.FarmID,
			TotalAmount:    totalAmount,
			PayoutPerToken: perToken,
			PayoutDate:     in.PayoutDate,
			Description:    in.Description,
			Breakdown:      datatypes.JSON(breakdown),
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}

		audit := domain.Transaction{
			Type:   domain.TxTypePayout,
			FarmID: in.FarmID,
			Amount: totalAmount,
		}
		return tx.Create(&audit).Error
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrBatchApplyFailed, err)
	}

	log.Info().Str("farm_id", in.FarmID.String()).
		Str("total_amount", report.TotalAmount.String()).
		Int("holdings", len(report.Lines)).
		Msg("payout distributed")

	return report, nil
}

// History returns a farm's persisted payout events, newest first.
func (s *Service) History(ctx context.Context, farmID uuid.UUID) ([]domain.PayoutEvent, error) {
	var events []domain.PayoutEvent
	if err := s.DB.WithContext(ctx).
		Where("farm_id = ?", farmID).
		Order("created_at DESC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// Package ledger is the holdings ledger: per-investor-per-farm holding rows
// with append, lookup and payout mutation. All multi-row mutations run inside
// one gorm transaction so a crash leaves either the full change or nothing.
package ledger

import (
	"context"
	"fmt"
	"math"
	"time"

	"agritoken-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

// Append records a new holding for a farm. Rejects non-positive quantities
// and appends that would push the farm's owned tokens past its total supply.
// Also bumps the farm's TokensSold in the same transaction.
func (s *Service) Append(ctx context.Context, h domain.Holding) (uuid.UUID, error) {
	if h.TokensOwned <= 0 {
		return uuid.Nil, ErrInvalidQuantity
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var farm domain.FarmRecord
		if err := tx.Where("farm_id = ?", h.FarmID).First(&farm).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrFarmNotFound
			}
			return err
		}

		var agg struct {
			Owned  int64
			MaxPos int64
		}
		if err := tx.Model(&domain.Holding{}).
			Select("COALESCE(SUM(tokens_owned),0) AS owned, COALESCE(MAX(position),0) AS max_pos").
			Where("farm_id = ?", h.FarmID).
			Scan(&agg).Error; err != nil {
			return err
		}

		if agg.Owned+h.TokensOwned > farm.TotalTokens {
			return ErrOversubscribed
		}

		h.Position = agg.MaxPos + 1
		if err := tx.Create(&h).Error; err != nil {
			return err
		}

		farm.TokensSold += h.TokensOwned
		return tx.Save(&farm).Error
	})
	if err != nil {
		return uuid.Nil, err
	}
	return h.HoldingID, nil
}

// ByFarm returns a farm's holdings in insertion order. The order is stable
// and is the tie-break used when distributing residual payout cents.
func (s *Service) ByFarm(ctx context.Context, farmID uuid.UUID) ([]domain.Holding, error) {
	var holdings []domain.Holding
	if err := s.DB.WithContext(ctx).
		Where("farm_id = ?", farmID).
		Order("position ASC").
		Find(&holdings).Error; err != nil {
		return nil, err
	}
	return holdings, nil
}

// ByInvestor returns every holding recorded under an investor email.
func (s *Service) ByInvestor(ctx context.Context, email string) ([]domain.Holding, error) {
	var holdings []domain.Holding
	if err := s.DB.WithContext(ctx).
		Where("investor_email = ?", email).
		Order("created_at ASC").
		Find(&holdings).Error; err != nil {
		return nil, err
	}
	return holdings, nil
}

// ApplyPayout credits one holding with a payout amount and stamps the time.
func (s *Service) ApplyPayout(ctx context.Context, holdingID uuid.UUID, amount float64, ts time.Time) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.ApplyPayoutTx(tx, holdingID, amount, ts)
	})
}

// ApplyPayoutTx is ApplyPayout within a caller-owned transaction, so one
// payout event touching N holdings commits all-or-nothing.
func (s *Service) ApplyPayoutTx(tx *gorm.DB, holdingID uuid.UUID, amount float64, ts time.Time) error {
	var h domain.Holding
	if err := tx.Where("holding_id = ?", holdingID).First(&h).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrHoldingNotFound
		}
		return err
	}
	h.TotalPayoutsReceived = math.Round((h.TotalPayoutsReceived+amount)*100) / 100
	h.RealizedPnL = math.Round((h.RealizedPnL+amount)*100) / 100
	h.LastPayoutAt = &ts
	return tx.Save(&h).Error
}

// PayoutLine is one holding's share of a payout event.
type PayoutLine struct {
	HoldingID uuid.UUID
	Amount    float64
}

// ApplyPayoutBatch applies all lines in a single transaction; any failing
// line rolls back every other.
func (s *Service) ApplyPayoutBatch(ctx context.Context, lines []PayoutLine, ts time.Time) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, line := range lines {
			if err := s.ApplyPayoutTx(tx, line.HoldingID, line.Amount, ts); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBatchApplyFailed, err)
	}
	return nil
}

// Revalue updates a holding's current mark from a per-token price.
func (s *Service) Revalue(ctx context.Context, holdingID uuid.UUID, markPerToken float64) error {
	var h domain.Holding
	if err := s.DB.WithContext(ctx).Where("holding_id = ?", holdingID).First(&h).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrHoldingNotFound
		}
		return err
	}
	h.EstValue = math.Round(float64(h.TokensOwned)*markPerToken*100) / 100
	return s.DB.WithContext(ctx).Save(&h).Error
}

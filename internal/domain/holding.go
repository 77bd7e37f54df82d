package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Holding is one investor's recorded ownership of tokens in one farm.
// Position is the per-farm insertion order; it is the deterministic tie-break
// order for payout residual assignment, so it must never be rewritten.
type Holding struct {
	HoldingID            uuid.UUID      `gorm:"column:holding_id;type:uuid;primaryKey" json:"holding_id"`
	InvestorEmail        string         `gorm:"column:investor_email;not null;index" json:"investor_email"`
	FarmID               uuid.UUID      `gorm:"column:farm_id;type:uuid;not null;index" json:"farm_id"`
	TokensOwned          int64          `gorm:"column:tokens_owned;not null" json:"tokens_owned"`
	CostBasis            float64        `gorm:"column:cost_basis;type:decimal(18,2);not null;default:0" json:"cost_basis"`
	EstValue             float64        `gorm:"column:est_value;type:decimal(18,2);not null;default:0" json:"est_value"`
	RealizedPnL          float64        `gorm:"column:realized_pnl;type:decimal(18,2);not null;default:0" json:"realized_pnl"`
	TotalPayoutsReceived float64        `gorm:"column:total_payouts_received;type:decimal(18,2);not null;default:0" json:"total_payouts_received"`
	LastPayoutAt         *time.Time     `gorm:"column:last_payout_at" json:"last_payout_at"`
	Position             int64          `gorm:"column:position;not null" json:"position"`
	CreatedAt            time.Time      `json:"createdAt"`
	UpdatedAt            time.Time      `json:"updatedAt"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Holding) TableName() string {
	return "Holdings"
}

func (h *Holding) BeforeCreate(tx *gorm.DB) error {
	if h.HoldingID == uuid.Nil {
		h.HoldingID = uuid.New()
	}
	return nil
}

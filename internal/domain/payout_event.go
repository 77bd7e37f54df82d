package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PayoutEvent records one cash distribution to a farm's holders. Breakdown
// holds the per-holding lines as JSON so a past report can be reproduced
// without re-reading holdings that have since changed.
type PayoutEvent struct {
	EventID        uuid.UUID      `gorm:"column:event_id;type:uuid;primaryKey" json:"event_id"`
	FarmID         uuid.UUID      `gorm:"column:farm_id;type:uuid;not null;index" json:"farm_id"`
	TotalAmount    float64        `gorm:"column:total_amount;type:decimal(18,2);not null" json:"total_amount"`
	PayoutPerToken float64        `gorm:"column:payout_per_token;type:decimal(18,4);not null" json:"payout_per_token"`
	PayoutDate     string         `gorm:"column:payout_date" json:"payout_date"`
	Description    string         `gorm:"column:description" json:"description"`
	Breakdown      datatypes.JSON `gorm:"column:breakdown" json:"breakdown"`
	CreatedAt      time.Time      `json:"createdAt"`
}

func (PayoutEvent) TableName() string {
	return "PayoutEvents"
}

func (e *PayoutEvent) BeforeCreate(tx *gorm.DB) error {
	if e.EventID == uuid.Nil {
		e.EventID = uuid.New()
	}
	return nil
}

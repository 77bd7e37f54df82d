package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Transaction types.
const (
	TxTypeAcquire = "acquire"
	TxTypePayout  = "payout"
)

// Transaction is an audit row for token acquisitions and payout events.
type Transaction struct {
	TxID          uuid.UUID  `gorm:"column:tx_id;type:uuid;primaryKey" json:"tx_id"`
	Type          string     `gorm:"column:type;type:varchar(20);not null" json:"type"`
	FarmID        uuid.UUID  `gorm:"column:farm_id;type:uuid;not null;index" json:"farm_id"`
	HoldingID     *uuid.UUID `gorm:"column:holding_id;type:uuid" json:"holding_id"`
	InvestorEmail string     `gorm:"column:investor_email" json:"investor_email"`
	Amount        float64    `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	Tokens        int64      `gorm:"column:tokens;not null;default:0" json:"tokens"`
	ChainTxRef    *string    `gorm:"column:chain_tx_ref" json:"chain_tx_ref"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func (Transaction) TableName() string {
	return "Transactions"
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.TxID == uuid.Nil {
		t.TxID = uuid.New()
	}
	return nil
}

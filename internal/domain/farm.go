package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Farm lifecycle statuses.
const (
	FarmStatusPending   = "Pending"
	FarmStatusTokenized = "Tokenized"
	FarmStatusActive    = "Active"
	FarmStatusClosed    = "Closed"
)

// FarmRecord is the canonical farm schema. Raw submissions arrive under
// several historical key spellings and are mapped here by the normalize
// package.
type FarmRecord struct {
	FarmID           uuid.UUID      `gorm:"column:farm_id;type:uuid;primaryKey" json:"farm_id"`
	FarmName         string         `gorm:"column:farm_name;not null" json:"farm_name"`
	FarmerName       string         `gorm:"column:farmer_name" json:"farmer_name"`
	FarmerEmail      string         `gorm:"column:farmer_email;not null" json:"farmer_email"`
	FarmPhone        string         `gorm:"column:farm_phone" json:"farm_phone"`
	WalletAddress    string         `gorm:"column:wallet_address" json:"wallet_address"`
	Location         string         `gorm:"column:location" json:"location"`
	CropType         string         `gorm:"column:crop_type" json:"crop_type"`
	SizeAcres        float64        `gorm:"column:size_acres;type:decimal(12,2)" json:"size_acres"`
	TotalTokens      int64          `gorm:"column:total_tokens;not null" json:"total_tokens"`
	TokensSold       int64          `gorm:"column:tokens_sold;not null;default:0" json:"tokens_sold"`
	PricePerToken    float64        `gorm:"column:price_per_token;type:decimal(18,2);not null;default:0" json:"price_per_token"`
	TokenName        string         `gorm:"column:token_name" json:"token_name"`
	TokenUnit        string         `gorm:"column:token_unit" json:"token_unit"`
	HarvestDate      string         `gorm:"column:harvest_date" json:"harvest_date"`
	PayoutMethod     string         `gorm:"column:payout_method" json:"payout_method"`
	InsuranceEnabled bool           `gorm:"column:insurance_enabled;default:false" json:"insurance_enabled"`
	InsuranceType    string         `gorm:"column:insurance_type" json:"insurance_type"`
	Status           string         `gorm:"column:status;not null;default:Pending" json:"status"`
	AssetRef         *string        `gorm:"column:asset_ref" json:"asset_ref"`
	ContractAddress  *string        `gorm:"column:contract_address" json:"contract_address"`
	TokenizedAt      *time.Time     `gorm:"column:tokenized_at" json:"tokenized_at"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (FarmRecord) TableName() string {
	return "Farms"
}

// BeforeCreate: never insert zero UUID for primary key; generate random when not set.
func (f *FarmRecord) BeforeCreate(tx *gorm.DB) error {
	if f.FarmID == uuid.Nil {
		f.FarmID = uuid.New()
	}
	return nil
}

// TokensAvailable is the derived remaining supply (totalTokens - tokensSold).
func (f *FarmRecord) TokensAvailable() int64 {
	return f.TotalTokens - f.TokensSold
}

// Tokenized reports whether an on-chain asset reference has been attached.
func (f *FarmRecord) Tokenized() bool {
	return f.AssetRef != nil && *f.AssetRef != ""
}

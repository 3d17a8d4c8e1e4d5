package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AssetClass selects the pricing path for a holding.
type AssetClass string

const (
	AssetStock  AssetClass = "Stock"
	AssetCrypto AssetClass = "Crypto"
	AssetOther  AssetClass = "Other"
)

// Valid reports whether a is one of the known asset classes.
func (a AssetClass) Valid() bool {
	switch a {
	case AssetStock, AssetCrypto, AssetOther:
		return true
	}
	return false
}

// Holding is a single tracked investment position.
// amount, profit_loss and profit_loss_percentage are derived from the last
// resolved price and are never accepted from clients.
type Holding struct {
	ID                   uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name                 string         `gorm:"column:name;not null" json:"name"`
	Symbol               string         `gorm:"column:symbol" json:"symbol"`
	AssetClass           AssetClass     `gorm:"column:type;not null" json:"type"`
	Quantity             float64        `gorm:"column:quantity;type:decimal(18,8);not null" json:"quantity"`
	PurchasePrice        float64        `gorm:"column:purchase_price;type:decimal(18,8)" json:"purchasePrice"`
	CurrentPrice         float64        `gorm:"column:current_price;type:decimal(18,8)" json:"currentPrice"`
	Amount               float64        `gorm:"column:amount;type:decimal(18,2)" json:"amount"`
	ProfitLoss           float64        `gorm:"column:profit_loss;type:decimal(18,2)" json:"profitLoss"`
	ProfitLossPercentage *float64       `gorm:"column:profit_loss_percentage;type:decimal(18,4)" json:"profitLossPercentage"`
	LastUpdated          *time.Time     `gorm:"column:last_updated" json:"lastUpdated"`
	Notes                string         `gorm:"column:notes" json:"notes"`
	Tags                 datatypes.JSON `gorm:"column:tags" json:"tags"`
	CreatedAt            time.Time      `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt            time.Time      `gorm:"column:updated_at" json:"updatedAt"`
}

func (Holding) TableName() string {
	return "holdings"
}

// BeforeCreate: never insert zero UUID for primary key; generate random when not set.
func (h *Holding) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// TagList decodes the JSON tags column. A missing or malformed column reads
// as no tags.
func (h *Holding) TagList() []string {
	if len(h.Tags) == 0 {
		return nil
	}
	var tags []string
	if err := json.Unmarshal(h.Tags, &tags); err != nil {
		return nil
	}
	return tags
}

// SetTags encodes tags into the JSON column; nil clears it.
func (h *Holding) SetTags(tags []string) {
	if tags == nil {
		h.Tags = nil
		return
	}
	b, _ := json.Marshal(tags)
	h.Tags = datatypes.JSON(b)
}

package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// CachedProduct is a denormalised snapshot of a remote product.
// At most one exists per remote ID; writes overwrite in place.
type CachedProduct struct {
	ID           int64           `json:"id"`
	ShopID       int64           `json:"shop_id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	CurrentStock int             `json:"current_stock"`
	IsActive     bool            `json:"is_active"`

	// Raw is the full remote representation, kept for fields not modelled here.
	Raw json.RawMessage `json:"-"`

	// CachedAt is when the snapshot was written locally.
	CachedAt time.Time `json:"-"`
}

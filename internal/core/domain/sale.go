package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how a sale was paid.
type PaymentMethod string

// Payment methods accepted by the create-sale endpoint.
const (
	PaymentCash        PaymentMethod = "cash"
	PaymentMobileMoney PaymentMethod = "mobile_money"
	PaymentCard        PaymentMethod = "card"
)

// IsValid returns true if the payment method is recognised.
func (p PaymentMethod) IsValid() bool {
	switch p {
	case PaymentCash, PaymentMobileMoney, PaymentCard:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p PaymentMethod) String() string {
	return string(p)
}

// SaleRequest is the body of the remote create-sale call.
// The same bytes are sent whether the sale goes out live or is replayed.
type SaleRequest struct {
	ShopID        int64         `json:"shop_id" validate:"required,gt=0"`
	PaymentMethod PaymentMethod `json:"payment_method" validate:"required,oneof=cash mobile_money card"`
	CustomerName  string        `json:"customer_name,omitempty" validate:"max=200"`
	CustomerPhone string        `json:"customer_phone,omitempty" validate:"max=20"`
	CustomerEmail string        `json:"customer_email,omitempty" validate:"omitempty,email"`
	Notes         string        `json:"notes,omitempty"`
	Items         []SaleLine    `json:"items" validate:"required,min=1,dive"`
}

// SaleLine is one line item of a sale.
type SaleLine struct {
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	Quantity  int             `json:"quantity" validate:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal `json:"discount"`
}

// Total returns the sum of line subtotals (quantity * unit price - discount).
func (r SaleRequest) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range r.Items {
		sub := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))).Sub(line.Discount)
		total = total.Add(sub)
	}
	return total
}

// PendingSale is a sale created locally before the server has accepted it.
type PendingSale struct {
	// ID is the locally assigned sequential identifier.
	ID int64

	// Payload is the exact create-sale body.
	Payload json.RawMessage

	// Timestamp is when the sale was recorded.
	Timestamp time.Time

	// Synced flips to true once, on confirmed remote acceptance.
	Synced bool
}

// SaleFilter narrows a listing of pending sales.
type SaleFilter struct {
	// Synced, when set, selects only sales with that flag.
	Synced *bool
}

// SaleReceipt reports how a sale was recorded.
type SaleReceipt struct {
	// Offline is true when the sale was stored locally for later replay.
	Offline bool `json:"offline"`

	// LocalID is the PendingSale identifier for offline sales.
	LocalID int64 `json:"local_id,omitempty"`

	// Remote is the server response for sales accepted live.
	Remote json.RawMessage `json:"remote,omitempty"`
}

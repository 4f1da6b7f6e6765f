package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentMethod_IsValid(t *testing.T) {
	assert.True(t, PaymentCash.IsValid())
	assert.True(t, PaymentMobileMoney.IsValid())
	assert.True(t, PaymentCard.IsValid())
	assert.False(t, PaymentMethod("cheque").IsValid())
	assert.False(t, PaymentMethod("").IsValid())
}

func TestSaleRequest_Total(t *testing.T) {
	req := SaleRequest{
		Items: []SaleLine{
			{ProductID: 1, Quantity: 2, UnitPrice: decimal.RequireFromString("4.50")},
			{ProductID: 2, Quantity: 1, UnitPrice: decimal.RequireFromString("10.00"), Discount: decimal.RequireFromString("1.00")},
		},
	}

	assert.True(t, decimal.RequireFromString("18.00").Equal(req.Total()))
}

func TestSaleRequest_JSONFieldNames(t *testing.T) {
	req := SaleRequest{
		ShopID:        3,
		PaymentMethod: PaymentCash,
		Items: []SaleLine{
			{ProductID: 7, Quantity: 1, UnitPrice: decimal.RequireFromString("2.5")},
		},
	}

	data, err := json.Marshal(req)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, float64(3), decoded["shop_id"])
	assert.Equal(t, "cash", decoded["payment_method"])
	assert.NotContains(t, decoded, "customer_email")

	items, ok := decoded["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	line := items[0].(map[string]any)
	assert.Equal(t, float64(7), line["product_id"])
	assert.Equal(t, "2.5", line["unit_price"])
}

func TestNotice_Persistent(t *testing.T) {
	assert.True(t, Notice{Kind: NoticeOffline}.Persistent())
}

func TestConnectivitySourceType_IsValid(t *testing.T) {
	assert.True(t, ConnectivityNoop.IsValid())
	assert.True(t, ConnectivityManual.IsValid())
	assert.True(t, ConnectivityFile.IsValid())
	assert.False(t, ConnectivitySourceType("dbus").IsValid())
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, "http://localhost:8000/api", s.API.BaseURL)
	assert.Equal(t, ConnectivityManual, s.Connectivity.Source)
	assert.Positive(t, s.OnlineNoticeTTL)
	assert.NotEmpty(t, s.ServerAddr)
}

package remote

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/custodia-labs/tillsync/internal/core/domain"
)

// productDTO is the backend's product representation. The serializer
// names the foreign key "shop"; "shop_id" is accepted too.
type productDTO struct {
	ID           int64           `json:"id"`
	Shop         *int64          `json:"shop"`
	ShopID       *int64          `json:"shop_id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	CurrentStock int             `json:"current_stock"`
	IsActive     *bool           `json:"is_active"`
}

type productPage struct {
	Results []json.RawMessage `json:"results"`
}

// decodeProducts parses a bare array or a paginated page of products.
// Each product keeps its full JSON as Raw.
func decodeProducts(body []byte) ([]domain.CachedProduct, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return []domain.CachedProduct{}, nil
	}

	var raws []json.RawMessage
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil, fmt.Errorf("decode products: %w", err)
		}
	case '{':
		var page productPage
		if err := json.Unmarshal(trimmed, &page); err != nil {
			return nil, fmt.Errorf("decode product page: %w", err)
		}
		raws = page.Results
	default:
		return nil, fmt.Errorf("decode products: unexpected body %q", truncate(trimmed, 32))
	}

	products := make([]domain.CachedProduct, 0, len(raws))
	for _, raw := range raws {
		var dto productDTO
		if err := json.Unmarshal(raw, &dto); err != nil {
			return nil, fmt.Errorf("decode product: %w", err)
		}
		p := domain.CachedProduct{
			ID:           dto.ID,
			SKU:          dto.SKU,
			Name:         dto.Name,
			UnitPrice:    dto.UnitPrice,
			CurrentStock: dto.CurrentStock,
			IsActive:     dto.IsActive == nil || *dto.IsActive,
			Raw:          append(json.RawMessage(nil), raw...),
		}
		switch {
		case dto.ShopID != nil:
			p.ShopID = *dto.ShopID
		case dto.Shop != nil:
			p.ShopID = *dto.Shop
		}
		products = append(products, p)
	}
	return products, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

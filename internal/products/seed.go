package products

import "github.com/shopspring/decimal"

// SeedProducts retorna o catálogo inicial da loja
func SeedProducts() []ProductRequest {
	upsell := "vitamin-c-depot-500-250"

	return []ProductRequest{
		{
			ID:             "vitamin-d-90-100",
			Name:           "D-vitamin, 90ug, 100 stk",
			Price:          decimal.NewFromInt(116),
			Currency:       "DKK",
			RebateQuantity: 3,
			RebatePercent:  10,
		},
		{
			ID:             "vitamin-c-500-250",
			Name:           "C-vitamin, 500mg, 250 stk",
			Price:          decimal.NewFromInt(150),
			Currency:       "DKK",
			RebateQuantity: 2,
			RebatePercent:  25,
			UpsellProduct:  &upsell,
		},
	}
}

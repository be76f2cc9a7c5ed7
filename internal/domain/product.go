package domain

import "github.com/shopspring/decimal"

type Product struct {
	ID    int64           `json:"id"`
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image"`
}

// Stock is the available quantity of a product at the moment it was fetched.
type Stock struct {
	ID     int64 `json:"id"`
	Amount int   `json:"amount"`
}

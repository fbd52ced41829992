package model

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// prices travel as JSON numbers, as the browser client expects
	decimal.MarshalJSONWithoutQuotes = true
}

// LowStockThreshold is the stock level under which a product counts as low on stock.
const LowStockThreshold = 10

// Stock levels and quantities are stored as 32-bit integers.
const (
	MaxStock = math.MaxInt32
	MinStock = math.MinInt32
)

// PriceScale is the number of decimal places a price is kept with.
const PriceScale = 2

// MaxPrice is the largest price the store can hold.
var MaxPrice = decimal.RequireFromString("9999999999.99")

// UnknownProductName is shown for sales whose product no longer exists.
const UnknownProductName = "Unknown"

type Product struct {
	ID        ID              `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	ImageURL  string          `json:"imageUrl"`
	CreatedAt time.Time       `json:"-"`
	UpdatedAt time.Time       `json:"-"`
}

// IsLowStock reports whether the product has fewer than LowStockThreshold units.
func (p Product) IsLowStock() bool {
	return p.Stock < LowStockThreshold
}

// PlaceholderImageURL returns the image shown for products created without one.
func PlaceholderImageURL(id ID) string {
	return fmt.Sprintf("https://picsum.photos/seed/%s/200", id)
}

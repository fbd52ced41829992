package event

import (
	"github.com/shopspring/decimal"
)

const (
	TopicProductCreated = "product.created"
	TopicSaleRecorded   = "sale.recorded"
)

type ProductCreatedEvent struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
}

type SaleRecordedEvent struct {
	SaleID         string `json:"sale_id"`
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	Quantity       int    `json:"quantity"`
	SaleDate       string `json:"sale_date"`
	RemainingStock int    `json:"remaining_stock"`
}

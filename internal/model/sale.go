package model

import "time"

// Sale is an immutable record of units of a product sold on a date.
// ProductID may reference a product that has since been deleted.
type Sale struct {
	ID        ID        `json:"id"`
	ProductID ID        `json:"productId"`
	Quantity  int       `json:"quantity"`
	SaleDate  Date      `json:"saleDate"`
	CreatedAt time.Time `json:"-"`
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tuanvumaihuynh/coop-inventory/internal/model"
	"github.com/tuanvumaihuynh/coop-inventory/internal/storage/db"
)

type AppendSaleParams struct {
	ProductID model.ID
	Quantity  int
	SaleDate  model.Date
}

// SaleRepository is the sales ledger. Sales are never updated or deleted.
type SaleRepository interface {
	AppendSale(ctx context.Context, params AppendSaleParams) (model.Sale, error)
	// ListAllSales returns the ledger newest first: by sale date, then by allocation order.
	ListAllSales(ctx context.Context) ([]model.Sale, error)
}

type saleRepository struct {
	db db.DB
}

func NewSaleRepository(db db.DB) SaleRepository {
	return &saleRepository{
		db: db,
	}
}

func (r saleRepository) AppendSale(ctx context.Context, params AppendSaleParams) (model.Sale, error) {
	// v7 ids sort by allocation time, which keeps "id DESC" meaningful
	uid, err := uuid.NewV7()
	if err != nil {
		return model.Sale{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	sale := model.Sale{
		ID:        model.ID(uid.String()),
		ProductID: params.ProductID,
		Quantity:  params.Quantity,
		SaleDate:  params.SaleDate,
		CreatedAt: time.Now(),
	}

	if _, err := r.db.Exec(ctx, `
		INSERT INTO sales (id, product_id, quantity, sale_date, created_at)
		VALUES (@id, @product_id, @quantity, @sale_date::date, @created_at)`,
		pgx.NamedArgs{
			"id":         sale.ID.String(),
			"product_id": sale.ProductID.String(),
			"quantity":   sale.Quantity,
			"sale_date":  sale.SaleDate.String(),
			"created_at": sale.CreatedAt,
		},
	); err != nil {
		return model.Sale{}, fmt.Errorf("insert sale: %w", err)
	}

	return sale, nil
}

func (r saleRepository) ListAllSales(ctx context.Context) ([]model.Sale, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, product_id, quantity, sale_date::text, created_at
		FROM sales
		ORDER BY sale_date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list all sales: %w", err)
	}

	sales, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Sale, error) {
		var sale model.Sale
		err := row.Scan(&sale.ID, &sale.ProductID, &sale.Quantity, &sale.SaleDate, &sale.CreatedAt)
		return sale, err
	})
	if err != nil {
		return nil, fmt.Errorf("collect sales: %w", err)
	}

	return sales, nil
}

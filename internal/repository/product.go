package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/coop-inventory/internal/model"
	"github.com/tuanvumaihuynh/coop-inventory/internal/storage/db"
)

type CreateProductParams struct {
	Name     string
	Category string
	Price    decimal.Decimal
	Stock    int
	ImageURL string
}

type UpdateProductParams struct {
	Name     string
	Category string
	Price    decimal.Decimal
	Stock    int
	ImageURL string
}

type ProductRepository interface {
	CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error)
	ListAllProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id model.ID) (model.Product, error)
	// GetProductForUpdate reads the product and keeps it locked until the
	// surrounding transaction ends.
	GetProductForUpdate(ctx context.Context, id model.ID) (model.Product, error)
	UpdateProduct(ctx context.Context, id model.ID, params UpdateProductParams) (model.Product, error)
	DeleteProduct(ctx context.Context, id model.ID) error
	// AdjustStock adds delta to the product stock. It fails with ErrNegativeStock
	// instead of letting the stock drop below zero and with ErrStockOutOfRange
	// when the result would exceed model.MaxStock.
	AdjustStock(ctx context.Context, id model.ID, delta int) (model.Product, error)
}

// numericValueOutOfRange is the SQLSTATE of integer and numeric overflows.
const numericValueOutOfRange = "22003"

const productColumns = `id, name, category, price::text, stock, image_url, created_at, updated_at`

type productRepository struct {
	db db.DB
}

func NewProductRepository(db db.DB) ProductRepository {
	return &productRepository{
		db: db,
	}
}

func (r productRepository) CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error) {
	uid, err := uuid.NewV7()
	if err != nil {
		return model.Product{}, fmt.Errorf("generate uuid v7: %w", err)
	}
	id := model.ID(uid.String())

	if err := checkStockRange(params.Stock); err != nil {
		return model.Product{}, err
	}

	imageURL := params.ImageURL
	if imageURL == "" {
		imageURL = model.PlaceholderImageURL(id)
	}

	now := time.Now()
	row := r.db.QueryRow(ctx, `
		INSERT INTO products (id, name, category, price, stock, image_url, created_at, updated_at)
		VALUES (@id, @name, @category, @price::numeric, @stock, @image_url, @now, @now)
		RETURNING `+productColumns,
		pgx.NamedArgs{
			"id":        id.String(),
			"name":      params.Name,
			"category":  params.Category,
			"price":     params.Price.String(),
			"stock":     params.Stock,
			"image_url": imageURL,
			"now":       now,
		},
	)

	product, err := scanProduct(row)
	if err != nil {
		return model.Product{}, fmt.Errorf("insert product: %w", err)
	}

	return product, nil
}

func (r productRepository) ListAllProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list all products: %w", err)
	}

	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Product, error) {
		return scanProduct(row)
	})
	if err != nil {
		return nil, fmt.Errorf("collect products: %w", err)
	}

	return products, nil
}

func (r productRepository) GetProduct(ctx context.Context, id model.ID) (model.Product, error) {
	return r.getProduct(ctx, id, "")
}

func (r productRepository) GetProductForUpdate(ctx context.Context, id model.ID) (model.Product, error) {
	return r.getProduct(ctx, id, " FOR UPDATE")
}

func (r productRepository) getProduct(ctx context.Context, id model.ID, lockClause string) (model.Product, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`+lockClause, id.String())

	product, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Product{}, ErrNotFound
	}
	if err != nil {
		return model.Product{}, fmt.Errorf("get product: %w", err)
	}

	return product, nil
}

func (r productRepository) UpdateProduct(ctx context.Context, id model.ID, params UpdateProductParams) (model.Product, error) {
	if err := checkStockRange(params.Stock); err != nil {
		return model.Product{}, err
	}

	imageURL := params.ImageURL
	if imageURL == "" {
		imageURL = model.PlaceholderImageURL(id)
	}

	row := r.db.QueryRow(ctx, `
		UPDATE products
		SET
			name       = @name,
			category   = @category,
			price      = @price::numeric,
			stock      = @stock,
			image_url  = @image_url,
			updated_at = @now
		WHERE id = @id
		RETURNING `+productColumns,
		pgx.NamedArgs{
			"id":        id.String(),
			"name":      params.Name,
			"category":  params.Category,
			"price":     params.Price.String(),
			"stock":     params.Stock,
			"image_url": imageURL,
			"now":       time.Now(),
		},
	)

	product, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Product{}, ErrNotFound
	}
	if err != nil {
		return model.Product{}, fmt.Errorf("update product: %w", err)
	}

	return product, nil
}

func (r productRepository) DeleteProduct(ctx context.Context, id model.ID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r productRepository) AdjustStock(ctx context.Context, id model.ID, delta int) (model.Product, error) {
	if err := checkStockRange(delta); err != nil {
		return model.Product{}, err
	}

	// the guard makes check and write a single statement
	row := r.db.QueryRow(ctx, `
		UPDATE products
		SET
			stock      = stock + @delta,
			updated_at = @now
		WHERE id = @id AND stock + @delta >= 0
		RETURNING `+productColumns,
		pgx.NamedArgs{
			"id":    id.String(),
			"delta": delta,
			"now":   time.Now(),
		},
	)

	product, err := scanProduct(row)
	if err == nil {
		return product, nil
	}
	if isOutOfRange(err) {
		return model.Product{}, ErrStockOutOfRange
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Product{}, fmt.Errorf("adjust stock: %w", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id.String()).Scan(&exists); err != nil {
		return model.Product{}, fmt.Errorf("check product exists: %w", err)
	}
	if !exists {
		return model.Product{}, ErrNotFound
	}

	return model.Product{}, ErrNegativeStock
}

func scanProduct(row pgx.Row) (model.Product, error) {
	var (
		product model.Product
		price   string
	)
	if err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Category,
		&price,
		&product.Stock,
		&product.ImageURL,
		&product.CreatedAt,
		&product.UpdatedAt,
	); err != nil {
		return model.Product{}, err
	}

	d, err := decimal.NewFromString(price)
	if err != nil {
		return model.Product{}, fmt.Errorf("parse price %q: %w", price, err)
	}
	product.Price = d

	return product, nil
}

func checkStockRange(stock int) error {
	if stock > model.MaxStock || stock < model.MinStock {
		return fmt.Errorf("%w: %d", ErrStockOutOfRange, stock)
	}
	return nil
}

func isOutOfRange(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == numericValueOutOfRange
}

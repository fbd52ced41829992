package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/coop-inventory/internal/apperr"
	"github.com/tuanvumaihuynh/coop-inventory/internal/event"
	"github.com/tuanvumaihuynh/coop-inventory/internal/model"
	"github.com/tuanvumaihuynh/coop-inventory/internal/repository"
	"github.com/tuanvumaihuynh/coop-inventory/pkg/keymutex"
	"github.com/tuanvumaihuynh/coop-inventory/pkg/validator"
)

// Bounds below mirror model.MaxPrice, model.MinStock and model.MaxStock.

// CreateProductParams holds a new product. Price is rounded to
// model.PriceScale places.
type CreateProductParams struct {
	Name     string          `validate:"required"`
	Category string          `validate:"required"`
	Price    decimal.Decimal `validate:"gte=0,lte=9999999999.99"`
	Stock    int             `validate:"gte=0,lte=2147483647"`
	ImageURL string          `validate:"omitempty,url"`
}

// UpdateProductParams replaces every editable field. Stock is taken as
// given: direct edits may set it below zero.
type UpdateProductParams struct {
	Name     string          `validate:"required"`
	Category string          `validate:"required"`
	Price    decimal.Decimal `validate:"gte=0,lte=9999999999.99"`
	Stock    int             `validate:"gte=-2147483648,lte=2147483647"`
	ImageURL string          `validate:"omitempty,url"`
}

type addStockParams struct {
	ID       model.ID `validate:"required"`
	Quantity int      `validate:"gt=0,lte=2147483647"`
}

type ProductService interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error)
	UpdateProduct(ctx context.Context, id model.ID, params UpdateProductParams) (model.Product, error)
	// DeleteProduct removes the product. Its sales stay in the ledger.
	DeleteProduct(ctx context.Context, id model.ID) error
	// AddStock replenishes the product by quantity units.
	AddStock(ctx context.Context, id model.ID, quantity int) (model.Product, error)
}

type productService struct {
	store     repository.Store
	locks     *keymutex.KeyMutex
	validator validator.Validator
}

// NewProductService creates the product service. locks must be shared with
// the sale service so stock changes of one product never interleave.
func NewProductService(
	store repository.Store,
	locks *keymutex.KeyMutex,
) ProductService {
	return &productService{
		store:     store,
		locks:     locks,
		validator: validator.MustNewDefaultValidator(),
	}
}

func (s *productService) ListProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.store.Products().ListAllProducts(ctx)
	if err != nil {
		return nil, apperr.StorageErr.WrapParent(fmt.Errorf("product repository list all products: %w", err))
	}

	return products, nil
}

func (s *productService) CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error) {
	if err := s.validator.Validate(params); err != nil {
		return model.Product{}, apperr.ValidationErr.WrapParent(err)
	}

	var product model.Product
	if err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		product, err = tx.Products().CreateProduct(ctx, repository.CreateProductParams{
			Name:     params.Name,
			Category: params.Category,
			Price:    params.Price.Round(model.PriceScale),
			Stock:    params.Stock,
			ImageURL: params.ImageURL,
		})
		if err != nil {
			return fmt.Errorf("product repository create product: %w", err)
		}

		return writeEvent(ctx, tx, event.TopicProductCreated, product.ID.String(), event.ProductCreatedEvent{
			ProductID: product.ID.String(),
			Name:      product.Name,
			Category:  product.Category,
			Price:     product.Price,
			Stock:     product.Stock,
		})
	}); err != nil {
		return model.Product{}, classifyErr(err)
	}

	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id model.ID, params UpdateProductParams) (model.Product, error) {
	if err := s.validator.Validate(params); err != nil {
		return model.Product{}, apperr.ValidationErr.WrapParent(err)
	}

	unlock := s.locks.Lock(id.String())
	defer unlock()

	product, err := s.store.Products().UpdateProduct(ctx, id, repository.UpdateProductParams{
		Name:     params.Name,
		Category: params.Category,
		Price:    params.Price.Round(model.PriceScale),
		Stock:    params.Stock,
		ImageURL: params.ImageURL,
	})
	if errors.Is(err, repository.ErrNotFound) {
		return model.Product{}, apperr.NewProductNotFound(id)
	}
	if err != nil {
		return model.Product{}, apperr.StorageErr.WrapParent(fmt.Errorf("product repository update product: %w", err))
	}

	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id model.ID) error {
	unlock := s.locks.Lock(id.String())
	defer unlock()

	err := s.store.Products().DeleteProduct(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NewProductNotFound(id)
	}
	if err != nil {
		return apperr.StorageErr.WrapParent(fmt.Errorf("product repository delete product: %w", err))
	}

	return nil
}

func (s *productService) AddStock(ctx context.Context, id model.ID, quantity int) (model.Product, error) {
	if err := s.validator.Validate(addStockParams{ID: id, Quantity: quantity}); err != nil {
		return model.Product{}, apperr.ValidationErr.WrapParent(err)
	}

	unlock := s.locks.Lock(id.String())
	defer unlock()

	product, err := s.store.Products().AdjustStock(ctx, id, quantity)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Product{}, apperr.NewProductNotFound(id)
	}
	if errors.Is(err, repository.ErrStockOutOfRange) || errors.Is(err, repository.ErrNegativeStock) {
		return model.Product{}, apperr.NewStockOutOfRange(id, quantity)
	}
	if err != nil {
		return model.Product{}, apperr.StorageErr.WrapParent(fmt.Errorf("product repository adjust stock: %w", err))
	}

	return product, nil
}

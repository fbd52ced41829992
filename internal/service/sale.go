package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tuanvumaihuynh/coop-inventory/internal/apperr"
	"github.com/tuanvumaihuynh/coop-inventory/internal/event"
	"github.com/tuanvumaihuynh/coop-inventory/internal/model"
	"github.com/tuanvumaihuynh/coop-inventory/internal/repository"
	"github.com/tuanvumaihuynh/coop-inventory/internal/storage/cache"
	"github.com/tuanvumaihuynh/coop-inventory/pkg/keymutex"
	"github.com/tuanvumaihuynh/coop-inventory/pkg/validator"
)

type RecordSaleParams struct {
	ProductID model.ID `validate:"required"`
	Quantity  int      `validate:"gt=0,lte=2147483647"`
	// SaleDate defaults to today when empty.
	SaleDate model.Date `validate:"omitempty,isodate"`
	// IdempotencyKey is optional. While a key is reserved, requests carrying
	// it again are rejected.
	IdempotencyKey string `validate:"max=255"`
}

type SaleService interface {
	ListSales(ctx context.Context) ([]model.Sale, error)
	// RecordSale takes quantity units of the product out of stock and appends
	// the matching sale. Either both happen or neither does.
	RecordSale(ctx context.Context, params RecordSaleParams) (model.Sale, error)
}

type saleService struct {
	store       repository.Store
	idempotency cache.IdempotencyStore
	locks       *keymutex.KeyMutex
	validator   validator.Validator
	logger      *slog.Logger
	now         func() time.Time
}

func NewSaleService(
	store repository.Store,
	idempotency cache.IdempotencyStore,
	locks *keymutex.KeyMutex,
	logger *slog.Logger,
) SaleService {
	return &saleService{
		store:       store,
		idempotency: idempotency,
		locks:       locks,
		validator:   validator.MustNewDefaultValidator(),
		logger:      logger.With(slog.String("service", "sale")),
		now:         time.Now,
	}
}

func (s *saleService) ListSales(ctx context.Context) ([]model.Sale, error) {
	sales, err := s.store.Sales().ListAllSales(ctx)
	if err != nil {
		return nil, apperr.StorageErr.WrapParent(fmt.Errorf("sale repository list all sales: %w", err))
	}

	return sales, nil
}

func (s *saleService) RecordSale(ctx context.Context, params RecordSaleParams) (model.Sale, error) {
	if err := s.validator.Validate(params); err != nil {
		return model.Sale{}, apperr.ValidationErr.WrapParent(err)
	}

	saleDate := params.SaleDate
	if saleDate == "" {
		saleDate = model.DateOf(s.now())
	}

	if key := params.IdempotencyKey; key != "" {
		ok, err := s.idempotency.Reserve(ctx, key)
		if err != nil {
			return model.Sale{}, apperr.StorageErr.WrapParent(err)
		}
		if !ok {
			return model.Sale{}, apperr.DuplicateRequestErr.WithMeta("idempotencyKey", key)
		}
	}

	sale, remaining, err := s.recordSale(ctx, params.ProductID, params.Quantity, saleDate)
	if err != nil {
		if key := params.IdempotencyKey; key != "" {
			if relErr := s.idempotency.Release(context.WithoutCancel(ctx), key); relErr != nil {
				s.logger.WarnContext(ctx, "error releasing idempotency key",
					slog.String("idempotency_key", key),
					slog.Any("error", relErr),
				)
			}
		}
		return model.Sale{}, err
	}

	s.logger.InfoContext(ctx, "sale recorded",
		slog.String("sale_id", sale.ID.String()),
		slog.String("product_id", sale.ProductID.String()),
		slog.Int("quantity", sale.Quantity),
		slog.Int("remaining_stock", remaining),
	)

	return sale, nil
}

// recordSale runs check, decrement and append as one transaction while
// holding the lock of the product. It returns the sale and the stock left.
func (s *saleService) recordSale(ctx context.Context, productID model.ID, quantity int, saleDate model.Date) (model.Sale, int, error) {
	unlock := s.locks.Lock(productID.String())
	defer unlock()

	// once started the sale commits or rolls back, whatever the caller does
	ctx = context.WithoutCancel(ctx)

	var (
		sale      model.Sale
		remaining int
	)
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		product, err := tx.Products().GetProductForUpdate(ctx, productID)
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NewProductNotFound(productID)
		}
		if err != nil {
			return fmt.Errorf("product repository get product for update: %w", err)
		}

		if product.Stock < quantity {
			return apperr.NewInsufficientStock(productID, quantity, product.Stock)
		}

		updated, err := tx.Products().AdjustStock(ctx, productID, -quantity)
		switch {
		case errors.Is(err, repository.ErrNegativeStock):
			return apperr.NewInsufficientStock(productID, quantity, product.Stock)
		case errors.Is(err, repository.ErrNotFound):
			return apperr.NewProductNotFound(productID)
		case err != nil:
			return fmt.Errorf("product repository adjust stock: %w", err)
		}
		remaining = updated.Stock

		sale, err = tx.Sales().AppendSale(ctx, repository.AppendSaleParams{
			ProductID: productID,
			Quantity:  quantity,
			SaleDate:  saleDate,
		})
		if err != nil {
			return fmt.Errorf("sale repository append sale: %w", err)
		}

		return writeEvent(ctx, tx, event.TopicSaleRecorded, productID.String(), event.SaleRecordedEvent{
			SaleID:         sale.ID.String(),
			ProductID:      productID.String(),
			ProductName:    product.Name,
			Quantity:       quantity,
			SaleDate:       saleDate.String(),
			RemainingStock: remaining,
		})
	})
	if err != nil {
		return model.Sale{}, 0, classifyErr(err)
	}

	return sale, remaining, nil
}

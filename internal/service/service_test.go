package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/coop-inventory/internal/log"
	"github.com/tuanvumaihuynh/coop-inventory/internal/model"
	"github.com/tuanvumaihuynh/coop-inventory/internal/repository"
	"github.com/tuanvumaihuynh/coop-inventory/internal/storage/cache"
	"github.com/tuanvumaihuynh/coop-inventory/internal/storage/memory"
	"github.com/tuanvumaihuynh/coop-inventory/pkg/keymutex"
)

var testNow = time.Date(2024, 3, 10, 15, 4, 5, 0, time.UTC)

type services struct {
	store    repository.Store
	products ProductService
	sales    SaleService
	reports  ReportService
}

func newServices(store repository.Store) services {
	locks := keymutex.New()

	sales := NewSaleService(store, cache.NewMemoryIdempotencyStore(time.Hour), locks, log.Discard())
	sales.(*saleService).now = func() time.Time { return testNow }

	reports := NewReportService(store)
	reports.(*reportService).now = func() time.Time { return testNow }

	return services{
		store:    store,
		products: NewProductService(store, locks),
		sales:    sales,
		reports:  reports,
	}
}

func (s services) createProduct(t *testing.T, name, price string, stock int) model.Product {
	t.Helper()

	product, err := s.products.CreateProduct(context.Background(), CreateProductParams{
		Name:     name,
		Category: "Groceries",
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
	})
	require.NoError(t, err)
	return product
}

func (s services) stockOf(t *testing.T, id model.ID) int {
	t.Helper()

	product, err := s.store.Products().GetProduct(context.Background(), id)
	require.NoError(t, err)
	return product.Stock
}

func (s services) ledgerLen(t *testing.T) int {
	t.Helper()

	sales, err := s.sales.ListSales(context.Background())
	require.NoError(t, err)
	return len(sales)
}

func (s services) outboxTopics(t *testing.T) []string {
	t.Helper()

	msgs, err := s.store.OutboxMsgs().ListUnprocessedOutboxMsgs(context.Background(), repository.ListUnprocessedOutboxMsgsParams{BatchSize: 1000})
	require.NoError(t, err)

	topics := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		topics = append(topics, msg.Topic)
	}
	return topics
}

// faultyStore wraps a store and fails the ledger append, and optionally the
// rollback that follows.
type faultyStore struct {
	repository.Store
	appendErr   error
	rollbackErr error
}

func (f *faultyStore) Sales() repository.SaleRepository {
	return &faultySales{SaleRepository: f.Store.Sales(), appendErr: f.appendErr}
}

func (f *faultyStore) WithTx(ctx context.Context, txFunc func(repository.Store) error) error {
	err := f.Store.WithTx(ctx, func(tx repository.Store) error {
		return txFunc(&faultyStore{Store: tx, appendErr: f.appendErr})
	})
	if err != nil && f.rollbackErr != nil {
		return errors.Join(err, fmt.Errorf("%w: %w", repository.ErrRollbackFailed, f.rollbackErr))
	}
	return err
}

type faultySales struct {
	repository.SaleRepository
	appendErr error
}

func (f *faultySales) AppendSale(ctx context.Context, params repository.AppendSaleParams) (model.Sale, error) {
	if f.appendErr != nil {
		return model.Sale{}, f.appendErr
	}
	return f.SaleRepository.AppendSale(ctx, params)
}

func newMemoryServices() services {
	return newServices(memory.New())
}

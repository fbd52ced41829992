package repository

import (
	"context"
	"errors"

	"github.com/tuanvumaihuynh/coop-inventory/internal/storage/db"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrNegativeStock is returned when a stock adjustment would leave a product below zero.
	ErrNegativeStock = errors.New("stock would become negative")
	// ErrStockOutOfRange is returned when a stock level does not fit the stock column.
	ErrStockOutOfRange = errors.New("stock out of range")
	// ErrRollbackFailed marks transaction errors whose rollback failed as well.
	ErrRollbackFailed = db.ErrRollbackFailed
)

// Store groups the repositories of one storage backend.
type Store interface {
	Products() ProductRepository
	Sales() SaleRepository
	OutboxMsgs() OutboxMsgRepository

	// WithTx runs txFunc against a transactional view of the store. Everything
	// written through the view is committed if txFunc returns nil and discarded
	// otherwise. Calling WithTx on a view joins the surrounding transaction.
	WithTx(ctx context.Context, txFunc func(Store) error) error
}

var _ Store = (*postgresStore)(nil)

type postgresStore struct {
	db db.DB
}

// NewPostgresStore creates a Store backed by the given database.
func NewPostgresStore(db db.DB) Store {
	return &postgresStore{db: db}
}

func (s *postgresStore) Products() ProductRepository {
	return NewProductRepository(s.db)
}

func (s *postgresStore) Sales() SaleRepository {
	return NewSaleRepository(s.db)
}

func (s *postgresStore) OutboxMsgs() OutboxMsgRepository {
	return NewOutboxMsgRepository(s.db)
}

func (s *postgresStore) WithTx(ctx context.Context, txFunc func(Store) error) error {
	return s.db.WithTx(ctx, func(tx db.DB) error {
		return txFunc(&postgresStore{db: tx})
	})
}

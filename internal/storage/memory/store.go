// Package memory provides a process-local repository.Store. It backs the
// standalone server when no database is configured and the service tests.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/tuanvumaihuynh/coop-inventory/internal/model"
	"github.com/tuanvumaihuynh/coop-inventory/internal/repository"
	"github.com/tuanvumaihuynh/coop-inventory/internal/storage/db"
)

var (
	_ repository.Store = (*Store)(nil)
	_ db.HealthChecker = (*Store)(nil)
)

type productRecord struct {
	product model.Product
	seq     uint64
}

type saleRecord struct {
	sale model.Sale
	seq  uint64
}

type state struct {
	products  map[model.ID]productRecord
	sales     []saleRecord
	outbox    []outboxRecord
	productID uint64
	saleID    uint64
}

// snapshot copies the outbox since processed messages are deleted in place.
func (s *state) snapshot() state {
	return state{
		products:  maps.Clone(s.products),
		sales:     s.sales,
		outbox:    append([]outboxRecord(nil), s.outbox...),
		productID: s.productID,
		saleID:    s.saleID,
	}
}

func (s *state) restore(snap state) {
	s.products = snap.products
	s.sales = s.sales[:len(snap.sales)]
	s.outbox = snap.outbox
	s.productID = snap.productID
	s.saleID = snap.saleID
}

// Store keeps products, sales and outbox messages in memory. Ids are
// allocated from per-collection counters and rendered as decimal strings.
type Store struct {
	mu sync.RWMutex
	st state
}

// New creates an empty store.
func New() *Store {
	return &Store{
		st: state{products: make(map[model.ID]productRecord)},
	}
}

func (s *Store) Products() repository.ProductRepository {
	return &productRepository{view: view{store: s}}
}

func (s *Store) Sales() repository.SaleRepository {
	return &saleRepository{view: view{store: s}}
}

func (s *Store) OutboxMsgs() repository.OutboxMsgRepository {
	return &outboxMsgRepository{view: view{store: s}}
}

// WithTx holds the store write lock for the whole of txFunc. Writes made
// through the view are undone if txFunc fails.
func (s *Store) WithTx(ctx context.Context, txFunc func(repository.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.st.snapshot()
	if err := txFunc(&txStore{view: view{store: s, tx: true}}); err != nil {
		s.st.restore(snap)
		return err
	}

	return nil
}

func (s *Store) IsHealthy(context.Context) (bool, error) {
	return true, nil
}

// view gives repositories access to the state. Inside a transaction the
// write lock is already held and the view must not lock again.
type view struct {
	store *Store
	tx    bool
}

func (v view) read(fn func(st *state)) {
	if !v.tx {
		v.store.mu.RLock()
		defer v.store.mu.RUnlock()
	}
	fn(&v.store.st)
}

func (v view) write(fn func(st *state)) {
	if !v.tx {
		v.store.mu.Lock()
		defer v.store.mu.Unlock()
	}
	fn(&v.store.st)
}

type txStore struct {
	view view
}

func (t *txStore) Products() repository.ProductRepository {
	return &productRepository{view: t.view}
}

func (t *txStore) Sales() repository.SaleRepository {
	return &saleRepository{view: t.view}
}

func (t *txStore) OutboxMsgs() repository.OutboxMsgRepository {
	return &outboxMsgRepository{view: t.view}
}

func (t *txStore) WithTx(_ context.Context, txFunc func(repository.Store) error) error {
	return txFunc(t)
}

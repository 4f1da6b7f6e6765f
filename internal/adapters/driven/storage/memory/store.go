package memory

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/custodia-labs/tillsync/internal/core/domain"
	"github.com/custodia-labs/tillsync/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.OfflineStore = (*Store)(nil)

// Store is an in-memory implementation of driven.OfflineStore.
// It is the degraded-mode fallback when the SQLite store cannot be opened:
// everything works, but nothing survives a restart.
type Store struct {
	mu sync.RWMutex

	sales      map[int64]domain.PendingSale
	nextSaleID int64

	products map[int64]domain.CachedProduct

	queue       map[int64]domain.QueueItem
	nextQueueID int64

	deadLetters []domain.DeadLetter
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		sales:    make(map[int64]domain.PendingSale),
		products: make(map[int64]domain.CachedProduct),
		queue:    make(map[int64]domain.QueueItem),
	}
}

// SaleStore returns the sales collection.
func (s *Store) SaleStore() driven.SaleStore { return &saleStore{s} }

// ProductStore returns the product cache.
func (s *Store) ProductStore() driven.ProductStore { return &productStore{s} }

// QueueStore returns the sync queue.
func (s *Store) QueueStore() driven.QueueStore { return &queueStore{s} }

// DeadLetterStore returns the dead-letter collection.
func (s *Store) DeadLetterStore() driven.DeadLetterStore { return &deadLetterStore{s} }

// Reset wipes the product cache.
func (s *Store) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = make(map[int64]domain.CachedProduct)
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out
}

// ==================== Sales ====================

type saleStore struct{ s *Store }

var _ driven.SaleStore = (*saleStore)(nil)

func (st *saleStore) Add(_ context.Context, sale *domain.PendingSale) (int64, error) {
	if sale == nil {
		return 0, domain.ErrInvalidInput
	}
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	st.s.nextSaleID++
	stored := *sale
	stored.ID = st.s.nextSaleID
	stored.Payload = cloneRaw(sale.Payload)
	st.s.sales[stored.ID] = stored
	return stored.ID, nil
}

func (st *saleStore) Put(_ context.Context, sale *domain.PendingSale) error {
	if sale == nil || sale.ID <= 0 {
		return domain.ErrInvalidInput
	}
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	stored := *sale
	stored.Payload = cloneRaw(sale.Payload)
	if existing, ok := st.s.sales[sale.ID]; ok && existing.Synced {
		stored.Synced = true
	}
	st.s.sales[sale.ID] = stored
	if sale.ID > st.s.nextSaleID {
		st.s.nextSaleID = sale.ID
	}
	return nil
}

func (st *saleStore) Get(_ context.Context, id int64) (*domain.PendingSale, error) {
	st.s.mu.RLock()
	defer st.s.mu.RUnlock()

	sale, ok := st.s.sales[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	sale.Payload = cloneRaw(sale.Payload)
	return &sale, nil
}

func (st *saleStore) List(_ context.Context, filter domain.SaleFilter) ([]domain.PendingSale, error) {
	st.s.mu.RLock()
	defer st.s.mu.RUnlock()

	out := make([]domain.PendingSale, 0, len(st.s.sales))
	for _, sale := range st.s.sales {
		if filter.Synced != nil && sale.Synced != *filter.Synced {
			continue
		}
		sale.Payload = cloneRaw(sale.Payload)
		out = append(out, sale)
	}

	if filter.Synced != nil {
		sort.Slice(out, func(i, j int) bool {
			if out[i].Timestamp.Equal(out[j].Timestamp) {
				return out[i].ID < out[j].ID
			}
			return out[i].Timestamp.Before(out[j].Timestamp)
		})
	} else {
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	}
	return out, nil
}

func (st *saleStore) MarkSynced(_ context.Context, id int64) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	sale, ok := st.s.sales[id]
	if !ok {
		return domain.ErrNotFound
	}
	sale.Synced = true
	st.s.sales[id] = sale
	return nil
}

// ==================== Products ====================

type productStore struct{ s *Store }

var _ driven.ProductStore = (*productStore)(nil)

func (st *productStore) PutAll(_ context.Context, products []domain.CachedProduct) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	for _, p := range products {
		p.Raw = cloneRaw(p.Raw)
		st.s.products[p.ID] = p
	}
	return nil
}

func (st *productStore) ListByShop(_ context.Context, shopID int64) ([]domain.CachedProduct, error) {
	st.s.mu.RLock()
	defer st.s.mu.RUnlock()

	out := make([]domain.CachedProduct, 0)
	for _, p := range st.s.products {
		if p.ShopID == shopID {
			p.Raw = cloneRaw(p.Raw)
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (st *productStore) Clear(_ context.Context) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	st.s.products = make(map[int64]domain.CachedProduct)
	return nil
}

// ==================== Queue ====================

type queueStore struct{ s *Store }

var _ driven.QueueStore = (*queueStore)(nil)

func cloneItem(item domain.QueueItem) domain.QueueItem {
	item.Payload = cloneRaw(item.Payload)
	if item.LocalRef != nil {
		ref := *item.LocalRef
		item.LocalRef = &ref
	}
	return item
}

func (st *queueStore) Add(_ context.Context, item *domain.QueueItem) (int64, error) {
	if item == nil {
		return 0, domain.ErrInvalidInput
	}
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	st.s.nextQueueID++
	stored := cloneItem(*item)
	stored.ID = st.s.nextQueueID
	st.s.queue[stored.ID] = stored
	return stored.ID, nil
}

func (st *queueStore) Put(_ context.Context, item *domain.QueueItem) error {
	if item == nil {
		return domain.ErrInvalidInput
	}
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	if _, ok := st.s.queue[item.ID]; !ok {
		return domain.ErrNotFound
	}
	st.s.queue[item.ID] = cloneItem(*item)
	return nil
}

func (st *queueStore) Get(_ context.Context, id int64) (*domain.QueueItem, error) {
	st.s.mu.RLock()
	defer st.s.mu.RUnlock()

	item, ok := st.s.queue[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	item = cloneItem(item)
	return &item, nil
}

func (st *queueStore) List(_ context.Context) ([]domain.QueueItem, error) {
	st.s.mu.RLock()
	defer st.s.mu.RUnlock()

	out := make([]domain.QueueItem, 0, len(st.s.queue))
	for _, item := range st.s.queue {
		out = append(out, cloneItem(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (st *queueStore) Delete(_ context.Context, id int64) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()
	delete(st.s.queue, id)
	return nil
}

// ==================== Dead Letters ====================

type deadLetterStore struct{ s *Store }

var _ driven.DeadLetterStore = (*deadLetterStore)(nil)

func (st *deadLetterStore) Add(_ context.Context, letter *domain.DeadLetter) (int64, error) {
	if letter == nil {
		return 0, domain.ErrInvalidInput
	}
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	stored := *letter
	stored.Item = cloneItem(letter.Item)
	stored.ID = int64(len(st.s.deadLetters) + 1)
	st.s.deadLetters = append(st.s.deadLetters, stored)
	return stored.ID, nil
}

func (st *deadLetterStore) List(_ context.Context) ([]domain.DeadLetter, error) {
	st.s.mu.RLock()
	defer st.s.mu.RUnlock()

	out := make([]domain.DeadLetter, 0, len(st.s.deadLetters))
	for _, l := range st.s.deadLetters {
		l.Item = cloneItem(l.Item)
		out = append(out, l)
	}
	return out, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/custodia-labs/tillsync/internal/core/domain"
	"github.com/custodia-labs/tillsync/internal/core/ports/driven"
)

// ==================== Sale Store ====================

// saleStore implements driven.SaleStore.
type saleStore struct {
	store *Store
}

var _ driven.SaleStore = (*saleStore)(nil)

// Add stores a new sale and returns its auto-assigned ID.
func (s *saleStore) Add(ctx context.Context, sale *domain.PendingSale) (int64, error) {
	if sale == nil {
		return 0, domain.ErrInvalidInput
	}
	ts := sale.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sales (payload, timestamp, synced) VALUES (?, ?, ?)
	`, string(sale.Payload), formatTime(ts), boolToInt(sale.Synced))
	if err != nil {
		return 0, fmt.Errorf("inserting sale: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading sale id: %w", err)
	}
	return id, nil
}

// Put upserts a sale by ID. The synced flag only moves forward.
func (s *saleStore) Put(ctx context.Context, sale *domain.PendingSale) error {
	if sale == nil || sale.ID <= 0 {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sales (id, payload, timestamp, synced) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			payload = excluded.payload,
			timestamp = excluded.timestamp,
			synced = MAX(sales.synced, excluded.synced)
	`, sale.ID, string(sale.Payload), formatTime(sale.Timestamp), boolToInt(sale.Synced))
	if err != nil {
		return fmt.Errorf("saving sale: %w", err)
	}
	return nil
}

// Get retrieves a sale by ID.
func (s *saleStore) Get(ctx context.Context, id int64) (*domain.PendingSale, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, payload, timestamp, synced FROM sales WHERE id = ?
	`, id)
	sale, err := scanSale(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return sale, err
}

// List returns sales in insertion order, or by timestamp when filtered.
func (s *saleStore) List(ctx context.Context, filter domain.SaleFilter) ([]domain.PendingSale, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if filter.Synced != nil {
		rows, err = s.store.db.QueryContext(ctx, `
			SELECT id, payload, timestamp, synced FROM sales
			WHERE synced = ? ORDER BY timestamp, id
		`, boolToInt(*filter.Synced))
	} else {
		rows, err = s.store.db.QueryContext(ctx, `
			SELECT id, payload, timestamp, synced FROM sales ORDER BY id
		`)
	}
	if err != nil {
		return nil, fmt.Errorf("querying sales: %w", err)
	}
	defer rows.Close()

	sales := make([]domain.PendingSale, 0)
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, *sale)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sales: %w", err)
	}
	return sales, nil
}

// MarkSynced sets the synced flag.
func (s *saleStore) MarkSynced(ctx context.Context, id int64) error {
	res, err := s.store.db.ExecContext(ctx, "UPDATE sales SET synced = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("marking sale synced: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("marking sale synced: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanSale(row rowScanner) (*domain.PendingSale, error) {
	var sale domain.PendingSale
	var payload, ts string
	var synced int

	if err := row.Scan(&sale.ID, &payload, &ts, &synced); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning sale: %w", err)
	}
	sale.Payload = []byte(payload)
	sale.Timestamp = parseTime(ts)
	sale.Synced = synced == 1
	return &sale, nil
}

// ==================== Product Store ====================

// productStore implements driven.ProductStore.
type productStore struct {
	store *Store
}

var _ driven.ProductStore = (*productStore)(nil)

// PutAll upserts products by remote ID in a single transaction.
func (s *productStore) PutAll(ctx context.Context, products []domain.CachedProduct) error {
	if len(products) == 0 {
		return nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO products (id, shop_id, sku, name, unit_price, current_stock, is_active, raw, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			shop_id = excluded.shop_id,
			sku = excluded.sku,
			name = excluded.name,
			unit_price = excluded.unit_price,
			current_stock = excluded.current_stock,
			is_active = excluded.is_active,
			raw = excluded.raw,
			cached_at = excluded.cached_at
	`)
	if err != nil {
		return fmt.Errorf("preparing product upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range products {
		cachedAt := p.CachedAt
		if cachedAt.IsZero() {
			cachedAt = time.Now()
		}
		if _, err := stmt.ExecContext(ctx, p.ID, p.ShopID, nullString(p.SKU), p.Name,
			p.UnitPrice.String(), p.CurrentStock, boolToInt(p.IsActive),
			rawJSON(p.Raw), formatTime(cachedAt)); err != nil {
			return fmt.Errorf("upserting product %d: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing products: %w", err)
	}
	return nil
}

// ListByShop returns cached products for a shop, ordered by name.
func (s *productStore) ListByShop(ctx context.Context, shopID int64) ([]domain.CachedProduct, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, shop_id, sku, name, unit_price, current_stock, is_active, raw, cached_at
		FROM products WHERE shop_id = ? ORDER BY name, id
	`, shopID)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.CachedProduct, 0)
	for rows.Next() {
		var p domain.CachedProduct
		var sku, raw, cachedAt sql.NullString
		var price string
		var active int

		if err := rows.Scan(&p.ID, &p.ShopID, &sku, &p.Name, &price,
			&p.CurrentStock, &active, &raw, &cachedAt); err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		p.SKU = sku.String
		p.UnitPrice, err = decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("parsing price of product %d: %w", p.ID, err)
		}
		p.IsActive = active == 1
		if raw.Valid {
			p.Raw = []byte(raw.String)
		}
		p.CachedAt = parseNullableTime(cachedAt)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating products: %w", err)
	}
	return products, nil
}

// Clear removes every cached product.
func (s *productStore) Clear(ctx context.Context) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM products"); err != nil {
		return fmt.Errorf("clearing products: %w", err)
	}
	return nil
}

// ==================== Queue Store ====================

// queueStore implements driven.QueueStore.
type queueStore struct {
	store *Store
}

var _ driven.QueueStore = (*queueStore)(nil)

const queueColumns = `id, kind, entity, payload, local_ref, attempts, enqueued_at, idempotency_key, last_error`

// Add appends an item and returns its auto-assigned ID.
func (s *queueStore) Add(ctx context.Context, item *domain.QueueItem) (int64, error) {
	if item == nil {
		return 0, domain.ErrInvalidInput
	}
	enqueuedAt := item.EnqueuedAt
	if enqueuedAt.IsZero() {
		enqueuedAt = time.Now()
	}

	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sync_queue (kind, entity, payload, local_ref, attempts, enqueued_at, idempotency_key, last_error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, string(item.Kind), string(item.Entity), string(item.Payload), nullInt64(item.LocalRef),
		item.Attempts, formatTime(enqueuedAt), item.IdempotencyKey, nullString(item.LastError))
	if err != nil {
		return 0, fmt.Errorf("inserting queue item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading queue item id: %w", err)
	}
	return id, nil
}

// Put updates an existing item.
func (s *queueStore) Put(ctx context.Context, item *domain.QueueItem) error {
	if item == nil {
		return domain.ErrInvalidInput
	}

	res, err := s.store.db.ExecContext(ctx, `
		UPDATE sync_queue SET
			kind = ?, entity = ?, payload = ?, local_ref = ?, attempts = ?,
			enqueued_at = ?, idempotency_key = ?, last_error = ?
		WHERE id = ?
	`, string(item.Kind), string(item.Entity), string(item.Payload), nullInt64(item.LocalRef),
		item.Attempts, formatTime(item.EnqueuedAt), item.IdempotencyKey, nullString(item.LastError), item.ID)
	if err != nil {
		return fmt.Errorf("updating queue item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating queue item: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Get retrieves an item by ID.
func (s *queueStore) Get(ctx context.Context, id int64) (*domain.QueueItem, error) {
	row := s.store.db.QueryRowContext(ctx, "SELECT "+queueColumns+" FROM sync_queue WHERE id = ?", id)
	item, err := scanQueueItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return item, err
}

// List returns all items in enqueue order.
func (s *queueStore) List(ctx context.Context) ([]domain.QueueItem, error) {
	rows, err := s.store.db.QueryContext(ctx, "SELECT "+queueColumns+" FROM sync_queue ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying queue: %w", err)
	}
	defer rows.Close()

	items := make([]domain.QueueItem, 0)
	for rows.Next() {
		item, err := scanQueueItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating queue: %w", err)
	}
	return items, nil
}

// Delete removes an item.
func (s *queueStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM sync_queue WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting queue item: %w", err)
	}
	return nil
}

func scanQueueItem(row rowScanner) (*domain.QueueItem, error) {
	var item domain.QueueItem
	var kind, entity, payload, enqueuedAt string
	var localRef sql.NullInt64
	var lastError sql.NullString

	if err := row.Scan(&item.ID, &kind, &entity, &payload, &localRef,
		&item.Attempts, &enqueuedAt, &item.IdempotencyKey, &lastError); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning queue item: %w", err)
	}
	item.Kind = domain.OperationKind(kind)
	item.Entity = domain.EntityType(entity)
	item.Payload = []byte(payload)
	item.LocalRef = int64Ptr(localRef)
	item.EnqueuedAt = parseTime(enqueuedAt)
	item.LastError = lastError.String
	return &item, nil
}

// ==================== Dead Letter Store ====================

// deadLetterStore implements driven.DeadLetterStore.
type deadLetterStore struct {
	store *Store
}

var _ driven.DeadLetterStore = (*deadLetterStore)(nil)

// Add records a dropped item.
func (s *deadLetterStore) Add(ctx context.Context, letter *domain.DeadLetter) (int64, error) {
	if letter == nil {
		return 0, domain.ErrInvalidInput
	}
	item := letter.Item
	droppedAt := letter.DroppedAt
	if droppedAt.IsZero() {
		droppedAt = time.Now()
	}

	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO dead_letters (item_id, kind, entity, payload, local_ref, attempts,
			enqueued_at, idempotency_key, last_error, reason, dropped_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, item.ID, string(item.Kind), string(item.Entity), string(item.Payload), nullInt64(item.LocalRef),
		item.Attempts, formatTime(item.EnqueuedAt), item.IdempotencyKey, nullString(item.LastError),
		nullString(letter.Reason), formatTime(droppedAt))
	if err != nil {
		return 0, fmt.Errorf("inserting dead letter: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading dead letter id: %w", err)
	}
	return id, nil
}

// List returns dead letters, oldest first.
func (s *deadLetterStore) List(ctx context.Context) ([]domain.DeadLetter, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, item_id, kind, entity, payload, local_ref, attempts,
			enqueued_at, idempotency_key, last_error, reason, dropped_at
		FROM dead_letters ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying dead letters: %w", err)
	}
	defer rows.Close()

	letters := make([]domain.DeadLetter, 0)
	for rows.Next() {
		var l domain.DeadLetter
		var kind, entity, payload, enqueuedAt, droppedAt string
		var localRef sql.NullInt64
		var lastError, reason sql.NullString

		if err := rows.Scan(&l.ID, &l.Item.ID, &kind, &entity, &payload, &localRef, &l.Item.Attempts,
			&enqueuedAt, &l.Item.IdempotencyKey, &lastError, &reason, &droppedAt); err != nil {
			return nil, fmt.Errorf("scanning dead letter: %w", err)
		}
		l.Item.Kind = domain.OperationKind(kind)
		l.Item.Entity = domain.EntityType(entity)
		l.Item.Payload = []byte(payload)
		l.Item.LocalRef = int64Ptr(localRef)
		l.Item.EnqueuedAt = parseTime(enqueuedAt)
		l.Item.LastError = lastError.String
		l.Reason = reason.String
		l.DroppedAt = parseTime(droppedAt)
		letters = append(letters, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating dead letters: %w", err)
	}
	return letters, nil
}

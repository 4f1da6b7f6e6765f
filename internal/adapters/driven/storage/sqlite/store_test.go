package sqlite

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tillsync/internal/core/domain"
)

// setupTestStore opens a store in a temporary directory and closes it on cleanup.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return store
}

func TestOpen_CreatesSchema(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, version)

	for _, table := range []string{"sales", "products", "sync_queue", "dead_letters", "replay_runs"} {
		var name string
		err := store.db.QueryRowContext(ctx,
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, table)
	}

	for _, index := range []string{"idx_sales_timestamp", "idx_sales_synced", "idx_products_shop_id"} {
		var name string
		err := store.db.QueryRowContext(ctx,
			"SELECT name FROM sqlite_master WHERE type='index' AND name=?", index).Scan(&name)
		require.NoError(t, err, index)
	}
}

func TestOpen_UnwritableDirectory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	// A regular file where the data directory should be.
	_, err := Open(filepath.Join(blocker, "data"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := Open(dir)
	require.NoError(t, err)

	saleID, err := store.SaleStore().Add(ctx, &domain.PendingSale{
		Payload:   json.RawMessage(`{"total":10}`),
		Timestamp: time.Now(),
	})
	require.NoError(t, err)
	_, err = store.QueueStore().Add(ctx, &domain.QueueItem{
		Kind:           domain.OperationCreate,
		Entity:         domain.EntitySale,
		Payload:        json.RawMessage(`{"total":10}`),
		LocalRef:       &saleID,
		EnqueuedAt:     time.Now(),
		IdempotencyKey: "key-1",
	})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	version, err := reopened.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, version)

	sale, err := reopened.SaleStore().Get(ctx, saleID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":10}`, string(sale.Payload))
	assert.False(t, sale.Synced)

	items, err := reopened.QueueStore().List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, domain.CreateSale, items[0].Operation())
	require.NotNil(t, items[0].LocalRef)
	assert.Equal(t, saleID, *items[0].LocalRef)
	assert.Equal(t, "key-1", items[0].IdempotencyKey)
	assert.Zero(t, items[0].Attempts)
}

func TestSaleStore_AddGetMarkSynced(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	sales := store.SaleStore()

	id1, err := sales.Add(ctx, &domain.PendingSale{Payload: json.RawMessage(`{"total":10}`)})
	require.NoError(t, err)
	id2, err := sales.Add(ctx, &domain.PendingSale{Payload: json.RawMessage(`{"total":20}`)})
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	require.NoError(t, sales.MarkSynced(ctx, id1))
	require.NoError(t, sales.MarkSynced(ctx, id1))

	got, err := sales.Get(ctx, id1)
	require.NoError(t, err)
	assert.True(t, got.Synced)

	_, err = sales.Get(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, sales.MarkSynced(ctx, 999), domain.ErrNotFound)
}

func TestSaleStore_PutNeverUnsyncs(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	sales := store.SaleStore()

	id, err := sales.Add(ctx, &domain.PendingSale{Payload: json.RawMessage(`{}`), Timestamp: time.Now()})
	require.NoError(t, err)
	require.NoError(t, sales.MarkSynced(ctx, id))

	require.NoError(t, sales.Put(ctx, &domain.PendingSale{
		ID:        id,
		Payload:   json.RawMessage(`{"edited":true}`),
		Timestamp: time.Now(),
		Synced:    false,
	}))

	got, err := sales.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.Synced)
	assert.JSONEq(t, `{"edited":true}`, string(got.Payload))
}

func TestSaleStore_ListOrdering(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	sales := store.SaleStore()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	late, _ := sales.Add(ctx, &domain.PendingSale{Payload: json.RawMessage(`{}`), Timestamp: base.Add(2 * time.Hour)})
	early, _ := sales.Add(ctx, &domain.PendingSale{Payload: json.RawMessage(`{}`), Timestamp: base})
	synced, _ := sales.Add(ctx, &domain.PendingSale{Payload: json.RawMessage(`{}`), Timestamp: base.Add(time.Hour)})
	require.NoError(t, sales.MarkSynced(ctx, synced))

	all, err := sales.List(ctx, domain.SaleFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{late, early, synced}, []int64{all[0].ID, all[1].ID, all[2].ID})
	assert.True(t, base.Add(2*time.Hour).Equal(all[0].Timestamp))

	no := false
	pending, err := sales.List(ctx, domain.SaleFilter{Synced: &no})
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, early, pending[0].ID)
	assert.Equal(t, late, pending[1].ID)

	yes := true
	done, err := sales.List(ctx, domain.SaleFilter{Synced: &yes})
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, synced, done[0].ID)
}

func TestProductStore_UpsertListClear(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	products := store.ProductStore()

	require.NoError(t, products.PutAll(ctx, []domain.CachedProduct{
		{ID: 1, ShopID: 7, SKU: "SUG-1", Name: "Sugar", UnitPrice: decimal.RequireFromString("3.50"),
			CurrentStock: 10, IsActive: true, Raw: json.RawMessage(`{"id":1,"shop":7}`)},
		{ID: 2, ShopID: 7, Name: "Bread", UnitPrice: decimal.NewFromInt(2), IsActive: true},
		{ID: 3, ShopID: 8, Name: "Milk"},
	}))
	require.NoError(t, products.PutAll(ctx, []domain.CachedProduct{
		{ID: 1, ShopID: 7, SKU: "SUG-1", Name: "Sugar", UnitPrice: decimal.RequireFromString("3.75"), CurrentStock: 9, IsActive: true},
	}))

	list, err := products.ListByShop(ctx, 7)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Bread", list[0].Name)
	assert.Equal(t, "Sugar", list[1].Name)
	assert.True(t, decimal.RequireFromString("3.75").Equal(list[1].UnitPrice))
	assert.Equal(t, 9, list[1].CurrentStock)
	assert.Equal(t, "SUG-1", list[1].SKU)
	assert.False(t, list[1].CachedAt.IsZero())

	empty, err := products.ListByShop(ctx, 404)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	require.NoError(t, store.Reset(ctx))
	list, err = products.ListByShop(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestProductStore_CorruptPriceIsAnError(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.db.ExecContext(ctx,
		`INSERT INTO products (id, shop_id, name, unit_price) VALUES (5, 7, 'Salt', 'n/a')`)
	require.NoError(t, err)

	list, err := store.ProductStore().ListByShop(ctx, 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "product 5")
	assert.Nil(t, list)
}

func TestQueueStore_CRUD(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	queue := store.QueueStore()

	first, err := queue.Add(ctx, &domain.QueueItem{
		Kind: domain.OperationCreate, Entity: domain.EntitySale,
		Payload: json.RawMessage(`{"total":10}`), EnqueuedAt: time.Now(), IdempotencyKey: "a",
	})
	require.NoError(t, err)
	second, err := queue.Add(ctx, &domain.QueueItem{
		Kind: domain.OperationCreate, Entity: domain.EntitySale,
		Payload: json.RawMessage(`{"total":20}`), EnqueuedAt: time.Now(), IdempotencyKey: "b",
	})
	require.NoError(t, err)

	item, err := queue.Get(ctx, first)
	require.NoError(t, err)
	assert.Nil(t, item.LocalRef)
	item.Attempts = 3
	item.LastError = "HTTP 500"
	require.NoError(t, queue.Put(ctx, item))

	items, err := queue.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, first, items[0].ID)
	assert.Equal(t, 3, items[0].Attempts)
	assert.Equal(t, "HTTP 500", items[0].LastError)
	assert.Equal(t, second, items[1].ID)

	require.NoError(t, queue.Delete(ctx, first))
	require.NoError(t, queue.Delete(ctx, first))
	_, err = queue.Get(ctx, first)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, queue.Put(ctx, item), domain.ErrNotFound)
}

func TestDeadLetterStore_AddList(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	ref := int64(2)

	_, err := store.DeadLetterStore().Add(ctx, &domain.DeadLetter{
		Item: domain.QueueItem{
			ID: 9, Kind: domain.OperationCreate, Entity: domain.EntitySale,
			Payload: json.RawMessage(`{"total":20}`), LocalRef: &ref, Attempts: 5,
			EnqueuedAt: time.Now(), IdempotencyKey: "k", LastError: "HTTP 400",
		},
		Reason:    "HTTP 400",
		DroppedAt: time.Now(),
	})
	require.NoError(t, err)

	letters, err := store.DeadLetterStore().List(ctx)
	require.NoError(t, err)
	require.Len(t, letters, 1)
	assert.Equal(t, int64(9), letters[0].Item.ID)
	assert.Equal(t, 5, letters[0].Item.Attempts)
	require.NotNil(t, letters[0].Item.LocalRef)
	assert.Equal(t, ref, *letters[0].Item.LocalRef)
	assert.Equal(t, "HTTP 400", letters[0].Reason)
	assert.JSONEq(t, `{"total":20}`, string(letters[0].Item.Payload))
}

func TestTimeFormat_SortsLexically(t *testing.T) {
	a := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := a.Add(500 * time.Millisecond)
	c := a.Add(time.Second)

	assert.Less(t, formatTime(a), formatTime(b))
	assert.Less(t, formatTime(b), formatTime(c))
	assert.True(t, b.Equal(parseTime(formatTime(b))))
}

func TestHelpers(t *testing.T) {
	assert.Nil(t, nullString(""))
	assert.Equal(t, "x", nullString("x"))
	assert.Nil(t, nullInt64(nil))
	n := int64(4)
	assert.Equal(t, int64(4), nullInt64(&n))
	assert.Nil(t, rawJSON(nil))
	assert.Equal(t, 1, boolToInt(true))
	assert.Equal(t, 0, boolToInt(false))
}

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tillsync/internal/core/domain"
)

func TestPrometheus_Counters(t *testing.T) {
	p := NewPrometheus()
	op := domain.CreateSale.String()

	p.ItemSynced(domain.CreateSale)
	p.ItemSynced(domain.CreateSale)
	p.ItemFailed(domain.CreateSale)
	p.ItemDropped(domain.CreateSale)

	assert.Equal(t, 2.0, testutil.ToFloat64(p.synced.WithLabelValues(op)))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.failed.WithLabelValues(op)))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.dropped.WithLabelValues(op)))
}

func TestPrometheus_PassCompleted(t *testing.T) {
	p := NewPrometheus()
	start := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	p.PassCompleted(domain.SyncReport{StartedAt: start, EndedAt: start.Add(2 * time.Second)})
	p.PassCompleted(domain.SyncReport{})

	assert.Equal(t, 2.0, testutil.ToFloat64(p.passes))
	assert.Equal(t, float64(start.Add(2*time.Second).Unix()), testutil.ToFloat64(p.lastPass))
	assert.Equal(t, 1, testutil.CollectAndCount(p.passDuration))
}

func TestPrometheus_QueueDepth(t *testing.T) {
	p := NewPrometheus()

	p.QueueDepth(4)
	assert.Equal(t, 4.0, testutil.ToFloat64(p.depth))

	p.QueueDepth(0)
	assert.Equal(t, 0.0, testutil.ToFloat64(p.depth))
}

func TestPrometheus_Handler(t *testing.T) {
	p := NewPrometheus()
	p.ItemSynced(domain.CreateSale)

	srv := httptest.NewServer(p.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `tillsync_queue_synced_total{operation="sale.create"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

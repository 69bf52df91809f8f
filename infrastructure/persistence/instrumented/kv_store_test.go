package instrumented

import (
	"context"
	"testing"

	"voidstate/infrastructure/persistence/memory"
	"voidstate/pkg/observability"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKVStore_RecordsOperations(t *testing.T) {
	ctx := context.Background()
	collector := observability.NewCollector("void")
	store := NewKVStore(memory.NewKVStore(nil), collector)

	require.NoError(t, store.Put(ctx, "count", []byte("1"), 0))
	value, found, err := store.Get(ctx, "count")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "1", string(value))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, _, err = store.Get(cancelled, "count")
	assert.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.StoreOperations.WithLabelValues("put", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.StoreOperations.WithLabelValues("get", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.StoreOperations.WithLabelValues("get", "error")))
}

package recordstore

import (
	"testing"

	"github.com/dep2p/go-dalight/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ValueOps(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	s, _ := newTestStore(t, testNodeID(1), DefaultConfig().WithMaxValueBytes(8), WithMetrics(m))

	_, err := s.Get("missing")
	require.NoError(t, err)
	require.NoError(t, s.Put(&ValueRecord{Key: "k", Value: []byte("v")}))
	_, err = s.Get("k")
	require.NoError(t, err)
	require.ErrorIs(t, s.Put(&ValueRecord{Key: "big", Value: make([]byte, 8)}), ErrValueTooLarge)
	s.Remove("k")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.valueOps.WithLabelValues("get", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.valueOps.WithLabelValues("get", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.valueOps.WithLabelValues("put", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.valueOps.WithLabelValues("put", "too_large")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.valueOps.WithLabelValues("remove", "ok")))
}

func TestMetrics_ProviderOps(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	local := testNodeID(1)
	near, far := testNodeID(2), testNodeID(3)
	distances := distanceTable(map[types.NodeID]byte{local: 5, near: 1, far: 9})
	cfg := DefaultConfig().WithMaxProvidersPerKey(1).WithMaxProvidedKeys(1)
	s, _ := newTestStore(t, local, cfg, WithDistancer(distances), WithMetrics(m))

	require.NoError(t, s.AddProvider(ProviderRecord{Key: "K", Provider: local}))
	require.NoError(t, s.AddProvider(ProviderRecord{Key: "K", Provider: near})) // 淘汰 local
	require.NoError(t, s.AddProvider(ProviderRecord{Key: "K", Provider: far}))  // 丢弃
	require.NoError(t, s.AddProvider(ProviderRecord{Key: "K", Provider: near})) // 更新
	require.Error(t, s.AddProvider(ProviderRecord{Key: "L", Provider: near}))   // 拒绝

	assert.Equal(t, 2.0, testutil.ToFloat64(m.providerAdds.WithLabelValues("inserted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.providerAdds.WithLabelValues("updated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.providerAdds.WithLabelValues("dropped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.providerAdds.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.providerEvicted))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.providerKeys))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.providerRecords))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.providedRecords))

	s.RemoveProvider("K", near)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.providerEvicted))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.providerKeys))

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Positive(t, n)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.observeValue("get", "hit")
		m.observeAdd(addInserted)
		m.observeRemoved(3)
		m.setSizes(1, 2, 3)
	})
}

func TestMetrics_UnregisteredWhenNilRegisterer(t *testing.T) {
	m := NewMetrics(nil)
	require.NotNil(t, m)

	// 同一注册表重复注册会 panic
	reg := prometheus.NewRegistry()
	NewMetrics(reg)
	assert.Panics(t, func() { NewMetrics(reg) })
}

func TestAddResult_String(t *testing.T) {
	assert.Equal(t, "inserted", addInserted.String())
	assert.Equal(t, "updated", addUpdated.String())
	assert.Equal(t, "dropped", addDropped.String())
	assert.Equal(t, "rejected", addRejected.String())
	assert.Equal(t, "unknown", addResult(42).String())
}

package recordstore

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/dep2p/go-dalight/internal/core/storage/engine"
	"github.com/dep2p/go-dalight/internal/core/storage/engine/badger"
	"github.com/dep2p/go-dalight/internal/core/storage/kv"
	"github.com/dep2p/go-dalight/internal/discovery/dht"
	"github.com/dep2p/go-dalight/pkg/types"
	"github.com/stretchr/testify/require"
)

// testNodeID 生成可读的测试节点 ID
func testNodeID(b byte) types.NodeID {
	var id types.NodeID
	id[0] = b
	id[types.NodeIDLen-1] = b
	return id
}

// newTestEngine 创建 badger 引擎
// 使用 t.TempDir() 创建临时目录，确保测试与生产一致
func newTestEngine(t *testing.T) engine.Engine {
	t.Helper()

	eng, err := badger.New(engine.DefaultConfig(filepath.Join(t.TempDir(), "test.db")))
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, eng.Close())
	})
	return eng
}

// newTestStore 创建基于 badger d/v/ 命名空间的记录存储
func newTestStore(t *testing.T, localID types.NodeID, cfg Config, opts ...Option) (*Store, *kv.Store) {
	t.Helper()

	db := kv.NewDHTValues(newTestEngine(t))
	s, err := New(localID, cfg, db, opts...)
	require.NoError(t, err)
	return s, db
}

// distanceTable 按表返回距离，距离值写在最低字节
func distanceTable(table map[types.NodeID]byte) dht.Distancer {
	return dht.DistancerFunc(func(_ types.Key, n types.NodeID) dht.Distance {
		return dht.Distance{dht.DistanceLen - 1: table[n]}
	})
}

// failingDB 所有操作都失败的 Database
type failingDB struct {
	err error
}

func (f failingDB) Get([]byte) ([]byte, error) { return nil, f.err }
func (f failingDB) Put([]byte, []byte) error   { return f.err }
func (f failingDB) Delete([]byte) error        { return f.err }
func (f failingDB) PrefixScan([]byte, func(k, v []byte) bool) error {
	return f.err
}

var errDiskFailure = errors.New("disk failure")

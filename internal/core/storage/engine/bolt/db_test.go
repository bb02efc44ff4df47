package bolt

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/dep2p/go-dalight/internal/core/storage/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	cfg := engine.DefaultConfig(filepath.Join(t.TempDir(), "data", "store.bolt"))
	e, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, e.Start())

	t.Cleanup(func() {
		assert.NoError(t, e.Close())
	})
	return e
}

func TestEngine_CRUD(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Get([]byte("k"))
	assert.ErrorIs(t, err, engine.ErrNotFound)

	require.NoError(t, e.Put([]byte("k"), []byte("v1")))
	require.NoError(t, e.Put([]byte("k"), []byte("v2")))

	got, err := e.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)

	ok, err := e.Has([]byte("k"))
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, e.Delete([]byte("k")))
	require.NoError(t, e.Delete([]byte("k")), "deleting a missing key is a no-op")

	ok, err = e.Has([]byte("k"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEngine_EmptyKeyAndValue(t *testing.T) {
	e := newTestEngine(t)

	assert.ErrorIs(t, e.Put(nil, []byte("v")), engine.ErrEmptyKey)
	_, err := e.Get(nil)
	assert.ErrorIs(t, err, engine.ErrEmptyKey)

	require.NoError(t, e.Put([]byte("empty"), nil))
	got, err := e.Get([]byte("empty"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEngine_GetReturnsCopy(t *testing.T) {
	e := newTestEngine(t)

	require.NoError(t, e.Put([]byte("k"), []byte("abc")))
	got, err := e.Get([]byte("k"))
	require.NoError(t, err)
	got[0] = 'z'

	again, err := e.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestEngine_PrefixIterator(t *testing.T) {
	e := newTestEngine(t)

	for _, k := range []string{"d/v/b", "d/v/a", "d/p/x", "d/w"} {
		require.NoError(t, e.Put([]byte(k), []byte(k)))
	}

	it := e.NewPrefixIterator([]byte("d/v/"))
	defer it.Close()

	var keys []string
	for it.First(); it.Valid(); it.Next() {
		keys = append(keys, string(it.Key()))
		assert.Equal(t, it.Key(), it.Value())
	}
	require.NoError(t, it.Error())
	assert.Equal(t, []string{"d/v/a", "d/v/b"}, keys)

	all := e.NewPrefixIterator(nil)
	defer all.Close()
	n := 0
	for all.First(); all.Valid(); all.Next() {
		n++
	}
	assert.Equal(t, 4, n)
}

func TestEngine_IteratorSurvivesConcurrentWrite(t *testing.T) {
	e := newTestEngine(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, e.Put([]byte(fmt.Sprintf("p/%d", i)), []byte("v")))
	}

	it := e.NewPrefixIterator([]byte("p/"))
	defer it.Close()

	// 迭代过程中删除，不会死锁也不影响已拷贝的快照
	n := 0
	for it.First(); it.Valid(); it.Next() {
		require.NoError(t, e.Delete(it.Key()))
		n++
	}
	assert.Equal(t, 5, n)

	ok, err := e.Has([]byte("p/0"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEngine_Batch(t *testing.T) {
	e := newTestEngine(t)

	require.NoError(t, e.Put([]byte("old"), []byte("v")))

	b := e.NewBatch()
	for i := 0; i < 10; i++ {
		b.Put([]byte(fmt.Sprintf("b/%02d", i)), []byte("v"))
	}
	b.Delete([]byte("old"))
	assert.Equal(t, 11, b.Size())

	require.NoError(t, b.Write())
	assert.Equal(t, 0, b.Size())

	ok, err := e.Has([]byte("old"))
	require.NoError(t, err)
	assert.False(t, ok)

	stats := e.Stats()
	assert.Equal(t, int64(10), stats.KeyCount)
	assert.Equal(t, int64(11), stats.NumWrites)
	assert.Equal(t, int64(1), stats.NumDeletes)
	assert.Positive(t, stats.DiskSize)

	b.Put([]byte("discard"), []byte("v"))
	b.Reset()
	require.NoError(t, b.Write())
	ok, err = e.Has([]byte("discard"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEngine_Closed(t *testing.T) {
	e, err := New(engine.DefaultConfig(filepath.Join(t.TempDir(), "closed.bolt")))
	require.NoError(t, err)
	require.NoError(t, e.Close())
	require.NoError(t, e.Close())

	assert.ErrorIs(t, e.Put([]byte("k"), []byte("v")), engine.ErrClosed)
	_, err = e.Get([]byte("k"))
	assert.ErrorIs(t, err, engine.ErrClosed)
	assert.ErrorIs(t, e.NewBatch().Write(), engine.ErrClosed)

	it := e.NewPrefixIterator(nil)
	assert.False(t, it.First())
	assert.ErrorIs(t, it.Error(), engine.ErrClosed)
}

func TestEngine_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.bolt")

	e, err := New(engine.DefaultConfig(path))
	require.NoError(t, err)
	require.NoError(t, e.Put([]byte("k"), []byte("v")))
	require.NoError(t, e.Close())

	e, err = New(engine.DefaultConfig(path).WithReadOnly(true))
	require.NoError(t, err)
	defer e.Close()

	got, err := e.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
	assert.ErrorIs(t, e.Put([]byte("k"), []byte("v2")), engine.ErrReadOnly)
}

func TestNew_CorruptedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.bolt")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte{0xff}, 8192), 0o600))

	_, err := New(engine.DefaultConfig(path))
	assert.ErrorIs(t, err, engine.ErrCorrupted)
}

package recordstore

import (
	"math"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/dep2p/go-dalight/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

var testEpoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newMockClock() *clock.Mock {
	c := clock.NewMock()
	c.Set(testEpoch)
	return c
}

func TestTTLSeconds(t *testing.T) {
	now := testEpoch

	tests := []struct {
		name    string
		expires time.Time
		want    uint32
	}{
		{"no expiry", time.Time{}, 0},
		{"whole seconds", now.Add(10 * time.Second), 10},
		{"fraction truncated", now.Add(10*time.Second + 900*time.Millisecond), 10},
		{"sub-second clamps to 1", now.Add(300 * time.Millisecond), 1},
		{"exactly now clamps to 1", now, 1},
		{"already expired clamps to 1", now.Add(-time.Hour), 1},
		{"overflow clamps to max", now.Add(time.Duration(math.MaxUint32+10) * time.Second), math.MaxUint32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ttlSeconds(tt.expires, now))
		})
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	mc := newMockClock()
	codec := NewCodec(mc)

	orig := &ValueRecord{
		Key:       types.Key("block/100/cell/3"),
		Value:     []byte("cell-bytes"),
		Publisher: testNodeID(9),
		Expires:   testEpoch.Add(90*time.Second + 400*time.Millisecond),
	}

	got, err := codec.Decode(orig.Key, codec.Encode(orig))
	require.NoError(t, err)

	assert.Equal(t, orig.Key, got.Key)
	assert.Equal(t, orig.Value, got.Value)
	assert.Equal(t, orig.Publisher, got.Publisher)
	assert.WithinDuration(t, orig.Expires, got.Expires, time.Second)
}

func TestCodec_NoExpiryNoPublisher(t *testing.T) {
	codec := NewCodec(newMockClock())

	r := &ValueRecord{Key: "k", Value: []byte("v")}
	e := codec.ToEntry(r)

	assert.Zero(t, e.TTL)
	assert.Empty(t, e.Publisher)

	got, err := codec.FromEntry("k", e)
	require.NoError(t, err)
	assert.True(t, got.Expires.IsZero())
	assert.False(t, got.HasPublisher())
	assert.True(t, r.Equal(got))
}

func TestCodec_ExpiryRelativeToDecodeTime(t *testing.T) {
	mc := newMockClock()
	codec := NewCodec(mc)

	data := codec.Encode(&ValueRecord{Key: "k", Value: []byte("v"), Expires: testEpoch.Add(time.Minute)})

	mc.Add(5 * time.Second)
	got, err := codec.Decode("k", data)
	require.NoError(t, err)

	assert.Equal(t, testEpoch.Add(5*time.Second+time.Minute), got.Expires)
}

func TestCodec_ExpiredRecordStaysExpiring(t *testing.T) {
	codec := NewCodec(newMockClock())

	e := codec.ToEntry(&ValueRecord{Key: "k", Value: []byte("v"), Expires: testEpoch.Add(-time.Second)})
	assert.Equal(t, uint32(1), e.TTL)

	got, err := codec.FromEntry("k", e)
	require.NoError(t, err)
	assert.False(t, got.Expires.IsZero())
}

func TestCodec_InvalidPublisher(t *testing.T) {
	codec := NewCodec(newMockClock())

	_, err := codec.FromEntry("k", Entry{Value: []byte("v"), Publisher: []byte{1, 2, 3}})
	require.Error(t, err)
	assert.True(t, IsDecode(err))
}

func TestUnmarshalEntry(t *testing.T) {
	t.Run("empty value", func(t *testing.T) {
		e, err := UnmarshalEntry(Entry{}.Marshal())
		require.NoError(t, err)
		assert.Equal(t, []byte{}, e.Value)
		assert.Zero(t, e.TTL)
	})

	t.Run("unknown fields skipped", func(t *testing.T) {
		b := Entry{Value: []byte("v"), TTL: 7}.Marshal()
		b = protowire.AppendTag(b, 15, protowire.VarintType)
		b = protowire.AppendVarint(b, 42)
		b = protowire.AppendTag(b, 16, protowire.BytesType)
		b = protowire.AppendBytes(b, []byte("future"))

		e, err := UnmarshalEntry(b)
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), e.Value)
		assert.Equal(t, uint32(7), e.TTL)
	})

	t.Run("truncated", func(t *testing.T) {
		b := Entry{Value: []byte("value")}.Marshal()
		_, err := UnmarshalEntry(b[:len(b)-2])
		assert.True(t, IsDecode(err))
	})

	t.Run("ttl overflow", func(t *testing.T) {
		b := protowire.AppendTag(nil, fieldTTL, protowire.VarintType)
		b = protowire.AppendVarint(b, math.MaxUint32+1)
		_, err := UnmarshalEntry(b)
		assert.True(t, IsDecode(err))
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := UnmarshalEntry([]byte{0xff, 0xff, 0xff})
		assert.True(t, IsDecode(err))
	})

	t.Run("decoded value does not alias input", func(t *testing.T) {
		b := Entry{Value: []byte("abc")}.Marshal()
		e, err := UnmarshalEntry(b)
		require.NoError(t, err)
		b[2] = 'z'
		assert.Equal(t, []byte("abc"), e.Value)
	})
}

func TestCodec_ZeroPublisherMeansNone(t *testing.T) {
	codec := NewCodec(newMockClock())

	r := &ValueRecord{Key: "k", Value: []byte("v"), Publisher: types.NodeID{}}
	assert.False(t, r.HasPublisher())

	got, err := codec.Decode("k", codec.Encode(r))
	require.NoError(t, err)
	assert.False(t, got.HasPublisher())
	assert.True(t, r.Equal(got))

	// 由公钥派生的 ID 不会是全零
	derived := types.NodeIDFromPublicKey(make([]byte, 32))
	assert.False(t, derived.IsEmpty())
}

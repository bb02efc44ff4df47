package recordstore

import (
	"math"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/dep2p/go-dalight/pkg/types"
	"google.golang.org/protobuf/encoding/protowire"
)

// 持久化条目字段号
const (
	fieldValue     protowire.Number = 1
	fieldPublisher protowire.Number = 2
	fieldTTL       protowire.Number = 3
)

// Entry 值记录的持久化形式
//
// 只保存相对 TTL（秒），不保存绝对时间。TTL 为 0 表示永不过期。
// 键由存储层的键承载，不在条目中重复。
type Entry struct {
	Value     []byte
	Publisher []byte
	TTL       uint32
}

// Marshal 编码为 protobuf wire 格式
//
//	1: value     bytes
//	2: publisher bytes
//	3: ttl       varint
func (e Entry) Marshal() []byte {
	b := make([]byte, 0, len(e.Value)+len(e.Publisher)+16)

	b = protowire.AppendTag(b, fieldValue, protowire.BytesType)
	b = protowire.AppendBytes(b, e.Value)

	if len(e.Publisher) > 0 {
		b = protowire.AppendTag(b, fieldPublisher, protowire.BytesType)
		b = protowire.AppendBytes(b, e.Publisher)
	}

	if e.TTL > 0 {
		b = protowire.AppendTag(b, fieldTTL, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(e.TTL))
	}

	return b
}

// UnmarshalEntry 从 protobuf wire 格式解码，未知字段被跳过
func UnmarshalEntry(b []byte) (Entry, error) {
	var e Entry

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Entry{}, decodeError("tag: %v", protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldValue && typ == protowire.BytesType:
			v, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return Entry{}, decodeError("value: %v", protowire.ParseError(m))
			}
			e.Value = append([]byte{}, v...)
			n = m
		case num == fieldPublisher && typ == protowire.BytesType:
			v, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return Entry{}, decodeError("publisher: %v", protowire.ParseError(m))
			}
			e.Publisher = append([]byte(nil), v...)
			n = m
		case num == fieldTTL && typ == protowire.VarintType:
			v, m := protowire.ConsumeVarint(b)
			if m < 0 {
				return Entry{}, decodeError("ttl: %v", protowire.ParseError(m))
			}
			if v > math.MaxUint32 {
				return Entry{}, decodeError("ttl %d overflows uint32", v)
			}
			e.TTL = uint32(v)
			n = m
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Entry{}, decodeError("field %d: %v", num, protowire.ParseError(n))
			}
		}
		b = b[n:]
	}

	if e.Value == nil {
		e.Value = []byte{}
	}
	return e, nil
}

// ============================================================================
//                              Codec
// ============================================================================

// Codec ValueRecord 与 Entry 之间的转换
//
// 无共享状态，只依赖时间源。
type Codec struct {
	clock clock.Clock
}

// NewCodec 创建编解码器，c 为 nil 时使用系统时钟
func NewCodec(c clock.Clock) *Codec {
	if c == nil {
		c = clock.New()
	}
	return &Codec{clock: c}
}

// ToEntry 将值记录转换为持久化条目
func (c *Codec) ToEntry(r *ValueRecord) Entry {
	e := Entry{
		Value: r.Value,
		TTL:   ttlSeconds(r.Expires, c.clock.Now()),
	}
	if r.HasPublisher() {
		e.Publisher = r.Publisher.Bytes()
	}
	return e
}

// FromEntry 将持久化条目还原为值记录
//
// 过期时间相对解码时刻计算。
func (c *Codec) FromEntry(key types.Key, e Entry) (*ValueRecord, error) {
	r := &ValueRecord{
		Key:   key,
		Value: e.Value,
	}

	if len(e.Publisher) > 0 {
		id, err := types.NodeIDFromBytes(e.Publisher)
		if err != nil {
			return nil, decodeError("publisher: %v", err)
		}
		r.Publisher = id
	}

	if e.TTL > 0 {
		r.Expires = c.clock.Now().Add(time.Duration(e.TTL) * time.Second)
	}

	return r, nil
}

// Encode 编码值记录为字节
func (c *Codec) Encode(r *ValueRecord) []byte {
	return c.ToEntry(r).Marshal()
}

// Decode 从字节解码值记录
func (c *Codec) Decode(key types.Key, data []byte) (*ValueRecord, error) {
	e, err := UnmarshalEntry(data)
	if err != nil {
		return nil, err
	}
	return c.FromEntry(key, e)
}

// ttlSeconds 计算剩余秒数
//
// 零值过期时间返回 0。其余情况至少为 1，避免截断为 0 后被当作永不过期，
// 已经过期的记录同样得到 1。
func ttlSeconds(expires, now time.Time) uint32 {
	if expires.IsZero() {
		return 0
	}

	secs := int64(expires.Sub(now) / time.Second)
	switch {
	case secs < 1:
		return 1
	case secs > math.MaxUint32:
		return math.MaxUint32
	default:
		return uint32(secs)
	}
}

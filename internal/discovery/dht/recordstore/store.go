package recordstore

import (
	"iter"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/dep2p/go-dalight/pkg/lib/log"
	"github.com/dep2p/go-dalight/pkg/types"
)

var logger = log.Logger("discovery/dht/recordstore")

// Store DHT 记录存储
//
// 组合值记录表、Provider 记录表和本地 Provided 集合。
// 所有操作持有同一把互斥锁。
type Store struct {
	mu sync.Mutex

	localID types.NodeID
	cfg     Config
	clock   clock.Clock
	metrics *Metrics

	values    *valueTable
	providers *providerTable
}

// Stats 存储统计快照
type Stats struct {
	// ProviderKeys Provider 表中的不同键数量
	ProviderKeys int `json:"provider_keys"`

	// ProviderRecords Provider 记录总数
	ProviderRecords int `json:"provider_records"`

	// ProvidedRecords 本地 Provided 集合大小
	ProvidedRecords int `json:"provided_records"`

	// RemovedProviders 累计移除的 Provider 记录数量
	RemovedProviders uint64 `json:"removed_providers"`
}

// New 创建记录存储
//
// 参数:
//   - localID: 本节点 ID，创建后不可修改
//   - cfg: 容量配置
//   - db: 值记录的持久化能力（通常为 kv.NewDHTValues(eng)）
//   - opts: 时间源、距离度量、指标
func New(localID types.NodeID, cfg Config, db Database, opts ...Option) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if db == nil {
		return nil, ErrInvalidConfig
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	s := &Store{
		localID:   localID,
		cfg:       cfg,
		clock:     o.clock,
		metrics:   o.metrics,
		values:    newValueTable(db, NewCodec(o.clock), cfg.MaxValueBytes),
		providers: newProviderTable(localID, cfg, o.distancer),
	}

	logger.Debug("记录存储已创建",
		"local", localID.ShortString(),
		"maxValueBytes", cfg.MaxValueBytes,
		"maxProvidersPerKey", cfg.MaxProvidersPerKey,
		"maxProvidedKeys", cfg.MaxProvidedKeys)

	return s, nil
}

// LocalID 返回本节点 ID
func (s *Store) LocalID() types.NodeID {
	return s.localID
}

// Config 返回容量配置
func (s *Store) Config() Config {
	return s.cfg
}

// ============================================================================
//                              值记录
// ============================================================================

// Get 读取值记录
//
// 不存在时返回 (nil, nil)。解码失败返回 ErrDecode，底层故障包装为 *StoreError。
func (s *Store) Get(key types.Key) (*ValueRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.values.get(key)
	switch {
	case err != nil:
		s.metrics.observeValue("get", "error")
	case r == nil:
		s.metrics.observeValue("get", "miss")
	default:
		s.metrics.observeValue("get", "hit")
	}
	return r, err
}

// Put 写入值记录，覆盖同键的已有记录
//
// 值长度 >= MaxValueBytes 时返回 ErrValueTooLarge 且不修改状态。
func (s *Store) Put(r *ValueRecord) error {
	if r == nil {
		return ErrInvalidRecord
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.values.put(r)
	switch {
	case err == nil:
		s.metrics.observeValue("put", "ok")
	case IsValueTooLarge(err):
		s.metrics.observeValue("put", "too_large")
		logger.Debug("拒绝超长值", "key", string(r.Key), "size", len(r.Value), "max", s.cfg.MaxValueBytes)
	default:
		s.metrics.observeValue("put", "error")
	}
	return err
}

// Remove 删除值记录，底层错误被忽略
func (s *Store) Remove(key types.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values.remove(key)
	s.metrics.observeValue("remove", "ok")
}

// Records 遍历全部值记录
//
// 每次调用重新扫描，顺序由底层存储决定。解码失败的记录产出 (nil, err)，
// 迭代继续。
//
// 这是唯一不持有存储锁的操作：值记录只存在于引擎中，引擎本身可并发访问，
// 迭代器基于引擎快照。因此循环体内可以调用 Put、Remove 等方法。
func (s *Store) Records() iter.Seq2[*ValueRecord, error] {
	return s.values.records()
}

// ============================================================================
//                              Provider 记录
// ============================================================================

// AddProvider 添加或更新 Provider 记录
//
// 唯一的错误是新键遇到 MaxProvidedKeys 上限。
// 列表已满且新 Provider 比所有已有记录都远时静默丢弃，不返回错误。
func (s *Store) AddProvider(r ProviderRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	removedBefore := s.providers.removed

	result, err := s.providers.add(r)
	s.metrics.observeAdd(result)
	s.metrics.observeRemoved(int(s.providers.removed - removedBefore))
	s.updateSizes()

	if err != nil {
		logger.Debug("拒绝新的 Provider 键", "key", string(r.Key), "provider", r.Provider.ShortString())
		return err
	}
	if result == addDropped {
		logger.Debug("丢弃较远的 Provider", "key", string(r.Key), "provider", r.Provider.ShortString())
	}
	return nil
}

// Providers 返回键的 Provider 列表快照（按距离升序）
func (s *Store) Providers(key types.Key) []ProviderRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.providers.get(key)
}

// RemoveProvider 移除 (key, provider)，不存在时为 no-op
func (s *Store) RemoveProvider(key types.Key, provider types.NodeID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.providers.remove(key, provider) {
		s.metrics.observeRemoved(1)
		s.updateSizes()
	}
}

// Provided 遍历本地 Provided 集合
//
// 返回调用时刻的快照。
func (s *Store) Provided() iter.Seq[ProviderRecord] {
	s.mu.Lock()
	snapshot := s.providers.providedSnapshot()
	s.mu.Unlock()

	return func(yield func(ProviderRecord) bool) {
		for _, r := range snapshot {
			if !yield(r) {
				return
			}
		}
	}
}

// RemoveExpiredProviders 移除在 now 时刻已过期的 Provider 记录
//
// now 为零值时使用存储的时间源。返回移除数量。
func (s *Store) RemoveExpiredProviders(now time.Time) int {
	if now.IsZero() {
		now = s.clock.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.providers.removeExpired(now)
	if n > 0 {
		s.metrics.observeRemoved(n)
		s.updateSizes()
		logger.Debug("清理过期 Provider", "count", n)
	}
	return n
}

// Stats 返回统计快照
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, records, provided := s.providers.counts()
	return Stats{
		ProviderKeys:     keys,
		ProviderRecords:  records,
		ProvidedRecords:  provided,
		RemovedProviders: s.providers.removed,
	}
}

// updateSizes 刷新容量指标，调用方持有锁
func (s *Store) updateSizes() {
	if s.metrics == nil {
		return
	}
	s.metrics.setSizes(s.providers.counts())
}

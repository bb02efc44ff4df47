package recordstore

import (
	"cmp"
	"slices"
	"time"

	"github.com/dep2p/go-dalight/internal/discovery/dht"
	"github.com/dep2p/go-dalight/pkg/types"
)

// rankedProvider 带距离的 Provider 记录
type rankedProvider struct {
	record   ProviderRecord
	distance dht.Distance
}

// providedKey 本地 Provided 集合的成员标识
type providedKey struct {
	key      types.Key
	provider types.NodeID
}

// addResult AddProvider 的结果分类（用于指标）
type addResult int

const (
	addInserted addResult = iota
	addUpdated
	addDropped
	addRejected
)

// providerTable Provider 记录表与本地 Provided 集合
//
// 不加锁，由 Store 保证互斥。
type providerTable struct {
	localID            types.NodeID
	maxProvidersPerKey int
	maxProvidedKeys    int
	distancer          dht.Distancer

	// key -> 按距离升序的 Provider 列表，长度 ≤ maxProvidersPerKey
	records map[types.Key][]rankedProvider

	// 本地 Provided 集合
	provided map[providedKey]ProviderRecord

	// size 全部 Provider 记录数量
	size int

	// removed 累计被移除的记录数量（淘汰、删除、过期）
	removed uint64
}

func newProviderTable(localID types.NodeID, cfg Config, d dht.Distancer) *providerTable {
	return &providerTable{
		localID:            localID,
		maxProvidersPerKey: cfg.MaxProvidersPerKey,
		maxProvidedKeys:    cfg.MaxProvidedKeys,
		distancer:          d,
		records:            make(map[types.Key][]rankedProvider),
		provided:           make(map[providedKey]ProviderRecord),
	}
}

// add 添加或更新 Provider
//
// 新 Provider 插入到第一个比它远的位置之前，超出容量时淘汰最远的一条。
// 比所有已有记录都远且列表已满时静默丢弃。
func (t *providerTable) add(r ProviderRecord) (addResult, error) {
	list, exists := t.records[r.Key]
	if !exists {
		if len(t.records) >= t.maxProvidedKeys {
			return addRejected, ErrMaxProvidedKeys
		}
		list = make([]rankedProvider, 0, min(t.maxProvidersPerKey, DefaultMaxProvidersPerKey)+1)
	}

	r = r.clone()

	// 已存在：原位更新，不重新排序
	for i := range list {
		if list[i].record.Provider == r.Provider {
			list[i].record = r
			t.commit(r.Key, list, &r, nil)
			return addUpdated, nil
		}
	}

	entry := rankedProvider{
		record:   r,
		distance: t.distancer.Distance(r.Key, r.Provider),
	}

	pos := slices.IndexFunc(list, func(p rankedProvider) bool {
		return entry.distance.Less(p.distance)
	})

	switch {
	case pos >= 0:
		list = slices.Insert(list, pos, entry)
		var evicted *ProviderRecord
		if len(list) > t.maxProvidersPerKey {
			last := list[len(list)-1].record
			evicted = &last
			list = list[:len(list)-1]
		}
		t.commit(r.Key, list, &r, evicted)
		return addInserted, nil

	case len(list) < t.maxProvidersPerKey:
		list = append(list, entry)
		t.commit(r.Key, list, &r, nil)
		return addInserted, nil

	default:
		// 列表已满且更远，不修改任何状态；新键也不会留下空列表
		return addDropped, nil
	}
}

// get 返回键的 Provider 列表快照
func (t *providerTable) get(key types.Key) []ProviderRecord {
	list := t.records[key]
	out := make([]ProviderRecord, 0, len(list))
	for _, p := range list {
		out = append(out, p.record.clone())
	}
	return out
}

// remove 移除 (key, provider)，不存在时为 no-op
func (t *providerTable) remove(key types.Key, provider types.NodeID) bool {
	list, exists := t.records[key]
	if !exists {
		return false
	}

	i := slices.IndexFunc(list, func(p rankedProvider) bool {
		return p.record.Provider == provider
	})
	if i < 0 {
		return false
	}

	removed := list[i].record
	list = slices.Delete(list, i, i+1)
	t.commit(key, list, nil, &removed)
	return true
}

// removeExpired 移除在 now 时刻已过期的记录，返回移除数量
func (t *providerTable) removeExpired(now time.Time) int {
	count := 0
	for key, list := range t.records {
		for _, p := range slices.Clone(list) {
			if p.record.IsExpired(now) && t.remove(key, p.record.Provider) {
				count++
			}
		}
	}
	return count
}

// providedSnapshot 本地 Provided 集合快照，按键和 Provider 排序
func (t *providerTable) providedSnapshot() []ProviderRecord {
	out := make([]ProviderRecord, 0, len(t.provided))
	for _, r := range t.provided {
		out = append(out, r.clone())
	}
	slices.SortFunc(out, func(a, b ProviderRecord) int {
		if c := cmp.Compare(a.Key, b.Key); c != 0 {
			return c
		}
		return slices.Compare(a.Provider[:], b.Provider[:])
	})
	return out
}

// commit 写回键的列表并同步本地 Provided 集合
//
// 所有修改路径都经过这里：空列表删除键，
// upserted 为本节点时加入集合，removed 从集合中移除。
func (t *providerTable) commit(key types.Key, list []rankedProvider, upserted, removed *ProviderRecord) {
	t.size += len(list) - len(t.records[key])

	if len(list) == 0 {
		delete(t.records, key)
	} else {
		t.records[key] = list
	}

	if removed != nil {
		t.removed++
		delete(t.provided, providedKey{key: removed.Key, provider: removed.Provider})
	}
	if upserted != nil && upserted.Provider == t.localID {
		t.provided[providedKey{key: upserted.Key, provider: upserted.Provider}] = *upserted
	}
}

// counts 返回 (键数量, 记录数量, 本地记录数量)
func (t *providerTable) counts() (keys, records, provided int) {
	return len(t.records), t.size, len(t.provided)
}

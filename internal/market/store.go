package market

import "sync"

// SnapshotStore 按品种保存最新快照。
// 只有数据轮询循环写入；HTTP 查询与顾问循环只读。覆盖写整个对象，不做合并。
type SnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string]Snapshot
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{snapshots: make(map[string]Snapshot)}
}

// Set 覆盖写入指定品种的快照。
func (s *SnapshotStore) Set(snap Snapshot) {
	s.mu.Lock()
	s.snapshots[snap.Symbol] = snap
	s.mu.Unlock()
}

// Get 返回指定品种的最新快照。
func (s *SnapshotStore) Get(symbol string) (Snapshot, bool) {
	s.mu.RLock()
	snap, ok := s.snapshots[symbol]
	s.mu.RUnlock()
	return snap, ok
}

// All 返回全部快照的副本。
func (s *SnapshotStore) All() map[string]Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]Snapshot, len(s.snapshots))
	for k, v := range s.snapshots {
		out[k] = v
	}
	return out
}

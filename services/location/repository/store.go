package repository

import (
	"fmt"
	"hash/fnv"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/piresc/fleetwatch/internal/pkg/models"
	"github.com/piresc/fleetwatch/services/location"
)

// DefaultShardCount spreads agents over enough locks that reports for
// different agents rarely contend
const DefaultShardCount = 32

// entry is a stored record plus its insertion sequence
type entry struct {
	rec models.LocationRecord
	seq uint64
}

type shard struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// LocationStore keeps one current record per agent in memory. Agents are
// spread over shards; a shard lock serializes updates for the same agent
// while reports for agents on other shards proceed in parallel.
type LocationStore struct {
	shards []*shard
	seq    atomic.Uint64
	count  atomic.Int64
}

// NewLocationStore creates an empty store with the default shard count
func NewLocationStore() *LocationStore {
	return NewLocationStoreWithShards(DefaultShardCount)
}

// NewLocationStoreWithShards creates an empty store with n shards (at least one)
func NewLocationStoreWithShards(n int) *LocationStore {
	if n < 1 {
		n = 1
	}
	s := &LocationStore{shards: make([]*shard, n)}
	for i := range s.shards {
		s.shards[i] = &shard{entries: make(map[string]*entry)}
	}
	return s
}

var _ location.LocationRepo = (*LocationStore)(nil)

func (s *LocationStore) shardFor(agentID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(agentID))
	return s.shards[h.Sum32()%uint32(len(s.shards))]
}

// Upsert stores rec unless the current record for the same agent is at least
// as recent. Ordering is by LastUpdated, never by arrival.
func (s *LocationStore) Upsert(rec models.LocationRecord) error {
	if rec.AgentID == "" {
		return fmt.Errorf("%w: agent id is required", location.ErrInvalidInput)
	}
	if !rec.Coordinates().Valid() {
		return fmt.Errorf("%w: coordinates out of range (%f, %f)", location.ErrInvalidInput, rec.Latitude, rec.Longitude)
	}

	sh := s.shardFor(rec.AgentID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if cur, ok := sh.entries[rec.AgentID]; ok {
		if !rec.LastUpdated.After(cur.rec.LastUpdated) {
			return location.ErrStaleUpdate
		}
		cur.rec = rec
		return nil
	}

	sh.entries[rec.AgentID] = &entry{rec: rec, seq: s.seq.Add(1)}
	s.count.Add(1)
	return nil
}

// Get returns a copy of the agent's record
func (s *LocationStore) Get(agentID string) (models.LocationRecord, bool) {
	sh := s.shardFor(agentID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	e, ok := sh.entries[agentID]
	if !ok {
		return models.LocationRecord{}, false
	}
	return e.rec, true
}

// Snapshot returns a consistent copy of every record, in the order agents
// were first seen. All shards are read-locked together so no update lands
// mid-copy.
func (s *LocationStore) Snapshot() []models.LocationRecord {
	for _, sh := range s.shards {
		sh.mu.RLock()
	}

	entries := make([]entry, 0, s.count.Load())
	for _, sh := range s.shards {
		for _, e := range sh.entries {
			entries = append(entries, *e)
		}
	}

	for i := len(s.shards) - 1; i >= 0; i-- {
		s.shards[i].mu.RUnlock()
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	out := make([]models.LocationRecord, len(entries))
	for i := range entries {
		out[i] = entries[i].rec
	}
	return out
}

// Remove deregisters an agent. It reports whether a record existed.
func (s *LocationStore) Remove(agentID string) bool {
	sh := s.shardFor(agentID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if _, ok := sh.entries[agentID]; !ok {
		return false
	}
	delete(sh.entries, agentID)
	s.count.Add(-1)
	return true
}

// Len returns the number of tracked agents
func (s *LocationStore) Len() int {
	return int(s.count.Load())
}

// ApplyStatus recomputes the cached status of every record, one shard at a
// time so request traffic is never blocked for a whole pass. It returns
// the number of records whose status changed.
func (s *LocationStore) ApplyStatus(fn func(models.LocationRecord) models.LocationStatus) int {
	changed := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		for _, e := range sh.entries {
			status := fn(e.rec)
			if status != e.rec.Status {
				e.rec.Status = status
				changed++
			}
		}
		sh.mu.Unlock()
	}
	return changed
}

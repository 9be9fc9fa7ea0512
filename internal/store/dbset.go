package store

import (
	"fmt"
	"sort"
	"sync"
)

// DBSet is the Database Set of §4.C: a bounded, lazily materialized
// collection of Databases indexed by non-negative integer. Index 0 exists
// at construction; others appear on first DB(i) call and are never removed
// for the lifetime of the process (§9 Design Notes).
type DBSet struct {
	mu  sync.Mutex
	dbs map[int]*Database
	max int
}

// NewDBSet builds a set bounded to [0, max) and eagerly materializes
// database 0, matching "Index 0 exists at startup" (§3).
func NewDBSet(max int) *DBSet {
	if max < 1 {
		max = 1
	}
	s := &DBSet{dbs: make(map[int]*Database), max: max}
	s.dbs[0] = newDatabase(0)
	return s
}

// Max reports the configured database count, used to bounds-check SELECT
// and MOVE targets.
func (s *DBSet) Max() int { return s.max }

// DB returns the handle for index i, creating it on first access. Callers
// must have already validated 0 <= i < s.Max().
func (s *DBSet) DB(i int) *Database {
	s.mu.Lock()
	defer s.mu.Unlock()
	db, ok := s.dbs[i]
	if !ok {
		db = newDatabase(i)
		s.dbs[i] = db
	}
	return db
}

// Valid reports whether i is a legal database index for this set.
func (s *DBSet) Valid(i int) bool {
	return i >= 0 && i < s.max
}

// Materialized returns the indices of every database that has been touched
// at least once, in ascending order — used by FlushAll and the snapshot
// store, which only persist/clear databases that actually exist.
func (s *DBSet) Materialized() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]int, 0, len(s.dbs))
	for i := range s.dbs {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// FlushAll clears every materialized database (§4.B FLUSHALL).
func (s *DBSet) FlushAll() {
	for _, i := range s.Materialized() {
		s.DB(i).FlushDB()
	}
}

// Move transfers k (and its TTL) from src to the database at dstIndex,
// succeeding only if k is absent there (§3 invariant 5). It is the one
// operation that legitimately touches two databases at once and therefore
// must run under the dispatcher's global lock, not just each Database's own
// mutex, to avoid racing a concurrent MOVE in the opposite direction.
func (s *DBSet) Move(src *Database, k string, dstIndex int) (bool, error) {
	if !s.Valid(dstIndex) {
		return false, fmt.Errorf("ERR DB index is out of range")
	}
	dst := s.DB(dstIndex)
	if dst == src {
		return false, fmt.Errorf("ERR source and destination objects are the same")
	}

	it, ok := src.Peek(k)
	if !ok {
		return false, nil
	}
	if dst.Exists(k) {
		return false, nil
	}

	deadline, volatile := src.ExpireAtOf(k)
	cp := *it
	dst.Set(k, &cp)
	if volatile {
		dst.Expire(k, deadline)
	}
	src.Del(k)
	return true, nil
}

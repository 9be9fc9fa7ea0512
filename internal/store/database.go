package store

import (
	"math/rand"
	"sync"
	"time"

	"github.com/nullbyte-labs/kvstored/internal/glob"
)

// Database is one numbered logical key/value map plus its expiration table
// (§3: "Database", "Expiration Table"). Grounded on the teacher's
// Database/Store/Mu, but the TTL deadline is split into its own map rather
// than embedded on Item, matching the data model's explicit separation of
// "Database: a mapping from Key to Value" from "Expiration Table: a
// mapping from (database-index, Key) to an absolute wall-clock deadline".
type Database struct {
	mu       sync.RWMutex
	index    int
	data     map[string]*Item
	expireAt map[string]time.Time
}

func newDatabase(index int) *Database {
	return &Database{
		index:    index,
		data:     make(map[string]*Item),
		expireAt: make(map[string]time.Time),
	}
}

// Index returns the database's numeric index.
func (db *Database) Index() int { return db.index }

// removeExpiredLocked deletes k if its deadline has passed. Caller must
// hold db.mu for writing. Invariant 1 (§3): the expiration entry is removed
// in the same critical section as the key.
func (db *Database) removeExpiredLocked(k string) bool {
	deadline, volatile := db.expireAt[k]
	if !volatile || time.Now().Before(deadline) {
		return false
	}
	delete(db.data, k)
	delete(db.expireAt, k)
	return true
}

// lazyExpire implements the Lazy path of §4.F: check-then-delete before any
// command observes k.
func (db *Database) lazyExpire(k string) {
	db.mu.Lock()
	db.removeExpiredLocked(k)
	db.mu.Unlock()
}

// Get returns the live Item for k, expiring it first if its deadline has
// passed. ok is false both when k never existed and when it just expired.
func (db *Database) Get(k string) (item *Item, ok bool) {
	db.lazyExpire(k)
	db.mu.Lock()
	defer db.mu.Unlock()
	it, exists := db.data[k]
	if exists {
		it.touch()
	}
	return it, exists
}

// Peek is like Get but does not update access bookkeeping; used by
// read-only introspection (TYPE, EXISTS) that should not perturb LRU-style
// stats.
func (db *Database) Peek(k string) (item *Item, ok bool) {
	db.lazyExpire(k)
	db.mu.RLock()
	defer db.mu.RUnlock()
	it, exists := db.data[k]
	return it, exists
}

// Set stores item under k, clearing any prior expiration entry — matching
// the lifecycle rule that a replacing write destroys the old TTL (§3
// Lifecycles; invariant 2 applies to callers, which must resolve type
// conflicts before calling Set).
func (db *Database) Set(k string, item *Item) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.data[k] = item
	delete(db.expireAt, k)
}

// SetKeepTTL stores item under k without touching any existing expiration
// entry. Used by in-place mutators (LPUSH, HSET, INCR, APPEND, ...) that do
// not "logically replace" the value.
func (db *Database) SetKeepTTL(k string, item *Item) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.data[k] = item
}

// Del removes k (and its TTL, if any). Returns true if k existed.
func (db *Database) Del(k string) bool {
	db.lazyExpire(k)
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.data[k]; !ok {
		return false
	}
	delete(db.data, k)
	delete(db.expireAt, k)
	return true
}

// Exists reports whether k is present (and unexpired).
func (db *Database) Exists(k string) bool {
	_, ok := db.Peek(k)
	return ok
}

// Keys returns every key matching pattern (anchored '*'-glob, §4.E),
// expiring stale entries encountered along the way.
func (db *Database) Keys(pattern string) []string {
	db.mu.Lock()
	defer db.mu.Unlock()
	for k := range db.expireAt {
		db.removeExpiredLocked(k)
	}
	var out []string
	for k := range db.data {
		if glob.Match(pattern, k) {
			out = append(out, k)
		}
	}
	return out
}

// RandomKey picks a uniformly random live key, or "" if the database is
// empty (§4.E RANDOMKEY).
func (db *Database) RandomKey() (string, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if len(db.data) == 0 {
		return "", false
	}
	n := rand.Intn(len(db.data))
	i := 0
	for k := range db.data {
		if i == n {
			return k, true
		}
		i++
	}
	return "", false
}

// Rename moves both the Value and TTL from src to dst atomically (§3
// invariant 4), overwriting any prior dst. Returns false if src is absent.
func (db *Database) Rename(src, dst string) bool {
	db.lazyExpire(src)
	db.mu.Lock()
	defer db.mu.Unlock()
	it, ok := db.data[src]
	if !ok {
		return false
	}
	db.data[dst] = it
	if deadline, volatile := db.expireAt[src]; volatile {
		db.expireAt[dst] = deadline
	} else {
		delete(db.expireAt, dst)
	}
	delete(db.data, src)
	delete(db.expireAt, src)
	return true
}

// Expire installs an absolute deadline for k. Returns false (no change) if
// k is absent, matching §4.F "On missing key, return 0 and make no
// changes."
func (db *Database) Expire(k string, deadline time.Time) bool {
	db.lazyExpire(k)
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.data[k]; !ok {
		return false
	}
	db.expireAt[k] = deadline
	return true
}

// Persist removes k's deadline, idempotently. Returns true only if an entry
// was actually removed.
func (db *Database) Persist(k string) bool {
	db.lazyExpire(k)
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, volatile := db.expireAt[k]; !volatile {
		return false
	}
	delete(db.expireAt, k)
	return true
}

// TTL reports the remaining lifetime of k: (-2, _) if absent, (-1, _) if
// present but not volatile, else the non-negative remaining duration.
func (db *Database) TTL(k string) (remaining time.Duration, code int) {
	db.lazyExpire(k)
	db.mu.RLock()
	defer db.mu.RUnlock()
	if _, ok := db.data[k]; !ok {
		return 0, -2
	}
	deadline, volatile := db.expireAt[k]
	if !volatile {
		return 0, -1
	}
	d := time.Until(deadline)
	if d < 0 {
		d = 0
	}
	return d, 0
}

// ExpireAtOf returns k's absolute deadline and whether k is volatile; COPY
// and MOVE use it to carry a TTL over to the destination key.
func (db *Database) ExpireAtOf(k string) (time.Time, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	t, ok := db.expireAt[k]
	return t, ok
}

// FlushDB clears every key and TTL in this database (§4.B).
func (db *Database) FlushDB() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.data = make(map[string]*Item)
	db.expireAt = make(map[string]time.Time)
}

// Size returns the number of live (possibly not-yet-lazily-expired) keys.
func (db *Database) Size() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.data)
}

// SampleActiveExpire implements the Active sampled sweep of §4.F: examine
// up to 25% of the keys that currently carry a deadline, bounded by a small
// fixed maximum, and delete those past due. Returns the number expired.
func (db *Database) SampleActiveExpire(maxSamples int) int {
	db.mu.Lock()
	defer db.mu.Unlock()

	total := len(db.expireAt)
	if total == 0 {
		return 0
	}
	budget := total / 4
	if budget < 1 {
		budget = 1
	}
	if budget > maxSamples {
		budget = maxSamples
	}

	expired := 0
	sampled := 0
	for k := range db.expireAt {
		if sampled >= budget {
			break
		}
		sampled++
		if db.removeExpiredLocked(k) {
			expired++
		}
	}
	return expired
}

// snapshot returns a deep-enough copy of this database's live data and TTL
// table suitable for gob encoding (§4.A).
func (db *Database) snapshot() (data map[string]*Item, expireAt map[string]time.Time) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	data = make(map[string]*Item, len(db.data))
	for k, v := range db.data {
		cp := *v
		data[k] = &cp
	}
	expireAt = make(map[string]time.Time, len(db.expireAt))
	for k, v := range db.expireAt {
		expireAt[k] = v
	}
	return data, expireAt
}

func (db *Database) restore(data map[string]*Item, expireAt map[string]time.Time) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if data == nil {
		data = make(map[string]*Item)
	}
	if expireAt == nil {
		expireAt = make(map[string]time.Time)
	}
	db.data = data
	db.expireAt = expireAt
}

// Package pubsub implements the PubSub Router (§4.G): exact-channel and
// glob-pattern subscription tables with synchronous fan-out delivery.
// Grounded on the teacher's handler_pubsub.go (state.Channels,
// state.Topics, path.Match), lifted out of AppState into its own
// independently-lockable component.
package pubsub

import (
	"sort"
	"sync"

	"github.com/nullbyte-labs/kvstored/internal/glob"
)

// Subscriber is anything the router can deliver a serialized reply to. The
// command package's *Client satisfies this.
type Subscriber interface {
	// ID distinguishes subscribers for membership checks and must be
	// stable for the subscriber's lifetime.
	ID() uint64
	// Deliver writes a single already-framed RESP reply. Implementations
	// must make this safe to call from any goroutine and must not block
	// the router beyond this one write call (§4.G: "a slow subscriber
	// blocks only its own writes").
	Deliver(frame []byte)
}

// Router owns the channel and pattern subscription tables.
type Router struct {
	mu       sync.Mutex
	channels map[string]map[uint64]Subscriber
	patterns map[string]map[uint64]Subscriber
}

func NewRouter() *Router {
	return &Router{
		channels: make(map[string]map[uint64]Subscriber),
		patterns: make(map[string]map[uint64]Subscriber),
	}
}

// Subscribe adds sub to channel's subscriber set, creating it if needed.
// Returns the subscriber's total subscription count across both tables,
// the "n" in the [subscribe, ch, n] reply envelope (§4.G).
func (r *Router) Subscribe(channel string, sub Subscriber) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.channels[channel]
	if !ok {
		set = make(map[uint64]Subscriber)
		r.channels[channel] = set
	}
	set[sub.ID()] = sub
	return r.totalSubsLocked(sub.ID())
}

// PSubscribe is Subscribe against the pattern table.
func (r *Router) PSubscribe(pattern string, sub Subscriber) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.patterns[pattern]
	if !ok {
		set = make(map[uint64]Subscriber)
		r.patterns[pattern] = set
	}
	set[sub.ID()] = sub
	return r.totalSubsLocked(sub.ID())
}

// Unsubscribe removes sub from channel (or, if channel == "", from every
// channel it is subscribed to — the zero-argument UNSUBSCRIBE semantics of
// §4.G). Returns the list of (channel, remainingCount) pairs removed, in a
// stable order, one per emitted reply envelope.
func (r *Router) Unsubscribe(channel string, sub Subscriber) []Removal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return unsubscribeFrom(r.channels, channel, sub, func() int { return r.totalSubsLocked(sub.ID()) })
}

// PUnsubscribe is Unsubscribe against the pattern table.
func (r *Router) PUnsubscribe(pattern string, sub Subscriber) []Removal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return unsubscribeFrom(r.patterns, pattern, sub, func() int { return r.totalSubsLocked(sub.ID()) })
}

// Removal is one (channel-or-pattern, remaining-subscription-count) pair
// produced by an UNSUBSCRIBE/PUNSUBSCRIBE call.
type Removal struct {
	Name      string
	Remaining int
}

func unsubscribeFrom(table map[string]map[uint64]Subscriber, name string, sub Subscriber, remaining func() int) []Removal {
	if name != "" {
		if set, ok := table[name]; ok {
			delete(set, sub.ID())
			if len(set) == 0 {
				delete(table, name)
			}
		}
		return []Removal{{Name: name, Remaining: remaining()}}
	}

	var names []string
	for n, set := range table {
		if _, ok := set[sub.ID()]; ok {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return []Removal{{Name: "", Remaining: remaining()}}
	}
	sort.Strings(names)
	out := make([]Removal, 0, len(names))
	for _, n := range names {
		delete(table[n], sub.ID())
		if len(table[n]) == 0 {
			delete(table, n)
		}
		out = append(out, Removal{Name: n, Remaining: remaining()})
	}
	return out
}

// totalSubsLocked counts sub's subscriptions across both tables. Caller
// must hold r.mu.
func (r *Router) totalSubsLocked(id uint64) int {
	n := 0
	for _, set := range r.channels {
		if _, ok := set[id]; ok {
			n++
		}
	}
	for _, set := range r.patterns {
		if _, ok := set[id]; ok {
			n++
		}
	}
	return n
}

// RemoveAll drops sub from every table, used on connection teardown.
func (r *Router) RemoveAll(sub Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, set := range r.channels {
		delete(set, sub.ID())
		if len(set) == 0 {
			delete(r.channels, name)
		}
	}
	for name, set := range r.patterns {
		delete(set, sub.ID())
		if len(set) == 0 {
			delete(r.patterns, name)
		}
	}
}

// Publish delivers frame-encoded [message, channel, msg] to every exact
// subscriber of channel and [pmessage, pattern, channel, msg] to every
// matching pattern subscriber (§4.G). The caller supplies both pre-encoded
// frames since encoding belongs to the resp package, not pubsub. Returns
// the total recipient count.
func (r *Router) Publish(channel string, exactFrame []byte, patternFrame func(pattern string) []byte) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	var total int64
	if set, ok := r.channels[channel]; ok {
		for _, sub := range set {
			sub.Deliver(exactFrame)
			total++
		}
	}
	for pattern, set := range r.patterns {
		if !glob.Match(pattern, channel) {
			continue
		}
		frame := patternFrame(pattern)
		for _, sub := range set {
			sub.Deliver(frame)
			total++
		}
	}
	return total
}

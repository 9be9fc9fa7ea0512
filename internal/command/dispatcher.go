// Package command implements the Command Dispatcher (§4.E): mapping a
// parsed RESP request to a handler bound to the connection's selected
// database, enforcing arity, and centralizing type-error handling.
package command

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nullbyte-labs/kvstored/internal/config"
	"github.com/nullbyte-labs/kvstored/internal/logging"
	"github.com/nullbyte-labs/kvstored/internal/pubsub"
	"github.com/nullbyte-labs/kvstored/internal/resp"
	"github.com/nullbyte-labs/kvstored/internal/store"
)

// Handler executes one command against d's state for client c, returning
// the reply to write back. Each handler checks its own arity first, before
// it reads or changes any key, and never mutates state on an arity or type
// error.
type Handler func(d *Dispatcher, c *Client, args []resp.Value) resp.Value

// maxExpireSamplesPerCycle bounds the active sweep's worst-case latency
// (§4.F: "bounded to a small fixed maximum per cycle").
const maxExpireSamplesPerCycle = 20

// Stats are the server-wide counters surfaced by INFO (§4.E-ext).
type Stats struct {
	StartedAt                time.Time
	TotalConnectionsReceived int64
	TotalCommandsExecuted    int64
	TotalKeysExpired         int64
	LastSaveUnix             int64
	ConnectedClients         int64
}

// Dispatcher is the single point of command serialization (§5: "a single
// dispatcher lock ... is the simplest correct design"). Every command,
// regardless of which connection or database it targets, executes while
// holding mu, which is what makes each command atomic with respect to
// every other one.
type Dispatcher struct {
	mu sync.Mutex

	DBs    *store.DBSet
	Router *pubsub.Router
	Config *config.Config
	Log    *logging.Logger

	stats    Stats
	stopHook func()
}

func New(dbs *store.DBSet, router *pubsub.Router, cfg *config.Config, log *logging.Logger) *Dispatcher {
	return &Dispatcher{
		DBs:    dbs,
		Router: router,
		Config: cfg,
		Log:    log,
		stats:  Stats{StartedAt: time.Now()},
	}
}

// Stats returns a point-in-time copy of the server counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		StartedAt:                d.stats.StartedAt,
		TotalConnectionsReceived: atomic.LoadInt64(&d.stats.TotalConnectionsReceived),
		TotalCommandsExecuted:    atomic.LoadInt64(&d.stats.TotalCommandsExecuted),
		TotalKeysExpired:         atomic.LoadInt64(&d.stats.TotalKeysExpired),
		LastSaveUnix:             atomic.LoadInt64(&d.stats.LastSaveUnix),
		ConnectedClients:         atomic.LoadInt64(&d.stats.ConnectedClients),
	}
}

func (d *Dispatcher) OnConnect() {
	atomic.AddInt64(&d.stats.ConnectedClients, 1)
	atomic.AddInt64(&d.stats.TotalConnectionsReceived, 1)
}

func (d *Dispatcher) OnDisconnect() {
	atomic.AddInt64(&d.stats.ConnectedClients, -1)
}

func (d *Dispatcher) MarkSaved(when time.Time) {
	atomic.StoreInt64(&d.stats.LastSaveUnix, when.Unix())
}

// SetStopHook wires the controller's graceful-stop function so the
// SHUTDOWN command (§4.E) can drive the same Running->Stopping transition
// as a signal, instead of the dispatcher reaching into the server package.
func (d *Dispatcher) SetStopHook(fn func()) {
	d.stopHook = fn
}

// Stop triggers the wired stop hook, if any. Safe to call with no hook
// wired (e.g. in tests that construct a Dispatcher directly).
func (d *Dispatcher) Stop() {
	if d.stopHook != nil {
		d.stopHook()
	}
}

// Dispatch looks up cmd's handler, runs the active expiration sweep for
// the client's current database (§4.F: "before handling each request"),
// then executes the handler under the global dispatch lock.
func (d *Dispatcher) Dispatch(c *Client, req resp.Value) resp.Value {
	name := strings.ToUpper(req.Str0())
	handler, ok := handlers[name]
	if !ok {
		return resp.Errorf("ERR unknown command '%s'", req.Str0())
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if db, ok := d.currentDB(c); ok {
		expired := db.SampleActiveExpire(maxExpireSamplesPerCycle)
		if expired > 0 {
			atomic.AddInt64(&d.stats.TotalKeysExpired, int64(expired))
		}
	}

	atomic.AddInt64(&d.stats.TotalCommandsExecuted, 1)
	return handler(d, c, req.Args())
}

// currentDB resolves c's selected database, which always exists because
// DBSet.DB lazily materializes it.
func (d *Dispatcher) currentDB(c *Client) (*store.Database, bool) {
	if !d.DBs.Valid(c.DatabaseID) {
		return nil, false
	}
	return d.DBs.DB(c.DatabaseID), true
}

// DB is the exported form of currentDB used by handler files in this
// package.
func (d *Dispatcher) DB(c *Client) *store.Database {
	return d.DBs.DB(c.DatabaseID)
}

var handlers = map[string]Handler{}

func register(name string, h Handler) {
	handlers[name] = h
}

// Names returns every registered command name, in no particular order.
func Names() []string {
	out := make([]string, 0, len(handlers))
	for k := range handlers {
		out = append(out, k)
	}
	return out
}

package command

import (
	"testing"

	"github.com/nullbyte-labs/kvstored/internal/config"
	"github.com/nullbyte-labs/kvstored/internal/logging"
	"github.com/nullbyte-labs/kvstored/internal/pubsub"
	"github.com/nullbyte-labs/kvstored/internal/resp"
	"github.com/nullbyte-labs/kvstored/internal/store"
)

func newTestDispatcher() (*Dispatcher, *Client) {
	cfg := config.Default()
	d := New(store.NewDBSet(cfg.NumDatabases), pubsub.NewRouter(), cfg, logging.New(nil))
	c := NewClient(func(f []byte) {})
	return d, c
}

func req(args ...string) resp.Value {
	vals := make([]resp.Value, len(args))
	for i, a := range args {
		vals[i] = resp.Bulk(a)
	}
	return resp.ArrayOf(vals...)
}

func TestSetGet(t *testing.T) {
	d, c := newTestDispatcher()
	if reply := d.Dispatch(c, req("SET", "k", "v")); reply.Str != "OK" {
		t.Fatalf("SET reply = %+v, want OK", reply)
	}
	reply := d.Dispatch(c, req("GET", "k"))
	if reply.Bulk != "v" {
		t.Fatalf("GET reply = %+v, want v", reply)
	}
}

func TestGetMissingIsNil(t *testing.T) {
	d, c := newTestDispatcher()
	reply := d.Dispatch(c, req("GET", "missing"))
	if reply.Typ != resp.NilBulk {
		t.Fatalf("GET on a missing key = %+v, want NilBulk", reply)
	}
}

func TestIncrOnNonIntegerIsNotIntegerError(t *testing.T) {
	d, c := newTestDispatcher()
	d.Dispatch(c, req("SET", "n", "foo"))
	reply := d.Dispatch(c, req("INCR", "n"))
	if reply.Typ != resp.Error || reply.Err != resp.NotInteger().Err {
		t.Fatalf("INCR on a non-integer string = %+v, want the NotInteger error", reply)
	}
}

func TestIncrSeedsAtZeroThenAccumulates(t *testing.T) {
	d, c := newTestDispatcher()
	if reply := d.Dispatch(c, req("INCR", "ctr")); reply.Int != 1 {
		t.Fatalf("first INCR = %+v, want 1", reply)
	}
	if reply := d.Dispatch(c, req("INCRBY", "ctr", "5")); reply.Int != 6 {
		t.Fatalf("INCRBY = %+v, want 6", reply)
	}
	if reply := d.Dispatch(c, req("DECRBY", "ctr", "2")); reply.Int != 4 {
		t.Fatalf("DECRBY = %+v, want 4", reply)
	}
}

func TestWrongTypeOnListAsString(t *testing.T) {
	d, c := newTestDispatcher()
	d.Dispatch(c, req("LPUSH", "l", "a"))
	reply := d.Dispatch(c, req("GET", "l"))
	if reply.Typ != resp.Error || reply.Err != resp.WrongType().Err {
		t.Fatalf("GET on a list key = %+v, want the wrong-type error", reply)
	}
}

func TestListPushPopOrdering(t *testing.T) {
	d, c := newTestDispatcher()
	d.Dispatch(c, req("RPUSH", "l", "a", "b", "c"))
	d.Dispatch(c, req("LPUSH", "l", "z"))
	// list is now: z a b c

	reply := d.Dispatch(c, req("LRANGE", "l", "0", "-1"))
	if len(reply.Arr) != 4 || reply.Arr[0].Bulk != "z" || reply.Arr[3].Bulk != "c" {
		t.Fatalf("LRANGE = %+v, want [z a b c]", reply.Arr)
	}

	popped := d.Dispatch(c, req("LPOP", "l"))
	if popped.Bulk != "z" {
		t.Fatalf("LPOP = %+v, want z", popped)
	}
	popped = d.Dispatch(c, req("RPOP", "l"))
	if popped.Bulk != "c" {
		t.Fatalf("RPOP = %+v, want c", popped)
	}
	if reply := d.Dispatch(c, req("LLEN", "l")); reply.Int != 2 {
		t.Fatalf("LLEN = %+v, want 2", reply)
	}
}

func TestListPopToEmptyDeletesKey(t *testing.T) {
	d, c := newTestDispatcher()
	d.Dispatch(c, req("RPUSH", "l", "only"))
	d.Dispatch(c, req("LPOP", "l"))
	if reply := d.Dispatch(c, req("EXISTS", "l")); reply.Int != 0 {
		t.Fatalf("EXISTS after popping the last element = %+v, want 0", reply)
	}
}

func TestHashBasicOps(t *testing.T) {
	d, c := newTestDispatcher()
	d.Dispatch(c, req("HSET", "h", "f1", "v1", "f2", "v2"))
	if reply := d.Dispatch(c, req("HGET", "h", "f1")); reply.Bulk != "v1" {
		t.Fatalf("HGET f1 = %+v, want v1", reply)
	}
	if reply := d.Dispatch(c, req("HLEN", "h")); reply.Int != 2 {
		t.Fatalf("HLEN = %+v, want 2", reply)
	}
	if reply := d.Dispatch(c, req("HDEL", "h", "f1")); reply.Int != 1 {
		t.Fatalf("HDEL f1 = %+v, want 1", reply)
	}
	if reply := d.Dispatch(c, req("HEXISTS", "h", "f1")); reply.Int != 0 {
		t.Fatalf("HEXISTS f1 after delete = %+v, want 0", reply)
	}
}

func TestHIncrBy(t *testing.T) {
	d, c := newTestDispatcher()
	d.Dispatch(c, req("HSET", "h", "n", "10"))
	reply := d.Dispatch(c, req("HINCRBY", "h", "n", "5"))
	if reply.Int != 15 {
		t.Fatalf("HINCRBY = %+v, want 15", reply)
	}
}

func TestExpireAndTTL(t *testing.T) {
	d, c := newTestDispatcher()
	d.Dispatch(c, req("SET", "k", "v"))
	if reply := d.Dispatch(c, req("TTL", "k")); reply.Int != -1 {
		t.Fatalf("TTL before EXPIRE = %+v, want -1", reply)
	}
	d.Dispatch(c, req("EXPIRE", "k", "100"))
	reply := d.Dispatch(c, req("TTL", "k"))
	if reply.Int <= 0 || reply.Int > 100 {
		t.Fatalf("TTL after EXPIRE = %+v, want in (0, 100]", reply)
	}
	d.Dispatch(c, req("PERSIST", "k"))
	if reply := d.Dispatch(c, req("TTL", "k")); reply.Int != -1 {
		t.Fatalf("TTL after PERSIST = %+v, want -1", reply)
	}
}

func TestSelectAndMove(t *testing.T) {
	d, c := newTestDispatcher()
	d.Dispatch(c, req("SET", "k", "v"))
	if reply := d.Dispatch(c, req("MOVE", "k", "1")); reply.Int != 1 {
		t.Fatalf("MOVE = %+v, want 1", reply)
	}
	if reply := d.Dispatch(c, req("EXISTS", "k")); reply.Int != 0 {
		t.Fatalf("EXISTS in source db after MOVE = %+v, want 0", reply)
	}
	d.Dispatch(c, req("SELECT", "1"))
	if reply := d.Dispatch(c, req("GET", "k")); reply.Bulk != "v" {
		t.Fatalf("GET in destination db after SELECT = %+v, want v", reply)
	}
}

func TestUnknownCommand(t *testing.T) {
	d, c := newTestDispatcher()
	reply := d.Dispatch(c, req("NOPE"))
	if reply.Typ != resp.Error {
		t.Fatalf("unknown command reply = %+v, want an error", reply)
	}
}

func TestPingAndEcho(t *testing.T) {
	d, c := newTestDispatcher()
	if reply := d.Dispatch(c, req("PING")); reply.Str != "PONG" {
		t.Fatalf("PING = %+v, want PONG", reply)
	}
	if reply := d.Dispatch(c, req("ECHO", "hi")); reply.Bulk != "hi" {
		t.Fatalf("ECHO = %+v, want hi", reply)
	}
}

func TestShutdownRunsStopHookAndRepliesSilently(t *testing.T) {
	d, c := newTestDispatcher()
	stopped := false
	d.SetStopHook(func() { stopped = true })

	reply := d.Dispatch(c, req("SHUTDOWN"))
	if reply.Typ != resp.Silent {
		t.Fatalf("SHUTDOWN reply = %+v, want a Silent value", reply)
	}
	if !stopped {
		t.Fatal("SHUTDOWN did not invoke the wired stop hook")
	}
}

func TestShutdownWithNoStopHookDoesNotPanic(t *testing.T) {
	d, c := newTestDispatcher()
	reply := d.Dispatch(c, req("SHUTDOWN"))
	if reply.Typ != resp.Silent {
		t.Fatalf("SHUTDOWN reply = %+v, want a Silent value", reply)
	}
}

func TestWrongTypeErrorUsesErrPrefix(t *testing.T) {
	d, c := newTestDispatcher()
	d.Dispatch(c, req("LPUSH", "l", "a"))
	reply := d.Dispatch(c, req("GET", "l"))
	if reply.Typ != resp.Error {
		t.Fatalf("GET on a list key = %+v, want an error", reply)
	}
	if reply.Err != "ERR Operation against a key holding the wrong kind of value" {
		t.Fatalf("GET on a list key err = %q, want the ERR-prefixed message", reply.Err)
	}
}

func TestPublishSubscribe(t *testing.T) {
	d, sub := newTestDispatcher()
	var got [][]byte
	sub2 := NewClient(func(f []byte) { got = append(got, f) })

	reply := d.Dispatch(sub2, req("SUBSCRIBE", "news"))
	if reply.Arr[2].Int != 1 {
		t.Fatalf("SUBSCRIBE envelope = %+v, want count 1", reply)
	}

	n := d.Dispatch(sub, req("PUBLISH", "news", "hello"))
	if n.Int != 1 {
		t.Fatalf("PUBLISH recipients = %+v, want 1", n)
	}
	if len(got) != 1 {
		t.Fatalf("subscriber received %d frames, want 1", len(got))
	}
}

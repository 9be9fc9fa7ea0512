package command

import (
	"strconv"

	"github.com/nullbyte-labs/kvstored/internal/resp"
	"github.com/nullbyte-labs/kvstored/internal/store"
)

func init() {
	register("LPUSH", cmdLPush)
	register("RPUSH", cmdRPush)
	register("LPOP", cmdLPop)
	register("RPOP", cmdRPop)
	register("LLEN", cmdLLen)
	register("LRANGE", cmdLRange)
}

// listOf returns the Deque at k, or (nil, false, false) if absent, or
// (nil, false, true) if present under an incompatible type.
func listOf(db *store.Database, k string) (deque *store.Deque, ok bool, wrongType bool) {
	it, exists := db.Get(k)
	if !exists {
		return nil, false, false
	}
	if it.Kind != store.ListKind {
		return nil, false, true
	}
	return it.List, true, false
}

func cmdLPush(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) < 2 {
		return resp.Arity("lpush")
	}
	db := d.DB(c)
	key := args[0].Bulk
	it, exists := db.Get(key)
	if exists && it.Kind != store.ListKind {
		return resp.WrongType()
	}
	if !exists {
		it = store.NewListItem()
	}
	for _, a := range args[1:] {
		it.List.PushFront(a.Bulk)
	}
	db.SetKeepTTL(key, it)
	return resp.Int(int64(it.List.Len()))
}

func cmdRPush(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) < 2 {
		return resp.Arity("rpush")
	}
	db := d.DB(c)
	key := args[0].Bulk
	it, exists := db.Get(key)
	if exists && it.Kind != store.ListKind {
		return resp.WrongType()
	}
	if !exists {
		it = store.NewListItem()
	}
	for _, a := range args[1:] {
		it.List.PushBack(a.Bulk)
	}
	db.SetKeepTTL(key, it)
	return resp.Int(int64(it.List.Len()))
}

func cmdLPop(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) != 1 {
		return resp.Arity("lpop")
	}
	db := d.DB(c)
	key := args[0].Bulk
	deque, ok, wrongType := listOf(db, key)
	if wrongType {
		return resp.WrongType()
	}
	if !ok {
		return resp.Nil()
	}
	v, popped := deque.PopFront()
	if !popped {
		return resp.Nil()
	}
	if deque.Len() == 0 {
		db.Del(key)
	}
	return resp.Bulk(v)
}

func cmdRPop(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) != 1 {
		return resp.Arity("rpop")
	}
	db := d.DB(c)
	key := args[0].Bulk
	deque, ok, wrongType := listOf(db, key)
	if wrongType {
		return resp.WrongType()
	}
	if !ok {
		return resp.Nil()
	}
	v, popped := deque.PopBack()
	if !popped {
		return resp.Nil()
	}
	if deque.Len() == 0 {
		db.Del(key)
	}
	return resp.Bulk(v)
}

func cmdLLen(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) != 1 {
		return resp.Arity("llen")
	}
	deque, ok, wrongType := listOf(d.DB(c), args[0].Bulk)
	if wrongType {
		return resp.WrongType()
	}
	if !ok {
		return resp.Int(0)
	}
	return resp.Int(int64(deque.Len()))
}

// clampRange resolves Redis-style start/stop indices (negative counts from
// the end, out-of-range values clamp to the bounds) into a half-open
// [lo, hi) slice range over a sequence of length n. An empty or inverted
// result is reported via ok=false.
func clampRange(start, stop, n int64) (lo, hi int, ok bool) {
	if n == 0 {
		return 0, 0, false
	}
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || start >= n || stop < 0 {
		return 0, 0, false
	}
	return int(start), int(stop) + 1, true
}

func cmdLRange(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) != 3 {
		return resp.Arity("lrange")
	}
	start, err1 := strconv.ParseInt(args[1].Bulk, 10, 64)
	stop, err2 := strconv.ParseInt(args[2].Bulk, 10, 64)
	if err1 != nil || err2 != nil {
		return resp.NotInteger()
	}
	deque, ok, wrongType := listOf(d.DB(c), args[0].Bulk)
	if wrongType {
		return resp.WrongType()
	}
	if !ok {
		return resp.ArrayOf()
	}
	lo, hi, inRange := clampRange(start, stop, int64(deque.Len()))
	if !inRange {
		return resp.ArrayOf()
	}
	all := deque.ToSlice()
	out := make([]resp.Value, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, resp.Bulk(all[i]))
	}
	return resp.ArrayOf(out...)
}

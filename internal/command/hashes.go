package command

import (
	"strconv"

	"github.com/nullbyte-labs/kvstored/internal/resp"
	"github.com/nullbyte-labs/kvstored/internal/store"
)

func init() {
	register("HSET", cmdHSet)
	register("HGET", cmdHGet)
	register("HDEL", cmdHDel)
	register("HEXISTS", cmdHExists)
	register("HGETALL", cmdHGetAll)
	register("HKEYS", cmdHKeys)
	register("HVALS", cmdHVals)
	register("HLEN", cmdHLen)
	register("HMGET", cmdHMGet)
	register("HMSET", cmdHMSet)
	register("HINCRBY", cmdHIncrBy)
}

// hashOf returns the field map at k, or (nil, false, false) if absent, or
// (nil, false, true) if present under an incompatible type.
func hashOf(db *store.Database, k string) (h map[string]string, ok bool, wrongType bool) {
	it, exists := db.Get(k)
	if !exists {
		return nil, false, false
	}
	if it.Kind != store.HashKind {
		return nil, false, true
	}
	return it.Hash, true, false
}

// hashForWrite returns the field map at k, creating an empty hash item if k
// is absent. wrongType is set if k exists under an incompatible type.
func hashForWrite(db *store.Database, k string) (h map[string]string, wrongType bool) {
	it, exists := db.Get(k)
	if exists && it.Kind != store.HashKind {
		return nil, true
	}
	if !exists {
		it = store.NewHashItem()
		db.SetKeepTTL(k, it)
	}
	return it.Hash, false
}

func cmdHSet(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) < 3 || len(args)%2 != 1 {
		return resp.Arity("hset")
	}
	h, wrongType := hashForWrite(d.DB(c), args[0].Bulk)
	if wrongType {
		return resp.WrongType()
	}
	var added int64
	for i := 1; i < len(args); i += 2 {
		field, val := args[i].Bulk, args[i+1].Bulk
		if _, exists := h[field]; !exists {
			added++
		}
		h[field] = val
	}
	return resp.Int(added)
}

func cmdHMSet(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) < 3 || len(args)%2 != 1 {
		return resp.Arity("hmset")
	}
	h, wrongType := hashForWrite(d.DB(c), args[0].Bulk)
	if wrongType {
		return resp.WrongType()
	}
	for i := 1; i < len(args); i += 2 {
		h[args[i].Bulk] = args[i+1].Bulk
	}
	return resp.Ok()
}

func cmdHGet(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) != 2 {
		return resp.Arity("hget")
	}
	h, ok, wrongType := hashOf(d.DB(c), args[0].Bulk)
	if wrongType {
		return resp.WrongType()
	}
	if !ok {
		return resp.Nil()
	}
	v, present := h[args[1].Bulk]
	if !present {
		return resp.Nil()
	}
	return resp.Bulk(v)
}

func cmdHDel(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) < 2 {
		return resp.Arity("hdel")
	}
	db := d.DB(c)
	key := args[0].Bulk
	h, ok, wrongType := hashOf(db, key)
	if wrongType {
		return resp.WrongType()
	}
	if !ok {
		return resp.Int(0)
	}
	var removed int64
	for _, a := range args[1:] {
		if _, present := h[a.Bulk]; present {
			delete(h, a.Bulk)
			removed++
		}
	}
	if len(h) == 0 {
		db.Del(key)
	}
	return resp.Int(removed)
}

func cmdHExists(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) != 2 {
		return resp.Arity("hexists")
	}
	h, ok, wrongType := hashOf(d.DB(c), args[0].Bulk)
	if wrongType {
		return resp.WrongType()
	}
	if !ok {
		return resp.Int(0)
	}
	_, present := h[args[1].Bulk]
	return resp.Int(boolToInt(present))
}

func cmdHGetAll(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) != 1 {
		return resp.Arity("hgetall")
	}
	h, ok, wrongType := hashOf(d.DB(c), args[0].Bulk)
	if wrongType {
		return resp.WrongType()
	}
	if !ok {
		return resp.ArrayOf()
	}
	out := make([]resp.Value, 0, len(h)*2)
	for f, v := range h {
		out = append(out, resp.Bulk(f), resp.Bulk(v))
	}
	return resp.ArrayOf(out...)
}

func cmdHKeys(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) != 1 {
		return resp.Arity("hkeys")
	}
	h, ok, wrongType := hashOf(d.DB(c), args[0].Bulk)
	if wrongType {
		return resp.WrongType()
	}
	if !ok {
		return resp.ArrayOf()
	}
	out := make([]resp.Value, 0, len(h))
	for f := range h {
		out = append(out, resp.Bulk(f))
	}
	return resp.ArrayOf(out...)
}

func cmdHVals(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) != 1 {
		return resp.Arity("hvals")
	}
	h, ok, wrongType := hashOf(d.DB(c), args[0].Bulk)
	if wrongType {
		return resp.WrongType()
	}
	if !ok {
		return resp.ArrayOf()
	}
	out := make([]resp.Value, 0, len(h))
	for _, v := range h {
		out = append(out, resp.Bulk(v))
	}
	return resp.ArrayOf(out...)
}

func cmdHLen(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) != 1 {
		return resp.Arity("hlen")
	}
	h, ok, wrongType := hashOf(d.DB(c), args[0].Bulk)
	if wrongType {
		return resp.WrongType()
	}
	if !ok {
		return resp.Int(0)
	}
	return resp.Int(int64(len(h)))
}

func cmdHMGet(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) < 2 {
		return resp.Arity("hmget")
	}
	h, ok, wrongType := hashOf(d.DB(c), args[0].Bulk)
	if wrongType {
		return resp.WrongType()
	}
	out := make([]resp.Value, len(args)-1)
	for i, a := range args[1:] {
		if !ok {
			out[i] = resp.Nil()
			continue
		}
		v, present := h[a.Bulk]
		if !present {
			out[i] = resp.Nil()
			continue
		}
		out[i] = resp.Bulk(v)
	}
	return resp.ArrayOf(out...)
}

func cmdHIncrBy(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) != 3 {
		return resp.Arity("hincrby")
	}
	delta, err := strconv.ParseInt(args[2].Bulk, 10, 64)
	if err != nil {
		return resp.NotInteger()
	}
	h, wrongType := hashForWrite(d.DB(c), args[0].Bulk)
	if wrongType {
		return resp.WrongType()
	}
	field := args[1].Bulk
	var cur int64
	if s, present := h[field]; present {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return resp.NotInteger()
		}
		cur = n
	}
	next := cur + delta
	h[field] = strconv.FormatInt(next, 10)
	return resp.Int(next)
}

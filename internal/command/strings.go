package command

import (
	"strconv"

	"github.com/nullbyte-labs/kvstored/internal/resp"
	"github.com/nullbyte-labs/kvstored/internal/store"
)

func init() {
	register("GET", cmdGet)
	register("SET", cmdSet)
	register("SETNX", cmdSetNX)
	register("GETSET", cmdGetSet)
	register("MGET", cmdMGet)
	register("INCR", cmdIncr)
	register("DECR", cmdDecr)
	register("INCRBY", cmdIncrBy)
	register("DECRBY", cmdDecrBy)
	register("APPEND", cmdAppend)
}

// stringOf returns the string value at k, or ("", false, false) if absent,
// or ("", false, true) if present under an incompatible type.
func stringOf(db *store.Database, k string) (val string, ok bool, wrongType bool) {
	it, exists := db.Get(k)
	if !exists {
		return "", false, false
	}
	if it.Kind != store.StringKind {
		return "", false, true
	}
	return it.Str, true, false
}

func cmdGet(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) != 1 {
		return resp.Arity("get")
	}
	val, ok, wrongType := stringOf(d.DB(c), args[0].Bulk)
	if wrongType {
		return resp.WrongType()
	}
	if !ok {
		return resp.Nil()
	}
	return resp.Bulk(val)
}

func cmdSet(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) < 2 {
		return resp.Arity("set")
	}
	// Only the base two-argument form is required by §4.E; the separate
	// SETNX/GETSET/SETEX-style variants are their own commands rather than
	// option flags on SET.
	d.DB(c).Set(args[0].Bulk, store.NewStringItem(args[1].Bulk))
	return resp.Ok()
}

func cmdSetNX(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) != 2 {
		return resp.Arity("setnx")
	}
	db := d.DB(c)
	if db.Exists(args[0].Bulk) {
		return resp.Int(0)
	}
	db.Set(args[0].Bulk, store.NewStringItem(args[1].Bulk))
	return resp.Int(1)
}

func cmdGetSet(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) != 2 {
		return resp.Arity("getset")
	}
	db := d.DB(c)
	old, ok, wrongType := stringOf(db, args[0].Bulk)
	if wrongType {
		return resp.WrongType()
	}
	db.Set(args[0].Bulk, store.NewStringItem(args[1].Bulk))
	if !ok {
		return resp.Nil()
	}
	return resp.Bulk(old)
}

func cmdMGet(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) < 1 {
		return resp.Arity("mget")
	}
	db := d.DB(c)
	out := make([]resp.Value, len(args))
	for i, a := range args {
		val, ok, wrongType := stringOf(db, a.Bulk)
		if !ok || wrongType {
			out[i] = resp.Nil()
			continue
		}
		out[i] = resp.Bulk(val)
	}
	return resp.ArrayOf(out...)
}

// incrDecrBy implements the shared counter semantics of INCR/DECR/INCRBY/
// DECRBY (§4.E): absent key seeds at the operand; a non-integer existing
// value is a NotInteger error, not WrongType, per scenario 5 in §8.
func incrDecrBy(db *store.Database, key string, delta int64) resp.Value {
	it, exists := db.Get(key)
	if exists && it.Kind != store.StringKind {
		return resp.WrongType()
	}

	var cur int64
	if exists {
		n, err := strconv.ParseInt(it.Str, 10, 64)
		if err != nil {
			return resp.NotInteger()
		}
		cur = n
	}

	next := cur + delta
	db.SetKeepTTL(key, store.NewStringItem(strconv.FormatInt(next, 10)))
	return resp.Int(next)
}

func cmdIncr(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) != 1 {
		return resp.Arity("incr")
	}
	return incrDecrBy(d.DB(c), args[0].Bulk, 1)
}

func cmdDecr(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) != 1 {
		return resp.Arity("decr")
	}
	return incrDecrBy(d.DB(c), args[0].Bulk, -1)
}

func cmdIncrBy(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) != 2 {
		return resp.Arity("incrby")
	}
	n, err := strconv.ParseInt(args[1].Bulk, 10, 64)
	if err != nil {
		return resp.NotInteger()
	}
	return incrDecrBy(d.DB(c), args[0].Bulk, n)
}

func cmdDecrBy(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) != 2 {
		return resp.Arity("decrby")
	}
	n, err := strconv.ParseInt(args[1].Bulk, 10, 64)
	if err != nil {
		return resp.NotInteger()
	}
	// DECR/DECRBY recursed into the same counter in the reference source;
	// the resolved reading (§9) is a sign-flipped operand on the shared path.
	return incrDecrBy(d.DB(c), args[0].Bulk, -n)
}

func cmdAppend(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) != 2 {
		return resp.Arity("append")
	}
	db := d.DB(c)
	val, ok, wrongType := stringOf(db, args[0].Bulk)
	if wrongType {
		return resp.WrongType()
	}
	next := val + args[1].Bulk
	if ok {
		db.SetKeepTTL(args[0].Bulk, store.NewStringItem(next))
	} else {
		db.Set(args[0].Bulk, store.NewStringItem(next))
	}
	return resp.Int(int64(len(next)))
}

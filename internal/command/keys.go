package command

import (
	"bytes"
	"encoding/gob"
	"strconv"
	"time"

	"github.com/nullbyte-labs/kvstored/internal/resp"
	"github.com/nullbyte-labs/kvstored/internal/store"
)

func init() {
	register("DEL", cmdDel)
	register("UNLINK", cmdDel) // no background reclamation distinction in this engine
	register("EXISTS", cmdExists)
	register("EXPIRE", cmdExpire)
	register("EXPIREAT", cmdExpireAt)
	register("PEXPIRE", cmdPExpire)
	register("PEXPIREAT", cmdPExpireAt)
	register("PERSIST", cmdPersist)
	register("TTL", cmdTTL)
	register("PTTL", cmdPTTL)
	register("KEYS", cmdKeys)
	register("MOVE", cmdMove)
	register("RANDOMKEY", cmdRandomKey)
	register("RENAME", cmdRename)
	register("RENAMENX", cmdRenameNX)
	register("TYPE", cmdType)
	register("DUMP", cmdDump)
	register("COPY", cmdCopy)
	register("DBSIZE", cmdDBSize)
}

func cmdDel(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) < 1 {
		return resp.Arity("del")
	}
	db := d.DB(c)
	var n int64
	for _, a := range args {
		if db.Del(a.Bulk) {
			n++
		}
	}
	return resp.Int(n)
}

func cmdExists(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) < 1 {
		return resp.Arity("exists")
	}
	db := d.DB(c)
	var n int64
	for _, a := range args {
		if db.Exists(a.Bulk) {
			n++
		}
	}
	return resp.Int(n)
}

func parseSeconds(s string) (time.Duration, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return time.Duration(n) * time.Second, true
}

func parseMillis(s string) (time.Duration, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return time.Duration(n) * time.Millisecond, true
}

func cmdExpire(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) != 2 {
		return resp.Arity("expire")
	}
	dur, ok := parseSeconds(args[1].Bulk)
	if !ok {
		return resp.NotInteger()
	}
	ok = d.DB(c).Expire(args[0].Bulk, time.Now().Add(dur))
	return resp.Int(boolToInt(ok))
}

func cmdExpireAt(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) != 2 {
		return resp.Arity("expireat")
	}
	secs, err := strconv.ParseInt(args[1].Bulk, 10, 64)
	if err != nil {
		return resp.NotInteger()
	}
	ok := d.DB(c).Expire(args[0].Bulk, time.Unix(secs, 0))
	return resp.Int(boolToInt(ok))
}

func cmdPExpire(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) != 2 {
		return resp.Arity("pexpire")
	}
	dur, ok := parseMillis(args[1].Bulk)
	if !ok {
		return resp.NotInteger()
	}
	// deadline = now + ms, per the resolved open question in §9.
	ok = d.DB(c).Expire(args[0].Bulk, time.Now().Add(dur))
	return resp.Int(boolToInt(ok))
}

func cmdPExpireAt(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) != 2 {
		return resp.Arity("pexpireat")
	}
	ms, err := strconv.ParseInt(args[1].Bulk, 10, 64)
	if err != nil {
		return resp.NotInteger()
	}
	ok := d.DB(c).Expire(args[0].Bulk, time.UnixMilli(ms))
	return resp.Int(boolToInt(ok))
}

func cmdPersist(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) != 1 {
		return resp.Arity("persist")
	}
	return resp.Int(boolToInt(d.DB(c).Persist(args[0].Bulk)))
}

func cmdTTL(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) != 1 {
		return resp.Arity("ttl")
	}
	remaining, code := d.DB(c).TTL(args[0].Bulk)
	if code != 0 {
		return resp.Int(int64(code))
	}
	return resp.Int(int64(remaining.Round(time.Second) / time.Second))
}

func cmdPTTL(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) != 1 {
		return resp.Arity("pttl")
	}
	remaining, code := d.DB(c).TTL(args[0].Bulk)
	if code != 0 {
		return resp.Int(int64(code))
	}
	return resp.Int(int64(remaining / time.Millisecond))
}

func cmdKeys(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) != 1 {
		return resp.Arity("keys")
	}
	keys := d.DB(c).Keys(args[0].Bulk)
	items := make([]resp.Value, len(keys))
	for i, k := range keys {
		items[i] = resp.Bulk(k)
	}
	return resp.ArrayOf(items...)
}

func cmdMove(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) != 2 {
		return resp.Arity("move")
	}
	dstIndex, err := strconv.Atoi(args[1].Bulk)
	if err != nil {
		return resp.NotInteger()
	}
	moved, err := d.DBs.Move(d.DB(c), args[0].Bulk, dstIndex)
	if err != nil {
		return resp.Errorf("%s", err.Error())
	}
	return resp.Int(boolToInt(moved))
}

func cmdRandomKey(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) != 0 {
		return resp.Arity("randomkey")
	}
	k, ok := d.DB(c).RandomKey()
	if !ok {
		return resp.Nil()
	}
	return resp.Bulk(k)
}

func cmdRename(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) != 2 {
		return resp.Arity("rename")
	}
	if !d.DB(c).Rename(args[0].Bulk, args[1].Bulk) {
		return resp.Errorf("ERR no such key")
	}
	return resp.Ok()
}

func cmdRenameNX(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) != 2 {
		return resp.Arity("renamenx")
	}
	db := d.DB(c)
	if !db.Exists(args[0].Bulk) {
		return resp.Errorf("ERR no such key")
	}
	if db.Exists(args[1].Bulk) {
		return resp.Int(0)
	}
	db.Rename(args[0].Bulk, args[1].Bulk)
	return resp.Int(1)
}

func cmdType(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) != 1 {
		return resp.Arity("type")
	}
	it, ok := d.DB(c).Peek(args[0].Bulk)
	if !ok {
		return resp.Simple("none")
	}
	return resp.Simple(it.Kind.String())
}

// cmdDump implements DUMP with an implementation-defined, self-describing
// encoding (gob), consistent with the Snapshot Store's own encoding choice
// in §4.A — the spec leaves the wire format of DUMP unconstrained.
func cmdDump(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) != 1 {
		return resp.Arity("dump")
	}
	it, ok := d.DB(c).Peek(args[0].Bulk)
	if !ok {
		return resp.Nil()
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(it); err != nil {
		return resp.Errorf("ERR dump failed: %s", err.Error())
	}
	return resp.Bulk(buf.String())
}

func cmdCopy(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) < 2 {
		return resp.Arity("copy")
	}
	replace := false
	if len(args) == 3 {
		if args[2].Bulk != "REPLACE" && args[2].Bulk != "replace" {
			return resp.Errorf("ERR syntax error")
		}
		replace = true
	} else if len(args) != 2 {
		return resp.Arity("copy")
	}

	db := d.DB(c)
	src, dst := args[0].Bulk, args[1].Bulk
	it, ok := db.Peek(src)
	if !ok {
		return resp.Int(0)
	}
	if db.Exists(dst) && !replace {
		return resp.Int(0)
	}

	cp := *it
	switch it.Kind {
	case store.ListKind:
		cp.List = store.NewDeque(it.List.ToSlice()...)
	case store.HashKind:
		cp.Hash = make(map[string]string, len(it.Hash))
		for k, v := range it.Hash {
			cp.Hash[k] = v
		}
	}
	db.Set(dst, &cp)
	if deadline, volatile := db.ExpireAtOf(src); volatile {
		db.Expire(dst, deadline)
	}
	return resp.Int(1)
}

func cmdDBSize(d *Dispatcher, c *Client, args []resp.Value) resp.Value {
	if len(args) != 0 {
		return resp.Arity("dbsize")
	}
	return resp.Int(int64(d.DB(c).Size()))
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

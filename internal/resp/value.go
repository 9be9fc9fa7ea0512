// Package resp implements the RESP (REdis Serialization Protocol) framing
// layer: parsing inbound multi-bulk requests and serializing typed replies.
package resp

import "fmt"

// Type identifies the wire-level shape of a Value.
type Type int

const (
	// BulkString is a length-prefixed opaque payload: $len\r\ndata\r\n.
	BulkString Type = iota
	// SimpleString is a short trusted-content string: +data\r\n.
	SimpleString
	// Array is an ordered sequence of Values: *n\r\nitem1...itemn.
	Array
	// Error carries a RESP error message: -msg\r\n.
	Error
	// Integer carries a signed 64-bit number: :n\r\n.
	Integer
	// NilBulk is the RESP "missing bulk string" reply: $-1\r\n.
	NilBulk
	// NilArray is the RESP "missing array" reply: *-1\r\n.
	NilArray
	// Silent emits no bytes at all. Used for the SHUTDOWN reply.
	Silent
)

// Value is a parsed or to-be-serialized RESP value. Only the fields
// relevant to Typ are meaningful; this mirrors the teacher's Value struct
// but narrows the field set to the shapes this protocol subset actually
// uses (no separate "str"/"num" fields for each flavor).
type Value struct {
	Typ Type

	Bulk string
	Str  string
	Err  string
	Int  int64
	Arr  []Value
}

// Str0 returns the command name (argument 0) of an Array value, or "" if v
// is not a non-empty array of bulk strings.
func (v Value) Str0() string {
	if v.Typ != Array || len(v.Arr) == 0 {
		return ""
	}
	return v.Arr[0].Bulk
}

// Args returns the arguments following the command name.
func (v Value) Args() []Value {
	if v.Typ != Array || len(v.Arr) == 0 {
		return nil
	}
	return v.Arr[1:]
}

func Ok() Value                   { return Value{Typ: SimpleString, Str: "OK"} }
func Simple(s string) Value       { return Value{Typ: SimpleString, Str: s} }
func Bulk(s string) Value         { return Value{Typ: BulkString, Bulk: s} }
func Nil() Value                  { return Value{Typ: NilBulk} }
func NilArr() Value               { return Value{Typ: NilArray} }
func Int(n int64) Value           { return Value{Typ: Integer, Int: n} }
func Errorf(format string, a ...any) Value {
	return Value{Typ: Error, Err: fmt.Sprintf(format, a...)}
}
func ArrayOf(items ...Value) Value { return Value{Typ: Array, Arr: items} }
func SilentValue() Value           { return Value{Typ: Silent} }

// WrongType is the canonical error reply for a type mismatch (§7). The
// original source serializes every RedisError with a flat "-ERR %s"
// prefix (miniredis/server.py), including BAD_VALUE's "Operation against
// a key holding the wrong kind of value" text, so this stays ERR rather
// than the real Redis WRONGTYPE prefix.
func WrongType() Value {
	return Value{Typ: Error, Err: "ERR Operation against a key holding the wrong kind of value"}
}

// NotInteger is the canonical error reply for an integer op on a
// non-integer string value.
func NotInteger() Value {
	return Value{Typ: Error, Err: "ERR value is not an integer or out of range"}
}

// Arity is the canonical error reply for a wrong-arity command.
func Arity(cmd string) Value {
	return Errorf("ERR wrong number of arguments for '%s' command", cmd)
}

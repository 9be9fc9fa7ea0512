package resp

import (
	"bytes"
	"strings"
	"testing"
)

func TestReaderReadCommand(t *testing.T) {
	raw := "*2\r\n$3\r\nGET\r\n$3\r\nfoo\r\n"
	r := NewReader(strings.NewReader(raw))
	v, err := r.ReadCommand()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Str0() != "GET" {
		t.Fatalf("Str0() = %q, want GET", v.Str0())
	}
	args := v.Args()
	if len(args) != 1 || args[0].Bulk != "foo" {
		t.Fatalf("Args() = %v, want [foo]", args)
	}
}

func TestReaderRejectsMalformedFrames(t *testing.T) {
	cases := []string{
		"not-a-command\r\n",
		"*0\r\n",
		"*1\r\nGET\r\n",
		"*1\r\n$3\r\nGET", // missing trailing CRLF on the bulk payload
		"*1\r\n$-1\r\n",
	}
	for _, raw := range cases {
		r := NewReader(strings.NewReader(raw))
		if _, err := r.ReadCommand(); err == nil {
			t.Errorf("ReadCommand(%q) succeeded, want protocol error", raw)
		}
	}
}

func TestWriterWriteValue(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Ok(), "+OK\r\n"},
		{Errorf("ERR bad"), "-ERR bad\r\n"},
		{Int(42), ":42\r\n"},
		{Bulk("hi"), "$2\r\nhi\r\n"},
		{Nil(), "$-1\r\n"},
		{NilArr(), "*-1\r\n"},
		{SilentValue(), ""},
		{ArrayOf(Bulk("a"), Int(1)), "*2\r\n$1\r\na\r\n:1\r\n"},
	}
	for _, c := range cases {
		var buf bytes.Buffer
		w := NewWriter(&buf)
		if err := w.WriteValue(c.v); err != nil {
			t.Fatalf("WriteValue error: %v", err)
		}
		if err := w.Flush(); err != nil {
			t.Fatalf("Flush error: %v", err)
		}
		if got := buf.String(); got != c.want {
			t.Errorf("WriteValue(%+v) = %q, want %q", c.v, got, c.want)
		}
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	frame := Serialize(ArrayOf(Bulk("message"), Bulk("chan"), Bulk("payload")))
	r := NewReader(bytes.NewReader(frame))
	v, err := r.ReadCommand()
	if err != nil {
		t.Fatalf("unexpected error re-parsing serialized frame: %v", err)
	}
	if v.Str0() != "message" || len(v.Args()) != 2 {
		t.Fatalf("got %+v", v)
	}
}

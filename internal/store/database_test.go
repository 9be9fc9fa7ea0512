package store

import (
	"testing"
	"time"
)

func TestSetAndGet(t *testing.T) {
	db := newDatabase(0)
	db.Set("k", NewStringItem("v"))
	it, ok := db.Get("k")
	if !ok || it.Str != "v" {
		t.Fatalf("Get(k) = %+v, %v, want v, true", it, ok)
	}
}

func TestSetClearsTTLButSetKeepTTLDoesNot(t *testing.T) {
	db := newDatabase(0)
	db.Set("k", NewStringItem("v"))
	db.Expire("k", time.Now().Add(time.Hour))

	db.SetKeepTTL("k", NewStringItem("v2"))
	if _, code := db.TTL("k"); code != 0 {
		t.Fatalf("TTL after SetKeepTTL code = %d, want 0 (still volatile)", code)
	}

	db.Set("k", NewStringItem("v3"))
	if _, code := db.TTL("k"); code != -1 {
		t.Fatalf("TTL after Set code = %d, want -1 (TTL cleared)", code)
	}
}

func TestExpirationLazy(t *testing.T) {
	db := newDatabase(0)
	db.Set("k", NewStringItem("v"))
	db.Expire("k", time.Now().Add(-time.Second))

	if _, ok := db.Get("k"); ok {
		t.Fatal("Get(k) returned ok=true for an already-expired key")
	}
	if db.Exists("k") {
		t.Fatal("Exists(k) = true for an already-expired key")
	}
}

func TestTTLCodes(t *testing.T) {
	db := newDatabase(0)
	if _, code := db.TTL("missing"); code != -2 {
		t.Errorf("TTL(missing) code = %d, want -2", code)
	}
	db.Set("k", NewStringItem("v"))
	if _, code := db.TTL("k"); code != -1 {
		t.Errorf("TTL(k) code = %d, want -1 (no expiry set)", code)
	}
	db.Expire("k", time.Now().Add(time.Minute))
	remaining, code := db.TTL("k")
	if code != 0 || remaining <= 0 {
		t.Errorf("TTL(k) = %v, %d, want positive duration, 0", remaining, code)
	}
}

func TestRenameMovesValueAndTTL(t *testing.T) {
	db := newDatabase(0)
	db.Set("src", NewStringItem("v"))
	db.Expire("src", time.Now().Add(time.Minute))

	if !db.Rename("src", "dst") {
		t.Fatal("Rename(src, dst) = false, want true")
	}
	if db.Exists("src") {
		t.Fatal("src still exists after Rename")
	}
	if _, code := db.TTL("dst"); code != 0 {
		t.Fatalf("TTL(dst) code = %d, want 0 (TTL carried over)", code)
	}
}

func TestRenameMissingSource(t *testing.T) {
	db := newDatabase(0)
	if db.Rename("nope", "dst") {
		t.Fatal("Rename on a missing source returned true")
	}
}

func TestPersist(t *testing.T) {
	db := newDatabase(0)
	db.Set("k", NewStringItem("v"))
	if db.Persist("k") {
		t.Fatal("Persist on a non-volatile key returned true")
	}
	db.Expire("k", time.Now().Add(time.Minute))
	if !db.Persist("k") {
		t.Fatal("Persist on a volatile key returned false")
	}
	if _, code := db.TTL("k"); code != -1 {
		t.Fatalf("TTL after Persist code = %d, want -1", code)
	}
}

func TestKeysGlob(t *testing.T) {
	db := newDatabase(0)
	db.Set("user:1", NewStringItem("a"))
	db.Set("user:2", NewStringItem("b"))
	db.Set("account:1", NewStringItem("c"))

	got := db.Keys("user:*")
	if len(got) != 2 {
		t.Fatalf("Keys(user:*) = %v, want 2 matches", got)
	}
}

func TestSampleActiveExpireRemovesPastDue(t *testing.T) {
	db := newDatabase(0)
	for i := 0; i < 8; i++ {
		k := string(rune('a' + i))
		db.Set(k, NewStringItem("v"))
		db.Expire(k, time.Now().Add(-time.Second))
	}
	expired := db.SampleActiveExpire(20)
	if expired == 0 {
		t.Fatal("SampleActiveExpire expired 0 keys, want > 0")
	}
}

func TestFlushDB(t *testing.T) {
	db := newDatabase(0)
	db.Set("k", NewStringItem("v"))
	db.FlushDB()
	if db.Size() != 0 {
		t.Fatalf("Size() after FlushDB = %d, want 0", db.Size())
	}
}

package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeGarbage(path string) error {
	return os.WriteFile(path, []byte("not a gob stream"), 0o644)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	s := NewDBSet(16)
	s.DB(0).Set("str", NewStringItem("hello"))
	s.DB(0).Expire("str", time.Now().Add(time.Hour))
	s.DB(2).Set("list", NewListItem("a", "b", "c"))

	if err := Save(dir, "dump", s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	restored := NewDBSet(16)
	if err := Load(dir, "dump", restored); err != nil {
		t.Fatalf("Load: %v", err)
	}

	it, ok := restored.DB(0).Get("str")
	if !ok || it.Str != "hello" {
		t.Fatalf("restored str = %+v, %v, want hello, true", it, ok)
	}
	if _, code := restored.DB(0).TTL("str"); code != 0 {
		t.Fatalf("restored TTL code = %d, want 0 (volatile)", code)
	}

	listIt, ok := restored.DB(2).Get("list")
	if !ok || listIt.List.Len() != 3 {
		t.Fatalf("restored list = %+v, %v, want len 3", listIt, ok)
	}
}

func TestLoadMissingFileIsNotError(t *testing.T) {
	dir := t.TempDir()
	s := NewDBSet(16)
	if err := Load(dir, "nonexistent", s); err != nil {
		t.Fatalf("Load on a missing snapshot returned an error: %v", err)
	}
}

func TestLoadCorruptFileIsFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dump.rdb")
	if err := writeGarbage(path); err != nil {
		t.Fatalf("setup: %v", err)
	}

	s := NewDBSet(16)
	if err := Load(dir, "dump", s); err == nil {
		t.Fatal("Load on a corrupt snapshot returned nil error, want non-nil")
	}
}

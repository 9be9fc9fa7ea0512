package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Port != 6379 || cfg.Host != "127.0.0.1" || cfg.NumDatabases != 16 {
		t.Fatalf("Default() = %+v, unexpected values", cfg)
	}
}

func TestLoadFileAppliesDirectives(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kvstored.conf")
	contents := "# comment line\n" +
		"port 7000\n" +
		"bind 0.0.0.0\n" +
		"dir /var/lib/kvstored\n" +
		"dbfilename mydb.rdb\n" +
		"databases 4\n" +
		"save 60 100\n" +
		"save 300 10\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	cfg := Default()
	if err := LoadFile(path, cfg); err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if cfg.Port != 7000 {
		t.Errorf("Port = %d, want 7000", cfg.Port)
	}
	if cfg.Host != "0.0.0.0" {
		t.Errorf("Host = %q, want 0.0.0.0", cfg.Host)
	}
	if cfg.Dir != "/var/lib/kvstored" {
		t.Errorf("Dir = %q, want /var/lib/kvstored", cfg.Dir)
	}
	if cfg.DBFilename != "mydb" {
		t.Errorf("DBFilename = %q, want mydb (trailing .rdb stripped)", cfg.DBFilename)
	}
	if cfg.NumDatabases != 4 {
		t.Errorf("NumDatabases = %d, want 4", cfg.NumDatabases)
	}
	if len(cfg.Save) != 2 || cfg.Save[0].Seconds != 60 || cfg.Save[1].KeysChanged != 10 {
		t.Errorf("Save = %+v, unexpected", cfg.Save)
	}
}

func TestLoadFileMissingIsNotError(t *testing.T) {
	cfg := Default()
	if err := LoadFile(filepath.Join(t.TempDir(), "absent.conf"), cfg); err != nil {
		t.Fatalf("LoadFile on a missing file returned an error: %v", err)
	}
}

func TestCLIOverridesOutrankFileAndDefaults(t *testing.T) {
	cfg := Default()
	o := CLIOverrides{Port: 9999, Dir: "/tmp/data"}
	o.Apply(cfg)
	if cfg.Port != 9999 || cfg.Dir != "/tmp/data" {
		t.Fatalf("Apply() = %+v, overrides not applied", cfg)
	}
	if cfg.Host != "127.0.0.1" {
		t.Fatalf("Apply() changed Host to %q despite a zero-value override", cfg.Host)
	}
}

func TestParseCLIFlags(t *testing.T) {
	o, err := ParseCLI([]string{"-h", "10.0.0.1", "-p", "6380", "-c", "/etc/kvstored.conf"})
	if err != nil {
		t.Fatalf("ParseCLI: %v", err)
	}
	if o.Host != "10.0.0.1" || o.Port != 6380 || o.ConfigFile != "/etc/kvstored.conf" {
		t.Fatalf("ParseCLI() = %+v, unexpected", o)
	}
}

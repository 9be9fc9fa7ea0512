// Package config implements the ambient configuration stack (§6, §6-ext):
// a redis.conf-style directive file plus the five CLI flags that override
// it, grounded on the teacher's conf.go.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// SaveRule is one parsed "save <seconds> <keys>" directive. The rules are
// collected in Config.Save; no part of the server reads them, so no save
// fires automatically from them.
type SaveRule struct {
	Seconds     int
	KeysChanged int
}

// Config holds every server setting, populated by defaults, then a config
// file, then CLI flags (each later source overriding the former).
type Config struct {
	Host string
	Port int

	Dir          string
	DBFilename   string
	LogFile      string
	PidFile      string
	NumDatabases int

	Save []SaveRule
}

// Default returns the built-in defaults (§6: port 6379, host 127.0.0.1).
func Default() *Config {
	return &Config{
		Host:         "127.0.0.1",
		Port:         6379,
		Dir:          ".",
		DBFilename:   "redisdb",
		NumDatabases: 16,
	}
}

// LoadFile reads a redis.conf-style directive file into cfg. A missing file
// is not an error — the caller proceeds with whatever cfg already holds.
func LoadFile(path string, cfg *Config) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := applyDirective(line, cfg); err != nil {
			return fmt.Errorf("config: %s: %w", path, err)
		}
	}
	return s.Err()
}

func applyDirective(line string, cfg *Config) error {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return nil
	}
	directive, args := fields[0], fields[1:]

	switch directive {
	case "port":
		p, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid port %q", args[0])
		}
		cfg.Port = p
	case "bind":
		cfg.Host = args[0]
	case "dir":
		cfg.Dir = args[0]
	case "dbfilename":
		cfg.DBFilename = strings.TrimSuffix(args[0], ".rdb")
	case "logfile":
		cfg.LogFile = args[0]
	case "pidfile":
		cfg.PidFile = args[0]
	case "databases":
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid databases count %q", args[0])
		}
		cfg.NumDatabases = n
	case "save":
		if len(args) < 2 {
			return fmt.Errorf("save requires <seconds> <keys>")
		}
		secs, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid save seconds %q", args[0])
		}
		keys, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid save keys %q", args[1])
		}
		cfg.Save = append(cfg.Save, SaveRule{Seconds: secs, KeysChanged: keys})
	}
	return nil
}

// Command kvstored runs the server: parse configuration, restore the last
// snapshot, and serve connections until a shutdown signal arrives.
//
// Startup sequence (§6, §4.A, §4.I), grounded on the teacher's main():
//  1. Parse CLI flags.
//  2. Load the config file, if any, then overlay CLI flags on top.
//  3. Open the log destination.
//  4. Build the Database Set and restore the last snapshot from disk.
//  5. Build the PubSub Router and Command Dispatcher.
//  6. Run the Server Controller until shutdown.
package main

import (
	"fmt"
	"os"

	"github.com/nullbyte-labs/kvstored/internal/command"
	"github.com/nullbyte-labs/kvstored/internal/config"
	"github.com/nullbyte-labs/kvstored/internal/logging"
	"github.com/nullbyte-labs/kvstored/internal/pubsub"
	"github.com/nullbyte-labs/kvstored/internal/server"
	"github.com/nullbyte-labs/kvstored/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "kvstored:", err)
		os.Exit(1)
	}
}

func run() error {
	overrides, err := config.ParseCLI(os.Args[1:])
	if err != nil {
		return err
	}

	cfg := config.Default()
	if err := config.LoadFile(overrides.ConfigFile, cfg); err != nil {
		return err
	}
	overrides.Apply(cfg)

	var logDst *os.File = os.Stderr
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logDst = f
	}
	log := logging.New(logDst)

	dbs := store.NewDBSet(cfg.NumDatabases)
	// Corruption is fatal at startup (§4.A); a missing snapshot is not.
	if err := store.Load(cfg.Dir, cfg.DBFilename, dbs); err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	log.Info("restored snapshot from %s/%s.rdb (or started empty)", cfg.Dir, cfg.DBFilename)

	router := pubsub.NewRouter()
	disp := command.New(dbs, router, cfg, log)

	log.Info("kvstored starting, %d databases configured", cfg.NumDatabases)
	ctl := server.New(cfg, disp, log)
	return ctl.Run()
}

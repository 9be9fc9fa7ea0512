package config

import "flag"

// CLIOverrides holds the flags from §6 plus the config-file extension from
// §6-ext. Each non-empty field wins over both the file and the defaults.
type CLIOverrides struct {
	Host       string
	Port       int
	Dir        string
	LogFile    string
	PidFile    string
	ConfigFile string
}

// ParseCLI parses the server's command-line flags: -h host, -p port, -d
// data dir, -l log file, -f pid file, plus -c for the optional config file.
func ParseCLI(args []string) (CLIOverrides, error) {
	fs := flag.NewFlagSet("kvstored", flag.ContinueOnError)
	var o CLIOverrides
	fs.StringVar(&o.Host, "h", "", "bind host (default 127.0.0.1)")
	fs.IntVar(&o.Port, "p", 0, "bind port (default 6379)")
	fs.StringVar(&o.Dir, "d", "", "directory for snapshot files")
	fs.StringVar(&o.LogFile, "l", "", "log file path")
	fs.StringVar(&o.PidFile, "f", "", "pid file path")
	fs.StringVar(&o.ConfigFile, "c", "", "redis.conf-style config file")
	if err := fs.Parse(args); err != nil {
		return CLIOverrides{}, err
	}
	return o, nil
}

// Apply overlays non-zero CLI overrides onto cfg, outranking both the
// config file and the built-in defaults.
func (o CLIOverrides) Apply(cfg *Config) {
	if o.Host != "" {
		cfg.Host = o.Host
	}
	if o.Port != 0 {
		cfg.Port = o.Port
	}
	if o.Dir != "" {
		cfg.Dir = o.Dir
	}
	if o.LogFile != "" {
		cfg.LogFile = o.LogFile
	}
	if o.PidFile != "" {
		cfg.PidFile = o.PidFile
	}
}

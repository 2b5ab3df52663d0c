package main

import (
	"flag"
	"strings"

	"github.com/danmuck/collectdin/internal/config"
)

// stringList collects a repeatable flag.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// loadConfig reads the optional -config file, then applies flag overrides.
// Flags given on the command line win over file values.
func loadConfig(args []string) (config.Config, error) {
	fs := flag.NewFlagSet("collectdin", flag.ContinueOnError)
	path := fs.String("config", "", "path to collectdin TOML config")
	listen := fs.String("listen", "", "UDP listen address (overrides config)")
	admin := fs.String("admin", "", "admin HTTP address, \"off\" disables (overrides config)")
	output := fs.String("output", "", "stdout | log | file path (overrides config)")
	var typesdb stringList
	fs.Var(&typesdb, "typesdb", "types.db path, repeatable (overrides config)")
	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}

	cfg := config.Default()
	if *path != "" {
		loaded, err := config.Load(*path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if *listen != "" {
		cfg.Listen = *listen
	}
	switch *admin {
	case "":
	case "off":
		cfg.AdminAddr = ""
	default:
		cfg.AdminAddr = *admin
	}
	if *output != "" {
		cfg.Output = *output
	}
	if len(typesdb) > 0 {
		cfg.TypesDB = typesdb
	}
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

package config

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultName       = "collectdin"
	DefaultListen     = "0.0.0.0:25826"
	DefaultAdminAddr  = "127.0.0.1:9125"
	DefaultWorkers    = 4
	DefaultBufferSize = 65535
	DefaultTypesDB    = "/usr/share/collectd/types.db"
	DefaultOutput     = "stdout"

	maxWorkers = 256
)

// Config is the collectdin service configuration.
type Config struct {
	Name         string   `toml:"name"`
	Listen       string   `toml:"listen"`
	AdminAddr    string   `toml:"admin_addr"`
	Workers      int      `toml:"workers"`
	BufferSize   int      `toml:"buffer_size"`
	TypesDB      []string `toml:"typesdb"`
	TypesOverlay string   `toml:"types_overlay"`
	Output       string   `toml:"output"`
	CorsOrigins  []string `toml:"cors_origins"`
}

// fileConfig mirrors Config with pointers so keys present in the file, even
// empty ones, can be told apart from absent keys.
type fileConfig struct {
	Name         *string   `toml:"name"`
	Listen       *string   `toml:"listen"`
	AdminAddr    *string   `toml:"admin_addr"`
	Workers      *int      `toml:"workers"`
	BufferSize   *int      `toml:"buffer_size"`
	TypesDB      *[]string `toml:"typesdb"`
	TypesOverlay *string   `toml:"types_overlay"`
	Output       *string   `toml:"output"`
	CorsOrigins  *[]string `toml:"cors_origins"`
}

func Default() Config {
	return Config{
		Name:        DefaultName,
		Listen:      DefaultListen,
		AdminAddr:   DefaultAdminAddr,
		Workers:     DefaultWorkers,
		BufferSize:  DefaultBufferSize,
		TypesDB:     []string{DefaultTypesDB},
		Output:      DefaultOutput,
		CorsOrigins: []string{"http://localhost:3000"},
	}
}

// Load reads a TOML file over the defaults and validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	var raw fileConfig
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("unknown config key: %w\n%s", err, strict.String())
		}
		return Config{}, err
	}

	cfg := Default()
	if raw.Name != nil {
		cfg.Name = strings.TrimSpace(*raw.Name)
	}
	if raw.Listen != nil {
		cfg.Listen = strings.TrimSpace(*raw.Listen)
	}
	if raw.AdminAddr != nil {
		cfg.AdminAddr = strings.TrimSpace(*raw.AdminAddr)
	}
	if raw.Workers != nil {
		cfg.Workers = *raw.Workers
	}
	if raw.BufferSize != nil {
		cfg.BufferSize = *raw.BufferSize
	}
	if raw.TypesDB != nil {
		cfg.TypesDB = *raw.TypesDB
	}
	if raw.TypesOverlay != nil {
		cfg.TypesOverlay = strings.TrimSpace(*raw.TypesOverlay)
	}
	if raw.Output != nil {
		cfg.Output = strings.TrimSpace(*raw.Output)
	}
	if raw.CorsOrigins != nil {
		cfg.CorsOrigins = *raw.CorsOrigins
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("config missing name")
	}
	if _, _, err := net.SplitHostPort(cfg.Listen); err != nil {
		return fmt.Errorf("listen %q invalid: %w", cfg.Listen, err)
	}
	if cfg.AdminAddr != "" {
		if _, _, err := net.SplitHostPort(cfg.AdminAddr); err != nil {
			return fmt.Errorf("admin_addr %q invalid: %w", cfg.AdminAddr, err)
		}
	}
	if cfg.Workers < 1 || cfg.Workers > maxWorkers {
		return fmt.Errorf("workers must be between 1 and %d, got %d", maxWorkers, cfg.Workers)
	}
	if cfg.BufferSize < 1 || cfg.BufferSize > DefaultBufferSize {
		return fmt.Errorf("buffer_size must be between 1 and %d, got %d", DefaultBufferSize, cfg.BufferSize)
	}
	for i, path := range cfg.TypesDB {
		if strings.TrimSpace(path) == "" {
			return fmt.Errorf("typesdb[%d] is empty", i)
		}
	}
	if cfg.Output == "" {
		return fmt.Errorf("config missing output")
	}
	return nil
}

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/danmuck/collectdin/internal/config"
	"github.com/danmuck/collectdin/internal/testutil/testlog"
)

func TestLoadConfigDefaultsWithoutFile(t *testing.T) {
	testlog.Start(t)
	cfg, err := loadConfig(nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != config.DefaultListen || cfg.AdminAddr != config.DefaultAdminAddr {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "collectdin.toml")
	body := "listen = \"127.0.0.1:1000\"\noutput = \"log\"\ntypesdb = [\"/a.db\"]\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadConfig([]string{
		"-config", path,
		"-listen", "127.0.0.1:2000",
		"-admin", "off",
		"-typesdb", "/b.db",
		"-typesdb", "/c.db",
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != "127.0.0.1:2000" {
		t.Fatalf("listen flag should win, got %q", cfg.Listen)
	}
	if cfg.Output != "log" {
		t.Fatalf("file output should survive, got %q", cfg.Output)
	}
	if cfg.AdminAddr != "" {
		t.Fatalf("admin off should disable, got %q", cfg.AdminAddr)
	}
	if len(cfg.TypesDB) != 2 || cfg.TypesDB[0] != "/b.db" || cfg.TypesDB[1] != "/c.db" {
		t.Fatalf("typesdb flags should replace file list, got %v", cfg.TypesDB)
	}
}

func TestLoadConfigRejectsBadFlag(t *testing.T) {
	testlog.Start(t)
	if _, err := loadConfig([]string{"-listen", "nope"}); err == nil {
		t.Fatalf("expected invalid listen address to fail")
	}
	if _, err := loadConfig([]string{"-config", filepath.Join(t.TempDir(), "missing.toml")}); err == nil {
		t.Fatalf("expected missing config to fail")
	}
}

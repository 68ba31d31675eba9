package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte("telegram:\n  token: from-file\n  run_mode: polling\nrate_limit:\n  interval_ms: 300\n  exclude_updates: [\" Callback \"]\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BOT_TOKEN", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telegram.Token != "from-env" {
		t.Fatalf("token = %q, env must win", cfg.Telegram.Token)
	}
	if cfg.Telegram.RunMode != RunModeLongpoll {
		t.Fatalf("run mode = %q", cfg.Telegram.RunMode)
	}
	if !cfg.RateLimit.Excluded(UpdateCallback) || cfg.RateLimit.Excluded(UpdateMessage) {
		t.Fatalf("exclusions = %v", cfg.RateLimit.ExcludeUpdates)
	}
}

func TestLoadMissingFileUsesEnv(t *testing.T) {
	t.Setenv("BOT_TOKEN", "abc")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Telegram.Token != "abc" {
		t.Fatalf("token = %q", cfg.Telegram.Token)
	}
}

func TestNormalizeErrors(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"no token", Config{}},
		{"bad mode", Config{Telegram: TelegramConfig{Token: "t", RunMode: "smoke"}}},
		{"webhook without url", Config{Telegram: TelegramConfig{Token: "t", RunMode: "webhook"}}},
		{"bad exclusion", Config{Telegram: TelegramConfig{Token: "t"}, RateLimit: RateLimitConfig{ExcludeUpdates: []string{"poll"}}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := Normalize(&tc.cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
	if err := Normalize(&Config{}); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("err = %v, want ErrMissingToken", err)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	coredatabase "github.com/m3rciful/typekeeper/core/database"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "telegram:\n  token: t\ndatabase:\n  driver: sqlite\n  path: /tmp/tk.db\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CoreConfig().Telegram.Token != "t" {
		t.Fatalf("core section not decoded: %+v", cfg.CoreConfig().Telegram)
	}
	if cfg.Database.Driver != coredatabase.DriverSQLite {
		t.Fatalf("driver = %q", cfg.Database.Driver)
	}
	if cfg.Reminders.Timezone != DefaultTimezone || cfg.Reminders.Location().String() != DefaultTimezone {
		t.Fatalf("timezone = %q", cfg.Reminders.Timezone)
	}
	if !cfg.Reminders.On() {
		t.Fatalf("reminders must default to on")
	}
	if cfg.Cache.TTL != DefaultCacheTTL || cfg.Sessions.TTL != DefaultSessionTTL {
		t.Fatalf("ttls = %v %v", cfg.Cache.TTL, cfg.Sessions.TTL)
	}
	if cfg.Sessions.Backend != SessionsMemory {
		t.Fatalf("backend = %q", cfg.Sessions.Backend)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `telegram:
  token: t
database:
  driver: postgres
  host: db
reminders:
  timezone: UTC
  enabled: false
cache:
  ttl: 30s
sessions:
  backend: Redis
  redis_url: redis://localhost:6379/0
http:
  listen: " :8080 "
`)
	t.Setenv("SESSIONS_TTL", "2h")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Reminders.On() {
		t.Fatalf("reminders must be off")
	}
	if cfg.Cache.TTL != 30*time.Second || cfg.Sessions.TTL != 2*time.Hour {
		t.Fatalf("ttls = %v %v", cfg.Cache.TTL, cfg.Sessions.TTL)
	}
	if cfg.Sessions.Backend != SessionsRedis || cfg.HTTP.Listen != ":8080" {
		t.Fatalf("sessions=%q http=%q", cfg.Sessions.Backend, cfg.HTTP.Listen)
	}
	if cfg.Database.Port != "5432" {
		t.Fatalf("postgres defaults not applied: %+v", cfg.Database)
	}
}

func TestLoadFatalConditions(t *testing.T) {
	cases := map[string]string{
		"no token":        "database:\n  driver: sqlite\n  path: x.db\n",
		"no database":     "telegram:\n  token: t\n",
		"bad timezone":    "telegram:\n  token: t\ndatabase:\n  driver: sqlite\n  path: x.db\nreminders:\n  timezone: Mars/Olympus\n",
		"bad backend":     "telegram:\n  token: t\ndatabase:\n  driver: sqlite\n  path: x.db\nsessions:\n  backend: etcd\n",
		"redis needs url": "telegram:\n  token: t\ndatabase:\n  driver: sqlite\n  path: x.db\nsessions:\n  backend: redis\n",
	}
	for _, key := range []string{"BOT_TOKEN", "DATABASE_URL", "DB_HOST", "DB_PATH", "REDIS_URL"} {
		t.Setenv(key, "")
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

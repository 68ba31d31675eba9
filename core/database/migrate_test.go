package database

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func TestSelectApplied(t *testing.T) {
	files := []string{"0001_init.up.sql", "0002_add.up.sql", "0003_more.up.sql"}
	got := selectApplied(files, 1, 3)
	if len(got) != 2 || got[0] != "0002_add.up.sql" || got[1] != "0003_more.up.sql" {
		t.Fatalf("unexpected applied set: %v", got)
	}
	if got := selectApplied(files, 3, 3); got != nil {
		t.Fatalf("expected nothing applied, got %v", got)
	}
	if v := parseVersion("0042_x.up.sql"); v != 42 {
		t.Fatalf("parseVersion = %d", v)
	}
}

func TestSQLiteConnectAndMigrate(t *testing.T) {
	ctx := context.Background()
	cfg := Config{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "bot.db")}

	fsys := fstest.MapFS{
		"sqlite/0001_things.up.sql":   {Data: []byte("CREATE TABLE things (id INTEGER PRIMARY KEY, name TEXT NOT NULL);")},
		"sqlite/0001_things.down.sql": {Data: []byte("DROP TABLE things;")},
	}
	if err := RunMigrations(ctx, cfg, fsys); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// Re-running is a no-op.
	if err := RunMigrations(ctx, cfg, fsys); err != nil {
		t.Fatalf("second migrate: %v", err)
	}

	db, err := Connect(ctx, cfg)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, db.Rebind("INSERT INTO things (id, name) VALUES (?, ?)"), 1, "пара"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	var name string
	if err := db.GetContext(ctx, &name, db.Rebind("SELECT name FROM things WHERE id = ?"), 1); err != nil {
		t.Fatalf("select: %v", err)
	}
	if name != "пара" {
		t.Fatalf("name = %q", name)
	}
}

func TestNormalizeRequiresTarget(t *testing.T) {
	cases := []Config{
		{Driver: "postgres"},
		{Driver: "sqlite"},
		{Driver: "mysql", Host: "db"},
	}
	for _, c := range cases {
		c := c
		if err := c.Normalize(); err == nil {
			t.Fatalf("expected error for %+v", c)
		}
	}
	ok := Config{Host: "db", User: "u", Password: "p@ss", Name: "bot"}
	if err := ok.Normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if ok.Driver != DriverPostgres || ok.SSLMode != "disable" || ok.Port != "5432" {
		t.Fatalf("defaults not applied: %+v", ok)
	}
	if want := "postgres://u:p%40ss@db:5432/bot?sslmode=disable"; ok.DSN() != want {
		t.Fatalf("DSN = %q, want %q", ok.DSN(), want)
	}
}

package bootstrap

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/typekeeper/core/config"
	coredatabase "github.com/m3rciful/typekeeper/core/database"
)

func TestRunOrder(t *testing.T) {
	var steps []string
	dbCfg := coredatabase.Config{Driver: coredatabase.DriverSQLite, Path: filepath.Join(t.TempDir(), "bot.db")}
	res, err := Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		Database:   dbCfg,
		Migrations: fstest.MapFS{},
		LoggerInit: func(*coreconfig.Config) error {
			steps = append(steps, "logger")
			return nil
		},
		Connect: func(ctx context.Context, cfg coredatabase.Config) (*sqlx.DB, error) {
			steps = append(steps, "connect")
			return coredatabase.Connect(ctx, cfg)
		},
		Migrate: func(context.Context, coredatabase.Config, fs.FS) error {
			steps = append(steps, "migrate")
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	defer res.DB.Close()
	want := []string{"logger", "connect", "migrate"}
	if len(steps) != len(want) {
		t.Fatalf("steps = %v", steps)
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Fatalf("steps = %v, want %v", steps, want)
		}
	}
}

func TestRunMigrationFailure(t *testing.T) {
	boom := errors.New("boom")
	_, err := Run(context.Background(), Options{
		Config:     &coreconfig.Config{},
		Database:   coredatabase.Config{Driver: coredatabase.DriverSQLite, Path: filepath.Join(t.TempDir(), "bot.db")},
		Migrations: fstest.MapFS{},
		LoggerInit: func(*coreconfig.Config) error { return nil },
		Migrate:    func(context.Context, coredatabase.Config, fs.FS) error { return boom },
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}
}

func TestRunNilConfig(t *testing.T) {
	if _, err := Run(context.Background(), Options{}); err == nil {
		t.Fatal("expected error for nil config")
	}
}

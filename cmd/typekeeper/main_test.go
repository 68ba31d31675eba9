package main

import (
	"testing"
	"time"

	"github.com/m3rciful/typekeeper/internal/config"
)

func TestDefaultTimezoneResolvesWithoutSystemZoneinfo(t *testing.T) {
	// An empty ZONEINFO directory leaves the system files and the
	// embedded database as the only sources.
	t.Setenv("ZONEINFO", t.TempDir())
	loc, err := time.LoadLocation(config.DefaultTimezone)
	if err != nil {
		t.Fatalf("LoadLocation(%q): %v", config.DefaultTimezone, err)
	}
	if loc.String() != config.DefaultTimezone {
		t.Fatalf("location = %s", loc)
	}
}

package bootstrap

import (
	"context"
	"errors"
	"testing"
)

func TestCleanupRunsInReverseOnce(t *testing.T) {
	var order []string
	boom := errors.New("boom")
	var c Cleanup
	c.Add("db", func(context.Context) error {
		order = append(order, "db")
		return nil
	})
	c.Add("redis", func(context.Context) error {
		order = append(order, "redis")
		return boom
	})
	c.Add("http", func(context.Context) error {
		order = append(order, "http")
		return nil
	})

	if err := c.Close(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if len(order) != 3 || order[0] != "http" || order[1] != "redis" || order[2] != "db" {
		t.Fatalf("order = %v", order)
	}
	if err := c.Close(context.Background()); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if len(order) != 3 {
		t.Fatalf("steps ran twice: %v", order)
	}
}

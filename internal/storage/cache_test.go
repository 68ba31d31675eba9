package storage

import (
	"sync"
	"testing"
	"time"

	"github.com/m3rciful/typekeeper/internal/domain"
)

func TestCacheTTL(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	c := NewCache(5 * time.Minute)
	c.now = func() time.Time { return now }

	c.Put(domain.UserRecord{UserID: 1, Schedule: []domain.ScheduleEntry{{ClassName: "A"}}})
	now = now.Add(4*time.Minute + 59*time.Second)
	if _, ok := c.Get(1); !ok {
		t.Fatal("entry expired too early")
	}
	now = now.Add(time.Second)
	if _, ok := c.Get(1); ok {
		t.Fatal("entry should expire at the TTL")
	}
}

func TestCacheReturnsCopies(t *testing.T) {
	c := NewCache(0)
	c.Put(domain.UserRecord{UserID: 1, Schedule: []domain.ScheduleEntry{{ClassName: "A"}}})

	got, _ := c.Get(1)
	got.Schedule[0].ClassName = "mutated"
	again, _ := c.Get(1)
	if again.Schedule[0].ClassName != "A" {
		t.Fatalf("cache entry mutated through a copy: %q", again.Schedule[0].ClassName)
	}
}

func TestCacheSweep(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	c := NewCache(time.Minute)
	c.now = func() time.Time { return now }
	c.Put(domain.UserRecord{UserID: 1})
	now = now.Add(30 * time.Second)
	c.Put(domain.UserRecord{UserID: 2})
	now = now.Add(45 * time.Second)

	if n := c.Sweep(); n != 1 {
		t.Fatalf("Sweep removed %d, want 1", n)
	}
	if c.Len() != 1 {
		t.Fatalf("Len = %d", c.Len())
	}
}

func TestLocksSerializeSameUser(t *testing.T) {
	l := NewLocks()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  int
		maxSeen int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock(77)
			defer unlock()
			mu.Lock()
			active++
			if active > maxSeen {
				maxSeen = active
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()
	if maxSeen != 1 {
		t.Fatalf("%d holders at once for one user", maxSeen)
	}
	if shardOf(77) != shardOf(77) || shardOf(-1) >= lockShards {
		t.Fatal("shard mapping must be stable and in range")
	}
}

package storage

import "sync"

const lockShards = 256

// Locks serializes work per user over a fixed set of mutexes.
// Two users may share a shard; one user always maps to the same shard.
type Locks struct {
	shards [lockShards]sync.Mutex
}

// NewLocks returns a ready lock set.
func NewLocks() *Locks {
	return &Locks{}
}

// Lock acquires the mutex for userID and returns its unlock function.
func (l *Locks) Lock(userID int64) func() {
	m := &l.shards[shardOf(userID)]
	m.Lock()
	return m.Unlock
}

func shardOf(userID int64) uint64 {
	// splitmix64 finalizer
	x := uint64(userID)
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x % lockShards
}

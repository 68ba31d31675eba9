// Package state keeps per-user transient conversation data with a TTL.
// It is domain-agnostic: callers choose the session type.
package state

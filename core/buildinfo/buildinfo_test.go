package buildinfo

import "testing"

func TestShortRev(t *testing.T) {
	if got := shortRev("0123456789abcdef"); got != "0123456" {
		t.Fatalf("shortRev = %q", got)
	}
	if got := shortRev("abc"); got != "abc" {
		t.Fatalf("shortRev = %q", got)
	}
}

func TestStringUsesLdflags(t *testing.T) {
	oldV, oldC := Version, Commit
	t.Cleanup(func() { Version, Commit = oldV, oldC })
	Version, Commit = "v1.0.0", "deadbee"
	if got := String(); got != "v1.0.0 (deadbee)" {
		t.Fatalf("String = %q", got)
	}
}

package version

import (
	"strings"
	"testing"
)

func TestString_UsesLdflags(t *testing.T) {
	oldCommit, oldBuilt := Commit, BuildTime
	t.Cleanup(func() { Commit, BuildTime = oldCommit, oldBuilt })

	Commit = "0123456789abcdef"
	BuildTime = "2024-04-02T10:00:00Z"

	got := String()
	want := "strata dev (commit: 0123456, built: 2024-04-02T10:00:00Z)"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestString_Default(t *testing.T) {
	if got := String(); !strings.HasPrefix(got, "strata dev (commit: ") {
		t.Errorf("unexpected version string %q", got)
	}
}

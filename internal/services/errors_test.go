package services

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapPreservesMarkerAndCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(ErrFolderScoped, "arrangement", "resolve", "ABC_001_02", cause)

	if !errors.Is(err, ErrFolderScoped) {
		t.Fatalf("marker lost: %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause lost: %v", err)
	}
}

func TestWrapDefaultsToFileScope(t *testing.T) {
	err := Wrap(nil, "derivative", "convert", "", nil)
	if ScopeOf(err) != ScopeFile {
		t.Fatalf("expected file scope, got %v", ScopeOf(err))
	}
}

func TestScopeOf(t *testing.T) {
	cases := []struct {
		err  error
		want Scope
	}{
		{Wrap(ErrRunScoped, "pipeline", "setup", "", nil), ScopeRun},
		{Wrap(ErrFolderScoped, "arrangement", "resolve", "", nil), ScopeFolder},
		{Wrap(ErrFileScoped, "derivative", "verify", "", nil), ScopeFile},
		{fmt.Errorf("untagged"), ScopeFile},
	}
	for _, tc := range cases {
		if got := ScopeOf(tc.err); got != tc.want {
			t.Fatalf("ScopeOf(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

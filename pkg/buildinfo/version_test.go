package buildinfo

import (
	"strings"
	"testing"
)

func TestTemplate(t *testing.T) {
	old := Commit
	defer func() { Commit = old }()

	Commit = "0123456789abcdef"
	if got := Template(); !strings.Contains(got, "(0123456,") {
		t.Errorf("Template() = %q, want shortened commit", got)
	}
	Commit = "none"
	if got := Template(); !strings.Contains(got, "(none,") {
		t.Errorf("Template() = %q", got)
	}
}

func TestString(t *testing.T) {
	if got := String(); !strings.HasPrefix(got, "version: "+Version) {
		t.Errorf("String() = %q", got)
	}
}

package buildinfo

import (
	"strings"
	"testing"
)

func TestGetShortensCommit(t *testing.T) {
	old := Commit
	t.Cleanup(func() { Commit = old })

	Commit = "0123456789abcdef"
	if got := Get().Commit; got != "0123456" {
		t.Errorf("Get().Commit = %q, want 0123456", got)
	}

	Commit = "abc"
	if got := Get().Commit; got != "abc" {
		t.Errorf("Get().Commit = %q, want abc", got)
	}
}

func TestTemplate(t *testing.T) {
	tmpl := Template()
	if !strings.HasPrefix(tmpl, "{{.Name}} "+Version) {
		t.Errorf("Template() = %q", tmpl)
	}
}

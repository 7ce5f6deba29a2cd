package avatar

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestGenerate_Deterministic(t *testing.T) {
	a := Generate("Ada Lovelace", "ada@example.com")
	b := Generate("Ada Lovelace", "ada@example.com")
	if a != b {
		t.Error("same identity must yield byte-identical avatars")
	}
}

func TestGenerate_IsInlineSVG(t *testing.T) {
	uri := Generate("Ada Lovelace", "ada@example.com")
	if !strings.HasPrefix(uri, "data:image/svg+xml;base64,") {
		t.Fatalf("expected svg data URI, got %q", uri[:40])
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/svg+xml;base64,"))
	if err != nil {
		t.Fatalf("payload is not valid base64: %v", err)
	}
	svg := string(raw)
	if !strings.Contains(svg, ">AL</text>") {
		t.Errorf("expected initials AL in svg, got %s", svg)
	}
	if !strings.Contains(svg, `fill="#FFFFFF"`) {
		t.Error("initials must be rendered white")
	}
}

func TestGenerate_DifferentEmailsDifferentColors(t *testing.T) {
	// Any two emails may collide on a palette slot; across a handful the
	// backgrounds must vary. The name is fixed so only the colour differs.
	emails := []string{
		"a@example.com", "b@example.com", "c@example.com",
		"d@example.com", "e@example.com", "f@example.com",
		"g@example.com", "h@example.com",
	}
	distinct := make(map[string]struct{})
	for _, email := range emails {
		distinct[Generate("Same Name", email)] = struct{}{}
	}
	if len(distinct) < 2 {
		t.Errorf("expected varied backgrounds across %d emails, got %d distinct avatars", len(emails), len(distinct))
	}
}

func TestInitials(t *testing.T) {
	cases := []struct {
		name  string
		email string
		want  string
	}{
		{"Ada Lovelace", "ada@example.com", "AL"},
		{"Ada Byron Lovelace", "", "AL"},
		{"ada", "", "AD"},
		{"", "grace@example.com", "GR"},
		{"", "", "U"},
	}
	for _, tc := range cases {
		if got := Initials(tc.name, tc.email); got != tc.want {
			t.Errorf("Initials(%q, %q) = %q, want %q", tc.name, tc.email, got, tc.want)
		}
	}
}

func TestIsPlaceholder(t *testing.T) {
	cases := []struct {
		url  string
		want bool
	}{
		{"", true},
		{"https://via.placeholder.com/128", true},
		{"https://i.pravatar.cc/128", true},
		{"https://ui-avatars.com/api/?name=X", true},
		{"data:image/svg+xml;base64,abcd", false},
		{"https://cdn.example.com/me.png", false},
	}
	for _, tc := range cases {
		if got := IsPlaceholder(tc.url); got != tc.want {
			t.Errorf("IsPlaceholder(%q) = %v, want %v", tc.url, got, tc.want)
		}
	}
}

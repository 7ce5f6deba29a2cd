// Package avatar generates deterministic inline SVG avatars: white initials
// on a background colour chosen by hashing the account's email into a fixed
// palette. The same name/email pair always yields byte-identical output.
package avatar

import (
	"encoding/base64"
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"
)

// palette is the fixed set of background colours.
var palette = []string{
	"#6366F1", "#8B5CF6", "#EC4899", "#F59E0B",
	"#10B981", "#3B82F6", "#EF4444", "#14B8A6",
}

// placeholderMarkers identify profile images that should be regenerated.
var placeholderMarkers = []string{"placeholder", "pravatar", "ui-avatars", "default-avatar"}

const svgTemplate = `<svg xmlns="http://www.w3.org/2000/svg" width="128" height="128">` +
	`<rect width="128" height="128" rx="64" fill="%s"/>` +
	`<text x="64" y="64" dy=".35em" fill="#FFFFFF" font-family="sans-serif" ` +
	`font-size="52" font-weight="600" text-anchor="middle">%s</text></svg>`

// Generate returns a data URI holding the avatar for the given identity.
func Generate(name, email string) string {
	svg := fmt.Sprintf(svgTemplate, backgroundFor(email+name), Initials(name, email))
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg))
}

// IsPlaceholder reports whether url is absent or a known placeholder image,
// meaning the avatar should be regenerated.
func IsPlaceholder(url string) bool {
	if url == "" {
		return true
	}
	lower := strings.ToLower(url)
	for _, marker := range placeholderMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// Initials extracts up to two display initials: first and last name initial,
// the first two letters of a single name, or the email local part as a
// fallback.
func Initials(name, email string) string {
	fields := strings.Fields(name)
	switch {
	case len(fields) >= 2:
		return upperFirst(fields[0]) + upperFirst(fields[len(fields)-1])
	case len(fields) == 1:
		return upperPrefix(fields[0], 2)
	}
	if local, _, found := strings.Cut(email, "@"); found && local != "" {
		return upperPrefix(local, 2)
	}
	return "U"
}

// backgroundFor maps the identity string to a palette colour via FNV-1a.
func backgroundFor(s string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return palette[int(h.Sum32())%len(palette)]
}

func upperFirst(s string) string {
	for _, r := range s {
		return string(unicode.ToUpper(r))
	}
	return ""
}

func upperPrefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		runes = runes[:n]
	}
	return strings.ToUpper(string(runes))
}

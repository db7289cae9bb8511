package domain

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Tag is a free-form ticket label. Normalized is the canonical form used for lookups.
type Tag struct {
	ID         string
	Name       string
	Normalized string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NormalizeTagName returns the canonical form of a tag name: NFC, trimmed, lower-cased.
func NormalizeTagName(name string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(norm.NFC.String(name)))
}

// Normalize recomputes the canonical form and reports whether it changed.
func (t *Tag) Normalize() bool {
	canonical := NormalizeTagName(t.Name)
	if t.Normalized == canonical {
		return false
	}
	t.Normalized = canonical
	return true
}

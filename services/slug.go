package services

import (
	"strings"

	"github.com/gosimple/slug"
)

// DeriveSlug turns a title into its URL slug: lowercase, diacritics and
// punctuation stripped, whitespace replaced with hyphens. Deterministic and
// pure; uniqueness is enforced separately against storage.
func DeriveSlug(title string) string {
	return slug.Make(title)
}

// NormalizeTags trims whitespace, drops blank entries and deduplicates
// case-insensitively, keeping the first-seen casing. Idempotent: normalizing
// an already-normalized list returns it unchanged.
func NormalizeTags(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	normalized := make([]string, 0, len(raw))
	for _, entry := range raw {
		name := strings.TrimSpace(entry)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		normalized = append(normalized, name)
	}
	return normalized
}

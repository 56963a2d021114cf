package domain

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	TagsMax      = 8
	TagMinLength = 3
	TagMaxLength = 10
)

var tagPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9]*$`)

// NormalizeTags переводит теги в нижний регистр и убирает дубликаты, сохраняя порядок.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(t)
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// ValidateTags проверяет правила для тегов до нормализации.
func ValidateTags(tags []string) error {
	if len(tags) > TagsMax {
		return BadRequest(fmt.Sprintf("A post can have at most %d tags", TagsMax))
	}
	for _, t := range tags {
		if len(t) < TagMinLength || len(t) > TagMaxLength {
			return BadRequest(fmt.Sprintf("Tag %q must be between %d and %d characters", t, TagMinLength, TagMaxLength))
		}
		if !tagPattern.MatchString(t) {
			return BadRequest(fmt.Sprintf("Tag %q must start with a letter and contain only letters and digits", t))
		}
	}
	return nil
}

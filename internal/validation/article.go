package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	maxTitleLength       = 255
	maxDescriptionLength = 1000
	maxBodyLength        = 100000
	maxTags              = 10
	maxTagLength         = 50
)

// ValidateTitle requires a non-blank title of bounded length.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return fmt.Errorf("title must not exceed %d characters", maxTitleLength)
	}
	return nil
}

func ValidateDescription(description string) error {
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		return fmt.Errorf("description must not exceed %d characters", maxDescriptionLength)
	}
	return nil
}

// ValidateBody requires non-blank article content.
func ValidateBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("body is required")
	}
	if len(body) > maxBodyLength {
		return fmt.Errorf("body must not exceed %d bytes", maxBodyLength)
	}
	return nil
}

// NormalizeTags trims every tag, drops blanks and duplicates and keeps the
// original order. It fails when a tag is too long or there are too many.
func NormalizeTags(tags []string) ([]string, error) {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, raw := range tags {
		tag := strings.TrimSpace(raw)
		if tag == "" {
			continue
		}
		if utf8.RuneCountInString(tag) > maxTagLength {
			return nil, fmt.Errorf("tag %q must not exceed %d characters", tag, maxTagLength)
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	if len(out) > maxTags {
		return nil, fmt.Errorf("an article can have at most %d tags", maxTags)
	}
	return out, nil
}

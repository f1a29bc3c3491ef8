// Package slug derives URL-safe article identifiers from titles.
package slug

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	suffixLen   = 8
	maxAttempts = 5
	fallback    = "article"

	// MaxLen is the width of the slug column.
	MaxLen = 255
	// maxBaseLen leaves room for "-" and the suffix.
	maxBaseLen = MaxLen - 1 - suffixLen
)

// suffixSpace is 36^8, the number of distinct suffixes.
var suffixSpace = pow36(suffixLen)

// ErrExhausted is returned when no free slug was found within maxAttempts draws.
var ErrExhausted = errors.New("slug: no unique slug available")

// RandomSource draws a uniform integer in [0, n).
type RandomSource interface {
	Int64N(n int64) int64
}

// SourceFunc adapts a function to RandomSource.
type SourceFunc func(n int64) int64

// Int64N implements RandomSource.
func (f SourceFunc) Int64N(n int64) int64 { return f(n) }

// Checker reports whether a slug is already taken.
type Checker interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// Generator builds slugs of the form "<base>-<suffix>".
type Generator struct {
	rand RandomSource
}

// NewGenerator returns a generator drawing from src; nil uses the runtime's
// auto-seeded generator.
func NewGenerator(src RandomSource) *Generator {
	if src == nil {
		src = SourceFunc(rand.Int64N)
	}
	return &Generator{rand: src}
}

// Make returns a fresh slug for title. Two calls with the same title differ
// only in the suffix.
func (g *Generator) Make(title string) string {
	return Base(title) + "-" + g.suffix()
}

// Unique draws slugs until checker reports one as free.
func (g *Generator) Unique(ctx context.Context, title string, checker Checker) (string, error) {
	base := Base(title)
	for i := 0; i < maxAttempts; i++ {
		candidate := base + "-" + g.suffix()
		taken, err := checker.SlugExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrExhausted
}

func (g *Generator) suffix() string {
	s := strconv.FormatInt(g.rand.Int64N(suffixSpace), 36)
	if len(s) < suffixLen {
		s = strings.Repeat("0", suffixLen-len(s)) + s
	}
	return s
}

// Base lower-cases title, strips accents and joins alphanumeric runs with "-".
// The result is at most maxBaseLen bytes.
func Base(title string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		title,
	)
	if err != nil {
		folded = title
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}

	if b.Len() == 0 {
		return fallback
	}
	base := b.String()
	if len(base) > maxBaseLen {
		base = strings.TrimRight(base[:maxBaseLen], "-")
	}
	return base
}

func pow36(n int) int64 {
	v := int64(1)
	for i := 0; i < n; i++ {
		v *= 36
	}
	return v
}

package slug

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	gosimple "github.com/gosimple/slug"
)

const (
	MaxLen      = 160
	DefaultBase = "event"

	maxAttempts = 1000
)

var (
	pattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	dashes  = regexp.MustCompile(`[-_]+`)
)

// Checker reports whether a slug is already used, compared case-insensitively.
type Checker interface {
	SlugTaken(ctx context.Context, slug string) (bool, error)
}

// Generate transliterates s to ASCII and joins its words with single dashes.
// gosimple keeps underscores; they become dashes so the result passes Valid.
func Generate(s string) string {
	s = dashes.ReplaceAllString(gosimple.Make(s), "-")
	return cut(s, MaxLen)
}

func Valid(s string) bool {
	return len(s) <= MaxLen && pattern.MatchString(s)
}

// Unique returns base (normalized) when free, otherwise the first free base-2, base-3, ...
func Unique(ctx context.Context, c Checker, base string) (string, error) {
	base = Generate(base)
	if base == "" {
		base = DefaultBase
	}

	for i := 1; i <= maxAttempts; i++ {
		candidate := base
		if i > 1 {
			suffix := fmt.Sprintf("-%d", i)
			candidate = cut(base, MaxLen-len(suffix)) + suffix
		}

		taken, err := c.SlugTaken(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free slug for %q after %d attempts", base, maxAttempts)
}

func cut(s string, n int) string {
	if len(s) > n {
		s = s[:n]
	}
	return strings.Trim(s, "-")
}

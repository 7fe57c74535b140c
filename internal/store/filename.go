package store

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const maxBaseNameLen = 100

var (
	reIllegal    = regexp.MustCompile(`[\\/*?:"<>|]`)
	reSeparators = regexp.MustCompile(`[\s]+`)
	reEdgeTrim   = regexp.MustCompile(`^[_./]+|[_./]+$`)
)

// Sanitize derives a filesystem-safe base name from an arbitrary identifier.
// URLs collapse to host+path; whitespace becomes underscores; characters
// illegal in file names are dropped; the result is capped at 100 characters
// and stripped of leading/trailing separators. An input that sanitizes to
// nothing gets a timestamped fallback, which is the one non-deterministic
// branch: Sanitize(Sanitize(x)) == Sanitize(x) for every non-empty result.
func Sanitize(identifier string) string {
	base := identifier
	if strings.HasPrefix(identifier, "http://") || strings.HasPrefix(identifier, "https://") {
		if u, err := url.Parse(identifier); err == nil {
			base = u.Host + u.Path
		}
	}

	name := reIllegal.ReplaceAllString(base, "")
	name = reSeparators.ReplaceAllString(name, "_")

	if runes := []rune(name); len(runes) > maxBaseNameLen {
		name = string(runes[:maxBaseNameLen])
	}
	name = reEdgeTrim.ReplaceAllString(name, "")

	if name == "" {
		return fmt.Sprintf("article_%d", time.Now().Unix())
	}
	return name
}

package jwt

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultTTL applies when no expiresIn value is configured.
const DefaultTTL = 7 * 24 * time.Hour

var (
	secondsPattern = regexp.MustCompile(`^\d+$`)
	unitPattern    = regexp.MustCompile(`(?i)^(\d+)([smhd])$`)
)

const maxTTLSeconds = math.MaxInt64 / int64(time.Second)

// ParseExpiresIn resolves an expiresIn setting to a TTL.
//
// Only the empty string means [DefaultTTL]; a blank value is an error.
// Surrounding whitespace is otherwise ignored. A purely numeric value is seconds.
// Otherwise the value must be an integer followed by one of s, m, h or d
// (any case), e.g. "30m", "12h", "7d". Zero and every other shape return
// [ErrInvalidTTL].
func ParseExpiresIn(expiresIn string) (time.Duration, error) {
	if expiresIn == "" {
		return DefaultTTL, nil
	}

	trimmed := strings.TrimSpace(expiresIn)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: blank value", ErrInvalidTTL)
	}

	digits, multiplier := trimmed, int64(1)
	if !secondsPattern.MatchString(trimmed) {
		m := unitPattern.FindStringSubmatch(trimmed)
		if m == nil {
			return 0, fmt.Errorf("%w: %q, expected forms like \"3600\", \"30m\", \"12h\", \"7d\"", ErrInvalidTTL, expiresIn)
		}
		digits = m[1]
		switch strings.ToLower(m[2]) {
		case "m":
			multiplier = 60
		case "h":
			multiplier = 60 * 60
		case "d":
			multiplier = 24 * 60 * 60
		}
	}

	value, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || value > maxTTLSeconds/multiplier {
		return 0, fmt.Errorf("%w: %q is out of range", ErrInvalidTTL, expiresIn)
	}
	if value == 0 {
		return 0, fmt.Errorf("%w: %q must be positive", ErrInvalidTTL, expiresIn)
	}

	return time.Duration(value*multiplier) * time.Second, nil
}

package jwt

import (
	"encoding/json"
	"math"
	"time"
)

// Claims is a decoded token payload. Numbers decoded by [Codec.Verify] are
// json.Number values.
type Claims map[string]any

// Subject returns the sub claim, or "" when absent or not a string.
func (c Claims) Subject() string {
	return c.String("sub")
}

// String returns the named claim when it is a string.
func (c Claims) String(name string) string {
	s, _ := c[name].(string)
	return s
}

// IssuedAt returns the iat claim.
func (c Claims) IssuedAt() (time.Time, bool) {
	return c.unixTime("iat")
}

// ExpiresAt returns the exp claim.
func (c Claims) ExpiresAt() (time.Time, bool) {
	return c.unixTime("exp")
}

func (c Claims) unixTime(name string) (time.Time, bool) {
	v, ok := numericClaim(c[name])
	if !ok {
		return time.Time{}, false
	}
	sec, frac := math.Modf(v)
	return time.Unix(int64(sec), int64(frac*1e9)), true
}

func numericClaim(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

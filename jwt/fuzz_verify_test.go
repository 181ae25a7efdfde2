package jwt

import (
	"errors"
	"testing"
)

func FuzzVerify(f *testing.F) {
	valid, err := Issue(Claims{"sub": "u1"}, testSecret, IssueOptions{})
	if err != nil {
		f.Fatalf("Issue: %v", err)
	}
	f.Add(valid)
	f.Add("")
	f.Add("a.b.c")
	f.Add("....")
	f.Add(valid + "x")

	f.Fuzz(func(t *testing.T, token string) {
		claims, err := Verify(token, testSecret)
		if err == nil {
			if claims == nil {
				t.Fatalf("nil claims without error")
			}
			return
		}
		if !errors.Is(err, ErrMalformedToken) &&
			!errors.Is(err, ErrInvalidSignature) &&
			!errors.Is(err, ErrMalformedPayload) &&
			!errors.Is(err, ErrExpiredToken) {
			t.Fatalf("unexpected error class: %v", err)
		}
	})
}

func FuzzParseExpiresIn(f *testing.F) {
	for _, seed := range []string{"", "3600", "30m", "12h", "7d", "30x", "0", "99999999999999999999d"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, in string) {
		d, err := ParseExpiresIn(in)
		if err != nil {
			if !errors.Is(err, ErrInvalidTTL) {
				t.Fatalf("unexpected error: %v", err)
			}
			return
		}
		if d <= 0 {
			t.Fatalf("ParseExpiresIn(%q) = %v, want positive", in, d)
		}
	})
}

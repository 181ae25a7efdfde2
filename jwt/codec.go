package jwt

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	algorithmHS256 = "HS256"
	tokenType      = "JWT"
)

var segmentEncoding = base64.RawURLEncoding

type header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

// IssueOptions controls token issuance.
type IssueOptions struct {
	// ExpiresIn follows [ParseExpiresIn]. Empty means seven days.
	ExpiresIn string
}

// Codec issues and verifies tokens. The zero value is not usable; build one
// with [NewCodec]. A Codec holds no secret and is safe for concurrent use.
type Codec struct {
	now func() time.Time
}

// Option configures a [Codec].
type Option func(*Codec)

// WithClock replaces the wall clock used for iat and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCodec returns a Codec using the wall clock unless overridden.
func NewCodec(opts ...Option) *Codec {
	c := &Codec{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultCodec = NewCodec()

// Issue signs claims with secret using the wall clock. See [Codec.Issue].
func Issue(claims Claims, secret []byte, opts IssueOptions) (string, error) {
	return defaultCodec.Issue(claims, secret, opts)
}

// Verify checks token against secret using the wall clock. See [Codec.Verify].
func Verify(token string, secret []byte) (Claims, error) {
	return defaultCodec.Verify(token, secret)
}

// Issue builds a signed token whose payload is claims plus iat and exp.
// Caller-supplied iat and exp values are overwritten. An invalid ExpiresIn
// fails with [ErrInvalidTTL] before anything is signed.
func (c *Codec) Issue(claims Claims, secret []byte, opts IssueOptions) (string, error) {
	if len(secret) == 0 {
		return "", ErrMissingSecret
	}

	ttl, err := ParseExpiresIn(opts.ExpiresIn)
	if err != nil {
		return "", err
	}

	iat := c.now().Unix()
	payload := make(Claims, len(claims)+2)
	for k, v := range claims {
		payload[k] = v
	}
	payload["iat"] = iat
	payload["exp"] = iat + int64(ttl/time.Second)

	headerPart, err := encodeSegment(header{Alg: algorithmHS256, Typ: tokenType})
	if err != nil {
		return "", fmt.Errorf("encode token header: %w", err)
	}
	payloadPart, err := encodeSegment(payload)
	if err != nil {
		return "", fmt.Errorf("encode token payload: %w", err)
	}

	signingInput := headerPart + "." + payloadPart
	return signingInput + "." + segmentEncoding.EncodeToString(sign(secret, signingInput)), nil
}

// Verify authenticates token and returns its claims.
//
// Failures map to exactly one of [ErrMalformedToken], [ErrInvalidSignature],
// [ErrMalformedPayload] or [ErrExpiredToken], checked in that order.
func (c *Codec) Verify(token string, secret []byte) (Claims, error) {
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, ErrMalformedToken
	}

	if !validSignature(secret, parts[0]+"."+parts[1], parts[2]) {
		return nil, ErrInvalidSignature
	}

	claims, err := decodePayload(parts[1])
	if err != nil {
		return nil, err
	}

	exp, ok := numericClaim(claims["exp"])
	if !ok {
		return nil, fmt.Errorf("%w: exp claim missing or not numeric", ErrExpiredToken)
	}
	if exp < float64(c.now().Unix()) {
		return nil, ErrExpiredToken
	}

	return claims, nil
}

func sign(secret []byte, signingInput string) []byte {
	mac := hmac.New(sha256.New, secret)
	_, _ = io.WriteString(mac, signingInput)
	return mac.Sum(nil)
}

func validSignature(secret []byte, signingInput, segment string) bool {
	// The decoder skips CR and LF even in strict mode.
	if strings.ContainsAny(segment, "\r\n") {
		return false
	}
	got, err := segmentEncoding.Strict().DecodeString(segment)
	if err != nil {
		return false
	}

	want := sign(secret, signingInput)
	return subtle.ConstantTimeCompare(got, want) == 1
}

func decodePayload(segment string) (Claims, error) {
	raw, err := segmentEncoding.DecodeString(segment)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var claims Claims
	if err := dec.Decode(&claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if claims == nil {
		return nil, fmt.Errorf("%w: payload is not an object", ErrMalformedPayload)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after payload", ErrMalformedPayload)
	}

	return claims, nil
}

func encodeSegment(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return segmentEncoding.EncodeToString(data), nil
}

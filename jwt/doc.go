// Package jwt issues and verifies compact HS256 tokens used as the console
// session credential.
//
// Tokens are three base64url (unpadded) segments joined by '.':
//
//	base64url({"alg":"HS256","typ":"JWT"}) . base64url(claims) . base64url(HMAC-SHA256)
//
// The codec is deliberately minimal: one algorithm, one shared secret, no key
// ids and no revocation. Generic JWT libraries restricted to HS256 accept the
// tokens produced here.
//
// # Verification order
//
// [Codec.Verify] checks segment count, then the signature, and only then decodes
// the payload and checks expiry. Payload bytes are never interpreted before the
// signature is accepted.
package jwt

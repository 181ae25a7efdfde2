package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
)

const (
	minCost       = 1 << 14
	minSaltLength = 16
	minKeyLength  = 32
	maxKeyLength  = 1024
)

// ErrKDF wraps failures of the random source or the key derivation itself.
var ErrKDF = errors.New("password key derivation failed")

// Config holds the scrypt cost parameters and output sizes.
//
// Config instances are intended to be configured during initialization and then
// treated as immutable. Changing N, R or P invalidates every existing hash because
// the stored format does not record them.
type Config struct {
	N          int
	R          int
	P          int
	SaltLength int
	KeyLength  int
}

// DefaultConfig returns N=16384, r=8, p=1 with a 16-byte salt and 64-byte key.
func DefaultConfig() Config {
	return Config{
		N:          1 << 14,
		R:          8,
		P:          1,
		SaltLength: 16,
		KeyLength:  64,
	}
}

// Scrypt derives and verifies stored password hashes. It is safe for concurrent use.
type Scrypt struct {
	config Config
	rand   io.Reader
}

// NewScrypt validates cfg and returns a hasher.
func NewScrypt(cfg Config) (*Scrypt, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return &Scrypt{config: cfg, rand: rand.Reader}, nil
}

// Config returns the parameters the hasher was built with.
func (s *Scrypt) Config() Config {
	return s.config
}

// Derive hashes password with a fresh random salt and returns the encoded
// stored hash. Password bytes are used exactly as given.
func (s *Scrypt) Derive(password string) (string, error) {
	salt := make([]byte, s.config.SaltLength)
	if _, err := io.ReadFull(s.rand, salt); err != nil {
		return "", fmt.Errorf("%w: %v", ErrKDF, err)
	}
	saltHex := hex.EncodeToString(salt)

	key, err := s.derive(password, saltHex, s.config.KeyLength)
	if err != nil {
		return "", err
	}

	return StoredHash{Kind: KindScrypt, Salt: saltHex, Key: key}.String(), nil
}

// Verify reports whether password matches stored. Malformed or unrecognized
// stored values return false; Verify never panics on hostile input.
func (s *Scrypt) Verify(password string, stored string) bool {
	return s.VerifyParsed(password, ParseStoredHash(stored))
}

// VerifyParsed is Verify over an already parsed hash.
func (s *Scrypt) VerifyParsed(password string, stored StoredHash) bool {
	if stored.Kind != KindScrypt {
		return false
	}
	if len(stored.Key) == 0 || len(stored.Key) > maxKeyLength {
		return false
	}

	// Output length follows the stored key so a truncated key cannot match a prefix.
	computed, err := s.derive(password, stored.Salt, len(stored.Key))
	if err != nil {
		return false
	}
	if len(computed) != len(stored.Key) {
		return false
	}

	return subtle.ConstantTimeCompare(computed, stored.Key) == 1
}

func (s *Scrypt) derive(password, saltHex string, keyLength int) ([]byte, error) {
	key, err := scrypt.Key([]byte(password), []byte(saltHex), s.config.N, s.config.R, s.config.P, keyLength)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKDF, err)
	}
	return key, nil
}

func validateConfig(cfg Config) error {
	if cfg.N < minCost {
		return errors.New("password N must be >= 16384")
	}
	if cfg.N&(cfg.N-1) != 0 {
		return errors.New("password N must be a power of two")
	}
	if cfg.R < 1 {
		return errors.New("password R must be >= 1")
	}
	if cfg.P < 1 {
		return errors.New("password P must be >= 1")
	}
	if uint64(cfg.R)*uint64(cfg.P) >= 1<<30 {
		return errors.New("password R*P must be < 2^30")
	}
	if cfg.SaltLength < minSaltLength {
		return errors.New("password salt length must be >= 16")
	}
	if cfg.KeyLength < minKeyLength || cfg.KeyLength > maxKeyLength {
		return errors.New("password key length must be between 32 and 1024")
	}

	return nil
}

package password

import (
	"encoding/hex"
	"strings"
)

const (
	algorithmID = "scrypt"
	separator   = "$"
)

// Kind identifies the scheme of a parsed stored hash.
type Kind uint8

const (
	// KindUnrecognized marks a stored value that cannot be verified.
	KindUnrecognized Kind = iota
	// KindScrypt marks a well-formed scrypt hash.
	KindScrypt
)

func (k Kind) String() string {
	switch k {
	case KindScrypt:
		return algorithmID
	default:
		return "unrecognized"
	}
}

// StoredHash is the parsed form of a persisted password hash.
//
// Salt keeps the hex text exactly as stored because it is the KDF salt input.
// Key holds the decoded derived key. Both are empty unless Kind is KindScrypt.
type StoredHash struct {
	Kind Kind
	Salt string
	Key  []byte
}

// ParseStoredHash parses stored into its tagged form. Any string with the wrong
// number of fields, an unknown tag, or an empty or non-hex segment yields a
// StoredHash of KindUnrecognized.
func ParseStoredHash(stored string) StoredHash {
	parts := strings.Split(stored, separator)
	if len(parts) != 3 {
		return StoredHash{}
	}
	if parts[0] != algorithmID {
		return StoredHash{}
	}

	saltHex, keyHex := parts[1], parts[2]
	if saltHex == "" || keyHex == "" {
		return StoredHash{}
	}
	if _, err := hex.DecodeString(saltHex); err != nil {
		return StoredHash{}
	}
	key, err := hex.DecodeString(keyHex)
	if err != nil || len(key) == 0 {
		return StoredHash{}
	}

	return StoredHash{Kind: KindScrypt, Salt: saltHex, Key: key}
}

// String encodes h in the persisted format. Unrecognized hashes encode to "".
func (h StoredHash) String() string {
	if h.Kind != KindScrypt {
		return ""
	}

	var b strings.Builder
	b.Grow(len(algorithmID) + len(h.Salt) + hex.EncodedLen(len(h.Key)) + 2)
	b.WriteString(algorithmID)
	b.WriteString(separator)
	b.WriteString(h.Salt)
	b.WriteString(separator)
	b.WriteString(hex.EncodeToString(h.Key))
	return b.String()
}

package password

var defaultHasher = mustDefault()

func mustDefault() *Scrypt {
	s, err := NewScrypt(DefaultConfig())
	if err != nil {
		panic(err)
	}
	return s
}

// Derive hashes password with the default parameters. See [Scrypt.Derive].
func Derive(password string) (string, error) {
	return defaultHasher.Derive(password)
}

// Verify checks password against stored with the default parameters.
// See [Scrypt.Verify].
func Verify(password, stored string) bool {
	return defaultHasher.Verify(password, stored)
}

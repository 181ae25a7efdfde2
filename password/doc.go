// Package password implements password hashing and verification with scrypt.
//
// # Output format
//
// Hashes are encoded as three '$'-delimited fields:
//
//	scrypt$<salt-hex>$<key-hex>
//
// The format does not carry cost parameters, so every hash in a deployment is
// derived and verified with the same [Config]. The scrypt salt input is the
// salt's hex text, which keeps hashes written by earlier console releases
// verifiable.
//
// # Architecture boundaries
//
// This package owns hashing, verification and the stored-hash encoding only.
// Credential lookup and login policy belong to the Engine.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords. Callers supply plaintext and receive hashes.
//   - Import any other consoleauth package.
//   - Report why a stored hash failed to parse; Verify only answers true or false.
package password

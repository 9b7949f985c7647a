// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 YuzuDice Contributors

// Package auth checks the admin API token. The configured secret is either
// the token itself or its argon2id hash in PHC string format, as produced
// by HashToken.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
)

// OWASP-recommended argon2id parameters.
const (
	argon2Time    = 1         // iterations
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4         // parallelism
	argon2SaltLen = 16        // salt length in bytes
	argon2KeyLen  = 32        // output length in bytes

	hashPrefix = "$argon2id$"
)

// ErrEmptyToken is returned when attempting to hash an empty token.
var ErrEmptyToken = oops.Code("AUTH_EMPTY_TOKEN").Errorf("token cannot be empty")

// IsHash reports whether secret looks like a HashToken result.
func IsHash(secret string) bool {
	return strings.HasPrefix(secret, hashPrefix)
}

// HashToken produces an argon2id hash of token.
func HashToken(token string) (string, error) {
	if token == "" {
		return "", ErrEmptyToken
	}

	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}

	hash := argon2.IDKey([]byte(token), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// VerifyHash checks token against an encoded hash. A malformed hash is an
// error; a mismatch is (false, nil).
func VerifyHash(token, encodedHash string) (bool, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("invalid hash format")
	}
	if parts[1] != "argon2id" {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("unsupported hash algorithm: %s", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}

	var memory, iterations, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}
	if threads > 255 {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("threads value %d exceeds uint8 max", threads)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}
	keyLen := len(expected)
	if keyLen <= 0 || keyLen > 1<<10 {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("invalid hash key length: %d", keyLen)
	}

	computed := argon2.IDKey([]byte(token), salt, iterations, memory, uint8(threads), uint32(keyLen))
	return subtle.ConstantTimeCompare(computed, expected) == 1, nil
}

// Verifier checks presented tokens against the configured secret.
type Verifier struct {
	secret string
	hashed bool
}

// NewVerifier creates a Verifier. An empty secret accepts every token.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret, hashed: IsHash(secret)}
}

// Open reports whether no secret is configured.
func (v *Verifier) Open() bool { return v.secret == "" }

// Verify reports whether presented matches the secret. It only errors when
// the configured hash is malformed.
func (v *Verifier) Verify(presented string) (bool, error) {
	switch {
	case v.Open():
		return true, nil
	case presented == "":
		return false, nil
	case v.hashed:
		return VerifyHash(presented, v.secret)
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(v.secret)) == 1, nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TourMind Contributors

package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
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
)

// Password hashing schemes.
const (
	// SchemeArgon2id is the default: salted, slow, PHC-encoded.
	SchemeArgon2id = "argon2id"
	// SchemeSHA256 writes unsalted hex sha256 digests, the format earlier
	// deployments stored. Weak against offline attack; kept only for
	// compatibility with graphs written by those deployments.
	SchemeSHA256 = "sha256"
)

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code("AUTH_INVALID_INPUT").Errorf("password cannot be empty")

// PasswordHasher provides password hashing and verification.
type PasswordHasher interface {
	// Hash produces a storable hash of the password.
	Hash(password string) (string, error)

	// Verify checks if the password matches the hash.
	// Returns (true, nil) on match, (false, nil) on mismatch, or error on invalid hash.
	Verify(password, hash string) (bool, error)

	// NeedsUpgrade returns true if the stored hash should be rewritten
	// in this hasher's format after a successful verification.
	NeedsUpgrade(hash string) bool
}

// NewHasher returns the hasher for a configured scheme name.
func NewHasher(scheme string) (PasswordHasher, error) {
	switch scheme {
	case "", SchemeArgon2id:
		return NewArgon2idHasher(), nil
	case SchemeSHA256:
		return NewSHA256Hasher(), nil
	default:
		return nil, oops.Code("CONFIG_INVALID").
			With("scheme", scheme).
			Errorf("unknown password scheme %q", scheme)
	}
}

// Argon2idHasher implements PasswordHasher using argon2id. Its Verify also
// accepts legacy unsalted sha256 digests so accounts created under
// SchemeSHA256 keep working; NeedsUpgrade reports true for them and the
// credential store rehashes on the next successful login.
type Argon2idHasher struct{}

// NewArgon2idHasher creates a new Argon2idHasher.
func NewArgon2idHasher() *Argon2idHasher {
	return &Argon2idHasher{}
}

// Hash produces an argon2id hash of the password.
func (h *Argon2idHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}

	hash := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	// Encode as PHC string format
	// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)

	return encoded, nil
}

// Verify checks if the password matches the hash. Legacy hex digests are
// compared in constant time against a freshly computed sha256.
func (h *Argon2idHasher) Verify(password, encodedHash string) (bool, error) {
	if isLegacyDigest(encodedHash) {
		return verifyLegacyDigest(password, encodedHash), nil
	}

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

	var memory, time, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}

	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}

	// Validate threads fits in uint8 to prevent silent truncation
	if threads > 255 {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("threads value %d exceeds uint8 max", threads)
	}

	// Validate key length to prevent integer overflow in uint32 conversion
	keyLen := len(expectedHash)
	if keyLen <= 0 || keyLen > 1<<30 {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("invalid hash key length: %d", keyLen)
	}

	computedHash := argon2.IDKey([]byte(password), salt, time, memory, uint8(threads), uint32(keyLen))

	if subtle.ConstantTimeCompare(computedHash, expectedHash) == 1 {
		return true, nil
	}

	return false, nil
}

// NeedsUpgrade returns true if the hash is not argon2id (e.g., a legacy digest).
func (h *Argon2idHasher) NeedsUpgrade(hash string) bool {
	return !strings.HasPrefix(hash, "$argon2id$")
}

// SHA256Hasher implements PasswordHasher with an unsalted hex digest.
// Deterministic and fast, which is exactly what makes it weak; selected
// only via SchemeSHA256 for compatibility with existing graphs.
type SHA256Hasher struct{}

// NewSHA256Hasher creates a new SHA256Hasher.
func NewSHA256Hasher() *SHA256Hasher {
	return &SHA256Hasher{}
}

// Hash produces the hex sha256 digest of the password.
func (h *SHA256Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	return hashSHA256(password), nil
}

// Verify compares the digest of password against the stored digest.
func (h *SHA256Hasher) Verify(password, hash string) (bool, error) {
	if !isLegacyDigest(hash) {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("stored hash is not a sha256 digest")
	}
	return verifyLegacyDigest(password, hash), nil
}

// NeedsUpgrade always returns false; this hasher never rewrites hashes.
func (h *SHA256Hasher) NeedsUpgrade(string) bool {
	return false
}

func hashSHA256(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// isLegacyDigest reports whether hash looks like an unsalted hex sha256
// digest (64 lowercase hex chars).
func isLegacyDigest(hash string) bool {
	if len(hash) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(hash)
	return err == nil
}

func verifyLegacyDigest(password, digest string) bool {
	computed := hashSHA256(password)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1
}

// AngelaMos | 2026
// security.go

package core

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

var ErrInvalidHash = errors.New("invalid password hash")

type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
	keyLen  uint32
}

// currentArgon is the cost used for new hashes. Stored hashes with any other
// cost are upgraded on the next successful login.
var currentArgon = argonParams{
	memory:  64 * 1024,
	time:    1,
	threads: 4,
	keyLen:  32,
}

const saltLength = 16

func (p argonParams) derive(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, p.keyLen)
}

func (p argonParams) encode(salt, hash []byte) string {
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.memory,
		p.time,
		p.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)
}

func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	return currentArgon.encode(salt, currentArgon.derive(password, salt)), nil
}

// VerifyPassword reports whether password matches encodedHash. When it does
// and the stored cost is outdated, rehash holds a replacement hash.
func VerifyPassword(password, encodedHash string) (valid bool, rehash string, err error) {
	params, salt, want, err := decodeHash(encodedHash)
	if err != nil {
		return false, "", err
	}

	got := params.derive(password, salt)
	if subtle.ConstantTimeCompare(want, got) != 1 {
		return false, "", nil
	}

	if params == currentArgon {
		return true, "", nil
	}

	upgraded, hashErr := HashPassword(password)
	if hashErr != nil {
		//nolint:nilerr // verified; upgrade is retried on the next login
		return true, "", nil
	}
	return true, upgraded, nil
}

var dummyHash = sync.OnceValue(func() string {
	hash, err := HashPassword("timing-equalizer")
	if err != nil {
		return currentArgon.encode(make([]byte, saltLength), make([]byte, currentArgon.keyLen))
	}
	return hash
})

// VerifyPasswordTimingSafe spends the same argon2 work whether or not the
// account exists. A nil or empty hash never verifies.
func VerifyPasswordTimingSafe(
	password string,
	encodedHash *string,
) (bool, string, error) {
	if encodedHash == nil || *encodedHash == "" {
		//nolint:errcheck // only burns time
		_, _, _ = VerifyPassword(password, dummyHash())
		return false, "", nil
	}

	return VerifyPassword(password, *encodedHash)
}

func decodeHash(encodedHash string) (argonParams, []byte, []byte, error) {
	var params argonParams

	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return params, nil, nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return params, nil, nil, fmt.Errorf("version %q: %w", parts[2], ErrInvalidHash)
	}

	if _, err := fmt.Sscanf(
		parts[3],
		"m=%d,t=%d,p=%d",
		&params.memory,
		&params.time,
		&params.threads,
	); err != nil {
		return params, nil, nil, fmt.Errorf("params: %w", ErrInvalidHash)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return params, nil, nil, fmt.Errorf("salt: %w", ErrInvalidHash)
	}

	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(hash) == 0 {
		return params, nil, nil, fmt.Errorf("hash: %w", ErrInvalidHash)
	}

	//nolint:gosec // G115: argon2 key lengths are small
	params.keyLen = uint32(len(hash))

	return params, salt, hash, nil
}

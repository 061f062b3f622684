package hasher

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/dtroode/gatekeeper/internal/model"
)

const (
	saltLength = 16
	keyLength  = 32
)

var errInvalidHash = errors.New("invalid argon2id hash format")

var _ model.PasswordHasher = (*Argon2)(nil)

// Params are the Argon2id cost parameters.
type Params struct {
	Time   uint32
	MemKiB uint32
	Par    uint8
}

// Argon2 hashes passwords with Argon2id and encodes them in the PHC string format.
type Argon2 struct {
	params Params
}

// NewArgon2 creates a hasher with the given cost parameters.
func NewArgon2(params Params) *Argon2 {
	if params.Time == 0 {
		params.Time = 1
	}
	if params.MemKiB == 0 {
		params.MemKiB = 64 * 1024
	}
	if params.Par == 0 {
		params.Par = 1
	}
	return &Argon2{params: params}
}

// Hash returns a salted Argon2id hash of password.
func (h *Argon2) Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.params.Time, h.params.MemKiB, h.params.Par, keyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.MemKiB, h.params.Time, h.params.Par,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether password matches the encoded hash. Malformed hashes never match.
func (h *Argon2) Verify(password, encoded string) bool {
	params, salt, key, err := decode(encoded)
	if err != nil {
		return false
	}

	candidate := argon2.IDKey([]byte(password), salt, params.Time, params.MemKiB, params.Par, uint32(len(key)))
	return subtle.ConstantTimeCompare(key, candidate) == 1
}

func decode(encoded string) (Params, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return Params{}, nil, nil, errInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return Params{}, nil, nil, errInvalidHash
	}
	if version != argon2.Version {
		return Params{}, nil, nil, fmt.Errorf("unsupported argon2 version %d", version)
	}

	var p Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.MemKiB, &p.Time, &p.Par); err != nil {
		return Params{}, nil, nil, errInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return Params{}, nil, nil, errInvalidHash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return Params{}, nil, nil, errInvalidHash
	}

	return p, salt, key, nil
}

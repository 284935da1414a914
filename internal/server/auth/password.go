package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/authgate/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Hasher turns a plaintext password into a self-describing secret and
// checks a candidate against it.
//
// Hash must draw a fresh random salt per call, so hashing the same password
// twice yields two different secrets that both verify. Verify never panics
// and never errors: a malformed secret simply does not match.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(secret, plaintext string) bool
}

// Supported algorithm names, see NewHasher.
const (
	AlgorithmArgon2id = "argon2id"
	AlgorithmBcrypt   = "bcrypt"
)

// NewHasher returns the Hasher for the named algorithm with production
// parameters.
func NewHasher(algorithm string) (Hasher, error) {
	switch algorithm {
	case AlgorithmArgon2id, "":
		return NewArgon2Hasher(), nil
	case AlgorithmBcrypt:
		return NewBcryptHasher(bcrypt.DefaultCost), nil
	}
	return nil, fmt.Errorf("unsupported password algorithm %q", algorithm)
}

// Argon2Hasher hashes with argon2id and encodes the result as
//
//	$argon2id$v=19$m=<KiB>,t=<passes>,p=<threads>$<salt>$<key>
//
// with unpadded standard base64 for salt and key.
type Argon2Hasher struct {
	Time    uint32
	Memory  uint32
	Threads uint8
	KeyLen  uint32
	SaltLen int
}

// NewArgon2Hasher uses OWASP's baseline: one pass over 64 MiB on 4 lanes.
func NewArgon2Hasher() *Argon2Hasher {
	return &Argon2Hasher{
		Time:    1,
		Memory:  64 * 1024,
		Threads: 4,
		KeyLen:  32,
		SaltLen: 16,
	}
}

func (h *Argon2Hasher) Hash(plaintext string) (string, error) {
	if h.SaltLen <= 0 || h.KeyLen == 0 || h.Time == 0 || h.Threads == 0 {
		return "", errors.New("argon2id: invalid parameters")
	}
	salt, err := common.GenerateRandByteArray(h.SaltLen)
	if err != nil {
		return "", fmt.Errorf("argon2id: salt: %w", err)
	}
	key := argon2.IDKey([]byte(plaintext), salt, h.Time, h.Memory, h.Threads, h.KeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.Memory, h.Time, h.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (h *Argon2Hasher) Verify(secret, plaintext string) bool {
	p, err := decodeArgon2(secret)
	if err != nil {
		return false
	}
	candidate := argon2.IDKey([]byte(plaintext), p.salt, p.time, p.memory, p.threads, uint32(len(p.key)))
	return subtle.ConstantTimeCompare(candidate, p.key) == 1
}

type argon2Params struct {
	time    uint32
	memory  uint32
	threads uint8
	salt    []byte
	key     []byte
}

// upper bounds on parameters read back from a secret, so a corrupted row
// cannot make Verify allocate gigabytes
const (
	maxArgon2Memory = 1024 * 1024
	maxArgon2Time   = 64
	maxArgon2KeyLen = 1024
)

func decodeArgon2(secret string) (*argon2Params, error) {
	parts := strings.Split(secret, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return nil, errors.New("argon2id: invalid hash format")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, errors.New("argon2id: unsupported version")
	}

	p := &argon2Params{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return nil, fmt.Errorf("argon2id: parse params: %w", err)
	}
	if p.time == 0 || p.time > maxArgon2Time || p.threads == 0 || p.memory > maxArgon2Memory {
		return nil, errors.New("argon2id: params out of range")
	}

	var err error
	if p.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil || len(p.salt) == 0 {
		return nil, errors.New("argon2id: decode salt")
	}
	if p.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(p.key) == 0 || len(p.key) > maxArgon2KeyLen {
		return nil, errors.New("argon2id: decode key")
	}
	return p, nil
}

// BcryptHasher hashes with bcrypt. Passwords longer than 72 bytes are
// rejected by Hash rather than silently truncated.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(b), nil
}

func (h *BcryptHasher) Verify(secret, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(secret), []byte(plaintext)) == nil
}

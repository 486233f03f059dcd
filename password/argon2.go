package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	// ErrMismatch is returned by Compare when the password is wrong.
	ErrMismatch = errors.New("password does not match")
	// ErrMalformedHash is returned for strings that are not argon2id PHC hashes.
	ErrMalformedHash = errors.New("malformed password hash")
)

// Params are the Argon2id cost parameters. Memory is in KiB.
type Params struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams is the interactive-login profile recommended by RFC 9106.
func DefaultParams() Params {
	return Params{Memory: 64 * 1024, Time: 3, Parallelism: 2, SaltLength: 16, KeyLength: 32}
}

// FastParams keeps seeding and tests quick. Not for real accounts.
func FastParams() Params {
	return Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
}

func (p Params) validate() error {
	switch {
	case p.Memory < 8*1024:
		return errors.New("argon2 memory must be >= 8192 KiB")
	case p.Time < 1:
		return errors.New("argon2 time must be >= 1")
	case p.Parallelism < 1:
		return errors.New("argon2 parallelism must be >= 1")
	case p.SaltLength < 16:
		return errors.New("argon2 salt length must be >= 16")
	case p.KeyLength < 16:
		return errors.New("argon2 key length must be >= 16")
	}
	return nil
}

// Hasher hashes and verifies passwords with fixed parameters.
type Hasher struct {
	params Params
}

func NewHasher(p Params) (*Hasher, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &Hasher{params: p}, nil
}

// Hash returns the PHC encoding of password under a fresh random salt.
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("empty password")
	}

	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, h.params.Time, h.params.Memory, h.params.Parallelism, h.params.KeyLength)

	b64 := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.params.Memory, h.params.Time, h.params.Parallelism,
		b64.EncodeToString(salt), b64.EncodeToString(key)), nil
}

// Compare returns nil when password matches encoded, ErrMismatch when it
// does not, and ErrMalformedHash when encoded cannot be parsed. The
// parameters embedded in encoded are used, not the Hasher's.
func (h *Hasher) Compare(encoded, password string) error {
	p, salt, key, err := decode(encoded)
	if err != nil {
		return err
	}

	got := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Parallelism, uint32(len(key)))
	if subtle.ConstantTimeCompare(got, key) != 1 {
		return ErrMismatch
	}
	return nil
}

// Outdated reports whether encoded was produced with weaker parameters than
// the Hasher's, so the caller can rehash after a successful login.
func (h *Hasher) Outdated(encoded string) (bool, error) {
	p, _, key, err := decode(encoded)
	if err != nil {
		return false, err
	}
	return p.Memory < h.params.Memory ||
		p.Time < h.params.Time ||
		p.Parallelism < h.params.Parallelism ||
		uint32(len(key)) != h.params.KeyLength, nil
}

func decode(encoded string) (Params, []byte, []byte, error) {
	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" || fields[1] != "argon2id" {
		return Params{}, nil, nil, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil || version != argon2.Version {
		return Params{}, nil, nil, fmt.Errorf("%w: version", ErrMalformedHash)
	}

	var p Params
	if _, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Parallelism); err != nil {
		return Params{}, nil, nil, fmt.Errorf("%w: parameters", ErrMalformedHash)
	}
	if p.Memory < 8*1024 || p.Time < 1 || p.Parallelism < 1 {
		return Params{}, nil, nil, fmt.Errorf("%w: parameters out of range", ErrMalformedHash)
	}

	b64 := base64.RawStdEncoding
	salt, err := b64.DecodeString(fields[4])
	if err != nil || len(salt) < 16 {
		return Params{}, nil, nil, fmt.Errorf("%w: salt", ErrMalformedHash)
	}
	key, err := b64.DecodeString(fields[5])
	if err != nil || len(key) < 16 {
		return Params{}, nil, nil, fmt.Errorf("%w: key", ErrMalformedHash)
	}
	p.SaltLength = uint32(len(salt))
	p.KeyLength = uint32(len(key))

	return p, salt, key, nil
}

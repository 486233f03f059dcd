package password

import (
	"errors"
	"strings"
	"testing"
)

func newFastHasher(t *testing.T) *Hasher {
	t.Helper()
	h, err := NewHasher(FastParams())
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}
	return h
}

func TestHashAndCompare(t *testing.T) {
	h := newFastHasher(t)

	encoded, err := h.Hash("field-tech-2024")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected PHC prefix: %s", encoded)
	}
	if err := h.Compare(encoded, "field-tech-2024"); err != nil {
		t.Fatalf("expected match, got %v", err)
	}
}

func TestCompareWrongPassword(t *testing.T) {
	h := newFastHasher(t)
	encoded, err := h.Hash("correct-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	if err := h.Compare(encoded, "wrong-password"); !errors.Is(err, ErrMismatch) {
		t.Fatalf("expected ErrMismatch, got %v", err)
	}
}

func TestHashUsesFreshSalt(t *testing.T) {
	h := newFastHasher(t)
	a, _ := h.Hash("same-password")
	b, _ := h.Hash("same-password")
	if a == b {
		t.Fatal("two hashes of the same password must differ")
	}
}

func TestCompareRejectsMalformed(t *testing.T) {
	h := newFastHasher(t)
	cases := []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$a2V5a2V5a2V5a2V5a2V5a2V5",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$a2V5a2V5a2V5a2V5a2V5a2V5",
		"$argon2id$v=19$m=16,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$a2V5a2V5a2V5a2V5a2V5a2V5",
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$a2V5a2V5a2V5a2V5a2V5a2V5",
	}
	for _, c := range cases {
		if err := h.Compare(c, "whatever"); !errors.Is(err, ErrMalformedHash) {
			t.Fatalf("%q: expected ErrMalformedHash, got %v", c, err)
		}
	}
}

func TestOutdatedDetectsWeakerParams(t *testing.T) {
	weak := newFastHasher(t)
	encoded, err := weak.Hash("upgrade-me-please")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	strong, err := NewHasher(Params{Memory: 16 * 1024, Time: 2, Parallelism: 1, SaltLength: 16, KeyLength: 32})
	if err != nil {
		t.Fatalf("NewHasher error: %v", err)
	}
	if outdated, err := strong.Outdated(encoded); err != nil || !outdated {
		t.Fatalf("expected outdated hash, got %t (%v)", outdated, err)
	}
	if outdated, err := weak.Outdated(encoded); err != nil || outdated {
		t.Fatalf("expected current hash, got %t (%v)", outdated, err)
	}
	if err := strong.Compare(encoded, "upgrade-me-please"); err != nil {
		t.Fatalf("stronger hasher must still verify older hashes: %v", err)
	}
}

func TestNewHasherRejectsWeakParams(t *testing.T) {
	bad := []Params{
		{Memory: 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32},
		{Memory: 8192, Time: 0, Parallelism: 1, SaltLength: 16, KeyLength: 32},
		{Memory: 8192, Time: 1, Parallelism: 0, SaltLength: 16, KeyLength: 32},
		{Memory: 8192, Time: 1, Parallelism: 1, SaltLength: 8, KeyLength: 32},
		{Memory: 8192, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 8},
	}
	for i, p := range bad {
		if _, err := NewHasher(p); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

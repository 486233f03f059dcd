package jwt

import (
	"testing"
	"time"
)

// FuzzJWTParseAccess feeds arbitrary strings to the verifier and the peek
// decoder. Neither may panic.
func FuzzJWTParseAccess(f *testing.F) {
	mgr, err := NewManager(Config{
		AccessTTL:     5 * time.Minute,
		SigningMethod: MethodHS256,
		PrivateKey:    []byte("fuzz-secret-fuzz-secret-fuzz-sec"),
		Issuer:        "fuzz-test",
		Leeway:        30 * time.Second,
	})
	if err != nil {
		f.Fatal(err)
	}

	validToken, err := mgr.CreateAccess("uid1", "fuzz@example.com", "employee", 1)
	if err != nil {
		f.Fatal(err)
	}

	f.Add(validToken)
	f.Add("")
	f.Add("a.b.c")
	f.Add("eyJhbGciOiJub25lIn0.e30.")

	f.Fuzz(func(t *testing.T, token string) {
		_, _ = mgr.ParseAccess(token)
		_, _ = Peek(token)
	})
}

package devserver

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"

	"github.com/google/uuid"
)

// Refresh tokens are base64url(session id || secret). Only the SHA-256 of
// the secret is kept server side.
const (
	refreshSecretSize   = 32
	refreshTokenRawSize = 16 + refreshSecretSize
)

var errMalformedRefresh = errors.New("malformed refresh token")

type refreshSession struct {
	uid  string
	hash [32]byte
}

func (r refreshSession) matches(secret [refreshSecretSize]byte) bool {
	sum := sha256.Sum256(secret[:])
	return subtle.ConstantTimeCompare(sum[:], r.hash[:]) == 1
}

// newRefreshToken returns the token handed to the client and the record
// to store under sid.
func newRefreshToken(uid string) (token string, sid uuid.UUID, rec refreshSession, err error) {
	sid = uuid.New()

	var secret [refreshSecretSize]byte
	if _, err = rand.Read(secret[:]); err != nil {
		return "", sid, rec, err
	}

	var raw [refreshTokenRawSize]byte
	copy(raw[:16], sid[:])
	copy(raw[16:], secret[:])

	rec = refreshSession{uid: uid, hash: sha256.Sum256(secret[:])}
	return base64.RawURLEncoding.EncodeToString(raw[:]), sid, rec, nil
}

func decodeRefreshToken(token string) (uuid.UUID, [refreshSecretSize]byte, error) {
	var secret [refreshSecretSize]byte

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || len(raw) != refreshTokenRawSize {
		return uuid.Nil, secret, errMalformedRefresh
	}

	sid, err := uuid.FromBytes(raw[:16])
	if err != nil {
		return uuid.Nil, secret, errMalformedRefresh
	}
	copy(secret[:], raw[16:])
	return sid, secret, nil
}

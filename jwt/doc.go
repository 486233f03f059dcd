// Package jwt issues and verifies the access tokens handed out by the
// development API, and lets clients read the expiry of a token they hold
// without the signing key.
package jwt

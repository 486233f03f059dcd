package fieldapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	goFieldOps "github.com/MrEthical07/goFieldOps"
	"github.com/MrEthical07/goFieldOps/store"
)

// AuthService signs the session in and out.
type AuthService struct {
	client *Client
}

// Login exchanges email and password for a token pair and stores it in the
// session. A wrong password is a plain *HTTPError matching ErrUnauthorized;
// it never triggers a refresh or forced logout.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var out LoginResponse
	err := s.client.do(goFieldOps.WithoutRefresh(ctx), http.MethodPost, "/login", LoginRequest{
		Email:    email,
		Password: password,
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.IDToken == "" {
		return nil, errors.New("login response has no idToken")
	}

	err = s.client.session.SetCredentials(ctx, store.Credentials{
		AccessToken:  out.IDToken,
		RefreshToken: out.RefreshToken,
	})
	if err != nil {
		return nil, fmt.Errorf("store credentials: %w", err)
	}
	return &out, nil
}

// Logout tells the API to end the session and then removes the local
// credentials. Local sign-out happens even when the API call fails; that
// error is still returned.
func (s *AuthService) Logout(ctx context.Context) error {
	remoteErr := s.client.do(ctx, http.MethodPost, "/logout", nil, nil)
	if err := s.client.session.SignOut(ctx); err != nil {
		return errors.Join(remoteErr, err)
	}
	return remoteErr
}

// Verify returns the user the stored access token belongs to.
func (s *AuthService) Verify(ctx context.Context) (*User, error) {
	var out User
	if err := s.client.do(ctx, http.MethodGet, "/verify", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

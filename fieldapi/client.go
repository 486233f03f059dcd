package fieldapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	goFieldOps "github.com/MrEthical07/goFieldOps"
)

const maxErrorBody = 64 << 10

// Client groups the API services. All of them share one Session.
type Client struct {
	session *goFieldOps.Session

	Auth   *AuthService
	Jobs   *JobsService
	Roster *RosterService
}

// NewClient returns a Client whose requests all go through session.
func NewClient(session *goFieldOps.Session) *Client {
	c := &Client{session: session}
	c.Auth = &AuthService{client: c}
	c.Jobs = &JobsService{client: c}
	c.Roster = &RosterService{client: c}
	return c
}

// Session returns the session the client dispatches through.
func (c *Client) Session() *goFieldOps.Session {
	return c.session
}

// do sends in as JSON (when non-nil) and decodes a 2xx body into out (when
// non-nil).
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	resp, err := c.send(ctx, method, path, in)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// raw returns the 2xx body unparsed.
func (c *Client) raw(ctx context.Context, method, path string) ([]byte, error) {
	resp, err := c.send(ctx, method, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", method, path, err)
	}
	return data, nil
}

func (c *Client) send(ctx context.Context, method, path string, in any) (*http.Response, error) {
	req, err := c.session.NewRequest(ctx, method, path, in)
	if err != nil {
		return nil, err
	}

	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		_ = resp.Body.Close()
		return nil, newHTTPError(method, req.URL.Path, resp.StatusCode, body)
	}
	return resp, nil
}

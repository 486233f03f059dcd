package goFieldOps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// callRefresh posts the refresh token on the bare client so the expired
// bearer is never sent and a 401 here cannot re-enter the pipeline.
func (s *Session) callRefresh(ctx context.Context, refreshToken string) (refreshResponse, error) {
	body, err := json.Marshal(refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return refreshResponse{}, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.resolve(s.config.Refresh.Path), bytes.NewReader(body))
	if err != nil {
		return refreshResponse{}, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if s.config.API.UserAgent != "" {
		req.Header.Set("User-Agent", s.config.API.UserAgent)
	}

	resp, err := s.bare.Do(req)
	if err != nil {
		return refreshResponse{}, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return refreshResponse{}, fmt.Errorf("%w: status %d", ErrRefreshFailed, resp.StatusCode)
	}

	var out refreshResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return refreshResponse{}, fmt.Errorf("%w: decode response: %w", ErrRefreshFailed, err)
	}
	if out.AccessToken == "" {
		return refreshResponse{}, fmt.Errorf("%w: response has no accessToken", ErrRefreshFailed)
	}
	return out, nil
}

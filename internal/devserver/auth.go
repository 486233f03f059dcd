package devserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/MrEthical07/goFieldOps/fieldapi"
	"github.com/MrEthical07/goFieldOps/internal/rate"
	"github.com/MrEthical07/goFieldOps/middleware"
)

var (
	errTokenRevoked = errors.New("token issued before the current epoch")
	errUnknownUser  = errors.New("unknown or inactive user")
)

func (s *Server) validate(_ context.Context, token string) (*middleware.Principal, error) {
	claims, err := s.tokens.ParseAccess(token)
	if err != nil {
		return nil, err
	}
	if claims.Epoch != s.epoch.Load() {
		return nil, errTokenRevoked
	}

	s.mu.Lock()
	acct := s.byUID[claims.UID]
	s.mu.Unlock()
	if acct == nil || !acct.user.IsActive {
		return nil, errUnknownUser
	}

	return &middleware.Principal{
		UserID: claims.UID,
		Email:  acct.user.Email,
		Role:   acct.user.Role,
	}, nil
}

func (s *Server) issueAccess(u fieldapi.User) (string, error) {
	return s.tokens.CreateAccess(u.UID, u.Email, u.Role, s.epoch.Load())
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in fieldapi.LoginRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	ip := clientIP(r)
	if !s.throttled(w, s.checkLogin(r.Context(), in.Email, ip)) {
		return
	}

	s.mu.Lock()
	acct := s.byEmail[in.Email]
	s.mu.Unlock()
	if acct == nil || !acct.user.IsActive || s.hasher.Compare(acct.hash, in.Password) != nil {
		s.failLogin(r.Context(), in.Email, ip)
		writeDetail(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	s.resetLogin(r.Context(), in.Email)

	access, err := s.issueAccess(acct.user)
	if err != nil {
		s.log.WithError(err).Error("sign access token")
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}
	refresh, sid, rec, err := newRefreshToken(acct.user.UID)
	if err != nil {
		s.log.WithError(err).Error("generate refresh token")
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.mu.Lock()
	s.refresh[sid] = rec
	s.mu.Unlock()

	s.log.WithField("uid", acct.user.UID).Info("login")
	writeJSON(w, http.StatusOK, fieldapi.LoginResponse{
		LocalID:      acct.user.UID,
		Email:        acct.user.Email,
		DisplayName:  acct.user.Name,
		IDToken:      access,
		Registered:   true,
		RefreshToken: refresh,
		ExpiresIn:    strconv.Itoa(int(s.tokens.TTL().Seconds())),
		User:         acct.user,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.refreshCalls.Add(1)

	var in struct {
		RefreshToken string `json:"refresh_token"`
	}
	if !decodeJSON(w, r, &in) {
		return
	}
	if s.limit != nil && !s.throttled(w, s.limit.CheckRefresh(r.Context(), in.RefreshToken)) {
		return
	}

	sid, secret, err := decodeRefreshToken(in.RefreshToken)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	s.mu.Lock()
	rec, ok := s.refresh[sid]
	acct := s.byUID[rec.uid]
	s.mu.Unlock()
	if !ok || !rec.matches(secret) || acct == nil || !acct.user.IsActive {
		writeDetail(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	uid := rec.uid

	access, err := s.issueAccess(acct.user)
	if err != nil {
		s.log.WithError(err).Error("sign access token")
		writeDetail(w, http.StatusInternalServerError, "internal server error")
		return
	}

	out := map[string]string{"accessToken": access}
	if s.rotate {
		next, nextSID, nextRec, err := newRefreshToken(uid)
		if err != nil {
			s.log.WithError(err).Error("generate refresh token")
			writeDetail(w, http.StatusInternalServerError, "internal server error")
			return
		}
		s.mu.Lock()
		delete(s.refresh, sid)
		s.refresh[nextSID] = nextRec
		s.mu.Unlock()
		out["refreshToken"] = next
	}

	s.log.WithField("uid", uid).Debug("refresh")
	writeJSON(w, http.StatusOK, out)
}

// handleLogout revokes every refresh token held by the caller.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	p, _ := middleware.PrincipalFromContext(r.Context())

	s.mu.Lock()
	for sid, rec := range s.refresh {
		if rec.uid == p.UserID {
			delete(s.refresh, sid)
		}
	}
	s.mu.Unlock()

	s.log.WithField("uid", p.UserID).Info("logout")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	acct := s.caller(r)
	if acct == nil {
		writeDetail(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, acct.user)
}

func (s *Server) checkLogin(ctx context.Context, email, ip string) error {
	if s.limit == nil {
		return nil
	}
	return s.limit.CheckLogin(ctx, email, ip)
}

func (s *Server) failLogin(ctx context.Context, email, ip string) {
	if s.limit == nil {
		return
	}
	if err := s.limit.FailLogin(ctx, email, ip); err != nil {
		s.log.WithError(err).Warn("record failed login")
	}
}

func (s *Server) resetLogin(ctx context.Context, email string) {
	if s.limit == nil {
		return
	}
	if err := s.limit.ResetLogin(ctx, email); err != nil {
		s.log.WithError(err).Warn("reset login counter")
	}
}

// throttled writes 429 or 503 for a limiter error and reports whether the
// request may proceed.
func (s *Server) throttled(w http.ResponseWriter, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, rate.ErrRateLimited):
		writeDetail(w, http.StatusTooManyRequests, "too many attempts, try again later")
	default:
		s.log.WithError(err).Error("rate limiter")
		writeDetail(w, http.StatusServiceUnavailable, "service unavailable")
	}
	return false
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (s *Server) caller(r *http.Request) *account {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byUID[p.UserID]
}

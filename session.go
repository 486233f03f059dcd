package goFieldOps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/MrEthical07/goFieldOps/jwt"
	"github.com/MrEthical07/goFieldOps/store"
	"github.com/sirupsen/logrus"
)

// Session owns one user's credentials and the refresh state that guards
// them. Every request made through Client, Do or RoundTrip is decorated with
// the stored bearer token and recovers from an expired access token with at
// most one concurrent refresh call.
//
// Sessions are independent of each other and safe for concurrent use.
type Session struct {
	config Config
	store  store.Store

	next   http.RoundTripper
	bare   *http.Client
	client *http.Client

	logger     logrus.FieldLogger
	redirector Redirector
	audit      *auditDispatcher
	metrics    *Metrics

	mu       sync.Mutex
	inflight *refreshCycle
	current  string
	onLogout func()
	closed   bool

	wg sync.WaitGroup
}

// Status describes the stored credentials as far as the client can tell.
// Expiry comes from the access token's unverified claims and is zero for
// opaque tokens.
type Status struct {
	Authenticated   bool
	HasRefreshToken bool
	Refreshing      bool
	Subject         string
	Role            string
	ExpiresAt       time.Time
	Expired         bool
}

// Client returns an *http.Client whose transport is the Session.
func (s *Session) Client() *http.Client {
	return s.client
}

// Do sends req through the Session's client.
func (s *Session) Do(req *http.Request) (*http.Response, error) {
	return s.client.Do(req)
}

// NewRequest builds a request for path relative to APIConfig.BaseURL. A
// non-nil body is sent as-is when it is an io.Reader or []byte and JSON
// encoded otherwise.
func (s *Session) NewRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case io.Reader:
		reader = b
	case []byte:
		reader = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	return http.NewRequestWithContext(ctx, method, s.resolve(path), reader)
}

func (s *Session) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return s.config.API.BaseURL + path
}

// SetCredentials stores a freshly issued pair, typically right after login.
// An empty refresh token is allowed; the next 401 then ends the session.
func (s *Session) SetCredentials(ctx context.Context, creds store.Credentials) error {
	if creds.AccessToken == "" {
		return ErrInvalidCredentials
	}
	if s.isClosed() {
		return ErrSessionClosed
	}

	if err := s.store.Save(ctx, creds); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	s.mu.Lock()
	s.current = creds.AccessToken
	s.mu.Unlock()

	s.metricInc(MetricLogin)
	s.emitAudit(ctx, auditEventLogin, true, requestInfo{}, nil, nil)
	return nil
}

// Credentials returns the stored pair.
func (s *Session) Credentials(ctx context.Context) (store.Credentials, error) {
	creds, err := s.store.Load(ctx)
	if err != nil {
		return store.Credentials{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return creds, nil
}

// Status reports whether credentials are stored and, for JWT access tokens,
// who they belong to and when they expire.
func (s *Session) Status(ctx context.Context) (Status, error) {
	creds, err := s.Credentials(ctx)
	if err != nil {
		return Status{}, err
	}

	s.mu.Lock()
	st := Status{
		Authenticated:   !creds.Empty(),
		HasRefreshToken: creds.RefreshToken != "",
		Refreshing:      s.inflight != nil,
	}
	s.mu.Unlock()

	if creds.Empty() {
		return st, nil
	}
	if peeked, err := jwt.Peek(creds.AccessToken); err == nil {
		st.Subject = peeked.Subject
		st.Role = peeked.Role
		st.ExpiresAt = peeked.ExpiresAt
		st.Expired = peeked.Expired(time.Now())
	}
	return st, nil
}

// RegisterLogoutHandler sets the callback run on forced logout. Only the
// most recent registration is kept; nil removes it. While a handler is
// registered the Redirector is not used.
func (s *Session) RegisterLogoutHandler(fn func()) {
	s.mu.Lock()
	s.onLogout = fn
	s.mu.Unlock()
}

// SignOut removes the stored credentials. It is the explicit, user-initiated
// counterpart of a forced logout and neither calls the logout handler nor
// redirects.
func (s *Session) SignOut(ctx context.Context) error {
	s.mu.Lock()
	s.current = ""
	s.mu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	s.metricInc(MetricLogout)
	s.emitAudit(ctx, auditEventLogout, true, requestInfo{}, nil, nil)
	return nil
}

// Close waits for an in-flight refresh to settle and stops the audit
// dispatcher. Requests made afterwards fail with ErrSessionClosed.
func (s *Session) Close() {
	if s == nil {
		return
	}

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.wg.Wait()
	if s.audit != nil {
		s.audit.Close()
	}
}

// AuditDropped returns the number of session events discarded because the
// audit buffer was full.
func (s *Session) AuditDropped() uint64 {
	if s == nil || s.audit == nil {
		return 0
	}
	return s.audit.Dropped()
}

// MetricsSnapshot copies the session counters.
func (s *Session) MetricsSnapshot() MetricsSnapshot {
	if s == nil || s.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return s.metrics.Snapshot()
}

func (s *Session) metricInc(id MetricID) {
	if s == nil || s.metrics == nil {
		return
	}
	s.metrics.Inc(id)
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// forceLogout ends the session after an unrecoverable 401. The registered
// handler runs first, then both stored tokens are removed, then the
// Redirector runs if there was no handler.
func (s *Session) forceLogout(ctx context.Context, cause error) {
	s.mu.Lock()
	handler := s.onLogout
	s.current = ""
	s.mu.Unlock()

	if handler != nil {
		s.runLogoutHandler(handler)
	}

	clearCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.Refresh.Timeout)
	defer cancel()
	if err := s.store.Clear(clearCtx); err != nil {
		s.logger.WithError(err).Error("clear credentials after forced logout")
	}

	if handler == nil {
		s.redirector.Redirect(ctx, s.config.Logout.LoginPath)
	}

	s.metricInc(MetricForcedLogout)
	s.logger.WithError(cause).Warn("forced logout")
	s.emitAudit(ctx, auditEventForcedLogout, false, requestInfo{}, cause, func() map[string]string {
		return map[string]string{
			"handler": fmt.Sprintf("%t", handler != nil),
		}
	})
}

func (s *Session) runLogoutHandler(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.WithField("panic", r).Error("logout handler panicked")
		}
	}()
	fn()
}

package goFieldOps

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/MrEthical07/goFieldOps/store"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const defaultAccept = "application/json, text/plain, */*"

// refreshCycle is the REFRESHING state. While Session.inflight is non-nil
// every 401 joins waiters instead of starting another refresh.
type refreshCycle struct {
	started time.Time
	waiters []*waiter
}

type refreshOutcome struct {
	token string
	err   error
}

// waiter is one request parked on a refresh cycle. served is closed once the
// request's replay has returned, or once the request gives up on it; the
// cycle does not hand the token to the next waiter before that.
type waiter struct {
	outcome chan refreshOutcome
	done    <-chan struct{}
	served  chan struct{}
	once    sync.Once
}

func newWaiter(ctx context.Context) *waiter {
	return &waiter{
		outcome: make(chan refreshOutcome, 1),
		done:    ctx.Done(),
		served:  make(chan struct{}),
	}
}

func (w *waiter) release() {
	if w == nil {
		return
	}
	w.once.Do(func() { close(w.served) })
}

// settle delivers out and blocks until the waiter is finished with it.
func (w *waiter) settle(out refreshOutcome) {
	w.outcome <- out
	if out.err != nil {
		return
	}
	select {
	case <-w.served:
	case <-w.done:
	}
}

// RoundTrip implements http.RoundTripper.
//
// The request is sent with the stored bearer token. On a 401 the request
// waits for the session's single refresh cycle and is replayed once with the
// new token. A 401 on the replay is returned as-is. When the cycle fails,
// the session has been logged out and the error wraps ErrUnauthenticated.
// Requests whose context carries WithoutRefresh skip recovery.
func (s *Session) RoundTrip(req *http.Request) (*http.Response, error) {
	if s.isClosed() {
		closeBody(req)
		return nil, ErrSessionClosed
	}

	ctx := req.Context()
	out, err := s.prepare(req)
	if err != nil {
		return nil, err
	}
	info := requestInfo{
		id:     out.Header.Get(s.config.API.RequestIDHeader),
		method: out.Method,
		path:   out.URL.Path,
	}

	creds, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	sent := creds.AccessToken

	resp, err := s.dispatch(out, sent)
	if err != nil || resp.StatusCode != http.StatusUnauthorized || skipRefreshFromContext(ctx) {
		return resp, err
	}

	s.metricInc(MetricUnauthorized)
	drainAndClose(resp)

	token, w, err := s.awaitToken(ctx, sent, info)
	if err != nil {
		return nil, err
	}
	defer w.release()

	replay, err := rewind(out)
	if err != nil {
		return nil, err
	}

	s.metricInc(MetricRequestReplayed)
	s.emitAudit(ctx, auditEventRequestReplayed, true, info, nil, nil)

	resp, err = s.dispatch(replay, token)
	w.release()
	if err == nil && resp.StatusCode == http.StatusUnauthorized {
		s.metricInc(MetricReplayUnauthorized)
		s.logger.WithField("request_id", info.id).Warn("replayed request rejected again")
		s.emitAudit(ctx, auditEventReplayUnauthorized, false, info, nil, nil)
	}
	return resp, err
}

// prepare clones req, buffers its body for a possible replay and stamps the
// headers that stay constant across dispatches.
func (s *Session) prepare(req *http.Request) (*http.Request, error) {
	out := req.Clone(req.Context())

	if req.Body != nil && req.Body != http.NoBody {
		data, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("buffer request body: %w", err)
		}
		out.Body = io.NopCloser(bytes.NewReader(data))
		out.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		}
		out.ContentLength = int64(len(data))

		if out.Header.Get("Content-Type") == "" {
			out.Header.Set("Content-Type", "application/json")
		}
	}

	header := s.config.API.RequestIDHeader
	if out.Header.Get(header) == "" {
		id := requestIDFromContext(req.Context())
		if id == "" {
			id = uuid.NewString()
		}
		out.Header.Set(header, id)
	}
	if out.Header.Get("User-Agent") == "" && s.config.API.UserAgent != "" {
		out.Header.Set("User-Agent", s.config.API.UserAgent)
	}
	if out.Header.Get("Accept") == "" {
		out.Header.Set("Accept", defaultAccept)
	}

	return out, nil
}

// dispatch sends req with token as its bearer. Without a token the request
// goes out as the caller built it.
func (s *Session) dispatch(req *http.Request, token string) (*http.Response, error) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	s.metricInc(MetricRequestDispatched)
	return s.next.RoundTrip(req)
}

// awaitToken returns the access token a 401'd request should be replayed
// with. sent is the token the request carried. A queued request gets a
// waiter back and must release it once its replay has returned.
func (s *Session) awaitToken(ctx context.Context, sent string, info requestInfo) (string, *waiter, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", nil, ErrSessionClosed
	}

	// a refresh finished while this request was on the wire
	if s.inflight == nil && s.current != "" && sent != s.current {
		token := s.current
		s.mu.Unlock()

		s.metricInc(MetricStaleTokenReplay)
		s.emitAudit(ctx, auditEventStaleTokenReplay, true, info, nil, nil)
		return token, nil, nil
	}

	w := newWaiter(ctx)
	leader := s.inflight == nil
	if leader {
		s.inflight = &refreshCycle{started: time.Now()}
		s.wg.Add(1)
		go s.runCycle(context.WithoutCancel(ctx), s.inflight)
	}
	s.inflight.waiters = append(s.inflight.waiters, w)
	s.mu.Unlock()

	if !leader {
		s.metricInc(MetricRequestQueued)
		s.emitAudit(ctx, auditEventRequestQueued, true, info, nil, nil)
	}

	select {
	case out := <-w.outcome:
		if out.err != nil {
			return "", nil, out.err
		}
		return out.token, w, nil
	case <-ctx.Done():
		return "", nil, ctx.Err()
	}
}

// runCycle performs one refresh and settles every waiter that joined the
// cycle, in the order they joined. Replays are serviced one at a time: the
// next waiter gets the token only after the previous replay has returned or
// its caller has given up.
func (s *Session) runCycle(ctx context.Context, cycle *refreshCycle) {
	defer s.wg.Done()

	refreshCtx, cancel := context.WithTimeout(ctx, s.config.Refresh.Timeout)
	defer cancel()

	creds, err := s.renewCredentials(refreshCtx)
	if err != nil {
		s.failCycle(refreshCtx, cycle, err)
		return
	}

	s.mu.Lock()
	s.inflight = nil
	s.current = creds.AccessToken
	waiters := cycle.waiters
	s.mu.Unlock()

	s.metricInc(MetricRefreshSuccess)
	s.logger.WithFields(logrus.Fields{
		"waiters":  len(waiters),
		"duration": time.Since(cycle.started).String(),
	}).Debug("access token refreshed")
	s.emitAudit(ctx, auditEventRefreshSuccess, true, requestInfo{}, nil, func() map[string]string {
		return map[string]string{"waiters": fmt.Sprintf("%d", len(waiters))}
	})

	for _, w := range waiters {
		w.settle(refreshOutcome{token: creds.AccessToken})
	}
}

// failCycle logs the session out while still REFRESHING, so a 401 that
// lands during cleanup joins this cycle instead of starting a new one, then
// rejects every waiter without replay.
func (s *Session) failCycle(ctx context.Context, cycle *refreshCycle, cause error) {
	s.metricInc(MetricRefreshFailure)
	s.emitAudit(ctx, auditEventRefreshFailure, false, requestInfo{}, cause, nil)

	s.forceLogout(ctx, cause)

	s.mu.Lock()
	s.inflight = nil
	waiters := cycle.waiters
	s.mu.Unlock()

	err := fmt.Errorf("%w: %w", ErrUnauthenticated, cause)
	for _, w := range waiters {
		w.settle(refreshOutcome{err: err})
	}
}

// renewCredentials exchanges the stored refresh token for a new access token
// and persists the result. A missing refresh token fails without any call.
func (s *Session) renewCredentials(ctx context.Context) (store.Credentials, error) {
	creds, err := s.store.Load(ctx)
	if err != nil {
		return store.Credentials{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if creds.RefreshToken == "" {
		return store.Credentials{}, ErrNoRefreshToken
	}

	s.metricInc(MetricRefreshStarted)
	start := time.Now()
	res, err := s.callRefresh(ctx, creds.RefreshToken)
	if s.metrics != nil {
		s.metrics.Observe(MetricRefreshLatency, time.Since(start))
	}
	if err != nil {
		return store.Credentials{}, err
	}

	next := store.Credentials{
		AccessToken:  res.AccessToken,
		RefreshToken: creds.RefreshToken,
	}
	if res.RefreshToken != "" && s.config.Refresh.AcceptRotation {
		next.RefreshToken = res.RefreshToken
	}
	if err := s.store.Save(ctx, next); err != nil {
		return store.Credentials{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return next, nil
}

func rewind(req *http.Request) (*http.Request, error) {
	out := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("rewind request body: %w", err)
		}
		out.Body = body
	}
	return out, nil
}

func drainAndClose(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}

func closeBody(req *http.Request) {
	if req != nil && req.Body != nil {
		_ = req.Body.Close()
	}
}

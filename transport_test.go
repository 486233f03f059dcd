package goFieldOps

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/MrEthical07/goFieldOps/jwt"
	"github.com/MrEthical07/goFieldOps/store"
)

func TestRequestWithoutCredentialsIsUnauthenticated(t *testing.T) {
	api := newFakeAPI("")
	rig := newTestRig(t, api, nil)

	resp, err := rig.get(t, "/verify")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	_ = readBody(t, resp)

	rec := api.snapshot()
	if len(rec.acceptedAuth) != 1 || rec.acceptedAuth[0] != "" {
		t.Fatalf("expected no Authorization header, got %v", rec.acceptedAuth)
	}
}

func TestCallerAuthorizationKeptWithoutCredentials(t *testing.T) {
	api := newFakeAPI("caller-token")
	rig := newTestRig(t, api, nil)

	req, err := rig.session.NewRequest(testContext(t), http.MethodGet, "/verify", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer caller-token")

	resp, err := rig.session.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	_ = readBody(t, resp)

	rec := api.snapshot()
	if len(rec.acceptedAuth) != 1 || rec.acceptedAuth[0] != "Bearer caller-token" {
		t.Fatalf("caller header should pass through untouched, got %v", rec.acceptedAuth)
	}
}

func TestDecorationStampsHeaders(t *testing.T) {
	api := newFakeAPI("A1")
	rig := newTestRig(t, api, nil)
	rig.seed(t, "A1", "R1")

	req, err := rig.session.NewRequest(testContext(t), http.MethodPost, "/jobs", map[string]string{"jobName": "pump"})
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := rig.session.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if body := readBody(t, resp); !strings.Contains(body, "/jobs") {
		t.Fatalf("unexpected body %s", body)
	}

	rec := api.snapshot()
	if rec.acceptedAuth[0] != "Bearer A1" {
		t.Fatalf("expected bearer A1, got %q", rec.acceptedAuth[0])
	}
	if rec.contentTypes[0] != "application/json" {
		t.Fatalf("expected json content type, got %q", rec.contentTypes[0])
	}
	if rec.userAgents[0] != "goFieldOps/1" {
		t.Fatalf("unexpected user agent %q", rec.userAgents[0])
	}
	if rec.requestIDs[0] == "" {
		t.Fatal("expected a request id")
	}
	if rec.acceptedBodies[0] != `{"jobName":"pump"}` {
		t.Fatalf("unexpected body sent %s", rec.acceptedBodies[0])
	}
}

func TestReplayResendsBodyAndRequestID(t *testing.T) {
	api := newFakeAPI()
	rig := newTestRig(t, api, nil)
	rig.seed(t, "A1", "R1")

	ctx := WithRequestID(testContext(t), "req-42")
	req, err := rig.session.NewRequest(ctx, http.MethodPost, "/admin_jobs", []byte(`{"customer":"acme"}`))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := rig.session.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	_ = readBody(t, resp)

	rec := api.snapshot()
	if len(rec.requestIDs) != 2 || rec.requestIDs[0] != "req-42" || rec.requestIDs[1] != "req-42" {
		t.Fatalf("request id must be stable across replay, got %v", rec.requestIDs)
	}
	if len(rec.acceptedBodies) != 1 || rec.acceptedBodies[0] != `{"customer":"acme"}` {
		t.Fatalf("replay body mismatch %v", rec.acceptedBodies)
	}
}

func TestReplayRejectedAgainIsReturnedAsIs(t *testing.T) {
	api := newFakeAPI()
	api.rejectIssued = true
	rig := newTestRig(t, api, nil)
	rig.seed(t, "A1", "R1")

	var logouts int
	rig.session.RegisterLogoutHandler(func() { logouts++ })

	resp, err := rig.get(t, "/jobs")
	if err != nil {
		t.Fatalf("expected the 401 response, got error %v", err)
	}
	_ = readBody(t, resp)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	rec := api.snapshot()
	if rec.refreshCalls != 1 {
		t.Fatalf("expected one refresh call, got %d", rec.refreshCalls)
	}
	if len(rec.requestIDs) != 2 {
		t.Fatalf("expected initial attempt plus one replay, got %d", len(rec.requestIDs))
	}
	if logouts != 0 {
		t.Fatal("a rejected replay must not force a logout")
	}
	if got := rig.session.MetricsSnapshot().Counters[MetricReplayUnauthorized]; got != 1 {
		t.Fatalf("expected replay_unauthorized=1, got %d", got)
	}
}

func TestWithoutRefreshPassesUnauthorizedThrough(t *testing.T) {
	api := newFakeAPI()
	rig := newTestRig(t, api, nil)
	rig.seed(t, "A1", "R1")

	req, err := rig.session.NewRequest(WithoutRefresh(testContext(t)), http.MethodPost, "/login", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := rig.session.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	_ = readBody(t, resp)

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if api.snapshot().refreshCalls != 0 {
		t.Fatal("WithoutRefresh must not trigger a refresh")
	}
	if !rig.store.Has("authToken") {
		t.Fatal("WithoutRefresh must not clear credentials")
	}
}

func TestStaleTokenIsReplayedWithoutRefresh(t *testing.T) {
	api := newFakeAPI("A2")
	rig := newTestRig(t, api, nil)
	rig.seed(t, "A1", "R1")

	api.beforeReject = func() {
		api.mu.Lock()
		api.beforeReject = nil
		api.mu.Unlock()
		_ = rig.session.SetCredentials(context.Background(), store.Credentials{AccessToken: "A2", RefreshToken: "R2"})
	}

	resp, err := rig.get(t, "/jobs")
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	_ = readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	rec := api.snapshot()
	if rec.refreshCalls != 0 {
		t.Fatalf("expected no refresh call, got %d", rec.refreshCalls)
	}
	if rec.acceptedAuth[0] != "Bearer A2" {
		t.Fatalf("expected replay with A2, got %q", rec.acceptedAuth[0])
	}
	if got := rig.session.MetricsSnapshot().Counters[MetricStaleTokenReplay]; got != 1 {
		t.Fatalf("expected stale_token_replay=1, got %d", got)
	}
}

func TestRotatedRefreshTokenIsStored(t *testing.T) {
	api := newFakeAPI()
	api.rotate = "R2"
	rig := newTestRig(t, api, nil)
	rig.seed(t, "A1", "R1")

	resp, err := rig.get(t, "/jobs")
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	_ = readBody(t, resp)

	creds, _ := rig.store.Load(context.Background())
	if creds.AccessToken != "A2" || creds.RefreshToken != "R2" {
		t.Fatalf("expected rotated pair, got %+v", creds)
	}
}

func TestRotationIgnoredWhenDisabled(t *testing.T) {
	api := newFakeAPI()
	api.rotate = "R2"
	rig := newTestRig(t, api, func(b *Builder) {
		b.config.Refresh.AcceptRotation = false
	})
	rig.seed(t, "A1", "R1")

	resp, err := rig.get(t, "/jobs")
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	_ = readBody(t, resp)

	creds, _ := rig.store.Load(context.Background())
	if creds.AccessToken != "A2" || creds.RefreshToken != "R1" {
		t.Fatalf("expected original refresh token kept, got %+v", creds)
	}
}

func TestClosedSessionRejectsRequests(t *testing.T) {
	api := newFakeAPI("A1")
	rig := newTestRig(t, api, nil)
	rig.session.Close()

	_, err := rig.get(t, "/jobs")
	if !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}
}

func TestSetCredentialsRejectsEmptyAccessToken(t *testing.T) {
	rig := newTestRig(t, newFakeAPI(), nil)
	err := rig.session.SetCredentials(testContext(t), store.Credentials{RefreshToken: "R1"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSignOutClearsWithoutHandlerOrRedirect(t *testing.T) {
	var redirected bool
	rig := newTestRig(t, newFakeAPI(), func(b *Builder) {
		b.WithRedirector(RedirectFunc(func(context.Context, string) { redirected = true }))
	})
	rig.seed(t, "A1", "R1")

	var called bool
	rig.session.RegisterLogoutHandler(func() { called = true })

	if err := rig.session.SignOut(testContext(t)); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if rig.store.Has("authToken") || rig.store.Has("refreshToken") {
		t.Fatal("sign out must remove both keys")
	}
	if called || redirected {
		t.Fatal("sign out must not run forced-logout hooks")
	}
}

func TestStatusReadsJWTClaims(t *testing.T) {
	mgr, err := jwt.NewManager(jwt.Config{
		AccessTTL:     time.Minute,
		SigningMethod: jwt.MethodHS256,
		PrivateKey:    []byte("status-secret-status-secret-0000"),
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	token, err := mgr.CreateAccess("u7", "tech@example.com", "employee", 0)
	if err != nil {
		t.Fatalf("create access: %v", err)
	}

	rig := newTestRig(t, newFakeAPI(), nil)

	st, err := rig.session.Status(testContext(t))
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st.Authenticated {
		t.Fatal("empty store must not be authenticated")
	}

	rig.seed(t, token, "R1")
	st, err = rig.session.Status(testContext(t))
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !st.Authenticated || !st.HasRefreshToken || st.Subject != "u7" || st.Role != "employee" {
		t.Fatalf("unexpected status %+v", st)
	}
	if st.Expired || st.ExpiresAt.IsZero() {
		t.Fatalf("expected live expiry, got %+v", st)
	}
}

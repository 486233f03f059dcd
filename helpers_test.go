package goFieldOps

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/goFieldOps/store"
	"github.com/sirupsen/logrus"
)

// fakeAPI accepts bearer tokens listed in valid and serves /refresh.
type fakeAPI struct {
	mu sync.Mutex

	valid        map[string]bool
	issue        string
	rotate       string
	rejectIssued bool

	refreshStatus int
	refreshGate   chan struct{}

	refreshCalls   int
	refreshBodies  []string
	refreshAuth    []string
	acceptedAuth   []string
	acceptedBodies []string
	requestIDs     []string
	contentTypes   []string
	userAgents     []string

	beforeReject func()
}

func newFakeAPI(valid ...string) *fakeAPI {
	f := &fakeAPI{
		valid: map[string]bool{},
		issue: "A2",
	}
	for _, v := range valid {
		f.valid[v] = true
	}
	return f
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/refresh" {
		f.serveRefresh(w, r)
		return
	}

	body, _ := io.ReadAll(r.Body)
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	f.mu.Lock()
	f.requestIDs = append(f.requestIDs, r.Header.Get("X-Request-ID"))
	f.contentTypes = append(f.contentTypes, r.Header.Get("Content-Type"))
	f.userAgents = append(f.userAgents, r.Header.Get("User-Agent"))
	ok := f.valid[token]
	if ok {
		f.acceptedAuth = append(f.acceptedAuth, r.Header.Get("Authorization"))
		f.acceptedBodies = append(f.acceptedBodies, string(body))
	}
	hook := f.beforeReject
	f.mu.Unlock()

	if !ok {
		if hook != nil {
			hook()
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"detail":"token expired"}`)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprintf(w, `{"path":%q}`, r.URL.Path)
}

func (f *fakeAPI) serveRefresh(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.refreshCalls++
	f.refreshBodies = append(f.refreshBodies, string(body))
	f.refreshAuth = append(f.refreshAuth, r.Header.Get("Authorization"))
	gate := f.refreshGate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.refreshStatus != 0 {
		w.WriteHeader(f.refreshStatus)
		return
	}
	if !f.rejectIssued {
		f.valid[f.issue] = true
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"accessToken":  f.issue,
		"refreshToken": f.rotate,
	})
}

// apiRecord is a copy of what fakeAPI observed.
type apiRecord struct {
	refreshCalls   int
	refreshBodies  []string
	refreshAuth    []string
	acceptedAuth   []string
	acceptedBodies []string
	requestIDs     []string
	contentTypes   []string
	userAgents     []string
}

func (f *fakeAPI) snapshot() apiRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return apiRecord{
		refreshCalls:   f.refreshCalls,
		refreshBodies:  append([]string(nil), f.refreshBodies...),
		refreshAuth:    append([]string(nil), f.refreshAuth...),
		acceptedAuth:   append([]string(nil), f.acceptedAuth...),
		acceptedBodies: append([]string(nil), f.acceptedBodies...),
		requestIDs:     append([]string(nil), f.requestIDs...),
		contentTypes:   append([]string(nil), f.contentTypes...),
		userAgents:     append([]string(nil), f.userAgents...),
	}
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type testRig struct {
	api     *fakeAPI
	server  *httptest.Server
	store   *store.MemoryStore
	session *Session
}

func newTestRig(t *testing.T, api *fakeAPI, configure func(*Builder)) *testRig {
	t.Helper()

	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	cfg := DefaultConfig()
	cfg.API.BaseURL = server.URL
	cfg.Refresh.Timeout = 5 * time.Second

	st := store.NewMemoryStore()
	b := New().
		WithConfig(cfg).
		WithStore(st).
		WithLogger(quietLogger())
	if configure != nil {
		configure(b)
	}

	s, err := b.Build()
	if err != nil {
		t.Fatalf("build session: %v", err)
	}
	t.Cleanup(s.Close)

	return &testRig{api: api, server: server, store: st, session: s}
}

func (r *testRig) seed(t *testing.T, access, refresh string) {
	t.Helper()
	if err := r.session.SetCredentials(testContext(t), store.Credentials{AccessToken: access, RefreshToken: refresh}); err != nil {
		t.Fatalf("seed credentials: %v", err)
	}
}

func (r *testRig) get(t *testing.T, path string) (*http.Response, error) {
	t.Helper()
	req, err := r.session.NewRequest(testContext(t), http.MethodGet, path, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	return r.session.Do(req)
}

func waitForWaiters(t *testing.T, s *Session, n int) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		got := 0
		if s.inflight != nil {
			got = len(s.inflight.waiters)
		}
		s.mu.Unlock()
		if got >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d queued requests", n)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(data)
}

// testContext stands in for testing.T.Context (Go 1.24+): the returned
// context is cancelled when the test finishes.
func testContext(t testing.TB) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}

// Package devserver is an in-memory implementation of the field-service API
// used by integration tests and by cmd/fieldops-devserver. Access tokens
// are short-lived JWTs carrying an epoch claim; bumping the epoch rejects
// every token issued before it, which is how tests force a refresh.
package devserver

import (
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/goFieldOps/fieldapi"
	"github.com/MrEthical07/goFieldOps/internal/rate"
	"github.com/MrEthical07/goFieldOps/jwt"
	"github.com/MrEthical07/goFieldOps/middleware"
	"github.com/MrEthical07/goFieldOps/password"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Options configures a Server. Zero values are replaced by defaults.
type Options struct {
	Logger    logrus.FieldLogger
	Issuer    string
	AccessTTL time.Duration
	// Secret signs access tokens with HS256. A random secret is generated
	// when empty, so tokens do not survive a restart.
	Secret []byte
	// RotateRefreshTokens issues a new refresh token on every refresh and
	// invalidates the presented one.
	RotateRefreshTokens bool
	PasswordParams      password.Params
	// Redis enables login and refresh throttling with Throttle limits
	// (rate.DefaultConfig when zero). Without it nothing is throttled.
	Redis    redis.UniversalClient
	Throttle rate.Config
}

type account struct {
	user fieldapi.User
	hash string
}

type jobRecord struct {
	job        fieldapi.Job
	predefined bool
}

// Server serves the field-service API from memory.
type Server struct {
	log    logrus.FieldLogger
	tokens *jwt.Manager
	hasher *password.Hasher
	rotate bool
	limit  *rate.Limiter
	router *mux.Router

	epoch        atomic.Uint32
	refreshCalls atomic.Int64

	mu        sync.Mutex
	nextID    int
	byEmail   map[string]*account
	byUID     map[string]*account
	refresh   map[uuid.UUID]refreshSession
	employees map[int]fieldapi.Employee
	items     map[string]map[int]fieldapi.Item
	jobs      []*jobRecord
}

func New(opts Options) (*Server, error) {
	if opts.Logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		opts.Logger = l
	}
	if opts.Issuer == "" {
		opts.Issuer = "fieldops-devserver"
	}
	if opts.AccessTTL <= 0 {
		opts.AccessTTL = 15 * time.Minute
	}
	if len(opts.Secret) == 0 {
		opts.Secret = make([]byte, 32)
		if _, err := rand.Read(opts.Secret); err != nil {
			return nil, fmt.Errorf("generate secret: %w", err)
		}
	}
	if opts.PasswordParams == (password.Params{}) {
		opts.PasswordParams = password.DefaultParams()
	}

	tokens, err := jwt.NewManager(jwt.Config{
		AccessTTL:     opts.AccessTTL,
		SigningMethod: jwt.MethodHS256,
		PrivateKey:    opts.Secret,
		Issuer:        opts.Issuer,
	})
	if err != nil {
		return nil, fmt.Errorf("token manager: %w", err)
	}
	hasher, err := password.NewHasher(opts.PasswordParams)
	if err != nil {
		return nil, fmt.Errorf("password hasher: %w", err)
	}

	s := &Server{
		log:       opts.Logger,
		tokens:    tokens,
		hasher:    hasher,
		rotate:    opts.RotateRefreshTokens,
		byEmail:   make(map[string]*account),
		byUID:     make(map[string]*account),
		refresh:   make(map[uuid.UUID]refreshSession),
		employees: make(map[int]fieldapi.Employee),
		items: map[string]map[int]fieldapi.Item{
			"vehicles":       {},
			"equipment":      {},
			"subcontractors": {},
		},
	}
	if opts.Redis != nil {
		if opts.Throttle == (rate.Config{}) {
			opts.Throttle = rate.DefaultConfig()
		}
		s.limit = rate.New(opts.Redis, opts.Throttle)
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() *mux.Router {
	v := middleware.ValidatorFunc(s.validate)
	authed := middleware.Guard(v)
	admin := middleware.RequireRole(v, fieldapi.RoleAdmin)

	r := mux.NewRouter()
	r.Use(s.recoverMiddleware, s.logMiddleware)

	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/refresh", s.handleRefresh).Methods(http.MethodPost)
	r.Handle("/logout", authed(http.HandlerFunc(s.handleLogout))).Methods(http.MethodPost)
	r.Handle("/verify", authed(http.HandlerFunc(s.handleVerify))).Methods(http.MethodGet)

	r.Handle("/jobs/{id:[0-9]+}", authed(http.HandlerFunc(s.handleGetJob))).Methods(http.MethodGet)
	r.Handle("/jobs", admin(http.HandlerFunc(s.handleListJobs))).Methods(http.MethodGet)
	r.Handle("/jobs", authed(http.HandlerFunc(s.handleUtilizeJob))).Methods(http.MethodPost)
	r.Handle("/my_jobs/closed", authed(http.HandlerFunc(s.handleMyClosed))).Methods(http.MethodGet)
	r.Handle("/my_jobs/open", authed(http.HandlerFunc(s.handleMyOpen))).Methods(http.MethodGet)
	r.Handle("/admin_jobs", admin(http.HandlerFunc(s.handleCreateForUser))).Methods(http.MethodPost)
	r.Handle("/daily-report", admin(http.HandlerFunc(s.handleDailyReport))).Methods(http.MethodGet)

	r.Handle("/users", admin(http.HandlerFunc(s.handleListUsers))).Methods(http.MethodGet)
	r.Handle("/employees", authed(http.HandlerFunc(s.handleListEmployees))).Methods(http.MethodGet)
	r.Handle("/employees", admin(http.HandlerFunc(s.handleCreateEmployee))).Methods(http.MethodPost)
	r.Handle("/employees/{id:[0-9]+}", admin(http.HandlerFunc(s.handleDeleteEmployee))).Methods(http.MethodDelete)

	const kinds = "{kind:vehicles|equipment|subcontractors}"
	r.Handle("/"+kinds, authed(http.HandlerFunc(s.handleListItems))).Methods(http.MethodGet)
	r.Handle("/"+kinds, admin(http.HandlerFunc(s.handleCreateItem))).Methods(http.MethodPost)
	r.Handle("/"+kinds+"/{id:[0-9]+}", admin(http.HandlerFunc(s.handleDeleteItem))).Methods(http.MethodDelete)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	return r
}

// ExpireAccessTokens invalidates every access token issued so far. Refresh
// tokens stay valid.
func (s *Server) ExpireAccessTokens() {
	s.epoch.Add(1)
}

// RevokeRefreshTokens invalidates every outstanding refresh token.
func (s *Server) RevokeRefreshTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.refresh)
}

// RefreshCalls reports how many /refresh requests were received.
func (s *Server) RefreshCalls() int64 {
	return s.refreshCalls.Load()
}

// AddUser registers an account that can log in with email and pass.
func (s *Server) AddUser(email, name, role, pass string) (fieldapi.User, error) {
	if email == "" || pass == "" {
		return fieldapi.User{}, errors.New("email and password are required")
	}
	if role != fieldapi.RoleAdmin && role != fieldapi.RoleEmployee {
		return fieldapi.User{}, fmt.Errorf("unknown role %q", role)
	}
	hash, err := s.hasher.Hash(pass)
	if err != nil {
		return fieldapi.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[email]; ok {
		return fieldapi.User{}, fmt.Errorf("user %s already exists", email)
	}
	id := s.allocID()
	acct := &account{
		user: fieldapi.User{
			ID:       id,
			Role:     role,
			UID:      fmt.Sprintf("uid-%d", id),
			Name:     name,
			Email:    email,
			IsActive: true,
		},
		hash: hash,
	}
	s.byEmail[email] = acct
	s.byUID[acct.user.UID] = acct
	return acct.user, nil
}

// SeedDemo adds one admin, one employee and a small roster.
func (s *Server) SeedDemo() error {
	if _, err := s.AddUser("admin@example.com", "Dana Admin", fieldapi.RoleAdmin, "admin-pass"); err != nil {
		return err
	}
	if _, err := s.AddUser("tech@example.com", "Sam Tech", fieldapi.RoleEmployee, "tech-pass"); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.addEmployeeLocked("Sam", "Tech")
	s.addEmployeeLocked("Riley", "Crew")
	s.addItemLocked("vehicles", "Truck 12")
	s.addItemLocked("equipment", "Excavator")
	s.addItemLocked("subcontractors", "Acme Electric")
	return nil
}

func (s *Server) allocID() int {
	s.nextID++
	return s.nextID
}

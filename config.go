package goFieldOps

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Config holds every tunable of a Session. It is copied into the Session at
// Build time and never mutated afterwards.
type Config struct {
	API     APIConfig
	Refresh RefreshConfig
	Logout  LogoutConfig
	Audit   AuditConfig
	Metrics MetricsConfig
	Logging LoggingConfig
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig describes the remote API every request is resolved against.
type APIConfig struct {
	BaseURL         string
	Timeout         time.Duration
	UserAgent       string
	RequestIDHeader string
}

/*
====================================
REFRESH CONFIG
====================================
*/

// RefreshConfig controls the single refresh call issued on a 401.
//
// Timeout bounds the refresh independently of the caller that triggered it.
// AcceptRotation stores a refresh token returned by the server alongside the
// new access token; when false the original refresh token is kept.
type RefreshConfig struct {
	Path           string
	Timeout        time.Duration
	AcceptRotation bool
}

// LogoutConfig names the unauthenticated entry point handed to the fallback
// Redirector on forced logout.
type LogoutConfig struct {
	LoginPath string
}

// AuditConfig configures the async session event dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig toggles the in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// LoggingConfig is only consulted when no logger is injected through
// Builder.WithLogger.
type LoggingConfig struct {
	Level  string // logrus level name
	Format string // "text" (default) or "json"
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns a configuration suitable for a local development API.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:         "http://localhost:8000",
			Timeout:         30 * time.Second,
			UserAgent:       "goFieldOps/1",
			RequestIDHeader: "X-Request-ID",
		},
		Refresh: RefreshConfig{
			Path:           "/refresh",
			Timeout:        15 * time.Second,
			AcceptRotation: true,
		},
		Logout: LogoutConfig{
			LoginPath: "/login",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.API.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.API.BaseURL), "/")
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first configuration error found.
func (c *Config) Validate() error {
	// API
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("API BaseURL is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Host == "" {
		return errors.New("API BaseURL must be an absolute URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("API BaseURL scheme must be http or https")
	}
	if c.API.Timeout <= 0 {
		return errors.New("API Timeout must be > 0")
	}
	if strings.TrimSpace(c.API.RequestIDHeader) == "" {
		return errors.New("API RequestIDHeader is required")
	}

	// Refresh
	if !strings.HasPrefix(c.Refresh.Path, "/") {
		return errors.New("Refresh Path must start with '/'")
	}
	if c.Refresh.Timeout <= 0 {
		return errors.New("Refresh Timeout must be > 0")
	}

	// Logout
	if strings.TrimSpace(c.Logout.LoginPath) == "" {
		return errors.New("Logout LoginPath is required")
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	if c.Logging.Level != "" {
		if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
			return errors.New("Logging Level is not a valid level")
		}
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return errors.New("Logging Format must be 'text' or 'json'")
	}

	return nil
}

/*
====================================
LINT
====================================
*/

// LintWarning is a non-fatal observation about a Config.
type LintWarning struct {
	Code    string
	Message string
}

// LintWarnings is the result of Config.Lint.
type LintWarnings []LintWarning

// Codes returns the warning codes in order.
func (ws LintWarnings) Codes() []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Code)
	}
	return out
}

// Lint reports settings that are valid but likely unintended.
func (c *Config) Lint() LintWarnings {
	var ws LintWarnings

	if u, err := url.Parse(c.API.BaseURL); err == nil && u.Scheme == "http" && !isLoopbackHost(u.Hostname()) {
		ws = append(ws, LintWarning{
			Code:    "plaintext_base_url",
			Message: "bearer tokens will be sent over plain http to a non-local host",
		})
	}
	if c.Refresh.Timeout > c.API.Timeout {
		ws = append(ws, LintWarning{
			Code:    "refresh_timeout_exceeds_request_timeout",
			Message: "queued requests may outlive their own request timeout while waiting on refresh",
		})
	}
	if c.API.Timeout > 2*time.Minute {
		ws = append(ws, LintWarning{
			Code:    "request_timeout_long",
			Message: "API Timeout above 2m delays detection of a stalled API",
		})
	}
	if c.Audit.Enabled && c.Audit.DropIfFull {
		ws = append(ws, LintWarning{
			Code:    "audit_may_drop",
			Message: "session events are dropped when the audit buffer is full",
		})
	}
	if !c.Refresh.AcceptRotation {
		ws = append(ws, LintWarning{
			Code:    "refresh_rotation_ignored",
			Message: "rotated refresh tokens returned by the server are discarded",
		})
	}

	return ws
}

func isLoopbackHost(host string) bool {
	switch host {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

package goFieldOps

import (
	"errors"
	"net/http"
	"os"

	"github.com/MrEthical07/goFieldOps/store"
	"github.com/sirupsen/logrus"
)

// Builder assembles a Session. A Builder is single use: Build may succeed
// at most once.
type Builder struct {
	config Config
	store  store.Store

	transport  http.RoundTripper
	logger     logrus.FieldLogger
	auditSink  AuditSink
	redirector Redirector

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithStore sets the credential store. Required.
func (b *Builder) WithStore(s store.Store) *Builder {
	b.store = s
	return b
}

// WithTransport sets the RoundTripper used for both API calls and the
// refresh call. Defaults to http.DefaultTransport.
func (b *Builder) WithTransport(rt http.RoundTripper) *Builder {
	b.transport = rt
	return b
}

// WithHTTPClient borrows the transport of an existing client. The client's
// Timeout is not used; APIConfig.Timeout applies instead.
func (b *Builder) WithHTTPClient(c *http.Client) *Builder {
	if c != nil {
		b.transport = c.Transport
	}
	return b
}

// WithLogger injects a logger. Without one, a logrus logger is built from
// Config.Logging and writes to stderr.
func (b *Builder) WithLogger(l logrus.FieldLogger) *Builder {
	b.logger = l
	return b
}

// WithAuditSink enables session events and delivers them to sink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = sink != nil
	return b
}

// WithRedirector sets the fallback used on forced logout when no logout
// handler is registered.
func (b *Builder) WithRedirector(r Redirector) *Builder {
	b.redirector = r
	return b
}

// WithMetricsEnabled toggles the in-process pipeline counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms records refresh call latency when metrics are on.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a ready Session. Stored
// credentials are not read until the first request.
func (b *Builder) Build() (*Session, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.store == nil {
		return nil, errors.New("credential store required")
	}

	logger := b.logger
	if logger == nil {
		logger = newLogger(cfg.Logging)
	}

	transport := b.transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	redirector := b.redirector
	if redirector == nil {
		redirector = logRedirector{logger: logger}
	}

	for _, w := range cfg.Lint() {
		logger.WithField("code", w.Code).Warn(w.Message)
	}

	s := &Session{
		config:     cfg,
		store:      b.store,
		next:       transport,
		logger:     logger,
		redirector: redirector,
		audit:      newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics:    NewMetrics(cfg.Metrics),
	}
	s.bare = &http.Client{
		Transport: transport,
		Timeout:   cfg.Refresh.Timeout,
	}
	s.client = &http.Client{
		Transport: s,
		Timeout:   cfg.API.Timeout,
	}

	b.built = true
	return s, nil
}

func newLogger(cfg LoggingConfig) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)

	if lvl, err := logrus.ParseLevel(cfg.Level); err == nil {
		l.SetLevel(lvl)
	}
	if cfg.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l
}

// Package cli implements the fieldops command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	goFieldOps "github.com/MrEthical07/goFieldOps"
	"github.com/MrEthical07/goFieldOps/fieldapi"
	"github.com/MrEthical07/goFieldOps/metrics/export/prometheus"
	"github.com/MrEthical07/goFieldOps/store"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var ErrUsage = errors.New("usage")

const usage = `fieldops <command> [...]

  login -email E [-password P]     sign in (password may come from FIELDOPS_PASSWORD)
  logout                           sign out here and on the server
  status                           show the stored session
  jobs open|closed                 list your open or submitted jobs
  jobs list [-selected S]          list jobs (admin); S is all or admin_incomplete
  jobs get <id>                    show one job as JSON
  report [-date D] [-o FILE]       download the daily CSV report (admin)
  template [-o FILE]               write the bulk upload template
  upload [-dry-run] <file>         create jobs from an .xlsx or .xls sheet (admin)
  roster <kind> [add NAME | rm ID] list or edit users, employees, vehicles,
                                   equipment or subcontractors`

func PrintUsage(w io.Writer) {
	fmt.Fprintln(w, usage)
}

func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrUsage}, args...)...)
}

// app is one CLI invocation.
type app struct {
	cfg    Config
	out    io.Writer
	errOut io.Writer
	logger *logrus.Logger

	session *goFieldOps.Session
	api     *fieldapi.Client
	closers []func()
}

// Execute runs the command named by args[0].
func Execute(ctx context.Context, cfg Config, args []string, stdout, stderr io.Writer) error {
	if len(args) < 1 {
		return usageError("missing command")
	}

	a := &app{cfg: cfg, out: stdout, errOut: stderr}

	// template needs no session
	if args[0] == "template" {
		return a.runTemplate(args[1:])
	}

	if err := a.open(); err != nil {
		return err
	}
	defer a.close()

	switch args[0] {
	case "login":
		return a.runLogin(ctx, args[1:])
	case "logout":
		return a.runLogout(ctx)
	case "status":
		return a.runStatus(ctx)
	case "jobs":
		return a.runJobs(ctx, args[1:])
	case "report":
		return a.runReport(ctx, args[1:])
	case "upload":
		return a.runUpload(ctx, args[1:])
	case "roster":
		return a.runRoster(ctx, args[1:])
	default:
		return usageError("unknown command %q", args[0])
	}
}

func (a *app) open() error {
	a.logger = logrus.New()
	a.logger.SetOutput(a.errOut)
	if lvl, err := logrus.ParseLevel(a.cfg.LogLevel); err == nil {
		a.logger.SetLevel(lvl)
	}
	if a.cfg.LogFormat == "json" {
		a.logger.SetFormatter(&logrus.JSONFormatter{})
	}

	st, err := a.openStore()
	if err != nil {
		return err
	}

	cfg := goFieldOps.DefaultConfig()
	cfg.API.BaseURL = a.cfg.BaseURL
	cfg.API.Timeout = a.cfg.Timeout
	cfg.Refresh.Timeout = a.cfg.RefreshTimeout

	b := goFieldOps.New().
		WithConfig(cfg).
		WithStore(st).
		WithLogger(a.logger).
		WithRedirector(goFieldOps.RedirectFunc(func(_ context.Context, entryPoint string) {
			fmt.Fprintf(a.errOut, "session ended (%s); run `fieldops login` to sign in again\n", entryPoint)
		}))
	if a.cfg.Audit {
		b = b.WithAuditSink(goFieldOps.LogSink{Logger: a.logger})
	}

	a.session, err = b.Build()
	if err != nil {
		a.close()
		return fmt.Errorf("build session: %w", err)
	}
	a.api = fieldapi.NewClient(a.session)
	return nil
}

func (a *app) openStore() (store.Store, error) {
	switch a.cfg.Store {
	case "file":
		if err := os.MkdirAll(filepath.Dir(a.cfg.TokenFile), 0o700); err != nil {
			return nil, fmt.Errorf("create token dir: %w", err)
		}
		return store.NewFileStore(a.cfg.TokenFile), nil
	case "memory":
		return store.NewMemoryStore(), nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{Addr: a.cfg.RedisAddr})
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		return store.NewRedisStore(rdb, a.cfg.RedisPrefix, a.cfg.RedisTTL), nil
	case "miniredis":
		mr, err := miniredis.Run()
		if err != nil {
			return nil, fmt.Errorf("start miniredis: %w", err)
		}
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		a.closers = append(a.closers, func() { _ = rdb.Close() }, mr.Close)
		return store.NewRedisStore(rdb, a.cfg.RedisPrefix, a.cfg.RedisTTL), nil
	default:
		return nil, fmt.Errorf("unknown FIELDOPS_STORE %q", a.cfg.Store)
	}
}

func (a *app) close() {
	if a.session != nil {
		if a.cfg.Metrics {
			fmt.Fprint(a.errOut, prometheus.NewPrometheusExporter(a.session).Render())
		}
		a.session.Close()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func (a *app) runLogin(ctx context.Context, args []string) error {
	fs := newFlagSet("login", a.errOut)
	email := fs.String("email", "", "account email")
	pass := fs.String("password", "", "account password (default $FIELDOPS_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *pass == "" {
		*pass = os.Getenv("FIELDOPS_PASSWORD")
	}
	if *email == "" || *pass == "" {
		return usageError("fieldops login -email E [-password P]")
	}

	out, err := a.api.Auth.Login(ctx, *email, *pass)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "signed in as %s (%s)\n", out.Email, out.User.Role)
	return nil
}

func (a *app) runLogout(ctx context.Context) error {
	if err := a.api.Auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "signed out")
	return nil
}

func (a *app) runStatus(ctx context.Context) error {
	st, err := a.session.Status(ctx)
	if err != nil {
		return err
	}
	if !st.Authenticated {
		fmt.Fprintln(a.out, "not signed in")
		return nil
	}

	fmt.Fprintf(a.out, "subject:       %s\n", st.Subject)
	fmt.Fprintf(a.out, "role:          %s\n", st.Role)
	fmt.Fprintf(a.out, "refresh token: %t\n", st.HasRefreshToken)
	if !st.ExpiresAt.IsZero() {
		state := "valid"
		if st.Expired {
			state = "expired, refreshed on next call"
		}
		fmt.Fprintf(a.out, "access token:  %s until %s\n", state, st.ExpiresAt.Local().Format(time.RFC3339))
	}
	return nil
}

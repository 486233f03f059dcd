package goFieldOps

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Redirector sends the application to its unauthenticated entry point. It is
// the fallback used on forced logout when no logout handler is registered.
type Redirector interface {
	Redirect(ctx context.Context, entryPoint string)
}

// RedirectFunc adapts a plain function to Redirector.
type RedirectFunc func(ctx context.Context, entryPoint string)

func (f RedirectFunc) Redirect(ctx context.Context, entryPoint string) {
	f(ctx, entryPoint)
}

// logRedirector is the default: a headless process has nowhere to navigate,
// so it only records where the user should go next.
type logRedirector struct {
	logger logrus.FieldLogger
}

func (r logRedirector) Redirect(_ context.Context, entryPoint string) {
	r.logger.WithField("entry_point", entryPoint).Warn("session ended, sign in again")
}

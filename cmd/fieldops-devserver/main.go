// Command fieldops-devserver serves the field-service API from memory for
// local development.
//
//	go run ./cmd/fieldops-devserver -addr :8000 -rotate
//
// It seeds admin@example.com / admin-pass and tech@example.com / tech-pass.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrEthical07/goFieldOps/internal/devserver"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	addr := flag.String("addr", ":8000", "listen address")
	ttl := flag.Duration("access-ttl", 15*time.Minute, "access token lifetime")
	rotate := flag.Bool("rotate", false, "rotate refresh tokens on every refresh")
	level := flag.String("log-level", "info", "log level")
	redisAddr := flag.String("redis", "", "redis address for login and refresh throttling (off when empty)")
	flag.Parse()

	logger := logrus.New()
	if lvl, err := logrus.ParseLevel(*level); err == nil {
		logger.SetLevel(lvl)
	}

	opts := devserver.Options{
		Logger:              logger,
		AccessTTL:           *ttl,
		RotateRefreshTokens: *rotate,
	}
	if *redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: *redisAddr})
		defer rdb.Close()
		opts.Redis = rdb
	}

	srv, err := devserver.New(opts)
	if err != nil {
		logger.WithError(err).Fatal("create server")
	}
	if err := srv.SeedDemo(); err != nil {
		logger.WithError(err).Fatal("seed demo data")
	}

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           srv,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.WithField("addr", *addr).Info("listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Fatal("serve")
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/attendance-client-go/internal/domain/auth"
	appHTTP "github.com/cmlabs-hris/attendance-client-go/internal/handler/http"
	"github.com/cmlabs-hris/attendance-client-go/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-client-go/internal/pkg/jwt"
)

const shutdownTimeout = 10 * time.Second

// serve runs the loopback bridge a browser UI talks to, plus the session jobs.
func (a *app) serve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	port := fs.Int("port", a.cfg.Bridge.Port, "port to listen on (loopback only)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if session, err := a.authService.Restore(ctx); err == nil {
		slog.Info("Restored session", "user_id", session.User.ID)
		if _, err := a.attendanceService.Resume(ctx); err != nil {
			slog.Warn("Could not load today's attendance", "error", err)
		}
	} else if !errors.Is(err, auth.ErrNotAuthenticated) {
		slog.Warn("Stored session could not be restored", "error", err)
	}

	// Bridge tokens are signed with a per-process secret, so they never
	// outlive the process that issued them.
	secret, err := jwt.NewRandomSecret()
	if err != nil {
		return err
	}
	JWTService := jwt.NewJWTService(secret, a.cfg.Bridge.TokenTTL)

	authHandler := appHTTP.NewAuthHandler(a.authService, JWTService)
	attendanceHandler := appHTTP.NewAttendanceHandler(a.attendanceService, a.authService, a.permissions)
	eventsHandler := appHTTP.NewEventsHandler(a.hub, JWTService, a.attendanceService)

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{AllowedOrigins: a.cfg.Bridge.AllowedOrigins, Logger: slog.Default()},
		JWTService,
		authHandler,
		attendanceHandler,
		eventsHandler,
	)

	scheduler := cron.NewScheduler()
	cron.NewSessionJobs(a.attendanceService, a.authService).RegisterJobs(scheduler)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", *port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("Bridge listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		a.hub.Close()
		return fmt.Errorf("bridge server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down bridge")
	a.hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("bridge shutdown: %w", err)
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cmlabs-hris/attendance-client-go/internal/config"
	"github.com/go-chi/httplog/v3"
)

const version = "v1.0.0"

const usage = `Usage: attendctl <command> [flags]

Commands:
  login       sign in to the attendance server
  register    create an account
  logout      sign out and forget stored credentials
  me          show the signed-in user
  check-in    check in from the office
  check-out   check out from the office
  status      show today's attendance session
  today       show today's attendance record from the server
  history     list past attendance records
  stats       show monthly attendance statistics
  serve       run the local HTTP bridge for a UI

Run 'attendctl <command> -h' for command flags.
`

func main() {
	if len(os.Args) < 2 || os.Args[1] == "-h" || os.Args[1] == "--help" || os.Args[1] == "help" {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	command, args := os.Args[1], os.Args[2:]

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg, command == "serve"))

	app, err := newApp(cfg, os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.run(ctx, command, args); err != nil {
		stop()
		var denied *deniedError
		if errors.As(err, &denied) {
			fmt.Fprintf(os.Stderr, "%s: %s\n", denied.title, denied.message)
			os.Exit(3)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newLogger logs JSON in ECS shape for the long-running bridge and plain text
// on stderr for one-shot commands.
func newLogger(cfg *config.Config, serve bool) *slog.Logger {
	if !serve {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel()}))
	}

	logFormat := httplog.SchemaECS.Concise(!cfg.IsProduction())
	var out io.Writer = os.Stdout
	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level:       cfg.LogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "attendctl"),
		slog.String("version", version),
		slog.String("env", cfg.App.Env),
	)
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ozacod/zapi/internal/app/cli"
)

// Set at release time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	debug := os.Getenv("DEBUG") != ""

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := cli.NewApp(version)
	if err := cli.RootCmd(app).ExecuteContext(ctx); err != nil {
		app.Logger().Error("%s", err)
		if debug {
			fmt.Fprintf(os.Stderr, "%+v\n", err)
		}
		return 1
	}
	return 0
}

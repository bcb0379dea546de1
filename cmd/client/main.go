// Command client is a terminal UI for the users API.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/geocoder89/usershub/internal/client/api"
	"github.com/geocoder89/usershub/internal/client/controller"
	"github.com/geocoder89/usershub/internal/client/tui"
	"github.com/geocoder89/usershub/internal/clock"
	"github.com/geocoder89/usershub/internal/observability"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		apiURL  string
		timeout time.Duration
		logFile string
	)

	flagSet := pflag.NewFlagSet("client", pflag.ContinueOnError)
	flagSet.StringVar(&apiURL, "api-url", "http://localhost:5000/api/users", "users collection endpoint")
	flagSet.DurationVar(&timeout, "timeout", 10*time.Second, "per request timeout")
	flagSet.StringVar(&logFile, "log-file", "", "write JSON log records to this file")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	// the TUI owns the terminal, so logs only go to a file
	var logOutput io.Writer = io.Discard

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOutput = f
	}

	log := observability.NewLoggerTo(logOutput, "dev")
	slog.SetDefault(log)

	client, err := api.New(apiURL, timeout)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctrl := controller.New(client, clock.Real())

	log.Info("client starting", "api_url", apiURL, "timeout", timeout.String())

	program := tea.NewProgram(tui.NewModel(ctx, ctrl), tea.WithAltScreen())
	_, err = program.Run()

	return err
}

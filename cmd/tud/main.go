// Package main is the entry point for the Team Usage Dashboard console.
// It loads configuration, opens the call log and runs the Bubble Tea menu.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/team-usage-dashboard/internal/app"
	"github.com/j-veylop/team-usage-dashboard/internal/config"
	"github.com/j-veylop/team-usage-dashboard/internal/logger"
	"github.com/j-veylop/team-usage-dashboard/internal/services"
	"github.com/j-veylop/team-usage-dashboard/internal/version"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Println(version.Info("tud"))
		os.Exit(0)
	}

	if len(os.Args) > 1 && (os.Args[1] == "-h" || os.Args[1] == "--help") {
		printUsage()
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run contains the main application logic, separated for cleaner error handling.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// The terminal belongs to the TUI; logs go to the rotating file only.
	if err := logger.Setup(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile}); err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	mgr, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() {
		if closeErr := mgr.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := tea.NewProgram(
		app.NewModel(ctx, mgr),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	logger.Info("console started", "version", version.GetVersion(), "database", cfg.DatabasePath)

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// printUsage prints the command-line usage information.
func printUsage() {
	fmt.Println(`Team Usage Dashboard - Admin API reporting console

Usage:
  tud [flags]

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information

Menu:
  1  All team members           7  Spend report
  2  Owners                     8  Daily usage
  3  Members                    9  Usage events analysis
  4  Filter by role            10  Export usage events to CSV
  5  Team statistics           11  Export members + spend workbook (XLSX)
  6  Save JSON report           0  Quit

Keyboard Shortcuts:
  j/k, Up/Down    Move the menu cursor
  0-11, Enter     Run the typed or highlighted entry
  Tab/Shift+Tab   Move between prompt fields
  h               Show the API call log
  Esc             Back to the menu
  q, Ctrl+C       Quit

Environment Variables:
  CURSOR_API_KEY        Admin API key (required)
  ADMIN_API_BASE_URL    Admin API host (default: https://api.cursor.com)
  HTTP_TIMEOUT          Request timeout, e.g. 30s (default: none)
  DATABASE_PATH         SQLite call log path
  EXPORT_DIR            Directory for JSON, CSV and XLSX exports (default: .)
  SPEND_ALERT_PERCENT   Desktop alert threshold of a hard limit (default: 80)
  LOG_LEVEL, LOG_FILE   Logging level and rotating log file

Configuration:
  The application looks for .env files in the following locations:
  - Current directory
  - ~/.config/team-usage-dashboard/.env
  - ~/.team-usage-dashboard/.env
  - Parent directory`)
}

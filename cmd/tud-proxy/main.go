// Package main is the entry point for the dashboard proxy: it relays browser
// requests to the Admin API, sends report emails and builds workbooks.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/j-veylop/team-usage-dashboard/internal/config"
	"github.com/j-veylop/team-usage-dashboard/internal/db"
	"github.com/j-veylop/team-usage-dashboard/internal/logger"
	"github.com/j-veylop/team-usage-dashboard/internal/mailer"
	"github.com/j-veylop/team-usage-dashboard/internal/proxy"
	"github.com/j-veylop/team-usage-dashboard/internal/services/adminapi"
	"github.com/j-veylop/team-usage-dashboard/internal/version"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Println(version.Info("tud-proxy"))
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

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.Setup(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile, Stderr: true}); err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	cred, err := adminapi.NewCredential(cfg.APIKey)
	if err != nil {
		return err
	}

	database, err := db.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if closeErr := database.Close(); closeErr != nil {
			logger.Warn("error closing database", "error", closeErr)
		}
	}()

	client := adminapi.New(cred, adminapi.Config{
		BaseURL:  cfg.BaseURL,
		Timeout:  cfg.HTTPTimeout,
		Recorder: database,
	})

	templates, err := mailer.NewTemplates(cfg.Mail.TemplateDir)
	if err != nil {
		return fmt.Errorf("failed to load mail templates: %w", err)
	}
	defer func() { _ = templates.Close() }()

	if !cfg.Mail.Configured() {
		logger.Warn("SMTP credentials missing, /send-email will fail until SMTP_USERNAME and SMTP_PASSWORD are set")
	}

	server := proxy.New(proxy.Config{
		Addr:      cfg.ProxyAddr,
		StaticDir: cfg.StaticDir,
	}, client, mailer.New(cfg.Mail, templates))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting proxy", "version", version.GetVersion(), "upstream", cfg.BaseURL)
	return server.Run(ctx)
}

func printUsage() {
	fmt.Println(`Team Usage Dashboard proxy - CORS relay, mailer and workbook endpoint

Usage:
  tud-proxy [flags]

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information

Routes:
  OPTIONS *                CORS preflight
  GET|POST /teams/*        Relay to the Admin API with credentials
  POST /send-email         Send an HTML report email (optional XLSX attachment)
  POST /generate-xlsx      Build a workbook from sheet definitions
  GET  /<file>             Static files from STATIC_DIR

Environment Variables:
  CURSOR_API_KEY                   Admin API key (required)
  ADMIN_API_BASE_URL               Admin API host (default: https://api.cursor.com)
  PROXY_ADDR                       Listen address (default: :8001)
  STATIC_DIR                       Static file root (default: .)
  SMTP_HOST, SMTP_PORT             Relay (default: smtp.gmail.com:587)
  SMTP_USERNAME, SMTP_PASSWORD     Relay credentials
  MAIL_FROM_NAME, MAIL_FROM_ADDRESS, MAIL_REPLY_TO_NAME, MAIL_REPLY_TO_ADDRESS
  MAIL_TEMPLATE_DIR                Hot-reloaded report.txt.tmpl / report.html.tmpl overrides`)
}

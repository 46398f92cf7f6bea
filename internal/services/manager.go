// Package services provides service orchestration for the console.
package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gen2brain/beeep"

	"github.com/j-veylop/team-usage-dashboard/internal/config"
	"github.com/j-veylop/team-usage-dashboard/internal/db"
	"github.com/j-veylop/team-usage-dashboard/internal/logger"
	"github.com/j-veylop/team-usage-dashboard/internal/models"
	"github.com/j-veylop/team-usage-dashboard/internal/report"
	"github.com/j-veylop/team-usage-dashboard/internal/services/adminapi"
	"github.com/j-veylop/team-usage-dashboard/internal/spreadsheet"
	"github.com/j-veylop/team-usage-dashboard/internal/stats"
)

// Call log view defaults.
const (
	DefaultCallLogLimit = 50
	DefaultCallLogHours = 24
)

// Notifier raises a desktop notification.
type Notifier func(title, message string) error

// CallLog is the recent call history with per-endpoint aggregates.
type CallLog struct {
	Calls     []models.APICall
	Endpoints []models.EndpointStats
}

// Manager wires the Admin API client, the call log and the export
// directory behind the operations offered by the console. Fetched data is
// never cached; every operation issues its own upstream calls.
type Manager struct {
	mu       sync.Mutex
	cfg      *config.Config
	client   *adminapi.Client
	database *db.DB
	notify   Notifier
	now      func() time.Time

	// alerted holds members already reported over the spend threshold, so
	// an alert fires only when a member crosses it.
	alerted map[string]bool
}

// NewManager opens the call log and builds the API client from cfg.
func NewManager(cfg *config.Config) (*Manager, error) {
	cred, err := adminapi.NewCredential(cfg.APIKey)
	if err != nil {
		return nil, err
	}

	database, err := db.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if n, err := database.Prune(db.DefaultRetentionDays); err != nil {
		logger.Warn("failed to prune call log", "error", err)
	} else if n > 0 {
		logger.Debug("pruned call log", "rows", n)
	}

	client := adminapi.New(cred, adminapi.Config{
		BaseURL:  cfg.BaseURL,
		Timeout:  cfg.HTTPTimeout,
		Recorder: database,
	})

	return &Manager{
		cfg:      cfg,
		client:   client,
		database: database,
		notify:   desktopNotify,
		now:      time.Now,
		alerted:  make(map[string]bool),
	}, nil
}

func desktopNotify(title, message string) error {
	return beeep.Notify(title, message, "")
}

// Now returns the manager's clock.
func (m *Manager) Now() time.Time {
	return m.now()
}

// Config returns the configuration the manager was built with.
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// SpendAlertPercent is the share of a hard limit that raises an alert.
func (m *Manager) SpendAlertPercent() float64 {
	return m.cfg.SpendAlertPercent
}

// Client returns the Admin API client.
func (m *Manager) Client() *adminapi.Client {
	return m.client
}

// Database returns the call log database.
func (m *Manager) Database() *db.DB {
	return m.database
}

// Members fetches the team member list.
func (m *Manager) Members(ctx context.Context) ([]models.TeamMember, error) {
	return m.client.FetchMembers(ctx)
}

// Spend fetches the spend report and raises alerts for members that
// crossed the configured share of their hard limit.
func (m *Manager) Spend(ctx context.Context, searchTerm string) (*models.SpendSummary, error) {
	summary, err := m.client.FetchSpend(ctx, adminapi.SpendQuery{SearchTerm: searchTerm})
	if err != nil {
		return nil, err
	}
	m.checkSpendAlerts(summary.Members)
	return summary, nil
}

func (m *Manager) checkSpendAlerts(records []models.SpendRecord) {
	over := stats.OverLimit(records, m.cfg.SpendAlertPercent)

	m.mu.Lock()
	defer m.mu.Unlock()

	current := make(map[string]bool, len(over))
	for _, r := range over {
		current[r.Email] = true
		if m.alerted[r.Email] {
			continue
		}

		title := fmt.Sprintf("Spend limit: %s", r.Email)
		body := fmt.Sprintf("%s spent %s of a %s hard limit",
			r.Email, report.Dollars(r.SpendCents), report.Dollars(r.HardLimitCents()))
		if err := m.notify(title, body); err != nil {
			logger.Warn("failed to send desktop notification", "email", r.Email, "error", err)
		}
	}

	// Members seen under the threshold again may alert on the next crossing.
	for _, r := range records {
		if !current[r.Email] {
			delete(m.alerted, r.Email)
		}
	}
	for email := range current {
		m.alerted[email] = true
	}
}

// DailyUsage fetches per-user daily records for period.
func (m *Manager) DailyUsage(ctx context.Context, period models.Period) (*models.DailyUsageReport, error) {
	return m.client.FetchDailyUsage(ctx, period)
}

// UsageEvents fetches every usage event in period across all pages.
func (m *Manager) UsageEvents(ctx context.Context, period models.Period) ([]models.UsageEvent, error) {
	return m.client.FetchAllUsageEvents(ctx, adminapi.UsageEventsQuery{
		StartDate: period.StartMillis(),
		EndDate:   period.EndMillis(),
	})
}

// SaveTeamReport fetches the members and writes the JSON report into the
// export directory.
func (m *Manager) SaveTeamReport(ctx context.Context) (string, report.TeamReport, error) {
	members, err := m.client.FetchMembers(ctx)
	if err != nil {
		return "", report.TeamReport{}, err
	}

	r := report.BuildTeamReport(members, m.now())
	path := filepath.Join(m.cfg.ExportDir, report.TeamReportFile)
	if err := report.WriteTeamReport(path, r); err != nil {
		return "", report.TeamReport{}, err
	}

	logger.Info("saved team report", "path", path, "members", len(members))
	return path, r, nil
}

// ExportUsageCSV writes the usage events of period, optionally limited to
// one user, as an activity CSV plus its summary CSV.
func (m *Manager) ExportUsageCSV(ctx context.Context, period models.Period, email string) (report.CSVExport, error) {
	events, err := m.UsageEvents(ctx, period)
	if err != nil {
		return report.CSVExport{}, err
	}

	name := fmt.Sprintf("usage_events_%s.csv", m.now().Format("20060102_150405"))
	export, err := report.WriteUsageCSV(filepath.Join(m.cfg.ExportDir, name), events, email)
	if err != nil {
		return report.CSVExport{}, err
	}

	logger.Info("exported usage events", "path", export.ActivityPath, "rows", export.Rows)
	return export, nil
}

// ExportWorkbook writes the members and spend workbook into the export
// directory and returns its path. Spend is optional: when it cannot be
// fetched the workbook carries the member sheets only.
func (m *Manager) ExportWorkbook(ctx context.Context) (string, error) {
	members, err := m.client.FetchMembers(ctx)
	if err != nil {
		return "", err
	}

	spend, err := m.client.FetchSpend(ctx, adminapi.SpendQuery{})
	if err != nil {
		logger.Warn("exporting workbook without spend", "error", err)
	}

	wb := report.TeamWorkbook(members, spend, m.now())
	data, err := spreadsheet.Build(wb)
	if err != nil {
		return "", err
	}

	path := filepath.Join(m.cfg.ExportDir, wb.FileName())
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write workbook: %w", err)
	}

	logger.Info("exported workbook", "path", path, "bytes", len(data))
	return path, nil
}

// RecentCalls returns the latest logged upstream calls and the endpoint
// aggregates over the default window.
func (m *Manager) RecentCalls() (*CallLog, error) {
	calls, err := m.database.GetRecentAPICalls(DefaultCallLogLimit)
	if err != nil {
		return nil, err
	}
	endpoints, err := m.database.GetEndpointStats(DefaultCallLogHours)
	if err != nil {
		return nil, err
	}
	return &CallLog{Calls: calls, Endpoints: endpoints}, nil
}

// Close closes the call log.
func (m *Manager) Close() error {
	if m.database != nil {
		return m.database.Close()
	}
	return nil
}

package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/team-usage-dashboard/internal/logger"
	"github.com/j-veylop/team-usage-dashboard/internal/models"
	"github.com/j-veylop/team-usage-dashboard/internal/report"
	"github.com/j-veylop/team-usage-dashboard/internal/services"
	"github.com/j-veylop/team-usage-dashboard/internal/stats"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second
)

// Service is the backend driven by the console. *services.Manager
// implements it.
type Service interface {
	Now() time.Time
	SpendAlertPercent() float64
	Members(ctx context.Context) ([]models.TeamMember, error)
	Spend(ctx context.Context, searchTerm string) (*models.SpendSummary, error)
	DailyUsage(ctx context.Context, period models.Period) (*models.DailyUsageReport, error)
	UsageEvents(ctx context.Context, period models.Period) ([]models.UsageEvent, error)
	SaveTeamReport(ctx context.Context) (string, report.TeamReport, error)
	ExportUsageCSV(ctx context.Context, period models.Period, email string) (report.CSVExport, error)
	ExportWorkbook(ctx context.Context) (string, error)
	RecentCalls() (*services.CallLog, error)
}

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

func notifySuccessCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationSuccess,
			Message:  message,
			Duration: DefaultNotificationDuration,
		}
	}
}

func notifyErrorCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationError,
			Message:  message,
			Duration: LongNotificationDuration,
		}
	}
}

func notifyWarningCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationWarning,
			Message:  message,
			Duration: DefaultNotificationDuration,
		}
	}
}

// runActionCmd executes item against svc with the prompt values and
// returns its rendered result.
func runActionCmd(ctx context.Context, svc Service, item MenuItem, values map[string]string) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		body, notice, err := execute(ctx, svc, item.ID, values)
		if err != nil {
			logger.Warn("console action failed", "action", item.Label, "error", err)
			body = joinLines(body, report.Err("%v", err))
		} else {
			logger.Debug("console action finished", "action", item.Label, "duration", time.Since(start))
		}
		return ResultMsg{
			Action: item.ID,
			Title:  item.Label,
			Body:   body,
			Notice: notice,
			Err:    err,
		}
	}
}

func execute(ctx context.Context, svc Service, id ActionID, values map[string]string) (body, notice string, err error) {
	switch id {
	case ActionAllMembers, ActionOwners, ActionMembers, ActionFilterRole, ActionStatistics:
		return membersAction(ctx, svc, id, values)

	case ActionSaveJSON:
		path, r, err := svc.SaveTeamReport(ctx)
		if err != nil {
			return "", "", err
		}
		return joinLines(report.OK("Saved team report to %s", path), report.Statistics(r.Statistics)),
			"Saved " + path, nil

	case ActionSpend:
		summary, err := svc.Spend(ctx, values[FieldSearch])
		if err != nil {
			return "", "", err
		}
		return report.Spend(*summary, svc.SpendAlertPercent()), "", nil

	case ActionDailyUsage:
		period, err := models.ParsePeriod(values[FieldStart], values[FieldEnd], svc.Now())
		if err != nil {
			return "", "", err
		}
		r, err := svc.DailyUsage(ctx, period)
		if err != nil {
			return "", "", err
		}
		return report.DailyUsage(r), "", nil

	case ActionUsageAnalysis:
		period, err := models.ParsePeriod(values[FieldStart], values[FieldEnd], svc.Now())
		if err != nil {
			return "", "", err
		}
		events, err := svc.UsageEvents(ctx, period)
		if err != nil {
			return "", "", err
		}
		return report.UsageAnalysis(events, period), "", nil

	case ActionExportCSV:
		period, err := models.ParsePeriod(values[FieldStart], values[FieldEnd], svc.Now())
		if err != nil {
			return "", "", err
		}
		export, err := svc.ExportUsageCSV(ctx, period, strings.TrimSpace(values[FieldEmail]))
		if err != nil {
			return "", "", err
		}
		return joinLines(
			report.OK("Exported %d usage events to %s", export.Rows, export.ActivityPath),
			report.OK("Summary of %d users written to %s", export.Users, export.SummaryPath),
		), fmt.Sprintf("Exported %d rows", export.Rows), nil

	case ActionExportXLSX:
		path, err := svc.ExportWorkbook(ctx)
		if err != nil {
			return "", "", err
		}
		return report.OK("Workbook written to %s", path), "Saved " + path, nil

	case ActionCallLog:
		log, err := svc.RecentCalls()
		if err != nil {
			return "", "", err
		}
		return report.CallLog(log.Calls, log.Endpoints), "", nil
	}

	return "", "", fmt.Errorf("unknown action %d", id)
}

func membersAction(ctx context.Context, svc Service, id ActionID, values map[string]string) (string, string, error) {
	role := strings.TrimSpace(values[FieldRole])
	if id == ActionFilterRole && role == "" {
		return "", "", fmt.Errorf("role is required")
	}

	members, err := svc.Members(ctx)
	if err != nil {
		return "", "", err
	}

	switch id {
	case ActionOwners:
		return report.Members("Owners", stats.Owners(members)), "", nil
	case ActionMembers:
		return report.Members("Members", stats.Members(members)), "", nil
	case ActionFilterRole:
		return report.Members("Role: "+role, stats.FilterByRole(members, role)), "", nil
	case ActionStatistics:
		return report.Statistics(stats.ComputeTeamStatistics(members)), "", nil
	default:
		return report.Members("All Team Members", members), "", nil
	}
}

func joinLines(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n")
}

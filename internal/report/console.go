// Package report renders fetched and aggregated data as console text, JSON
// and CSV.
package report

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/j-veylop/team-usage-dashboard/internal/models"
	"github.com/j-veylop/team-usage-dashboard/internal/stats"
	"github.com/j-veylop/team-usage-dashboard/internal/ui/components"
	"github.com/j-veylop/team-usage-dashboard/internal/ui/styles"
)

// Result markers prefixed to console status lines.
const (
	MarkerOK  = "[OK]"
	MarkerErr = "[ERR]"
)

const (
	chartWidth  = 60
	chartHeight = 10
	barWidth    = 24
	trendWidth  = 31
)

// OK formats a success status line.
func OK(format string, args ...any) string {
	return styles.SuccessTextStyle.Render(MarkerOK) + " " + fmt.Sprintf(format, args...)
}

// Err formats a failure status line.
func Err(format string, args ...any) string {
	return styles.ErrorTextStyle.Render(MarkerErr) + " " + fmt.Sprintf(format, args...)
}

// Dollars renders integer cents as a dollar amount.
func Dollars(cents int64) string {
	return fmt.Sprintf("$%.2f", float64(cents)/100)
}

// dollarsF renders fractional cents as a dollar amount.
func dollarsF(cents float64) string {
	return fmt.Sprintf("$%.4f", cents/100)
}

// newTable builds a fixed-width ASCII table.
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.ASCIIBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.TableHeaderStyle
			}
			return styles.TableCellStyle
		})
}

func section(title string) string {
	return styles.TitleStyle.Render(title)
}

func totals(lines ...string) string {
	return styles.SubTitleStyle.Render(strings.Join(lines, "  |  "))
}

func join(parts ...string) string {
	return strings.Join(parts, "\n")
}

// Members renders a member list under title.
func Members(title string, members []models.TeamMember) string {
	if len(members) == 0 {
		return join(section(title), Err("no members to show"))
	}

	t := newTable("#", "Name", "Email", "Role")
	for i, m := range members {
		t.Row(strconv.Itoa(i+1), m.Name, m.Email, m.Role)
	}

	s := stats.ComputeTeamStatistics(members)
	return join(
		section(fmt.Sprintf("%s (%d)", title, len(members))),
		t.String(),
		totals(
			fmt.Sprintf("Total: %d", s.Total),
			fmt.Sprintf("Owners: %d", s.Owners),
			fmt.Sprintf("Members: %d", s.Members),
		),
	)
}

// Statistics renders the owner/member split of a team.
func Statistics(s models.TeamStatistics) string {
	t := newTable("Group", "Count", "Share").
		Row("Owners", strconv.Itoa(s.Owners), fmt.Sprintf("%.1f%%", s.OwnerRate)).
		Row("Members", strconv.Itoa(s.Members), fmt.Sprintf("%.1f%%", s.MemberRate))

	return join(
		section("Team Statistics"),
		t.String(),
		totals(fmt.Sprintf("Total members: %d", s.Total)),
	)
}

// Spend renders per-member spend with usage bars against hard limits.
// Members at or above alertPercent of their limit are flagged.
func Spend(summary models.SpendSummary, alertPercent float64) string {
	if len(summary.Members) == 0 {
		return join(section("Spend"), Err("no spend data available"))
	}

	t := newTable("#", "Name", "Email", "Role", "Spend", "Premium Req", "Hard Limit", "Usage")
	for i, r := range summary.Members {
		limit := "-"
		if r.HardLimitCents() > 0 {
			limit = Dollars(r.HardLimitCents())
		}
		pct := components.SpendPercent(r.SpendCents, r.HardLimitCents())
		t.Row(
			strconv.Itoa(i+1),
			r.Name,
			r.Email,
			r.Role,
			Dollars(r.SpendCents),
			strconv.FormatInt(r.FastPremiumRequests, 10),
			limit,
			components.SpendBar(pct, barWidth),
		)
	}

	sum := stats.SumSpend(summary.Members)
	out := []string{
		section(fmt.Sprintf("Spend (%d members)", len(summary.Members))),
	}
	if summary.SubscriptionCycleStart > 0 {
		out = append(out, styles.HelpStyle.Render("Billing cycle started "+models.LocalDate(summary.SubscriptionCycleStart)))
	}
	out = append(out,
		t.String(),
		totals(
			"Total spend: "+Dollars(sum.Cents),
			fmt.Sprintf("Premium requests: %d", sum.FastPremiumRequests),
			fmt.Sprintf("Team members: %d", summary.TotalMembers),
		),
	)

	if over := stats.OverLimit(summary.Members, alertPercent); len(over) > 0 {
		for _, r := range over {
			out = append(out, styles.WarningTextStyle.Render(fmt.Sprintf(
				"! %s reached %.0f%% of the %s hard limit",
				r.Email, components.SpendPercent(r.SpendCents, r.HardLimitCents()), Dollars(r.HardLimitCents()))))
		}
	}

	return join(out...)
}

// DailyUsage renders daily records, a per-user summary and a chart of
// requests per day.
func DailyUsage(r *models.DailyUsageReport) string {
	if r == nil || len(r.Records) == 0 {
		return join(section("Daily Usage"), Err("no daily usage data available"))
	}

	title := fmt.Sprintf("Daily Usage (%d records)", len(r.Records))
	out := []string{section(title)}
	if r.Period.StartDate > 0 || r.Period.EndDate > 0 {
		out = append(out, styles.HelpStyle.Render(fmt.Sprintf("Period: %s ~ %s",
			models.LocalDate(r.Period.StartDate), models.LocalDate(r.Period.EndDate))))
	}

	t := newTable("Date", "Email", "Active", "Lines +/-", "Accepted +/-", "Applies", "Accepts", "Rejects",
		"Composer", "Chat", "Agent", "Tabs", "Model")
	var added, deleted, requests int64
	for _, d := range r.Records {
		active := "no"
		if d.IsActive {
			active = "yes"
		}
		t.Row(
			models.LocalDate(d.Date),
			d.Email,
			active,
			fmt.Sprintf("%d/%d", d.TotalLinesAdded, d.TotalLinesDeleted),
			fmt.Sprintf("%d/%d", d.AcceptedLinesAdded, d.AcceptedLinesDeleted),
			strconv.FormatInt(d.TotalApplies, 10),
			strconv.FormatInt(d.TotalAccepts, 10),
			strconv.FormatInt(d.TotalRejects, 10),
			strconv.FormatInt(d.ComposerRequests, 10),
			strconv.FormatInt(d.ChatRequests, 10),
			strconv.FormatInt(d.AgentRequests, 10),
			fmt.Sprintf("%d/%d", d.TotalTabsAccepted, d.TotalTabsShown),
			orNA(d.MostUsedModel),
		)
		added += d.TotalLinesAdded
		deleted += d.TotalLinesDeleted
		requests += d.Requests()
	}
	out = append(out, t.String(), totals(
		fmt.Sprintf("Lines added: %d", added),
		fmt.Sprintf("Lines deleted: %d", deleted),
		fmt.Sprintf("Requests: %d", requests),
	))

	users := stats.SummarizeDailyByUser(r.Records)
	out = append(out, "", userTable("Per-user Summary", users, false))
	out = append(out, "", trendTable(users, stats.UserDailySeries(r.Records)))

	days, values := stats.DailyRequestSeries(r.Records)
	caption := fmt.Sprintf("Requests per day (%s .. %s)", days[0], days[len(days)-1])
	out = append(out, "", components.RenderLineChart(values, chartWidth, chartHeight, caption))

	return join(out...)
}

// UsageAnalysis renders usage events grouped by user, model and kind, plus
// token totals.
func UsageAnalysis(events []models.UsageEvent, period models.Period) string {
	if len(events) == 0 {
		return join(section("Usage Events"), Err("no usage events for %s", period))
	}

	out := []string{
		section(fmt.Sprintf("Usage Events (%d)", len(events))),
		styles.HelpStyle.Render("Period: " + period.String()),
		"",
		userTable("By User", stats.SummarizeEventsByUser(events), true),
		"",
		groupTable("By Model", "Model", stats.ByModel(events)),
		"",
		groupTable("By Kind", "Kind", stats.ByKind(events)),
	}

	tok := stats.SumTokens(events)
	tt := newTable("Token-based Calls", "Input Tokens", "Output Tokens", "Total Tokens", "Cost").
		Row(
			strconv.Itoa(tok.Calls),
			strconv.FormatInt(tok.InputTokens, 10),
			strconv.FormatInt(tok.OutputTokens, 10),
			strconv.FormatInt(tok.InputTokens+tok.OutputTokens, 10),
			dollarsF(tok.TotalCents),
		)
	out = append(out, "", styles.SubTitleStyle.Render("Tokens"), tt.String())

	return join(out...)
}

func userTable(title string, users []models.AggregatedUserStat, withTokens bool) string {
	headers := []string{"#", "Email", "Activity", "Requests"}
	if withTokens {
		headers = append(headers, "Tokens", "Kinds")
	}
	headers = append(headers, "Models")

	t := newTable(headers...)
	var activity int
	var requests float64
	for i, u := range users {
		row := []string{strconv.Itoa(i + 1), u.Email, strconv.Itoa(u.UsageCount), formatRequests(u.TotalRequests)}
		if withTokens {
			row = append(row, strconv.FormatInt(u.TotalTokens, 10), strings.Join(u.KindsUsed, ", "))
		}
		row = append(row, strings.Join(u.ModelsUsed, ", "))
		t.Row(row...)
		activity += u.UsageCount
		requests += u.TotalRequests
	}

	return join(
		styles.SubTitleStyle.Render(title),
		t.String(),
		totals(
			fmt.Sprintf("Users: %d", len(users)),
			fmt.Sprintf("Activity: %d", activity),
			"Requests: "+formatRequests(requests),
		),
	)
}

// trendTable shows each user's requests per day as a sparkline, in the order
// of users.
func trendTable(users []models.AggregatedUserStat, series map[string][]float64) string {
	t := newTable("Email", "Trend", "Peak/day")
	for _, u := range users {
		s := series[u.Email]
		peak := 0.0
		if len(s) > 0 {
			peak = slices.Max(s)
		}
		t.Row(u.Email, components.RenderSparkline(s, trendWidth), formatRequests(peak))
	}
	return join(styles.SubTitleStyle.Render("Daily Trend"), t.String())
}

func groupTable(title, column string, groups []models.GroupStat) string {
	t := newTable(column, "Events", "Requests", "Tokens")
	values := make([]float64, len(groups))
	labels := make([]string, len(groups))
	for i, g := range groups {
		t.Row(g.Key, strconv.Itoa(g.Count), formatRequests(g.Requests), strconv.FormatInt(g.Tokens, 10))
		values[i] = float64(g.Count)
		labels[i] = g.Key
	}
	return join(
		styles.SubTitleStyle.Render(title),
		t.String(),
		components.RenderBarChart(values, labels, chartWidth),
	)
}

// CallLog renders recent upstream calls and per-endpoint statistics.
func CallLog(calls []models.APICall, endpoints []models.EndpointStats) string {
	out := []string{section("API Call Log")}
	if len(calls) == 0 {
		out = append(out, styles.HelpStyle.Render("No calls recorded yet"))
	} else {
		t := newTable("Time", "Source", "Method", "Endpoint", "Status", "Duration", "Error")
		var failed int
		for _, c := range calls {
			status := strconv.Itoa(c.StatusCode)
			if c.StatusCode == 0 {
				status = "-"
			}
			if c.Failed() {
				failed++
			}
			t.Row(
				c.Timestamp.Local().Format("2006-01-02 15:04:05"),
				c.Source,
				c.Method,
				c.Endpoint,
				status,
				fmt.Sprintf("%dms", c.DurationMs),
				truncate(c.Error, 40),
			)
		}
		out = append(out, t.String(), totals(
			fmt.Sprintf("Calls: %d", len(calls)),
			fmt.Sprintf("Failed: %d", failed),
		))
	}

	if len(endpoints) > 0 {
		t := newTable("Endpoint", "Calls", "Errors", "Avg Latency")
		for _, e := range endpoints {
			t.Row(e.Endpoint, strconv.Itoa(e.TotalCalls), strconv.Itoa(e.ErrorCount), fmt.Sprintf("%.0fms", e.AvgDurationMs))
		}
		out = append(out, "", styles.SubTitleStyle.Render("Last 24h by endpoint"), t.String())
	}

	return join(out...)
}

func formatRequests(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

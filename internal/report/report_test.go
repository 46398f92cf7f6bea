package report

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/j-veylop/team-usage-dashboard/internal/models"
	"github.com/j-veylop/team-usage-dashboard/internal/stats"
)

func sampleMembers() []models.TeamMember {
	return []models.TeamMember{
		{Name: "Ada", Email: "ada@example.com", Role: "owner"},
		{Name: "Lin", Email: "lin@example.com", Role: "member"},
		{Name: "Kai", Email: "kai@example.com", Role: "member"},
		{Name: "Bo Jeong", Email: "bo@example.com", Role: "free-owner"},
		{Name: "Guest", Email: "guest@example.com", Role: "guest"},
	}
}

func TestTeamReport_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", TeamReportFile)
	now := time.Date(2025, 6, 17, 9, 0, 0, 0, time.UTC)

	want := BuildTeamReport(sampleMembers(), now)
	if err := WriteTeamReport(path, want); err != nil {
		t.Fatalf("WriteTeamReport() failed: %v", err)
	}

	got, err := ReadTeamReport(path)
	if err != nil {
		t.Fatalf("ReadTeamReport() failed: %v", err)
	}

	if got.Statistics != stats.ComputeTeamStatistics(got.AllMembers) {
		t.Errorf("reloaded statistics %+v differ from recomputed", got.Statistics)
	}
	if got.Statistics != want.Statistics {
		t.Errorf("Statistics = %+v, want %+v", got.Statistics, want.Statistics)
	}
	if len(got.Owners) != 2 || len(got.Members) != 2 || len(got.AllMembers) != 5 {
		t.Errorf("owners=%d members=%d all=%d", len(got.Owners), len(got.Members), len(got.AllMembers))
	}
	if got.GeneratedAt != "2025-06-17T09:00:00Z" {
		t.Errorf("GeneratedAt = %q", got.GeneratedAt)
	}
}

func TestWriteTeamReport_Format(t *testing.T) {
	path := filepath.Join(t.TempDir(), TeamReportFile)
	members := []models.TeamMember{{Name: "김민수 <dev>", Email: "kim@example.com", Role: "owner"}}

	if err := WriteTeamReport(path, BuildTeamReport(members, time.Now())); err != nil {
		t.Fatalf("WriteTeamReport() failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if !strings.Contains(text, "김민수 <dev>") {
		t.Error("non-ASCII and HTML characters should be written unescaped")
	}
	if !strings.Contains(text, "\n  \"statistics\": {") {
		t.Error("report should be indented with two spaces")
	}
}

func TestBuildTeamReport_Empty(t *testing.T) {
	r := BuildTeamReport(nil, time.Now())
	if r.AllMembers == nil || r.Owners == nil || r.Members == nil {
		t.Error("empty report should hold empty lists, not null")
	}
	if r.Statistics.OwnerRate != 0 || r.Statistics.MemberRate != 0 {
		t.Errorf("Statistics = %+v, want zero rates", r.Statistics)
	}
}

func TestReadTeamReport_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := ReadTeamReport(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadTeamReport(bad); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestConsoleRenderers(t *testing.T) {
	members := sampleMembers()

	tests := []struct {
		name     string
		out      string
		contains []string
	}{
		{
			"Members",
			Members("All Members", members),
			[]string{"All Members (5)", "ada@example.com", "free-owner", "Owners: 2"},
		},
		{
			"NoMembers",
			Members("Owners", nil),
			[]string{MarkerErr},
		},
		{
			"Statistics",
			Statistics(stats.ComputeTeamStatistics(members[:4])),
			[]string{"50.0%", "Total members: 4"},
		},
		{
			"Spend",
			Spend(models.SpendSummary{
				Members: []models.SpendRecord{
					{Name: "Ada", Email: "ada@example.com", SpendCents: 4500, HardLimitOverrideDollars: 50},
					{Name: "Lin", Email: "lin@example.com", SpendCents: 1050},
				},
				TotalMembers: 2,
			}, 80),
			[]string{"$45.00", "$10.50", "Total spend: $55.50", "ada@example.com reached 90%"},
		},
		{
			"CallLog",
			CallLog(
				[]models.APICall{{Timestamp: time.Now(), Source: "client", Method: "GET", Endpoint: "/teams/members", StatusCode: 401}},
				[]models.EndpointStats{{Endpoint: "/teams/members", TotalCalls: 1, ErrorCount: 1, AvgDurationMs: 12}},
			),
			[]string{"/teams/members", "401", "Failed: 1", "12ms"},
		},
		{
			"EmptyCallLog",
			CallLog(nil, nil),
			[]string{"No calls recorded yet"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, want := range tt.contains {
				if !strings.Contains(tt.out, want) {
					t.Errorf("output missing %q:\n%s", want, tt.out)
				}
			}
		})
	}
}

func TestDailyUsage(t *testing.T) {
	day := time.Date(2025, 6, 2, 12, 0, 0, 0, time.Local).UnixMilli()
	r := &models.DailyUsageReport{
		Records: []models.DailyUsageRecord{
			{Date: day, Email: "ada@example.com", IsActive: true, ChatRequests: 3, TotalLinesAdded: 10, MostUsedModel: "gpt-4.1"},
			{Date: day + 86400000, Email: "lin@example.com", AgentRequests: 4},
		},
	}

	out := DailyUsage(r)
	for _, want := range []string{"Daily Usage (2 records)", "2025-06-02", "gpt-4.1", "Requests: 7", "Requests per day", "Daily Trend", "█▁", "▁█"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if out := DailyUsage(nil); !strings.Contains(out, MarkerErr) {
		t.Error("nil report should render a failure marker")
	}
}

func TestUsageAnalysis(t *testing.T) {
	period := models.Period{Start: time.Date(2025, 6, 1, 0, 0, 0, 0, time.Local), End: time.Date(2025, 6, 30, 0, 0, 0, 0, time.Local)}
	events := []models.UsageEvent{
		{UserEmail: "ada@example.com", Model: "gpt-4.1", KindLabel: "Included", RequestsCosts: 1,
			IsTokenBasedCall: true, TokenUsage: models.TokenUsage{InputTokens: 100, OutputTokens: 50, TotalCents: 12}},
		{UserEmail: "lin@example.com", KindLabel: "Usage-based", RequestsCosts: 2},
	}

	out := UsageAnalysis(events, period)
	for _, want := range []string{"Usage Events (2)", "By User", "By Model", "By Kind", "Unknown", "150", "$0.1200"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if out := UsageAnalysis(nil, period); !strings.Contains(out, "2025-06-01 ~ 2025-06-30") {
		t.Errorf("empty analysis should name the period, got %q", out)
	}
}

func TestStatusLines(t *testing.T) {
	if got := OK("saved %s", "x"); !strings.Contains(got, MarkerOK) || !strings.HasSuffix(got, "saved x") {
		t.Errorf("OK() = %q", got)
	}
	if got := Err("failed: %v", errors.New("boom")); !strings.Contains(got, MarkerErr) || !strings.HasSuffix(got, "failed: boom") {
		t.Errorf("Err() = %q", got)
	}
	if Dollars(1234) != "$12.34" {
		t.Errorf("Dollars(1234) = %s", Dollars(1234))
	}
}

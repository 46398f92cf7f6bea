package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/j-veylop/team-usage-dashboard/internal/models"
	"github.com/j-veylop/team-usage-dashboard/internal/stats"
)

// TeamReportFile is the default JSON report file name.
const TeamReportFile = "team_report.json"

// TeamReport is the persisted member report bundle.
type TeamReport struct {
	GeneratedAt string                `json:"generated_at"`
	Statistics  models.TeamStatistics `json:"statistics"`
	AllMembers  []models.TeamMember   `json:"all_members"`
	Owners      []models.TeamMember   `json:"owners"`
	Members     []models.TeamMember   `json:"members"`
}

// BuildTeamReport assembles a report from a member snapshot.
func BuildTeamReport(members []models.TeamMember, now time.Time) TeamReport {
	if members == nil {
		members = []models.TeamMember{}
	}
	return TeamReport{
		GeneratedAt: now.Format(time.RFC3339),
		Statistics:  stats.ComputeTeamStatistics(members),
		AllMembers:  members,
		Owners:      stats.Owners(members),
		Members:     stats.Members(members),
	}
}

// WriteTeamReport writes r to path as two-space indented UTF-8 JSON.
func WriteTeamReport(path string, r TeamReport) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	return f.Close()
}

// ReadTeamReport loads a report written by WriteTeamReport.
func ReadTeamReport(path string) (TeamReport, error) {
	var r TeamReport
	data, err := os.ReadFile(path)
	if err != nil {
		return r, fmt.Errorf("failed to read report: %w", err)
	}
	if err := json.Unmarshal(data, &r); err != nil {
		return r, fmt.Errorf("failed to decode report: %w", err)
	}
	return r, nil
}

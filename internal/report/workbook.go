package report

import (
	"time"

	"github.com/j-veylop/team-usage-dashboard/internal/models"
	"github.com/j-veylop/team-usage-dashboard/internal/spreadsheet"
	"github.com/j-veylop/team-usage-dashboard/internal/stats"
)

// TeamWorkbook lays out members, spend and statistics as workbook sheets.
// Money columns are dollars.
func TeamWorkbook(members []models.TeamMember, spend *models.SpendSummary, now time.Time) spreadsheet.Workbook {
	memberRows := make([][]any, 0, len(members))
	for _, m := range members {
		memberRows = append(memberRows, []any{m.Name, m.Email, m.Role})
	}

	s := stats.ComputeTeamStatistics(members)
	wb := spreadsheet.Workbook{
		Filename: "team_usage_" + now.Format("20060102_150405") + ".xlsx",
		Sheets: []spreadsheet.Sheet{
			{Name: "Members", Headers: []string{"Name", "Email", "Role"}, Rows: memberRows},
			{
				Name:    "Statistics",
				Headers: []string{"Metric", "Value"},
				Rows: [][]any{
					{"Generated At", now.Format(time.RFC3339)},
					{"Total", s.Total},
					{"Owners", s.Owners},
					{"Members", s.Members},
					{"Owner Rate (%)", s.OwnerRate},
					{"Member Rate (%)", s.MemberRate},
				},
			},
		},
	}

	if spend != nil {
		rows := make([][]any, 0, len(spend.Members))
		for _, r := range spend.Members {
			rows = append(rows, []any{
				r.Name, r.Email, r.Role,
				float64(r.SpendCents) / 100,
				r.FastPremiumRequests,
				r.HardLimitOverrideDollars,
			})
		}
		wb.Sheets = append(wb.Sheets, spreadsheet.Sheet{
			Name:    "Spend",
			Headers: []string{"Name", "Email", "Role", "Spend (USD)", "Fast Premium Requests", "Hard Limit (USD)"},
			Rows:    rows,
		})
	}

	return wb
}

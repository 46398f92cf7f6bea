// Package stats holds the pure aggregation functions over fetched records.
package stats

import (
	"github.com/j-veylop/team-usage-dashboard/internal/models"
)

// FilterByRole returns members whose role equals role, ignoring case.
func FilterByRole(members []models.TeamMember, role string) []models.TeamMember {
	return filter(members, func(m models.TeamMember) bool { return m.HasRole(role) })
}

// Owners returns owners and free owners.
func Owners(members []models.TeamMember) []models.TeamMember {
	return filter(members, models.TeamMember.IsOwner)
}

// Members returns members with the plain member role.
func Members(members []models.TeamMember) []models.TeamMember {
	return filter(members, models.TeamMember.IsMember)
}

func filter(members []models.TeamMember, keep func(models.TeamMember) bool) []models.TeamMember {
	out := make([]models.TeamMember, 0, len(members))
	for _, m := range members {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}

// ComputeTeamStatistics counts owners and members. Roles outside both groups
// count toward Total only. Rates are 0 for an empty team.
func ComputeTeamStatistics(members []models.TeamMember) models.TeamStatistics {
	s := models.TeamStatistics{Total: len(members)}
	for _, m := range members {
		switch {
		case m.IsOwner():
			s.Owners++
		case m.IsMember():
			s.Members++
		}
	}
	if s.Total > 0 {
		s.OwnerRate = float64(s.Owners) / float64(s.Total) * 100
		s.MemberRate = float64(s.Members) / float64(s.Total) * 100
	}
	return s
}

// SumSpend totals spend cents and premium requests.
func SumSpend(records []models.SpendRecord) models.SpendTotals {
	t := models.SpendTotals{Members: len(records)}
	for _, r := range records {
		t.Cents += r.SpendCents
		t.FastPremiumRequests += r.FastPremiumRequests
	}
	return t
}

// OverLimit returns records whose spend reached percent of their hard limit.
// Records without a hard limit are never over.
func OverLimit(records []models.SpendRecord, percent float64) []models.SpendRecord {
	var out []models.SpendRecord
	for _, r := range records {
		limit := r.HardLimitCents()
		if limit <= 0 {
			continue
		}
		if float64(r.SpendCents) >= float64(limit)*percent/100 {
			out = append(out, r)
		}
	}
	return out
}

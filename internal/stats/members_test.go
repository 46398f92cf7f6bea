package stats

import (
	"testing"

	"github.com/j-veylop/team-usage-dashboard/internal/models"
)

func sampleMembers() []models.TeamMember {
	return []models.TeamMember{
		{Name: "Ada", Email: "ada@example.com", Role: "owner"},
		{Name: "Lin", Email: "lin@example.com", Role: "member"},
		{Name: "Kai", Email: "kai@example.com", Role: "member"},
		{Name: "Bo", Email: "bo@example.com", Role: "free-owner"},
	}
}

func TestComputeTeamStatistics(t *testing.T) {
	got := ComputeTeamStatistics(sampleMembers())
	want := models.TeamStatistics{Total: 4, Owners: 2, Members: 2, OwnerRate: 50.0, MemberRate: 50.0}
	if got != want {
		t.Errorf("ComputeTeamStatistics() = %+v, want %+v", got, want)
	}
}

func TestComputeTeamStatistics_Empty(t *testing.T) {
	got := ComputeTeamStatistics(nil)
	if got.Total != 0 || got.OwnerRate != 0 || got.MemberRate != 0 {
		t.Errorf("ComputeTeamStatistics(nil) = %+v, want zero", got)
	}
}

func TestComputeTeamStatistics_OtherRolesExcluded(t *testing.T) {
	members := append(sampleMembers(),
		models.TeamMember{Email: "guest@example.com", Role: "guest"},
		models.TeamMember{Email: "blank@example.com"},
	)

	tests := [][]models.TeamMember{nil, sampleMembers(), members, members[4:]}
	for _, list := range tests {
		s := ComputeTeamStatistics(list)
		if s.Owners+s.Members > s.Total {
			t.Errorf("owners+members > total for %+v", s)
		}
	}

	s := ComputeTeamStatistics(members)
	if s.Total != 6 || s.Owners != 2 || s.Members != 2 {
		t.Errorf("stats = %+v, want total 6 owners 2 members 2", s)
	}
}

func TestRoleFilters(t *testing.T) {
	members := append(sampleMembers(), models.TeamMember{Email: "cap@example.com", Role: "OWNER"})

	owners := Owners(members)
	if len(owners) != 3 {
		t.Errorf("Owners() returned %d, want 3", len(owners))
	}

	plain := Members(members)
	if len(plain) != 2 {
		t.Errorf("Members() returned %d, want 2", len(plain))
	}

	byRole := FilterByRole(members, "Owner")
	if len(byRole) != 2 {
		t.Errorf("FilterByRole(Owner) returned %d, want 2 (free-owner excluded)", len(byRole))
	}

	if got := FilterByRole(members, "admin"); len(got) != 0 {
		t.Errorf("FilterByRole(admin) returned %d, want 0", len(got))
	}
}

func TestSumSpend(t *testing.T) {
	records := []models.SpendRecord{
		{SpendCents: 1250, FastPremiumRequests: 10},
		{SpendCents: 50, FastPremiumRequests: 2},
		{},
	}
	got := SumSpend(records)
	if got.Cents != 1300 || got.FastPremiumRequests != 12 || got.Members != 3 {
		t.Errorf("SumSpend() = %+v", got)
	}
}

func TestOverLimit(t *testing.T) {
	records := []models.SpendRecord{
		{Email: "a", SpendCents: 4000, HardLimitOverrideDollars: 50},
		{Email: "b", SpendCents: 3999, HardLimitOverrideDollars: 50},
		{Email: "c", SpendCents: 100000},
	}
	got := OverLimit(records, 80)
	if len(got) != 1 || got[0].Email != "a" {
		t.Errorf("OverLimit() = %+v, want only a", got)
	}
}

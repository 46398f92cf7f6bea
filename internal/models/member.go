// Package models defines data structures and domain types.
package models

import "strings"

// Member roles as returned by the Admin API.
const (
	RoleOwner     = "owner"
	RoleMember    = "member"
	RoleFreeOwner = "free-owner"
)

// TeamMember is one entry of the team members list.
type TeamMember struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// HasRole reports whether the member's role matches role, ignoring case.
func (m TeamMember) HasRole(role string) bool {
	return strings.EqualFold(m.Role, role)
}

// IsOwner reports whether the member counts as an owner. Free owners are
// owners too.
func (m TeamMember) IsOwner() bool {
	return m.HasRole(RoleOwner) || m.HasRole(RoleFreeOwner)
}

// IsMember reports whether the member has the plain member role.
func (m TeamMember) IsMember() bool {
	return m.HasRole(RoleMember)
}

// TeamStatistics summarizes the owner/member split of a team.
// Rates are percentages of Total.
type TeamStatistics struct {
	Total      int     `json:"total"`
	Owners     int     `json:"owners"`
	Members    int     `json:"members"`
	OwnerRate  float64 `json:"owner_rate"`
	MemberRate float64 `json:"member_rate"`
}

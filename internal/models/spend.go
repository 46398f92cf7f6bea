package models

// SpendRecord is the spend of one member within the current billing cycle.
type SpendRecord struct {
	Name                     string `json:"name"`
	Email                    string `json:"email"`
	Role                     string `json:"role"`
	SpendCents               int64  `json:"spendCents"`
	FastPremiumRequests      int64  `json:"fastPremiumRequests"`
	HardLimitOverrideDollars int64  `json:"hardLimitOverrideDollars"`
}

// SpendSummary is the decoded /teams/spend response.
type SpendSummary struct {
	Members                []SpendRecord `json:"teamMemberSpend"`
	SubscriptionCycleStart int64         `json:"subscriptionCycleStart"`
	TotalMembers           int           `json:"totalMembers"`
	TotalPages             int           `json:"totalPages"`
}

// SpendTotals holds summed spend over a set of records.
type SpendTotals struct {
	Cents               int64
	FastPremiumRequests int64
	Members             int
}

// HardLimitCents returns the member's hard limit in cents, or 0 when unset.
func (r SpendRecord) HardLimitCents() int64 {
	return r.HardLimitOverrideDollars * 100
}

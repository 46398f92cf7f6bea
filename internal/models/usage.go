package models

// DailyUsageRecord is the activity of one user on one day.
type DailyUsageRecord struct {
	Date                     int64  `json:"date"`
	Email                    string `json:"email"`
	IsActive                 bool   `json:"isActive"`
	TotalLinesAdded          int64  `json:"totalLinesAdded"`
	TotalLinesDeleted        int64  `json:"totalLinesDeleted"`
	AcceptedLinesAdded       int64  `json:"acceptedLinesAdded"`
	AcceptedLinesDeleted     int64  `json:"acceptedLinesDeleted"`
	TotalApplies             int64  `json:"totalApplies"`
	TotalAccepts             int64  `json:"totalAccepts"`
	TotalRejects             int64  `json:"totalRejects"`
	TotalTabsShown           int64  `json:"totalTabsShown"`
	TotalTabsAccepted        int64  `json:"totalTabsAccepted"`
	ComposerRequests         int64  `json:"composerRequests"`
	ChatRequests             int64  `json:"chatRequests"`
	AgentRequests            int64  `json:"agentRequests"`
	CmdkUsages               int64  `json:"cmdkUsages"`
	SubscriptionIncludedReqs int64  `json:"subscriptionIncludedReqs"`
	APIKeyReqs               int64  `json:"apiKeyReqs"`
	UsageBasedReqs           int64  `json:"usageBasedReqs"`
	BugbotUsages             int64  `json:"bugbotUsages"`
	MostUsedModel            string `json:"mostUsedModel"`
	ClientVersion            string `json:"clientVersion"`
}

// Requests returns the number of requests across all surfaces for the day.
func (r DailyUsageRecord) Requests() int64 {
	return r.ComposerRequests + r.ChatRequests + r.AgentRequests + r.CmdkUsages + r.BugbotUsages
}

// ReportPeriod is the window echoed back by the Admin API, in epoch ms.
type ReportPeriod struct {
	StartDate int64 `json:"startDate"`
	EndDate   int64 `json:"endDate"`
}

// DailyUsageReport is the decoded /teams/daily-usage-data response.
type DailyUsageReport struct {
	Records []DailyUsageRecord `json:"data"`
	Period  ReportPeriod       `json:"period"`
}

// TokenUsage is the token accounting attached to a usage event.
type TokenUsage struct {
	InputTokens      int64   `json:"inputTokens"`
	OutputTokens     int64   `json:"outputTokens"`
	CacheWriteTokens int64   `json:"cacheWriteTokens"`
	CacheReadTokens  int64   `json:"cacheReadTokens"`
	TotalCents       float64 `json:"totalCents"`
}

// Total returns input plus output tokens.
func (t TokenUsage) Total() int64 {
	return t.InputTokens + t.OutputTokens
}

// UsageEvent is one discrete model invocation.
type UsageEvent struct {
	Timestamp        int64      `json:"timestamp"`
	UserEmail        string     `json:"userEmail"`
	Model            string     `json:"model"`
	KindLabel        string     `json:"kindLabel"`
	MaxMode          bool       `json:"maxMode"`
	RequestsCosts    float64    `json:"requestsCosts"`
	IsTokenBasedCall bool       `json:"isTokenBasedCall"`
	TokenUsage       TokenUsage `json:"tokenUsage"`
	IsFreeBugbot     bool       `json:"isFreeBugbot"`
}

// Tokens returns the token count that aggregation should use. Events that
// are not token based contribute nothing.
func (e UsageEvent) Tokens() int64 {
	if !e.IsTokenBasedCall {
		return 0
	}
	return e.TokenUsage.Total()
}

// Pagination is the paging metadata of a usage events response.
type Pagination struct {
	NumPages        int  `json:"numPages"`
	CurrentPage     int  `json:"currentPage"`
	PageSize        int  `json:"pageSize"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

// UsageEventsPage is one page of filtered usage events.
type UsageEventsPage struct {
	Events     []UsageEvent `json:"usageEvents"`
	TotalCount int          `json:"totalUsageEventsCount"`
	Pagination Pagination   `json:"pagination"`
}

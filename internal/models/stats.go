package models

// UnknownLabel replaces empty grouping keys.
const UnknownLabel = "Unknown"

// AggregatedUserStat is the per-user fold of usage events or daily records.
type AggregatedUserStat struct {
	Email         string
	TotalRequests float64
	TotalTokens   int64
	UsageCount    int
	ModelsUsed    []string
	KindsUsed     []string
}

// GroupStat is a fold of usage events keyed by model or kind label.
type GroupStat struct {
	Key      string
	Count    int
	Requests float64
	Tokens   int64
}

// TokenTotals sums token usage over token-based events.
type TokenTotals struct {
	Calls        int
	InputTokens  int64
	OutputTokens int64
	TotalCents   float64
}

// EndpointStats aggregates logged API calls for one endpoint.
type EndpointStats struct {
	Endpoint      string
	TotalCalls    int
	ErrorCount    int
	AvgDurationMs float64
}

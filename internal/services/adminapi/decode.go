package adminapi

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/j-veylop/team-usage-dashboard/internal/models"
)

var errMalformedJSON = errors.New("malformed JSON")

// requireArray validates body and returns the array at path.
func requireArray(body []byte, path string) (gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, errMalformedJSON
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return gjson.Result{}, fmt.Errorf("expected a JSON object, got %s", root.Type)
	}
	arr := root.Get(path)
	if !arr.IsArray() {
		return gjson.Result{}, fmt.Errorf("missing %q array", path)
	}
	return arr, nil
}

func decodeMembers(body []byte) ([]models.TeamMember, error) {
	arr, err := requireArray(body, "teamMembers")
	if err != nil {
		return nil, err
	}

	members := make([]models.TeamMember, 0, len(arr.Array()))
	arr.ForEach(func(_, v gjson.Result) bool {
		members = append(members, models.TeamMember{
			Name:  v.Get("name").String(),
			Email: v.Get("email").String(),
			Role:  v.Get("role").String(),
		})
		return true
	})
	return members, nil
}

func decodeSpend(body []byte) (*models.SpendSummary, error) {
	arr, err := requireArray(body, "teamMemberSpend")
	if err != nil {
		return nil, err
	}

	root := gjson.ParseBytes(body)
	summary := &models.SpendSummary{
		Members:                make([]models.SpendRecord, 0, len(arr.Array())),
		SubscriptionCycleStart: root.Get("subscriptionCycleStart").Int(),
		TotalPages:             int(root.Get("totalPages").Int()),
	}
	arr.ForEach(func(_, v gjson.Result) bool {
		summary.Members = append(summary.Members, models.SpendRecord{
			Name:                     v.Get("name").String(),
			Email:                    v.Get("email").String(),
			Role:                     v.Get("role").String(),
			SpendCents:               v.Get("spendCents").Int(),
			FastPremiumRequests:      v.Get("fastPremiumRequests").Int(),
			HardLimitOverrideDollars: v.Get("hardLimitOverrideDollars").Int(),
		})
		return true
	})

	summary.TotalMembers = len(summary.Members)
	if total := root.Get("totalMembers"); total.Exists() {
		summary.TotalMembers = int(total.Int())
	}
	return summary, nil
}

func decodeDailyUsage(body []byte) (*models.DailyUsageReport, error) {
	arr, err := requireArray(body, "data")
	if err != nil {
		return nil, err
	}

	root := gjson.ParseBytes(body)
	report := &models.DailyUsageReport{
		Records: make([]models.DailyUsageRecord, 0, len(arr.Array())),
		Period: models.ReportPeriod{
			StartDate: root.Get("period.startDate").Int(),
			EndDate:   root.Get("period.endDate").Int(),
		},
	}
	arr.ForEach(func(_, v gjson.Result) bool {
		report.Records = append(report.Records, models.DailyUsageRecord{
			Date:                     v.Get("date").Int(),
			Email:                    v.Get("email").String(),
			IsActive:                 v.Get("isActive").Bool(),
			TotalLinesAdded:          v.Get("totalLinesAdded").Int(),
			TotalLinesDeleted:        v.Get("totalLinesDeleted").Int(),
			AcceptedLinesAdded:       v.Get("acceptedLinesAdded").Int(),
			AcceptedLinesDeleted:     v.Get("acceptedLinesDeleted").Int(),
			TotalApplies:             v.Get("totalApplies").Int(),
			TotalAccepts:             v.Get("totalAccepts").Int(),
			TotalRejects:             v.Get("totalRejects").Int(),
			TotalTabsShown:           v.Get("totalTabsShown").Int(),
			TotalTabsAccepted:        v.Get("totalTabsAccepted").Int(),
			ComposerRequests:         v.Get("composerRequests").Int(),
			ChatRequests:             v.Get("chatRequests").Int(),
			AgentRequests:            v.Get("agentRequests").Int(),
			CmdkUsages:               v.Get("cmdkUsages").Int(),
			SubscriptionIncludedReqs: v.Get("subscriptionIncludedReqs").Int(),
			APIKeyReqs:               v.Get("apiKeyReqs").Int(),
			UsageBasedReqs:           v.Get("usageBasedReqs").Int(),
			BugbotUsages:             v.Get("bugbotUsages").Int(),
			MostUsedModel:            v.Get("mostUsedModel").String(),
			ClientVersion:            v.Get("clientVersion").String(),
		})
		return true
	})
	return report, nil
}

func decodeUsageEvents(body []byte) (*models.UsageEventsPage, error) {
	arr, err := requireArray(body, "usageEvents")
	if err != nil {
		return nil, err
	}

	root := gjson.ParseBytes(body)
	page := &models.UsageEventsPage{
		Events:     make([]models.UsageEvent, 0, len(arr.Array())),
		TotalCount: int(root.Get("totalUsageEventsCount").Int()),
		Pagination: models.Pagination{
			NumPages:        int(root.Get("pagination.numPages").Int()),
			CurrentPage:     int(root.Get("pagination.currentPage").Int()),
			PageSize:        int(root.Get("pagination.pageSize").Int()),
			HasNextPage:     root.Get("pagination.hasNextPage").Bool(),
			HasPreviousPage: root.Get("pagination.hasPreviousPage").Bool(),
		},
	}
	arr.ForEach(func(_, v gjson.Result) bool {
		page.Events = append(page.Events, models.UsageEvent{
			Timestamp:        v.Get("timestamp").Int(),
			UserEmail:        v.Get("userEmail").String(),
			Model:            v.Get("model").String(),
			KindLabel:        v.Get("kindLabel").String(),
			MaxMode:          v.Get("maxMode").Bool(),
			RequestsCosts:    v.Get("requestsCosts").Float(),
			IsTokenBasedCall: v.Get("isTokenBasedCall").Bool(),
			IsFreeBugbot:     v.Get("isFreeBugbot").Bool(),
			TokenUsage: models.TokenUsage{
				InputTokens:      v.Get("tokenUsage.inputTokens").Int(),
				OutputTokens:     v.Get("tokenUsage.outputTokens").Int(),
				CacheWriteTokens: v.Get("tokenUsage.cacheWriteTokens").Int(),
				CacheReadTokens:  v.Get("tokenUsage.cacheReadTokens").Int(),
				TotalCents:       v.Get("tokenUsage.totalCents").Float(),
			},
		})
		return true
	})
	if page.TotalCount == 0 {
		page.TotalCount = len(page.Events)
	}
	return page, nil
}

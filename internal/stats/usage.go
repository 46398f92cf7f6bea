package stats

import (
	"slices"
	"sort"

	"github.com/j-veylop/team-usage-dashboard/internal/models"
)

// orDefault maps an empty grouping key to models.UnknownLabel.
func orDefault(key string) string {
	if key == "" {
		return models.UnknownLabel
	}
	return key
}

// userFold accumulates per-user totals in first-seen order.
type userFold struct {
	index map[string]int
	stats []models.AggregatedUserStat
}

func newUserFold() *userFold {
	return &userFold{index: make(map[string]int)}
}

func (f *userFold) get(email string) *models.AggregatedUserStat {
	email = orDefault(email)
	i, ok := f.index[email]
	if !ok {
		i = len(f.stats)
		f.index[email] = i
		f.stats = append(f.stats, models.AggregatedUserStat{Email: email})
	}
	return &f.stats[i]
}

// sorted returns the stats ordered by descending request count. The sort is
// stable, so ties keep first-seen order.
func (f *userFold) sorted() []models.AggregatedUserStat {
	out := slices.Clone(f.stats)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalRequests > out[j].TotalRequests
	})
	return out
}

func appendUnique(list []string, v string) []string {
	if slices.Contains(list, v) {
		return list
	}
	return append(list, v)
}

// SummarizeEventsByUser folds usage events per user email.
func SummarizeEventsByUser(events []models.UsageEvent) []models.AggregatedUserStat {
	fold := newUserFold()
	for _, e := range events {
		s := fold.get(e.UserEmail)
		s.UsageCount++
		s.TotalRequests += e.RequestsCosts
		s.TotalTokens += e.Tokens()
		s.ModelsUsed = appendUnique(s.ModelsUsed, orDefault(e.Model))
		s.KindsUsed = appendUnique(s.KindsUsed, orDefault(e.KindLabel))
	}
	return fold.sorted()
}

// SummarizeDailyByUser folds daily usage records per user email. Each record
// counts as one activity; requests sum every surface.
func SummarizeDailyByUser(records []models.DailyUsageRecord) []models.AggregatedUserStat {
	fold := newUserFold()
	for _, r := range records {
		s := fold.get(r.Email)
		s.UsageCount++
		s.TotalRequests += float64(r.Requests())
		if r.MostUsedModel != "" {
			s.ModelsUsed = appendUnique(s.ModelsUsed, r.MostUsedModel)
		}
	}
	return fold.sorted()
}

// ByModel folds usage events per model name.
func ByModel(events []models.UsageEvent) []models.GroupStat {
	return groupBy(events, func(e models.UsageEvent) string { return e.Model })
}

// ByKind folds usage events per activity kind label.
func ByKind(events []models.UsageEvent) []models.GroupStat {
	return groupBy(events, func(e models.UsageEvent) string { return e.KindLabel })
}

func groupBy(events []models.UsageEvent, key func(models.UsageEvent) string) []models.GroupStat {
	index := make(map[string]int)
	var groups []models.GroupStat
	for _, e := range events {
		k := orDefault(key(e))
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, models.GroupStat{Key: k})
		}
		groups[i].Count++
		groups[i].Requests += e.RequestsCosts
		groups[i].Tokens += e.Tokens()
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Count > groups[j].Count
	})
	return groups
}

// SumTokens totals token usage. Only token-based events contribute.
func SumTokens(events []models.UsageEvent) models.TokenTotals {
	var t models.TokenTotals
	for _, e := range events {
		if !e.IsTokenBasedCall {
			continue
		}
		t.Calls++
		t.InputTokens += e.TokenUsage.InputTokens
		t.OutputTokens += e.TokenUsage.OutputTokens
		t.TotalCents += e.TokenUsage.TotalCents
	}
	return t
}

// SortEventsByTimestamp returns a copy ordered by ascending timestamp.
func SortEventsByTimestamp(events []models.UsageEvent) []models.UsageEvent {
	out := slices.Clone(events)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})
	return out
}

// FilterEventsByEmail keeps events of one user. The match is exact and case
// sensitive; an empty email keeps every event.
func FilterEventsByEmail(events []models.UsageEvent, email string) []models.UsageEvent {
	if email == "" {
		return slices.Clone(events)
	}
	var out []models.UsageEvent
	for _, e := range events {
		if e.UserEmail == email {
			out = append(out, e)
		}
	}
	return out
}

// DailyRequestSeries returns total requests per local calendar day in date
// order, for charting.
func DailyRequestSeries(records []models.DailyUsageRecord) (days []string, values []float64) {
	totals := make(map[string]float64)
	for _, r := range records {
		day := models.LocalDate(r.Date)
		if _, ok := totals[day]; !ok {
			days = append(days, day)
		}
		totals[day] += float64(r.Requests())
	}
	sort.Strings(days)
	values = make([]float64, len(days))
	for i, d := range days {
		values[i] = totals[d]
	}
	return days, values
}

// UserDailySeries returns each user's requests per day, aligned on the days
// of DailyRequestSeries. Days without a record for a user are 0.
func UserDailySeries(records []models.DailyUsageRecord) map[string][]float64 {
	days, _ := DailyRequestSeries(records)
	pos := make(map[string]int, len(days))
	for i, d := range days {
		pos[d] = i
	}

	series := make(map[string][]float64)
	for _, r := range records {
		email := orDefault(r.Email)
		s, ok := series[email]
		if !ok {
			s = make([]float64, len(days))
			series[email] = s
		}
		s[pos[models.LocalDate(r.Date)]] += float64(r.Requests())
	}
	return series
}

package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/j-veylop/team-usage-dashboard/internal/models"
	"github.com/j-veylop/team-usage-dashboard/internal/stats"
)

// Fixed CSV headers consumed by downstream spreadsheets.
var (
	ActivityHeaders = []string{
		"Date", "Timestamp", "User Email", "Model", "Kind", "Max Mode",
		"Requests", "Input Tokens", "Output Tokens", "Cost (USD)", "Token Based", "Free Bugbot",
	}
	SummaryHeaders = []string{
		"User Email", "Activity Count", "Total Requests", "Total Tokens", "Models Used",
	}
)

// CSVExport describes the files written by WriteUsageCSV.
type CSVExport struct {
	ActivityPath string
	SummaryPath  string
	Rows         int
	Users        int
}

// SummaryPath returns the companion summary file path for an activity CSV.
func SummaryPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + "_summary.csv"
}

// WriteUsageCSV writes usage events ordered by timestamp to path and a
// per-user summary next to it. A non-empty email keeps only that user's
// events.
func WriteUsageCSV(path string, events []models.UsageEvent, email string) (CSVExport, error) {
	rows := stats.SortEventsByTimestamp(stats.FilterEventsByEmail(events, email))
	export := CSVExport{ActivityPath: path, SummaryPath: SummaryPath(path), Rows: len(rows)}

	err := writeCSVFile(path, func(w *csvWriter) {
		w.write(ActivityHeaders)
		for _, e := range rows {
			w.write(activityRow(e))
		}
	})
	if err != nil {
		return export, err
	}

	users := stats.SummarizeEventsByUser(rows)
	export.Users = len(users)
	err = writeCSVFile(export.SummaryPath, func(w *csvWriter) {
		w.write(SummaryHeaders)
		for _, u := range users {
			w.write([]string{
				u.Email,
				strconv.Itoa(u.UsageCount),
				formatRequests(u.TotalRequests),
				strconv.FormatInt(u.TotalTokens, 10),
				strings.Join(u.ModelsUsed, "; "),
			})
		}
	})
	return export, err
}

func activityRow(e models.UsageEvent) []string {
	return []string{
		models.LocalDate(e.Timestamp),
		models.LocalDateTime(e.Timestamp),
		valueOr(e.UserEmail),
		valueOr(e.Model),
		valueOr(e.KindLabel),
		strconv.FormatBool(e.MaxMode),
		formatRequests(e.RequestsCosts),
		strconv.FormatInt(tokensIf(e, e.TokenUsage.InputTokens), 10),
		strconv.FormatInt(tokensIf(e, e.TokenUsage.OutputTokens), 10),
		fmt.Sprintf("%.4f", e.TokenUsage.TotalCents/100),
		strconv.FormatBool(e.IsTokenBasedCall),
		strconv.FormatBool(e.IsFreeBugbot),
	}
}

func tokensIf(e models.UsageEvent, n int64) int64 {
	if !e.IsTokenBasedCall {
		return 0
	}
	return n
}

func valueOr(s string) string {
	if s == "" {
		return models.UnknownLabel
	}
	return s
}

func writeCSVFile(path string, fill func(*csvWriter)) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}
	defer func() { _ = f.Close() }()

	w := &csvWriter{w: bufio.NewWriter(f)}
	fill(w)
	if w.err == nil {
		w.err = w.w.Flush()
	}
	if w.err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), w.err)
	}
	return f.Close()
}

// csvWriter writes records with every field double-quoted, which
// encoding/csv only does for fields that need it.
type csvWriter struct {
	w   *bufio.Writer
	err error
}

func (c *csvWriter) write(record []string) {
	if c.err != nil {
		return
	}
	for i, field := range record {
		if i > 0 {
			c.put(",")
		}
		c.put(`"` + strings.ReplaceAll(field, `"`, `""`) + `"`)
	}
	c.put("\n")
}

func (c *csvWriter) put(s string) {
	if c.err == nil {
		_, c.err = io.WriteString(c.w, s)
	}
}

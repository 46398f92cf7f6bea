package db

const (
	// timestampLayout matches SQLite's datetime() output so window filters
	// compare correctly.
	timestampLayout = "2006-01-02 15:04:05"

	// DefaultRetentionDays is how long call log rows are kept.
	DefaultRetentionDays = 30
)

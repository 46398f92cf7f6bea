package models

import "time"

// Call sources recorded in the call log.
const (
	SourceClient = "client"
	SourceProxy  = "proxy"
)

// APICall represents a logged upstream API call.
type APICall struct {
	Timestamp  time.Time
	Source     string
	Method     string
	Endpoint   string
	Error      string
	RequestID  string
	ID         int64
	StatusCode int
	DurationMs int64
}

// Failed reports whether the call errored or returned a non-2xx status.
func (c APICall) Failed() bool {
	return c.Error != "" || c.StatusCode < 200 || c.StatusCode >= 300
}

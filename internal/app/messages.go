package app

import "time"

// TickMsg is sent periodically to expire notifications.
type TickMsg struct {
	Time time.Time
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Message  string
	Type     NotificationType
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ResultMsg carries the rendered output of a finished action.
type ResultMsg struct {
	Err    error
	Title  string
	Body   string
	Notice string
	Action ActionID
}

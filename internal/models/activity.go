package models

import "time"

// Activity is a recorded account action or system notice.
type Activity struct {
	ID        int64
	UserID    *int64 // Nullable for system-wide entries
	Type      string // e.g. "auth.login", "expense.delete"
	Level     string // "info" or "warn"
	Message   string
	CreatedAt time.Time
}

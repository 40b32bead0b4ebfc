package model

import "time"

// AccessState is the per-author access record.
type AccessState struct {
	UserID int64
	Banned bool
	// LastPublishedAt is zero when the user never published.
	LastPublishedAt time.Time
}

package models

import (
	"time"
)

// ClimbingSession groups one user's ascents sharing a calendar date.
// At most one session exists per (user, date); a session with zero
// ascents must not persist.
type ClimbingSession struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	SessionDate time.Time `json:"session_date"`
	CreatedAt   time.Time `json:"created_at"`

	// AscentsCount is populated on list reads
	AscentsCount int `json:"ascents_count"`

	// Ascents is populated on detail reads
	Ascents []*Ascent `json:"ascents,omitempty"`
}

// SessionFilters defines filters for listing climbing sessions
type SessionFilters struct {
	UserID string
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

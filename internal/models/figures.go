package models

import (
	"time"
)

// Figures is a computed statistics snapshot over a user's ascent
// history. Never persisted, always recomputed (or served from cache).
type Figures struct {
	Countries     int  `json:"countries"`
	Regions       int  `json:"regions"`
	Crags         int  `json:"crags"`
	Ascents       int  `json:"ascents"`
	Meters        int  `json:"meters"`
	MaxGradeValue *int `json:"max_grade_value"`
}

// FigureFilters restricts the ascent set figures are computed from.
// Project ascents are always excluded.
type FigureFilters struct {
	UserID         string
	LeadOnly       bool
	AscentStatuses []AscentStatus
	RopingStatuses []RopingStatus
	ClimbingTypes  []string
}

// FigureRow is one made ascent joined with its route's crag, the unit
// the statistics engine consumes.
type FigureRow struct {
	AscentID      string
	RouteID       string
	MaxGradeValue int
	Height        int
	Sections      []Section
	CreatedAt     time.Time
	CragID        string
	CragName      string
	Region        string
	Country       string
}

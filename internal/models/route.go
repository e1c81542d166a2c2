package models

import (
	"time"
)

// Crag climbing types
const (
	ClimbSportClimbing = "sport_climbing"
	ClimbBouldering    = "bouldering"
	ClimbMultiPitch    = "multi_pitch"
	ClimbTradClimbing  = "trad_climbing"
	ClimbDeepWater     = "deep_water"
	ClimbViaFerrata    = "via_ferrata"
)

// CragClimbingTypes lists the climbing types a crag route can carry
var CragClimbingTypes = []string{
	ClimbSportClimbing,
	ClimbBouldering,
	ClimbMultiPitch,
	ClimbTradClimbing,
	ClimbDeepWater,
	ClimbViaFerrata,
}

// Crag represents a climbing area. Owned by the guidebook subsystem,
// read-only to this service.
type Crag struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	SlugName  string    `json:"slug_name"`
	Region    string    `json:"region"`
	Country   string    `json:"country"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
}

// RouteSection is one independently gradable section (pitch) of a route
type RouteSection struct {
	Height     *int   `json:"height"`
	Grade      string `json:"grade"`
	GradeValue int    `json:"grade_value"`
}

// Route represents a climbing line, possibly divided into sections.
// Owned by the guidebook subsystem, read-only to this service.
type Route struct {
	ID           string         `json:"id"`
	CragID       string         `json:"crag_id"`
	Name         string         `json:"name"`
	SlugName     string         `json:"slug_name"`
	ClimbingType string         `json:"climbing_type"`
	Height       int            `json:"height"`
	Sections     []RouteSection `json:"sections"`
	CreatedAt    time.Time      `json:"created_at"`

	// Crag is populated on detail reads
	Crag *Crag `json:"crag,omitempty"`
}

// RouteFilters defines filters for listing routes
type RouteFilters struct {
	CragID  string
	OrderBy string
	Limit   int
	Offset  int
}

// Tick is a "to try" bookmark for a (user, route) pair. It is removed
// automatically when the user logs a completed ascent of the route.
type Tick struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	RouteID   string    `json:"route_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateTickRequest represents a request to bookmark a route
type CreateTickRequest struct {
	UserID  string `json:"user_id" validate:"required"`
	RouteID string `json:"route_id" validate:"required,uuid4"`
}

package models

import (
	"encoding/json"
	"time"
)

// AscentStatus represents how the climb went
type AscentStatus string

const (
	StatusProject    AscentStatus = "project"
	StatusSent       AscentStatus = "sent"
	StatusRedPoint   AscentStatus = "red_point"
	StatusFlash      AscentStatus = "flash"
	StatusOnsight    AscentStatus = "onsight"
	StatusRepetition AscentStatus = "repetition"
)

// AscentStatuses lists all valid ascent statuses
var AscentStatuses = []AscentStatus{
	StatusProject,
	StatusSent,
	StatusRedPoint,
	StatusFlash,
	StatusOnsight,
	StatusRepetition,
}

// IsMade returns true if the climb was actually completed (not a project)
func (s AscentStatus) IsMade() bool {
	return s != StatusProject
}

// RopingStatus represents how the climber was roped
type RopingStatus string

const (
	RopingLead    RopingStatus = "lead_climb"
	RopingTopRope RopingStatus = "top_rope"
	RopingSecond  RopingStatus = "second"
)

// HardnessStatus is the climber's opinion on the grade accuracy
type HardnessStatus string

const (
	HardnessEasy     HardnessStatus = "easy_for_the_grade"
	HardnessAccurate HardnessStatus = "this_grade_is_accurate"
	HardnessSandbag  HardnessStatus = "sandbagged"
)

// Section is a snapshot of one route section at the time of logging.
// Route data may change later without retroactively altering history.
type Section struct {
	Index      int    `json:"index"`
	Height     *int   `json:"height"`
	Grade      string `json:"grade"`
	GradeValue int    `json:"grade_value"`
}

// Ascent represents one logged climb of a route by a user on a date
type Ascent struct {
	ID                string         `json:"id"`
	UserID            string         `json:"user_id"`
	RouteID           string         `json:"route_id,omitempty"`
	ClimbingSessionID string         `json:"climbing_session_id,omitempty"`
	AscentStatus      AscentStatus   `json:"ascent_status"`
	RopingStatus      RopingStatus   `json:"roping_status"`
	HardnessStatus    HardnessStatus `json:"hardness_status,omitempty"`
	Attempt           int            `json:"attempt"`
	ClimbingType      string         `json:"climbing_type"`
	Height            int            `json:"height"`
	Sections          []Section      `json:"sections"`
	SectionsCount     int            `json:"sections_count"`
	MaxGradeValue     int            `json:"max_grade_value"`
	MaxGradeText      string         `json:"max_grade_text"`
	MinGradeValue     int            `json:"min_grade_value"`
	MinGradeText      string         `json:"min_grade_text"`
	Note              *int           `json:"note,omitempty"`
	Comment           string         `json:"comment,omitempty"`
	PrivateComment    string         `json:"private_comment,omitempty"`
	ReleasedAt        time.Time      `json:"released_at"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// MarshalJSON adds the derived sections_done and hardness_value fields
// to the ascent projection
func (a Ascent) MarshalJSON() ([]byte, error) {
	type alias Ascent
	return json.Marshal(struct {
		alias
		SectionsDone  []int `json:"sections_done"`
		HardnessValue *int  `json:"hardness_value,omitempty"`
	}{
		alias:         alias(a),
		SectionsDone:  a.SectionsDone(),
		HardnessValue: a.HardnessValue(),
	})
}

// SectionsDone returns the route section indices the climber completed
func (a *Ascent) SectionsDone() []int {
	done := make([]int, 0, len(a.Sections))
	for _, s := range a.Sections {
		done = append(done, s.Index)
	}
	return done
}

// HardnessValue maps the hardness opinion onto a comparable -1/0/+1 scale
func (a *Ascent) HardnessValue() *int {
	var v int
	switch a.HardnessStatus {
	case HardnessEasy:
		v = -1
	case HardnessAccurate:
		v = 0
	case HardnessSandbag:
		v = 1
	default:
		return nil
	}
	return &v
}

// SessionDate returns the calendar date the ascent belongs to
func (a *Ascent) SessionDate() time.Time {
	y, m, d := a.ReleasedAt.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CreateAscentRequest represents a request to log an ascent
type CreateAscentRequest struct {
	UserID           string         `json:"user_id" validate:"required"`
	RouteID          string         `json:"route_id" validate:"required,uuid4"`
	AscentStatus     AscentStatus   `json:"ascent_status" validate:"required,oneof=project sent red_point flash onsight repetition"`
	RopingStatus     RopingStatus   `json:"roping_status" validate:"required,oneof=lead_climb top_rope second"`
	HardnessStatus   HardnessStatus `json:"hardness_status" validate:"omitempty,oneof=easy_for_the_grade this_grade_is_accurate sandbagged"`
	Attempt          int            `json:"attempt" validate:"min=0"`
	Note             *int           `json:"note" validate:"omitempty,min=0,max=6"`
	Comment          string         `json:"comment"`
	PrivateComment   string         `json:"private_comment"`
	ReleasedAt       string         `json:"released_at" validate:"required,datetime=2006-01-02"`
	SelectedSections []int          `json:"selected_sections"`
}

// UpdateAscentRequest represents a resubmission of an existing ascent.
// Nil slices/pointers mean "leave unchanged".
type UpdateAscentRequest struct {
	AscentStatus     AscentStatus   `json:"ascent_status" validate:"omitempty,oneof=project sent red_point flash onsight repetition"`
	RopingStatus     RopingStatus   `json:"roping_status" validate:"omitempty,oneof=lead_climb top_rope second"`
	HardnessStatus   HardnessStatus `json:"hardness_status" validate:"omitempty,oneof=easy_for_the_grade this_grade_is_accurate sandbagged"`
	Attempt          *int           `json:"attempt" validate:"omitempty,min=0"`
	Note             *int           `json:"note" validate:"omitempty,min=0,max=6"`
	Comment          *string        `json:"comment"`
	PrivateComment   *string        `json:"private_comment"`
	ReleasedAt       string         `json:"released_at" validate:"omitempty,datetime=2006-01-02"`
	SelectedSections []int          `json:"selected_sections"`
}

// AscentFilters defines filters for listing ascents
type AscentFilters struct {
	UserID         string
	RouteID        string
	AscentStatuses []AscentStatus
	RopingStatuses []RopingStatus
	ClimbingTypes  []string
	Limit          int
	Offset         int
}

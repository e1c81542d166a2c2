package logbook

import (
	"sort"

	"github.com/crag-collective/logbook-engine/internal/grades"
	"github.com/crag-collective/logbook-engine/internal/models"
)

// Resolve snapshots the route-derived fields onto an ascent: the
// selected sections with their height/grade at the time of logging,
// the min/max grade bounds across that snapshot, and the route-level
// height and climbing type. Route data may change later without
// touching the ascent.
func Resolve(a *models.Ascent, route *models.Route, selected []int) {
	a.Height = route.Height
	a.ClimbingType = route.ClimbingType
	a.Sections = snapshotSections(route, selected)
	resolveGradeBounds(a)
}

// snapshotSections copies the selected route sections, indexed by
// position. Indices outside the route's current section list are
// dropped.
func snapshotSections(route *models.Route, selected []int) []models.Section {
	picked := make(map[int]bool, len(selected))
	for _, idx := range selected {
		picked[idx] = true
	}

	sections := make([]models.Section, 0, len(selected))
	for index, section := range route.Sections {
		if !picked[index] {
			continue
		}
		sections = append(sections, models.Section{
			Index:      index,
			Height:     section.Height,
			Grade:      section.Grade,
			GradeValue: section.GradeValue,
		})
	}
	return sections
}

// resolveGradeBounds computes the grade extremes over the snapshotted
// sections. The max search starts at the MIN grade sentinel and the
// min search at the MAX sentinel, so with no sections both sentinels
// remain, signalling "no graded section". The first section reaching
// a new extreme keeps the text label.
func resolveGradeBounds(a *models.Ascent) {
	maxGradeValue := grades.MinGradeValue
	maxGradeText := ""
	minGradeValue := grades.MaxGradeValue
	minGradeText := ""

	for _, section := range a.Sections {
		if section.GradeValue > maxGradeValue {
			maxGradeText = section.Grade
			maxGradeValue = section.GradeValue
		}
		if section.GradeValue < minGradeValue {
			minGradeText = section.Grade
			minGradeValue = section.GradeValue
		}
	}

	a.MaxGradeText = maxGradeText
	a.MaxGradeValue = maxGradeValue
	a.MinGradeText = minGradeText
	a.MinGradeValue = minGradeValue
	a.SectionsCount = len(a.Sections)
}

// normalizeSelected deduplicates and sorts a selected index list
func normalizeSelected(selected []int) []int {
	seen := make(map[int]bool, len(selected))
	out := make([]int, 0, len(selected))
	for _, idx := range selected {
		if idx < 0 || seen[idx] {
			continue
		}
		seen[idx] = true
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

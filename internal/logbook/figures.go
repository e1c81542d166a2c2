package logbook

import (
	"github.com/crag-collective/logbook-engine/internal/models"
)

// ComputeFigures derives the statistics snapshot from a user's made
// ascents joined with their crags. Rows are deduplicated by route id:
// repeated ascents of the same route count once, and the instance kept
// for height/grade is the one with the highest max grade value (ties
// broken by earliest creation), so the figures reflect the best effort
// per route.
func ComputeFigures(rows []models.FigureRow) models.Figures {
	best := make(map[string]models.FigureRow)
	order := make([]string, 0, len(rows))

	for _, row := range rows {
		current, ok := best[row.RouteID]
		if !ok {
			best[row.RouteID] = row
			order = append(order, row.RouteID)
			continue
		}
		if row.MaxGradeValue > current.MaxGradeValue ||
			(row.MaxGradeValue == current.MaxGradeValue && row.CreatedAt.Before(current.CreatedAt)) {
			best[row.RouteID] = row
		}
	}

	figures := models.Figures{}
	countries := make(map[string]bool)
	regions := make(map[string]bool)
	crags := make(map[string]bool)

	for _, routeID := range order {
		row := best[routeID]

		figures.Ascents++
		figures.Meters += metersFor(row)

		if figures.MaxGradeValue == nil || row.MaxGradeValue > *figures.MaxGradeValue {
			v := row.MaxGradeValue
			figures.MaxGradeValue = &v
		}

		if row.CragID != "" {
			crags[row.CragName] = true
			if row.Country != "" {
				countries[row.Country] = true
			}
			if row.Region != "" {
				regions[row.Region] = true
			}
		}
	}

	figures.Countries = len(countries)
	figures.Regions = len(regions)
	figures.Crags = len(crags)

	return figures
}

// metersFor returns the height climbed for one deduplicated ascent:
// the sum of its snapshotted section heights when at least one is
// known, otherwise the ascent's total height, missing heights count 0.
func metersFor(row models.FigureRow) int {
	sum := 0
	known := false
	for _, section := range row.Sections {
		if section.Height != nil {
			sum += *section.Height
			known = true
		}
	}
	if known {
		return sum
	}
	return row.Height
}

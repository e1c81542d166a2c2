package logbook

import (
	"reflect"
	"testing"

	"github.com/crag-collective/logbook-engine/internal/grades"
	"github.com/crag-collective/logbook-engine/internal/models"
)

func intPtr(v int) *int { return &v }

func testRoute() *models.Route {
	return &models.Route{
		ID:           "route-1",
		Name:         "La Demande",
		ClimbingType: models.ClimbMultiPitch,
		Height:       120,
		Sections: []models.RouteSection{
			{Height: intPtr(40), Grade: "5a", GradeValue: 500},
			{Height: intPtr(45), Grade: "5c", GradeValue: 520},
			{Height: intPtr(35), Grade: "5b", GradeValue: 510},
		},
	}
}

func TestResolveSnapshotsRouteFields(t *testing.T) {
	ascent := &models.Ascent{}
	Resolve(ascent, testRoute(), []int{0, 1})

	if ascent.Height != 120 {
		t.Errorf("expected height 120, got %d", ascent.Height)
	}
	if ascent.ClimbingType != models.ClimbMultiPitch {
		t.Errorf("expected climbing type multi_pitch, got %s", ascent.ClimbingType)
	}
	if ascent.SectionsCount != 2 {
		t.Fatalf("expected 2 sections, got %d", ascent.SectionsCount)
	}

	// Grade bounds over the two selected sections
	if ascent.MaxGradeText != "5c" || ascent.MaxGradeValue != 520 {
		t.Errorf("expected max 5c/520, got %s/%d", ascent.MaxGradeText, ascent.MaxGradeValue)
	}
	if ascent.MinGradeText != "5a" || ascent.MinGradeValue != 500 {
		t.Errorf("expected min 5a/500, got %s/%d", ascent.MinGradeText, ascent.MinGradeValue)
	}
}

func TestResolveSingleSection(t *testing.T) {
	ascent := &models.Ascent{}
	Resolve(ascent, testRoute(), []int{1})

	// One section: max == min
	if ascent.MaxGradeValue != ascent.MinGradeValue {
		t.Errorf("single section should have equal bounds, got %d/%d",
			ascent.MaxGradeValue, ascent.MinGradeValue)
	}
	if ascent.MaxGradeText != "5c" {
		t.Errorf("expected 5c, got %s", ascent.MaxGradeText)
	}
}

func TestResolveEmptySelectionKeepsSentinels(t *testing.T) {
	ascent := &models.Ascent{}
	Resolve(ascent, testRoute(), nil)

	if ascent.SectionsCount != 0 {
		t.Fatalf("expected 0 sections, got %d", ascent.SectionsCount)
	}
	if ascent.MaxGradeValue != grades.MinGradeValue {
		t.Errorf("max should stay at sentinel %d, got %d", grades.MinGradeValue, ascent.MaxGradeValue)
	}
	if ascent.MinGradeValue != grades.MaxGradeValue {
		t.Errorf("min should stay at sentinel %d, got %d", grades.MaxGradeValue, ascent.MinGradeValue)
	}
	if ascent.MaxGradeText != "" || ascent.MinGradeText != "" {
		t.Errorf("grade texts should be empty, got %q/%q", ascent.MaxGradeText, ascent.MinGradeText)
	}
}

func TestResolveDropsOutOfRangeIndices(t *testing.T) {
	ascent := &models.Ascent{}
	Resolve(ascent, testRoute(), []int{1, 7})

	if ascent.SectionsCount != 1 {
		t.Fatalf("expected 1 section after dropping index 7, got %d", ascent.SectionsCount)
	}
	if ascent.Sections[0].Index != 1 {
		t.Errorf("expected section index 1, got %d", ascent.Sections[0].Index)
	}
}

func TestResolveInvariantMaxAtLeastMin(t *testing.T) {
	route := testRoute()
	for _, selected := range [][]int{{0}, {1}, {2}, {0, 1}, {0, 2}, {1, 2}, {0, 1, 2}} {
		ascent := &models.Ascent{}
		Resolve(ascent, route, selected)
		if ascent.MaxGradeValue < ascent.MinGradeValue {
			t.Errorf("selection %v: max %d below min %d", selected, ascent.MaxGradeValue, ascent.MinGradeValue)
		}
	}
}

func TestNormalizeSelected(t *testing.T) {
	got := normalizeSelected([]int{2, 0, 2, -1, 1, 0})
	want := []int{0, 1, 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

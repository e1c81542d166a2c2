package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestHardnessValue(t *testing.T) {
	cases := []struct {
		status HardnessStatus
		want   *int
	}{
		{HardnessEasy, intPtr(-1)},
		{HardnessAccurate, intPtr(0)},
		{HardnessSandbag, intPtr(1)},
		{"", nil},
	}

	for _, tc := range cases {
		a := Ascent{HardnessStatus: tc.status}
		got := a.HardnessValue()
		if (got == nil) != (tc.want == nil) {
			t.Errorf("%q: expected %v, got %v", tc.status, tc.want, got)
			continue
		}
		if got != nil && *got != *tc.want {
			t.Errorf("%q: expected %d, got %d", tc.status, *tc.want, *got)
		}
	}
}

func TestSessionDateTruncates(t *testing.T) {
	a := Ascent{ReleasedAt: time.Date(2024, 3, 15, 18, 42, 7, 0, time.UTC)}
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	if got := a.SessionDate(); !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestAscentProjection(t *testing.T) {
	a := Ascent{
		ID:             "a1",
		UserID:         "user-1",
		AscentStatus:   StatusRedPoint,
		HardnessStatus: HardnessSandbag,
		Sections: []Section{
			{Index: 0, Grade: "5a", GradeValue: 500},
			{Index: 2, Grade: "5c", GradeValue: 520},
		},
	}

	data, err := json.Marshal(&a)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	done, ok := out["sections_done"].([]interface{})
	if !ok || len(done) != 2 {
		t.Fatalf("expected sections_done with 2 entries, got %v", out["sections_done"])
	}
	if done[0].(float64) != 0 || done[1].(float64) != 2 {
		t.Errorf("unexpected sections_done: %v", done)
	}

	if out["hardness_value"].(float64) != 1 {
		t.Errorf("expected hardness_value 1, got %v", out["hardness_value"])
	}
}

func TestIsMade(t *testing.T) {
	if StatusProject.IsMade() {
		t.Error("project should not count as made")
	}
	for _, s := range []AscentStatus{StatusSent, StatusRedPoint, StatusFlash, StatusOnsight, StatusRepetition} {
		if !s.IsMade() {
			t.Errorf("%s should count as made", s)
		}
	}
}

func intPtr(v int) *int { return &v }

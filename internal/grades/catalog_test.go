package grades

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCatalogFromDir(t *testing.T) {
	// Use the shipped grading systems
	gradesDir := filepath.Join("..", "..", "grades")

	if _, err := os.Stat(gradesDir); os.IsNotExist(err) {
		t.Skip("grades directory not found, skipping")
	}

	catalog := NewCatalog()
	if err := catalog.LoadFromDir(gradesDir); err != nil {
		t.Fatalf("LoadFromDir failed: %v", err)
	}

	systems := catalog.List()
	if len(systems) < 2 {
		t.Fatalf("expected at least 2 grading systems, got %d", len(systems))
	}

	// French sport scale
	french := catalog.Get("french_sport")
	if french == nil {
		t.Fatal("french_sport system not found")
	}
	if v, ok := french.ValueFor("5a"); !ok || v != 500 {
		t.Errorf("expected 5a=500, got %d (ok=%v)", v, ok)
	}
	if v, ok := french.ValueFor("5c"); !ok || v != 520 {
		t.Errorf("expected 5c=520, got %d (ok=%v)", v, ok)
	}
	if v, ok := french.ValueFor("8a+"); !ok || v != 805 {
		t.Errorf("expected 8a+=805, got %d (ok=%v)", v, ok)
	}
	if !french.Covers("sport_climbing") {
		t.Error("french_sport should cover sport_climbing")
	}

	// Bouldering scale
	font := catalog.Get("font_bouldering")
	if font == nil {
		t.Fatal("font_bouldering system not found")
	}
	if !font.Covers("bouldering") {
		t.Error("font_bouldering should cover bouldering")
	}
	if font.Covers("sport_climbing") {
		t.Error("font_bouldering should not cover sport_climbing")
	}

	// Lookup by climbing type
	if s := catalog.ForClimbingType("bouldering"); s == nil || s.Name != "font_bouldering" {
		t.Errorf("unexpected system for bouldering: %v", s)
	}

	for _, s := range systems {
		t.Logf("%s: %d grades", s.Name, len(s.Grades))
	}
}

func TestLoadFromFileRejectsInvalid(t *testing.T) {
	dir := t.TempDir()

	cases := map[string]string{
		"no_name.yaml": `
description: missing name
grades:
  - text: "5a"
    value: 500
`,
		"out_of_range.yaml": `
name: broken_range
grades:
  - text: "5a"
    value: 1200
`,
		"not_increasing.yaml": `
name: broken_order
grades:
  - text: "5b"
    value: 510
  - text: "5a"
    value: 500
`,
		"empty.yaml": `
name: no_grades
grades: []
`,
	}

	catalog := NewCatalog()
	for file, content := range cases {
		path := filepath.Join(dir, file)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", file, err)
		}
		if err := catalog.LoadFromFile(path); err == nil {
			t.Errorf("%s: expected load to fail", file)
		}
	}
}

func TestTextFor(t *testing.T) {
	system := &System{
		Name: "test",
		Grades: []Grade{
			{Text: "5a", Value: 500},
			{Text: "5b", Value: 510},
			{Text: "5c", Value: 520},
		},
	}

	if got := system.TextFor(515); got != "5b" {
		t.Errorf("expected 5b for 515, got %q", got)
	}
	if got := system.TextFor(520); got != "5c" {
		t.Errorf("expected 5c for 520, got %q", got)
	}
	if got := system.TextFor(400); got != "" {
		t.Errorf("expected empty text below scale, got %q", got)
	}
}

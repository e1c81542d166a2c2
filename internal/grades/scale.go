package grades

// Grade value sentinels. A real graded section always falls strictly
// between the two, so a max/min search seeded with them can tell "no
// graded section" apart from any actual grade.
const (
	MinGradeValue = 0
	MaxGradeValue = 1000
)

// Grade is one step of a grading system: a display text and a
// comparable numeric value
type Grade struct {
	Text  string `yaml:"text" json:"text"`
	Value int    `yaml:"value" json:"value"`
}

// System is a named grading system, ordered from easiest to hardest
type System struct {
	Name          string   `yaml:"name" json:"name"`
	Description   string   `yaml:"description" json:"description"`
	ClimbingTypes []string `yaml:"climbing_types" json:"climbing_types"`
	Grades        []Grade  `yaml:"grades" json:"grades"`
}

// ValueFor returns the numeric value for a grade text, false if the
// text is not part of the system
func (s *System) ValueFor(text string) (int, bool) {
	for _, g := range s.Grades {
		if g.Text == text {
			return g.Value, true
		}
	}
	return 0, false
}

// TextFor returns the display text for the hardest grade whose value
// does not exceed v, empty if v is below the whole scale
func (s *System) TextFor(v int) string {
	text := ""
	for _, g := range s.Grades {
		if g.Value > v {
			break
		}
		text = g.Text
	}
	return text
}

// Covers returns true if the system applies to the given climbing type
func (s *System) Covers(climbingType string) bool {
	for _, t := range s.ClimbingTypes {
		if t == climbingType {
			return true
		}
	}
	return false
}

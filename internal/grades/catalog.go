package grades

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Catalog manages loading and caching of grading systems
type Catalog struct {
	mu      sync.RWMutex
	systems map[string]*System
}

// NewCatalog creates an empty grading system catalog
func NewCatalog() *Catalog {
	return &Catalog{
		systems: make(map[string]*System),
	}
}

// LoadFromDir loads all YAML grading systems from a directory
func (c *Catalog) LoadFromDir(dir string) error {
	slog.Info("loading grading systems from directory", "dir", dir)

	patterns := []string{"*.yaml", "*.yml"}
	var files []string

	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			continue
		}
		files = append(files, matches...)
	}

	loaded := 0
	for _, file := range files {
		if err := c.LoadFromFile(file); err != nil {
			slog.Warn("failed to load grading system", "file", file, "error", err)
			continue
		}
		loaded++
	}

	slog.Info("grading systems loaded", "count", loaded, "total_files", len(files))
	return nil
}

// LoadFromFile loads a single grading system from a YAML file
func (c *Catalog) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var system System
	if err := yaml.Unmarshal(data, &system); err != nil {
		return fmt.Errorf("failed to parse yaml: %w", err)
	}

	if system.Name == "" {
		return fmt.Errorf("grading system in %s has no name", path)
	}

	if err := validateSystem(&system); err != nil {
		return fmt.Errorf("invalid grading system %s: %w", system.Name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.systems[system.Name] = &system

	return nil
}

// Get retrieves a grading system by name
func (c *Catalog) Get(name string) *System {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.systems[name]
}

// List returns all loaded grading systems sorted by name
func (c *Catalog) List() []*System {
	c.mu.RLock()
	defer c.mu.RUnlock()

	systems := make([]*System, 0, len(c.systems))
	for _, s := range c.systems {
		systems = append(systems, s)
	}
	sort.Slice(systems, func(i, j int) bool {
		return systems[i].Name < systems[j].Name
	})
	return systems
}

// ForClimbingType returns the first system covering a climbing type
func (c *Catalog) ForClimbingType(climbingType string) *System {
	for _, s := range c.List() {
		if s.Covers(climbingType) {
			return s
		}
	}
	return nil
}

// validateSystem checks grade values are in range and strictly increasing
func validateSystem(s *System) error {
	if len(s.Grades) == 0 {
		return fmt.Errorf("no grades defined")
	}

	prev := MinGradeValue
	for i, g := range s.Grades {
		if g.Text == "" {
			return fmt.Errorf("grade %d has no text", i)
		}
		if g.Value <= MinGradeValue || g.Value >= MaxGradeValue {
			return fmt.Errorf("grade %s value %d outside (%d, %d)", g.Text, g.Value, MinGradeValue, MaxGradeValue)
		}
		if i > 0 && g.Value <= prev {
			return fmt.Errorf("grade %s value %d not increasing", g.Text, g.Value)
		}
		prev = g.Value
	}

	return nil
}

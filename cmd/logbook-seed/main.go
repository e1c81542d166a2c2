// logbook-seed loads a small development dataset: an API client, a few
// crags, and routes with graded sections taken from the grade catalog.
package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/crag-collective/logbook-engine/internal/config"
	"github.com/crag-collective/logbook-engine/internal/grades"
	"github.com/crag-collective/logbook-engine/internal/models"
)

type seedRoute struct {
	name         string
	climbingType string
	height       int
	gradeTexts   []string
	pitchHeights []int
}

type seedCrag struct {
	name    string
	region  string
	country string
	lat     float64
	lng     float64
	routes  []seedRoute
}

var dataset = []seedCrag{
	{
		name: "Céüse", region: "Hautes-Alpes", country: "France", lat: 44.5, lng: 5.94,
		routes: []seedRoute{
			{name: "Biographie", climbingType: models.ClimbSportClimbing, height: 35, gradeTexts: []string{"9a+"}, pitchHeights: []int{35}},
			{name: "Berlin", climbingType: models.ClimbSportClimbing, height: 30, gradeTexts: []string{"7b"}, pitchHeights: []int{30}},
		},
	},
	{
		name: "Verdon", region: "Alpes-de-Haute-Provence", country: "France", lat: 43.75, lng: 6.37,
		routes: []seedRoute{
			{name: "La Demande", climbingType: models.ClimbMultiPitch, height: 300, gradeTexts: []string{"5a", "5c", "6a", "5b"}, pitchHeights: []int{80, 70, 80, 70}},
			{name: "Pichenibule", climbingType: models.ClimbMultiPitch, height: 250, gradeTexts: []string{"6b", "7a+", "6c"}, pitchHeights: []int{90, 80, 80}},
		},
	},
	{
		name: "Fontainebleau", region: "Île-de-France", country: "France", lat: 48.4, lng: 2.6,
		routes: []seedRoute{
			{name: "Marie Rose", climbingType: models.ClimbBouldering, height: 4, gradeTexts: []string{"6A"}, pitchHeights: []int{4}},
		},
	},
}

func main() {
	apiKey := flag.String("api-key", "sk_dev_local", "API key to create for local development")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	catalog := grades.NewCatalog()
	if err := catalog.LoadFromDir(cfg.Grades.Dir); err != nil {
		slog.Error("failed to load grading systems", "error", err)
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	if err := seedClient(db, *apiKey); err != nil {
		slog.Error("failed to seed api client", "error", err)
		os.Exit(1)
	}

	for _, crag := range dataset {
		if err := seedCragRoutes(db, catalog, crag); err != nil {
			slog.Error("failed to seed crag", "crag", crag.name, "error", err)
			os.Exit(1)
		}
		slog.Info("seeded crag", "crag", crag.name, "routes", len(crag.routes))
	}

	slog.Info("seed complete", "api_key", *apiKey)
}

func seedClient(db *sql.DB, apiKey string) error {
	permissions, _ := json.Marshal([]string{"*"})

	_, err := db.Exec(`
		INSERT INTO api_clients (name, api_key, is_active, permissions)
		VALUES ($1, $2, TRUE, $3)
		ON CONFLICT (api_key) DO NOTHING
	`, "local-dev", apiKey, permissions)
	return err
}

func seedCragRoutes(db *sql.DB, catalog *grades.Catalog, crag seedCrag) error {
	cragID := uuid.New().String()

	_, err := db.Exec(`
		INSERT INTO crags (id, name, slug_name, region, country, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, cragID, crag.name, slugify(crag.name), crag.region, crag.country, crag.lat, crag.lng)
	if err != nil {
		return fmt.Errorf("insert crag: %w", err)
	}

	for _, route := range crag.routes {
		system := catalog.ForClimbingType(route.climbingType)
		if system == nil {
			return fmt.Errorf("no grading system covers %s", route.climbingType)
		}

		sections := make([]models.RouteSection, 0, len(route.gradeTexts))
		for i, text := range route.gradeTexts {
			value, ok := system.ValueFor(text)
			if !ok {
				return fmt.Errorf("grade %s not in system %s", text, system.Name)
			}
			height := route.pitchHeights[i]
			sections = append(sections, models.RouteSection{
				Height:     &height,
				Grade:      text,
				GradeValue: value,
			})
		}

		sectionsJSON, err := json.Marshal(sections)
		if err != nil {
			return fmt.Errorf("marshal sections: %w", err)
		}

		_, err = db.Exec(`
			INSERT INTO routes (id, crag_id, name, slug_name, climbing_type, height, sections)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, uuid.New().String(), cragID, route.name, slugify(route.name), route.climbingType, route.height, sectionsJSON)
		if err != nil {
			return fmt.Errorf("insert route %s: %w", route.name, err)
		}
	}

	return nil
}

func slugify(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", "-"))
}

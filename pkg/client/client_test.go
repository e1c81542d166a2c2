package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateAscent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/ascents" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk_test" {
			t.Errorf("unexpected Authorization header: %q", auth)
		}

		var req CreateAscentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.RouteID != "r1" || req.AscentStatus != "onsight" {
			t.Errorf("unexpected payload: %+v", req)
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"id":             "a1",
				"user_id":        req.UserID,
				"route_id":       req.RouteID,
				"ascent_status":  req.AscentStatus,
				"max_grade_text": "5c",
				"sections_done":  []int{0, 1},
			},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, "sk_test")
	ascent, err := c.CreateAscent(context.Background(), CreateAscentRequest{
		UserID:           "user-1",
		RouteID:          "r1",
		AscentStatus:     "onsight",
		RopingStatus:     "lead_climb",
		ReleasedAt:       "2024-03-15",
		SelectedSections: []int{0, 1},
	})
	if err != nil {
		t.Fatalf("CreateAscent failed: %v", err)
	}

	if ascent.ID != "a1" || ascent.MaxGradeText != "5c" {
		t.Errorf("unexpected ascent: %+v", ascent)
	}
	if len(ascent.SectionsDone) != 2 {
		t.Errorf("expected 2 sections done, got %v", ascent.SectionsDone)
	}
}

func TestValidationErrorSurfacesFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error": map[string]interface{}{
				"code":    "validation_error",
				"message": "validation failed on 1 field(s)",
				"fields":  map[string]string{"released_at": "is required"},
			},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, "sk_test")
	_, err := c.CreateAscent(context.Background(), CreateAscentRequest{})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusUnprocessableEntity || apiErr.Code != "validation_error" {
		t.Errorf("unexpected error: %+v", apiErr)
	}
	if apiErr.Fields["released_at"] != "is required" {
		t.Errorf("expected field detail, got %v", apiErr.Fields)
	}
}

func TestFiguresQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("user_id") != "user-1" || q.Get("lead_only") != "true" {
			t.Errorf("unexpected query: %v", q)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    map[string]interface{}{"ascents": 3, "meters": 120},
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, "sk_test")
	figures, err := c.Figures(context.Background(), "user-1", FiguresOptions{LeadOnly: true})
	if err != nil {
		t.Fatalf("Figures failed: %v", err)
	}
	if figures.Ascents != 3 || figures.Meters != 120 {
		t.Errorf("unexpected figures: %+v", figures)
	}
}

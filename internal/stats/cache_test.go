package stats

import (
	"strings"
	"testing"

	"github.com/crag-collective/logbook-engine/internal/models"
)

func TestKeyStableUnderFilterOrder(t *testing.T) {
	a := Key(models.FigureFilters{
		UserID:         "user-1",
		AscentStatuses: []models.AscentStatus{models.StatusFlash, models.StatusOnsight},
		ClimbingTypes:  []string{"bouldering", "sport_climbing"},
	})
	b := Key(models.FigureFilters{
		UserID:         "user-1",
		AscentStatuses: []models.AscentStatus{models.StatusOnsight, models.StatusFlash},
		ClimbingTypes:  []string{"sport_climbing", "bouldering"},
	})

	if a != b {
		t.Errorf("equivalent filter sets should share a key:\n%s\n%s", a, b)
	}
}

func TestKeyScopedByUser(t *testing.T) {
	key := Key(models.FigureFilters{UserID: "user-1", LeadOnly: true})

	// Invalidation scans by user prefix
	if !strings.HasPrefix(key, "figures:user-1:") {
		t.Errorf("key should carry the user prefix, got %s", key)
	}

	other := Key(models.FigureFilters{UserID: "user-2", LeadOnly: true})
	if key == other {
		t.Error("different users should never share a key")
	}
}

func TestKeyEscapesGlobCharacters(t *testing.T) {
	hostile := Key(models.FigureFilters{UserID: "user-*"})

	// A wildcard in the ID must not survive into the key, or this
	// user's invalidation scan would sweep every user-* prefix
	if strings.Contains(strings.TrimPrefix(hostile, "figures:"), "*") {
		t.Errorf("glob characters leaked into key: %s", hostile)
	}

	for _, id := range []string{"user-?", "user-[1]", "user-a:b", `user-\1`} {
		key := Key(models.FigureFilters{UserID: id})
		payload := strings.TrimSuffix(strings.TrimPrefix(key, "figures:"), ":*")
		for _, meta := range []string{"*", "?", "[", "]", "\\"} {
			if strings.Contains(strings.SplitN(payload, ":", 2)[0], meta) {
				t.Errorf("id %q: metacharacter %q leaked into key %s", id, meta, key)
			}
		}
	}

	// Distinct hostile IDs stay distinct after escaping
	a := Key(models.FigureFilters{UserID: "user-*"})
	b := Key(models.FigureFilters{UserID: "user-%2a"})
	if a == b {
		t.Error("escaping must not collide distinct user IDs")
	}
}

func TestKeyDistinguishesFilters(t *testing.T) {
	base := models.FigureFilters{UserID: "user-1"}
	lead := models.FigureFilters{UserID: "user-1", LeadOnly: true}

	if Key(base) == Key(lead) {
		t.Error("lead_only filter should change the key")
	}
}

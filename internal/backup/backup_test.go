package backup

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/daylex/internal/clock"
	"github.com/example/daylex/internal/domain"
	"github.com/example/daylex/internal/progress"
	"github.com/example/daylex/internal/srs"
	"github.com/example/daylex/internal/store"
)

func newPopulatedStore(t *testing.T) *store.Store {
	t.Helper()
	t0, _ := clock.ParseDay("2025-03-09")
	c := clock.NewFixed(t0.Add(10 * time.Hour))
	s := store.New(nil)

	tracker := progress.New(s, c)
	tracker.AddXP(25, domain.CategoryReading)
	tracker.IncreaseGoal()

	sched := srs.New(s, c)
	sched.Add("avoir lieu", "to take place")
	return s
}

func TestExportImportRoundTrip(t *testing.T) {
	s := newPopulatedStore(t)

	data, err := Export(s)
	if err != nil {
		t.Fatalf("Export returned error: %v", err)
	}

	// Restore into a completely fresh store.
	fresh := store.New(nil)
	if err := Import(fresh, data); err != nil {
		t.Fatalf("Import returned error: %v", err)
	}

	for _, key := range store.EngineKeys() {
		want, had := s.Snapshot()[key]
		got, have := fresh.Snapshot()[key]
		if had != have {
			t.Errorf("Key %s: presence mismatch after round trip", key)
			continue
		}
		if !had {
			continue
		}
		// Compare as parsed JSON; the import re-marshals, so formatting
		// may differ while the content must not.
		var a, b any
		if err := json.Unmarshal(want, &a); err != nil {
			t.Fatalf("bad original JSON for %s: %v", key, err)
		}
		if err := json.Unmarshal(got, &b); err != nil {
			t.Fatalf("bad restored JSON for %s: %v", key, err)
		}
		aj, _ := json.Marshal(a)
		bj, _ := json.Marshal(b)
		if string(aj) != string(bj) {
			t.Errorf("Key %s: round trip changed value\n  want %s\n  got  %s", key, aj, bj)
		}
	}
}

func TestImportReplacesState(t *testing.T) {
	s := newPopulatedStore(t)
	data, _ := Export(s)

	t0, _ := clock.ParseDay("2025-06-01")
	c := clock.NewFixed(t0)
	other := store.New(nil)
	otherTracker := progress.New(other, c)
	otherTracker.AddXP(99, "")
	otherSched := srs.New(other, c)

	if err := Import(other, data); err != nil {
		t.Fatalf("Import returned error: %v", err)
	}

	restored := progress.New(other, c)
	if got := restored.XP("2025-03-09"); got != 25 {
		t.Errorf("Expected restored XP 25 for 2025-03-09, got %d", got)
	}
	if got := restored.XP("2025-06-01"); got != 0 {
		t.Errorf("Expected local XP to be replaced, got %d", got)
	}
	if got := restored.Goal(); got != progress.DefaultGoal+progress.GoalStep {
		t.Errorf("Expected restored goal %d, got %d", progress.DefaultGoal+progress.GoalStep, got)
	}

	otherSched.Reload()
	if otherSched.Len() != 4 {
		t.Errorf("Expected 3 starters + 1 added card after restore, got %d", otherSched.Len())
	}
}

func TestImportRejectsInvalidDocuments(t *testing.T) {
	testCases := []struct {
		name string
		data string
	}{
		{"not JSON at all", `{broken`},
		{"wrong shape", `{"dl_xp_by_day": "not a map"}`},
		{"bad day key", `{"dl_xp_by_day": {"yesterday": 10}}`},
		{"negative day XP", `{"dl_xp_by_day": {"2025-03-09": -5}}`},
		{"zero goal", `{"dl_goal_daily_xp": 0}`},
		{"card without back", `{"dl_vocab_list": [{"id":"x","front":"a","back":"","ease":2.5,"interval":0,"reps":0,"due":"2025-03-09"}]}`},
		{"card ease out of bounds", `{"dl_vocab_list": [{"id":"x","front":"a","back":"b","ease":5.0,"interval":0,"reps":0,"due":"2025-03-09"}]}`},
		{"card with malformed due date", `{"dl_vocab_list": [{"id":"x","front":"a","back":"b","ease":2.5,"interval":0,"reps":0,"due":"someday"}]}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := newPopulatedStore(t)
			before, _ := Export(s)

			if err := Import(s, []byte(tc.data)); err == nil {
				t.Fatal("Expected import to be rejected")
			}

			after, _ := Export(s)
			if string(before) != string(after) {
				t.Error("Expected a rejected import to leave state untouched")
			}
		})
	}
}

func TestImportIgnoresUnknownKeys(t *testing.T) {
	s := store.New(nil)
	data := `{"dl_goal_daily_xp": 40, "some_future_key": {"a": 1}}`

	if err := Import(s, []byte(data)); err != nil {
		t.Fatalf("Import returned error: %v", err)
	}

	var goal int
	if !s.Get(store.KeyGoal, &goal) || goal != 40 {
		t.Errorf("Expected goal 40 restored, got %d", goal)
	}
	if s.Has("some_future_key") {
		t.Error("Expected unknown keys to be ignored, not stored")
	}
}

func TestImportAssignsMissingCardIDs(t *testing.T) {
	s := store.New(nil)
	data := `{"dl_vocab_list": [{"front":"a","back":"b","ease":2.5,"interval":0,"reps":0,"due":"2025-03-09"}]}`

	if err := Import(s, []byte(data)); err != nil {
		t.Fatalf("Import returned error: %v", err)
	}

	var cards []domain.Card
	if !s.Get(store.KeyVocab, &cards) || len(cards) != 1 {
		t.Fatalf("Expected 1 restored card, got %d", len(cards))
	}
	if cards[0].ID == "" {
		t.Error("Expected an ID to be assigned to the imported card")
	}
}

func TestSnapshot(t *testing.T) {
	repoPath := filepath.Join(t.TempDir(), "backups")

	hash1, err := Snapshot(repoPath, []byte(`{"dl_goal_daily_xp": 30}`))
	if err != nil {
		t.Fatalf("first Snapshot returned error: %v", err)
	}
	if hash1 == "" {
		t.Fatal("Expected a commit hash for the first snapshot")
	}

	t.Run("changed data commits again", func(t *testing.T) {
		hash2, err := Snapshot(repoPath, []byte(`{"dl_goal_daily_xp": 35}`))
		if err != nil {
			t.Fatalf("second Snapshot returned error: %v", err)
		}
		if hash2 == "" || hash2 == hash1 {
			t.Errorf("Expected a new commit hash, got %q", hash2)
		}
	})

	t.Run("identical data makes no commit", func(t *testing.T) {
		hash3, err := Snapshot(repoPath, []byte(`{"dl_goal_daily_xp": 35}`))
		if err != nil {
			t.Fatalf("third Snapshot returned error: %v", err)
		}
		if hash3 != "" {
			t.Errorf("Expected no commit for unchanged data, got %q", hash3)
		}
	})
}

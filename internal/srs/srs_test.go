package srs

import (
	"math"
	"testing"
	"time"

	"github.com/example/daylex/internal/clock"
	"github.com/example/daylex/internal/domain"
	"github.com/example/daylex/internal/store"
)

func newTestScheduler(day string) (*Scheduler, *clock.Fixed, *store.Store) {
	t0, _ := clock.ParseDay(day)
	c := clock.NewFixed(t0.Add(9 * time.Hour))
	s := store.New(nil)
	sched := New(s, c)
	sched.ClearAll() // start from an empty deck, not the starters
	return sched, c, s
}

func TestNewPrimesStarterDeck(t *testing.T) {
	t0, _ := clock.ParseDay("2025-03-09")
	c := clock.NewFixed(t0)
	s := store.New(nil)

	sched := New(s, c)
	if sched.Len() != 3 {
		t.Fatalf("Expected 3 starter cards on a fresh store, got %d", sched.Len())
	}
	if got := sched.DueCount("2025-03-09"); got != 3 {
		t.Errorf("Expected all starters due immediately, got %d", got)
	}

	// An explicitly cleared deck must stay empty on reload.
	sched.ClearAll()
	again := New(s, c)
	if again.Len() != 0 {
		t.Errorf("Expected cleared deck to stay empty, got %d cards", again.Len())
	}
}

func TestAdd(t *testing.T) {
	sched, _, _ := newTestScheduler("2025-03-09")

	t.Run("creates a card with defaults", func(t *testing.T) {
		card, err := sched.Add("  envisager ", "to consider")
		if err != nil {
			t.Fatalf("Add returned error: %v", err)
		}
		if card.Front != "envisager" || card.Back != "to consider" {
			t.Errorf("Expected trimmed front/back, got %q/%q", card.Front, card.Back)
		}
		if card.Ease != domain.InitialEase || card.Interval != 0 || card.Reps != 0 {
			t.Errorf("Expected default scheduling state, got %+v", card)
		}
		if card.Due != "2025-03-09" {
			t.Errorf("Expected card due today, got %s", card.Due)
		}
		if card.ID == "" {
			t.Error("Expected a generated card ID")
		}
	})

	t.Run("rejects blank sides", func(t *testing.T) {
		if _, err := sched.Add("   ", "back"); err != ErrBlankCard {
			t.Errorf("Expected ErrBlankCard for blank front, got %v", err)
		}
		if _, err := sched.Add("front", ""); err != ErrBlankCard {
			t.Errorf("Expected ErrBlankCard for blank back, got %v", err)
		}
	})
}

func TestRateFailureResets(t *testing.T) {
	testCases := []struct {
		name  string
		grade domain.Grade
	}{
		{"again", domain.GradeAgain},
		{"hard", domain.GradeHard},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sched, _, _ := newTestScheduler("2025-03-09")
			card, _ := sched.Add("front", "back")

			// Build up some history first.
			sched.Rate(card.ID, domain.GradeGood)
			sched.Rate(card.ID, domain.GradeGood)

			got, err := sched.Rate(card.ID, tc.grade)
			if err != nil {
				t.Fatalf("Rate returned error: %v", err)
			}
			if got.Reps != 0 {
				t.Errorf("Expected reps reset to 0, got %d", got.Reps)
			}
			if got.Interval != 1 {
				t.Errorf("Expected interval reset to 1, got %d", got.Interval)
			}
			if math.Abs(got.Ease-2.3) > 1e-9 {
				t.Errorf("Expected ease 2.3 after one failure, got %.2f", got.Ease)
			}
			if got.Due != "2025-03-10" {
				t.Errorf("Expected due tomorrow, got %s", got.Due)
			}
		})
	}
}

func TestRateSuccessIntervals(t *testing.T) {
	// With all-good ratings, ease stays at 2.5 and the interval sequence
	// is deterministic: 1, 3, round(3*2.5)=8, round(8*2.5)=20, ...
	sched, c, _ := newTestScheduler("2025-03-09")
	card, _ := sched.Add("front", "back")

	expected := []int{1, 3, 8, 20, 50}
	for i, want := range expected {
		got, err := sched.Rate(card.ID, domain.GradeGood)
		if err != nil {
			t.Fatalf("Rate %d returned error: %v", i+1, err)
		}
		if got.Interval != want {
			t.Errorf("Review %d: expected interval %d, got %d", i+1, want, got.Interval)
		}
		if got.Reps != i+1 {
			t.Errorf("Review %d: expected reps %d, got %d", i+1, i+1, got.Reps)
		}
		if got.Ease != domain.InitialEase {
			t.Errorf("Review %d: expected good to leave ease at %.2f, got %.2f", i+1, domain.InitialEase, got.Ease)
		}
		// Jump to the day the card comes due again.
		c.AdvanceDays(want)
	}
}

func TestRateEasyRaisesEase(t *testing.T) {
	sched, _, _ := newTestScheduler("2025-03-09")
	card, _ := sched.Add("front", "back")

	got, _ := sched.Rate(card.ID, domain.GradeEasy)
	if got.Reps != 1 || got.Interval != 1 {
		t.Errorf("Expected reps=1 interval=1 after first easy, got reps=%d interval=%d", got.Reps, got.Interval)
	}
	if math.Abs(got.Ease-2.65) > 1e-9 {
		t.Errorf("Expected ease 2.65 after one easy, got %.4f", got.Ease)
	}
	if got.Due != "2025-03-10" {
		t.Errorf("Expected due tomorrow, got %s", got.Due)
	}
}

func TestEaseBounds(t *testing.T) {
	t.Run("floor under repeated failure", func(t *testing.T) {
		sched, _, _ := newTestScheduler("2025-03-09")
		card, _ := sched.Add("front", "back")
		var got domain.Card
		for i := 0; i < 20; i++ {
			got, _ = sched.Rate(card.ID, domain.GradeAgain)
			if got.Ease < domain.MinEase {
				t.Fatalf("Ease fell below floor: %.4f", got.Ease)
			}
		}
		if got.Ease != domain.MinEase {
			t.Errorf("Expected ease to settle at %.1f, got %.4f", domain.MinEase, got.Ease)
		}
	})

	t.Run("ceiling under repeated easy", func(t *testing.T) {
		sched, _, _ := newTestScheduler("2025-03-09")
		card, _ := sched.Add("front", "back")
		var got domain.Card
		for i := 0; i < 20; i++ {
			got, _ = sched.Rate(card.ID, domain.GradeEasy)
			if got.Ease > domain.MaxEase {
				t.Fatalf("Ease rose above ceiling: %.4f", got.Ease)
			}
		}
		if got.Ease != domain.MaxEase {
			t.Errorf("Expected ease to settle at %.1f, got %.4f", domain.MaxEase, got.Ease)
		}
	})
}

func TestRateErrors(t *testing.T) {
	sched, _, _ := newTestScheduler("2025-03-09")
	card, _ := sched.Add("front", "back")

	if _, err := sched.Rate("no-such-id", domain.GradeGood); err != ErrCardNotFound {
		t.Errorf("Expected ErrCardNotFound, got %v", err)
	}
	if _, err := sched.Rate(card.ID, domain.Grade(1)); err != ErrBadGrade {
		t.Errorf("Expected ErrBadGrade for grade 1, got %v", err)
	}
	if _, err := sched.Rate(card.ID, domain.Grade(5)); err != ErrBadGrade {
		t.Errorf("Expected ErrBadGrade for grade 5, got %v", err)
	}
}

func TestDue(t *testing.T) {
	sched, c, _ := newTestScheduler("2025-03-09")
	a, _ := sched.Add("a", "1")
	b, _ := sched.Add("b", "2")

	t.Run("new cards are due immediately in insertion order", func(t *testing.T) {
		due := sched.Due("2025-03-09")
		if len(due) != 2 || due[0].ID != a.ID || due[1].ID != b.ID {
			t.Errorf("Expected [a b] due, got %v", due)
		}
	})

	t.Run("rated card leaves today's queue and returns later", func(t *testing.T) {
		sched.Rate(a.ID, domain.GradeEasy)

		due := sched.Due("2025-03-09")
		if len(due) != 1 || due[0].ID != b.ID {
			t.Errorf("Expected only b due today, got %v", due)
		}
		due = sched.Due("2025-03-10")
		if len(due) != 2 {
			t.Errorf("Expected both cards due tomorrow, got %d", len(due))
		}
	})

	t.Run("overdue cards stay due", func(t *testing.T) {
		c.AdvanceDays(10)
		if got := sched.DueCount(sched.Today()); got != 2 {
			t.Errorf("Expected 2 overdue cards, got %d", got)
		}
	})
}

func TestRemove(t *testing.T) {
	sched, _, _ := newTestScheduler("2025-03-09")
	card, _ := sched.Add("front", "back")

	if !sched.Remove(card.ID) {
		t.Error("Expected Remove to report the card existed")
	}
	if sched.Remove(card.ID) {
		t.Error("Expected second Remove to report the card missing")
	}
	if sched.Len() != 0 {
		t.Errorf("Expected empty collection, got %d cards", sched.Len())
	}
}

func TestMerge(t *testing.T) {
	sched, _, _ := newTestScheduler("2025-03-09")
	sched.Add("envisager", "to consider")

	added, skipped := sched.Merge([]NewCard{
		{Front: "Envisager", Back: "To Consider"}, // duplicate after normalization
		{Front: "avoir lieu", Back: "to take place"},
		{Front: "avoir lieu", Back: "to take place"}, // duplicate within the batch
		{Front: "", Back: "blank"},
	})

	if added != 1 {
		t.Errorf("Expected 1 card added, got %d", added)
	}
	if skipped != 3 {
		t.Errorf("Expected 3 cards skipped, got %d", skipped)
	}
	if sched.Len() != 2 {
		t.Errorf("Expected collection of 2, got %d", sched.Len())
	}
}

func TestPersistence(t *testing.T) {
	// Every mutation writes the collection back, so a second scheduler
	// over the same store sees the same cards.
	t0, _ := clock.ParseDay("2025-03-09")
	c := clock.NewFixed(t0)
	s := store.New(nil)

	sched := New(s, c)
	sched.ClearAll()
	card, _ := sched.Add("front", "back")
	sched.Rate(card.ID, domain.GradeGood)

	reloaded := New(s, c)
	got, ok := reloaded.Get(card.ID)
	if !ok {
		t.Fatal("Expected rated card to survive a reload")
	}
	if got.Reps != 1 || got.Interval != 1 || got.Due != "2025-03-10" {
		t.Errorf("Expected persisted scheduling state, got %+v", got)
	}
}

// Package srs owns the vocabulary collection and its spaced-repetition
// scheduling. The algorithm is a deliberately small SM-2 variant: no
// lapse counter beyond the reps reset, no interval fuzzing, fixed early
// intervals. Predictable scheduling beats fidelity to full SM-2 here.
package srs

import (
	"errors"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/example/daylex/internal/clock"
	"github.com/example/daylex/internal/domain"
	"github.com/example/daylex/internal/fingerprint"
	"github.com/example/daylex/internal/store"
)

var (
	// ErrBlankCard is returned when a card is added with an empty front
	// or back after trimming.
	ErrBlankCard = errors.New("card front and back are required")

	// ErrCardNotFound is returned when an operation names an unknown card.
	ErrCardNotFound = errors.New("card not found")

	// ErrBadGrade is returned for a rating outside {0, 2, 3, 4}.
	ErrBadGrade = errors.New("grade must be 0 (again), 2 (hard), 3 (good) or 4 (easy)")
)

// NewCard is the input for a bulk merge: a front/back pair that has not
// been scheduled yet.
type NewCard struct {
	Front string
	Back  string
}

// Scheduler owns the card collection. Mutations write the full
// collection back through the store before returning, so there is never
// a half-persisted state.
type Scheduler struct {
	store *store.Store
	clock clock.Clock
	cards []domain.Card
}

// New loads the collection from the store. A store that has never held a
// vocabulary key is primed with the starter deck; an explicitly emptied
// collection stays empty.
func New(s *store.Store, c clock.Clock) *Scheduler {
	sched := &Scheduler{store: s, clock: c}
	if s.Has(store.KeyVocab) {
		s.Get(store.KeyVocab, &sched.cards)
	} else {
		sched.cards = starterDeck(clock.Day(c.Now()))
		sched.persist()
	}
	return sched
}

// starterDeck is the first-run vocabulary, due immediately.
func starterDeck(today string) []domain.Card {
	starters := []NewCard{
		{Front: "envisager", Back: "to consider"},
		{Front: "mettre en place", Back: "to set up"},
		{Front: "piste cyclable", Back: "bike lane"},
	}
	cards := make([]domain.Card, 0, len(starters))
	for _, nc := range starters {
		cards = append(cards, newCard(nc.Front, nc.Back, today))
	}
	return cards
}

func newCard(front, back, today string) domain.Card {
	return domain.Card{
		ID:       uuid.NewString(),
		Front:    front,
		Back:     back,
		Ease:     domain.InitialEase,
		Interval: 0,
		Reps:     0,
		Due:      today,
	}
}

func (s *Scheduler) persist() {
	s.store.Set(store.KeyVocab, s.cards)
}

// Today returns the current day key.
func (s *Scheduler) Today() string {
	return clock.Day(s.clock.Now())
}

// Add creates a card due today. Both sides must be non-empty after
// trimming.
func (s *Scheduler) Add(front, back string) (domain.Card, error) {
	front = strings.TrimSpace(front)
	back = strings.TrimSpace(back)
	if front == "" || back == "" {
		return domain.Card{}, ErrBlankCard
	}

	card := newCard(front, back, s.Today())
	s.cards = append(s.cards, card)
	s.persist()
	return card, nil
}

// Merge adds the given cards, skipping any whose normalized front/back
// fingerprint already exists in the collection or earlier in the batch.
// Blank entries are skipped and counted with the duplicates. It returns
// how many cards were added and how many skipped.
func (s *Scheduler) Merge(items []NewCard) (added, skipped int) {
	seen := make(map[string]bool, len(s.cards))
	for _, c := range s.cards {
		seen[fingerprint.Hash(c.Front, c.Back)] = true
	}

	today := s.Today()
	for _, item := range items {
		front := strings.TrimSpace(item.Front)
		back := strings.TrimSpace(item.Back)
		if front == "" || back == "" {
			skipped++
			continue
		}
		fp := fingerprint.Hash(front, back)
		if seen[fp] {
			skipped++
			continue
		}
		seen[fp] = true
		s.cards = append(s.cards, newCard(front, back, today))
		added++
	}
	if added > 0 {
		s.persist()
	}
	return added, skipped
}

// Remove deletes a card by ID, reporting whether it existed.
func (s *Scheduler) Remove(id string) bool {
	for i, c := range s.cards {
		if c.ID == id {
			s.cards = append(s.cards[:i], s.cards[i+1:]...)
			s.persist()
			return true
		}
	}
	return false
}

// Get returns a card by ID.
func (s *Scheduler) Get(id string) (domain.Card, bool) {
	for _, c := range s.cards {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Card{}, false
}

// All returns a copy of the collection in insertion order.
func (s *Scheduler) All() []domain.Card {
	return append([]domain.Card(nil), s.cards...)
}

// Len returns the collection size.
func (s *Scheduler) Len() int { return len(s.cards) }

// Due returns the cards eligible for review on the given day, in
// insertion order. Insertion order is an implementation choice, not a
// contract; nothing downstream may depend on anything stronger than a
// stable order.
func (s *Scheduler) Due(day string) []domain.Card {
	var due []domain.Card
	for _, c := range s.cards {
		if c.Due <= day {
			due = append(due, c)
		}
	}
	return due
}

// DueCount returns how many cards are due on the given day.
func (s *Scheduler) DueCount(day string) int {
	return len(s.Due(day))
}

// Rate applies a review grade to a card and persists the whole
// collection before returning the updated card.
//
// Failure (grade < good): reps reset to 0, interval to 1 day, ease drops
// by 0.2 down to the 1.3 floor. Success: reps increments; the interval
// is 1 day for the first success, 3 for the second, then grows by the
// ease factor; ease rises by 0.15 (capped at 3.0) only for an easy
// grade. The due date is always today plus the new interval.
func (s *Scheduler) Rate(id string, grade domain.Grade) (domain.Card, error) {
	if !grade.Valid() {
		return domain.Card{}, ErrBadGrade
	}

	for i := range s.cards {
		if s.cards[i].ID != id {
			continue
		}
		c := &s.cards[i]

		if !grade.Success() {
			c.Reps = 0
			c.Interval = 1
			c.Ease = math.Max(domain.MinEase, c.Ease-0.2)
		} else {
			c.Reps++
			switch c.Reps {
			case 1:
				c.Interval = 1
			case 2:
				c.Interval = 3
			default:
				c.Interval = int(math.Round(float64(c.Interval) * c.Ease))
			}
			if grade == domain.GradeEasy {
				c.Ease = math.Min(domain.MaxEase, c.Ease+0.15)
			}
		}

		c.Due = clock.AddDays(s.Today(), c.Interval)
		s.persist()
		return *c, nil
	}
	return domain.Card{}, ErrCardNotFound
}

// ClearAll empties the collection. The key stays present as an empty
// list, so a cleared deck is not re-primed with starters on reload.
func (s *Scheduler) ClearAll() {
	s.cards = []domain.Card{}
	s.persist()
}

// Reload re-reads the collection from the store. Called after an import
// has replaced the vocabulary key underneath the scheduler.
func (s *Scheduler) Reload() {
	s.cards = nil
	s.store.Get(store.KeyVocab, &s.cards)
}

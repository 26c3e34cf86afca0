// Package session drives one bounded pass through the currently due
// cards: reveal-then-rate per card until the queue is exhausted.
package session

import (
	"errors"

	"github.com/example/daylex/internal/domain"
	"github.com/example/daylex/internal/srs"
)

// State of a review session.
type State int

const (
	// Idle means no session is running.
	Idle State = iota
	// AwaitingReveal means a card's front is shown and the back hidden.
	AwaitingReveal
	// AwaitingRating means the back is revealed and a grade is expected.
	AwaitingRating
	// Finished means the queue is exhausted; terminal for this session.
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingReveal:
		return "awaiting-reveal"
	case AwaitingRating:
		return "awaiting-rating"
	case Finished:
		return "finished"
	}
	return "unknown"
}

var (
	// ErrNothingDue is reported when a session is started with no due
	// cards. A normal condition, not a failure.
	ErrNothingDue = errors.New("no cards due for review")

	// ErrInvalidState is returned for an operation that is not legal in
	// the session's current state. The session is left unchanged.
	ErrInvalidState = errors.New("operation not valid in current session state")
)

// Session is one pass through the due queue. The queue is snapshotted at
// start, so a card is rated at most once per session even if its new due
// date would make it due again the same day.
type Session struct {
	sched   *srs.Scheduler
	state   State
	queue   []domain.Card
	current domain.Card
	rated   int
	skipped int
}

// New returns an idle session over the scheduler.
func New(sched *srs.Scheduler) *Session {
	return &Session{sched: sched, state: Idle}
}

// Start begins a fresh session over today's due cards, discarding any
// prior session state. With nothing due it reports ErrNothingDue and
// stays Idle.
func (s *Session) Start() error {
	due := s.sched.Due(s.sched.Today())
	if len(due) == 0 {
		s.state = Idle
		return ErrNothingDue
	}
	s.queue = due
	s.rated = 0
	s.skipped = 0
	s.advance()
	return nil
}

// State returns the session's current state.
func (s *Session) State() State { return s.state }

// Current returns the card being reviewed, if the session is on one.
func (s *Session) Current() (domain.Card, bool) {
	if s.state == AwaitingReveal || s.state == AwaitingRating {
		return s.current, true
	}
	return domain.Card{}, false
}

// Remaining returns how many cards are still queued after the current
// one.
func (s *Session) Remaining() int { return len(s.queue) }

// Rated returns how many cards were graded this session.
func (s *Session) Rated() int { return s.rated }

// Skipped returns how many cards were skipped this session.
func (s *Session) Skipped() int { return s.skipped }

// Reveal exposes the current card's back and enables rating. Valid only
// while awaiting reveal.
func (s *Session) Reveal() (string, error) {
	if s.state != AwaitingReveal {
		return "", ErrInvalidState
	}
	s.state = AwaitingRating
	return s.current.Back, nil
}

// SubmitRating grades the current card through the scheduler and
// advances the queue. Valid only after a reveal. A grade the scheduler
// rejects leaves the session exactly where it was.
func (s *Session) SubmitRating(grade domain.Grade) error {
	if s.state != AwaitingRating {
		return ErrInvalidState
	}
	if _, err := s.sched.Rate(s.current.ID, grade); err != nil {
		return err
	}
	s.rated++
	s.advance()
	return nil
}

// Skip advances past the current card without touching its scheduling
// state. Valid in either active state.
func (s *Session) Skip() error {
	if s.state != AwaitingReveal && s.state != AwaitingRating {
		return ErrInvalidState
	}
	s.skipped++
	s.advance()
	return nil
}

// advance serves the next queued card, or finishes the session.
func (s *Session) advance() {
	if len(s.queue) == 0 {
		s.current = domain.Card{}
		s.state = Finished
		return
	}
	s.current = s.queue[0]
	s.queue = s.queue[1:]
	s.state = AwaitingReveal
}

// Package progress tracks daily practice: XP totals, per-category
// completion flags, streaks and the adjustable daily goal.
package progress

import (
	"github.com/example/daylex/internal/clock"
	"github.com/example/daylex/internal/store"
)

// Defaults and floors for the adjustable settings. The goal moves in
// fixed steps and never goes below its floor.
const (
	DefaultGoal = 30
	GoalStep    = 5
	GoalFloor   = 10

	DefaultDailyMinutes = 40
	DailyMinutesFloor   = 10

	DefaultWeeklyHours = 8
	WeeklyHoursFloor   = 1
)

// DayXP is one day's accumulated XP, used for history readouts.
type DayXP struct {
	Day string `json:"day"`
	XP  int    `json:"xp"`
}

// Tracker is the daily aggregator. It keeps no state of its own: every
// read goes through the store, every mutation is persisted before the
// call returns. Mutations never fail; if durable storage is gone the
// store quietly falls back to memory.
type Tracker struct {
	store *store.Store
	clock clock.Clock
}

// New builds a Tracker and primes missing settings with their defaults,
// so a fresh store behaves like a configured one.
func New(s *store.Store, c clock.Clock) *Tracker {
	t := &Tracker{store: s, clock: c}
	if !s.Has(store.KeyGoal) {
		s.Set(store.KeyGoal, DefaultGoal)
	}
	if !s.Has(store.KeyDailyMinutes) {
		s.Set(store.KeyDailyMinutes, DefaultDailyMinutes)
	}
	if !s.Has(store.KeyWeeklyHours) {
		s.Set(store.KeyWeeklyHours, DefaultWeeklyHours)
	}
	if !s.Has(store.KeyXPByDay) {
		s.Set(store.KeyXPByDay, map[string]int{})
	}
	if !s.Has(store.KeyFlagsByDay) {
		s.Set(store.KeyFlagsByDay, map[string]map[string]bool{})
	}
	return t
}

// Today returns the current day key.
func (t *Tracker) Today() string {
	return clock.Day(t.clock.Now())
}

func (t *Tracker) xpMap() map[string]int {
	m := map[string]int{}
	t.store.Get(store.KeyXPByDay, &m)
	return m
}

func (t *Tracker) flagsMap() map[string]map[string]bool {
	m := map[string]map[string]bool{}
	t.store.Get(store.KeyFlagsByDay, &m)
	return m
}

// AddXP adds amount to today's total and, when category is non-empty,
// sets today's flag for it. Setting an already-set flag is a no-op.
// Amounts are taken as given; negative adjustments are allowed.
func (t *Tracker) AddXP(amount int, category string) {
	day := t.Today()

	m := t.xpMap()
	m[day] += amount
	t.store.Set(store.KeyXPByDay, m)

	if category != "" {
		f := t.flagsMap()
		if f[day] == nil {
			f[day] = map[string]bool{}
		}
		f[day][category] = true
		t.store.Set(store.KeyFlagsByDay, f)
	}
}

// XP returns the XP recorded for the given day, zero when none.
func (t *Tracker) XP(day string) int {
	return t.xpMap()[day]
}

// Flags returns the set of categories credited on the given day. Days
// never touched yield an empty set.
func (t *Tracker) Flags(day string) map[string]bool {
	out := map[string]bool{}
	for cat, set := range t.flagsMap()[day] {
		if set {
			out[cat] = true
		}
	}
	return out
}

// ResetToday zeroes today's XP and clears today's flags. Historical days
// are left alone.
func (t *Tracker) ResetToday() {
	day := t.Today()

	m := t.xpMap()
	m[day] = 0
	t.store.Set(store.KeyXPByDay, m)

	f := t.flagsMap()
	f[day] = map[string]bool{}
	t.store.Set(store.KeyFlagsByDay, f)
}

// WeekTotal sums XP over every recorded day in the same ISO week as the
// reference day. Days with unparseable keys are skipped.
func (t *Tracker) WeekTotal(refDay string) int {
	ref, err := clock.ParseDay(refDay)
	if err != nil {
		return 0
	}
	sum := 0
	for day, xp := range t.xpMap() {
		d, err := clock.ParseDay(day)
		if err != nil {
			continue
		}
		if clock.SameISOWeek(ref, d) {
			sum += xp
		}
	}
	return sum
}

// Streak counts consecutive days, ending today, whose XP met the goal.
// A day below the threshold stops the walk, today included: if today has
// not met the goal yet, the streak is 0.
func (t *Tracker) Streak(goal int) int {
	m := t.xpMap()
	day := t.Today()
	n := 0
	for m[day] >= goal {
		n++
		day = clock.AddDays(day, -1)
	}
	return n
}

// History returns per-day XP for the last n days, oldest first, ending
// today. Untouched days appear with zero XP.
func (t *Tracker) History(n int) []DayXP {
	m := t.xpMap()
	out := make([]DayXP, 0, n)
	today := t.Today()
	for i := n - 1; i >= 0; i-- {
		day := clock.AddDays(today, -i)
		out = append(out, DayXP{Day: day, XP: m[day]})
	}
	return out
}

// Goal returns the daily XP target.
func (t *Tracker) Goal() int {
	goal := DefaultGoal
	t.store.Get(store.KeyGoal, &goal)
	return goal
}

// IncreaseGoal raises the goal by one step and returns the new value.
func (t *Tracker) IncreaseGoal() int {
	goal := t.Goal() + GoalStep
	t.store.Set(store.KeyGoal, goal)
	return goal
}

// DecreaseGoal lowers the goal by one step, never below the floor, and
// returns the new value.
func (t *Tracker) DecreaseGoal() int {
	goal := t.Goal() - GoalStep
	if goal < GoalFloor {
		goal = GoalFloor
	}
	t.store.Set(store.KeyGoal, goal)
	return goal
}

// DailyMinutes returns the daily practice-minutes setting.
func (t *Tracker) DailyMinutes() int {
	v := DefaultDailyMinutes
	t.store.Get(store.KeyDailyMinutes, &v)
	return v
}

// SetDailyMinutes stores the setting, clamped to its floor, and returns
// the stored value.
func (t *Tracker) SetDailyMinutes(v int) int {
	if v < DailyMinutesFloor {
		v = DailyMinutesFloor
	}
	t.store.Set(store.KeyDailyMinutes, v)
	return v
}

// WeeklyHours returns the weekly practice-hours setting.
func (t *Tracker) WeeklyHours() int {
	v := DefaultWeeklyHours
	t.store.Get(store.KeyWeeklyHours, &v)
	return v
}

// SetWeeklyHours stores the setting, clamped to its floor, and returns
// the stored value.
func (t *Tracker) SetWeeklyHours(v int) int {
	if v < WeeklyHoursFloor {
		v = WeeklyHoursFloor
	}
	t.store.Set(store.KeyWeeklyHours, v)
	return v
}

// Seed returns the opaque randomization seed, if one is stored. The
// engine round-trips it through export and import but never interprets
// it.
func (t *Tracker) Seed() (int64, bool) {
	var v int64
	ok := t.store.Get(store.KeySeed, &v)
	return v, ok
}

// Reseed stores a new randomization seed.
func (t *Tracker) Reseed(v int64) {
	t.store.Set(store.KeySeed, v)
}

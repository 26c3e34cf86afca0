package clock

import "time"

// DayFormat is the canonical day key layout. Keys in this form sort
// lexicographically in chronological order, so they double as map keys
// and comparison operands for due dates.
const DayFormat = "2006-01-02"

// Clock supplies the current time. Scheduling and aggregation code never
// reads the wall clock directly, so tests can pin "today".
type Clock interface {
	Now() time.Time
}

// System is the wall-clock implementation used outside of tests.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fixed is a settable clock for tests.
type Fixed struct {
	t time.Time
}

// NewFixed returns a Fixed clock pinned to t.
func NewFixed(t time.Time) *Fixed {
	return &Fixed{t: t}
}

func (f *Fixed) Now() time.Time { return f.t }

// Advance moves the fixed clock forward (or backward for negative d).
func (f *Fixed) Advance(d time.Duration) { f.t = f.t.Add(d) }

// AdvanceDays moves the fixed clock by whole days.
func (f *Fixed) AdvanceDays(n int) { f.t = f.t.AddDate(0, 0, n) }

// Day converts a time to its day key.
func Day(t time.Time) string {
	return t.Format(DayFormat)
}

// ParseDay parses a day key back into a time at midnight local time.
func ParseDay(day string) (time.Time, error) {
	return time.Parse(DayFormat, day)
}

// AddDays shifts a day key by n days. An unparseable key is returned
// unchanged; callers only pass keys the engine itself produced.
func AddDays(day string, n int) string {
	t, err := ParseDay(day)
	if err != nil {
		return day
	}
	return Day(t.AddDate(0, 0, n))
}

// SameISOWeek reports whether two times fall in the same ISO-8601 week:
// Monday-start weeks, week 1 containing the year's first Thursday. Both
// the ISO year and the week number must match, so adjacent-week days
// within 7 calendar days of each other are still distinct.
func SameISOWeek(a, b time.Time) bool {
	ay, aw := a.ISOWeek()
	by, bw := b.ISOWeek()
	return ay == by && aw == bw
}

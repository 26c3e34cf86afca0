package domain

// Ease factor bounds and defaults for the scheduling algorithm.
const (
	MinEase     = 1.3
	MaxEase     = 3.0
	InitialEase = 2.5
)

// Card is a single vocabulary item under spaced repetition.
// Due is a day key (YYYY-MM-DD); a card is eligible for review on any
// day greater than or equal to it. An interval of 0 means due immediately.
type Card struct {
	ID       string  `json:"id"`
	Front    string  `json:"front" validate:"required"`
	Back     string  `json:"back" validate:"required"`
	Ease     float64 `json:"ease" validate:"min=1.3,max=3.0"`
	Interval int     `json:"interval" validate:"min=0"`
	Reps     int     `json:"reps" validate:"min=0"`
	Due      string  `json:"due" validate:"required,datetime=2006-01-02"`
}

// Grade is the user's response to a reviewed card.
type Grade int

const (
	GradeAgain Grade = 0
	GradeHard  Grade = 2
	GradeGood  Grade = 3
	GradeEasy  Grade = 4
)

// Valid reports whether g is one of the four accepted grades.
func (g Grade) Valid() bool {
	switch g {
	case GradeAgain, GradeHard, GradeGood, GradeEasy:
		return true
	}
	return false
}

// Success reports whether the grade counts as a successful recall.
func (g Grade) Success() bool { return g >= GradeGood }

func (g Grade) String() string {
	switch g {
	case GradeAgain:
		return "again"
	case GradeHard:
		return "hard"
	case GradeGood:
		return "good"
	case GradeEasy:
		return "easy"
	}
	return "unknown"
}

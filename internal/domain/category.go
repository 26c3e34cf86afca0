package domain

// Skill categories credited at most once per day. The flag set stored per
// day is an open mapping, so unknown category names are accepted and kept;
// these are just the ones the stock practice flows use.
const (
	CategoryListening = "listening"
	CategorySpeaking  = "speaking"
	CategoryReading   = "reading"
	CategoryVocab     = "vocab"
	CategoryPhrases   = "phrases"
)

// Categories lists the stock skill categories in display order.
var Categories = []string{
	CategoryListening,
	CategorySpeaking,
	CategoryReading,
	CategoryVocab,
	CategoryPhrases,
}

// DefaultReward is the XP granted for completing one practice category.
const DefaultReward = 5

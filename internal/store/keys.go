package store

// Keys under which the engine persists its state. Callers outside the
// engine treat these as opaque; they exist as named constants so that
// export, import and factory reset agree on the full set.
const (
	KeyGoal         = "dl_goal_daily_xp"
	KeyDailyMinutes = "dl_daily_minutes"
	KeyWeeklyHours  = "dl_weekly_hours"
	KeyXPByDay      = "dl_xp_by_day"
	KeyFlagsByDay   = "dl_flags_by_day"
	KeyVocab        = "dl_vocab_list"
	KeySeed         = "dl_due_seed"
)

// EngineKeys lists every key the engine owns, in export order.
func EngineKeys() []string {
	return []string{
		KeyGoal,
		KeyDailyMinutes,
		KeyWeeklyHours,
		KeyXPByDay,
		KeyFlagsByDay,
		KeyVocab,
		KeySeed,
	}
}

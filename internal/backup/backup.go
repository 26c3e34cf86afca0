// Package backup serializes the engine's persisted state to a single
// JSON document and restores it. Restores are all-or-nothing: the
// document is validated in full before any key is touched.
package backup

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/example/daylex/internal/domain"
	"github.com/example/daylex/internal/store"
)

var validate = validator.New()

// document is the backup file's shape. Every field is optional; absent
// keys are simply not restored. Unknown top-level keys in an incoming
// document are ignored.
type document struct {
	Goal         *int                       `json:"dl_goal_daily_xp,omitempty"  validate:"omitempty,min=1"`
	DailyMinutes *int                       `json:"dl_daily_minutes,omitempty"  validate:"omitempty,min=1"`
	WeeklyHours  *int                       `json:"dl_weekly_hours,omitempty"   validate:"omitempty,min=1"`
	XPByDay      map[string]int             `json:"dl_xp_by_day,omitempty"      validate:"omitempty,dive,keys,datetime=2006-01-02,endkeys,min=0"`
	FlagsByDay   map[string]map[string]bool `json:"dl_flags_by_day,omitempty"   validate:"omitempty,dive,keys,datetime=2006-01-02,endkeys"`
	Vocab        []domain.Card              `json:"dl_vocab_list,omitempty"     validate:"omitempty,dive"`
	Seed         *int64                     `json:"dl_due_seed,omitempty"`
}

// Export collects every engine key present in the store into one
// indented JSON document.
func Export(s *store.Store) ([]byte, error) {
	snap := s.Snapshot()
	doc := make(map[string]json.RawMessage)
	for _, key := range store.EngineKeys() {
		if raw, ok := snap[key]; ok {
			doc[key] = raw
		}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal backup document: %w", err)
	}
	return data, nil
}

// Import validates data and replaces the corresponding engine keys. On
// any validation failure the store is left exactly as it was; a backup
// never half-applies. Cards arriving without an ID are assigned one.
func Import(s *store.Store, data []byte) error {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("backup document is not valid JSON: %w", err)
	}
	if err := validate.Struct(&doc); err != nil {
		return fmt.Errorf("backup document failed validation: %w", err)
	}

	for i := range doc.Vocab {
		if doc.Vocab[i].ID == "" {
			doc.Vocab[i].ID = uuid.NewString()
		}
	}

	replacement := make(map[string]json.RawMessage)
	put := func(key string, v any) error {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to re-marshal key %s: %w", key, err)
		}
		replacement[key] = raw
		return nil
	}

	if doc.Goal != nil {
		if err := put(store.KeyGoal, *doc.Goal); err != nil {
			return err
		}
	}
	if doc.DailyMinutes != nil {
		if err := put(store.KeyDailyMinutes, *doc.DailyMinutes); err != nil {
			return err
		}
	}
	if doc.WeeklyHours != nil {
		if err := put(store.KeyWeeklyHours, *doc.WeeklyHours); err != nil {
			return err
		}
	}
	if doc.XPByDay != nil {
		if err := put(store.KeyXPByDay, doc.XPByDay); err != nil {
			return err
		}
	}
	if doc.FlagsByDay != nil {
		if err := put(store.KeyFlagsByDay, doc.FlagsByDay); err != nil {
			return err
		}
	}
	if doc.Vocab != nil {
		if err := put(store.KeyVocab, doc.Vocab); err != nil {
			return err
		}
	}
	if doc.Seed != nil {
		if err := put(store.KeySeed, *doc.Seed); err != nil {
			return err
		}
	}

	s.Replace(replacement)
	return nil
}

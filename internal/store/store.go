package store

import (
	"encoding/json"
	"log/slog"
)

// Mode is the store's persistence mode. The transition Persistent ->
// Volatile is one-way: once a durable write has failed the store never
// retries the backend for the rest of the process lifetime.
type Mode int

const (
	Persistent Mode = iota
	Volatile
)

func (m Mode) String() string {
	if m == Persistent {
		return "persistent"
	}
	return "volatile"
}

// probeKey is the throwaway key used to test the backend on open.
const probeKey = "__daylex_probe"

// Store is a key/value store that degrades to memory when its durable
// backend fails. Every value is mirrored into the in-memory map on write,
// so reads are consistent no matter which mode the store is in. Values
// are JSON documents.
type Store struct {
	backend Backend
	mode    Mode
	mem     map[string]json.RawMessage
}

// Backend is the durable side of the store. Implementations report
// failures as errors; the Store turns the first failure into a permanent
// switch to memory-only operation.
type Backend interface {
	Load() (map[string]string, error)
	Put(key, value string) error
	Delete(key string) error
	Clear() error
	Close() error
}

// New builds a Store over the given backend. A nil backend, or one that
// fails the open-time write-then-delete probe, yields a store that starts
// in Volatile mode. While Persistent, existing backend rows are loaded
// into memory; rows that are not valid JSON are skipped, which makes a
// corrupt value indistinguishable from an absent key.
func New(b Backend) *Store {
	s := &Store{
		backend: b,
		mode:    Persistent,
		mem:     make(map[string]json.RawMessage),
	}

	if b == nil {
		s.mode = Volatile
		return s
	}

	if err := b.Put(probeKey, "1"); err != nil {
		s.degrade("probe write", err)
		return s
	}
	if err := b.Delete(probeKey); err != nil {
		s.degrade("probe delete", err)
		return s
	}

	rows, err := b.Load()
	if err != nil {
		s.degrade("load", err)
		return s
	}
	for k, v := range rows {
		if !json.Valid([]byte(v)) {
			slog.Warn("skipping corrupt stored value", "key", k)
			continue
		}
		s.mem[k] = json.RawMessage(v)
	}
	return s
}

// Get unmarshals the value stored under key into out. It returns false,
// leaving out untouched, when the key is absent or its value cannot be
// unmarshaled into out; callers keep whatever default out already holds.
func (s *Store) Get(key string, out any) bool {
	raw, ok := s.mem[key]
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false
	}
	return true
}

// Has reports whether a value is stored under key.
func (s *Store) Has(key string) bool {
	_, ok := s.mem[key]
	return ok
}

// Set stores v under key and reports whether the value reached the
// durable backend. A marshal failure leaves the store unchanged. The
// first backend write failure flips the store to Volatile for good; the
// value still lands in memory either way.
func (s *Store) Set(key string, v any) bool {
	raw, err := json.Marshal(v)
	if err != nil {
		slog.Warn("value not serializable, dropping write", "key", key, "error", err)
		return false
	}
	return s.SetRaw(key, raw)
}

// SetRaw stores an already-serialized JSON document under key. Used by
// import, which replays raw documents without re-marshaling them.
func (s *Store) SetRaw(key string, raw json.RawMessage) bool {
	persisted := false
	if s.mode == Persistent {
		if err := s.backend.Put(key, string(raw)); err != nil {
			s.degrade("write", err)
		} else {
			persisted = true
		}
	}
	s.mem[key] = raw
	return persisted
}

// Clear wipes everything: backend rows (best effort, errors swallowed)
// and the memory map. The mode is left as-is.
func (s *Store) Clear() {
	if s.backend != nil {
		if err := s.backend.Clear(); err != nil {
			slog.Warn("backend clear failed", "error", err)
		}
	}
	s.mem = make(map[string]json.RawMessage)
}

// IsPersistent reports whether writes are still reaching the durable
// backend. A false value means the session's data will not survive a
// restart, which a status surface should tell the user about.
func (s *Store) IsPersistent() bool { return s.mode == Persistent }

// CurrentMode returns the store's persistence mode.
func (s *Store) CurrentMode() Mode { return s.mode }

// Snapshot returns a copy of every stored key and its raw JSON value.
func (s *Store) Snapshot() map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(s.mem))
	for k, v := range s.mem {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

// Replace overwrites each key present in doc with its raw value. Keys not
// mentioned in doc are left alone. Callers validate doc first; Replace
// itself applies everything it is given.
func (s *Store) Replace(doc map[string]json.RawMessage) {
	for k, v := range doc {
		s.SetRaw(k, v)
	}
}

// degrade flips the store to Volatile. Repeated failures after the flip
// are no-ops, so the transition is idempotent.
func (s *Store) degrade(op string, err error) {
	if s.mode == Volatile {
		return
	}
	s.mode = Volatile
	slog.Warn("durable storage unavailable, switching to memory-only mode", "op", op, "error", err)
}

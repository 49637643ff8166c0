package sandbox

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
)

// StateRecord is the durable shadow copy of the session configuration,
// stored as a single JSON object per working directory. Unknown fields
// written by other versions or callers are preserved across load/save.
type StateRecord struct {
	Workdir     string
	PrimaryFile string
	SessionID   string
	UpdatedAt   string
	Extra       map[string]json.RawMessage
}

const (
	keyWorkdir     = "workdir"
	keyPrimaryFile = "primary_file"
	keySessionID   = "session_id"
	keyUpdatedAt   = "updated_at"
)

// MarshalJSON flattens the record into a single JSON object, merging the
// named fields over any preserved extra fields.
func (r *StateRecord) MarshalJSON() ([]byte, error) {
	m := make(map[string]json.RawMessage, len(r.Extra)+4)
	for k, v := range r.Extra {
		m[k] = v
	}
	for k, v := range map[string]string{
		keyWorkdir:     r.Workdir,
		keyPrimaryFile: r.PrimaryFile,
		keySessionID:   r.SessionID,
		keyUpdatedAt:   r.UpdatedAt,
	} {
		if v == "" {
			continue
		}
		enc, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		m[k] = enc
	}
	return json.Marshal(m)
}

// UnmarshalJSON splits the named fields out of the object and keeps the
// remainder in Extra.
func (r *StateRecord) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	take := func(key string, dst *string) {
		raw, ok := m[key]
		if !ok {
			return
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			*dst = s
			delete(m, key)
		}
	}
	take(keyWorkdir, &r.Workdir)
	take(keyPrimaryFile, &r.PrimaryFile)
	take(keySessionID, &r.SessionID)
	take(keyUpdatedAt, &r.UpdatedAt)
	if len(m) > 0 {
		r.Extra = m
	}
	return nil
}

// StateStore persists StateRecords as JSON files with atomic replacement.
// All failures are absorbed: a broken state file degrades to an empty
// record and a failed write leaves the previous file untouched, so the
// session keeps operating in memory even when persistence is broken.
type StateStore struct {
	logger *slog.Logger
}

// NewStateStore creates a store that logs absorbed failures to logger.
func NewStateStore(logger *slog.Logger) *StateStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &StateStore{logger: logger}
}

// Load reads the record at path. A missing, unreadable or unparseable
// file yields an empty record; it never fails.
func (s *StateStore) Load(path string) *StateRecord {
	rec := &StateRecord{}
	if path == "" {
		return rec
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("failed to load state", "path", path, "error", err)
		}
		return rec
	}
	if err := json.Unmarshal(data, rec); err != nil {
		s.logger.Warn("failed to parse state", "path", path, "error", err)
		return &StateRecord{}
	}
	return rec
}

// Save writes the record to path by writing a temporary sibling file in
// full and renaming it onto the target. Write failures are logged and the
// temporary file removed; the previous on-disk record stays intact.
func (s *StateStore) Save(path string, rec *StateRecord) {
	if path == "" {
		return
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		s.logger.Error("failed to encode state", "path", path, "error", err)
		return
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		s.logger.Error("failed to write state", "path", tmp, "error", err)
		_ = os.Remove(tmp)
		return
	}
	if err := os.Rename(tmp, path); err != nil {
		s.logger.Error("failed to replace state", "path", path, "error", err)
		_ = os.Remove(tmp)
	}
}

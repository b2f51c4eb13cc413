package state

import "sync"

// Snapshot is the full collection of records as last fetched, tagged with a
// monotonically increasing version. The poller replaces snapshots wholesale;
// nothing mutates a snapshot concurrently, so readers only need the version
// to detect that their reference went stale.
type Snapshot struct {
	Version uint64
	Records []Record
}

// Find scans the snapshot linearly and returns the first record whose
// identifier field equals id, or nil when none matches. Duplicate
// identifiers are not validated; first match wins.
func (s *Snapshot) Find(idField, id string) Record {
	if s == nil {
		return nil
	}
	for _, rec := range s.Records {
		if v, ok := GetString(rec, idField); ok && v == id {
			return rec
		}
	}
	return nil
}

// Store owns the current snapshot. Replace installs a new snapshot wholesale
// and bumps the version; Mutate applies an optimistic local write that is
// dropped when the targeted snapshot has already been replaced.
type Store struct {
	mu      sync.RWMutex
	current *Snapshot
	idField string
}

// NewStore creates a Store locating records by the given identifier field.
// An empty field defaults to "vin".
func NewStore(idField string) *Store {
	if idField == "" {
		idField = "vin"
	}
	return &Store{current: &Snapshot{}, idField: idField}
}

// IDField returns the configured identifier field name.
func (s *Store) IDField() string { return s.idField }

// Snapshot returns the current snapshot. Callers must treat it as read-only.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Replace installs records as the new current snapshot and returns its
// version.
func (s *Store) Replace(records []Record) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = &Snapshot{Version: s.current.Version + 1, Records: records}
	return s.current.Version
}

// Find locates a record by identifier in the current snapshot.
func (s *Store) Find(id string) Record {
	return s.Snapshot().Find(s.idField, id)
}

// Mutate sets path to value inside the record identified by id, but only
// while the current snapshot still carries the given version. A stale
// version means a poll replaced the snapshot after the caller captured its
// reference; the write is silently dropped and the next fetch is
// authoritative. The boolean reports whether the write was applied.
func (s *Store) Mutate(version uint64, id, path string, value any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current.Version != version {
		return false
	}
	rec := s.current.Find(s.idField, id)
	if rec == nil {
		return false
	}
	return Set(rec, path, value) == nil
}

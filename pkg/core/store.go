package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultIDPrefix is prepended to generated record ids.
	DefaultIDPrefix = "product-"
	// DefaultName is the display label given to freshly created records.
	DefaultName = "New product"
	// StarterTemplate is the body the editor historically seeded new records
	// with. Stores start records empty unless WithTemplate selects it.
	StarterTemplate = "<div>\n  <!-- HTML code goes here -->\n  <h1>New product</h1>\n</div>"
)

// Store is the authoritative in-memory collection of records.
// Every mutation validates invariants and then hands the whole collection to
// the Persister before returning.
type Store struct {
	mu        sync.RWMutex
	records   []Record
	persister Persister
	clock     func() time.Time
	idPrefix  string
	template  string
	logger    *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock overrides the time source (tests, deterministic imports).
func WithClock(fn func() time.Time) StoreOption {
	return func(s *Store) {
		if fn != nil {
			s.clock = fn
		}
	}
}

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithIDPrefix changes the prefix of generated ids.
func WithIDPrefix(prefix string) StoreOption {
	return func(s *Store) {
		s.idPrefix = prefix
	}
}

// WithTemplate sets the body given to records created by Create.
func WithTemplate(content string) StoreOption {
	return func(s *Store) {
		s.template = content
	}
}

// Now is the default clock: UTC truncated to the millisecond so timestamps
// survive the snapshot encoding unchanged.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// NewStore builds a store over an initial collection (usually the result of a
// snapshot load). Duplicate ids in the input keep their first occurrence.
func NewStore(records []Record, persister Persister, opts ...StoreOption) *Store {
	s := &Store{
		persister: persister,
		clock:     Now,
		idPrefix:  DefaultIDPrefix,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	seen := make(map[string]bool, len(records))
	for _, r := range records {
		if strings.TrimSpace(r.ID) == "" || seen[r.ID] {
			s.logger.Warn("dropping invalid record from initial collection", "id", r.ID)
			continue
		}
		seen[r.ID] = true
		s.records = append(s.records, r.Clone())
	}
	return s
}

func (s *Store) indexOf(id string) int {
	for i := range s.records {
		if s.records[i].ID == id {
			return i
		}
	}
	return -1
}

// persist must be called with s.mu held so writes are issued in mutation order.
func (s *Store) persist(ctx context.Context, reason string) error {
	if s.persister == nil {
		return nil
	}
	if err := s.persister.Save(WithChangeReason(ctx, reason), CloneAll(s.records)); err != nil {
		s.logger.Warn("change kept in memory but not durable", "reason", reason, "error", err)
		return err
	}
	return nil
}

func (s *Store) nextID() string {
	base := fmt.Sprintf("%s%d", s.idPrefix, s.clock().UnixMilli())
	id := base
	for n := 2; s.indexOf(id) >= 0; n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}
	return id
}

// Create appends a record with a generated unique id and the template body
// (empty unless WithTemplate was given).
// The record is returned even when the snapshot write fails.
func (s *Store) Create(ctx context.Context) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := Record{
		ID:        s.nextID(),
		Name:      DefaultName,
		Content:   s.template,
		CreatedAt: s.clock(),
	}
	s.records = append(s.records, r)
	s.logger.Debug("record created", "id", r.ID)

	return r.Clone(), s.persist(ctx, "create "+r.ID)
}

// Rename sets the display name. Names carry no uniqueness constraint.
func (s *Store) Rename(ctx context.Context, id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		s.logger.Debug("rename ignored, record not found", "id", id)
		return nil
	}
	s.records[i].Name = name
	s.records[i].touch(s.clock())
	return s.persist(ctx, "rename "+id)
}

// ChangeID replaces a record's id. It fails with ErrEmptyID when newID is
// blank and ErrIDConflict when another record already uses it; in both cases
// the store is left untouched.
func (s *Store) ChangeID(ctx context.Context, oldID, newID string) error {
	newID = strings.TrimSpace(newID)
	if newID == "" {
		return ErrEmptyID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if newID == oldID {
		return nil
	}
	i := s.indexOf(oldID)
	if i < 0 {
		s.logger.Debug("id change ignored, record not found", "id", oldID)
		return nil
	}
	if s.indexOf(newID) >= 0 {
		return fmt.Errorf("%w: %s", ErrIDConflict, newID)
	}
	s.records[i].ID = newID
	s.records[i].touch(s.clock())
	return s.persist(ctx, fmt.Sprintf("move %s to %s", oldID, newID))
}

// SetContent writes the body (DefaultVariant or empty key) or a named variant.
// Content is free-form and accepted as-is.
func (s *Store) SetContent(ctx context.Context, id, variantKey, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		s.logger.Debug("content update ignored, record not found", "id", id)
		return nil
	}
	r := &s.records[i]
	if variantKey == "" || variantKey == DefaultVariant {
		r.Content = content
		variantKey = DefaultVariant
	} else {
		if r.Variants == nil {
			r.Variants = make(map[string]string)
		}
		r.Variants[variantKey] = content
	}
	r.touch(s.clock())
	return s.persist(ctx, fmt.Sprintf("update %s (%s)", id, variantKey))
}

// Delete removes a record. Deleting an unknown id is a no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil
	}
	s.records = append(s.records[:i], s.records[i+1:]...)
	return s.persist(ctx, "delete "+id)
}

// Replace swaps the whole collection in one step and writes it once.
// It is meant for the import pipeline, which holds the only bulk view of the
// collection; the caller guarantees id uniqueness of records.
func (s *Store) Replace(ctx context.Context, records []Record, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = CloneAll(records)
	return s.persist(ctx, reason)
}

// Flush re-issues the snapshot write, e.g. after a reported persistence failure.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist(ctx, "flush")
}

// Get returns a copy of the record with the given id.
func (s *Store) Get(id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return Record{}, false
	}
	return s.records[i].Clone(), true
}

// Content resolves the body or a named variant of a record.
func (s *Store) Content(id, variantKey string) (string, bool) {
	r, ok := s.Get(id)
	if !ok {
		return "", false
	}
	if variantKey == "" {
		variantKey = DefaultVariant
	}
	return r.Variant(variantKey)
}

// List returns every record ordered by id (numeric-aware).
func (s *Store) List() []Record {
	out := s.Snapshot()
	SortByID(out)
	return out
}

// Search filters by case-insensitive substring of id or name, ordered like List.
func (s *Store) Search(term string) []Record {
	needle := strings.ToLower(term)
	var out []Record
	for _, r := range s.List() {
		if strings.Contains(strings.ToLower(r.ID), needle) ||
			strings.Contains(strings.ToLower(r.Name), needle) {
			out = append(out, r)
		}
	}
	return out
}

// Snapshot returns a copy of the collection in storage (insertion) order.
func (s *Store) Snapshot() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return CloneAll(s.records)
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Now returns the store's clock reading.
func (s *Store) Now() time.Time {
	return s.clock()
}

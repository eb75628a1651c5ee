package core

import "context"

// Slot is a single named durable location holding the whole serialized
// collection. Adhering to this interface keeps the store independent of the
// storage mechanism (file, SQLite, Postgres, S3, memory).
type Slot interface {
	// Read returns the slot contents, or ErrSlotEmpty if nothing was written yet.
	Read(ctx context.Context) ([]byte, error)

	// Write replaces the slot contents in full.
	Write(ctx context.Context, data []byte) error
}

// Persister receives the full collection after every mutation.
type Persister interface {
	Save(ctx context.Context, records []Record) error
}

type contextKey string

// ChangeReasonKey is the context key carrying a human-readable reason for a
// write, used by versioning slots as the commit message.
const ChangeReasonKey contextKey = "change_reason"

// WithChangeReason annotates ctx with the reason for the next write.
func WithChangeReason(ctx context.Context, reason string) context.Context {
	return context.WithValue(ctx, ChangeReasonKey, reason)
}

// ChangeReason extracts the reason set by WithChangeReason, if any.
func ChangeReason(ctx context.Context) string {
	if val, ok := ctx.Value(ChangeReasonKey).(string); ok {
		return val
	}
	return ""
}

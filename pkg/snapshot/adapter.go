package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/htmlrms/internal/telemetry"
	"github.com/aretw0/htmlrms/pkg/core"
)

// DefaultTimeout bounds a single slot read or write.
const DefaultTimeout = 5 * time.Second

var errStale = errors.New("stale snapshot")

// Config holds the configuration for the snapshot adapter.
type Config struct {
	Slot     core.Slot
	Timeout  time.Duration // zero means DefaultTimeout, negative disables the bound
	ReadOnly bool
	Logger   *slog.Logger
	Metrics  *telemetry.Metrics
}

// Adapter writes the full collection to a slot on every Save and rehydrates
// it on Load. It implements core.Persister.
type Adapter struct {
	slot     core.Slot
	timeout  time.Duration
	readOnly bool
	logger   *slog.Logger
	metrics  *telemetry.Metrics

	mu      sync.Mutex // guards issued
	issued  uint64
	writeMu sync.Mutex // serialises slot writes, guards written
	written uint64
}

// Loaded is the outcome of Load. Warnings describe content that was ignored.
type Loaded struct {
	Records  []core.Record
	Warnings []error
}

// New creates a snapshot adapter over cfg.Slot.
func New(cfg Config) *Adapter {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Adapter{
		slot:     cfg.Slot,
		timeout:  timeout,
		readOnly: cfg.ReadOnly,
		logger:   logger,
		metrics:  cfg.Metrics,
	}
}

func (a *Adapter) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout < 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.timeout)
}

// Save serialises records and overwrites the slot. A write that outlives the
// timeout is reported as ErrPersistence; if it later lands it can never
// replace a snapshot issued after it.
func (a *Adapter) Save(ctx context.Context, records []core.Record) error {
	if a.readOnly {
		return core.ErrReadOnly
	}

	data, err := Encode(records)
	if err != nil {
		a.metrics.WriteResult(telemetry.WriteError)
		return fmt.Errorf("%w: encode: %w", core.ErrPersistence, err)
	}

	a.mu.Lock()
	a.issued++
	seq := a.issued
	a.mu.Unlock()

	ctx, cancel := a.bound(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- a.write(ctx, seq, data)
	}()

	select {
	case err := <-done:
		if errors.Is(err, errStale) {
			a.metrics.WriteResult(telemetry.WriteStale)
			a.logger.Debug("snapshot superseded by a newer write", "seq", seq)
			return nil
		}
		if err != nil {
			a.metrics.WriteResult(telemetry.WriteError)
			a.logger.Warn("snapshot write failed", "error", err)
			return fmt.Errorf("%w: %w", core.ErrPersistence, err)
		}
		a.metrics.WriteResult(telemetry.WriteOK)
		a.metrics.SetRecords(len(records))
		a.logger.Debug("snapshot written", "records", len(records), "bytes", len(data), "seq", seq)
		return nil
	case <-ctx.Done():
		a.metrics.WriteResult(telemetry.WriteTimeout)
		a.logger.Warn("snapshot write did not complete", "error", ctx.Err(), "seq", seq)
		return fmt.Errorf("%w: %w", core.ErrPersistence, ctx.Err())
	}
}

func (a *Adapter) write(ctx context.Context, seq uint64, data []byte) error {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	if seq < a.written {
		return errStale
	}
	if err := a.slot.Write(ctx, data); err != nil {
		return err
	}
	a.written = seq
	return nil
}

// Load reads the slot. An absent slot yields an empty collection. Content
// that cannot be decoded also yields an empty collection plus a warning, so
// startup never fails on a corrupted snapshot. Only a failing read returns an
// error.
func (a *Adapter) Load(ctx context.Context) (Loaded, error) {
	ctx, cancel := a.bound(ctx)
	defer cancel()

	data, err := a.slot.Read(ctx)
	if errors.Is(err, core.ErrSlotEmpty) {
		a.logger.Debug("slot empty, starting with no records")
		return Loaded{}, nil
	}
	if err != nil {
		return Loaded{}, fmt.Errorf("%w: read: %w", core.ErrPersistence, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Loaded{}, nil
	}

	records, err := Decode(data)
	if err != nil {
		a.logger.Warn("snapshot is corrupted, starting with no records", "error", err)
		return Loaded{Warnings: []error{err}}, nil
	}

	var out Loaded
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		switch {
		case strings.TrimSpace(r.ID) == "":
			out.Warnings = append(out.Warnings, fmt.Errorf("%w: record without id dropped", core.ErrParse))
		case seen[r.ID]:
			out.Warnings = append(out.Warnings, fmt.Errorf("%w: duplicate id %q dropped", core.ErrParse, r.ID))
		default:
			seen[r.ID] = true
			out.Warnings = append(out.Warnings, repair(&r)...)
			out.Records = append(out.Records, r)
		}
	}
	for _, w := range out.Warnings {
		a.logger.Warn("snapshot entry ignored or repaired", "error", w)
	}
	a.metrics.SetRecords(len(out.Records))
	return out, nil
}

// repair brings a decoded record back within the record rules: the reserved
// default key never names a stored variant and updatedAt never precedes
// createdAt.
func repair(r *core.Record) []error {
	var warnings []error
	if _, ok := r.Variants[core.DefaultVariant]; ok {
		delete(r.Variants, core.DefaultVariant)
		if len(r.Variants) == 0 {
			r.Variants = nil
		}
		warnings = append(warnings, fmt.Errorf("%w: record %q: reserved variant %q dropped", core.ErrParse, r.ID, core.DefaultVariant))
	}
	if r.UpdatedAt != nil && r.UpdatedAt.Before(r.CreatedAt) {
		ts := r.CreatedAt
		r.UpdatedAt = &ts
		warnings = append(warnings, fmt.Errorf("%w: record %q: updatedAt before createdAt, clamped", core.ErrParse, r.ID))
	}
	return warnings
}

package merge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/aretw0/htmlrms/internal/telemetry"
	"github.com/aretw0/htmlrms/pkg/core"
	"github.com/aretw0/htmlrms/pkg/normalize"
)

// State is a step of the import pipeline.
type State string

const (
	StateIdle                 State = "idle"
	StateNormalizing          State = "normalizing"
	StateCollisionCheck       State = "collision-check"
	StateAwaitingConfirmation State = "awaiting-confirmation"
	StateMerging              State = "merging"
	StatePersisted            State = "persisted"
	StateCancelled            State = "cancelled"
	StateFailed               State = "failed"
)

// Result reports how an import ended. Count is the size of the incoming batch,
// overwrites included.
type Result struct {
	State      State
	Count      int
	Collisions []string
	Skipped    int
}

// Message renders the result the way collaborators show it to a user.
func (r Result) Message() string {
	switch r.State {
	case StatePersisted:
		return fmt.Sprintf("%d records imported", r.Count)
	case StateCancelled:
		return fmt.Sprintf("import cancelled, %d existing records left unchanged", len(r.Collisions))
	case StateFailed:
		return "import failed"
	default:
		return string(r.State)
	}
}

// Pending is a normalized batch waiting for Apply or Discard. While a plan is
// pending the importer refuses to start another one.
type Pending struct {
	Batch      normalize.Batch
	Collisions []string

	importer *Importer
	resolved bool
}

// NeedsConfirmation reports whether applying the plan overwrites records.
func (p *Pending) NeedsConfirmation() bool {
	return len(p.Collisions) > 0
}

// State is AwaitingConfirmation for plans with collisions, Merging otherwise.
func (p *Pending) State() State {
	if p.NeedsConfirmation() {
		return StateAwaitingConfirmation
	}
	return StateMerging
}

// Importer runs payloads through normalization and merges them into a store.
// Only one import may be in flight at a time.
type Importer struct {
	store      *core.Store
	normalizer *normalize.Normalizer
	metrics    *telemetry.Metrics
	logger     *slog.Logger

	busy atomic.Bool
	mu   sync.Mutex
}

// ImporterOption configures an Importer.
type ImporterOption func(*Importer)

// WithNormalizer replaces the default normalizer.
func WithNormalizer(n *normalize.Normalizer) ImporterOption {
	return func(im *Importer) {
		if n != nil {
			im.normalizer = n
		}
	}
}

// WithMetrics records import outcomes.
func WithMetrics(m *telemetry.Metrics) ImporterOption {
	return func(im *Importer) {
		im.metrics = m
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) ImporterOption {
	return func(im *Importer) {
		if logger != nil {
			im.logger = logger
		}
	}
}

// NewImporter creates an importer bound to store.
func NewImporter(store *core.Store, opts ...ImporterOption) *Importer {
	im := &Importer{
		store:  store,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(im)
	}
	if im.normalizer == nil {
		im.normalizer = normalize.New(normalize.WithClock(store.Now), normalize.WithLogger(im.logger))
	}
	return im
}

// Busy reports whether an import is in flight.
func (im *Importer) Busy() bool {
	return im.busy.Load()
}

// Plan normalizes payload and computes its collisions with the store. The
// store is not touched. On success the importer stays busy until the plan is
// applied or discarded.
func (im *Importer) Plan(ctx context.Context, payload []byte, format normalize.Format) (*Pending, error) {
	if !im.busy.CompareAndSwap(false, true) {
		return nil, core.ErrImportInProgress
	}

	im.logger.Debug("import started", "state", StateNormalizing, "bytes", len(payload))
	batch, err := im.normalizer.Normalize(payload, format)
	if err != nil {
		im.finish(StateFailed)
		im.logger.Warn("import payload rejected", "error", err)
		return nil, fmt.Errorf("import: %w", err)
	}

	p := &Pending{
		Batch:      batch,
		Collisions: Collisions(im.store.Snapshot(), batch.Records),
		importer:   im,
	}
	im.logger.Debug("import planned",
		"state", p.State(),
		"records", len(batch.Records),
		"collisions", len(p.Collisions),
		"skipped", batch.Skipped,
	)
	return p, nil
}

// Apply resolves a plan. Collisions are computed again against the current
// store; if any exist and confirmed is false the import is cancelled and the
// store is left as it was. Otherwise the merged collection replaces the store
// in one swap and is written once. A write failure yields StateFailed with the
// merged collection kept in memory.
func (im *Importer) Apply(ctx context.Context, p *Pending, confirmed bool) (Result, error) {
	if err := im.resolve(p); err != nil {
		return Result{}, err
	}

	current := im.store.Snapshot()
	res := Result{
		Count:      len(p.Batch.Records),
		Collisions: Collisions(current, p.Batch.Records),
		Skipped:    p.Batch.Skipped,
	}

	if len(res.Collisions) > 0 && !confirmed {
		res.State = StateCancelled
		im.finish(res.State)
		im.logger.Info("import cancelled", "collisions", len(res.Collisions))
		return res, nil
	}

	merged := Merge(current, p.Batch.Records)
	reason := fmt.Sprintf("import %d records", res.Count)
	if err := im.store.Replace(ctx, merged, reason); err != nil {
		res.State = StateFailed
		im.finish(res.State)
		return res, fmt.Errorf("import: %w", err)
	}

	res.State = StatePersisted
	im.finish(res.State)
	im.logger.Info("import persisted", "records", res.Count, "overwritten", len(res.Collisions), "total", len(merged))
	return res, nil
}

// Discard abandons a plan without touching the store.
func (im *Importer) Discard(p *Pending) (Result, error) {
	if err := im.resolve(p); err != nil {
		return Result{}, err
	}
	res := Result{
		State:      StateCancelled,
		Count:      len(p.Batch.Records),
		Collisions: p.Collisions,
		Skipped:    p.Batch.Skipped,
	}
	im.finish(res.State)
	return res, nil
}

// Import plans and applies in one call. confirm is asked only when the batch
// overwrites existing records; a nil confirm declines.
func (im *Importer) Import(ctx context.Context, payload []byte, format normalize.Format, confirm func(collisions []string) bool) (Result, error) {
	p, err := im.Plan(ctx, payload, format)
	if err != nil {
		if errors.Is(err, core.ErrImportInProgress) {
			return Result{State: StateIdle}, err
		}
		return Result{State: StateFailed}, err
	}

	confirmed := false
	if p.NeedsConfirmation() && confirm != nil {
		confirmed = confirm(p.Collisions)
	}
	return im.Apply(ctx, p, confirmed)
}

func (im *Importer) resolve(p *Pending) error {
	if p == nil || p.importer != im {
		return errors.New("import plan does not belong to this importer")
	}
	im.mu.Lock()
	defer im.mu.Unlock()
	if p.resolved {
		return core.ErrPlanResolved
	}
	p.resolved = true
	return nil
}

func (im *Importer) finish(state State) {
	im.metrics.ImportOutcome(string(state))
	im.busy.Store(false)
}

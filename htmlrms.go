package htmlrms

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/htmlrms/internal/platform"
	"github.com/aretw0/htmlrms/pkg/core"
	"github.com/aretw0/htmlrms/pkg/git"
	"github.com/aretw0/htmlrms/pkg/merge"
	"github.com/aretw0/htmlrms/pkg/normalize"
)

// --- Types ---

// Record is a public alias for the domain record.
type Record = core.Record

// Workspace is a wired store with its importer and persistence.
type Workspace = platform.Workspace

// ImportResult reports how an import ended.
type ImportResult = merge.Result

// S3Options configures the s3 adapter beyond its uri.
type S3Options = platform.S3Options

// Import payload formats.
const (
	FormatJSON = normalize.FormatJSON
	FormatYAML = normalize.FormatYAML
)

// --- Configuration ---

// Option defines a functional option for opening a workspace.
type Option = platform.Option

// WithAdapter selects the slot backend: fs (default), sqlite, postgres, s3 or memory.
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithSlotName overrides the snapshot slot name.
func WithSlotName(name string) Option {
	return platform.WithSlotName(name)
}

// WithTimeout bounds each snapshot write.
func WithTimeout(d time.Duration) Option {
	return platform.WithTimeout(d)
}

// WithVersioning enables or disables git commits for the fs adapter.
func WithVersioning(enabled bool) Option {
	return platform.WithVersioning(enabled)
}

// WithAutoInit creates the workspace (and git repository) when missing.
func WithAutoInit(auto bool) Option {
	return platform.WithAutoInit(auto)
}

// WithMustExist fails when the workspace directory does not exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithReadOnly rejects every write.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithDevSafety controls the sandbox applied under `go run` and `go test`.
func WithDevSafety(enabled bool) Option {
	return platform.WithDevSafety(enabled)
}

// WithClock overrides the time source.
func WithClock(fn func() time.Time) Option {
	return platform.WithClock(fn)
}

// WithTemplate sets the body of newly created records.
func WithTemplate(content string) Option {
	return platform.WithTemplate(content)
}

// WithMetrics registers Prometheus collectors on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return platform.WithMetrics(reg)
}

// WithS3 configures the s3 adapter.
func WithS3(s3 S3Options) Option {
	return platform.WithS3(s3)
}

// WithSlot injects a custom slot.
func WithSlot(slot core.Slot) Option {
	return platform.WithSlot(slot)
}

// --- Factory ---

// Open loads the workspace at uri.
func Open(ctx context.Context, uri string, opts ...Option) (*Workspace, error) {
	return platform.Open(ctx, uri, opts...)
}

// --- Safety & Utils ---

// ResolvePath applies the dev sandbox rules to a workspace path.
func ResolvePath(userPath string, forceTemp bool) string {
	return platform.ResolvePath(userPath, forceTemp)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// FindRoot looks upwards for a workspace root.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}

// --- Semantic Commits ---

const (
	CommitTypeFeat  = git.CommitTypeFeat
	CommitTypeFix   = git.CommitTypeFix
	CommitTypeDocs  = git.CommitTypeDocs
	CommitTypeChore = git.CommitTypeChore
)

// FormatChangeReason builds a Conventional Commit message.
func FormatChangeReason(ctype, scope, subject, body string) string {
	return git.FormatChangeReason(ctype, scope, subject, body)
}

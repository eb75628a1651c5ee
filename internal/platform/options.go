package platform

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/htmlrms/pkg/core"
)

// DefaultSlotName keeps snapshots readable by existing htmlManagerV2Data exports.
const DefaultSlotName = "htmlManagerV2Data"

// S3Options carries the bucket settings not expressed in the s3:// uri.
type S3Options struct {
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

// options holds the internal configuration for a workspace.
type options struct {
	slot       core.Slot
	logger     *slog.Logger
	adapter    string
	slotName   string
	timeout    time.Duration
	clock      func() time.Time
	template   string
	registerer prometheus.Registerer
	s3         S3Options
	config     map[string]any
}

// Option defines a functional option for opening a workspace.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		adapter:  "fs",
		slotName: DefaultSlotName,
		config:   make(map[string]any),
	}
}

// WithAdapter selects the slot backend by name: fs, sqlite, postgres, s3 or memory.
func WithAdapter(name string) Option {
	return func(o *options) {
		if name != "" {
			o.adapter = name
		}
	}
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithSlotName overrides the snapshot slot name.
func WithSlotName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.slotName = name
		}
	}
}

// WithTimeout bounds each snapshot write. Zero keeps the default, negative
// disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithVersioning enables or disables git commits for the fs adapter.
// When not set, versioning follows the presence of a .git directory.
func WithVersioning(enabled bool) Option {
	return func(o *options) {
		o.config["versioning"] = enabled
	}
}

// WithAutoInit creates the workspace directory (and git repository when
// versioning) if missing.
func WithAutoInit(auto bool) Option {
	return func(o *options) {
		o.config["auto_init"] = auto
	}
}

// WithMustExist fails when the workspace directory does not exist.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.config["must_exist"] = must
	}
}

// WithReadOnly rejects every snapshot write with core.ErrReadOnly and skips
// initialization. Dev safety is bypassed since nothing is written.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.config["read_only"] = enabled
	}
}

// WithForceTemp re-roots file based workspaces under the temp directory.
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.config["temp_dir"] = force
	}
}

// WithDevSafety controls the sandbox applied under `go run` and `go test`.
// Enabled by default.
//
// CAUTION: disabling it lets development builds write to the real path.
func WithDevSafety(enabled bool) Option {
	return func(o *options) {
		o.config["dev_safety"] = enabled
	}
}

// WithClock overrides the time source of the store and the importer.
func WithClock(fn func() time.Time) Option {
	return func(o *options) {
		o.clock = fn
	}
}

// WithTemplate sets the body of newly created records.
func WithTemplate(content string) Option {
	return func(o *options) {
		o.template = content
	}
}

// WithMetrics registers the Prometheus collectors on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithS3 sets region, endpoint and addressing for the s3 adapter.
func WithS3(s3 S3Options) Option {
	return func(o *options) {
		o.s3 = s3
	}
}

// WithSlot injects a custom slot. The adapter name is then ignored.
func WithSlot(slot core.Slot) Option {
	return func(o *options) {
		o.slot = slot
	}
}

func (o *options) flag(key string) bool {
	v, _ := o.config[key].(bool)
	return v
}

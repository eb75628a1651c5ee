package platform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/htmlrms/internal/telemetry"
	"github.com/aretw0/htmlrms/pkg/adapters/fs"
	"github.com/aretw0/htmlrms/pkg/adapters/memory"
	"github.com/aretw0/htmlrms/pkg/adapters/s3slot"
	"github.com/aretw0/htmlrms/pkg/adapters/sqlslot"
	"github.com/aretw0/htmlrms/pkg/core"
	"github.com/aretw0/htmlrms/pkg/git"
	"github.com/aretw0/htmlrms/pkg/merge"
	"github.com/aretw0/htmlrms/pkg/normalize"
	"github.com/aretw0/htmlrms/pkg/snapshot"
)

// Workspace is a wired record store: the slot, the snapshot adapter over it,
// the store rehydrated from it and the import pipeline bound to the store.
type Workspace struct {
	Store    *core.Store
	Importer *merge.Importer
	Snapshot *snapshot.Adapter
	Slot     core.Slot
	Metrics  *telemetry.Metrics
	// Warnings lists content dropped while loading the snapshot.
	Warnings []error
	Logger   *slog.Logger
}

// Open resolves the slot for uri, loads its snapshot and builds the store.
// The uri is adapter specific: a directory for fs, a database file for
// sqlite, a DSN for postgres and s3://bucket/prefix for s3.
//
// A snapshot that cannot be decoded does not fail Open: the store starts
// empty and the problem is reported in Warnings.
func Open(ctx context.Context, uri string, opts ...Option) (*Workspace, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var metrics *telemetry.Metrics
	if o.registerer != nil {
		metrics = telemetry.New(o.registerer)
	}

	slot := o.slot
	if slot == nil {
		var err error
		if slot, err = openSlot(ctx, uri, o, logger); err != nil {
			return nil, err
		}
	}

	adapter := snapshot.New(snapshot.Config{
		Slot:     slot,
		Timeout:  o.timeout,
		ReadOnly: o.flag("read_only"),
		Logger:   logger,
		Metrics:  metrics,
	})
	loaded, err := adapter.Load(ctx)
	if err != nil {
		closeSlot(slot)
		return nil, err
	}
	for _, w := range loaded.Warnings {
		logger.Warn("snapshot content ignored", "error", w)
	}

	storeOpts := []core.StoreOption{core.WithLogger(logger)}
	if o.clock != nil {
		storeOpts = append(storeOpts, core.WithClock(o.clock))
	}
	if o.template != "" {
		storeOpts = append(storeOpts, core.WithTemplate(o.template))
	}
	store := core.NewStore(loaded.Records, adapter, storeOpts...)

	importer := merge.NewImporter(store,
		merge.WithNormalizer(normalize.New(normalize.WithClock(store.Now), normalize.WithLogger(logger))),
		merge.WithMetrics(metrics),
		merge.WithLogger(logger),
	)
	metrics.SetRecords(store.Len())

	logger.Debug("workspace opened", "adapter", o.adapter, "slot", o.slotName, "records", store.Len())
	return &Workspace{
		Store:    store,
		Importer: importer,
		Snapshot: adapter,
		Slot:     slot,
		Metrics:  metrics,
		Warnings: loaded.Warnings,
		Logger:   logger,
	}, nil
}

// Close releases connections held by the slot.
func (w *Workspace) Close() error {
	return closeSlot(w.Slot)
}

func closeSlot(slot core.Slot) error {
	if c, ok := slot.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func openSlot(ctx context.Context, uri string, o *options, logger *slog.Logger) (core.Slot, error) {
	switch o.adapter {
	case "fs":
		return openFS(ctx, uri, o, logger)
	case "sqlite":
		path := uri
		if path == "" {
			path = filepath.Join(SystemDir, "htmlrms.db")
		}
		if path != ":memory:" {
			dir, _ := resolveDir(filepath.Dir(path), o, logger)
			path = filepath.Join(dir, filepath.Base(path))
		}
		return sqlslot.Open(ctx, sqlslot.SQLite, path, o.slotName)
	case "postgres":
		if uri == "" {
			return nil, errors.New("postgres adapter requires a DSN")
		}
		return sqlslot.Open(ctx, sqlslot.Postgres, uri, o.slotName)
	case "s3":
		cfg, err := s3slot.ParseURI(uri)
		if err != nil {
			return nil, err
		}
		cfg.Region = o.s3.Region
		cfg.Endpoint = o.s3.Endpoint
		cfg.PathStyle = o.s3.PathStyle
		return s3slot.New(ctx, cfg, o.slotName)
	case "memory":
		return memory.NewSlot(nil), nil
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}
}

// resolveDir applies the dev sandbox to a local directory and reports whether
// the sandbox is in effect.
func resolveDir(path string, o *options, logger *slog.Logger) (string, bool) {
	devSafety := true
	if v, ok := o.config["dev_safety"].(bool); ok {
		devSafety = v
	}
	readOnly := o.flag("read_only")
	bypass := readOnly || !devSafety

	useTemp := o.flag("temp_dir") || (IsDevRun() && !bypass)
	resolved := ResolvePath(path, useTemp)

	if IsDevRun() && bypass && !readOnly {
		logger.Warn("running in UNSAFE mode (bypassing dev sandbox)", "path", resolved)
	}
	if useTemp && resolved != filepath.Clean(path) {
		logger.Warn("running in SAFE MODE (Dev/Test)", "original_path", path, "resolved_path", resolved)
	}
	return resolved, useTemp
}

func openFS(ctx context.Context, uri string, o *options, logger *slog.Logger) (core.Slot, error) {
	dir, useTemp := resolveDir(uri, o, logger)
	autoInit := o.flag("auto_init")

	versioning, explicit := o.config["versioning"].(bool)
	if !explicit {
		versioning = hasFile(dir, ".git") && git.IsInstalled()
		logger.Debug("versioning detected", "enabled", versioning, "path", dir)
	}

	slot := fs.NewSlot(fs.Config{
		Dir:        dir,
		Name:       o.slotName,
		Versioning: versioning,
		AutoInit:   autoInit,
		MustExist:  o.flag("must_exist") || (!autoInit && !useTemp),
		Logger:     logger,
	})
	if o.flag("read_only") {
		return slot, nil
	}
	if err := slot.Initialize(ctx); err != nil {
		return nil, err
	}
	return slot, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/showcase/internal/assets"
	"github.com/mesh-intelligence/showcase/internal/config"
	"github.com/mesh-intelligence/showcase/internal/distribute"
	"github.com/mesh-intelligence/showcase/internal/drafts"
	"github.com/mesh-intelligence/showcase/internal/ingest"
	"github.com/mesh-intelligence/showcase/internal/memory"
	"github.com/mesh-intelligence/showcase/internal/records"
	"github.com/mesh-intelligence/showcase/internal/registry"
	"github.com/mesh-intelligence/showcase/internal/reorder"
	"github.com/mesh-intelligence/showcase/internal/restapi"
	"github.com/mesh-intelligence/showcase/pkg/sqlite"
	"github.com/mesh-intelligence/showcase/pkg/types"
)

// app is the object graph behind every content command. The registry and
// the record store are built once here and injected into the components.
type app struct {
	logger *zap.Logger

	dataDir   string
	assetsDir string // set for the fs assets driver

	slots    types.PersistenceAPI
	drafts   types.DraftStore
	assets   types.AssetStore
	registry *registry.Registry
	records  *records.Store
	pipeline *ingest.Pipeline

	closers []func() error
}

// openApp attaches the configured backends and loads the registry. The
// caller must Close the app.
func (c *cli) openApp(ctx context.Context) (*app, error) {
	cfg := c.cfg
	logger := c.logger()
	a := &app{logger: logger}

	dataDir, err := c.resolveDataDir()
	if err != nil {
		return nil, systemErr(fmt.Errorf("resolve data dir: %w", err))
	}
	a.dataDir = dataDir

	switch cfg.Backend {
	case types.BackendSQLite:
		backend := sqlite.NewBackend()
		if err := backend.Attach(cfg.Storage(dataDir)); err != nil {
			return nil, systemErr(fmt.Errorf("attach backend: %w", err))
		}
		a.closers = append(a.closers, backend.Detach)
		a.slots, a.drafts = backend, backend
	case types.BackendHTTP:
		client, err := restapi.New(cfg.APIURL)
		if err != nil {
			return nil, err
		}
		a.slots, a.drafts = client, client
	case types.BackendMemory:
		a.slots, a.drafts = memory.NewSlots(), memory.NewDrafts()
	}

	if cfg.Drafts.Driver == config.DraftsRedis {
		rd, err := drafts.Connect(cfg.Drafts.RedisURL, cfg.Drafts.Prefix)
		if err != nil {
			a.Close()
			return nil, systemErr(err)
		}
		a.closers = append(a.closers, rd.Close)
		a.drafts = rd
	}

	if err := a.openAssets(cfg.Assets); err != nil {
		a.Close()
		return nil, err
	}

	a.registry = registry.New(a.drafts, registry.WithLogger(logger.Named("registry")))
	if err := a.registry.Load(ctx); err != nil {
		a.Close()
		return nil, systemErr(fmt.Errorf("load registry: %w", err))
	}
	a.records = records.New(a.slots, a.registry, logger.Named("records"))
	a.pipeline = ingest.New(a.assets, a.records, a.registry, logger.Named("ingest"))
	return a, nil
}

func (a *app) openAssets(cfg config.AssetsConfig) error {
	switch cfg.Driver {
	case config.AssetsS3:
		store, err := assets.NewS3(assets.S3Options{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			PathStyle:       cfg.S3.PathStyle,
			CustomDomain:    cfg.S3.CustomDomain,
			Prefix:          cfg.S3.Prefix,
		})
		if err != nil {
			return err
		}
		a.assets = store
	default:
		dir := cfg.Dir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(a.dataDir, dir)
		}
		a.assetsDir = dir
		a.assets = assets.NewFS(dir, cfg.BaseURL)
	}
	return nil
}

// reorderEngine returns a swap engine writing through the record store.
func (a *app) reorderEngine() *reorder.Engine {
	return reorder.New(a.records, a.registry, a.logger.Named("reorder"))
}

// fanOut returns a distribution fan-out driving the ingestion pipeline.
func (a *app) fanOut() *distribute.FanOut {
	return distribute.New(a.records, a.registry, a.pipeline, a.logger.Named("distribute"))
}

// Close releases backends in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// withApp opens the app, runs fn and closes the app. A close failure is
// reported when fn succeeded.
func (c *cli) withApp(ctx context.Context, fn func(*app) error) (err error) {
	a, err := c.openApp(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil && err == nil {
			err = systemErr(fmt.Errorf("close backend: %w", cerr))
		}
	}()
	return fn(a)
}

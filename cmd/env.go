package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/landsuit/internal/catalog"
	"github.com/sells-group/landsuit/internal/gdalio"
	"github.com/sells-group/landsuit/internal/pipeline"
	"github.com/sells-group/landsuit/internal/publish"
	"github.com/sells-group/landsuit/internal/resilience"
	"github.com/sells-group/landsuit/internal/store"
)

// pipelineEnv holds the store and the pipeline needed by the compute and
// serve commands.
type pipelineEnv struct {
	Store    store.Store // may be nil
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initPipeline sets up the store, catalog, GDAL adapters and publisher and
// builds the Pipeline. pub overrides the configured publisher when non-nil.
// Callers should defer env.Close().
func initPipeline(ctx context.Context, mode string, pub publish.Publisher) (*pipelineEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if st != nil {
		if err := st.Migrate(ctx); err != nil {
			_ = st.Close()
			return nil, eris.Wrap(err, "migrate store")
		}
	}

	cat, err := initCatalog()
	if err != nil {
		closeStore(st)
		return nil, err
	}

	if pub == nil {
		pub, err = initPublisher(ctx)
		if err != nil {
			closeStore(st)
			return nil, err
		}
	}

	retry := retryPolicy()
	source := gdalio.NewSource(cat, cfg.Source.TempDir, retry)

	p := pipeline.New(pipeline.Config{
		TempDir:        cfg.Source.TempDir,
		MaxConcurrency: cfg.Source.MaxConcurrency,
		TreeWorkers:    cfg.Source.TreeWorkers,
	}, source, gdalio.NewWriter(), pub, st)

	zap.L().Debug("pipeline initialized",
		zap.String("store", cfg.Store.Driver),
		zap.String("publish", cfg.Publish.Driver),
		zap.String("base_path", cat.BasePath),
	)
	return &pipelineEnv{Store: st, Pipeline: p}, nil
}

func initCatalog() (*catalog.Catalog, error) {
	if cfg.Source.CatalogPath == "" {
		return catalog.New(cfg.Source.BasePath), nil
	}
	return catalog.Load(cfg.Source.CatalogPath)
}

func initPublisher(ctx context.Context) (publish.Publisher, error) {
	switch cfg.Publish.Driver {
	case "local":
		return publish.NewLocal(cfg.Publish.LocalDir, cfg.Publish.BaseURL)
	case "s3":
		return publish.NewS3(ctx, publish.S3Config{
			Bucket: cfg.Publish.Bucket,
			Region: cfg.Publish.Region,
			Prefix: cfg.Publish.Prefix,
			Retry:  retryPolicy(),
		})
	default:
		return nil, eris.Errorf("unsupported publish driver: %s", cfg.Publish.Driver)
	}
}

func retryPolicy() resilience.RetryConfig {
	r := cfg.Retry
	return resilience.FromRetryConfig(r.MaxAttempts, r.InitialBackoffMs, r.MaxBackoffMs, r.Multiplier, r.JitterFraction)
}

func closeStore(st store.Store) {
	if st != nil {
		_ = st.Close()
	}
}

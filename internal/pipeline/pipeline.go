// Package pipeline runs suitability requests end to end: align and
// evaluate each chosen dataset, fold the eligibility grids, encode the
// result against the reference grid, write it and publish it.
package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/landsuit/internal/combine"
	"github.com/sells-group/landsuit/internal/eligibility"
	"github.com/sells-group/landsuit/internal/encode"
	"github.com/sells-group/landsuit/internal/model"
	"github.com/sells-group/landsuit/internal/publish"
	"github.com/sells-group/landsuit/internal/raster"
	"github.com/sells-group/landsuit/internal/store"
	"github.com/sells-group/landsuit/internal/target"
)

// Aligner crops a dataset to a target area and returns its grid.
type Aligner interface {
	Align(ctx context.Context, id string, area *target.Area) (raster.Grid, error)
}

// Config tunes a Pipeline.
type Config struct {
	// TempDir holds per-run scratch directories. Empty means os.TempDir().
	TempDir string
	// MaxConcurrency bounds concurrent align+evaluate tasks. Default 4.
	MaxConcurrency int
	// TreeWorkers bounds the parallel fold. Default 4.
	TreeWorkers int
}

// Pipeline wires the raster stages to their collaborators.
type Pipeline struct {
	cfg       Config
	aligner   Aligner
	writer    encode.Writer
	publisher publish.Publisher
	store     store.Store
}

// New creates a Pipeline. st may be nil, in which case no run ledger is
// kept.
func New(cfg Config, aligner Aligner, writer encode.Writer, publisher publish.Publisher, st store.Store) *Pipeline {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = 4
	}
	if cfg.TreeWorkers <= 0 {
		cfg.TreeWorkers = 4
	}
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	return &Pipeline{cfg: cfg, aligner: aligner, writer: writer, publisher: publisher, store: st}
}

// Output is the outcome of a published run.
type Output struct {
	URL     string        `json:"URL"`
	RunID   string        `json:"run_id,omitempty"`
	Summary model.Summary `json:"summary"`
}

// Result is a computed, not yet written, suitability raster.
type Result struct {
	Grid    raster.Binary
	Raster  *encode.Raster
	Summary model.Summary
}

// Run validates a request and executes it.
func (p *Pipeline) Run(ctx context.Context, req *model.Request) (*Output, error) {
	area, err := target.ParseGeoJSON(req.Target)
	if err != nil {
		return nil, err
	}
	specs, err := req.ChosenSpecs()
	if err != nil {
		return nil, err
	}
	return p.Execute(ctx, specs, area)
}

// Execute computes the suitability raster for specs over area, writes it
// under a per-run scratch directory and publishes it. Nothing is published
// when any stage fails.
func (p *Pipeline) Execute(ctx context.Context, specs []model.DatasetSpec, area *target.Area) (*Output, error) {
	if area == nil {
		return nil, eris.Wrap(model.ErrInvalidInput, "pipeline: no target area")
	}
	start := time.Now()

	ids := make([]string, len(specs))
	for i, s := range specs {
		ids[i] = s.ID
	}
	log := zap.L().With(zap.Strings("datasets", ids))

	var runID string
	if p.store != nil {
		run, err := p.store.CreateRun(ctx, ids)
		if err != nil {
			return nil, eris.Wrap(err, "pipeline: create run")
		}
		runID = run.ID
		log = log.With(zap.String("run_id", runID))
	}
	log.Info("pipeline: starting suitability run")

	out, err := p.execute(ctx, runID, specs, area)
	if err != nil {
		p.fail(ctx, runID, err)
		log.Error("pipeline: run failed", zap.Error(err))
		return nil, err
	}
	out.RunID = runID

	duration := time.Since(start).Milliseconds()
	if p.store != nil {
		res := &model.RunResult{URL: out.URL, Summary: out.Summary, DurationMs: duration}
		if err := p.store.CompleteRun(ctx, runID, res); err != nil {
			log.Warn("pipeline: failed to record result", zap.Error(err))
		}
	}

	log.Info("pipeline: run complete",
		zap.String("url", out.URL),
		zap.Int("suitable", out.Summary.Suitable),
		zap.Int("nodata", out.Summary.NoData),
		zap.Int64("duration_ms", duration),
	)
	return out, nil
}

func (p *Pipeline) execute(ctx context.Context, runID string, specs []model.DatasetSpec, area *target.Area) (*Output, error) {
	res, err := p.compute(ctx, runID, specs, area)
	if err != nil {
		return nil, err
	}

	workDir, err := os.MkdirTemp(p.cfg.TempDir, "landsuit-*")
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create scratch dir")
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	path := filepath.Join(workDir, uuid.NewString()+".tif")
	if err := p.writer.Write(path, res.Raster); err != nil {
		return nil, eris.Wrap(err, "pipeline: write raster")
	}

	url, err := p.publisher.Publish(ctx, path)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: publish raster")
	}
	return &Output{URL: url, Summary: res.Summary}, nil
}

// Compute aligns and evaluates every spec, folds the eligibility grids and
// encodes the result against the first spec's aligned grid.
func (p *Pipeline) Compute(ctx context.Context, specs []model.DatasetSpec, area *target.Area) (*Result, error) {
	return p.compute(ctx, "", specs, area)
}

func (p *Pipeline) compute(ctx context.Context, runID string, specs []model.DatasetSpec, area *target.Area) (*Result, error) {
	if len(specs) == 0 {
		return nil, eris.Wrap(model.ErrInvalidInput, "pipeline: no dataset chosen")
	}

	p.setStatus(ctx, runID, model.RunStatusAligning)
	layers, ref, err := p.evaluateAll(ctx, specs, area)
	if err != nil {
		return nil, err
	}

	p.setStatus(ctx, runID, model.RunStatusCombining)
	if _, err := combine.CheckAlignment(layers); err != nil {
		return nil, err
	}
	grid, err := combine.FoldTree(ctx, layers, p.cfg.TreeWorkers)
	if err != nil {
		return nil, err
	}

	p.setStatus(ctx, runID, model.RunStatusEncoding)
	r, err := encode.Encode(grid, ref)
	if err != nil {
		return nil, err
	}
	return &Result{Grid: grid, Raster: r, Summary: grid.Summary()}, nil
}

// evaluateAll runs align+evaluate per spec under a bounded errgroup. The
// first failure cancels the rest. Layers keep spec order and the reference
// is the first spec's GeoRef.
func (p *Pipeline) evaluateAll(ctx context.Context, specs []model.DatasetSpec, area *target.Area) ([]combine.Layer, raster.GeoRef, error) {
	layers := make([]combine.Layer, len(specs))
	refs := make([]raster.GeoRef, len(specs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(len(specs), p.cfg.MaxConcurrency))

	for i, spec := range specs {
		g.Go(func() error {
			grid, err := p.aligner.Align(gctx, spec.ID, area)
			if err != nil {
				return eris.Wrapf(err, "pipeline: align %s", spec.ID)
			}
			elig, err := eligibility.Evaluate(grid, spec)
			if err != nil {
				return eris.Wrapf(err, "pipeline: evaluate %s", spec.ID)
			}
			layers[i] = combine.Layer{DatasetID: spec.ID, Grid: elig}
			refs[i] = grid.Ref
			zap.L().Debug("pipeline: dataset evaluated",
				zap.String("dataset", spec.ID),
				zap.String("criterion", string(spec.Criterion.Kind())),
				zap.Stringer("shape", grid.Shape),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, raster.GeoRef{}, err
	}
	return layers, refs[0], nil
}

func (p *Pipeline) setStatus(ctx context.Context, runID string, status model.RunStatus) {
	if p.store == nil || runID == "" {
		return
	}
	if err := p.store.UpdateRunStatus(ctx, runID, status); err != nil {
		zap.L().Warn("pipeline: failed to update status", zap.String("run_id", runID), zap.Error(err))
	}
}

func (p *Pipeline) fail(ctx context.Context, runID string, cause error) {
	if p.store == nil || runID == "" {
		return
	}
	if err := p.store.FailRun(context.WithoutCancel(ctx), runID, cause); err != nil {
		zap.L().Warn("pipeline: failed to record failure", zap.String("run_id", runID), zap.Error(err))
	}
}

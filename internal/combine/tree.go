package combine

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/landsuit/internal/raster"
)

// FoldTree computes the same result as Fold with a pairwise reduction. Each
// level combines neighbouring grids concurrently, at most workers at a time
// (workers <= 0 means no limit).
func FoldTree(ctx context.Context, layers []Layer, workers int) (raster.Binary, error) {
	shape, err := CheckAlignment(layers)
	if err != nil {
		return raster.Binary{}, err
	}

	level := make([]raster.Binary, 0, len(layers)+1)
	level = append(level, raster.Ones(shape))
	for _, l := range layers {
		level = append(level, l.Grid)
	}

	for len(level) > 1 {
		if err := ctx.Err(); err != nil {
			return raster.Binary{}, eris.Wrap(err, "combine: tree fold")
		}
		next := make([]raster.Binary, (len(level)+1)/2)
		g, gctx := errgroup.WithContext(ctx)
		if workers > 0 {
			g.SetLimit(workers)
		}
		for i := 0; i+1 < len(level); i += 2 {
			a, b, slot := level[i], level[i+1], i/2
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				out, err := Combine(a, b)
				if err != nil {
					return err
				}
				next[slot] = out
				return nil
			})
		}
		if len(level)%2 == 1 {
			next[len(next)-1] = level[len(level)-1]
		}
		if err := g.Wait(); err != nil {
			return raster.Binary{}, eris.Wrap(err, "combine: tree level")
		}
		level = next
	}
	return level[0], nil
}

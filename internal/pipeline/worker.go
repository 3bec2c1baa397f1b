package pipeline

import (
	"context"
	"fmt"

	"github.com/dgallion1/msgexport/internal/render"
	"github.com/dgallion1/msgexport/internal/save"
	"golang.org/x/sync/errgroup"
)

// Request is one entry of a batch export.
type Request struct {
	Content  string           `json:"content"`
	Format   render.Format    `json:"format"`
	Template *render.Template `json:"template,omitempty"`
}

// RenderBatch renders every request with at most MaxConcurrentExports
// running at once. Results keep the request order and filenames carry the
// 1-based request position. The first failure cancels the rest.
func (o *Orchestrator) RenderBatch(ctx context.Context, reqs []Request) ([]*Result, error) {
	return o.batch(ctx, reqs, nil)
}

// ExportBatch renders and saves every request like RenderBatch. Documents
// that finished before a failure stay saved.
func (o *Orchestrator) ExportBatch(ctx context.Context, reqs []Request) ([]*Result, error) {
	if o.saver == nil {
		return nil, fmt.Errorf("export: no saver configured")
	}
	return o.batch(ctx, reqs, o.saver)
}

func (o *Orchestrator) batch(ctx context.Context, reqs []Request, saver save.Saver) ([]*Result, error) {
	if len(reqs) == 0 {
		return nil, ErrBatchEmpty
	}
	if o.cfg.MaxBatchSize > 0 && len(reqs) > o.cfg.MaxBatchSize {
		return nil, fmt.Errorf("%w: %d requests (max %d)", ErrBatchTooLarge, len(reqs), o.cfg.MaxBatchSize)
	}

	results := make([]*Result, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(o.cfg.MaxConcurrentExports, 1))
	for i, req := range reqs {
		g.Go(func() error {
			res, err := o.render(ctx, req.Content, req.Format, req.Template, i+1)
			if err == nil && saver != nil {
				err = o.store(ctx, saver, res)
			}
			if err != nil {
				return fmt.Errorf("request %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

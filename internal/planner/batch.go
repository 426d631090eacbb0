// internal/planner/batch.go
package planner

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"mcp-tpn-planner/internal/models"
	"mcp-tpn-planner/internal/patient"
)

// Request is one patient to resolve in a batch.
type Request struct {
	Profile   patient.Profile `json:"profile" yaml:"profile"`
	TotalDays int             `json:"total_days" yaml:"total_days"`
}

// ResolveBatch resolves independent patients concurrently. Results are in
// input order. The first failure cancels the remaining work and is returned.
func (r *Resolver) ResolveBatch(ctx context.Context, reqs []Request) ([]*models.Schedule, error) {
	out := make([]*models.Schedule, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sched, err := r.Resolve(ctx, req.Profile, req.TotalDays)
			if err != nil {
				return fmt.Errorf("patient %d (%s): %w", i+1, req.Profile.Name, err)
			}
			out[i] = sched
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	r.logger.Debug().Int("patients", len(reqs)).Msg("batch resolved")
	return out, nil
}

// Package writeback executes record-store writes with bounded concurrency.
// Individual failures are counted and sampled, never fatal to the batch.
package writeback

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nwcapparel/catalog-sync/pkg/caspio"
)

// Op is one pending write: an update when Where is set, an insert otherwise.
type Op struct {
	Table  string
	Where  string
	Fields map[string]any
	Label  string // identifies the op in logs and error samples
}

// Result aggregates the outcome of a batch.
type Result struct {
	Attempted   int
	Succeeded   int
	Failed      int
	Affected    int // rows matched by updates; zero matches still succeed
	ErrorSample []string
	Elapsed     time.Duration
}

const (
	defaultConcurrency = 5
	defaultPause       = 500 * time.Millisecond
	errorSampleLimit   = 10
	logDetailLimit     = 3
)

// Pool applies ops against the record store in fixed-size waves, pausing
// between waves to stay under the store's rate limit.
type Pool struct {
	api         caspio.API
	concurrency int
	pause       time.Duration
}

// NewPool creates a write pool over the given record-store client.
func NewPool(api caspio.API, concurrency int, pause time.Duration) *Pool {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	if pause < 0 {
		pause = defaultPause
	}
	return &Pool{api: api, concurrency: concurrency, pause: pause}
}

// Apply runs every op. The run completes even when ops fail; only context
// cancellation between waves stops it early.
func (p *Pool) Apply(ctx context.Context, ops []Op) Result {
	start := time.Now()
	res := Result{Attempted: len(ops)}
	var mu sync.Mutex

	for wave := 0; wave < len(ops); wave += p.concurrency {
		end := min(wave+p.concurrency, len(ops))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.concurrency)

		for _, op := range ops[wave:end] {
			g.Go(func() error {
				affected, err := p.applyOne(gctx, op)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					res.Failed++
					if len(res.ErrorSample) < errorSampleLimit {
						res.ErrorSample = append(res.ErrorSample, op.Label+": "+err.Error())
					}
					if res.Failed <= logDetailLimit {
						zap.L().Error("writeback op failed",
							zap.String("table", op.Table),
							zap.String("label", op.Label),
							zap.Error(err),
						)
					}
					return nil // isolated: never aborts the batch
				}
				res.Succeeded++
				res.Affected += affected
				return nil
			})
		}
		_ = g.Wait()

		if end < len(ops) && p.pause > 0 {
			timer := time.NewTimer(p.pause)
			select {
			case <-ctx.Done():
				timer.Stop()
				res.Elapsed = time.Since(start)
				return res
			case <-timer.C:
			}
		}
	}

	res.Elapsed = time.Since(start)
	zap.L().Info("writeback complete",
		zap.Int("attempted", res.Attempted),
		zap.Int("succeeded", res.Succeeded),
		zap.Int("failed", res.Failed),
		zap.Int("affected", res.Affected),
		zap.Duration("elapsed", res.Elapsed),
	)
	return res
}

func (p *Pool) applyOne(ctx context.Context, op Op) (int, error) {
	if op.Where != "" {
		return p.api.Update(ctx, op.Table, op.Where, op.Fields)
	}
	if err := p.api.Insert(ctx, op.Table, op.Fields); err != nil {
		return 0, err
	}
	return 1, nil
}

package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nwcapparel/catalog-sync/internal/audit"
	"github.com/nwcapparel/catalog-sync/internal/fetcher"
	"github.com/nwcapparel/catalog-sync/internal/model"
	"github.com/nwcapparel/catalog-sync/internal/report"
	"github.com/nwcapparel/catalog-sync/pkg/caspio"
)

// orderChunkDays is the window size for date-chunked order fetches. Windows
// overlap at their edges, so the dedupe by order id downstream is load-bearing.
const orderChunkDays = 30

// Audit classifies order-ownership conflicts over the trailing days window.
// reps filters which tracked reps are evaluated; empty means all rostered
// reps. The result includes the full conflict report.
func (p *Pipeline) Audit(ctx context.Context, reps []string, days int) (*report.Summary, *audit.Report, error) {
	start := time.Now()
	if days <= 0 {
		days = 90
	}
	runID, finish := p.record(ctx, model.RunKindAudit, false)

	rosters, catchAll, err := fetcher.LoadRosters(p.cfg.Rosters.Workbook)
	if err != nil {
		finish(model.RunStatusFailed, nil)
		return nil, nil, err
	}

	tracked := reps
	if len(tracked) == 0 {
		for _, r := range rosters {
			tracked = append(tracked, r.Owner)
		}
	}

	orders, err := p.fetchOrders(ctx, days)
	if err != nil {
		finish(model.RunStatusFailed, nil)
		return nil, nil, err
	}

	ownership := audit.BuildOwnership(rosters, catchAll)
	auditor := audit.NewAuditor(ownership, tracked)
	rep := auditor.Run(orders)

	conflicts := 0
	for _, owner := range tracked {
		conflicts += len(rep.Outbound[owner]) + len(rep.Inbound[owner])
	}
	sum := &report.Summary{
		RunID: runID,
		Kind:  model.RunKindAudit,
		SourceCounts: map[string]int{
			p.cfg.Tables.Orders: len(orders),
			"rosters":           len(rosters),
		},
		Counters: map[string]int{
			"orders":               rep.OrderCount,
			"dupes_dropped":        rep.DupesDropped,
			"reps_evaluated":       len(tracked),
			"conflict_customers":   conflicts,
			"unassigned_customers": len(rep.Unassigned),
		},
		Elapsed: time.Since(start),
	}

	body, err := sum.Marshal()
	if err != nil {
		finish(model.RunStatusFailed, nil)
		return nil, nil, err
	}
	finish(model.RunStatusComplete, body)
	return sum, rep, nil
}

// fetchOrders pulls the order stream in overlapping date-chunked windows.
// The store rejects unbounded reads on this table, hence the chunking.
func (p *Pipeline) fetchOrders(ctx context.Context, days int) ([]model.OrderRow, error) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -days)

	var windows [][2]time.Time
	for lo := from; lo.Before(now); lo = lo.AddDate(0, 0, orderChunkDays) {
		hi := lo.AddDate(0, 0, orderChunkDays)
		if hi.After(now) {
			hi = now
		}
		windows = append(windows, [2]time.Time{lo, hi})
	}

	var mu sync.Mutex
	var orders []model.OrderRow

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, w := range windows {
		g.Go(func() error {
			where := caspio.Where().
				After("date_OrderPlaced", w[0]).
				NotAfter("date_OrderPlaced", w[1]).
				String()
			recs, err := p.api.FetchAll(gctx, p.cfg.Tables.Orders, where)
			if err != nil {
				return eris.Wrapf(err, "pipeline: fetch orders %s..%s",
					w[0].Format("2006-01-02"), w[1].Format("2006-01-02"))
			}
			rows := make([]model.OrderRow, 0, len(recs))
			for _, r := range recs {
				rows = append(rows, model.OrderRowFromRecord(r))
			}
			mu.Lock()
			orders = append(orders, rows...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	p.log.Debug("orders fetched",
		zap.Int("windows", len(windows)),
		zap.Int("rows", len(orders)),
	)
	return orders, nil
}

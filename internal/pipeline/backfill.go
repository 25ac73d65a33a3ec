package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/nwcapparel/catalog-sync/internal/model"
	"github.com/nwcapparel/catalog-sync/internal/propagate"
	"github.com/nwcapparel/catalog-sync/internal/report"
	"github.com/nwcapparel/catalog-sync/internal/writeback"
)

// Backfill propagates known customer ids to rows missing one within a single
// table, grouping by normalized company name. An empty table name targets the
// backbone design list.
func (p *Pipeline) Backfill(ctx context.Context, table string, live bool) (*report.Summary, error) {
	start := time.Now()
	if table == "" {
		table = p.cfg.Tables.DesignList
	}
	runID, finish := p.record(ctx, model.RunKindBackfill, live)

	recs, err := p.api.FetchAll(ctx, table, "")
	if err != nil {
		finish(model.RunStatusFailed, nil)
		return nil, eris.Wrapf(err, "pipeline: fetch %s for backfill", table)
	}

	rows := make([]propagate.Row, 0, len(recs))
	for _, r := range recs {
		rec := model.Record(r)
		rows = append(rows, propagate.Row{
			CompanyName: rec.Str("CompanyName"),
			CustomerID:  rec.Int("ID_Customer"),
		})
	}

	plan := propagate.Build(propagate.Opts{Table: table}, rows)

	sum := &report.Summary{
		RunID:        runID,
		Kind:         model.RunKindBackfill,
		Live:         live,
		SourceCounts: map[string]int{table: len(rows)},
		Counters: map[string]int{
			"groups":          plan.Groups,
			"groups_fillable": plan.GroupsFillable,
			"rows_fillable":   plan.RowsFillable,
			"pending_ops":     len(plan.Ops),
		},
		PendingBySpelling: plan.PerSpelling,
	}

	if live {
		ops := make([]writeback.Op, 0, len(plan.Ops))
		for _, op := range plan.Ops {
			ops = append(ops, writeback.Op{
				Table:  op.Table,
				Where:  op.Where,
				Fields: op.Fields(),
				Label:  op.Spelling + " (" + string(op.Sentinel) + ")",
			})
		}
		res := p.pool.Apply(ctx, ops)
		// zero affected rows on a sentinel probe is expected, not a failure
		sum.Counters["ops_succeeded"] = res.Succeeded
		sum.Counters["ops_failed"] = res.Failed
		sum.Counters["rows_updated"] = res.Affected
		sum.Errors = res.ErrorSample
	} else {
		for _, op := range plan.Ops[:min(len(plan.Ops), pendingSampleLimit)] {
			sum.Pending = append(sum.Pending,
				fmt.Sprintf("%s (%s) -> %s=%d", op.Spelling, op.Sentinel, op.IDField, op.SetID))
		}
		p.log.Info("dry run, returning propagation preview",
			zap.String("table", table),
			zap.Int("pending_ops", len(plan.Ops)),
		)
	}

	sum.Elapsed = time.Since(start)
	body, err := sum.Marshal()
	if err != nil {
		finish(model.RunStatusFailed, nil)
		return nil, err
	}
	finish(model.RunStatusComplete, body)
	return sum, nil
}

package pipeline

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/nwcapparel/catalog-sync/internal/merge"
	"github.com/nwcapparel/catalog-sync/internal/model"
	"github.com/nwcapparel/catalog-sync/internal/report"
	"github.com/nwcapparel/catalog-sync/internal/writeback"
)

// Rebuild runs the full unified-catalog rebuild. Dry runs resolve everything
// and report what would be written; live runs clear the destination table and
// insert the merged records.
func (p *Pipeline) Rebuild(ctx context.Context, live bool) (*report.Summary, error) {
	start := time.Now()
	runID, finish := p.record(ctx, model.RunKindRebuild, live)

	srcs, err := p.fetchSources(ctx)
	if err != nil {
		finish(model.RunStatusFailed, nil)
		return nil, err
	}

	chains, err := merge.LoadChains(p.cfg.Merge.ChainsPath)
	if err != nil {
		finish(model.RunStatusFailed, nil)
		return nil, err
	}

	idents := p.buildIdentities(ctx, srcs)
	merger := merge.NewMerger(chains, idents)
	records, stats := merger.Run(merge.Input{
		Backbone:  srcs.backbone,
		Secondary: srcs.secondary,
	})

	sum := &report.Summary{
		RunID:        runID,
		Kind:         model.RunKindRebuild,
		Live:         live,
		SourceCounts: stats.SourceRows,
		Counters: map[string]int{
			"records":         stats.TotalRecords,
			"names_corrected": stats.NamesCorrected,
			"prefix_matches":  stats.PrefixMatches,
			"indirect_fills":  stats.IndirectCompany,
		},
		CoveragePct:  stats.CoveragePct,
		StillMissing: stats.StillMissing,
	}
	for src, n := range stats.IDsFrom {
		sum.Counters["ids_from_"+src] = n
	}
	for src, n := range stats.Appended {
		sum.Counters["appended_"+src] = n
	}

	if live {
		deleted, err := p.api.DeleteWhere(ctx, p.cfg.Tables.Unified, "DesignNumber IS NOT NULL")
		if err != nil {
			finish(model.RunStatusFailed, nil)
			return nil, err
		}
		sum.Counters["deleted"] = deleted

		ops := make([]writeback.Op, 0, len(records))
		for _, rec := range records {
			ops = append(ops, writeback.Op{
				Table:  p.cfg.Tables.Unified,
				Fields: rec.ToRecord(),
				Label:  insertLabel(rec),
			})
		}
		res := p.pool.Apply(ctx, ops)
		sum.Counters["inserted"] = res.Succeeded
		sum.Counters["insert_failed"] = res.Failed
		sum.Errors = res.ErrorSample
	} else {
		for _, rec := range records[:min(len(records), pendingSampleLimit)] {
			sum.Pending = append(sum.Pending, insertLabel(rec)+" "+rec.CompanyName)
		}
		p.log.Info("dry run, no writes performed",
			zap.Int("would_insert", len(records)),
			zap.String("destination", p.cfg.Tables.Unified),
		)
		sum.Counters["would_insert"] = len(records)
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

func insertLabel(rec model.UnifiedRecord) string {
	return "insert design " + strconv.Itoa(rec.DesignNumber) + "/" + strconv.Itoa(rec.VariantIndex)
}

// Package pipeline orchestrates the sync operations: fetching sources,
// building the identity map, and driving the merge, propagation, and audit
// engines against the record store.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nwcapparel/catalog-sync/internal/config"
	"github.com/nwcapparel/catalog-sync/internal/fetcher"
	"github.com/nwcapparel/catalog-sync/internal/model"
	"github.com/nwcapparel/catalog-sync/internal/resolve"
	"github.com/nwcapparel/catalog-sync/internal/store"
	"github.com/nwcapparel/catalog-sync/internal/writeback"
	"github.com/nwcapparel/catalog-sync/pkg/caspio"
)

// pendingSampleLimit bounds the dry-run operation sample carried in reports.
const pendingSampleLimit = 10

// Pipeline wires the engines to the record store and run history.
type Pipeline struct {
	api  caspio.API
	cfg  *config.Config
	pool *writeback.Pool
	runs store.Store
	log  *zap.Logger
}

// New creates a pipeline. runs may be nil, in which case history is not
// recorded.
func New(api caspio.API, cfg *config.Config, runs store.Store) *Pipeline {
	return &Pipeline{
		api:  api,
		cfg:  cfg,
		pool: writeback.NewPool(api, cfg.Writeback.Concurrency, time.Duration(cfg.Writeback.PauseMS)*time.Millisecond),
		runs: runs,
		log:  zap.L().With(zap.String("component", "pipeline")),
	}
}

// sources is the raw data for one rebuild run.
type sources struct {
	backbone  []model.SourceRow
	secondary map[string][]model.SourceRow
	customers []model.CustomerRow
}

// fetchSources pulls every rebuild input concurrently. A backbone failure or
// an empty backbone aborts the run; a secondary failure degrades to an empty
// dataset.
func (p *Pipeline) fetchSources(ctx context.Context) (*sources, error) {
	s := &sources{secondary: make(map[string][]model.SourceRow)}

	var mu sync.Mutex // guards s.secondary across the fan-out
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		recs, err := p.api.FetchAll(gctx, p.cfg.Tables.DesignList, "")
		if err != nil {
			return eris.Wrap(err, "pipeline: fetch backbone")
		}
		if len(recs) == 0 {
			return eris.Errorf("pipeline: backbone %s returned zero records, refusing full refresh", p.cfg.Tables.DesignList)
		}
		rows := make([]model.SourceRow, 0, len(recs))
		for _, r := range recs {
			rows = append(rows, model.DesignRowFromRecord(r))
		}
		s.backbone = rows
		return nil
	})

	g.Go(func() error {
		recs, err := p.api.FetchAll(gctx, p.cfg.Tables.Customers, "")
		if err != nil {
			return eris.Wrap(err, "pipeline: fetch customers")
		}
		rows := make([]model.CustomerRow, 0, len(recs))
		for _, r := range recs {
			rows = append(rows, model.CustomerRowFromRecord(r))
		}
		s.customers = rows
		return nil
	})

	type secondarySpec struct {
		name  string
		table string
		from  func(model.Record) model.SourceRow
	}
	specs := []secondarySpec{
		{model.SourceArtRequests, p.cfg.Tables.ArtRequests, func(r model.Record) model.SourceRow { return model.ArtRequestRowFromRecord(r) }},
		{model.SourceQuoteItems, p.cfg.Tables.QuoteItems, func(r model.Record) model.SourceRow { return model.QuoteItemRowFromRecord(r) }},
		{model.SourceLegacy, p.cfg.Tables.LegacyDesigns, func(r model.Record) model.SourceRow { return model.LegacyDesignRowFromRecord(r) }},
	}
	for _, spec := range specs {
		g.Go(func() error {
			recs, err := p.api.FetchAll(gctx, spec.table, "")
			if err != nil {
				// enrichment sources degrade to empty datasets
				p.log.Warn("secondary source fetch failed, continuing without it",
					zap.String("source", spec.name),
					zap.String("table", spec.table),
					zap.Error(err),
				)
				return nil
			}
			rows := make([]model.SourceRow, 0, len(recs))
			for _, r := range recs {
				rows = append(rows, spec.from(r))
			}
			mu.Lock()
			s.secondary[spec.name] = rows
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return s, nil
}

// buildIdentities assembles the ranked identity map: the authoritative
// mapping file first when configured, then the customer master, then the
// backbone's own filled rows.
func (p *Pipeline) buildIdentities(ctx context.Context, s *sources) *resolve.IdentityMap {
	b := resolve.NewBuilder()

	if loc := p.cfg.Mapping.Location; loc != "" {
		entries, err := fetcher.FetchMapping(ctx, loc)
		if err != nil {
			p.log.Warn("mapping file unavailable, continuing without it",
				zap.String("location", loc), zap.Error(err))
		} else {
			b.AddSource("mapping", entries)
		}
	}

	custEntries := make([]resolve.Entry, 0, len(s.customers))
	for _, c := range s.customers {
		custEntries = append(custEntries, resolve.Entry{
			CompanyName:  c.CompanyName,
			CustomerID:   c.IDCustomer,
			CustomerType: c.CustomerType,
		})
	}
	b.AddSource("customers", custEntries)

	var backboneEntries []resolve.Entry
	for _, row := range s.backbone {
		if row.CustomerID() != 0 {
			backboneEntries = append(backboneEntries, resolve.Entry{
				CompanyName: row.Field("CompanyName"),
				CustomerID:  row.CustomerID(),
			})
		}
	}
	b.AddSource(model.SourceDesignList, backboneEntries)

	m := b.Build()
	p.log.Info("identity map built", zap.Int("keys", m.Size()))
	return m
}

// record opens a run-history row. The returned func finalizes it; both are
// no-ops without a store.
func (p *Pipeline) record(ctx context.Context, kind string, live bool) (string, func(status model.RunStatus, report []byte)) {
	if p.runs == nil {
		return "", func(model.RunStatus, []byte) {}
	}
	run, err := p.runs.CreateRun(ctx, kind, live)
	if err != nil {
		p.log.Warn("run history unavailable", zap.Error(err))
		return "", func(model.RunStatus, []byte) {}
	}
	return run.ID, func(status model.RunStatus, report []byte) {
		if err := p.runs.CompleteRun(ctx, run.ID, status, report); err != nil {
			p.log.Warn("failed to record run completion", zap.String("run_id", run.ID), zap.Error(err))
		}
	}
}

package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/nwcapparel/catalog-sync/internal/pipeline"
	"github.com/nwcapparel/catalog-sync/internal/store"
	"github.com/nwcapparel/catalog-sync/pkg/caspio"
)

// initStore opens the configured run-history backend and applies migrations.
func initStore(ctx context.Context) (store.Store, error) {
	var st store.Store
	var err error
	switch cfg.Store.Driver {
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	case "sqlite", "":
		st, err = store.NewSQLite(cfg.Store.Path)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// initPipeline builds the pipeline over a real record-store client. The
// returned cleanup closes the run-history store.
func initPipeline(ctx context.Context) (*pipeline.Pipeline, func(), error) {
	api, err := caspio.NewClient(cfg.CaspioOptions())
	if err != nil {
		return nil, nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, nil, err
	}

	p := pipeline.New(api, cfg, st)
	return p, func() { st.Close() }, nil
}

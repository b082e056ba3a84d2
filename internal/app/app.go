// Package app wires the driven adapters into the services used by the CLI.
package app

import (
	"context"
	"fmt"

	"github.com/custodia-labs/ghscan/internal/adapters/driven/auth"
	"github.com/custodia-labs/ghscan/internal/adapters/driven/graphql"
	"github.com/custodia-labs/ghscan/internal/adapters/driven/querysource"
	"github.com/custodia-labs/ghscan/internal/adapters/driven/schema"
	"github.com/custodia-labs/ghscan/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ghscan/internal/core/domain"
	"github.com/custodia-labs/ghscan/internal/core/ports/driven"
	"github.com/custodia-labs/ghscan/internal/core/ports/driving"
	"github.com/custodia-labs/ghscan/internal/core/services"
	"github.com/custodia-labs/ghscan/internal/logger"
)

// NewScanner builds a scan service for settings.
//
// Offline scanners skip the schema so history commands work without network
// access. The token is only read on the first request. When settings name a
// database the returned close function releases it.
func NewScanner(ctx context.Context, settings domain.AppSettings, offline bool) (driving.ScanService, func() error, error) {
	closeFn := func() error { return nil }

	var store driven.ScanStore
	if settings.Database != "" {
		db, err := sqlite.NewStore(settings.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("open history: %w", err)
		}
		logger.Debug("Recording scans in %s", db.Path())
		store = db.ScanStore()
		closeFn = db.Close
	}

	var schemaSource driven.SchemaSource
	if !offline {
		schemaSource = schema.NewStore(settings.SchemaCache, settings.SchemaURL, nil)
	}
	compiler, err := graphql.NewCompilerFromSource(ctx, schemaSource)
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}
	if compiler.SchemaLess() {
		logger.Debug("No schema loaded; queries are parsed but not validated")
	}

	transport := graphql.NewHTTPTransport(settings.Endpoint, auth.NewEnvTokenProvider(settings.TokenEnv))
	sink := services.LogSink{}

	svc := services.NewScanService(
		querysource.New(settings.QueryDir),
		services.NewQueryCompiler(compiler, services.NewQueryRegistry()),
		services.NewQueryExecutor(transport, sink),
		sink,
		store,
	)
	return svc, closeFn, nil
}

// Package pg provides utilities for interacting with PostgreSQL using the
// pgx/v5 driver. It offers a thin abstraction around connection pooling,
// schema migrations and common error helpers so the flag engine can
// bootstrap a resilient database layer with only a few lines of code.
//
// # Architecture
//
// The package exposes three cooperating building blocks:
//
//   - Config - a declarative struct whose fields are populated from
//     environment variables via github.com/caarlos0/env. It controls
//     connection pool limits, health-check cadence and migration paths.
//
//   - Connect - opens a *pgxpool.Pool based on Config, retrying with
//     backoff until the database becomes available.
//
//   - Migrate - runs goose database migrations against the same connection
//     pool, guaranteeing the schema is up-to-date before the service starts
//     serving evaluations.
//
// # Usage
//
//	import (
//	    "context"
//	    "log/slog"
//
//	    "github.com/fluxori-systems/fluxori-sub012/pkg/config"
//	    "github.com/fluxori-systems/fluxori-sub012/pkg/pg"
//	)
//
//	func main() {
//	    var cfg pg.Config
//	    config.MustLoad(&cfg)
//
//	    ctx := context.Background()
//	    pool, err := pg.Connect(ctx, cfg)
//	    if err != nil {
//	        panic(err)
//	    }
//	    defer pool.Close()
//
//	    if err := pg.Migrate(ctx, pool, cfg, slog.Default()); err != nil {
//	        panic(err)
//	    }
//	}
//
// # Error Handling
//
// Convenience helpers such as [IsDuplicateKeyError] and [IsNotFoundError]
// unwrap errors returned by pgx and make error classification trivial
// inside business logic.
package pg

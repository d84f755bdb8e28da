// Package environment provides simple helpers to propagate the current
// deployment environment (development, staging, production, etc.) through
// context.Context and structured logs.
//
// Feature flags scope themselves to environments by name; code that
// evaluates flags can attach the process environment to a context once
// with WithContext and every evaluation downstream picks it up without
// explicit parameter passing. The convenience predicates IsDevelopment,
// IsStaging and IsProduction accept the common short aliases ("dev",
// "stage", "prod") as well.
//
// For structured logging the package provides LoggerExtractor which returns
// a slog.Attr containing the environment value so it can be injected into
// slog based loggers.
//
// # Usage
//
// Import the package:
//
//	import "github.com/fluxori-systems/fluxori-sub012/pkg/environment"
//
// Attach the environment and evaluate against it:
//
//	ctx := environment.WithContext(ctx, string(environment.Production))
//	result := svc.Evaluate(ctx, "new-checkout", feature.EvaluationContext{UserID: userID})
//
// # Error Handling
//
// All helpers are allocation-free and never return errors. Missing values
// simply result in the zero value ("").
package environment

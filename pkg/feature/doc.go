// Package feature provides a fail-safe feature flag evaluation engine.
//
// Flags are configuration units with a type that selects the evaluation
// rule: boolean on/off, deterministic percentage rollout, user targeting,
// organization targeting, or time-based scheduling. Every flag also carries
// a global kill switch (Enabled), optional environment scoping, and an
// optional schedule that gates any type.
//
// # Architecture
//
// The package is built around four core concepts:
//
// 1. FeatureFlag - The flag definition with its type-specific configuration
// 2. Store - Backend persistence (memory, MongoDB, PostgreSQL, Redis)
// 3. Cache - An in-memory snapshot refreshed wholesale on an interval
// 4. Service - Management operations, evaluation, audit, and subscriptions
//
// Evaluation is ordered and short-circuits: a missing flag, the kill
// switch, an environment mismatch, and the schedule are each checked
// before the type-specific rule runs. Evaluation never returns an error;
// failures degrade to the flag's default value (or false when even that
// is unavailable) with the Source field reporting which path was taken.
//
// # Usage
//
// Basic setup with an in-memory store:
//
//	store := feature.NewMemoryStore()
//	svc := feature.NewService(store)
//	if err := svc.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
//	defer svc.Close()
//
//	result := svc.Evaluate(ctx, "new-checkout", feature.EvaluationContext{
//		UserID:      "user-123",
//		Environment: "production",
//	})
//	if result.Enabled {
//		// Show the new checkout flow
//	}
//
// Percentage rollouts hash the flag key together with the strongest
// identifier in the context (user ID, then email, then organization ID)
// so a given user sees a stable decision across sessions and processes.
//
// Mutations (create, update, toggle, delete) validate first, persist,
// record an audit entry, refresh the cache entry, and then notify
// subscribers. Subscribers register interest in a set of flag keys and
// receive freshly evaluated values whenever any flag changes; a panicking
// callback is isolated and never disturbs other subscribers.
package feature

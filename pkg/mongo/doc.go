// Package mongo provides MongoDB connection management for the flag engine.
//
// It emphasizes operational reliability through environment-based
// configuration, retry logic for transient connection failures, and
// connection pooling defaults that work without manual tuning.
//
// # Usage
//
//	import (
//		"context"
//
//		"github.com/fluxori-systems/fluxori-sub012/pkg/config"
//		"github.com/fluxori-systems/fluxori-sub012/pkg/feature"
//		"github.com/fluxori-systems/fluxori-sub012/pkg/mongo"
//	)
//
//	func main() {
//		var cfg mongo.Config
//		config.MustLoad(&cfg)
//
//		db, err := mongo.NewWithDatabase(context.Background(), cfg, "flags")
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer db.Client().Disconnect(context.Background())
//
//		store := feature.NewMongoStore(db, "feature_flags")
//		_ = store
//	}
//
// # Configuration
//
// Configuration is entirely environment-driven to simplify deployment
// across development, staging, and production. Credentials stay out of
// config files and flow through environment variables or a secret manager.
//
// # Error Handling
//
// Connection failures are wrapped in ErrFailedToConnectToMongo; use
// errors.Is to detect them and implement fallback logic.
package mongo

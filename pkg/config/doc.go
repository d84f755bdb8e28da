// Package config provides a type-safe, generic and cached way to load
// application configuration from environment variables.
//
// It wraps `github.com/joho/godotenv` and `github.com/caarlos0/env/v11` to
// deliver a convenient API that:
//
//   - Loads values from one or multiple `.env` files (falling back to the
//     default `.env` in the current working directory).
//   - Parses the environment into any Go struct using field tags.
//   - Caches each successfully loaded configuration type so it is only
//     parsed once for the lifetime of the process.
//   - Exposes helpers that panic on failure (MustLoadEnv, MustLoad) for
//     configuration the application cannot start without.
//   - Allows explicit cache reset or forced reload, which is handy in tests.
//
// # Architecture
//
// Internally the package keeps a singleton cache that stores parsed struct
// copies keyed by their fully-qualified type name. Each key also holds a
// sync.Once guaranteeing the parsing work is executed at most once per
// configuration type even under concurrent access.
//
// # Usage
//
// Create a struct describing your configuration and annotate its fields
// with `env` tags:
//
//	type Config struct {
//	    RefreshInterval time.Duration `env:"FEATURE_FLAGS_REFRESH_INTERVAL" envDefault:"60s"`
//	    Environment     string        `env:"FEATURE_FLAGS_ENVIRONMENT"`
//	    DefinitionsFile string        `env:"FEATURE_FLAGS_FILE"`
//	}
//
// Then populate it:
//
//	import "github.com/fluxori-systems/fluxori-sub012/pkg/config"
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//	    log.Fatalf("parsing env: %v", err)
//	}
//
// Subsequent calls to config.Load for the same type are served from the
// in-memory cache without re-parsing.
//
// # Error Handling
//
// The package defines sentinel errors that can be compared with errors.Is:
//
//   - ErrParsingConfig - failed to parse env vars into the struct.
//   - ErrLoadingEnv - a .env file could not be read.
//   - ErrConfigNotLoaded - requested config type has not been loaded yet.
//   - ErrNilPointer - nil pointer passed to Load/MustLoad.
//
// # Testing Helpers
//
// Use ResetCache to clear the global cache between tests or
// ForceReloadConfig to reload a particular struct after the process
// environment changes.
package config

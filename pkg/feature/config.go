package feature

import "time"

// Config represents the engine configuration, loaded via pkg/config.
type Config struct {
	RefreshInterval time.Duration `env:"FEATURE_FLAGS_REFRESH_INTERVAL" envDefault:"60s"` // RefreshInterval is how often the cache is rebuilt from the store.
	Environment     string        `env:"FEATURE_FLAGS_ENVIRONMENT"`                       // Environment is the deployment environment tag used when the evaluation context carries none.
	DefinitionsFile string        `env:"FEATURE_FLAGS_FILE"`                              // DefinitionsFile optionally points at a YAML file of flag definitions used to seed the store.
}

// Package redis provides convenient helpers for connecting to a Redis
// server used as a feature flag backend.
//
// The package wraps the go-redis client and adds a robust Connect which
// retries the connection using the supplied configuration. Configuration is
// described by the Config struct whose fields can be populated from
// environment variables via github.com/caarlos0/env.
//
// # Usage
//
//	import (
//	    "github.com/fluxori-systems/fluxori-sub012/pkg/config"
//	    "github.com/fluxori-systems/fluxori-sub012/pkg/feature"
//	    "github.com/fluxori-systems/fluxori-sub012/pkg/redis"
//	)
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    // handle error, probably terminate the application
//	}
//	defer client.Close()
//
//	store := feature.NewRedisStore(client)
//
// # Errors
//
// The package defines sentinel errors (e.g. ErrRedisNotReady) that wrap the
// underlying go-redis errors using errors.Join, making them easy to compare
// and unwrap.
package redis

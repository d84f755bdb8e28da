package config

import (
	"errors"
	"fmt"

	"github.com/joho/godotenv"
)

// LoadEnv loads environment variables from the given .env files. With no
// arguments the default .env in the working directory is loaded. Files are
// applied in order and later files override earlier ones, so the most
// specific file should come last.
func LoadEnv(paths ...string) error {
	if err := godotenv.Overload(paths...); err != nil {
		return errors.Join(ErrLoadingEnv, err)
	}
	return nil
}

// MustLoadEnv works like LoadEnv but panics on failure.
func MustLoadEnv(paths ...string) {
	if err := LoadEnv(paths...); err != nil {
		panic(fmt.Sprintf("Failed to load env files: %v", err))
	}
}

// ResetCache clears all cached configuration values. Primarily useful in
// tests that mutate the process environment between loads.
func ResetCache() {
	globalCache.reset()
}

// ForceReloadConfig drops the cached value for the given configuration type
// and parses it again from the current environment.
func ForceReloadConfig[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	globalCache.invalidate(getTypeName[T]())
	return Load(v)
}

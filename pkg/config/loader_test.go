package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxori-systems/fluxori-sub012/pkg/config"
)

type EngineConfig struct {
	RefreshInterval string `env:"TEST_REFRESH_INTERVAL" envDefault:"60s"`
	Environment     string `env:"TEST_ENVIRONMENT"`
	DefinitionsFile string `env:"TEST_DEFINITIONS_FILE"`
}

type DefaultsConfig struct {
	TestString string `env:"TEST_STRING_DEFAULT" envDefault:"default_value"`
	TestInt    int    `env:"TEST_INT_DEFAULT" envDefault:"42"`
	TestBool   bool   `env:"TEST_BOOL_DEFAULT" envDefault:"true"`
}

type SingletonConfig struct {
	TestString string `env:"TEST_STRING_SINGLETON" envDefault:"default_value"`
}

type RequiredConfig struct {
	Required string `env:"REQUIRED_VALUE,required"`
}

func TestLoad_Success(t *testing.T) {
	t.Setenv("TEST_REFRESH_INTERVAL", "30s")
	t.Setenv("TEST_ENVIRONMENT", "staging")
	t.Setenv("TEST_DEFINITIONS_FILE", "flags.yaml")

	var cfg EngineConfig
	err := config.Load(&cfg)

	require.NoError(t, err)
	assert.Equal(t, "30s", cfg.RefreshInterval)
	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "flags.yaml", cfg.DefinitionsFile)
}

func TestLoad_DefaultValues(t *testing.T) {
	os.Unsetenv("TEST_STRING_DEFAULT")
	os.Unsetenv("TEST_INT_DEFAULT")
	os.Unsetenv("TEST_BOOL_DEFAULT")

	var cfg DefaultsConfig
	err := config.Load(&cfg)

	require.NoError(t, err)
	assert.Equal(t, "default_value", cfg.TestString)
	assert.Equal(t, 42, cfg.TestInt)
	assert.Equal(t, true, cfg.TestBool)
}

func TestLoad_MissingRequired(t *testing.T) {
	os.Unsetenv("REQUIRED_VALUE")

	var cfg RequiredConfig
	err := config.Load(&cfg)

	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrParsingConfig)
}

func TestLoad_Singleton(t *testing.T) {
	t.Setenv("TEST_STRING_SINGLETON", "first_value")

	var first SingletonConfig
	require.NoError(t, config.Load(&first))

	// Change the environment to verify caching behavior.
	t.Setenv("TEST_STRING_SINGLETON", "second_value")

	var second SingletonConfig
	require.NoError(t, config.Load(&second))

	assert.Equal(t, "first_value", second.TestString,
		"second load should be served from cache")
}

func TestLoad_NilPointer(t *testing.T) {
	var cfg *EngineConfig
	err := config.Load(cfg)

	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrNilPointer)
}

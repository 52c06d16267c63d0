package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/webseed/pkg/config"
)

type defaultsConfig struct {
	Str  string `env:"CFG_TEST_DEFAULT_STRING" envDefault:"default_value"`
	Int  int    `env:"CFG_TEST_DEFAULT_INT" envDefault:"42"`
	Bool bool   `env:"CFG_TEST_DEFAULT_BOOL" envDefault:"true"`
}

type parsedConfig struct {
	Str string `env:"CFG_TEST_PARSE_STRING"`
	Int int    `env:"CFG_TEST_PARSE_INT"`
}

type cachedConfig struct {
	Value string `env:"CFG_TEST_CACHED"`
}

type requiredConfig struct {
	Value string `env:"CFG_TEST_REQUIRED,required"`
}

type fileConfig struct {
	Str      string   `env:"CFG_TEST_FILE_STRING"`
	Int      int      `env:"CFG_TEST_FILE_INT"`
	List     []string `env:"CFG_TEST_FILE_LIST" envSeparator:","`
	Priority string   `env:"CFG_TEST_FILE_PRIORITY"`
}

func TestParse(t *testing.T) {
	t.Setenv("CFG_TEST_PARSE_STRING", "value")
	t.Setenv("CFG_TEST_PARSE_INT", "100")

	var cfg parsedConfig
	require.NoError(t, config.Parse(&cfg))
	assert.Equal(t, "value", cfg.Str)
	assert.Equal(t, 100, cfg.Int)

	t.Setenv("CFG_TEST_PARSE_STRING", "changed")
	require.NoError(t, config.Parse(&cfg))
	assert.Equal(t, "changed", cfg.Str, "Parse must not cache")
}

func TestParse_Defaults(t *testing.T) {
	os.Unsetenv("CFG_TEST_DEFAULT_STRING")
	os.Unsetenv("CFG_TEST_DEFAULT_INT")
	os.Unsetenv("CFG_TEST_DEFAULT_BOOL")

	var cfg defaultsConfig
	require.NoError(t, config.Parse(&cfg))
	assert.Equal(t, "default_value", cfg.Str)
	assert.Equal(t, 42, cfg.Int)
	assert.True(t, cfg.Bool)
}

func TestParse_MissingRequired(t *testing.T) {
	os.Unsetenv("CFG_TEST_REQUIRED")

	var cfg requiredConfig
	err := config.Parse(&cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrParsingConfig)
}

func TestParse_InvalidValue(t *testing.T) {
	t.Setenv("CFG_TEST_PARSE_INT", "not-a-number")

	var cfg parsedConfig
	err := config.Parse(&cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrParsingConfig)
}

func TestParse_NilPointer(t *testing.T) {
	var cfg *parsedConfig
	assert.ErrorIs(t, config.Parse(cfg), config.ErrNilPointer)
	assert.ErrorIs(t, config.Load(cfg), config.ErrNilPointer)
}

func TestLoad_CachesByType(t *testing.T) {
	config.ResetCache()
	t.Cleanup(config.ResetCache)
	t.Setenv("CFG_TEST_CACHED", "first")

	var first cachedConfig
	require.NoError(t, config.Load(&first))

	t.Setenv("CFG_TEST_CACHED", "second")

	var second cachedConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, "first", second.Value)

	config.ResetCache()

	var third cachedConfig
	require.NoError(t, config.Load(&third))
	assert.Equal(t, "second", third.Value)
}

func TestMustLoad_Panics(t *testing.T) {
	config.ResetCache()
	t.Cleanup(config.ResetCache)
	os.Unsetenv("CFG_TEST_REQUIRED")

	assert.Panics(t, func() {
		var cfg requiredConfig
		config.MustLoad(&cfg)
	})
}

func TestLoadEnv(t *testing.T) {
	for _, k := range []string{"CFG_TEST_FILE_STRING", "CFG_TEST_FILE_INT", "CFG_TEST_FILE_LIST"} {
		os.Unsetenv(k)
		t.Cleanup(func() { os.Unsetenv(k) })
	}
	t.Setenv("CFG_TEST_FILE_PRIORITY", "process value")

	require.NoError(t, config.LoadEnv("testdata/.env.test"))

	var cfg fileConfig
	require.NoError(t, config.Parse(&cfg))
	assert.Equal(t, "from_file", cfg.Str)
	assert.Equal(t, 1234, cfg.Int)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.List)
	assert.Equal(t, "process value", cfg.Priority, "process environment wins over file")
}

func TestLoadEnv_MissingFile(t *testing.T) {
	err := config.LoadEnv("testdata/does-not-exist.env")
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrLoadingEnvFile)

	assert.NoError(t, config.LoadEnv(), "missing default .env is ignored")
}

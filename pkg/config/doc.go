// Package config loads application configuration from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11:
//
//   - LoadEnv reads one or more .env files without overriding variables that
//     are already present in the process environment.
//   - Parse fills a tagged struct from the environment.
//   - Load does the same but caches the parsed value per type, so a
//     configuration is read once at startup and then handed around by value.
//
// # Usage
//
//	type Config struct {
//	    DBHost string `env:"DB_HOST,required"`
//	    DBPort int    `env:"DB_PORT" envDefault:"27017"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//	    log.Fatal(err)
//	}
//
// # Errors
//
//   - ErrParsingConfig  – env vars could not be parsed into the struct.
//   - ErrLoadingEnvFile – an explicitly named .env file could not be read.
//   - ErrNilPointer     – nil pointer passed to Load or Parse.
//
// ResetCache clears cached values between tests.
package config

package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads .env files, .env.local first so it wins over .env.
// godotenv.Load never overwrites variables already set, so real OS env
// always takes precedence. Returns the files that were found.
func LoadDotEnv() []string {
	var loaded []string
	for _, f := range []string{".env.local", ".env"} {
		if _, err := os.Stat(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	if len(loaded) > 0 {
		_ = godotenv.Load(loaded...)
	}
	return loaded
}

// Package env reads configuration from the process environment, falling back
// to a .env file in the working directory. Process variables always win.
package env

import (
	"os"
	"strings"
	"sync"

	cenv "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/amirrezaask/cachestore/errors"
)

// DotEnvPath is the file consulted for values missing from the process environment.
var DotEnvPath = ".env"

var (
	dotEnvOnce sync.Once
	dotEnvMap  map[string]string
)

func dotEnv() map[string]string {
	dotEnvOnce.Do(func() {
		m, err := godotenv.Read(DotEnvPath)
		if err != nil {
			m = map[string]string{}
		}
		dotEnvMap = m
	})
	return dotEnvMap
}

func environment() map[string]string {
	merged := map[string]string{}
	for k, v := range dotEnv() {
		merged[k] = v
	}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			merged[k] = v
		}
	}
	return merged
}

// Load fills target, a pointer to a struct carrying `env` tags, from the
// merged .env and process environment.
func Load(target any) error {
	err := cenv.ParseWithOptions(target, cenv.Options{
		Environment: environment(),
	})
	return errors.Wrap(err, "cannot load configuration into %T", target)
}

// Package config maps environment variables into the immutable runtime
// configuration passed to the core's constructors.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds everything the reading core needs from its host.
type Config struct {
	// Remote catalog service
	APIBaseURL string `env:"SCANFR_API_URL,required,notEmpty"`
	APIToken   string `env:"SCANFR_API_TOKEN"`

	// HTTPTimeout bounds every catalog and page request.
	HTTPTimeout time.Duration `env:"SCANFR_HTTP_TIMEOUT" envDefault:"30s"`

	// DataDir receives one directory per downloaded chapter.
	DataDir string `env:"SCANFR_DATA_DIR" envDefault:"data"`

	// DBPath locates the state database holding the download manifest
	// and the follow set.
	DBPath string `env:"SCANFR_DB_PATH" envDefault:"data/state.db"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	return env.ParseAs[Config]()
}

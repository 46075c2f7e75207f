package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is prepended to every settings variable, e.g. PATHVIZ_OPTIMIZER_URL.
const EnvPrefix = "PATHVIZ"

// Settings are process-level options read from the environment. Command-line
// flags override them.
type Settings struct {
	OptimizerURL   string        `envconfig:"OPTIMIZER_URL" default:"http://localhost:5000/api"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"2m"`
	ListenAddr     string        `envconfig:"LISTEN_ADDR" default:""`
	DBPath         string        `envconfig:"DB_PATH" default:"pathviz.db"`
	LogFile        string        `envconfig:"LOG_FILE" default:"pathviz.log"`
	TunablesPath   string        `envconfig:"TUNABLES" default:""`
}

// LoadSettings reads Settings from the environment.
func LoadSettings() (*Settings, error) {
	var s Settings
	if err := envconfig.Process(EnvPrefix, &s); err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if s.RequestTimeout < 0 {
		return nil, fmt.Errorf("load settings: negative request timeout %s", s.RequestTimeout)
	}
	return &s, nil
}

package configs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "SNACKHOUSE_"

type AppConfig struct {
	Name     string `koanf:"name"`
	Env      string `koanf:"env"`
	HTTPAddr string `koanf:"http_addr"`
}

type HTTPConfig struct {
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`
}

type PaymentConfig struct {
	// ProcessorURL is the external processor's webhook registration endpoint.
	ProcessorURL string `koanf:"processor_url"`
	// APIHost is the public host the processor calls back on.
	APIHost string `koanf:"api_host"`
	// Mode selects the gateway: "sync" charges inline, "deferred" confirms
	// through the notification path after a delay.
	Mode            string        `koanf:"mode"`
	ApprovalRate    float64       `koanf:"approval_rate"`
	DeferredDelay   time.Duration `koanf:"deferred_delay"`
	RegisterTimeout time.Duration `koanf:"register_timeout"`
}

type RedisConfig struct {
	// Addr empty disables the status cache.
	Addr      string        `koanf:"addr"`
	Password  string        `koanf:"password"`
	StatusTTL time.Duration `koanf:"status_ttl"`
}

type Config struct {
	App     AppConfig     `koanf:"app"`
	HTTP    HTTPConfig    `koanf:"http"`
	Payment PaymentConfig `koanf:"payment"`
	Redis   RedisConfig   `koanf:"redis"`
}

// Load layers base.yaml, an optional <envName>.yaml, and SNACKHOUSE_*
// environment variables (double underscore nests: SNACKHOUSE_APP__HTTP_ADDR).
func Load(dir, envName string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(filepath.Join(dir, "base.yaml")), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load base config: %w", err)
	}

	if envName != "" {
		overlay := filepath.Join(dir, envName+".yaml")
		if _, statErr := os.Stat(overlay); statErr == nil {
			if err := k.Load(file.Provider(overlay), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load %s config: %w", envName, err)
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("load env config: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.App.HTTPAddr == "" {
		return fmt.Errorf("config: app.http_addr is required")
	}
	if c.Payment.ProcessorURL == "" {
		return fmt.Errorf("config: payment.processor_url is required")
	}
	if c.Payment.APIHost == "" {
		return fmt.Errorf("config: payment.api_host is required")
	}
	switch c.Payment.Mode {
	case "sync", "deferred":
	default:
		return fmt.Errorf("config: payment.mode must be sync or deferred, got %q", c.Payment.Mode)
	}
	return nil
}

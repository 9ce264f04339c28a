package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v6"

	"github.com/infusioncare/appointment-optimizer/internal/core/domain"
	"github.com/infusioncare/appointment-optimizer/internal/utils"
)

type Environment string

const (
	EnvLocal      Environment = "local"
	EnvDev        Environment = "dev"
	EnvStage      Environment = "stage"
	EnvProduction Environment = "production"
)

type ConfigBasicClient struct {
	Username string
	Password string
}

type Config struct {
	App struct {
		Version  string      `env:"APP_VERSION" envDefault:"local"`
		Env      Environment `env:"APP_ENV" envDefault:"local"`
		Timezone string      `env:"APP_TIMEZONE" envDefault:"America/New_York"`
	}

	HTTP struct {
		Port string `env:"HTTP_SERVER_PORT" envDefault:"8080"`
		Host string `env:"HTTP_SERVER_HOST" envDefault:"localhost"`
	}

	Looker struct {
		URL          string `env:"LOOKER_URL"`
		ClientID     string `env:"LOOKER_CLIENT_ID"`
		ClientSecret string `env:"LOOKER_CLIENT_SECRET"`
		LookID       string `env:"LOOKER_LOOK_ID"`
	}

	Auth struct {
		BasicClientsString string `env:"AUTH_BASIC_CLIENTS" envDefault:"appointment_optimizer:appointment_optimizer"`
		BasicClients       []ConfigBasicClient
	}

	RabbitMQ struct {
		Enabled  bool   `env:"RABBITMQ_ENABLED"`
		URL      string `env:"RABBITMQ_URL"`
		Exchange string `env:"RABBITMQ_EXCHANGE" envDefault:"emr"`
		Queue    string `env:"RABBITMQ_QUEUE"`
		Bind     string `env:"RABBITMQ_BIND" envDefault:"*.*.appointment.*"`
	}

	Cache struct {
		Enabled       bool `env:"CACHE_ENABLED"`
		SnapshotsSize int  `env:"CACHE_SNAPSHOTS_SIZE" envDefault:"100"`
	}

	Optimizer struct {
		CapacityModel string `env:"OPTIMIZER_CAPACITY_MODEL" envDefault:"per-chair-fixed"`

		// 540 minutes is one chair, 08:00-17:00
		DailyCapacityMinutes  int    `env:"OPTIMIZER_DAILY_CAPACITY_MINUTES" envDefault:"540"`
		ClinicOpen            string `env:"OPTIMIZER_CLINIC_OPEN" envDefault:"08:00"`
		ClinicClose           string `env:"OPTIMIZER_CLINIC_CLOSE" envDefault:"17:00"`
		WindowStartOffsetDays int    `env:"OPTIMIZER_WINDOW_START_OFFSET_DAYS" envDefault:"1"`
		WindowLengthDays      int    `env:"OPTIMIZER_WINDOW_LENGTH_DAYS" envDefault:"30"`
		WindowOpenEnded       bool   `env:"OPTIMIZER_WINDOW_OPEN_ENDED"`
		TieBreak              string `env:"OPTIMIZER_TIE_BREAK" envDefault:"earliest-time"`
		ResultCount           int    `env:"OPTIMIZER_RESULT_COUNT" envDefault:"3"`

		// Filled from ClinicOpen/ClinicClose by NewConfig
		ClinicOpenMinutes  int
		ClinicCloseMinutes int
	}
}

func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Lowercase the environment for uniform comparisons
	cfg.App.Env = Environment(strings.ToLower(string(cfg.App.Env)))

	// Split the basic auth client pairs
	if cfg.Auth.BasicClients == nil {
		cfg.Auth.BasicClients = []ConfigBasicClient{}
	}
	clientPairs := strings.Split(cfg.Auth.BasicClientsString, ",")
	for _, pair := range clientPairs {
		parts := strings.Split(pair, ":")
		if len(parts) == 2 {
			cfg.Auth.BasicClients = append(cfg.Auth.BasicClients, ConfigBasicClient{
				Username: parts[0],
				Password: parts[1],
			})
		}
	}

	// Without RabbitMQ nothing invalidates cached snapshots, so the
	// cache stays off
	if !cfg.RabbitMQ.Enabled {
		cfg.Cache.Enabled = false
	}

	if err := cfg.parseClinicHours(); err != nil {
		return nil, err
	}
	if err := cfg.validateOptimizer(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) parseClinicHours() error {
	openMinutes, err := utils.ParseClockMinutes(c.Optimizer.ClinicOpen)
	if err != nil {
		return fmt.Errorf("config: invalid OPTIMIZER_CLINIC_OPEN: %w", err)
	}
	closeMinutes, err := utils.ParseClockMinutes(c.Optimizer.ClinicClose)
	if err != nil {
		return fmt.Errorf("config: invalid OPTIMIZER_CLINIC_CLOSE: %w", err)
	}

	c.Optimizer.ClinicOpenMinutes = openMinutes
	c.Optimizer.ClinicCloseMinutes = closeMinutes

	return nil
}

func (c *Config) validateOptimizer() error {
	if !domain.CapacityModel(c.Optimizer.CapacityModel).Valid() {
		return fmt.Errorf("config: unknown capacity model %q", c.Optimizer.CapacityModel)
	}
	if !domain.TieBreak(c.Optimizer.TieBreak).Valid() {
		return fmt.Errorf("config: unknown tie-break %q", c.Optimizer.TieBreak)
	}
	if c.Optimizer.DailyCapacityMinutes <= 0 {
		return fmt.Errorf("config: daily capacity must be positive, got %d", c.Optimizer.DailyCapacityMinutes)
	}
	if c.Optimizer.ClinicCloseMinutes <= c.Optimizer.ClinicOpenMinutes {
		return fmt.Errorf("config: clinic close %q is not after open %q", c.Optimizer.ClinicClose, c.Optimizer.ClinicOpen)
	}
	if c.Optimizer.WindowStartOffsetDays < 0 {
		return fmt.Errorf("config: window start offset must not be negative, got %d", c.Optimizer.WindowStartOffsetDays)
	}
	if c.Optimizer.WindowLengthDays < 0 {
		return fmt.Errorf("config: window length must not be negative, got %d", c.Optimizer.WindowLengthDays)
	}

	return nil
}

func (c *Config) IsLocal() bool {
	return c.App.Env == EnvLocal
}

func (c *Config) IsNotLocal() bool {
	return c.App.Env == EnvDev || c.App.Env == EnvStage || c.App.Env == EnvProduction
}

package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
	"hpblackjack-server/internal/util"
	"hpblackjack-server/pkg/blackjack"
)

// Store names the session store backend
type Store string

// store constants
const (
	StorePostgres Store = "postgres"
	StoreMemory   Store = "memory"
)

// Config provides configuration for the blackjack server
type Config struct {
	loaded         bool
	PGDSN          string `yaml:"pgDsn" envconfig:"pg_dsn"`
	MigrationsPath string `yaml:"migrationsPath" envconfig:"migrations_path"`
	Store          Store  `yaml:"store" envconfig:"store"`
	JWT            struct {
		PublicKey  string `yaml:"publicKey" envconfig:"public_key"`
		PrivateKey string `yaml:"privateKey" envconfig:"private_key"`
	} `yaml:"jwt"`
	Log struct {
		Level             string `yaml:"level" envconfig:"level"`
		DisableAccessLogs bool   `yaml:"disableAccessLogs" envconfig:"disable_access_logs"`
	} `yaml:"log"`
	Game struct {
		StartingHP         int                  `yaml:"startingHp" envconfig:"starting_hp"`
		ShoePolicy         blackjack.ShoePolicy `yaml:"shoePolicy" envconfig:"shoe_policy"`
		ReshuffleThreshold int                  `yaml:"reshuffleThreshold" envconfig:"reshuffle_threshold"`
		MaxBet             int                  `yaml:"maxBet" envconfig:"max_bet"`
	} `yaml:"game"`
}

// DefaultConfig returns the configuration used when nothing is overridden
func DefaultConfig() Config {
	rules := blackjack.DefaultRules()

	var cfg Config
	cfg.PGDSN = "postgres://postgres@localhost:5432/postgres?sslmode=disable"
	cfg.MigrationsPath = "./sql"
	cfg.Store = StorePostgres
	cfg.JWT.PublicKey = ".keys/public.pem"
	cfg.JWT.PrivateKey = ".keys/private.key"
	cfg.Log.Level = "info"
	cfg.Game.StartingHP = 100
	cfg.Game.ShoePolicy = rules.ShoePolicy
	cfg.Game.ReshuffleThreshold = rules.ReshuffleThreshold
	cfg.Game.MaxBet = rules.MaxBet
	return cfg
}

// Rules returns the table rules described by the game section
func (c Config) Rules() blackjack.Rules {
	rules := blackjack.DefaultRules()
	rules.ShoePolicy = c.Game.ShoePolicy
	rules.ReshuffleThreshold = c.Game.ReshuffleThreshold
	rules.MaxBet = c.Game.MaxBet
	return rules
}

// Validate checks values that would otherwise fail at runtime
func (c Config) Validate() error {
	switch c.Store {
	case StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("unknown store: %s", c.Store)
	}

	if c.Game.StartingHP < 1 {
		return errors.New("starting HP must be at least 1")
	}

	return c.Rules().Validate()
}

var config Config

// Instance returns a singleton instance
// If the config hasn't been loaded, it will be loaded
func Instance() Config {
	if !config.loaded {
		if err := Load(); err != nil {
			panic(err)
		}
	}

	return config
}

// Load will load the configuration
// A missing config file is not an error, the defaults are used instead.
func Load() error {
	cfg := DefaultConfig()

	configFile := util.Getenv("HPBJ_CONFIG_FILE", "config.yaml")
	file, err := os.Open(configFile)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	if file != nil {
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
			return fmt.Errorf("could not decode %s: %w", configFile, err)
		}
	}

	if err := envconfig.Process("hpbj", &cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	cfg.loaded = true
	config = cfg
	return nil
}

// Package config loads the bot configuration from the environment, after an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	ErrNoPrefixes  = errors.New("COMMAND_PREFIXES is empty")
	ErrEmptyPrefix = errors.New("COMMAND_PREFIXES contains an empty prefix")
)

type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,required,notEmpty"`

	// Prefixes are tried in order; put longer prefixes sharing a start first.
	Prefixes         []string `env:"COMMAND_PREFIXES" envDefault:"!" envSeparator:","`
	MentionPrefix    bool     `env:"MENTION_PREFIX" envDefault:"true"`
	IgnoreSelf       bool     `env:"IGNORE_SELF" envDefault:"true"`
	RegisterCommands bool     `env:"REGISTER_COMMANDS" envDefault:"true"`
	// CommandsGuildID scopes the registered commands to one guild. Empty
	// registers them globally.
	CommandsGuildID string `env:"COMMANDS_GUILD_ID"`

	DefaultLocale string `env:"DEFAULT_LOCALE" envDefault:"en-US"`
	// LocalesDir holds .lang files that add locales or override shipped keys.
	LocalesDir string `env:"LOCALES_DIR"`
	Environment   string `env:"ENVIRONMENT" envDefault:"production"`

	Log Log `envPrefix:"LOG_"`
}

type Log struct {
	Level      string `env:"LEVEL" envDefault:"info"`
	Dir        string `env:"DIR"`
	MaxSizeMB  int    `env:"MAX_SIZE_MB" envDefault:"50"`
	MaxBackups int    `env:"MAX_BACKUPS" envDefault:"5"`
	MaxAgeDays int    `env:"MAX_AGE_DAYS" envDefault:"28"`
	Compress   bool   `env:"COMPRESS" envDefault:"true"`
	NoColor    bool   `env:"NO_COLOR"`
}

// Load reads the given .env files, or .env when none are given, then parses
// the environment. A missing .env file is not an error; dotenv reports
// whether one was read. Variables already set take precedence over the file.
func Load(files ...string) (cfg *Config, dotenv bool, err error) {
	dotenv = godotenv.Load(files...) == nil

	cfg = &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, dotenv, fmt.Errorf("parse env: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, dotenv, err
	}
	return cfg, dotenv, nil
}

func (c *Config) normalize() {
	for i, p := range c.Prefixes {
		// Only leading spaces go, a prefix may end with one.
		c.Prefixes[i] = strings.TrimLeft(p, " ")
	}
	c.CommandsGuildID = strings.TrimSpace(c.CommandsGuildID)
	c.LocalesDir = strings.TrimSpace(c.LocalesDir)
}

func (c *Config) Validate() error {
	if len(c.Prefixes) == 0 && !c.MentionPrefix {
		return ErrNoPrefixes
	}
	for _, p := range c.Prefixes {
		if p == "" {
			return ErrEmptyPrefix
		}
	}
	return nil
}

// IsDevelopment reports whether the bot runs outside production.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development") || strings.EqualFold(c.Environment, "dev")
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"github.com/zephyrtronium/a2/command"
)

// Load loads the bot's configuration from TOML. Environment variable
// references in strings are expanded, defaults are filled in, and the result
// is validated.
func Load(ctx context.Context, r io.Reader) (*Config, *toml.MetaData, error) {
	var cfg Config
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("couldn't decode config: %w", err)
	}
	expandcfg(&cfg, os.Getenv)
	defaults(&cfg)
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, &md, nil
}

// loadEnv loads environment variables from dotenv files. Variables already
// set in the environment take precedence.
func loadEnv(files ...string) error {
	if len(files) == 0 {
		return nil
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("couldn't load env file: %w", err)
	}
	return nil
}

// Config is the marshaled structure of the bot's configuration.
type Config struct {
	// Discord is the configuration for connecting to Discord.
	Discord DiscordCfg `toml:"discord"`
	// Weather is the configuration of the weather plugin and its client.
	Weather WeatherCfg `toml:"weather"`
	// Fun is the configuration of the fun plugin.
	Fun FunCfg `toml:"fun"`
	// HTTP is the configuration of the metrics and API server.
	HTTP HTTPCfg `toml:"http"`
}

// DiscordCfg is the configuration for connecting to Discord.
type DiscordCfg struct {
	// Token is the bot token.
	Token string `toml:"token" validate:"required"`
	// Prefix is the string which starts commands. Mentioning the bot at the
	// start of a message also works. Defaults to $.
	Prefix string `toml:"prefix"`
	// Presence is the bot's listening status.
	Presence string `toml:"presence"`
	// Rate is the rate limit for commands in each channel.
	Rate Rate `toml:"rate"`
	// Privileges is the user access controls.
	Privileges []Privilege `toml:"privileges" validate:"dive"`
}

type Privilege struct {
	// ID is the user ID.
	ID string `toml:"id" validate:"required,number"`
	// Name is a note about who the user is. It is only used for logging.
	Name string `toml:"name"`
	// Level is the access level granted to the user.
	// Valid values are the empty string as the default capability,
	// "ignore" to disable access to all commands,
	// or "owner" to enable access to administrative commands.
	Level string `toml:"level" validate:"omitempty,oneof=ignore owner"`
}

// WeatherCfg is the configuration of weather lookups.
type WeatherCfg struct {
	// DefaultUnit is the temperature unit used when a command doesn't name
	// one. Defaults to c.
	DefaultUnit string `toml:"default_unit" validate:"oneof=c C f F"`
	// Endpoint is the URL of the YQL service.
	Endpoint string `toml:"endpoint" validate:"omitempty,url"`
	// Timeout is the time limit on each lookup in seconds.
	Timeout float64 `toml:"timeout" validate:"gte=0"`
	// Rate is the global rate limit on lookups.
	Rate Rate `toml:"rate"`
}

// FunCfg is the configuration of the fun plugin.
type FunCfg struct {
	// KeepEcho leaves echo invocations in place instead of deleting them.
	KeepEcho bool `toml:"keep_echo"`
}

// HTTPCfg is the configuration of the HTTP server.
type HTTPCfg struct {
	// Listen is the address on which to serve. If empty, no server runs.
	Listen string `toml:"listen" validate:"omitempty,hostname_port"`
}

// Rate is a rate limit configuration.
type Rate struct {
	// Every is the number of seconds over which Num events are allowed.
	Every float64 `toml:"every" validate:"gte=0"`
	Num   int     `toml:"num" validate:"gte=0"`
}

// Limiter creates a rate limiter. A zero rate is unlimited.
func (r Rate) Limiter() *rate.Limiter {
	if r.Every == 0 || r.Num == 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(fseconds(r.Every/float64(r.Num))), r.Num)
}

// levels resolves configured privileges to command levels by user ID.
func levels(privs []Privilege) (map[string]command.Level, error) {
	r := make(map[string]command.Level, len(privs))
	for _, p := range privs {
		l, err := command.ParseLevel(p.Level)
		if err != nil {
			return nil, fmt.Errorf("couldn't use privileges for %s (%s): %w", p.ID, p.Name, err)
		}
		r[p.ID] = l
	}
	return r, nil
}

func fseconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func defaults(cfg *Config) {
	if cfg.Discord.Prefix == "" {
		cfg.Discord.Prefix = "$"
	}
	if cfg.Weather.DefaultUnit == "" {
		cfg.Weather.DefaultUnit = "c"
	}
	cfg.Weather.DefaultUnit = strings.ToLower(cfg.Weather.DefaultUnit)
	if cfg.Weather.Timeout == 0 {
		cfg.Weather.Timeout = 10
	}
}

func expandcfg(cfg *Config, expand func(s string) string) {
	fields := []*string{
		&cfg.Discord.Token,
		&cfg.Discord.Prefix,
		&cfg.Discord.Presence,
		&cfg.Weather.DefaultUnit,
		&cfg.Weather.Endpoint,
		&cfg.HTTP.Listen,
	}
	for _, f := range fields {
		*f = os.Expand(*f, expand)
	}
	for i := range cfg.Discord.Privileges {
		p := &cfg.Discord.Privileges[i]
		p.ID = os.Expand(p.ID, expand)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"

	"github.com/zephyrtronium/a2/message"
	"github.com/zephyrtronium/a2/metrics"
	"github.com/zephyrtronium/a2/weather"
)

var app = cli.Command{
	Name:  "a2",
	Usage: "Discord command bot",

	Flags: []cli.Flag{
		&flagConfig,
		&flagEnv,
		&flagLog,
		&flagLogFormat,
	},
	Commands: []*cli.Command{
		{
			Name:      "weather",
			Usage:     "Look up the weather without connecting to Discord",
			ArgsUsage: "<location>",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "forecast",
					Usage: "Show the forecast instead of current conditions",
				},
				&cli.StringFlag{
					Name:  "unit",
					Usage: "Temperature unit, c or f (default from config)",
					Action: func(ctx context.Context, cmd *cli.Command, s string) error {
						_, err := weather.ParseUnit(s)
						return err
					},
				},
			},
			Action: cliWeather,
		},
	},
	Action: cliRun,

	Authors: []any{
		"Branden J Brown  @zephyrtronium",
	},
	Copyright: "Copyright 2024 Branden J Brown",
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	go func() {
		<-ctx.Done()
		stop()
	}()
	err := app.Run(ctx, os.Args)
	if err != nil {
		fmt.Println(err)
	}
}

// config loads the configuration named by the command's flags.
func config(ctx context.Context, cmd *cli.Command) (*Config, error) {
	if f := cmd.String("env"); f != "" {
		if err := loadEnv(f); err != nil {
			return nil, err
		}
	}
	r, err := os.Open(cmd.String("config"))
	if err != nil {
		return nil, fmt.Errorf("couldn't open config file: %w", err)
	}
	defer r.Close()
	cfg, _, err := Load(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("couldn't load config: %w", err)
	}
	return cfg, nil
}

func cliRun(ctx context.Context, cmd *cli.Command) error {
	slog.SetDefault(loggerFromFlags(cmd))
	cfg, err := config(ctx, cmd)
	if err != nil {
		return err
	}
	robo, err := New(cfg, newMetrics())
	if err != nil {
		return err
	}
	return robo.Run(ctx, cfg.Discord.Token, cfg.HTTP.Listen)
}

func cliWeather(ctx context.Context, cmd *cli.Command) error {
	slog.SetDefault(loggerFromFlags(cmd))
	cfg, err := config(ctx, cmd)
	if err != nil {
		return err
	}
	loc := strings.Join(cmd.Args().Slice(), " ")
	if loc == "" {
		return errors.New("no location")
	}
	u := cfg.Weather.DefaultUnit
	if s := cmd.String("unit"); s != "" {
		u = s
	}
	r, err := newWeather(cfg.Weather).Lookup(ctx, loc, weather.Unit(u))
	if err != nil {
		return err
	}
	format := weather.Conditions
	if cmd.Bool("forecast") {
		format = weather.Forecast
	}
	e, err := format(r)
	if err != nil {
		return fmt.Errorf("couldn't format weather for %q: %w", loc, err)
	}
	printEmbed(os.Stdout, e)
	return nil
}

// printEmbed writes an embed as plain text.
func printEmbed(w io.Writer, e *message.Embed) {
	fmt.Fprintln(w, e.Title)
	if e.URL != "" {
		fmt.Fprintln(w, e.URL)
	}
	if e.Description != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, e.Description)
	}
	for _, f := range e.Fields {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s\n%s\n", f.Name, f.Value)
	}
}

var (
	flagConfig = cli.StringFlag{
		Name:       "config",
		Required:   true,
		Usage:      "TOML config file",
		Persistent: true,
		Action: func(ctx context.Context, cmd *cli.Command, s string) error {
			i, err := os.Stat(s)
			if err != nil {
				return err
			}
			if !i.Mode().IsRegular() {
				return errors.New("config must be a regular file")
			}
			return nil
		},
	}

	flagEnv = cli.StringFlag{
		Name:       "env",
		Usage:      "Dotenv file to load before expanding the config",
		Persistent: true,
	}

	flagLog = cli.StringFlag{
		Name:       "log",
		Usage:      "Logging level, one of debug, info, warn, error",
		Value:      "info",
		Persistent: true,
		Action: func(ctx context.Context, c *cli.Command, s string) error {
			var l slog.Level
			return l.UnmarshalText([]byte(s))
		},
	}

	flagLogFormat = cli.StringFlag{
		Name:       "log-format",
		Usage:      "Logging format, either text or json",
		Value:      "text",
		Persistent: true,
		Action: func(ctx context.Context, c *cli.Command, s string) error {
			switch strings.ToLower(s) {
			case "text", "json":
				return nil
			default:
				return errors.New("unknown logging format")
			}
		},
	}
)

func loggerFromFlags(cmd *cli.Command) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(cmd.String("log"))); err != nil {
		panic(err)
	}
	var h slog.Handler
	switch strings.ToLower(cmd.String("log-format")) {
	case "text":
		h = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})
	case "json":
		h = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: l})
	}
	return slog.New(h)
}

// metrics configuration
func newMetrics() *metrics.Metrics {
	return &metrics.Metrics{
		CommandCount: metrics.NewPromCounterVec(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "a2",
					Subsystem: "commands",
					Name:      "invocations",
					Help:      "Number of command invocations.",
				},
				[]string{"command"},
			),
		),
		CommandLatency: metrics.NewPromObserverVec(
			prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Buckets:   []float64{0.01, 0.05, 0.1, 0.2, 0.5, 1, 5, 10},
					Namespace: "a2",
					Subsystem: "commands",
					Name:      "latency",
					Help:      "How long commands take to handle in seconds",
				},
				[]string{"command"},
			),
		),
		RateLimitedCount: metrics.NewPromCounter(
			prometheus.NewCounter(
				prometheus.CounterOpts{
					Namespace: "a2",
					Subsystem: "commands",
					Name:      "rate_limited",
					Help:      "Number of command invocations dropped by channel rate limits.",
				},
			),
		),
		WeatherLatency: metrics.NewPromObserverVec(
			prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Buckets:   []float64{0.05, 0.1, 0.2, 0.5, 1, 2, 5, 10, 30},
					Namespace: "a2",
					Subsystem: "weather",
					Name:      "lookup_latency",
					Help:      "How long weather lookups take in seconds",
				},
				[]string{"outcome"},
			),
		),
		ReloadCount: metrics.NewPromCounterVec(
			prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "a2",
					Subsystem: "plugins",
					Name:      "reloads",
					Help:      "Number of successful plugin reloads.",
				},
				[]string{"plugin"},
			),
		),
	}
}

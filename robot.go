package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zephyrtronium/a2/channel"
	"github.com/zephyrtronium/a2/command"
	"github.com/zephyrtronium/a2/metrics"
	"github.com/zephyrtronium/a2/plugins/core"
	"github.com/zephyrtronium/a2/plugins/fun"
	"github.com/zephyrtronium/a2/plugins/util"
	weatherplugin "github.com/zephyrtronium/a2/plugins/weather"
	"github.com/zephyrtronium/a2/syncmap"
	"github.com/zephyrtronium/a2/weather"
)

// Robot is the bot.
type Robot struct {
	// robo is the state visible to commands.
	robo *command.Robot
	// plugins is the set of plugins to register, in order.
	plugins []command.Plugin
	// prefix starts commands.
	prefix string
	// levels is user privileges by user ID.
	levels map[string]command.Level
	// rate is the configuration for per-channel rate limits.
	rate Rate
	// channels is the channels in which the bot has seen commands,
	// created lazily.
	channels *syncmap.Map[string, *channel.Channel]
	// metrics is the bot's metrics.
	metrics *metrics.Metrics
}

// New creates a bot from its configuration.
func New(cfg *Config, m *metrics.Metrics) (*Robot, error) {
	lv, err := levels(cfg.Discord.Privileges)
	if err != nil {
		return nil, err
	}
	robo := &Robot{
		robo: &command.Robot{
			Log:     slog.Default(),
			Plugins: new(command.Registry),
			Metrics: m,
		},
		prefix:   cfg.Discord.Prefix,
		levels:   lv,
		rate:     cfg.Discord.Rate,
		channels: syncmap.New[string, *channel.Channel](),
		metrics:  m,
	}
	client := newWeather(cfg.Weather)
	robo.plugins = []command.Plugin{
		core.New(cfg.Discord.Presence),
		fun.New(cfg.Fun.KeepEcho),
		util.New(nil),
		weatherplugin.New(client, weatherplugin.Config{DefaultUnit: cfg.Weather.DefaultUnit}),
	}
	return robo, nil
}

// newWeather creates the weather client from its configuration.
func newWeather(cfg WeatherCfg) *weather.Client {
	hc := &http.Client{Timeout: fseconds(cfg.Timeout)}
	return weather.NewClient(hc, cfg.Endpoint, cfg.Rate.Limiter())
}

// Run loads plugins, connects to Discord, and serves the HTTP API until ctx
// is canceled or a fatal error occurs.
func (robo *Robot) Run(ctx context.Context, token, listen string) error {
	if err := robo.robo.Plugins.Register(ctx, robo.robo, robo.plugins...); err != nil {
		return err
	}
	session, err := robo.discord(ctx, token)
	if err != nil {
		return err
	}
	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := session.Open(); err != nil {
			return fmt.Errorf("couldn't connect to Discord: %w", err)
		}
		slog.InfoContext(ctx, "connected to Discord")
		<-ctx.Done()
		return session.Close()
	})
	if listen != "" {
		group.Go(func() error {
			return robo.api(ctx, listen, http.NewServeMux(), robo.metrics.Collectors())
		})
	}
	err = group.Wait()
	// Give plugins a chance to clean up even though the main context is done.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, p := range robo.robo.Plugins.Plugins() {
		if err := p.Unload(ctx, robo.robo); err != nil {
			slog.ErrorContext(ctx, "couldn't unload plugin", slog.String("plugin", p.Name()), slog.Any("err", err))
		}
	}
	return err
}

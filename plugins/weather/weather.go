// Package weather provides weather report commands.
package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/zephyrtronium/a2/command"
	"github.com/zephyrtronium/a2/message"
	wx "github.com/zephyrtronium/a2/weather"
)

// Lookuper looks up weather reports.
type Lookuper interface {
	Lookup(ctx context.Context, location string, u wx.Unit) (*wx.Result, error)
}

var _ Lookuper = (*wx.Client)(nil)

// Config is the weather plugin's configuration.
type Config struct {
	// DefaultUnit is the temperature unit used when an invocation does not
	// name one, either c or f.
	DefaultUnit string
}

// Plugin is the weather plugin.
type Plugin struct {
	client Lookuper
	cfg    Config
	// state is nil while the plugin is unloaded.
	state atomic.Pointer[state]
}

type state struct {
	unit wx.Unit
}

// New creates the weather plugin.
func New(client Lookuper, cfg Config) *Plugin {
	return &Plugin{client: client, cfg: cfg}
}

func (p *Plugin) Name() string { return "Weather" }

var args = []command.Arg{
	{Name: "location", Variadic: true},
	{Name: "unit", Flag: true, Short: "u", Choices: []string{"c", "f"}},
}

func (p *Plugin) Commands() []command.Command {
	return []command.Command{
		{
			Name: "weather",
			Args: args,
			Help: "Show the current weather conditions for a location.",
			Fn:   p.conditions,
		},
		{
			Name: "forecast",
			Args: args,
			Help: "Show the 10-day forecast for a location.",
			Fn:   p.forecast,
		},
	}
}

// Load checks the configured default unit.
func (p *Plugin) Load(ctx context.Context, robo *command.Robot) error {
	u, err := wx.ParseUnit(p.cfg.DefaultUnit)
	if err != nil {
		return fmt.Errorf("couldn't use default unit: %w", err)
	}
	p.state.Store(&state{unit: u})
	return nil
}

func (p *Plugin) Unload(ctx context.Context, robo *command.Robot) error {
	p.state.Store(nil)
	return nil
}

// conditions replies with the current weather conditions for a location.
//   - location: Location to look up.
//   - unit: Optional temperature unit, c or f.
func (p *Plugin) conditions(ctx context.Context, robo *command.Robot, call *command.Invocation) {
	r, ok := p.lookup(ctx, robo, call)
	if !ok {
		call.Channel.Message(ctx, message.Format(call.Message.ID, call.Message.To, "Could not find weather for `%s`.", call.Args["location"]))
		return
	}
	p.reply(ctx, robo, call, wx.Conditions, r)
}

// forecast replies with the forecast for a location.
//   - location: Location to look up.
//   - unit: Optional temperature unit, c or f.
func (p *Plugin) forecast(ctx context.Context, robo *command.Robot, call *command.Invocation) {
	r, ok := p.lookup(ctx, robo, call)
	if !ok {
		call.Channel.Message(ctx, message.Format(call.Message.ID, call.Message.To, "Could not retrieve a forecast for `%s`.", call.Args["location"]))
		return
	}
	p.reply(ctx, robo, call, wx.Forecast, r)
}

// lookup retrieves the weather for an invocation. The result is false if the
// lookup failed for any reason.
func (p *Plugin) lookup(ctx context.Context, robo *command.Robot, call *command.Invocation) (*wx.Result, bool) {
	st := p.state.Load()
	if st == nil {
		robo.Log.WarnContext(ctx, "weather plugin isn't loaded")
		return nil, false
	}
	loc := call.Args["location"]
	u := st.unit
	if s := call.Args["unit"]; s != "" {
		u = wx.Unit(s)
	}
	start := time.Now()
	r, err := p.client.Lookup(ctx, loc, u)
	outcome := "ok"
	switch {
	case errors.Is(err, wx.ErrNotFound), err == nil && !wx.Found(r):
		outcome = "not_found"
		robo.Log.InfoContext(ctx, "no weather", slog.String("location", loc))
	case err != nil:
		outcome = "error"
		robo.Log.ErrorContext(ctx, "couldn't look up weather", slog.String("location", loc), slog.Any("err", err))
	}
	if robo.Metrics != nil {
		robo.Metrics.WeatherLatency.Observe(time.Since(start).Seconds(), outcome)
	}
	return r, outcome == "ok"
}

func (p *Plugin) reply(ctx context.Context, robo *command.Robot, call *command.Invocation, format func(*wx.Result) (*message.Embed, error), r *wx.Result) {
	e, err := format(r)
	if err != nil {
		robo.Log.ErrorContext(ctx, "couldn't format weather", slog.String("location", call.Args["location"]), slog.Any("err", err))
		call.Channel.Message(ctx, message.Format(call.Message.ID, call.Message.To, "Something went wrong reading the weather report. Try again later."))
		return
	}
	call.Channel.Message(ctx, message.Sent{Reply: call.Message.ID, To: call.Message.To, Embed: e})
}

var _ command.Plugin = (*Plugin)(nil)

// Package util provides utility commands.
package util

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"gitlab.com/zephyrtronium/pick"

	"github.com/zephyrtronium/a2/command"
	"github.com/zephyrtronium/a2/message"
)

// Plugin is the utilities plugin.
type Plugin struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates the utilities plugin. If src is nil, choices use the global
// random source.
func New(src rand.Source) *Plugin {
	p := &Plugin{}
	if src != nil {
		p.rng = rand.New(src)
	}
	return p
}

func (p *Plugin) roll() uint32 {
	if p.rng == nil {
		return rand.Uint32()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.Uint32()
}

func (p *Plugin) Name() string { return "Utilities" }

func (p *Plugin) Commands() []command.Command {
	return []command.Command{
		{
			Name: "ping",
			Help: "Measure the latency to the bot.",
			Fn:   ping,
		},
		{
			Name: "choose",
			Args: []command.Arg{{Name: "options", Variadic: true, Optional: true}},
			Help: `Choose one of several options separated by \.`,
			Fn:   p.choose,
		},
	}
}

func (p *Plugin) Load(ctx context.Context, robo *command.Robot) error   { return nil }
func (p *Plugin) Unload(ctx context.Context, robo *command.Robot) error { return nil }

// ping replies, then edits the reply to show the time between the invocation
// and the reply.
func ping(ctx context.Context, robo *command.Robot, call *command.Invocation) {
	m, err := call.Channel.Message(ctx, message.Format(call.Message.ID, call.Message.To, "Pong!"))
	if err != nil {
		robo.Log.ErrorContext(ctx, "couldn't send pong", slog.Any("err", err))
		return
	}
	d := m.Time().Sub(call.Message.Time())
	ms := float64(d) / float64(time.Millisecond)
	if err := call.Channel.Edit(ctx, m.ID, fmt.Sprintf("Latency of you to bot: ~%.2fms", ms)); err != nil {
		robo.Log.ErrorContext(ctx, "couldn't edit pong", slog.Any("err", err))
	}
}

// Options splits a choice list on backslashes, discarding empty options.
func Options(s string) []string {
	var r []string
	for _, o := range strings.Split(s, `\`) {
		o = strings.TrimSpace(o)
		if o != "" {
			r = append(r, o)
		}
	}
	return r
}

// choose picks one option uniformly at random. Fewer than two options get no
// reply.
//   - options: Options separated by backslashes.
func (p *Plugin) choose(ctx context.Context, robo *command.Robot, call *command.Invocation) {
	opts := Options(call.Args["options"])
	if len(opts) < 2 {
		robo.Log.DebugContext(ctx, "not enough options to choose", slog.Int("count", len(opts)))
		return
	}
	cases := make([]pick.Case[string], len(opts))
	for i, o := range opts {
		cases[i] = pick.Case[string]{E: o, W: 1}
	}
	x := pick.New(cases).Pick(p.roll())
	call.Channel.Message(ctx, message.Format(call.Message.ID, call.Message.To, "I choose: %s", x))
}

var _ command.Plugin = (*Plugin)(nil)

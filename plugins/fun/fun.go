// Package fun provides commands for entertainment.
package fun

import (
	"context"
	"log/slog"

	"github.com/zephyrtronium/a2/command"
	"github.com/zephyrtronium/a2/message"
)

// Plugin is the fun plugin.
type Plugin struct {
	// keep leaves echoed invocations in place instead of deleting them.
	keep bool
}

// New creates the fun plugin. If keep is true, echo does not delete the
// message that invoked it.
func New(keep bool) *Plugin {
	return &Plugin{keep: keep}
}

func (p *Plugin) Name() string { return "Fun" }

func (p *Plugin) Commands() []command.Command {
	return []command.Command{
		{
			Name: "echo",
			Args: []command.Arg{{Name: "message", Variadic: true}},
			Help: "Say something as the bot.",
			Fn:   p.echo,
		},
	}
}

func (p *Plugin) Load(ctx context.Context, robo *command.Robot) error   { return nil }
func (p *Plugin) Unload(ctx context.Context, robo *command.Robot) error { return nil }

// echo deletes the invoking message and sends its text.
//   - message: Message to send.
func (p *Plugin) echo(ctx context.Context, robo *command.Robot, call *command.Invocation) {
	text := call.Args["message"]
	robo.Log.InfoContext(ctx, "echoed",
		slog.String("user", call.Message.Sender),
		slog.String("name", call.Message.Name),
		slog.String("text", text),
	)
	if !p.keep {
		if err := call.Channel.Delete(ctx, call.Message.ID); err != nil {
			robo.Log.WarnContext(ctx, "couldn't delete echo invocation", slog.Any("err", err))
		}
	}
	call.Channel.Message(ctx, message.Sent{To: call.Message.To, Text: text})
}

var _ command.Plugin = (*Plugin)(nil)

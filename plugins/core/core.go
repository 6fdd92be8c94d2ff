// Package core provides the bot's administrative commands.
package core

import (
	"context"
	"log/slog"
	"strings"

	"github.com/zephyrtronium/a2/command"
	"github.com/zephyrtronium/a2/message"
)

// DefaultPresence is the listening status used when none is configured.
const DefaultPresence = "nothing because I don't work yet"

// Plugin is the core plugin. It sets the bot's presence when it connects and
// provides reload and help.
type Plugin struct {
	presence string
}

// New creates the core plugin with the given listening status.
func New(presence string) *Plugin {
	if presence == "" {
		presence = DefaultPresence
	}
	return &Plugin{presence: presence}
}

func (p *Plugin) Name() string { return "Core" }

func (p *Plugin) Commands() []command.Command {
	return []command.Command{
		{
			Name: "reload",
			Help: "Reload every plugin. Owner only.",
			Fn:   p.reload,
		},
		{
			Name: "help",
			Args: []command.Arg{{Name: "command", Optional: true}},
			Help: "List commands, or describe one.",
			Fn:   help,
		},
	}
}

func (p *Plugin) Load(ctx context.Context, robo *command.Robot) error   { return nil }
func (p *Plugin) Unload(ctx context.Context, robo *command.Robot) error { return nil }

// Ready sets the bot's listening status.
func (p *Plugin) Ready(ctx context.Context, robo *command.Robot) {
	if robo.Presence == nil {
		return
	}
	if err := robo.Presence(ctx, p.presence); err != nil {
		robo.Log.ErrorContext(ctx, "couldn't set presence", slog.String("presence", p.presence), slog.Any("err", err))
		return
	}
	robo.Log.InfoContext(ctx, "set presence", slog.String("presence", p.presence))
}

func (p *Plugin) reload(ctx context.Context, robo *command.Robot, call *command.Invocation) {
	if call.Level < command.Owner {
		robo.Log.WarnContext(ctx, "reload from non-owner", slog.String("user", call.Message.Sender), slog.String("name", call.Message.Name))
		call.Channel.Message(ctx, message.Format(call.Message.ID, call.Message.To, "**Only admins can do that!**"))
		return
	}
	names, err := robo.Plugins.Reload(ctx, robo, p)
	if err != nil {
		robo.Log.ErrorContext(ctx, "couldn't reload all plugins", slog.Any("err", err))
	}
	msg := message.Sent{
		Reply: call.Message.ID,
		To:    call.Message.To,
		Text:  "Plugins reloaded:\n```\n" + strings.Join(names, "\n") + "\n```",
	}
	call.Channel.Message(ctx, msg)
}

var (
	_ command.Plugin  = (*Plugin)(nil)
	_ command.Readier = (*Plugin)(nil)
)

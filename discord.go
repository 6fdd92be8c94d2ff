package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/zephyrtronium/a2/channel"
	"github.com/zephyrtronium/a2/command"
	"github.com/zephyrtronium/a2/message"
)

// discord creates a Discord session which dispatches commands to the bot.
// The session is not yet connected.
func (robo *Robot) discord(ctx context.Context, token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentMessageContent
	robo.robo.Presence = func(ctx context.Context, status string) error {
		return session.UpdateListeningStatus(status)
	}
	session.AddHandler(func(s *discordgo.Session, ev *discordgo.Ready) {
		robo.ready(ctx, ev)
	})
	session.AddHandler(func(s *discordgo.Session, ev *discordgo.MessageCreate) {
		robo.discordMessage(ctx, s, ev)
	})
	session.AddHandler(func(s *discordgo.Session, ev *discordgo.ChannelDelete) {
		if ev.Channel != nil {
			robo.forget(ctx, ev.ID)
		}
	})
	session.AddHandler(func(s *discordgo.Session, ev *discordgo.ThreadDelete) {
		if ev.Channel != nil {
			robo.forget(ctx, ev.ID)
		}
	})
	return session, nil
}

// ready runs the ready hooks of plugins.
func (robo *Robot) ready(ctx context.Context, ev *discordgo.Ready) {
	if ev.User != nil {
		slog.InfoContext(ctx, "Discord ready",
			slog.String("id", ev.User.ID),
			slog.String("user", ev.User.Username),
			slog.Int("guilds", len(ev.Guilds)),
		)
	}
	for _, p := range robo.robo.Plugins.Plugins() {
		if r, ok := p.(command.Readier); ok {
			r.Ready(ctx, robo.robo)
		}
	}
}

func (robo *Robot) discordMessage(ctx context.Context, s *discordgo.Session, ev *discordgo.MessageCreate) {
	// Ignore messages sent by bots, including ourselves.
	if ev.Author == nil || ev.Author.Bot {
		return
	}
	var me string
	if s.State != nil && s.State.User != nil {
		me = s.State.User.ID
	}
	msg := message.FromDiscord(ev.Message)
	ch, _ := robo.channels.LoadOrStore(msg.To, func() *channel.Channel {
		return discordChannel(s, msg.To, msg.Guild, robo.rate)
	})
	robo.command(ctx, ch, msg, me)
}

// forget drops the state held for a channel that no longer exists.
func (robo *Robot) forget(ctx context.Context, id string) {
	robo.channels.Delete(id)
	slog.DebugContext(ctx, "forgot channel", slog.String("channel", id), slog.Int("remaining", robo.channels.Len()))
}

// discordChannel creates a channel which sends through a Discord session.
func discordChannel(s *discordgo.Session, id, guild string, r Rate) *channel.Channel {
	return &channel.Channel{
		ID:    id,
		Guild: guild,
		Message: func(ctx context.Context, msg message.Sent) (*message.Received, error) {
			m, err := s.ChannelMessageSendComplex(id, message.ToDiscord(msg), discordgo.WithContext(ctx))
			if err != nil {
				slog.ErrorContext(ctx, "failed to send Discord message", slog.String("in", id), slog.Any("err", err))
				return nil, fmt.Errorf("couldn't send message: %w", err)
			}
			return message.FromDiscord(m), nil
		},
		Edit: func(ctx context.Context, mid, text string) error {
			if _, err := s.ChannelMessageEdit(id, mid, text, discordgo.WithContext(ctx)); err != nil {
				return fmt.Errorf("couldn't edit message: %w", err)
			}
			return nil
		},
		Delete: func(ctx context.Context, mid string) error {
			if err := s.ChannelMessageDelete(id, mid, discordgo.WithContext(ctx)); err != nil {
				return fmt.Errorf("couldn't delete message: %w", err)
			}
			return nil
		},
		Rate: r.Limiter(),
	}
}

// command dispatches a message to a command if it invokes one.
// me is the bot's user ID, used to recognize mentions.
func (robo *Robot) command(ctx context.Context, ch *channel.Channel, msg *message.Received, me string) {
	name, text, ok := parseCommand(robo.prefix, me, msg.Text)
	if !ok {
		return
	}
	log := robo.robo.Log.With(slog.Any("trace", uuid.New()), slog.String("in", msg.To))
	lv := robo.levels[msg.Sender]
	if lv <= command.Ignored {
		log.DebugContext(ctx, "ignoring user", slog.String("user", msg.Sender))
		return
	}
	cmd, p := robo.robo.Plugins.Lookup(name)
	if cmd == nil {
		log.DebugContext(ctx, "no such command", slog.String("command", name))
		return
	}
	t := time.Now()
	if d, ok := ch.Allow(t); !ok {
		log.InfoContext(ctx, "rate limited",
			slog.String("command", cmd.Name),
			slog.String("delay", d.String()),
		)
		if robo.metrics != nil {
			robo.metrics.RateLimitedCount.Observe(1)
		}
		return
	}
	args, err := command.Parse(cmd.Args, text)
	if err != nil {
		log.InfoContext(ctx, "bad usage", slog.String("command", cmd.Name), slog.Any("err", err))
		ch.Message(ctx, message.Format(msg.ID, msg.To, "Usage: `%s%s`", robo.prefix, command.Usage(cmd)))
		return
	}
	log.InfoContext(ctx, "command",
		slog.String("plugin", p.Name()),
		slog.String("command", cmd.Name),
		slog.String("user", msg.Sender),
		slog.String("level", lv.String()),
	)
	r := *robo.robo
	r.Log = log
	call := command.Invocation{
		Channel: ch,
		Message: msg,
		Args:    args,
		Level:   lv,
	}
	cmd.Fn(ctx, &r, &call)
	if robo.metrics != nil {
		robo.metrics.CommandCount.Observe(1, cmd.Name)
		robo.metrics.CommandLatency.Observe(time.Since(t).Seconds(), cmd.Name)
	}
}

// parseCommand extracts the command name and the text following it from a
// message which starts with the prefix or a mention of the bot.
func parseCommand(prefix, me, text string) (name, rest string, ok bool) {
	text = strings.TrimSpace(text)
	switch {
	case prefix != "" && strings.HasPrefix(text, prefix):
		text = text[len(prefix):]
	case me != "" && strings.HasPrefix(text, "<@"+me+">"):
		text = strings.TrimLeftFunc(text[len(me)+3:], unicode.IsSpace)
	case me != "" && strings.HasPrefix(text, "<@!"+me+">"):
		text = strings.TrimLeftFunc(text[len(me)+4:], unicode.IsSpace)
	default:
		return "", "", false
	}
	k := strings.IndexFunc(text, unicode.IsSpace)
	if k < 0 {
		k = len(text)
	}
	if k == 0 {
		return "", "", false
	}
	return strings.ToLower(text[:k]), strings.TrimSpace(text[k:]), true
}

package main

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"golang.org/x/time/rate"

	"github.com/zephyrtronium/a2/channel"
	"github.com/zephyrtronium/a2/command"
	"github.com/zephyrtronium/a2/internal/chattest"
	"github.com/zephyrtronium/a2/message"
	"github.com/zephyrtronium/a2/plugins/core"
	"github.com/zephyrtronium/a2/plugins/fun"
	"github.com/zephyrtronium/a2/plugins/util"
	"github.com/zephyrtronium/a2/syncmap"
)

func TestParseCommand(t *testing.T) {
	cases := []struct {
		name string
		in   string
		cmd  string
		text string
		ok   bool
	}{
		{"empty", "", "", "", false},
		{"plain", "hello there", "", "", false},
		{"prefix", "$ping", "ping", "", true},
		{"prefix-args", "$choose  a \\ b ", "choose", `a \ b`, true},
		{"case", "$PiNg", "ping", "", true},
		{"prespace", "  $ping", "ping", "", true},
		{"prefix-only", "$", "", "", false},
		{"prefix-space", "$ ping", "", "", false},
		{"mention", "<@1234> ping", "ping", "", true},
		{"mention-nick", "<@!1234> weather tokyo -u f", "weather", "tokyo -u f", true},
		{"mention-tight", "<@1234>ping", "ping", "", true},
		{"mention-only", "<@1234>", "", "", false},
		{"mention-other", "<@5678> ping", "", "", false},
		{"mention-middle", "hey <@1234> ping", "", "", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cmd, text, ok := parseCommand("$", "1234", c.in)
			if cmd != c.cmd {
				t.Errorf("wrong command name: want %q, got %q", c.cmd, cmd)
			}
			if text != c.text {
				t.Errorf("wrong command text: want %q, got %q", c.text, text)
			}
			if ok != c.ok {
				t.Errorf("wrong commandness: want %t, got %t", c.ok, ok)
			}
		})
	}
	t.Run("no-mention", func(t *testing.T) {
		if _, _, ok := parseCommand("$", "", "<@> ping"); ok {
			t.Error("empty user ID matched")
		}
	})
}

func testBot(t *testing.T) *Robot {
	t.Helper()
	robo := &Robot{
		robo:   chattest.Robot(),
		prefix: "$",
		levels: map[string]command.Level{
			"3000": command.Regular,
			"4000": command.Owner,
			"5000": command.Ignored,
		},
		channels: syncmap.New[string, *channel.Channel](),
	}
	robo.metrics = robo.robo.Metrics
	err := robo.robo.Plugins.Register(context.Background(), robo.robo, core.New(""), fun.New(false), util.New(nil))
	if err != nil {
		t.Fatalf("couldn't register plugins: %v", err)
	}
	return robo
}

func received(sender, text string) *message.Received {
	return &message.Received{
		ID:     "999",
		To:     "1000",
		Guild:  "2000",
		Sender: sender,
		Name:   "bocchi",
		Text:   text,
	}
}

func TestDispatch(t *testing.T) {
	cases := []struct {
		name   string
		sender string
		text   string
		want   []message.Sent
		count  int
	}{
		{
			name:   "not-command",
			sender: "3000",
			text:   "ping",
			count:  0,
		},
		{
			name:   "unknown",
			sender: "3000",
			text:   "$dance",
			count:  0,
		},
		{
			name:   "echo",
			sender: "3000",
			text:   "$echo  guitar  hero ",
			want:   []message.Sent{{To: "1000", Text: "guitar hero"}},
			count:  1,
		},
		{
			name:   "usage",
			sender: "3000",
			text:   "$echo",
			want:   []message.Sent{{Reply: "999", To: "1000", Text: "Usage: `$echo <message...>`"}},
			count:  0,
		},
		{
			name:   "ignored",
			sender: "5000",
			text:   "$echo hi",
			count:  0,
		},
		{
			name:   "unlisted-user",
			sender: "6000",
			text:   "$reload",
			want:   []message.Sent{{Reply: "999", To: "1000", Text: "**Only admins can do that!**"}},
			count:  1,
		},
		{
			name:   "owner",
			sender: "4000",
			text:   "$reload",
			want:   []message.Sent{{Reply: "999", To: "1000", Text: "Plugins reloaded:\n```\nFun\nUtilities\n```"}},
			count:  1,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			robo := testBot(t)
			var rec chattest.Recorder
			robo.command(context.Background(), rec.Channel(), received(c.sender, c.text), "1234")
			if diff := cmp.Diff(rec.Sent, c.want); diff != "" {
				t.Errorf("wrong messages (+got/-want):\n%s", diff)
			}
			if got := testutil.CollectAndCount(robo.metrics.CommandCount); got != c.count {
				t.Errorf("wrong number of invoked commands: want %d, got %d", c.count, got)
			}
		})
	}
}

func TestDispatchRate(t *testing.T) {
	robo := testBot(t)
	var rec chattest.Recorder
	ch := rec.Channel()
	ch.Rate = rate.NewLimiter(rate.Every(1e12), 1)
	for range 3 {
		robo.command(context.Background(), ch, received("3000", "$echo hi"), "1234")
	}
	if len(rec.Sent) != 1 {
		t.Errorf("wrong number of messages: want 1, got %d", len(rec.Sent))
	}
	if got := testutil.ToFloat64(robo.metrics.RateLimitedCount); got != 2 {
		t.Errorf("wrong rate limited count: want 2, got %v", got)
	}
	robo.command(context.Background(), ch, received("3000", "hi"), "1234")
	if got := testutil.ToFloat64(robo.metrics.RateLimitedCount); got != 2 {
		t.Errorf("non-command was rate limited")
	}
}

func TestForget(t *testing.T) {
	robo := testBot(t)
	mk := func() *channel.Channel { return &channel.Channel{ID: "1000"} }
	first, _ := robo.channels.LoadOrStore("1000", mk)
	robo.channels.LoadOrStore("1001", mk)
	robo.forget(context.Background(), "1000")
	if got := robo.channels.Len(); got != 1 {
		t.Errorf("wrong number of channels after delete: want 1, got %d", got)
	}
	again, loaded := robo.channels.LoadOrStore("1000", mk)
	if loaded || again == first {
		t.Error("deleted channel was kept")
	}
	robo.forget(context.Background(), "9999")
	if got := robo.channels.Len(); got != 2 {
		t.Errorf("wrong number of channels after deleting an unknown one: want 2, got %d", got)
	}
}

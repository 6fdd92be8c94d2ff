package core_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zephyrtronium/a2/command"
	"github.com/zephyrtronium/a2/internal/chattest"
	"github.com/zephyrtronium/a2/message"
	"github.com/zephyrtronium/a2/plugins/core"
)

// counter is a plugin that counts its loads.
type counter struct {
	name  string
	loads int
}

func (c *counter) Name() string { return c.name }
func (c *counter) Commands() []command.Command {
	return []command.Command{{
		Name: "count",
		Args: []command.Arg{{Name: "n", Kind: command.Int}},
		Help: "Count.",
		Fn:   func(ctx context.Context, robo *command.Robot, call *command.Invocation) {},
	}}
}
func (c *counter) Load(ctx context.Context, robo *command.Robot) error   { c.loads++; return nil }
func (c *counter) Unload(ctx context.Context, robo *command.Robot) error { return nil }

func setup(t *testing.T) (*command.Robot, *core.Plugin, *counter) {
	t.Helper()
	robo := chattest.Robot()
	p := core.New("")
	c := &counter{name: "CoreCounter"}
	if err := robo.Plugins.Register(context.Background(), robo, p, c); err != nil {
		t.Fatalf("couldn't register: %v", err)
	}
	return robo, p, c
}

func lookup(t *testing.T, robo *command.Robot, name string) *command.Command {
	t.Helper()
	cmd, _ := robo.Plugins.Lookup(name)
	if cmd == nil {
		t.Fatalf("no command %s", name)
	}
	return cmd
}

func TestReload(t *testing.T) {
	cases := []struct {
		name  string
		level command.Level
		want  string
		loads int
	}{
		{
			name:  "owner",
			level: command.Owner,
			want:  "Plugins reloaded:\n```\nCoreCounter\n```",
			loads: 2,
		},
		{
			name:  "regular",
			level: command.Regular,
			want:  "**Only admins can do that!**",
			loads: 1,
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			robo, _, cnt := setup(t)
			var rec chattest.Recorder
			call := chattest.Call(&rec, map[string]string{}, c.level)
			lookup(t, robo, "reload").Fn(context.Background(), robo, call)
			want := []message.Sent{{Reply: "999", To: "1000", Text: c.want}}
			if diff := cmp.Diff(rec.Sent, want); diff != "" {
				t.Errorf("wrong messages (+got/-want):\n%s", diff)
			}
			if cnt.loads != c.loads {
				t.Errorf("wrong number of loads: want %d, got %d", c.loads, cnt.loads)
			}
		})
	}
}

func TestHelp(t *testing.T) {
	cases := []struct {
		name string
		args map[string]string
		want string
	}{
		{
			name: "list",
			args: map[string]string{},
			want: "**Core**: `reload` `help`\n**CoreCounter**: `count`",
		},
		{
			name: "one",
			args: map[string]string{"command": "COUNT"},
			want: "`count <n>`\nCount.",
		},
		{
			name: "unknown",
			args: map[string]string{"command": "dance"},
			want: "No command named `dance`.",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			robo, _, _ := setup(t)
			var rec chattest.Recorder
			call := chattest.Call(&rec, c.args, command.Regular)
			lookup(t, robo, "help").Fn(context.Background(), robo, call)
			want := []message.Sent{{Reply: "999", To: "1000", Text: c.want}}
			if diff := cmp.Diff(rec.Sent, want); diff != "" {
				t.Errorf("wrong messages (+got/-want):\n%s", diff)
			}
		})
	}
}

func TestReady(t *testing.T) {
	cases := []struct {
		name     string
		presence string
		want     string
	}{
		{"default", "", "nothing because I don't work yet"},
		{"configured", "the crowd", "the crowd"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			robo := chattest.Robot()
			var got []string
			robo.Presence = func(ctx context.Context, status string) error {
				got = append(got, status)
				return nil
			}
			core.New(c.presence).Ready(context.Background(), robo)
			if diff := cmp.Diff(got, []string{c.want}); diff != "" {
				t.Errorf("wrong presence (+got/-want):\n%s", diff)
			}
		})
	}
	t.Run("error", func(t *testing.T) {
		robo := chattest.Robot()
		robo.Presence = func(ctx context.Context, status string) error { return errors.New("no") }
		// Must not panic.
		core.New("").Ready(context.Background(), robo)
	})
	t.Run("nil", func(t *testing.T) {
		core.New("").Ready(context.Background(), chattest.Robot())
	})
}

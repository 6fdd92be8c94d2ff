package fun_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/zephyrtronium/a2/command"
	"github.com/zephyrtronium/a2/internal/chattest"
	"github.com/zephyrtronium/a2/message"
	"github.com/zephyrtronium/a2/plugins/fun"
)

func TestEcho(t *testing.T) {
	cases := []struct {
		name    string
		keep    bool
		text    string
		deleted []string
	}{
		{"delete", false, "kessoku band", []string{"999"}},
		{"keep", true, "kessoku band", nil},
		{"dashes", false, "-- not -a flag", []string{"999"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ctx := context.Background()
			robo := chattest.Robot()
			if err := robo.Plugins.Register(ctx, robo, fun.New(c.keep)); err != nil {
				t.Fatalf("couldn't register: %v", err)
			}
			cmd, _ := robo.Plugins.Lookup("echo")
			args, err := command.Parse(cmd.Args, c.text)
			if err != nil {
				t.Fatalf("couldn't parse %q: %v", c.text, err)
			}
			var rec chattest.Recorder
			cmd.Fn(ctx, robo, chattest.Call(&rec, args, command.Regular))
			if diff := cmp.Diff(rec.Deleted, c.deleted); diff != "" {
				t.Errorf("wrong deletions (+got/-want):\n%s", diff)
			}
			want := []message.Sent{{To: "1000", Text: c.text}}
			if diff := cmp.Diff(rec.Sent, want); diff != "" {
				t.Errorf("wrong messages (+got/-want):\n%s", diff)
			}
		})
	}
}

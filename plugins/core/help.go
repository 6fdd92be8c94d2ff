package core

import (
	"context"
	"strings"

	"github.com/zephyrtronium/a2/command"
	"github.com/zephyrtronium/a2/message"
)

// help lists the commands of each plugin, or describes a single command.
//   - command: Optional name of the command to describe.
func help(ctx context.Context, robo *command.Robot, call *command.Invocation) {
	name := call.Args["command"]
	if name == "" {
		var b strings.Builder
		for _, p := range robo.Plugins.Plugins() {
			cmds := p.Commands()
			if len(cmds) == 0 {
				continue
			}
			b.WriteString("**" + p.Name() + "**:")
			for _, c := range cmds {
				b.WriteString(" `" + c.Name + "`")
			}
			b.WriteByte('\n')
		}
		call.Channel.Message(ctx, message.Sent{Reply: call.Message.ID, To: call.Message.To, Text: strings.TrimSpace(b.String())})
		return
	}
	cmd, _ := robo.Plugins.Lookup(name)
	if cmd == nil {
		call.Channel.Message(ctx, message.Format(call.Message.ID, call.Message.To, "No command named `%s`.", name))
		return
	}
	call.Channel.Message(ctx, message.Format(call.Message.ID, call.Message.To, "`%s`\n%s", command.Usage(cmd), cmd.Help))
}

package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/zephyrtronium/a2/channel"
	"github.com/zephyrtronium/a2/message"
)

// Invocation is a command invocation. An Invocation and its fields must not
// be modified or retained by any command.
type Invocation struct {
	// Channel is the channel where the invocation occurred.
	Channel *channel.Channel
	// Message is the message which triggered the invocation. It is always
	// non-nil, but not all fields are guaranteed to be populated.
	Message *message.Received
	// Args is the parsed arguments to the command. Arguments which were not
	// given are absent.
	Args map[string]string
	// Level is the privilege level of the invoking user.
	Level Level
}

// Func executes a command.
type Func func(ctx context.Context, robo *Robot, call *Invocation)

// Command is a command a plugin provides.
type Command struct {
	// Name is the name by which the command is invoked. It must be lowercase
	// and contain no spaces.
	Name string
	// Args is the argument schema of the command.
	Args []Arg
	// Help is a short description of the command.
	Help string
	// Fn is the command handler.
	Fn Func
}

// Level is a user's privilege level with respect to the bot.
type Level int

const (
	// Ignored users have access to no commands.
	Ignored Level = iota - 1
	// Regular users have access to ordinary commands.
	Regular
	// Owner users have access to administrative commands.
	Owner
)

// ParseLevel parses a privilege level name from configuration.
// The empty string is the regular level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "":
		return Regular, nil
	case "ignore":
		return Ignored, nil
	case "owner":
		return Owner, nil
	default:
		return 0, fmt.Errorf("unknown privilege level %q", s)
	}
}

func (l Level) String() string {
	switch l {
	case Ignored:
		return "ignore"
	case Regular:
		return "regular"
	case Owner:
		return "owner"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

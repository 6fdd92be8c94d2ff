package channel

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/zephyrtronium/a2/message"
)

// Channel is a text channel in which the bot answers commands.
type Channel struct {
	// ID is the ID of the channel.
	ID string
	// Guild is the ID of the guild containing the channel. It is empty for
	// direct messages.
	Guild string
	// Message sends a message to the channel and returns the message as the
	// service reports it, in particular with its ID and timestamp.
	Message func(ctx context.Context, msg message.Sent) (*message.Received, error)
	// Edit replaces the text of a message the bot previously sent.
	Edit func(ctx context.Context, id, text string) error
	// Delete removes a message from the channel.
	Delete func(ctx context.Context, id string) error
	// Rate is the rate limiter for commands. Invocations in excess of the
	// rate limit are dropped.
	Rate *rate.Limiter
}

// Allow reports whether a command may run in the channel at time t.
// If not, it also reports how long until the next one could run.
func (ch *Channel) Allow(t time.Time) (time.Duration, bool) {
	if ch.Rate == nil {
		return 0, true
	}
	r := ch.Rate.ReserveN(t, 1)
	if !r.OK() {
		return rate.InfDuration, false
	}
	if d := r.DelayFrom(t); d > 0 {
		r.CancelAt(t)
		return d, false
	}
	return 0, true
}

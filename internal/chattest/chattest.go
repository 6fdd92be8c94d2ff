// Package chattest provides a recording chat channel for testing commands.
package chattest

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/zephyrtronium/a2/channel"
	"github.com/zephyrtronium/a2/command"
	"github.com/zephyrtronium/a2/message"
	"github.com/zephyrtronium/a2/metrics"
)

// Recorder is a fake chat service which records what commands do to a
// channel.
type Recorder struct {
	mu sync.Mutex
	// Sent is the messages sent to the channel.
	Sent []message.Sent
	// Edits is the message edits in the channel.
	Edits []Edit
	// Deleted is the IDs of deleted messages.
	Deleted []string
	// Now gives the timestamp of each sent message. If nil, time.Now is used.
	Now func() time.Time
	// Err, if not nil, is returned from every operation.
	Err error
}

// Edit is a recorded message edit.
type Edit struct {
	ID   string
	Text string
}

// Channel returns a channel whose operations are recorded by r.
func (r *Recorder) Channel() *channel.Channel {
	return &channel.Channel{
		ID:      "1000",
		Guild:   "2000",
		Message: r.message,
		Edit:    r.edit,
		Delete:  r.delete,
	}
}

func (r *Recorder) message(ctx context.Context, msg message.Sent) (*message.Received, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	r.Sent = append(r.Sent, msg)
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	m := message.Received{
		ID:        "sent-" + strconv.Itoa(len(r.Sent)),
		To:        msg.To,
		Text:      msg.Text,
		Timestamp: now().UnixMilli(),
	}
	return &m, nil
}

func (r *Recorder) edit(ctx context.Context, id, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Edits = append(r.Edits, Edit{ID: id, Text: text})
	return nil
}

func (r *Recorder) delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Deleted = append(r.Deleted, id)
	return nil
}

// Robot returns a robot with an empty registry that discards its logs and
// metrics.
func Robot() *command.Robot {
	return &command.Robot{
		Log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Plugins: new(command.Registry),
		Metrics: metrics.Discard(),
	}
}

// Call creates an invocation in the channel of a recorder.
func Call(r *Recorder, args map[string]string, level command.Level) *command.Invocation {
	return &command.Invocation{
		Channel: r.Channel(),
		Message: &message.Received{
			ID:        "999",
			To:        "1000",
			Guild:     "2000",
			Sender:    "3000",
			Name:      "bocchi",
			Timestamp: time.Now().UnixMilli(),
		},
		Args:  args,
		Level: level,
	}
}

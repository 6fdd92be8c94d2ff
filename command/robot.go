package command

import (
	"context"
	"log/slog"

	"github.com/zephyrtronium/a2/metrics"
)

// Robot is the bot state as is visible to commands.
type Robot struct {
	Log *slog.Logger
	// Plugins is the set of loaded plugins.
	Plugins *Registry
	Metrics *metrics.Metrics
	// Presence sets the bot's listening status.
	Presence func(ctx context.Context, status string) error
}

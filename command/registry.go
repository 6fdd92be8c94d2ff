package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Plugin is a named, reloadable group of commands.
// Plugins are compared by identity, so implementations are typically pointers.
type Plugin interface {
	// Name is the plugin's display name.
	Name() string
	// Commands lists the plugin's commands. It is consulted after every
	// load, so the set of commands may change across reloads.
	Commands() []Command
	// Load initializes the plugin's state. Commands are not invoked before
	// Load succeeds.
	Load(ctx context.Context, robo *Robot) error
	// Unload releases the plugin's state before a reload.
	Unload(ctx context.Context, robo *Robot) error
}

// Readier is a plugin that acts when the bot connects to chat.
type Readier interface {
	Ready(ctx context.Context, robo *Robot)
}

// Registry is the set of loaded plugins and the commands they provide.
// It is safe to use concurrently.
type Registry struct {
	// reload is held for the duration of a reload.
	reload sync.Mutex

	mu      sync.RWMutex
	plugins []Plugin
	cmds    map[string]entry
}

type entry struct {
	cmd    *Command
	plugin Plugin
}

// Register checks and loads plugins and adds them to the registry in order.
// If any plugin fails, none are added and those already loaded are unloaded.
func (r *Registry) Register(ctx context.Context, robo *Robot, plugins ...Plugin) error {
	r.reload.Lock()
	defer r.reload.Unlock()
	r.mu.RLock()
	all := append(r.plugins[:len(r.plugins):len(r.plugins)], plugins...)
	r.mu.RUnlock()
	if _, err := table(all); err != nil {
		return err
	}
	for i, p := range plugins {
		if err := p.Load(ctx, robo); err != nil {
			unload(ctx, robo, plugins[:i])
			return fmt.Errorf("couldn't load plugin %s: %w", p.Name(), err)
		}
		robo.Log.InfoContext(ctx, "loaded plugin", slog.String("plugin", p.Name()))
	}
	if err := r.rebuild(all); err != nil {
		unload(ctx, robo, plugins)
		return err
	}
	return nil
}

// unload unloads plugins that were loaded but won't be registered.
func unload(ctx context.Context, robo *Robot, plugins []Plugin) {
	for _, p := range plugins {
		if err := p.Unload(ctx, robo); err != nil {
			robo.Log.ErrorContext(ctx, "couldn't unload plugin", slog.String("plugin", p.Name()), slog.Any("err", err))
		}
	}
}

// Lookup finds a command by name, case-insensitively.
func (r *Registry) Lookup(name string) (*Command, Plugin) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.cmds[strings.ToLower(name)]
	if !ok {
		return nil, nil
	}
	return e.cmd, e.plugin
}

// Plugins returns the registered plugins in registration order.
func (r *Registry) Plugins() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Plugin(nil), r.plugins...)
}

// Reload unloads and loads again every plugin except self, which is compared
// by identity. Only one reload happens at a time. It returns the names of the
// plugins that reloaded successfully, in registration order, along with the
// errors from those that did not. A plugin that fails to load remains
// registered but is reported.
func (r *Registry) Reload(ctx context.Context, robo *Robot, self Plugin) ([]string, error) {
	r.reload.Lock()
	defer r.reload.Unlock()
	plugins := r.Plugins()
	robo.Log.InfoContext(ctx, "reloading plugins", slog.Int("count", len(plugins)))
	var names []string
	var errs error
	for _, p := range plugins {
		if p == self {
			continue
		}
		name := p.Name()
		robo.Log.InfoContext(ctx, "reloading plugin", slog.String("plugin", name))
		if err := p.Unload(ctx, robo); err != nil {
			errs = errors.Join(errs, fmt.Errorf("couldn't unload plugin %s: %w", name, err))
			continue
		}
		if err := p.Load(ctx, robo); err != nil {
			errs = errors.Join(errs, fmt.Errorf("couldn't load plugin %s: %w", name, err))
			continue
		}
		robo.Log.InfoContext(ctx, "reloaded plugin", slog.String("plugin", name))
		if robo.Metrics != nil {
			robo.Metrics.ReloadCount.Observe(1, name)
		}
		names = append(names, name)
	}
	if err := r.rebuild(plugins); err != nil {
		errs = errors.Join(errs, err)
	}
	return names, errs
}

// rebuild replaces the plugin list and command table.
func (r *Registry) rebuild(plugins []Plugin) error {
	cmds, err := table(plugins)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.plugins = plugins
	r.cmds = cmds
	r.mu.Unlock()
	return nil
}

// table checks plugins' commands and builds the command table.
func table(plugins []Plugin) (map[string]entry, error) {
	cmds := make(map[string]entry)
	seen := make(map[Plugin]bool, len(plugins))
	for _, p := range plugins {
		if seen[p] {
			return nil, fmt.Errorf("plugin %s registered twice", p.Name())
		}
		seen[p] = true
		cs := p.Commands()
		for i := range cs {
			c := &cs[i]
			if c.Name == "" || c.Name != strings.ToLower(c.Name) || strings.ContainsAny(c.Name, " \t\n") {
				return nil, fmt.Errorf("plugin %s has invalid command name %q", p.Name(), c.Name)
			}
			if c.Fn == nil {
				return nil, fmt.Errorf("command %s of plugin %s has no handler", c.Name, p.Name())
			}
			if err := Check(c.Args); err != nil {
				return nil, fmt.Errorf("command %s of plugin %s: %w", c.Name, p.Name(), err)
			}
			if e, ok := cmds[c.Name]; ok {
				return nil, fmt.Errorf("command %s of plugin %s conflicts with plugin %s", c.Name, p.Name(), e.plugin.Name())
			}
			cmds[c.Name] = entry{cmd: c, plugin: p}
		}
	}
	return cmds, nil
}

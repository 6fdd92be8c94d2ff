package command

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// Kind is the type of an argument value.
type Kind int

const (
	String Kind = iota
	Int
)

// Arg describes one argument of a command.
type Arg struct {
	// Name is the key of the argument in [Invocation.Args]. For flags, it is
	// also the long form of the flag, as --name.
	Name string
	Kind Kind
	// Variadic arguments consume all remaining positional words, joined by
	// single spaces. Only the last positional argument may be variadic.
	Variadic bool
	// Optional arguments may be omitted. Flags are always optional.
	Optional bool
	// Flag marks an argument given by name rather than by position.
	Flag bool
	// Short is an optional single-letter alias of a flag, as -s.
	Short string
	// Choices, if not empty, lists the allowed values of the argument.
	// Values are matched case-insensitively and stored lowercased.
	Choices []string
}

// ErrUsage is the error returned when an invocation does not match a
// command's arguments.
var ErrUsage = errors.New("bad usage")

// Check reports whether args is a valid argument schema.
func Check(args []Arg) error {
	seen := make(map[string]bool, len(args))
	shorts := make(map[string]bool)
	optional, variadic := false, false
	for _, a := range args {
		switch {
		case a.Name == "" || strings.ContainsAny(a.Name, " \t=") || strings.HasPrefix(a.Name, "-"):
			return fmt.Errorf("invalid argument name %q", a.Name)
		case seen[a.Name]:
			return fmt.Errorf("duplicate argument %q", a.Name)
		case len(a.Choices) != 0 && a.Kind != String:
			return fmt.Errorf("argument %q has choices but is not a string", a.Name)
		}
		seen[a.Name] = true
		if a.Flag {
			if a.Variadic {
				return fmt.Errorf("flag %q cannot be variadic", a.Name)
			}
			if a.Short != "" {
				if len(a.Short) != 1 || !isLetter(a.Short[0]) {
					return fmt.Errorf("flag %q has invalid short form %q", a.Name, a.Short)
				}
				if shorts[a.Short] {
					return fmt.Errorf("duplicate short flag -%s", a.Short)
				}
				shorts[a.Short] = true
			}
			continue
		}
		if a.Short != "" {
			return fmt.Errorf("positional argument %q has a short form", a.Name)
		}
		if variadic {
			return fmt.Errorf("argument %q follows a variadic argument", a.Name)
		}
		if optional && !a.Optional {
			return fmt.Errorf("required argument %q follows an optional one", a.Name)
		}
		optional = optional || a.Optional
		variadic = a.Variadic
	}
	return nil
}

// Parse parses the text following a command name according to a schema
// which has passed [Check]. Flags may appear anywhere as -s value,
// --name value, or --name=value. A lone -- ends flag parsing. If the schema
// has no flags, every word is positional.
func Parse(args []Arg, text string) (map[string]string, error) {
	r := make(map[string]string, len(args))
	pos := strings.Fields(text)
	if slices.ContainsFunc(args, func(a Arg) bool { return a.Flag }) {
		fs := pflag.NewFlagSet("", pflag.ContinueOnError)
		fs.SetOutput(io.Discard)
		fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
			return pflag.NormalizedName(strings.ToLower(name))
		})
		for _, a := range args {
			if a.Flag {
				fs.StringP(a.Name, a.Short, "", "")
			}
		}
		words := make([]string, len(pos))
		for i, w := range pos {
			words[i] = protect(w)
		}
		if err := fs.Parse(words); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUsage, err)
		}
		for i := range args {
			a := &args[i]
			if !a.Flag || !fs.Changed(a.Name) {
				continue
			}
			if err := set(r, a, unprotect(fs.Lookup(a.Name).Value.String())); err != nil {
				return nil, err
			}
		}
		pos = fs.Args()
		for i, w := range pos {
			pos[i] = unprotect(w)
		}
	}
	for i := range args {
		a := &args[i]
		if a.Flag {
			continue
		}
		if len(pos) == 0 {
			if !a.Optional {
				return nil, fmt.Errorf("%w: missing %s", ErrUsage, a.Name)
			}
			continue
		}
		val := pos[0]
		pos = pos[1:]
		if a.Variadic {
			val = strings.Join(append([]string{val}, pos...), " ")
			pos = nil
		}
		if err := set(r, a, val); err != nil {
			return nil, err
		}
	}
	if len(pos) != 0 {
		return nil, fmt.Errorf("%w: unexpected %q", ErrUsage, strings.Join(pos, " "))
	}
	return r, nil
}

// guard marks words that start with a dash but can't name a flag, like -5,
// so that the flag set passes them through as positionals.
const guard = "\x00"

func protect(w string) string {
	if len(w) > 1 && w[0] == '-' && w[1] != '-' && !isLetter(w[1]) {
		return guard + w
	}
	return w
}

func unprotect(w string) string {
	return strings.TrimPrefix(w, guard)
}

func set(r map[string]string, a *Arg, val string) error {
	switch a.Kind {
	case Int:
		if _, err := strconv.Atoi(val); err != nil {
			return fmt.Errorf("%w: %s must be a whole number, not %q", ErrUsage, a.Name, val)
		}
	case String:
		if len(a.Choices) != 0 {
			val = strings.ToLower(val)
			if !slices.Contains(a.Choices, val) {
				return fmt.Errorf("%w: %s must be one of %s, not %q", ErrUsage, a.Name, strings.Join(a.Choices, ", "), val)
			}
		}
	}
	r[a.Name] = val
	return nil
}

// Usage describes how to invoke a command, e.g.
// "weather <location...> [-u c|f]".
func Usage(cmd *Command) string {
	var b strings.Builder
	b.WriteString(cmd.Name)
	for _, a := range cmd.Args {
		if a.Flag {
			continue
		}
		b.WriteByte(' ')
		lb, rb := "<", ">"
		if a.Optional {
			lb, rb = "[", "]"
		}
		b.WriteString(lb)
		b.WriteString(a.Name)
		if a.Variadic {
			b.WriteString("...")
		}
		b.WriteString(rb)
	}
	for _, a := range cmd.Args {
		if !a.Flag {
			continue
		}
		b.WriteString(" [")
		if a.Short != "" {
			b.WriteString("-" + a.Short)
		} else {
			b.WriteString("--" + a.Name)
		}
		b.WriteByte(' ')
		if len(a.Choices) != 0 {
			b.WriteString(strings.Join(a.Choices, "|"))
		} else {
			b.WriteString(a.Name)
		}
		b.WriteByte(']')
	}
	return b.String()
}

func isLetter(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

// Package gflag provides a process-wide registry of command line flags
// with typed definition calls and by-name metadata inspection.
//
// Flags are defined once, during single threaded startup, and live for the
// lifetime of the process. Lookups after startup are read only. Misusing the
// registry (defining the same name twice, or asking for a flag that was
// never defined through the or-die path) is a programmer error and aborts
// the process with a diagnostic rather than returning an error.
package gflag

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"golang.org/x/xerrors"
)

// A Flag represents one registered command line flag.
type Flag struct {
	// Name is the flag's unique name, without leading dashes.
	Name string

	// Usage is the help text for the flag.
	Usage string

	// Value is the flag's current value. Set mutates it; the default
	// recorded in DefValue never changes.
	Value flag.Value

	// DefValue is the textual form of the flag's default value,
	// captured at definition time.
	DefValue string
}

// FlagInfo is a read-only snapshot of a flag's metadata, as returned by
// Info and InfoOrDie. It has no further lifecycle; discard it after use.
type FlagInfo struct {
	Name     string
	DefValue string
	Value    string
	Usage    string
}

// A Registry holds a set of defined flags and answers queries about them.
// The zero value is not usable; call NewRegistry.
type Registry struct {
	formal map[string]*Flag
	order  []string // names in definition order
	args   []string // arguments remaining after Parse
}

// CommandLine is the default registry, used by the package level functions.
// It plays the role of the process-wide flag store.
var CommandLine = NewRegistry()

// exit terminates the process on contract violations.
// Tests swap it out to observe the fatal paths.
var exit = os.Exit

// NewRegistry returns an empty flag registry.
func NewRegistry() *Registry {
	return &Registry{formal: map[string]*Flag{}}
}

func fatalf(format string, v ...interface{}) {
	log.Printf("gflag: "+format, v...)
	exit(2)
}

// Var defines a flag with the given name and usage backed by value.
// The value's current textual form becomes the flag's recorded default.
// Defining the same name twice is fatal.
func (r *Registry) Var(value flag.Value, name, usage string) {
	if _, dup := r.formal[name]; dup {
		fatalf("flag %q defined twice", name)
		return
	}
	if strings.HasPrefix(name, "-") {
		fatalf("flag %q begins with -", name)
		return
	}
	r.formal[name] = &Flag{Name: name, Usage: usage, Value: value, DefValue: value.String()}
	r.order = append(r.order, name)
}

// Int defines an int flag and returns a pointer to its value.
func (r *Registry) Int(name string, value int, usage string) *int {
	p := new(int)
	r.Var(newIntValue(value, p), name, usage)
	return p
}

// Int64 defines an int64 flag and returns a pointer to its value.
func (r *Registry) Int64(name string, value int64, usage string) *int64 {
	p := new(int64)
	r.Var(newInt64Value(value, p), name, usage)
	return p
}

// Bool defines a bool flag and returns a pointer to its value.
// Bool flags may be passed without a value; "--name" means true.
func (r *Registry) Bool(name string, value bool, usage string) *bool {
	p := new(bool)
	r.Var(newBoolValue(value, p), name, usage)
	return p
}

// String defines a string flag and returns a pointer to its value.
func (r *Registry) String(name, value, usage string) *string {
	p := new(string)
	r.Var(newStringValue(value, p), name, usage)
	return p
}

// Float64 defines a float64 flag and returns a pointer to its value.
func (r *Registry) Float64(name string, value float64, usage string) *float64 {
	p := new(float64)
	r.Var(newFloat64Value(value, p), name, usage)
	return p
}

// Duration defines a time.Duration flag and returns a pointer to its value.
func (r *Registry) Duration(name string, value time.Duration, usage string) *time.Duration {
	p := new(time.Duration)
	r.Var(newDurationValue(value, p), name, usage)
	return p
}

// Lookup returns the named flag, or nil if none is defined.
func (r *Registry) Lookup(name string) *Flag {
	return r.formal[name]
}

// Info returns a snapshot of the named flag's metadata.
// It reports false if no such flag is defined; callers that consider a
// missing flag a bug should use InfoOrDie instead.
func (r *Registry) Info(name string) (FlagInfo, bool) {
	f, ok := r.formal[name]
	if !ok {
		return FlagInfo{}, false
	}
	return f.info(), true
}

// InfoOrDie returns a snapshot of the named flag's metadata.
// The flag must be defined; a lookup of an unknown name means the caller
// has typo'd the flag name, and aborts the process with a diagnostic.
func (r *Registry) InfoOrDie(name string) FlagInfo {
	f, ok := r.formal[name]
	if !ok {
		fatalf("flag %q is not defined", name)
		return FlagInfo{} // not reached when exit terminates
	}
	return f.info()
}

func (f *Flag) info() FlagInfo {
	return FlagInfo{
		Name:     f.Name,
		DefValue: f.DefValue,
		Value:    f.Value.String(),
		Usage:    f.Usage,
	}
}

// Set sets the current value of the named flag from its textual form.
// Unlike the define and or-die paths this is a runtime operation driven by
// user input, so failures are returned, not fatal.
func (r *Registry) Set(name, value string) error {
	f, ok := r.formal[name]
	if !ok {
		return xerrors.Errorf("no such flag -%v", name)
	}
	if err := f.Value.Set(value); err != nil {
		return xerrors.Errorf("invalid value %q for flag -%v: %w", value, name, err)
	}
	return nil
}

// Parse applies command line arguments to the registry's flags.
// It accepts "-name value", "-name=value" and the double-dash spellings of
// both; bool flags may omit the value. Parsing stops at the first non-flag
// argument or at "--"; the remainder is available from Args.
func (r *Registry) Parse(arguments []string) error {
	r.args = arguments
	for len(r.args) > 0 {
		arg := r.args[0]
		if len(arg) < 2 || arg[0] != '-' {
			break
		}
		numDashes := 1
		if arg[1] == '-' {
			numDashes = 2
			if len(arg) == 2 { // bare "--" terminates flags
				r.args = r.args[1:]
				break
			}
		}
		r.args = r.args[1:]
		name := arg[numDashes:]
		value := ""
		hasValue := false
		if i := strings.Index(name, "="); i >= 0 {
			name, value, hasValue = name[:i], name[i+1:], true
		}
		f, ok := r.formal[name]
		if !ok {
			return xerrors.Errorf("flag provided but not defined: -%v", name)
		}
		if bv, isBool := f.Value.(boolFlag); isBool && bv.IsBoolFlag() {
			if !hasValue {
				value = "true"
			}
		} else if !hasValue {
			if len(r.args) == 0 {
				return xerrors.Errorf("flag needs an argument: -%v", name)
			}
			value, r.args = r.args[0], r.args[1:]
		}
		if err := f.Value.Set(value); err != nil {
			return xerrors.Errorf("invalid value %q for flag -%v: %w", value, name, err)
		}
	}
	return nil
}

// Args returns the non-flag arguments left over from Parse.
func (r *Registry) Args() []string {
	return r.args
}

// VisitAll calls fn for each defined flag, in definition order.
func (r *Registry) VisitAll(fn func(*Flag)) {
	for _, name := range r.order {
		fn(r.formal[name])
	}
}

// NFlags returns the number of defined flags.
func (r *Registry) NFlags() int {
	return len(r.order)
}

// Defaults returns a description of all defined flags and their defaults,
// one per line, suitable for help output.
func (r *Registry) Defaults() string {
	var b strings.Builder
	r.VisitAll(func(f *Flag) {
		fmt.Fprintf(&b, "  -%v (default %v)\n", f.Name, f.DefValue)
		if f.Usage != "" {
			fmt.Fprintf(&b, "    \t%v\n", f.Usage)
		}
	})
	return b.String()
}

// Var defines a flag on CommandLine. See Registry.Var.
func Var(value flag.Value, name, usage string) {
	CommandLine.Var(value, name, usage)
}

// Int defines an int flag on CommandLine. See Registry.Int.
func Int(name string, value int, usage string) *int {
	return CommandLine.Int(name, value, usage)
}

// Int64 defines an int64 flag on CommandLine. See Registry.Int64.
func Int64(name string, value int64, usage string) *int64 {
	return CommandLine.Int64(name, value, usage)
}

// Bool defines a bool flag on CommandLine. See Registry.Bool.
func Bool(name string, value bool, usage string) *bool {
	return CommandLine.Bool(name, value, usage)
}

// String defines a string flag on CommandLine. See Registry.String.
func String(name, value, usage string) *string {
	return CommandLine.String(name, value, usage)
}

// Float64 defines a float64 flag on CommandLine. See Registry.Float64.
func Float64(name string, value float64, usage string) *float64 {
	return CommandLine.Float64(name, value, usage)
}

// Info looks the named flag up on CommandLine. See Registry.Info.
func Info(name string) (FlagInfo, bool) {
	return CommandLine.Info(name)
}

// InfoOrDie looks the named flag up on CommandLine. See Registry.InfoOrDie.
func InfoOrDie(name string) FlagInfo {
	return CommandLine.InfoOrDie(name)
}

// Parse applies os.Args to CommandLine.
func Parse() error {
	return CommandLine.Parse(os.Args[1:])
}

package gflag

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/coreos/go-semver/semver"
	"github.com/dustin/go-humanize"
	"github.com/jessevdk/go-flags"
)

// GiByte is a re-export for convenience of things sizing flags in gibibytes.
const GiByte = humanize.GiByte

// The value types below each satisfy three contracts: flag.Value, so they
// can be registered with Var; the flags.Unmarshaler interface, so they work
// as fields of a ParseArgs struct; and encoding.TextUnmarshaler.

// A ByteSize is a quantity of bytes that can be written in human-readable
// form, e.g. "10G" or "512MiB".
type ByteSize uint64

// Set implements the flag.Value interface.
func (b *ByteSize) Set(in string) error {
	v, err := humanize.ParseBytes(in)
	if err != nil {
		return err
	}
	*b = ByteSize(v)
	return nil
}

// String implements the fmt.Stringer interface.
func (b *ByteSize) String() string {
	return strconv.FormatUint(uint64(*b), 10)
}

// UnmarshalFlag implements the flags.Unmarshaler interface.
func (b *ByteSize) UnmarshalFlag(in string) error {
	return marshalError(b.Set(in))
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (b *ByteSize) UnmarshalText(text []byte) error {
	return b.UnmarshalFlag(string(text))
}

// A Duration is a time.Duration that additionally accepts bare numbers,
// which are taken to mean seconds.
type Duration time.Duration

// Set implements the flag.Value interface.
func (d *Duration) Set(in string) error {
	v, err := time.ParseDuration(in)
	if err != nil {
		if secs, err2 := strconv.Atoi(in); err2 == nil {
			*d = Duration(time.Duration(secs) * time.Second)
			return nil
		}
		return err
	}
	*d = Duration(v)
	return nil
}

// String implements the fmt.Stringer interface.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// UnmarshalFlag implements the flags.Unmarshaler interface.
func (d *Duration) UnmarshalFlag(in string) error {
	return marshalError(d.Set(in))
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (d *Duration) UnmarshalText(text []byte) error {
	return d.UnmarshalFlag(string(text))
}

// A URL is a flag value that must parse as a URL. It is kept as a string
// since that is how callers almost always want it.
type URL string

// Set implements the flag.Value interface.
func (u *URL) Set(in string) error {
	if _, err := url.Parse(in); err != nil {
		return err
	}
	*u = URL(in)
	return nil
}

// String implements the fmt.Stringer interface.
func (u *URL) String() string {
	return string(*u)
}

// UnmarshalFlag implements the flags.Unmarshaler interface.
func (u *URL) UnmarshalFlag(in string) error {
	return marshalError(u.Set(in))
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (u *URL) UnmarshalText(text []byte) error {
	return u.UnmarshalFlag(string(text))
}

// A Version is a semver.Version that also recognises a ">=" prefix,
// and records whether it has been set at all.
type Version struct {
	semver.Version
	IsGTE bool
	IsSet bool
}

// Set implements the flag.Value interface.
func (v *Version) Set(in string) error {
	if strings.HasPrefix(in, ">=") {
		v.IsGTE = true
		in = strings.TrimSpace(strings.TrimPrefix(in, ">="))
	}
	v.IsSet = true
	return v.Version.Set(in)
}

// UnmarshalFlag implements the flags.Unmarshaler interface.
func (v *Version) UnmarshalFlag(in string) error {
	return marshalError(v.Set(in))
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (v *Version) UnmarshalText(text []byte) error {
	return v.UnmarshalFlag(string(text))
}

// String implements the fmt.Stringer interface.
func (v Version) String() string {
	if v.IsGTE {
		return ">=" + v.Version.String()
	}
	return v.Version.String()
}

// VersionString returns just the version, without any preceding >=.
func (v *Version) VersionString() string {
	return v.Version.String()
}

// Semver converts a Version to a plain semver.Version.
func (v *Version) Semver() semver.Version {
	return v.Version
}

// Unset resets this version to its zero state.
func (v *Version) Unset() {
	*v = Version{}
}

// Arch is a combined Go-style operating system and architecture pair,
// as in "linux_amd64".
type Arch struct {
	OS, Arch string
}

// NewArch constructs a new Arch instance.
func NewArch(os, arch string) Arch {
	return Arch{OS: os, Arch: arch}
}

// Set implements the flag.Value interface.
func (arch *Arch) Set(in string) error {
	if parts := strings.Split(in, "_"); len(parts) == 2 && !strings.ContainsRune(in, '/') {
		arch.OS = parts[0]
		arch.Arch = parts[1]
		return nil
	}
	return fmt.Errorf("can't parse architecture %s (should be a Go-style pair like 'linux_amd64')", in)
}

// String implements the fmt.Stringer interface.
func (arch *Arch) String() string {
	return arch.OS + "_" + arch.Arch
}

// UnmarshalFlag implements the flags.Unmarshaler interface.
func (arch *Arch) UnmarshalFlag(in string) error {
	return marshalError(arch.Set(in))
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (arch *Arch) UnmarshalText(text []byte) error {
	return arch.UnmarshalFlag(string(text))
}

// XOS returns the "alternative" OS spelling that some tools prefer;
// "darwin" becomes "osx".
func (arch *Arch) XOS() string {
	if arch.OS == "darwin" {
		return "osx"
	}
	return arch.OS
}

// XArch returns the "alternative" architecture spelling that some tools
// prefer; "amd64" becomes "x86_64".
func (arch *Arch) XArch() string {
	if arch.Arch == "amd64" {
		return "x86_64"
	}
	return arch.Arch
}

// A Filepath is a flag value holding a file path, with shell completion
// that knows how to descend into directories.
type Filepath string

// Set implements the flag.Value interface.
func (f *Filepath) Set(in string) error {
	*f = Filepath(in)
	return nil
}

// String implements the fmt.Stringer interface.
func (f *Filepath) String() string {
	return string(*f)
}

// Complete implements the flags.Completer interface.
func (f *Filepath) Complete(match string) []flags.Completion {
	matches, _ := filepath.Glob(match + "*")
	// A single directory match completes to its contents instead.
	if len(matches) == 1 {
		if info, err := os.Stat(matches[0]); err == nil && info.IsDir() {
			matches, _ = filepath.Glob(matches[0] + "/*")
		}
	}
	ret := make([]flags.Completion, len(matches))
	for i, match := range matches {
		ret[i].Item = match
	}
	return ret
}

// marshalError converts an error to a flags.Error, which the go-flags
// parser requires from unmarshalers.
func marshalError(err error) error {
	if err == nil {
		return nil
	}
	return &flags.Error{Type: flags.ErrMarshal, Message: err.Error()}
}

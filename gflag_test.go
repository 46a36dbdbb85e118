package gflag

import (
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type exitCode int

// captureExit reroutes fatal exits into a panic for the duration of a test,
// so the or-die paths can be observed without terminating the test binary.
func captureExit(t *testing.T) {
	t.Helper()
	oldExit, oldOut := exit, log.Writer()
	exit = func(code int) { panic(exitCode(code)) }
	log.SetOutput(io.Discard)
	t.Cleanup(func() {
		exit = oldExit
		log.SetOutput(oldOut)
	})
}

// expectDeath runs fn and returns the exit code of the fatal it must hit.
func expectDeath(t *testing.T, fn func()) (code int) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a fatal exit")
		c, ok := r.(exitCode)
		require.True(t, ok, "unexpected panic: %v", r)
		code = int(c)
	}()
	fn()
	return 0
}

func TestIntFlagDefaultValue(t *testing.T) {
	r := NewRegistry()
	r.Int("test", 42, "Test flag")
	info := r.InfoOrDie("test")
	assert.Equal(t, "42", info.DefValue)
	assert.Equal(t, "42", info.Value)
	assert.Equal(t, "Test flag", info.Usage)
}

func TestInfoSnapshotsAreStable(t *testing.T) {
	r := NewRegistry()
	r.Int("test", 42, "Test flag")
	assert.Equal(t, r.InfoOrDie("test"), r.InfoOrDie("test"))

	// Setting the flag moves the current value but never the default.
	require.NoError(t, r.Set("test", "7"))
	info := r.InfoOrDie("test")
	assert.Equal(t, "7", info.Value)
	assert.Equal(t, "42", info.DefValue)
}

func TestDuplicateDefinitionIsFatal(t *testing.T) {
	captureExit(t)
	r := NewRegistry()
	r.Int("test", 42, "Test flag")
	code := expectDeath(t, func() {
		r.Int("test", 43, "Same name again")
	})
	assert.Equal(t, 2, code)
}

func TestUnknownLookupIsFatal(t *testing.T) {
	captureExit(t)
	r := NewRegistry()
	r.Int("test", 42, "Test flag")
	code := expectDeath(t, func() {
		r.InfoOrDie("tets")
	})
	assert.Equal(t, 2, code)
}

func TestDashPrefixedNameIsFatal(t *testing.T) {
	captureExit(t)
	r := NewRegistry()
	expectDeath(t, func() {
		r.Bool("-test", false, "Dashes belong to the parser")
	})
}

func TestRecoverableLookup(t *testing.T) {
	r := NewRegistry()
	r.String("greeting", "hello", "What to say")
	info, ok := r.Info("greeting")
	require.True(t, ok)
	assert.Equal(t, "hello", info.DefValue)

	_, ok = r.Info("farewell")
	assert.False(t, ok)
	assert.Nil(t, r.Lookup("farewell"))
}

func TestSet(t *testing.T) {
	r := NewRegistry()
	n := r.Int("n", 1, "A number")
	require.NoError(t, r.Set("n", "5"))
	assert.Equal(t, 5, *n)
	assert.Error(t, r.Set("n", "five"))
	assert.Error(t, r.Set("m", "5"))
}

func TestParse(t *testing.T) {
	r := NewRegistry()
	count := r.Int("count", 1, "")
	verbose := r.Bool("verbose", false, "")
	name := r.String("name", "world", "")
	wait := r.Duration("wait", time.Second, "")

	err := r.Parse([]string{"--count=3", "-verbose", "--name", "gopher", "-wait", "250ms", "pos1", "pos2"})
	require.NoError(t, err)
	assert.Equal(t, 3, *count)
	assert.True(t, *verbose)
	assert.Equal(t, "gopher", *name)
	assert.Equal(t, 250*time.Millisecond, *wait)
	assert.Equal(t, []string{"pos1", "pos2"}, r.Args())
}

func TestParseBoolWithValue(t *testing.T) {
	r := NewRegistry()
	verbose := r.Bool("verbose", true, "")
	require.NoError(t, r.Parse([]string{"--verbose=false"}))
	assert.False(t, *verbose)
}

func TestParseStopsAtTerminator(t *testing.T) {
	r := NewRegistry()
	verbose := r.Bool("verbose", false, "")
	require.NoError(t, r.Parse([]string{"--", "--verbose"}))
	assert.False(t, *verbose)
	assert.Equal(t, []string{"--verbose"}, r.Args())
}

func TestParseErrors(t *testing.T) {
	r := NewRegistry()
	r.Int("count", 1, "")
	assert.Error(t, r.Parse([]string{"--frequency=3"}), "undefined flag")
	assert.Error(t, r.Parse([]string{"--count"}), "missing value")
	assert.Error(t, r.Parse([]string{"--count=many"}), "unparseable value")
}

func TestParseDoesNotTouchDefaults(t *testing.T) {
	r := NewRegistry()
	r.Int("count", 1, "")
	require.NoError(t, r.Parse([]string{"--count=9"}))
	assert.Equal(t, "1", r.InfoOrDie("count").DefValue)
	assert.Equal(t, "9", r.InfoOrDie("count").Value)
}

func TestVisitAllInDefinitionOrder(t *testing.T) {
	r := NewRegistry()
	r.Int("zebra", 0, "")
	r.Int("aardvark", 0, "")
	r.Int("mongoose", 0, "")
	names := []string{}
	r.VisitAll(func(f *Flag) { names = append(names, f.Name) })
	assert.Equal(t, []string{"zebra", "aardvark", "mongoose"}, names)
	assert.Equal(t, 3, r.NFlags())
}

func TestDefaults(t *testing.T) {
	r := NewRegistry()
	r.Int("count", 42, "How many")
	s := r.Defaults()
	assert.Contains(t, s, "-count (default 42)")
	assert.Contains(t, s, "How many")
}

func TestPackageLevelRegistry(t *testing.T) {
	n := Int("gflag-test-package-level", 42, "Test flag")
	info := InfoOrDie("gflag-test-package-level")
	assert.Equal(t, "42", info.DefValue)
	assert.Equal(t, 42, *n)

	info2, ok := Info("gflag-test-package-level")
	require.True(t, ok)
	assert.Equal(t, info, info2)
}

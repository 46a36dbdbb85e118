package gflag

import (
	"fmt"
	"os"
	"path"
	"reflect"
	"strings"

	"github.com/jessevdk/go-flags"
	"golang.org/x/xerrors"
)

// A CompletionHandler is called by the parser with shell completion items.
type CompletionHandler func(parser *flags.Parser, items []flags.Completion)

// ParseFlags parses args into the struct data using go-flags struct tags,
// returning the parser, any positional arguments and any error encountered.
// It exits the process if --help is passed.
func ParseFlags(appname string, data interface{}, args []string, completionHandler CompletionHandler) (*flags.Parser, []string, error) {
	parser := flags.NewNamedParser(path.Base(args[0]), flags.HelpFlag|flags.PassDoubleDash)
	if completionHandler != nil {
		parser.CompletionHandler = func(items []flags.Completion) { completionHandler(parser, items) }
	}
	if _, err := parser.AddGroup(appname+" options", "", data); err != nil {
		fatalf("can't define flags for %s: %s", appname, err)
	}
	extraArgs, err := parser.ParseArgs(args[1:])
	var ferr *flags.Error
	if xerrors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
		writeUsage(data)
		fmt.Printf("%s\n", err)
		exit(0)
	}
	return parser, extraArgs, err
}

// ParseFlagsOrDie parses the process's command line into data and dies if
// unsuccessful. It also dies on unexpected positional arguments.
func ParseFlagsOrDie(appname, version string, data interface{}) *flags.Parser {
	return ParseFlagsFromArgsOrDie(appname, version, data, os.Args)
}

// ParseFlagsFromArgsOrDie is like ParseFlagsOrDie but with control over the
// arguments parsed.
func ParseFlagsFromArgsOrDie(appname, version string, data interface{}, args []string) *flags.Parser {
	parser, extraArgs, err := ParseFlags(appname, data, args, nil)
	var ferr *flags.Error
	if xerrors.As(err, &ferr) && ferr.Type == flags.ErrUnknownFlag && strings.Contains(ferr.Message, "`version'") {
		// --version is answered even when no such flag is defined.
		fmt.Printf("%s version %s\n", appname, version)
		exit(0)
		return parser
	}
	if err != nil {
		writeUsage(data)
		parser.WriteHelp(os.Stderr)
		fmt.Printf("\n%s\n", err)
		exit(1)
	} else if len(extraArgs) > 0 {
		writeUsage(data)
		fmt.Printf("unknown option %s\n", extraArgs)
		parser.WriteHelp(os.Stderr)
		exit(1)
	}
	return parser
}

// writeUsage prints any usage message specified on the flag struct.
func writeUsage(data interface{}) {
	if s := usageFor(data); s != "" {
		fmt.Println(s)
		fmt.Println("")
	}
}

// usageFor extracts the usage message from a flag struct.
// It is taken from a field named Usage, either its value or a struct tag
// named usage.
func usageFor(data interface{}) string {
	if field := reflect.ValueOf(data).Elem().FieldByName("Usage"); field.IsValid() && field.Kind() == reflect.String && field.String() != "" {
		return strings.TrimSpace(field.String())
	}
	if field, present := reflect.TypeOf(data).Elem().FieldByName("Usage"); present {
		return field.Tag.Get("usage")
	}
	return ""
}

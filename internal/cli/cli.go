// Package cli implements the agrotrack command line. Every command body runs
// under the failure sink, so a failed call has already been presented by the
// time Run returns its exit code.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/agrotrack/internal/api"
	"github.com/gosuda/agrotrack/internal/notify"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// Notifier is the subset of notify.Dispatcher commands report through.
type Notifier interface {
	Success(ctx context.Context, message string, opts ...notify.Option) (notify.Result, error)
	Confirm(ctx context.Context, message string, opts ...notify.Option) (bool, error)
}

// Guard runs a command body and presents whatever it fails with.
type Guard interface {
	Recover(ctx context.Context, fn func(ctx context.Context) error) error
}

// Subscriber streams raw messages from a channel until cancel is called.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string, buffer int) (<-chan []byte, func(), error)
}

var _ Notifier = (*notify.Dispatcher)(nil)

type usageError struct {
	msg string
}

func (e usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

// action is a parsed command, ready to run.
type action func(ctx context.Context) error

// handler parses the arguments of one verb.
type handler func(args []string) (action, error)

// App is the agrotrack command.
type App struct {
	api      *api.API
	notifier Notifier
	guard    Guard
	stdout   io.Writer
	stderr   io.Writer
	now      func() time.Time

	bus     Subscriber
	channel string

	json bool
}

// Option configures optional App parameters.
type Option func(*App)

// WithOutput sets where results and usage errors are written.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(a *App) {
		a.stdout = stdout
		a.stderr = stderr
	}
}

// WithClock sets the time source for edit windows and summaries.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}

// WithSubscriber enables "diag tail" on channel.
func WithSubscriber(s Subscriber, channel string) Option {
	return func(a *App) {
		a.bus = s
		a.channel = channel
	}
}

// New creates an App over the resource clients.
func New(c *api.API, n Notifier, g Guard, opts ...Option) *App {
	a := &App{
		api:      c,
		notifier: n,
		guard:    g,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *App) commands() map[string]map[string]handler {
	return map[string]map[string]handler{
		"sellers": {
			"list":     a.sellersList,
			"get":      a.sellersGet,
			"find":     a.sellersFind,
			"register": a.sellersRegister,
			"update":   a.sellersUpdate,
			"delete":   a.sellersDelete,
			"restore":  a.sellersRestore,
		},
		"harvests": {
			"list":    a.harvestsList,
			"get":     a.harvestsGet,
			"create":  a.harvestsCreate,
			"update":  a.harvestsUpdate,
			"delete":  a.harvestsDelete,
			"restore": a.harvestsRestore,
		},
		"contacts": {
			"list":    a.contactsList,
			"delete":  a.contactsDelete,
			"restore": a.contactsRestore,
		},
		"publications": {
			"list":   a.publicationsList,
			"get":    a.publicationsGet,
			"create": a.publicationsCreate,
		},
		"diag": {
			"tail": a.diagTail,
		},
	}
}

// Run executes args and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	rest, err := a.parseGlobal(args)
	if err != nil {
		fmt.Fprintf(a.stderr, "agrotrack: %v\n", err)
		return ExitUsage
	}
	if len(rest) == 0 || rest[0] == "help" {
		a.printHelp(a.stdout)
		return ExitOK
	}

	cmds := a.commands()
	verbs, ok := cmds[rest[0]]
	if !ok {
		fmt.Fprintf(a.stderr, "agrotrack: unknown resource %q\n", rest[0])
		a.printHelp(a.stderr)
		return ExitUsage
	}
	if len(rest) < 2 {
		fmt.Fprintf(a.stderr, "usage: agrotrack %s <%s>\n", rest[0], strings.Join(sortedKeys(verbs), "|"))
		return ExitUsage
	}
	h, ok := verbs[rest[1]]
	if !ok {
		fmt.Fprintf(a.stderr, "agrotrack: unknown command %q for %s\n", rest[1], rest[0])
		return ExitUsage
	}

	act, err := h(rest[2:])
	if err != nil {
		// The flag package has already printed its own parse errors.
		var ue usageError
		if errors.As(err, &ue) {
			fmt.Fprintf(a.stderr, "agrotrack %s %s: %v\n", rest[0], rest[1], err)
		}
		return ExitUsage
	}

	if err := a.guard.Recover(ctx, act); err != nil {
		log.Debug().Err(err).Str("command", rest[0]+" "+rest[1]).Msg("command failed")
		return ExitFailure
	}
	return ExitOK
}

func (a *App) parseGlobal(args []string) ([]string, error) {
	a.json = false
	i := 0
	for ; i < len(args) && strings.HasPrefix(args[i], "-"); i++ {
		switch args[i] {
		case "--json", "-json":
			a.json = true
		case "--help", "-h":
			return nil, nil
		default:
			return nil, fmt.Errorf("unknown global flag: %s", args[i])
		}
	}
	return args[i:], nil
}

func (a *App) printHelp(w io.Writer) {
	fmt.Fprint(w, `usage: agrotrack [--json] <resource> <command> [flags] [args]

resources:
  sellers        list | get <id> | find | register | update <id> | delete <id> | restore <id>
  harvests       list | get <id> | create | update <id> | delete <id> | restore <id>
  contacts       list | delete <id> | restore <id>
  publications   list | get <id> | create
  diag           tail

Flags go before positional arguments. Configuration is read from AGROTRACK_*
environment variables and an optional .env file.
`)
}

// flags creates a flag set for one command. Every command also accepts -json.
func (a *App) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("agrotrack "+name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.BoolVar(&a.json, "json", a.json, "print JSON instead of a table")
	return fs
}

func parseID(fs *flag.FlagSet) (int64, error) {
	if fs.NArg() != 1 {
		return 0, usagef("expected exactly one id argument")
	}
	id, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil || id <= 0 {
		return 0, usagef("invalid id %q", fs.Arg(0))
	}
	return id, nil
}

func noArgs(fs *flag.FlagSet) error {
	if fs.NArg() > 0 {
		return usagef("unexpected argument %q", fs.Arg(0))
	}
	return nil
}

func parseDate(flagName, value string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return time.Time{}, usagef("-%s must be YYYY-MM-DD, got %q", flagName, value)
	}
	return t, nil
}

// confirm asks before a destructive call unless yes is set.
func (a *App) confirm(ctx context.Context, yes bool, question string) (bool, error) {
	if yes {
		return true, nil
	}
	ok, err := a.notifier.Confirm(ctx, question)
	if err != nil {
		return false, fmt.Errorf("cli.App.confirm: %w", err)
	}
	return ok, nil
}

func (a *App) success(ctx context.Context, message string, opts ...notify.Option) {
	if _, err := a.notifier.Success(ctx, message, opts...); err != nil {
		log.Warn().Err(err).Msg("success notification not shown")
	}
}

// emit writes v as JSON when requested, otherwise as the table built by rows.
func (a *App) emit(v any, header []string, rows func(add func(cols ...string))) error {
	if a.json {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("cli.App.emit: %w", err)
		}
		return nil
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	if len(header) > 0 {
		fmt.Fprintln(tw, strings.Join(header, "\t"))
	}
	rows(func(cols ...string) {
		fmt.Fprintln(tw, strings.Join(cols, "\t"))
	})
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("cli.App.emit: %w", err)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Adda-Baaj/boticord-go/internal/config"
	"github.com/Adda-Baaj/boticord-go/pkg/boticord"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/pflag"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// command runs one API call and returns the value to print, or nil.
type command struct {
	usage string
	args  int
	run   func(ctx context.Context, c *boticord.Client, opts cliOptions, args []string) (any, error)
}

type cliOptions struct {
	token   string
	version int
	baseURL string
	domain  string
	timeout time.Duration
}

var commands = map[string]command{
	"bot": {"bot <id>", 1, func(ctx context.Context, c *boticord.Client, _ cliOptions, a []string) (any, error) {
		return c.GetBotInfo(ctx, boticord.BotID(a[0]))
	}},
	"server": {"server <id>", 1, func(ctx context.Context, c *boticord.Client, _ cliOptions, a []string) (any, error) {
		return c.GetServerInfo(ctx, boticord.ServerID(a[0]))
	}},
	"user": {"user <id>", 1, func(ctx context.Context, c *boticord.Client, _ cliOptions, a []string) (any, error) {
		return c.GetUserInfo(ctx, boticord.UserID(a[0]))
	}},
	"bot-comments": {"bot-comments <id>", 1, func(ctx context.Context, c *boticord.Client, _ cliOptions, a []string) (any, error) {
		return c.GetBotComments(ctx, boticord.BotID(a[0]))
	}},
	"server-comments": {"server-comments <id>", 1, func(ctx context.Context, c *boticord.Client, _ cliOptions, a []string) (any, error) {
		return c.GetServerComments(ctx, boticord.ServerID(a[0]))
	}},
	"user-comments": {"user-comments <id>", 1, func(ctx context.Context, c *boticord.Client, _ cliOptions, a []string) (any, error) {
		return c.GetUserComments(ctx, boticord.UserID(a[0]))
	}},
	"user-bots": {"user-bots <id>", 1, func(ctx context.Context, c *boticord.Client, _ cliOptions, a []string) (any, error) {
		return c.GetUserBots(ctx, boticord.UserID(a[0]))
	}},
	"post-stats": {"post-stats <servers> <shards> <users>", 3, func(ctx context.Context, c *boticord.Client, _ cliOptions, a []string) (any, error) {
		stats, err := parseStats(a)
		if err != nil {
			return nil, err
		}
		return nil, c.PostBotStats(ctx, stats)
	}},
	"links": {"links", 0, func(ctx context.Context, c *boticord.Client, _ cliOptions, _ []string) (any, error) {
		return c.GetMyShortedLinks(ctx)
	}},
	"link-search": {"link-search <code>", 1, func(ctx context.Context, c *boticord.Client, o cliOptions, a []string) (any, error) {
		return c.SearchShortedLink(ctx, boticord.ShortedLinkQuery{Code: a[0], Domain: o.domain})
	}},
	"link-create": {"link-create <code> <url>", 2, func(ctx context.Context, c *boticord.Client, o cliOptions, a []string) (any, error) {
		return c.CreateShortedLink(ctx, boticord.ShortenerBody{Code: a[0], Link: a[1], Domain: o.domain})
	}},
	"link-delete": {"link-delete <code>", 1, func(ctx context.Context, c *boticord.Client, o cliOptions, a []string) (any, error) {
		return nil, c.DeleteShortedLink(ctx, boticord.ShortedLinkQuery{Code: a[0], Domain: o.domain})
	}},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return 1
	}

	var opts cliOptions
	fs := pflag.NewFlagSet("boticord", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.token, "token", cfg.BoticordToken, "Boticord API token (env BOTICORD_TOKEN)")
	fs.IntVar(&opts.version, "version", cfg.BoticordAPIVersion, "API version")
	fs.StringVar(&opts.baseURL, "base-url", cfg.BoticordBaseURL, "API host")
	fs.StringVar(&opts.domain, "domain", "", "shortener domain for link commands")
	fs.DurationVar(&opts.timeout, "timeout", cfg.BoticordTimeout, "per-request timeout")
	fs.Usage = func() { usage(stderr, fs) }

	if err := fs.Parse(argv); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	args := fs.Args()
	if len(args) == 0 {
		usage(stderr, fs)
		return 2
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n", args[0])
		usage(stderr, fs)
		return 2
	}
	if len(args)-1 != cmd.args {
		fmt.Fprintf(stderr, "usage: boticord [flags] %s\n", cmd.usage)
		return 2
	}

	client, err := boticord.New(opts.token, opts.version,
		boticord.WithBaseURL(opts.baseURL),
		boticord.WithTimeout(opts.timeout),
	)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	out, err := cmd.run(ctx, client, opts, args[1:])
	if err != nil {
		if status, ok := boticord.StatusCode(err); ok {
			fmt.Fprintf(stderr, "request failed with status %d: %v\n", status, err)
		} else {
			fmt.Fprintf(stderr, "%v\n", err)
		}
		return 1
	}
	if out == nil {
		fmt.Fprintln(stdout, "ok")
		return 0
	}

	raw, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		fmt.Fprintf(stderr, "encode output: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, string(raw))
	return 0
}

func parseStats(args []string) (boticord.BotStats, error) {
	var vals [3]uint64
	for i, a := range args {
		v, err := strconv.ParseUint(a, 10, 64)
		if err != nil {
			return boticord.BotStats{}, fmt.Errorf("invalid number %q: %w", a, err)
		}
		vals[i] = v
	}
	return boticord.BotStats{Servers: vals[0], Shards: vals[1], Users: vals[2]}, nil
}

func usage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintln(w, "usage: boticord [flags] <command> [args]")
	fmt.Fprintln(w, "\ncommands:")
	for _, name := range commandNames() {
		fmt.Fprintf(w, "  %s\n", commands[name].usage)
	}
	fmt.Fprintln(w, "\nflags:")
	fmt.Fprint(w, fs.FlagUsages())
}

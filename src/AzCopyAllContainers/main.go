package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	azlog "github.com/Azure/azure-sdk-for-go/sdk/azcore/log"
	"github.com/pkg/errors"

	"github.com/edwardsp/AzCopyAllContainers/src/copier"
	"github.com/edwardsp/AzCopyAllContainers/src/storage/azure"
)

var version = "dev"

const (
	programName = "AzCopyAllContainers"
	copyright   = "Copyright (c) AzCopyAllContainers contributors"
	description = "Copies all BLOB containers of an Azure Storage account, with their permissions,\n" +
		"metadata and BLOBs (including snapshots), into another Azure Storage account."
)

// errUsage means the problem was already reported by the flag set.
var errUsage = errors.New("invalid command line")

type invocation struct {
	config      *Config
	args        []string
	showVersion bool
	stats       bool
}

func parseArgs(args []string, stdout, stderr io.Writer) (*invocation, error) {
	var (
		inv        invocation
		configFile string
		flags      = DefaultConfig()
	)

	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(stdout, fs) }
	fs.StringVar(&configFile, "config", "", "YAML configuration file")
	fs.BoolVar(&inv.stats, "stats", false, "Print all copy metrics when done")
	fs.BoolVar(&inv.showVersion, "version", false, "Print version and exit")
	flags.bindFlags(fs)

	if err := fs.Parse(args); err != nil {
		return nil, errUsage
	}

	inv.config = DefaultConfig()
	if configFile != "" {
		cfg, err := ReadConfigFile(configFile)
		if err != nil {
			return nil, err
		}
		inv.config = cfg
	}
	inv.config.override(fs, flags)

	if inv.showVersion {
		return &inv, nil
	}
	if fs.NArg() != 4 {
		fs.Usage()
		return nil, errUsage
	}
	inv.args = fs.Args()
	return &inv, nil
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, "%s %s\n%s\n\n%s\n\n", programName, version, copyright, description)
	fmt.Fprintf(w, "%s [flags] sourceAccount sourceKey destAccount destKey\n\n", programName)
	fmt.Fprintf(w, "An account key of %q authenticates with Azure AD instead.\n\nFlags:\n", azure.AzureADKey)
	fs.SetOutput(w)
	fs.PrintDefaults()
}

func setupLogging(debug bool) {
	if !debug {
		return
	}
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, opts))
	slog.SetDefault(logger)

	azlog.SetListener(func(ev azlog.Event, msg string) {
		slog.Debug(msg, "event", ev)
	})
}

func run(args []string, stdin *os.File, stdout, stderr io.Writer) int {
	inv, err := parseArgs(args, stdout, stderr)
	if err != nil {
		if !errors.Is(err, errUsage) {
			printError(stdout, err)
		}
		return 1
	}
	if inv.showVersion {
		fmt.Fprintf(stdout, "Version: %s\n", version)
		return 0
	}

	cfg := inv.config
	setupLogging(cfg.Debug)
	if cfg.MaxRetries < 1 {
		slog.Info("Setting max retries to 1")
		cfg.MaxRetries = 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := copyAll(ctx, inv, stdout, stderr); err != nil {
		printError(stdout, err)
		return 1
	}

	fmt.Fprint(stdout, "\n\nAll Succeeded.\n")
	if !cfg.NoWait && isTerminal(stdin) {
		fmt.Fprintln(stdout, "type any key to finish.")
		waitForKey(stdin)
	}
	return 0
}

func copyAll(ctx context.Context, inv *invocation, stdout, stderr io.Writer) error {
	fmt.Fprintln(stdout, "Accessing Azure Storages ...")
	session := azure.NewSession(
		azure.Credentials{AccountName: inv.args[0], AccountKey: inv.args[1]},
		azure.Credentials{AccountName: inv.args[2], AccountKey: inv.args[3]},
		inv.config.sessionOptions(),
	)
	source, dest, err := session.Open()
	if err != nil {
		return err
	}

	c := copier.New(source, dest, stdout, inv.config.copierOptions())
	err = c.Run(ctx)
	if inv.stats {
		c.Metrics().WriteStats(stderr)
	}
	return err
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/equilobe/library-go/library/shared/shell/config"
)

const (
	exitOK       = 0
	exitFailure  = 1
	exitBadUsage = 2
)

var errUsage = errors.New("usage")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout io.Writer, stderr io.Writer) int {
	global := flag.NewFlagSet("libraryctl", flag.ContinueOnError)
	global.SetOutput(stderr)
	configPath := global.String("config", "", "Path to a YAML config file; environment variables override it")

	if err := global.Parse(args); err != nil {
		return exitBadUsage
	}

	if global.NArg() == 0 {
		printUsage(stderr)
		return exitBadUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "libraryctl: %v\n", err)
		return exitFailure
	}

	application, err := newApp(ctx, cfg, stderr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "libraryctl: %v\n", err)
		return exitFailure
	}
	defer application.Close()

	s := session{
		dispatcher:  application.dispatcher,
		eventStream: application.eventStream,
		stdout:      stdout,
		stderr:      stderr,
	}

	return exitCode(s.run(ctx, global.Args()), stderr)
}

func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return exitOK
	}

	if errors.Is(err, flag.ErrHelp) {
		return exitBadUsage
	}

	_, _ = fmt.Fprintf(stderr, "libraryctl: %v\n", err)

	if errors.Is(err, errUsage) {
		return exitBadUsage
	}

	return exitFailure
}

func printUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "usage: libraryctl [-config file] <add|remove|lend|return|books|loans|available|events> [flags]")
}

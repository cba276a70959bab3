package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"go.uber.org/zap"

	"github.com/wippyai/dllbridge/errors"
	"github.com/wippyai/dllbridge/library"
	"github.com/wippyai/dllbridge/protocol"
	"github.com/wippyai/dllbridge/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type options struct {
	library  string
	port     int
	maxConns int
	verbose  bool
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("dllbridge", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{port: server.DefaultPort}
	fs.BoolVar(&opts.verbose, "v", false, "Verbose logging")
	fs.IntVar(&opts.maxConns, "max-conns", 0, "Maximum concurrent connections (0 = unlimited)")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: dllbridge [-v] [-max-conns N] <path_to_library> [port]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, errors.Usage(err.Error())
	}
	if fs.NArg() < 1 || fs.NArg() > 2 {
		fs.Usage()
		return nil, errors.Usage("expected a library path and an optional port")
	}
	if opts.maxConns < 0 {
		return nil, errors.Usage(fmt.Sprintf("invalid -max-conns %d", opts.maxConns))
	}

	opts.library = fs.Arg(0)
	if fs.NArg() == 2 {
		port, err := strconv.Atoi(fs.Arg(1))
		if err != nil || port < 0 || port > 65535 {
			return nil, errors.Usage(fmt.Sprintf("invalid port %q", fs.Arg(1)))
		}
		opts.port = port
	}
	return opts, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	log, err := newLogger(opts.verbose)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer log.Sync()
	library.SetLogger(log.Named("library"))
	protocol.SetLogger(log.Named("protocol"))
	server.SetLogger(log.Named("server"))

	handle, err := library.Open(ctx, opts.library)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer handle.Close()
	fmt.Fprintf(stdout, "Loaded library: %s (%s)\n", opts.library, handle.Library().Kind())

	srv := server.New(handle, server.Config{Port: opts.port, MaxConns: opts.maxConns})
	ln, err := srv.Listen()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Server listening on %s\n", ln.Addr())

	if err := srv.Serve(ctx, ln); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

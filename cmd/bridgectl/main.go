package main

import (
	"bufio"
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/wippyai/dllbridge/client"
	"github.com/wippyai/dllbridge/protocol"
)

func main() {
	var (
		addr        = flag.String("addr", "127.0.0.1:5000", "Bridge server address")
		timeout     = flag.Duration("timeout", 30*time.Second, "Per-request timeout (0 = none)")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if flag.NArg() > 0 {
		fmt.Fprintln(os.Stderr, "Usage: bridgectl [-addr host:port] [-timeout d] < requests")
		fmt.Fprintln(os.Stderr, "       bridgectl [-addr host:port] -i  (interactive mode)")
		os.Exit(1)
	}

	if *interactive || term.IsTerminal(int(os.Stdin.Fd())) {
		if err := runInteractive(*addr, *timeout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c, err := client.Dial(ctx, *addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer c.Close()

	if err := pipe(ctx, c, *timeout, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		c.Close()
		os.Exit(1)
	}
}

// pipe sends every non-blank line of in and writes each response to out in
// wire form. Server-side errors are printed and do not stop the loop.
func pipe(ctx context.Context, c *client.Client, timeout time.Duration, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		resp, err := do(ctx, c, timeout, line)
		var remote *client.RemoteError
		switch {
		case stderrors.As(err, &remote):
			fmt.Fprintf(out, "%s%s\n", protocol.ErrorPrefix, remote.Message)
		case err != nil:
			return err
		default:
			fmt.Fprintln(out, resp)
		}
	}
	return sc.Err()
}

func do(ctx context.Context, c *client.Client, timeout time.Duration, line string) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return c.Do(ctx, line)
}

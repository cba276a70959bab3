package client

import (
	"bufio"
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/wippyai/dllbridge/errors"
	"github.com/wippyai/dllbridge/protocol"
	"github.com/wippyai/dllbridge/signature"
)

// RemoteError is an ERR response sent by the server
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return "remote: " + e.Message
}

// Client is a connection to a bridge server
type Client struct {
	conn net.Conn
	r    *bufio.Reader
}

// Dial connects to the server at addr.
func Dial(ctx context.Context, addr string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseServe, errors.KindLoad, err, "Failed to connect to "+addr)
	}
	return &Client{conn: conn, r: bufio.NewReader(conn)}, nil
}

// Addr returns the server address.
func (c *Client) Addr() net.Addr {
	return c.conn.RemoteAddr()
}

// Do sends one request line and returns the response without its line
// terminator. The deadline of ctx, if any, bounds the round trip.
func (c *Client) Do(ctx context.Context, line string) (string, error) {
	line = strings.TrimRight(line, "\r\n")
	if strings.ContainsAny(line, "\r\n") {
		return "", errors.InvalidInput(errors.PhaseProtocol, "Request must be a single line")
	}

	deadline, _ := ctx.Deadline()
	if err := c.conn.SetDeadline(deadline); err != nil {
		return "", err
	}

	stop := context.AfterFunc(ctx, func() {
		c.conn.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	if _, err := c.conn.Write([]byte(line + "\n")); err != nil {
		return "", c.ioError(ctx, err, "write")
	}
	resp, err := c.r.ReadString('\n')
	if err != nil {
		return "", c.ioError(ctx, err, "read")
	}

	resp = strings.TrimSuffix(resp, "\n")
	if msg, ok := strings.CutPrefix(resp, protocol.ErrorPrefix); ok {
		return "", &RemoteError{Message: msg}
	}
	return resp, nil
}

func (c *Client) ioError(ctx context.Context, err error, op string) error {
	var ne net.Error
	if cerr := ctx.Err(); cerr != nil {
		err = cerr
	} else if _, ok := ctx.Deadline(); ok && stderrors.As(err, &ne) && ne.Timeout() {
		err = context.DeadlineExceeded
	}
	return errors.Wrap(errors.PhaseServe, errors.KindCallFailed, err, op+" "+c.conn.RemoteAddr().String())
}

// Call invokes name with the given signature text and arguments and parses
// the integer result.
func (c *Client) Call(ctx context.Context, name, sig string, args ...int32) (int32, error) {
	line, err := FormatCall(name, sig, args...)
	if err != nil {
		return 0, err
	}
	resp, err := c.Do(ctx, line)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(resp, 10, 32)
	if err != nil {
		return 0, errors.Wrap(errors.PhaseProtocol, errors.KindMalformed, err, fmt.Sprintf("Invalid response %q", resp))
	}
	return int32(n), nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// FormatCall builds a call request line. The signature is validated
// locally first.
func FormatCall(name, sig string, args ...int32) (string, error) {
	if name == "" || strings.ContainsAny(name, " \t\r\n") {
		return "", errors.InvalidInput(errors.PhaseProtocol, "Invalid function name")
	}
	if _, err := signature.Parse(sig); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(protocol.CommandCall)
	b.WriteByte(' ')
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(protocol.SignaturePrefix)
	b.WriteString(sig)
	for _, a := range args {
		b.WriteByte(' ')
		b.WriteString(strconv.FormatInt(int64(a), 10))
	}
	return b.String(), nil
}

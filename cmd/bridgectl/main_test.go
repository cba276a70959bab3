package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wippyai/dllbridge/client"
	"github.com/wippyai/dllbridge/internal/testlib"
	"github.com/wippyai/dllbridge/library"
	"github.com/wippyai/dllbridge/server"
)

func startBridge(t *testing.T) string {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	h, err := library.Open(ctx, testlib.WasmFile(t))
	if err != nil {
		t.Fatal(err)
	}
	srv := server.New(h, server.Config{})
	ln, err := srv.Listen()
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		srv.Serve(ctx, ln)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		h.Close()
	})
	return ln.Addr().String()
}

func TestPipe(t *testing.T) {
	addr := startBridge(t)
	ctx := context.Background()

	c, err := client.Dial(ctx, addr)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	in := strings.NewReader(strings.Join([]string{
		"call helloworld sig:void -> int",
		"",
		"call add sig:int,int -> int 3 4",
		"nonsense",
		"call sub sig:int,int -> int 3 x",
		"call sub sig:int,int->int 10 3",
	}, "\n"))

	var out bytes.Buffer
	if err := pipe(ctx, c, time.Second, in, &out); err != nil {
		t.Fatal(err)
	}

	want := "42\n7\nERR Command must start with 'call'\nERR Argument parsing error: argument 1 \"x\" is not a 32-bit integer\n7\n"
	if out.String() != want {
		t.Errorf("output:\n%s\nwant:\n%s", out.String(), want)
	}
}

func TestPipe_ConnectionLost(t *testing.T) {
	addr := startBridge(t)
	ctx := context.Background()

	c, err := client.Dial(ctx, addr)
	if err != nil {
		t.Fatal(err)
	}
	c.Close()

	var out bytes.Buffer
	if err := pipe(ctx, c, time.Second, strings.NewReader("call helloworld sig:void -> int\n"), &out); err == nil {
		t.Error("pipe on a closed client should fail")
	}
}

func TestDescribe(t *testing.T) {
	if got := describe("call add sig:int,int -> int 1 2"); !strings.Contains(got, "func(a0: s32, a1: s32) -> s32") {
		t.Errorf("describe() = %q", got)
	}
	if got := describe("call add"); got != "" {
		t.Errorf("describe(incomplete) = %q, want empty", got)
	}
	if got := describe("call add sig:int,long -> int"); got != "" {
		t.Errorf("describe(bad type) = %q, want empty", got)
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestInteractiveModel(t *testing.T) {
	addr := startBridge(t)
	m := newInteractiveModel(addr, time.Second)

	if !strings.Contains(m.View(), "Connecting") {
		t.Errorf("initial view = %q", m.View())
	}

	m.Update(m.connect())
	if m.state != stateReady {
		t.Fatalf("state after connect = %v, err = %v", m.state, m.err)
	}
	defer m.client.Close()

	m.Update(key("call add sig:int,int -> int 2 5"))
	if !strings.Contains(m.View(), "s32") {
		t.Errorf("view does not preview the signature:\n%s", m.View())
	}

	_, cmd := m.Update(key("enter"))
	if cmd == nil || m.state != stateWaiting {
		t.Fatal("enter did not send the request")
	}
	if _, again := m.Update(key("enter")); again != nil {
		t.Error("second request sent while waiting")
	}

	m.Update(cmd())
	if m.state != stateReady || len(m.history) != 1 {
		t.Fatalf("state = %v, history = %d", m.state, len(m.history))
	}
	if h := m.history[0]; h.result != "7" || h.err != nil {
		t.Errorf("history[0] = %+v", h)
	}

	m.Update(key("nonsense"))
	_, cmd = m.Update(key("enter"))
	m.Update(cmd())
	if m.err != nil {
		t.Fatalf("remote error ended the session: %v", m.err)
	}
	var remote *client.RemoteError
	if !errors.As(m.history[1].err, &remote) {
		t.Errorf("history[1].err = %v, want remote error", m.history[1].err)
	}
	if !strings.Contains(m.View(), "ERR Command must start with 'call'") {
		t.Errorf("view missing error response:\n%s", m.View())
	}

	m.Update(key("up"))
	if got := m.input.Value(); got != "nonsense" {
		t.Errorf("recall 1 = %q", got)
	}
	m.Update(key("up"))
	if got := m.input.Value(); got != "call add sig:int,int -> int 2 5" {
		t.Errorf("recall 2 = %q", got)
	}
	m.Update(key("down"))
	m.Update(key("down"))
	if got := m.input.Value(); got != "" {
		t.Errorf("input after recall reset = %q", got)
	}
}

func TestInteractiveModel_ConnectFailure(t *testing.T) {
	m := newInteractiveModel("127.0.0.1:1", time.Second)
	m.Update(connectedMsg{err: errors.New("connection refused")})
	if !strings.Contains(m.View(), "connection refused") {
		t.Errorf("view = %q", m.View())
	}
}

func TestInteractiveModel_ReconnectAfterTransportError(t *testing.T) {
	addr := startBridge(t)
	m := newInteractiveModel(addr, time.Second)

	m.Update(m.connect())
	if m.state != stateReady {
		t.Fatalf("state after connect = %v, err = %v", m.state, m.err)
	}
	m.client.Close()

	m.Update(key("call helloworld sig:void -> int"))
	_, cmd := m.Update(key("enter"))
	_, reconnect := m.Update(cmd())
	if m.state != stateConnecting || m.client != nil {
		t.Fatalf("state = %v after transport error, want reconnecting", m.state)
	}
	if reconnect == nil {
		t.Fatal("no reconnect command")
	}
	if len(m.history) != 1 || m.history[0].err == nil {
		t.Errorf("failed request not recorded: %+v", m.history)
	}

	m.Update(reconnect())
	if m.state != stateReady || m.err != nil {
		t.Fatalf("state = %v, err = %v after reconnect", m.state, m.err)
	}
	defer m.client.Close()

	m.Update(key("call helloworld sig:void -> int"))
	_, cmd = m.Update(key("enter"))
	m.Update(cmd())
	if h := m.history[len(m.history)-1]; h.result != "42" || h.err != nil {
		t.Errorf("request after reconnect = %+v", h)
	}
}

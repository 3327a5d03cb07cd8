package workers

import (
	"bufio"
	"chat-relay/contract"
	"chat-relay/protocol"
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// startServer runs an acceptor on a loopback port under a supervisor.
func startServer(t *testing.T, f *relayFixture) (addr string, stop func() error) {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	sup := NewSupervisor(f.log)
	acceptor := NewAcceptorWorker(listener, sup, func(conn net.Conn) contract.Worker {
		return NewSessionWorker(conn, f.registry, f.transfers, nil, f.monitoring, f.log)
	}, f.log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sup.Add(acceptor).Run(ctx) }()

	return listener.Addr().String(), func() error {
		cancel()
		err := <-done
		require.True(t, sup.Wait(readTimeout))
		return err
	}
}

func dial(t *testing.T, addr, username string) *client {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	c := &client{t: t, conn: conn, reader: bufio.NewReader(conn)}
	c.send(username)
	c.expect("You joined room: default")
	return c
}

func TestServer_Chat_And_Rooms(t *testing.T) {
	req := require.New(t)
	f := newRelayFixture(t)
	addr, stop := startServer(t, f)

	// Given A and B in the default room
	a := dial(t, addr, "A")
	b := dial(t, addr, "B")

	// When A says hello, B receives it and A gets no echo
	a.send("hello")
	b.expect("hello")
	a.expectSilence()

	// When A moves to lobby, neither sees the other anymore
	a.send("/join lobby")
	a.expect("You joined room: lobby")
	a.send("only lobby")
	b.expectSilence()
	b.send("only default")
	a.expectSilence()

	req.NoError(stop())
	a.expectClosed()
	b.expectClosed()
	req.Empty(f.registry.Rooms())
}

func TestServer_File_Upload(t *testing.T) {
	req := require.New(t)
	f := newRelayFixture(t)
	addr, stop := startServer(t, f)

	// Given A and B in the default room
	a := dial(t, addr, "A")
	b := dial(t, addr, "B")

	// When A uploads report.txt
	a.send("/file report.txt")
	req.NoError(protocol.WriteFrame(a.conn, []byte("hello")))

	// Then B is notified and the file is stored byte for byte
	b.expect("File received: report.txt")
	a.expect("File received: report.txt")
	content, err := os.ReadFile(filepath.Join(f.dir, "received_report.txt"))
	req.NoError(err)
	req.Equal([]byte("hello"), content)

	req.NoError(stop())
}

func TestServer_Fault_Does_Not_Stop_Listener(t *testing.T) {
	req := require.New(t)
	f := newRelayFixture(t)
	addr, stop := startServer(t, f)

	// Given a client breaking the grammar
	a := dial(t, addr, "A")
	a.send("/file")
	a.expectClosed()

	// Then new clients are still served
	b := dial(t, addr, "B")
	c := dial(t, addr, "C")
	b.send("still up")
	c.expect("still up")

	req.Eventually(func() bool {
		return f.monitoring.Snapshot().SessionsActive == 2
	}, readTimeout, 10*time.Millisecond)
	req.NoError(stop())
}

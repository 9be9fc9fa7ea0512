// Package server implements the Connection Layer and Server Controller
// (§4.H, §4.I): the per-connection read/dispatch/write loop and the
// listener/signal lifecycle around it. Grounded on the teacher's
// handleOneConnection and main() in cmd/main.go, restructured around the
// resp/command/store split instead of the teacher's global package state.
package server

import (
	"errors"
	"io"
	"net"
	"strings"
	"sync"

	"github.com/nullbyte-labs/kvstored/internal/command"
	"github.com/nullbyte-labs/kvstored/internal/logging"
	"github.com/nullbyte-labs/kvstored/internal/resp"
)

// Conn binds one TCP connection to its parsed command.Client identity.
// Deliver (called by the pubsub router, possibly from another connection's
// goroutine) and the connection's own reply-writing both go through
// writeMu, since PUBLISH fan-out and a client's own command reply can race
// on the same socket (§4.G: "a slow subscriber blocks only its own
// writes").
type Conn struct {
	net.Conn
	client *command.Client

	writeMu sync.Mutex
	writer  *resp.Writer
}

func newConn(nc net.Conn) *Conn {
	c := &Conn{Conn: nc, writer: resp.NewWriter(nc)}
	c.client = command.NewClient(c.Deliver)
	return c
}

// Deliver satisfies pubsub.Subscriber by writing a pre-framed reply
// straight to the socket, bypassing the request/response loop below.
func (c *Conn) Deliver(frame []byte) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_, _ = c.Conn.Write(frame)
}

// serve runs the read-dispatch-write loop for the lifetime of the
// connection (§4.H). It returns when the client disconnects, sends a
// malformed frame, or issues QUIT or SHUTDOWN.
func (c *Conn) serve(d *command.Dispatcher, log *logging.Logger) {
	reader := resp.NewReader(c.Conn)
	remote := c.Conn.RemoteAddr()

	d.Router.RemoveAll(c.client) // idempotent safety net; real cleanup is the defer below
	d.OnConnect()
	log.Info("accepted connection from %s", remote)
	defer func() {
		d.Router.RemoveAll(c.client)
		d.OnDisconnect()
		c.Conn.Close()
		log.Info("closed connection from %s", remote)
	}()

	for {
		req, err := reader.ReadCommand()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Warn("protocol error from %s: %v", remote, err)
			}
			return
		}

		reply := d.Dispatch(c.client, req)

		c.writeMu.Lock()
		writeErr := c.writer.WriteValue(reply)
		if writeErr == nil {
			writeErr = c.writer.Flush()
		}
		c.writeMu.Unlock()
		if writeErr != nil {
			log.Warn("write error to %s: %v", remote, writeErr)
			return
		}

		switch strings.ToUpper(req.Str0()) {
		case "QUIT", "SHUTDOWN":
			return
		}
	}
}

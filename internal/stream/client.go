// Package stream implements the long-lived TCP client that connects to
// an APRS-IS relay, performs the login handshake, and emits decoded
// lines on the Client's Events channel. It is built on gnet as an
// event-driven client rather than a server, the way the teacher's
// Davis-instruments forwarder drives a gnet client against a weather
// console instead of accepting inbound connections.
package stream

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/chrissnell/aprsingest/internal/apperr"
	"github.com/panjf2000/gnet/v2"
	"go.uber.org/zap"
)

// Event is one occurrence surfaced by the Client on its Events channel.
type Event struct {
	Kind      EventKind
	Line      string // populated for EventLine
	Validated bool   // populated for EventValidated
	Err       error  // populated for EventDisconnected
}

// EventKind enumerates the kinds of Event the Client emits.
type EventKind int

const (
	EventLine EventKind = iota
	EventValidated
	EventDisconnected
)

// Client is a single-connection APRS-IS TCP client. Exactly one
// connection may be active at a time; Connect while already connected
// fails with an InvalidState error.
type Client struct {
	*gnet.BuiltinEventEngine

	server   string
	login    string
	logger   *zap.SugaredLogger
	Events   chan Event

	mu        sync.Mutex
	conn      gnet.Conn
	connected bool
	buf       bytes.Buffer
}

// New constructs a Client that will log in with the given login line
// (already formatted per §6.1) once connected to server ("host:port").
func New(server, loginLine string, logger *zap.SugaredLogger) *Client {
	return &Client{
		server: server,
		login:  loginLine,
		logger: logger,
		Events: make(chan Event, 256),
	}
}

// Connect dials the APRS-IS server and blocks (via gnet.Run) until the
// connection is torn down by EOF, error, or Close. Callers typically run
// it in its own goroutine and select on Events plus their cancellation
// context.
func (c *Client) Connect() error {
	c.mu.Lock()
	if c.connected {
		c.mu.Unlock()
		return apperr.InvalidState("stream client is already connected")
	}
	c.connected = true
	c.mu.Unlock()

	err := gnet.Run(c, "tcp://"+c.server,
		gnet.WithMulticore(false),
		gnet.WithReusePort(false),
		gnet.WithTicker(false),
	)

	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()

	return err
}

// Close tears the connection down, if one is open. Idempotent; safe to
// call during shutdown even if Connect never established a connection.
func (c *Client) Close() {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
}

// Connected reports whether a live connection is currently open, for use
// by the read API's /health endpoint.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

func (c *Client) OnBoot(eng gnet.Engine) gnet.Action {
	return gnet.None
}

func (c *Client) OnOpen(conn gnet.Conn) ([]byte, gnet.Action) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	c.logger.Infof("connected to APRS-IS server %s", c.server)
	return []byte(c.login + "\r\n"), gnet.None
}

func (c *Client) OnClose(conn gnet.Conn, err error) gnet.Action {
	c.mu.Lock()
	c.conn = nil
	c.mu.Unlock()

	c.emit(Event{Kind: EventDisconnected, Err: err})
	return gnet.Close
}

func (c *Client) OnTraffic(conn gnet.Conn) gnet.Action {
	data, err := conn.Next(-1)
	if err != nil {
		return gnet.Close
	}

	c.mu.Lock()
	c.buf.Write(data)
	lines := c.drainLines()
	c.mu.Unlock()

	for _, line := range lines {
		c.handleLine(line)
	}

	return gnet.None
}

// drainLines must be called with c.mu held. It splits complete
// newline-terminated lines out of the buffer, leaving any partial tail.
func (c *Client) drainLines() []string {
	var lines []string
	for {
		idx := bytes.IndexByte(c.buf.Bytes(), '\n')
		if idx < 0 {
			break
		}
		line := string(c.buf.Next(idx + 1))
		lines = append(lines, strings.TrimRight(line, "\r\n"))
	}
	return lines
}

func (c *Client) handleLine(line string) {
	if line == "" {
		return
	}

	if strings.HasPrefix(line, "#") {
		if strings.Contains(line, "# logresp") {
			lower := strings.ToLower(line)
			verified := strings.Contains(lower, "verified") && !strings.Contains(lower, "unverified")
			c.emit(Event{Kind: EventValidated, Validated: verified})
			if !verified {
				c.logger.Warnf("APRS-IS login unverified: %s", line)
			}
		}
		return
	}

	c.emit(Event{Kind: EventLine, Line: line})
}

func (c *Client) emit(ev Event) {
	select {
	case c.Events <- ev:
	default:
		c.logger.Warn("stream client event channel full, dropping event")
	}
}

// LoginLine formats the APRS-IS login line per §6.1:
// "user <CALL> pass <PASS> vers <APPNAME> <VERSION>[ filter <FILTER>]".
func LoginLine(callsign, password, appName, version, filter string) string {
	line := fmt.Sprintf("user %s pass %s vers %s %s", callsign, password, appName, version)
	if filter != "" {
		line += " filter " + filter
	}
	return line
}

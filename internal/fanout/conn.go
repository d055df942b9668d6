package fanout

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/chrissnell/aprsingest/internal/packet"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wireRequest is a client-invoked method under /hubs/packets, per §6.3.
type wireRequest struct {
	Method   string  `json:"method"`
	Callsign string  `json:"callsign,omitempty"`
	Lat      float64 `json:"latitude,omitempty"`
	Lon      float64 `json:"longitude,omitempty"`
	RadiusKm float64 `json:"radiusKm,omitempty"`
}

// wireEvent is a server-emitted message: either a receive_packet payload
// or a protocol-level error with a human-readable message.
type wireEvent struct {
	Event   string      `json:"event"`
	Packet  *packet.DTO `json:"packet,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Conn is the websocket-backed Subscriber implementation. One Conn is
// created per accepted connection under /hubs/packets.
type Conn struct {
	id       string
	ws       *websocket.Conn
	logger   *zap.SugaredLogger
	registry *Registry

	writeMu sync.Mutex
}

// Serve upgrades an HTTP request to a websocket connection, registers it
// with registry, and blocks reading client-invoked methods until the
// connection closes. It unregisters the connection on return.
func Serve(w http.ResponseWriter, r *http.Request, registry *Registry, logger *zap.SugaredLogger) error {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	c := &Conn{
		id:       uuid.New().String(),
		ws:       ws,
		logger:   logger,
		registry: registry,
	}

	registry.Connect(c)
	defer registry.Disconnect(c.id)

	for {
		var req wireRequest
		if err := ws.ReadJSON(&req); err != nil {
			return nil
		}
		c.handle(req)
	}
}

func (c *Conn) ID() string { return c.id }

// Send delivers a packet DTO to the client as a receive_packet event.
func (c *Conn) Send(dto packet.DTO) error {
	return c.writeEvent(wireEvent{Event: "receive_packet", Packet: &dto})
}

func (c *Conn) writeEvent(ev wireEvent) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteJSON(ev)
}

func (c *Conn) fail(message string) {
	if err := c.writeEvent(wireEvent{Event: "error", Message: message}); err != nil {
		c.logger.Debugf("failed to deliver protocol error to subscriber %s: %v", c.id, err)
	}
}

func (c *Conn) handle(req wireRequest) {
	var err error
	switch req.Method {
	case "subscribe_all":
		c.registry.SubscribeAll(c.id)
	case "unsubscribe_all":
		c.registry.UnsubscribeAll(c.id)
	case "subscribe_callsign":
		err = c.registry.SubscribeCallsign(c.id, req.Callsign)
	case "unsubscribe_callsign":
		err = c.registry.UnsubscribeCallsign(c.id, req.Callsign)
	case "subscribe_area":
		err = c.registry.SubscribeArea(c.id, req.Lat, req.Lon, req.RadiusKm)
	case "unsubscribe_area":
		err = c.registry.UnsubscribeArea(c.id, req.Lat, req.Lon)
	default:
		err = fmt.Errorf("unknown method: %q", req.Method)
	}

	if err != nil {
		c.fail(err.Error())
	}
}

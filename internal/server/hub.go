package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/handcloud/internal/engine"
	"github.com/ayusman/handcloud/internal/logging"
)

// Hub limits.
const (
	// BroadcastInterval caps websocket snapshots at about 30 per second.
	BroadcastInterval = time.Second / 30
	// clientBuffer is how many messages may queue per client before
	// frames are dropped for it.
	clientBuffer = 4
	writeTimeout = 2 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// snapshotMessage is the wire form of one display frame.
type snapshotMessage struct {
	Type      string    `json:"type"`
	Frame     uint64    `json:"frame"`
	Shape     string    `json:"shape"`
	Spread    float64   `json:"spread"`
	Color     string    `json:"color"`
	PointSize float64   `json:"point_size"`
	Rotation  float64   `json:"rotation"`
	Positions []float32 `json:"positions,omitempty"`
}

func newSnapshotMessage(snap engine.Snapshot, withPositions bool) snapshotMessage {
	msg := snapshotMessage{
		Type:      "snapshot",
		Frame:     snap.Frame,
		Shape:     snap.Shape.String(),
		Spread:    snap.Spread,
		Color:     snap.ColorHex(),
		PointSize: snap.PointSize,
		Rotation:  snap.Rotation,
	}
	if withPositions {
		msg.Positions = snap.Positions
	}
	return msg
}

type hubClient struct {
	send      chan []byte
	positions bool
}

// Hub fans controller snapshots out to websocket clients. It keeps only
// the newest snapshot and sends it at most every BroadcastInterval; a
// client whose queue is full misses frames instead of stalling the others.
type Hub struct {
	log         logging.Logger
	unsubscribe func()

	mu      sync.Mutex
	latest  engine.Snapshot
	pending bool
	clients map[*hubClient]struct{}

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewHub subscribes to c and starts broadcasting.
func NewHub(c *engine.Controller, log logging.Logger) *Hub {
	h := &Hub{
		log:     logging.OrNop(log),
		clients: make(map[*hubClient]struct{}),
		stopCh:  make(chan struct{}),
	}
	h.unsubscribe = c.Subscribe(h.offer)
	go h.run()
	return h
}

// offer records the newest snapshot. It runs on the display goroutine.
func (h *Hub) offer(snap engine.Snapshot) {
	h.mu.Lock()
	h.latest = snap
	h.pending = true
	h.mu.Unlock()
}

func (h *Hub) run() {
	ticker := time.NewTicker(BroadcastInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stopCh:
			return
		case <-ticker.C:
			h.broadcast()
		}
	}
}

func (h *Hub) broadcast() {
	h.mu.Lock()
	if !h.pending || len(h.clients) == 0 {
		h.mu.Unlock()
		return
	}
	snap := h.latest
	h.pending = false
	clients := make([]*hubClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	var full, lite []byte
	for _, c := range clients {
		var msg []byte
		var err error
		if c.positions {
			if full == nil {
				full, err = json.Marshal(newSnapshotMessage(snap, true))
			}
			msg = full
		} else {
			if lite == nil {
				lite, err = json.Marshal(newSnapshotMessage(snap, false))
			}
			msg = lite
		}
		if err != nil {
			h.log.Errorf("encode snapshot: %v", err)
			return
		}

		select {
		case c.send <- msg:
		default:
		}
	}
}

// ClientCount returns the number of connected websocket clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close stops broadcasting and unsubscribes from the controller.
func (h *Hub) Close() {
	h.stopOnce.Do(func() {
		close(h.stopCh)
		h.unsubscribe()
	})
}

// ServeHTTP upgrades to a websocket and streams snapshots until the client
// goes away. ?positions=false omits the particle buffer.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	client := &hubClient{
		send:      make(chan []byte, clientBuffer),
		positions: r.URL.Query().Get("positions") != "false",
	}

	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, client)
		h.mu.Unlock()
	}()

	// The reader only notices when the peer closes.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case <-h.stopCh:
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeTimeout))
			return
		case msg := <-client.send:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}
}

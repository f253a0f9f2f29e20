package server

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/ayusman/handcloud/internal/detector"
	"github.com/ayusman/handcloud/internal/logging"
)

// handsReply acknowledges one received frame with the signals it produced.
type handsReply struct {
	Type    string   `json:"type"`
	Signals []string `json:"signals"`
}

// HandsHandler accepts hand frames from clients that run the landmark
// model themselves, such as a browser using MediaPipe.
type HandsHandler struct {
	sink HandSink
	log  logging.Logger
}

// NewHandsHandler creates a HandsHandler feeding sink.
func NewHandsHandler(sink HandSink, log logging.Logger) *HandsHandler {
	return &HandsHandler{sink: sink, log: logging.OrNop(log)}
}

// ServeHTTP reads one JSON HandFrame per text message. Messages that fail
// to decode are logged and skipped, and incomplete hands are dropped.
func (h *HandsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warnf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debugf("hands client closed: %v", err)
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}

		frame, err := detector.ParseHandFrame(data)
		if err != nil {
			h.log.Warnf("bad hand frame: %v", err)
			continue
		}

		signals := h.sink.HandleFrame(frame)
		names := signals.Names()
		if names == nil {
			names = []string{}
		}
		if err := conn.WriteJSON(handsReply{Type: "signals", Signals: names}); err != nil {
			return
		}
	}
}

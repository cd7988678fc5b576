package client

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Event is one fan-out message from the server. Data is left raw because the
// payload shape varies by type and consumers are expected to re-fetch the
// authoritative list on any event of interest rather than trust the payload.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Subscribe dials the server's /ws endpoint and invokes handler for every
// event until ctx is canceled or the connection drops. Malformed frames are
// logged and skipped. The server never expects messages from us, so the
// connection is read-only after the handshake.
func Subscribe(ctx context.Context, wsURL string, handler func(Event)) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Unblock the read loop when the context ends.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			deadline := time.Now().Add(time.Second)
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		var ev Event
		if err := json.Unmarshal(msg, &ev); err != nil {
			log.Warn().Err(err).Msg("skipping malformed event frame")
			continue
		}
		handler(ev)
	}
}

package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// streamSolveEventsWS is the websocket twin of the SSE stream: the client
// receives solve lifecycle events as JSON frames until it disconnects.
func (s *Server) streamSolveEventsWS(w http.ResponseWriter, r *http.Request, id string) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ch := s.Broker.Subscribe(id)
	defer s.Broker.Unsubscribe(id, ch)

	// reader goroutine notices client close
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(20 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case evt, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(map[string]any{"type": evt.Type, "data": evt.Data}); err != nil {
				log.Printf("ws write failed: %v", err)
				return
			}
		}
	}
}

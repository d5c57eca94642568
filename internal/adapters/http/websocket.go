package http

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/halalfinder/internal/pkg/metrics"
)

// wsMessage is sent from client to subscribe/unsubscribe to feeds.
type wsMessage struct {
	Action    string `json:"action"`     // "subscribe" | "unsubscribe"
	Channel   string `json:"channel"`    // "session" | "reviews" (default: session)
	SessionID string `json:"session_id"` // required for channel "session"
	VenueID   string `json:"venue_id"`   // venue filter for "reviews" ("" = all venues)
}

// WebSocketHandler returns a handler that upgrades to WebSocket and relays
// NATS events to connected clients. A session subscription streams the
// session's view state after every mutation; a reviews subscription streams
// newly submitted reviews.
// Clients send JSON: {"action":"subscribe","channel":"session","session_id":"<uuid>"}
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		if nc == nil {
			_ = c.WriteMessage(websocket.TextMessage, []byte(`{"error":"event relay unavailable"}`))
			return
		}

		remoteAddr := c.RemoteAddr().String()
		log.Printf("ws client connected: %s", remoteAddr)
		metrics.ActiveWebsockets.Inc()
		defer metrics.ActiveWebsockets.Dec()

		var mu sync.Mutex
		subs := make(map[string]*nats.Subscription) // subject -> subscription

		// Helper: thread-safe write
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		// Read client messages for subscribe/unsubscribe
		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			// Build NATS subject
			channel := m.Channel
			if channel == "" {
				channel = "session"
			}

			var subject string
			switch channel {
			case "session":
				if m.SessionID == "" {
					_ = writeJSON(map[string]string{"error": "session_id is required"})
					continue
				}
				subject = "sessions.update." + m.SessionID
			case "reviews":
				if m.VenueID != "" {
					subject = "venues.review." + m.VenueID
				} else {
					subject = "venues.review.>"
				}
			default:
				_ = writeJSON(map[string]string{"error": "unknown channel: " + channel})
				continue
			}

			switch m.Action {
			case "subscribe":
				if _, exists := subs[subject]; exists {
					_ = writeJSON(map[string]string{"status": "already subscribed", "subject": subject})
					continue
				}
				s, err := nc.Subscribe(subject, func(msg *nats.Msg) {
					_ = writeJSON(json.RawMessage(msg.Data))
				})
				if err != nil {
					_ = writeJSON(map[string]string{"error": "subscribe failed: " + err.Error()})
					continue
				}
				subs[subject] = s
				_ = writeJSON(map[string]string{"status": "subscribed", "subject": subject})

			case "unsubscribe":
				if s, exists := subs[subject]; exists {
					_ = s.Unsubscribe()
					delete(subs, subject)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "subject": subject})
				} else {
					_ = writeJSON(map[string]string{"error": "not subscribed to " + subject})
				}

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		// Cleanup
		close(done)
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
		log.Printf("ws client disconnected: %s", remoteAddr)
	}
}

package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"nhooyr.io/websocket"
)

// Event is one message pushed to connected UI clients.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// WSHub fans library events out to every connected UI client. It is
// the live transport behind the notifications interfaces.
type WSHub struct {
	mu      sync.RWMutex
	clients map[string]*wsClient
}

func NewWSHub() *WSHub {
	return &WSHub{clients: make(map[string]*wsClient)}
}

// Handle upgrades the request and serves the client until it
// disconnects.
func (h *WSHub) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Printf("WebSocket: accept failed: %v", err)
		return
	}

	client := &wsClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, 32),
	}

	h.mu.Lock()
	h.clients[client.id] = client
	count := len(h.clients)
	h.mu.Unlock()
	log.Printf("WebSocket: client %s connected (%d total)", client.id, count)

	defer func() {
		h.mu.Lock()
		delete(h.clients, client.id)
		h.mu.Unlock()
		conn.Close(websocket.StatusNormalClosure, "")
		log.Printf("WebSocket: client %s disconnected", client.id)
	}()

	ctx := r.Context()
	go func() {
		// Drain reads so pings and close frames are processed; the
		// protocol is push-only.
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-client.send:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := conn.Write(writeCtx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

// Broadcast sends the event to every connected client. Clients whose
// buffers are full are skipped rather than blocking the sender.
func (h *WSHub) Broadcast(event Event) {
	msg, err := json.Marshal(event)
	if err != nil {
		log.Printf("WebSocket: failed to marshal event: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		select {
		case client.send <- msg:
		default:
			log.Printf("WebSocket: client %s send buffer full, dropping event", client.id)
		}
	}
}

// Notify implements notifications.Notifier.
func (h *WSHub) Notify(level, message string) {
	h.Broadcast(Event{Type: "toast", Payload: map[string]string{
		"level":   level,
		"message": message,
	}})
}

// FolderUpdated implements notifications.Events.
func (h *WSHub) FolderUpdated(folderName string) {
	h.Broadcast(Event{Type: "folder:update", Payload: map[string]string{
		"folder": folderName,
	}})
}

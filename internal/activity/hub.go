package activity

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Heartbeat is an SSE comment that keeps the connection alive. Clients
// ignore lines starting with a colon.
const Heartbeat = ": heartbeat\n\n"

// FormatEvent renders a message as a wire-format SSE event. Multiline data
// gets one "data:" prefix per line.
func FormatEvent(eventName, data string) string {
	var sb strings.Builder

	if eventName != "" {
		sb.WriteString(fmt.Sprintf("event: %s\n", eventName))
	}

	for _, line := range strings.Split(data, "\n") {
		sb.WriteString(fmt.Sprintf("data: %s\n", line))
	}

	sb.WriteString("\n")
	return sb.String()
}

// Hub fans activity events out to connected feed streams. A user may hold
// several connections (multiple tabs or devices); each gets its own channel.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID][]chan string
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[uuid.UUID][]chan string),
	}
}

// Register opens a stream for the user and returns its channel. The channel
// is buffered; a slow consumer drops events rather than blocking writers.
func (h *Hub) Register(userID uuid.UUID) chan string {
	ch := make(chan string, 10)

	h.mu.Lock()
	h.clients[userID] = append(h.clients[userID], ch)
	h.mu.Unlock()

	return ch
}

// Unregister closes a stream previously opened with Register.
func (h *Hub) Unregister(userID uuid.UUID, ch chan string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	channels := h.clients[userID]
	// Compact into a fresh slice; a reader may still hold the old backing
	// array.
	kept := make([]chan string, 0, len(channels))
	for _, c := range channels {
		if c != ch {
			kept = append(kept, c)
		}
	}

	if len(kept) == 0 {
		delete(h.clients, userID)
	} else {
		h.clients[userID] = kept
	}

	close(ch)
}

// SendToUser delivers a message to every connection the user holds. Full
// channels are skipped. The lock is held across the sends so Unregister
// cannot close a channel mid-delivery; sends never block, so the hold is
// brief.
func (h *Hub) SendToUser(userID uuid.UUID, message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.clients[userID] {
		select {
		case ch <- message:
		default:
		}
	}
}

// Broadcast delivers a message to every connected stream.
func (h *Hub) Broadcast(message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, channels := range h.clients {
		for _, ch := range channels {
			select {
			case ch <- message:
			default:
			}
		}
	}
}

// ClientCount returns the number of open streams.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, channels := range h.clients {
		total += len(channels)
	}
	return total
}

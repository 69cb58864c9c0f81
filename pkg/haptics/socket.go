// SPDX-License-Identifier: MIT
package haptics

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	applog "haptic/internal/log"
)

// pulseMessage is the JSON shape broadcast to websocket clients.
type pulseMessage struct {
	Type       string  `json:"type"`
	Intensity  float64 `json:"intensity"`
	Sharpness  float64 `json:"sharpness"`
	DurationMs int64   `json:"duration_ms"`
}

// WSBridge broadcasts pulses to websocket clients connected on
// /haptics. It exists for browser-hosted actuators (vibration API) and
// for visual debugging of the feedback stream. Broadcasts are rate
// limited so a small block size cannot flood clients.
type WSBridge struct {
	addr     string
	upgrader websocket.Upgrader

	clientsMutex sync.Mutex
	clients      map[*websocket.Conn]bool

	mu      sync.Mutex // protects server, running, quit
	server  *http.Server
	running bool
	quit    chan struct{}

	queue chan pulseMessage

	sendMutex       sync.Mutex
	lastSend        time.Time
	minSendInterval time.Duration

	stopped chan error
}

// NewWSBridge creates a bridge serving on the given port. The HTTP
// server is started by Start, not here.
func NewWSBridge(port string) *WSBridge {
	return &WSBridge{
		addr:    ":" + port,
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // local debugging surface, any origin is fine
			},
		},
		minSendInterval: 10 * time.Millisecond,
		queue:           make(chan pulseMessage, 64),
		stopped:         make(chan error, 1),
	}
}

// Supported always reports true; a bridge with no connected clients
// simply drops pulses.
func (b *WSBridge) Supported() bool { return true }

// Start launches the websocket server in its own goroutine. Safe to
// call repeatedly. An unexpected server exit is reported on Stopped.
func (b *WSBridge) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return nil
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/haptics", b.handleWebSocket)
	server := &http.Server{Addr: b.addr, Handler: mux}
	quit := make(chan struct{})
	b.server = server
	b.quit = quit
	b.running = true

	go b.broadcast(quit)
	go func() {
		applog.Infof("Haptics: websocket bridge listening on %s", b.addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			b.mu.Lock()
			if b.quit == quit {
				close(b.quit)
				b.quit = nil
				b.running = false
			}
			b.mu.Unlock()
			select {
			case b.stopped <- err:
			default:
			}
		}
	}()

	return nil
}

// Stop disconnects all clients and shuts the server down. Safe to call
// repeatedly.
func (b *WSBridge) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		return nil
	}
	b.running = false
	if b.quit != nil {
		close(b.quit)
		b.quit = nil
	}

	b.clientsMutex.Lock()
	for client := range b.clients {
		client.Close()
		delete(b.clients, client)
	}
	b.clientsMutex.Unlock()

	err := b.server.Close()
	b.server = nil
	return err
}

// handleWebSocket upgrades a connection and tracks it until the client
// goes away.
func (b *WSBridge) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		applog.Warnf("Haptics: websocket upgrade error: %v", err)
		return
	}

	b.clientsMutex.Lock()
	b.clients[conn] = true
	b.clientsMutex.Unlock()

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				b.clientsMutex.Lock()
				delete(b.clients, conn)
				b.clientsMutex.Unlock()
				conn.Close()
				return
			}
		}
	}()
}

// Pulse hands one pulse to the broadcast goroutine. It never blocks:
// pulses that exceed the rate limit or find the queue full are
// dropped, not queued; the next block brings a fresher value anyway.
func (b *WSBridge) Pulse(p Pulse) error {
	b.mu.Lock()
	running := b.running
	b.mu.Unlock()
	if !running {
		return ErrEngineStopped
	}

	b.sendMutex.Lock()
	now := time.Now()
	if now.Sub(b.lastSend) < b.minSendInterval {
		b.sendMutex.Unlock()
		return nil
	}
	b.lastSend = now
	b.sendMutex.Unlock()

	select {
	case b.queue <- pulseMessage{
		Type:       "pulse",
		Intensity:  p.Intensity,
		Sharpness:  p.Sharpness,
		DurationMs: int64(p.Duration / time.Millisecond),
	}:
	default:
		// A full queue means a stalled client; the caller is the audio
		// delivery path and must not wait for it.
	}
	return nil
}

// broadcast drains the pulse queue and fans each message out to the
// connected clients. JSON encoding and socket writes happen here,
// off the delivery path.
func (b *WSBridge) broadcast(quit chan struct{}) {
	for {
		select {
		case pm := <-b.queue:
			msg, err := json.Marshal(pm)
			if err != nil {
				applog.Warnf("Haptics: websocket encode error: %v", err)
				continue
			}
			b.clientsMutex.Lock()
			for client := range b.clients {
				if err := client.WriteMessage(websocket.TextMessage, msg); err != nil {
					client.Close()
					delete(b.clients, client)
				}
			}
			b.clientsMutex.Unlock()
		case <-quit:
			return
		}
	}
}

// Stopped delivers unexpected server-exit notifications.
func (b *WSBridge) Stopped() <-chan error {
	return b.stopped
}

var _ Actuator = (*WSBridge)(nil)

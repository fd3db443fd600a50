// Package ws streams build events to websocket clients and serves the inspector endpoints.
package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"orrery/backend/internal/core/domain/entity"
	"orrery/backend/internal/core/port/out/scene"
	"orrery/backend/internal/telemetry"
	"orrery/backend/internal/world"
)

const DefaultPingInterval = 10 * time.Second

// BodySource lists the bodies present in the world
type BodySource interface {
	All() []*world.Body
}

// EventSource is the telemetry store behind the feed
type EventSource interface {
	Subscribe(l telemetry.Listener) func()
	Events() []telemetry.BuildEvent
}

// SceneSource describes the nodes below a body root
type SceneSource interface {
	Snapshot(root world.NodeID) []scene.NodeInfo
}

// FeedOptions configure a Feed
type FeedOptions struct {
	Bodies BodySource
	Events EventSource
	Scene  SceneSource
	// Rate and Burst limit the messages sent to one client; zero disables the limit
	Rate         float64
	Burst        int
	CORSOrigins  []string
	PingInterval time.Duration
	Logger       *log.Logger
}

// Feed pushes every build event to the connected clients
type Feed struct {
	upgrader     websocket.Upgrader
	bodies       BodySource
	events       EventSource
	scene        SceneSource
	rate         float64
	burst        int
	corsOrigins  []string
	pingInterval time.Duration
	logger       *log.Logger

	clients   map[*SafeWriter]bool
	clientsMu sync.Mutex
	stop      func()
}

func NewFeed(opts FeedOptions) *Feed {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.PingInterval == 0 {
		opts.PingInterval = DefaultPingInterval
	}
	f := &Feed{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		bodies:       opts.Bodies,
		events:       opts.Events,
		scene:        opts.Scene,
		rate:         opts.Rate,
		burst:        opts.Burst,
		corsOrigins:  opts.CORSOrigins,
		pingInterval: opts.PingInterval,
		logger:       opts.Logger,
		clients:      make(map[*SafeWriter]bool),
	}
	if f.events != nil {
		f.stop = f.events.Subscribe(f.Publish)
	}
	return f
}

// Close detaches the feed from telemetry and disconnects every client
func (f *Feed) Close() {
	if f.stop != nil {
		f.stop()
	}
	f.clientsMu.Lock()
	defer f.clientsMu.Unlock()
	for client := range f.clients {
		client.Close()
		delete(f.clients, client)
	}
}

// Publish sends ev to every client that is under its rate
func (f *Feed) Publish(ev telemetry.BuildEvent) {
	msg := newEventMessage(ev)

	f.clientsMu.Lock()
	clients := make([]*SafeWriter, 0, len(f.clients))
	for client := range f.clients {
		clients = append(clients, client)
	}
	f.clientsMu.Unlock()

	for _, client := range clients {
		if _, err := client.TryWriteJSON(msg); err != nil {
			f.logger.Printf("[Feed] Error sending event to client: %v", err)
			f.removeClient(client)
		}
	}
}

// Clients is the number of connected clients
func (f *Feed) Clients() int {
	f.clientsMu.Lock()
	defer f.clientsMu.Unlock()
	return len(f.clients)
}

func (f *Feed) newLimiter() *rate.Limiter {
	if f.rate <= 0 {
		return nil
	}
	burst := f.burst
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(f.rate), burst)
}

// HandleWS upgrades the connection, sends the current bodies and then streams events
func (f *Feed) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Printf("[Feed] Websocket upgrade error: %v", err)
		return
	}

	client := NewSafeWriter(conn, f.newLimiter())
	f.logger.Printf("[Feed] New connection from %s", conn.RemoteAddr())

	if err := client.WriteJSON(NewInfoMessage("connected to orrery build feed")); err != nil {
		f.logger.Printf("[Feed] Error sending welcome message: %v", err)
		client.Close()
		return
	}
	if f.bodies != nil {
		if err := client.WriteJSON(newSnapshotMessage(f.bodies.All())); err != nil {
			f.logger.Printf("[Feed] Error sending snapshot: %v", err)
			client.Close()
			return
		}
	}

	f.clientsMu.Lock()
	f.clients[client] = true
	f.clientsMu.Unlock()
	defer f.removeClient(client)

	done := make(chan struct{})
	defer close(done)
	go f.ping(client, done)

	// the feed is one way; reads only detect the close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				f.logger.Printf("[Feed] Websocket error: %v", err)
			}
			return
		}
	}
}

func (f *Feed) ping(client *SafeWriter, done <-chan struct{}) {
	ticker := time.NewTicker(f.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := client.WriteJSON(NewInfoMessage("ping")); err != nil {
				return
			}
		}
	}
}

func (f *Feed) removeClient(client *SafeWriter) {
	f.clientsMu.Lock()
	_, ok := f.clients[client]
	delete(f.clients, client)
	f.clientsMu.Unlock()
	if ok {
		client.Close()
	}
}

// HandleBodies returns the registered bodies as JSON
func (f *Feed) HandleBodies(w http.ResponseWriter, r *http.Request) {
	var bodies []*world.Body
	if f.bodies != nil {
		bodies = f.bodies.All()
	}
	views := make([]BodyView, 0, len(bodies))
	for _, b := range bodies {
		views = append(views, NewBodyView(b))
	}
	writeJSON(w, views, f.logger)
}

// HandleScene returns the node tree of the body named by the "body" query parameter
func (f *Feed) HandleScene(w http.ResponseWriter, r *http.Request) {
	id := entity.CanonicalName(r.URL.Query().Get("body"))
	if f.bodies == nil || f.scene == nil || id == "" {
		http.Error(w, "scene inspection unavailable", http.StatusNotFound)
		return
	}
	for _, b := range f.bodies.All() {
		if b.ID == id {
			writeJSON(w, f.scene.Snapshot(b.Root), f.logger)
			return
		}
	}
	http.Error(w, "unknown body "+id, http.StatusNotFound)
}

// HandleTelemetry returns the retained build events as JSON
func (f *Feed) HandleTelemetry(w http.ResponseWriter, r *http.Request) {
	events := []telemetry.BuildEvent{}
	if f.events != nil {
		events = f.events.Events()
	}
	writeJSON(w, events, f.logger)
}

// Handler routes /ws and the inspector endpoints; the JSON endpoints are CORS enabled
func (f *Feed) Handler() http.Handler {
	origins := f.corsOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", f.HandleWS)
	mux.Handle("/api/bodies", c.Handler(http.HandlerFunc(f.HandleBodies)))
	mux.Handle("/api/telemetry", c.Handler(http.HandlerFunc(f.HandleTelemetry)))
	mux.Handle("/api/scene", c.Handler(http.HandlerFunc(f.HandleScene)))
	return mux
}

func writeJSON(w http.ResponseWriter, v interface{}, logger *log.Logger) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Printf("[Feed] Error encoding response: %v", err)
	}
}

package ws

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gorilla/websocket"

	"orrery/backend/internal/core/port/out/scene"
	"orrery/backend/internal/telemetry"
	"orrery/backend/internal/world"
)

func newTestFeed(rate float64, burst int) (*Feed, *telemetry.Manager, *world.Registry) {
	logger := log.New(io.Discard, "", 0)
	tm := telemetry.NewManager(logger)
	registry := world.NewRegistry()
	registry.Register(&world.Body{ID: "SUN", Name: "Sun"})
	feed := NewFeed(FeedOptions{
		Bodies: registry,
		Events: tm,
		Rate:   rate,
		Burst:  burst,
		Logger: logger,
	})
	return feed, tm, registry
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket server: %v", err)
	}
	return conn
}

func readType(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg map[string]interface{}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("Error reading message: %v", err)
	}
	return msg
}

func waitForClients(t *testing.T, feed *Feed, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for feed.Clients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("Expected %d clients, have %d", n, feed.Clients())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestFeed_StreamsEvents(t *testing.T) {
	feed, tm, _ := newTestFeed(0, 0)
	defer feed.Close()
	server := httptest.NewServer(feed.Handler())
	defer server.Close()

	conn := dial(t, server)
	defer conn.Close()

	if msg := readType(t, conn); msg["type"] != MessageTypeInfo {
		t.Errorf("Expected info first, got %v", msg["type"])
	}
	snapshot := readType(t, conn)
	if snapshot["type"] != MessageTypeSnapshot {
		t.Fatalf("Expected snapshot, got %v", snapshot["type"])
	}
	if bodies := snapshot["bodies"].([]interface{}); len(bodies) != 1 {
		t.Errorf("Expected 1 body in snapshot, got %d", len(bodies))
	}

	waitForClients(t, feed, 1)
	tm.Record(telemetry.BuildEvent{Body: "Foo", Status: telemetry.StatusBuilt, Pass: 1})

	msg := readType(t, conn)
	if msg["type"] != MessageTypeEvent {
		t.Fatalf("Expected build event, got %v", msg["type"])
	}
	event := msg["event"].(map[string]interface{})
	if event["body"] != "Foo" || event["status"] != string(telemetry.StatusBuilt) {
		t.Errorf("Unexpected event %v", event)
	}
}

func TestFeed_RateLimitDrops(t *testing.T) {
	feed, tm, _ := newTestFeed(0.001, 2)
	defer feed.Close()
	server := httptest.NewServer(feed.Handler())
	defer server.Close()

	conn := dial(t, server)
	defer conn.Close()
	readType(t, conn)
	readType(t, conn)
	waitForClients(t, feed, 1)

	for i := 0; i < 5; i++ {
		tm.Record(telemetry.BuildEvent{Body: "Foo", Status: telemetry.StatusStarted})
	}

	feed.clientsMu.Lock()
	var dropped int
	for client := range feed.clients {
		dropped = client.Dropped()
	}
	feed.clientsMu.Unlock()
	if dropped != 3 {
		t.Errorf("Expected 3 dropped messages, got %d", dropped)
	}
}

func TestFeed_ClientRemovedOnClose(t *testing.T) {
	feed, _, _ := newTestFeed(0, 0)
	defer feed.Close()
	server := httptest.NewServer(feed.Handler())
	defer server.Close()

	conn := dial(t, server)
	readType(t, conn)
	readType(t, conn)
	waitForClients(t, feed, 1)

	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()
	waitForClients(t, feed, 0)
}

func TestFeed_Bodies(t *testing.T) {
	feed, _, registry := newTestFeed(0, 0)
	defer feed.Close()
	registry.RegisterCustom(&world.Body{
		ID:       "FOO",
		Name:     "Foo",
		Position: mgl64.Vec3{1500, 0, 0},
		Physics:  &world.PhysicsHandle{Velocity: mgl64.Vec3{0, 0, 3}},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/bodies", nil)
	req.Header.Set("Origin", "http://inspector.test")
	rec := httptest.NewRecorder()
	feed.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("Expected CORS headers")
	}
	var views []BodyView
	if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
		t.Fatalf("Bad JSON: %v", err)
	}
	if len(views) != 2 || views[0].ID != "FOO" || views[0].Position[0] != 1500 || !views[0].Custom {
		t.Errorf("Unexpected bodies %+v", views)
	}
	if views[0].Velocity[2] != 3 {
		t.Errorf("Velocity not exported: %+v", views[0])
	}
}

func TestFeed_Telemetry(t *testing.T) {
	feed, tm, _ := newTestFeed(0, 0)
	defer feed.Close()
	tm.Record(telemetry.BuildEvent{Body: "Foo", Stage: "ring", Status: telemetry.StatusAssetMissing})

	rec := httptest.NewRecorder()
	feed.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/telemetry", nil))

	var events []telemetry.BuildEvent
	if err := json.Unmarshal(rec.Body.Bytes(), &events); err != nil {
		t.Fatalf("Bad JSON: %v", err)
	}
	if len(events) != 1 || events[0].Stage != "ring" {
		t.Errorf("Unexpected events %+v", events)
	}
}

func TestNewBodyView_SanitizesNaN(t *testing.T) {
	nan := mgl64.Vec3{0, 0, 0}
	nan[1] = nan[1] / nan[0]
	v := NewBodyView(&world.Body{ID: "X", Position: nan})
	if v.Position[1] != 0 {
		t.Errorf("NaN should be replaced, got %v", v.Position)
	}
}

// stubScene serves canned snapshots per root
type stubScene map[world.NodeID][]scene.NodeInfo

func (s stubScene) Snapshot(root world.NodeID) []scene.NodeInfo {
	return s[root]
}

func TestFeed_Scene(t *testing.T) {
	logger := log.New(io.Discard, "", 0)
	registry := world.NewRegistry()
	root := world.NodeID(7)
	host := stubScene{root: {
		{ID: root, Name: "Foo_Body", Active: true},
		{ID: 8, Name: "Sector", Parent: root, Active: true, Behaviors: []string{"Sector"}},
	}}
	registry.RegisterCustom(&world.Body{ID: "FOO", Name: "Foo", Root: root})

	feed := NewFeed(FeedOptions{Bodies: registry, Scene: host, Logger: logger})
	defer feed.Close()

	rec := httptest.NewRecorder()
	feed.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scene?body=foo", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var nodes []scene.NodeInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &nodes); err != nil {
		t.Fatalf("Bad JSON: %v", err)
	}
	if len(nodes) != 2 || nodes[0].Name != "Foo_Body" || nodes[1].Name != "Sector" {
		t.Errorf("Unexpected nodes %+v", nodes)
	} else if nodes[1].Parent != root || len(nodes[1].Behaviors) != 1 {
		t.Errorf("Node fields lost in transit: %+v", nodes[1])
	}

	rec = httptest.NewRecorder()
	feed.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scene?body=Bar", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for an unknown body, got %d", rec.Code)
	}
}

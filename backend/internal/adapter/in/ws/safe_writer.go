package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// SafeWriter serialises writes to a websocket connection and limits their rate
type SafeWriter struct {
	conn    *websocket.Conn
	mutex   sync.Mutex
	limiter *rate.Limiter
	dropped int
}

// NewSafeWriter wraps conn; a nil limiter never drops
func NewSafeWriter(conn *websocket.Conn, limiter *rate.Limiter) *SafeWriter {
	return &SafeWriter{
		conn:    conn,
		limiter: limiter,
	}
}

// WriteJSON sends v as a text message
func (w *SafeWriter) WriteJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.conn.WriteMessage(websocket.TextMessage, data)
}

// TryWriteJSON sends v unless the client is over its rate; sent reports whether it went out
func (w *SafeWriter) TryWriteJSON(v interface{}) (sent bool, err error) {
	if w.limiter != nil && !w.limiter.Allow() {
		w.mutex.Lock()
		w.dropped++
		w.mutex.Unlock()
		return false, nil
	}
	if err := w.WriteJSON(v); err != nil {
		return false, err
	}
	return true, nil
}

// Dropped is the number of messages skipped by the rate limiter
func (w *SafeWriter) Dropped() int {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.dropped
}

func (w *SafeWriter) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.conn.Close()
}

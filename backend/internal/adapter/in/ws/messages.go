package ws

import (
	"math"
	"time"

	"orrery/backend/internal/telemetry"
	"orrery/backend/internal/world"
)

// Message types sent to feed clients
const (
	MessageTypeInfo     = "info"
	MessageTypeSnapshot = "snapshot"
	MessageTypeEvent    = "build_event"
)

// BodyView is the JSON form of a registered body
type BodyView struct {
	ID                string     `json:"id"`
	Name              string     `json:"name,omitempty"`
	Primary           string     `json:"primary,omitempty"`
	Position          [3]float64 `json:"position"`
	Velocity          [3]float64 `json:"velocity"`
	Mass              float64    `json:"mass,omitempty"`
	SphereOfInfluence float64    `json:"sphereOfInfluence"`
	IsMoon            bool       `json:"isMoon,omitempty"`
	Custom            bool       `json:"custom"`
}

// NewBodyView converts a body, replacing NaN components with 0
func NewBodyView(b *world.Body) BodyView {
	v := BodyView{
		ID:                b.ID,
		Name:              b.Name,
		SphereOfInfluence: safeValue(b.SphereOfInfluence, 0),
		IsMoon:            b.IsMoon,
		Custom:            b.Custom,
	}
	if b.Primary != nil {
		v.Primary = b.Primary.ID
	}
	for i := 0; i < 3; i++ {
		v.Position[i] = safeValue(b.Position[i], 0)
	}
	if b.Physics != nil {
		v.Mass = safeValue(b.Physics.Mass, 0)
		for i := 0; i < 3; i++ {
			v.Velocity[i] = safeValue(b.Physics.Velocity[i], 0)
		}
	}
	return v
}

type infoMessage struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	ServerTime int64  `json:"server_time"`
}

type snapshotMessage struct {
	Type   string     `json:"type"`
	Bodies []BodyView `json:"bodies"`
}

type eventMessage struct {
	Type  string               `json:"type"`
	Event telemetry.BuildEvent `json:"event"`
}

func NewInfoMessage(message string) interface{} {
	return infoMessage{Type: MessageTypeInfo, Message: message, ServerTime: time.Now().UnixMilli()}
}

func newSnapshotMessage(bodies []*world.Body) interface{} {
	views := make([]BodyView, 0, len(bodies))
	for _, b := range bodies {
		views = append(views, NewBodyView(b))
	}
	return snapshotMessage{Type: MessageTypeSnapshot, Bodies: views}
}

func newEventMessage(ev telemetry.BuildEvent) interface{} {
	return eventMessage{Type: MessageTypeEvent, Event: ev}
}

// safeValue replaces NaN and infinities with def
func safeValue(value, def float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return def
	}
	return value
}

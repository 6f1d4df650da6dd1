package motor

import "github.com/go-gl/mathgl/mgl64"

const (
	GROUND_ENTER EventType = iota
	GROUND_EXIT
	JUMP
	STRAFE_CHANGED
	CAMERA_MODE_CHANGED
	ROTATION_MODE_CHANGED
)

type EventType uint8

func (t EventType) String() string {
	switch t {
	case GROUND_ENTER:
		return "ground_enter"
	case GROUND_EXIT:
		return "ground_exit"
	case JUMP:
		return "jump"
	case STRAFE_CHANGED:
		return "strafe_changed"
	case CAMERA_MODE_CHANGED:
		return "camera_mode_changed"
	case ROTATION_MODE_CHANGED:
		return "rotation_mode_changed"
	default:
		return "unknown"
	}
}

func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Event is a locomotion state transition observed during a tick
type Event struct {
	Kind EventType `json:"type"`
	// Tick is the number of the tick that produced the event, starting at 1
	Tick     uint64     `json:"tick"`
	Position mgl64.Vec3 `json:"position"`
	// Enabled is the new value of the toggled mode
	Enabled bool `json:"enabled,omitempty"`
	// Speed is the launch velocity of a jump
	Speed float64 `json:"speed,omitempty"`
}

func (e Event) Type() EventType { return e.Kind }

// EventListener - callback for events
type EventListener func(event Event)

// Events buffers the events of a tick until it completes
type Events struct {
	listeners map[EventType][]EventListener
	buffer    []Event
}

func NewEvents() Events {
	return Events{
		listeners: make(map[EventType][]EventListener),
		buffer:    make([]Event, 0, 8),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	if e.listeners == nil {
		e.listeners = make(map[EventType][]EventListener)
	}
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

func (e *Events) emit(event Event) {
	e.buffer = append(e.buffer, event)
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	for _, event := range e.buffer {
		for _, listener := range e.listeners[event.Type()] {
			listener(event)
		}
	}
	e.buffer = e.buffer[:0]
}

package telemetry

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/akmonengine/motor"
	"github.com/akmonengine/motor/internal/loop"
	"github.com/gorilla/websocket"
)

// received mirrors Message with the event type left as text
type received struct {
	Type    string       `json:"type"`
	State   *motor.State `json:"state"`
	Event   *struct {
		Type  string  `json:"type"`
		Tick  uint64  `json:"tick"`
		Speed float64 `json:"speed"`
	} `json:"event"`
	Command string `json:"command"`
	Error   string `json:"error"`
}

func newServer(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(hub.Handle))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		t.Fatalf("failed to open websocket connection: %v", err)
	}
	t.Cleanup(func() {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
		if resp != nil {
			resp.Body.Close()
		}
	})

	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) received {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read message: %v", err)
	}

	var msg received
	if err := json.Unmarshal(payload, &msg); err != nil {
		t.Fatalf("failed to decode %s: %v", payload, err)
	}
	return msg
}

func newController(t *testing.T) *motor.Controller {
	t.Helper()
	controller, err := motor.New(motor.DefaultConfig(), motor.Refs{})
	if err != nil {
		t.Fatalf("motor.New() error = %v", err)
	}
	return controller
}

// =============================================================================
// Broadcast Tests
// =============================================================================

func TestHub_HelloCarriesLastState(t *testing.T) {
	hub := NewHub(nil, nil)
	hub.PublishState(motor.State{Tick: 7, Grounded: true})

	conn := newServer(t, hub)
	msg := readMessage(t, conn)

	if msg.Type != "hello" || msg.State == nil {
		t.Fatalf("first message = %+v, want a hello with state", msg)
	}
	if msg.State.Tick != 7 || !msg.State.Grounded {
		t.Errorf("hello state = %+v, want tick 7 grounded", msg.State)
	}
}

func TestHub_BroadcastsStateAndEvents(t *testing.T) {
	hub := NewHub(nil, nil)
	conn := newServer(t, hub)
	readMessage(t, conn)

	hub.PublishState(motor.State{Tick: 3})
	hub.PublishEvent(motor.Event{Kind: motor.JUMP, Tick: 3, Speed: 4.4})

	state := readMessage(t, conn)
	if state.Type != "state" || state.State == nil || state.State.Tick != 3 {
		t.Errorf("state message = %+v", state)
	}

	event := readMessage(t, conn)
	if event.Type != "event" || event.Event == nil {
		t.Fatalf("event message = %+v", event)
	}
	if event.Event.Type != "jump" || event.Event.Speed != 4.4 {
		t.Errorf("event = %+v, want a jump at 4.4", event.Event)
	}
}

func TestHub_ClientDisconnect(t *testing.T) {
	hub := NewHub(nil, nil)
	conn := newServer(t, hub)
	readMessage(t, conn)

	if hub.Subscribers() != 1 {
		t.Fatalf("Subscribers() = %d, want 1", hub.Subscribers())
	}

	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Subscribers() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if hub.Subscribers() != 0 {
		t.Errorf("Subscribers() = %d after disconnect, want 0", hub.Subscribers())
	}
}

func TestHub_StalledClientDoesNotBlockPublish(t *testing.T) {
	hub := NewHub(nil, nil)

	// never drained: its writer is not running
	stalled := newSubscriber(nil, "stalled")
	hub.mu.Lock()
	hub.subscribers[stalled] = struct{}{}
	hub.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := range sendQueueSize + 10 {
			hub.PublishState(motor.State{Tick: uint64(i)})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("PublishState blocked on a client that never reads")
	}

	if got := len(stalled.send); got != sendQueueSize {
		t.Errorf("queued = %d, want %d", got, sendQueueSize)
	}
	if got := hub.Dropped(); got != 10 {
		t.Errorf("Dropped() = %d, want 10", got)
	}
}

func TestSubscriber_Stop(t *testing.T) {
	sub := newSubscriber(nil, "test")

	if !sub.enqueue([]byte("a")) {
		t.Fatal("enqueue() = false on a running subscriber")
	}

	sub.stop(nil)
	sub.stop([]byte("again"))

	if sub.enqueue([]byte("b")) {
		t.Error("enqueue() = true after stop")
	}
	if sub.closeMessage != nil {
		t.Errorf("closeMessage = %q, want the first stop to win", sub.closeMessage)
	}
}

func TestHub_CloseDisconnectsClients(t *testing.T) {
	hub := NewHub(nil, nil)
	conn := newServer(t, hub)
	readMessage(t, conn)

	hub.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Errorf("ReadMessage() error = %v, want a going away close", err)
	}
	if hub.Subscribers() != 0 {
		t.Errorf("Subscribers() = %d after Close, want 0", hub.Subscribers())
	}
}

// =============================================================================
// Command Tests
// =============================================================================

func TestHub_ToggleReachesControllerOnNextTick(t *testing.T) {
	controller := newController(t)
	l := loop.New(0.02, 5)
	l.Tick = controller.StepTick

	hub := NewHub(LoopApplier{Loop: l, Options: controller}, nil)
	conn := newServer(t, hub)
	readMessage(t, conn)

	if err := conn.WriteJSON(Command{Type: "toggle", Option: "strafe"}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	if ack := readMessage(t, conn); ack.Type != "ack" || ack.Command != "toggle" {
		t.Fatalf("reply = %+v, want a toggle ack", ack)
	}

	if controller.Strafe() {
		t.Fatal("strafe changed outside the loop goroutine")
	}

	l.Advance(0.02)

	if !controller.Strafe() || !controller.State().Strafe {
		t.Error("strafe = false after the next tick, want true")
	}
}

func TestHub_Errors(t *testing.T) {
	controller := newController(t)
	hub := NewHub(LoopApplier{Loop: loop.New(0.02, 5), Options: controller}, nil)
	conn := newServer(t, hub)
	readMessage(t, conn)

	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"malformed", "{not json", "malformed command"},
		{"unknown command", `{"type": "teleport"}`, "unknown command"},
		{"unknown option", `{"type": "toggle", "option": "fly"}`, "unknown option"},
		{"frame rate without handler", `{"type": "frame_rate", "frame_rate": 15}`, "unknown command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(tt.payload)); err != nil {
				t.Fatalf("WriteMessage() error = %v", err)
			}
			reply := readMessage(t, conn)
			if reply.Type != "error" || !strings.Contains(reply.Error, tt.want) {
				t.Errorf("reply = %+v, want an error containing %q", reply, tt.want)
			}
		})
	}
}

func TestHub_ReadOnly(t *testing.T) {
	hub := NewHub(nil, nil)
	conn := newServer(t, hub)
	readMessage(t, conn)

	conn.WriteJSON(Command{Type: "toggle", Option: "strafe"})

	if reply := readMessage(t, conn); reply.Type != "error" || reply.Error != ErrReadOnly.Error() {
		t.Errorf("reply = %+v, want a read only error", reply)
	}
}

// =============================================================================
// Applier Tests
// =============================================================================

type queue struct {
	mu    sync.Mutex
	funcs []func()
}

func (q *queue) Post(fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.funcs = append(q.funcs, fn)
}

func (q *queue) run() {
	for _, fn := range q.funcs {
		fn()
	}
	q.funcs = nil
}

func TestLoopApplier(t *testing.T) {
	controller := newController(t)
	posted := &queue{}
	rate := -1.0
	applier := LoopApplier{
		Loop:         posted,
		Options:      controller,
		SetFrameRate: func(hz float64) { rate = hz },
	}
	off := false

	commands := []Command{
		{Type: "toggle", Option: "third_person", Enabled: &off},
		{Type: "toggle", Option: "pure_rotation_physics"},
		{Type: "frame_rate", FrameRate: 15},
	}
	for _, cmd := range commands {
		if err := applier.Apply(cmd); err != nil {
			t.Fatalf("Apply(%+v) error = %v", cmd, err)
		}
	}
	posted.run()

	if controller.ThirdPerson() {
		t.Error("third person = true, want false")
	}
	if !controller.PureRotationPhysics() {
		t.Error("pure rotation physics = false, want flipped to true")
	}
	if rate != 15 {
		t.Errorf("frame rate = %v, want 15", rate)
	}

	err := applier.Apply(Command{Type: "frame_rate", FrameRate: -3})
	if err == nil {
		t.Error("Apply(frame_rate -3) = nil, want an error")
	}
	if err := applier.Apply(Command{Type: "jump"}); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("Apply(jump) = %v, want ErrUnknownCommand", err)
	}
}

package telemetry

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/akmonengine/motor"
	"github.com/gorilla/websocket"
)

const (
	writeWait = 2 * time.Second
	// sendQueueSize bounds the messages waiting for one client
	sendQueueSize = 64
)

// Message is every frame the hub writes, Type selects the filled field
type Message struct {
	Type    string       `json:"type"` // hello, state, event, ack, error
	State   *motor.State `json:"state,omitempty"`
	Event   *motor.Event `json:"event,omitempty"`
	Command string       `json:"command,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// subscriber owns one connection. Its writeLoop is the only writer, the hub and the
// read loop only queue frames.
type subscriber struct {
	conn   *websocket.Conn
	remote string
	send   chan []byte
	done   chan struct{}

	stopOnce     sync.Once
	closeMessage []byte
	dropped      atomic.Uint64
}

func newSubscriber(conn *websocket.Conn, remote string) *subscriber {
	return &subscriber{
		conn:   conn,
		remote: remote,
		send:   make(chan []byte, sendQueueSize),
		done:   make(chan struct{}),
	}
}

// enqueue never blocks: a full queue drops the frame. It reports false once the
// subscriber is stopped.
func (s *subscriber) enqueue(data []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}

	select {
	case s.send <- data:
	default:
		s.dropped.Add(1)
	}
	return true
}

// stop ends the writeLoop, which sends closeMessage first when it is set
func (s *subscriber) stop(closeMessage []byte) {
	s.stopOnce.Do(func() {
		s.closeMessage = closeMessage
		close(s.done)
	})
}

func (s *subscriber) writeLoop() {
	defer s.conn.Close()

	for {
		select {
		case data := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				s.stop(nil)
				return
			}
		case <-s.done:
			if s.closeMessage != nil {
				s.conn.WriteControl(websocket.CloseMessage, s.closeMessage, time.Now().Add(writeWait))
			}
			return
		}
	}
}

// Hub streams controller state and events to websocket clients and hands their
// commands to an Applier.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader
	applier  Applier

	mu          sync.Mutex
	subscribers map[*subscriber]struct{}
	lastState   *motor.State
}

func NewHub(applier Applier, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Hub{
		logger:  logger,
		applier: applier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		subscribers: make(map[*subscriber]struct{}),
	}
}

func (h *Hub) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	sub := newSubscriber(conn, r.RemoteAddr)
	go sub.writeLoop()

	h.mu.Lock()
	hello := Message{Type: "hello", State: h.lastState}
	// queued under the lock so no broadcast overtakes the hello
	h.send(sub, hello)
	h.subscribers[sub] = struct{}{}
	h.mu.Unlock()
	h.logger.Info("telemetry client connected", "remote", sub.remote)

	defer h.remove(sub)

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var cmd Command
		if err := json.Unmarshal(payload, &cmd); err != nil {
			h.logger.Debug("discarding malformed command", "remote", sub.remote, "error", err)
			if !h.send(sub, Message{Type: "error", Error: "malformed command"}) {
				return
			}
			continue
		}

		reply := Message{Type: "ack", Command: cmd.Type}
		if err := h.apply(cmd); err != nil {
			reply = Message{Type: "error", Command: cmd.Type, Error: err.Error()}
		}
		if !h.send(sub, reply) {
			return
		}
	}
}

func (h *Hub) apply(cmd Command) error {
	if h.applier == nil {
		return ErrReadOnly
	}
	return h.applier.Apply(cmd)
}

func (h *Hub) send(sub *subscriber, msg Message) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal telemetry message", "type", msg.Type, "error", err)
		return true
	}
	return sub.enqueue(data)
}

func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	_, ok := h.subscribers[sub]
	delete(h.subscribers, sub)
	h.mu.Unlock()

	sub.stop(nil)
	if ok {
		h.logger.Info("telemetry client disconnected", "remote", sub.remote, "dropped", sub.dropped.Load())
	}
}

// PublishState sends state to every client and keeps it for the next hello
func (h *Hub) PublishState(state motor.State) {
	h.mu.Lock()
	h.lastState = &state
	h.mu.Unlock()

	h.broadcast(Message{Type: "state", State: &state})
}

func (h *Hub) PublishEvent(event motor.Event) {
	h.broadcast(Message{Type: "event", Event: &event})
}

// broadcast queues msg for every client without waiting on any socket
func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal telemetry message", "type", msg.Type, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subscribers {
		sub.enqueue(data)
	}
}

func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// Dropped counts the frames discarded for clients whose queue was full
func (h *Hub) Dropped() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	var dropped uint64
	for sub := range h.subscribers {
		dropped += sub.dropped.Load()
	}
	return dropped
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	subs := h.subscribers
	h.subscribers = make(map[*subscriber]struct{})
	h.mu.Unlock()

	message := websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down")
	for sub := range subs {
		sub.stop(message)
	}
}

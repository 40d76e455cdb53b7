package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/placehub/anonqa-service/internal/models"
	"github.com/placehub/anonqa-service/internal/service"
)

// Inbound realtime action types.
const (
	ActionNewAnswer = "NEW_ANSWER"
	ActionReaction  = "REACTION"
)

// Envelope is the wire shape for both directions: a discriminator plus a
// type-specific payload.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type ReactionPayload struct {
	AnswerID string `json:"answerId"`
	Reaction string `json:"reaction"`
}

// Actions is the slice of the service the hub drives from inbound messages.
type Actions interface {
	SubmitAnswer(ctx context.Context, in service.SubmitAnswerInput) (*models.Answer, error)
	React(ctx context.Context, answerID, label string) (*models.Answer, error)
}

// Presence marks a session online while it holds at least one connection.
type Presence interface {
	SetPresence(ctx context.Context, sessionID string, online bool) error
}

// conn is what the hub needs from a registered client. *websocket.Conn
// satisfies it; tests register fakes.
type conn interface {
	WriteJSON(v any) error
}

// client pairs a connection with its write lock. The websocket transport
// allows one concurrent writer per connection, so every outbound write,
// broadcast fan-out or direct reply, goes through write.
type client struct {
	mu sync.Mutex
	c  conn
}

func (cl *client) write(v any) error {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return cl.c.WriteJSON(v)
}

// Hub keeps the set of open realtime connections and fans every event out
// to all of them. Identity travels per-message, not per-connection.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*client
	sessions map[string]int
	actions  Actions
	presence Presence
	log      *zap.SugaredLogger
}

func NewHub(presence Presence, log *zap.SugaredLogger) *Hub {
	return &Hub{clients: make(map[string]*client), sessions: make(map[string]int), presence: presence, log: log}
}

// Bind wires the service in after construction; the service itself holds
// the hub as its broadcaster, so one of the two is attached late.
func (h *Hub) Bind(actions Actions) { h.actions = actions }

// register adds the connection and marks the session online when this is
// its first open connection; a session with several tabs stays online until
// the last one goes away.
func (h *Hub) register(id, sessionID string, c conn) *client {
	cl := &client{c: c}
	h.mu.Lock()
	h.clients[id] = cl
	first := false
	if sessionID != "" {
		h.sessions[sessionID]++
		first = h.sessions[sessionID] == 1
	}
	h.mu.Unlock()
	if first && h.presence != nil {
		_ = h.presence.SetPresence(context.Background(), sessionID, true)
	}
	return cl
}

func (h *Hub) unregister(id, sessionID string) {
	h.mu.Lock()
	delete(h.clients, id)
	last := false
	if sessionID != "" && h.sessions[sessionID] > 0 {
		h.sessions[sessionID]--
		if h.sessions[sessionID] == 0 {
			delete(h.sessions, sessionID)
			last = true
		}
	}
	h.mu.Unlock()
	if last && h.presence != nil {
		_ = h.presence.SetPresence(context.Background(), sessionID, false)
	}
}

// Broadcast delivers the event to every connection open right now. Delivery
// is best-effort: a write failure skips that recipient and the loop goes on.
// The registry lock covers only the snapshot; writes are serialized by each
// client's own lock so concurrent broadcasters never interleave frames.
func (h *Hub) Broadcast(event any) {
	h.mu.RLock()
	snapshot := make(map[string]*client, len(h.clients))
	for id, cl := range h.clients {
		snapshot[id] = cl
	}
	h.mu.RUnlock()
	for id, cl := range snapshot {
		if err := cl.write(event); err != nil {
			h.log.Debugw("broadcast send", "conn", id, "err", err)
		}
	}
}

// HandleConn serves one websocket connection until the client goes away.
// Malformed or failing messages are logged and dropped; only a transport
// read error ends the loop.
func (h *Hub) HandleConn(c *websocket.Conn) {
	defer c.Close()

	id := uuid.NewString()
	sessionID := c.Query("session_id")

	cl := h.register(id, sessionID, c)
	h.log.Infow("ws connected", "conn", id, "session", sessionID)

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			break
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			// tell the sender only; nobody else cares about a bad frame
			_ = cl.write(service.Event{Type: "ERROR", Payload: "malformed message"})
			continue
		}
		h.dispatch(context.Background(), env)
	}

	h.unregister(id, sessionID)
	h.log.Infow("ws disconnected", "conn", id, "session", sessionID)
}

// dispatch routes one inbound envelope. Errors never propagate to the
// connection loop: the failed action is logged and the client observes the
// absence of a broadcast.
func (h *Hub) dispatch(ctx context.Context, env Envelope) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Errorw("ws dispatch panic", "type", env.Type, "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	switch env.Type {
	case ActionNewAnswer:
		var in service.SubmitAnswerInput
		if err := json.Unmarshal(env.Payload, &in); err != nil {
			h.log.Warnw("ws new answer payload", "err", err)
			return
		}
		if _, err := h.actions.SubmitAnswer(ctx, in); err != nil {
			h.log.Warnw("ws submit answer", "err", err)
		}
	case ActionReaction:
		var p ReactionPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			h.log.Warnw("ws reaction payload", "err", err)
			return
		}
		if _, err := h.actions.React(ctx, p.AnswerID, p.Reaction); err != nil {
			// unknown answer ids are dropped without a broadcast
			h.log.Debugw("ws react", "answer", p.AnswerID, "err", err)
		}
	default:
		h.log.Debugw("ws unknown action", "type", env.Type)
	}
}

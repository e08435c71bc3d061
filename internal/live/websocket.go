package live

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"greenpantry/internal/analytics"
	"greenpantry/internal/database"
	"greenpantry/internal/models"
	"greenpantry/internal/score"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WebSocket upgrader configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// Feed pushes freshly computed snapshots to dashboard clients over
// websockets. Every request recomputes from the store; the feed holds no
// derived state of its own.
type Feed struct {
	store *database.Store
}

// NewFeed creates a snapshot feed over the given store
func NewFeed(store *database.Store) *Feed {
	return &Feed{store: store}
}

// SnapshotRequest is the client's request for a fresh snapshot
type SnapshotRequest struct {
	Kind string `json:"kind"` // "analytics" or "score"
	User string `json:"user"`
}

// connection maintains one client's websocket session
type connection struct {
	conn *websocket.Conn
	send chan []byte
	mu   sync.Mutex
	feed *Feed
}

// HandleWebSocket upgrades the request and starts the session pumps
func (f *Feed) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	session := &connection{
		conn: conn,
		send: make(chan []byte, 256),
		feed: f,
	}

	go session.writePump()
	go session.readPump()
}

// readPump pumps snapshot requests from the client to the engines
func (c *connection) readPump() {
	defer func() {
		c.conn.Close()
	}()

	c.conn.SetReadLimit(64 * 1024)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps computed snapshots back to the client
func (c *connection) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage computes and pushes the requested snapshot
func (c *connection) handleMessage(message []byte) {
	var req SnapshotRequest
	if err := json.Unmarshal(message, &req); err != nil {
		log.Printf("Error unmarshaling message: %v", err)
		return
	}
	if req.User == "" {
		c.sendError("Missing user")
		return
	}

	go func() {
		now := time.Now()
		switch req.Kind {
		case "analytics":
			snapshot, err := c.feed.analyticsSnapshot(req.User, now)
			if err != nil {
				c.sendError("Failed to compute analytics snapshot")
				return
			}
			c.sendJSON(gin.H{"kind": "analytics", "snapshot": snapshot})
		case "score":
			snapshot, err := c.feed.scoreSnapshot(req.User, now)
			if err != nil {
				c.sendError("Failed to compute score snapshot")
				return
			}
			c.sendJSON(gin.H{"kind": "score", "snapshot": snapshot})
		default:
			c.sendError("Unknown snapshot kind: " + req.Kind)
		}
	}()
}

func (f *Feed) analyticsSnapshot(user string, now time.Time) (models.AnalyticsSnapshot, error) {
	wasteEvents, err := f.store.ListWasteEvents(user)
	if err != nil {
		return models.AnalyticsSnapshot{}, err
	}
	liveItems, err := f.store.LiveItems(user)
	if err != nil {
		return models.AnalyticsSnapshot{}, err
	}
	archived, err := f.store.ArchivedItems(user)
	if err != nil {
		return models.AnalyticsSnapshot{}, err
	}
	savingsEvents, err := f.store.ListSavingsEvents(user)
	if err != nil {
		return models.AnalyticsSnapshot{}, err
	}
	return analytics.Aggregate(wasteEvents, liveItems, archived, savingsEvents, now), nil
}

func (f *Feed) scoreSnapshot(user string, now time.Time) (models.GreenScoreSnapshot, error) {
	wasteEvents, err := f.store.ListWasteEvents(user)
	if err != nil {
		return models.GreenScoreSnapshot{}, err
	}
	archived, err := f.store.ArchivedItems(user)
	if err != nil {
		return models.GreenScoreSnapshot{}, err
	}
	savingsEvents, err := f.store.ListSavingsEvents(user)
	if err != nil {
		return models.GreenScoreSnapshot{}, err
	}
	return score.Compute(wasteEvents, archived, savingsEvents, now), nil
}

// sendJSON marshals and queues a message for the client
func (c *connection) sendJSON(payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshaling snapshot: %v", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case c.send <- data:
	default:
		log.Println("WebSocket buffer full, dropping message")
	}
}

// sendError sends an error message to the client
func (c *connection) sendError(message string) {
	data, _ := json.Marshal(map[string]string{"error": message})

	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case c.send <- data:
	default:
		log.Println("WebSocket buffer full, dropping error message")
	}
}

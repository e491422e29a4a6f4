package game

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"gridfire-server/config"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	writeWait    = 10 * time.Second
	readLimit    = 512
)

// HandleConnections upgrades HTTP requests to WebSocket connections and
// starts the per-client pumps. The entity itself is created later, when the
// client sends a join message.
func (s *GameServer) HandleConnections(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}

	roomID := r.URL.Query().Get("room")
	s.mu.Lock()
	if _, ok := s.rooms[roomID]; !ok {
		roomID = config.DefaultRoomID
	}
	s.mu.Unlock()

	client := &Client{
		conn:     conn,
		send:     make(chan []byte, 256),
		playerID: uuid.New().String(),
		roomID:   roomID,
	}

	s.register <- client
	go client.writePump()
	go client.readPump(s)
}

// readPump handles incoming messages from the client. Any read error tears
// the connection down through the unregister path.
func (c *Client) readPump(server *GameServer) {
	defer func() {
		server.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(readLimit)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Client %s: read error: %v", c.playerID, err)
			}
			break
		}
		server.handleClientMessage(c, message)
	}
}

// writePump drains the send channel to the connection and keeps the
// heartbeat going.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type clientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// handleClientMessage dispatches one inbound message. Malformed payloads are
// dropped per connection; they never reach the simulation.
func (s *GameServer) handleClientMessage(c *Client, raw []byte) {
	var msg clientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		log.Printf("Client %s: malformed message: %v", c.playerID, err)
		return
	}
	switch msg.Type {
	case "join":
		var p JoinPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			log.Printf("Client %s: malformed join payload: %v", c.playerID, err)
			return
		}
		s.handleJoin(c, p)
	case "input":
		var p InputPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			log.Printf("Client %s: malformed input payload: %v", c.playerID, err)
			return
		}
		s.handleInput(c, p)
	case "shoot":
		s.handleFire(c)
	case "reload":
		s.handleReload(c)
	default:
		log.Printf("Client %s: unknown message type %q", c.playerID, msg.Type)
	}
}

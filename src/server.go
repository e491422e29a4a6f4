package game

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"gridfire-server/config"
	"gridfire-server/src/api"
)

// NewGameServer creates the server and its rooms. The store may be a Mongo
// or an in-memory implementation; the simulation never blocks on it.
func NewGameServer(store api.UserStore) *GameServer {
	s := &GameServer{
		rooms:      make(map[string]*RoomState),
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		store:      store,
		now:        time.Now,
	}
	s.createRooms()
	return s
}

// Run starts the client listener and the fixed-rate simulation loop.
func (s *GameServer) Run() {
	go s.listenForClients()
	go s.gameLoop()
}

func (s *GameServer) listenForClients() {
	for {
		select {
		case client := <-s.register:
			s.mu.Lock()
			s.clients[client.playerID] = client
			s.mu.Unlock()
		case client := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.clients[client.playerID]; ok {
				s.leaveLocked(client)
				delete(s.clients, client.playerID)
				close(client.send)
			}
			s.mu.Unlock()
		}
	}
}

// leaveLocked flushes a joined player's session counters to the store and
// removes the entity. Safe to call when no entity exists. Caller holds s.mu.
func (s *GameServer) leaveLocked(client *Client) {
	room, ok := s.rooms[client.roomID]
	if !ok {
		return
	}
	player, ok := room.players[client.playerID]
	if !ok {
		return
	}
	delete(room.players, client.playerID)
	go s.flushStats(player.Username, player.Kills, player.Deaths)
	log.Printf("Player %s (%s) left room %s.", player.Username, player.ID, room.ID)
}

// flushStats writes the session counters back to the user-record store.
// Fire-and-forget: a failure only costs the delta since the last flush.
func (s *GameServer) flushStats(username string, kills, deaths int) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.store.SetStats(ctx, username, kills, deaths); err != nil {
		log.Printf("Stat flush for %s failed: %v", username, err)
	}
}

// gameLoop advances every room at the fixed tick rate. Ordering within a
// tick: respawns and reload completions, bot AI, bullet resolution, then
// the snapshot broadcast.
func (s *GameServer) gameLoop() {
	ticker := time.NewTicker(config.TickInterval)
	defer ticker.Stop()

	for range ticker.C {
		start := time.Now()

		s.mu.Lock()
		players, bots, bullets := 0, 0, 0
		for _, room := range s.rooms {
			s.handleRespawns(room)
			s.finishReloads(room)
			s.updateBots(room)
			s.advanceBullets(room)
			s.broadcastState(room)

			players += len(room.players)
			bullets += len(room.bullets)
			for _, bot := range room.bots {
				if !bot.IsDead() {
					bots++
				}
			}
		}
		s.mu.Unlock()

		observeTick(start, players, bots, bullets)
	}
}

// broadcastState serializes the room snapshot once and fans it out to every
// client in the room. Caller holds s.mu.
func (s *GameServer) broadcastState(room *RoomState) {
	payload := StatePayload{
		Players:     room.players,
		Bots:        room.bots,
		Bullets:     room.bullets,
		PlayerCount: len(room.players),
	}
	message, err := json.Marshal(map[string]interface{}{"type": "state", "payload": payload})
	if err != nil {
		log.Printf("Room %s: error marshaling state: %v", room.ID, err)
		return
	}
	for _, client := range s.clients {
		if client.roomID != room.ID {
			continue
		}
		select {
		case client.send <- message:
		default:
			log.Printf("Client %s send buffer full during state broadcast.", client.playerID)
		}
	}
}

// broadcastToRoom sends a typed message to every client in the room.
// Caller holds s.mu.
func (s *GameServer) broadcastToRoom(room *RoomState, msgType string, payload interface{}) {
	message, err := json.Marshal(map[string]interface{}{"type": msgType, "payload": payload})
	if err != nil {
		log.Printf("Room %s: error marshaling %s: %v", room.ID, msgType, err)
		return
	}
	for _, client := range s.clients {
		if client.roomID != room.ID {
			continue
		}
		select {
		case client.send <- message:
		default:
			log.Printf("Client %s send buffer full.", client.playerID)
		}
	}
}

// sendMessage queues a typed message for one client. A nil client (entity
// without a live connection) is a no-op.
func (s *GameServer) sendMessage(c *Client, msgType string, payload interface{}) {
	if c == nil {
		return
	}
	message, err := json.Marshal(map[string]interface{}{"type": msgType, "payload": payload})
	if err != nil {
		log.Printf("Client %s: error marshaling %s: %v", c.playerID, msgType, err)
		return
	}
	select {
	case c.send <- message:
	default:
		log.Printf("Client %s send buffer full.", c.playerID)
	}
}

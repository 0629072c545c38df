package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"kittenbomb/internal/game"
	"kittenbomb/internal/store"
)

const sendBufferSize = 32

// client is one websocket connection bound to a player identity.
type client struct {
	conn     *websocket.Conn
	send     chan []byte
	playerID string
	roomCode string
}

func (c *client) sendJSON(msgType string, payload any) {
	msg, err := encode(msgType, payload)
	if err != nil {
		return
	}
	select {
	case c.send <- msg:
	default:
		// Slow consumer; drop rather than block the room.
	}
}

func (c *client) sendError(message string) {
	c.sendJSON("error", errorPayload{Message: message})
}

// Gateway speaks the websocket protocol and orchestrates rooms. It owns
// the decisions the rules engine leaves to its caller: host checks,
// turn ending after a normal draw or a defuse, game end detection, and
// disconnect policy.
type Gateway struct {
	store      *store.RoomStore
	log        *slog.Logger
	lobbyGrace time.Duration

	mu      sync.Mutex
	clients map[string]map[string]*client // roomCode -> playerID -> client
}

// New creates a gateway over the given room store.
func New(roomStore *store.RoomStore, log *slog.Logger, lobbyGrace time.Duration) *Gateway {
	return &Gateway{
		store:      roomStore,
		log:        log,
		lobbyGrace: lobbyGrace,
		clients:    make(map[string]map[string]*client),
	}
}

// ServeHTTP upgrades the connection and pumps messages until the client
// goes away.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		g.log.Error("websocket accept failed", "err", err)
		return
	}

	c := &client{
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		playerID: uuid.NewString(),
	}
	g.log.Debug("client connected", "playerId", c.playerID)

	eg, ctx := errgroup.WithContext(r.Context())
	eg.Go(func() error { return c.writeLoop(ctx) })
	eg.Go(func() error { return g.readLoop(ctx, c) })
	err = eg.Wait()

	g.handleDisconnect(c)
	conn.Close(websocket.StatusNormalClosure, "")
	g.log.Debug("client disconnected", "playerId", c.playerID, "err", err)
}

func (c *client) writeLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-c.send:
			if err := c.conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return err
			}
		}
	}
}

func (g *Gateway) readLoop(ctx context.Context, c *client) error {
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			return err
		}
		g.dispatch(c, data)
	}
}

func (g *Gateway) dispatch(c *client, data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.sendError("malformed message")
		return
	}

	if env.Type == "createGame" || env.Type == "joinGame" {
		g.handleEnter(c, env)
		return
	}

	room, ok := g.store.Get(c.roomCode)
	if !ok || !room.HasPlayer(c.playerID) {
		c.sendError("not in a room")
		return
	}

	switch env.Type {
	case "startGame":
		g.handleStartGame(c, room, env.Payload)
	case "playCard":
		g.handlePlayCard(c, room, env.Payload)
	case "playCombo":
		g.handlePlayCombo(c, room, env.Payload)
	case "drawCard":
		g.handleDrawCard(c, room)
	case "defuseKitten":
		g.handleDefuseKitten(c, room, env.Payload)
	case "giveFavorCard":
		g.handleGiveFavorCard(c, room, env.Payload)
	case "takeComboCard":
		g.handleTakeComboCard(c, room, env.Payload)
	case "requestComboCard":
		g.handleRequestComboCard(c, room)
	case "takeDiscardCard":
		g.handleTakeDiscardCard(c, room, env.Payload)
	case "seeTheFuture":
		g.handlePeek(c, room)
	case "alterTheFuture":
		g.handlePeek(c, room)
	case "rearrangeDeck":
		g.handleRearrangeDeck(c, room, env.Payload)
	case "shuffleDeck":
		if err := room.ShuffleDeck(c.playerID); err != nil {
			c.sendError(err.Error())
			return
		}
		g.broadcastState(room)
	default:
		c.sendError("unknown message type: " + env.Type)
	}
}

func (g *Gateway) handleEnter(c *client, env Envelope) {
	if c.roomCode != "" {
		c.sendError("already in a room")
		return
	}

	var room *game.Room
	switch env.Type {
	case "createGame":
		var p createGamePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil || p.PlayerName == "" {
			c.sendError("player name required")
			return
		}
		room = g.store.Create(c.playerID, p.PlayerName)
		g.log.Info("room created", "roomCode", room.Code, "playerId", c.playerID)
	case "joinGame":
		var p joinGamePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil || p.PlayerName == "" {
			c.sendError("player name required")
			return
		}
		existing, ok := g.store.Get(p.RoomCode)
		if !ok {
			c.sendError("room not found")
			return
		}
		if _, err := existing.AddPlayer(c.playerID, p.PlayerName); err != nil {
			c.sendError(err.Error())
			return
		}
		room = existing
		g.log.Info("player joined", "roomCode", room.Code, "playerId", c.playerID)
	}

	c.roomCode = room.Code
	g.mu.Lock()
	if g.clients[room.Code] == nil {
		g.clients[room.Code] = make(map[string]*client)
	}
	g.clients[room.Code][c.playerID] = c
	g.mu.Unlock()

	c.sendJSON("joined", joinedPayload{RoomCode: room.Code, PlayerID: c.playerID})
	g.broadcastState(room)
}

func (g *Gateway) handleStartGame(c *client, room *game.Room, payload json.RawMessage) {
	if !room.IsHost(c.playerID) {
		c.sendError("only the host can start the game")
		return
	}
	var p startGamePayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &p); err != nil {
			c.sendError("malformed message")
			return
		}
	}
	if err := room.Start(p.ExtraDefuses, p.KittenCount); err != nil {
		c.sendError(err.Error())
		return
	}
	g.log.Info("game started", "roomCode", room.Code)
	g.broadcastState(room)
}

func (g *Gateway) handlePlayCard(c *client, room *game.Room, payload json.RawMessage) {
	var p playCardPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.sendError("malformed message")
		return
	}
	if _, err := room.PlayCard(c.playerID, p.CardID, game.PlayOptions{TargetPlayerID: p.TargetPlayerID}); err != nil {
		c.sendError(err.Error())
		return
	}
	g.broadcastState(room)
}

func (g *Gateway) handlePlayCombo(c *client, room *game.Room, payload json.RawMessage) {
	var p playComboPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.sendError("malformed message")
		return
	}
	if _, err := room.PlayCombo(c.playerID, p.CardIDs, p.ComboType, p.TargetPlayerID, p.RequestedType); err != nil {
		c.sendError(err.Error())
		return
	}
	g.broadcastState(room)
}

func (g *Gateway) handleDrawCard(c *client, room *game.Room) {
	res, err := room.DrawCard(c.playerID)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.sendJSON("drawResult", drawResultPayload{Outcome: res.Outcome, Card: res.Card})

	// A normal draw ends the turn; a kitten either waits for the defuse
	// placement or has already advanced past the exploded player.
	switch res.Outcome {
	case game.DrawDrawn, game.DrawEmptyDeck:
		if err := room.EndTurn(); err != nil {
			g.log.Warn("end turn after draw failed", "roomCode", room.Code, "err", err)
		}
	case game.DrawExploded:
		defer g.checkGameEnd(room)
	}
	g.broadcastState(room)
}

func (g *Gateway) handleDefuseKitten(c *client, room *game.Room, payload json.RawMessage) {
	var p defuseKittenPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.sendError("malformed message")
		return
	}
	if err := room.DefuseKitten(c.playerID, p.Position); err != nil {
		c.sendError(err.Error())
		return
	}
	if err := room.EndTurn(); err != nil {
		g.log.Warn("end turn after defuse failed", "roomCode", room.Code, "err", err)
	}
	g.broadcastState(room)
}

func (g *Gateway) handleGiveFavorCard(c *client, room *game.Room, payload json.RawMessage) {
	var p giveFavorCardPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.sendError("malformed message")
		return
	}
	if err := room.GiveFavorCard(c.playerID, p.ToPlayerID, p.CardID); err != nil {
		c.sendError(err.Error())
		return
	}
	g.broadcastState(room)
}

func (g *Gateway) handleTakeComboCard(c *client, room *game.Room, payload json.RawMessage) {
	var p takeCardPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.sendError("malformed message")
		return
	}
	card, err := room.TakeComboCard(c.playerID, p.CardID)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.sendJSON("comboCard", comboCardPayload{Card: &card})
	g.broadcastState(room)
}

func (g *Gateway) handleRequestComboCard(c *client, room *game.Room) {
	card, err := room.ResolveComboRequest(c.playerID)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.sendJSON("comboCard", comboCardPayload{Card: card})
	g.broadcastState(room)
}

func (g *Gateway) handleTakeDiscardCard(c *client, room *game.Room, payload json.RawMessage) {
	var p takeCardPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.sendError("malformed message")
		return
	}
	card, err := room.TakeDiscardCard(c.playerID, p.CardID)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.sendJSON("comboCard", comboCardPayload{Card: &card})
	g.broadcastState(room)
}

func (g *Gateway) handlePeek(c *client, room *game.Room) {
	top, err := room.PeekDeck(c.playerID, 3)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.sendJSON("future", futurePayload{Cards: top})
	g.broadcastState(room)
}

func (g *Gateway) handleRearrangeDeck(c *client, room *game.Room, payload json.RawMessage) {
	var p rearrangeDeckPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.sendError("malformed message")
		return
	}
	if err := room.RearrangeDeck(c.playerID, p.Cards); err != nil {
		c.sendError(err.Error())
		return
	}
	g.broadcastState(room)
}

// checkGameEnd announces the winner when only one player survives.
func (g *Gateway) checkGameEnd(room *game.Room) {
	winner, over := room.CheckGameEnd()
	if !over {
		return
	}
	g.log.Info("game over", "roomCode", room.Code, "winnerId", winner.ID)
	g.broadcastState(room)
	g.broadcastJSON(room.Code, "gameEnd", gameEndPayload{WinnerID: winner.ID, WinnerName: winner.Name})
}

// broadcastState fans the per-viewer projection out to every connected
// member. Clients are snapshotted under the gateway lock and written to
// outside it.
func (g *Gateway) broadcastState(room *game.Room) {
	for _, c := range g.roomClients(room.Code) {
		state := room.SanitizedState(c.playerID)
		c.sendJSON("gameState", gameStatePayload{GameState: state, YourPlayerID: c.playerID})
	}
}

func (g *Gateway) broadcastJSON(roomCode, msgType string, payload any) {
	for _, c := range g.roomClients(roomCode) {
		c.sendJSON(msgType, payload)
	}
}

func (g *Gateway) roomClients(roomCode string) []*client {
	g.mu.Lock()
	defer g.mu.Unlock()
	members := make([]*client, 0, len(g.clients[roomCode]))
	for _, c := range g.clients[roomCode] {
		members = append(members, c)
	}
	return members
}

// handleDisconnect applies the departure policy. Mid-game the player is
// eliminated immediately; in the lobby they are flagged disconnected
// and removed after a grace period. Rooms left with no players are
// dropped right away.
func (g *Gateway) handleDisconnect(c *client) {
	if c.roomCode == "" {
		return
	}

	g.mu.Lock()
	if members, ok := g.clients[c.roomCode]; ok {
		delete(members, c.playerID)
		if len(members) == 0 {
			delete(g.clients, c.roomCode)
		}
	}
	g.mu.Unlock()

	room, ok := g.store.Get(c.roomCode)
	if !ok {
		return
	}

	switch room.CurrentPhase() {
	case game.PhasePlaying:
		if room.EliminateDisconnected(c.playerID) {
			g.log.Info("player eliminated on disconnect", "roomCode", room.Code, "playerId", c.playerID)
			g.broadcastState(room)
			g.checkGameEnd(room)
		}
	case game.PhaseLobby:
		room.MarkConnected(c.playerID, false)
		g.broadcastState(room)
		code, playerID := c.roomCode, c.playerID
		time.AfterFunc(g.lobbyGrace, func() { g.removeFromLobby(code, playerID) })
	default:
		room.MarkConnected(c.playerID, false)
	}
}

func (g *Gateway) removeFromLobby(roomCode, playerID string) {
	room, ok := g.store.Get(roomCode)
	if !ok || room.CurrentPhase() != game.PhaseLobby {
		return
	}
	if err := room.RemovePlayer(playerID); err != nil {
		return
	}
	if room.NumPlayers() == 0 {
		g.store.Remove(roomCode)
		g.log.Info("empty room removed", "roomCode", roomCode)
		return
	}
	g.broadcastState(room)
}

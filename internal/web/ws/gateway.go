package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"slices"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/mcoot/wordbattle/internal/api/apierr"
	"github.com/mcoot/wordbattle/internal/api/response"
	"github.com/mcoot/wordbattle/internal/model"
	"github.com/mcoot/wordbattle/internal/services/game"
	"github.com/mcoot/wordbattle/internal/services/room"
)

// RoomService is the part of the room controller the gateway drives
type RoomService interface {
	GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error)
	JoinRoom(ctx context.Context, code model.RoomCode, username string) (*model.Room, error)
	LeaveRoom(ctx context.Context, code model.RoomCode, username string) (bool, error)
	StartGame(ctx context.Context, code model.RoomCode, customWord string) (*model.Room, error)
	SubmitGuess(ctx context.Context, code model.RoomCode, username, guess string, attemptNumber int) (*game.GuessResult, *model.Room, error)
	ReturnToLobby(ctx context.Context, code model.RoomCode) (*model.Room, error)
	RoomStatus(ctx context.Context, code model.RoomCode) (*room.StatusView, error)
}

// GatewayConfig holds transport settings
type GatewayConfig struct {
	// AllowedOrigins lists browser origins allowed to connect. Empty or "*"
	// allows any origin.
	AllowedOrigins []string
}

// binding ties a connection to the player it joined as
type binding struct {
	room     model.RoomCode
	username string
}

// Gateway is the websocket endpoint. It decodes inbound events, drives the
// room controller, and tracks which player each connection joined as so
// that a dropped connection leaves the room like an explicit leave.
type Gateway struct {
	rooms    RoomService
	hubs     *HubManager
	upgrader websocket.Upgrader
	logger   *slog.Logger

	mu       sync.Mutex
	bindings map[*Client]binding
	players  map[binding]map[*Client]struct{}
}

// NewGateway creates a new Gateway
func NewGateway(rooms RoomService, hubs *HubManager, cfg GatewayConfig, logger *slog.Logger) *Gateway {
	g := &Gateway{
		rooms:    rooms,
		hubs:     hubs,
		logger:   logger.With(slog.String("component", "ws-gateway")),
		bindings: make(map[*Client]binding),
		players:  make(map[binding]map[*Client]struct{}),
	}
	g.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(cfg.AllowedOrigins),
	}
	return g
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(r *http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		// Non-browser clients send no origin
		return origin == "" || slices.Contains(allowed, origin)
	}
}

// ServeHTTP upgrades the request and serves the connection until it closes
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("ws upgrade failed", slog.Any("error", err))
		return
	}

	client := NewClient(conn, g.logger)
	ctx := context.WithoutCancel(r.Context())

	g.logger.Info("ws client connected",
		slog.String("connection_id", client.id),
		slog.String("remote_addr", r.RemoteAddr))

	go client.writePump()
	g.reply(client, EventConnected, ConnectedData{ConnectionID: client.id})

	client.readPump(func(message []byte) {
		g.handleMessage(ctx, client, message)
	})

	g.disconnect(ctx, client)
	client.close()
}

// handleMessage decodes and dispatches one inbound frame. A panic while
// handling it is answered with an internal error; the connection survives.
func (g *Gateway) handleMessage(ctx context.Context, c *Client, message []byte) {
	var env Envelope
	if err := json.Unmarshal(message, &env); err != nil {
		g.replyError(c, EventRoomError, "", apierr.NewInvalidRequestError("Malformed message"))
		return
	}

	errorEvent := EventRoomError
	switch env.Event {
	case EventStartGame, EventSubmitGuess, EventReturnToLobby:
		errorEvent = EventGameError
	}

	defer func() {
		if rec := recover(); rec != nil {
			g.logger.Error("panic while handling ws event",
				slog.String("connection_id", c.id),
				slog.String("event", env.Event),
				slog.Any("panic", rec),
				slog.String("stack", string(debug.Stack())))
			g.replyError(c, errorEvent, env.Event, apierr.NewInternalError())
		}
	}()

	if err := g.dispatch(ctx, c, env); err != nil {
		if apierr.IsInternal(err) {
			g.logger.Error("ws event failed",
				slog.String("connection_id", c.id),
				slog.String("event", env.Event),
				slog.Any("error", err))
		}
		g.replyError(c, errorEvent, env.Event, err)
	}
}

func (g *Gateway) dispatch(ctx context.Context, c *Client, env Envelope) error {
	switch env.Event {
	case EventJoin:
		var data JoinData
		if err := decode(env.Data, &data); err != nil {
			return err
		}
		return g.handleJoin(ctx, c, data)

	case EventLeave, EventLeaveRoom:
		var data LeaveData
		if err := decode(env.Data, &data); err != nil {
			return err
		}
		return g.handleLeave(ctx, c, data)

	case EventStartGame:
		var data StartGameData
		if err := decode(env.Data, &data); err != nil {
			return err
		}
		_, err := g.rooms.StartGame(ctx, room.NormalizeCode(data.RoomCode), data.CustomWord)
		return err

	case EventSubmitGuess:
		var data SubmitGuessData
		if err := decode(env.Data, &data); err != nil {
			return err
		}
		return g.handleSubmitGuess(ctx, c, data)

	case EventGetRoomStatus:
		var data RoomCodeData
		if err := decode(env.Data, &data); err != nil {
			return err
		}
		view, err := g.rooms.RoomStatus(ctx, room.NormalizeCode(data.RoomCode))
		if err != nil {
			return err
		}
		g.reply(c, EventRoomStatus, response.RoomStatusFromView(view))
		return nil

	case EventReturnToLobby:
		var data RoomCodeData
		if err := decode(env.Data, &data); err != nil {
			return err
		}
		_, err := g.rooms.ReturnToLobby(ctx, room.NormalizeCode(data.RoomCode))
		return err

	default:
		return apierr.NewUnknownEventError(env.Event)
	}
}

func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return apierr.NewInvalidRequestError("Missing event data")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return apierr.NewInvalidRequestError("Invalid event data")
	}
	return nil
}

func (g *Gateway) handleJoin(ctx context.Context, c *Client, data JoinData) error {
	code := room.NormalizeCode(data.RoomCode)
	username, err := room.NormalizeUsername(data.Username)
	if err != nil {
		return err
	}
	target := binding{room: code, username: username}

	existing, err := g.rooms.GetRoom(ctx, code)
	if err != nil {
		return err
	}
	if existing.Status != model.RoomStatusWaiting {
		return model.ErrGameInProgress
	}

	previous := c.subscribedTo()
	current, bound := g.bindingOf(c)
	member := existing.HasPlayer(username)

	// Subscribe first so the joiner sees its own join broadcast
	c.subscribe(g.hubs, code)

	if member {
		// The room may have closed, taking its hub with it, before the subscribe
		if existing, err = g.rooms.GetRoom(ctx, code); err != nil {
			g.restoreSubscription(c, code, previous, err)
			return err
		}
	} else if _, err := g.rooms.JoinRoom(ctx, code, username); err != nil {
		g.restoreSubscription(c, code, previous, err)
		return err
	}

	// The old room is only left once the new one has accepted the player
	if bound && current != target {
		g.leaveBinding(ctx, c, current)
	}
	g.bind(c, target)

	if member {
		g.reply(c, EventRoomUpdated, RoomUpdatedData{
			Room:     response.RoomFromModel(existing),
			Reason:   string(model.ReasonPlayerJoined),
			Username: username,
		})
	}
	return nil
}

// restoreSubscription puts a connection back on the hub it was on before a
// failed join. A hub created for a room that no longer exists is dropped.
func (g *Gateway) restoreSubscription(c *Client, code, previous model.RoomCode, err error) {
	if errors.Is(err, model.ErrRoomNotFound) {
		c.unsubscribe()
		g.hubs.RemoveHub(code)
	}
	switch {
	case previous == code:
		return
	case previous != "" && g.hubs.GetHub(previous) != nil:
		c.subscribe(g.hubs, previous)
	default:
		c.unsubscribe()
	}
}

func (g *Gateway) handleLeave(ctx context.Context, c *Client, data LeaveData) error {
	code := room.NormalizeCode(data.RoomCode)
	target := binding{room: code, username: strings.TrimSpace(data.Username)}

	removed, err := g.rooms.LeaveRoom(ctx, code, target.username)
	if err != nil || !removed {
		return err
	}

	// Every connection bound as this player is released with it
	for _, bound := range g.unbindPlayer(target) {
		bound.unsubscribe()
	}
	if _, ok := g.bindingOf(c); !ok && c.subscribedTo() == code {
		c.unsubscribe()
	}
	return nil
}

func (g *Gateway) handleSubmitGuess(ctx context.Context, c *Client, data SubmitGuessData) error {
	code := room.NormalizeCode(data.RoomCode)

	current, err := g.rooms.GetRoom(ctx, code)
	if err != nil {
		return err
	}
	if player := current.GetPlayer(data.Username); player == nil || !player.CanGuess() {
		g.logger.Debug("guess ignored for missing or eliminated player",
			slog.String("room_code", string(code)),
			slog.String("username", data.Username))
		return nil
	}

	_, _, err = g.rooms.SubmitGuess(ctx, code, data.Username, data.Guess, data.AttemptNumber)
	if errors.Is(err, model.ErrPlayerNotFoundOrEliminated) {
		return nil
	}
	return err
}

// disconnect releases a closed connection. The bound player leaves the
// room unless another live connection is bound as the same player.
func (g *Gateway) disconnect(ctx context.Context, c *Client) {
	c.unsubscribe()

	b, ok, last := g.unbind(c)
	if !ok || !last {
		g.logger.Info("ws client disconnected", slog.String("connection_id", c.id))
		return
	}

	removed, err := g.rooms.LeaveRoom(ctx, b.room, b.username)
	if err != nil && !errors.Is(err, model.ErrRoomNotFound) {
		g.logger.Error("failed to remove disconnected player",
			slog.String("room_code", string(b.room)),
			slog.String("username", b.username),
			slog.Any("error", err))
		return
	}

	g.logger.Info("ws client disconnected",
		slog.String("connection_id", c.id),
		slog.String("room_code", string(b.room)),
		slog.String("username", b.username),
		slog.Bool("player_removed", removed))
}

// leaveBinding releases the room a connection was bound to once it has
// joined another. The player leaves only if no other connection holds it.
func (g *Gateway) leaveBinding(ctx context.Context, c *Client, b binding) {
	if _, _, last := g.unbind(c); !last {
		return
	}
	if _, err := g.rooms.LeaveRoom(ctx, b.room, b.username); err != nil && !errors.Is(err, model.ErrRoomNotFound) {
		g.logger.Warn("failed to leave previous room",
			slog.String("room_code", string(b.room)),
			slog.String("username", b.username),
			slog.Any("error", err))
	}
}

func (g *Gateway) bind(c *Client, b binding) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if old, ok := g.bindings[c]; ok {
		g.dropLocked(c, old)
	}
	g.bindings[c] = b
	if g.players[b] == nil {
		g.players[b] = make(map[*Client]struct{})
	}
	g.players[b][c] = struct{}{}
}

// unbind clears the connection's binding. last reports whether no other
// connection remains bound as the same player.
func (g *Gateway) unbind(c *Client) (b binding, ok bool, last bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	b, ok = g.bindings[c]
	if !ok {
		return binding{}, false, false
	}
	delete(g.bindings, c)
	g.dropLocked(c, b)
	return b, true, len(g.players[b]) == 0
}

// unbindPlayer clears every connection bound as the player
func (g *Gateway) unbindPlayer(b binding) []*Client {
	g.mu.Lock()
	defer g.mu.Unlock()

	var clients []*Client
	for c := range g.players[b] {
		delete(g.bindings, c)
		clients = append(clients, c)
	}
	delete(g.players, b)
	return clients
}

func (g *Gateway) dropLocked(c *Client, b binding) {
	delete(g.players[b], c)
	if len(g.players[b]) == 0 {
		delete(g.players, b)
	}
}

func (g *Gateway) bindingOf(c *Client) (binding, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	b, ok := g.bindings[c]
	return b, ok
}

// BoundConnections returns how many connections are bound to players
func (g *Gateway) BoundConnections() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.bindings)
}

func (g *Gateway) reply(c *Client, event string, data any) {
	message, err := Encode(event, data)
	if err != nil {
		g.logger.Error("ws failed to encode reply",
			slog.String("event", event),
			slog.Any("error", err))
		return
	}
	c.Send(message)
}

func (g *Gateway) replyError(c *Client, event, cause string, err error) {
	apiErr := apierr.FromError(err)
	g.reply(c, event, ErrorData{
		Event:   cause,
		Code:    apiErr.Code,
		Message: apiErr.Message,
	})
}

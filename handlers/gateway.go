package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"hextrade/internal/game"
	"hextrade/internal/network"
	"hextrade/models"
	"hextrade/pkg/config"
	"hextrade/pkg/logger"
	"hextrade/pkg/protocol"
)

// Gateway is the message boundary between clients and the game core. It
// decodes and validates intents, routes them to lobbies or game actors, and
// never lets a game error abort the connection.
type Gateway struct {
	upgrader websocket.Upgrader
	sessions *network.SessionManager
	lobbies  *models.LobbyManager
	games    *network.GameManager
	cfg      *config.Config
	logger   *logger.ColoredLogger
}

// NewGateway wires the gateway to its managers
func NewGateway(sessions *network.SessionManager, lobbies *models.LobbyManager,
	games *network.GameManager, cfg *config.Config) *Gateway {

	gw := &Gateway{
		sessions: sessions,
		lobbies:  lobbies,
		games:    games,
		cfg:      cfg,
		logger:   logger.ServerLogger,
	}
	gw.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			allowed := cfg.Security.FrontendURL
			if allowed == "" {
				return true
			}
			return r.Header.Get("Origin") == allowed
		},
	}
	return gw
}

// HandleWebSocket upgrades an HTTP request into a client session
func (gw *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := gw.upgrader.Upgrade(w, r, nil)
	if err != nil {
		gw.logger.Warn("WebSocket upgrade failed: %v", err)
		return
	}
	gw.sessions.NewSession(conn, gw, gw.cfg.WebSocket)
}

// HandleMessage dispatches one decoded client message
func (gw *Gateway) HandleMessage(session *network.Session, msg protocol.Message) {
	if msg.Type == protocol.MsgConnect {
		gw.handleConnect(session, msg)
		return
	}

	if session.PlayerID == "" {
		session.SendError(protocol.MsgError, protocol.ErrInvalidPayload, "connect first")
		return
	}

	switch msg.Type {
	case protocol.MsgCreateLobby, protocol.MsgJoinLobby, protocol.MsgLeaveLobby,
		protocol.MsgSetReady, protocol.MsgSetColor, protocol.MsgStartGame:
		gw.handleLobbyMessage(session, msg)

	case protocol.MsgChatMessage:
		gw.handleChat(session, msg)

	default:
		gw.handleGameMessage(session, msg)
	}
}

// HandleDisconnect flips the player's connection flag when their session
// drops. A newer session bound to the same player (reconnection) suppresses
// the notification.
func (gw *Gateway) HandleDisconnect(session *network.Session) {
	playerID := session.PlayerID
	if playerID == "" || gw.sessions.SessionForPlayer(playerID) != nil {
		return
	}

	if actor := gw.games.ActorForPlayer(playerID); actor != nil {
		actor.Submit(func(g *game.Game) ([]game.Event, error) {
			return g.SetConnected(playerID, false)
		})
	}
}

// handleConnect assigns or re-binds the client's stable player identity and
// replays state for reconnections.
func (gw *Gateway) handleConnect(session *network.Session, msg protocol.Message) {
	var payload protocol.ConnectPayload
	if err := parsePayload(msg.Payload, &payload); err != nil {
		session.SendError(protocol.MsgError, protocol.ErrInvalidPayload, "invalid connect payload")
		return
	}
	if !validUsername(payload.Username) {
		session.SendError(protocol.MsgError, protocol.ErrInvalidPayload, "username must be 2-20 characters of letters, digits, _ or -")
		return
	}

	playerID := payload.PlayerID
	if playerID == "" {
		playerID = uuid.New().String()
	}

	gw.sessions.BindPlayer(playerID, session)
	session.Username = payload.Username

	session.SendMessage(protocol.MsgConnected, protocol.ConnectedPayload{
		PlayerID:  playerID,
		SessionID: session.ID,
	})

	// Reconnection: replay whatever context the player already has.
	if actor := gw.games.ActorForPlayer(playerID); actor != nil {
		actor.Submit(func(g *game.Game) ([]game.Event, error) {
			return g.SetConnected(playerID, true)
		})
		actor.Subscribe(playerID)
		return
	}
	if lobby := gw.lobbies.LobbyForPlayer(playerID); lobby != nil {
		session.SendMessage(protocol.MsgLobbyUpdated, lobby.Snapshot())
	}
}

// handleChat relays a chat message to the sender's game or lobby. Chat
// carries no game semantics.
func (gw *Gateway) handleChat(session *network.Session, msg protocol.Message) {
	var payload protocol.ChatPayload
	if err := parsePayload(msg.Payload, &payload); err != nil || payload.Text == "" || len(payload.Text) > maxChatLength {
		session.SendError(protocol.MsgError, protocol.ErrInvalidPayload, "invalid chat message")
		return
	}

	out := protocol.ChatMessagePayload{
		PlayerID: session.PlayerID,
		Username: session.Username,
		Text:     payload.Text,
		SentAt:   time.Now().Unix(),
	}

	if actor := gw.games.ActorForPlayer(session.PlayerID); actor != nil {
		actor.Broadcast(protocol.MsgChatMessage, out)
		return
	}
	if lobby := gw.lobbies.LobbyForPlayer(session.PlayerID); lobby != nil {
		lobby.AddMessage(session.PlayerID, payload.Text)
		for _, playerID := range lobby.PlayerIDs() {
			gw.sessions.SendToPlayer(playerID, protocol.MsgChatMessage, out)
		}
		return
	}
	session.SendError(protocol.MsgError, protocol.ErrNotInGame, "you are not in a game or lobby")
}

// parsePayload decodes a raw message payload into a typed struct
func parsePayload(raw json.RawMessage, target interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, target)
}

// errorFamily maps an intent to the error message type its failures use
func errorFamily(msgType protocol.MessageType) protocol.MessageType {
	switch msgType {
	case protocol.MsgCreateLobby, protocol.MsgJoinLobby, protocol.MsgLeaveLobby,
		protocol.MsgSetReady, protocol.MsgSetColor, protocol.MsgStartGame:
		return protocol.MsgLobbyError
	case protocol.MsgBuildSettlement, protocol.MsgBuildCity, protocol.MsgBuildRoad, protocol.MsgBuyDevCard:
		return protocol.MsgBuildError
	case protocol.MsgProposeTrade, protocol.MsgAcceptTrade, protocol.MsgRejectTrade,
		protocol.MsgCancelTrade, protocol.MsgBankTrade, protocol.MsgPortTrade:
		return protocol.MsgTradeError
	}
	return protocol.MsgError
}

// sendGameError maps an engine failure onto the per-client error event
func sendGameError(session *network.Session, intent protocol.MessageType, err error) {
	family := errorFamily(intent)
	if gerr, ok := err.(*game.GameError); ok {
		session.SendError(family, gerr.Code, gerr.Message)
		return
	}
	session.SendError(family, protocol.ErrInternal, "internal error")
}

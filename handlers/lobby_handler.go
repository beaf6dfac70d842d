package handlers

import (
	"time"

	"hextrade/internal/game"
	"hextrade/internal/network"
	"hextrade/models"
	"hextrade/pkg/protocol"
)

// handleLobbyMessage dispatches pre-game lobby intents
func (gw *Gateway) handleLobbyMessage(session *network.Session, msg protocol.Message) {
	switch msg.Type {
	case protocol.MsgCreateLobby:
		gw.handleCreateLobby(session, msg)
	case protocol.MsgJoinLobby:
		gw.handleJoinLobby(session, msg)
	case protocol.MsgLeaveLobby:
		gw.handleLeaveLobby(session)
	case protocol.MsgSetReady:
		gw.handleSetReady(session, msg)
	case protocol.MsgSetColor:
		gw.handleSetColor(session, msg)
	case protocol.MsgStartGame:
		gw.handleStartGame(session)
	}
}

// handleCreateLobby opens a new lobby with the sender as host
func (gw *Gateway) handleCreateLobby(session *network.Session, msg protocol.Message) {
	var payload protocol.CreateLobbyPayload
	if err := parsePayload(msg.Payload, &payload); err != nil {
		session.SendError(protocol.MsgLobbyError, protocol.ErrInvalidPayload, "invalid create payload")
		return
	}
	if payload.Username == "" {
		payload.Username = session.Username
	}
	if !validUsername(payload.Username) {
		session.SendError(protocol.MsgLobbyError, protocol.ErrInvalidPayload, "invalid username")
		return
	}
	if payload.MaxPlayers == 0 {
		payload.MaxPlayers = gw.cfg.Game.MaxPlayersPerGame
	}
	if payload.MaxPlayers < gw.cfg.Game.MinPlayersPerGame || payload.MaxPlayers > gw.cfg.Game.MaxPlayersPerGame {
		session.SendError(protocol.MsgLobbyError, protocol.ErrInvalidPayload, "invalid player limit")
		return
	}
	if gw.games.ActorForPlayer(session.PlayerID) != nil || gw.lobbies.LobbyForPlayer(session.PlayerID) != nil {
		session.SendError(protocol.MsgLobbyError, protocol.ErrAlreadyStarted, "you are already in a game or lobby")
		return
	}

	host := &models.LobbyPlayer{
		ID:       session.PlayerID,
		UserID:   session.PlayerID,
		Username: payload.Username,
		Color:    game.Colors()[0],
	}
	lobby, err := gw.lobbies.CreateLobby(host, payload.MaxPlayers)
	if err != nil {
		session.SendError(protocol.MsgLobbyError, protocol.ErrInternal, "could not create lobby")
		return
	}

	session.SendMessage(protocol.MsgLobbyCreated, lobby.Snapshot())
}

// handleJoinLobby adds the sender to an existing lobby, treating a known
// player ID as a reconnection.
func (gw *Gateway) handleJoinLobby(session *network.Session, msg protocol.Message) {
	var payload protocol.JoinLobbyPayload
	if err := parsePayload(msg.Payload, &payload); err != nil {
		session.SendError(protocol.MsgLobbyError, protocol.ErrInvalidPayload, "invalid join payload")
		return
	}
	if !validCode(payload.Code) {
		session.SendError(protocol.MsgLobbyError, protocol.ErrInvalidPayload, "game code must be 6 characters A-Z 0-9")
		return
	}
	if payload.Username == "" {
		payload.Username = session.Username
	}
	if !validUsername(payload.Username) {
		session.SendError(protocol.MsgLobbyError, protocol.ErrInvalidPayload, "invalid username")
		return
	}

	lobby, err := gw.lobbies.GetLobby(payload.Code)
	if err != nil {
		session.SendError(protocol.MsgLobbyError, protocol.ErrCodeUnknown, "no lobby with that code")
		return
	}

	// A returning player re-binds instead of taking a new slot.
	if lobby.Player(session.PlayerID) != nil {
		gw.lobbies.TrackPlayer(session.PlayerID, lobby.Code)
		session.SendMessage(protocol.MsgLobbyUpdated, lobby.Snapshot())
		return
	}

	if lobby.Status != models.LobbyStatusWaiting {
		session.SendError(protocol.MsgLobbyError, protocol.ErrAlreadyStarted, "that game has already started")
		return
	}
	if !lobby.AddPlayer(session.PlayerID, session.PlayerID, payload.Username) {
		session.SendError(protocol.MsgLobbyError, protocol.ErrLobbyFull, "that lobby is full")
		return
	}

	gw.lobbies.TrackPlayer(session.PlayerID, lobby.Code)
	gw.broadcastLobby(lobby)
}

// handleLeaveLobby removes the sender from their lobby
func (gw *Gateway) handleLeaveLobby(session *network.Session) {
	lobby := gw.lobbies.LobbyForPlayer(session.PlayerID)
	if lobby == nil {
		session.SendError(protocol.MsgLobbyError, protocol.ErrCodeUnknown, "you are not in a lobby")
		return
	}

	empty := lobby.RemovePlayer(session.PlayerID)
	gw.lobbies.UntrackPlayer(session.PlayerID)
	session.SendMessage(protocol.MsgLobbyLeft, map[string]string{"code": lobby.Code})

	if empty {
		gw.lobbies.DeleteLobby(lobby.Code)
		return
	}
	gw.broadcastLobby(lobby)
}

// handleSetReady updates the sender's ready flag
func (gw *Gateway) handleSetReady(session *network.Session, msg protocol.Message) {
	var payload protocol.SetReadyPayload
	if err := parsePayload(msg.Payload, &payload); err != nil {
		session.SendError(protocol.MsgLobbyError, protocol.ErrInvalidPayload, "invalid ready payload")
		return
	}

	lobby := gw.lobbies.LobbyForPlayer(session.PlayerID)
	if lobby == nil || !lobby.SetReady(session.PlayerID, payload.Ready) {
		session.SendError(protocol.MsgLobbyError, protocol.ErrCodeUnknown, "you are not in a lobby")
		return
	}
	gw.broadcastLobby(lobby)
}

// handleSetColor assigns the sender's requested color
func (gw *Gateway) handleSetColor(session *network.Session, msg protocol.Message) {
	var payload protocol.SetColorPayload
	if err := parsePayload(msg.Payload, &payload); err != nil || !game.ValidColor(game.Color(payload.Color)) {
		session.SendError(protocol.MsgLobbyError, protocol.ErrInvalidPayload, "invalid color")
		return
	}

	lobby := gw.lobbies.LobbyForPlayer(session.PlayerID)
	if lobby == nil {
		session.SendError(protocol.MsgLobbyError, protocol.ErrCodeUnknown, "you are not in a lobby")
		return
	}
	if !lobby.SetColor(session.PlayerID, game.Color(payload.Color)) {
		session.SendError(protocol.MsgLobbyError, protocol.ErrColorTaken, "that color is taken")
		return
	}
	gw.broadcastLobby(lobby)
}

// handleStartGame launches the countdown and then hands the lobby to the
// game registry. Host only; every non-host player must be ready.
func (gw *Gateway) handleStartGame(session *network.Session) {
	lobby := gw.lobbies.LobbyForPlayer(session.PlayerID)
	if lobby == nil {
		session.SendError(protocol.MsgLobbyError, protocol.ErrCodeUnknown, "you are not in a lobby")
		return
	}
	if !lobby.CanStart(session.PlayerID) {
		session.SendError(protocol.MsgLobbyError, protocol.ErrInvalidPayload, "need at least 2 players and everyone ready")
		return
	}

	lobby.MarkStarting()
	countdown := gw.cfg.Game.StartCountdown
	payload := protocol.CountdownPayload{Code: lobby.Code, Seconds: int(countdown / time.Second)}
	for _, playerID := range lobby.PlayerIDs() {
		gw.sessions.SendToPlayer(playerID, protocol.MsgLobbyCountdown, payload)
	}
	gw.broadcastLobby(lobby)

	time.AfterFunc(countdown, func() { gw.launchGame(lobby) })
}

// launchGame builds the game from the lobby roster after the countdown
func (gw *Gateway) launchGame(lobby *models.Lobby) {
	playerIDs := lobby.PlayerIDs()

	if _, err := gw.games.CreateGame(lobby.Code, lobby.Seats()); err != nil {
		gw.logger.Error("Failed to start game for lobby %s: %v", lobby.Code, err)
		for _, playerID := range playerIDs {
			gw.sessions.SendToPlayer(playerID, protocol.MsgLobbyError, protocol.ErrorPayload{
				Code:    protocol.ErrInternal,
				Message: "failed to start the game",
			})
		}
		return
	}

	lobby.MarkStarted()
	for _, playerID := range playerIDs {
		gw.sessions.SendToPlayer(playerID, protocol.MsgGameStarted, map[string]string{"code": lobby.Code})
	}
	gw.lobbies.DeleteLobby(lobby.Code)
}

// broadcastLobby sends the lobby snapshot to every member
func (gw *Gateway) broadcastLobby(lobby *models.Lobby) {
	snapshot := lobby.Snapshot()
	for _, playerID := range lobby.PlayerIDs() {
		gw.sessions.SendToPlayer(playerID, protocol.MsgLobbyUpdated, snapshot)
	}
}

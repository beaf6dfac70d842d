package network

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"hextrade/pkg/config"
	"hextrade/pkg/logger"
	"hextrade/pkg/protocol"
)

// MessageHandler receives decoded messages and lifecycle callbacks from
// sessions. The event gateway implements it.
type MessageHandler interface {
	HandleMessage(session *Session, msg protocol.Message)
	HandleDisconnect(session *Session)
}

// Session represents one connected client
type Session struct {
	ID          string
	PlayerID    string
	Username    string
	ConnectedAt time.Time
	LastActive  time.Time

	conn      *websocket.Conn
	sendQueue chan []byte
	mutex     sync.Mutex
	closed    bool
	handler   MessageHandler
	cfg       config.WebSocketConfig
	manager   *SessionManager
}

// SessionManager tracks all live sessions and the player identity bound to
// each. It replaces module-level socket maps with instance state.
type SessionManager struct {
	sessions map[string]*Session // sessionID -> session
	players  map[string]*Session // playerID -> most recent session
	mutex    sync.RWMutex
	logger   *logger.ColoredLogger
}

// NewSessionManager creates an empty session manager
func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
		players:  make(map[string]*Session),
		logger:   logger.NetworkLogger,
	}
}

// NewSession wraps a websocket connection and starts its pumps
func (sm *SessionManager) NewSession(conn *websocket.Conn, handler MessageHandler, cfg config.WebSocketConfig) *Session {
	session := &Session{
		ID:          uuid.New().String(),
		ConnectedAt: time.Now(),
		LastActive:  time.Now(),
		conn:        conn,
		sendQueue:   make(chan []byte, cfg.SendQueueSize),
		handler:     handler,
		cfg:         cfg,
		manager:     sm,
	}

	sm.mutex.Lock()
	sm.sessions[session.ID] = session
	sm.mutex.Unlock()

	go session.readPump()
	go session.writePump()

	return session
}

// BindPlayer associates a player identity with a session. An older session
// for the same player is closed; the new one wins.
func (sm *SessionManager) BindPlayer(playerID string, session *Session) {
	sm.mutex.Lock()
	old := sm.players[playerID]
	sm.players[playerID] = session
	sm.mutex.Unlock()

	session.PlayerID = playerID

	if old != nil && old != session {
		old.Close()
	}
}

// SessionForPlayer returns the live session bound to a player, or nil
func (sm *SessionManager) SessionForPlayer(playerID string) *Session {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()
	return sm.players[playerID]
}

// SendToPlayer delivers a message to a player's session, if connected
func (sm *SessionManager) SendToPlayer(playerID string, msgType protocol.MessageType, payload interface{}) {
	if session := sm.SessionForPlayer(playerID); session != nil {
		session.SendMessage(msgType, payload)
	}
}

// remove drops a session from the registry
func (sm *SessionManager) remove(session *Session) {
	sm.mutex.Lock()
	delete(sm.sessions, session.ID)
	if sm.players[session.PlayerID] == session {
		delete(sm.players, session.PlayerID)
	}
	sm.mutex.Unlock()
}

// SendMessage sends a typed message to the client
func (s *Session) SendMessage(msgType protocol.MessageType, payload interface{}) error {
	msg := protocol.NewMessage(msgType, payload)
	msg.SessionID = s.ID
	return s.Send(msg)
}

// SendError sends an error payload under the given error message type
func (s *Session) SendError(msgType protocol.MessageType, code, message string) {
	s.SendMessage(msgType, protocol.ErrorPayload{Code: code, Message: message})
}

// Send serializes and queues a message. A full queue marks the client as too
// slow; the session closes and the client resnapshots on reconnect.
func (s *Session) Send(msg *protocol.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		return nil
	}
	var overflow bool
	select {
	case s.sendQueue <- data:
	default:
		overflow = true
	}
	s.mutex.Unlock()

	if overflow {
		s.manager.logger.Warn("Session %s send queue overflow, closing", s.ID)
		s.Close()
		return errors.New("send queue full")
	}
	return nil
}

// Close tears down the session
func (s *Session) Close() {
	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		return
	}
	s.closed = true
	s.conn.Close()
	close(s.sendQueue)
	s.mutex.Unlock()

	s.manager.remove(s)
	if s.handler != nil {
		s.handler.HandleDisconnect(s)
	}
}

// readPump reads messages from the websocket connection
func (s *Session) readPump() {
	defer s.Close()

	s.conn.SetReadLimit(s.cfg.MaxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
		return nil
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			break
		}

		s.LastActive = time.Now()

		msg, err := protocol.DeserializeMessage(data)
		if err != nil {
			s.SendError(protocol.MsgError, protocol.ErrInvalidPayload, "could not parse message")
			continue
		}

		switch msg.Type {
		case protocol.MsgPing:
			s.SendMessage(protocol.MsgPong, nil)
		case protocol.MsgDisconnect:
			return
		default:
			s.handler.HandleMessage(s, msg)
		}
	}
}

// writePump writes queued messages and keepalive pings to the connection
func (s *Session) writePump() {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		s.Close()
	}()

	for {
		select {
		case data, ok := <-s.sendQueue:
			s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

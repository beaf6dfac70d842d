package models

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"hextrade/internal/game"
)

// LobbyStatus represents the current state of a lobby
type LobbyStatus string

const (
	LobbyStatusWaiting  LobbyStatus = "waiting"
	LobbyStatusStarting LobbyStatus = "starting"
	LobbyStatusStarted  LobbyStatus = "started"
)

// LobbyPlayer represents a player in a lobby
type LobbyPlayer struct {
	ID       string     `json:"id"`
	UserID   string     `json:"user_id"`
	Username string     `json:"username"`
	Color    game.Color `json:"color"`
	IsReady  bool       `json:"is_ready"`
	IsHost   bool       `json:"is_host"`
	JoinedAt time.Time  `json:"joined_at"`
}

// Message represents a chat or system message in the lobby
type Message struct {
	ID        string    `json:"id"`
	PlayerID  string    `json:"player_id"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Lobby represents a pre-game room addressed by its join code
type Lobby struct {
	Code       string         `json:"code"`
	HostID     string         `json:"host_id"`
	Status     LobbyStatus    `json:"status"`
	Players    []*LobbyPlayer `json:"players"` // join order
	Messages   []Message      `json:"messages"`
	MaxPlayers int            `json:"max_players"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`

	mu sync.Mutex
}

// NewLobby creates a lobby with the given host
func NewLobby(code string, host *LobbyPlayer, maxPlayers int) *Lobby {
	host.IsHost = true
	host.JoinedAt = time.Now()

	lobby := &Lobby{
		Code:       code,
		HostID:     host.ID,
		Status:     LobbyStatusWaiting,
		Players:    []*LobbyPlayer{host},
		MaxPlayers: maxPlayers,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	lobby.addSystemMessageLocked("Lobby created. Waiting for players...")
	return lobby
}

// Player finds a lobby player by ID, or nil
func (l *Lobby) Player(playerID string) *LobbyPlayer {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.playerLocked(playerID)
}

func (l *Lobby) playerLocked(playerID string) *LobbyPlayer {
	for _, p := range l.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// AddPlayer adds a player with the first free color. Re-adding an existing
// player succeeds (reconnection); a full or started lobby refuses.
func (l *Lobby) AddPlayer(playerID, userID, username string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if existing := l.playerLocked(playerID); existing != nil {
		return true
	}
	if l.Status != LobbyStatusWaiting || len(l.Players) >= l.MaxPlayers {
		return false
	}

	color, ok := l.freeColorLocked()
	if !ok {
		return false
	}

	l.Players = append(l.Players, &LobbyPlayer{
		ID:       playerID,
		UserID:   userID,
		Username: username,
		Color:    color,
		JoinedAt: time.Now(),
	})
	l.UpdatedAt = time.Now()
	l.addSystemMessageLocked(username + " joined the lobby")
	return true
}

// RemovePlayer removes a player; the earliest remaining player inherits the
// host role. Returns true when the lobby is now empty.
func (l *Lobby) RemovePlayer(playerID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := -1
	for i, p := range l.Players {
		if p.ID == playerID {
			removed = i
			break
		}
	}
	if removed == -1 {
		return len(l.Players) == 0
	}

	player := l.Players[removed]
	l.Players = append(l.Players[:removed], l.Players[removed+1:]...)
	l.UpdatedAt = time.Now()
	l.addSystemMessageLocked(player.Username + " left the lobby")

	if len(l.Players) == 0 {
		return true
	}

	// Promote the earliest remaining player when the host leaves.
	if player.IsHost {
		newHost := l.Players[0]
		for _, p := range l.Players[1:] {
			if p.JoinedAt.Before(newHost.JoinedAt) {
				newHost = p
			}
		}
		newHost.IsHost = true
		l.HostID = newHost.ID
		l.addSystemMessageLocked(newHost.Username + " is now the host")
	}

	return false
}

// SetColor assigns a color to a player if it is free
func (l *Lobby) SetColor(playerID string, color game.Color) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	player := l.playerLocked(playerID)
	if player == nil || !game.ValidColor(color) {
		return false
	}
	for _, p := range l.Players {
		if p.ID != playerID && p.Color == color {
			return false
		}
	}

	player.Color = color
	l.UpdatedAt = time.Now()
	return true
}

// SetReady updates a player's ready flag
func (l *Lobby) SetReady(playerID string, ready bool) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	player := l.playerLocked(playerID)
	if player == nil {
		return false
	}

	player.IsReady = ready
	l.UpdatedAt = time.Now()
	if ready {
		l.addSystemMessageLocked(player.Username + " is ready")
	} else {
		l.addSystemMessageLocked(player.Username + " is not ready")
	}
	return true
}

// CanStart reports whether the host can launch the game: at least two
// players, every non-host player ready.
func (l *Lobby) CanStart(hostID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.Status != LobbyStatusWaiting || l.HostID != hostID || len(l.Players) < 2 {
		return false
	}
	for _, p := range l.Players {
		if !p.IsHost && !p.IsReady {
			return false
		}
	}
	return true
}

// MarkStarting flips the lobby into the countdown state
func (l *Lobby) MarkStarting() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Status = LobbyStatusStarting
	l.UpdatedAt = time.Now()
	l.addSystemMessageLocked("Game is starting...")
}

// MarkStarted flips the lobby into the started state
func (l *Lobby) MarkStarted() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Status = LobbyStatusStarted
	l.UpdatedAt = time.Now()
}

// Seats builds the game seats from the lobby roster, in join order
func (l *Lobby) Seats() []game.Seat {
	l.mu.Lock()
	defer l.mu.Unlock()

	seats := make([]game.Seat, 0, len(l.Players))
	for _, p := range l.Players {
		seats = append(seats, game.Seat{
			PlayerID: p.ID,
			UserID:   p.UserID,
			Username: p.Username,
			Color:    p.Color,
		})
	}
	return seats
}

// PlayerIDs returns the IDs of the lobby roster in join order
func (l *Lobby) PlayerIDs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids := make([]string, 0, len(l.Players))
	for _, p := range l.Players {
		ids = append(ids, p.ID)
	}
	return ids
}

// AddMessage appends a chat message from a lobby player
func (l *Lobby) AddMessage(playerID, content string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	player := l.playerLocked(playerID)
	if player == nil {
		return
	}

	l.Messages = append(l.Messages, Message{
		ID:        uuid.New().String(),
		PlayerID:  playerID,
		Username:  player.Username,
		Content:   content,
		CreatedAt: time.Now(),
	})
	l.UpdatedAt = time.Now()
}

// addSystemMessageLocked appends a system message (lock already held)
func (l *Lobby) addSystemMessageLocked(content string) {
	l.Messages = append(l.Messages, Message{
		ID:        uuid.New().String(),
		PlayerID:  "system",
		Username:  "System",
		Content:   content,
		CreatedAt: time.Now(),
	})
}

// freeColorLocked returns the first unassigned player color
func (l *Lobby) freeColorLocked() (game.Color, bool) {
	taken := make(map[game.Color]bool, len(l.Players))
	for _, p := range l.Players {
		taken[p.Color] = true
	}
	for _, c := range game.Colors() {
		if !taken[c] {
			return c, true
		}
	}
	return "", false
}

// Snapshot returns a JSON-safe copy of the lobby for broadcasting
func (l *Lobby) Snapshot() map[string]interface{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	players := make([]map[string]interface{}, 0, len(l.Players))
	for _, p := range l.Players {
		players = append(players, map[string]interface{}{
			"id":        p.ID,
			"username":  p.Username,
			"color":     p.Color,
			"is_ready":  p.IsReady,
			"is_host":   p.IsHost,
			"joined_at": p.JoinedAt,
		})
	}

	return map[string]interface{}{
		"code":        l.Code,
		"host_id":     l.HostID,
		"status":      l.Status,
		"players":     players,
		"messages":    l.Messages,
		"max_players": l.MaxPlayers,
		"created_at":  l.CreatedAt,
		"updated_at":  l.UpdatedAt,
	}
}

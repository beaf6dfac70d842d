package models

import (
	crand "crypto/rand"
	"fmt"
	"sync"

	"hextrade/pkg/logger"
)

// codeAlphabet excludes the visually ambiguous characters I, O, 0 and 1
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// codeLength is the length of a lobby join code
const codeLength = 6

// LobbyManager manages all active lobbies, addressed by join code
type LobbyManager struct {
	lobbies map[string]*Lobby // code -> lobby
	players map[string]string // playerID -> code
	mu      sync.RWMutex
	logger  *logger.ColoredLogger
}

// NewLobbyManager creates a new lobby manager
func NewLobbyManager() *LobbyManager {
	return &LobbyManager{
		lobbies: make(map[string]*Lobby),
		players: make(map[string]string),
		logger:  logger.LobbyLogger,
	}
}

// CreateLobby creates a lobby with a fresh join code and the given host
func (lm *LobbyManager) CreateLobby(host *LobbyPlayer, maxPlayers int) (*Lobby, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	code, err := lm.newCodeLocked()
	if err != nil {
		return nil, err
	}

	lobby := NewLobby(code, host, maxPlayers)
	lm.lobbies[code] = lobby
	lm.players[host.ID] = code

	lm.logger.Info("Created lobby %s with host %s", code, host.Username)
	return lobby, nil
}

// GetLobby retrieves a lobby by code
func (lm *LobbyManager) GetLobby(code string) (*Lobby, error) {
	lm.mu.RLock()
	defer lm.mu.RUnlock()

	lobby, exists := lm.lobbies[code]
	if !exists {
		return nil, fmt.Errorf("lobby not found: %s", code)
	}
	return lobby, nil
}

// LobbyForPlayer finds the lobby containing a player, or nil
func (lm *LobbyManager) LobbyForPlayer(playerID string) *Lobby {
	lm.mu.RLock()
	defer lm.mu.RUnlock()

	code, ok := lm.players[playerID]
	if !ok {
		return nil
	}
	return lm.lobbies[code]
}

// TrackPlayer records a player's lobby membership for routing
func (lm *LobbyManager) TrackPlayer(playerID, code string) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	lm.players[playerID] = code
}

// UntrackPlayer removes a player's lobby route
func (lm *LobbyManager) UntrackPlayer(playerID string) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	delete(lm.players, playerID)
}

// DeleteLobby removes a lobby and all player routes into it
func (lm *LobbyManager) DeleteLobby(code string) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if _, exists := lm.lobbies[code]; !exists {
		return
	}
	delete(lm.lobbies, code)
	for playerID, playerCode := range lm.players {
		if playerCode == code {
			delete(lm.players, playerID)
		}
	}
	lm.logger.Info("Deleted lobby %s", code)
}

// newCodeLocked generates an unused join code from the unambiguous alphabet
func (lm *LobbyManager) newCodeLocked() (string, error) {
	buf := make([]byte, codeLength)
	for attempt := 0; attempt < 100; attempt++ {
		if _, err := crand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to generate lobby code: %w", err)
		}
		code := make([]byte, codeLength)
		for i, b := range buf {
			code[i] = codeAlphabet[int(b)%len(codeAlphabet)]
		}
		if _, taken := lm.lobbies[string(code)]; !taken {
			return string(code), nil
		}
	}
	return "", fmt.Errorf("could not find a free lobby code")
}

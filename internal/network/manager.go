package network

import (
	"sync"

	"hextrade/internal/database"
	"hextrade/internal/game"
	"hextrade/pkg/config"
	"hextrade/pkg/logger"
)

// GameManager is the registry of running games: one actor per game code,
// plus the player-to-game routing table.
type GameManager struct {
	games   map[string]*GameActor // code -> actor
	players map[string]string     // playerID -> code
	mutex   sync.RWMutex

	sessions *SessionManager
	store    database.GameStore
	cfg      config.GameConfig
	logger   *logger.ColoredLogger
}

// NewGameManager creates an empty game registry
func NewGameManager(sessions *SessionManager, store database.GameStore, cfg config.GameConfig) *GameManager {
	return &GameManager{
		games:    make(map[string]*GameActor),
		players:  make(map[string]string),
		sessions: sessions,
		store:    store,
		cfg:      cfg,
		logger:   logger.GameLogger,
	}
}

// CreateGame builds a game for the given seats, spins up its actor and
// subscribes every seat. Each game gets its own securely seeded RNG so dice,
// draws and steals are replayable per game.
func (gm *GameManager) CreateGame(code string, seats []game.Seat) (*GameActor, error) {
	rng, seed := game.NewSeededRNG()
	state, err := game.NewGame(code, seats, rng)
	if err != nil {
		return nil, err
	}

	actor := NewGameActor(state, gm.sessions, gm.store, gm.cfg, gm.RemoveGame)

	gm.mutex.Lock()
	gm.games[code] = actor
	for _, seat := range seats {
		gm.players[seat.PlayerID] = code
	}
	gm.mutex.Unlock()

	gm.logger.Info("Game %s created with %d players (seed %d)", code, len(seats), seed)
	if !state.Board.Balanced {
		gm.logger.Warn("Game %s: board keeps adjacent 6/8 tokens after the reshuffle limit", code)
	}

	for _, seat := range seats {
		actor.Subscribe(seat.PlayerID)
	}
	return actor, nil
}

// ActorForCode returns the actor for a game code, or nil
func (gm *GameManager) ActorForCode(code string) *GameActor {
	gm.mutex.RLock()
	defer gm.mutex.RUnlock()
	return gm.games[code]
}

// ActorForPlayer routes a player to their game's actor, or nil
func (gm *GameManager) ActorForPlayer(playerID string) *GameActor {
	gm.mutex.RLock()
	defer gm.mutex.RUnlock()
	code, ok := gm.players[playerID]
	if !ok {
		return nil
	}
	return gm.games[code]
}

// RemoveGame drops a game and its player routes
func (gm *GameManager) RemoveGame(code string) {
	gm.mutex.Lock()
	actor := gm.games[code]
	delete(gm.games, code)
	for playerID, playerCode := range gm.players {
		if playerCode == code {
			delete(gm.players, playerID)
		}
	}
	gm.mutex.Unlock()

	if actor != nil {
		actor.Stop()
	}
}

// GameCount returns the number of live games
func (gm *GameManager) GameCount() int {
	gm.mutex.RLock()
	defer gm.mutex.RUnlock()
	return len(gm.games)
}

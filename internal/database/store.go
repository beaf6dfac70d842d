package database

import (
	"hextrade/internal/game"
)

// GameStore persists finished games. SaveFinished is called exactly once
// when a game transitions to finished; LoadGame exists for crash recovery
// and is optional for operation.
type GameStore interface {
	SaveFinished(state *game.Game) error
	LoadGame(code string) (*game.Game, error)
}

// NopStore is the store used when persistence is not configured
type NopStore struct{}

// SaveFinished discards the game
func (NopStore) SaveFinished(state *game.Game) error {
	return nil
}

// LoadGame always reports no game
func (NopStore) LoadGame(code string) (*game.Game, error) {
	return nil, nil
}

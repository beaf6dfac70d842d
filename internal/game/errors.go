package game

import (
	"fmt"

	"hextrade/pkg/protocol"
)

// GameError is a rules or state-machine failure. The command is rejected,
// state is untouched and only the submitter is notified.
type GameError struct {
	Code    string
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// newError creates a GameError with a formatted message
func newError(code, format string, args ...interface{}) *GameError {
	return &GameError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func errNotInGame(playerID string) *GameError {
	return newError(protocol.ErrNotInGame, "player %s is not in this game", playerID)
}

func errNotYourTurn() *GameError {
	return newError(protocol.ErrNotYourTurn, "it is not your turn")
}

func errWrongPhase(phase Phase) *GameError {
	return newError(protocol.ErrWrongPhase, "action not allowed in phase %s", phase)
}

func errWrongTurnPhase(tp TurnPhase) *GameError {
	return newError(protocol.ErrWrongTurnPhase, "action not allowed in turn phase %s", tp)
}

func errIllegalPlacement(format string, args ...interface{}) *GameError {
	return newError(protocol.ErrIllegalPlacement, format, args...)
}

func errCannotAfford(what string) *GameError {
	return newError(protocol.ErrCannotAfford, "cannot afford %s", what)
}

func errPieceExhausted(piece string) *GameError {
	return newError(protocol.ErrPieceExhausted, "no %s pieces left", piece)
}

func errInvalidPayload(format string, args ...interface{}) *GameError {
	return newError(protocol.ErrInvalidPayload, format, args...)
}

func errInvalidID(id string) *GameError {
	return newError(protocol.ErrInvalidID, "invalid id %q", id)
}

package game

import (
	"hextrade/pkg/protocol"
)

// Event is a game occurrence to deliver to subscribers. A nil To list means
// broadcast to every subscriber; otherwise only the listed players receive it.
type Event struct {
	Type    protocol.MessageType
	Payload interface{}
	To      []string
}

// broadcast builds an event for all subscribers
func broadcast(msgType protocol.MessageType, payload interface{}) Event {
	return Event{Type: msgType, Payload: payload}
}

// to builds an event delivered only to specific players
func to(players []string, msgType protocol.MessageType, payload interface{}) Event {
	return Event{Type: msgType, Payload: payload, To: players}
}

// phaseChanged announces the current phase and turn phase
func (g *Game) phaseChanged() Event {
	return broadcast(protocol.MsgPhaseChanged, protocol.PhaseChangedPayload{
		Phase:     string(g.Phase),
		TurnPhase: string(g.TurnPhase),
	})
}

// turnChanged announces the active player
func (g *Game) turnChanged() Event {
	return broadcast(protocol.MsgTurnChanged, protocol.TurnChangedPayload{
		CurrentPlayerID: g.CurrentPlayerID(),
		TurnNumber:      g.TurnNumber,
	})
}

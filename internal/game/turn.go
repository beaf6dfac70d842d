package game

import (
	"time"

	"hextrade/pkg/protocol"
)

// EndTurn passes play to the next player in turn order. Any open trade by
// the outgoing player dies with the turn; the turn number increases when the
// order wraps back to the first player.
func (g *Game) EndTurn(playerID string) ([]Event, error) {
	if _, gerr := g.requireCurrent(playerID); gerr != nil {
		return nil, gerr
	}
	if err := g.requirePhase(PhasePlaying); err != nil {
		return nil, err
	}
	if err := g.requireTurnPhase(TurnMain); err != nil {
		return nil, err
	}

	var events []Event
	if g.ActiveTrade != nil {
		info := tradeInfo(g.ActiveTrade)
		g.ActiveTrade = nil
		events = append(events, broadcast(protocol.MsgTradeCancelled, info))
	}

	g.DevCardPlayed = false
	g.RoadBuildingRoadsLeft = 0
	g.LastDiceRoll = nil
	g.TurnPhase = TurnPreRoll

	g.CurrentPlayerIndex = (g.CurrentPlayerIndex + 1) % len(g.TurnOrder)
	if g.CurrentPlayerIndex == 0 {
		g.TurnNumber++
	}
	g.UpdatedAt = time.Now()

	return append(events, g.turnChanged(), g.phaseChanged()), nil
}

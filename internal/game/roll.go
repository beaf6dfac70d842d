package game

import (
	"time"

	"hextrade/internal/board"
	"hextrade/pkg/protocol"
)

// discardThreshold is the hand size above which a seven forces a discard
const discardThreshold = 7

// RollDice rolls the dice for the active player's turn. A non-seven
// distributes production; a seven starts the robber sequence, beginning with
// the discard fence if any hand is over the threshold.
func (g *Game) RollDice(playerID string) ([]Event, error) {
	p, gerr := g.requireCurrent(playerID)
	if gerr != nil {
		return nil, gerr
	}
	if err := g.requirePhase(PhasePlaying); err != nil {
		return nil, err
	}
	if err := g.requireTurnPhase(TurnPreRoll); err != nil {
		return nil, err
	}

	roll := &DiceRoll{Die1: rollDie(g.rng), Die2: rollDie(g.rng)}
	g.LastDiceRoll = roll
	g.UpdatedAt = time.Now()

	events := []Event{broadcast(protocol.MsgDiceRolled, protocol.DiceRolledPayload{
		PlayerID: p.ID,
		Die1:     roll.Die1,
		Die2:     roll.Die2,
		Total:    roll.Total(),
	})}

	if roll.Total() == 7 {
		return append(events, g.activateRobber()...), nil
	}

	granted := g.distributeProduction(roll.Total())
	g.TurnPhase = TurnMain

	events = append(events, broadcast(protocol.MsgResourcesGranted, protocol.ResourcesGrantedPayload{
		Roll:    roll.Total(),
		Granted: granted,
	}))
	events = append(events, g.phaseChanged())
	return events, nil
}

// distributeProduction pays out production for every non-robbed tile with
// the rolled token. When the bank cannot pay every recipient of a resource
// in full, nobody receives that resource unless there is a single recipient,
// who gets whatever is left.
func (g *Game) distributeProduction(roll int) map[string]protocol.ResourceCount {
	// First pass: what every building would earn.
	owed := make(map[string]protocol.ResourceCount)
	for _, hexID := range g.Board.TileOrder {
		tile := g.Board.Tile(hexID)
		if tile.NumberToken != roll || hexID == g.Board.RobberHex {
			continue
		}
		res, ok := board.TerrainResource(tile.Terrain)
		if !ok {
			continue
		}
		for _, vertexID := range g.Board.HexVertexIDs(hexID) {
			building := g.Buildings[vertexID]
			if building == nil {
				continue
			}
			amount := 1
			if building.Type == BuildingCity {
				amount = 2
			}
			if owed[building.PlayerID] == nil {
				owed[building.PlayerID] = protocol.NewResourceCount()
			}
			owed[building.PlayerID][res] += amount
		}
	}

	// Second pass: apply the bank-scarcity rule per resource.
	granted := make(map[string]protocol.ResourceCount)
	for _, res := range protocol.Resources() {
		need := 0
		recipients := make([]string, 0, len(owed))
		for playerID, counts := range owed {
			if counts[res] > 0 {
				need += counts[res]
				recipients = append(recipients, playerID)
			}
		}
		if need == 0 {
			continue
		}

		if need > g.Bank[res] {
			if len(recipients) > 1 {
				// The bank cannot pay everyone in full: nobody is paid.
				continue
			}
			// A single recipient takes whatever the bank has left.
			owed[recipients[0]][res] = g.Bank[res]
		}

		for _, playerID := range recipients {
			amount := owed[playerID][res]
			if amount == 0 {
				continue
			}
			g.Bank[res] -= amount
			g.Players[playerID].Resources[res] += amount
			if granted[playerID] == nil {
				granted[playerID] = protocol.NewResourceCount()
			}
			granted[playerID][res] = amount
		}
	}

	return granted
}

// activateRobber starts the robber sequence. Every hand over the threshold
// must discard half (rounded down) before the robber moves.
func (g *Game) activateRobber() []Event {
	events := []Event{broadcast(protocol.MsgRobberActivated, nil)}

	pending := make(map[string]int)
	for _, playerID := range g.TurnOrder {
		hand := g.Players[playerID].Resources.Total()
		if hand > discardThreshold {
			pending[playerID] = hand / 2
		}
	}

	if len(pending) > 0 {
		g.PendingDiscards = pending
		g.TurnPhase = TurnDiscard
		events = append(events, broadcast(protocol.MsgDiscardRequired, protocol.DiscardRequiredPayload{
			Pending: pending,
		}))
	} else {
		g.TurnPhase = TurnRobberMove
	}

	return append(events, g.phaseChanged())
}

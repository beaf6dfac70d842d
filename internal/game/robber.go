package game

import (
	"sort"
	"time"

	"hextrade/pkg/protocol"
)

// Discard surrenders cards at the discard fence. The player must give up
// exactly the pending amount; discarded cards return to the bank. Players
// may discard in any order, and the robber only moves once every pending
// entry is satisfied.
func (g *Game) Discard(playerID string, resources protocol.ResourceCount) ([]Event, error) {
	p, gerr := g.player(playerID)
	if gerr != nil {
		return nil, gerr
	}
	if err := g.requireTurnPhase(TurnDiscard); err != nil {
		return nil, err
	}

	required, ok := g.PendingDiscards[playerID]
	if !ok {
		return nil, errInvalidPayload("you have nothing to discard")
	}
	if !resources.Valid() {
		return nil, errInvalidPayload("invalid resource counts")
	}
	if resources.Total() != required {
		return nil, errInvalidPayload("must discard exactly %d cards", required)
	}
	if !p.Resources.Covers(resources) {
		return nil, errCannotAfford("that discard")
	}

	p.Resources.Sub(resources)
	g.Bank.Add(resources)
	delete(g.PendingDiscards, playerID)
	g.UpdatedAt = time.Now()

	events := []Event{broadcast(protocol.MsgPlayerDiscarded, protocol.PlayerDiscardedPayload{
		PlayerID: playerID,
		Count:    required,
	})}

	// The fence lifts once everyone has discarded.
	if len(g.PendingDiscards) == 0 {
		g.PendingDiscards = nil
		g.TurnPhase = TurnRobberMove
		events = append(events, g.phaseChanged())
	}

	return events, nil
}

// MoveRobber moves the robber to any land tile other than its current hex,
// then either opens the steal step or skips it when no opponent has a
// building there.
func (g *Game) MoveRobber(playerID, hexID string) ([]Event, error) {
	p, gerr := g.requireCurrent(playerID)
	if gerr != nil {
		return nil, gerr
	}
	if err := g.requireTurnPhase(TurnRobberMove); err != nil {
		return nil, err
	}

	if g.Board.Tile(hexID) == nil {
		return nil, errInvalidID(hexID)
	}
	if hexID == g.Board.RobberHex {
		return nil, errIllegalPlacement("robber is already on %s", hexID)
	}

	g.Board.RobberHex = hexID
	g.UpdatedAt = time.Now()

	// Eligible victims: other players with a building on the robbed hex.
	victims := make(map[string]bool)
	for _, vertexID := range g.Board.HexVertexIDs(hexID) {
		owner := g.buildingOwner(vertexID)
		if owner != "" && owner != p.ID {
			victims[owner] = true
		}
	}
	g.StealCandidates = g.StealCandidates[:0]
	for id := range victims {
		g.StealCandidates = append(g.StealCandidates, id)
	}
	sort.Strings(g.StealCandidates)

	events := []Event{broadcast(protocol.MsgRobberMoved, protocol.RobberMovedPayload{
		PlayerID: p.ID,
		HexID:    hexID,
		Victims:  append([]string(nil), g.StealCandidates...),
	})}

	if len(g.StealCandidates) == 0 {
		events = append(events, g.finishRobberSequence()...)
	} else {
		g.TurnPhase = TurnRobberSteal
		events = append(events, g.phaseChanged())
	}

	return events, nil
}

// Steal takes one random card from the chosen victim. The stolen type is
// revealed only to the thief and the victim; everyone else learns that a
// steal happened.
func (g *Game) Steal(playerID, victimID string) ([]Event, error) {
	p, gerr := g.requireCurrent(playerID)
	if gerr != nil {
		return nil, gerr
	}
	if err := g.requireTurnPhase(TurnRobberSteal); err != nil {
		return nil, err
	}

	eligible := false
	for _, id := range g.StealCandidates {
		if id == victimID {
			eligible = true
			break
		}
	}
	if !eligible {
		return nil, errInvalidPayload("%s is not an eligible victim", victimID)
	}

	victim := g.Players[victimID]
	var events []Event

	if victim.Resources.Total() > 0 {
		stolen := g.randomCard(victim.Resources)
		victim.Resources[stolen]--
		p.Resources[stolen]++

		events = append(events,
			broadcast(protocol.MsgResourceStolen, protocol.StolenPayload{
				ThiefID:  p.ID,
				VictimID: victimID,
			}),
			to([]string{p.ID, victimID}, protocol.MsgResourceStolen, protocol.StolenPayload{
				ThiefID:  p.ID,
				VictimID: victimID,
				Resource: stolen,
			}),
		)
	}

	g.UpdatedAt = time.Now()
	return append(events, g.finishRobberSequence()...), nil
}

// finishRobberSequence returns the turn to its resting phase after the
// robber settles: pre_roll when a knight preceded the roll, main otherwise.
func (g *Game) finishRobberSequence() []Event {
	g.StealCandidates = nil
	if g.ReturnToPreRoll {
		g.ReturnToPreRoll = false
		g.TurnPhase = TurnPreRoll
	} else {
		g.TurnPhase = TurnMain
	}
	return []Event{g.phaseChanged()}
}

// randomCard picks a uniform random card from a hand, weighted by counts
func (g *Game) randomCard(hand protocol.ResourceCount) protocol.Resource {
	idx := g.rng.Intn(hand.Total())
	for _, res := range protocol.Resources() {
		if idx < hand[res] {
			return res
		}
		idx -= hand[res]
	}
	// Unreachable with a non-empty hand.
	return protocol.Brick
}

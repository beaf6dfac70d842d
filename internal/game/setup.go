package game

import (
	"sort"
	"time"

	"hextrade/internal/board"
	"hextrade/pkg/protocol"
)

// RollForOrder rolls one die pair for turn-order seeding. Players roll in
// seating order; once everyone has rolled, the turn order is fixed as the
// descending-total order with ties broken by seating position, and the game
// moves to the first setup round.
func (g *Game) RollForOrder(playerID string) ([]Event, error) {
	if err := g.requirePhase(PhaseRollForOrder); err != nil {
		return nil, err
	}
	if _, err := g.player(playerID); err != nil {
		return nil, err
	}
	if g.nextOrderRoller() != playerID {
		return nil, errNotYourTurn()
	}

	roll := &DiceRoll{Die1: rollDie(g.rng), Die2: rollDie(g.rng)}
	g.OrderRolls[playerID] = roll
	g.UpdatedAt = time.Now()

	payload := protocol.OrderRollPayload{
		PlayerID: playerID,
		Die1:     roll.Die1,
		Die2:     roll.Die2,
		Total:    roll.Total(),
	}

	if len(g.OrderRolls) < len(g.Players) {
		return []Event{broadcast(protocol.MsgOrderRollResult, payload)}, nil
	}

	// Everyone has rolled: fix the order and enter setup.
	g.TurnOrder = g.computeTurnOrder()
	g.CurrentPlayerIndex = 0
	g.Phase = PhaseSetupFirst
	payload.TurnOrder = g.TurnOrder

	return []Event{
		broadcast(protocol.MsgOrderRollResult, payload),
		g.phaseChanged(),
		g.turnChanged(),
	}, nil
}

// nextOrderRoller returns the first seated player who has not rolled yet
func (g *Game) nextOrderRoller() string {
	for _, id := range g.SeatingOrder {
		if g.OrderRolls[id] == nil {
			return id
		}
	}
	return ""
}

// computeTurnOrder sorts players by descending roll total, seating order on ties
func (g *Game) computeTurnOrder() []string {
	seat := make(map[string]int, len(g.SeatingOrder))
	for i, id := range g.SeatingOrder {
		seat[id] = i
	}

	order := make([]string, len(g.SeatingOrder))
	copy(order, g.SeatingOrder)
	sort.SliceStable(order, func(i, j int) bool {
		ti, tj := g.OrderRolls[order[i]].Total(), g.OrderRolls[order[j]].Total()
		if ti != tj {
			return ti > tj
		}
		return seat[order[i]] < seat[order[j]]
	})
	return order
}

// inSetup reports whether the game is in one of the two setup rounds
func (g *Game) inSetup() bool {
	return g.Phase == PhaseSetupFirst || g.Phase == PhaseSetupSecond
}

// placeSetupSettlement handles a settlement placement during setup: free of
// cost and connectivity, but the distance rule still applies. During the
// second round the player immediately receives one of each resource adjacent
// to the new settlement.
func (g *Game) placeSetupSettlement(p *Player, vertexID string) ([]Event, error) {
	if g.SetupSettlement != "" {
		return nil, errIllegalPlacement("place the road for your settlement first")
	}

	vertex := g.Board.Vertex(vertexID)
	if vertex == nil {
		return nil, errInvalidID(vertexID)
	}
	if g.Buildings[vertexID] != nil {
		return nil, errIllegalPlacement("vertex %s is occupied", vertexID)
	}
	if err := g.checkDistanceRule(vertex); err != nil {
		return nil, err
	}

	g.Buildings[vertexID] = &Building{VertexID: vertexID, PlayerID: p.ID, Type: BuildingSettlement}
	p.Settlements = append(p.Settlements, vertexID)
	p.VictoryPoints++
	g.SetupSettlement = vertexID
	g.UpdatedAt = time.Now()

	events := []Event{broadcast(protocol.MsgSettlementPlaced, protocol.BuildingPlacedPayload{
		PlayerID: p.ID,
		VertexID: vertexID,
	})}

	// Initial production: one of each resource adjacent to the second-round
	// settlement.
	if g.Phase == PhaseSetupSecond {
		granted := protocol.NewResourceCount()
		for _, hexID := range vertex.HexIDs {
			res, ok := board.TerrainResource(g.Board.Tile(hexID).Terrain)
			if !ok {
				continue
			}
			if g.Bank[res] > 0 {
				g.Bank[res]--
				p.Resources[res]++
				granted[res]++
			}
		}
		if granted.Total() > 0 {
			events = append(events, broadcast(protocol.MsgResourcesGranted, protocol.ResourcesGrantedPayload{
				Granted: map[string]protocol.ResourceCount{p.ID: granted},
			}))
		}
	}

	return events, nil
}

// placeSetupRoad handles a road placement during setup: free, but it must
// touch the settlement placed in the same setup step.
func (g *Game) placeSetupRoad(p *Player, edgeID string) ([]Event, error) {
	if g.SetupSettlement == "" {
		return nil, errIllegalPlacement("place your settlement first")
	}

	edge := g.Board.Edge(edgeID)
	if edge == nil {
		return nil, errInvalidID(edgeID)
	}
	if g.Roads[edgeID] != "" {
		return nil, errIllegalPlacement("edge %s is occupied", edgeID)
	}
	if edge.VertexIDs[0] != g.SetupSettlement && edge.VertexIDs[1] != g.SetupSettlement {
		return nil, errIllegalPlacement("setup road must touch the settlement you just placed")
	}

	g.Roads[edgeID] = p.ID
	p.Roads = append(p.Roads, edgeID)
	g.SetupSettlement = ""
	g.UpdatedAt = time.Now()

	events := []Event{broadcast(protocol.MsgRoadPlaced, protocol.RoadPlacedPayload{
		PlayerID: p.ID,
		EdgeID:   edgeID,
	})}

	return append(events, g.advanceSetup()...), nil
}

// advanceSetup moves to the next setup placement: forward through the turn
// order in the first round, reverse in the second, then into normal play.
func (g *Game) advanceSetup() []Event {
	switch g.Phase {
	case PhaseSetupFirst:
		if g.CurrentPlayerIndex < len(g.TurnOrder)-1 {
			g.CurrentPlayerIndex++
			return []Event{g.turnChanged()}
		}
		// Last player places again first in the reverse round.
		g.Phase = PhaseSetupSecond
		return []Event{g.phaseChanged(), g.turnChanged()}

	case PhaseSetupSecond:
		if g.CurrentPlayerIndex > 0 {
			g.CurrentPlayerIndex--
			return []Event{g.turnChanged()}
		}
		// Setup complete: normal play begins with the first player.
		g.Phase = PhasePlaying
		g.Status = StatusPlaying
		g.TurnPhase = TurnPreRoll
		g.TurnNumber = 1
		g.CurrentPlayerIndex = 0
		return []Event{g.phaseChanged(), g.turnChanged()}
	}
	return nil
}

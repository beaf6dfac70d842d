package game

import (
	"time"

	"hextrade/internal/board"
	"hextrade/pkg/protocol"
)

// Building costs
var (
	costSettlement = protocol.ResourceCount{protocol.Brick: 1, protocol.Lumber: 1, protocol.Grain: 1, protocol.Wool: 1}
	costCity       = protocol.ResourceCount{protocol.Ore: 3, protocol.Grain: 2}
	costRoad       = protocol.ResourceCount{protocol.Brick: 1, protocol.Lumber: 1}
	costDevCard    = protocol.ResourceCount{protocol.Ore: 1, protocol.Grain: 1, protocol.Wool: 1}
)

// pay moves a cost from the player's hand to the bank
func (g *Game) pay(p *Player, cost protocol.ResourceCount) {
	p.Resources.Sub(cost)
	g.Bank.Add(cost)
}

// PlaceSettlement builds a settlement at a vertex. During setup it is free
// and needs no road; in normal play it costs resources and must connect to
// one of the player's roads. The distance rule always applies.
func (g *Game) PlaceSettlement(playerID, vertexID string) ([]Event, error) {
	p, gerr := g.requireCurrent(playerID)
	if gerr != nil {
		return nil, gerr
	}

	if g.inSetup() {
		return g.placeSetupSettlement(p, vertexID)
	}

	if err := g.requirePhase(PhasePlaying); err != nil {
		return nil, err
	}
	if err := g.requireTurnPhase(TurnMain); err != nil {
		return nil, err
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
	if !g.hasRoadAt(p.ID, vertex) {
		return nil, errIllegalPlacement("settlement must connect to one of your roads")
	}
	if len(p.Settlements) >= MaxSettlements {
		return nil, errPieceExhausted("settlement")
	}
	if !p.Resources.Covers(costSettlement) {
		return nil, errCannotAfford("a settlement")
	}

	g.pay(p, costSettlement)
	g.Buildings[vertexID] = &Building{VertexID: vertexID, PlayerID: p.ID, Type: BuildingSettlement}
	p.Settlements = append(p.Settlements, vertexID)
	p.VictoryPoints++
	g.UpdatedAt = time.Now()

	events := []Event{broadcast(protocol.MsgSettlementPlaced, protocol.BuildingPlacedPayload{
		PlayerID: p.ID,
		VertexID: vertexID,
	})}

	// A new settlement can cut an opponent's road chain.
	events = append(events, g.recomputeLongestRoad()...)
	events = append(events, g.checkWinner()...)
	return events, nil
}

// PlaceCity upgrades the player's settlement at a vertex to a city, freeing
// the settlement piece.
func (g *Game) PlaceCity(playerID, vertexID string) ([]Event, error) {
	p, gerr := g.requireCurrent(playerID)
	if gerr != nil {
		return nil, gerr
	}
	if err := g.requirePhase(PhasePlaying); err != nil {
		return nil, err
	}
	if err := g.requireTurnPhase(TurnMain); err != nil {
		return nil, err
	}

	building := g.Buildings[vertexID]
	if building == nil || building.PlayerID != p.ID || building.Type != BuildingSettlement {
		return nil, errIllegalPlacement("you need a settlement at %s to build a city", vertexID)
	}
	if len(p.Cities) >= MaxCities {
		return nil, errPieceExhausted("city")
	}
	if !p.Resources.Covers(costCity) {
		return nil, errCannotAfford("a city")
	}

	g.pay(p, costCity)
	building.Type = BuildingCity
	p.Settlements = removeString(p.Settlements, vertexID)
	p.Cities = append(p.Cities, vertexID)
	p.VictoryPoints++
	g.UpdatedAt = time.Now()

	events := []Event{broadcast(protocol.MsgCityPlaced, protocol.BuildingPlacedPayload{
		PlayerID: p.ID,
		VertexID: vertexID,
	})}
	return append(events, g.checkWinner()...), nil
}

// PlaceRoad builds a road at an edge. During setup it must touch the
// just-placed settlement; during the road-building card phase it is free;
// otherwise it costs resources. The edge must connect to the player's
// network without passing through an opponent's building.
func (g *Game) PlaceRoad(playerID, edgeID string) ([]Event, error) {
	p, gerr := g.requireCurrent(playerID)
	if gerr != nil {
		return nil, gerr
	}

	if g.inSetup() {
		return g.placeSetupRoad(p, edgeID)
	}

	if err := g.requirePhase(PhasePlaying); err != nil {
		return nil, err
	}
	if err := g.requireTurnPhase(TurnMain, TurnRoadBuilding); err != nil {
		return nil, err
	}
	free := g.TurnPhase == TurnRoadBuilding

	edge := g.Board.Edge(edgeID)
	if edge == nil {
		return nil, errInvalidID(edgeID)
	}
	if g.Roads[edgeID] != "" {
		return nil, errIllegalPlacement("edge %s is occupied", edgeID)
	}
	if len(p.Roads) >= MaxRoads {
		return nil, errPieceExhausted("road")
	}
	if !g.roadConnects(p.ID, edge) {
		return nil, errIllegalPlacement("road must connect to your network")
	}
	if !free {
		if !p.Resources.Covers(costRoad) {
			return nil, errCannotAfford("a road")
		}
		g.pay(p, costRoad)
	}

	g.Roads[edgeID] = p.ID
	p.Roads = append(p.Roads, edgeID)
	g.UpdatedAt = time.Now()

	events := []Event{broadcast(protocol.MsgRoadPlaced, protocol.RoadPlacedPayload{
		PlayerID: p.ID,
		EdgeID:   edgeID,
	})}

	if free {
		g.RoadBuildingRoadsLeft--
		// Revert early when the allowance is used up or no legal edge remains.
		if g.RoadBuildingRoadsLeft <= 0 || !g.hasLegalRoadEdge(p) {
			g.RoadBuildingRoadsLeft = 0
			g.TurnPhase = TurnMain
			events = append(events, g.phaseChanged())
		}
	}

	events = append(events, g.recomputeLongestRoad()...)
	events = append(events, g.checkWinner()...)
	return events, nil
}

// checkDistanceRule rejects a settlement if any edge-adjacent vertex holds a
// building.
func (g *Game) checkDistanceRule(vertex *board.Vertex) *GameError {
	for _, adj := range vertex.AdjacentVertexIDs {
		if g.Buildings[adj] != nil {
			return errIllegalPlacement("too close to the building at %s", adj)
		}
	}
	return nil
}

// hasRoadAt reports whether the player owns a road incident to the vertex
func (g *Game) hasRoadAt(playerID string, vertex *board.Vertex) bool {
	for _, edgeID := range vertex.EdgeIDs {
		if g.Roads[edgeID] == playerID {
			return true
		}
	}
	return false
}

// roadConnects reports whether a new road at the edge touches the player's
// network: one endpoint must hold the player's building, or carry one of the
// player's roads with no opponent building sitting on the shared vertex.
func (g *Game) roadConnects(playerID string, edge *board.Edge) bool {
	for _, vertexID := range edge.VertexIDs {
		owner := g.buildingOwner(vertexID)
		if owner == playerID {
			return true
		}
		if owner != "" {
			// An opponent's building blocks extension through this vertex.
			continue
		}
		vertex := g.Board.Vertex(vertexID)
		if vertex != nil && g.hasRoadAt(playerID, vertex) {
			return true
		}
	}
	return false
}

// hasLegalRoadEdge reports whether any unoccupied edge is a legal road
// placement for the player.
func (g *Game) hasLegalRoadEdge(p *Player) bool {
	if len(p.Roads) >= MaxRoads {
		return false
	}
	for edgeID, edge := range g.Board.Edges {
		if g.Roads[edgeID] == "" && g.roadConnects(p.ID, edge) {
			return true
		}
	}
	return false
}

func removeString(list []string, s string) []string {
	for i, item := range list {
		if item == s {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

package game

import (
	"hextrade/pkg/protocol"
)

// StatePayloadFor builds the state snapshot delivered to one viewer. Hands
// and development cards are expanded only for the viewing player; everyone
// else is reduced to card counts. An empty viewer ID yields the public view.
func (g *Game) StatePayloadFor(viewerID string) *protocol.GameStatePayload {
	payload := &protocol.GameStatePayload{
		GameID:            g.ID,
		Code:              g.Code,
		Status:            string(g.Status),
		Phase:             string(g.Phase),
		TurnPhase:         string(g.TurnPhase),
		Board:             g.boardInfo(),
		TurnOrder:         append([]string(nil), g.TurnOrder...),
		CurrentPlayerID:   g.CurrentPlayerID(),
		TurnNumber:        g.TurnNumber,
		Bank:              g.Bank.Clone(),
		DevCardDeckCount:  len(g.DevDeck),
		LongestRoadHolder: g.LongestRoadHolder,
		LongestRoadLength: g.LongestRoadLength,
		LargestArmyHolder: g.LargestArmyHolder,
		LargestArmySize:   g.LargestArmySize,
		WinnerID:          g.WinnerID,
		CreatedAt:         g.CreatedAt.Unix(),
	}

	if !g.FinishedAt.IsZero() {
		payload.FinishedAt = g.FinishedAt.Unix()
	}
	if g.LastDiceRoll != nil {
		payload.LastDiceRoll = &protocol.DiceRollInfo{
			Die1:  g.LastDiceRoll.Die1,
			Die2:  g.LastDiceRoll.Die2,
			Total: g.LastDiceRoll.Total(),
		}
	}
	if g.ActiveTrade != nil {
		payload.ActiveTrade = tradeInfo(g.ActiveTrade)
	}
	if len(g.PendingDiscards) > 0 {
		payload.PendingDiscards = make(map[string]int, len(g.PendingDiscards))
		for playerID, count := range g.PendingDiscards {
			payload.PendingDiscards[playerID] = count
		}
	}

	// Players in seating order for a stable listing.
	for _, playerID := range g.SeatingOrder {
		payload.Players = append(payload.Players, g.playerInfo(playerID, viewerID))
	}

	return payload
}

// boardInfo maps the board to its wire form
func (g *Game) boardInfo() protocol.BoardInfo {
	info := protocol.BoardInfo{RobberHex: g.Board.RobberHex}

	for _, hexID := range g.Board.TileOrder {
		tile := g.Board.Tile(hexID)
		info.Tiles = append(info.Tiles, protocol.TileInfo{
			ID:          tile.ID,
			Q:           tile.Coord.Q,
			R:           tile.Coord.R,
			Terrain:     string(tile.Terrain),
			NumberToken: tile.NumberToken,
		})
	}

	for _, port := range g.Board.Ports {
		info.Ports = append(info.Ports, protocol.PortInfo{
			ID:       port.ID,
			Type:     string(port.Type),
			Vertices: port.VertexIDs,
			Angle:    port.Angle,
		})
	}

	return info
}

// playerInfo maps one player to its wire form, expanding hidden information
// only for the viewer.
func (g *Game) playerInfo(playerID, viewerID string) protocol.PlayerInfo {
	p := g.Players[playerID]
	info := protocol.PlayerInfo{
		ID:                p.ID,
		Username:          p.Username,
		Color:             string(p.Color),
		ResourceCardCount: p.Resources.Total(),
		DevCardCount:      len(p.DevCards),
		Settlements:       append([]string(nil), p.Settlements...),
		Cities:            append([]string(nil), p.Cities...),
		Roads:             append([]string(nil), p.Roads...),
		KnightsPlayed:     p.KnightsPlayed,
		LongestRoadLength: p.LongestRoadLength,
		HasLongestRoad:    p.HasLongestRoad,
		HasLargestArmy:    p.HasLargestArmy,
		VictoryPoints:     p.VictoryPoints,
		IsConnected:       p.IsConnected,
	}

	if playerID == viewerID {
		info.Resources = p.Resources.Clone()
		for _, card := range p.DevCards {
			info.DevCards = append(info.DevCards, protocol.DevCardInfo{
				ID:              card.ID,
				Type:            string(card.Type),
				PurchasedOnTurn: card.PurchasedOnTurn,
				Played:          card.Played,
			})
		}
	}

	return info
}

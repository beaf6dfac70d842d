package game

import (
	"time"

	"hextrade/pkg/protocol"
)

// Achievement thresholds
const (
	MinLongestRoad = 5
	MinLargestArmy = 3
	AchievementVP  = 2
)

// recomputeLongestRoad refreshes every player's longest-road length and
// settles the award. The award only moves when a challenger strictly exceeds
// the incumbent; ties never transfer. An incumbent whose own chain falls
// below the minimum vacates the award, and it is re-granted only to an
// undisputed best chain.
func (g *Game) recomputeLongestRoad() []Event {
	for _, p := range g.Players {
		p.LongestRoadLength = g.longestRoadFor(p.ID)
	}

	holderID := g.LongestRoadHolder
	newHolderID := holderID

	if holderID != "" {
		holderLen := g.Players[holderID].LongestRoadLength
		if holderLen < MinLongestRoad {
			newHolderID = g.uniqueBestRoad("")
		} else if challenger := g.uniqueBestRoad(holderID); challenger != "" &&
			g.Players[challenger].LongestRoadLength > holderLen {
			newHolderID = challenger
		}
	} else {
		newHolderID = g.uniqueBestRoad("")
	}

	if newHolderID == holderID {
		if holderID != "" {
			g.LongestRoadLength = g.Players[holderID].LongestRoadLength
		}
		return nil
	}

	if holderID != "" {
		holder := g.Players[holderID]
		holder.HasLongestRoad = false
		holder.VictoryPoints -= AchievementVP
	}

	g.LongestRoadHolder = newHolderID
	g.LongestRoadLength = 0
	if newHolderID != "" {
		winner := g.Players[newHolderID]
		winner.HasLongestRoad = true
		winner.VictoryPoints += AchievementVP
		g.LongestRoadLength = winner.LongestRoadLength
	}
	g.UpdatedAt = time.Now()

	return []Event{broadcast(protocol.MsgLongestRoad, protocol.AchievementPayload{
		HolderID: newHolderID,
		Length:   g.LongestRoadLength,
	})}
}

// uniqueBestRoad returns the player with the single best qualifying road
// chain, ignoring exceptFor. Ties or no qualifier yield empty.
func (g *Game) uniqueBestRoad(exceptFor string) string {
	bestID := ""
	bestLen := MinLongestRoad - 1
	tied := false
	for _, playerID := range g.TurnOrder {
		if playerID == exceptFor {
			continue
		}
		length := g.Players[playerID].LongestRoadLength
		if length > bestLen {
			bestID, bestLen, tied = playerID, length, false
		} else if length == bestLen && bestID != "" {
			tied = true
		}
	}
	if tied {
		return ""
	}
	return bestID
}

// recomputeLargestArmy settles the largest-army award after a knight play.
// Knights only accumulate, so the award moves only when a player strictly
// exceeds the incumbent's count, at three knights minimum.
func (g *Game) recomputeLargestArmy() []Event {
	holderID := g.LargestArmyHolder
	newHolderID := holderID

	for _, playerID := range g.TurnOrder {
		p := g.Players[playerID]
		if p.KnightsPlayed < MinLargestArmy {
			continue
		}
		if newHolderID == "" || p.KnightsPlayed > g.Players[newHolderID].KnightsPlayed {
			newHolderID = playerID
		}
	}

	if newHolderID == holderID {
		if holderID != "" {
			g.LargestArmySize = g.Players[holderID].KnightsPlayed
		}
		return nil
	}

	if holderID != "" {
		holder := g.Players[holderID]
		holder.HasLargestArmy = false
		holder.VictoryPoints -= AchievementVP
	}

	winner := g.Players[newHolderID]
	winner.HasLargestArmy = true
	winner.VictoryPoints += AchievementVP
	g.LargestArmyHolder = newHolderID
	g.LargestArmySize = winner.KnightsPlayed
	g.UpdatedAt = time.Now()

	return []Event{broadcast(protocol.MsgLargestArmy, protocol.AchievementPayload{
		HolderID: newHolderID,
		Size:     winner.KnightsPlayed,
	})}
}

// checkWinner finishes the game once any player's total victory points,
// hidden cards included, reach the threshold. The active player is checked
// first so a tie resolves in their favor.
func (g *Game) checkWinner() []Event {
	if g.WinnerID != "" || len(g.TurnOrder) == 0 {
		return nil
	}

	n := len(g.TurnOrder)
	for i := 0; i < n; i++ {
		playerID := g.TurnOrder[(g.CurrentPlayerIndex+i)%n]
		if g.Players[playerID].TotalVictoryPoints() < WinningVictoryPoints {
			continue
		}

		g.WinnerID = playerID
		g.Status = StatusFinished
		g.Phase = PhaseFinished
		g.TurnPhase = ""
		g.FinishedAt = time.Now()
		g.UpdatedAt = g.FinishedAt

		return []Event{
			broadcast(protocol.MsgGameEnded, protocol.GameEndedPayload{WinnerID: playerID}),
			g.phaseChanged(),
		}
	}
	return nil
}

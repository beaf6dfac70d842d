package game

import (
	"time"

	"github.com/google/uuid"

	"hextrade/pkg/protocol"
)

// BuyDevCard draws one card from the development deck. Victory-point cards
// count toward the winner check immediately but stay hidden until victory.
func (g *Game) BuyDevCard(playerID string) ([]Event, error) {
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
	if len(g.DevDeck) == 0 {
		return nil, newError(protocol.ErrDeckEmpty, "the development deck is empty")
	}
	if !p.Resources.Covers(costDevCard) {
		return nil, errCannotAfford("a development card")
	}

	g.pay(p, costDevCard)
	cardType, _ := g.drawDevCard()
	card := &DevCard{
		ID:              uuid.New().String(),
		Type:            cardType,
		PurchasedOnTurn: g.TurnNumber,
	}
	p.DevCards = append(p.DevCards, card)
	g.UpdatedAt = time.Now()

	events := []Event{
		// Everyone sees that a card was bought; only the buyer learns which.
		broadcast(protocol.MsgDevCardPurchased, protocol.DevCardPurchasedPayload{
			PlayerID:  p.ID,
			DeckCount: len(g.DevDeck),
		}),
		to([]string{p.ID}, protocol.MsgDevCardPurchased, protocol.DevCardPurchasedPayload{
			PlayerID:  p.ID,
			DeckCount: len(g.DevDeck),
			Card: &protocol.DevCardInfo{
				ID:              card.ID,
				Type:            string(card.Type),
				PurchasedOnTurn: card.PurchasedOnTurn,
			},
		}),
	}

	return append(events, g.checkWinner()...), nil
}

// playableCard finds an unplayed card of the given type bought on an earlier
// turn, honoring the one-card-per-turn rule.
func (g *Game) playableCard(p *Player, cardType DevCardType) (*DevCard, *GameError) {
	if g.DevCardPlayed {
		return nil, errInvalidPayload("you already played a development card this turn")
	}
	for _, card := range p.DevCards {
		if card.Type == cardType && !card.Played && card.PurchasedOnTurn < g.TurnNumber {
			return card, nil
		}
	}
	return nil, errInvalidPayload("no playable %s card", cardType)
}

// PlayKnight plays a knight: the robber moves (no discard fence) and the
// played-knights count feeds the largest-army award. A knight may be played
// before rolling; the turn returns to pre_roll after the steal.
func (g *Game) PlayKnight(playerID string) ([]Event, error) {
	p, gerr := g.requireCurrent(playerID)
	if gerr != nil {
		return nil, gerr
	}
	if err := g.requirePhase(PhasePlaying); err != nil {
		return nil, err
	}
	if err := g.requireTurnPhase(TurnPreRoll, TurnMain); err != nil {
		return nil, err
	}

	card, gerr := g.playableCard(p, CardKnight)
	if gerr != nil {
		return nil, gerr
	}

	card.Played = true
	g.DevCardPlayed = true
	p.KnightsPlayed++
	g.ReturnToPreRoll = g.TurnPhase == TurnPreRoll
	g.TurnPhase = TurnRobberMove
	g.UpdatedAt = time.Now()

	events := []Event{
		broadcast(protocol.MsgDevCardPlayed, protocol.DevCardPlayedPayload{
			PlayerID: p.ID,
			CardType: string(CardKnight),
		}),
		g.phaseChanged(),
	}
	events = append(events, g.recomputeLargestArmy()...)
	return append(events, g.checkWinner()...), nil
}

// PlayRoadBuilding plays a road-building card: up to two free roads
func (g *Game) PlayRoadBuilding(playerID string) ([]Event, error) {
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

	card, gerr := g.playableCard(p, CardRoadBuilding)
	if gerr != nil {
		return nil, gerr
	}
	if len(p.Roads) >= MaxRoads || !g.hasLegalRoadEdge(p) {
		return nil, errIllegalPlacement("no legal road placement available")
	}

	card.Played = true
	g.DevCardPlayed = true
	g.RoadBuildingRoadsLeft = 2
	if MaxRoads-len(p.Roads) < 2 {
		g.RoadBuildingRoadsLeft = MaxRoads - len(p.Roads)
	}
	g.TurnPhase = TurnRoadBuilding
	g.UpdatedAt = time.Now()

	return []Event{
		broadcast(protocol.MsgDevCardPlayed, protocol.DevCardPlayedPayload{
			PlayerID: p.ID,
			CardType: string(CardRoadBuilding),
		}),
		g.phaseChanged(),
	}, nil
}

// PlayYearOfPlenty plays a year-of-plenty card: two nominated resources move
// from the bank to the player's hand.
func (g *Game) PlayYearOfPlenty(playerID string, first, second protocol.Resource) ([]Event, error) {
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
	if !protocol.ValidResource(first) || !protocol.ValidResource(second) {
		return nil, errInvalidPayload("invalid resource selection")
	}

	card, gerr := g.playableCard(p, CardYearOfPlenty)
	if gerr != nil {
		return nil, gerr
	}

	want := protocol.NewResourceCount()
	want[first]++
	want[second]++
	if !g.Bank.Covers(want) {
		return nil, newError(protocol.ErrBankShortage, "the bank cannot supply that selection")
	}

	card.Played = true
	g.DevCardPlayed = true
	g.Bank.Sub(want)
	p.Resources.Add(want)
	g.UpdatedAt = time.Now()

	return []Event{
		broadcast(protocol.MsgDevCardPlayed, protocol.DevCardPlayedPayload{
			PlayerID: p.ID,
			CardType: string(CardYearOfPlenty),
		}),
		broadcast(protocol.MsgResourcesGranted, protocol.ResourcesGrantedPayload{
			Granted: map[string]protocol.ResourceCount{p.ID: want},
		}),
	}, nil
}

// PlayMonopoly plays a monopoly card: every other player surrenders all
// cards of the named resource to the active player.
func (g *Game) PlayMonopoly(playerID string, resource protocol.Resource) ([]Event, error) {
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
	if !protocol.ValidResource(resource) {
		return nil, errInvalidPayload("invalid resource selection")
	}

	card, gerr := g.playableCard(p, CardMonopoly)
	if gerr != nil {
		return nil, gerr
	}

	card.Played = true
	g.DevCardPlayed = true
	collected := 0
	for _, other := range g.Players {
		if other.ID == p.ID {
			continue
		}
		count := other.Resources[resource]
		if count > 0 {
			other.Resources[resource] = 0
			p.Resources[resource] += count
			collected += count
		}
	}
	g.UpdatedAt = time.Now()

	return []Event{
		broadcast(protocol.MsgDevCardPlayed, protocol.DevCardPlayedPayload{
			PlayerID: p.ID,
			CardType: string(CardMonopoly),
			Resource: resource,
		}),
	}, nil
}

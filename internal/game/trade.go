package game

import (
	"time"

	"github.com/google/uuid"

	"hextrade/internal/board"
	"hextrade/pkg/protocol"
)

// tradeInfo builds the wire description of a trade offer
func tradeInfo(t *TradeOffer) *protocol.TradeInfo {
	return &protocol.TradeInfo{
		ID:         t.ID,
		ProposerID: t.ProposerID,
		TargetID:   t.TargetID,
		Offer:      t.Offer.Clone(),
		Request:    t.Request.Clone(),
		ExpiresAt:  t.ExpiresAt.Unix(),
	}
}

// ProposeTrade opens a trade offer from the active player. At most one trade
// is active per game; an empty target makes the offer open to every
// opponent.
func (g *Game) ProposeTrade(playerID, targetID string, offer, request protocol.ResourceCount) ([]Event, error) {
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
	if g.ActiveTrade != nil {
		return nil, newError(protocol.ErrTradeConflict, "another trade is already open")
	}
	if !offer.Valid() || !request.Valid() {
		return nil, errInvalidPayload("invalid resource counts")
	}
	if offer.Total() == 0 && request.Total() == 0 {
		return nil, errInvalidPayload("a trade must move at least one card")
	}
	if !p.Resources.Covers(offer) {
		return nil, errCannotAfford("that offer")
	}
	if targetID != "" {
		if targetID == playerID {
			return nil, errInvalidPayload("cannot trade with yourself")
		}
		if _, gerr := g.player(targetID); gerr != nil {
			return nil, gerr
		}
	}

	now := time.Now()
	g.ActiveTrade = &TradeOffer{
		ID:         uuid.New().String(),
		ProposerID: playerID,
		TargetID:   targetID,
		Offer:      offer.Clone(),
		Request:    request.Clone(),
		CreatedAt:  now,
		ExpiresAt:  now.Add(DefaultTradeTimeout),
	}
	g.UpdatedAt = now

	return []Event{broadcast(protocol.MsgTradeProposed, tradeInfo(g.ActiveTrade))}, nil
}

// AcceptTrade completes the active trade: both hands are re-validated, the
// cards move atomically and the trade clears.
func (g *Game) AcceptTrade(playerID, tradeID string) ([]Event, error) {
	acceptor, gerr := g.player(playerID)
	if gerr != nil {
		return nil, gerr
	}
	trade := g.ActiveTrade
	if trade == nil || trade.ID != tradeID {
		return nil, newError(protocol.ErrNoActiveTrade, "no such open trade")
	}
	if playerID == trade.ProposerID {
		return nil, errInvalidPayload("cannot accept your own trade")
	}
	if trade.TargetID != "" && trade.TargetID != playerID {
		return nil, errInvalidPayload("this trade is not addressed to you")
	}

	proposer := g.Players[trade.ProposerID]
	if !proposer.Resources.Covers(trade.Offer) {
		return nil, errCannotAfford("the proposer can no longer cover the offer")
	}
	if !acceptor.Resources.Covers(trade.Request) {
		return nil, errCannotAfford("the requested cards")
	}

	proposer.Resources.Sub(trade.Offer)
	acceptor.Resources.Add(trade.Offer)
	acceptor.Resources.Sub(trade.Request)
	proposer.Resources.Add(trade.Request)

	info := tradeInfo(trade)
	g.ActiveTrade = nil
	g.UpdatedAt = time.Now()

	return []Event{
		broadcast(protocol.MsgTradeAccepted, info),
		broadcast(protocol.MsgTradeCompleted, info),
	}, nil
}

// RejectTrade declines the active trade
func (g *Game) RejectTrade(playerID, tradeID string) ([]Event, error) {
	if _, gerr := g.player(playerID); gerr != nil {
		return nil, gerr
	}
	trade := g.ActiveTrade
	if trade == nil || trade.ID != tradeID {
		return nil, newError(protocol.ErrNoActiveTrade, "no such open trade")
	}
	if playerID == trade.ProposerID {
		return nil, errInvalidPayload("use cancel to withdraw your own trade")
	}
	if trade.TargetID != "" && trade.TargetID != playerID {
		return nil, errInvalidPayload("this trade is not addressed to you")
	}

	info := tradeInfo(trade)
	g.ActiveTrade = nil
	g.UpdatedAt = time.Now()

	return []Event{broadcast(protocol.MsgTradeRejected, info)}, nil
}

// CancelTrade withdraws the proposer's own trade
func (g *Game) CancelTrade(playerID, tradeID string) ([]Event, error) {
	if _, gerr := g.player(playerID); gerr != nil {
		return nil, gerr
	}
	trade := g.ActiveTrade
	if trade == nil || trade.ID != tradeID {
		return nil, newError(protocol.ErrNoActiveTrade, "no such open trade")
	}
	if playerID != trade.ProposerID {
		return nil, errInvalidPayload("only the proposer can cancel a trade")
	}

	info := tradeInfo(trade)
	g.ActiveTrade = nil
	g.UpdatedAt = time.Now()

	return []Event{broadcast(protocol.MsgTradeCancelled, info)}, nil
}

// ExpireActiveTrade clears the active trade once its deadline passes. Called
// from the owning actor's sweep.
func (g *Game) ExpireActiveTrade(now time.Time) []Event {
	trade := g.ActiveTrade
	if trade == nil || now.Before(trade.ExpiresAt) {
		return nil
	}
	info := tradeInfo(trade)
	g.ActiveTrade = nil
	g.UpdatedAt = now
	return []Event{broadcast(protocol.MsgTradeCancelled, info)}
}

// BankTrade exchanges four identical cards for one from the bank
func (g *Game) BankTrade(playerID string, give, receive protocol.Resource) ([]Event, error) {
	return g.maritimeTrade(playerID, give, receive, 4)
}

// PortTrade exchanges cards at the player's best port rate: 3:1 on a generic
// port, 2:1 on a port matching the surrendered resource. The player must own
// a building on one of the port's vertices.
func (g *Game) PortTrade(playerID string, give, receive protocol.Resource) ([]Event, error) {
	ratio := g.bestPortRatio(playerID, give)
	if ratio == 0 {
		return nil, errIllegalPlacement("you have no usable port")
	}
	return g.maritimeTrade(playerID, give, receive, ratio)
}

// maritimeTrade moves ratio cards of give to the bank for one receive
func (g *Game) maritimeTrade(playerID string, give, receive protocol.Resource, ratio int) ([]Event, error) {
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
	if !protocol.ValidResource(give) || !protocol.ValidResource(receive) || give == receive {
		return nil, errInvalidPayload("invalid resource selection")
	}
	if p.Resources[give] < ratio {
		return nil, errCannotAfford("that exchange")
	}
	if g.Bank[receive] < 1 {
		return nil, newError(protocol.ErrBankShortage, "the bank is out of %s", receive)
	}

	p.Resources[give] -= ratio
	g.Bank[give] += ratio
	g.Bank[receive]--
	p.Resources[receive]++
	g.UpdatedAt = time.Now()

	return []Event{broadcast(protocol.MsgTradeCompleted, &protocol.TradeInfo{
		ProposerID: playerID,
		Offer:      protocol.ResourceCount{give: ratio},
		Request:    protocol.ResourceCount{receive: 1},
	})}, nil
}

// bestPortRatio returns the player's best exchange ratio for a resource via
// ports, or zero when no port is owned.
func (g *Game) bestPortRatio(playerID string, give protocol.Resource) int {
	best := 0
	for _, port := range g.Board.Ports {
		owned := false
		for _, vertexID := range port.VertexIDs {
			if g.buildingOwner(vertexID) == playerID {
				owned = true
				break
			}
		}
		if !owned {
			continue
		}
		if res, ok := board.PortResource(port.Type); ok {
			if res == give {
				return 2
			}
		} else if best == 0 || best > 3 {
			best = 3
		}
	}
	return best
}

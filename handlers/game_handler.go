package handlers

import (
	"fmt"

	"hextrade/internal/game"
	"hextrade/internal/network"
	"hextrade/pkg/protocol"
)

// handleGameMessage validates a game intent and submits it to the player's
// game actor. Failures are local: the submitter gets a typed error event and
// nothing else changes.
func (gw *Gateway) handleGameMessage(session *network.Session, msg protocol.Message) {
	actor := gw.games.ActorForPlayer(session.PlayerID)
	if actor == nil {
		session.SendError(errorFamily(msg.Type), protocol.ErrNotInGame, "you are not in a game")
		return
	}

	playerID := session.PlayerID
	cmd, err := gw.decodeIntent(session, playerID, msg)
	if err != nil {
		sendGameError(session, msg.Type, err)
		return
	}
	if cmd == nil {
		return
	}

	if err := actor.Submit(cmd); err != nil {
		sendGameError(session, msg.Type, err)
	}
}

// decodeIntent turns a wire message into an engine command after schema
// validation. A state request becomes a command that answers only the
// requester and emits no events.
func (gw *Gateway) decodeIntent(session *network.Session, playerID string, msg protocol.Message) (network.Command, error) {
	switch msg.Type {
	case protocol.MsgRollForOrder:
		return func(g *game.Game) ([]game.Event, error) { return g.RollForOrder(playerID) }, nil

	case protocol.MsgRollDice:
		return func(g *game.Game) ([]game.Event, error) { return g.RollDice(playerID) }, nil

	case protocol.MsgEndTurn:
		return func(g *game.Game) ([]game.Event, error) { return g.EndTurn(playerID) }, nil

	case protocol.MsgRequestState:
		return func(g *game.Game) ([]game.Event, error) {
			session.SendMessage(protocol.MsgGameState, g.StatePayloadFor(playerID))
			return nil, nil
		}, nil

	case protocol.MsgBuildSettlement:
		var payload protocol.BuildPayload
		if err := parsePayload(msg.Payload, &payload); err != nil || !validVertexID(payload.VertexID) {
			return nil, invalidID("vertex")
		}
		return func(g *game.Game) ([]game.Event, error) { return g.PlaceSettlement(playerID, payload.VertexID) }, nil

	case protocol.MsgBuildCity:
		var payload protocol.BuildPayload
		if err := parsePayload(msg.Payload, &payload); err != nil || !validVertexID(payload.VertexID) {
			return nil, invalidID("vertex")
		}
		return func(g *game.Game) ([]game.Event, error) { return g.PlaceCity(playerID, payload.VertexID) }, nil

	case protocol.MsgBuildRoad:
		var payload protocol.BuildPayload
		if err := parsePayload(msg.Payload, &payload); err != nil || !validEdgeID(payload.EdgeID) {
			return nil, invalidID("edge")
		}
		return func(g *game.Game) ([]game.Event, error) { return g.PlaceRoad(playerID, payload.EdgeID) }, nil

	case protocol.MsgBuyDevCard:
		return func(g *game.Game) ([]game.Event, error) { return g.BuyDevCard(playerID) }, nil

	case protocol.MsgMoveRobber:
		var payload protocol.MoveRobberPayload
		if err := parsePayload(msg.Payload, &payload); err != nil || !validHexID(payload.HexID) {
			return nil, invalidID("hex")
		}
		return func(g *game.Game) ([]game.Event, error) { return g.MoveRobber(playerID, payload.HexID) }, nil

	case protocol.MsgStealResource:
		var payload protocol.StealPayload
		if err := parsePayload(msg.Payload, &payload); err != nil || payload.VictimID == "" {
			return nil, invalidPayload("missing victim")
		}
		return func(g *game.Game) ([]game.Event, error) { return g.Steal(playerID, payload.VictimID) }, nil

	case protocol.MsgDiscardResources:
		var payload protocol.DiscardPayload
		if err := parsePayload(msg.Payload, &payload); err != nil || !validResourceCount(payload.Resources) {
			return nil, invalidPayload("discard needs all five resource counts")
		}
		return func(g *game.Game) ([]game.Event, error) { return g.Discard(playerID, payload.Resources) }, nil

	case protocol.MsgProposeTrade:
		var payload protocol.ProposeTradePayload
		if err := parsePayload(msg.Payload, &payload); err != nil ||
			!validResourceCount(payload.Offer) || !validResourceCount(payload.Request) {
			return nil, invalidPayload("trade needs all five resource counts on both sides")
		}
		return func(g *game.Game) ([]game.Event, error) {
			return g.ProposeTrade(playerID, payload.TargetID, payload.Offer, payload.Request)
		}, nil

	case protocol.MsgAcceptTrade:
		var payload protocol.TradeActionPayload
		if err := parsePayload(msg.Payload, &payload); err != nil || payload.TradeID == "" {
			return nil, invalidPayload("missing trade id")
		}
		return func(g *game.Game) ([]game.Event, error) { return g.AcceptTrade(playerID, payload.TradeID) }, nil

	case protocol.MsgRejectTrade:
		var payload protocol.TradeActionPayload
		if err := parsePayload(msg.Payload, &payload); err != nil || payload.TradeID == "" {
			return nil, invalidPayload("missing trade id")
		}
		return func(g *game.Game) ([]game.Event, error) { return g.RejectTrade(playerID, payload.TradeID) }, nil

	case protocol.MsgCancelTrade:
		var payload protocol.TradeActionPayload
		if err := parsePayload(msg.Payload, &payload); err != nil || payload.TradeID == "" {
			return nil, invalidPayload("missing trade id")
		}
		return func(g *game.Game) ([]game.Event, error) { return g.CancelTrade(playerID, payload.TradeID) }, nil

	case protocol.MsgBankTrade:
		var payload protocol.MaritimeTradePayload
		if err := parsePayload(msg.Payload, &payload); err != nil ||
			!protocol.ValidResource(payload.Give) || !protocol.ValidResource(payload.Receive) {
			return nil, invalidPayload("invalid resource selection")
		}
		return func(g *game.Game) ([]game.Event, error) { return g.BankTrade(playerID, payload.Give, payload.Receive) }, nil

	case protocol.MsgPortTrade:
		var payload protocol.MaritimeTradePayload
		if err := parsePayload(msg.Payload, &payload); err != nil ||
			!protocol.ValidResource(payload.Give) || !protocol.ValidResource(payload.Receive) {
			return nil, invalidPayload("invalid resource selection")
		}
		return func(g *game.Game) ([]game.Event, error) { return g.PortTrade(playerID, payload.Give, payload.Receive) }, nil

	case protocol.MsgPlayKnight:
		return func(g *game.Game) ([]game.Event, error) { return g.PlayKnight(playerID) }, nil

	case protocol.MsgPlayRoadBuilding:
		return func(g *game.Game) ([]game.Event, error) { return g.PlayRoadBuilding(playerID) }, nil

	case protocol.MsgPlayYearOfPlenty:
		var payload protocol.YearOfPlentyPayload
		if err := parsePayload(msg.Payload, &payload); err != nil ||
			!protocol.ValidResource(payload.First) || !protocol.ValidResource(payload.Second) {
			return nil, invalidPayload("year of plenty needs two resources")
		}
		return func(g *game.Game) ([]game.Event, error) {
			return g.PlayYearOfPlenty(playerID, payload.First, payload.Second)
		}, nil

	case protocol.MsgPlayMonopoly:
		var payload protocol.MonopolyPayload
		if err := parsePayload(msg.Payload, &payload); err != nil || !protocol.ValidResource(payload.Resource) {
			return nil, invalidPayload("monopoly needs one resource")
		}
		return func(g *game.Game) ([]game.Event, error) { return g.PlayMonopoly(playerID, payload.Resource) }, nil
	}

	return nil, invalidPayload("unknown message type %q", string(msg.Type))
}

// invalidID builds the gateway-level bad-identifier error
func invalidID(kind string) error {
	return &game.GameError{Code: protocol.ErrInvalidID, Message: "invalid " + kind + " id"}
}

// invalidPayload builds a gateway-level schema error
func invalidPayload(format string, args ...interface{}) error {
	return &game.GameError{Code: protocol.ErrInvalidPayload, Message: fmt.Sprintf(format, args...)}
}

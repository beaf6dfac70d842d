package game

import (
	"testing"

	"hextrade/pkg/protocol"
)

// giveCard puts a development card in the player's hand, bought on turn 1
func giveCard(g *Game, playerID string, cardType DevCardType) *DevCard {
	card := &DevCard{ID: "card-" + string(cardType), Type: cardType, PurchasedOnTurn: 1}
	g.Players[playerID].DevCards = append(g.Players[playerID].DevCards, card)
	// Keep the deck invariant intact.
	g.DevDeck = g.DevDeck[:len(g.DevDeck)-1]
	return card
}

// TestBuyDevCard verifies cost, deck accounting and hidden delivery
func TestBuyDevCard(t *testing.T) {
	g := newPlayingGame(t)
	g.TurnPhase = TurnMain

	// Cannot afford with an empty hand.
	_, err := g.BuyDevCard("A")
	gerr, ok := err.(*GameError)
	if !ok || gerr.Code != protocol.ErrCannotAfford {
		t.Errorf("expected CannotAfford, got %v", err)
	}

	give(g, "A", costDevCard)
	events, err := g.BuyDevCard("A")
	if err != nil {
		t.Fatalf("buy failed: %v", err)
	}

	if len(g.DevDeck) != DevDeckSize-1 {
		t.Errorf("deck has %d cards, want %d", len(g.DevDeck), DevDeckSize-1)
	}
	p := g.Players["A"]
	if len(p.DevCards) != 1 {
		t.Fatalf("expected 1 card in hand, got %d", len(p.DevCards))
	}
	if p.DevCards[0].PurchasedOnTurn != g.TurnNumber {
		t.Errorf("card tagged with turn %d, want %d", p.DevCards[0].PurchasedOnTurn, g.TurnNumber)
	}
	if p.Resources.Total() != 0 {
		t.Error("dev card cost was not deducted")
	}

	// The card type travels only on the buyer's copy.
	for _, event := range events {
		if event.Type != protocol.MsgDevCardPurchased {
			continue
		}
		payload := event.Payload.(protocol.DevCardPurchasedPayload)
		if event.To == nil && payload.Card != nil {
			t.Error("card type leaked in the broadcast event")
		}
	}
}

// TestBuyDevCardEmptyDeck verifies the DeckEmpty failure
func TestBuyDevCardEmptyDeck(t *testing.T) {
	g := newPlayingGame(t)
	g.TurnPhase = TurnMain
	g.DevDeck = nil
	give(g, "A", costDevCard)

	_, err := g.BuyDevCard("A")
	gerr, ok := err.(*GameError)
	if !ok || gerr.Code != protocol.ErrDeckEmpty {
		t.Errorf("expected DeckEmpty, got %v", err)
	}
}

// TestDevCardNotPlayableOnPurchaseTurn verifies the purchase-turn lockout
func TestDevCardNotPlayableOnPurchaseTurn(t *testing.T) {
	g := newPlayingGame(t)
	g.TurnPhase = TurnMain

	card := giveCard(g, "A", CardKnight)
	card.PurchasedOnTurn = g.TurnNumber

	if _, err := g.PlayKnight("A"); err == nil {
		t.Error("knight played on its purchase turn")
	}
}

// TestOneDevCardPerTurn verifies the once-per-turn rule
func TestOneDevCardPerTurn(t *testing.T) {
	g := newPlayingGame(t)
	g.TurnPhase = TurnMain

	giveCard(g, "A", CardMonopoly)
	giveCard(g, "A", CardYearOfPlenty)

	if _, err := g.PlayMonopoly("A", protocol.Ore); err != nil {
		t.Fatalf("monopoly failed: %v", err)
	}
	if _, err := g.PlayYearOfPlenty("A", protocol.Brick, protocol.Wool); err == nil {
		t.Error("second dev card played in the same turn")
	}

	// The lock resets with the turn.
	if _, err := g.EndTurn("A"); err != nil {
		t.Fatal(err)
	}
	g.TurnPhase = TurnMain
	g.CurrentPlayerIndex = 0 // back to A for the test
	g.TurnNumber++
	if _, err := g.PlayYearOfPlenty("A", protocol.Brick, protocol.Wool); err != nil {
		t.Errorf("dev card rejected on a later turn: %v", err)
	}
}

// TestKnightPreRoll verifies a knight may precede the roll and the turn
// returns to pre_roll afterwards.
func TestKnightPreRoll(t *testing.T) {
	// The trailing 2,3 script the roll after the knight: dice (3,4).
	g := newPlayingGame(t, 2, 3)
	giveCard(g, "A", CardKnight)

	target := findTile(t, g, "forest")

	if _, err := g.PlayKnight("A"); err != nil {
		t.Fatalf("pre-roll knight failed: %v", err)
	}
	if g.TurnPhase != TurnRobberMove {
		t.Fatalf("expected %s, got %s", TurnRobberMove, g.TurnPhase)
	}

	// No discard fence on a knight.
	if len(g.PendingDiscards) != 0 {
		t.Error("knight raised the discard fence")
	}

	if _, err := g.MoveRobber("A", target.id); err != nil {
		t.Fatal(err)
	}
	if g.TurnPhase != TurnPreRoll {
		t.Fatalf("expected return to %s, got %s", TurnPreRoll, g.TurnPhase)
	}
	if g.Players["A"].KnightsPlayed != 1 {
		t.Errorf("knights played = %d", g.Players["A"].KnightsPlayed)
	}

	// The player still rolls.
	if _, err := g.RollDice("A"); err != nil {
		t.Errorf("roll after pre-roll knight failed: %v", err)
	}
}

// TestLargestArmy verifies the three-knight threshold and strict transfer
func TestLargestArmy(t *testing.T) {
	g := newPlayingGame(t)
	g.TurnPhase = TurnMain

	g.Players["A"].KnightsPlayed = 2
	g.recomputeLargestArmy()
	if g.LargestArmyHolder != "" {
		t.Fatal("award granted below three knights")
	}

	g.Players["A"].KnightsPlayed = 3
	g.recomputeLargestArmy()
	if g.LargestArmyHolder != "A" {
		t.Fatalf("expected A to hold largest army, got %q", g.LargestArmyHolder)
	}
	if g.Players["A"].VictoryPoints != AchievementVP {
		t.Errorf("A has %d VP, want %d", g.Players["A"].VictoryPoints, AchievementVP)
	}

	// A tie does not transfer.
	g.Players["B"].KnightsPlayed = 3
	g.recomputeLargestArmy()
	if g.LargestArmyHolder != "A" {
		t.Error("tie moved the award")
	}

	// Strictly more knights does.
	g.Players["B"].KnightsPlayed = 4
	g.recomputeLargestArmy()
	if g.LargestArmyHolder != "B" {
		t.Errorf("expected B to take the award, got %q", g.LargestArmyHolder)
	}
	if g.Players["A"].VictoryPoints != 0 || g.Players["B"].VictoryPoints != AchievementVP {
		t.Error("victory points did not move with the award")
	}
}

// TestYearOfPlentyBankShortage verifies the BankShortage rejection
func TestYearOfPlentyBankShortage(t *testing.T) {
	g := newPlayingGame(t)
	g.TurnPhase = TurnMain
	giveCard(g, "A", CardYearOfPlenty)

	g.Bank[protocol.Ore] = 1

	_, err := g.PlayYearOfPlenty("A", protocol.Ore, protocol.Ore)
	gerr, ok := err.(*GameError)
	if !ok || gerr.Code != protocol.ErrBankShortage {
		t.Errorf("expected BankShortage, got %v", err)
	}

	// One ore plus one brick is fine.
	if _, err := g.PlayYearOfPlenty("A", protocol.Ore, protocol.Brick); err != nil {
		t.Fatalf("year of plenty failed: %v", err)
	}
	if g.Players["A"].Resources[protocol.Ore] != 1 || g.Players["A"].Resources[protocol.Brick] != 1 {
		t.Error("year of plenty did not deliver")
	}
}

// TestMonopoly verifies every opponent surrenders the named resource
func TestMonopoly(t *testing.T) {
	g := newPlayingGame(t)
	g.TurnPhase = TurnMain
	giveCard(g, "A", CardMonopoly)

	give(g, "B", protocol.ResourceCount{protocol.Ore: 4, protocol.Wool: 2})

	if _, err := g.PlayMonopoly("A", protocol.Ore); err != nil {
		t.Fatalf("monopoly failed: %v", err)
	}
	if g.Players["A"].Resources[protocol.Ore] != 4 {
		t.Errorf("A collected %d ore, want 4", g.Players["A"].Resources[protocol.Ore])
	}
	if g.Players["B"].Resources[protocol.Ore] != 0 {
		t.Error("B kept monopolized ore")
	}
	if g.Players["B"].Resources[protocol.Wool] != 2 {
		t.Error("monopoly touched the wrong resource")
	}
}

// TestMonopolyEnabledWin covers scenario S5: monopoly ore funds a city
// upgrade that ends the game.
func TestMonopolyEnabledWin(t *testing.T) {
	g := newPlayingGame(t)
	g.TurnPhase = TurnMain
	giveCard(g, "A", CardMonopoly)

	// A sits at 9 public VP with a settlement ready to upgrade.
	spots := pickVertices(t, g, 1)
	placeBuilding(g, "A", spots[0], BuildingSettlement)
	g.Players["A"].VictoryPoints = 9
	give(g, "A", protocol.ResourceCount{protocol.Grain: 2})
	give(g, "B", protocol.ResourceCount{protocol.Ore: 4})

	if _, err := g.PlayMonopoly("A", protocol.Ore); err != nil {
		t.Fatalf("monopoly failed: %v", err)
	}
	if g.WinnerID != "" {
		t.Fatal("game ended before the winning build")
	}

	if _, err := g.PlaceCity("A", spots[0]); err != nil {
		t.Fatalf("city upgrade failed: %v", err)
	}

	if g.WinnerID != "A" {
		t.Fatalf("expected A to win, got %q", g.WinnerID)
	}
	if g.Status != StatusFinished || g.Phase != PhaseFinished {
		t.Errorf("game not finished: status %s phase %s", g.Status, g.Phase)
	}
	if g.FinishedAt.IsZero() {
		t.Error("finish timestamp not set")
	}

	// Commands after the end are rejected.
	if _, err := g.EndTurn("A"); err == nil {
		t.Error("command accepted after the game finished")
	}
}

// TestHiddenVictoryCardsCountTowardWin verifies VP cards tip the check
func TestHiddenVictoryCardsCountTowardWin(t *testing.T) {
	g := newPlayingGame(t)
	g.TurnPhase = TurnMain

	g.Players["A"].VictoryPoints = 8
	giveCard(g, "A", CardVictoryPoint)
	giveCard(g, "A", CardVictoryPoint)

	events := g.checkWinner()
	if g.WinnerID != "A" {
		t.Fatalf("hidden VP cards did not trigger the win, winner %q", g.WinnerID)
	}
	if len(events) == 0 {
		t.Error("expected game-ended events")
	}
}

// TestRoadBuildingCard verifies two free roads then a return to main
func TestRoadBuildingCard(t *testing.T) {
	g := newPlayingGame(t)
	g.TurnPhase = TurnMain
	giveCard(g, "A", CardRoadBuilding)

	spots := pickVertices(t, g, 1)
	placeBuilding(g, "A", spots[0], BuildingSettlement)

	if _, err := g.PlayRoadBuilding("A"); err != nil {
		t.Fatalf("road building failed: %v", err)
	}
	if g.TurnPhase != TurnRoadBuilding {
		t.Fatalf("expected %s, got %s", TurnRoadBuilding, g.TurnPhase)
	}

	first := freeEdgeAt(t, g, spots[0])
	if _, err := g.PlaceRoad("A", first); err != nil {
		t.Fatalf("first free road failed: %v", err)
	}
	if g.Players["A"].Resources.Total() != 0 {
		t.Error("free road cost resources")
	}
	if g.TurnPhase != TurnRoadBuilding {
		t.Fatalf("phase left %s after one road", TurnRoadBuilding)
	}

	// Find the next connected edge.
	second := ""
	for eid, edge := range g.Board.Edges {
		if g.Roads[eid] == "" && g.roadConnects("A", edge) {
			second = eid
			break
		}
	}
	if second == "" {
		t.Fatal("no second legal edge")
	}
	if _, err := g.PlaceRoad("A", second); err != nil {
		t.Fatalf("second free road failed: %v", err)
	}
	if g.TurnPhase != TurnMain {
		t.Errorf("expected return to %s, got %s", TurnMain, g.TurnPhase)
	}
	if len(g.Players["A"].Roads) != 2 {
		t.Errorf("expected 2 roads, got %d", len(g.Players["A"].Roads))
	}
}

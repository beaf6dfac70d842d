package game

import (
	"testing"

	"hextrade/pkg/protocol"
)

// TestRollForOrder tests order seeding: descending totals, seating ties
func TestRollForOrder(t *testing.T) {
	// A rolls (6,6), B rolls (1,1): A goes first.
	g := newTestGame(t, newScriptRNG(5, 5, 0, 0))

	// B cannot roll before A: seating order is enforced.
	if _, err := g.RollForOrder("B"); err == nil {
		t.Error("expected B's early roll to be rejected")
	}

	if _, err := g.RollForOrder("A"); err != nil {
		t.Fatalf("A's order roll failed: %v", err)
	}
	if g.Phase != PhaseRollForOrder {
		t.Errorf("phase advanced before everyone rolled")
	}

	events, err := g.RollForOrder("B")
	if err != nil {
		t.Fatalf("B's order roll failed: %v", err)
	}
	if len(events) == 0 {
		t.Fatal("expected events from the final order roll")
	}

	if g.Phase != PhaseSetupFirst {
		t.Errorf("expected phase %s, got %s", PhaseSetupFirst, g.Phase)
	}
	if len(g.TurnOrder) != 2 || g.TurnOrder[0] != "A" || g.TurnOrder[1] != "B" {
		t.Errorf("expected turn order [A B], got %v", g.TurnOrder)
	}
	if g.CurrentPlayerID() != "A" {
		t.Errorf("expected A to start setup, got %s", g.CurrentPlayerID())
	}
}

// TestRollForOrderTieKeepsSeating verifies seating order breaks ties
func TestRollForOrderTieKeepsSeating(t *testing.T) {
	// Both roll (3,3).
	g := newTestGame(t, newScriptRNG(2, 2, 2, 2))

	if _, err := g.RollForOrder("A"); err != nil {
		t.Fatalf("A's roll failed: %v", err)
	}
	if _, err := g.RollForOrder("B"); err != nil {
		t.Fatalf("B's roll failed: %v", err)
	}

	if g.TurnOrder[0] != "A" {
		t.Errorf("tie must keep seating order, got %v", g.TurnOrder)
	}
}

// TestSetupFlow drives the full two-round setup: forward then reverse order,
// free placements, setup road connectivity, and initial production on the
// second settlement.
func TestSetupFlow(t *testing.T) {
	g := newTestGame(t, newScriptRNG(5, 5, 0, 0))
	if _, err := g.RollForOrder("A"); err != nil {
		t.Fatal(err)
	}
	if _, err := g.RollForOrder("B"); err != nil {
		t.Fatal(err)
	}

	spots := pickVertices(t, g, 4)

	// Round one, forward order: A then B.
	place := func(playerID, vertexID string) {
		t.Helper()
		if _, err := g.PlaceSettlement(playerID, vertexID); err != nil {
			t.Fatalf("%s settlement at %s failed: %v", playerID, vertexID, err)
		}
		// A second settlement before the road is rejected.
		if _, err := g.PlaceSettlement(playerID, vertexID); err == nil {
			t.Fatal("second settlement before road was accepted")
		}
		if _, err := g.PlaceRoad(playerID, freeEdgeAt(t, g, vertexID)); err != nil {
			t.Fatalf("%s setup road failed: %v", playerID, err)
		}
	}

	// Setup placements are free.
	place("A", spots[0])
	if g.CurrentPlayerID() != "B" {
		t.Fatalf("expected B after A's first placement, got %s", g.CurrentPlayerID())
	}
	place("B", spots[1])

	// Round two runs in reverse: B places again immediately.
	if g.Phase != PhaseSetupSecond {
		t.Fatalf("expected %s, got %s", PhaseSetupSecond, g.Phase)
	}
	if g.CurrentPlayerID() != "B" {
		t.Fatalf("expected B to open the reverse round, got %s", g.CurrentPlayerID())
	}

	place("B", spots[2])

	// B received one resource per producing hex of the second settlement.
	wantB := 0
	for _, hexID := range g.Board.Vertex(spots[2]).HexIDs {
		if g.Board.Tile(hexID).NumberToken != 0 {
			wantB++
		}
	}
	if got := g.Players["B"].Resources.Total(); got != wantB {
		t.Errorf("B's initial production: got %d cards, want %d", got, wantB)
	}

	place("A", spots[3])

	// Setup is complete: normal play starts with A.
	if g.Phase != PhasePlaying || g.Status != StatusPlaying {
		t.Errorf("expected playing, got phase %s status %s", g.Phase, g.Status)
	}
	if g.TurnPhase != TurnPreRoll {
		t.Errorf("expected %s, got %s", TurnPreRoll, g.TurnPhase)
	}
	if g.CurrentPlayerID() != "A" {
		t.Errorf("expected A to open play, got %s", g.CurrentPlayerID())
	}
	if g.TurnNumber != 1 {
		t.Errorf("expected turn 1, got %d", g.TurnNumber)
	}

	// Only A's second settlement produced; the first-round one grants nothing.
	aMax := 0
	for _, hexID := range g.Board.Vertex(spots[3]).HexIDs {
		if g.Board.Tile(hexID).NumberToken != 0 {
			aMax++
		}
	}
	if got := g.Players["A"].Resources.Total(); got > aMax {
		t.Errorf("A got %d cards, more than the %d producing hexes of the second settlement", got, aMax)
	}

	checkInvariants(t, g)
}

// TestSetupRoadMustTouchSettlement verifies open question four: the setup
// road must touch the settlement placed in the same step.
func TestSetupRoadMustTouchSettlement(t *testing.T) {
	g := newTestGame(t, newScriptRNG(5, 5, 0, 0))
	if _, err := g.RollForOrder("A"); err != nil {
		t.Fatal(err)
	}
	if _, err := g.RollForOrder("B"); err != nil {
		t.Fatal(err)
	}

	spots := pickVertices(t, g, 2)
	if _, err := g.PlaceSettlement("A", spots[0]); err != nil {
		t.Fatalf("settlement failed: %v", err)
	}

	// An edge touching a different vertex is rejected.
	farEdge := freeEdgeAt(t, g, spots[1])
	if _, err := g.PlaceRoad("A", farEdge); err == nil {
		t.Error("setup road away from the new settlement was accepted")
	}

	if _, err := g.PlaceRoad("A", freeEdgeAt(t, g, spots[0])); err != nil {
		t.Errorf("legal setup road rejected: %v", err)
	}

	// Road before settlement is rejected for the next player.
	if _, err := g.PlaceRoad("B", farEdge); err == nil {
		t.Error("setup road without a settlement was accepted")
	}
}

// TestSetupDistanceRule verifies the distance rule binds during setup
func TestSetupDistanceRule(t *testing.T) {
	g := newTestGame(t, newScriptRNG(5, 5, 0, 0))
	if _, err := g.RollForOrder("A"); err != nil {
		t.Fatal(err)
	}
	if _, err := g.RollForOrder("B"); err != nil {
		t.Fatal(err)
	}

	spots := pickVertices(t, g, 1)
	if _, err := g.PlaceSettlement("A", spots[0]); err != nil {
		t.Fatal(err)
	}
	if _, err := g.PlaceRoad("A", freeEdgeAt(t, g, spots[0])); err != nil {
		t.Fatal(err)
	}

	// B tries the vertex next door.
	neighbor := g.Board.Vertex(spots[0]).AdjacentVertexIDs[0]
	_, err := g.PlaceSettlement("B", neighbor)
	if err == nil {
		t.Fatal("adjacent settlement was accepted")
	}
	gerr, ok := err.(*GameError)
	if !ok || gerr.Code != protocol.ErrIllegalPlacement {
		t.Errorf("expected IllegalPlacement, got %v", err)
	}
}

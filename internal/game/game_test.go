package game

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"sort"
	"testing"

	"hextrade/pkg/protocol"
)

// scriptRNG feeds scripted values to Intn (dice, steal picks) while board
// and deck shuffles run off a fixed seed. Values beyond the script fall back
// to the seeded source.
type scriptRNG struct {
	rolls  []int
	i      int
	seeded *rand.Rand
}

func newScriptRNG(rolls ...int) *scriptRNG {
	return &scriptRNG{rolls: rolls, seeded: rand.New(rand.NewSource(3))}
}

func (s *scriptRNG) Intn(n int) int {
	if s.i < len(s.rolls) {
		v := s.rolls[s.i] % n
		s.i++
		return v
	}
	return s.seeded.Intn(n)
}

func (s *scriptRNG) Shuffle(n int, swap func(i, j int)) {
	s.seeded.Shuffle(n, swap)
}

// newTestGame builds a two-player game awaiting the order roll
func newTestGame(t *testing.T, rng RNG) *Game {
	t.Helper()
	g, err := NewGame("TEST42", []Seat{
		{PlayerID: "A", UserID: "user-a", Username: "alice", Color: ColorRed},
		{PlayerID: "B", UserID: "user-b", Username: "bob", Color: ColorBlue},
	}, rng)
	if err != nil {
		t.Fatalf("failed to create game: %v", err)
	}
	return g
}

// newPlayingGame builds a two-player game fast-forwarded past setup, with A
// as the active player in pre_roll of turn 2.
func newPlayingGame(t *testing.T, rolls ...int) *Game {
	t.Helper()
	g := newTestGame(t, newScriptRNG(rolls...))
	g.Phase = PhasePlaying
	g.Status = StatusPlaying
	g.TurnOrder = []string{"A", "B"}
	g.CurrentPlayerIndex = 0
	g.TurnPhase = TurnPreRoll
	g.TurnNumber = 2
	return g
}

// placeBuilding drops a building directly into the state tables
func placeBuilding(g *Game, playerID, vertexID string, bt BuildingType) {
	g.Buildings[vertexID] = &Building{VertexID: vertexID, PlayerID: playerID, Type: bt}
	p := g.Players[playerID]
	if bt == BuildingCity {
		p.Cities = append(p.Cities, vertexID)
		p.VictoryPoints += 2
	} else {
		p.Settlements = append(p.Settlements, vertexID)
		p.VictoryPoints++
	}
}

// placeRoad drops a road directly into the state tables
func placeRoad(g *Game, playerID, edgeID string) {
	g.Roads[edgeID] = playerID
	p := g.Players[playerID]
	p.Roads = append(p.Roads, edgeID)
}

// sortedVertexIDs returns the board's vertex IDs in stable order
func sortedVertexIDs(g *Game) []string {
	ids := make([]string, 0, len(g.Board.Vertices))
	for id := range g.Board.Vertices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// pickVertices selects n pairwise non-adjacent vertices that each have at
// least one incident edge, deterministically.
func pickVertices(t *testing.T, g *Game, n int) []string {
	t.Helper()
	var picked []string
	for _, vid := range sortedVertexIDs(g) {
		if len(picked) == n {
			break
		}
		vertex := g.Board.Vertex(vid)
		if len(vertex.EdgeIDs) == 0 {
			continue
		}
		ok := true
		for _, prev := range picked {
			if prev == vid || g.Board.VerticesAdjacent(prev, vid) {
				ok = false
				break
			}
		}
		if ok {
			picked = append(picked, vid)
		}
	}
	if len(picked) < n {
		t.Fatalf("could only pick %d of %d vertices", len(picked), n)
	}
	return picked
}

// freeEdgeAt returns the first unoccupied edge incident to a vertex
func freeEdgeAt(t *testing.T, g *Game, vertexID string) string {
	t.Helper()
	for _, edgeID := range g.Board.Vertex(vertexID).EdgeIDs {
		if g.Roads[edgeID] == "" {
			return edgeID
		}
	}
	t.Fatalf("no free edge at %s", vertexID)
	return ""
}

// findTile returns the first tile of the given terrain in spiral order
func findTile(t *testing.T, g *Game, terrain string) *boardTile {
	t.Helper()
	for _, hexID := range g.Board.TileOrder {
		tile := g.Board.Tile(hexID)
		if string(tile.Terrain) == terrain {
			return &boardTile{id: hexID, vertices: g.Board.HexVertexIDs(hexID)}
		}
	}
	t.Fatalf("no %s tile on board", terrain)
	return nil
}

type boardTile struct {
	id       string
	vertices []string
}

// retoken gives the tile the only copy of the given number token
func retoken(g *Game, hexID string, token int) {
	for _, id := range g.Board.TileOrder {
		tile := g.Board.Tile(id)
		if tile.NumberToken == token {
			tile.NumberToken = 10
		}
	}
	g.Board.Tile(hexID).NumberToken = token
}

// checkInvariants asserts the structural invariants that must hold after
// every successful command on an organically driven game.
func checkInvariants(t *testing.T, g *Game) {
	t.Helper()

	publicVP := 0
	settlements, cities := 0, 0
	devCards := 0
	for _, p := range g.Players {
		if len(p.Settlements) > MaxSettlements {
			t.Errorf("player %s has %d settlements", p.ID, len(p.Settlements))
		}
		if len(p.Cities) > MaxCities {
			t.Errorf("player %s has %d cities", p.ID, len(p.Cities))
		}
		if len(p.Roads) > MaxRoads {
			t.Errorf("player %s has %d roads", p.ID, len(p.Roads))
		}
		publicVP += p.VictoryPoints
		settlements += len(p.Settlements)
		cities += len(p.Cities)
		devCards += len(p.DevCards)
	}

	expectedVP := settlements + 2*cities
	if g.LongestRoadHolder != "" {
		expectedVP += 2
	}
	if g.LargestArmyHolder != "" {
		expectedVP += 2
	}
	if publicVP != expectedVP {
		t.Errorf("public VP total %d, want %d", publicVP, expectedVP)
	}

	if len(g.DevDeck)+devCards != DevDeckSize {
		t.Errorf("deck %d + hands %d != %d", len(g.DevDeck), devCards, DevDeckSize)
	}

	// One building per vertex, one road per edge, distance rule intact.
	for vertexID, b := range g.Buildings {
		if b.VertexID != vertexID {
			t.Errorf("building table key %s mismatches %s", vertexID, b.VertexID)
		}
		for _, adj := range g.Board.Vertex(vertexID).AdjacentVertexIDs {
			if g.Buildings[adj] != nil {
				t.Errorf("buildings on adjacent vertices %s and %s", vertexID, adj)
			}
		}
	}

	// Bank plus hands conserves every resource.
	for _, res := range protocol.Resources() {
		total := g.Bank[res]
		for _, p := range g.Players {
			total += p.Resources[res]
		}
		if total != BankSupply {
			t.Errorf("resource %s: bank+hands = %d, want %d", res, total, BankSupply)
		}
	}

	if (len(g.PendingDiscards) > 0) != (g.TurnPhase == TurnDiscard) {
		t.Errorf("pending discards %v inconsistent with turn phase %s", g.PendingDiscards, g.TurnPhase)
	}
	if (g.Phase == PhaseFinished) != (g.WinnerID != "") {
		t.Errorf("phase %s inconsistent with winner %q", g.Phase, g.WinnerID)
	}
}

// TestNewGame tests basic game construction
func TestNewGame(t *testing.T) {
	g := newTestGame(t, newScriptRNG())

	if g.Phase != PhaseRollForOrder {
		t.Errorf("expected phase %s, got %s", PhaseRollForOrder, g.Phase)
	}
	if g.Status != StatusSetup {
		t.Errorf("expected status %s, got %s", StatusSetup, g.Status)
	}
	if len(g.Players) != 2 {
		t.Errorf("expected 2 players, got %d", len(g.Players))
	}
	if len(g.DevDeck) != DevDeckSize {
		t.Errorf("expected %d dev cards, got %d", DevDeckSize, len(g.DevDeck))
	}
	for _, res := range protocol.Resources() {
		if g.Bank[res] != BankSupply {
			t.Errorf("bank %s: expected %d, got %d", res, BankSupply, g.Bank[res])
		}
	}
	if g.Board == nil || len(g.Board.Tiles) != 19 {
		t.Error("board not generated")
	}
}

// TestNewGameRejectsBadSeats verifies seat validation
func TestNewGameRejectsBadSeats(t *testing.T) {
	// Too few players
	_, err := NewGame("TEST42", []Seat{{PlayerID: "A", Username: "a", Color: ColorRed}}, newScriptRNG())
	if err == nil {
		t.Error("expected error for single seat")
	}

	// Duplicate colors
	_, err = NewGame("TEST42", []Seat{
		{PlayerID: "A", Username: "a", Color: ColorRed},
		{PlayerID: "B", Username: "b", Color: ColorRed},
	}, newScriptRNG())
	if err == nil {
		t.Error("expected error for duplicate colors")
	}
}

// TestSerializeRoundTrip verifies serialize -> deserialize -> serialize is
// byte-identical
func TestSerializeRoundTrip(t *testing.T) {
	g := newPlayingGame(t)
	spots := pickVertices(t, g, 2)
	placeBuilding(g, "A", spots[0], BuildingSettlement)
	placeBuilding(g, "B", spots[1], BuildingCity)
	placeRoad(g, "A", freeEdgeAt(t, g, spots[0]))

	first, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded Game
	if err := json.Unmarshal(first, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	second, err := json.Marshal(&decoded)
	if err != nil {
		t.Fatalf("re-marshal failed: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Error("serialized game is not stable across a round trip")
	}
}

// TestSnapshotHidesOpponentHands verifies per-viewer snapshot redaction
func TestSnapshotHidesOpponentHands(t *testing.T) {
	g := newPlayingGame(t)
	g.Players["B"].Resources[protocol.Ore] = 3
	g.Players["B"].DevCards = append(g.Players["B"].DevCards, &DevCard{ID: "c1", Type: CardKnight, PurchasedOnTurn: 1})

	snapshot := g.StatePayloadFor("A")
	for _, info := range snapshot.Players {
		if info.ID == "B" {
			if info.Resources != nil {
				t.Error("opponent hand leaked into snapshot")
			}
			if info.DevCards != nil {
				t.Error("opponent dev cards leaked into snapshot")
			}
			if info.ResourceCardCount != 3 {
				t.Errorf("expected card count 3, got %d", info.ResourceCardCount)
			}
			if info.DevCardCount != 1 {
				t.Errorf("expected dev card count 1, got %d", info.DevCardCount)
			}
		}
	}

	own := g.StatePayloadFor("B")
	for _, info := range own.Players {
		if info.ID == "B" && info.Resources == nil {
			t.Error("viewer cannot see their own hand")
		}
	}
}

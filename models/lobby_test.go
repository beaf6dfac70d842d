package models

import (
	"regexp"
	"testing"

	"hextrade/internal/game"
)

func newHost(id, name string) *LobbyPlayer {
	return &LobbyPlayer{ID: id, UserID: id, Username: name, Color: game.ColorRed}
}

// TestCreateLobby verifies lobby creation and code format
func TestCreateLobby(t *testing.T) {
	lm := NewLobbyManager()

	lobby, err := lm.CreateLobby(newHost("h1", "alice"), 4)
	if err != nil {
		t.Fatalf("failed to create lobby: %v", err)
	}

	// Codes are six characters from the unambiguous alphabet.
	codeRe := regexp.MustCompile(`^[A-HJ-NP-Z2-9]{6}$`)
	if !codeRe.MatchString(lobby.Code) {
		t.Errorf("bad lobby code %q", lobby.Code)
	}

	if lobby.HostID != "h1" {
		t.Errorf("expected host h1, got %s", lobby.HostID)
	}
	if len(lobby.Players) != 1 || !lobby.Players[0].IsHost {
		t.Error("host not seated")
	}
	if lobby.Status != LobbyStatusWaiting {
		t.Errorf("expected status waiting, got %s", lobby.Status)
	}

	// The manager routes the host back to the lobby.
	if lm.LobbyForPlayer("h1") != lobby {
		t.Error("host not routed to the lobby")
	}

	found, err := lm.GetLobby(lobby.Code)
	if err != nil || found != lobby {
		t.Errorf("lobby not found by code: %v", err)
	}
	if _, err := lm.GetLobby("ZZZZZZ"); err == nil {
		t.Error("unknown code returned a lobby")
	}
}

// TestJoinAssignsFreeColors verifies joins take distinct colors up to the cap
func TestJoinAssignsFreeColors(t *testing.T) {
	lm := NewLobbyManager()
	lobby, _ := lm.CreateLobby(newHost("h1", "alice"), 4)

	for i, id := range []string{"p2", "p3", "p4"} {
		if !lobby.AddPlayer(id, id, "player") {
			t.Fatalf("join %d refused", i+2)
		}
	}

	seen := make(map[game.Color]bool)
	for _, p := range lobby.Players {
		if seen[p.Color] {
			t.Errorf("color %s assigned twice", p.Color)
		}
		seen[p.Color] = true
	}

	// A fifth player does not fit.
	if lobby.AddPlayer("p5", "p5", "late") {
		t.Error("lobby accepted a fifth player")
	}

	// Re-adding an existing player is a reconnection, not a new seat.
	if !lobby.AddPlayer("p2", "p2", "player") {
		t.Error("rejoin refused")
	}
	if len(lobby.Players) != 4 {
		t.Errorf("rejoin changed the roster to %d seats", len(lobby.Players))
	}
}

// TestSetColor verifies color changes and conflicts
func TestSetColor(t *testing.T) {
	lm := NewLobbyManager()
	lobby, _ := lm.CreateLobby(newHost("h1", "alice"), 4)
	lobby.AddPlayer("p2", "p2", "bob")

	if !lobby.SetColor("p2", game.ColorWhite) {
		t.Error("free color refused")
	}
	if lobby.SetColor("p2", game.ColorRed) {
		t.Error("host's color was taken over")
	}
	if lobby.SetColor("p2", "purple") {
		t.Error("invalid color accepted")
	}
}

// TestStartRequirements verifies the host-only, everyone-ready start gate
func TestStartRequirements(t *testing.T) {
	lm := NewLobbyManager()
	lobby, _ := lm.CreateLobby(newHost("h1", "alice"), 4)

	// One player is not enough.
	if lobby.CanStart("h1") {
		t.Error("solo start allowed")
	}

	lobby.AddPlayer("p2", "p2", "bob")

	// p2 is not ready yet.
	if lobby.CanStart("h1") {
		t.Error("start allowed with unready players")
	}

	lobby.SetReady("p2", true)

	// Only the host can start.
	if lobby.CanStart("p2") {
		t.Error("non-host start allowed")
	}
	if !lobby.CanStart("h1") {
		t.Error("valid start refused")
	}
}

// TestHostPromotion verifies the earliest remaining player inherits the host
func TestHostPromotion(t *testing.T) {
	lm := NewLobbyManager()
	lobby, _ := lm.CreateLobby(newHost("h1", "alice"), 4)
	lobby.AddPlayer("p2", "p2", "bob")
	lobby.AddPlayer("p3", "p3", "carol")

	empty := lobby.RemovePlayer("h1")
	if empty {
		t.Fatal("lobby reported empty with players left")
	}
	if lobby.HostID != "p2" || !lobby.Player("p2").IsHost {
		t.Errorf("expected p2 promoted, host is %s", lobby.HostID)
	}

	lobby.RemovePlayer("p2")
	if empty := lobby.RemovePlayer("p3"); !empty {
		t.Error("lobby not reported empty after the last leave")
	}
}

// TestSeats verifies the handoff roster preserves join order and colors
func TestSeats(t *testing.T) {
	lm := NewLobbyManager()
	lobby, _ := lm.CreateLobby(newHost("h1", "alice"), 4)
	lobby.AddPlayer("p2", "p2", "bob")

	seats := lobby.Seats()
	if len(seats) != 2 {
		t.Fatalf("expected 2 seats, got %d", len(seats))
	}
	if seats[0].PlayerID != "h1" || seats[1].PlayerID != "p2" {
		t.Errorf("seat order wrong: %v", seats)
	}
	if seats[0].Color == seats[1].Color {
		t.Error("duplicate seat colors")
	}
}

// TestDeleteLobby verifies routes are cleared with the lobby
func TestDeleteLobby(t *testing.T) {
	lm := NewLobbyManager()
	lobby, _ := lm.CreateLobby(newHost("h1", "alice"), 4)
	lobby.AddPlayer("p2", "p2", "bob")
	lm.TrackPlayer("p2", lobby.Code)

	lm.DeleteLobby(lobby.Code)

	if lm.LobbyForPlayer("h1") != nil || lm.LobbyForPlayer("p2") != nil {
		t.Error("player routes survived lobby deletion")
	}
	if _, err := lm.GetLobby(lobby.Code); err == nil {
		t.Error("deleted lobby still reachable")
	}
}

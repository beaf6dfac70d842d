package handlers

import (
	"testing"

	"hextrade/pkg/protocol"
)

// TestValidCode tests game code validation
func TestValidCode(t *testing.T) {
	valid := []string{"ABC123", "ZZZZZZ", "234567"}
	for _, code := range valid {
		if !validCode(code) {
			t.Errorf("code %q rejected", code)
		}
	}

	invalid := []string{"", "abc123", "ABC12", "ABC1234", "ABC 12", "ABC-12"}
	for _, code := range invalid {
		if validCode(code) {
			t.Errorf("code %q accepted", code)
		}
	}
}

// TestValidUsername tests display name validation
func TestValidUsername(t *testing.T) {
	valid := []string{"al", "alice", "Alice_99", "a-b_c", "12345678901234567890"}
	for _, name := range valid {
		if !validUsername(name) {
			t.Errorf("username %q rejected", name)
		}
	}

	invalid := []string{"", "a", "123456789012345678901", "has space", "bad!", "émile"}
	for _, name := range invalid {
		if validUsername(name) {
			t.Errorf("username %q accepted", name)
		}
	}
}

// TestValidResourceCount requires all five fields, non-negative
func TestValidResourceCount(t *testing.T) {
	full := protocol.ResourceCount{
		protocol.Brick: 1, protocol.Lumber: 0, protocol.Ore: 2, protocol.Grain: 0, protocol.Wool: 3,
	}
	if !validResourceCount(full) {
		t.Error("complete count rejected")
	}

	missing := protocol.ResourceCount{protocol.Brick: 1}
	if validResourceCount(missing) {
		t.Error("count missing fields accepted")
	}

	negative := protocol.ResourceCount{
		protocol.Brick: -1, protocol.Lumber: 0, protocol.Ore: 0, protocol.Grain: 0, protocol.Wool: 0,
	}
	if validResourceCount(negative) {
		t.Error("negative count accepted")
	}

	extra := protocol.ResourceCount{
		protocol.Brick: 1, protocol.Lumber: 0, protocol.Ore: 0, protocol.Grain: 0, protocol.Wool: 0,
		"gold": 1,
	}
	if validResourceCount(extra) {
		t.Error("unknown resource accepted")
	}
}

// TestValidIDs tests the gateway-level ID format checks
func TestValidIDs(t *testing.T) {
	if !validHexID("hex_0_0") || validHexID("hex_0") || validHexID("v_hex_0_0_hex_1_0") {
		t.Error("hex ID validation wrong")
	}
	if !validVertexID("v_hex_0_0_hex_1_0") || validVertexID("hex_0_0") || validVertexID("v_hex_0_0") {
		t.Error("vertex ID validation wrong")
	}
	if !validEdgeID("e_hex_0_0_hex_1_0") || validEdgeID("e_hex_0_0") || validEdgeID("v_hex_0_0_hex_1_0") {
		t.Error("edge ID validation wrong")
	}
}

// TestErrorFamily maps intents to their error event types
func TestErrorFamily(t *testing.T) {
	cases := map[protocol.MessageType]protocol.MessageType{
		protocol.MsgJoinLobby:       protocol.MsgLobbyError,
		protocol.MsgBuildSettlement: protocol.MsgBuildError,
		protocol.MsgBuyDevCard:      protocol.MsgBuildError,
		protocol.MsgProposeTrade:    protocol.MsgTradeError,
		protocol.MsgBankTrade:       protocol.MsgTradeError,
		protocol.MsgRollDice:        protocol.MsgError,
		protocol.MsgMoveRobber:      protocol.MsgError,
	}
	for intent, want := range cases {
		if got := errorFamily(intent); got != want {
			t.Errorf("errorFamily(%s) = %s, want %s", intent, got, want)
		}
	}
}

package handlers

import (
	"regexp"

	"hextrade/internal/hexgrid"
	"hextrade/pkg/protocol"
)

// Wire-level validation rules. Every command payload is checked here before
// it reaches a game actor.
var (
	codeRe     = regexp.MustCompile(`^[A-Z0-9]{6}$`)
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9_-]{2,20}$`)
)

// validCode reports whether s is a well-formed game code
func validCode(s string) bool {
	return codeRe.MatchString(s)
}

// validUsername reports whether s is a well-formed display name
func validUsername(s string) bool {
	return usernameRe.MatchString(s)
}

// validResourceCount requires all five resource fields, each non-negative
func validResourceCount(rc protocol.ResourceCount) bool {
	if len(rc) != len(protocol.Resources()) {
		return false
	}
	return rc.Valid()
}

// validVertexID reports whether s parses as a canonical vertex ID
func validVertexID(s string) bool {
	_, err := hexgrid.ParseVertexID(s)
	return err == nil
}

// validEdgeID reports whether s parses as a canonical edge ID
func validEdgeID(s string) bool {
	_, err := hexgrid.ParseEdgeID(s)
	return err == nil
}

// validHexID reports whether s parses as a hex ID
func validHexID(s string) bool {
	_, err := hexgrid.ParseHexID(s)
	return err == nil
}

// maxChatLength bounds chat messages
const maxChatLength = 500

package hexgrid

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Derived string IDs are the only way hexes, vertices and edges are addressed
// in state and on the wire. A hex ID is "hex_<q>_<r>". A vertex ID is "v_"
// followed by the sorted IDs of the 2-3 hexes meeting at the corner, and an
// edge ID is "e_" followed by the sorted pair of hexes sharing the side.

// HexID returns the string ID for an axial coordinate
func HexID(a Axial) string {
	return fmt.Sprintf("hex_%d_%d", a.Q, a.R)
}

// ParseHexID parses a hex ID back to its axial coordinate
func ParseHexID(id string) (Axial, error) {
	parts := strings.Split(id, "_")
	if len(parts) != 3 || parts[0] != "hex" {
		return Axial{}, ErrInvalidID
	}
	q, err := strconv.Atoi(parts[1])
	if err != nil {
		return Axial{}, ErrInvalidID
	}
	r, err := strconv.Atoi(parts[2])
	if err != nil {
		return Axial{}, ErrInvalidID
	}
	return Axial{Q: q, R: r}, nil
}

// VertexID returns the canonical vertex ID for the hexes meeting at a corner
func VertexID(hexIDs []string) (string, error) {
	if len(hexIDs) < 2 || len(hexIDs) > 3 {
		return "", ErrInvalidID
	}
	sorted, err := sortedHexIDs(hexIDs)
	if err != nil {
		return "", err
	}
	return "v_" + strings.Join(sorted, "_"), nil
}

// ParseVertexID parses a vertex ID into its component hex IDs. Only the
// canonical (sorted) form is accepted.
func ParseVertexID(id string) ([]string, error) {
	hexes, err := parseComposite(id, "v")
	if err != nil {
		return nil, err
	}
	if len(hexes) < 2 || len(hexes) > 3 {
		return nil, ErrInvalidID
	}
	return hexes, nil
}

// EdgeID returns the canonical edge ID for the two hexes sharing a side
func EdgeID(a, b string) (string, error) {
	if a == b {
		return "", ErrInvalidID
	}
	sorted, err := sortedHexIDs([]string{a, b})
	if err != nil {
		return "", err
	}
	return "e_" + strings.Join(sorted, "_"), nil
}

// ParseEdgeID parses an edge ID into its two component hex IDs. Only the
// canonical (sorted) form is accepted.
func ParseEdgeID(id string) ([2]string, error) {
	hexes, err := parseComposite(id, "e")
	if err != nil {
		return [2]string{}, err
	}
	if len(hexes) != 2 {
		return [2]string{}, ErrInvalidID
	}
	return [2]string{hexes[0], hexes[1]}, nil
}

// sortedHexIDs validates each hex ID, rejects duplicates and returns a sorted copy
func sortedHexIDs(hexIDs []string) ([]string, error) {
	sorted := make([]string, len(hexIDs))
	copy(sorted, hexIDs)
	sort.Strings(sorted)
	for i, h := range sorted {
		if _, err := ParseHexID(h); err != nil {
			return nil, ErrInvalidID
		}
		if i > 0 && sorted[i-1] == h {
			return nil, ErrInvalidID
		}
	}
	return sorted, nil
}

// parseComposite splits a "<prefix>_hex_q_r[_hex_q_r...]" ID into hex IDs
func parseComposite(id, prefix string) ([]string, error) {
	parts := strings.Split(id, "_")
	if len(parts) < 1+3 || parts[0] != prefix || (len(parts)-1)%3 != 0 {
		return nil, ErrInvalidID
	}

	count := (len(parts) - 1) / 3
	hexes := make([]string, 0, count)
	for i := 0; i < count; i++ {
		hex := strings.Join(parts[1+i*3:1+(i+1)*3], "_")
		if _, err := ParseHexID(hex); err != nil {
			return nil, ErrInvalidID
		}
		hexes = append(hexes, hex)
	}

	// Require canonical ordering so an ID round-trips to itself.
	if !sort.StringsAreSorted(hexes) {
		return nil, ErrInvalidID
	}
	for i := 1; i < len(hexes); i++ {
		if hexes[i] == hexes[i-1] {
			return nil, ErrInvalidID
		}
	}

	return hexes, nil
}

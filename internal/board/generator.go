package board

import (
	"fmt"

	"hextrade/internal/hexgrid"
)

// RNG is the random source injected into board generation
type RNG interface {
	Intn(n int) int
	Shuffle(n int, swap func(i, j int))
}

// BoardRadius is the hex radius of the standard board (19 tiles)
const BoardRadius = 2

// maxShuffleAttempts bounds the reshuffle loop for the 6/8 separation
// constraint before the last attempt is accepted as-is.
const maxShuffleAttempts = 100

// terrainDeck is the canonical 19-tile terrain multiset
var terrainDeck = []Terrain{
	TerrainDesert,
	TerrainHills, TerrainHills, TerrainHills,
	TerrainMountains, TerrainMountains, TerrainMountains,
	TerrainForest, TerrainForest, TerrainForest, TerrainForest,
	TerrainPasture, TerrainPasture, TerrainPasture, TerrainPasture,
	TerrainFields, TerrainFields, TerrainFields, TerrainFields,
}

// numberDeck is the canonical 18-token number multiset (no 7)
var numberDeck = []int{2, 3, 3, 4, 4, 5, 5, 6, 6, 8, 8, 9, 9, 10, 10, 11, 11, 12}

// portDeck is the canonical port type multiset: four generic 3:1 ports and
// one 2:1 port per resource.
var portDeck = []PortType{
	PortGeneric, PortGeneric, PortGeneric, PortGeneric,
	PortBrick, PortLumber, PortOre, PortGrain, PortWool,
}

// portEdgeSlots selects which of the twelve coastal edges carry a port. The
// positions are fixed; only the types are shuffled over them.
var portEdgeSlots = []int{0, 1, 2, 4, 5, 6, 8, 9, 10}

// Generate produces a random standard board: 19 hexes in spiral order around
// the origin, shuffled terrain and number tokens, nine ports, robber on the
// desert. Generation retries until no two 6/8 tokens are adjacent; after
// maxShuffleAttempts the last layout is returned with Balanced set to false.
func Generate(rng RNG) *Board {
	coords := hexgrid.Spiral(hexgrid.Axial{}, BoardRadius)

	b := &Board{Balanced: true}

	terrains := make([]Terrain, len(terrainDeck))
	numbers := make([]int, len(numberDeck))

	for attempt := 0; attempt < maxShuffleAttempts; attempt++ {
		copy(terrains, terrainDeck)
		copy(numbers, numberDeck)
		rng.Shuffle(len(terrains), func(i, j int) { terrains[i], terrains[j] = terrains[j], terrains[i] })
		rng.Shuffle(len(numbers), func(i, j int) { numbers[i], numbers[j] = numbers[j], numbers[i] })

		b.Tiles = make(map[string]*Tile, len(coords))
		b.TileOrder = make([]string, 0, len(coords))

		next := 0
		for i, coord := range coords {
			tile := &Tile{
				ID:      hexgrid.HexID(coord),
				Coord:   coord,
				Terrain: terrains[i],
			}
			if tile.Terrain != TerrainDesert {
				tile.NumberToken = numbers[next]
				next++
			}
			b.Tiles[tile.ID] = tile
			b.TileOrder = append(b.TileOrder, tile.ID)
		}

		if highValueTokensSeparated(b) {
			b.Balanced = true
			break
		}
		b.Balanced = false
	}

	b.buildAdjacency()
	b.placePorts(rng)

	// The robber starts on the desert.
	for _, id := range b.TileOrder {
		if b.Tiles[id].Terrain == TerrainDesert {
			b.RobberHex = id
			break
		}
	}

	return b
}

// highValueTokensSeparated checks that no two tiles with a 6 or 8 token are
// cube-adjacent.
func highValueTokensSeparated(b *Board) bool {
	var hot []*Tile
	for _, id := range b.TileOrder {
		tile := b.Tiles[id]
		if tile.NumberToken == 6 || tile.NumberToken == 8 {
			hot = append(hot, tile)
		}
	}

	for i := 0; i < len(hot); i++ {
		for j := i + 1; j < len(hot); j++ {
			if hexgrid.Distance(hot[i].Coord, hot[j].Coord) == 1 {
				return false
			}
		}
	}
	return true
}

// placePorts puts nine ports on fixed coastal edges and shuffles the port
// types over those positions.
func (b *Board) placePorts(rng RNG) {
	ring := hexgrid.Ring(hexgrid.Axial{}, BoardRadius)

	types := make([]PortType, len(portDeck))
	copy(types, portDeck)
	rng.Shuffle(len(types), func(i, j int) { types[i], types[j] = types[j], types[i] })

	b.Ports = make([]Port, 0, len(portEdgeSlots))
	for i, slot := range portEdgeSlots {
		h1 := hexgrid.HexID(ring[slot])
		h2 := hexgrid.HexID(ring[(slot+1)%len(ring)])
		edgeID, err := hexgrid.EdgeID(h1, h2)
		if err != nil {
			continue
		}
		edge := b.Edges[edgeID]
		if edge == nil {
			continue
		}
		b.Ports = append(b.Ports, Port{
			ID:        fmt.Sprintf("port_%d", i+1),
			Type:      types[i],
			VertexIDs: edge.VertexIDs,
			Angle:     slot * 30,
		})
	}
}

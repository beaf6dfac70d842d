package board

import (
	"sort"

	"hextrade/internal/hexgrid"
	"hextrade/pkg/protocol"
)

// Terrain identifies the landscape of a hex tile
type Terrain string

// Terrain types
const (
	TerrainDesert    Terrain = "desert"
	TerrainHills     Terrain = "hills"     // brick
	TerrainMountains Terrain = "mountains" // ore
	TerrainForest    Terrain = "forest"    // lumber
	TerrainPasture   Terrain = "pasture"   // wool
	TerrainFields    Terrain = "fields"    // grain
)

// TerrainResource returns the resource a terrain produces. The desert
// produces nothing.
func TerrainResource(t Terrain) (protocol.Resource, bool) {
	switch t {
	case TerrainHills:
		return protocol.Brick, true
	case TerrainMountains:
		return protocol.Ore, true
	case TerrainForest:
		return protocol.Lumber, true
	case TerrainPasture:
		return protocol.Wool, true
	case TerrainFields:
		return protocol.Grain, true
	}
	return "", false
}

// PortType identifies a port's exchange type
type PortType string

// Port types: one generic 3:1 type plus a 2:1 type per resource
const (
	PortGeneric PortType = "generic"
	PortBrick   PortType = "brick"
	PortLumber  PortType = "lumber"
	PortOre     PortType = "ore"
	PortGrain   PortType = "grain"
	PortWool    PortType = "wool"
)

// PortResource returns the resource a 2:1 port trades, if any
func PortResource(t PortType) (protocol.Resource, bool) {
	switch t {
	case PortBrick, PortLumber, PortOre, PortGrain, PortWool:
		return protocol.Resource(t), true
	}
	return "", false
}

// Tile is a single hex on the board
type Tile struct {
	ID          string        `json:"id"`
	Coord       hexgrid.Axial `json:"coord"`
	Terrain     Terrain       `json:"terrain"`
	NumberToken int           `json:"number_token"` // zero on the desert
}

// Vertex is a corner where two or three board hexes meet
type Vertex struct {
	ID                string   `json:"id"`
	HexIDs            []string `json:"hex_ids"`
	EdgeIDs           []string `json:"edge_ids"`
	AdjacentVertexIDs []string `json:"adjacent_vertex_ids"`
}

// Edge is a side shared by two board hexes
type Edge struct {
	ID        string    `json:"id"`
	HexIDs    [2]string `json:"hex_ids"`
	VertexIDs [2]string `json:"vertex_ids"`
}

// Port is a trade location on a coastal edge
type Port struct {
	ID        string    `json:"id"`
	Type      PortType  `json:"type"`
	VertexIDs [2]string `json:"vertex_ids"`
	Angle     int       `json:"angle"`
}

// Board is the full hex board as flat lookup tables keyed by derived string
// IDs. Adjacencies are computed once at construction.
type Board struct {
	Tiles     map[string]*Tile   `json:"tiles"`
	TileOrder []string           `json:"tile_order"` // canonical spiral order
	Vertices  map[string]*Vertex `json:"vertices"`
	Edges     map[string]*Edge   `json:"edges"`
	Ports     []Port             `json:"ports"`
	RobberHex string             `json:"robber_hex"`
	Balanced  bool               `json:"balanced"` // false if the 6/8 constraint could not be met

	// hexVertices maps each tile to the IDs of its corners, for production
	// and robber adjacency lookups.
	hexVertices map[string][]string
}

// Tile returns a tile by hex ID, or nil
func (b *Board) Tile(id string) *Tile {
	return b.Tiles[id]
}

// Vertex returns a vertex by ID, or nil
func (b *Board) Vertex(id string) *Vertex {
	return b.Vertices[id]
}

// Edge returns an edge by ID, or nil
func (b *Board) Edge(id string) *Edge {
	return b.Edges[id]
}

// HexVertexIDs returns the IDs of the vertices on a tile's corners
func (b *Board) HexVertexIDs(hexID string) []string {
	return b.hexVertices[hexID]
}

// buildAdjacency derives the vertex and edge tables from the tile set
func (b *Board) buildAdjacency() {
	b.Vertices = make(map[string]*Vertex)
	b.Edges = make(map[string]*Edge)
	b.hexVertices = make(map[string][]string)

	// Edges: every pair of adjacent on-board hexes shares one.
	for _, hexID := range b.TileOrder {
		tile := b.Tiles[hexID]
		for _, n := range tile.Coord.Neighbors() {
			nID := hexgrid.HexID(n)
			if b.Tiles[nID] == nil {
				continue
			}
			edgeID, err := hexgrid.EdgeID(hexID, nID)
			if err != nil || b.Edges[edgeID] != nil {
				continue
			}
			hexes, _ := hexgrid.ParseEdgeID(edgeID)
			b.Edges[edgeID] = &Edge{ID: edgeID, HexIDs: hexes}
		}
	}

	// Vertices: each corner of a hex is the meeting point of the hex and two
	// consecutive neighbors. Corners touching fewer than two board hexes are
	// not addressable.
	for _, hexID := range b.TileOrder {
		tile := b.Tiles[hexID]
		neighbors := tile.Coord.Neighbors()
		for k := 0; k < hexgrid.NumDirections; k++ {
			corner := []string{hexID}
			for _, n := range []hexgrid.Axial{neighbors[k], neighbors[(k+1)%hexgrid.NumDirections]} {
				nID := hexgrid.HexID(n)
				if b.Tiles[nID] != nil {
					corner = append(corner, nID)
				}
			}
			if len(corner) < 2 {
				continue
			}
			vertexID, err := hexgrid.VertexID(corner)
			if err != nil || b.Vertices[vertexID] != nil {
				continue
			}
			hexes, _ := hexgrid.ParseVertexID(vertexID)
			b.Vertices[vertexID] = &Vertex{ID: vertexID, HexIDs: hexes}
		}
	}

	// Vertex -> incident edges, and hex -> corner vertices.
	for _, v := range b.Vertices {
		for i := 0; i < len(v.HexIDs); i++ {
			for j := i + 1; j < len(v.HexIDs); j++ {
				edgeID, err := hexgrid.EdgeID(v.HexIDs[i], v.HexIDs[j])
				if err != nil || b.Edges[edgeID] == nil {
					continue
				}
				v.EdgeIDs = append(v.EdgeIDs, edgeID)
			}
		}
		sort.Strings(v.EdgeIDs)
		for _, h := range v.HexIDs {
			b.hexVertices[h] = append(b.hexVertices[h], v.ID)
		}
	}
	for _, ids := range b.hexVertices {
		sort.Strings(ids)
	}

	// Edge -> endpoint vertices: the two corners of the shared side. Each is
	// the edge's hex pair plus one on-board common neighbor, or the bare pair
	// on the coast.
	for _, e := range b.Edges {
		endpoints := b.edgeEndpoints(e)
		copy(e.VertexIDs[:], endpoints)
	}

	// Vertex adjacency follows from edge endpoints.
	adjacent := make(map[string]map[string]bool)
	for _, e := range b.Edges {
		u, w := e.VertexIDs[0], e.VertexIDs[1]
		if adjacent[u] == nil {
			adjacent[u] = make(map[string]bool)
		}
		if adjacent[w] == nil {
			adjacent[w] = make(map[string]bool)
		}
		adjacent[u][w] = true
		adjacent[w][u] = true
	}
	for id, v := range b.Vertices {
		for other := range adjacent[id] {
			v.AdjacentVertexIDs = append(v.AdjacentVertexIDs, other)
		}
		sort.Strings(v.AdjacentVertexIDs)
	}
}

// edgeEndpoints finds the two vertices at the ends of an edge
func (b *Board) edgeEndpoints(e *Edge) []string {
	a, _ := hexgrid.ParseHexID(e.HexIDs[0])
	c, _ := hexgrid.ParseHexID(e.HexIDs[1])

	neighborSet := make(map[hexgrid.Axial]bool)
	for _, n := range a.Neighbors() {
		neighborSet[n] = true
	}

	endpoints := make([]string, 0, 2)
	for _, n := range c.Neighbors() {
		if !neighborSet[n] {
			continue
		}
		// n is a common neighbor of both edge hexes
		corner := []string{e.HexIDs[0], e.HexIDs[1]}
		if b.Tiles[hexgrid.HexID(n)] != nil {
			corner = append(corner, hexgrid.HexID(n))
		}
		vertexID, err := hexgrid.VertexID(corner)
		if err != nil {
			continue
		}
		if b.Vertices[vertexID] != nil && !contains(endpoints, vertexID) {
			endpoints = append(endpoints, vertexID)
		}
	}
	sort.Strings(endpoints)
	return endpoints
}

// VerticesAdjacent reports whether two vertices share an edge
func (b *Board) VerticesAdjacent(a, c string) bool {
	v := b.Vertices[a]
	if v == nil {
		return false
	}
	return contains(v.AdjacentVertexIDs, c)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

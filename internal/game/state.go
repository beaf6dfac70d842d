package game

import (
	"time"

	"github.com/google/uuid"

	"hextrade/internal/board"
	"hextrade/pkg/protocol"
)

// Status is the coarse lifecycle state of a game
type Status string

// Game status values
const (
	StatusWaiting   Status = "waiting"
	StatusSetup     Status = "setup"
	StatusPlaying   Status = "playing"
	StatusFinished  Status = "finished"
	StatusAbandoned Status = "abandoned"
)

// Phase is the top-level game phase
type Phase string

// Game phases
const (
	PhaseRollForOrder Phase = "roll_for_order"
	PhaseSetupFirst   Phase = "setup_first"
	PhaseSetupSecond  Phase = "setup_second"
	PhasePlaying      Phase = "playing"
	PhaseFinished     Phase = "finished"
)

// TurnPhase is the sub-phase within a playing turn
type TurnPhase string

// Turn phases
const (
	TurnPreRoll      TurnPhase = "pre_roll"
	TurnMain         TurnPhase = "main"
	TurnDiscard      TurnPhase = "discard"
	TurnRobberMove   TurnPhase = "robber_move"
	TurnRobberSteal  TurnPhase = "robber_steal"
	TurnRoadBuilding TurnPhase = "road_building"
)

// Color is a player color, unique per game
type Color string

// Player colors
const (
	ColorRed    Color = "red"
	ColorBlue   Color = "blue"
	ColorOrange Color = "orange"
	ColorWhite  Color = "white"
)

// Colors returns the four player colors in assignment order
func Colors() []Color {
	return []Color{ColorRed, ColorBlue, ColorOrange, ColorWhite}
}

// ValidColor reports whether c is one of the four player colors
func ValidColor(c Color) bool {
	switch c {
	case ColorRed, ColorBlue, ColorOrange, ColorWhite:
		return true
	}
	return false
}

// BuildingType distinguishes settlements from cities
type BuildingType string

// Building types
const (
	BuildingSettlement BuildingType = "settlement"
	BuildingCity       BuildingType = "city"
)

// Building occupies a vertex
type Building struct {
	VertexID string       `json:"vertex_id"`
	PlayerID string       `json:"player_id"`
	Type     BuildingType `json:"type"`
}

// DevCardType identifies a development card variant
type DevCardType string

// Development card types
const (
	CardKnight       DevCardType = "knight"
	CardVictoryPoint DevCardType = "victory_point"
	CardRoadBuilding DevCardType = "road_building"
	CardYearOfPlenty DevCardType = "year_of_plenty"
	CardMonopoly     DevCardType = "monopoly"
)

// DevCard is a development card in a player's hand
type DevCard struct {
	ID              string      `json:"id"`
	Type            DevCardType `json:"type"`
	PurchasedOnTurn int         `json:"purchased_on_turn"`
	Played          bool        `json:"played"`
}

// Piece limits per player
const (
	MaxSettlements = 5
	MaxCities      = 4
	MaxRoads       = 15
)

// BankSupply is the bank's starting count per resource
const BankSupply = 19

// WinningVictoryPoints is the victory threshold
const WinningVictoryPoints = 10

// DiceRoll is the outcome of a two-die roll
type DiceRoll struct {
	Die1 int `json:"die1"`
	Die2 int `json:"die2"`
}

// Total returns the sum of both dice
func (d DiceRoll) Total() int {
	return d.Die1 + d.Die2
}

// Player is one seat in the game. Players are never removed mid-game;
// disconnected players keep their placements.
type Player struct {
	ID                string                 `json:"id"`
	UserID            string                 `json:"user_id"`
	Username          string                 `json:"username"`
	Color             Color                  `json:"color"`
	Resources         protocol.ResourceCount `json:"resources"`
	DevCards          []*DevCard             `json:"dev_cards"`
	Settlements       []string               `json:"settlements"` // vertex IDs
	Cities            []string               `json:"cities"`      // vertex IDs
	Roads             []string               `json:"roads"`       // edge IDs
	KnightsPlayed     int                    `json:"knights_played"`
	LongestRoadLength int                    `json:"longest_road_length"`
	HasLongestRoad    bool                   `json:"has_longest_road"`
	HasLargestArmy    bool                   `json:"has_largest_army"`
	VictoryPoints     int                    `json:"victory_points"` // public VP only
	IsConnected       bool                   `json:"is_connected"`
}

// hiddenVictoryCards counts the player's victory-point cards
func (p *Player) hiddenVictoryCards() int {
	count := 0
	for _, c := range p.DevCards {
		if c.Type == CardVictoryPoint {
			count++
		}
	}
	return count
}

// TotalVictoryPoints is public VP plus hidden VP cards
func (p *Player) TotalVictoryPoints() int {
	return p.VictoryPoints + p.hiddenVictoryCards()
}

// TradeOffer is an open player-to-player trade proposal
type TradeOffer struct {
	ID         string                 `json:"id"`
	ProposerID string                 `json:"proposer_id"`
	TargetID   string                 `json:"target_id,omitempty"` // empty means open to all
	Offer      protocol.ResourceCount `json:"offer"`
	Request    protocol.ResourceCount `json:"request"`
	CreatedAt  time.Time              `json:"created_at"`
	ExpiresAt  time.Time              `json:"expires_at"`
}

// DefaultTradeTimeout is how long a trade proposal stays open
const DefaultTradeTimeout = 60 * time.Second

// Seat describes one player joining a new game
type Seat struct {
	PlayerID string
	UserID   string
	Username string
	Color    Color
}

// Game is the complete authoritative state of one game. All mutation happens
// through the owning actor's goroutine; the struct itself carries no locking.
type Game struct {
	ID                    string                 `json:"id"`
	Code                  string                 `json:"code"`
	Status                Status                 `json:"status"`
	Phase                 Phase                  `json:"phase"`
	TurnPhase             TurnPhase              `json:"turn_phase,omitempty"`
	Board                 *board.Board           `json:"board"`
	Players               map[string]*Player     `json:"players"`
	Buildings             map[string]*Building   `json:"buildings"` // vertexID -> building
	Roads                 map[string]string      `json:"roads"`     // edgeID -> playerID
	SeatingOrder          []string               `json:"seating_order"`
	TurnOrder             []string               `json:"turn_order"`
	CurrentPlayerIndex    int                    `json:"current_player_index"`
	TurnNumber            int                    `json:"turn_number"`
	LastDiceRoll          *DiceRoll              `json:"last_dice_roll,omitempty"`
	Bank                  protocol.ResourceCount `json:"bank"`
	DevDeck               []DevCardType          `json:"dev_deck"` // server-side only; never sent to clients
	OrderRolls            map[string]*DiceRoll   `json:"order_rolls"`
	SetupSettlement       string                 `json:"setup_settlement,omitempty"` // vertex awaiting its setup road
	ActiveTrade           *TradeOffer            `json:"active_trade,omitempty"`
	PendingDiscards       map[string]int         `json:"pending_discards,omitempty"`
	StealCandidates       []string               `json:"steal_candidates,omitempty"`
	RoadBuildingRoadsLeft int                    `json:"road_building_roads_left"`
	DevCardPlayed         bool                   `json:"dev_card_played"`  // a non-VP card was played this turn
	ReturnToPreRoll       bool                   `json:"return_to_pre_roll"` // knight played before rolling
	LongestRoadHolder     string                 `json:"longest_road_holder,omitempty"`
	LongestRoadLength     int                    `json:"longest_road_length"`
	LargestArmyHolder     string                 `json:"largest_army_holder,omitempty"`
	LargestArmySize       int                    `json:"largest_army_size"`
	WinnerID              string                 `json:"winner_id,omitempty"`
	CreatedAt             time.Time              `json:"created_at"`
	UpdatedAt             time.Time              `json:"updated_at"`
	FinishedAt            time.Time              `json:"finished_at,omitempty"`

	rng RNG
}

// NewGame constructs a game for the given seats: generated board, full bank,
// shuffled development deck, phase roll_for_order. Seat order is the seating
// order used for the order roll.
func NewGame(code string, seats []Seat, rng RNG) (*Game, error) {
	if len(seats) < 2 || len(seats) > 4 {
		return nil, errInvalidPayload("a game needs 2-4 players, got %d", len(seats))
	}

	g := &Game{
		ID:         uuid.New().String(),
		Code:       code,
		Status:     StatusSetup,
		Phase:      PhaseRollForOrder,
		Board:      board.Generate(rng),
		Players:    make(map[string]*Player, len(seats)),
		Buildings:  make(map[string]*Building),
		Roads:      make(map[string]string),
		Bank:       protocol.NewResourceCount(),
		OrderRolls: make(map[string]*DiceRoll),
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
		rng:        rng,
	}

	for _, r := range protocol.Resources() {
		g.Bank[r] = BankSupply
	}

	g.DevDeck = newDevDeck(rng)

	seen := make(map[Color]bool)
	for _, seat := range seats {
		if !ValidColor(seat.Color) || seen[seat.Color] {
			return nil, errInvalidPayload("invalid or duplicate color %q", seat.Color)
		}
		seen[seat.Color] = true
		g.Players[seat.PlayerID] = &Player{
			ID:          seat.PlayerID,
			UserID:      seat.UserID,
			Username:    seat.Username,
			Color:       seat.Color,
			Resources:   protocol.NewResourceCount(),
			IsConnected: true,
		}
		g.SeatingOrder = append(g.SeatingOrder, seat.PlayerID)
	}

	return g, nil
}

// CurrentPlayerID returns the active player, or empty before the order roll
func (g *Game) CurrentPlayerID() string {
	if len(g.TurnOrder) == 0 || g.CurrentPlayerIndex < 0 || g.CurrentPlayerIndex >= len(g.TurnOrder) {
		return ""
	}
	return g.TurnOrder[g.CurrentPlayerIndex]
}

// player looks up a player or fails with NotInGame
func (g *Game) player(playerID string) (*Player, *GameError) {
	p := g.Players[playerID]
	if p == nil {
		return nil, errNotInGame(playerID)
	}
	return p, nil
}

// requireCurrent gates an action on it being the player's turn
func (g *Game) requireCurrent(playerID string) (*Player, *GameError) {
	p, err := g.player(playerID)
	if err != nil {
		return nil, err
	}
	if g.CurrentPlayerID() != playerID {
		return nil, errNotYourTurn()
	}
	return p, nil
}

// requirePhase gates an action on the game phase
func (g *Game) requirePhase(phases ...Phase) *GameError {
	for _, phase := range phases {
		if g.Phase == phase {
			return nil
		}
	}
	return errWrongPhase(g.Phase)
}

// requireTurnPhase gates an action on the turn phase
func (g *Game) requireTurnPhase(phases ...TurnPhase) *GameError {
	for _, tp := range phases {
		if g.TurnPhase == tp {
			return nil
		}
	}
	return errWrongTurnPhase(g.TurnPhase)
}

// SetConnected updates a player's connection flag
func (g *Game) SetConnected(playerID string, connected bool) ([]Event, error) {
	p, err := g.player(playerID)
	if err != nil {
		return nil, err
	}
	if p.IsConnected == connected {
		return nil, nil
	}
	p.IsConnected = connected
	g.UpdatedAt = time.Now()

	msgType := protocol.MsgPlayerReconnected
	if !connected {
		msgType = protocol.MsgPlayerDisconnected
	}
	return []Event{broadcast(msgType, protocol.PlayerConnectionPayload{PlayerID: playerID})}, nil
}

// AllDisconnected reports whether every player has dropped
func (g *Game) AllDisconnected() bool {
	for _, p := range g.Players {
		if p.IsConnected {
			return false
		}
	}
	return true
}

// MarkAbandoned flags a game whose players are all gone
func (g *Game) MarkAbandoned() {
	if g.Status != StatusFinished {
		g.Status = StatusAbandoned
		g.UpdatedAt = time.Now()
	}
}

// buildingOwner returns the player owning a building at the vertex, or empty
func (g *Game) buildingOwner(vertexID string) string {
	if b := g.Buildings[vertexID]; b != nil {
		return b.PlayerID
	}
	return ""
}

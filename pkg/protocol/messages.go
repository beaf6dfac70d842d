package protocol

import (
	"encoding/json"
	"time"
)

// MessageType defines the type of message being sent
type MessageType string

// Message types
const (
	// Connection messages
	MsgConnect    MessageType = "CONNECT"
	MsgDisconnect MessageType = "DISCONNECT"
	MsgPing       MessageType = "PING"
	MsgPong       MessageType = "PONG"
	MsgConnected  MessageType = "CONNECTION_ESTABLISHED"

	// Lobby intents
	MsgCreateLobby MessageType = "CREATE_LOBBY"
	MsgJoinLobby   MessageType = "JOIN_LOBBY"
	MsgLeaveLobby  MessageType = "LEAVE_LOBBY"
	MsgSetReady    MessageType = "SET_READY"
	MsgSetColor    MessageType = "SET_COLOR"
	MsgStartGame   MessageType = "START_GAME"

	// Lobby events
	MsgLobbyCreated   MessageType = "LOBBY_CREATED"
	MsgLobbyUpdated   MessageType = "LOBBY_UPDATED"
	MsgLobbyLeft      MessageType = "LOBBY_LEFT"
	MsgLobbyCountdown MessageType = "LOBBY_COUNTDOWN"

	// Game intents
	MsgRollForOrder MessageType = "ROLL_FOR_ORDER"
	MsgRollDice     MessageType = "ROLL_DICE"
	MsgEndTurn      MessageType = "END_TURN"
	MsgRequestState MessageType = "REQUEST_STATE"

	// Build intents
	MsgBuildSettlement MessageType = "BUILD_SETTLEMENT"
	MsgBuildCity       MessageType = "BUILD_CITY"
	MsgBuildRoad       MessageType = "BUILD_ROAD"
	MsgBuyDevCard      MessageType = "BUY_DEV_CARD"

	// Robber intents
	MsgMoveRobber       MessageType = "MOVE_ROBBER"
	MsgStealResource    MessageType = "STEAL_RESOURCE"
	MsgDiscardResources MessageType = "DISCARD_RESOURCES"

	// Trade intents
	MsgProposeTrade MessageType = "PROPOSE_TRADE"
	MsgAcceptTrade  MessageType = "ACCEPT_TRADE"
	MsgRejectTrade  MessageType = "REJECT_TRADE"
	MsgCancelTrade  MessageType = "CANCEL_TRADE"
	MsgBankTrade    MessageType = "BANK_TRADE"
	MsgPortTrade    MessageType = "PORT_TRADE"

	// Development card intents
	MsgPlayKnight       MessageType = "PLAY_KNIGHT"
	MsgPlayRoadBuilding MessageType = "PLAY_ROAD_BUILDING"
	MsgPlayYearOfPlenty MessageType = "PLAY_YEAR_OF_PLENTY"
	MsgPlayMonopoly     MessageType = "PLAY_MONOPOLY"

	// Chat
	MsgChatMessage MessageType = "CHAT_MESSAGE"

	// Game events
	MsgGameState          MessageType = "GAME_STATE"
	MsgGameStarted        MessageType = "GAME_STARTED"
	MsgGameEnded          MessageType = "GAME_ENDED"
	MsgTurnChanged        MessageType = "TURN_CHANGED"
	MsgPhaseChanged       MessageType = "PHASE_CHANGED"
	MsgOrderRollResult    MessageType = "ROLL_FOR_ORDER_RESULT"
	MsgDiceRolled         MessageType = "DICE_ROLLED"
	MsgResourcesGranted   MessageType = "RESOURCES_DISTRIBUTED"
	MsgSettlementPlaced   MessageType = "SETTLEMENT_PLACED"
	MsgCityPlaced         MessageType = "CITY_PLACED"
	MsgRoadPlaced         MessageType = "ROAD_PLACED"
	MsgRobberActivated    MessageType = "ROBBER_ACTIVATED"
	MsgRobberMoved        MessageType = "ROBBER_MOVED"
	MsgResourceStolen     MessageType = "RESOURCE_STOLEN"
	MsgDiscardRequired    MessageType = "DISCARD_REQUIRED"
	MsgPlayerDiscarded    MessageType = "PLAYER_DISCARDED"
	MsgTradeProposed      MessageType = "TRADE_PROPOSED"
	MsgTradeAccepted      MessageType = "TRADE_ACCEPTED"
	MsgTradeRejected      MessageType = "TRADE_REJECTED"
	MsgTradeCancelled     MessageType = "TRADE_CANCELLED"
	MsgTradeCompleted     MessageType = "TRADE_COMPLETED"
	MsgDevCardPurchased   MessageType = "DEV_CARD_PURCHASED"
	MsgDevCardPlayed      MessageType = "DEV_CARD_PLAYED"
	MsgLongestRoad        MessageType = "LONGEST_ROAD"
	MsgLargestArmy        MessageType = "LARGEST_ARMY"
	MsgPlayerDisconnected MessageType = "PLAYER_DISCONNECTED"
	MsgPlayerReconnected  MessageType = "PLAYER_RECONNECTED"

	// Error events
	MsgError      MessageType = "ERROR"
	MsgLobbyError MessageType = "LOBBY_ERROR"
	MsgBuildError MessageType = "BUILD_ERROR"
	MsgTradeError MessageType = "TRADE_ERROR"
)

// Error codes returned in error payloads
const (
	ErrNotInGame        = "NOT_IN_GAME"
	ErrNotYourTurn      = "NOT_YOUR_TURN"
	ErrWrongPhase       = "WRONG_PHASE"
	ErrWrongTurnPhase   = "WRONG_TURN_PHASE"
	ErrIllegalPlacement = "ILLEGAL_PLACEMENT"
	ErrCannotAfford     = "CANNOT_AFFORD"
	ErrPieceExhausted   = "PIECE_EXHAUSTED"
	ErrDeckEmpty        = "DECK_EMPTY"
	ErrBankShortage     = "BANK_SHORTAGE"
	ErrInvalidPayload   = "INVALID_PAYLOAD"
	ErrInvalidID        = "INVALID_ID"
	ErrLobbyFull        = "LOBBY_FULL"
	ErrColorTaken       = "COLOR_TAKEN"
	ErrCodeUnknown      = "CODE_UNKNOWN"
	ErrAlreadyStarted   = "ALREADY_STARTED"
	ErrNoActiveTrade    = "NO_ACTIVE_TRADE"
	ErrTradeConflict    = "TRADE_CONFLICT"
	ErrServerBusy       = "SERVER_BUSY"
	ErrInternal         = "INTERNAL_ERROR"
)

// Resource identifies one of the five tradable resource types
type Resource string

// Resource types
const (
	Brick  Resource = "brick"
	Lumber Resource = "lumber"
	Ore    Resource = "ore"
	Grain  Resource = "grain"
	Wool   Resource = "wool"
)

// Resources returns the five resource types in canonical order
func Resources() []Resource {
	return []Resource{Brick, Lumber, Ore, Grain, Wool}
}

// ValidResource reports whether r is one of the five resource types
func ValidResource(r Resource) bool {
	switch r {
	case Brick, Lumber, Ore, Grain, Wool:
		return true
	}
	return false
}

// ResourceCount maps resource types to non-negative card counts
type ResourceCount map[Resource]int

// NewResourceCount returns a count with all five resources at zero
func NewResourceCount() ResourceCount {
	rc := make(ResourceCount, 5)
	for _, r := range Resources() {
		rc[r] = 0
	}
	return rc
}

// Clone returns an independent copy of the count
func (rc ResourceCount) Clone() ResourceCount {
	out := make(ResourceCount, len(rc))
	for r, n := range rc {
		out[r] = n
	}
	return out
}

// Total returns the number of cards across all resources
func (rc ResourceCount) Total() int {
	total := 0
	for _, n := range rc {
		total += n
	}
	return total
}

// Add adds every count in other to rc
func (rc ResourceCount) Add(other ResourceCount) {
	for r, n := range other {
		rc[r] += n
	}
}

// Sub subtracts every count in other from rc
func (rc ResourceCount) Sub(other ResourceCount) {
	for r, n := range other {
		rc[r] -= n
	}
}

// Covers reports whether rc has at least the cards in other
func (rc ResourceCount) Covers(other ResourceCount) bool {
	for r, n := range other {
		if rc[r] < n {
			return false
		}
	}
	return true
}

// Valid reports whether all counts are non-negative and all keys are resources
func (rc ResourceCount) Valid() bool {
	for r, n := range rc {
		if !ValidResource(r) || n < 0 {
			return false
		}
	}
	return true
}

// Message represents a communication between client and server
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"timestamp"`
	SessionID string          `json:"session_id,omitempty"`
	GameCode  string          `json:"game_code,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// NewMessage creates a new message with a marshaled payload
func NewMessage(msgType MessageType, payload interface{}) *Message {
	msg := &Message{
		Type:      msgType,
		Timestamp: time.Now().Unix(),
	}
	if payload != nil {
		if data, err := json.Marshal(payload); err == nil {
			msg.Payload = data
		}
	}
	return msg
}

// SerializeMessage converts a message to JSON bytes
func SerializeMessage(msg *Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DeserializeMessage converts JSON bytes to a message
func DeserializeMessage(data []byte) (Message, error) {
	var msg Message
	err := json.Unmarshal(data, &msg)
	return msg, err
}

// ErrorPayload contains information about a rejected intent
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ConnectPayload identifies a connecting client
type ConnectPayload struct {
	PlayerID string `json:"player_id,omitempty"`
	Username string `json:"username"`
}

// ConnectedPayload carries the identity assigned to a connection
type ConnectedPayload struct {
	PlayerID  string `json:"player_id"`
	SessionID string `json:"session_id"`
}

// CreateLobbyPayload contains data to create a new lobby
type CreateLobbyPayload struct {
	Username   string `json:"username"`
	MaxPlayers int    `json:"max_players"`
}

// JoinLobbyPayload contains data to join an existing lobby
type JoinLobbyPayload struct {
	Code     string `json:"code"`
	Username string `json:"username"`
}

// SetReadyPayload marks the sender ready or not ready
type SetReadyPayload struct {
	Ready bool `json:"ready"`
}

// SetColorPayload requests a player color
type SetColorPayload struct {
	Color string `json:"color"`
}

// CountdownPayload announces the pre-game countdown
type CountdownPayload struct {
	Code    string `json:"code"`
	Seconds int    `json:"seconds"`
}

// BuildPayload addresses a vertex or edge for a placement
type BuildPayload struct {
	VertexID string `json:"vertex_id,omitempty"`
	EdgeID   string `json:"edge_id,omitempty"`
}

// MoveRobberPayload selects the robber's destination hex
type MoveRobberPayload struct {
	HexID string `json:"hex_id"`
}

// StealPayload selects the steal victim
type StealPayload struct {
	VictimID string `json:"victim_id"`
}

// DiscardPayload lists the cards a player gives up at the discard fence
type DiscardPayload struct {
	Resources ResourceCount `json:"resources"`
}

// ProposeTradePayload opens a trade with another player
type ProposeTradePayload struct {
	TargetID string        `json:"target_id,omitempty"`
	Offer    ResourceCount `json:"offer"`
	Request  ResourceCount `json:"request"`
}

// TradeActionPayload addresses an existing trade proposal
type TradeActionPayload struct {
	TradeID string `json:"trade_id"`
}

// MaritimeTradePayload trades with the bank or a port
type MaritimeTradePayload struct {
	Give    Resource `json:"give"`
	Receive Resource `json:"receive"`
}

// YearOfPlentyPayload nominates two resources from the bank
type YearOfPlentyPayload struct {
	First  Resource `json:"first"`
	Second Resource `json:"second"`
}

// MonopolyPayload names the monopolized resource
type MonopolyPayload struct {
	Resource Resource `json:"resource"`
}

// ChatPayload carries a chat message from a client
type ChatPayload struct {
	Text string `json:"text"`
}

// ChatMessagePayload is a chat message relayed to subscribers
type ChatMessagePayload struct {
	PlayerID string `json:"player_id"`
	Username string `json:"username"`
	Text     string `json:"text"`
	SentAt   int64  `json:"sent_at"`
}

// DiceRolledPayload announces a dice roll
type DiceRolledPayload struct {
	PlayerID string `json:"player_id"`
	Die1     int    `json:"die1"`
	Die2     int    `json:"die2"`
	Total    int    `json:"total"`
}

// OrderRollPayload announces one roll-for-order result
type OrderRollPayload struct {
	PlayerID  string   `json:"player_id"`
	Die1      int      `json:"die1"`
	Die2      int      `json:"die2"`
	Total     int      `json:"total"`
	TurnOrder []string `json:"turn_order,omitempty"` // set once everyone has rolled
}

// ResourcesGrantedPayload reports production after a roll
type ResourcesGrantedPayload struct {
	Roll    int                      `json:"roll"`
	Granted map[string]ResourceCount `json:"granted"` // playerID -> resources
}

// BuildingPlacedPayload announces a settlement or city placement
type BuildingPlacedPayload struct {
	PlayerID string `json:"player_id"`
	VertexID string `json:"vertex_id"`
}

// RoadPlacedPayload announces a road placement
type RoadPlacedPayload struct {
	PlayerID string `json:"player_id"`
	EdgeID   string `json:"edge_id"`
}

// RobberMovedPayload announces the robber's new hex
type RobberMovedPayload struct {
	PlayerID string   `json:"player_id"`
	HexID    string   `json:"hex_id"`
	Victims  []string `json:"victims,omitempty"` // eligible steal victims
}

// StolenPayload announces a completed steal. Resource is only present on the
// copies delivered to the thief and the victim.
type StolenPayload struct {
	ThiefID  string   `json:"thief_id"`
	VictimID string   `json:"victim_id"`
	Resource Resource `json:"resource,omitempty"`
}

// DiscardRequiredPayload lists players who must discard and how much
type DiscardRequiredPayload struct {
	Pending map[string]int `json:"pending"` // playerID -> card count
}

// PlayerDiscardedPayload announces that a player satisfied the discard fence
type PlayerDiscardedPayload struct {
	PlayerID string `json:"player_id"`
	Count    int    `json:"count"`
}

// TradeInfo describes a trade proposal
type TradeInfo struct {
	ID         string        `json:"id"`
	ProposerID string        `json:"proposer_id"`
	TargetID   string        `json:"target_id,omitempty"`
	Offer      ResourceCount `json:"offer"`
	Request    ResourceCount `json:"request"`
	ExpiresAt  int64         `json:"expires_at"`
}

// DevCardPurchasedPayload announces a purchased development card. Card is
// only present on the copy delivered to the buyer.
type DevCardPurchasedPayload struct {
	PlayerID  string       `json:"player_id"`
	DeckCount int          `json:"deck_count"`
	Card      *DevCardInfo `json:"card,omitempty"`
}

// DevCardPlayedPayload announces a played development card
type DevCardPlayedPayload struct {
	PlayerID string   `json:"player_id"`
	CardType string   `json:"card_type"`
	Resource Resource `json:"resource,omitempty"` // monopoly
}

// AchievementPayload announces a longest-road or largest-army change
type AchievementPayload struct {
	HolderID string `json:"holder_id,omitempty"` // empty when vacated
	Length   int    `json:"length,omitempty"`
	Size     int    `json:"size,omitempty"`
}

// TurnChangedPayload announces the next player's turn
type TurnChangedPayload struct {
	CurrentPlayerID string `json:"current_player_id"`
	TurnNumber      int    `json:"turn_number"`
}

// PhaseChangedPayload announces a phase or turn-phase transition
type PhaseChangedPayload struct {
	Phase     string `json:"phase"`
	TurnPhase string `json:"turn_phase,omitempty"`
}

// GameEndedPayload announces the winner
type GameEndedPayload struct {
	WinnerID string `json:"winner_id"`
}

// PlayerConnectionPayload announces a connect or disconnect
type PlayerConnectionPayload struct {
	PlayerID string `json:"player_id"`
}

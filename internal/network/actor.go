package network

import (
	"sync"
	"time"

	"hextrade/internal/database"
	"hextrade/internal/game"
	"hextrade/pkg/config"
	"hextrade/pkg/logger"
	"hextrade/pkg/protocol"
)

// Command mutates a game and returns the events to deliver
type Command func(g *game.Game) ([]game.Event, error)

// command is one queued unit of work with its reply channel
type command struct {
	run   Command
	reply chan error
}

// GameActor owns one game's state. All mutations flow through a bounded,
// strictly serialized command queue drained by a single goroutine, so every
// subscriber observes the same ordered event sequence.
type GameActor struct {
	Code string

	state    *game.Game
	commands chan command
	quit     chan struct{}
	stopOnce sync.Once

	sessions    *SessionManager
	store       database.GameStore
	cfg         config.GameConfig
	logger      *logger.ColoredLogger
	onDefunct   func(code string)

	subMutex    sync.RWMutex
	subscribers map[string]bool // playerIDs receiving events

	lastProgress time.Time
	emptySince   time.Time // first time all players were seen disconnected
}

// NewGameActor wraps a game in its actor and starts the processing loop.
// onDefunct is invoked once the game is finished and persisted, or
// abandoned past the abandonment window.
func NewGameActor(state *game.Game, sessions *SessionManager, store database.GameStore,
	cfg config.GameConfig, onDefunct func(code string)) *GameActor {

	a := &GameActor{
		Code:         state.Code,
		state:        state,
		commands:     make(chan command, cfg.CommandQueueSize),
		quit:         make(chan struct{}),
		sessions:     sessions,
		store:        store,
		cfg:          cfg,
		logger:       logger.GameLogger,
		onDefunct:    onDefunct,
		subscribers:  make(map[string]bool),
		lastProgress: time.Now(),
	}

	go a.run()
	return a
}

// Submit queues a command and waits for the actor to process it. A full
// queue refuses with SERVER_BUSY rather than blocking the gateway.
func (a *GameActor) Submit(run Command) error {
	cmd := command{run: run, reply: make(chan error, 1)}

	select {
	case a.commands <- cmd:
	default:
		return &game.GameError{Code: protocol.ErrServerBusy, Message: "game is too busy, try again"}
	}

	select {
	case err := <-cmd.reply:
		return err
	case <-a.quit:
		return &game.GameError{Code: protocol.ErrInternal, Message: "game is shutting down"}
	}
}

// Subscribe adds a player to the event stream and sends them a full snapshot
func (a *GameActor) Subscribe(playerID string) {
	a.subMutex.Lock()
	a.subscribers[playerID] = true
	a.subMutex.Unlock()

	a.Submit(func(g *game.Game) ([]game.Event, error) {
		a.sessions.SendToPlayer(playerID, protocol.MsgGameState, g.StatePayloadFor(playerID))
		return nil, nil
	})
}

// Unsubscribe removes a player from the event stream
func (a *GameActor) Unsubscribe(playerID string) {
	a.subMutex.Lock()
	delete(a.subscribers, playerID)
	a.subMutex.Unlock()
}

// Broadcast delivers a message to every subscriber outside the command
// queue. Used for traffic with no game semantics, like chat.
func (a *GameActor) Broadcast(msgType protocol.MessageType, payload interface{}) {
	a.subMutex.RLock()
	defer a.subMutex.RUnlock()
	for playerID := range a.subscribers {
		a.sessions.SendToPlayer(playerID, msgType, payload)
	}
}

// Stop terminates the actor loop
func (a *GameActor) Stop() {
	a.stopOnce.Do(func() { close(a.quit) })
}

// run drains the command queue and drives the periodic sweep
func (a *GameActor) run() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case cmd := <-a.commands:
			a.handle(cmd)
		case <-ticker.C:
			a.tick()
		case <-a.quit:
			return
		}
	}
}

// handle executes one command. Errors leave state untouched and go only to
// the submitter; successful commands fan their events out followed by fresh
// per-viewer snapshots.
func (a *GameActor) handle(cmd command) {
	wasFinished := a.state.Status == game.StatusFinished

	events, err := cmd.run(a.state)
	cmd.reply <- err
	if err != nil {
		return
	}

	a.deliver(events)
	if len(events) > 0 {
		a.broadcastState()
		a.lastProgress = time.Now()
	}

	if !wasFinished && a.state.Status == game.StatusFinished {
		a.persistFinished()
	}
}

// tick retires finished games, expires trades, reaps abandoned games and
// drives turn timeouts
func (a *GameActor) tick() {
	now := time.Now()

	// A finished game has been persisted by handle; retire it on the next tick.
	if a.state.Status == game.StatusFinished {
		if a.onDefunct != nil {
			a.onDefunct(a.Code)
		}
		a.Stop()
		return
	}

	if events := a.state.ExpireActiveTrade(now); len(events) > 0 {
		a.deliver(events)
		a.broadcastState()
	}

	// Abandonment: a game whose players are all gone for the whole window is
	// reaped.
	if a.state.AllDisconnected() {
		if a.emptySince.IsZero() {
			a.emptySince = now
		} else if now.Sub(a.emptySince) >= a.cfg.AbandonmentWindow {
			a.state.MarkAbandoned()
			a.logger.Info("Game %s abandoned, reaping", a.Code)
			if a.onDefunct != nil {
				a.onDefunct(a.Code)
			}
			a.Stop()
			return
		}
	} else {
		a.emptySince = time.Time{}
	}

	a.autoAdvance(now)
}

// persistFinished hands the finished game to the store
func (a *GameActor) persistFinished() {
	if a.store == nil {
		return
	}
	if err := a.store.SaveFinished(a.state); err != nil {
		a.logger.Error("Failed to persist finished game %s: %v", a.Code, err)
	}
}

// deliver fans events out to subscribers. Targeted events only reach their
// listed players.
func (a *GameActor) deliver(events []game.Event) {
	a.subMutex.RLock()
	defer a.subMutex.RUnlock()

	for _, event := range events {
		targets := event.To
		if targets == nil {
			for playerID := range a.subscribers {
				a.sessions.SendToPlayer(playerID, event.Type, event.Payload)
			}
			continue
		}
		for _, playerID := range targets {
			if a.subscribers[playerID] {
				a.sessions.SendToPlayer(playerID, event.Type, event.Payload)
			}
		}
	}
}

// broadcastState sends every subscriber their own view of the new state
func (a *GameActor) broadcastState() {
	a.subMutex.RLock()
	defer a.subMutex.RUnlock()

	for playerID := range a.subscribers {
		a.sessions.SendToPlayer(playerID, protocol.MsgGameState, a.state.StatePayloadFor(playerID))
	}
}

// autoAdvance nudges a stalled game past a disconnected player when a turn
// timeout is configured. One step per tick: discards are taken from the
// largest piles first (not at random), the robber lands on the first legal
// hex, then the turn ends.
func (a *GameActor) autoAdvance(now time.Time) {
	if a.cfg.TurnTimeout <= 0 || a.state.Status != game.StatusPlaying {
		return
	}
	if now.Sub(a.lastProgress) < a.cfg.TurnTimeout {
		return
	}

	g := a.state

	// Discard fence: satisfy pending discards of disconnected players.
	if g.TurnPhase == game.TurnDiscard {
		for playerID, count := range g.PendingDiscards {
			if g.Players[playerID].IsConnected {
				continue
			}
			a.runAuto(func(st *game.Game) ([]game.Event, error) {
				return st.Discard(playerID, autoDiscardPick(st.Players[playerID].Resources, count))
			})
			return
		}
		return
	}

	current := g.CurrentPlayerID()
	if current == "" || g.Players[current].IsConnected {
		return
	}

	switch g.TurnPhase {
	case game.TurnPreRoll:
		a.runAuto(func(st *game.Game) ([]game.Event, error) { return st.RollDice(current) })
	case game.TurnRobberMove:
		for _, hexID := range g.Board.TileOrder {
			if hexID != g.Board.RobberHex {
				a.runAuto(func(st *game.Game) ([]game.Event, error) { return st.MoveRobber(current, hexID) })
				break
			}
		}
	case game.TurnRobberSteal:
		if len(g.StealCandidates) > 0 {
			victim := g.StealCandidates[0]
			a.runAuto(func(st *game.Game) ([]game.Event, error) { return st.Steal(current, victim) })
		}
	case game.TurnMain:
		a.runAuto(func(st *game.Game) ([]game.Event, error) { return st.EndTurn(current) })
	}
}

// runAuto executes an auto-play step inline on the actor goroutine
func (a *GameActor) runAuto(run Command) {
	events, err := run(a.state)
	if err != nil {
		a.logger.Debug("Auto-advance step failed on game %s: %v", a.Code, err)
		return
	}
	a.deliver(events)
	a.broadcastState()
	a.lastProgress = time.Now()
}

// autoDiscardPick assembles a discard of the required size, taking from the
// largest piles first.
func autoDiscardPick(hand protocol.ResourceCount, count int) protocol.ResourceCount {
	pick := protocol.NewResourceCount()
	remaining := count
	for remaining > 0 {
		var best protocol.Resource
		bestLeft := 0
		for _, res := range protocol.Resources() {
			if left := hand[res] - pick[res]; left > bestLeft {
				best, bestLeft = res, left
			}
		}
		if bestLeft == 0 {
			break
		}
		pick[best]++
		remaining--
	}
	return pick
}

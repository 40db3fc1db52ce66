package buzzer

import (
	"time"

	"buzzergo/internal/common/clock"

	"go.uber.org/zap"
)

// BuzzMode selects how accepted buzzes are announced.
type BuzzMode string

const (
	// ModeLedger broadcasts the whole buzz order on every accepted buzz.
	ModeLedger BuzzMode = "ledger"
	// ModeFirst broadcasts only the first buzz of a round.
	ModeFirst BuzzMode = "first"
)

type Config struct {
	Registry *Registry
	Channel  Channel
	Archiver Archiver
	Clock    clock.Clock
	Mode     BuzzMode
}

// Engine is the single entry point for every room mutation. Each handler
// holds the target room's lock for its whole run, including the calls into
// the Channel, so two handlers on the same room never interleave.
type Engine struct {
	reg      *Registry
	ch       Channel
	archiver Archiver
	clock    clock.Clock
	mode     BuzzMode
}

func NewEngine(cfg *Config) (*Engine, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.Registry == nil {
		return nil, ErrNilRegistry
	}
	if cfg.Channel == nil {
		return nil, ErrNilChannel
	}
	e := &Engine{
		reg:      cfg.Registry,
		ch:       cfg.Channel,
		archiver: cfg.Archiver,
		clock:    cfg.Clock,
		mode:     cfg.Mode,
	}
	if e.archiver == nil {
		e.archiver = noopArchiver{}
	}
	if e.clock == nil {
		e.clock = &clock.DefaultClock{}
	}
	switch e.mode {
	case "":
		e.mode = ModeLedger
	case ModeLedger, ModeFirst:
	default:
		return nil, ErrInvalidBuzzMode
	}
	return e, nil
}

// Handle routes one inbound message to its handler and returns the effects
// that were applied to the channel.
func (e *Engine) Handle(in Inbound) []Effect {
	switch in.Kind {
	case KindCreate:
		return e.createRoom(in.ConnID)
	case KindJoin:
		return e.joinRoom(in.ConnID, in.RoomCode, in.PlayerName)
	case KindStart:
		return e.startGame(in.RoomCode)
	case KindBuzz:
		return e.buzz(in.ConnID, in.RoomCode)
	case KindNextRound:
		return e.nextRound(in.RoomCode)
	case KindDisconnect:
		return e.disconnect(in.ConnID)
	}
	zap.L().Debug("buzzer.unknown_inbound", zap.Int("kind", int(in.Kind)))
	return nil
}

// lockRoom returns the room locked, or false when it does not exist or was
// deleted while we waited for the lock.
func (e *Engine) lockRoom(code string) (*Room, bool) {
	room, ok := e.reg.GetRoom(code)
	if !ok {
		return nil, false
	}
	room.mu.Lock()
	if room.closed {
		room.mu.Unlock()
		return nil, false
	}
	return room, true
}

func (e *Engine) emit(effects []Effect) []Effect {
	Apply(e.ch, effects)
	return effects
}

func (e *Engine) createRoom(connID string) []Effect {
	code, err := e.reg.CreateRoom()
	if err != nil {
		zap.L().Warn("room_create_failed", zap.String("conn", connID), zap.Error(err))
		return e.emit([]Effect{sendTo(connID, EventError, ErrorBody{Error: err.Error()})})
	}

	room, ok := e.lockRoom(code)
	if !ok {
		return nil
	}
	defer room.mu.Unlock()

	zap.L().Info("room_created", zap.String("room", code), zap.String("conn", connID))
	return e.emit([]Effect{
		subscribe(connID, code),
		sendTo(connID, EventRoomCreated, RoomCreatedBody{RoomCode: code}),
	})
}

func (e *Engine) joinRoom(connID, code, name string) []Effect {
	room, ok := e.lockRoom(code)
	if !ok {
		zap.L().Debug("join_unknown_room", zap.String("room", code), zap.String("player", name))
		return e.emit([]Effect{sendTo(connID, EventError, ErrorBody{Error: msgRoomDoesNotExist})})
	}
	defer room.mu.Unlock()

	room.players = append(room.players, Player{ConnectionID: connID, Name: name})
	room.lastActivity = e.clock.Now()

	players := room.playerNames()
	zap.L().Info("player_joined",
		zap.String("room", code),
		zap.String("player", name),
		zap.Strings("players", players),
	)
	return e.emit([]Effect{
		subscribe(connID, code),
		broadcastTo(code, EventLobbyUpdate, LobbyUpdateBody{Players: players}),
	})
}

func (e *Engine) startGame(code string) []Effect {
	room, ok := e.lockRoom(code)
	if !ok {
		return nil
	}
	defer room.mu.Unlock()

	now := e.clock.Now()
	e.archive(room.closeRound(now))
	room.round++
	room.gameStarted = true
	room.lastActivity = now

	zap.L().Info("game_started", zap.String("room", code), zap.Int("round", room.round))
	return e.emit([]Effect{broadcastTo(code, EventGameStarted, nil)})
}

func (e *Engine) buzz(connID, code string) []Effect {
	room, ok := e.lockRoom(code)
	if !ok {
		return nil
	}
	defer room.mu.Unlock()

	if err := room.canBuzz(connID); err != nil {
		zap.L().Debug("buzz_ignored", zap.String("room", code), zap.String("conn", connID), zap.Error(err))
		return nil
	}
	player, _ := room.findPlayer(connID)
	room.buzzes = append(room.buzzes, BuzzEntry{ConnectionID: connID, Name: player.Name})
	room.lastActivity = e.clock.Now()

	zap.L().Info("buzz",
		zap.String("room", code),
		zap.String("player", player.Name),
		zap.Int("position", len(room.buzzes)),
	)

	if e.mode == ModeFirst {
		if len(room.buzzes) > 1 {
			return nil
		}
		return e.emit([]Effect{broadcastTo(code, EventFirstBuzz, FirstBuzzBody{Player: player.Name})})
	}
	return e.emit([]Effect{broadcastTo(code, EventBuzzUpdate, BuzzUpdateBody{BuzzOrder: room.ledger()})})
}

// canBuzz expects r.mu to be held.
func (r *Room) canBuzz(connID string) error {
	if !r.gameStarted {
		return ErrPreconditionNotMet
	}
	if _, known := r.findPlayer(connID); !known {
		return ErrPreconditionNotMet
	}
	if r.hasBuzzed(connID) {
		return ErrPreconditionNotMet
	}
	return nil
}

func (e *Engine) nextRound(code string) []Effect {
	room, ok := e.lockRoom(code)
	if !ok {
		return nil
	}
	defer room.mu.Unlock()

	now := e.clock.Now()
	e.archive(room.closeRound(now))
	room.round++
	room.lastActivity = now

	zap.L().Info("round_reset", zap.String("room", code), zap.Int("round", room.round))
	return e.emit([]Effect{broadcastTo(code, EventRoundReset, nil)})
}

// disconnect scans every room since there is no index from connection to
// room. Rooms the connection was not a member of are left untouched.
func (e *Engine) disconnect(connID string) []Effect {
	var all []Effect
	for _, room := range e.reg.snapshot() {
		all = append(all, e.leaveRoom(room, connID)...)
	}
	return all
}

func (e *Engine) leaveRoom(room *Room, connID string) []Effect {
	room.mu.Lock()
	defer room.mu.Unlock()
	if room.closed {
		return nil
	}

	left, ledgerChanged := room.removeConnection(connID)
	if len(left) == 0 {
		return nil
	}
	room.lastActivity = e.clock.Now()

	players := room.playerNames()
	zap.L().Info("player_left",
		zap.String("room", room.code),
		zap.String("player", left[0].Name),
		zap.Strings("players", players),
	)

	effects := []Effect{
		unsubscribe(connID, room.code),
		broadcastTo(room.code, EventLobbyUpdate, LobbyUpdateBody{Players: players}),
	}
	if ledgerChanged && e.mode == ModeLedger {
		effects = append(effects, broadcastTo(room.code, EventBuzzUpdate, BuzzUpdateBody{BuzzOrder: room.ledger()}))
	}
	return e.emit(effects)
}

// DeleteRoom removes a room on behalf of an administrator. Subscribers get a
// room_closed event and the broadcast group is dropped.
func (e *Engine) DeleteRoom(code string) error {
	room, ok := e.lockRoom(code)
	if !ok {
		return ErrRoomNotFound
	}
	defer room.mu.Unlock()
	return e.deleteLocked(room, "admin")
}

func (e *Engine) deleteLocked(room *Room, reason string) error {
	if err := e.reg.deleteRoom(room.code); err != nil {
		return err
	}
	room.closed = true
	e.archive(room.closeRound(e.clock.Now()))

	zap.L().Info("room_deleted", zap.String("room", room.code), zap.String("reason", reason))
	e.emit([]Effect{
		broadcastTo(room.code, EventRoomClosed, RoomClosedBody{RoomCode: room.code}),
		dropRoom(room.code),
	})
	return nil
}

// ReapIdle deletes rooms that have no players and no activity for at least
// ttl. It returns the deleted codes.
func (e *Engine) ReapIdle(ttl time.Duration) []string {
	now := e.clock.Now()
	var reaped []string
	for _, room := range e.reg.snapshot() {
		room.mu.Lock()
		if !room.closed && len(room.players) == 0 && now.Sub(room.lastActivity) >= ttl {
			if err := e.deleteLocked(room, "idle"); err == nil {
				reaped = append(reaped, room.code)
			}
		}
		room.mu.Unlock()
	}
	return reaped
}

func (e *Engine) ListRooms() []RoomInfo {
	return e.reg.ListRooms()
}

// Room returns a copy of the room's current state.
func (e *Engine) Room(code string) (RoomState, bool) {
	room, ok := e.reg.GetRoom(code)
	if !ok {
		return RoomState{}, false
	}
	return room.state(), true
}

func (e *Engine) archive(rec *RoundRecord) {
	if rec != nil {
		e.archiver.Record(*rec)
	}
}

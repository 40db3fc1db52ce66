package buzzer

import (
	"sync"
	"time"
)

// Player is one roster entry, keyed by its owning connection.
type Player struct {
	ConnectionID string
	Name         string
}

// Room holds the state of one game session. All fields are guarded by mu;
// only the engine's handlers lock and mutate a Room.
type Room struct {
	mu sync.Mutex

	code         string
	players      []Player
	gameStarted  bool
	buzzes       []BuzzEntry
	round        int
	lastActivity time.Time
	closed       bool
}

func newRoom(code string, now time.Time) *Room {
	return &Room{code: code, lastActivity: now}
}

// Code never changes after creation, so it is safe to read without the lock.
func (r *Room) Code() string { return r.code }

// RoomInfo is the admin listing view of a room.
type RoomInfo struct {
	Code        string `json:"code"`
	PlayerCount int    `json:"playerCount"`
	GameStarted bool   `json:"gameStarted"`
}

// RoomState is a copy of a room's state at one instant.
type RoomState struct {
	Code         string
	Players      []Player
	GameStarted  bool
	BuzzOrder    []BuzzEntry
	Round        int
	LastActivity time.Time
}

func (r *Room) info() RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RoomInfo{Code: r.code, PlayerCount: len(r.players), GameStarted: r.gameStarted}
}

func (r *Room) state() RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RoomState{
		Code:         r.code,
		Players:      append([]Player(nil), r.players...),
		GameStarted:  r.gameStarted,
		BuzzOrder:    r.ledger(),
		Round:        r.round,
		LastActivity: r.lastActivity,
	}
}

// The helpers below expect r.mu to be held.

func (r *Room) playerNames() []string {
	names := make([]string, 0, len(r.players))
	for _, p := range r.players {
		names = append(names, p.Name)
	}
	return names
}

func (r *Room) ledger() []BuzzEntry {
	out := make([]BuzzEntry, len(r.buzzes))
	copy(out, r.buzzes)
	return out
}

func (r *Room) findPlayer(connID string) (Player, bool) {
	for _, p := range r.players {
		if p.ConnectionID == connID {
			return p, true
		}
	}
	return Player{}, false
}

func (r *Room) hasBuzzed(connID string) bool {
	for _, b := range r.buzzes {
		if b.ConnectionID == connID {
			return true
		}
	}
	return false
}

// removeConnection drops every roster and ledger entry owned by connID.
func (r *Room) removeConnection(connID string) (left []Player, ledgerChanged bool) {
	kept := r.players[:0]
	for _, p := range r.players {
		if p.ConnectionID == connID {
			left = append(left, p)
			continue
		}
		kept = append(kept, p)
	}
	r.players = kept

	buzzes := r.buzzes[:0]
	for _, b := range r.buzzes {
		if b.ConnectionID == connID {
			ledgerChanged = true
			continue
		}
		buzzes = append(buzzes, b)
	}
	r.buzzes = buzzes
	return left, ledgerChanged
}

// closeRound clears the ledger and returns a record of it when it had entries.
func (r *Room) closeRound(now time.Time) *RoundRecord {
	var rec *RoundRecord
	if len(r.buzzes) > 0 {
		rec = &RoundRecord{
			RoomCode:  r.code,
			Round:     r.round,
			BuzzOrder: r.ledger(),
			ClosedAt:  now,
		}
	}
	r.buzzes = nil
	return rec
}

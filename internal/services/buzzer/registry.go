package buzzer

import (
	"sort"
	"sync"

	"buzzergo/internal/common/clock"
)

// Registry owns every live Room, keyed by code.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	codes *CodeGenerator
	clock clock.Clock
}

func NewRegistry(codes *CodeGenerator, clk clock.Clock) *Registry {
	if codes == nil {
		codes = NewCodeGenerator(DefaultAlphabet, DefaultCodeLength, nil)
	}
	if clk == nil {
		clk = &clock.DefaultClock{}
	}
	return &Registry{
		rooms: make(map[string]*Room),
		codes: codes,
		clock: clk,
	}
}

// CreateRoom allocates a fresh code and an empty room for it. Generation
// retries until the code is unused; it only gives up when every code of the
// configured alphabet and length is taken.
func (reg *Registry) CreateRoom() (string, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if len(reg.rooms) >= reg.codes.Capacity() {
		return "", ErrCodeSpaceExhausted
	}
	code := reg.codes.Generate()
	for {
		if _, taken := reg.rooms[code]; !taken {
			break
		}
		code = reg.codes.Generate()
	}
	reg.rooms[code] = newRoom(code, reg.clock.Now())
	return code, nil
}

func (reg *Registry) GetRoom(code string) (*Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	r, ok := reg.rooms[code]
	return r, ok
}

// deleteRoom only forgets the code. Rooms are deleted through the engine so
// subscribers are told and the room is marked closed.
func (reg *Registry) deleteRoom(code string) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, ok := reg.rooms[code]; !ok {
		return ErrRoomNotFound
	}
	delete(reg.rooms, code)
	return nil
}

// ListRooms returns one entry per room, sorted by code.
func (reg *Registry) ListRooms() []RoomInfo {
	rooms := reg.snapshot()
	out := make([]RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

// snapshot copies the room pointers so callers can lock rooms without
// holding the registry lock.
func (reg *Registry) snapshot() []*Room {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	rooms := make([]*Room, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		rooms = append(rooms, r)
	}
	return rooms
}

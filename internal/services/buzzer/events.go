package buzzer

// Inbound event names (client -> server).
const (
	EventCreateRoom = "create_room"
	EventJoinRoom   = "join_room"
	EventStartGame  = "start_game"
	EventBuzz       = "buzz"
	EventNextRound  = "next_round"
)

// Outbound event names (server -> client).
const (
	EventRoomCreated = "room_created"
	EventLobbyUpdate = "lobby_update"
	EventGameStarted = "game_started"
	EventBuzzUpdate  = "buzz_update"
	EventFirstBuzz   = "first_buzz"
	EventRoundReset  = "round_reset"
	EventRoomClosed  = "room_closed"
	EventError       = "error"
)

// Kind tags an Inbound message.
type Kind int

const (
	KindCreate Kind = iota + 1
	KindJoin
	KindStart
	KindBuzz
	KindNextRound
	KindDisconnect
)

func (k Kind) String() string {
	switch k {
	case KindCreate:
		return EventCreateRoom
	case KindJoin:
		return EventJoinRoom
	case KindStart:
		return EventStartGame
	case KindBuzz:
		return EventBuzz
	case KindNextRound:
		return EventNextRound
	case KindDisconnect:
		return "disconnect"
	}
	return "unknown"
}

// Inbound is one client action. ConnID is always set by the transport;
// RoomCode and PlayerName only where the event carries them.
type Inbound struct {
	Kind       Kind
	ConnID     string
	RoomCode   string
	PlayerName string
}

// ──────────────────────────── Outbound payloads ──────────────────────────────

type RoomCreatedBody struct {
	RoomCode string `json:"roomCode"`
}

type LobbyUpdateBody struct {
	Players []string `json:"players"`
}

// BuzzEntry is one accepted buzz. The connection id never leaves the server.
type BuzzEntry struct {
	ConnectionID string `json:"-"`
	Name         string `json:"name"`
}

type BuzzUpdateBody struct {
	BuzzOrder []BuzzEntry `json:"buzzOrder"`
}

type FirstBuzzBody struct {
	Player string `json:"player"`
}

type RoomClosedBody struct {
	RoomCode string `json:"roomCode"`
}

type ErrorBody struct {
	Error string `json:"error"`
}

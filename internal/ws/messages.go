package ws

import "encoding/json"

// Envelope wraps every WS frame.
type Envelope struct {
	Event string          `json:"event"`          // e.g. "join_room"
	Body  json.RawMessage `json:"body,omitempty"` // arbitrary JSON object
}

// ──────────────────────────── Request DTOs ───────────────────────────────────

type CreateRoomRequest struct{}

// JoinRoomRequest is the body for "join_room".
type JoinRoomRequest struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

// RoomRequest is the body for "start_game" and "next_round".
type RoomRequest struct {
	RoomCode string `json:"roomCode"`
}

// BuzzRequest is the body for "buzz". PlayerName is accepted for older
// clients but ignored: the buzzer is identified by its connection.
type BuzzRequest struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName,omitempty"`
}

// encode builds the outbound frame for event. A nil payload omits "body".
func encode(event string, payload any) ([]byte, error) {
	env := Envelope{Event: event}
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		env.Body = body
	}
	return json.Marshal(env)
}

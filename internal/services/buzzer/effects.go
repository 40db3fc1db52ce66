package buzzer

// Channel is the event channel the engine talks to. Implementations must
// not block: the engine calls them while holding a room lock so that the
// order of broadcasts matches the order of state changes.
type Channel interface {
	// Send delivers to a single connection.
	Send(connID, event string, payload any)
	// Broadcast delivers to every connection subscribed to the room.
	Broadcast(roomCode, event string, payload any)
	Subscribe(connID, roomCode string)
	Unsubscribe(connID, roomCode string)
	// DropRoom removes the room's broadcast group entirely.
	DropRoom(roomCode string)
}

// Op is what an Effect does to the channel.
type Op int

const (
	OpSend Op = iota + 1
	OpBroadcast
	OpSubscribe
	OpUnsubscribe
	OpDropRoom
)

// Effect is one outbound side effect produced by a handler.
type Effect struct {
	Op       Op
	ConnID   string
	RoomCode string
	Event    string
	Payload  any
}

func sendTo(connID, event string, payload any) Effect {
	return Effect{Op: OpSend, ConnID: connID, Event: event, Payload: payload}
}

func broadcastTo(roomCode, event string, payload any) Effect {
	return Effect{Op: OpBroadcast, RoomCode: roomCode, Event: event, Payload: payload}
}

func subscribe(connID, roomCode string) Effect {
	return Effect{Op: OpSubscribe, ConnID: connID, RoomCode: roomCode}
}

func unsubscribe(connID, roomCode string) Effect {
	return Effect{Op: OpUnsubscribe, ConnID: connID, RoomCode: roomCode}
}

func dropRoom(roomCode string) Effect {
	return Effect{Op: OpDropRoom, RoomCode: roomCode}
}

// Apply replays effects on ch in order.
func Apply(ch Channel, effects []Effect) {
	for _, ef := range effects {
		switch ef.Op {
		case OpSend:
			ch.Send(ef.ConnID, ef.Event, ef.Payload)
		case OpBroadcast:
			ch.Broadcast(ef.RoomCode, ef.Event, ef.Payload)
		case OpSubscribe:
			ch.Subscribe(ef.ConnID, ef.RoomCode)
		case OpUnsubscribe:
			ch.Unsubscribe(ef.ConnID, ef.RoomCode)
		case OpDropRoom:
			ch.DropRoom(ef.RoomCode)
		}
	}
}

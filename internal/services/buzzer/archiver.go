package buzzer

import "time"

// RoundRecord describes a finished round that had at least one buzz.
type RoundRecord struct {
	RoomCode  string      `json:"roomCode"`
	Round     int         `json:"round"`
	BuzzOrder []BuzzEntry `json:"buzzOrder"`
	ClosedAt  time.Time   `json:"closedAt"`
}

// Archiver receives finished rounds. Record is called under a room lock and
// must not block.
//
//go:generate mockgen -package=mocks -destination=mocks/mock_archiver.go buzzergo/internal/services/buzzer Archiver
type Archiver interface {
	Record(rec RoundRecord)
}

type noopArchiver struct{}

func (noopArchiver) Record(RoundRecord) {}

package uuid

import "github.com/google/uuid"

// UUID hands out connection identifiers.
type UUID interface {
	NewUUID() string
}

type DefaultUUID struct{}

func New() *DefaultUUID {
	return &DefaultUUID{}
}

// NewUUID returns a new random (v4) UUID string
func (d *DefaultUUID) NewUUID() string {
	return uuid.New().String()
}

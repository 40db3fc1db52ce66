package buzzer

// BuzzerError is a string error type for room engine errors
type BuzzerError string

// Error implements the error interface
func (e BuzzerError) Error() string {
	return string(e)
}

const (
	ErrRoomNotFound       BuzzerError = "room not found"
	ErrCodeSpaceExhausted BuzzerError = "room code space exhausted"
	ErrPreconditionNotMet BuzzerError = "precondition not met"
	ErrNilConfig          BuzzerError = "config cannot be nil"
	ErrNilRegistry        BuzzerError = "registry cannot be nil"
	ErrNilChannel         BuzzerError = "event channel cannot be nil"
	ErrInvalidBuzzMode    BuzzerError = "invalid buzz mode"
)

// msgRoomDoesNotExist is the text clients receive when joining an unknown code.
const msgRoomDoesNotExist = "Room does not exist"

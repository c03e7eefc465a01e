package objectruntime

// Code is a numeric abort code mirroring the on-chain dynamic-field and
// object-runtime native modules exactly, so abort codes surfaced to a
// caller match what a live node would report.
type Code int

const (
	ECodeFieldAlreadyExists Code = 0
	ECodeFieldDoesNotExist  Code = 1
	ECodeFieldTypeMismatch  Code = 2
	ECodeObjectNotFound     Code = 100
	ECodeObjectAlreadyExists Code = 101
	ECodeNotOwner           Code = 102
	ECodeObjectDeleted      Code = 103
	ECodeReceiveNotFound    Code = 104
)

// Error is the typed error every native operation returns on failure,
// carrying the stable numeric Code alongside a human-readable message.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

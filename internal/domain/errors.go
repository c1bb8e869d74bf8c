package domain

import "errors"

type Code string

const (
	CodeUnauthenticated  Code = "UNAUTHENTICATED"
	CodeValidationFailed Code = "VALIDATION_FAILED"
	CodeRoomNotFound     Code = "ROOM_NOT_FOUND"
	CodeRoomNotAvailable Code = "ROOM_NOT_AVAILABLE"
	CodeRoomFull         Code = "ROOM_FULL"
	CodeAlreadyInRoom    Code = "ALREADY_IN_ROOM"
	CodeNotInRoom        Code = "NOT_IN_ROOM"
	CodeGameNotActive    Code = "GAME_NOT_ACTIVE"
	CodeNotYourTurn      Code = "NOT_YOUR_TURN"
	CodeInvalidMove      Code = "INVALID_MOVE"
	CodeRateLimited      Code = "RATE_LIMITED"
	CodeInternal         Code = "INTERNAL"
)

// Error is a non-fatal outcome reported to the sender only.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return string(e.Code) + ": " + e.Message }

// Is matches any *Error with the same code, so a re-worded error still
// compares equal to its sentinel.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func NewError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

var (
	ErrUnauthenticated  = NewError(CodeUnauthenticated, "Authentication required")
	ErrValidationFailed = NewError(CodeValidationFailed, "Invalid payload")
	ErrRoomNotFound     = NewError(CodeRoomNotFound, "Room not found")
	ErrRoomNotAvailable = NewError(CodeRoomNotAvailable, "Room is not available")
	ErrRoomFull         = NewError(CodeRoomFull, "Room is full")
	ErrAlreadyInRoom    = NewError(CodeAlreadyInRoom, "You are already in this room")
	ErrNotInRoom        = NewError(CodeNotInRoom, "You are not in this room")
	ErrGameNotActive    = NewError(CodeGameNotActive, "Game is not active")
	ErrNotYourTurn      = NewError(CodeNotYourTurn, "It's not your turn")
	ErrInvalidMove      = NewError(CodeInvalidMove, "Invalid move")
	ErrRateLimited      = NewError(CodeRateLimited, "Too many events")
	ErrInternal         = NewError(CodeInternal, "Internal error")
)

// AsError maps any error onto the wire taxonomy. Unknown errors become INTERNAL.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return ErrInternal
}

package errors

import "fmt"

var (
	ErrWorkerPanic       = fmt.Errorf("worker panic")
	ErrDuplicateIdentity = fmt.Errorf("identity already registered")
	ErrEmptyIdentity     = fmt.Errorf("identity is empty after trim")
	ErrEmptyContent      = fmt.Errorf("content is empty after trim")
	ErrNotJoined         = fmt.Errorf("identity has no active session")
	ErrQueueFull         = fmt.Errorf("command queue full")
	ErrSinkClosed        = fmt.Errorf("sink closed")
	ErrJoinTimeout       = fmt.Errorf("no reply to join command")
	ErrEmptyWords        = fmt.Errorf("no words have been found")
	ErrInvalidPayload    = fmt.Errorf("invalid event payload")
)

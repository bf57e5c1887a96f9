package errors

import "fmt"

var (
	ErrWorkerPanic    = fmt.Errorf("worker panic")
	ErrNotPollEvent   = fmt.Errorf("event is not a poll event")
	ErrMalformedEvent = fmt.Errorf("malformed poll event")
	ErrDuplicateEvent = fmt.Errorf("event already processed")
	ErrDuplicatePoll  = fmt.Errorf("poll already registered")
	ErrUnknownPoll    = fmt.Errorf("unknown poll")
	ErrPollClosed     = fmt.Errorf("poll is closed")
	ErrRoomAbandoned  = fmt.Errorf("room has been abandoned")
)

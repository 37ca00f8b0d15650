package dialogue

import "errors"

var (
	ErrBusy          = errors.New("dialogue: a reply is already being processed")
	ErrSessionClosed = errors.New("dialogue: session is closed")
	ErrCannotGoBack  = errors.New("dialogue: nothing to step back to")
)

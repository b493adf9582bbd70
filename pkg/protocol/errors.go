package protocol

import "errors"

// The three error kinds every layer wraps. Callers branch with errors.Is
// rather than matching message text: ErrInvalidInput means a bad local
// argument, ErrProtocolViolation means a malformed sequence arrived from the
// transport, ErrUnsupportedProtocol means an unknown protocol id on either
// side. Cipher failures propagate unwrapped.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnsupportedProtocol = errors.New("unsupported protocol")
	ErrProtocolViolation   = errors.New("protocol violation")
)

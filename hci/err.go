package hci

import (
	"errors"
	"fmt"
)

// ErrInvalidAddr is returned by Dial when the address does not parse.
var ErrInvalidAddr = errors.New("invalid address")

// ErrBusy is returned when a central connection attempt is already
// outstanding; only one may be in flight at a time.
var ErrBusy = errors.New("connection attempt pending")

// ErrInvalidPoolSize rejects zero or negative pool dimensions at Init.
var ErrInvalidPoolSize = errors.New("invalid pool size")

// ErrCommand is a controller reported command failure status
// [Vol 2, Part D, 1.3].
type ErrCommand byte

func (e ErrCommand) Error() string {
	if s, ok := errCmd[e]; ok {
		return s
	}
	return fmt.Sprintf("command error: 0x%02X", byte(e))
}

// Named status codes the stack inspects.
const (
	ErrConnID      ErrCommand = 0x02
	ErrConnTimeout ErrCommand = 0x08
	ErrMemCapacity ErrCommand = 0x07
	ErrDisallowed  ErrCommand = 0x0C
	ErrRemoteUser  ErrCommand = 0x13
	ErrLocalHost   ErrCommand = 0x16
)

var errCmd = map[ErrCommand]string{
	0x01: "unknown command",
	0x02: "unknown connection identifier",
	0x03: "hardware failure",
	0x04: "page timeout",
	0x05: "authentication failure",
	0x06: "pin or key missing",
	0x07: "memory capacity exceeded",
	0x08: "connection timeout",
	0x09: "connection limit exceeded",
	0x0A: "synchronous connection limit exceeded",
	0x0B: "connection already exists",
	0x0C: "command disallowed",
	0x0D: "connection rejected due to limited resources",
	0x0E: "connection rejected due to security reasons",
	0x0F: "connection rejected due to unacceptable bd_addr",
	0x10: "connection accept timeout exceeded",
	0x11: "unsupported feature or parameter value",
	0x12: "invalid command parameters",
	0x13: "remote user terminated connection",
	0x14: "remote device terminated connection due to low resources",
	0x15: "remote device terminated connection due to power off",
	0x16: "connection terminated by local host",
	0x1A: "unsupported remote feature",
	0x1F: "unspecified error",
	0x22: "ll response timeout",
	0x28: "instant passed",
	0x3B: "unacceptable connection parameters",
	0x3E: "connection failed to be established",
}

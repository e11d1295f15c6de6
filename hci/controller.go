package hci

import (
	"context"

	"github.com/kestrelbt/ble"
	"github.com/kestrelbt/ble/hci/cmd"
)

// Command is an HCI command a controller accepts.
type Command interface {
	OpCode() int
	Len() int
	Marshal([]byte) error
}

// CommandRP decodes the return parameters of a command complete event.
type CommandRP interface {
	Unmarshal(b []byte) error
}

// Controller is the slice of the HCI a connection talks to. Tests
// substitute a fake; everything else uses *HCI.
type Controller interface {
	RequestBufferPool() BufferPool
	ChannelPool() *chanPool
	DispatchError(error)
	SocketWrite([]byte) (int, error)
	Send(Command, CommandRP) error
	Addr() ble.Addr
	Context() context.Context
	DefaultChannelConfig() ble.ChannelConfig
}

var _ Controller = (*HCI)(nil)
var _ Command = (*cmd.Disconnect)(nil)

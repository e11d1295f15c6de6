package ble

import (
	"context"
	"io"
)

// Conn is one established LE-U link. It multiplexes an attribute
// stream (Read/Write) and any number of credit based channels
// (OpenChannel/AcceptChannel) over a single controller connection.
type Conn interface {
	io.ReadWriteCloser

	// Context returns the context that is used by this Conn.
	Context() context.Context

	// SetContext sets the context that is used by this Conn.
	SetContext(ctx context.Context)

	// LocalAddr returns local device's address.
	LocalAddr() Addr

	// RemoteAddr returns remote device's address.
	RemoteAddr() Addr

	// ConnectionHandle returns the controller assigned handle for the link.
	ConnectionHandle() uint16

	// Disconnected returns a receiving channel, which is closed when the connection disconnects.
	Disconnected() <-chan struct{}

	// OpenChannel initiates a credit based channel to the given PSM.
	OpenChannel(psm uint16, cfg *ChannelConfig) (Channel, error)

	// AcceptChannel waits for a peer initiated credit based channel whose
	// PSM is in psms. Requests for other PSMs are rejected without
	// consuming a channel slot.
	AcceptChannel(psms []uint16, cfg *ChannelConfig) (Channel, error)
}

// Channel is one credit based L2CAP channel. Send and Receive move whole
// SDUs; both suspend the caller rather than dropping data.
type Channel interface {
	// Send transmits one SDU of up to the negotiated MTU. It blocks while
	// the peer has granted no transmit credits.
	Send(p []byte) error

	// Receive fills buf with the next reassembled SDU and returns its
	// length. It blocks until a complete SDU arrives or the channel closes.
	Receive(buf []byte) (int, error)

	// Info reports the negotiated channel parameters.
	Info() ChannelInfo

	// Close disconnects the channel. Closing an already closed channel is a no-op.
	Close() error
}

// ChannelInfo holds the identifiers and negotiated limits of a channel.
type ChannelInfo struct {
	LocalCID, RemoteCID uint16
	PSM                 uint16
	TxMTU, TxMPS        uint16
	RxMTU, RxMPS        uint16
}

// FlowPolicy controls when consumed receive buffers are handed back to
// the peer as credits. A batch of Every credits is granted once Every
// PDUs have been consumed; Every=1 grants after each PDU.
type FlowPolicy struct {
	Every uint16
}

// ChannelConfig is the receive side configuration of a credit based
// channel, fixed at creation time.
type ChannelConfig struct {
	MTU            uint16 // max SDU this side accepts
	MPS            uint16 // max PDU payload this side accepts
	InitialCredits uint16 // credits granted to the peer up front
	FlowPolicy     FlowPolicy
}

package hci

import "time"

// HCI packet types.
const (
	pktTypeCommand uint8 = 0x01
	pktTypeACLData uint8 = 0x02
	pktTypeSCOData uint8 = 0x03
	pktTypeEvent   uint8 = 0x04
	pktTypeVendor  uint8 = 0xFF
)

// Packet boundary flags of HCI ACL Data Packet [Vol 2, Part E, 5.4.2].
const (
	pbfHostToControllerStart = 0x00 // Start of a non-automatically-flushable from host to controller.
	pbfContinuing            = 0x01 // Continuing fragment.
	pbfControllerToHostStart = 0x02 // Start of a non-automatically-flushable from controller to host.
)

// L2CAP channel identifier namespace for LE-U [Vol 3, Part A, 2.1].
const (
	cidLEAtt    uint16 = 0x0004 // Attribute Protocol.
	cidLESignal uint16 = 0x0005 // LE L2CAP Signaling channel.
	cidSMP      uint16 = 0x0006 // Security Manager Protocol.

	cidDynamicMin uint16 = 0x0040
	cidDynamicMax uint16 = 0xffff
)

const (
	roleMaster = 0x00
	roleSlave  = 0x01
)

const (
	chCmdBufChanSize    = 16
	chCmdBufElementSize = 64
	chCmdBufTimeout     = time.Second * 5
	cmdResponseTimeout  = time.Second * 3
)

// Default ATT-channel MTU before the upper layer reconfigures it
// [Vol 3, Part A, 3.2.8], and the signaling MTU we accept.
const (
	defaultAttMTU = 23
	maxSigMTU     = 512
)

// Pool defaults; overridable via options before Init.
const (
	DefaultMaxConnections = 4
	DefaultMaxChannels    = 8
)

// Channel defaults applied when a ChannelConfig field is zero.
const (
	defaultCocMTU     = 251
	defaultCocMPS     = 251
	defaultCocCredits = 50
	minCocMPS         = 23
)

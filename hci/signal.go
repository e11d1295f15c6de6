package hci

import (
	"bytes"
	"encoding/binary"
)

// Signal is one L2CAP signaling command payload; Code is the command
// code carried in the C-frame header [Vol 3, Part A, 4].
type Signal interface {
	Code() int
	Marshal() []byte
	Unmarshal(b []byte) error
}

func sigMarshal(v interface{}) []byte {
	buf := bytes.NewBuffer(make([]byte, 0))
	binary.Write(buf, binary.LittleEndian, v)
	return buf.Bytes()
}

func sigUnmarshal(v interface{}, b []byte) error {
	return binary.Read(bytes.NewBuffer(b), binary.LittleEndian, v)
}

// Signaling command codes.
const (
	SignalCommandReject                     = 0x01
	SignalDisconnectRequest                 = 0x06
	SignalDisconnectResponse                = 0x07
	SignalConnectionParameterUpdateRequest  = 0x12
	SignalConnectionParameterUpdateResponse = 0x13
	SignalLECreditBasedConnectionRequest    = 0x14
	SignalLECreditBasedConnectionResponse   = 0x15
	SignalLEFlowControlCredit               = 0x16
)

// Command Reject reasons [Vol 3, Part A, 4.1].
const (
	rejectReasonNotUnderstood = 0x0000
	rejectReasonSigMTU        = 0x0001
	rejectReasonInvalidCID    = 0x0002
)

// LE Credit Based Connection Response results [Vol 3, Part A, 4.23].
const (
	CocResultSuccess            uint16 = 0x0000
	CocResultPSMNotSupported    uint16 = 0x0002
	CocResultNoResources        uint16 = 0x0004
	CocResultInsufficientAuthen uint16 = 0x0005
	CocResultInvalidSourceCID   uint16 = 0x0009
	CocResultSourceCIDInUse     uint16 = 0x000A
	CocResultUnacceptableParams uint16 = 0x000B
)

// CommandReject implements Command Reject (0x01) [Vol 3, Part A, 4.1].
type CommandReject struct {
	Reason uint16
}

func (s CommandReject) Code() int { return SignalCommandReject }

func (s *CommandReject) Marshal() []byte { return sigMarshal(s) }

func (s *CommandReject) Unmarshal(b []byte) error { return sigUnmarshal(s, b) }

// DisconnectRequest implements Disconnect Request (0x06) [Vol 3, Part A, 4.6].
type DisconnectRequest struct {
	DestinationCID uint16
	SourceCID      uint16
}

func (s DisconnectRequest) Code() int { return SignalDisconnectRequest }

func (s *DisconnectRequest) Marshal() []byte { return sigMarshal(s) }

func (s *DisconnectRequest) Unmarshal(b []byte) error { return sigUnmarshal(s, b) }

// DisconnectResponse implements Disconnect Response (0x07) [Vol 3, Part A, 4.7].
type DisconnectResponse struct {
	DestinationCID uint16
	SourceCID      uint16
}

func (s DisconnectResponse) Code() int { return SignalDisconnectResponse }

func (s *DisconnectResponse) Marshal() []byte { return sigMarshal(s) }

func (s *DisconnectResponse) Unmarshal(b []byte) error { return sigUnmarshal(s, b) }

// ConnectionParameterUpdateRequest implements Connection Parameter Update
// Request (0x12) [Vol 3, Part A, 4.20].
type ConnectionParameterUpdateRequest struct {
	IntervalMin       uint16
	IntervalMax       uint16
	SlaveLatency      uint16
	TimeoutMultiplier uint16
}

func (s ConnectionParameterUpdateRequest) Code() int { return SignalConnectionParameterUpdateRequest }

func (s *ConnectionParameterUpdateRequest) Marshal() []byte { return sigMarshal(s) }

func (s *ConnectionParameterUpdateRequest) Unmarshal(b []byte) error { return sigUnmarshal(s, b) }

// ConnectionParameterUpdateResponse implements Connection Parameter Update
// Response (0x13) [Vol 3, Part A, 4.21].
type ConnectionParameterUpdateResponse struct {
	Result uint16
}

func (s ConnectionParameterUpdateResponse) Code() int {
	return SignalConnectionParameterUpdateResponse
}

func (s *ConnectionParameterUpdateResponse) Marshal() []byte { return sigMarshal(s) }

func (s *ConnectionParameterUpdateResponse) Unmarshal(b []byte) error { return sigUnmarshal(s, b) }

// LECreditBasedConnectionRequest implements LE Credit Based Connection
// Request (0x14) [Vol 3, Part A, 4.22].
type LECreditBasedConnectionRequest struct {
	LEPSM          uint16
	SourceCID      uint16
	MTU            uint16
	MPS            uint16
	InitialCredits uint16
}

func (s LECreditBasedConnectionRequest) Code() int { return SignalLECreditBasedConnectionRequest }

func (s *LECreditBasedConnectionRequest) Marshal() []byte { return sigMarshal(s) }

func (s *LECreditBasedConnectionRequest) Unmarshal(b []byte) error { return sigUnmarshal(s, b) }

// LECreditBasedConnectionResponse implements LE Credit Based Connection
// Response (0x15) [Vol 3, Part A, 4.23].
type LECreditBasedConnectionResponse struct {
	DestinationCID uint16
	MTU            uint16
	MPS            uint16
	InitialCredits uint16
	Result         uint16
}

func (s LECreditBasedConnectionResponse) Code() int { return SignalLECreditBasedConnectionResponse }

func (s *LECreditBasedConnectionResponse) Marshal() []byte { return sigMarshal(s) }

func (s *LECreditBasedConnectionResponse) Unmarshal(b []byte) error { return sigUnmarshal(s, b) }

// LEFlowControlCredit implements LE Flow Control Credit (0x16)
// [Vol 3, Part A, 4.24].
type LEFlowControlCredit struct {
	CID     uint16
	Credits uint16
}

func (s LEFlowControlCredit) Code() int { return SignalLEFlowControlCredit }

func (s *LEFlowControlCredit) Marshal() []byte { return sigMarshal(s) }

func (s *LEFlowControlCredit) Unmarshal(b []byte) error { return sigUnmarshal(s, b) }

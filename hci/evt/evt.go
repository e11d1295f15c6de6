// Package evt wraps raw HCI event payloads with typed field accessors.
// Events are kept as byte slices; accessors decode on demand and return
// a safe default when the payload is shorter than expected.
package evt

import "encoding/binary"

// Event codes [Vol 2, Part E, 7.7].
const (
	DisconnectionCompleteCode    = 0x05
	CommandCompleteCode          = 0x0E
	CommandStatusCode            = 0x0F
	HardwareErrorCode            = 0x10
	NumberOfCompletedPacketsCode = 0x13
	LEMetaCode                   = 0x3E
)

// LE meta subevent codes [Vol 2, Part E, 7.7.65].
const (
	LEConnectionCompleteSubCode       = 0x01
	LEAdvertisingReportSubCode        = 0x02
	LEConnectionUpdateCompleteSubCode = 0x03
	LEDataLengthChangeSubCode         = 0x07
	LEPHYUpdateCompleteSubCode        = 0x0C
)

type CommandComplete []byte

func (e CommandComplete) NumHCICommandPackets() uint8 { return getByte(e, 0, 0) }
func (e CommandComplete) CommandOpcode() uint16       { return getUint16LE(e, 1, 0xffff) }
func (e CommandComplete) ReturnParameters() []byte    { return getBytes(e, 3, -1) }

type CommandStatus []byte

func (e CommandStatus) Valid() bool                 { return len(e) == 4 }
func (e CommandStatus) Status() uint8               { return getByte(e, 0, 0xff) }
func (e CommandStatus) NumHCICommandPackets() uint8 { return getByte(e, 1, 0) }
func (e CommandStatus) CommandOpcode() uint16       { return getUint16LE(e, 2, 0xffff) }

type DisconnectionComplete []byte

func (e DisconnectionComplete) Status() uint8            { return getByte(e, 0, 0xff) }
func (e DisconnectionComplete) ConnectionHandle() uint16 { return getUint16LE(e, 1, 0xffff) }
func (e DisconnectionComplete) Reason() uint8            { return getByte(e, 3, 0xff) }

type NumberOfCompletedPackets []byte

func (e NumberOfCompletedPackets) NumberOfHandles() uint8 { return getByte(e, 0, 0) }

// Handle/count pairs are laid out pairwise, matching what controllers
// actually emit (handleA, countA, handleB, countB).
func (e NumberOfCompletedPackets) ConnectionHandle(i int) uint16 {
	return getUint16LE(e, 1+i*4, 0xffff)
}
func (e NumberOfCompletedPackets) HCNumOfCompletedPackets(i int) uint16 {
	return getUint16LE(e, 1+i*4+2, 0)
}

type LEConnectionComplete []byte

func (e LEConnectionComplete) SubeventCode() uint8        { return getByte(e, 0, 0xff) }
func (e LEConnectionComplete) Status() uint8              { return getByte(e, 1, 0xff) }
func (e LEConnectionComplete) ConnectionHandle() uint16   { return getUint16LE(e, 2, 0xffff) }
func (e LEConnectionComplete) Role() uint8                { return getByte(e, 4, 0xff) }
func (e LEConnectionComplete) PeerAddressType() uint8     { return getByte(e, 5, 0xff) }
func (e LEConnectionComplete) ConnInterval() uint16       { return getUint16LE(e, 12, 0) }
func (e LEConnectionComplete) ConnLatency() uint16        { return getUint16LE(e, 14, 0) }
func (e LEConnectionComplete) SupervisionTimeout() uint16 { return getUint16LE(e, 16, 0) }

func (e LEConnectionComplete) PeerAddress() [6]byte {
	var out [6]byte
	copy(out[:], getBytes(e, 6, 6))
	return out
}

type LEAdvertisingReport []byte

func (e LEAdvertisingReport) SubeventCode() uint8 { return getByte(e, 0, 0xff) }
func (e LEAdvertisingReport) NumReports() uint8   { return getByte(e, 1, 0) }

func (e LEAdvertisingReport) EventType(i int) uint8 { return getByte(e, 2+i, 0xff) }

func (e LEAdvertisingReport) AddressType(i int) uint8 {
	nr := int(e.NumReports())
	return getByte(e, 2+nr+i, 0xff)
}

func (e LEAdvertisingReport) Address(i int) [6]byte {
	nr := int(e.NumReports())
	var out [6]byte
	copy(out[:], getBytes(e, 2+nr*2+6*i, 6))
	return out
}

func (e LEAdvertisingReport) LengthData(i int) uint8 {
	nr := int(e.NumReports())
	return getByte(e, 2+nr*8+i, 0)
}

func (e LEAdvertisingReport) Data(i int) []byte {
	nr := int(e.NumReports())
	off := 0
	for j := 0; j < i; j++ {
		off += int(e.LengthData(j))
	}
	return getBytes(e, 2+nr*9+off, int(e.LengthData(i)))
}

func (e LEAdvertisingReport) RSSI(i int) int8 {
	nr := int(e.NumReports())
	off := 0
	for j := 0; j < nr; j++ {
		off += int(e.LengthData(j))
	}
	return int8(getByte(e, 2+nr*9+off+i, 0))
}

type LEDataLengthChange []byte

func (e LEDataLengthChange) SubeventCode() uint8      { return getByte(e, 0, 0xff) }
func (e LEDataLengthChange) ConnectionHandle() uint16 { return getUint16LE(e, 1, 0xffff) }
func (e LEDataLengthChange) MaxTXOctets() uint16      { return getUint16LE(e, 3, 0) }
func (e LEDataLengthChange) MaxTXTime() uint16        { return getUint16LE(e, 5, 0) }
func (e LEDataLengthChange) MaxRXOctets() uint16      { return getUint16LE(e, 7, 0) }
func (e LEDataLengthChange) MaxRXTime() uint16        { return getUint16LE(e, 9, 0) }

type LEPHYUpdateComplete []byte

func (e LEPHYUpdateComplete) SubeventCode() uint8      { return getByte(e, 0, 0xff) }
func (e LEPHYUpdateComplete) Status() uint8            { return getByte(e, 1, 0xff) }
func (e LEPHYUpdateComplete) ConnectionHandle() uint16 { return getUint16LE(e, 2, 0xffff) }
func (e LEPHYUpdateComplete) TXPHY() uint8             { return getByte(e, 4, 0) }
func (e LEPHYUpdateComplete) RXPHY() uint8             { return getByte(e, 5, 0) }

func getByte(b []byte, i int, def byte) byte {
	if i >= len(b) {
		return def
	}
	return b[i]
}

func getUint16LE(b []byte, i int, def uint16) uint16 {
	if i+2 > len(b) {
		return def
	}
	return binary.LittleEndian.Uint16(b[i:])
}

// getBytes returns n bytes at i, or the remainder when n is -1. Out of
// range access yields nil.
func getBytes(b []byte, i, n int) []byte {
	if i > len(b) {
		return nil
	}
	if n < 0 {
		return b[i:]
	}
	if i+n > len(b) {
		return nil
	}
	return b[i : i+n]
}

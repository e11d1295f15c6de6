// Package adv builds and parses advertising data payloads.
// Refer to Supplement to Bluetooth Core Specification, CSSv6, Part A.
package adv

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// MaxEIRPacketLength is the maximum brodcast capacity of an advertising
// packet or scan response.
const MaxEIRPacketLength = 31

// ErrNotFit means the field doesn't fit into the packet.
var ErrNotFit = errors.New("data not fit")

// Advertising data types.
// https://www.bluetooth.org/en-us/specification/assigned-numbers/generic-access-profile
const (
	typeFlags            = 0x01
	typeShortName        = 0x08
	typeCompleteName     = 0x09
	typeTxPower          = 0x0a
	typeServiceData16    = 0x16
	typeManufacturerData = 0xff
)

// Advertising flags.
const (
	FlagLimitedDiscoverable = 0x01 // LE Limited Discoverable Mode.
	FlagGeneralDiscoverable = 0x02 // LE General Discoverable Mode.
	FlagLEOnly              = 0x04 // BR/EDR Not Supported.
)

// Packet accumulates length-type-value fields of an advertising packet
// or scan response.
type Packet struct {
	b []byte
	m map[byte][][]byte
}

// NewPacket returns a new advertising Packet with the given fields.
func NewPacket(fields ...Field) (*Packet, error) {
	p := &Packet{b: make([]byte, 0, MaxEIRPacketLength)}
	for _, f := range fields {
		if err := f(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// NewRawPacket parses received advertising payloads, e.g. an AD packet
// and its scan response concatenated.
func NewRawPacket(bytes ...[]byte) (*Packet, error) {
	b := make([]byte, 0, MaxEIRPacketLength)
	for _, bb := range bytes {
		b = append(b, bb...)
	}
	m, err := decode(b)
	if err != nil {
		return nil, errors.Wrap(err, "adv decode")
	}
	return &Packet{b: b, m: m}, nil
}

// Bytes returns the bytes of the packet.
func (p *Packet) Bytes() []byte {
	return p.b
}

// Len returns the length of the packet.
func (p *Packet) Len() int {
	return len(p.b)
}

// Field is an advertising field which can be appended to a packet.
type Field func(p *Packet) error

// Append appends a field to the packet. It returns ErrNotFit if the
// field doesn't fit, and leaves the packet intact.
func (p *Packet) Append(f Field) error {
	return f(p)
}

func (p *Packet) append(typ byte, b []byte) error {
	if p.Len()+1+1+len(b) > MaxEIRPacketLength {
		return ErrNotFit
	}
	p.b = append(p.b, byte(len(b)+1))
	p.b = append(p.b, typ)
	p.b = append(p.b, b...)
	return nil
}

// Raw appends the bytes to the current packet.
func Raw(b []byte) Field {
	return func(p *Packet) error {
		if p.Len()+len(b) > MaxEIRPacketLength {
			return ErrNotFit
		}
		p.b = append(p.b, b...)
		return nil
	}
}

// Flags is the advertising flags field.
func Flags(f byte) Field {
	return func(p *Packet) error {
		return p.append(typeFlags, []byte{f})
	}
}

// ShortName is a shortened local name.
func ShortName(n string) Field {
	return func(p *Packet) error {
		return p.append(typeShortName, []byte(n))
	}
}

// CompleteName is a complete local name.
func CompleteName(n string) Field {
	return func(p *Packet) error {
		return p.append(typeCompleteName, []byte(n))
	}
}

// TxPower is the transmit power level field.
func TxPower(pwr int8) Field {
	return func(p *Packet) error {
		return p.append(typeTxPower, []byte{byte(pwr)})
	}
}

// ManufacturerData is manufacturer specific data.
func ManufacturerData(id uint16, b []byte) Field {
	return func(p *Packet) error {
		d := append([]byte{uint8(id), uint8(id >> 8)}, b...)
		return p.append(typeManufacturerData, d)
	}
}

// ServiceData16 is service data for a 16 bit service uuid.
func ServiceData16(id uint16, b []byte) Field {
	return func(p *Packet) error {
		d := make([]byte, 2+len(b))
		binary.LittleEndian.PutUint16(d, id)
		copy(d[2:], b)
		return p.append(typeServiceData16, d)
	}
}

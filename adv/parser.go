package adv

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// decode walks the length-type-value records of a payload. Types that
// may repeat keep every occurrence, in order.
func decode(b []byte) (map[byte][][]byte, error) {
	m := make(map[byte][][]byte)
	for len(b) > 0 {
		l := int(b[0])
		if l == 0 {
			// Early termination padding.
			break
		}
		if len(b) < 1+l {
			return nil, errors.Errorf("field of length %d overruns payload", l)
		}
		t := b[1]
		m[t] = append(m[t], b[2:1+l])
		b = b[1+l:]
	}
	return m, nil
}

func (p *Packet) field(typ byte) []byte {
	v := p.m[typ]
	if len(v) == 0 {
		return nil
	}
	return v[0]
}

// Flags returns the flags of the packet, if present.
func (p *Packet) Flags() (flags byte, present bool) {
	b := p.field(typeFlags)
	if len(b) < 1 {
		return 0, false
	}
	return b[0], true
}

// LocalName returns the complete local name, falling back to the
// shortened one.
func (p *Packet) LocalName() string {
	if b := p.field(typeCompleteName); b != nil {
		return string(b)
	}
	return string(p.field(typeShortName))
}

// TxPower returns the transmit power level, if present.
func (p *Packet) TxPower() (pwr int, present bool) {
	b := p.field(typeTxPower)
	if len(b) < 1 {
		return 0, false
	}
	return int(int8(b[0])), true
}

// ManufacturerData returns the manufacturer specific data field,
// including the leading company id.
func (p *Packet) ManufacturerData() []byte {
	return p.field(typeManufacturerData)
}

// ServiceData16 returns the data for the given 16 bit service uuid.
func (p *Packet) ServiceData16(id uint16) []byte {
	for _, b := range p.m[typeServiceData16] {
		if len(b) >= 2 && binary.LittleEndian.Uint16(b) == id {
			return b[2:]
		}
	}
	return nil
}

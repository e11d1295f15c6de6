package hci

import "encoding/binary"

// aclPacket implements HCI ACL Data Packet [Vol 2, Part E, 5.4.2].
// Packet boundary flags are bit[4:5] of the handle field's MSB; broadcast
// flags are unused on LE-U and left zero.
type aclPacket []byte

func (a aclPacket) handle() uint16 { return uint16(a[0]) | (uint16(a[1]&0x0f) << 8) }
func (a aclPacket) pbf() int       { return (int(a[1]) >> 4) & 0x3 }
func (a aclPacket) dlen() int      { return int(a[2]) | (int(a[3]) << 8) }
func (a aclPacket) data() []byte   { return a[4:] }

// pdu is one L2CAP basic frame: 2 byte length, 2 byte CID, payload.
type pdu []byte

func (p pdu) dlen() int       { return int(binary.LittleEndian.Uint16(p[0:2])) }
func (p pdu) cid() uint16     { return binary.LittleEndian.Uint16(p[2:4]) }
func (p pdu) payload() []byte { return p[4:] }

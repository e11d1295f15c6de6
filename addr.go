package ble

import (
	"encoding/hex"
	"strings"
)

// Addr represents a device address, a MAC address on LE-U transports.
type Addr interface {
	String() string
	Bytes() []byte
}

// NewAddr creates an Addr from its string form, e.g. "11:22:33:44:55:66".
func NewAddr(s string) Addr {
	return addr(strings.ToLower(s))
}

type addr string

func (a addr) String() string {
	return string(a)
}

// Bytes returns the big endian byte form of the address. Malformed
// addresses yield nil; callers validate length where it matters.
func (a addr) Bytes() []byte {
	out, err := hex.DecodeString(strings.Replace(string(a), ":", "", -1))
	if err != nil {
		return nil
	}
	return out
}

// Package cmd defines the HCI command packets the host issues and the
// return parameter blocks their command complete events carry.
package cmd

import (
	"bytes"
	"encoding/binary"
)

func marshal(v interface{}, b []byte) error {
	buf := bytes.NewBuffer(b[:0])
	return binary.Write(buf, binary.LittleEndian, v)
}

func unmarshal(v interface{}, b []byte) error {
	return binary.Read(bytes.NewBuffer(b), binary.LittleEndian, v)
}

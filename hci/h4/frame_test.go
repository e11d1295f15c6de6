package h4

import (
	"bytes"
	"testing"
)

func collect(out chan []byte) [][]byte {
	var pkts [][]byte
	for {
		select {
		case p := <-out:
			pkts = append(pkts, p)
		default:
			return pkts
		}
	}
}

func TestFrameAssembleSplitPackets(t *testing.T) {
	out := make(chan []byte, 8)
	f := newFrame(out)

	evt := []byte{pktEvt, 0x0E, 0x04, 0x01, 0x09, 0x10, 0x00}
	acl := []byte{pktACL, 0x40, 0x00, 0x02, 0x00, 0xAA, 0xBB}

	stream := append(append([]byte{}, evt...), acl...)

	// Feed one byte at a time; packets must come out whole.
	for _, b := range stream {
		f.Assemble([]byte{b})
	}

	pkts := collect(out)
	if len(pkts) != 2 {
		t.Fatalf("got %d packets, want 2", len(pkts))
	}
	if !bytes.Equal(pkts[0], evt) {
		t.Errorf("event packet: got % X", pkts[0])
	}
	if !bytes.Equal(pkts[1], acl) {
		t.Errorf("acl packet: got % X", pkts[1])
	}
}

func TestFrameResync(t *testing.T) {
	out := make(chan []byte, 8)
	f := newFrame(out)

	evt := []byte{pktEvt, 0x0E, 0x01, 0x00}

	// Garbage in front of a valid packet is skipped.
	f.Assemble([]byte{0x00, 0x37})
	f.Assemble(evt)

	pkts := collect(out)
	if len(pkts) != 1 || !bytes.Equal(pkts[0], evt) {
		t.Fatalf("resync failed, packets % X", pkts)
	}
}

func TestFrameACLLength(t *testing.T) {
	out := make(chan []byte, 8)
	f := newFrame(out)

	// 0x0103 byte payload exercises both length bytes.
	payload := make([]byte, 0x0103)
	pkt := append([]byte{pktACL, 0x40, 0x00, 0x03, 0x01}, payload...)
	f.Assemble(pkt[:100])
	f.Assemble(pkt[100:])

	pkts := collect(out)
	if len(pkts) != 1 || len(pkts[0]) != len(pkt) {
		t.Fatalf("got %d packets, want one of %d bytes", len(pkts), len(pkt))
	}
}

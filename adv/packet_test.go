package adv

import (
	"bytes"
	"testing"
)

func TestPacketBuild(t *testing.T) {
	p, err := NewPacket(
		Flags(FlagGeneralDiscoverable|FlagLEOnly),
		CompleteName("kestrel"),
		TxPower(-4),
	)
	if err != nil {
		t.Fatal(err)
	}

	want := []byte{
		2, typeFlags, FlagGeneralDiscoverable | FlagLEOnly,
		8, typeCompleteName, 'k', 'e', 's', 't', 'r', 'e', 'l',
		2, typeTxPower, 0xFC,
	}
	if !bytes.Equal(p.Bytes(), want) {
		t.Errorf("got % X, want % X", p.Bytes(), want)
	}
}

func TestPacketNotFit(t *testing.T) {
	// A 29 byte name fills the packet to the 31 byte EIR limit.
	p, err := NewPacket(CompleteName("a-rather-long-device-name-xyz"))
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Append(Flags(FlagGeneralDiscoverable)); err != ErrNotFit {
		t.Errorf("got %v, want ErrNotFit", err)
	}
	if p.Len() != MaxEIRPacketLength {
		t.Errorf("failed append modified the packet, len %d", p.Len())
	}
}

func TestRawPacketParse(t *testing.T) {
	ad := []byte{
		2, typeFlags, 0x06,
		5, typeManufacturerData, 0x34, 0x12, 0xAA, 0xBB,
	}
	sr := []byte{
		5, typeCompleteName, 'e', 'c', 'h', 'o',
		5, typeServiceData16, 0x0D, 0x18, 0x42, 0x07,
		0, // Padding terminates the walk.
	}

	p, err := NewRawPacket(ad, sr)
	if err != nil {
		t.Fatal(err)
	}

	if f, ok := p.Flags(); !ok || f != 0x06 {
		t.Errorf("flags = %02X, %v", f, ok)
	}
	if n := p.LocalName(); n != "echo" {
		t.Errorf("local name = %q", n)
	}
	if md := p.ManufacturerData(); !bytes.Equal(md, []byte{0x34, 0x12, 0xAA, 0xBB}) {
		t.Errorf("manufacturer data = % X", md)
	}
	if sd := p.ServiceData16(0x180D); !bytes.Equal(sd, []byte{0x42, 0x07}) {
		t.Errorf("service data = % X", sd)
	}
	if sd := p.ServiceData16(0x180F); sd != nil {
		t.Errorf("unexpected service data % X", sd)
	}
}

func TestRawPacketOverrun(t *testing.T) {
	if _, err := NewRawPacket([]byte{9, typeFlags, 0x06}); err == nil {
		t.Error("overrunning field not rejected")
	}
}

func TestLocalNameFallback(t *testing.T) {
	p, err := NewRawPacket([]byte{3, typeShortName, 'h', 'i'})
	if err != nil {
		t.Fatal(err)
	}
	if n := p.LocalName(); n != "hi" {
		t.Errorf("local name = %q", n)
	}
}

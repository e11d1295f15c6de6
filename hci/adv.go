package hci

import (
	"net"
	"strings"

	"github.com/kestrelbt/ble"
	"github.com/kestrelbt/ble/hci/evt"
)

// RandomAddress is a Random Device Address.
type RandomAddress struct {
	ble.Addr
}

// [Vol 6, Part B, 4.4.2] [Vol 3, Part C, 11]
const (
	evtTypAdvInd        = 0x00 // Connectable undirected advertising (ADV_IND).
	evtTypAdvDirectInd  = 0x01 // Connectable directed advertising (ADV_DIRECT_IND).
	evtTypAdvScanInd    = 0x02 // Scannable undirected advertising (ADV_SCAN_IND).
	evtTypAdvNonconnInd = 0x03 // Non connectable undirected advertising (ADV_NONCONN_IND).
	evtTypScanRsp       = 0x04 // Scan Response (SCAN_RSP).
)

func newAdvertisement(e evt.LEAdvertisingReport, i int) *Advertisement {
	return &Advertisement{e: e, i: i}
}

// Advertisement wraps one report of an LE Advertising Report event.
type Advertisement struct {
	e  evt.LEAdvertisingReport
	i  int
	sr *Advertisement
}

// setScanResponse associates a scan response with the advertisement.
func (a *Advertisement) setScanResponse(sr *Advertisement) {
	a.sr = sr
}

// Addr returns the address of the remote peripheral.
func (a *Advertisement) Addr() ble.Addr {
	b := a.e.Address(a.i)
	addr := net.HardwareAddr([]byte{b[5], b[4], b[3], b[2], b[1], b[0]})
	at := a.e.AddressType(a.i)
	if at == 1 {
		return RandomAddress{ble.NewAddr(strings.ToUpper(addr.String()))}
	}
	return ble.NewAddr(strings.ToUpper(addr.String()))
}

// RSSI returns the RSSI of the last received packet.
func (a *Advertisement) RSSI() int {
	return int(a.e.RSSI(a.i))
}

// EventType returns the advertising event type.
func (a *Advertisement) EventType() uint8 {
	return a.e.EventType(a.i)
}

// Connectable reports whether the remote peripheral accepts connections.
func (a *Advertisement) Connectable() bool {
	t := a.EventType()
	return t == evtTypAdvInd || t == evtTypAdvDirectInd
}

// Data returns the raw advertising data payload.
func (a *Advertisement) Data() []byte {
	return a.e.Data(a.i)
}

// ScanResponse returns the scan response payload, if one was received.
func (a *Advertisement) ScanResponse() []byte {
	if a.sr == nil {
		return nil
	}
	return a.sr.Data()
}

var _ ble.Advertisement = (*Advertisement)(nil)

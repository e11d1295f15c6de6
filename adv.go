package ble

// Advertisement is one scan report delivered to an AdvHandler. The raw
// AD payload is left to the consumer; this core only carries it.
type Advertisement interface {
	Addr() Addr
	RSSI() int
	EventType() uint8
	Connectable() bool
	Data() []byte
	ScanResponse() []byte
}

// AdvHandler handles advertisement reports while scanning.
type AdvHandler func(a Advertisement)

// AdvFilter returns true when an advertisement matches, e.g. for Dial
// by scan result.
type AdvFilter func(a Advertisement) bool

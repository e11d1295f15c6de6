package h4

// Packet indicators of the H4 framing [Vol 4, Part A].
const (
	pktACL = 0x02
	pktEvt = 0x04
)

// frame reassembles H4 packets from a raw byte stream. The serial port
// delivers arbitrary chunks; complete packets go out on out.
type frame struct {
	b   []byte
	out chan []byte
}

func newFrame(out chan []byte) *frame {
	return &frame{b: make([]byte, 0, 512), out: out}
}

// Assemble folds a chunk into the current packet and emits every packet
// it completes.
func (f *frame) Assemble(b []byte) {
	f.b = append(f.b, b...)
	for f.emit() {
	}
}

// need reports how many bytes a complete packet takes, or 0 when the
// header itself is still incomplete.
func (f *frame) need() int {
	if len(f.b) == 0 {
		return 0
	}
	switch f.b[0] {
	case pktEvt:
		// indicator + event code + length byte
		if len(f.b) < 3 {
			return 0
		}
		return 3 + int(f.b[2])
	case pktACL:
		// indicator + handle (2) + length (2)
		if len(f.b) < 5 {
			return 0
		}
		return 5 + (int(f.b[3]) | int(f.b[4])<<8)
	default:
		// Out of sync; skip to the next plausible indicator.
		f.resync()
		return 0
	}
}

func (f *frame) emit() bool {
	n := f.need()
	if n == 0 || len(f.b) < n {
		return false
	}
	pkt := make([]byte, n)
	copy(pkt, f.b[:n])
	f.b = append(f.b[:0], f.b[n:]...)
	f.out <- pkt
	return len(f.b) > 0
}

func (f *frame) resync() {
	for i := 1; i < len(f.b); i++ {
		if f.b[i] == pktEvt || f.b[i] == pktACL {
			f.b = append(f.b[:0], f.b[i:]...)
			return
		}
	}
	f.b = f.b[:0]
}

// Package h4 provides H4 framed HCI transports over a serial port or a
// TCP socket, e.g. a zephyr hci_uart bridge.
package h4

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/jacobsa/go-serial/serial"
	"github.com/pkg/errors"
)

const rxQueueSize = 64

type h4 struct {
	rwc io.ReadWriteCloser
	rmu sync.Mutex
	wmu sync.Mutex

	frame   *frame
	rxQueue chan []byte

	done chan int
	cmu  sync.Mutex
}

// DefaultSerialOptions returns the port settings an hci_uart peer
// expects; override PortName before opening.
func DefaultSerialOptions() serial.OpenOptions {
	return serial.OpenOptions{
		PortName:          "/dev/ttyACM0",
		BaudRate:          1000000,
		DataBits:          8,
		StopBits:          1,
		RTSCTSFlowControl: true,

		// Return whatever is available instead of blocking for a full
		// buffer; the frame assembler handles partial packets.
		MinimumReadSize:       0,
		InterCharacterTimeout: 100,
	}
}

// NewSerial opens an H4 transport over a serial port.
func NewSerial(opts serial.OpenOptions) (io.ReadWriteCloser, error) {
	opts.MinimumReadSize = 0
	if opts.InterCharacterTimeout == 0 {
		opts.InterCharacterTimeout = 100
	}

	sp, err := serial.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "can't open serial port")
	}
	return newH4(sp), nil
}

// NewSocket opens an H4 transport over TCP.
func NewSocket(addr string, timeout time.Duration) (io.ReadWriteCloser, error) {
	c, err := dialWithTimeout(addr, timeout)
	if err != nil {
		return nil, errors.Wrap(err, "can't dial h4 socket")
	}
	return newH4(c), nil
}

func newH4(rwc io.ReadWriteCloser) *h4 {
	rxQueue := make(chan []byte, rxQueueSize)
	h := &h4{
		rwc:     rwc,
		rxQueue: rxQueue,
		frame:   newFrame(rxQueue),
		done:    make(chan int),
	}
	go h.rxLoop()
	return h
}

// Read returns one complete H4 packet. A zero count with nil error
// means no packet arrived within the poll interval.
func (h *h4) Read(p []byte) (int, error) {
	if !h.isOpen() {
		return 0, io.EOF
	}

	h.rmu.Lock()
	defer h.rmu.Unlock()

	select {
	case t := <-h.rxQueue:
		if len(p) < len(t) {
			return 0, fmt.Errorf("buffer too small for %d byte packet", len(t))
		}
		return copy(p, t), nil
	case <-h.done:
		return 0, io.EOF
	case <-time.After(time.Second):
		return 0, nil
	}
}

func (h *h4) Write(p []byte) (int, error) {
	if !h.isOpen() {
		return 0, io.EOF
	}

	h.wmu.Lock()
	defer h.wmu.Unlock()
	n, err := h.rwc.Write(p)
	return n, errors.Wrap(err, "can't write h4")
}

func (h *h4) Close() error {
	h.cmu.Lock()
	defer h.cmu.Unlock()

	select {
	case <-h.done:
		return nil
	default:
		close(h.done)
		return errors.Wrap(h.rwc.Close(), "can't close h4")
	}
}

func (h *h4) isOpen() bool {
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

func (h *h4) rxLoop() {
	tmp := make([]byte, 512)
	for {
		select {
		case <-h.done:
			return
		default:
		}

		n, err := h.rwc.Read(tmp)
		if err != nil || n == 0 {
			continue
		}
		h.frame.Assemble(tmp[:n])
	}
}

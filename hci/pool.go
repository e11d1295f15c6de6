package hci

import (
	"bytes"
	"sync"
)

// BufferPool is the controller transmit window. Get blocks until the
// controller has a free ACL buffer; Put is driven by Number Of Completed
// Packets events; PutAll recycles everything a dead connection still
// occupies [Vol 2, Part E, 4.1.1].
type BufferPool interface {
	Lock()
	Unlock()
	Get() *bytes.Buffer
	Put()
	PutAll()
}

// txPool is a fixed set of pre-sized buffers. Buffers move from free to
// in-flight on Get and back on Put, in FIFO order matching controller
// completion order. Nothing is allocated after NewTxPool.
type txPool struct {
	mu       sync.Mutex
	free     chan *bytes.Buffer
	inflight chan *bytes.Buffer
}

// NewTxPool pre-allocates cnt buffers of sz bytes capacity each.
func NewTxPool(sz, cnt int) (*txPool, error) {
	if sz <= 0 || cnt <= 0 {
		return nil, ErrInvalidPoolSize
	}
	p := &txPool{
		free:     make(chan *bytes.Buffer, cnt),
		inflight: make(chan *bytes.Buffer, cnt),
	}
	for i := 0; i < cnt; i++ {
		p.free <- bytes.NewBuffer(make([]byte, 0, sz))
	}
	return p, nil
}

func (p *txPool) Lock()   { p.mu.Lock() }
func (p *txPool) Unlock() { p.mu.Unlock() }

func (p *txPool) Get() *bytes.Buffer {
	b := <-p.free
	b.Reset()
	p.inflight <- b
	return b
}

func (p *txPool) Put() {
	select {
	case b := <-p.inflight:
		p.free <- b
	default:
		// Spurious completion; nothing of ours in flight.
	}
}

func (p *txPool) PutAll() {
	for {
		select {
		case b := <-p.inflight:
			p.free <- b
		default:
			return
		}
	}
}

// connPool hands out pre-allocated connection slots. Exhaustion returns
// nil, which callers treat as backpressure, not a fault.
type connPool struct {
	mu   sync.Mutex
	free []*Conn
	max  int
}

func newConnPool(h *HCI, n int) *connPool {
	p := &connPool{free: make([]*Conn, 0, n), max: n}
	for i := 0; i < n; i++ {
		c := &Conn{ctrl: h, pooled: true}
		p.free = append(p.free, c)
	}
	return p
}

func (p *connPool) acquire() *Conn {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.free) == 0 {
		return nil
	}
	c := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	c.pooled = false
	return c
}

// release resets the slot and returns it to the free set. Releasing a
// slot that is already free is a no-op.
func (p *connPool) release(c *Conn) {
	if c == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if c.pooled {
		return
	}
	c.reset()
	c.pooled = true
	p.free = append(p.free, c)
}

func (p *connPool) available() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

// chanPool is the channel slot analog of connPool. The reassembly buffer
// of each slot is allocated once, sized to the largest MTU the stack
// will accept, and reused across occupants.
type chanPool struct {
	mu     sync.Mutex
	free   []*chanSlot
	max    int
	maxMTU int
}

func newChanPool(n, maxMTU int) *chanPool {
	p := &chanPool{free: make([]*chanSlot, 0, n), max: n, maxMTU: maxMTU}
	for i := 0; i < n; i++ {
		s := &chanSlot{
			rxBuf:  make([]byte, 0, maxMTU),
			pooled: true,
		}
		s.reset()
		p.free = append(p.free, s)
	}
	return p
}

func (p *chanPool) acquire() *chanSlot {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.free) == 0 {
		return nil
	}
	s := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	s.pooled = false
	return s
}

func (p *chanPool) release(s *chanSlot) {
	if s == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if s.pooled {
		return
	}
	s.reset()
	s.pooled = true
	p.free = append(p.free, s)
}

func (p *chanPool) available() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

package hci

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTxPoolSizing(t *testing.T) {
	if _, err := NewTxPool(0, 4); err != ErrInvalidPoolSize {
		t.Fatalf("expected ErrInvalidPoolSize, got %v", err)
	}
	if _, err := NewTxPool(64, 0); err != ErrInvalidPoolSize {
		t.Fatalf("expected ErrInvalidPoolSize, got %v", err)
	}

	p, err := NewTxPool(64, 3)
	require.NoError(t, err)

	// Drain the window, recycle one, take it again.
	b1 := p.Get()
	b2 := p.Get()
	b3 := p.Get()
	require.NotNil(t, b1)
	require.NotNil(t, b2)
	require.NotNil(t, b3)
	require.Equal(t, 0, len(p.free))

	p.Put()
	require.Equal(t, 1, len(p.free))

	p.PutAll()
	require.Equal(t, 3, len(p.free))

	// Spurious completion with nothing in flight is a no-op.
	p.Put()
	require.Equal(t, 3, len(p.free))
}

func TestConnPoolExhaustion(t *testing.T) {
	p := newConnPool(nil, 2)
	require.Equal(t, 2, p.available())

	c1 := p.acquire()
	c2 := p.acquire()
	require.NotNil(t, c1)
	require.NotNil(t, c2)

	// Exhaustion is nil, not an error or a grow.
	require.Nil(t, p.acquire())

	p.release(c1)
	require.Equal(t, 1, p.available())
	require.NotNil(t, p.acquire())
}

func TestConnPoolDoubleReleaseIsNoop(t *testing.T) {
	p := newConnPool(nil, 1)
	c := p.acquire()
	p.release(c)
	p.release(c)
	require.Equal(t, 1, p.available())
}

func TestChanPoolResetOnRelease(t *testing.T) {
	p := newChanPool(1, 128)

	s := p.acquire()
	require.NotNil(t, s)
	gen := s.gen

	// Dirty every field a past occupant could leave behind.
	s.bind(nil, 0x0080, 0x0040, defaultTestChanConfig())
	s.state = chanOpen
	s.remoteCID = 0x0041
	s.txMTU, s.txMPS, s.txCredits = 100, 27, 7
	s.rxBuf = append(s.rxBuf, 1, 2, 3)
	s.rxSDULen = 40
	s.consumed = 3

	p.release(s)

	s2 := p.acquire()
	require.Same(t, s, s2)
	require.Equal(t, chanClosed, s2.state)
	require.Zero(t, s2.psm)
	require.Zero(t, s2.localCID)
	require.Zero(t, s2.remoteCID)
	require.Zero(t, s2.txMTU)
	require.Zero(t, s2.txCredits)
	require.Zero(t, s2.consumed)
	require.Equal(t, 0, len(s2.rxBuf))
	require.Equal(t, 128, cap(s2.rxBuf), "reassembly buffer must be retained, not reallocated")
	require.Equal(t, -1, s2.rxSDULen)
	require.Zero(t, s2.rxPDUs)
	require.Nil(t, s2.rxQ)
	require.NotEqual(t, gen, s2.gen, "generation must advance on release")
}

func TestChanPoolDoubleReleaseIsNoop(t *testing.T) {
	p := newChanPool(2, 64)
	s := p.acquire()
	p.release(s)
	p.release(s)
	require.Equal(t, 2, p.available())
}

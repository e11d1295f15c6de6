package hci

import (
	"context"
	"encoding/binary"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/kestrelbt/ble"
	"github.com/kestrelbt/ble/hci/evt"
)

func defaultTestChanConfig() ble.ChannelConfig {
	return ble.ChannelConfig{
		MTU:            100,
		MPS:            27,
		InitialCredits: 10,
		FlowPolicy:     ble.FlowPolicy{Every: 5},
	}
}

// fakeController captures everything a connection writes to the wire.
type fakeController struct {
	mu    sync.Mutex
	wrote [][]byte

	pool  BufferPool
	chans *chanPool
	cfg   ble.ChannelConfig
}

func newFakeController(t *testing.T, slots int) *fakeController {
	t.Helper()
	pool, err := NewTxPool(512, 16)
	require.NoError(t, err)
	return &fakeController{
		pool:  pool,
		chans: newChanPool(slots, 128),
		cfg:   defaultTestChanConfig(),
	}
}

func (f *fakeController) RequestBufferPool() BufferPool { return f.pool }
func (f *fakeController) ChannelPool() *chanPool        { return f.chans }
func (f *fakeController) DispatchError(error)           {}
func (f *fakeController) Send(Command, CommandRP) error { return nil }
func (f *fakeController) Addr() ble.Addr                { return ble.NewAddr("11:22:33:44:55:66") }
func (f *fakeController) Context() context.Context      { return context.Background() }
func (f *fakeController) DefaultChannelConfig() ble.ChannelConfig {
	return f.cfg
}

func (f *fakeController) SocketWrite(b []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := make([]byte, len(b))
	copy(p, b)
	f.wrote = append(f.wrote, p)
	return len(b), nil
}

// pdus returns the L2CAP payloads written to the given CID, one entry
// per K-frame or C-frame.
func (f *fakeController) pdus(cid uint16) [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out [][]byte
	for _, w := range f.wrote {
		if len(w) < 9 || w[0] != byte(pktTypeACLData) {
			continue
		}
		p := pdu(w[5:])
		if p.cid() == cid {
			out = append(out, p.payload())
		}
	}
	return out
}

type wireSig struct {
	code byte
	id   byte
	data []byte
}

// signals parses the C-frames written to the signaling channel.
func (f *fakeController) signals() []wireSig {
	var out []wireSig
	for _, b := range f.pdus(cidLESignal) {
		for len(b) >= 4 {
			dlen := int(binary.LittleEndian.Uint16(b[2:4]))
			out = append(out, wireSig{code: b[0], id: b[1], data: b[4 : 4+dlen]})
			b = b[4+dlen:]
		}
	}
	return out
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func testConnComplete(handle uint16, role byte) evt.LEConnectionComplete {
	b := make([]byte, 19)
	b[0] = evt.LEConnectionCompleteSubCode
	binary.LittleEndian.PutUint16(b[2:], handle)
	b[4] = role
	copy(b[6:12], []byte{0x66, 0x55, 0x44, 0x33, 0x22, 0x11})
	return evt.LEConnectionComplete(b)
}

func newTestConn(t *testing.T, f *fakeController) *Conn {
	t.Helper()
	c := &Conn{ctrl: f}
	c.init(testConnComplete(0x0040, roleMaster))
	t.Cleanup(func() {
		select {
		case <-c.chDone:
		default:
			close(c.chInPkt)
			c.closed()
		}
	})
	return c
}

// openTestChannel runs the initiator handshake against a scripted peer
// response and returns the open channel.
func openTestChannel(t *testing.T, c *Conn, f *fakeController, rsp LECreditBasedConnectionResponse) (ble.Channel, error) {
	t.Helper()
	type result struct {
		ch  ble.Channel
		err error
	}
	done := make(chan result, 1)
	go func() {
		ch, err := c.OpenChannel(0x2349, nil)
		done <- result{ch, err}
	}()

	var req wireSig
	waitFor(t, "connection request", func() bool {
		for _, s := range f.signals() {
			if s.code == SignalLECreditBasedConnectionRequest {
				req = s
				return true
			}
		}
		return false
	})
	c.deliverResponse(sigPacket{
		code: SignalLECreditBasedConnectionResponse,
		id:   req.id,
		data: rsp.Marshal(),
	})

	r := <-done
	return r.ch, r.err
}

func TestOpenChannelSuccess(t *testing.T) {
	f := newFakeController(t, 4)
	c := newTestConn(t, f)

	ch, err := openTestChannel(t, c, f, LECreditBasedConnectionResponse{
		DestinationCID: 0x0041,
		MTU:            100,
		MPS:            27,
		InitialCredits: 10,
		Result:         CocResultSuccess,
	})
	require.NoError(t, err)

	info := ch.Info()
	require.Equal(t, uint16(0x2349), info.PSM)
	require.Equal(t, uint16(0x0041), info.RemoteCID)
	require.Equal(t, uint16(100), info.TxMTU)
	require.Equal(t, uint16(27), info.TxMPS)
	require.Equal(t, 3, f.chans.available())
}

func TestOpenChannelPSMRejected(t *testing.T) {
	f := newFakeController(t, 4)
	c := newTestConn(t, f)

	_, err := openTestChannel(t, c, f, LECreditBasedConnectionResponse{
		Result: CocResultPSMNotSupported,
	})
	require.Equal(t, ble.ErrPSMNotSupported, err)

	// A refused request must not leak its slot.
	require.Equal(t, 4, f.chans.available())
}

func TestOpenChannelNoResources(t *testing.T) {
	f := newFakeController(t, 4)
	c := newTestConn(t, f)

	_, err := openTestChannel(t, c, f, LECreditBasedConnectionResponse{
		Result: CocResultNoResources,
	})
	require.Equal(t, ble.ErrUnavailable, err)
	require.Equal(t, 4, f.chans.available())
}

func TestOpenChannelPoolExhausted(t *testing.T) {
	f := newFakeController(t, 1)
	c := newTestConn(t, f)

	_, err := openTestChannel(t, c, f, LECreditBasedConnectionResponse{
		DestinationCID: 0x0041,
		MTU:            100,
		MPS:            27,
		InitialCredits: 1,
		Result:         CocResultSuccess,
	})
	require.NoError(t, err)

	// Second open fails fast, before any signaling.
	_, err = c.OpenChannel(0x2349, nil)
	require.Equal(t, ble.ErrUnavailable, err)
}

func TestOpenBuffersDataBehindResponse(t *testing.T) {
	f := newFakeController(t, 4)
	c := newTestConn(t, f)

	type result struct {
		ch  ble.Channel
		err error
	}
	done := make(chan result, 1)
	go func() {
		ch, err := c.OpenChannel(0x2349, nil)
		done <- result{ch, err}
	}()

	var req wireSig
	waitFor(t, "connection request", func() bool {
		for _, s := range f.signals() {
			if s.code == SignalLECreditBasedConnectionRequest {
				req = s
				return true
			}
		}
		return false
	})
	var creq LECreditBasedConnectionRequest
	require.NoError(t, creq.Unmarshal(req.data))

	// A K-frame right behind the peer's response can reach the input
	// loop before the opener applies the response. It must be buffered,
	// not lost.
	c.coc.receive(creq.SourceCID, kframe(true, 3, []byte{7, 8, 9}))

	rsp := LECreditBasedConnectionResponse{
		DestinationCID: 0x0041,
		MTU:            100,
		MPS:            27,
		InitialCredits: 10,
		Result:         CocResultSuccess,
	}
	c.deliverResponse(sigPacket{
		code: SignalLECreditBasedConnectionResponse,
		id:   req.id,
		data: rsp.Marshal(),
	})

	r := <-done
	require.NoError(t, r.err)

	buf := make([]byte, 16)
	n, err := r.ch.Receive(buf)
	require.NoError(t, err)
	require.Equal(t, []byte{7, 8, 9}, buf[:n])
}

func TestSendFragmentsAndConsumesCredits(t *testing.T) {
	f := newFakeController(t, 4)
	c := newTestConn(t, f)

	ch, err := openTestChannel(t, c, f, LECreditBasedConnectionResponse{
		DestinationCID: 0x0041,
		MTU:            100,
		MPS:            27,
		InitialCredits: 10,
		Result:         CocResultSuccess,
	})
	require.NoError(t, err)

	sdu := make([]byte, 100)
	for i := range sdu {
		sdu[i] = byte(i)
	}
	require.NoError(t, ch.Send(sdu))

	// 2 byte SDU header + 100 bytes at MPS 27: 27+27+27+21.
	frames := f.pdus(0x0041)
	require.Len(t, frames, 4)
	require.Len(t, frames[0], 27)
	require.Len(t, frames[3], 21)
	require.Equal(t, uint16(100), binary.LittleEndian.Uint16(frames[0][:2]))

	var got []byte
	got = append(got, frames[0][2:]...)
	for _, fr := range frames[1:] {
		got = append(got, fr...)
	}
	require.Equal(t, sdu, got)

	// One credit per K-frame.
	cc := ch.(*cocChannel)
	cc.s.mu.Lock()
	credits := cc.s.txCredits
	cc.s.mu.Unlock()
	require.Equal(t, uint16(6), credits)
}

func TestSendRejectsOversizeSDU(t *testing.T) {
	f := newFakeController(t, 4)
	c := newTestConn(t, f)

	ch, err := openTestChannel(t, c, f, LECreditBasedConnectionResponse{
		DestinationCID: 0x0041,
		MTU:            50,
		MPS:            27,
		InitialCredits: 10,
		Result:         CocResultSuccess,
	})
	require.NoError(t, err)
	require.Equal(t, ble.ErrMTUExceeded, ch.Send(make([]byte, 51)))
}

func TestSendBlocksUntilCreditArrives(t *testing.T) {
	f := newFakeController(t, 4)
	c := newTestConn(t, f)

	ch, err := openTestChannel(t, c, f, LECreditBasedConnectionResponse{
		DestinationCID: 0x0041,
		MTU:            100,
		MPS:            27,
		InitialCredits: 0,
		Result:         CocResultSuccess,
	})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- ch.Send([]byte("hello")) }()

	select {
	case err := <-done:
		t.Fatalf("send completed without credit: %v", err)
	case <-time.After(50 * time.Millisecond):
	}
	require.Empty(t, f.pdus(0x0041), "no frame may go out before a credit arrives")

	grant := LEFlowControlCredit{CID: 0x0041, Credits: 1}
	c.coc.handleCredit(grant.Marshal())

	require.NoError(t, <-done)
	require.Len(t, f.pdus(0x0041), 1)
}

func TestTeardownWakesBlockedSender(t *testing.T) {
	f := newFakeController(t, 4)
	c := newTestConn(t, f)

	ch, err := openTestChannel(t, c, f, LECreditBasedConnectionResponse{
		DestinationCID: 0x0041,
		MTU:            100,
		MPS:            27,
		InitialCredits: 0,
		Result:         CocResultSuccess,
	})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- ch.Send([]byte("stuck")) }()
	time.Sleep(20 * time.Millisecond)

	c.coc.invalidate()
	require.Equal(t, ble.ErrChannelClosed, <-done)
	require.Equal(t, 4, f.chans.available())
}

func TestCreditSaturation(t *testing.T) {
	s := &chanSlot{}
	s.bind(nil, 0x2349, 0x0040, defaultTestChanConfig())
	s.txCredits = 0xfff0

	s.addCredits(0x0100)
	require.Equal(t, uint16(0xffff), s.txCredits)
}

// acceptTestChannel fakes a peer initiating a channel on psm from scid.
// Each fake peer endpoint needs its own scid; a reused one is refused
// as already in use.
func acceptTestChannel(t *testing.T, c *Conn, f *fakeController, psm, scid uint16) ble.Channel {
	t.Helper()
	type result struct {
		ch  ble.Channel
		err error
	}
	done := make(chan result, 1)
	go func() {
		ch, err := c.AcceptChannel([]uint16{psm}, nil)
		done <- result{ch, err}
	}()

	waitFor(t, "listener registration", func() bool {
		c.coc.mu.Lock()
		defer c.coc.mu.Unlock()
		return len(c.coc.waiters) == 1
	})

	req := LECreditBasedConnectionRequest{
		LEPSM:          psm,
		SourceCID:      scid,
		MTU:            80,
		MPS:            25,
		InitialCredits: 4,
	}
	c.coc.handleConnectionRequest(7, req.Marshal())

	r := <-done
	require.NoError(t, r.err)
	return r.ch
}

func TestAcceptChannel(t *testing.T) {
	f := newFakeController(t, 4)
	c := newTestConn(t, f)

	ch := acceptTestChannel(t, c, f, 0x2349, 0x0060)
	info := ch.Info()
	require.Equal(t, uint16(0x0060), info.RemoteCID)
	require.Equal(t, uint16(80), info.TxMTU)
	require.Equal(t, uint16(25), info.TxMPS)

	// Success response carries our receive side parameters.
	var rsp LECreditBasedConnectionResponse
	found := false
	for _, s := range f.signals() {
		if s.code == SignalLECreditBasedConnectionResponse && s.id == 7 {
			require.NoError(t, rsp.Unmarshal(s.data))
			found = true
		}
	}
	require.True(t, found)
	require.Equal(t, CocResultSuccess, rsp.Result)
	require.Equal(t, info.LocalCID, rsp.DestinationCID)
	require.Equal(t, uint16(100), rsp.MTU)
	require.Equal(t, uint16(10), rsp.InitialCredits)
}

func TestInboundRequestUnknownPSM(t *testing.T) {
	f := newFakeController(t, 4)
	c := newTestConn(t, f)

	req := LECreditBasedConnectionRequest{
		LEPSM:          0x0099,
		SourceCID:      0x0060,
		MTU:            80,
		MPS:            25,
		InitialCredits: 4,
	}
	c.coc.handleConnectionRequest(3, req.Marshal())

	sigs := f.signals()
	require.Len(t, sigs, 1)
	var rsp LECreditBasedConnectionResponse
	require.NoError(t, rsp.Unmarshal(sigs[0].data))
	require.Equal(t, CocResultPSMNotSupported, rsp.Result)

	// A refused PSM must not consume a slot.
	require.Equal(t, 4, f.chans.available())
}

func TestInboundRequestNoResources(t *testing.T) {
	f := newFakeController(t, 1)
	c := newTestConn(t, f)

	// Occupy the only slot.
	acceptTestChannel(t, c, f, 0x2349, 0x0060)

	done := make(chan struct{})
	go func() {
		c.AcceptChannel([]uint16{0x2349}, nil)
		close(done)
	}()
	waitFor(t, "second listener", func() bool {
		c.coc.mu.Lock()
		defer c.coc.mu.Unlock()
		return len(c.coc.waiters) == 1
	})

	req := LECreditBasedConnectionRequest{
		LEPSM:          0x2349,
		SourceCID:      0x0070,
		MTU:            80,
		MPS:            25,
		InitialCredits: 4,
	}
	c.coc.handleConnectionRequest(9, req.Marshal())

	var rsp LECreditBasedConnectionResponse
	waitFor(t, "no-resources refusal", func() bool {
		for _, s := range f.signals() {
			if s.code == SignalLECreditBasedConnectionResponse && s.id == 9 {
				rsp = LECreditBasedConnectionResponse{}
				if rsp.Unmarshal(s.data) == nil {
					return true
				}
			}
		}
		return false
	})
	require.Equal(t, CocResultNoResources, rsp.Result)
}

func TestAcceptRejectsOversizeMTU(t *testing.T) {
	f := newFakeController(t, 4)
	c := newTestConn(t, f)

	// Pool reassembly buffers hold 128 bytes; an accept configured
	// beyond that must refuse rather than reallocate.
	done := make(chan error, 1)
	go func() {
		_, err := c.AcceptChannel([]uint16{0x2349}, &ble.ChannelConfig{MTU: 200, MPS: 27})
		done <- err
	}()
	waitFor(t, "listener registration", func() bool {
		c.coc.mu.Lock()
		defer c.coc.mu.Unlock()
		return len(c.coc.waiters) == 1
	})

	req := LECreditBasedConnectionRequest{
		LEPSM:          0x2349,
		SourceCID:      0x0060,
		MTU:            80,
		MPS:            25,
		InitialCredits: 4,
	}
	c.coc.handleConnectionRequest(5, req.Marshal())

	require.Equal(t, ble.ErrProtocol, errors.Cause(<-done))

	var rsp LECreditBasedConnectionResponse
	found := false
	for _, s := range f.signals() {
		if s.code == SignalLECreditBasedConnectionResponse && s.id == 5 {
			require.NoError(t, rsp.Unmarshal(s.data))
			found = true
		}
	}
	require.True(t, found)
	require.Equal(t, CocResultNoResources, rsp.Result)
	require.Equal(t, 4, f.chans.available())
}

// kframe builds one inbound K-frame payload; first marks the SDU header.
func kframe(first bool, sduLen int, data []byte) []byte {
	if !first {
		return data
	}
	b := make([]byte, 2+len(data))
	binary.LittleEndian.PutUint16(b, uint16(sduLen))
	copy(b[2:], data)
	return b
}

func TestReceiveReassembly(t *testing.T) {
	f := newFakeController(t, 4)
	c := newTestConn(t, f)

	ch := acceptTestChannel(t, c, f, 0x2349, 0x0060)
	cid := ch.Info().LocalCID

	sdu := make([]byte, 60)
	for i := range sdu {
		sdu[i] = byte(0xA0 + i)
	}

	// 60 bytes at our MPS 27: (2+25) + 27 + 8.
	c.coc.receive(cid, kframe(true, 60, sdu[:25]))
	c.coc.receive(cid, kframe(false, 0, sdu[25:52]))
	c.coc.receive(cid, kframe(false, 0, sdu[52:]))

	buf := make([]byte, 100)
	n, err := ch.Receive(buf)
	require.NoError(t, err)
	require.Equal(t, sdu, buf[:n])
}

func TestReceiveCreditGrantBatch(t *testing.T) {
	f := newFakeController(t, 4)
	c := newTestConn(t, f)

	ch := acceptTestChannel(t, c, f, 0x2349, 0x0060)
	cid := ch.Info().LocalCID

	countGrants := func() (n int, credits uint16) {
		for _, s := range f.signals() {
			if s.code == SignalLEFlowControlCredit {
				var sig LEFlowControlCredit
				require.NoError(t, sig.Unmarshal(s.data))
				require.Equal(t, cid, sig.CID)
				n++
				credits = sig.Credits
			}
		}
		return n, credits
	}

	// Receiving alone grants nothing; replenishment follows the drain.
	for i := 0; i < 5; i++ {
		c.coc.receive(cid, kframe(true, 1, []byte{byte(i)}))
	}
	n, _ := countGrants()
	require.Zero(t, n)

	// Policy grants 5 after every 5 drained PDUs. Draining four emits
	// nothing; the fifth emits exactly one grant of five.
	buf := make([]byte, 16)
	for i := 0; i < 4; i++ {
		_, err := ch.Receive(buf)
		require.NoError(t, err)
	}
	n, _ = countGrants()
	require.Zero(t, n)

	_, err := ch.Receive(buf)
	require.NoError(t, err)
	n, credits := countGrants()
	require.Equal(t, 1, n)
	require.Equal(t, uint16(5), credits)
}

func TestReceiveFullCreditBurstUndrained(t *testing.T) {
	f := newFakeController(t, 4)
	c := newTestConn(t, f)

	ch := acceptTestChannel(t, c, f, 0x2349, 0x0060)
	cid := ch.Info().LocalCID

	// The peer spends its entire initial grant of 10 before the
	// receiver drains anything. Every SDU must survive.
	for i := 0; i < 10; i++ {
		c.coc.receive(cid, kframe(true, 1, []byte{byte(i)}))
	}

	buf := make([]byte, 16)
	for i := 0; i < 10; i++ {
		n, err := ch.Receive(buf)
		require.NoError(t, err)
		require.Equal(t, 1, n)
		require.Equal(t, byte(i), buf[0])
	}

	// Replenishment followed the drain: two batches of five.
	var grants []uint16
	for _, s := range f.signals() {
		if s.code == SignalLEFlowControlCredit {
			var sig LEFlowControlCredit
			require.NoError(t, sig.Unmarshal(s.data))
			grants = append(grants, sig.Credits)
		}
	}
	require.Equal(t, []uint16{5, 5}, grants)
}

func TestReceiveCreditOverspendClosesChannel(t *testing.T) {
	f := newFakeController(t, 4)
	c := newTestConn(t, f)

	ch := acceptTestChannel(t, c, f, 0x2349, 0x0060)
	other := acceptTestChannel(t, c, f, 0x2349, 0x0061)
	cid := ch.Info().LocalCID

	// The whole grant of 10 is spent with nothing drained, so no
	// credits were replenished; the 11th PDU is a violation.
	for i := 0; i < 11; i++ {
		c.coc.receive(cid, kframe(true, 1, []byte{byte(i)}))
	}

	require.Equal(t, ble.ErrChannelClosed, ch.Send([]byte("x")))

	// Teardown announced itself with a disconnect request.
	var req DisconnectRequest
	found := false
	for _, s := range f.signals() {
		if s.code == SignalDisconnectRequest {
			require.NoError(t, req.Unmarshal(s.data))
			found = true
		}
	}
	require.True(t, found)
	require.Equal(t, cid, req.SourceCID)

	// The sibling channel is unaffected.
	c.coc.receive(other.Info().LocalCID, kframe(true, 2, []byte{1, 2}))
	n, err := other.Receive(make([]byte, 16))
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestReceiveProtocolViolationClosesChannel(t *testing.T) {
	f := newFakeController(t, 4)
	c := newTestConn(t, f)

	ch := acceptTestChannel(t, c, f, 0x2349, 0x0060)
	other := acceptTestChannel(t, c, f, 0x2349, 0x0061)
	cid := ch.Info().LocalCID

	// SDU length above our MTU (100) tears the channel down.
	c.coc.receive(cid, kframe(true, 101, make([]byte, 25)))

	buf := make([]byte, 128)
	_, err := ch.Receive(buf)
	require.Equal(t, ble.ErrChannelClosed, err)
	require.Equal(t, ble.ErrChannelClosed, ch.Send([]byte("x")))

	// The sibling channel is unaffected.
	c.coc.receive(other.Info().LocalCID, kframe(true, 2, []byte{1, 2}))
	n, err := other.Receive(buf)
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestPeerDisconnectWakesReceiver(t *testing.T) {
	f := newFakeController(t, 4)
	c := newTestConn(t, f)

	ch := acceptTestChannel(t, c, f, 0x2349, 0x0060)
	info := ch.Info()

	done := make(chan error, 1)
	go func() {
		_, err := ch.Receive(make([]byte, 128))
		done <- err
	}()
	time.Sleep(20 * time.Millisecond)

	req := DisconnectRequest{DestinationCID: info.LocalCID, SourceCID: info.RemoteCID}
	c.coc.handleDisconnectRequest(11, req.Marshal())

	require.Equal(t, ble.ErrChannelClosed, <-done)

	// The response echoes both endpoints.
	var rsp DisconnectResponse
	found := false
	for _, s := range f.signals() {
		if s.code == SignalDisconnectResponse {
			require.NoError(t, rsp.Unmarshal(s.data))
			found = true
		}
	}
	require.True(t, found)
	require.Equal(t, info.LocalCID, rsp.DestinationCID)
	require.Equal(t, 4, f.chans.available())
}

func TestStaleHandleAfterRelease(t *testing.T) {
	f := newFakeController(t, 1)
	c := newTestConn(t, f)

	ch := acceptTestChannel(t, c, f, 0x2349, 0x0060)
	info := ch.Info()

	req := DisconnectRequest{DestinationCID: info.LocalCID, SourceCID: info.RemoteCID}
	c.coc.handleDisconnectRequest(11, req.Marshal())

	// The slot is reused by a new channel; the old handle must keep
	// reporting closed instead of touching the new occupant.
	ch2 := acceptTestChannel(t, c, f, 0x2349, 0x0061)
	require.Equal(t, ble.ErrChannelClosed, ch.Send([]byte("stale")))
	require.NoError(t, ch.Close())

	c.coc.receive(ch2.Info().LocalCID, kframe(true, 2, []byte{9, 9}))
	n, err := ch2.Receive(make([]byte, 16))
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestConnectionLossInvalidatesAllChannels(t *testing.T) {
	f := newFakeController(t, 4)
	c := newTestConn(t, f)

	ch1 := acceptTestChannel(t, c, f, 0x2349, 0x0060)
	ch2 := acceptTestChannel(t, c, f, 0x2349, 0x0061)

	close(c.chInPkt)
	c.closed()

	require.Equal(t, ble.ErrChannelClosed, ch1.Send([]byte("a")))
	require.Equal(t, ble.ErrChannelClosed, ch2.Send([]byte("b")))
	require.Equal(t, 4, f.chans.available())
}

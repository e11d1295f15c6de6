package hci

import (
	"bytes"
	"context"
	"encoding/binary"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/kestrelbt/ble"
	"github.com/kestrelbt/ble/hci/cmd"
	"github.com/kestrelbt/ble/hci/evt"
)

const sigResponseTimeout = 5 * time.Second

// Conn is one connection slot. Slots are pre-allocated by the connection
// pool; init wires one to a live link, reset scrubs it for reuse.
type Conn struct {
	ctrl Controller

	// pooled is owned by connPool; true while the slot sits in the free set.
	pooled bool

	// gen increments on every release so stale handles can detect reuse.
	gen uint32

	mu    sync.Mutex
	state State

	ctx    context.Context
	cancel context.CancelFunc

	param evt.LEConnectionComplete

	// ATT channel MTUs [Vol 3, Part A, 3.2.8]; the attribute layer may
	// reconfigure them after connect.
	rxMTU int
	txMTU int
	rxMPS int

	// Signaling MTUs [Vol 3, Part A, 4.1].
	sigRxMTU int
	sigTxMTU int

	// sigID matches responses to signaling requests; one request is in
	// flight at a time, serialized by muSig.
	muSig   sync.Mutex
	sigID   uint8
	sigWait *sigWaiter

	chInPkt chan aclPacket
	chInPDU chan pdu
	chDone  chan struct{}

	// txBuffer tracks the controller ACL buffers this link occupies.
	txBuffer BufferPool

	coc *coc

	// Negotiated link parameters, updated by data length / PHY events.
	maxTxOctets int
	txPHY       uint8
	rxPHY       uint8
}

type sigWaiter struct {
	id   uint8
	done chan sigPacket
}

type sigPacket struct {
	code uint8
	id   uint8
	data []byte
}

// init attaches a pooled slot to an established link and starts its
// input loop.
func (c *Conn) init(e evt.LEConnectionComplete) {
	c.mu.Lock()
	c.param = append(evt.LEConnectionComplete(nil), e...)
	c.state = StateConnected

	c.rxMTU = defaultAttMTU
	c.txMTU = defaultAttMTU
	c.rxMPS = defaultAttMTU
	c.sigRxMTU = maxSigMTU
	c.sigTxMTU = defaultAttMTU

	c.chInPkt = make(chan aclPacket, 16)
	c.chInPDU = make(chan pdu, 16)
	c.chDone = make(chan struct{})
	c.txBuffer = c.ctrl.RequestBufferPool()
	c.ctx, c.cancel = context.WithCancel(c.ctrl.Context())
	c.coc = newCoc(c)
	c.mu.Unlock()

	go c.run()
}

// reset scrubs all residual state so the next occupant starts from a
// slot indistinguishable from a fresh one. Called with the pool locked.
func (c *Conn) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	atomic.AddUint32(&c.gen, 1)
	c.state = StateIdle
	c.param = nil
	c.rxMTU, c.txMTU, c.rxMPS = 0, 0, 0
	c.sigRxMTU, c.sigTxMTU = 0, 0
	c.sigID = 0
	c.sigWait = nil
	c.chInPkt = nil
	c.chInPDU = nil
	c.chDone = nil
	c.txBuffer = nil
	c.coc = nil
	c.maxTxOctets = 0
	c.txPHY, c.rxPHY = 0, 0
	if c.cancel != nil {
		c.cancel()
		c.ctx, c.cancel = nil, nil
	}
}

// run drains inbound ACL packets and recombines them into L2CAP PDUs.
// It exits when the input channel closes on disconnect.
func (c *Conn) run() {
	for {
		var pkt aclPacket
		var ok bool

		select {
		case pkt, ok = <-c.chInPkt:
			if !ok {
				logger.Debug("conn input closed; exiting")
				return
			}
		case <-c.ctx.Done():
			logger.Debug("conn context cancelled")
			return
		}

		if err := c.recombine(pkt); err != nil {
			if err != io.EOF {
				c.ctrl.DispatchError(errors.Wrap(err, "recombine"))
			}
			return
		}
	}
}

// recombine reassembles controller fragments into one L2CAP PDU and
// dispatches it by CID [Vol 3, Part A, 7.2.2].
func (c *Conn) recombine(pkt aclPacket) error {
	p := pdu(pkt.data())
	if len(p) < 4 {
		return errors.New("acl fragment shorter than basic header")
	}

	if p.cid() == cidLEAtt && p.dlen() > c.rxMPS {
		return errors.Errorf("fragment size (%d) larger than rxMPS (%d)", p.dlen(), c.rxMPS)
	}

	// Re-allocate the full PDU when more fragments follow.
	if len(p.payload()) < p.dlen() {
		p = make(pdu, 0, 4+p.dlen())
		p = append(p, pkt.data()...)
	}

	for len(p) < 4+p.dlen() {
		more, ok := <-c.chInPkt
		if !ok || (more.pbf()&pbfContinuing) == 0 {
			return io.ErrUnexpectedEOF
		}
		p = append(p, more.data()...)
	}

	switch {
	case p.cid() == cidLEAtt:
		select {
		case c.chInPDU <- p:
		case <-c.chDone:
		}
	case p.cid() == cidLESignal:
		c.handleSignal(p)
	case p.cid() == cidSMP:
		// Pairing is not implemented; peers discover that via SMP's own
		// "pairing not supported" exchange at a higher layer. Drop here.
		logger.Debug("smp pdu dropped")
	case p.cid() >= cidDynamicMin:
		c.coc.receive(p.cid(), p.payload())
	default:
		logger.Warnf("recombine: unrecognized CID %04X", p.cid())
	}
	return nil
}

// writePDU splits one L2CAP PDU into controller sized fragments and
// queues them, holding the buffer pool lock so fragments of concurrent
// PDUs never interleave [Vol 3, Part A, 7.2.1].
func (c *Conn) writePDU(p []byte) (int, error) {
	sent := 0
	flags := uint16(pbfHostToControllerStart << 4)

	c.txBuffer.Lock()
	defer c.txBuffer.Unlock()

	// Check closed with the pool locked to avoid racing cleanup.
	select {
	case <-c.chDone:
		return 0, io.ErrClosedPipe
	default:
	}

	for len(p) > 0 {
		pkt := c.txBuffer.Get()
		flen := len(p)
		if flen > pkt.Cap()-1-4 {
			flen = pkt.Cap() - 1 - 4
		}

		if err := buildACLPacket(pkt, p[:flen], c.ConnectionHandle(), flags); err != nil {
			return sent, err
		}

		select {
		case <-c.chDone:
			return sent, io.ErrClosedPipe
		default:
		}

		if _, err := c.ctrl.SocketWrite(pkt.Bytes()); err != nil {
			return sent, errors.Wrap(err, "writePDU")
		}
		sent += flen

		flags = pbfContinuing << 4
		p = p[flen:]
	}

	return sent, nil
}

func buildACLPacket(pkt *bytes.Buffer, frag []byte, handle uint16, flags uint16) error {
	if err := binary.Write(pkt, binary.LittleEndian, pktTypeACLData); err != nil {
		return errors.Wrap(err, "buildACLPacket")
	}
	if err := binary.Write(pkt, binary.LittleEndian, handle|(flags<<8)); err != nil {
		return errors.Wrap(err, "buildACLPacket")
	}
	if err := binary.Write(pkt, binary.LittleEndian, uint16(len(frag))); err != nil {
		return errors.Wrap(err, "buildACLPacket")
	}
	if err := binary.Write(pkt, binary.LittleEndian, frag); err != nil {
		return errors.Wrap(err, "buildACLPacket")
	}
	return nil
}

// handleSignal walks the commands of one C-frame [Vol 3, Part A, 4].
func (c *Conn) handleSignal(p pdu) {
	if p.dlen() > c.sigRxMTU {
		c.sendSignal(0, &CommandReject{Reason: rejectReasonSigMTU})
		return
	}

	b := p.payload()
	for len(b) >= 4 {
		code := b[0]
		id := b[1]
		dlen := int(binary.LittleEndian.Uint16(b[2:4]))
		if len(b) < 4+dlen {
			logger.Warnf("signal: truncated command 0x%02X", code)
			return
		}
		data := b[4 : 4+dlen]

		switch int(code) {
		case SignalLECreditBasedConnectionRequest:
			c.coc.handleConnectionRequest(id, data)
		case SignalDisconnectRequest:
			c.coc.handleDisconnectRequest(id, data)
		case SignalLEFlowControlCredit:
			c.coc.handleCredit(data)
		case SignalConnectionParameterUpdateRequest:
			// Parameter choice is the central's; accept as-is.
			c.sendSignal(id, &ConnectionParameterUpdateResponse{Result: 0})
		case SignalLECreditBasedConnectionResponse,
			SignalDisconnectResponse,
			SignalConnectionParameterUpdateResponse,
			SignalCommandReject:
			c.deliverResponse(sigPacket{code: code, id: id, data: data})
		default:
			c.sendSignal(id, &CommandReject{Reason: rejectReasonNotUnderstood})
		}

		b = b[4+dlen:]
	}
}

func (c *Conn) deliverResponse(pkt sigPacket) {
	c.mu.Lock()
	w := c.sigWait
	c.mu.Unlock()
	if w == nil || w.id != pkt.id {
		logger.Debugf("signal: unmatched response code 0x%02X id %d", pkt.code, pkt.id)
		return
	}
	select {
	case w.done <- pkt:
	default:
	}
}

// sendSignal emits one signaling command without waiting for a reply.
func (c *Conn) sendSignal(id uint8, s Signal) error {
	data := s.Marshal()
	buf := bytes.NewBuffer(make([]byte, 0, 8+len(data)))
	binary.Write(buf, binary.LittleEndian, uint16(4+len(data)))
	binary.Write(buf, binary.LittleEndian, cidLESignal)
	buf.WriteByte(uint8(s.Code()))
	buf.WriteByte(id)
	binary.Write(buf, binary.LittleEndian, uint16(len(data)))
	buf.Write(data)
	_, err := c.writePDU(buf.Bytes())
	return err
}

// Signal issues a signaling request and, when rsp is non-nil, blocks
// until the matching response arrives or the link dies. A CommandReject
// from the peer is surfaced as an error.
func (c *Conn) Signal(req Signal, rsp Signal) error {
	c.muSig.Lock()
	defer c.muSig.Unlock()

	c.mu.Lock()
	c.sigID++
	if c.sigID == 0 {
		c.sigID = 1
	}
	id := c.sigID
	var w *sigWaiter
	if rsp != nil {
		w = &sigWaiter{id: id, done: make(chan sigPacket, 1)}
		c.sigWait = w
	}
	c.mu.Unlock()

	if err := c.sendSignal(id, req); err != nil {
		c.clearWaiter()
		return err
	}
	if rsp == nil {
		return nil
	}
	defer c.clearWaiter()

	select {
	case pkt := <-w.done:
		if int(pkt.code) == SignalCommandReject {
			var rej CommandReject
			_ = rej.Unmarshal(pkt.data)
			return errors.Errorf("signal: command rejected, reason 0x%04X", rej.Reason)
		}
		if int(pkt.code) != rsp.Code() {
			return errors.Errorf("signal: unexpected response code 0x%02X", pkt.code)
		}
		return rsp.Unmarshal(pkt.data)
	case <-c.chDone:
		return ble.ErrChannelClosed
	case <-time.After(sigResponseTimeout):
		return errors.New("signal: response timeout")
	}
}

func (c *Conn) clearWaiter() {
	c.mu.Lock()
	c.sigWait = nil
	c.mu.Unlock()
}

// closed tears the slot down: stops the input loop, invalidates every
// credit based channel atomically, and wakes all blocked callers. The
// caller returns the slot to the pool afterwards.
func (c *Conn) closed() {
	c.mu.Lock()
	if c.state == StateIdle {
		c.mu.Unlock()
		return
	}
	c.state = StateIdle
	coc := c.coc
	c.mu.Unlock()

	if coc != nil {
		coc.invalidate()
	}
	close(c.chDone)
	c.cancel()
}

// --- ble.Conn surface -------------------------------------------------

// Read copies the next reassembled attribute channel PDU into sdu.
func (c *Conn) Read(sdu []byte) (int, error) {
	var p pdu
	var ok bool
	select {
	case p, ok = <-c.chInPDU:
		if !ok {
			return 0, errors.Wrap(io.ErrClosedPipe, "input channel closed")
		}
	case <-c.chDone:
		return 0, errors.Wrap(io.ErrClosedPipe, "connection closed")
	}
	if len(p) == 0 {
		return 0, errors.Wrap(io.ErrUnexpectedEOF, "received empty packet")
	}

	slen := p.dlen()
	if cap(sdu) < slen {
		return 0, errors.Wrap(io.ErrShortBuffer, "payload exceeds sdu buffer")
	}
	buf := bytes.NewBuffer(sdu[:0])
	buf.Write(p.payload())
	for buf.Len() < slen {
		p := <-c.chInPDU
		buf.Write(p.payload())
	}
	return slen, nil
}

// Write sends one attribute channel SDU as a B-frame.
func (c *Conn) Write(sdu []byte) (int, error) {
	if len(sdu) > c.txMTU {
		return 0, errors.Wrap(io.ErrShortWrite, "payload exceeds mtu")
	}

	b := make([]byte, 4+len(sdu))
	binary.LittleEndian.PutUint16(b[0:2], uint16(len(sdu)))
	binary.LittleEndian.PutUint16(b[2:4], cidLEAtt)
	copy(b[4:], sdu)
	return c.writePDU(b)
}

// Context returns the context that is used by this Conn.
func (c *Conn) Context() context.Context { return c.ctx }

// SetContext sets the context that is used by this Conn.
func (c *Conn) SetContext(ctx context.Context) { c.ctx = ctx }

// Disconnected returns a receiving channel, which is closed when the connection disconnects.
func (c *Conn) Disconnected() <-chan struct{} { return c.chDone }

// LocalAddr returns local device's MAC address.
func (c *Conn) LocalAddr() ble.Addr { return c.ctrl.Addr() }

// RemoteAddr returns remote device's MAC address.
func (c *Conn) RemoteAddr() ble.Addr {
	a := c.param.PeerAddress()
	return ble.NewAddr(net.HardwareAddr([]byte{a[5], a[4], a[3], a[2], a[1], a[0]}).String())
}

// ConnectionHandle returns the controller assigned handle.
func (c *Conn) ConnectionHandle() uint16 { return c.param.ConnectionHandle() }

// State reports the slot's lifecycle state.
func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// RxMTU returns the ATT MTU the local device accepts.
func (c *Conn) RxMTU() int { return c.rxMTU }

// SetRxMTU sets the ATT MTU the local device accepts.
func (c *Conn) SetRxMTU(mtu int) { c.rxMTU, c.rxMPS = mtu, mtu }

// TxMTU returns the ATT MTU the remote device accepts.
func (c *Conn) TxMTU() int { return c.txMTU }

// SetTxMTU sets the ATT MTU the remote device accepts.
func (c *Conn) SetTxMTU(mtu int) { c.txMTU = mtu }

// Close disconnects the connection by sending an HCI disconnect to the
// controller. Closing twice is a no-op; cleanup happens when the
// Disconnection Complete event arrives.
func (c *Conn) Close() error {
	select {
	case <-c.chDone:
		return nil
	default:
	}
	c.mu.Lock()
	if c.state == StateDisconnecting {
		c.mu.Unlock()
		return nil
	}
	c.state = StateDisconnecting
	c.mu.Unlock()
	return c.ctrl.Send(&cmd.Disconnect{
		ConnectionHandle: c.ConnectionHandle(),
		Reason:           0x13,
	}, nil)
}

// OpenChannel initiates a credit based channel on this link.
func (c *Conn) OpenChannel(psm uint16, cfg *ble.ChannelConfig) (ble.Channel, error) {
	return c.coc.open(psm, cfg)
}

// AcceptChannel waits for a peer initiated channel on one of psms.
func (c *Conn) AcceptChannel(psms []uint16, cfg *ble.ChannelConfig) (ble.Channel, error) {
	return c.coc.accept(psms, cfg)
}

// SetPHY requests a PHY change; the controller acknowledges the command
// immediately and reports the outcome later in an LE PHY Update Complete
// event, which the dispatcher routes back here.
func (c *Conn) SetPHY(txPHY, rxPHY uint8) error {
	ctrl, ok := c.ctrl.(*HCI)
	if !ok {
		return errors.New("phy update unsupported by controller")
	}
	ch, err := ctrl.SendAsync(&cmd.LESetPHY{
		ConnectionHandle: c.ConnectionHandle(),
		TXPHYs:           txPHY,
		RXPHYs:           rxPHY,
	}, evt.LEPHYUpdateCompleteSubCode)
	if err != nil {
		return err
	}
	select {
	case b := <-ch:
		e := evt.LEPHYUpdateComplete(b)
		if e.Status() != 0 {
			return ErrCommand(e.Status())
		}
		c.mu.Lock()
		c.txPHY, c.rxPHY = e.TXPHY(), e.RXPHY()
		c.mu.Unlock()
		return nil
	case <-c.chDone:
		return ble.ErrChannelClosed
	case <-time.After(cmdResponseTimeout):
		return errors.New("phy update: completion timeout")
	}
}

// SetDataLength suggests larger link layer payloads for throughput.
func (c *Conn) SetDataLength(txOctets, txTime uint16) error {
	rp := cmd.LESetDataLengthRP{}
	if err := c.ctrl.Send(&cmd.LESetDataLength{
		ConnectionHandle: c.ConnectionHandle(),
		TXOctets:         txOctets,
		TXTime:           txTime,
	}, &rp); err != nil {
		return err
	}
	return nil
}

var _ ble.Conn = (*Conn)(nil)

// connHandle is the reference handed to callers. It pins the slot's
// generation at connect time so a handle that outlives its connection
// fails cleanly instead of touching the slot's next occupant.
type connHandle struct {
	c   *Conn
	gen uint32

	// chDone is captured at bind time; it stays closed after the slot
	// is recycled, so stale handles always observe disconnection.
	chDone <-chan struct{}
	ctx    context.Context
	handle uint16
	remote ble.Addr
}

func newConnHandle(c *Conn) *connHandle {
	return &connHandle{
		c:      c,
		gen:    atomic.LoadUint32(&c.gen),
		chDone: c.chDone,
		ctx:    c.ctx,
		handle: c.ConnectionHandle(),
		remote: c.RemoteAddr(),
	}
}

func (h *connHandle) live() bool {
	return atomic.LoadUint32(&h.c.gen) == h.gen
}

func (h *connHandle) Read(b []byte) (int, error) {
	if !h.live() {
		return 0, errors.Wrap(io.ErrClosedPipe, "connection closed")
	}
	return h.c.Read(b)
}

func (h *connHandle) Write(b []byte) (int, error) {
	if !h.live() {
		return 0, errors.Wrap(io.ErrClosedPipe, "connection closed")
	}
	return h.c.Write(b)
}

func (h *connHandle) Close() error {
	if !h.live() {
		return nil
	}
	return h.c.Close()
}

func (h *connHandle) Context() context.Context       { return h.ctx }
func (h *connHandle) SetContext(ctx context.Context) { h.ctx = ctx }
func (h *connHandle) Disconnected() <-chan struct{}  { return h.chDone }
func (h *connHandle) LocalAddr() ble.Addr            { return h.c.ctrl.Addr() }
func (h *connHandle) RemoteAddr() ble.Addr           { return h.remote }
func (h *connHandle) ConnectionHandle() uint16       { return h.handle }

func (h *connHandle) OpenChannel(psm uint16, cfg *ble.ChannelConfig) (ble.Channel, error) {
	if !h.live() {
		return nil, ble.ErrChannelClosed
	}
	return h.c.OpenChannel(psm, cfg)
}

func (h *connHandle) AcceptChannel(psms []uint16, cfg *ble.ChannelConfig) (ble.Channel, error) {
	if !h.live() {
		return nil, ble.ErrChannelClosed
	}
	return h.c.AcceptChannel(psms, cfg)
}

var _ ble.Conn = (*connHandle)(nil)

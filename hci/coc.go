package hci

import (
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/kestrelbt/ble"
)

type chanState int

// Channel lifecycle [Vol 3, Part A, 6].
const (
	chanClosed chanState = iota
	chanRequesting
	chanListening
	chanOpen
	chanClosing
)

func (s chanState) String() string {
	switch s {
	case chanClosed:
		return "Closed"
	case chanRequesting:
		return "Requesting"
	case chanListening:
		return "Listening"
	case chanOpen:
		return "Open"
	case chanClosing:
		return "Closing"
	}
	return "Unknown"
}

// chanSlot is one pooled credit based channel. The reassembly buffer is
// allocated once by the pool and reused; reset scrubs everything else.
type chanSlot struct {
	pooled bool
	gen    uint32

	conn *Conn

	mu        sync.Mutex
	state     chanState
	psm       uint16
	localCID  uint16
	remoteCID uint16

	rxMTU uint16
	rxMPS uint16
	txMTU uint16
	txMPS uint16

	// txCredits is the peer granted transmit budget; one K-frame per
	// credit. chCredit wakes senders parked on an empty budget.
	txCredits uint16
	chCredit  chan struct{}
	chClosed  chan struct{}

	// rxCredits is what we have granted the peer and not yet replenished.
	rxCredits uint16
	consumed  uint16
	flow      ble.FlowPolicy

	// SDU reassembly. rxSDULen is -1 between SDUs; rxPDUs counts the
	// K-frames folded into the SDU under assembly.
	rxBuf    []byte
	rxSDULen int
	rxPDUs   uint16

	rxQ *rxQueue

	// txMu keeps the K-frames of one SDU contiguous on the link.
	txMu sync.Mutex
}

func (s *chanSlot) reset() {
	atomic.AddUint32(&s.gen, 1)
	s.conn = nil
	s.state = chanClosed
	s.psm = 0
	s.localCID, s.remoteCID = 0, 0
	s.rxMTU, s.rxMPS, s.txMTU, s.txMPS = 0, 0, 0, 0
	s.txCredits = 0
	s.chCredit = nil
	s.chClosed = nil
	s.rxCredits = 0
	s.consumed = 0
	s.flow = ble.FlowPolicy{}
	s.rxBuf = s.rxBuf[:0]
	s.rxSDULen = -1
	s.rxPDUs = 0
	s.rxQ = nil
}

// bind wires an acquired slot to a connection with the local endpoint
// parameters settled.
func (s *chanSlot) bind(c *Conn, psm, localCID uint16, cfg ble.ChannelConfig) {
	s.conn = c
	s.psm = psm
	s.localCID = localCID
	s.rxMTU = cfg.MTU
	s.rxMPS = cfg.MPS
	s.rxCredits = cfg.InitialCredits
	s.flow = cfg.FlowPolicy
	s.chCredit = make(chan struct{}, 1)
	s.chClosed = make(chan struct{})
	s.rxQ = newRxQueue(int(cfg.InitialCredits))
	s.rxSDULen = -1
}

// rxQueue parks completed SDUs between the connection input loop and a
// Receive caller, together with the PDU count each one consumed. One is
// created per channel open and captured by the handle, so draining
// after a close never touches a successor's queue. A conforming peer
// cannot outgrow the initial capacity: queued PDUs never exceed the
// credits granted, and credits are replenished only as the queue
// drains.
type rxQueue struct {
	mu    sync.Mutex
	sdus  []rxSDU
	ready chan struct{}
}

type rxSDU struct {
	data []byte
	pdus uint16
}

func newRxQueue(credits int) *rxQueue {
	return &rxQueue{
		sdus:  make([]rxSDU, 0, credits),
		ready: make(chan struct{}, 1),
	}
}

func (q *rxQueue) push(data []byte, pdus uint16) {
	q.mu.Lock()
	q.sdus = append(q.sdus, rxSDU{data: data, pdus: pdus})
	q.mu.Unlock()
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

func (q *rxQueue) pop() (rxSDU, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.sdus) == 0 {
		return rxSDU{}, false
	}
	e := q.sdus[0]
	copy(q.sdus, q.sdus[1:])
	q.sdus[len(q.sdus)-1] = rxSDU{}
	q.sdus = q.sdus[:len(q.sdus)-1]
	return e, true
}

// takeCredit blocks until a transmit credit is available, then consumes
// it. It wakes with an error when the channel or link goes away, or
// when the slot no longer belongs to the caller's generation.
func (s *chanSlot) takeCredit(gen uint32) error {
	s.mu.Lock()
	for s.txCredits == 0 {
		if atomic.LoadUint32(&s.gen) != gen || s.state != chanOpen {
			s.mu.Unlock()
			return ble.ErrChannelClosed
		}
		credit, closed := s.chCredit, s.chClosed
		done := s.conn.chDone
		s.mu.Unlock()
		select {
		case <-credit:
		case <-closed:
			return ble.ErrChannelClosed
		case <-done:
			return ble.ErrChannelClosed
		}
		s.mu.Lock()
	}
	if atomic.LoadUint32(&s.gen) != gen || s.state != chanOpen {
		s.mu.Unlock()
		return ble.ErrChannelClosed
	}
	s.txCredits--
	s.mu.Unlock()
	return nil
}

// addCredits applies a peer grant, saturating at the field maximum, and
// wakes any parked sender.
func (s *chanSlot) addCredits(n uint16) {
	s.mu.Lock()
	if s.txCredits > 0xffff-n {
		s.txCredits = 0xffff
	} else {
		s.txCredits += n
	}
	credit := s.chCredit
	s.mu.Unlock()
	if credit != nil {
		select {
		case credit <- struct{}{}:
		default:
		}
	}
}

// coc multiplexes the credit based channels of one connection. Active
// slots live in a short slice; lookup is a linear scan bounded by the
// pool size.
type coc struct {
	c *Conn

	mu      sync.Mutex
	active  []*chanSlot
	nextCID uint16

	waiters []*acceptWaiter
}

type acceptWaiter struct {
	psms []uint16
	cfg  ble.ChannelConfig
	done chan acceptResult
}

type acceptResult struct {
	ch  ble.Channel
	err error
}

func newCoc(c *Conn) *coc {
	return &coc{c: c, nextCID: cidDynamicMin}
}

func (x *coc) lookup(localCID uint16) *chanSlot {
	for _, s := range x.active {
		if s.localCID == localCID {
			return s
		}
	}
	return nil
}

// nextSourceCID picks an unused dynamic CID. Called with x.mu held.
func (x *coc) nextSourceCID() uint16 {
	for {
		cid := x.nextCID
		x.nextCID++
		if x.nextCID == 0 {
			x.nextCID = cidDynamicMin
		}
		if x.lookup(cid) == nil {
			return cid
		}
	}
}

func (x *coc) config(cfg *ble.ChannelConfig) ble.ChannelConfig {
	c := x.c.ctrl.DefaultChannelConfig()
	if cfg != nil {
		if cfg.MTU != 0 {
			c.MTU = cfg.MTU
		}
		if cfg.MPS != 0 {
			c.MPS = cfg.MPS
		}
		if cfg.InitialCredits != 0 {
			c.InitialCredits = cfg.InitialCredits
		}
		if cfg.FlowPolicy.Every != 0 {
			c.FlowPolicy = cfg.FlowPolicy
		}
	}
	if c.MPS > c.MTU {
		c.MPS = c.MTU
	}
	return c
}

// open initiates a channel as described in [Vol 3, Part A, 4.22]. The
// slot is acquired before signaling so resource exhaustion surfaces
// early, without a round trip.
func (x *coc) open(psm uint16, cfg *ble.ChannelConfig) (ble.Channel, error) {
	if psm == 0 {
		return nil, errors.Wrap(ble.ErrProtocol, "invalid psm")
	}
	conf := x.config(cfg)
	if conf.MPS < minCocMPS {
		return nil, errors.Wrap(ble.ErrProtocol, "mps below minimum")
	}

	pool := x.c.ctrl.ChannelPool()
	s := pool.acquire()
	if s == nil {
		return nil, ble.ErrUnavailable
	}
	if int(conf.MTU) > cap(s.rxBuf) {
		pool.release(s)
		return nil, errors.Wrap(ble.ErrProtocol, "mtu exceeds pool buffer size")
	}

	x.mu.Lock()
	cid := x.nextSourceCID()
	s.bind(x.c, psm, cid, conf)
	s.state = chanRequesting
	x.active = append(x.active, s)
	x.mu.Unlock()
	gen := atomic.LoadUint32(&s.gen)

	rsp := LECreditBasedConnectionResponse{}
	err := x.c.Signal(&LECreditBasedConnectionRequest{
		LEPSM:          psm,
		SourceCID:      cid,
		MTU:            conf.MTU,
		MPS:            conf.MPS,
		InitialCredits: conf.InitialCredits,
	}, &rsp)
	if err == nil {
		err = cocResultError(rsp.Result)
	}
	if err == nil && (rsp.MPS < minCocMPS || rsp.MTU < minCocMPS) {
		err = errors.Wrap(ble.ErrProtocol, "peer parameters below minimum")
	}
	if err != nil {
		x.remove(s)
		// A connection loss may already have recycled the slot.
		if atomic.LoadUint32(&s.gen) == gen {
			pool.release(s)
		}
		return nil, err
	}

	s.mu.Lock()
	if s.state != chanRequesting {
		// Aborted by a framing violation while the response was in
		// flight.
		s.mu.Unlock()
		x.remove(s)
		if atomic.LoadUint32(&s.gen) == gen {
			pool.release(s)
		}
		return nil, errors.Wrap(ble.ErrProtocol, "channel aborted before open")
	}
	s.remoteCID = rsp.DestinationCID
	s.txMTU = rsp.MTU
	s.txMPS = rsp.MPS
	s.txCredits = rsp.InitialCredits
	s.state = chanOpen
	s.mu.Unlock()

	logger.Debugf("coc: opened psm 0x%04X scid 0x%04X dcid 0x%04X", psm, cid, rsp.DestinationCID)
	return newCocChannel(x, s), nil
}

func cocResultError(r uint16) error {
	switch r {
	case CocResultSuccess:
		return nil
	case CocResultPSMNotSupported:
		return ble.ErrPSMNotSupported
	case CocResultNoResources:
		return ble.ErrUnavailable
	case CocResultInsufficientAuthen:
		return ble.ErrInsufficientAuthen
	default:
		return errors.Wrapf(ble.ErrProtocol, "connection refused, result 0x%04X", r)
	}
}

// accept parks until a peer initiates a channel on one of psms.
func (x *coc) accept(psms []uint16, cfg *ble.ChannelConfig) (ble.Channel, error) {
	if len(psms) == 0 {
		return nil, errors.Wrap(ble.ErrProtocol, "no psm to listen on")
	}
	w := &acceptWaiter{psms: psms, cfg: x.config(cfg), done: make(chan acceptResult, 1)}
	x.mu.Lock()
	x.waiters = append(x.waiters, w)
	x.mu.Unlock()

	select {
	case r := <-w.done:
		return r.ch, r.err
	case <-x.c.chDone:
		x.dropWaiter(w)
		return nil, ble.ErrChannelClosed
	}
}

func (x *coc) dropWaiter(w *acceptWaiter) {
	x.mu.Lock()
	defer x.mu.Unlock()
	for i, o := range x.waiters {
		if o == w {
			x.waiters = append(x.waiters[:i], x.waiters[i+1:]...)
			return
		}
	}
}

// takeWaiter claims the first listener registered for psm. Called with
// x.mu held.
func (x *coc) takeWaiter(psm uint16) *acceptWaiter {
	for i, w := range x.waiters {
		for _, p := range w.psms {
			if p == psm {
				x.waiters = append(x.waiters[:i], x.waiters[i+1:]...)
				return w
			}
		}
	}
	return nil
}

// handleConnectionRequest answers a peer's LE Credit Based Connection
// Request. An unsupported PSM is refused without consuming a slot.
func (x *coc) handleConnectionRequest(id uint8, data []byte) {
	req := LECreditBasedConnectionRequest{}
	if err := req.Unmarshal(data); err != nil {
		x.c.sendSignal(id, &CommandReject{Reason: rejectReasonNotUnderstood})
		return
	}

	refuse := func(result uint16) {
		x.c.sendSignal(id, &LECreditBasedConnectionResponse{Result: result})
	}

	if req.SourceCID < cidDynamicMin {
		refuse(CocResultInvalidSourceCID)
		return
	}

	x.mu.Lock()
	for _, s := range x.active {
		if s.remoteCID == req.SourceCID {
			x.mu.Unlock()
			refuse(CocResultSourceCIDInUse)
			return
		}
	}
	w := x.takeWaiter(req.LEPSM)
	x.mu.Unlock()

	if w == nil {
		refuse(CocResultPSMNotSupported)
		return
	}
	if req.MPS < minCocMPS || req.MTU < minCocMPS {
		x.mu.Lock()
		x.waiters = append(x.waiters, w)
		x.mu.Unlock()
		refuse(CocResultUnacceptableParams)
		return
	}

	pool := x.c.ctrl.ChannelPool()
	s := pool.acquire()
	if s == nil {
		x.mu.Lock()
		x.waiters = append(x.waiters, w)
		x.mu.Unlock()
		refuse(CocResultNoResources)
		return
	}
	if int(w.cfg.MTU) > cap(s.rxBuf) {
		// A listener configured beyond the pool's reassembly buffers
		// must refuse rather than reallocate.
		pool.release(s)
		refuse(CocResultNoResources)
		w.done <- acceptResult{err: errors.Wrap(ble.ErrProtocol, "mtu exceeds pool buffer size")}
		return
	}

	x.mu.Lock()
	cid := x.nextSourceCID()
	s.bind(x.c, req.LEPSM, cid, w.cfg)
	s.remoteCID = req.SourceCID
	s.txMTU = req.MTU
	s.txMPS = req.MPS
	s.txCredits = req.InitialCredits
	s.state = chanOpen
	x.active = append(x.active, s)
	x.mu.Unlock()

	if err := x.c.sendSignal(id, &LECreditBasedConnectionResponse{
		DestinationCID: cid,
		MTU:            s.rxMTU,
		MPS:            s.rxMPS,
		InitialCredits: s.rxCredits,
		Result:         CocResultSuccess,
	}); err != nil {
		x.finalize(s)
		w.done <- acceptResult{err: err}
		return
	}

	logger.Debugf("coc: accepted psm 0x%04X scid 0x%04X dcid 0x%04X", req.LEPSM, cid, req.SourceCID)
	w.done <- acceptResult{ch: newCocChannel(x, s)}
}

// handleCredit applies an LE Flow Control Credit from the peer.
func (x *coc) handleCredit(data []byte) {
	sig := LEFlowControlCredit{}
	if err := sig.Unmarshal(data); err != nil {
		return
	}
	x.mu.Lock()
	var s *chanSlot
	for _, o := range x.active {
		if o.remoteCID == sig.CID {
			s = o
			break
		}
	}
	x.mu.Unlock()
	if s == nil {
		logger.Debugf("coc: credit for unknown cid 0x%04X", sig.CID)
		return
	}
	s.addCredits(sig.Credits)
}

// handleDisconnectRequest closes a channel at the peer's request.
func (x *coc) handleDisconnectRequest(id uint8, data []byte) {
	req := DisconnectRequest{}
	if err := req.Unmarshal(data); err != nil {
		x.c.sendSignal(id, &CommandReject{Reason: rejectReasonNotUnderstood})
		return
	}
	x.mu.Lock()
	s := x.lookup(req.DestinationCID)
	x.mu.Unlock()
	if s == nil || s.remoteCID != req.SourceCID {
		x.c.sendSignal(id, &CommandReject{Reason: rejectReasonInvalidCID})
		return
	}
	x.c.sendSignal(id, &DisconnectResponse{
		DestinationCID: req.DestinationCID,
		SourceCID:      req.SourceCID,
	})
	x.finalize(s)
}

// receive dispatches one inbound K-frame to its channel. PDUs for
// unknown CIDs are dropped.
func (x *coc) receive(cid uint16, payload []byte) {
	x.mu.Lock()
	s := x.lookup(cid)
	x.mu.Unlock()
	if s == nil {
		logger.Debugf("coc: pdu for unknown cid 0x%04X dropped", cid)
		return
	}
	if err := s.recv(payload); err != nil {
		logger.Errorf("coc: cid 0x%04X: %v; closing", cid, err)
		x.abort(s)
	}
}

// abort tears a channel down after a framing violation. The disconnect
// request is fire and forget; the input loop must not park on a
// response. A violation while the open handshake is still settling only
// marks the slot Closing; the opener still owns it and cleans up.
func (x *coc) abort(s *chanSlot) {
	s.mu.Lock()
	switch s.state {
	case chanOpen:
		s.state = chanClosing
		localCID, remoteCID := s.localCID, s.remoteCID
		s.mu.Unlock()
		x.c.Signal(&DisconnectRequest{
			DestinationCID: remoteCID,
			SourceCID:      localCID,
		}, nil)
		x.finalize(s)
	case chanRequesting:
		// The remote CID is not settled yet; no disconnect to send.
		s.state = chanClosing
		s.mu.Unlock()
	default:
		s.mu.Unlock()
	}
}

// recv folds one K-frame into the current SDU [Vol 3, Part A, 3.4.3].
// Any framing violation is an error that tears the channel down. Frames
// are accepted while Requesting too: the peer may transmit the moment
// its response is on the wire, before the opener has applied it.
func (s *chanSlot) recv(payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != chanOpen && s.state != chanRequesting {
		return nil
	}
	if s.rxCredits == 0 {
		return errors.New("pdu received with no credit outstanding")
	}
	s.rxCredits--
	s.rxPDUs++
	if len(payload) > int(s.rxMPS) {
		return errors.Errorf("pdu length %d exceeds mps %d", len(payload), s.rxMPS)
	}

	if s.rxSDULen < 0 {
		if len(payload) < 2 {
			return errors.New("first pdu shorter than sdu header")
		}
		slen := int(binary.LittleEndian.Uint16(payload[0:2]))
		if slen > int(s.rxMTU) {
			return errors.Errorf("sdu length %d exceeds mtu %d", slen, s.rxMTU)
		}
		s.rxSDULen = slen
		payload = payload[2:]
	}
	if len(s.rxBuf)+len(payload) > s.rxSDULen {
		return errors.New("sdu payload exceeds announced length")
	}
	s.rxBuf = append(s.rxBuf, payload...)

	if len(s.rxBuf) == s.rxSDULen {
		completed := make([]byte, s.rxSDULen)
		copy(completed, s.rxBuf)
		s.rxBuf = s.rxBuf[:0]
		s.rxSDULen = -1
		s.rxQ.push(completed, s.rxPDUs)
		s.rxPDUs = 0
	}
	return nil
}

// creditsDue applies the replenishment policy: once flow.Every PDUs
// worth of SDUs have been drained, grant the largest multiple of
// flow.Every back. Called with s.mu held.
func (s *chanSlot) creditsDue(pdus uint16) uint16 {
	s.consumed += pdus
	if s.flow.Every == 0 || s.consumed < s.flow.Every {
		return 0
	}
	due := s.consumed - s.consumed%s.flow.Every
	s.consumed -= due
	return due
}

// send transmits one SDU as a train of K-frames, consuming one credit
// per frame. It blocks while the peer's grant is exhausted. The pinned
// generation keeps a stale handle off the slot's next occupant.
func (s *chanSlot) send(gen uint32, sdu []byte) error {
	s.mu.Lock()
	if atomic.LoadUint32(&s.gen) != gen || s.state != chanOpen {
		s.mu.Unlock()
		return ble.ErrChannelClosed
	}
	conn := s.conn
	txMTU, txMPS, remoteCID := s.txMTU, s.txMPS, s.remoteCID
	s.mu.Unlock()

	if len(sdu) > int(txMTU) {
		return ble.ErrMTUExceeded
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	first := true
	rest := sdu
	for first || len(rest) > 0 {
		if err := s.takeCredit(gen); err != nil {
			return err
		}
		max := int(txMPS)
		if first {
			max -= 2
		}
		flen := len(rest)
		if flen > max {
			flen = max
		}

		plen := flen
		if first {
			plen += 2
		}
		b := make([]byte, 4+plen)
		binary.LittleEndian.PutUint16(b[0:2], uint16(plen))
		binary.LittleEndian.PutUint16(b[2:4], remoteCID)
		if first {
			binary.LittleEndian.PutUint16(b[4:6], uint16(len(sdu)))
			copy(b[6:], rest[:flen])
		} else {
			copy(b[4:], rest[:flen])
		}
		if _, err := conn.writePDU(b); err != nil {
			return err
		}
		rest = rest[flen:]
		first = false
	}
	return nil
}

// close runs the local disconnect handshake and releases the slot. The
// pinned generation keeps a stale handle from disconnecting the slot's
// next occupant.
func (x *coc) close(s *chanSlot, gen uint32) error {
	s.mu.Lock()
	if atomic.LoadUint32(&s.gen) != gen || s.state != chanOpen {
		s.mu.Unlock()
		return nil
	}
	s.state = chanClosing
	localCID, remoteCID := s.localCID, s.remoteCID
	s.mu.Unlock()

	rsp := DisconnectResponse{}
	err := x.c.Signal(&DisconnectRequest{
		DestinationCID: remoteCID,
		SourceCID:      localCID,
	}, &rsp)
	x.finalize(s)
	return err
}

// finalize marks the slot Closed, wakes every blocked caller, and
// returns the slot to the pool.
func (x *coc) finalize(s *chanSlot) {
	s.mu.Lock()
	if s.state == chanClosed {
		s.mu.Unlock()
		return
	}
	s.state = chanClosed
	closed := s.chClosed
	s.mu.Unlock()

	if closed != nil {
		close(closed)
	}
	x.remove(s)
	x.c.ctrl.ChannelPool().release(s)
}

func (x *coc) remove(s *chanSlot) {
	x.mu.Lock()
	defer x.mu.Unlock()
	for i, o := range x.active {
		if o == s {
			x.active = append(x.active[:i], x.active[i+1:]...)
			return
		}
	}
}

// invalidate tears down every channel when the link dies. No signaling;
// the link is gone.
func (x *coc) invalidate() {
	x.mu.Lock()
	active := append([]*chanSlot(nil), x.active...)
	x.active = nil
	waiters := x.waiters
	x.waiters = nil
	x.mu.Unlock()

	for _, s := range active {
		s.mu.Lock()
		if s.state == chanClosed {
			s.mu.Unlock()
			continue
		}
		s.state = chanClosed
		closed := s.chClosed
		s.mu.Unlock()
		if closed != nil {
			close(closed)
		}
		x.c.ctrl.ChannelPool().release(s)
	}
	for _, w := range waiters {
		w.done <- acceptResult{err: ble.ErrChannelClosed}
	}
}

// cocChannel is the generation checked handle given to callers. The
// queue and close channel captured at bind time stay valid after the
// slot is recycled, so a stale handle always observes a closed channel.
type cocChannel struct {
	s        *chanSlot
	x        *coc
	gen      uint32
	rx       *rxQueue
	chClosed chan struct{}
	info     ble.ChannelInfo
}

func newCocChannel(x *coc, s *chanSlot) *cocChannel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &cocChannel{
		s:        s,
		x:        x,
		gen:      atomic.LoadUint32(&s.gen),
		rx:       s.rxQ,
		chClosed: s.chClosed,
		info: ble.ChannelInfo{
			LocalCID:  s.localCID,
			RemoteCID: s.remoteCID,
			PSM:       s.psm,
			TxMTU:     s.txMTU,
			TxMPS:     s.txMPS,
			RxMTU:     s.rxMTU,
			RxMPS:     s.rxMPS,
		},
	}
}

func (c *cocChannel) live() bool {
	return atomic.LoadUint32(&c.s.gen) == c.gen
}

// Send transmits one SDU, blocking on credit exhaustion.
func (c *cocChannel) Send(sdu []byte) error {
	return c.s.send(c.gen, sdu)
}

// Receive blocks for the next complete SDU and copies it into buf.
// Draining an SDU hands its PDUs back to the flow policy, which may
// emit a credit grant to the peer.
func (c *cocChannel) Receive(buf []byte) (int, error) {
	for {
		if e, ok := c.rx.pop(); ok {
			if len(e.data) > len(buf) {
				return 0, errors.Wrap(ble.ErrMTUExceeded, "sdu exceeds buffer")
			}
			c.replenish(e.pdus)
			return copy(buf, e.data), nil
		}
		select {
		case <-c.rx.ready:
		case <-c.chClosed:
			// Drain SDUs that arrived before the close.
			if e, ok := c.rx.pop(); ok {
				if len(e.data) > len(buf) {
					return 0, errors.Wrap(ble.ErrMTUExceeded, "sdu exceeds buffer")
				}
				return copy(buf, e.data), nil
			}
			return 0, ble.ErrChannelClosed
		}
	}
}

// replenish credits the peer for drained PDUs per the flow policy.
// Grants stop the moment the channel is no longer the open occupant of
// its slot.
func (c *cocChannel) replenish(pdus uint16) {
	s := c.s
	s.mu.Lock()
	if !c.live() || s.state != chanOpen {
		s.mu.Unlock()
		return
	}
	grant := s.creditsDue(pdus)
	if grant == 0 {
		s.mu.Unlock()
		return
	}
	s.rxCredits += grant
	conn, cid := s.conn, s.localCID
	s.mu.Unlock()

	if err := conn.sendSignal(0, &LEFlowControlCredit{CID: cid, Credits: grant}); err != nil {
		logger.Errorf("coc: credit grant on cid 0x%04X: %v", cid, err)
	}
}

// Info reports the parameters negotiated at open.
func (c *cocChannel) Info() ble.ChannelInfo { return c.info }

// Close disconnects the channel. Closing twice is a no-op.
func (c *cocChannel) Close() error {
	return c.x.close(c.s, c.gen)
}

var _ ble.Channel = (*cocChannel)(nil)

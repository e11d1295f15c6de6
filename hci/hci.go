package hci

import (
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/kestrelbt/ble"
	"github.com/kestrelbt/ble/hci/cmd"
	"github.com/kestrelbt/ble/hci/evt"
)

type handlerFn func(b []byte) error

type pkt struct {
	cmd  Command
	done chan []byte
}

// NewHCI returns an hci device.
func NewHCI(opts ...ble.Option) (*HCI, error) {
	h := &HCI{
		chCmdBufs: make(chan []byte, chCmdBufChanSize),
		sent:      make(map[int]*pkt),
		await:     make(map[int]chan []byte),

		evth: map[int]handlerFn{},
		subh: map[int]handlerFn{},

		chMasterConn: make(chan *Conn, 1),
		chSlaveConn:  make(chan *Conn),

		maxConns: DefaultMaxConnections,
		maxChans: DefaultMaxChannels,
		chanCfg: ble.ChannelConfig{
			MTU:            defaultCocMTU,
			MPS:            defaultCocMPS,
			InitialCredits: defaultCocCredits,
			FlowPolicy:     ble.FlowPolicy{Every: defaultCocCredits},
		},

		done:      make(chan bool),
		sktRxChan: make(chan []byte, 16),
	}
	h.ctx, h.cancel = context.WithCancel(context.Background())
	h.params.init()
	if err := h.Option(opts...); err != nil {
		return nil, errors.Wrap(err, "can't set options")
	}

	return h, nil
}

// HCI owns the controller transport and multiplexes commands, events,
// and ACL data over it.
type HCI struct {
	sync.Mutex

	params params

	transport transport
	skt       io.ReadWriteCloser

	// Host to Controller command flow control [Vol 2, Part E, 4.4].
	chCmdBufs chan []byte
	muSent    sync.Mutex
	sent      map[int]*pkt

	// await parks callers of SendAsync until the LE meta subevent that
	// completes their command arrives.
	await map[int]chan []byte

	// evtHub
	evth map[int]handlerFn
	subh map[int]handlerFn

	// Controller ACL buffer accounting.
	bufSize int
	bufCnt  int

	addr net.HardwareAddr

	// adHist and adLast track past scannable advertising packets, so a
	// scan response can be joined with the advertising data that came
	// before it. Allocated in Scan().
	advHandlerSync bool
	advHandler     ble.AdvHandler
	adHist         []*Advertisement
	adLast         int

	// Host to controller data flow control [Vol 2, Part E, 4.1.1].
	pool BufferPool

	// Fixed-capacity slot pools. Exhaustion is backpressure: Dial fails
	// fast, inbound channel requests are refused with "no resources".
	maxConns int
	maxChans int
	connPool *connPool
	chanPool *chanPool
	chanCfg  ble.ChannelConfig

	muConns      sync.Mutex
	active       []*Conn
	chMasterConn chan *Conn // Dial returns master connections.
	chSlaveConn  chan *Conn // Accept returns slave connections.

	// One outbound connection attempt at a time.
	dialing  bool
	dialPeer string
	dialSlot *Conn

	dialerTmo   time.Duration
	listenerTmo time.Duration

	errorHandler func(error)
	err          error

	muClose sync.Mutex
	done    chan bool

	ctx    context.Context
	cancel context.CancelFunc

	sktRxChan chan []byte
}

// Init opens the transport, brings the controller up, and sizes the
// pools from what the controller reports.
func (h *HCI) Init() error {
	h.evth[evt.LEMetaCode] = h.handleLEMeta
	h.evth[evt.CommandCompleteCode] = h.handleCommandComplete
	h.evth[evt.CommandStatusCode] = h.handleCommandStatus
	h.evth[evt.DisconnectionCompleteCode] = h.handleDisconnectionComplete
	h.evth[evt.NumberOfCompletedPacketsCode] = h.handleNumberOfCompletedPackets
	h.evth[evt.HardwareErrorCode] = h.handleHardwareError

	h.subh[evt.LEAdvertisingReportSubCode] = h.handleLEAdvertisingReport
	h.subh[evt.LEConnectionCompleteSubCode] = h.handleLEConnectionComplete
	h.subh[evt.LEConnectionUpdateCompleteSubCode] = h.handleLEConnectionUpdateComplete
	h.subh[evt.LEDataLengthChangeSubCode] = h.handleLEDataLengthChange

	var err error
	h.skt, err = getTransport(h.transport)
	if err != nil {
		return err
	}

	p := &h.params
	if err = p.validate(); err != nil {
		return err
	}
	h.setAllowedCommands(1)

	go h.sktReadLoop()
	go h.sktProcessLoop()
	if err := h.init(); err != nil {
		return err
	}

	// Head room for the HCI header (1 byte) and ACL data header (4
	// bytes) in front of each L2CAP fragment.
	h.pool, err = NewTxPool(1+4+h.bufSize, h.bufCnt-1)
	if err != nil {
		return err
	}
	h.connPool = newConnPool(h, h.maxConns)
	h.chanPool = newChanPool(h.maxChans, int(h.chanCfg.MTU))

	h.Send(&p.advParams, nil)
	h.Send(&p.scanParams, nil)
	return nil
}

func (h *HCI) cleanup() {
	// Keep any sticky error; only the transport is torn down here.
	h.skt.Close()
	h.cancel()

	// Kills any dial in flight.
	close(h.chMasterConn)
	h.chMasterConn = nil

	h.muConns.Lock()
	hh := make([]uint16, 0, len(h.active))
	for _, c := range h.active {
		hh = append(hh, c.ConnectionHandle())
	}
	h.muConns.Unlock()

	logger.Debugf("cleanup: %d connection handles", len(hh))
	for _, ch := range hh {
		h.cleanupConnectionHandle(ch)
	}

	h.muSent.Lock()
	for k := range h.sent {
		delete(h.sent, k)
	}
	for k, w := range h.await {
		close(w)
		delete(h.await, k)
	}
	h.muSent.Unlock()
}

// Close shuts the device down. Safe to call more than once.
func (h *HCI) Close() error {
	h.muClose.Lock()
	defer h.muClose.Unlock()

	select {
	case <-h.done:
	default:
		close(h.done)
	}
	return nil
}

// Error returns the sticky error that stopped the device, if any.
func (h *HCI) Error() error {
	return h.err
}

// Option sets the options specified.
func (h *HCI) Option(opts ...ble.Option) error {
	var err error
	for _, opt := range opts {
		err = opt(h)
	}
	return err
}

func (h *HCI) isOpen() bool {
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

func (h *HCI) init() error {
	logger.Info("hci reset")
	h.Send(&cmd.Reset{}, nil)

	ReadBDADDRRP := cmd.ReadBDADDRRP{}
	h.Send(&cmd.ReadBDADDR{}, &ReadBDADDRRP)

	a := ReadBDADDRRP.BDADDR
	h.addr = net.HardwareAddr([]byte{a[5], a[4], a[3], a[2], a[1], a[0]})

	// Not supported by LE-only controllers [Vol 2, Part E, 7.4.5];
	// LEReadBufferSize below takes precedence when it reports buffers.
	ReadBufferSizeRP := cmd.ReadBufferSizeRP{}
	h.Send(&cmd.ReadBufferSize{}, &ReadBufferSizeRP)

	h.bufCnt = int(ReadBufferSizeRP.HCTotalNumACLDataPackets)
	h.bufSize = int(ReadBufferSizeRP.HCACLDataPacketLength)

	LEReadBufferSizeRP := cmd.LEReadBufferSizeRP{}
	h.Send(&cmd.LEReadBufferSize{}, &LEReadBufferSizeRP)

	if LEReadBufferSizeRP.HCTotalNumLEDataPackets != 0 {
		// LE-U has dedicated buffers.
		h.bufCnt = int(LEReadBufferSizeRP.HCTotalNumLEDataPackets)
		h.bufSize = int(LEReadBufferSizeRP.HCLEDataPacketLength)
	}

	h.Send(&cmd.LESetEventMask{LEEventMask: 0x000000000000109F}, nil)
	h.Send(&cmd.SetEventMask{EventMask: 0x3dbff807fffbffff}, nil)

	return h.err
}

// Send issues a command and decodes its return parameters into r. A
// non-zero controller status comes back as an ErrCommand.
func (h *HCI) Send(c Command, r CommandRP) error {
	b, err := h.send(c)
	if err != nil {
		return err
	}
	if len(b) > 0 && b[0] != 0x00 {
		return ErrCommand(b[0])
	}
	if r != nil {
		return r.Unmarshal(b)
	}
	return nil
}

// SendAsync issues a command whose real outcome arrives later in an LE
// meta event. The controller's immediate status is checked here; the
// returned channel delivers the completing subevent payload.
func (h *HCI) SendAsync(c Command, subevent int) (<-chan []byte, error) {
	ch := make(chan []byte, 1)
	h.muSent.Lock()
	if _, busy := h.await[subevent]; busy {
		h.muSent.Unlock()
		return nil, ErrBusy
	}
	h.await[subevent] = ch
	h.muSent.Unlock()

	if err := h.Send(c, nil); err != nil {
		h.muSent.Lock()
		delete(h.await, subevent)
		h.muSent.Unlock()
		return nil, err
	}
	return ch, nil
}

func (h *HCI) checkOpCodeFree(opCode int) error {
	h.muSent.Lock()
	defer h.muSent.Unlock()

	if _, ok := h.sent[opCode]; ok {
		return fmt.Errorf("command with opcode %v pending", opCode)
	}
	return nil
}

func (h *HCI) send(c Command) ([]byte, error) {
	if h.err != nil {
		return nil, h.err
	}

	p := &pkt{c, make(chan []byte)}

	// Verify the opcode is free before taking a command buffer, so the
	// buffer is only consumed when the command can actually go out.
	if err := h.checkOpCodeFree(c.OpCode()); err != nil {
		return nil, err
	}

	var b []byte
	select {
	case <-h.done:
		return nil, fmt.Errorf("hci closed")
	case b = <-h.chCmdBufs:
	case <-time.After(chCmdBufTimeout):
		err := fmt.Errorf("chCmdBufs get timeout")
		h.dispatchError(err)
		return nil, err
	}

	b[0] = byte(pktTypeCommand)
	b[1] = byte(c.OpCode())
	b[2] = byte(c.OpCode() >> 8)
	b[3] = byte(c.Len())
	if err := c.Marshal(b[4:]); err != nil {
		h.close(fmt.Errorf("hci: failed to marshal cmd"))
	}

	h.muSent.Lock()
	h.sent[c.OpCode()] = p
	h.muSent.Unlock()

	if !h.isOpen() {
		return nil, fmt.Errorf("hci closed")
	} else if n, err := h.skt.Write(b[:4+c.Len()]); err != nil {
		h.close(fmt.Errorf("hci: failed to send cmd"))
	} else if n != 4+c.Len() {
		h.close(fmt.Errorf("hci: failed to send whole cmd pkt to hci socket"))
	}

	var ret []byte
	var err error

	// Emergency timeout. Responses are normally immediate; silence
	// means the HCI link itself is broken.
	select {
	case <-time.After(cmdResponseTimeout):
		err = fmt.Errorf("hci: no response to command 0x%04X", c.OpCode())
		h.dispatchError(err)
	case <-h.done:
		err = h.err
	case b := <-p.done:
		ret = b
	}

	// Clear the sent table entry when done; stale entries can match a
	// late command complete and deliver into a dead channel.
	h.muSent.Lock()
	delete(h.sent, c.OpCode())
	h.muSent.Unlock()

	return ret, err
}

func (h *HCI) sktProcessLoop() {
	defer h.cleanup()
	defer func() { h.dispatchError(h.err) }()

	for {
		var p []byte
		var ok bool

		select {
		case <-h.done:
			h.err = io.EOF
			return
		case p, ok = <-h.sktRxChan:
			if !ok {
				h.err = io.EOF
				return
			}
		}

		if err := h.handlePkt(p); err != nil {
			h.err = fmt.Errorf("skt handle error: %v", err)
			return
		}
	}
}

func (h *HCI) sktReadLoop() {
	defer close(h.sktRxChan)

	b := make([]byte, 4096)

	for {
		n, err := h.skt.Read(b)

		switch {
		case n == 0 && err == nil:
			// Read timeout.
			select {
			case <-h.done:
				return
			default:
				continue
			}

		// Callers depend on detecting io.EOF, don't wrap it.
		case err == io.EOF:
			h.err = err
			return

		case err != nil:
			h.err = fmt.Errorf("skt read error: %v", err)
			return

		default:
			p := make([]byte, n)
			copy(p, b)
			h.sktRxChan <- p
		}
	}
}

func (h *HCI) close(err error) error {
	h.err = err
	return h.skt.Close()
}

func (h *HCI) handlePkt(b []byte) error {
	// Strip the 1-byte HCI header and pass down the rest of the packet.
	t, b := b[0], b[1:]
	switch t {
	case pktTypeACLData:
		return h.handleACL(b)
	case pktTypeEvent:
		return h.handleEvt(b)
	case pktTypeVendor:
		// Some controllers append vendor packets; ignore them.
		logger.Debugf("skt: vendor packet ignored: % X", b)
		return nil
	case pktTypeCommand:
		return fmt.Errorf("unmanaged cmd: % X", b)
	case pktTypeSCOData:
		return fmt.Errorf("unsupported sco packet: % X", b)
	default:
		return fmt.Errorf("invalid packet: 0x%02X % X", t, b)
	}
}

func (h *HCI) handleACL(b []byte) error {
	handle := aclPacket(b).handle()

	h.muConns.Lock()
	defer h.muConns.Unlock()

	c := h.findConn(handle)
	if c == nil {
		logger.Warnf("acl packet for unknown handle %04X", handle)
		return nil
	}
	select {
	case c.chInPkt <- aclPacket(b):
	case <-c.chDone:
	}
	return nil
}

// findConn scans the active set. Called with muConns held.
func (h *HCI) findConn(handle uint16) *Conn {
	for _, c := range h.active {
		if c.ConnectionHandle() == handle {
			return c
		}
	}
	return nil
}

func (h *HCI) handleEvt(b []byte) error {
	code, plen := int(b[0]), int(b[1])
	if plen != len(b[2:]) {
		return fmt.Errorf("invalid event packet: % X", b)
	}
	if f := h.evth[code]; f != nil {
		return f(b[2:])
	}
	if code == 0xff { // Vendor events.
		return nil
	}
	logger.Debugf("unsupported event packet: % X", b)
	return nil
}

func (h *HCI) handleLEMeta(b []byte) error {
	subcode := int(b[0])

	h.muSent.Lock()
	w := h.await[subcode]
	if w != nil {
		delete(h.await, subcode)
	}
	h.muSent.Unlock()
	if w != nil {
		w <- b
		return nil
	}

	if f := h.subh[subcode]; f != nil {
		return f(b)
	}
	logger.Debugf("unsupported LE event: % X", b)
	return nil
}

func (h *HCI) handleLEAdvertisingReport(b []byte) error {
	if h.advHandler == nil {
		return nil
	}

	e := evt.LEAdvertisingReport(b)
	if e.NumReports() != 1 {
		// Controllers deliver one report per event in practice.
		return fmt.Errorf("invalid report count %d", e.NumReports())
	}

	var a *Advertisement
	switch et := e.EventType(0); et {
	case evtTypAdvInd, evtTypAdvScanInd:
		a = newAdvertisement(e, 0)
		h.adHist[h.adLast] = a
		h.adLast++
		if h.adLast == len(h.adHist) {
			h.adLast = 0
		}

	case evtTypScanRsp:
		sr := newAdvertisement(e, 0)
		for idx := range h.adHist {
			if h.adHist[idx] != nil && h.adHist[idx].Addr().String() == sr.Addr().String() {
				h.adHist[idx].setScanResponse(sr)
				a = h.adHist[idx]
				break
			}
		}
		// Scan response without a prior advertising packet; drop.
		if a == nil {
			return nil
		}

	case evtTypAdvDirectInd, evtTypAdvNonconnInd:
		a = newAdvertisement(e, 0)

	default:
		return fmt.Errorf("invalid advertising event type %d", et)
	}

	if h.advHandlerSync {
		h.advHandler(a)
	} else {
		go h.advHandler(a)
	}
	return nil
}

func (h *HCI) handleCommandComplete(b []byte) error {
	e := evt.CommandComplete(b)
	h.setAllowedCommands(int(e.NumHCICommandPackets()))

	// NOP, used for flow control [Vol 2, Part E, 4.4].
	if e.CommandOpcode() == 0x0000 {
		return nil
	}
	h.muSent.Lock()
	p, found := h.sent[int(e.CommandOpcode())]
	h.muSent.Unlock()

	if !found {
		logger.Debugf("complete for unsent command 0x%04X", e.CommandOpcode())
		return nil
	}

	select {
	case <-h.done:
		return fmt.Errorf("hci closed")
	case p.done <- e.ReturnParameters():
		return nil
	}
}

func (h *HCI) handleCommandStatus(b []byte) error {
	e := evt.CommandStatus(b)
	if !e.Valid() {
		err := fmt.Errorf("invalid command status: % X", b)
		h.dispatchError(err)
		return err
	}

	h.setAllowedCommands(int(e.NumHCICommandPackets()))

	h.muSent.Lock()
	p, found := h.sent[int(e.CommandOpcode())]
	h.muSent.Unlock()
	if !found {
		logger.Debugf("status for unsent command 0x%04X", e.CommandOpcode())
		return nil
	}

	select {
	case <-h.done:
		return fmt.Errorf("hci closed")
	case p.done <- []byte{e.Status()}:
		return nil
	}
}

func (h *HCI) handleLEConnectionComplete(b []byte) error {
	e := evt.LEConnectionComplete(b)

	if e.Role() == roleMaster {
		return h.handleMasterConnection(e)
	}
	return h.handleSlaveConnection(e)
}

func (h *HCI) handleMasterConnection(e evt.LEConnectionComplete) error {
	h.muConns.Lock()
	slot := h.dialSlot
	peer := h.dialPeer
	dialing := h.dialing
	h.dialSlot = nil
	h.muConns.Unlock()

	if e.Status() != 0 {
		if ErrCommand(e.Status()) == ErrConnID {
			// Connection attempt canceled.
			h.connPool.release(slot)
			return nil
		}
		logger.Warnf("connection failed, status 0x%02X", e.Status())
		h.connPool.release(slot)
		return nil
	}
	if !dialing || slot == nil {
		// Complete without an attempt in flight; drop the link.
		logger.Warnf("unsolicited master connection, handle %04X", e.ConnectionHandle())
		go h.Send(&cmd.Disconnect{ConnectionHandle: e.ConnectionHandle(), Reason: 0x13}, nil)
		return nil
	}
	if a := e.PeerAddress(); peer != "" && peerString(a) != peer {
		logger.Warnf("connection complete from unexpected peer %s", peerString(a))
		go h.Send(&cmd.Disconnect{ConnectionHandle: e.ConnectionHandle(), Reason: 0x13}, nil)
		h.connPool.release(slot)
		return nil
	}

	slot.init(e)
	h.muConns.Lock()
	h.active = append(h.active, slot)
	h.muConns.Unlock()

	select {
	case h.chMasterConn <- slot:
	case <-time.After(100 * time.Millisecond):
		go slot.Close()
	}
	return nil
}

func (h *HCI) handleSlaveConnection(e evt.LEConnectionComplete) error {
	if e.Status() != 0 {
		logger.Warnf("slave connection failed, status 0x%02X", e.Status())
		return nil
	}

	c := h.connPool.acquire()
	if c == nil {
		// All slots busy; shed the link immediately.
		logger.Warnf("connection pool exhausted, refusing handle %04X", e.ConnectionHandle())
		go h.Send(&cmd.Disconnect{ConnectionHandle: e.ConnectionHandle(), Reason: 0x13}, nil)
		return nil
	}
	c.init(e)
	h.muConns.Lock()
	h.active = append(h.active, c)
	h.muConns.Unlock()

	select {
	case h.chSlaveConn <- c:
	case <-h.done:
		return nil
	}

	// Accepting a connection moves the controller out of advertising
	// state; re-enable if the host still wants to advertise.
	h.params.RLock()
	if h.params.advEnable.AdvertisingEnable == 1 {
		go h.Send(&h.params.advEnable, nil)
	}
	h.params.RUnlock()
	return nil
}

func peerString(a [6]byte) string {
	return net.HardwareAddr([]byte{a[5], a[4], a[3], a[2], a[1], a[0]}).String()
}

func (h *HCI) handleLEConnectionUpdateComplete(b []byte) error {
	return nil
}

func (h *HCI) handleLEDataLengthChange(b []byte) error {
	e := evt.LEDataLengthChange(b)
	h.muConns.Lock()
	defer h.muConns.Unlock()
	if c := h.findConn(e.ConnectionHandle()); c != nil {
		c.mu.Lock()
		c.maxTxOctets = int(e.MaxTXOctets())
		c.mu.Unlock()
	}
	return nil
}

func (h *HCI) handleHardwareError(b []byte) error {
	h.dispatchError(fmt.Errorf("hardware error: % X", b))
	return nil
}

// cleanupConnectionHandle tears down one connection: stops its loops,
// invalidates its channels, recycles its ACL buffers, and returns the
// slot to the pool.
func (h *HCI) cleanupConnectionHandle(ch uint16) error {
	h.muConns.Lock()
	var c *Conn
	for i, o := range h.active {
		if o.ConnectionHandle() == ch {
			c = o
			h.active = append(h.active[:i], h.active[i+1:]...)
			break
		}
	}
	h.muConns.Unlock()
	if c == nil {
		return nil
	}

	logger.Debugf("cleanup handle %04X, peer %s", ch, c.RemoteAddr())
	role := c.param.Role()

	close(c.chInPkt)
	c.closed()

	// Recycle ACL buffers the dead link still holds [Vol 2, Part E,
	// 4.3]. Done with the pool locked so an in-progress writePDU can't
	// Get a buffer after the PutAll and leak it.
	c.txBuffer.Lock()
	c.txBuffer.PutAll()
	c.txBuffer.Unlock()

	h.connPool.release(c)

	if h.isOpen() && role == roleSlave {
		// Refer to handleSlaveConnection for why advertising needs to
		// be re-enabled here.
		h.params.RLock()
		if h.params.advEnable.AdvertisingEnable == 1 {
			go h.Send(&h.params.advEnable, nil)
		}
		h.params.RUnlock()
	}
	return nil
}

func (h *HCI) handleDisconnectionComplete(b []byte) error {
	e := evt.DisconnectionComplete(b)
	logger.Debugf("disconnect complete, handle %04X reason 0x%02X", e.ConnectionHandle(), e.Reason())
	return h.cleanupConnectionHandle(e.ConnectionHandle())
}

func (h *HCI) handleNumberOfCompletedPackets(b []byte) error {
	e := evt.NumberOfCompletedPackets(b)
	h.muConns.Lock()
	defer h.muConns.Unlock()
	for i := 0; i < int(e.NumberOfHandles()); i++ {
		c := h.findConn(e.ConnectionHandle(i))
		if c == nil {
			continue
		}
		for j := 0; j < int(e.HCNumOfCompletedPackets(i)); j++ {
			c.txBuffer.Put()
		}
	}
	return nil
}

func (h *HCI) setAllowedCommands(n int) {
	if n > chCmdBufChanSize {
		n = chCmdBufChanSize
	}

	for len(h.chCmdBufs) < n {
		select {
		case <-h.done:
			return
		case h.chCmdBufs <- make([]byte, chCmdBufElementSize):
		case <-time.After(chCmdBufTimeout):
			h.dispatchError(fmt.Errorf("chCmdBufs put timeout"))
			return
		}
	}
}

func (h *HCI) dispatchError(e error) {
	switch {
	case e == nil:
	case h.errorHandler == nil:
		logger.Errorf("hci: %v", e)
	case !h.isOpen():
		logger.Debugf("hci closing: %v", e)
	default:
		h.errorHandler(e)
	}
}

// DispatchError forwards an asynchronous error to the error handler.
func (h *HCI) DispatchError(e error) { h.dispatchError(e) }

// RequestBufferPool returns the shared controller transmit window.
func (h *HCI) RequestBufferPool() BufferPool { return h.pool }

// ChannelPool returns the credit based channel slot pool.
func (h *HCI) ChannelPool() *chanPool { return h.chanPool }

// SocketWrite writes raw bytes to the controller transport.
func (h *HCI) SocketWrite(b []byte) (int, error) { return h.skt.Write(b) }

// Addr returns the controller's public address.
func (h *HCI) Addr() ble.Addr { return ble.NewAddr(h.addr.String()) }

// Context returns the root context of the device.
func (h *HCI) Context() context.Context { return h.ctx }

// DefaultChannelConfig returns the channel parameters applied when a
// caller leaves ChannelConfig fields zero.
func (h *HCI) DefaultChannelConfig() ble.ChannelConfig { return h.chanCfg }

// ConnPoolAvailable reports how many connection slots remain.
func (h *HCI) ConnPoolAvailable() int { return h.connPool.available() }

// ChanPoolAvailable reports how many channel slots remain.
func (h *HCI) ChanPoolAvailable() int { return h.chanPool.available() }

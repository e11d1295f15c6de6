package hci

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/kestrelbt/ble"
	"github.com/kestrelbt/ble/adv"
	"github.com/kestrelbt/ble/sliceops"
)

// Bytes returns the controller address in big endian order.
func (h *HCI) Bytes() []byte {
	return ble.NewAddr(h.addr.String()).Bytes()
}

// SetAdvHandler sets the handler that receives scan reports.
func (h *HCI) SetAdvHandler(ah ble.AdvHandler) error {
	h.advHandler = ah
	return nil
}

// Scan starts scanning.
func (h *HCI) Scan(allowDup bool) error {
	h.params.scanEnable.FilterDuplicates = 1
	if allowDup {
		h.params.scanEnable.FilterDuplicates = 0
	}
	h.params.scanEnable.LEScanEnable = 1
	h.adHist = make([]*Advertisement, 128)
	h.adLast = 0
	return h.Send(&h.params.scanEnable, nil)
}

// StopScanning stops scanning.
func (h *HCI) StopScanning() error {
	h.params.scanEnable.LEScanEnable = 0
	return h.Send(&h.params.scanEnable, nil)
}

// Advertise starts advertising.
func (h *HCI) Advertise() error {
	h.params.advEnable.AdvertisingEnable = 1
	return h.Send(&h.params.advEnable, nil)
}

// StopAdvertising stops advertising.
func (h *HCI) StopAdvertising() error {
	h.params.advEnable.AdvertisingEnable = 0
	return h.Send(&h.params.advEnable, nil)
}

// AdvertiseName advertises the device name. If the name does not fit
// in the advertising data it goes out in the scan response instead.
func (h *HCI) AdvertiseName(name string) error {
	ad, err := adv.NewPacket(adv.Flags(adv.FlagGeneralDiscoverable | adv.FlagLEOnly))
	if err != nil {
		return err
	}
	sr, _ := adv.NewPacket()
	switch {
	case ad.Append(adv.CompleteName(name)) == nil:
	case sr.Append(adv.CompleteName(name)) == nil:
	case sr.Append(adv.ShortName(name)) == nil:
	}
	if err := h.SetAdvertisement(ad.Bytes(), sr.Bytes()); err != nil {
		return err
	}
	return h.Advertise()
}

// AdvertiseMfgData advertises the given manufacturer data.
func (h *HCI) AdvertiseMfgData(id uint16, md []byte) error {
	ad, err := adv.NewPacket(adv.ManufacturerData(id, md))
	if err != nil {
		return err
	}
	if err := h.SetAdvertisement(ad.Bytes(), nil); err != nil {
		return err
	}
	return h.Advertise()
}

// AdvertiseServiceData16 advertises data associated with a 16 bit
// service uuid.
func (h *HCI) AdvertiseServiceData16(id uint16, b []byte) error {
	ad, err := adv.NewPacket(adv.ServiceData16(id, b))
	if err != nil {
		return err
	}
	if err := h.SetAdvertisement(ad.Bytes(), nil); err != nil {
		return err
	}
	return h.Advertise()
}

// SetAdvertisement sets advertising data and scan response.
func (h *HCI) SetAdvertisement(ad []byte, sr []byte) error {
	if len(ad) > adv.MaxEIRPacketLength || len(sr) > adv.MaxEIRPacketLength {
		return ble.ErrEIRPacketTooLong
	}

	h.params.advData.AdvertisingDataLength = uint8(len(ad))
	copy(h.params.advData.AdvertisingData[:], ad)
	if err := h.Send(&h.params.advData, nil); err != nil {
		return err
	}

	h.params.scanResp.ScanResponseDataLength = uint8(len(sr))
	copy(h.params.scanResp.ScanResponseData[:], sr)
	return h.Send(&h.params.scanResp, nil)
}

// Accept returns the next inbound connection. The device advertises
// independently; see Advertise.
func (h *HCI) Accept() (ble.Conn, error) {
	var tmo <-chan time.Time
	if h.listenerTmo != time.Duration(0) {
		tmo = time.After(h.listenerTmo)
	}
	select {
	case <-h.done:
		return nil, h.err
	case c := <-h.chSlaveConn:
		return newConnHandle(c), nil
	case <-tmo:
		return nil, fmt.Errorf("listener timed out")
	}
}

// Dial initiates an outbound connection to addr. The connection slot is
// claimed up front, so pool exhaustion fails fast without touching the
// controller. One attempt at a time.
func (h *HCI) Dial(ctx context.Context, a ble.Addr) (ble.Conn, error) {
	if _, err := net.ParseMAC(a.String()); err != nil {
		return nil, ErrInvalidAddr
	}
	ab := a.Bytes()
	if len(ab) != 6 {
		return nil, ErrInvalidAddr
	}

	h.muConns.Lock()
	if h.dialing {
		h.muConns.Unlock()
		return nil, ErrBusy
	}
	slot := h.connPool.acquire()
	if slot == nil {
		h.muConns.Unlock()
		return nil, ble.ErrUnavailable
	}
	h.dialing = true
	h.dialPeer = strings.ToLower(a.String())
	h.dialSlot = slot
	h.muConns.Unlock()

	defer func() {
		h.muConns.Lock()
		h.dialing = false
		h.dialPeer = ""
		if h.dialSlot != nil {
			// The controller never reported on the attempt; reclaim.
			h.connPool.release(h.dialSlot)
			h.dialSlot = nil
		}
		h.muConns.Unlock()
	}()

	if _, ok := a.(RandomAddress); ok {
		h.params.connParams.PeerAddressType = AddressTypeRandom
	} else {
		h.params.connParams.PeerAddressType = AddressTypePublic
	}
	copy(h.params.connParams.PeerAddress[:], sliceops.SwapBuf(ab))

	logger.Infof("dialing addr %v, type %v", a.String(), h.params.connParams.PeerAddressType)

	if err := h.Send(&h.params.connParams, nil); err != nil {
		return nil, err
	}

	var tmo <-chan time.Time
	if h.dialerTmo != time.Duration(0) {
		tmo = time.After(h.dialerTmo)
	}

	select {
	case <-ctx.Done():
		return h.cancelDial(ctx.Err())
	case <-tmo:
		return h.cancelDial(fmt.Errorf("dialer timeout (%s)", h.dialerTmo))
	case <-h.done:
		return nil, h.err
	case c, ok := <-h.chMasterConn:
		if !ok {
			return nil, fmt.Errorf("chMasterConn closed")
		}
		return newConnHandle(c), nil
	}
}

// cancelDial stops a pending connection attempt.
func (h *HCI) cancelDial(passthrough error) (ble.Conn, error) {
	err := h.Send(&h.params.connCancel, nil)
	if err == nil {
		// Canceled; the connection complete event with an "unknown
		// connection" status releases the slot.
		return nil, errors.Wrap(passthrough, "connection cancelled")
	}

	// Cancel was disallowed because the connection just completed.
	if err == ErrDisallowed {
		select {
		case c := <-h.chMasterConn:
			return newConnHandle(c), nil
		case <-time.After(50 * time.Millisecond):
			return nil, errors.Wrap(passthrough, "cancel refused but no connection arrived")
		}
	}

	return nil, errors.Wrapf(passthrough, "cancel connection failed - %s", err.Error())
}

package hci

import (
	"fmt"
	"time"

	"github.com/kestrelbt/ble"
	"github.com/kestrelbt/ble/hci/cmd"
)

// SetDialerTimeout sets dialing timeout for Dialer.
func (h *HCI) SetDialerTimeout(d time.Duration) error {
	h.dialerTmo = d
	return nil
}

// SetListenerTimeout sets the timeout waiting for inbound connections.
func (h *HCI) SetListenerTimeout(d time.Duration) error {
	h.listenerTmo = d
	return nil
}

// SetConnParams overrides default connection parameters.
func (h *HCI) SetConnParams(param cmd.LECreateConnection) error {
	h.params.connParams = param
	return nil
}

// SetScanParams overrides default scanning parameters.
func (h *HCI) SetScanParams(param cmd.LESetScanParameters) error {
	h.params.scanParams = param
	return nil
}

// SetAdvParams overrides default advertising parameters.
func (h *HCI) SetAdvParams(param cmd.LESetAdvertisingParameters) error {
	h.params.advParams = param
	return nil
}

// SetAdvHandlerSync overrides default advertising handler behavior (async).
func (h *HCI) SetAdvHandlerSync(sync bool) error {
	h.advHandlerSync = sync
	return nil
}

// SetErrorHandler receives errors the stack cannot attribute to a caller.
func (h *HCI) SetErrorHandler(handler func(error)) error {
	h.errorHandler = handler
	return nil
}

// SetMaxConnections sizes the connection slot pool. Must be set before
// Init; the pool never grows afterwards.
func (h *HCI) SetMaxConnections(n int) error {
	if n <= 0 {
		return ErrInvalidPoolSize
	}
	h.maxConns = n
	return nil
}

// SetMaxChannels sizes the credit based channel slot pool, shared
// across all connections.
func (h *HCI) SetMaxChannels(n int) error {
	if n <= 0 {
		return ErrInvalidPoolSize
	}
	h.maxChans = n
	return nil
}

// SetDefaultChannelConfig sets the receive side parameters used when a
// channel is opened or accepted without an explicit config. The MTU
// also sizes the per-slot reassembly buffers.
func (h *HCI) SetDefaultChannelConfig(cfg ble.ChannelConfig) error {
	if cfg.MTU < minCocMPS || cfg.MPS < minCocMPS {
		return fmt.Errorf("channel config below minimum mtu/mps")
	}
	if cfg.MPS > cfg.MTU {
		return fmt.Errorf("channel config mps %d > mtu %d", cfg.MPS, cfg.MTU)
	}
	if cfg.InitialCredits == 0 {
		cfg.InitialCredits = defaultCocCredits
	}
	if cfg.FlowPolicy.Every == 0 {
		cfg.FlowPolicy.Every = cfg.InitialCredits
	}
	h.chanCfg = cfg
	return nil
}

// SetTransportHCISocket selects a BlueZ HCI user channel socket by
// device id.
func (h *HCI) SetTransportHCISocket(id int) error {
	h.transport = transport{
		hci: &transportHci{id},
	}
	return nil
}

// SetTransportH4Socket selects an H4 framed TCP socket.
func (h *HCI) SetTransportH4Socket(addr string, timeout time.Duration) error {
	h.transport = transport{
		h4socket: &transportH4Socket{addr, timeout},
	}
	return nil
}

// SetTransportH4Uart selects an H4 framed serial port.
func (h *HCI) SetTransportH4Uart(path string) error {
	h.transport = transport{
		h4uart: &transportH4Uart{path},
	}
	return nil
}

var _ ble.DeviceOption = (*HCI)(nil)

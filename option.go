package ble

import (
	"time"

	"github.com/kestrelbt/ble/hci/cmd"
)

// DeviceOption is the configuration surface a device implements. All of
// it is fixed before Init; nothing here is adjustable at runtime.
type DeviceOption interface {
	SetDialerTimeout(time.Duration) error
	SetListenerTimeout(time.Duration) error
	SetConnParams(cmd.LECreateConnection) error
	SetScanParams(cmd.LESetScanParameters) error
	SetAdvParams(cmd.LESetAdvertisingParameters) error
	SetAdvHandlerSync(bool) error
	SetErrorHandler(handler func(error)) error

	SetMaxConnections(n int) error
	SetMaxChannels(n int) error
	SetDefaultChannelConfig(ChannelConfig) error

	SetTransportHCISocket(id int) error
	SetTransportH4Socket(addr string, timeout time.Duration) error
	SetTransportH4Uart(path string) error
}

// An Option is a configuration function, which configures the device.
type Option func(DeviceOption) error

// OptDialerTimeout sets dialing timeout for Dialer.
func OptDialerTimeout(d time.Duration) Option {
	return func(opt DeviceOption) error {
		return opt.SetDialerTimeout(d)
	}
}

// OptListenerTimeout sets the timeout waiting for inbound connections.
func OptListenerTimeout(d time.Duration) Option {
	return func(opt DeviceOption) error {
		return opt.SetListenerTimeout(d)
	}
}

// OptConnParams overrides default connection parameters.
func OptConnParams(param cmd.LECreateConnection) Option {
	return func(opt DeviceOption) error {
		return opt.SetConnParams(param)
	}
}

// OptScanParams overrides default scanning parameters.
func OptScanParams(param cmd.LESetScanParameters) Option {
	return func(opt DeviceOption) error {
		return opt.SetScanParams(param)
	}
}

// OptAdvParams overrides default advertising parameters.
func OptAdvParams(param cmd.LESetAdvertisingParameters) Option {
	return func(opt DeviceOption) error {
		return opt.SetAdvParams(param)
	}
}

// OptAdvHandlerSync makes advertisement reports dispatch on the event
// loop goroutine instead of their own.
func OptAdvHandlerSync(sync bool) Option {
	return func(opt DeviceOption) error {
		return opt.SetAdvHandlerSync(sync)
	}
}

// OptErrorHandler receives errors the stack cannot attribute to a caller.
func OptErrorHandler(handler func(error)) Option {
	return func(opt DeviceOption) error {
		return opt.SetErrorHandler(handler)
	}
}

// OptMaxConnections caps the connection slot pool.
func OptMaxConnections(n int) Option {
	return func(opt DeviceOption) error {
		return opt.SetMaxConnections(n)
	}
}

// OptMaxChannels caps the credit based channel slot pool, shared across
// all connections.
func OptMaxChannels(n int) Option {
	return func(opt DeviceOption) error {
		return opt.SetMaxChannels(n)
	}
}

// OptDefaultChannelConfig sets the receive side defaults used when a
// channel is created or accepted without an explicit config.
func OptDefaultChannelConfig(cfg ChannelConfig) Option {
	return func(opt DeviceOption) error {
		return opt.SetDefaultChannelConfig(cfg)
	}
}

// OptTransportHCISocket uses a BlueZ HCI user channel socket by device id.
func OptTransportHCISocket(id int) Option {
	return func(opt DeviceOption) error {
		return opt.SetTransportHCISocket(id)
	}
}

// OptTransportH4Socket uses an H4 framed TCP socket, e.g. a zephyr
// hci_uart bridge.
func OptTransportH4Socket(addr string, timeout time.Duration) Option {
	return func(opt DeviceOption) error {
		return opt.SetTransportH4Socket(addr, timeout)
	}
}

// OptTransportH4Uart uses an H4 framed serial port.
func OptTransportH4Uart(path string) Option {
	return func(opt DeviceOption) error {
		return opt.SetTransportH4Uart(path)
	}
}

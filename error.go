package ble

import "errors"

var (
	// ErrUnavailable is returned when a fixed capacity pool has no free
	// slot, or the peer rejected a channel request for lack of resources.
	// It is backpressure, not a fault; retry after releasing resources.
	ErrUnavailable = errors.New("resources unavailable")

	// ErrChannelClosed resolves any send or receive pending on a channel
	// that was torn down, locally, by the peer, or by connection loss.
	ErrChannelClosed = errors.New("channel closed")

	// ErrPSMNotSupported is the peer's rejection of a channel request
	// whose PSM is not in its allow list.
	ErrPSMNotSupported = errors.New("psm not supported")

	// ErrInsufficientAuthen is the peer's rejection for missing authentication.
	ErrInsufficientAuthen = errors.New("insufficient authentication")

	// ErrMTUExceeded is returned by Send when the SDU is larger than the
	// MTU the peer accepts.
	ErrMTUExceeded = errors.New("mtu exceeded")

	// ErrProtocol indicates the peer violated the channel protocol; the
	// offending channel was closed, siblings are unaffected.
	ErrProtocol = errors.New("protocol violation")

	// ErrEIRPacketTooLong is the error returned when an AD structure
	// does not fit in the advertising payload.
	ErrEIRPacketTooLong = errors.New("max packet length is 31")
)

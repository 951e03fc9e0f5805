// Package serial defines the byte transport contract the engine depends on
// and the inter-byte timeout shim that synthesizes a receive-until-idle
// operation over a transport that only offers fixed-length receive.
package serial

import "time"

// ReceiveClient receives transport completion callbacks.
type ReceiveClient interface {
	// ReceivedBuffer is called when a receive completes (or is aborted),
	// with rxLen bytes valid in buffer. A Transport reports an aborted
	// receive with err == ErrCancelled; TimeoutShim reports its own
	// timeout-triggered completion to its client as a normal completion
	// with err == nil (§4.4).
	ReceivedBuffer(buffer []byte, rxLen int, err error)
}

// TransmitClient receives transmit completion callbacks.
type TransmitClient interface {
	TransmittedBuffer(buffer []byte, txLen int, err error)
}

// Transport is the underlying fixed-length byte transport (UART or
// USB-CDC) the engine's receive-until-idle is built on top of.
type Transport interface {
	SetReceiveClient(c ReceiveClient)
	SetTransmitClient(c TransmitClient)

	// ReceiveBuffer requests up to len(buf) bytes; ReceivedBuffer fires
	// once at least one byte has arrived (it may deliver fewer than
	// len(buf)).
	ReceiveBuffer(buf []byte) error
	// ReceiveAbort cancels an outstanding ReceiveBuffer; idempotent and
	// always safe per §5 — the next completion delivers accumulated
	// bytes with ErrCancelled.
	ReceiveAbort() error

	TransmitBuffer(buf []byte) error
}

// ErrCancelled is delivered to ReceivedBuffer when a receive was aborted
// (by the timeout shim's alarm, or externally) rather than completing
// because the requested length was reached.
var ErrCancelled = cancelledError{}

type cancelledError struct{}

func (cancelledError) Error() string { return "serial: receive cancelled" }

// Clock abstracts timer creation so the shim can be driven by a fake clock
// in tests without a real time.Timer.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is the subset of *time.Timer the shim needs.
type Timer interface {
	Stop() bool
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealClock is the production Clock, backed by the standard library.
var RealClock Clock = realClock{}

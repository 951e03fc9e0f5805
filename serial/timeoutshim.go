package serial

import (
	"errors"
	"time"
)

// Default inter-byte timeout constants (§4.4).
const (
	TimeoutUSB  = 6 // milliseconds
	TimeoutGPIO = 30
)

// ErrBusy is returned by ReceiveUntilIdle when a receive is already
// outstanding (§5's single-outstanding-operation invariant).
var ErrBusy = errors.New("serial: receive already in progress")

func millis(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

// chunkBufferSize is the shim's own internal receive buffer, distinct from
// the engine's scratch buffer per §4.4's closing note.
const chunkBufferSize = 512

type shimState uint8

const (
	shimIdle shimState = iota
	shimReceiving
)

// TimeoutShim wraps a Transport's fixed-length ReceiveBuffer into a
// receive-until-idle operation: it primes a 1-byte receive to guarantee an
// immediate callback on the first arriving byte, then issues
// min(cap/2, 50)-byte chunk receives, arming a per-chunk deadline timer
// after each one. The timer firing aborts the outstanding receive; the
// resulting cancellation delivers the bytes accumulated so far to the
// engine. Grounded on
// original_source/bootloader/src/uart_receive_multiple_timeout.rs.
type TimeoutShim struct {
	transport Transport
	clock     Clock

	chunkBuf [chunkBufferSize]byte

	state       shimState
	client      ReceiveClient
	clientBuf   []byte
	clientIndex int
	timeoutMS   int
	timer       Timer
}

// NewTimeoutShim wraps transport. clock is normally serial.RealClock; tests
// may supply a fake.
func NewTimeoutShim(transport Transport, clock Clock) *TimeoutShim {
	s := &TimeoutShim{transport: transport, clock: clock}
	transport.SetReceiveClient(s)
	return s
}

// SetReceiveClient registers the engine-facing client that receives the
// completed receive-until-idle result.
func (s *TimeoutShim) SetReceiveClient(c ReceiveClient) { s.client = c }

// ReceiveUntilIdle arms a new receive-until-idle into buf with the given
// per-chunk inter-byte timeout in milliseconds. Returns ErrBusy if a
// receive is already outstanding.
func (s *TimeoutShim) ReceiveUntilIdle(buf []byte, timeoutMS int) error {
	if s.state == shimReceiving {
		return ErrBusy
	}
	s.state = shimReceiving
	s.clientBuf = buf
	s.clientIndex = 0
	s.timeoutMS = timeoutMS
	return s.transport.ReceiveBuffer(s.chunkBuf[:1])
}

// ReceivedBuffer is the Transport's ReceiveClient callback.
func (s *TimeoutShim) ReceivedBuffer(buffer []byte, rxLen int, err error) {
	if s.state != shimReceiving {
		return
	}

	available := len(s.clientBuf) - s.clientIndex
	copyLen := rxLen
	if copyLen > available {
		copyLen = available
	}
	copy(s.clientBuf[s.clientIndex:s.clientIndex+copyLen], buffer[:copyLen])
	s.clientIndex += copyLen

	if err == nil {
		if s.clientIndex >= len(s.clientBuf) {
			s.finish()
			return
		}
		s.armTimer()
		next := len(s.chunkBuf) / 2
		if next > 50 {
			next = 50
		}
		if next < 1 {
			next = 1
		}
		s.transport.ReceiveBuffer(s.chunkBuf[:next])
		return
	}

	if err == ErrCancelled {
		s.finish()
		return
	}
	// Any other transport error: per §7, discard the chunk and deliver
	// what had accumulated before it, same as a timeout.
	s.clientIndex -= copyLen
	s.finish()
}

func (s *TimeoutShim) armTimer() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = s.clock.AfterFunc(millis(s.timeoutMS), func() {
		s.transport.ReceiveAbort()
	})
}

func (s *TimeoutShim) finish() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.state = shimIdle
	buf, n := s.clientBuf, s.clientIndex
	s.clientBuf = nil
	s.clientIndex = 0
	s.client.ReceivedBuffer(buf, n, nil)
}

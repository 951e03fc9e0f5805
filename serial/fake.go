//go:build !tinygo

package serial

import "time"

// FakeTransport is an in-memory Transport for host tests: bytes queued via
// Feed are delivered to the receive client chunk-by-chunk, matching a real
// UART's behavior of returning whatever is currently available.
type FakeTransport struct {
	rxClient  ReceiveClient
	txClient  TransmitClient
	pending   []byte
	receiving bool
	wantLen   int
	buf       []byte

	Transmitted [][]byte
}

func NewFakeTransport() *FakeTransport { return &FakeTransport{} }

func (f *FakeTransport) SetReceiveClient(c ReceiveClient)   { f.rxClient = c }
func (f *FakeTransport) SetTransmitClient(c TransmitClient) { f.txClient = c }

func (f *FakeTransport) ReceiveBuffer(buf []byte) error {
	f.receiving = true
	f.buf = buf
	f.wantLen = len(buf)
	f.tryDeliver()
	return nil
}

func (f *FakeTransport) ReceiveAbort() error {
	if !f.receiving {
		return nil
	}
	f.receiving = false
	f.rxClient.ReceivedBuffer(f.buf, 0, ErrCancelled)
	return nil
}

func (f *FakeTransport) TransmitBuffer(buf []byte) error {
	cp := make([]byte, len(buf))
	copy(cp, buf)
	f.Transmitted = append(f.Transmitted, cp)
	if f.txClient != nil {
		f.txClient.TransmittedBuffer(buf, len(buf), nil)
	}
	return nil
}

// Feed makes bytes available to be delivered on the next (or a currently
// outstanding) ReceiveBuffer call.
func (f *FakeTransport) Feed(b []byte) {
	f.pending = append(f.pending, b...)
	if f.receiving {
		f.tryDeliver()
	}
}

func (f *FakeTransport) tryDeliver() {
	if !f.receiving || len(f.pending) == 0 {
		return
	}
	n := len(f.pending)
	if n > f.wantLen {
		n = f.wantLen
	}
	copy(f.buf, f.pending[:n])
	f.pending = f.pending[n:]
	f.receiving = false
	f.rxClient.ReceivedBuffer(f.buf, n, nil)
}

// FakeClock lets tests fire the shim's alarm deterministically instead of
// waiting on a real time.Timer.
type FakeClock struct {
	pending func()
}

func (c *FakeClock) AfterFunc(_ time.Duration, f func()) Timer {
	c.pending = f
	return fakeTimer{c}
}

// Fire invokes the most recently armed callback, if any.
func (c *FakeClock) Fire() {
	if c.pending != nil {
		f := c.pending
		c.pending = nil
		f()
	}
}

type fakeTimer struct{ c *FakeClock }

func (t fakeTimer) Stop() bool {
	fired := t.c.pending != nil
	t.c.pending = nil
	return fired
}

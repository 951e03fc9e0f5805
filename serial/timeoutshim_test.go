package serial

import (
	"bytes"
	"testing"
)

type captureClient struct {
	buf []byte
	n   int
	err error
	got bool
}

func (c *captureClient) ReceivedBuffer(buf []byte, n int, err error) {
	c.buf, c.n, c.err, c.got = buf, n, err, true
}

func TestTimeoutShimDeliversOnTimeout(t *testing.T) {
	transport := NewFakeTransport()
	clock := &FakeClock{}
	shim := NewTimeoutShim(transport, clock)
	client := &captureClient{}
	shim.SetReceiveClient(client)

	buf := make([]byte, 16)
	if err := shim.ReceiveUntilIdle(buf, TimeoutUSB); err != nil {
		t.Fatalf("ReceiveUntilIdle: %v", err)
	}

	// First priming receive expects exactly 1 byte.
	transport.Feed([]byte{0x42})
	if client.got {
		t.Fatalf("delivered early after first byte")
	}

	// Timer armed after the first byte; firing it aborts the receive and
	// delivers what has accumulated.
	clock.Fire()

	if !client.got {
		t.Fatalf("expected delivery after timeout")
	}
	if client.n != 1 || client.buf[0] != 0x42 {
		t.Fatalf("got n=%d buf=%x", client.n, client.buf[:client.n])
	}
}

func TestTimeoutShimAccumulatesMultipleChunks(t *testing.T) {
	transport := NewFakeTransport()
	clock := &FakeClock{}
	shim := NewTimeoutShim(transport, clock)
	client := &captureClient{}
	shim.SetReceiveClient(client)

	buf := make([]byte, 16)
	shim.ReceiveUntilIdle(buf, TimeoutUSB)

	transport.Feed([]byte{0x01})
	transport.Feed([]byte{0x02, 0x03, 0x04})
	clock.Fire()

	if !client.got {
		t.Fatalf("expected delivery")
	}
	want := []byte{0x01, 0x02, 0x03, 0x04}
	if client.n != len(want) || !bytes.Equal(client.buf[:client.n], want) {
		t.Fatalf("got %x, want %x", client.buf[:client.n], want)
	}
}

func TestTimeoutShimDeliversWhenBufferFull(t *testing.T) {
	transport := NewFakeTransport()
	clock := &FakeClock{}
	shim := NewTimeoutShim(transport, clock)
	client := &captureClient{}
	shim.SetReceiveClient(client)

	buf := make([]byte, 2)
	shim.ReceiveUntilIdle(buf, TimeoutUSB)

	transport.Feed([]byte{0xAA})
	transport.Feed([]byte{0xBB, 0xCC}) // one extra byte than fits

	if !client.got {
		t.Fatalf("expected immediate delivery once buffer is full")
	}
	if client.n != 2 || !bytes.Equal(client.buf[:2], []byte{0xAA, 0xBB}) {
		t.Fatalf("got %x", client.buf[:client.n])
	}
}

func TestTimeoutShimBusyRejectsSecondReceive(t *testing.T) {
	transport := NewFakeTransport()
	clock := &FakeClock{}
	shim := NewTimeoutShim(transport, clock)
	shim.SetReceiveClient(&captureClient{})

	buf := make([]byte, 4)
	if err := shim.ReceiveUntilIdle(buf, TimeoutUSB); err != nil {
		t.Fatalf("first ReceiveUntilIdle: %v", err)
	}
	if err := shim.ReceiveUntilIdle(buf, TimeoutUSB); err != ErrBusy {
		t.Fatalf("got %v, want ErrBusy", err)
	}
}

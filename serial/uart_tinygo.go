//go:build tinygo

package serial

import "machine"

// UART wraps a machine.UART as a Transport. TinyGo's UART exposes only
// polling reads (Buffered/ReadByte), not native async receive callbacks, so
// a background goroutine polls the peripheral and feeds ReceivedBuffer —
// the same "hardware file paired with a driving loop" shape the teacher
// uses for machine.GP2 polling in bindicator.go, generalized here to UART
// RX.
type UART struct {
	uart     *machine.UART
	rx       ReceiveClient
	tx       TransmitClient
	wantLen  int
	buf      []byte
	aborted  chan struct{}
	pumping  bool
}

// NewUART configures uart at the given baud rate and returns a Transport.
func NewUART(uart *machine.UART, baudRate uint32) *UART {
	uart.Configure(machine.UARTConfig{BaudRate: baudRate})
	return &UART{uart: uart, aborted: make(chan struct{}, 1)}
}

func (u *UART) SetReceiveClient(c ReceiveClient)   { u.rx = c }
func (u *UART) SetTransmitClient(c TransmitClient) { u.tx = c }

// ReceiveBuffer polls the UART until at least one byte is available (or
// abort is requested), then delivers whatever is buffered up to len(buf).
func (u *UART) ReceiveBuffer(buf []byte) error {
	u.buf = buf
	u.wantLen = len(buf)
	u.pumping = true
	go u.pump()
	return nil
}

func (u *UART) pump() {
	for u.pumping {
		select {
		case <-u.aborted:
			u.pumping = false
			u.rx.ReceivedBuffer(u.buf, 0, ErrCancelled)
			return
		default:
		}
		if n := u.uart.Buffered(); n > 0 {
			if n > u.wantLen {
				n = u.wantLen
			}
			for i := 0; i < n; i++ {
				b, _ := u.uart.ReadByte()
				u.buf[i] = b
			}
			u.pumping = false
			u.rx.ReceivedBuffer(u.buf, n, nil)
			return
		}
	}
}

// ReceiveAbort cancels an outstanding ReceiveBuffer.
func (u *UART) ReceiveAbort() error {
	select {
	case u.aborted <- struct{}{}:
	default:
	}
	return nil
}

// TransmitBuffer writes buf synchronously and reports completion.
func (u *UART) TransmitBuffer(buf []byte) error {
	_, err := u.uart.Write(buf)
	if u.tx != nil {
		u.tx.TransmittedBuffer(buf, len(buf), err)
	}
	return err
}

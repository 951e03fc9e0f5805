package entry

// PinReader reads the instantaneous logic level of the entry-request pin.
// Abstracted behind an interface (rather than machine.Pin directly) so the
// sampling logic in GPIO is host-testable, mirroring the teacher's split
// between hardware pin configuration (bindicator.go) and portable logic
// (bindicator_stub.go).
type PinReader interface {
	Get() bool // true = high/inactive, false = low/active
}

// GPIOSampleCount is the number of samples taken with no intentional delay
// between them (§4.5).
const GPIOSampleCount = 10000

// GPIO decides to stay in the bootloader by majority-voting 10,000
// back-to-back pin samples, active-low. Grounded on
// original_source/bootloader/src/bootloader_entry_gpio.rs.
type GPIO struct {
	Pin PinReader
}

func (g GPIO) StayInBootloader() bool {
	var active, inactive int
	for i := 0; i < GPIOSampleCount; i++ {
		if g.Pin.Get() {
			inactive++
		} else {
			active++
		}
	}
	return active > inactive
}

package entry

// LEDPin is the subset of machine.Pin used by LEDNotifier, mirroring the
// pinGreenLED/pinBlackLED/pinBrownLED usage in the teacher's bindicator.go.
type LEDPin interface {
	High()
}

// LEDNotifier turns an LED on to signal that the device stayed in the
// bootloader. Grounded on
// original_source/bootloader/src/active_notifier_ledon.rs.
type LEDNotifier struct {
	Pin LEDPin
}

func (n LEDNotifier) Notify() {
	n.Pin.High()
}

// NullNotifier does nothing, grounded on
// original_source/bootloader/src/active_notifier_null.rs.
type NullNotifier struct{}

func (NullNotifier) Notify() {}

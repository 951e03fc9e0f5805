// Package entry implements the at-reset decision of whether to stay in the
// bootloader or jump to the application, the active-notifier signaled when
// staying, and the Cortex-M jump itself. Grounded on
// original_source/bootloader/src/bootloader_entry_*.rs and
// arch/bootloader_cortexm/src/jumper.rs.
package entry

// Decider is the strategy contract shared by all four entry variants
// (§4.5, §9 "Entry decider as a strategy").
type Decider interface {
	StayInBootloader() bool
}

// ActiveNotifier signals that the device is staying in bootloader mode.
type ActiveNotifier interface {
	Notify()
}

// Always unconditionally stays in the bootloader.
type Always struct{}

func (Always) StayInBootloader() bool { return true }

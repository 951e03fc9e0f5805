package entry

// GPREGRET magic values, named and valued as in the Adafruit nRF52
// bootloader that the original Tock bootloader interoperates with.
const (
	MagicSerialOnlyReset uint32 = 0x4E
	MagicTockBootloader  uint32 = 0x99
)

// GPRegRet decides to stay in the bootloader via the Cortex-M retention
// register (e.g. nRF52's GPREGRET): a kernel can set it to
// MagicTockBootloader before a soft reset to force a return to the
// bootloader. Falls through to the same double-reset check and debounce
// spin as DoubleReset, and on the way out sets the register to
// MagicSerialOnlyReset so a downstream Adafruit-compatible bootloader (if
// present at the jump target) also stays resident. Grounded on
// original_source/chips/bootloader_nrf52/src/bootloader_entry_gpregret.rs.
type GPRegRet struct {
	GPRegRet Register
	Word     Register
	Spin     Spin // nil uses defaultSpin
}

func (g GPRegRet) StayInBootloader() bool {
	if g.GPRegRet.Get() == MagicTockBootloader {
		g.GPRegRet.Set(0)
		return true
	}

	if g.Word.Get() == DoubleResetMagic {
		g.Word.Set(0)
		return true
	}

	spin := g.Spin
	if spin == nil {
		spin = defaultSpin
	}
	g.Word.Set(DoubleResetMagic)
	spin(DoubleResetSpins)
	g.Word.Set(0)

	g.GPRegRet.Set(MagicSerialOnlyReset)
	return false
}

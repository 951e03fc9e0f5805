package entry

import "testing"

func TestAlwaysStaysInBootloader(t *testing.T) {
	if !(Always{}).StayInBootloader() {
		t.Fatal("Always must always stay")
	}
}

func TestGPIOMajorityVote(t *testing.T) {
	cases := []struct {
		name string
		high int // number of samples returning high (inactive) out of GPIOSampleCount
		want bool
	}{
		{"mostly low stays", 0, true},
		{"mostly high leaves", GPIOSampleCount, false},
		{"exact tie leaves", GPIOSampleCount / 2, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			pin := &sequencePin{highCount: c.high}
			g := GPIO{Pin: pin}
			if got := g.StayInBootloader(); got != c.want {
				t.Fatalf("StayInBootloader() = %v, want %v", got, c.want)
			}
		})
	}
}

type sequencePin struct {
	highCount int
	seen      int
}

func (p *sequencePin) Get() bool {
	p.seen++
	return p.seen <= p.highCount
}

func TestGPRegRetStaysOnTockMagic(t *testing.T) {
	g := GPRegRet{
		GPRegRet: &MemoryRegister{Value: MagicTockBootloader},
		Word:     &MemoryRegister{},
	}
	if !g.StayInBootloader() {
		t.Fatal("expected stay on MagicTockBootloader")
	}
	if g.GPRegRet.Get() != 0 {
		t.Fatal("expected GPREGRET cleared after consuming the magic value")
	}
}

func TestGPRegRetStaysOnDoubleResetWord(t *testing.T) {
	g := GPRegRet{
		GPRegRet: &MemoryRegister{},
		Word:     &MemoryRegister{Value: DoubleResetMagic},
	}
	if !g.StayInBootloader() {
		t.Fatal("expected stay on double-reset magic")
	}
	if g.Word.Get() != 0 {
		t.Fatal("expected double-reset word cleared")
	}
}

func TestGPRegRetFallsThroughToSpinAndLeaves(t *testing.T) {
	var spun int
	gpregret := &MemoryRegister{}
	word := &MemoryRegister{}
	g := GPRegRet{
		GPRegRet: gpregret,
		Word:     word,
		Spin:     func(n int) { spun = n },
	}
	if g.StayInBootloader() {
		t.Fatal("expected to leave the bootloader when neither magic value is set")
	}
	if spun != DoubleResetSpins {
		t.Fatalf("spin iterations = %d, want %d", spun, DoubleResetSpins)
	}
	if word.Get() != 0 {
		t.Fatal("expected double-reset word cleared after the spin")
	}
	if gpregret.Get() != MagicSerialOnlyReset {
		t.Fatalf("GPREGRET = %#x, want %#x (compat with a downstream Adafruit bootloader)", gpregret.Get(), MagicSerialOnlyReset)
	}
}

func TestDoubleResetStaysOnSecondReset(t *testing.T) {
	word := &MemoryRegister{Value: DoubleResetMagic}
	d := DoubleReset{Word: word}
	if !d.StayInBootloader() {
		t.Fatal("expected stay on a matching double-reset word")
	}
	if word.Get() != 0 {
		t.Fatal("expected double-reset word cleared")
	}
}

func TestDoubleResetArmsAndLeavesOnFirstReset(t *testing.T) {
	var spun int
	word := &MemoryRegister{}
	d := DoubleReset{Word: word, Spin: func(n int) { spun = n }}
	if d.StayInBootloader() {
		t.Fatal("expected to leave the bootloader on a first, isolated reset")
	}
	if spun != DoubleResetSpins {
		t.Fatalf("spin iterations = %d, want %d", spun, DoubleResetSpins)
	}
	if word.Get() != 0 {
		t.Fatal("expected double-reset word cleared after the spin")
	}
}

func TestLEDNotifierTurnsPinHigh(t *testing.T) {
	pin := &recordingPin{}
	LEDNotifier{Pin: pin}.Notify()
	if !pin.high {
		t.Fatal("expected LEDNotifier to drive the pin high")
	}
}

type recordingPin struct{ high bool }

func (p *recordingPin) High() { p.high = true }

func TestFakeJumperRecordsAddress(t *testing.T) {
	j := &FakeJumper{}
	j.Jump(0x08010000)
	if !j.Jumped || j.Address != 0x08010000 {
		t.Fatalf("got jumped=%v address=%#x", j.Jumped, j.Address)
	}
}

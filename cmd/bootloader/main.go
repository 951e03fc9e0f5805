//go:build tinygo

// Command bootloader is the tinygo-tagged entrypoint: it brings up the
// flash device, serial transport, and entry decider, then either jumps
// straight to the application or hands control to the engine, grounded
// on main.go's init-then-loop shape with the WiFi/NTP/MQTT/LED-schedule
// logic trimmed (no bootloader analogue).
package main

import (
	"machine"

	"github.com/tock-go/bootloader/attrs"
	"github.com/tock-go/bootloader/bootlog"
	"github.com/tock-go/bootloader/config"
	"github.com/tock-go/bootloader/engine"
	"github.com/tock-go/bootloader/entry"
	"github.com/tock-go/bootloader/flash"
	"github.com/tock-go/bootloader/flashadapter"
	"github.com/tock-go/bootloader/serial"
	"github.com/tock-go/bootloader/version"
)

// Linker-provided layout (§3): the bootloader occupies [TextStart,
// TextEnd), and the flags/attributes pages sit just past it. A real
// build supplies these via a linker script; the constants here are
// placeholders for the RP2350 flash map this board targets.
const (
	textStart         = 0
	textEnd           = 0x10000
	flagsAddress      = 0x10000
	attributesAddress = 0x10200
	flashBaseOffset   = 0
)

const entryPin = machine.GP5

func main() {
	logger := bootlog.New(machine.Serial, nil)
	logger.Info("bootloader:start", "version", version.Version, "sha", version.GitSHA)

	pin := entryPinReader{}
	pin.Configure()

	decider := entry.GPIO{Pin: pin}
	notifier := entry.LEDNotifier{Pin: machine.LED}
	jumper := entry.CortexMJumper{}

	romDevice := flash.NewROMDevice(flashBaseOffset, config.PageSize())
	flashDev := flashadapter.New(romDevice)

	if !decider.StayInBootloader() {
		startAddress := readStartAddress(flashDev)
		logger.Info("bootloader:jump", "address", startAddress)
		jumper.Jump(startAddress)
		return
	}
	notifier.Notify()

	uart := serial.NewUART(machine.UART0, uint32(config.BaudRate()))
	shim := serial.NewTimeoutShim(uart, serial.RealClock)

	cfg := engine.Config{
		FlagsAddress:      flagsAddress,
		AttributesAddress: attributesAddress,
		TextStart:         textStart,
		TextEnd:           textEnd,
	}

	eng := engine.New(shim, uart, flashDev, func() {
		machine.CPUReset()
	}, cfg)
	eng.SetLogger(logger)
	eng.Start()

	logger.Info("bootloader:ready")
	select {}
}

// entryPinReader wraps machine.Pin's instantaneous level as entry.PinReader,
// mirroring the hardware-pin/portable-logic split bindicator.go/
// bindicator_stub.go use for pinGreenLED etc.
type entryPinReader struct {
	pin machine.Pin
}

func (p *entryPinReader) Configure() {
	p.pin = entryPin
	p.pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
}

func (p entryPinReader) Get() bool { return p.pin.Get() }

// readStartAddress reads the Flags page off dev and decodes the persisted
// start address (§4.5, §6): the application address the bootloader jumps
// to when the entry pin says not to stay. dev's ReadPage completes
// synchronously on real hardware (flash.ROMDevice reads straight out of
// the XIP window), so flagsPageClient's ReadComplete has already run by
// the time ReadPage returns.
func readStartAddress(dev flash.Device) uint32 {
	var c flagsPageClient
	c.page = make([]byte, dev.PageSize())
	dev.SetClient(&c)
	dev.ReadPage(int(flagsAddress)/dev.PageSize(), c.page)
	if c.err != nil {
		return textEnd
	}
	return attrs.ReadStartAddress(c.page)
}

// flagsPageClient is a throwaway flash.Client used only to capture the
// single synchronous Flags-page read readStartAddress issues before the
// engine is constructed (engine.New registers itself as the device's
// client immediately afterward).
type flagsPageClient struct {
	page []byte
	err  error
}

func (c *flagsPageClient) ReadComplete(page []byte, err error)  { c.err = err }
func (c *flagsPageClient) WriteComplete(page []byte, err error) {}
func (c *flagsPageClient) EraseComplete(err error)              {}

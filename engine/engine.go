// Package engine implements the bootloader's core request/response state
// machine: it couples the protocol codec, the flash device, and the
// inter-byte-timeout serial shim into one cooperative pipeline, exactly
// mirroring the callback shape of
// original_source/bootloader/src/bootloader.rs collapsed into the §4.1
// state table.
package engine

import (
	"hash/crc32"
	"log/slog"
	"time"

	"github.com/tock-go/bootloader/attrs"
	"github.com/tock-go/bootloader/bootlog"
	"github.com/tock-go/bootloader/config"
	"github.com/tock-go/bootloader/flash"
	"github.com/tock-go/bootloader/protocol"
	"github.com/tock-go/bootloader/serial"
)

// scratchCapacity is the engine's single shared scratch buffer size (§3):
// large enough for a 512-byte WritePage payload's worth of response
// streaming plus framing overhead.
const scratchCapacity = 600

// receiveTimeoutMS is the inter-byte timeout armed on every receive, in
// whole milliseconds (6 by default; 100 bit-periods at 115200 baud would be
// under 1 ms), taken from config.ReceiveTimeout() so a board can override
// it the same way it overrides the baud rate and page size.
var receiveTimeoutMS = int(config.ReceiveTimeout() / time.Millisecond)

// Receiver is the receive-until-idle contract the engine is built on,
// satisfied by *serial.TimeoutShim (or directly by a Transport that
// already provides idle detection).
type Receiver interface {
	SetReceiveClient(c serial.ReceiveClient)
	ReceiveUntilIdle(buf []byte, timeoutMS int) error
}

// Transmitter is the raw transmit contract; satisfied by serial.Transport.
type Transmitter interface {
	SetTransmitClient(c serial.TransmitClient)
	TransmitBuffer(buf []byte) error
}

// Config carries the linker-provided addresses and the bootloader's own
// text range (§3); all are byte offsets within the logical 512-byte-page
// address space the flash device exposes.
type Config struct {
	FlagsAddress      uint32
	AttributesAddress uint32
	TextStart         uint32
	TextEnd           uint32
}

type stateKind uint8

const (
	stateIdle stateKind = iota
	stateInfo
	stateErasePage
	stateGetAttribute
	stateSetAttribute
	stateSetStartAddress
	stateWriteFlashPage
	stateReadRange
	stateCrc
)

// state is the tagged variant of §4.1's engine state table; only the
// fields relevant to kind are meaningful at any time.
type state struct {
	kind stateKind

	attrIndex uint8

	rrAddress   uint32
	rrLength    uint16
	rrRemaining uint16

	crcAddress   uint32
	crcRemaining uint32
	crc          uint32
}

// Engine is the bootloader's core request/response state machine. It owns
// the scratch and page buffers with single-owner take/replace discipline:
// a nil buf/page field means the buffer is in flight to transport or
// flash; a non-nil field means the engine currently holds it.
type Engine struct {
	cfg Config

	receiver   Receiver
	transport  Transmitter
	flashDev   flash.Device
	resetHook  func()
	logger     *slog.Logger

	pageSize int

	scratchStorage [scratchCapacity]byte
	buf            []byte // nil while owned by transport or flash

	pageStorage []byte
	page        []byte // nil while owned by flash

	decoder *protocol.Decoder
	st      state
}

// New wires an Engine to its collaborators. flashDev must already have
// PageSize() == 512 (i.e. it is a flashadapter.FlashLargeToSmall or a
// native 512-byte device); resetHook performs the platform reset for the
// Exit command.
func New(receiver Receiver, transport Transmitter, flashDev flash.Device, resetHook func(), cfg Config) *Engine {
	e := &Engine{
		cfg:         cfg,
		receiver:    receiver,
		transport:   transport,
		flashDev:    flashDev,
		resetHook:   resetHook,
		logger:      bootlog.Discard(),
		pageSize:    flashDev.PageSize(),
		pageStorage: make([]byte, flashDev.PageSize()),
		decoder:     protocol.NewDecoder(),
	}
	e.buf = e.scratchStorage[:0]
	e.page = e.pageStorage
	receiver.SetReceiveClient(e)
	transport.SetTransmitClient(e)
	flashDev.SetClient(e)
	return e
}

// SetLogger installs the logger used for flash-error and protocol-error
// reporting; nil is equivalent to a discarding logger.
func (e *Engine) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = bootlog.Discard()
	}
	e.logger = logger
}

// Start arms the first receive. Called once after BootloaderEnterer has
// decided to stay resident (§4.5).
func (e *Engine) Start() {
	e.armReceive()
}

func (e *Engine) armReceive() {
	e.st = state{kind: stateIdle}
	buf := e.scratchStorage[:cap(e.scratchStorage)]
	e.buf = nil
	e.receiver.ReceiveUntilIdle(buf, receiveTimeoutMS)
}

func (e *Engine) isSelfWrite(address uint32) bool {
	return address >= e.cfg.TextStart && address < e.cfg.TextEnd
}

func (e *Engine) flagsPageIndex() int {
	return int(e.cfg.FlagsAddress) / e.pageSize
}

func (e *Engine) attrPageIndexOffset(index uint8) (pageIndex int, pageOffset int) {
	slotAddr := e.cfg.AttributesAddress + uint32(index)*attrs.SlotSize
	return int(slotAddr) / e.pageSize, int(slotAddr) % e.pageSize
}

// sendSimple transmits a bodyless response and returns to Idle with a
// fresh receive armed.
func (e *Engine) sendSimple(buf []byte, code byte) {
	out := protocol.EncodeSimple(buf[:0], code)
	e.st = state{kind: stateIdle}
	e.transport.TransmitBuffer(out)
}

// ReceivedBuffer is the Receiver's callback (§4.1 "command dispatch").
func (e *Engine) ReceivedBuffer(buffer []byte, rxLen int, err error) {
	if err != nil {
		// Per §7, receive errors discard the chunk; re-arm.
		e.armReceive()
		return
	}

	for i := 0; i < rxLen; i++ {
		cmd, decErr := e.decoder.Feed(buffer[i])
		if cmd == nil && decErr == nil {
			continue
		}
		if decErr != nil {
			if decErr == protocol.ErrBadArguments {
				e.sendSimple(buffer, protocol.ResBadArgs)
			} else if decErr == protocol.ErrUnknownCommand {
				e.sendSimple(buffer, protocol.ResUnknown)
			} else {
				e.logger.Error("protocol:decode-failed", slog.String("err", decErr.Error()))
				e.sendSimple(buffer, protocol.ResInternal)
			}
			return
		}
		if cmd.Opcode == protocol.CmdReset {
			// Internal: clear the decoder and continue parsing the rest
			// of this chunk, per §4.1.
			e.decoder.Reset()
			continue
		}
		e.dispatch(buffer, cmd)
		return
	}

	// Every byte in the chunk was consumed without completing a command;
	// keep receiving.
	e.receiver.ReceiveUntilIdle(buffer, receiveTimeoutMS)
}

func (e *Engine) dispatch(buf []byte, cmd *protocol.Command) {
	switch cmd.Opcode {
	case protocol.CmdPing:
		e.sendSimple(buf, protocol.ResPong)

	case protocol.CmdInfo:
		e.st = state{kind: stateInfo}
		e.buf = buf
		e.issueRead(e.flagsPageIndex())

	case protocol.CmdExit:
		e.st = state{kind: stateIdle}
		e.buf = buf
		if e.resetHook != nil {
			e.resetHook()
		}

	case protocol.CmdErasePage:
		e.st = state{kind: stateErasePage}
		e.buf = buf
		e.flashDev.ErasePage(int(cmd.Address) / e.pageSize)

	case protocol.CmdWritePage:
		e.handleWritePage(buf, cmd)

	case protocol.CmdReadRange:
		e.st = state{kind: stateReadRange, rrAddress: cmd.Address, rrLength: uint16(cmd.Length), rrRemaining: uint16(cmd.Length)}
		e.buf = buf
		e.issueRead(int(cmd.Address) / e.pageSize)

	case protocol.CmdCrcIntFlash:
		e.st = state{kind: stateCrc, crcAddress: cmd.Address, crcRemaining: cmd.Length, crc: 0xFFFFFFFF}
		e.buf = buf
		e.issueRead(int(cmd.Address) / e.pageSize)

	case protocol.CmdGetAttribute:
		e.st = state{kind: stateGetAttribute, attrIndex: cmd.AttrIndex}
		e.buf = buf
		pageIndex, _ := e.attrPageIndexOffset(cmd.AttrIndex)
		e.issueRead(pageIndex)

	case protocol.CmdSetAttribute:
		e.st = state{kind: stateSetAttribute, attrIndex: cmd.AttrIndex}
		slot := attrs.EncodeSlot(cmd.AttrKey, cmd.AttrValue)
		// Stash the prepared slot bytes at the front of buf until the
		// read completes and we can overlay them onto the page.
		copy(buf[:attrs.SlotSize], slot[:])
		e.buf = buf
		pageIndex, _ := e.attrPageIndexOffset(cmd.AttrIndex)
		e.issueRead(pageIndex)

	case protocol.CmdSetStartAddress:
		e.st = state{kind: stateSetStartAddress}
		var addrBytes [4]byte
		addrBytes[0] = byte(cmd.Address)
		addrBytes[1] = byte(cmd.Address >> 8)
		addrBytes[2] = byte(cmd.Address >> 16)
		addrBytes[3] = byte(cmd.Address >> 24)
		copy(buf[:4], addrBytes[:])
		e.buf = buf
		e.issueRead(e.flagsPageIndex())

	default:
		e.sendSimple(buf, protocol.ResUnknown)
	}
}

func (e *Engine) handleWritePage(buf []byte, cmd *protocol.Command) {
	if len(cmd.Data) != e.pageSize {
		e.sendSimple(buf, protocol.ResBadArgs)
		return
	}
	if e.isSelfWrite(cmd.Address) {
		e.sendSimple(buf, protocol.ResBadAddr)
		return
	}
	e.st = state{kind: stateWriteFlashPage}
	e.buf = buf
	page := e.page
	e.page = nil
	copy(page, cmd.Data)
	e.flashDev.WritePage(int(cmd.Address)/e.pageSize, page)
}

func (e *Engine) issueRead(pageIndex int) {
	page := e.page
	e.page = nil
	e.flashDev.ReadPage(pageIndex, page)
}

// TransmittedBuffer is the Transmitter's callback.
func (e *Engine) TransmittedBuffer(buffer []byte, txLen int, err error) {
	// Per §7, a transmit failure is logged-and-discarded: no retry.
	if err != nil {
		e.logger.Error("serial:transmit-failed", slog.String("err", err.Error()))
	}
	if e.st.kind == stateReadRange && e.st.rrRemaining > 0 {
		e.buf = buffer
		e.issueRead(int(e.st.rrAddress) / e.pageSize)
		return
	}
	e.armReceive()
}

var crcTable = crc32.IEEETable

func crcUpdateByte(crc uint32, b byte) uint32 {
	return crcTable[byte(crc)^b] ^ (crc >> 8)
}

package protocol

import (
	"encoding/binary"
	"errors"
)

// ErrBadArguments is returned when a command's argument bytes are malformed:
// wrong length, an attribute index >= 16, an attribute value longer than
// AttributeValueMaxSize, or an unrecognized BaudMode.
var ErrBadArguments = errors.New("protocol: bad arguments")

// ErrUnknownCommand is returned when the byte following the escape byte does
// not name a recognized opcode.
var ErrUnknownCommand = errors.New("protocol: unknown command")

type decoderState uint8

const (
	stateLoading decoderState = iota
	stateEscape
)

// accumulatorCap bounds the decoder's argument buffer. 512-byte WritePage
// payloads plus their 4-byte address dominate the sizing.
const accumulatorCap = 4 + FlashPageSize + 16

// Decoder is a single-pass byte machine that accumulates command argument
// bytes and, on each ESCAPE_BYTE,opcode pair, yields a fully decoded
// Command. It holds no reference to any transport or engine state.
type Decoder struct {
	state decoderState
	buf   [accumulatorCap]byte
	count int
}

// NewDecoder returns a Decoder ready to receive bytes starting in the
// Loading state.
func NewDecoder() *Decoder {
	return &Decoder{state: stateLoading}
}

// Reset clears the accumulator and returns the decoder to Loading, as if
// freshly constructed. Used both externally (engine-level Reset) and
// internally after every terminal outcome.
func (d *Decoder) Reset() {
	d.count = 0
	d.state = stateLoading
}

func (d *Decoder) load(ch byte) {
	if d.count < len(d.buf) {
		d.buf[d.count] = ch
		d.count++
	}
}

// Feed processes one incoming byte. It returns (cmd, nil) when a command has
// just completed, (nil, err) on a decode error (the accumulator is cleared
// either way), or (nil, nil) when more bytes are needed.
//
// CmdReset is handled specially by the caller: feeding CmdReset yields a
// Command with Opcode == CmdReset; per spec, receiving it clears the
// decoder and parsing continues with whatever bytes remain in the same
// chunk.
func (d *Decoder) Feed(ch byte) (*Command, error) {
	switch d.state {
	case stateLoading:
		if ch == EscapeByte {
			d.state = stateEscape
		} else {
			d.load(ch)
		}
		return nil, nil
	default: // stateEscape
		d.state = stateLoading
		if ch == EscapeByte {
			d.load(ch)
			return nil, nil
		}
		cmd, err := d.finish(ch)
		d.count = 0
		return cmd, err
	}
}

func (d *Decoder) finish(opcode byte) (*Command, error) {
	switch opcode {
	case CmdPing:
		return &Command{Opcode: CmdPing}, nil
	case CmdInfo:
		return &Command{Opcode: CmdInfo}, nil
	case CmdReset:
		return &Command{Opcode: CmdReset}, nil
	case CmdExit:
		return &Command{Opcode: CmdExit}, nil
	case CmdErasePage:
		if d.count != 4 {
			return nil, ErrBadArguments
		}
		return &Command{Opcode: CmdErasePage, Address: binary.LittleEndian.Uint32(d.buf[0:4])}, nil
	case CmdWritePage:
		// Per spec §4.2, the decoder does not enforce a strict argument
		// length here; the engine rejects wrong-size data with BADARGS.
		if d.count < 4 {
			return nil, ErrBadArguments
		}
		address := binary.LittleEndian.Uint32(d.buf[0:4])
		data := make([]byte, d.count-4)
		copy(data, d.buf[4:d.count])
		return &Command{Opcode: CmdWritePage, Address: address, Data: data}, nil
	case CmdReadRange:
		if d.count != 6 {
			return nil, ErrBadArguments
		}
		address := binary.LittleEndian.Uint32(d.buf[0:4])
		length := binary.LittleEndian.Uint16(d.buf[4:6])
		return &Command{Opcode: CmdReadRange, Address: address, Length: uint32(length)}, nil
	case CmdSetAttribute:
		if d.count < 10 {
			return nil, ErrBadArguments
		}
		index := d.buf[0]
		length := int(d.buf[9])
		if index >= AttributeCount || length > AttributeValueMaxSize {
			return nil, ErrBadArguments
		}
		if d.count != 10+length {
			return nil, ErrBadArguments
		}
		cmd := &Command{Opcode: CmdSetAttribute, AttrIndex: index}
		copy(cmd.AttrKey[:], d.buf[1:9])
		cmd.AttrValue = make([]byte, length)
		copy(cmd.AttrValue, d.buf[10:10+length])
		return cmd, nil
	case CmdGetAttribute:
		if d.count != 1 {
			return nil, ErrBadArguments
		}
		index := d.buf[0]
		if index >= AttributeCount {
			return nil, ErrBadArguments
		}
		return &Command{Opcode: CmdGetAttribute, AttrIndex: index}, nil
	case CmdCrcIntFlash:
		if d.count != 8 {
			return nil, ErrBadArguments
		}
		address := binary.LittleEndian.Uint32(d.buf[0:4])
		length := binary.LittleEndian.Uint32(d.buf[4:8])
		return &Command{Opcode: CmdCrcIntFlash, Address: address, Length: length}, nil
	case CmdWriteUser:
		if d.count != 8 {
			return nil, ErrBadArguments
		}
		page1 := binary.LittleEndian.Uint32(d.buf[0:4])
		page2 := binary.LittleEndian.Uint32(d.buf[4:8])
		return &Command{Opcode: CmdWriteUser, Address: page1, Length: page2}, nil
	case CmdChangeBaudRate:
		if d.count != 5 {
			return nil, ErrBadArguments
		}
		mode := BaudMode(d.buf[0])
		if mode != BaudModeSet && mode != BaudModeVerify {
			return nil, ErrBadArguments
		}
		baud := binary.LittleEndian.Uint32(d.buf[1:5])
		return &Command{Opcode: CmdChangeBaudRate, BaudMode: mode, BaudRate: baud}, nil
	case CmdSetStartAddress:
		if d.count != 4 {
			return nil, ErrBadArguments
		}
		return &Command{Opcode: CmdSetStartAddress, Address: binary.LittleEndian.Uint32(d.buf[0:4])}, nil
	default:
		return nil, ErrUnknownCommand
	}
}

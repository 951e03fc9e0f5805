package engine

import (
	"log/slog"

	"github.com/tock-go/bootloader/attrs"
	"github.com/tock-go/bootloader/protocol"
)

// ReadComplete is flash.Client's read callback, grounded on
// bootloader.rs's hil::flash::Client::read_complete match over self.state.
func (e *Engine) ReadComplete(page []byte, err error) {
	if err != nil {
		e.failFlashOp(page)
		return
	}

	switch e.st.kind {
	case stateInfo:
		e.finishInfo(page)

	case stateGetAttribute:
		e.finishGetAttribute(page)

	case stateSetAttribute:
		e.beginSetAttributeWrite(page)

	case stateSetStartAddress:
		e.beginSetStartAddressWrite(page)

	case stateReadRange:
		e.streamReadRange(page)

	case stateCrc:
		e.streamCrc(page)

	default:
		e.page = page
	}
}

// failFlashOp implements the DESIGN.md decision for the §9 Open Question:
// reply INTERNAL and return to Idle, rather than silently treating the
// error as success.
func (e *Engine) failFlashOp(page []byte) {
	e.logger.Error("flash:op-failed", slog.Int("state", int(e.st.kind)))
	e.page = page
	buf := e.buf
	e.buf = nil
	if buf == nil {
		e.armReceive()
		return
	}
	e.sendSimple(buf, protocol.ResInternal)
}

func (e *Engine) finishInfo(page []byte) {
	e.page = page
	buf := e.buf
	e.buf = nil

	flags := attrs.DecodeFlags(page)
	json := buildInfoJSON(flags)
	out := protocol.EncodeInfo(buf[:0], json)
	e.st = state{kind: stateIdle}
	e.transport.TransmitBuffer(out)
}

func (e *Engine) finishGetAttribute(page []byte) {
	index := e.st.attrIndex
	e.page = page
	buf := e.buf
	e.buf = nil

	_, pageOffset := e.attrPageIndexOffset(index)
	slot := page[pageOffset : pageOffset+attrs.SlotSize]
	out := protocol.EncodeGetAttr(buf[:0], slot)
	e.st = state{kind: stateIdle}
	e.transport.TransmitBuffer(out)
}

func (e *Engine) beginSetAttributeWrite(page []byte) {
	index := e.st.attrIndex
	pageIndex, pageOffset := e.attrPageIndexOffset(index)

	// buf[:64] was stashed at dispatch time with the encoded slot bytes.
	var slot [attrs.SlotSize]byte
	copy(slot[:], e.buf[:attrs.SlotSize])
	attrs.OverlaySlot(page, pageOffset, slot)

	e.flashDev.WritePage(pageIndex, page)
}

func (e *Engine) beginSetStartAddressWrite(page []byte) {
	address := uint32(e.buf[0]) | uint32(e.buf[1])<<8 | uint32(e.buf[2])<<16 | uint32(e.buf[3])<<24
	attrs.WriteStartAddress(page, address)
	e.flashDev.WritePage(e.flagsPageIndex(), page)
}

func (e *Engine) streamReadRange(page []byte) {
	buf := e.buf
	e.buf = nil

	out := buf[:0]
	firstChunk := e.st.rrLength == e.st.rrRemaining
	if firstChunk {
		out = protocol.EncodeReadRangeHeader(out)
	}

	pageOffset := int(e.st.rrAddress) % e.pageSize
	available := e.pageSize - pageOffset
	remaining := int(e.st.rrRemaining)
	if available > remaining {
		available = remaining
	}

	copied := 0
	for i := 0; i < available; i++ {
		// Leave at least one spare byte of headroom so a doubled escape
		// byte never overflows the scratch buffer mid-copy.
		if len(out) >= cap(buf)-1 {
			break
		}
		b := page[pageOffset+i]
		if b == protocol.EscapeByte {
			out = append(out, protocol.EscapeByte)
		}
		out = append(out, b)
		copied++
	}

	e.st.rrAddress += uint32(copied)
	e.st.rrRemaining -= uint16(copied)
	e.page = page
	e.transport.TransmitBuffer(out)
}

func (e *Engine) streamCrc(page []byte) {
	pageOffset := int(e.st.crcAddress) % e.pageSize
	available := e.pageSize - pageOffset
	remaining := int(e.st.crcRemaining)
	if available > remaining {
		available = remaining
	}

	crc := e.st.crc
	for i := 0; i < available; i++ {
		crc = crcUpdateByte(crc, page[pageOffset+i])
	}

	e.st.crcAddress += uint32(available)
	e.st.crcRemaining -= uint32(available)
	e.st.crc = crc

	if e.st.crcRemaining == 0 {
		crc ^= 0xFFFFFFFF
		e.page = page
		buf := e.buf
		e.buf = nil
		out := protocol.EncodeCrc(buf[:0], crc)
		e.st = state{kind: stateIdle}
		e.transport.TransmitBuffer(out)
		return
	}

	e.page = nil
	e.flashDev.ReadPage(int(e.st.crcAddress)/e.pageSize, page)
}

// WriteComplete is flash.Client's write callback.
func (e *Engine) WriteComplete(page []byte, err error) {
	e.page = page
	if err != nil {
		e.failFlashOp(page)
		return
	}

	switch e.st.kind {
	case stateWriteFlashPage, stateSetAttribute, stateSetStartAddress:
		buf := e.buf
		e.buf = nil
		e.sendSimple(buf, protocol.ResOK)
	default:
		e.armReceive()
	}
}

// EraseComplete is flash.Client's erase callback.
func (e *Engine) EraseComplete(err error) {
	if err != nil {
		e.logger.Error("flash:erase-failed")
		buf := e.buf
		e.buf = nil
		if buf == nil {
			e.armReceive()
			return
		}
		e.sendSimple(buf, protocol.ResInternal)
		return
	}

	switch e.st.kind {
	case stateErasePage:
		buf := e.buf
		e.buf = nil
		e.sendSimple(buf, protocol.ResOK)
	default:
		e.armReceive()
	}
}

// Package flashadapter presents a fixed 512-byte logical flash page over a
// device whose native hardware page is a larger multiple of 512 bytes, via
// read-modify-write. Grounded on
// original_source/bootloader/src/flash_large_to_small.rs.
package flashadapter

import "github.com/tock-go/bootloader/flash"

// SmallPageSize is the fixed logical page size the engine always sees,
// regardless of the underlying hardware page size (§4.3).
const SmallPageSize = 512

type opKind uint8

const (
	opNone opKind = iota
	opRead
	opWrite
	opErase
)

// FlashLargeToSmall implements flash.Device with PageSize() == 512,
// translating each logical page index to (large page index, byte offset)
// and performing read-modify-write against the wrapped large-page device.
//
// Only one operation may be outstanding at a time; internal state mirrors
// the three completion callbacks, exactly as the original's State enum
// does.
type FlashLargeToSmall struct {
	large      flash.Device
	largeSize  int
	scratch    []byte // one large-page-sized buffer, single owner
	client     flash.Client

	op          opKind
	smallIndex  int
	clientPage  []byte // the caller's 512-byte buffer for the in-flight op
}

// New wraps large, whose native page size must be a multiple of
// SmallPageSize.
func New(large flash.Device) *FlashLargeToSmall {
	size := large.PageSize()
	a := &FlashLargeToSmall{
		large:     large,
		largeSize: size,
		scratch:   make([]byte, size),
	}
	large.SetClient(a)
	return a
}

func (a *FlashLargeToSmall) SetClient(c flash.Client) { a.client = c }
func (a *FlashLargeToSmall) PageSize() int            { return SmallPageSize }

func (a *FlashLargeToSmall) largeIndexOffset(smallIndex int) (largeIndex, byteOffset int) {
	multiplier := a.largeSize / SmallPageSize
	return smallIndex / multiplier, (smallIndex % multiplier) * SmallPageSize
}

// ReadPage reads the 512-byte logical page smallIndex into buf.
func (a *FlashLargeToSmall) ReadPage(smallIndex int, buf []byte) error {
	a.op = opRead
	a.smallIndex = smallIndex
	a.clientPage = buf
	largeIndex, _ := a.largeIndexOffset(smallIndex)
	return a.large.ReadPage(largeIndex, a.scratch)
}

// WritePage writes buf (512 bytes) into the logical page smallIndex via
// read-modify-write of the containing hardware page.
func (a *FlashLargeToSmall) WritePage(smallIndex int, buf []byte) error {
	a.op = opWrite
	a.smallIndex = smallIndex
	a.clientPage = buf
	largeIndex, _ := a.largeIndexOffset(smallIndex)
	return a.large.ReadPage(largeIndex, a.scratch)
}

// ErasePage erases the logical page smallIndex by overwriting its 512-byte
// window with 0xFF — the original erase-via-ones, with the byte value
// taken from spec.md (0xFF) rather than the original source's literal `1`
// fill value. This only clears the logical window, not the whole hardware
// page, so it is not a secure wipe; see DESIGN.md's Open Questions
// decisions.
func (a *FlashLargeToSmall) ErasePage(smallIndex int) error {
	a.op = opErase
	a.smallIndex = smallIndex
	largeIndex, _ := a.largeIndexOffset(smallIndex)
	return a.large.ReadPage(largeIndex, a.scratch)
}

// ReadComplete is flash.Client's callback from the wrapped large device.
func (a *FlashLargeToSmall) ReadComplete(largePage []byte, err error) {
	_, offset := a.largeIndexOffset(a.smallIndex)
	switch a.op {
	case opRead:
		if err != nil {
			a.op = opNone
			a.client.ReadComplete(a.clientPage, err)
			return
		}
		copy(a.clientPage, largePage[offset:offset+SmallPageSize])
		a.op = opNone
		a.client.ReadComplete(a.clientPage, nil)
	case opWrite:
		if err != nil {
			a.op = opNone
			a.client.WriteComplete(a.clientPage, err)
			return
		}
		copy(largePage[offset:offset+SmallPageSize], a.clientPage)
		largeIndex, _ := a.largeIndexOffset(a.smallIndex)
		a.large.WritePage(largeIndex, largePage)
	case opErase:
		if err != nil {
			a.op = opNone
			a.client.EraseComplete(err)
			return
		}
		for i := offset; i < offset+SmallPageSize; i++ {
			largePage[i] = 0xFF
		}
		largeIndex, _ := a.largeIndexOffset(a.smallIndex)
		a.large.WritePage(largeIndex, largePage)
	}
}

// WriteComplete is flash.Client's callback from the wrapped large device.
func (a *FlashLargeToSmall) WriteComplete(largePage []byte, err error) {
	switch a.op {
	case opWrite:
		a.op = opNone
		a.client.WriteComplete(a.clientPage, err)
	case opErase:
		a.op = opNone
		a.client.EraseComplete(err)
	}
}

// EraseComplete is unused: the adapter always implements erase as
// write-of-ones against the wrapped device, never calling its ErasePage.
func (a *FlashLargeToSmall) EraseComplete(error) {}

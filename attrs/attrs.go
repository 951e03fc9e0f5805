// Package attrs encodes and decodes the two persisted flash layouts defined
// by the bootloader's data model: the 512-byte Flags region and the 64-byte
// Attribute slots. Keeping the byte offsets in one place means the engine
// and its tests share a single definition instead of duplicating the
// arithmetic inline, as the original bootloader.rs does at each call site.
package attrs

import "encoding/binary"

// Flags region layout (§3).
const (
	FlagsSize          = 512
	FlagsTagOffset     = 0
	FlagsTagSize       = 14
	FlagsVersionOffset = 14
	FlagsVersionSize   = 8
	FlagsStartAddrOffset = 32
	FlagsTag           = "TOCKBOOTLOADER"
)

// Attribute slot layout (§3).
const (
	SlotSize      = 64
	SlotKeySize   = 8
	SlotLenOffset = 8
	SlotValueOffset = 9
	SlotValueMaxLen = 55
	SlotCount     = 16
)

// Flags mirrors the on-flash Flags region.
type Flags struct {
	Tag          [FlagsTagSize]byte
	Version      [FlagsVersionSize]byte
	StartAddress uint32
}

// DecodeFlags parses a 512-byte Flags page slice (or larger; only the
// leading bytes are read).
func DecodeFlags(page []byte) Flags {
	var f Flags
	copy(f.Tag[:], page[FlagsTagOffset:FlagsTagOffset+FlagsTagSize])
	copy(f.Version[:], page[FlagsVersionOffset:FlagsVersionOffset+FlagsVersionSize])
	f.StartAddress = binary.LittleEndian.Uint32(page[FlagsStartAddrOffset : FlagsStartAddrOffset+4])
	return f
}

// EncodeFlags writes f into a fresh FlagsSize-byte page.
func EncodeFlags(f Flags) [FlagsSize]byte {
	var page [FlagsSize]byte
	copy(page[FlagsTagOffset:], f.Tag[:])
	copy(page[FlagsVersionOffset:], f.Version[:])
	binary.LittleEndian.PutUint32(page[FlagsStartAddrOffset:], f.StartAddress)
	return page
}

// WriteStartAddress overlays just the 4-byte start-address field of a Flags
// page in place, leaving every other byte untouched — used for the
// SetStartAddress RMW (§4.1).
func WriteStartAddress(page []byte, address uint32) {
	binary.LittleEndian.PutUint32(page[FlagsStartAddrOffset:FlagsStartAddrOffset+4], address)
}

// ReadStartAddress reads the 4-byte start-address field from a Flags page.
func ReadStartAddress(page []byte) uint32 {
	return binary.LittleEndian.Uint32(page[FlagsStartAddrOffset : FlagsStartAddrOffset+4])
}

// SlotOffset returns the byte offset of attribute slot i within the
// Attributes region.
func SlotOffset(index uint8) int {
	return int(index) * SlotSize
}

// EncodeSlot builds the 64-byte on-flash representation of one attribute:
// key (NUL-padded to 8), length byte, value bytes, remainder NUL.
func EncodeSlot(key [SlotKeySize]byte, value []byte) [SlotSize]byte {
	var slot [SlotSize]byte
	copy(slot[:SlotKeySize], key[:])
	slot[SlotLenOffset] = byte(len(value))
	copy(slot[SlotValueOffset:], value)
	return slot
}

// OverlaySlot writes an encoded slot into page at the slot's offset within
// that page, leaving the rest of page untouched — the RMW overlay step used
// by SetAttr (§4.1's "attribute slot arithmetic").
func OverlaySlot(page []byte, pageOffset int, slot [SlotSize]byte) {
	copy(page[pageOffset:pageOffset+SlotSize], slot[:])
}

// DecodeSlot reads a 64-byte slot back into its key/value parts.
func DecodeSlot(slot []byte) (key [SlotKeySize]byte, value []byte) {
	copy(key[:], slot[:SlotKeySize])
	n := int(slot[SlotLenOffset])
	if n > SlotValueMaxLen {
		n = SlotValueMaxLen
	}
	value = make([]byte, n)
	copy(value, slot[SlotValueOffset:SlotValueOffset+n])
	return key, value
}

//go:build tinygo

// ROM-backed flash Device implementation for RP2350, adapted from the ROM
// function table lookups and cgo-wrapped flash_range_erase/
// flash_range_program calls established in ota/ota.go — bypassing TinyGo's
// machine.Flash, which assumes a different base offset than this
// bootloader's raw-offset addressing needs.
package flash

/*
#include <stdint.h>
#include <stddef.h>

#define ROM_TABLE_CODE(c1, c2) ((c1) | ((c2) << 8))

#define BOOTROM_FUNC_TABLE_OFFSET   0x14
#define BOOTROM_WELL_KNOWN_PTR_SIZE 2
#define BOOTROM_TABLE_LOOKUP_OFFSET (BOOTROM_FUNC_TABLE_OFFSET + BOOTROM_WELL_KNOWN_PTR_SIZE)
#define RT_FLAG_FUNC_ARM_SEC 0x0004

#define ROM_FUNC_CONNECT_INTERNAL_FLASH ROM_TABLE_CODE('I', 'F')
#define ROM_FUNC_FLASH_EXIT_XIP         ROM_TABLE_CODE('E', 'X')
#define ROM_FUNC_FLASH_RANGE_ERASE      ROM_TABLE_CODE('R', 'E')
#define ROM_FUNC_FLASH_RANGE_PROGRAM    ROM_TABLE_CODE('R', 'P')
#define ROM_FUNC_FLASH_FLUSH_CACHE      ROM_TABLE_CODE('F', 'C')

#define XIP_BASE 0x10000000

typedef void *(*rom_table_lookup_fn)(uint32_t code, uint32_t mask);
typedef void (*flash_connect_internal_fn)(void);
typedef void (*flash_exit_xip_fn)(void);
typedef void (*flash_range_erase_fn)(uint32_t addr, size_t count, uint32_t block_size, uint8_t block_cmd);
typedef void (*flash_range_program_fn)(uint32_t addr, const uint8_t *data, size_t count);
typedef void (*flash_flush_cache_fn)(void);

__attribute__((always_inline))
static void *rom_func_lookup_inline(uint32_t code) {
    rom_table_lookup_fn rom_table_lookup =
        (rom_table_lookup_fn)(uintptr_t)*(uint16_t*)(BOOTROM_TABLE_LOOKUP_OFFSET);
    return rom_table_lookup(code, RT_FLAG_FUNC_ARM_SEC);
}

// bl_flash_read copies len bytes starting at raw flash offset into dst via
// the XIP memory-mapped window; no ROM call is needed for reads.
static void bl_flash_read(uint32_t offset, uint8_t *dst, uint32_t len) {
    const uint8_t *src = (const uint8_t *)(XIP_BASE + offset);
    for (uint32_t i = 0; i < len; i++) {
        dst[i] = src[i];
    }
}

// bl_flash_write programs len bytes at raw flash offset, disabling
// interrupts around the ROM calls exactly as ota_flash_write does.
static int bl_flash_write(uint32_t offset, const uint8_t *data, uint32_t len) {
    flash_connect_internal_fn connect = (flash_connect_internal_fn)rom_func_lookup_inline(ROM_FUNC_CONNECT_INTERNAL_FLASH);
    flash_exit_xip_fn exit_xip = (flash_exit_xip_fn)rom_func_lookup_inline(ROM_FUNC_FLASH_EXIT_XIP);
    flash_range_program_fn program = (flash_range_program_fn)rom_func_lookup_inline(ROM_FUNC_FLASH_RANGE_PROGRAM);
    flash_flush_cache_fn flush = (flash_flush_cache_fn)rom_func_lookup_inline(ROM_FUNC_FLASH_FLUSH_CACHE);
    if (!connect || !exit_xip || !program || !flush) return -1;

    uint32_t status;
    __asm__ volatile ("mrs %0, primask" : "=r" (status));
    __asm__ volatile ("cpsid i");

    connect();
    exit_xip();
    program(offset, data, len);
    flush();

    __asm__ volatile ("msr primask, %0" : : "r" (status));
    return 0;
}

// bl_flash_erase erases count bytes (a multiple of 4096) at raw flash
// offset.
static int bl_flash_erase(uint32_t offset, uint32_t count) {
    flash_connect_internal_fn connect = (flash_connect_internal_fn)rom_func_lookup_inline(ROM_FUNC_CONNECT_INTERNAL_FLASH);
    flash_exit_xip_fn exit_xip = (flash_exit_xip_fn)rom_func_lookup_inline(ROM_FUNC_FLASH_EXIT_XIP);
    flash_range_erase_fn erase = (flash_range_erase_fn)rom_func_lookup_inline(ROM_FUNC_FLASH_RANGE_ERASE);
    flash_flush_cache_fn flush = (flash_flush_cache_fn)rom_func_lookup_inline(ROM_FUNC_FLASH_FLUSH_CACHE);
    if (!connect || !exit_xip || !erase || !flush) return -1;

    uint32_t status;
    __asm__ volatile ("mrs %0, primask" : "=r" (status));
    __asm__ volatile ("cpsid i");

    connect();
    exit_xip();
    erase(offset, count, 4096, 0x20);
    flush();

    __asm__ volatile ("msr primask, %0" : : "r" (status));
    return 0;
}
*/
import "C"

import "unsafe"

// ROMDevice is a Device backed directly by RP2350 ROM flash calls, reading
// through the XIP memory window and writing/erasing via
// flash_range_program/flash_range_erase, matching ota/ota.go's approach of
// bypassing TinyGo's machine.Flash (which assumes a different base offset).
type ROMDevice struct {
	baseOffset uint32
	pageSize   int
	client     Client
}

// NewROMDevice returns a Device whose page 0 starts at the given raw flash
// offset (not an XIP address) with the given native hardware page size.
func NewROMDevice(baseOffset uint32, pageSize int) *ROMDevice {
	return &ROMDevice{baseOffset: baseOffset, pageSize: pageSize}
}

func (d *ROMDevice) SetClient(c Client) { d.client = c }
func (d *ROMDevice) PageSize() int      { return d.pageSize }

func (d *ROMDevice) offsetOf(pageNumber int) uint32 {
	return d.baseOffset + uint32(pageNumber*d.pageSize)
}

func (d *ROMDevice) ReadPage(pageNumber int, buf []byte) error {
	C.bl_flash_read(C.uint32_t(d.offsetOf(pageNumber)), (*C.uint8_t)(unsafe.Pointer(&buf[0])), C.uint32_t(len(buf)))
	d.client.ReadComplete(buf, nil)
	return nil
}

func (d *ROMDevice) WritePage(pageNumber int, buf []byte) error {
	rc := C.bl_flash_write(C.uint32_t(d.offsetOf(pageNumber)), (*C.uint8_t)(unsafe.Pointer(&buf[0])), C.uint32_t(len(buf)))
	var err error
	if rc != 0 {
		err = ErrWriteFailed
	}
	d.client.WriteComplete(buf, err)
	return nil
}

func (d *ROMDevice) ErasePage(pageNumber int) error {
	rc := C.bl_flash_erase(C.uint32_t(d.offsetOf(pageNumber)), C.uint32_t(d.pageSize))
	var err error
	if rc != 0 {
		err = ErrEraseFailed
	}
	d.client.EraseComplete(err)
	return nil
}

package engine

import "github.com/tock-go/bootloader/attrs"

const bootloaderName = "Tock Bootloader"

// buildInfoJSON assembles the INFO payload per §4.1: version (NUL-trimmed),
// start address as 8 uppercase hex digits most-significant-nibble-first,
// and the fixed name field.
func buildInfoJSON(flags attrs.Flags) []byte {
	version := flags.Version[:]
	for i, b := range version {
		if b == 0 {
			version = version[:i]
			break
		}
	}

	out := make([]byte, 0, 96)
	out = append(out, `{"version":"`...)
	out = append(out, version...)
	out = append(out, `", "start_address":"0x`...)
	out = appendHex32(out, flags.StartAddress)
	out = append(out, `", "name":"`...)
	out = append(out, bootloaderName...)
	out = append(out, `"}`...)
	return out
}

func appendHex32(dst []byte, v uint32) []byte {
	const digits = "0123456789ABCDEF"
	for shift := 28; shift >= 0; shift -= 4 {
		dst = append(dst, digits[(v>>uint(shift))&0xF])
	}
	return dst
}

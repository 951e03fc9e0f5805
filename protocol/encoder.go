package protocol

import "encoding/binary"

// AppendFrameHeader appends the ESCAPE_BYTE,code header that begins every
// response frame. Responses are framed header-first, unlike commands, which
// are payload-then-terminator (§6).
func AppendFrameHeader(dst []byte, code byte) []byte {
	return append(dst, EscapeByte, code)
}

// AppendEscaped appends src to dst, doubling every ESCAPE_BYTE so the result
// remains transparent to the decoder (§3 escape transparency, §4.1 ReadRange
// and GetAttr streaming).
func AppendEscaped(dst []byte, src []byte) []byte {
	for _, b := range src {
		if b == EscapeByte {
			dst = append(dst, EscapeByte, EscapeByte)
		} else {
			dst = append(dst, b)
		}
	}
	return dst
}

// EncodeSimple appends a bodyless response frame (PONG, OK, BADARGS,
// BADADDR, UNKNOWN, INTERNAL).
func EncodeSimple(dst []byte, code byte) []byte {
	return AppendFrameHeader(dst, code)
}

// EncodeCrc appends a CRCIF response: header plus 4 little-endian bytes.
func EncodeCrc(dst []byte, crc uint32) []byte {
	dst = AppendFrameHeader(dst, ResCrcIntFlash)
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], crc)
	return append(dst, b[:]...)
}

// EncodeGetAttr appends a GET_ATTR response: header plus the 64 raw slot
// bytes, escaped.
func EncodeGetAttr(dst []byte, slot []byte) []byte {
	dst = AppendFrameHeader(dst, ResGetAttr)
	return AppendEscaped(dst, slot)
}

// EncodeReadRangeHeader appends the READ_RANGE header that begins the first
// chunk of a (possibly multi-chunk) streamed reply; subsequent chunks carry
// escaped payload only, with no repeated header.
func EncodeReadRangeHeader(dst []byte) []byte {
	return AppendFrameHeader(dst, ResReadRange)
}

// EncodeInfo appends an INFO response: header, length byte, JSON payload,
// zero-padded to the fixed 195-byte frame length.
func EncodeInfo(dst []byte, json []byte) []byte {
	dst = AppendFrameHeader(dst, ResInfo)
	dst = append(dst, byte(len(json)))
	dst = append(dst, json...)
	for len(dst) < InfoFrameLength {
		dst = append(dst, 0)
	}
	return dst[:InfoFrameLength]
}

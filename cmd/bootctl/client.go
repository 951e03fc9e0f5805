package main

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/tock-go/bootloader/protocol"
)

// client speaks the wire protocol over an io.ReadWriter (the serial
// port): commands are payload-then-terminator on the way out, responses
// are header-first on the way in, matching §6/§3 of the protocol.
type client struct {
	conn io.ReadWriter
}

func (c *client) sendCommand(payload []byte, opcode byte) error {
	frame := append(protocol.AppendEscaped(nil, payload), protocol.EscapeByte, opcode)
	_, err := c.conn.Write(frame)
	return err
}

// readHeader reads the ESCAPE_BYTE,code pair that begins every response.
func (c *client) readHeader() (code byte, err error) {
	var header [2]byte
	if _, err := io.ReadFull(c.conn, header[:]); err != nil {
		return 0, err
	}
	if header[0] != protocol.EscapeByte {
		return 0, fmt.Errorf("response missing escape header, got %x", header)
	}
	return header[1], nil
}

// readResponse reads a header followed by a body still in escaped wire
// form (GetAttr, ReadRange) and returns the unescaped body.
func (c *client) readResponse(bodyLen int) (code byte, body []byte, err error) {
	code, err = c.readHeader()
	if err != nil || bodyLen == 0 {
		return code, nil, err
	}
	body = make([]byte, 0, bodyLen)
	var b [1]byte
	for len(body) < bodyLen {
		if _, err := io.ReadFull(c.conn, b[:]); err != nil {
			return 0, nil, err
		}
		if b[0] == protocol.EscapeByte {
			if _, err := io.ReadFull(c.conn, b[:]); err != nil {
				return 0, nil, err
			}
		}
		body = append(body, b[0])
	}
	return code, body, nil
}

// readResponseRaw reads a header followed by a body that is never
// escaped on the wire (Info, CRC), per encoder.go's EncodeInfo/EncodeCrc.
func (c *client) readResponseRaw(bodyLen int) (code byte, body []byte, err error) {
	code, err = c.readHeader()
	if err != nil || bodyLen == 0 {
		return code, nil, err
	}
	body = make([]byte, bodyLen)
	if _, err := io.ReadFull(c.conn, body); err != nil {
		return 0, nil, err
	}
	return code, body, nil
}

func checkSimple(code byte, err error) error {
	if err != nil {
		return err
	}
	switch code {
	case protocol.ResOK, protocol.ResPong:
		return nil
	case protocol.ResBadAddr:
		return fmt.Errorf("device reported BADADDR")
	case protocol.ResBadArgs:
		return fmt.Errorf("device reported BADARGS")
	case protocol.ResInternal:
		return fmt.Errorf("device reported INTERNAL")
	case protocol.ResUnknown:
		return fmt.Errorf("device reported UNKNOWN")
	default:
		return fmt.Errorf("unexpected response code 0x%02x", code)
	}
}

func (c *client) ping() error {
	if err := c.sendCommand(nil, protocol.CmdPing); err != nil {
		return err
	}
	code, _, err := c.readResponse(0)
	if err := checkSimple(code, err); err != nil {
		return err
	}
	fmt.Println("pong")
	return nil
}

func (c *client) info() error {
	if err := c.sendCommand(nil, protocol.CmdInfo); err != nil {
		return err
	}
	code, body, err := c.readResponseRaw(protocol.InfoFrameLength - 2)
	if err != nil {
		return err
	}
	if code != protocol.ResInfo {
		return checkSimple(code, nil)
	}
	n := int(body[0])
	payload := body[1:]
	if n > len(payload) {
		n = len(payload)
	}
	fmt.Println(string(payload[:n]))
	return nil
}

func (c *client) erasePage(address uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], address)
	if err := c.sendCommand(buf[:], protocol.CmdErasePage); err != nil {
		return err
	}
	code, _, err := c.readResponse(0)
	if err := checkSimple(code, err); err != nil {
		return err
	}
	fmt.Println("erased")
	return nil
}

func (c *client) writePage(address uint32, data []byte) error {
	if len(data) != protocol.FlashPageSize {
		return fmt.Errorf("data must be exactly %d bytes, got %d", protocol.FlashPageSize, len(data))
	}
	var buf []byte
	var addr [4]byte
	binary.LittleEndian.PutUint32(addr[:], address)
	buf = append(buf, addr[:]...)
	buf = append(buf, data...)
	if err := c.sendCommand(buf, protocol.CmdWritePage); err != nil {
		return err
	}
	code, _, err := c.readResponse(0)
	if err := checkSimple(code, err); err != nil {
		return err
	}
	fmt.Println("written")
	return nil
}

func (c *client) readRange(address uint32, length uint16) error {
	var buf [6]byte
	binary.LittleEndian.PutUint32(buf[0:4], address)
	binary.LittleEndian.PutUint16(buf[4:6], length)
	if err := c.sendCommand(buf[:], protocol.CmdReadRange); err != nil {
		return err
	}
	code, body, err := c.readResponse(int(length))
	if err != nil {
		return err
	}
	if code != protocol.ResReadRange {
		return checkSimple(code, nil)
	}
	fmt.Printf("% x\n", body)
	return nil
}

func (c *client) crc(address, length uint32) error {
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[0:4], address)
	binary.LittleEndian.PutUint32(buf[4:8], length)
	if err := c.sendCommand(buf[:], protocol.CmdCrcIntFlash); err != nil {
		return err
	}
	code, body, err := c.readResponseRaw(4)
	if err != nil {
		return err
	}
	if code != protocol.ResCrcIntFlash {
		return checkSimple(code, nil)
	}
	fmt.Printf("0x%08x\n", binary.LittleEndian.Uint32(body))
	return nil
}

func (c *client) getAttr(index uint8) error {
	if err := c.sendCommand([]byte{index}, protocol.CmdGetAttribute); err != nil {
		return err
	}
	code, body, err := c.readResponse(protocol.AttributeSlotSize)
	if err != nil {
		return err
	}
	if code != protocol.ResGetAttr {
		return checkSimple(code, nil)
	}
	key := body[:protocol.AttributeKeySize]
	value := body[protocol.AttributeKeySize:]
	fmt.Printf("key=%q value=% x\n", key, value)
	return nil
}

func (c *client) setAttr(index uint8, key string, value []byte) error {
	if len(value) > protocol.AttributeValueMaxSize {
		return fmt.Errorf("value too long: %d > %d", len(value), protocol.AttributeValueMaxSize)
	}
	var keyBytes [protocol.AttributeKeySize]byte
	copy(keyBytes[:], key)

	var buf []byte
	buf = append(buf, index)
	buf = append(buf, keyBytes[:]...)
	buf = append(buf, byte(len(value)))
	buf = append(buf, value...)
	if err := c.sendCommand(buf, protocol.CmdSetAttribute); err != nil {
		return err
	}
	code, _, err := c.readResponse(0)
	if err := checkSimple(code, err); err != nil {
		return err
	}
	fmt.Println("set")
	return nil
}

func (c *client) exitBootloader() error {
	return c.sendCommand(nil, protocol.CmdExit)
}

package protocol

import (
	"bytes"
	"testing"
)

func feedAll(t *testing.T, d *Decoder, bytes []byte) ([]*Command, []error) {
	t.Helper()
	var cmds []*Command
	var errs []error
	for _, b := range bytes {
		cmd, err := d.Feed(b)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return cmds, errs
}

func TestDecodePing(t *testing.T) {
	d := NewDecoder()
	cmds, errs := feedAll(t, d, []byte{EscapeByte, CmdPing})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(cmds) != 1 || cmds[0].Opcode != CmdPing {
		t.Fatalf("got %+v", cmds)
	}
}

func TestDecodeEscapeTransparency(t *testing.T) {
	// A literal 0xFC inside a WritePage payload must be doubled on the
	// wire and restored to a single byte by the decoder.
	d := NewDecoder()
	var wire []byte
	wire = append(wire, 0x00, 0x00, 0x01, 0x00) // address = 0x00010000
	payload := []byte{0x01, EscapeByte, 0x02}
	wire = append(wire, AppendEscaped(nil, payload)...)
	wire = append(wire, EscapeByte, CmdWritePage)

	cmds, errs := feedAll(t, d, wire)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(cmds) != 1 {
		t.Fatalf("got %d commands, want 1", len(cmds))
	}
	if !bytes.Equal(cmds[0].Data, payload) {
		t.Fatalf("data = %x, want %x", cmds[0].Data, payload)
	}
}

func TestDecodeErasePage(t *testing.T) {
	d := NewDecoder()
	wire := []byte{0x00, 0x40, 0x00, 0x00, EscapeByte, CmdErasePage}
	cmds, errs := feedAll(t, d, wire)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(cmds) != 1 || cmds[0].Address != 0x4000 {
		t.Fatalf("got %+v", cmds)
	}
}

func TestDecodeErasePageBadArguments(t *testing.T) {
	d := NewDecoder()
	wire := []byte{0x00, 0x40, 0x00, EscapeByte, CmdErasePage} // only 3 bytes
	_, errs := feedAll(t, d, wire)
	if len(errs) != 1 || errs[0] != ErrBadArguments {
		t.Fatalf("got %v, want ErrBadArguments", errs)
	}
}

func TestDecodeReadRange(t *testing.T) {
	d := NewDecoder()
	wire := []byte{0xFE, 0x01, 0x00, 0x00, 0x06, 0x00, EscapeByte, CmdReadRange}
	cmds, errs := feedAll(t, d, wire)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(cmds) != 1 || cmds[0].Address != 0x1FE || cmds[0].Length != 6 {
		t.Fatalf("got %+v", cmds)
	}
}

func TestDecodeSetAttr(t *testing.T) {
	d := NewDecoder()
	var wire []byte
	wire = append(wire, 2)                                      // index
	wire = append(wire, []byte("board\x00\x00\x00")...)         // key, 8 bytes
	wire = append(wire, 4)                                      // value length
	wire = append(wire, []byte("hail")...)                      // value
	wire = append(wire, EscapeByte, CmdSetAttribute)

	cmds, errs := feedAll(t, d, wire)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(cmds) != 1 {
		t.Fatalf("got %d commands", len(cmds))
	}
	cmd := cmds[0]
	if cmd.AttrIndex != 2 {
		t.Fatalf("index = %d, want 2", cmd.AttrIndex)
	}
	if string(bytes.TrimRight(cmd.AttrKey[:], "\x00")) != "board" {
		t.Fatalf("key = %q", cmd.AttrKey)
	}
	if !bytes.Equal(cmd.AttrValue, []byte("hail")) {
		t.Fatalf("value = %q", cmd.AttrValue)
	}
}

func TestDecodeSetAttrBadIndex(t *testing.T) {
	d := NewDecoder()
	var wire []byte
	wire = append(wire, 16) // index out of range
	wire = append(wire, make([]byte, 8)...)
	wire = append(wire, 0)
	wire = append(wire, EscapeByte, CmdSetAttribute)

	_, errs := feedAll(t, d, wire)
	if len(errs) != 1 || errs[0] != ErrBadArguments {
		t.Fatalf("got %v, want ErrBadArguments", errs)
	}
}

func TestDecodeUnknownCommand(t *testing.T) {
	d := NewDecoder()
	_, errs := feedAll(t, d, []byte{EscapeByte, 0x7F})
	if len(errs) != 1 || errs[0] != ErrUnknownCommand {
		t.Fatalf("got %v, want ErrUnknownCommand", errs)
	}
}

func TestResetMidChunkContinuesParsing(t *testing.T) {
	d := NewDecoder()
	// Reset, followed immediately by a complete Ping, in one chunk.
	wire := []byte{EscapeByte, CmdReset, EscapeByte, CmdPing}
	cmds, errs := feedAll(t, d, wire)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(cmds) != 2 {
		t.Fatalf("got %d commands, want 2 (Reset, Ping)", len(cmds))
	}
	if cmds[0].Opcode != CmdReset || cmds[1].Opcode != CmdPing {
		t.Fatalf("got %+v", cmds)
	}
}

func TestEncodeSimpleResponses(t *testing.T) {
	tests := []struct {
		name string
		code byte
	}{
		{"pong", ResPong},
		{"ok", ResOK},
		{"badargs", ResBadArgs},
		{"badaddr", ResBadAddr},
		{"unknown", ResUnknown},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := EncodeSimple(nil, tc.code)
			want := []byte{EscapeByte, tc.code}
			if !bytes.Equal(got, want) {
				t.Errorf("got %x, want %x", got, want)
			}
		})
	}
}

func TestEncodeGetAttrEscapesPayload(t *testing.T) {
	slot := make([]byte, AttributeSlotSize)
	slot[10] = EscapeByte
	got := EncodeGetAttr(nil, slot)

	if got[0] != EscapeByte || got[1] != ResGetAttr {
		t.Fatalf("missing header: %x", got[:2])
	}
	body := got[2:]
	// The literal escape byte at slot[10] should appear doubled, adding
	// exactly one extra byte to the encoded body.
	if len(body) != AttributeSlotSize+1 {
		t.Fatalf("body len = %d, want %d", len(body), AttributeSlotSize+1)
	}
}

func TestEncodeInfoFixedLength(t *testing.T) {
	got := EncodeInfo(nil, []byte(`{"version":"1"}`))
	if len(got) != InfoFrameLength {
		t.Fatalf("len = %d, want %d", len(got), InfoFrameLength)
	}
	if got[0] != EscapeByte || got[1] != ResInfo {
		t.Fatalf("missing header")
	}
	if int(got[2]) != len(`{"version":"1"}`) {
		t.Fatalf("length byte = %d", got[2])
	}
}

func TestRoundTripWritePageCommand(t *testing.T) {
	d := NewDecoder()
	data := make([]byte, FlashPageSize)
	for i := range data {
		data[i] = byte(i)
	}
	var wire []byte
	wire = append(wire, 0x00, 0x00, 0x02, 0x00) // address = 0x20000
	wire = append(wire, AppendEscaped(nil, data)...)
	wire = append(wire, EscapeByte, CmdWritePage)

	cmds, errs := feedAll(t, d, wire)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(cmds) != 1 {
		t.Fatalf("got %d commands", len(cmds))
	}
	if cmds[0].Address != 0x20000 {
		t.Fatalf("address = %x", cmds[0].Address)
	}
	if !bytes.Equal(cmds[0].Data, data) {
		t.Fatalf("data mismatch, len got=%d want=%d", len(cmds[0].Data), len(data))
	}
}

// Package protocol implements the escape-framed wire protocol between a
// host and the bootloader: a single escape byte delimits frames, and any
// escape byte appearing inside a payload is doubled to remain transparent.
package protocol

// EscapeByte delimits frames on the wire; any occurrence inside a payload
// is doubled to keep byte-stuffed data distinguishable from framing.
const EscapeByte = 0xFC

// Command opcodes (host -> device). Values match the on-wire encoding.
const (
	CmdPing            = 0x01
	CmdInfo            = 0x03
	CmdReset           = 0x05
	CmdErasePage       = 0x06
	CmdWritePage       = 0x07
	CmdReadRange       = 0x11
	CmdSetAttribute    = 0x13
	CmdGetAttribute    = 0x14
	CmdCrcIntFlash     = 0x15
	CmdWriteUser       = 0x20
	CmdChangeBaudRate  = 0x21
	CmdSetStartAddress = 0x22
	CmdExit            = 0x23
)

// Response opcodes (device -> host).
const (
	ResPong       = 0x11
	ResBadAddr    = 0x12
	ResInternal   = 0x13
	ResBadArgs    = 0x14
	ResOK         = 0x15
	ResUnknown    = 0x16
	ResReadRange  = 0x20
	ResGetAttr    = 0x22
	ResCrcIntFlash = 0x23
	ResInfo       = 0x25
)

// BaudMode is the argument to CmdChangeBaudRate.
type BaudMode uint8

const (
	BaudModeSet    BaudMode = 0x01
	BaudModeVerify BaudMode = 0x02
)

// AttributeKeySize and AttributeValueMaxSize bound SetAttr/GetAttr arguments.
const (
	AttributeCount         = 16
	AttributeKeySize       = 8
	AttributeValueMaxSize  = 55
	AttributeSlotSize      = 64
	FlashPageSize          = 512
	InfoFrameLength        = 195
)

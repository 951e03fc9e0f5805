package protocol

// Command is a fully decoded host->device message, tagged by Opcode with
// carried arguments populated according to the table in the opcode it
// belongs to. Fields unused by a given Opcode are zero.
type Command struct {
	Opcode byte

	Address uint32 // EPAGE, WPAGE, RRANGE, CRCIF, SetStartAddress
	Length  uint32 // RRANGE (u16 on the wire), CRCIF (u32 on the wire)
	Data    []byte // WPAGE payload

	AttrIndex uint8    // SATTR, GATTR
	AttrKey   [AttributeKeySize]byte
	AttrValue []byte // length <= AttributeValueMaxSize

	BaudMode BaudMode
	BaudRate uint32
}

package entry

// Jumper hands control to the application at address, never returning.
// Grounded on arch/bootloader_cortexm/src/jumper.rs.
type Jumper interface {
	Jump(address uint32)
}

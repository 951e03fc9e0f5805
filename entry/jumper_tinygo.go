//go:build tinygo

package entry

/*
#include <stdint.h>

// Repoints VTOR at the application's vector table and branches into it.
// Never returns. Grounded on arch/bootloader_cortexm/src/jumper.rs, adapted
// from the asm! block into inline C with the same register usage.
__attribute__((naked, noreturn))
static void cortexm_jump(uint32_t address) {
    __asm volatile(
        ".syntax unified            \n"
        "mov r0, r0                 \n" // address already in r0 per AAPCS
        "ldr r1, =0xe000ed08        \n" // VTOR
        "str r0, [r1]               \n"
        "ldr r1, [r0]                \n" // payload's initial SP
        "mov sp, r1                  \n"
        "ldr r0, [r0, #4]            \n" // payload's entry point
        "bx  r0                      \n"
        :
        :
        : "r0", "r1"
    );
}
*/
import "C"

// CortexMJumper jumps by repointing VTOR at address and branching into the
// vector table's reset handler, as a real bootloader does on exit.
type CortexMJumper struct{}

func (CortexMJumper) Jump(address uint32) {
	C.cortexm_jump(C.uint32_t(address))
	for {
	}
}

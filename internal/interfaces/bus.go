// Package interfaces breaks the ownership cycle between the bus and the
// components it dispatches MMIO to. The bus owns RAM and the component
// instances; each component is handed a Bus reference, never the reverse,
// so these interfaces only need to describe what a component may do to the
// bus: move bytes and raise interrupt lines.
package interfaces

// Bus is the subset of the memory bus that DMA, Timer, and Video need in
// order to move data and signal interrupts. Defined here rather than in
// package bus so those packages can depend on it without importing bus
// (which in turn imports them).
type Bus interface {
	Read8(addr uint32) uint8
	Read16(addr uint32) uint16
	Read32(addr uint32) uint32
	Write8(addr uint32, value uint8)
	Write16(addr uint32, value uint16)
	Write32(addr uint32, value uint32)

	// RequestIRQ sets the given bits in the interrupt-request register.
	// Components never touch IE/IF/IME storage directly; they only ever
	// raise lines; the backing store does "IF |= (1 << n)" on their behalf.
	RequestIRQ(mask uint16)

	// PendingIRQ reports whether IME is enabled and at least one IE bit has
	// a matching IF bit set, i.e. whether the processor should take an IRQ
	// exception before its next instruction.
	PendingIRQ() bool
}

// Package errs holds the typed errors the core raises for conditions the
// ARM7TDMI architecture itself defines as exceptional, plus the "hard"
// variants that indicate an emulator bug rather than guest behaviour.
package errs

import "fmt"

// OutOfBoundsRead is raised when a cartridge access falls far enough past
// the loaded ROM that it cannot be serviced, per the bus's trailing-two-byte
// tolerance.
type OutOfBoundsRead struct {
	Address uint32
	Width   int
}

func (e *OutOfBoundsRead) Error() string {
	return fmt.Sprintf("cartridge read out of bounds: addr=0x%08X width=%d", e.Address, e.Width)
}

// UndefinedInstruction describes an encoding the architecture reserves. The
// CPU does not construct it: for such encodings it vectors straight into its
// Undefined handler, so no such error leaves a CPU step.
type UndefinedInstruction struct {
	Instruction uint32
	PC          uint32
}

func (e *UndefinedInstruction) Error() string {
	return fmt.Sprintf("undefined instruction 0x%08X at pc=0x%08X", e.Instruction, e.PC)
}

// InvalidMode is a hard error: the register file was asked to bank to a
// mode value outside the seven legal CPSR mode encodings. This cannot arise
// from guest code going through SetMode's validation and indicates a bug.
type InvalidMode struct {
	Mode uint8
}

func (e *InvalidMode) Error() string {
	return fmt.Sprintf("invalid CPSR mode 0x%02X", e.Mode)
}

// UnknownBgMode is raised by the video controller when DISPCNT selects a
// background mode this core does not render (5, 6, 7) and forced-blank is
// not set.
type UnknownBgMode struct {
	Mode uint8
}

func (e *UnknownBgMode) Error() string {
	return fmt.Sprintf("unknown BG mode %d", e.Mode)
}

// NotImplemented marks a feature this core does not support
// (non-immediate DMA start timing, affine backgrounds, ...).
type NotImplemented struct {
	What string
}

func (e *NotImplemented) Error() string {
	return "not implemented: " + e.What
}

// BiosSizeMismatch is a configuration error raised at startup.
type BiosSizeMismatch struct {
	Got      int
	Expected int
}

func (e *BiosSizeMismatch) Error() string {
	return fmt.Sprintf("bios size mismatch: got %d bytes, expected %d (+/-2)", e.Got, e.Expected)
}

// Package cpu implements the ARM7TDMI processor core: the banked register
// file, the ARM- and Thumb-state decoders and executors, and interrupt
// entry. It knows nothing about the memory map beyond the interfaces.Bus
// contract handed to it at construction.
package cpu

import "GoBA/internal/interfaces"

// CPU is the processor core. It holds no reference back to anything that
// owns it; the bus is reached purely through interfaces.Bus.
type CPU struct {
	regs *Registers
	bus  interfaces.Bus

	halted bool
}

// NewCPU constructs a CPU wired to the given bus and reset to the
// cartridge entry point, mirroring the state the BIOS hands off to game
// code after its startup sequence runs.
func NewCPU(bus interfaces.Bus) *CPU {
	return &CPU{
		regs: NewRegisters(),
		bus:  bus,
	}
}

// Registers exposes the register file for debugging and test setup.
func (c *CPU) Registers() *Registers { return c.regs }

// Reset restores the post-BIOS-handoff state: System mode, ARM state, IRQ
// and FIQ disabled, PC at the cartridge entry point.
func (c *CPU) Reset() {
	c.regs = NewRegisters()
	c.halted = false
}

// Halt parks the core: Step executes nothing until PollIRQ takes an IRQ,
// which clears the halt. ClearHalt clears it directly.
func (c *CPU) Halt()      { c.halted = true }
func (c *CPU) IsHalted() bool { return c.halted }
func (c *CPU) ClearHalt() { c.halted = false }

// Step polls for a pending interrupt, then fetches, decodes, and executes
// exactly one instruction in whichever instruction set CPSR.T currently
// selects. It returns the number of instructions retired: 0 while halted
// or when an IRQ was taken instead, otherwise 1.
func (c *CPU) Step() int {
	if c.PollIRQ() {
		return 0
	}
	if c.halted {
		return 0
	}

	instrAddr := c.regs.PCRaw()

	if c.regs.IsThumb() {
		instr := c.bus.Read16(instrAddr)
		c.regs.SetPCRaw(instrAddr + 2)
		c.executeThumb(instr, instrAddr)
	} else {
		instr := c.bus.Read32(instrAddr)
		c.regs.SetPCRaw(instrAddr + 4)
		c.executeArm(instr, instrAddr)
	}

	return 1
}

// PollIRQ implements the per-instruction interrupt check: if IME is
// set, IE & IF is non-zero, and CPSR.I is clear, an IRQ exception is taken
// and the instruction that would otherwise have run next is skipped. Step
// calls this once before each fetch.
func (c *CPU) PollIRQ() bool {
	if c.regs.IsIRQDisabled() || !c.bus.PendingIRQ() {
		return false
	}
	c.halted = false
	c.raiseException(IRQMode, false, true, vectorIRQ)
	return true
}

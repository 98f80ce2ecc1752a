package cpu

import (
	"fmt"
	"strconv"

	"GoBA/internal/errs"
	"GoBA/util/dbg"
)

// ARM7TDMI CPU operating modes.
const (
	USRMode = 0b10000 // User mode
	FIQMode = 0b10001 // FIQ mode (Fast Interrupt Request)
	IRQMode = 0b10010 // IRQ mode (Interrupt Request)
	SVCMode = 0b10011 // Supervisor mode
	ABTMode = 0b10111 // Abort mode
	UNDMode = 0b11011 // Undefined instruction mode
	SYSMode = 0b11111 // System mode (shares User mode registers)
)

// CPSR flag/control bit positions.
const (
	flagT = 5  // Thumb state
	flagF = 6  // FIQ disable
	flagI = 7  // IRQ disable
	flagV = 28 // Overflow
	flagC = 29 // Carry
	flagZ = 30 // Zero
	flagN = 31 // Negative
)

func isLegalMode(mode uint8) bool {
	switch mode {
	case USRMode, FIQMode, IRQMode, SVCMode, ABTMode, UNDMode, SYSMode:
		return true
	default:
		return false
	}
}

// Registers holds the state of the ARM7TDMI register file. The GBA's
// ARM7TDMI has 16 visible registers (R0-R15), some of which are banked
// depending on the current CPU mode.
//
// PC is stored as the address the next fetch will read from (i.e. the
// address immediately after the instruction currently executing, already
// advanced by the fetch-time increment). Reading r15 through GetReg adds
// the architectural prefetch offset on top of that; writing r15 through
// SetReg stores the raw target address, matching how branch targets are
// always computed with the prefetch offset already folded in by the
// caller.
type Registers struct {
	R [13]uint32 // R0-R12 for non-FIQ modes; R0-R7 for FIQ mode

	SP_usr uint32
	LR_usr uint32

	SP_svc uint32
	LR_svc uint32

	SP_abt uint32
	LR_abt uint32

	SP_und uint32
	LR_und uint32

	SP_irq uint32
	LR_irq uint32

	R8_fiq  uint32
	R9_fiq  uint32
	R10_fiq uint32
	R11_fiq uint32
	R12_fiq uint32
	SP_fiq  uint32
	LR_fiq  uint32

	PC uint32

	CPSR uint32

	SPSR_svc uint32
	SPSR_abt uint32
	SPSR_und uint32
	SPSR_irq uint32
	SPSR_fiq uint32
}

// NewRegisters creates a Registers struct in the post-reset state: System
// mode, ARM state, IRQ/FIQ disabled, PC at the cartridge entry point, and
// the banked stack pointers preloaded the way the BIOS would leave them.
func NewRegisters() *Registers {
	r := &Registers{
		PC: 0x08000000,
	}
	r.CPSR = uint32(SYSMode) | (1 << flagF) | (1 << flagI)
	r.SP_usr = 0x03007F00
	r.SP_irq = 0x03007FA0
	r.SP_svc = 0x03007FE0
	return r
}

// GetMode returns the current CPU operating mode from CPSR.
func (r *Registers) GetMode() uint8 {
	return uint8(r.CPSR & 0x1F)
}

// SetMode updates the CPSR mode field. An illegal mode value is rejected
// and logged rather than applied, per the architecture's mode invariant.
func (r *Registers) SetMode(mode uint8) {
	if !isLegalMode(mode) {
		dbg.Warnf("SetMode: rejected illegal mode 0x%02X\n", mode)
		return
	}
	r.CPSR = (r.CPSR &^ 0x1F) | uint32(mode)
}

// pcOffset returns the architectural prefetch offset for the current
// instruction state: +4 in ARM, +2 in Thumb (on top of the fetch-time
// increment already folded into PC).
func (r *Registers) pcOffset() uint32 {
	if r.IsThumb() {
		return 2
	}
	return 4
}

// pcAlignMask returns the bits a PC value must be cleared of before use:
// word alignment in ARM state, halfword alignment in Thumb. No register
// write path ever masks PC itself (SetReg/SetPCRaw both store the raw
// value a caller computed, matching the ARM7TDMI convention that an
// instruction like SUBS PC, LR, #4 or ADD PC, PC, Rn can leave the
// register file holding a momentarily misaligned address); alignment is
// enforced only here, the one place PC is read back out for use.
func (r *Registers) pcAlignMask() uint32 {
	if r.IsThumb() {
		return 0xFFFFFFFE
	}
	return 0xFFFFFFFC
}

// PCRaw returns the fetch address, with alignment enforced but no
// prefetch offset applied. Used internally by the fetch/decode loop.
func (r *Registers) PCRaw() uint32 {
	return r.PC & r.pcAlignMask()
}

// SetPCRaw sets the raw fetch address directly, bypassing the r15 banking
// and prefetch-offset rules GetReg/SetReg apply. Used by the fetch loop's
// own PC advance, by exception entry, and by handlers that load PC
// directly (BX, LDM with r15). The value is stored unmasked; PCRaw/GetReg
// align it on the way back out.
func (r *Registers) SetPCRaw(value uint32) {
	r.PC = value
}

// GetReg returns the value of a general-purpose register (R0-R15), honouring
// mode banking. Reading r15 returns the architectural prefetch value.
func (r *Registers) GetReg(regNum uint8) uint32 {
	if regNum > 15 {
		panic("read from undefined register R" + strconv.Itoa(int(regNum)))
	}

	if regNum == 15 {
		return (r.PC + r.pcOffset()) & r.pcAlignMask()
	}

	mode := r.GetMode()

	if mode == FIQMode {
		switch regNum {
		case 8:
			return r.R8_fiq
		case 9:
			return r.R9_fiq
		case 10:
			return r.R10_fiq
		case 11:
			return r.R11_fiq
		case 12:
			return r.R12_fiq
		case 13:
			return r.SP_fiq
		case 14:
			return r.LR_fiq
		}
	}

	if regNum == 13 {
		switch mode {
		case USRMode, SYSMode:
			return r.SP_usr
		case SVCMode:
			return r.SP_svc
		case ABTMode:
			return r.SP_abt
		case UNDMode:
			return r.SP_und
		case IRQMode:
			return r.SP_irq
		}
	}

	if regNum == 14 {
		switch mode {
		case USRMode, SYSMode:
			return r.LR_usr
		case SVCMode:
			return r.LR_svc
		case ABTMode:
			return r.LR_abt
		case UNDMode:
			return r.LR_und
		case IRQMode:
			return r.LR_irq
		}
	}

	return r.R[regNum]
}

// SetReg sets the value of a general-purpose register (R0-R15), honouring
// mode banking. Writing r15 sets the raw next-fetch address: the caller is
// expected to have already computed the target using the prefetch-adjusted
// value of PC where the architecture calls for it (branches, BX).
func (r *Registers) SetReg(regNum uint8, value uint32) {
	if regNum > 15 {
		panic("write to undefined register R" + strconv.Itoa(int(regNum)))
	}

	if regNum == 15 {
		r.PC = value
		return
	}

	mode := r.GetMode()

	if mode == FIQMode {
		switch regNum {
		case 8:
			r.R8_fiq = value
			return
		case 9:
			r.R9_fiq = value
			return
		case 10:
			r.R10_fiq = value
			return
		case 11:
			r.R11_fiq = value
			return
		case 12:
			r.R12_fiq = value
			return
		case 13:
			r.SP_fiq = value
			return
		case 14:
			r.LR_fiq = value
			return
		}
	}

	if regNum == 13 {
		switch mode {
		case USRMode, SYSMode:
			r.SP_usr = value
			return
		case SVCMode:
			r.SP_svc = value
			return
		case ABTMode:
			r.SP_abt = value
			return
		case UNDMode:
			r.SP_und = value
			return
		case IRQMode:
			r.SP_irq = value
			return
		}
	}

	if regNum == 14 {
		switch mode {
		case USRMode, SYSMode:
			r.LR_usr = value
			return
		case SVCMode:
			r.LR_svc = value
			return
		case ABTMode:
			r.LR_abt = value
			return
		case UNDMode:
			r.LR_und = value
			return
		case IRQMode:
			r.LR_irq = value
			return
		}
	}

	r.R[regNum] = value
}

// GetRegUser reads a register as it appears in User mode regardless of the
// current mode, used by the S-bit/user-bank transfer rules in block data
// transfer.
func (r *Registers) GetRegUser(regNum uint8) uint32 {
	switch {
	case regNum == 15:
		return r.GetReg(15)
	case regNum == 13:
		return r.SP_usr
	case regNum == 14:
		return r.LR_usr
	case regNum >= 8 && regNum <= 12 && r.GetMode() == FIQMode:
		return r.R[regNum]
	default:
		return r.GetReg(regNum)
	}
}

// SetRegUser writes a register as it appears in User mode regardless of the
// current mode.
func (r *Registers) SetRegUser(regNum uint8, value uint32) {
	switch {
	case regNum == 15:
		r.SetReg(15, value)
	case regNum == 13:
		r.SP_usr = value
	case regNum == 14:
		r.LR_usr = value
	case regNum >= 8 && regNum <= 12 && r.GetMode() == FIQMode:
		r.R[regNum] = value
	default:
		r.SetReg(regNum, value)
	}
}

// GetCPSR returns the raw CPSR word.
func (r *Registers) GetCPSR() uint32 { return r.CPSR }

// SetCPSR overwrites CPSR. If privileged is false (current mode is User),
// only the top flag nibble is writable; the rest of the word, including
// mode and the T/F/I bits, is left untouched.
func (r *Registers) SetCPSR(value uint32, privileged bool) {
	if !privileged {
		r.CPSR = (r.CPSR & 0x0FFFFFFF) | (value & 0xF0000000)
		return
	}
	mode := uint8(value & 0x1F)
	if !isLegalMode(mode) {
		dbg.Warnf("SetCPSR: rejected illegal mode 0x%02X\n", mode)
		value = (value &^ 0x1F) | uint32(r.GetMode())
	}
	r.CPSR = value
}

// GetSPSR returns the SPSR for the current mode. Invalid in User/System
// mode; callers must check GetMode() first where the architecture cares
// (MRS from SPSR in User mode is itself unpredictable and this core simply
// returns the CPSR as a harmless stand-in, logged).
func (r *Registers) GetSPSR() uint32 {
	switch r.GetMode() {
	case FIQMode:
		return r.SPSR_fiq
	case SVCMode:
		return r.SPSR_svc
	case ABTMode:
		return r.SPSR_abt
	case IRQMode:
		return r.SPSR_irq
	case UNDMode:
		return r.SPSR_und
	default:
		dbg.Warnf("GetSPSR: called in mode 0x%02X, no SPSR slot\n", r.GetMode())
		return r.CPSR
	}
}

// SetSPSR sets the SPSR for the current mode. A no-op, logged, in
// User/System mode, where no SPSR slot exists.
func (r *Registers) SetSPSR(value uint32) {
	switch r.GetMode() {
	case FIQMode:
		r.SPSR_fiq = value
	case SVCMode:
		r.SPSR_svc = value
	case ABTMode:
		r.SPSR_abt = value
	case IRQMode:
		r.SPSR_irq = value
	case UNDMode:
		r.SPSR_und = value
	default:
		dbg.Warnf("SetSPSR: no-op in mode 0x%02X\n", r.GetMode())
	}
}

// EnterException banks PC/CPSR into the target mode's LR/SPSR slots and
// switches to the vector's mode, clearing T and forcing F/I per the vector.
// Returns the error if mode is somehow illegal (cannot happen for the four
// fixed vectors this core uses, guarded here only as a defensive check
// surfaced via errs.InvalidMode).
func (r *Registers) EnterException(mode uint8, forceF, forceI bool, returnPC, vectorPC uint32) error {
	if !isLegalMode(mode) {
		return &errs.InvalidMode{Mode: mode}
	}
	savedCPSR := r.CPSR
	r.SetMode(mode)
	r.SetSPSR(savedCPSR)
	r.SetReg(14, returnPC)
	r.SetThumbState(false)
	if forceI {
		r.SetIRQDisabled(true)
	}
	if forceF {
		r.SetFIQDisabled(true)
	}
	r.SetPCRaw(vectorPC)
	return nil
}

// --- CPSR flag/control accessors ---

func (r *Registers) IsThumb() bool { return (r.CPSR>>flagT)&1 == 1 }

func (r *Registers) SetThumbState(thumb bool) {
	if thumb {
		r.CPSR |= 1 << flagT
	} else {
		r.CPSR &^= 1 << flagT
	}
}

func (r *Registers) IsFIQDisabled() bool { return (r.CPSR>>flagF)&1 == 1 }

func (r *Registers) SetFIQDisabled(disabled bool) {
	if disabled {
		r.CPSR |= 1 << flagF
	} else {
		r.CPSR &^= 1 << flagF
	}
}

func (r *Registers) IsIRQDisabled() bool { return (r.CPSR>>flagI)&1 == 1 }

func (r *Registers) SetIRQDisabled(disabled bool) {
	if disabled {
		r.CPSR |= 1 << flagI
	} else {
		r.CPSR &^= 1 << flagI
	}
}

func (r *Registers) GetFlagN() bool { return (r.CPSR>>flagN)&1 == 1 }
func (r *Registers) GetFlagZ() bool { return (r.CPSR>>flagZ)&1 == 1 }
func (r *Registers) GetFlagC() bool { return (r.CPSR>>flagC)&1 == 1 }
func (r *Registers) GetFlagV() bool { return (r.CPSR>>flagV)&1 == 1 }

func (r *Registers) SetFlagN(set bool) { r.setFlagBit(flagN, set) }
func (r *Registers) SetFlagZ(set bool) { r.setFlagBit(flagZ, set) }
func (r *Registers) SetFlagC(set bool) { r.setFlagBit(flagC, set) }
func (r *Registers) SetFlagV(set bool) { r.setFlagBit(flagV, set) }

func (r *Registers) setFlagBit(bit uint, set bool) {
	if set {
		r.CPSR |= 1 << bit
	} else {
		r.CPSR &^= 1 << bit
	}
}

func modeName(mode uint8) string {
	switch mode {
	case USRMode:
		return "USR"
	case FIQMode:
		return "FIQ"
	case IRQMode:
		return "IRQ"
	case SVCMode:
		return "SVC"
	case ABTMode:
		return "ABT"
	case UNDMode:
		return "UND"
	case SYSMode:
		return "SYS"
	default:
		return fmt.Sprintf("?%02X?", mode)
	}
}

// String returns a debug dump of the visible register file.
func (r *Registers) String() string {
	thumbState := "ARM"
	if r.IsThumb() {
		thumbState = "THUMB"
	}

	return fmt.Sprintf(
		"R0 =%08X  R1 =%08X  R2 =%08X  R3 =%08X\n"+
			"R4 =%08X  R5 =%08X  R6 =%08X  R7 =%08X\n"+
			"R8 =%08X  R9 =%08X  R10=%08X  R11=%08X\n"+
			"R12=%08X  SP =%08X  LR =%08X  PC =%08X\n"+
			"CPSR=%08X (%s %s N:%t Z:%t C:%t V:%t I:%t F:%t)",
		r.GetReg(0), r.GetReg(1), r.GetReg(2), r.GetReg(3),
		r.GetReg(4), r.GetReg(5), r.GetReg(6), r.GetReg(7),
		r.GetReg(8), r.GetReg(9), r.GetReg(10), r.GetReg(11),
		r.GetReg(12), r.GetReg(13), r.GetReg(14), r.GetReg(15),
		r.CPSR, modeName(r.GetMode()), thumbState,
		r.GetFlagN(), r.GetFlagZ(), r.GetFlagC(), r.GetFlagV(),
		r.IsIRQDisabled(), r.IsFIQDisabled(),
	)
}

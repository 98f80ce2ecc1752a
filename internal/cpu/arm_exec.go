package cpu

import "GoBA/util/dbg"

// ARM exception vectors. The core only ever vectors into Undefined, SWI,
// IRQ; Prefetch/Data Abort are unreachable since this core never raises an
// external bus abort, but the vectors are kept for completeness.
const (
	vectorUndefined     = 0x00000004
	vectorSWI           = 0x00000008
	vectorPrefetchAbort = 0x0000000C
	vectorDataAbort     = 0x00000010
	vectorIRQ           = 0x00000018
)

func (c *CPU) checkConditionArm(cond ARMCondition) bool {
	n, z, cf, v := c.regs.GetFlagN(), c.regs.GetFlagZ(), c.regs.GetFlagC(), c.regs.GetFlagV()
	switch cond {
	case EQ:
		return z
	case NE:
		return !z
	case CS:
		return cf
	case CC:
		return !cf
	case MI:
		return n
	case PL:
		return !n
	case VS:
		return v
	case VC:
		return !v
	case HI:
		return cf && !z
	case LS:
		return !cf || z
	case GE:
		return n == v
	case LT:
		return n != v
	case GT:
		return !z && n == v
	case LE:
		return z || n != v
	case AL:
		return true
	case NV:
		return false
	default:
		return false
	}
}

// executeArm decodes and runs one ARM-mode instruction. instrAddr is the
// address the instruction itself was fetched from (PC before the step's
// advance), used by the PC-relative quirks (branch target, stored-PC value
// in STM). The reserved NV condition (0b1111) takes the Undefined exception.
func (c *CPU) executeArm(instr uint32, instrAddr uint32) {
	cond := ARMCondition((instr >> 28) & 0xF)
	if cond == NV {
		dbg.Warnf("ARM instruction 0x%08X at 0x%08X uses the reserved NV condition\n", instr, instrAddr)
		c.raiseException(UNDMode, false, true, vectorUndefined)
		return
	}
	if !c.checkConditionArm(cond) {
		return
	}

	switch inst := decodeArm(instr).(type) {
	case ARMDataProcessingInstruction:
		c.execDataProcessing(inst)
	case ARMMultiplyInstruction:
		c.execMultiply(inst)
	case ARMMultiplyLongInstruction:
		c.execMultiplyLong(inst)
	case ARMSingleDataSwapInstruction:
		c.execSwap(inst)
	case ARMBranchExchangeInstruction:
		c.execBX(inst)
	case ARMPSRTransferInstruction:
		c.execPSRTransfer(inst)
	case ARMLoadStoreInstruction:
		c.execLoadStore(inst)
	case ARMHalfwordDataTransferInstruction:
		c.execHalfwordTransfer(inst)
	case ARMBlockDataTransferInstruction:
		c.execBlockDataTransfer(inst, instrAddr)
	case ARMBranchInstruction:
		c.execBranch(inst, instrAddr)
	case ARMSWIInstruction:
		c.raiseException(SVCMode, true, true, vectorSWI)
	case ARMUndefinedInstruction:
		dbg.Warnf("undefined ARM instruction 0x%08X at 0x%08X\n", inst.Raw, instrAddr)
		c.raiseException(UNDMode, false, true, vectorUndefined)
	}
}

// raiseException banks LR/SPSR, switches mode, and vectors PC. PCRaw already
// holds the address execution would resume at: Step advances it past the
// trapping instruction before SWI/Undefined ever run, and IRQ delivery only
// happens between Step calls, so no further adjustment is needed here.
func (c *CPU) raiseException(mode uint8, forceF, forceI bool, vector uint32) {
	returnPC := c.regs.PCRaw()
	if err := c.regs.EnterException(mode, forceF, forceI, returnPC, vector); err != nil {
		dbg.Warnf("raiseException: %v\n", err)
	}
}

// shift applies one of the four barrel-shifter operations and reports the
// carry-out the data-processing S-bit consumes. carryIn is the incoming C
// flag, returned where the shift leaves C unchanged and rotated in by the
// "ROR #0 -> RRX" immediate special case.
func shift(value uint32, shiftType ARMShiftType, amount uint32, immediateZeroIsSpecial bool, carryIn bool) (uint32, bool) {
	switch shiftType {
	case LSL:
		switch {
		case amount == 0:
			return value, carryIn
		case amount < 32:
			return value << amount, (value>>(32-amount))&1 != 0
		case amount == 32:
			return 0, value&1 != 0
		default:
			return 0, false
		}
	case LSR:
		switch {
		case amount == 0 && immediateZeroIsSpecial:
			// LSR #0 encodes LSR #32.
			return 0, value&0x80000000 != 0
		case amount == 0:
			return value, carryIn
		case amount < 32:
			return value >> amount, (value>>(amount-1))&1 != 0
		case amount == 32:
			return 0, value&0x80000000 != 0
		default:
			return 0, false
		}
	case ASR:
		switch {
		case amount == 0 && immediateZeroIsSpecial:
			amount = 32
		case amount == 0:
			return value, carryIn
		}
		if amount >= 32 {
			if value&0x80000000 != 0 {
				return 0xFFFFFFFF, true
			}
			return 0, false
		}
		return uint32(int32(value) >> amount), (value>>(amount-1))&1 != 0
	case ROR:
		if amount == 0 {
			if immediateZeroIsSpecial {
				// ROR #0 encodes RRX: rotate right through carry by one bit.
				result := value >> 1
				if carryIn {
					result |= 0x80000000
				}
				return result, value&1 != 0
			}
			return value, carryIn
		}
		amount %= 32
		if amount == 0 {
			return value, value&0x80000000 != 0
		}
		return (value >> amount) | (value << (32 - amount)), (value>>(amount-1))&1 != 0
	}
	return value, carryIn
}

// calcOp2 computes the second operand and its carry-out for a data
// processing instruction, handling the immediate-rotate, shift-by-immediate
// and shift-by-register forms, and the R15-read-as-shift-source +12 quirk.
func (c *CPU) calcOp2(inst ARMDataProcessingInstruction) (uint32, bool) {
	if inst.I {
		return shift(uint32(inst.Nn), ROR, uint32(inst.Is)*2, false, c.regs.GetFlagC())
	}

	rm := c.readRegForShift(inst.Rm, inst.R)

	if inst.R {
		amount := c.regs.GetReg(inst.Rs) & 0xFF
		if amount == 0 {
			return rm, c.regs.GetFlagC()
		}
		return shift(rm, inst.ShiftType, amount, false, c.regs.GetFlagC())
	}

	return shift(rm, inst.ShiftType, uint32(inst.Is), true, c.regs.GetFlagC())
}

// readRegForShift reads a register that may be used as a shift operand,
// applying the architectural quirk that R15 read in a register-specified
// shift instruction (R=1, i.e. two register reads pipelined in one cycle)
// reports PC+12 rather than the usual PC+8 prefetch value.
func (c *CPU) readRegForShift(reg uint8, shiftByRegister bool) uint32 {
	if reg == 15 && shiftByRegister {
		return c.regs.GetReg(15) + 4
	}
	return c.regs.GetReg(reg)
}

func (c *CPU) execDataProcessing(inst ARMDataProcessingInstruction) {
	op2, shiftCarry := c.calcOp2(inst)
	rn := c.regs.GetReg(inst.Rn)

	var result uint32
	writesResult := true

	switch inst.Opcode {
	case AND:
		result = rn & op2
	case EOR:
		result = rn ^ op2
	case SUB:
		result = rn - op2
	case RSB:
		result = op2 - rn
	case ADD:
		result = rn + op2
	case ADC:
		result = rn + op2 + b2u(c.regs.GetFlagC())
	case SBC:
		result = rn - op2 + b2u(c.regs.GetFlagC()) - 1
	case RSC:
		result = op2 - rn + b2u(c.regs.GetFlagC()) - 1
	case TST:
		result = rn & op2
		writesResult = false
	case TEQ:
		result = rn ^ op2
		writesResult = false
	case CMP:
		result = rn - op2
		writesResult = false
	case CMN:
		result = rn + op2
		writesResult = false
	case ORR:
		result = rn | op2
	case MOV:
		result = op2
	case BIC:
		result = rn &^ op2
	case MVN:
		result = ^op2
	}

	if writesResult {
		c.regs.SetReg(inst.Rd, result)
	}

	if inst.Rd == 15 && writesResult {
		if inst.S {
			// MOVS/ADDS/... PC, ... restores CPSR from the current mode's
			// SPSR: the standard way privileged code returns from an
			// exception handler.
			c.regs.SetCPSR(c.regs.GetSPSR(), true)
		}
		return
	}

	if !inst.S {
		return
	}

	switch inst.Opcode {
	case ADD, CMN:
		wide := uint64(rn) + uint64(op2)
		c.regs.SetFlagC(wide>0xFFFFFFFF)
		c.regs.SetFlagV(((rn ^ result) & (op2 ^ result) & 0x80000000) != 0)
	case ADC:
		wide := uint64(rn) + uint64(op2) + uint64(b2u(c.regs.GetFlagC()))
		c.regs.SetFlagC(wide > 0xFFFFFFFF)
		c.regs.SetFlagV(((rn ^ result) & (op2 ^ result) & 0x80000000) != 0)
	case SUB, CMP:
		c.regs.SetFlagC(rn >= op2)
		c.regs.SetFlagV(((rn ^ op2) & (rn ^ result) & 0x80000000) != 0)
	case SBC:
		wide := uint64(rn) + uint64(0xFFFFFFFF-op2) + uint64(b2u(c.regs.GetFlagC()))
		c.regs.SetFlagC(wide > 0xFFFFFFFF)
		c.regs.SetFlagV(((rn ^ op2) & (rn ^ result) & 0x80000000) != 0)
	case RSB:
		c.regs.SetFlagC(op2 >= rn)
		c.regs.SetFlagV(((op2 ^ rn) & (op2 ^ result) & 0x80000000) != 0)
	case RSC:
		wide := uint64(op2) + uint64(0xFFFFFFFF-rn) + uint64(b2u(c.regs.GetFlagC()))
		c.regs.SetFlagC(wide > 0xFFFFFFFF)
		c.regs.SetFlagV(((op2 ^ rn) & (op2 ^ result) & 0x80000000) != 0)
	default:
		c.regs.SetFlagC(shiftCarry)
	}
	c.regs.SetFlagN(result&0x80000000 != 0)
	c.regs.SetFlagZ(result == 0)
}

func b2u(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func (c *CPU) execMultiply(inst ARMMultiplyInstruction) {
	result := c.regs.GetReg(inst.Rm) * c.regs.GetReg(inst.Rs)
	if inst.A {
		result += c.regs.GetReg(inst.Rn)
	}
	c.regs.SetReg(inst.Rd, result)
	if inst.S {
		c.regs.SetFlagN(result&0x80000000 != 0)
		c.regs.SetFlagZ(result == 0)
	}
}

func (c *CPU) execMultiplyLong(inst ARMMultiplyLongInstruction) {
	var result uint64
	if inst.U {
		result = uint64(int64(int32(c.regs.GetReg(inst.Rm))) * int64(int32(c.regs.GetReg(inst.Rs))))
	} else {
		result = uint64(c.regs.GetReg(inst.Rm)) * uint64(c.regs.GetReg(inst.Rs))
	}
	if inst.A {
		acc := uint64(c.regs.GetReg(inst.RdHi))<<32 | uint64(c.regs.GetReg(inst.RdLo))
		result += acc
	}
	c.regs.SetReg(inst.RdLo, uint32(result))
	c.regs.SetReg(inst.RdHi, uint32(result>>32))
	if inst.S {
		c.regs.SetFlagN(result&0x8000000000000000 != 0)
		c.regs.SetFlagZ(result == 0)
	}
}

func (c *CPU) execSwap(inst ARMSingleDataSwapInstruction) {
	addr := c.regs.GetReg(inst.Rn)
	if inst.B {
		old := c.bus.Read8(addr)
		c.bus.Write8(addr, uint8(c.regs.GetReg(inst.Rm)))
		c.regs.SetReg(inst.Rd, uint32(old))
	} else {
		old := c.bus.Read32(addr)
		c.bus.Write32(addr, c.regs.GetReg(inst.Rm))
		c.regs.SetReg(inst.Rd, old)
	}
}

func (c *CPU) execBX(inst ARMBranchExchangeInstruction) {
	target := c.regs.GetReg(inst.Rm)
	c.regs.SetThumbState(target&1 != 0)
	c.regs.SetPCRaw(target)
}

func (c *CPU) execPSRTransfer(inst ARMPSRTransferInstruction) {
	if !inst.ToPSR {
		if inst.SPSR {
			c.regs.SetReg(inst.Rd, c.regs.GetSPSR())
		} else {
			c.regs.SetReg(inst.Rd, c.regs.GetCPSR())
		}
		return
	}

	var operand uint32
	if inst.I {
		operand, _ = shift(uint32(inst.Nn), ROR, uint32(inst.Is)*2, false, c.regs.GetFlagC())
	} else {
		operand = c.regs.GetReg(inst.Rm)
	}

	if inst.SPSR {
		cur := c.regs.GetSPSR()
		if inst.FlagsOnly {
			cur = (cur & 0x0FFFFFFF) | (operand & 0xF0000000)
		} else {
			cur = operand
		}
		c.regs.SetSPSR(cur)
		return
	}

	privileged := c.regs.GetMode() != USRMode
	if inst.FlagsOnly {
		c.regs.SetCPSR((c.regs.GetCPSR() & 0x0FFFFFFF)|(operand & 0xF0000000), true)
		return
	}
	c.regs.SetCPSR(operand, privileged)
}

func (c *CPU) loadStoreOffset(inst ARMLoadStoreInstruction) uint32 {
	if !inst.I {
		return inst.Offset
	}
	rm := c.regs.GetReg(inst.Rm)
	result, _ := shift(rm, inst.ShiftType, uint32(inst.Is), true, c.regs.GetFlagC())
	return result
}

func (c *CPU) execLoadStore(inst ARMLoadStoreInstruction) {
	base := c.regs.GetReg(inst.Rn)
	offset := c.loadStoreOffset(inst)

	var addr uint32
	if inst.U {
		addr = base + offset
	} else {
		addr = base - offset
	}

	effective := base
	if inst.P {
		effective = addr
	}

	if inst.L {
		var value uint32
		if inst.B {
			value = uint32(c.bus.Read8(effective))
		} else {
			value = c.bus.Read32(effective)
		}
		if inst.Rd == 15 {
			c.regs.SetPCRaw(value)
		} else {
			c.regs.SetReg(inst.Rd, value)
		}
	} else {
		value := c.regs.GetReg(inst.Rd)
		if inst.Rd == 15 {
			value = c.regs.GetReg(15) + 4
		}
		if inst.B {
			c.bus.Write8(effective, uint8(value))
		} else {
			c.bus.Write32(effective, value)
		}
	}

	if (!inst.P || inst.W) && inst.Rn != 15 {
		c.regs.SetReg(inst.Rn, addr)
	}
}

func (c *CPU) execHalfwordTransfer(inst ARMHalfwordDataTransferInstruction) {
	base := c.regs.GetReg(inst.Rn)

	var offset uint32
	if inst.I {
		offset = uint32(inst.Offs)
	} else {
		offset = c.regs.GetReg(inst.Rm)
	}

	var addr uint32
	if inst.U {
		addr = base + offset
	} else {
		addr = base - offset
	}

	effective := base
	if inst.P {
		effective = addr
	}

	if inst.L {
		var value uint32
		switch {
		case inst.S && inst.H: // LDRSH
			value = uint32(int32(int16(c.bus.Read16(effective))))
		case inst.S && !inst.H: // LDRSB
			value = uint32(int32(int8(c.bus.Read8(effective))))
		default: // LDRH
			value = uint32(c.bus.Read16(effective))
		}
		c.regs.SetReg(inst.Rd, value)
	} else {
		c.bus.Write16(effective, uint16(c.regs.GetReg(inst.Rd)))
	}

	if !inst.P || inst.W {
		if inst.Rn != 15 {
			c.regs.SetReg(inst.Rn, addr)
		}
	}
}

func (c *CPU) execBranch(inst ARMBranchInstruction, instrAddr uint32) {
	var signed int32
	if inst.TargetAddr&0x02000000 != 0 {
		signed = int32(inst.TargetAddr | 0xFC000000)
	} else {
		signed = int32(inst.TargetAddr)
	}
	target := uint32(int32(instrAddr+8) + signed)
	if inst.Link {
		c.regs.SetReg(14, instrAddr+4)
	}
	c.regs.SetPCRaw(target)
}

// execBlockDataTransfer implements LDM/STM for all four addressing modes.
// An empty register list is architecturally unpredictable; this core takes
// the canonical behaviour documented for the family (transfer r15 alone,
// base advances by a uniform 0x40 in the direction the addressing mode
// implies) rather than either direction's inconsistent source quirk.
func (c *CPU) execBlockDataTransfer(inst ARMBlockDataTransferInstruction, instrAddr uint32) {
	base := c.regs.GetReg(inst.Rn)

	if inst.RegisterList == 0 {
		addr := base
		if !inst.U {
			addr -= 0x40
		}
		if inst.L {
			v := c.bus.Read32(addr)
			c.regs.SetPCRaw(v)
		} else {
			c.bus.Write32(addr, instrAddr+12)
		}
		if inst.U {
			c.regs.SetReg(inst.Rn, base+0x40)
		} else {
			c.regs.SetReg(inst.Rn, base-0x40)
		}
		return
	}

	count := 0
	for i := 0; i < 16; i++ {
		if inst.RegisterList&(1<<uint(i)) != 0 {
			count++
		}
	}

	var start uint32
	if inst.U {
		start = base
		if inst.P {
			start += 4
		}
	} else {
		start = base - uint32(count)*4
		if inst.P {
			// already at the first pre-decrement slot
		} else {
			start += 4
		}
	}

	useUserBank := inst.S && !(inst.L && inst.RegisterList&(1<<15) != 0)

	addr := start
	for i := 0; i < 16; i++ {
		if inst.RegisterList&(1<<uint(i)) == 0 {
			continue
		}
		reg := uint8(i)
		if inst.L {
			v := c.bus.Read32(addr)
			if reg == 15 {
				c.regs.SetPCRaw(v)
				if inst.S {
					c.regs.SetCPSR(c.regs.GetSPSR(), true)
				}
			} else if useUserBank {
				c.regs.SetRegUser(reg, v)
			} else {
				c.regs.SetReg(reg, v)
			}
		} else {
			var v uint32
			switch {
			case reg == 15:
				v = instrAddr + 12
			case reg == inst.Rn && inst.W && inst.RegisterList&((1<<inst.Rn)-1) != 0:
				// base in the list but not first: store the written-back base.
				if inst.U {
					v = base + uint32(count)*4
				} else {
					v = base - uint32(count)*4
				}
			case useUserBank:
				v = c.regs.GetRegUser(reg)
			default:
				v = c.regs.GetReg(reg)
			}
			c.bus.Write32(addr, v)
		}
		addr += 4
	}

	if inst.W {
		baseInList := inst.RegisterList&(1<<inst.Rn) != 0
		if inst.U {
			if !inst.L || !baseInList {
				c.regs.SetReg(inst.Rn, base+uint32(count)*4)
			}
		} else {
			if !inst.L || !baseInList {
				c.regs.SetReg(inst.Rn, base-uint32(count)*4)
			}
		}
	}
}

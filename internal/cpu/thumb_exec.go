package cpu

import "GoBA/util/dbg"

// executeThumb decodes and runs one Thumb-mode halfword. instrAddr is the
// address the halfword was fetched from.
func (c *CPU) executeThumb(instr uint16, instrAddr uint32) {
	switch inst := decodeThumb(instr).(type) {
	case ThumbMoveShiftedReg:
		c.thumbMoveShifted(inst)
	case ThumbAddSubtract:
		c.thumbAddSubtract(inst)
	case ThumbALUImmediate:
		c.thumbALUImmediate(inst)
	case ThumbALUOperation:
		c.thumbALUOperation(inst)
	case ThumbHiRegOp:
		c.thumbHiRegOp(inst)
	case ThumbPCRelativeLoad:
		c.thumbPCRelativeLoad(inst, instrAddr)
	case ThumbLoadStoreRegOffset:
		c.thumbLoadStoreRegOffset(inst)
	case ThumbLoadStoreSignExtended:
		c.thumbLoadStoreSignExtended(inst)
	case ThumbLoadStoreImmOffset:
		c.thumbLoadStoreImmOffset(inst)
	case ThumbLoadStoreHalfword:
		c.thumbLoadStoreHalfword(inst)
	case ThumbSPRelativeLoadStore:
		c.thumbSPRelativeLoadStore(inst)
	case ThumbLoadAddress:
		c.thumbLoadAddress(inst, instrAddr)
	case ThumbAddOffsetToSP:
		c.thumbAddOffsetToSP(inst)
	case ThumbPushPop:
		c.thumbPushPop(inst)
	case ThumbMultipleLoadStore:
		c.thumbMultipleLoadStore(inst)
	case ThumbConditionalBranch:
		c.thumbConditionalBranch(inst, instrAddr)
	case ThumbSoftwareInterrupt:
		c.raiseException(SVCMode, true, true, vectorSWI)
	case ThumbUnconditionalBranch:
		c.thumbUnconditionalBranch(inst, instrAddr)
	case ThumbLongBranchLink:
		c.thumbLongBranchLink(inst, instrAddr)
	case ThumbUndefined:
		dbg.Warnf("undefined Thumb instruction 0x%04X at 0x%08X\n", inst.Raw, instrAddr)
		c.raiseException(UNDMode, false, true, vectorUndefined)
	}
}

func (c *CPU) thumbMoveShifted(inst ThumbMoveShiftedReg) {
	rs := c.regs.GetReg(inst.Rs)
	result, carry := shift(rs, inst.Op, uint32(inst.Offset5), true, c.regs.GetFlagC())
	c.regs.SetReg(inst.Rd, result)
	c.regs.SetFlagC(carry)
	c.regs.SetFlagN(result&0x80000000 != 0)
	c.regs.SetFlagZ(result == 0)
}

func (c *CPU) thumbAddSubtract(inst ThumbAddSubtract) {
	rs := c.regs.GetReg(inst.Rs)
	var operand uint32
	if inst.Immediate {
		operand = uint32(inst.RnOrImm)
	} else {
		operand = c.regs.GetReg(inst.RnOrImm)
	}

	var result uint32
	var carry, overflow bool
	if inst.Sub {
		result = rs - operand
		carry = rs >= operand
		overflow = ((rs ^ operand) & (rs ^ result) & 0x80000000) != 0
	} else {
		wide := uint64(rs) + uint64(operand)
		result = uint32(wide)
		carry = wide > 0xFFFFFFFF
		overflow = ((rs ^ result) & (operand ^ result) & 0x80000000) != 0
	}

	c.regs.SetReg(inst.Rd, result)
	c.regs.SetFlagN(result&0x80000000 != 0)
	c.regs.SetFlagZ(result == 0)
	c.regs.SetFlagC(carry)
	c.regs.SetFlagV(overflow)
}

func (c *CPU) thumbALUImmediate(inst ThumbALUImmediate) {
	rd := c.regs.GetReg(inst.Rd)
	imm := uint32(inst.Imm8)

	switch inst.Op {
	case 0: // MOV
		c.regs.SetReg(inst.Rd, imm)
		c.regs.SetFlagN(false)
		c.regs.SetFlagZ(imm == 0)
	case 1: // CMP
		result := rd - imm
		c.regs.SetFlagN(result&0x80000000 != 0)
		c.regs.SetFlagZ(result == 0)
		c.regs.SetFlagC(rd >= imm)
		c.regs.SetFlagV(((rd ^ imm) & (rd ^ result) & 0x80000000) != 0)
	case 2: // ADD
		wide := uint64(rd) + uint64(imm)
		result := uint32(wide)
		c.regs.SetReg(inst.Rd, result)
		c.regs.SetFlagN(result&0x80000000 != 0)
		c.regs.SetFlagZ(result == 0)
		c.regs.SetFlagC(wide > 0xFFFFFFFF)
		c.regs.SetFlagV(((rd ^ result) & (imm ^ result) & 0x80000000) != 0)
	case 3: // SUB
		result := rd - imm
		c.regs.SetReg(inst.Rd, result)
		c.regs.SetFlagN(result&0x80000000 != 0)
		c.regs.SetFlagZ(result == 0)
		c.regs.SetFlagC(rd >= imm)
		c.regs.SetFlagV(((rd ^ imm) & (rd ^ result) & 0x80000000) != 0)
	}
}

// thumbALUOperation implements format 4: AND,EOR,LSL,LSR,ASR,ADC,SBC,ROR,
// TST,NEG,CMP,CMN,ORR,MUL,BIC,MVN, in that fixed opcode order.
func (c *CPU) thumbALUOperation(inst ThumbALUOperation) {
	rd := c.regs.GetReg(inst.Rd)
	rs := c.regs.GetReg(inst.Rs)
	var result uint32
	writesResult := true
	carry := c.regs.GetFlagC()

	switch inst.Op {
	case 0: // AND
		result = rd & rs
	case 1: // EOR
		result = rd ^ rs
	case 2: // LSL
		result, carry = shift(rd, LSL, rs&0xFF, false, carry)
	case 3: // LSR
		result, carry = shift(rd, LSR, rs&0xFF, false, carry)
	case 4: // ASR
		result, carry = shift(rd, ASR, rs&0xFF, false, carry)
	case 5: // ADC
		wide := uint64(rd) + uint64(rs) + uint64(b2u(carry))
		result = uint32(wide)
		carry = wide > 0xFFFFFFFF
		c.regs.SetFlagV(((rd ^ result) & (rs ^ result) & 0x80000000) != 0)
	case 6: // SBC
		wide := uint64(rd) + uint64(0xFFFFFFFF-rs) + uint64(b2u(carry))
		result = uint32(wide)
		carry = wide > 0xFFFFFFFF
		c.regs.SetFlagV(((rd ^ rs) & (rd ^ result) & 0x80000000) != 0)
	case 7: // ROR
		result, carry = shift(rd, ROR, rs&0xFF, false, carry)
	case 8: // TST
		result = rd & rs
		writesResult = false
	case 9: // NEG
		result = 0 - rs
		carry = rs == 0
		c.regs.SetFlagV((rs & result & 0x80000000) != 0)
	case 10: // CMP
		result = rd - rs
		writesResult = false
		carry = rd >= rs
		c.regs.SetFlagV(((rd ^ rs) & (rd ^ result) & 0x80000000) != 0)
	case 11: // CMN
		wide := uint64(rd) + uint64(rs)
		result = uint32(wide)
		writesResult = false
		carry = wide > 0xFFFFFFFF
		c.regs.SetFlagV(((rd ^ result) & (rs ^ result) & 0x80000000) != 0)
	case 12: // ORR
		result = rd | rs
	case 13: // MUL
		result = rd * rs
	case 14: // BIC
		result = rd &^ rs
	case 15: // MVN
		result = ^rs
	}

	if writesResult {
		c.regs.SetReg(inst.Rd, result)
	}
	c.regs.SetFlagC(carry)
	c.regs.SetFlagN(result&0x80000000 != 0)
	c.regs.SetFlagZ(result == 0)
}

func (c *CPU) thumbHiRegOp(inst ThumbHiRegOp) {
	rs := c.regs.GetReg(inst.Rs)
	switch inst.Op {
	case 0: // ADD
		c.regs.SetReg(inst.Rd, c.regs.GetReg(inst.Rd)+rs)
	case 1: // CMP
		rd := c.regs.GetReg(inst.Rd)
		result := rd - rs
		c.regs.SetFlagN(result&0x80000000 != 0)
		c.regs.SetFlagZ(result == 0)
		c.regs.SetFlagC(rd >= rs)
		c.regs.SetFlagV(((rd ^ rs) & (rd ^ result) & 0x80000000) != 0)
	case 2: // MOV
		c.regs.SetReg(inst.Rd, rs)
	case 3: // BX (and BLX in later cores; this architecture only has BX)
		c.regs.SetThumbState(rs&1 != 0)
		c.regs.SetPCRaw(rs)
	}
}

func (c *CPU) thumbPCRelativeLoad(inst ThumbPCRelativeLoad, instrAddr uint32) {
	base := (instrAddr + 4) &^ 0x3
	addr := base + uint32(inst.Word8)*4
	c.regs.SetReg(inst.Rd, c.bus.Read32(addr))
}

func (c *CPU) thumbLoadStoreRegOffset(inst ThumbLoadStoreRegOffset) {
	addr := c.regs.GetReg(inst.Rb) + c.regs.GetReg(inst.Ro)
	if inst.Load {
		if inst.Byte {
			c.regs.SetReg(inst.Rd, uint32(c.bus.Read8(addr)))
		} else {
			c.regs.SetReg(inst.Rd, c.bus.Read32(addr))
		}
		return
	}
	if inst.Byte {
		c.bus.Write8(addr, uint8(c.regs.GetReg(inst.Rd)))
	} else {
		c.bus.Write32(addr, c.regs.GetReg(inst.Rd))
	}
}

func (c *CPU) thumbLoadStoreSignExtended(inst ThumbLoadStoreSignExtended) {
	addr := c.regs.GetReg(inst.Rb) + c.regs.GetReg(inst.Ro)
	switch {
	case !inst.SFlag && !inst.HFlag: // STRH
		c.bus.Write16(addr, uint16(c.regs.GetReg(inst.Rd)))
	case !inst.SFlag && inst.HFlag: // LDRH
		c.regs.SetReg(inst.Rd, uint32(c.bus.Read16(addr)))
	case inst.SFlag && !inst.HFlag: // LDSB
		c.regs.SetReg(inst.Rd, uint32(int32(int8(c.bus.Read8(addr)))))
	case inst.SFlag && inst.HFlag: // LDSH
		c.regs.SetReg(inst.Rd, uint32(int32(int16(c.bus.Read16(addr)))))
	}
}

func (c *CPU) thumbLoadStoreImmOffset(inst ThumbLoadStoreImmOffset) {
	base := c.regs.GetReg(inst.Rb)
	var addr uint32
	if inst.Byte {
		addr = base + uint32(inst.Offset5)
	} else {
		addr = base + uint32(inst.Offset5)*4
	}

	if inst.Load {
		if inst.Byte {
			c.regs.SetReg(inst.Rd, uint32(c.bus.Read8(addr)))
		} else {
			c.regs.SetReg(inst.Rd, c.bus.Read32(addr))
		}
		return
	}
	if inst.Byte {
		c.bus.Write8(addr, uint8(c.regs.GetReg(inst.Rd)))
	} else {
		c.bus.Write32(addr, c.regs.GetReg(inst.Rd))
	}
}

func (c *CPU) thumbLoadStoreHalfword(inst ThumbLoadStoreHalfword) {
	addr := c.regs.GetReg(inst.Rb) + uint32(inst.Offset5)*2
	if inst.Load {
		c.regs.SetReg(inst.Rd, uint32(c.bus.Read16(addr)))
		return
	}
	c.bus.Write16(addr, uint16(c.regs.GetReg(inst.Rd)))
}

func (c *CPU) thumbSPRelativeLoadStore(inst ThumbSPRelativeLoadStore) {
	addr := c.regs.GetReg(13) + uint32(inst.Word8)*4
	if inst.Load {
		c.regs.SetReg(inst.Rd, c.bus.Read32(addr))
		return
	}
	c.bus.Write32(addr, c.regs.GetReg(inst.Rd))
}

func (c *CPU) thumbLoadAddress(inst ThumbLoadAddress, instrAddr uint32) {
	var base uint32
	if inst.SP {
		base = c.regs.GetReg(13)
	} else {
		base = (instrAddr + 4) &^ 0x3
	}
	c.regs.SetReg(inst.Rd, base+uint32(inst.Word8)*4)
}

func (c *CPU) thumbAddOffsetToSP(inst ThumbAddOffsetToSP) {
	sp := c.regs.GetReg(13)
	offset := uint32(inst.Word7) * 4
	if inst.Negative {
		c.regs.SetReg(13, sp-offset)
	} else {
		c.regs.SetReg(13, sp+offset)
	}
}

func (c *CPU) thumbPushPop(inst ThumbPushPop) {
	if inst.Load {
		addr := c.regs.GetReg(13)
		for i := 0; i < 8; i++ {
			if inst.RegList&(1<<uint(i)) != 0 {
				c.regs.SetReg(uint8(i), c.bus.Read32(addr))
				addr += 4
			}
		}
		if inst.LoadPC {
			c.regs.SetPCRaw(c.bus.Read32(addr))
			addr += 4
		}
		c.regs.SetReg(13, addr)
		return
	}

	count := 0
	for i := 0; i < 8; i++ {
		if inst.RegList&(1<<uint(i)) != 0 {
			count++
		}
	}
	if inst.StoreLR {
		count++
	}
	addr := c.regs.GetReg(13) - uint32(count)*4
	c.regs.SetReg(13, addr)

	for i := 0; i < 8; i++ {
		if inst.RegList&(1<<uint(i)) != 0 {
			c.bus.Write32(addr, c.regs.GetReg(uint8(i)))
			addr += 4
		}
	}
	if inst.StoreLR {
		c.bus.Write32(addr, c.regs.GetReg(14))
	}
}

func (c *CPU) thumbMultipleLoadStore(inst ThumbMultipleLoadStore) {
	addr := c.regs.GetReg(inst.Rb)
	baseInList := inst.RegList&(1<<inst.Rb) != 0
	count := 0
	for i := 0; i < 8; i++ {
		if inst.RegList&(1<<uint(i)) != 0 {
			count++
		}
	}

	for i := 0; i < 8; i++ {
		if inst.RegList&(1<<uint(i)) == 0 {
			continue
		}
		if inst.Load {
			c.regs.SetReg(uint8(i), c.bus.Read32(addr))
		} else {
			c.bus.Write32(addr, c.regs.GetReg(uint8(i)))
		}
		addr += 4
	}

	if !inst.Load || !baseInList {
		c.regs.SetReg(inst.Rb, c.regs.GetReg(inst.Rb)+uint32(count)*4)
	}
}

func (c *CPU) thumbConditionalBranch(inst ThumbConditionalBranch, instrAddr uint32) {
	if !c.checkConditionArm(inst.Cond) {
		return
	}
	offset := int32(int8(inst.Offset8)) * 2
	c.regs.SetPCRaw(uint32(int32(instrAddr+4) + offset))
}

func (c *CPU) thumbUnconditionalBranch(inst ThumbUnconditionalBranch, instrAddr uint32) {
	offset := int32(inst.Offset11) << 1
	if inst.Offset11&0x400 != 0 {
		offset |= int32(-1) << 12
	}
	c.regs.SetPCRaw(uint32(int32(instrAddr+4) + offset))
}

func (c *CPU) thumbLongBranchLink(inst ThumbLongBranchLink, instrAddr uint32) {
	if !inst.High {
		offset := int32(inst.Offset11) << 12
		if inst.Offset11&0x400 != 0 {
			offset |= int32(-1) << 23
		}
		c.regs.SetReg(14, uint32(int32(instrAddr+4)+offset))
		return
	}
	lr := c.regs.GetReg(14)
	next := instrAddr + 2
	target := lr + uint32(inst.Offset11)<<1
	c.regs.SetPCRaw(target)
	c.regs.SetReg(14, next|1)
}

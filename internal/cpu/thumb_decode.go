package cpu

// decodeThumb classifies a raw 16-bit Thumb-mode halfword into one of the 19
// instruction formats. Classification walks the top bits from most to least
// significant, matching the layered encoding the instruction set actually
// uses (format 1 and format 2 share their top 3 bits, for instance, and are
// told apart only by bits 12-11).
func decodeThumb(instr uint16) interface{} {
	switch {
	case instr&0xF800 == 0x1800: // 000 11 ...: add/subtract
		return ThumbAddSubtract{
			Immediate: instr&0x0400 != 0,
			Sub:       instr&0x0200 != 0,
			RnOrImm:   uint8((instr >> 6) & 0x7),
			Rs:        uint8((instr >> 3) & 0x7),
			Rd:        uint8(instr & 0x7),
		}

	case instr&0xE000 == 0x0000: // 000: move shifted register
		return ThumbMoveShiftedReg{
			Op:      ARMShiftType((instr >> 11) & 0x3),
			Offset5: uint8((instr >> 6) & 0x1F),
			Rs:      uint8((instr >> 3) & 0x7),
			Rd:      uint8(instr & 0x7),
		}

	case instr&0xE000 == 0x2000: // 001: move/compare/add/subtract immediate
		return ThumbALUImmediate{
			Op:   uint8((instr >> 11) & 0x3),
			Rd:   uint8((instr >> 8) & 0x7),
			Imm8: uint8(instr & 0xFF),
		}

	case instr&0xFC00 == 0x4000: // 010000: ALU operation
		return ThumbALUOperation{
			Op: uint8((instr >> 6) & 0xF),
			Rs: uint8((instr >> 3) & 0x7),
			Rd: uint8(instr & 0x7),
		}

	case instr&0xFC00 == 0x4400: // 010001: hi register ops / BX
		h1 := (instr >> 7) & 1
		h2 := (instr >> 6) & 1
		return ThumbHiRegOp{
			Op: uint8((instr >> 8) & 0x3),
			Rs: uint8(h2<<3) | uint8((instr>>3)&0x7),
			Rd: uint8(h1<<3) | uint8(instr&0x7),
		}

	case instr&0xF800 == 0x4800: // 01001: PC-relative load
		return ThumbPCRelativeLoad{
			Rd:    uint8((instr >> 8) & 0x7),
			Word8: uint8(instr & 0xFF),
		}

	case instr&0xF200 == 0x5000: // 0101 ..0: load/store with register offset
		return ThumbLoadStoreRegOffset{
			Load: instr&0x0800 != 0,
			Byte: instr&0x0400 != 0,
			Ro:   uint8((instr >> 6) & 0x7),
			Rb:   uint8((instr >> 3) & 0x7),
			Rd:   uint8(instr & 0x7),
		}

	case instr&0xF200 == 0x5200: // 0101 ..1: load/store sign-extended byte/halfword
		return ThumbLoadStoreSignExtended{
			HFlag: instr&0x0800 != 0,
			SFlag: instr&0x0400 != 0,
			Ro:    uint8((instr >> 6) & 0x7),
			Rb:    uint8((instr >> 3) & 0x7),
			Rd:    uint8(instr & 0x7),
		}

	case instr&0xE000 == 0x6000: // 011: load/store with immediate offset
		return ThumbLoadStoreImmOffset{
			Byte:    instr&0x1000 != 0,
			Load:    instr&0x0800 != 0,
			Offset5: uint8((instr >> 6) & 0x1F),
			Rb:      uint8((instr >> 3) & 0x7),
			Rd:      uint8(instr & 0x7),
		}

	case instr&0xF000 == 0x8000: // 1000: load/store halfword
		return ThumbLoadStoreHalfword{
			Load:    instr&0x0800 != 0,
			Offset5: uint8((instr >> 6) & 0x1F),
			Rb:      uint8((instr >> 3) & 0x7),
			Rd:      uint8(instr & 0x7),
		}

	case instr&0xF000 == 0x9000: // 1001: SP-relative load/store
		return ThumbSPRelativeLoadStore{
			Load:  instr&0x0800 != 0,
			Rd:    uint8((instr >> 8) & 0x7),
			Word8: uint8(instr & 0xFF),
		}

	case instr&0xF000 == 0xA000: // 1010: load address
		return ThumbLoadAddress{
			SP:    instr&0x0800 != 0,
			Rd:    uint8((instr >> 8) & 0x7),
			Word8: uint8(instr & 0xFF),
		}

	case instr&0xFF00 == 0xB000: // 10110000: add offset to SP
		return ThumbAddOffsetToSP{
			Negative: instr&0x80 != 0,
			Word7:    uint8(instr & 0x7F),
		}

	case instr&0xF600 == 0xB400: // 1011 L10 : push/pop
		load := instr&0x0800 != 0
		return ThumbPushPop{
			Load:    load,
			StoreLR: !load && instr&0x0100 != 0,
			LoadPC:  load && instr&0x0100 != 0,
			RegList: uint8(instr & 0xFF),
		}

	case instr&0xF000 == 0xC000: // 1100: multiple load/store
		return ThumbMultipleLoadStore{
			Load:    instr&0x0800 != 0,
			Rb:      uint8((instr >> 8) & 0x7),
			RegList: uint8(instr & 0xFF),
		}

	case instr&0xFF00 == 0xDF00: // 11011111: software interrupt
		return ThumbSoftwareInterrupt{Value8: uint8(instr & 0xFF)}

	case instr&0xF000 == 0xD000: // 1101: conditional branch
		return ThumbConditionalBranch{
			Cond:    ARMCondition((instr >> 8) & 0xF),
			Offset8: uint8(instr & 0xFF),
		}

	case instr&0xF800 == 0xE000: // 11100: unconditional branch
		return ThumbUnconditionalBranch{Offset11: instr & 0x7FF}

	case instr&0xF000 == 0xF000: // 1111: long branch with link
		return ThumbLongBranchLink{
			High:     instr&0x0800 != 0,
			Offset11: instr & 0x7FF,
		}

	default:
		return ThumbUndefined{Raw: instr}
	}
}

package cpu

// decodeArm classifies a raw 32-bit ARM-mode word into one of the typed
// instruction variants defined in arm_instructions.go. Classification happens with the fixed bitmasks
// the architecture reference defines for each instruction class; order
// matters; several classes (multiply, multiply-long, swap, halfword
// transfer, PSR transfer, BX) live inside bit patterns that would otherwise
// also match the data-processing or single-data-transfer classes, so the
// more specific masks are always tried first.
func decodeArm(instr uint32) interface{} {
	cond := ARMCondition((instr >> 28) & 0xF)
	base := ARMInstruction{Cond: cond}

	switch {
	case instr&0x0FFFFFF0 == 0x012FFF10: // BX Rm
		return ARMBranchExchangeInstruction{
			ARMInstruction: base,
			Rm:             uint8(instr & 0xF),
		}

	case instr&0x0FBF0FFF == 0x010F0000: // MRS Rd, CPSR/SPSR
		return ARMPSRTransferInstruction{
			ARMInstruction: base,
			ToPSR:          false,
			SPSR:           (instr>>22)&1 != 0,
			Rd:             uint8((instr >> 12) & 0xF),
		}

	case instr&0x0DB0F000 == 0x0120F000: // MSR CPSR/SPSR, Rm or #imm
		return ARMPSRTransferInstruction{
			ARMInstruction: base,
			ToPSR:          true,
			SPSR:           (instr>>22)&1 != 0,
			I:              (instr>>25)&1 != 0,
			FlagsOnly:      (instr>>16)&1 == 0,
			Rm:             uint8(instr & 0xF),
			Is:             uint8((instr >> 8) & 0xF),
			Nn:             uint8(instr & 0xFF),
		}

	case instr&0x0FC000F0 == 0x00000090: // MUL/MLA
		return ARMMultiplyInstruction{
			ARMInstruction: base,
			A:              (instr>>21)&1 != 0,
			S:              (instr>>20)&1 != 0,
			Rd:             uint8((instr >> 16) & 0xF),
			Rn:             uint8((instr >> 12) & 0xF),
			Rs:             uint8((instr >> 8) & 0xF),
			Rm:             uint8(instr & 0xF),
		}

	case instr&0x0F8000F0 == 0x00800090: // UMULL/UMLAL/SMULL/SMLAL
		return ARMMultiplyLongInstruction{
			ARMInstruction: base,
			U:              (instr>>22)&1 != 0,
			A:              (instr>>21)&1 != 0,
			S:              (instr>>20)&1 != 0,
			RdHi:           uint8((instr >> 16) & 0xF),
			RdLo:           uint8((instr >> 12) & 0xF),
			Rs:             uint8((instr >> 8) & 0xF),
			Rm:             uint8(instr & 0xF),
		}

	case instr&0x0FB00FF0 == 0x01000090: // SWP/SWPB
		return ARMSingleDataSwapInstruction{
			ARMInstruction: base,
			B:              (instr>>22)&1 != 0,
			Rn:             uint8((instr >> 16) & 0xF),
			Rd:             uint8((instr >> 12) & 0xF),
			Rm:             uint8(instr & 0xF),
		}

	case instr&0x0E000090 == 0x00000090: // halfword/signed data transfer
		return ARMHalfwordDataTransferInstruction{
			ARMInstruction: base,
			P:              (instr>>24)&1 != 0,
			U:              (instr>>23)&1 != 0,
			I:              (instr>>22)&1 != 0,
			W:              (instr>>21)&1 != 0,
			L:              (instr>>20)&1 != 0,
			Rn:             uint8((instr >> 16) & 0xF),
			Rd:             uint8((instr >> 12) & 0xF),
			S:              (instr>>6)&1 != 0,
			H:              (instr>>5)&1 != 0,
			Rm:             uint8(instr & 0xF),
			Offs:           uint8(((instr>>8)&0xF)<<4 | (instr & 0xF)),
		}

	case instr&0x0E000010 == 0x06000010: // undefined instruction space
		return ARMUndefinedInstruction{ARMInstruction: base, Raw: instr}

	case (instr>>26)&0x3 == 0b01: // LDR/STR
		return ARMLoadStoreInstruction{
			ARMInstruction: base,
			I:              (instr>>25)&1 != 0,
			P:              (instr>>24)&1 != 0,
			U:              (instr>>23)&1 != 0,
			B:              (instr>>22)&1 != 0,
			W:              (instr>>21)&1 != 0,
			L:              (instr>>20)&1 != 0,
			Rn:             uint8((instr >> 16) & 0xF),
			Rd:             uint8((instr >> 12) & 0xF),
			Offset:         instr & 0xFFF,
			ShiftType:      ARMShiftType((instr >> 5) & 0x3),
			Is:             uint8((instr >> 7) & 0x1F),
			Rm:             uint8(instr & 0xF),
		}

	case (instr>>25)&0x7 == 0b100: // LDM/STM
		return ARMBlockDataTransferInstruction{
			ARMInstruction: base,
			P:              (instr>>24)&1 != 0,
			U:              (instr>>23)&1 != 0,
			S:              (instr>>22)&1 != 0,
			W:              (instr>>21)&1 != 0,
			L:              (instr>>20)&1 != 0,
			Rn:             uint8((instr >> 16) & 0xF),
			RegisterList:   uint16(instr & 0xFFFF),
		}

	case (instr>>25)&0x7 == 0b101: // B/BL
		offset := instr & 0x00FFFFFF
		if offset&0x00800000 != 0 {
			offset |= 0xFF000000
		}
		return ARMBranchInstruction{
			ARMInstruction: base,
			Link:           (instr>>24)&1 != 0,
			TargetAddr:     offset << 2,
		}

	case (instr>>24)&0xF == 0xF: // SWI
		return ARMSWIInstruction{
			ARMInstruction: base,
			Comment:        instr & 0x00FFFFFF,
		}

	case (instr>>26)&0x3 == 0b00: // data processing
		i := (instr>>25)&1 != 0
		r := (instr>>4)&1 != 0
		var is, rs, nn uint8
		switch {
		case i:
			is = uint8((instr >> 8) & 0xF)
			nn = uint8(instr & 0xFF)
		case r:
			rs = uint8((instr >> 8) & 0xF)
		default:
			is = uint8((instr >> 7) & 0x1F)
		}
		return ARMDataProcessingInstruction{
			ARMInstruction: base,
			I:              i,
			Opcode:         ARMDataProcessingOperation((instr >> 21) & 0xF),
			S:              (instr>>20)&1 != 0,
			Rn:             uint8((instr >> 16) & 0xF),
			Rd:             uint8((instr >> 12) & 0xF),
			ShiftType:      ARMShiftType((instr >> 5) & 0x3),
			R:              r,
			Is:             is,
			Rs:             rs,
			Nn:             nn,
			Rm:             uint8(instr & 0xF),
		}

	default:
		return ARMUndefinedInstruction{ARMInstruction: base, Raw: instr}
	}
}

package cpu

// The 19 Thumb instruction formats, decoded into one struct per format. Field
// names mirror the ARM reference manual's own naming for each format rather
// than a uniform scheme, since the formats don't share a common shape.

type ThumbMoveShiftedReg struct {
	Op      ARMShiftType
	Offset5 uint8
	Rs      uint8
	Rd      uint8
}

type ThumbAddSubtract struct {
	Immediate bool
	Sub       bool
	RnOrImm   uint8
	Rs        uint8
	Rd        uint8
}

type ThumbALUImmediate struct {
	Op   uint8 // 0=MOV,1=CMP,2=ADD,3=SUB
	Rd   uint8
	Imm8 uint8
}

type ThumbALUOperation struct {
	Op uint8 // 0..15, same ordering as the format-4 opcode table
	Rs uint8
	Rd uint8
}

type ThumbHiRegOp struct {
	Op uint8 // 0=ADD,1=CMP,2=MOV,3=BX
	Rs uint8 // full 0-15 register number (H bits folded in)
	Rd uint8
}

type ThumbPCRelativeLoad struct {
	Rd    uint8
	Word8 uint8
}

type ThumbLoadStoreRegOffset struct {
	Load bool
	Byte bool
	Ro   uint8
	Rb   uint8
	Rd   uint8
}

type ThumbLoadStoreSignExtended struct {
	HFlag bool // H bit
	SFlag bool // S bit
	Ro    uint8
	Rb    uint8
	Rd    uint8
}

type ThumbLoadStoreImmOffset struct {
	Byte    bool
	Load    bool
	Offset5 uint8
	Rb      uint8
	Rd      uint8
}

type ThumbLoadStoreHalfword struct {
	Load    bool
	Offset5 uint8
	Rb      uint8
	Rd      uint8
}

type ThumbSPRelativeLoadStore struct {
	Load  bool
	Rd    uint8
	Word8 uint8
}

type ThumbLoadAddress struct {
	SP    bool // false=PC, true=SP
	Rd    uint8
	Word8 uint8
}

type ThumbAddOffsetToSP struct {
	Negative bool
	Word7    uint8
}

type ThumbPushPop struct {
	Load       bool
	StoreLR    bool // PUSH only: also push LR
	LoadPC     bool // POP only: also pop PC
	RegList    uint8
}

type ThumbMultipleLoadStore struct {
	Load    bool
	Rb      uint8
	RegList uint8
}

type ThumbConditionalBranch struct {
	Cond    ARMCondition
	Offset8 uint8
}

type ThumbSoftwareInterrupt struct {
	Value8 uint8
}

type ThumbUnconditionalBranch struct {
	Offset11 uint16
}

type ThumbLongBranchLink struct {
	High     bool // false=first instruction (sets LR), true=second (branches)
	Offset11 uint16
}

type ThumbUndefined struct {
	Raw uint16
}

package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestCPU() (*CPU, *fakeBus) {
	bus := newFakeBus()
	return NewCPU(bus), bus
}

// Boundary scenario 1: LSR #0 immediate is architecturally LSR #32.
func TestMOVSShiftRegisterLSRImmediateZero(t *testing.T) {
	c, bus := newTestCPU()
	c.Reset()
	c.Registers().SetReg(0, 0x80000001)
	bus.loadARM(0x08000000, 0xE1B01020) // MOVS r1, r0, LSR #0

	c.Step()

	assert.Equal(t, uint32(0), c.Registers().GetReg(1))
	assert.True(t, c.Registers().GetFlagC())
	assert.False(t, c.Registers().GetFlagN())
	assert.True(t, c.Registers().GetFlagZ())
}

// Boundary scenario 2: ADC overflow.
func TestADCSOverflow(t *testing.T) {
	c, bus := newTestCPU()
	c.Reset()
	c.Registers().SetReg(0, 0x7FFFFFFF)
	c.Registers().SetReg(1, 0)
	c.Registers().SetFlagC(true)
	bus.loadARM(0x08000000, 0xE0B02001) // ADCS r2, r0, r1

	c.Step()

	assert.Equal(t, uint32(0x80000000), c.Registers().GetReg(2))
	assert.True(t, c.Registers().GetFlagN())
	assert.False(t, c.Registers().GetFlagZ())
	assert.False(t, c.Registers().GetFlagC())
	assert.True(t, c.Registers().GetFlagV())
}

// Boundary scenario 3: block store with the base register first in the list
// writes the base's old value, not its post-writeback value.
func TestSTMIABaseInList(t *testing.T) {
	c, bus := newTestCPU()
	c.Reset()
	c.Registers().SetReg(0, 0x02000000)
	c.Registers().SetReg(1, 0xAA)
	// STMIA r0!, {r0, r1}: cond AL, P=0,U=1,S=0,W=1,L=0, Rn=r0, list={r0,r1}
	bus.loadARM(0x08000000, 0xE8A00003)

	c.Step()

	assert.Equal(t, uint32(0x02000000), bus.Read32(0x02000000))
	assert.Equal(t, uint32(0xAA), bus.Read32(0x02000004))
	assert.Equal(t, uint32(0x02000008), c.Registers().GetReg(0))
}

// Boundary scenario 4: Thumb long branch with link, two-instruction pair.
func TestThumbLongBranchLink(t *testing.T) {
	c, bus := newTestCPU()
	c.Reset()
	c.Registers().SetThumbState(true)
	c.Registers().SetPCRaw(0x08000100)
	bus.loadThumb(0x08000100, 0xF7FF) // BL prefix, offset high = -1
	bus.loadThumb(0x08000102, 0xFF80) // BL suffix, offset low = 0x780

	c.Step()
	c.Step()

	assert.Equal(t, uint32(0x08000004), c.Registers().PCRaw())
	assert.Equal(t, uint32(0x08000105), c.Registers().GetReg(14))
}

func TestShifterIdempotence(t *testing.T) {
	for _, x := range []uint32{0, 1, 0x80000000, 0xFFFFFFFF, 0x12345678} {
		lsl0, _ := shift(x, LSL, 0, true, false)
		assert.Equal(t, x, lsl0, "LSL(%#x, 0) should be identity", x)

		ror32, _ := shift(x, ROR, 32, false, false)
		assert.Equal(t, x, ror32, "ROR(%#x, 32) should be identity", x)
	}
}

func TestCPSRModeAlwaysLegalAfterInstruction(t *testing.T) {
	c, bus := newTestCPU()
	c.Reset()
	bus.loadARM(0x08000000, 0xE1A00000) // MOV r0, r0 (NOP-equivalent)

	c.Step()

	legal := map[uint8]bool{USRMode: true, FIQMode: true, IRQMode: true, SVCMode: true, ABTMode: true, UNDMode: true, SYSMode: true}
	assert.True(t, legal[c.Registers().GetMode()])
}

func TestSWIEntersSupervisorModeAndVectors(t *testing.T) {
	c, bus := newTestCPU()
	c.Reset()
	bus.loadARM(0x08000000, 0xEF000000) // SWI #0

	c.Step()

	assert.Equal(t, uint8(SVCMode), c.Registers().GetMode())
	assert.Equal(t, uint32(0x08), c.Registers().PCRaw())
	assert.Equal(t, uint32(0x08000004), c.Registers().GetReg(14))
}

func TestPollIRQTakesVectorWhenUnmasked(t *testing.T) {
	c, bus := newTestCPU()
	c.Reset()
	c.Registers().SetIRQDisabled(false)
	bus.ie, bus.ifl, bus.ime = 1, 1, 1

	taken := c.PollIRQ()

	assert.True(t, taken)
	assert.Equal(t, uint8(IRQMode), c.Registers().GetMode())
	assert.Equal(t, uint32(0x18), c.Registers().PCRaw())
}

func TestPollIRQRespectsDisableBit(t *testing.T) {
	c, bus := newTestCPU()
	c.Reset()
	c.Registers().SetIRQDisabled(true)
	bus.ie, bus.ifl, bus.ime = 1, 1, 1

	assert.False(t, c.PollIRQ())
	assert.Equal(t, uint8(SYSMode), c.Registers().GetMode())
}

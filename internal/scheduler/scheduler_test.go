package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"GoBA/internal/bus"
	"GoBA/internal/cartridge"
	"GoBA/internal/cpu"
	"GoBA/internal/memory"
)

func newTestMachine(t *testing.T) (*bus.Bus, *cpu.CPU, *Scheduler) {
	t.Helper()
	biosData := make([]byte, memory.ExpectedSize)
	biosImg, err := memory.LoadBIOS(biosData)
	assert.NoError(t, err)

	rom := make([]byte, 0x1000)
	for i := 0; i+4 <= len(rom); i += 4 {
		// MOV r0, r0 (0xE1A00000), a NOP the core can spin on forever.
		rom[i], rom[i+1], rom[i+2], rom[i+3] = 0x00, 0x00, 0xA0, 0xE1
	}
	cart := cartridge.New(rom)

	b := bus.New(biosImg, memory.NewEWRAM(), memory.NewIWRAM(), cart)
	core := cpu.NewCPU(b)
	core.Reset()
	core.Registers().SetIRQDisabled(false)

	return b, core, New(b, core)
}

// Boundary scenario: a V-count interrupt at a programmed target line
// vectors the processor into IRQ mode at 0x18 on the very line it fires.
func TestVCountInterruptEntersIRQMode(t *testing.T) {
	b, core, sched := newTestMachine(t)

	const ioStart = 0x04000000
	const target = 80
	const dispstatVCounterIRQEnable = 1 << 5

	b.Write16(ioStart+0x004, target<<8|dispstatVCounterIRQEnable) // DISPSTAT
	b.Write16(ioStart+0x200, 1<<2)                                // IE: V-count
	b.Write16(ioStart+0x208, 1)                                   // IME

	const dotsPerLine = 308
	const maxIterations = dotsPerLine * (target + 1) * 2

	entered := false
	for i := 0; i < maxIterations; i++ {
		_, err := sched.Iterate()
		assert.NoError(t, err)
		if core.Registers().GetMode() == cpu.IRQMode {
			entered = true
			break
		}
	}

	assert.True(t, entered, "expected the core to take the V-count IRQ")
	// The iteration's first CPU step takes the IRQ at 0x18; its second step
	// executes the word at the vector, leaving PC one ARM word past it.
	assert.Equal(t, uint32(0x18+4), core.Registers().PCRaw())
}

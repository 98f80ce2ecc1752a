package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"GoBA/internal/cartridge"
	"GoBA/internal/memory"
)

func newTestBus() *Bus {
	biosData := make([]byte, memory.ExpectedSize)
	bios, _ := memory.LoadBIOS(biosData)
	cart := cartridge.New(make([]byte, 0x1000))
	return New(bios, memory.NewEWRAM(), memory.NewIWRAM(), cart)
}

// EWRAM and IWRAM both mirror across their entire address window.
func TestRAMMirroring(t *testing.T) {
	b := newTestBus()

	b.Write8(ewramStart, 0x42)
	assert.Equal(t, uint8(0x42), b.Read8(ewramStart+memory.EWRAM_SIZE))
	assert.Equal(t, uint8(0x42), b.Read8(ewramStart+memory.EWRAM_SIZE*3))

	b.Write8(iwramStart, 0x7A)
	assert.Equal(t, uint8(0x7A), b.Read8(iwramStart+memory.IWRAM_SIZE))
}

// A 32-bit write round-trips through a 32-bit read for every RAM region.
func TestWriteReadRoundTrip32(t *testing.T) {
	b := newTestBus()

	regions := []uint32{ewramStart, iwramStart}
	for _, base := range regions {
		b.Write32(base, 0xDEADBEEF)
		assert.Equal(t, uint32(0xDEADBEEF), b.Read32(base), "region 0x%08X", base)
	}
}

// Byte-level writes compose into the expected little-endian halfword/word.
func TestLittleEndianComposition(t *testing.T) {
	b := newTestBus()

	b.Write8(ewramStart, 0x11)
	b.Write8(ewramStart+1, 0x22)
	assert.Equal(t, uint16(0x2211), b.Read16(ewramStart))

	b.Write16(ewramStart+4, 0xBEEF)
	b.Write16(ewramStart+6, 0xDEAD)
	assert.Equal(t, uint32(0xDEADBEEF), b.Read32(ewramStart+4))
}

// IE/IF/IME round-trip through their MMIO offsets, and IF is write-1-to-clear.
func TestInterruptRegisters(t *testing.T) {
	b := newTestBus()

	b.Write16(ioStart+regIE, 0x0007)
	assert.Equal(t, uint16(0x0007), b.Read16(ioStart+regIE))

	b.RequestIRQ(0x0003)
	assert.Equal(t, uint16(0x0003), b.Read16(ioStart+regIF))

	b.Write16(ioStart+regIF, 0x0001) // clear only bit 0
	assert.Equal(t, uint16(0x0002), b.Read16(ioStart+regIF))

	b.Write16(ioStart+regIME, 1)
	assert.True(t, b.PendingIRQ())
}

// DMA and timer registers route through the owned sub-controllers rather
// than being stored flat on the bus.
func TestDMARegisterRoundTrip(t *testing.T) {
	b := newTestBus()

	b.Write32(ioStart+regDMA0SAD, 0x02001000)
	assert.Equal(t, uint32(0x02001000), b.dmac.ReadSAD(0))

	b.Write16(ioStart+regDMA0SAD+8, 4) // CNT_L
	assert.Equal(t, uint16(4), b.dmac.ReadCountL(0))
}

func TestTimerRegisterRoundTrip(t *testing.T) {
	b := newTestBus()

	b.Write16(ioStart+regTM0CNT_L, 0xFFF0)
	assert.Equal(t, uint16(0xFFF0), b.timers.ReadReload(0))
}

// The keypad register reflects the host-supplied state and ignores writes
// from the guest side.
func TestKeypadIsHostDrivenReadOnly(t *testing.T) {
	b := newTestBus()

	b.SetKeypad(0x000)
	assert.Equal(t, uint16(0x000), b.Read16(ioStart+regKeypad))

	b.Write16(ioStart+regKeypad, 0x3FF)
	assert.Equal(t, uint16(0x000), b.Read16(ioStart+regKeypad), "guest writes to KEYINPUT must be ignored")
}

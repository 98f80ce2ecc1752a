package ppu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeBus struct {
	irqs []uint16
}

func (b *fakeBus) Read8(addr uint32) uint8      { return 0 }
func (b *fakeBus) Read16(addr uint32) uint16    { return 0 }
func (b *fakeBus) Read32(addr uint32) uint32    { return 0 }
func (b *fakeBus) Write8(addr uint32, v uint8)  {}
func (b *fakeBus) Write16(addr uint32, v uint16) {}
func (b *fakeBus) Write32(addr uint32, v uint32) {}
func (b *fakeBus) RequestIRQ(mask uint16)        { b.irqs = append(b.irqs, mask) }
func (b *fakeBus) PendingIRQ() bool              { return false }

func tickLine(p *PPU) {
	for i := 0; i < dotsPerLine; i++ {
		_ = p.Tick()
	}
}

// VCOUNT cycles with period 228 and VBlank is set for exactly the
// documented range of scanlines, 160 through 226 inclusive.
func TestVCountCycleAndVBlankWindow(t *testing.T) {
	bus := &fakeBus{}
	p := New(bus)

	for line := 0; line < linesPerFrame; line++ {
		wantVBlank := p.vcount >= ScreenHeight && p.vcount <= 226
		gotVBlank := p.dispstat&(1<<dispstatVBlank) != 0
		assert.Equal(t, wantVBlank, gotVBlank, "line %d", line)
		tickLine(p)
	}

	assert.Equal(t, uint16(0), p.vcount, "VCOUNT must wrap back to 0 after 228 lines")
}

// A full frame is marked ready exactly once, on the transition into
// VCOUNT 227, and ConsumeFrame clears the flag.
func TestFrameReadyOnVCount227(t *testing.T) {
	bus := &fakeBus{}
	p := New(bus)

	for line := 0; line < linesPerFrame; line++ {
		assert.False(t, p.IsFrameReady())
		tickLine(p)
		if line == 226 {
			assert.True(t, p.IsFrameReady())
			p.ConsumeFrame()
			assert.False(t, p.IsFrameReady())
		}
	}
}

// HBlank is asserted for dots 240..307 of every line and raises its IRQ
// exactly once per line when enabled.
func TestHBlankWindowAndIRQ(t *testing.T) {
	bus := &fakeBus{}
	p := New(bus)
	p.dispstat |= 1 << dispstatHBlankIRQ

	for dot := 0; dot < dotsPerLine; dot++ {
		_ = p.Tick()
		// HBlank is raised while processing dot 240 and cleared again while
		// processing the line's last dot, so it reads true for [240, 306].
		wantHBlank := dot >= ScreenWidth && dot < dotsPerLine-1
		assert.Equal(t, wantHBlank, p.dispstat&(1<<dispstatHBlank) != 0, "dot %d", dot)
	}

	assert.Equal(t, []uint16{1 << 1}, bus.irqs)
}

// V-count-match IRQ fires on the rising edge of VCOUNT==target, once.
func TestVCounterMatchIRQ(t *testing.T) {
	bus := &fakeBus{}
	p := New(bus)
	p.dispstat = (80 << 8) | (1 << dispstatVCounterIRQ)

	for line := 0; line < linesPerFrame; line++ {
		tickLine(p)
	}

	assert.Equal(t, []uint16{1 << 2}, bus.irqs)
}

// Forced blank overrides normal rendering with a fixed white pixel,
// regardless of DISPCNT's background mode bits.
func TestForcedBlankFillsWhite(t *testing.T) {
	bus := &fakeBus{}
	p := New(bus)
	p.dispcnt = 0x80 | 5 // forced blank + an otherwise-unsupported mode

	err := p.drawPixel(0, 0)

	assert.NoError(t, err)
	assert.Equal(t, uint16(0xFFFF), p.Frame[0])
}

// An unsupported background mode without forced-blank is a hard error.
func TestUnknownBgModeError(t *testing.T) {
	bus := &fakeBus{}
	p := New(bus)
	p.dispcnt = 5

	err := p.drawPixel(0, 0)

	assert.Error(t, err)
}

// Mode 3 is a direct 16bpp bitmap: VRAM bytes map straight to the frame.
func TestMode3BitmapPixel(t *testing.T) {
	bus := &fakeBus{}
	p := New(bus)
	p.dispcnt = 3
	p.WriteVRAM8(0, 0x1F) // low byte: R=0x1F
	p.WriteVRAM8(1, 0x00)

	err := p.drawPixel(0, 0)

	assert.NoError(t, err)
	assert.Equal(t, uint16(0x1F<<10), p.Frame[0])
}

package timer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeBus struct {
	irqs []uint16
}

func (b *fakeBus) Read8(addr uint32) uint8    { return 0 }
func (b *fakeBus) Read16(addr uint32) uint16  { return 0 }
func (b *fakeBus) Read32(addr uint32) uint32  { return 0 }
func (b *fakeBus) Write8(addr uint32, v uint8)   {}
func (b *fakeBus) Write16(addr uint32, v uint16) {}
func (b *fakeBus) Write32(addr uint32, v uint32) {}
func (b *fakeBus) RequestIRQ(mask uint16)        { b.irqs = append(b.irqs, mask) }
func (b *fakeBus) PendingIRQ() bool              { return false }

// Chained count-up: timer 1 advances once for every overflow of timer 0,
// which with prescaler 1 and a reload of 0xFFFE overflows every 2 ticks.
func TestCountUpChaining(t *testing.T) {
	bus := &fakeBus{}
	c := New(bus)

	c.WriteReload(0, 0xFFFE)
	c.WriteControl(0, 1<<7) // start, prescaler 1, no IRQ

	c.WriteReload(1, 0)
	c.WriteControl(1, 1<<7|1<<2) // start, count-up

	const overflows = 5
	for i := 0; i < overflows*2; i++ {
		c.Step()
	}

	assert.Equal(t, uint16(overflows), c.ReadCounter(1))
}

func TestOverflowReloadsAndRaisesIRQ(t *testing.T) {
	bus := &fakeBus{}
	c := New(bus)

	c.WriteReload(2, 0xFFFF)
	c.WriteControl(2, 1<<7|1<<6) // start, IRQ enable, prescaler 1

	c.Step()

	assert.Equal(t, uint16(0xFFFF), c.ReadCounter(2))
	assert.Equal(t, []uint16{1 << 5}, bus.irqs)
}

// Writing the control register always clears the sub-counter, even when the
// start bit doesn't change state.
func TestControlWriteResetsSubCounter(t *testing.T) {
	bus := &fakeBus{}
	c := New(bus)

	c.WriteReload(0, 0)
	c.WriteControl(0, 1<<7|0x2) // start, prescaler 256
	for i := 0; i < 200; i++ {
		c.Step()
	}
	assert.Equal(t, uint16(0), c.ReadCounter(0), "200 ticks is short of the 256 prescaler threshold")

	// Rewriting control resets the sub-counter even though the start bit
	// doesn't change, so the next 200 ticks still aren't enough to overflow.
	c.WriteControl(0, 1<<7|0x2)
	for i := 0; i < 200; i++ {
		c.Step()
	}
	assert.Equal(t, uint16(0), c.ReadCounter(0))
}

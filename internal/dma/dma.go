// Package dma implements the GBA's four-channel DMA controller. Only
// immediate-timing transfers are supported; a channel armed for any other
// start condition reports errs.NotImplemented the moment it is enabled.
package dma

import (
	"GoBA/internal/errs"
	"GoBA/internal/interfaces"
	"GoBA/util/dbg"
)

const numChannels = 4

// destination-control (DAD) modes.
const (
	destIncrement = 0
	destDecrement = 1
	destFixed     = 2
	destIncReload = 3 // increment, and reload from DMADAD on repeat
)

// source-control (SAD) modes. Mode 3 is reserved for source; treated as fixed.
const (
	srcIncrement = 0
	srcDecrement = 1
	srcFixed     = 2
)

// start-timing values. Only immediate (0) is implemented.
const (
	timingImmediate = 0
	timingVBlank    = 1
	timingHBlank    = 2
	timingSpecial   = 3
)

type channel struct {
	srcAddr, dstAddr   uint32 // latched working addresses
	srcReg, dstReg     uint32 // DMASAD/DMADAD as last written
	wordCount          uint32 // latched transfer counter
	lengthReg          uint16 // DMACNT_L as last written
	control            uint16 // DMACNT_H as last written

	running bool
}

func (c *channel) destControl() uint8 { return uint8((c.control >> 5) & 0x3) }
func (c *channel) srcControl() uint8  { return uint8((c.control >> 7) & 0x3) }
func (c *channel) repeat() bool       { return c.control&(1<<9) != 0 }
func (c *channel) is32bit() bool      { return c.control&(1<<10) != 0 }
func (c *channel) timing() uint8      { return uint8((c.control >> 12) & 0x3) }
func (c *channel) irqEnable() bool    { return c.control&(1<<14) != 0 }
func (c *channel) enabled() bool      { return c.control&(1<<15) != 0 }

// Controller owns the four DMA channels and steps them against a bus.
type Controller struct {
	bus      interfaces.Bus
	channels [numChannels]channel
}

func New(bus interfaces.Bus) *Controller {
	return &Controller{bus: bus}
}

func (c *Controller) channelCap(index int) uint32 {
	if index == 3 {
		return 0x10000
	}
	return 0x4000
}

func (c *Controller) reloadCount(ch *channel, index int) uint32 {
	if ch.lengthReg != 0 {
		return uint32(ch.lengthReg)
	}
	return c.channelCap(index)
}

// WriteSAD/WriteDAD/WriteCountL handle the three plain registers; WriteCountH
// additionally detects the enable-bit rising edge that latches the working
// source/destination addresses and transfer count.
func (c *Controller) WriteSAD(index int, value uint32) { c.channels[index].srcReg = value }
func (c *Controller) WriteDAD(index int, value uint32) { c.channels[index].dstReg = value }
func (c *Controller) WriteCountL(index int, value uint16) {
	c.channels[index].lengthReg = value
}

func (c *Controller) WriteCountH(index int, value uint16) {
	ch := &c.channels[index]
	wasEnabled := ch.enabled()
	ch.control = value

	if !wasEnabled && ch.enabled() {
		ch.srcAddr = ch.srcReg
		ch.dstAddr = ch.dstReg
		ch.wordCount = c.reloadCount(ch, index)
	}
}

func (c *Controller) ReadCountH(index int) uint16 { return c.channels[index].control }
func (c *Controller) ReadCountL(index int) uint16 { return c.channels[index].lengthReg }
func (c *Controller) ReadSAD(index int) uint32     { return c.channels[index].srcReg }
func (c *Controller) ReadDAD(index int) uint32     { return c.channels[index].dstReg }

// IsEnabled reports whether any channel's enable bit is set.
func (c *Controller) IsEnabled() bool {
	for i := range c.channels {
		if c.channels[i].enabled() {
			return true
		}
	}
	return false
}

// IsRunning reports whether any channel has latched its addresses and is
// actively transferring.
func (c *Controller) IsRunning() bool {
	for i := range c.channels {
		if c.channels[i].running {
			return true
		}
	}
	return false
}

// CheckStartConditions arms every enabled-but-not-yet-running channel whose
// start timing this core supports. Non-immediate timings are a hard error:
// this core only transfers on immediate start.
func (c *Controller) CheckStartConditions() error {
	for i := range c.channels {
		ch := &c.channels[i]
		if !ch.enabled() || ch.running {
			continue
		}
		switch ch.timing() {
		case timingImmediate:
			ch.running = true
		default:
			return &errs.NotImplemented{What: "DMA start timing other than immediate"}
		}
	}
	return nil
}

// Step transfers exactly one unit on the lowest-index running channel,
// mirroring the single-channel-per-tick behaviour the scheduler relies on.
func (c *Controller) Step() {
	for i := range c.channels {
		ch := &c.channels[i]
		if !ch.running {
			continue
		}
		c.transferUnit(i, ch)
		return
	}
}

func (c *Controller) transferUnit(index int, ch *channel) {
	if ch.is32bit() {
		c.bus.Write32(ch.dstAddr, c.bus.Read32(ch.srcAddr))
	} else {
		c.bus.Write16(ch.dstAddr, c.bus.Read16(ch.srcAddr))
	}

	step := uint32(2)
	if ch.is32bit() {
		step = 4
	}

	switch ch.destControl() {
	case destIncrement, destIncReload:
		ch.dstAddr += step
	case destDecrement:
		ch.dstAddr -= step
	case destFixed:
	}

	switch ch.srcControl() {
	case srcIncrement:
		ch.srcAddr += step
	case srcDecrement:
		ch.srcAddr -= step
	case srcFixed:
	default:
		dbg.Warnf("dma: channel %d uses reserved source-control mode\n", index)
	}

	ch.wordCount--
	if ch.wordCount != 0 {
		return
	}

	if ch.repeat() {
		ch.wordCount = c.reloadCount(ch, index)
		if ch.destControl() == destIncReload {
			ch.dstAddr = ch.dstReg
		}
	} else {
		ch.control &^= 1 << 15
	}

	if ch.irqEnable() {
		c.bus.RequestIRQ(1 << (8 + uint(index)))
	}

	ch.running = false
}

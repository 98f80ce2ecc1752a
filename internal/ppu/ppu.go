// Package ppu implements the GBA's video controller: palette RAM, VRAM,
// OAM, the display control/status registers, and the per-dot timing and
// rendering state machine for tile mode 0 and the two bitmap modes this
// core supports.
package ppu

import (
	"GoBA/internal/errs"
	"GoBA/internal/interfaces"
	"GoBA/util/dbg"
)

const (
	ScreenWidth  = 240
	ScreenHeight = 160

	dotsPerLine   = 308
	linesPerFrame = 228

	paletteSize = 0x400
	vramSize    = 0x18000
	oamSize     = 0x400
)

// DISPSTAT bit positions.
const (
	dispstatVBlank      = 0
	dispstatHBlank      = 1
	dispstatVCounter    = 2
	dispstatVBlankIRQ   = 3
	dispstatHBlankIRQ   = 4
	dispstatVCounterIRQ = 5
)

// PPU holds video RAM and registers and advances one dot per Tick call.
type PPU struct {
	bus interfaces.Bus

	palette []byte
	vram    []byte
	oam     []byte

	dispcnt  uint16
	dispstat uint16
	vcount   uint16
	bgcnt    [4]uint16
	bghofs   [4]uint16
	bgvofs   [4]uint16

	dot int

	Frame      []uint16 // ScreenWidth*ScreenHeight, native BGR555->RGB555 already swapped
	frameReady bool
}

func New(bus interfaces.Bus) *PPU {
	return &PPU{
		bus:     bus,
		palette: make([]byte, paletteSize),
		vram:    make([]byte, vramSize),
		oam:     make([]byte, oamSize),
		Frame:   make([]uint16, ScreenWidth*ScreenHeight),
	}
}

func (p *PPU) ReadPalette8(addr uint32) uint8     { return p.palette[addr%paletteSize] }
func (p *PPU) WritePalette8(addr uint32, v uint8) { p.palette[addr%paletteSize] = v }
func (p *PPU) ReadVRAM8(addr uint32) uint8        { return p.vram[addr%vramSize] }
func (p *PPU) WriteVRAM8(addr uint32, v uint8)    { p.vram[addr%vramSize] = v }
func (p *PPU) ReadOAM8(addr uint32) uint8         { return p.oam[addr%oamSize] }
func (p *PPU) WriteOAM8(addr uint32, v uint8)     { p.oam[addr%oamSize] = v }

func (p *PPU) readVRAM16(addr uint32) uint16 {
	return uint16(p.ReadVRAM8(addr)) | uint16(p.ReadVRAM8(addr+1))<<8
}

func (p *PPU) readPalette16(addr uint32) uint16 {
	return uint16(p.ReadPalette8(addr)) | uint16(p.ReadPalette8(addr+1))<<8
}

// ReadRegister16/WriteRegister16 handle the MMIO-mapped DISPCNT/DISPSTAT/
// VCOUNT/BGxCNT/BGxHOFS/BGxVOFS registers, addressed by the bus at their
// exact offsets from 0x04000000.
func (p *PPU) ReadRegister16(offset uint32) uint16 {
	switch {
	case offset == 0x00:
		return p.dispcnt
	case offset == 0x04:
		return p.dispstat
	case offset == 0x06:
		return p.vcount
	case offset >= 0x08 && offset <= 0x0E:
		return p.bgcnt[(offset-0x08)/2]
	case offset >= 0x10 && offset <= 0x1E:
		idx := (offset - 0x10) / 4
		if (offset-0x10)%4 == 0 {
			return p.bghofs[idx]
		}
		return p.bgvofs[idx]
	default:
		return 0
	}
}

func (p *PPU) WriteRegister16(offset uint32, value uint16) {
	switch {
	case offset == 0x00:
		p.dispcnt = value
	case offset == 0x04:
		// bottom 3 bits (VBlank/HBlank/VCounter status) are read-only.
		p.dispstat = (p.dispstat & 0x7) | (value &^ 0x7)
	case offset == 0x06:
		// VCOUNT is read-only.
	case offset >= 0x08 && offset <= 0x0E:
		p.bgcnt[(offset-0x08)/2] = value
	case offset >= 0x10 && offset <= 0x1E:
		idx := (offset - 0x10) / 4
		if (offset-0x10)%4 == 0 {
			p.bghofs[idx] = value & 0x1FF
		} else {
			p.bgvofs[idx] = value & 0x1FF
		}
	default:
		dbg.Warnf("ppu: write to unhandled register offset 0x%03X\n", offset)
	}
}

// IsFrameReady/ConsumeFrame let the scheduler pull a completed frame exactly
// once, at the transition into VCOUNT 227.
func (p *PPU) IsFrameReady() bool { return p.frameReady }
func (p *PPU) ConsumeFrame() []uint16 {
	p.frameReady = false
	return p.Frame
}

// Tick advances exactly one dot: drawing a pixel when inside the visible
// window, then handling the HBlank/VCOUNT/VBlank transitions that occur
// at dots 240 and 308. It returns UnknownBgMode if DISPCNT selects
// a background mode this core does not render and forced-blank is not set.
func (p *PPU) Tick() error {
	if p.dot < ScreenWidth && int(p.vcount) < ScreenHeight {
		if err := p.drawPixel(p.dot, int(p.vcount)); err != nil {
			return err
		}
	}

	if p.dot == ScreenWidth {
		p.dispstat |= 1 << dispstatHBlank
		if p.dispstat&(1<<dispstatHBlankIRQ) != 0 {
			p.bus.RequestIRQ(1 << 1)
		}
	}

	p.dot++
	if p.dot == dotsPerLine {
		p.dot = 0
		p.dispstat &^= 1 << dispstatHBlank
		p.vcount++
		p.onVCountChanged()
	}
	return nil
}

func (p *PPU) onVCountChanged() {
	if p.vcount == ScreenHeight {
		p.dispstat |= 1 << dispstatVBlank
		if p.dispstat&(1<<dispstatVBlankIRQ) != 0 {
			p.bus.RequestIRQ(1 << 0)
		}
	}
	if p.vcount == 227 {
		p.dispstat &^= 1 << dispstatVBlank
		p.frameReady = true
	}
	if p.vcount == linesPerFrame {
		p.vcount = 0
	}

	target := (p.dispstat >> 8) & 0xFF
	wasCoincident := p.dispstat&(1<<dispstatVCounter) != 0
	isCoincident := p.vcount == target
	if isCoincident {
		p.dispstat |= 1 << dispstatVCounter
	} else {
		p.dispstat &^= 1 << dispstatVCounter
	}
	if isCoincident && !wasCoincident && p.dispstat&(1<<dispstatVCounterIRQ) != 0 {
		p.bus.RequestIRQ(1 << 2)
	}
}

func (p *PPU) forcedBlank() bool { return p.dispcnt&0x80 != 0 }

func (p *PPU) drawPixel(x, y int) error {
	if p.forcedBlank() {
		p.Frame[y*ScreenWidth+x] = 0xFFFF
		return nil
	}

	mode := p.dispcnt & 0x7
	var bgr uint16
	switch mode {
	case 0:
		bgr = p.mode0Pixel(x, y)
	case 3:
		bgr = p.readVRAM16(uint32((y*ScreenWidth + x) * 2))
	case 4:
		page := uint32(0)
		if p.dispcnt&0x10 != 0 {
			page = 0xA000
		}
		idx := p.ReadVRAM8(page + uint32(y*ScreenWidth+x))
		bgr = p.readPalette16(uint32(idx) * 2)
	default:
		return &errs.UnknownBgMode{Mode: uint8(mode)}
	}

	p.Frame[y*ScreenWidth+x] = swapBGRtoRGB(bgr)
	return nil
}

func swapBGRtoRGB(c uint16) uint16 {
	r := c & 0x1F
	g := (c >> 5) & 0x1F
	b := (c >> 10) & 0x1F
	return b | g<<5 | r<<10
}

// mode0Pixel renders the four tiled backgrounds for one pixel and merges
// them by priority, lower BG index winning ties. A disabled or transparent
// background is treated as priority 4, lower than any real priority value.
func (p *PPU) mode0Pixel(x, y int) uint16 {
	bestPriority := 5
	var bestColor uint16
	found := false

	for bg := 3; bg >= 0; bg-- {
		if p.dispcnt&(1<<(8+uint(bg))) == 0 {
			continue
		}
		color, ok := p.tileBGPixel(bg, x, y)
		if !ok {
			continue
		}
		priority := int(p.bgcnt[bg] & 0x3)
		if priority <= bestPriority {
			bestPriority = priority
			bestColor = color
			found = true
		}
	}

	if !found {
		return p.readPalette16(0)
	}
	return bestColor
}

func (p *PPU) tileBGPixel(bg, x, y int) (uint16, bool) {
	cnt := p.bgcnt[bg]
	charBase := uint32((cnt>>2)&0x3) * 0x4000
	mapBase := uint32((cnt>>8)&0x1F) * 0x800
	colorDepth8 := cnt&0x80 != 0
	screenSize := (cnt >> 14) & 0x3

	scrolledX := (x + int(p.bghofs[bg])) & 0x1FF
	scrolledY := (y + int(p.bgvofs[bg])) & 0x1FF

	mapW, mapH := 32, 32
	switch screenSize {
	case 1:
		mapW = 64
	case 2:
		mapH = 64
	case 3:
		mapW, mapH = 64, 64
	}

	tileX := (scrolledX / 8) % mapW
	tileY := (scrolledY / 8) % mapH

	screenBlock := 0
	if mapW == 64 && tileX >= 32 {
		screenBlock += 1
		tileX -= 32
	}
	if mapH == 64 && tileY >= 32 {
		screenBlock += 2
	}

	entryAddr := mapBase + uint32(screenBlock)*0x800 + uint32(tileY*32+tileX)*2
	entry := p.readVRAM16(entryAddr)

	tileIndex := entry & 0x3FF
	flipX := entry&0x0400 != 0
	flipY := entry&0x0800 != 0
	paletteBank := uint8((entry >> 12) & 0xF)

	px, py := scrolledX%8, scrolledY%8
	if flipX {
		px = 7 - px
	}
	if flipY {
		py = 7 - py
	}

	var paletteIndex uint8
	if colorDepth8 {
		tileAddr := charBase + uint32(tileIndex)*64 + uint32(py*8+px)
		paletteIndex = p.ReadVRAM8(tileAddr)
	} else {
		tileAddr := charBase + uint32(tileIndex)*32 + uint32(py*8+px)/2
		b := p.ReadVRAM8(tileAddr)
		if px%2 == 0 {
			paletteIndex = b & 0xF
		} else {
			paletteIndex = b >> 4
		}
		if paletteIndex != 0 {
			paletteIndex += paletteBank * 16
		}
	}

	if paletteIndex == 0 {
		return 0, false
	}
	return p.readPalette16(uint32(paletteIndex) * 2), true
}

// Package bus implements the GBA's 32-bit memory map: it owns every RAM and
// MMIO-backed component and is the sole object any other component reaches
// back into, through the interfaces.Bus contract.
package bus

import (
	"GoBA/internal/cartridge"
	"GoBA/internal/dma"
	"GoBA/internal/memory"
	"GoBA/internal/ppu"
	"GoBA/internal/timer"
	"GoBA/util/dbg"
)

// Address ranges, per the GBA's 32-bit memory map. Mirror ranges are
// resolved with modulo arithmetic inside each region's handler rather than
// being spelled out as separate switch cases.
const (
	biosStart = 0x00000000
	biosEnd   = 0x00003FFF

	ewramStart = 0x02000000
	ewramEnd   = 0x02FFFFFF

	iwramStart = 0x03000000
	iwramEnd   = 0x03FFFFFF

	ioStart = 0x04000000
	ioEnd   = 0x040003FE

	paletteStart = 0x05000000
	paletteEnd   = 0x05FFFFFF

	vramStart = 0x06000000
	vramEnd   = 0x06FFFFFF

	oamStart = 0x07000000
	oamEnd   = 0x07FFFFFF

	romStart = 0x08000000
	romEnd   = 0x0DFFFFFF

	sramStart = 0x0E000000
	sramEnd   = 0x0FFFFFFF
)

// Exact I/O register offsets from 0x04000000.
const (
	regDISPCNT  = 0x000
	regDISPSTAT = 0x004
	regVCOUNT   = 0x006
	regBG0CNT   = 0x008
	regBG3CNT   = 0x00E
	regBG0HOFS  = 0x010
	regBG3VOFS  = 0x01E

	regSoundBias = 0x088

	regDMA0SAD = 0x0B0
	regDMA3DAD = 0x0DC
	regDMA0CNT = 0x0B8 // first channel's CNT_L, channels spaced by 0xC
	regDMA3End = 0x0DE

	regTM0CNT_L = 0x100
	regTM3CNT_H = 0x10E

	regSerial = 0x128

	regKeypad = 0x130

	regIE  = 0x200
	regIF  = 0x202
	regIME = 0x208
)

const dmaChannelStride = 0x0C

// Bus connects the CPU to every memory-mapped device: RAM, the cartridge,
// the video controller, the DMA and timer units, and the interrupt and
// keypad registers it owns directly since nothing else needs to.
type Bus struct {
	bios      *memory.BIOS
	ewram     *memory.EWRAM
	iwram     *memory.IWRAM
	cartridge *cartridge.Cartridge
	video     *ppu.PPU
	dmac      *dma.Controller
	timers    *timer.Controller

	soundBias uint16
	keypad    uint16 // active-low, per GBA convention: 1 = released

	ie  uint16
	ifl uint16
	ime uint16
}

// New wires every owned component together. The cartridge, BIOS, and RAM
// must already be loaded by the host.
func New(bios *memory.BIOS, ewram *memory.EWRAM, iwram *memory.IWRAM, cart *cartridge.Cartridge) *Bus {
	b := &Bus{
		bios:      bios,
		ewram:     ewram,
		iwram:     iwram,
		cartridge: cart,
		keypad:    0x3FF,
	}
	b.video = ppu.New(b)
	b.dmac = dma.New(b)
	b.timers = timer.New(b)
	return b
}

// Video/DMA/Timers expose the owned components to the scheduler, which
// needs to step them directly rather than through MMIO.
func (b *Bus) Video() *ppu.PPU         { return b.video }
func (b *Bus) DMA() *dma.Controller    { return b.dmac }
func (b *Bus) Timers() *timer.Controller { return b.timers }

// SetKeypad records the host's current button state, active-low per the
// KEYINPUT register convention (a clear bit means the button is held).
func (b *Bus) SetKeypad(state uint16) { b.keypad = state & 0x3FF }

// RequestIRQ implements interfaces.Bus: it sets bits in IF, exactly the
// "IF |= (1 << n)" phrasing components raise lines with.
func (b *Bus) RequestIRQ(mask uint16) { b.ifl |= mask }

// PendingIRQ implements interfaces.Bus: true when IME is enabled and at
// least one unmasked, requested interrupt line is set.
func (b *Bus) PendingIRQ() bool {
	return b.ime&1 != 0 && b.ie&b.ifl != 0
}

func (b *Bus) Read8(addr uint32) uint8 {
	addr &= 0x0FFFFFFF
	switch {
	case addr >= biosStart && addr <= biosEnd:
		return b.bios.Read8(addr)
	case addr >= ewramStart && addr <= ewramEnd:
		return b.ewram.Read8(addr % memory.EWRAM_SIZE)
	case addr >= iwramStart && addr <= iwramEnd:
		return b.iwram.Read8(addr % memory.IWRAM_SIZE)
	case addr >= ioStart && addr <= ioEnd:
		return b.readIO8(addr - ioStart)
	case addr >= paletteStart && addr <= paletteEnd:
		return b.video.ReadPalette8(addr - paletteStart)
	case addr >= vramStart && addr <= vramEnd:
		return b.video.ReadVRAM8(addr - vramStart)
	case addr >= oamStart && addr <= oamEnd:
		return b.video.ReadOAM8(addr - oamStart)
	case addr >= romStart && addr <= romEnd:
		v, err := b.cartridge.Read8((addr - romStart) % (romEnd - romStart + 1))
		if err != nil {
			dbg.Warnf("bus: cartridge read error at 0x%08X: %v\n", addr, err)
			return 0
		}
		return v
	case addr >= sramStart && addr <= sramEnd:
		return b.cartridge.ReadSave((addr - sramStart) % cartridge.SaveWindowSize)
	default:
		dbg.Warnf("bus: unhandled 8-bit read at 0x%08X\n", addr)
		return 0
	}
}

func (b *Bus) Write8(addr uint32, value uint8) {
	addr &= 0x0FFFFFFF
	switch {
	case addr >= biosStart && addr <= biosEnd:
		dbg.Warnf("bus: write to read-only BIOS at 0x%08X\n", addr)
	case addr >= ewramStart && addr <= ewramEnd:
		b.ewram.Write8(addr%memory.EWRAM_SIZE, value)
	case addr >= iwramStart && addr <= iwramEnd:
		b.iwram.Write8(addr%memory.IWRAM_SIZE, value)
	case addr >= ioStart && addr <= ioEnd:
		b.writeIO8(addr-ioStart, value)
	case addr >= paletteStart && addr <= paletteEnd:
		b.video.WritePalette8(addr-paletteStart, value)
	case addr >= vramStart && addr <= vramEnd:
		b.video.WriteVRAM8(addr-vramStart, value)
	case addr >= oamStart && addr <= oamEnd:
		b.video.WriteOAM8(addr-oamStart, value)
	case addr >= romStart && addr <= romEnd:
		dbg.Warnf("bus: write to read-only cartridge ROM at 0x%08X\n", addr)
	case addr >= sramStart && addr <= sramEnd:
		b.cartridge.WriteSave((addr-sramStart)%cartridge.SaveWindowSize, value)
	default:
		dbg.Warnf("bus: unhandled 8-bit write at 0x%08X\n", addr)
	}
}

// Read16/Write16/Read32/Write32 compose from the narrower accessors,
// matching the little-endian byte ordering every region is mapped with.
// Address bits below the access width are ignored. A 16-bit MMIO write
// reaches its register as one halfword; a 32-bit MMIO write is two 16-bit
// writes in increasing-address order.
func (b *Bus) Read16(addr uint32) uint16 {
	addr &^= 1
	return uint16(b.Read8(addr)) | uint16(b.Read8(addr+1))<<8
}

func (b *Bus) Write16(addr uint32, value uint16) {
	addr = (addr & 0x0FFFFFFF) &^ 1
	if addr >= ioStart && addr <= ioEnd {
		b.writeIO16(addr-ioStart, value)
		return
	}
	b.Write8(addr, uint8(value))
	b.Write8(addr+1, uint8(value>>8))
}

func (b *Bus) Read32(addr uint32) uint32 {
	addr &^= 3
	return uint32(b.Read16(addr)) | uint32(b.Read16(addr+2))<<16
}

func (b *Bus) Write32(addr uint32, value uint32) {
	addr &^= 3
	b.Write16(addr, uint16(value))
	b.Write16(addr+2, uint16(value>>16))
}

// readIO8/writeIO8 serve byte accesses through the 16-bit register paths
// below: a byte read returns its half of readIO16, and a byte write merges
// into the current halfword and writes that back (IF and the DMA address
// halves merge differently, see writeIO8).
func (b *Bus) readIO8(offset uint32) uint8 {
	aligned := offset &^ 1
	hi := offset&1 != 0
	v := b.readIO16(aligned)
	if hi {
		return uint8(v >> 8)
	}
	return uint8(v)
}

func (b *Bus) writeIO8(offset uint32, value uint8) {
	aligned := offset &^ 1
	cur := b.readIO16(aligned)
	switch {
	case aligned == regIF:
		// write-1-to-clear: the byte not written clears nothing.
		cur = 0
	case aligned >= regDMA0SAD && aligned <= regDMA3End:
		// SAD/DAD halves read as 0; merge with the channel's address instead.
		if ch, field := b.dmaChannelAndField(aligned); field < 8 {
			addr := b.dmac.ReadSAD(ch)
			if field >= 4 {
				addr = b.dmac.ReadDAD(ch)
			}
			cur = uint16(addr >> ((field % 4) * 8))
		}
	}
	var updated uint16
	if offset&1 != 0 {
		updated = (cur & 0x00FF) | uint16(value)<<8
	} else {
		updated = (cur & 0xFF00) | uint16(value)
	}
	b.writeIO16(aligned, updated)
}

func (b *Bus) readIO16(offset uint32) uint16 {
	switch {
	case offset >= regDISPCNT && offset <= regBG3VOFS:
		return b.video.ReadRegister16(offset)
	case offset == regSoundBias:
		return b.soundBias
	case offset >= regDMA0SAD && offset <= regDMA3End:
		return b.readDMARegister(offset)
	case offset >= regTM0CNT_L && offset <= regTM3CNT_H:
		return b.readTimerRegister(offset)
	case offset == regSerial:
		return 0x80
	case offset == regKeypad:
		return b.keypad
	case offset == regIE:
		return b.ie
	case offset == regIF:
		return b.ifl
	case offset == regIME:
		return b.ime
	default:
		dbg.Warnf("bus: unhandled I/O read at offset 0x%03X\n", offset)
		return 0
	}
}

func (b *Bus) writeIO16(offset uint32, value uint16) {
	switch {
	case offset >= regDISPCNT && offset <= regBG3VOFS:
		b.video.WriteRegister16(offset, value)
	case offset == regSoundBias:
		b.soundBias = value
	case offset >= regDMA0SAD && offset <= regDMA3End:
		b.writeDMARegister(offset, value)
	case offset >= regTM0CNT_L && offset <= regTM3CNT_H:
		b.writeTimerRegister(offset, value)
	case offset == regSerial:
		// read-only stub.
	case offset == regKeypad:
		// read-only from the CPU's perspective; set via SetKeypad.
	case offset == regIE:
		b.ie = value
	case offset == regIF:
		// write-1-to-clear.
		b.ifl &^= value
	case offset == regIME:
		b.ime = value
	default:
		dbg.Warnf("bus: unhandled I/O write at offset 0x%03X, value 0x%04X\n", offset, value)
	}
}

// DMA registers: each channel occupies 12 bytes starting at 0x040000B0,
// holding SAD (32-bit), DAD (32-bit), CNT_L (16-bit), CNT_H (16-bit).
func (b *Bus) dmaChannelAndField(offset uint32) (channel int, field uint32) {
	rel := offset - regDMA0SAD
	return int(rel / dmaChannelStride), rel % dmaChannelStride
}

func (b *Bus) readDMARegister(offset uint32) uint16 {
	ch, field := b.dmaChannelAndField(offset)
	switch field {
	case 8:
		return b.dmac.ReadCountL(ch)
	case 10:
		return b.dmac.ReadCountH(ch)
	default:
		// SAD/DAD are 32-bit and write-only on real hardware; reads of
		// their halves return 0. Byte writes to them do not merge with
		// this value: writeIO8 reads the channel's address directly.
		return 0
	}
}

func (b *Bus) writeDMARegister(offset uint32, value uint16) {
	ch, field := b.dmaChannelAndField(offset)
	switch field {
	case 0:
		cur := b.dmac.ReadSAD(ch)
		b.dmac.WriteSAD(ch, (cur&0xFFFF0000)|uint32(value))
	case 2:
		cur := b.dmac.ReadSAD(ch)
		b.dmac.WriteSAD(ch, (cur&0x0000FFFF)|uint32(value)<<16)
	case 4:
		cur := b.dmac.ReadDAD(ch)
		b.dmac.WriteDAD(ch, (cur&0xFFFF0000)|uint32(value))
	case 6:
		cur := b.dmac.ReadDAD(ch)
		b.dmac.WriteDAD(ch, (cur&0x0000FFFF)|uint32(value)<<16)
	case 8:
		b.dmac.WriteCountL(ch, value)
	case 10:
		b.dmac.WriteCountH(ch, value)
	}
}

// Timer registers: each channel occupies 4 bytes starting at 0x04000100,
// holding CNT_L (reload/counter, 16-bit) then CNT_H (control, 16-bit).
func (b *Bus) readTimerRegister(offset uint32) uint16 {
	rel := offset - regTM0CNT_L
	ch := int(rel / 4)
	if rel%4 == 0 {
		return b.timers.ReadCounter(ch)
	}
	return b.timers.ReadControl(ch)
}

func (b *Bus) writeTimerRegister(offset uint32, value uint16) {
	rel := offset - regTM0CNT_L
	ch := int(rel / 4)
	if rel%4 == 0 {
		b.timers.WriteReload(ch, value)
	} else {
		b.timers.WriteControl(ch, value)
	}
}

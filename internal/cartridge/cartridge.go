// Package cartridge models the cartridge ROM image and its SRAM/FLASH save
// window. Reads past the end of the loaded ROM, beyond a small trailing
// tolerance for prefetch, make Read8 and Read32 return errs.OutOfBoundsRead
// and Read16 return 0xFFFF. The bus reads the ROM one byte at a time through
// Read8: it traces such an error and reads 0, and no error reaches the bus's
// caller. The save window never models a real flash chip, it only answers
// the fixed identification bytes real software probes for.
package cartridge

import (
	"GoBA/internal/errs"
	"GoBA/util/dbg"
)

const (
	// oobTolerance is the number of trailing bytes past the ROM's real end
	// that reads are still serviced for, to accommodate the processor
	// prefetching one halfword/word past the last valid instruction.
	oobTolerance = 2

	// SaveWindowSize is the size of the 0x0E000000 SRAM/FLASH window.
	SaveWindowSize = 0x10000
)

// Cartridge holds the loaded ROM image and the save-data window backing it.
type Cartridge struct {
	ROM  []byte
	Save []byte
}

// New wraps a loaded ROM image. Save-window storage is allocated but never
// persisted; save-file durability is out of scope for this core.
func New(rom []byte) *Cartridge {
	return &Cartridge{
		ROM:  rom,
		Save: make([]byte, SaveWindowSize),
	}
}

func (c *Cartridge) boundsCheck(addr uint32, width int) error {
	if int(addr)+width <= len(c.ROM)+oobTolerance {
		return nil
	}
	return &errs.OutOfBoundsRead{Address: addr, Width: width}
}

// Read8 reads one byte from the ROM. An out-of-bounds access is a hard
// error using a width-dependent OOB tolerance.
func (c *Cartridge) Read8(addr uint32) (uint8, error) {
	if err := c.boundsCheck(addr, 1); err != nil {
		return 0, err
	}
	if int(addr) >= len(c.ROM) {
		return 0, nil
	}
	return c.ROM[addr], nil
}

// Read16 reads a halfword. Out-of-bounds reads return the GBA's open-bus
// pattern, 0xFFFF, rather than erroring.
func (c *Cartridge) Read16(addr uint32) uint16 {
	if int(addr)+2 > len(c.ROM) {
		return 0xFFFF
	}
	return uint16(c.ROM[addr]) | uint16(c.ROM[addr+1])<<8
}

// Read32 reads a word. An out-of-bounds access is a hard error.
func (c *Cartridge) Read32(addr uint32) (uint32, error) {
	if err := c.boundsCheck(addr, 4); err != nil {
		return 0, err
	}
	var b [4]byte
	for i := range b {
		if int(addr)+i < len(c.ROM) {
			b[i] = c.ROM[int(addr)+i]
		}
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

// ReadSave answers the fixed identification bytes a game probes the save
// window with to detect a 128 KiB flash chip: 0x62 at offset 0, 0x13 at
// offset 1, 0 everywhere else. Actual save contents are never modelled.
func (c *Cartridge) ReadSave(offset uint32) uint8 {
	switch offset {
	case 0:
		return 0x62
	case 1:
		return 0x13
	default:
		return 0
	}
}

// WriteSave traces the write and records it in Save. ReadSave never returns
// those bytes and nothing is persisted.
func (c *Cartridge) WriteSave(offset uint32, value uint8) {
	dbg.Printf("cartridge: save window write 0x%02X at offset 0x%04X\n", value, offset)
	if int(offset) < len(c.Save) {
		c.Save[offset] = value
	}
}

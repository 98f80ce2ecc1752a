// Package memory holds the flat byte-array RAM devices (BIOS, EWRAM, IWRAM)
// the bus mirrors and dispatches to directly. VRAM/OAM/palette RAM live in
// package ppu since reads and writes there also drive rendering state;
// cartridge ROM/SRAM live in package cartridge.
package memory

const (
	EWRAM_SIZE = 0x40000 // 256 KiB
	IWRAM_SIZE = 0x8000  // 32 KiB
)

package cpu

// fakeBus is a flat 64 KiB little-endian memory used to drive CPU tests
// without constructing a full bus.
type fakeBus struct {
	mem  [0x10000]byte
	ie   uint16
	ifl  uint16
	ime  uint16
}

func newFakeBus() *fakeBus { return &fakeBus{} }

func (b *fakeBus) Read8(addr uint32) uint8 { return b.mem[addr&0xFFFF] }
func (b *fakeBus) Read16(addr uint32) uint16 {
	return uint16(b.Read8(addr)) | uint16(b.Read8(addr+1))<<8
}
func (b *fakeBus) Read32(addr uint32) uint32 {
	return uint32(b.Read16(addr)) | uint32(b.Read16(addr+2))<<16
}
func (b *fakeBus) Write8(addr uint32, v uint8) { b.mem[addr&0xFFFF] = v }
func (b *fakeBus) Write16(addr uint32, v uint16) {
	b.Write8(addr, uint8(v))
	b.Write8(addr+1, uint8(v>>8))
}
func (b *fakeBus) Write32(addr uint32, v uint32) {
	b.Write16(addr, uint16(v))
	b.Write16(addr+2, uint16(v>>16))
}
func (b *fakeBus) RequestIRQ(mask uint16) { b.ifl |= mask }
func (b *fakeBus) PendingIRQ() bool       { return b.ime&1 != 0 && b.ie&b.ifl != 0 }

// loadARM writes a little-endian ARM word at addr.
func (b *fakeBus) loadARM(addr uint32, word uint32) { b.Write32(addr, word) }

// loadThumb writes a little-endian Thumb halfword at addr.
func (b *fakeBus) loadThumb(addr uint32, half uint16) { b.Write16(addr, half) }

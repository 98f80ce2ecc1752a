package memory

// EWRAM is the GBA's 256 KiB external work RAM.
type EWRAM struct {
	data []byte
}

func NewEWRAM() *EWRAM {
	return &EWRAM{data: make([]byte, EWRAM_SIZE)}
}

func (e *EWRAM) Read8(addr uint32) uint8    { return e.data[addr%EWRAM_SIZE] }
func (e *EWRAM) Write8(addr uint32, v uint8) { e.data[addr%EWRAM_SIZE] = v }

package memory

// IWRAM is the GBA's 32 KiB internal work RAM.
type IWRAM struct {
	data []byte
}

func NewIWRAM() *IWRAM {
	return &IWRAM{data: make([]byte, IWRAM_SIZE)}
}

func (i *IWRAM) Read8(addr uint32) uint8    { return i.data[addr%IWRAM_SIZE] }
func (i *IWRAM) Write8(addr uint32, v uint8) { i.data[addr%IWRAM_SIZE] = v }

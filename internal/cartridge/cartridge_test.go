package cartridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadWithinROMBounds(t *testing.T) {
	c := New([]byte{0x11, 0x22, 0x33, 0x44})

	v, err := c.Read8(1)
	assert.NoError(t, err)
	assert.Equal(t, uint8(0x22), v)

	w, err := c.Read32(0)
	assert.NoError(t, err)
	assert.Equal(t, uint32(0x44332211), w)
}

// Reads up to oobTolerance bytes past the end of the ROM are tolerated and
// read as zero, modelling the prefetch-past-the-end case.
func TestReadWithinOOBTolerance(t *testing.T) {
	c := New([]byte{0xAA})

	v, err := c.Read8(1)
	assert.NoError(t, err)
	assert.Equal(t, uint8(0), v)

	v, err = c.Read8(2)
	assert.NoError(t, err)
	assert.Equal(t, uint8(0), v)
}

func TestReadBeyondOOBToleranceErrors(t *testing.T) {
	c := New([]byte{0xAA})

	_, err := c.Read8(3)
	assert.Error(t, err)

	_, err = c.Read32(3)
	assert.Error(t, err)
}

// Read16 never errors; it returns the GBA's open-bus pattern instead.
func TestRead16OpenBusPastEnd(t *testing.T) {
	c := New([]byte{0x01, 0x02})

	assert.Equal(t, uint16(0x0201), c.Read16(0))
	assert.Equal(t, uint16(0xFFFF), c.Read16(1))
}

func TestSaveWindowIdentificationBytes(t *testing.T) {
	c := New([]byte{})

	assert.Equal(t, uint8(0x62), c.ReadSave(0))
	assert.Equal(t, uint8(0x13), c.ReadSave(1))
	assert.Equal(t, uint8(0), c.ReadSave(2))

	c.WriteSave(2, 0x55)
	assert.Equal(t, uint8(0x55), c.Save[2])
}

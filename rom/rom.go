// Package rom loads a cartridge image from disk, ahead of handing it to
// package cartridge, and rejects the empty-file case the bounds-check
// tolerance in that package cannot sensibly interpret on its own.
package rom

import (
	"fmt"
	"os"
)

const maxSize = 32 * 1024 * 1024 // largest GBA cartridge image in practice

// ROM wraps a loaded cartridge image.
type ROM struct {
	Data []byte
}

// Load reads a GBA ROM file from path.
func Load(path string) (*ROM, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read ROM file: %w", err)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("ROM file is empty")
	}
	if len(data) > maxSize {
		return nil, fmt.Errorf("ROM file exceeds %d bytes", maxSize)
	}

	return &ROM{Data: data}, nil
}

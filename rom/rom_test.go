package rom

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadValidROM(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.gba")
	assert.NoError(t, os.WriteFile(path, []byte{0xDE, 0xAD, 0xBE, 0xEF}, 0o644))

	img, err := Load(path)

	assert.NoError(t, err)
	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, img.Data)
}

func TestLoadRejectsEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.gba")
	assert.NoError(t, os.WriteFile(path, []byte{}, 0o644))

	_, err := Load(path)

	assert.Error(t, err)
}

func TestLoadRejectsOversizedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "huge.gba")
	assert.NoError(t, os.WriteFile(path, make([]byte, maxSize+1), 0o644))

	_, err := Load(path)

	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.gba"))

	assert.Error(t, err)
}

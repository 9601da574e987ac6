// Package rom loads the five fixed ROM images (four on the master,
// one on the slave) plus an optional option ROM, and validates each
// against its known-good CRC-32 before installing it. Grounded on
// original_source/main.c's rom_load(): a mismatch is fatal, matching
// the original's exit(EXIT_FAILURE) rather than a soft warning, since
// a wrong or corrupt ROM produces a machine that cannot run.
package rom

import (
	"fmt"
	"hash/crc32"
	"os"

	"github.com/hx20emu/hx20/internal/hostfile"
)

// Image names an entry in the fixed ROM set, its load address and
// size, and the one or two CRC-32 values accepted for each of the
// documented firmware revisions (1.0 and 1.1).
type Image struct {
	Name    string
	Address uint16
	Size    int
	CRCs    []uint32
}

// Master carries the four master ROM images in load order.
var Master = []Image{
	{"basic1.rom", 0x8000, 8192, []uint32{0x33fbb1ab, 0x4de0b4b6}},
	{"basic2.rom", 0xA000, 8192, []uint32{0x27d743ed, 0x10d6ae76}},
	{"utility.rom", 0xC000, 8192, []uint32{0xf5cc8868, 0x26c203a1}},
	{"monitor.rom", 0xE000, 8192, []uint32{0xed7482c6, 0x101cb3e8}},
}

// Slave is the single slave ROM image.
var Slave = Image{"slave.rom", 0xF000, 4096, []uint32{0xb36f5b99}}

// OptionROMAddress is where a user-supplied option ROM is installed,
// when one is given (spec §6: --option-rom); it cannot be combined
// with --ram-expansion since the two claim the same address window.
const OptionROMAddress = 0x6000

// Load reads dir/img.Name, checks its size, and verifies its CRC-32
// against img.CRCs. A size or CRC mismatch is returned as an error;
// the caller is expected to treat it as fatal, per original_source.
func Load(dir string, img Image) ([]byte, error) {
	full, err := hostfile.SafeJoin(dir, img.Name)
	if err != nil {
		return nil, fmt.Errorf("rom: %w", err)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("rom: loading %q failed: %w", full, err)
	}
	if len(data) != img.Size {
		return nil, fmt.Errorf("rom: %s: got %d bytes, want %d", img.Name, len(data), img.Size)
	}
	sum := crc32.ChecksumIEEE(data)
	for _, want := range img.CRCs {
		if sum == want {
			return data, nil
		}
	}
	return nil, fmt.Errorf("rom: %s has invalid CRC32: %08x", img.Name, sum)
}

// LoadOption reads a user-supplied option ROM file with no size or
// CRC constraint (spec §6: --option-rom).
func LoadOption(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rom: loading option ROM %q failed: %w", path, err)
	}
	return data, nil
}

package bmp

import (
	"fmt"
	"io"
)

// Stored 8-bit palette samples are scaled by 257 so that 0xFF maps to
// 0xFFFF, spanning the full 16-bit channel range.
const paletteScale = 257

// ColorTable holds one lookup table per channel: pixel index i maps to
// (Red[i], Green[i], Blue[i]).
type ColorTable struct {
	Red   []uint16
	Green []uint16
	Blue  []uint16
}

// Len returns the number of palette entries.
func (t *ColorTable) Len() int { return len(t.Red) }

// paletteSize returns the entry count: ColorsUsed when declared and in
// range, otherwise the full 1<<BitCount.
func (d *Descriptor) paletteSize() int {
	full := 1 << uint(d.BitCount)
	if d.ColorsUsed != 0 && int(d.ColorsUsed) < full {
		return int(d.ColorsUsed)
	}
	return full
}

// readColorTable reads the palette that immediately follows the info
// header. Entries are stored blue first; OS/2 1.x packs them into 3
// bytes, every other variant adds a reserved fourth byte. Returns nil
// for depths above 8 bits.
func readColorTable(r io.ReadSeeker, d *Descriptor) (*ColorTable, error) {
	if !d.HasPalette() {
		return nil, nil
	}

	entrySize := 4
	if d.Variant == VariantOS21 {
		entrySize = 3
	}

	n := d.paletteSize()
	raw := make([]byte, n*entrySize)
	if _, err := r.Seek(int64(fileHeaderSize)+int64(d.InfoSize), io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek color table: %w", err)
	}
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("read color table: %w", err)
	}

	table := &ColorTable{
		Red:   make([]uint16, n),
		Green: make([]uint16, n),
		Blue:  make([]uint16, n),
	}
	for i := 0; i < n; i++ {
		table.Blue[i] = paletteScale * uint16(raw[i*entrySize])
		table.Green[i] = paletteScale * uint16(raw[i*entrySize+1])
		table.Red[i] = paletteScale * uint16(raw[i*entrySize+2])
	}

	return table, nil
}

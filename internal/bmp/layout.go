package bmp

// Stride returns the byte length of one stored row, including the
// padding that aligns every BMP row to a 4-byte boundary.
func (d *Descriptor) Stride() int {
	return ((int(d.Width)*int(d.BitCount) + 31) &^ 31) / 8
}

// Rows returns the number of image rows.
func (d *Descriptor) Rows() int {
	if d.Height < 0 {
		return int(-d.Height)
	}
	return int(d.Height)
}

// TopDown reports whether rows are stored top row first. Bottom-up
// storage (positive height) is the common case.
func (d *Descriptor) TopDown() bool { return d.Height < 0 }

// HasPalette reports whether the file carries a color table.
func (d *Descriptor) HasPalette() bool {
	return d.BitCount == 1 || d.BitCount == 4 || d.BitCount == 8
}

// Compressed reports whether the payload needs a run-length
// decompression pass before rows can be emitted.
func (d *Descriptor) Compressed() bool {
	return d.Compression == CompressionRLE8 || d.Compression == CompressionRLE4
}

// fileRow maps a display row to the stored row it is read from.
func (d *Descriptor) fileRow(row int) int {
	if d.TopDown() {
		return row
	}
	return d.Rows() - 1 - row
}

// SamplesPerPixel returns the band count of emitted rows: 1 for palette
// depths, 3 otherwise (32-bit input is compacted to RGB, alpha dropped).
func (d *Descriptor) SamplesPerPixel() int {
	switch d.BitCount {
	case 1, 4, 8:
		return 1
	default:
		return 3
	}
}

// BitsPerSample returns the sample depth of emitted rows: the bit count
// itself for palette depths, 5 for 16-bit pixels and 8 otherwise.
func (d *Descriptor) BitsPerSample() int {
	switch d.BitCount {
	case 1, 4, 8:
		return int(d.BitCount)
	case 16:
		return 5
	default:
		return 8
	}
}

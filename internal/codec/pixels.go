package codec

// BMP stores truecolor pixels in BGR(A) order. Rows are rearranged to
// RGB before emission; palette and 16-bit rows pass through untouched.

// SwapBGR swaps the blue and red samples of width BGR triplets in place.
func SwapBGR(row []byte, width int) {
	limit := width * 3
	if limit > len(row) {
		limit = len(row)
	}
	for i := 0; i+2 < limit; i += 3 {
		row[i], row[i+2] = row[i+2], row[i]
	}
}

// CompactBGRA rewrites width BGRA quads as RGB triples at the front of
// the same buffer, discarding the alpha byte, and returns the shortened
// slice. Output is always 3 bands, never 4.
func CompactBGRA(row []byte, width int) []byte {
	n := 0
	for i := 0; i+3 < len(row) && n < width*3; i += 4 {
		b, g, r := row[i], row[i+1], row[i+2]
		row[n] = r
		row[n+1] = g
		row[n+2] = b
		n += 3
	}
	return row[:n]
}

// RearrangePixels converts one stored row into emission order and trims
// the 4-byte row padding. 24-bit rows get an in-place BGR to RGB swap,
// 32-bit rows are compacted to RGB at 3/4 density, every other depth
// passes through unchanged.
func RearrangePixels(row []byte, width, bitCount int) []byte {
	switch bitCount {
	case 24:
		SwapBGR(row, width)
		return trim(row, width*3)
	case 32:
		return CompactBGRA(row, width)
	case 16:
		return trim(row, width*2)
	default:
		return trim(row, (width*bitCount+7)/8)
	}
}

func trim(row []byte, n int) []byte {
	if n < len(row) {
		return row[:n]
	}
	return row
}

// RGB555ToRGBA expands 16-bit RGB555 pixels to 8-bit RGBA for display.
// BMP 16-bit data defaults to 5-5-5 masks; files that rely on custom
// BITFIELDS masks are not reconstructed faithfully.
func RGB555ToRGBA(src, dst []byte) {
	srcIdx := 0
	dstIdx := 0

	for srcIdx+1 < len(src) && dstIdx+3 < len(dst) {
		pel := uint16(src[srcIdx]) | uint16(src[srcIdx+1])<<8

		r := (pel & 0x7C00) >> 10
		g := (pel & 0x03E0) >> 5
		b := pel & 0x001F

		// Expand 5/5/5 to 8/8/8
		r = (r << 3) | (r >> 2)
		g = (g << 3) | (g >> 2)
		b = (b << 3) | (b >> 2)

		dst[dstIdx] = byte(r)
		dst[dstIdx+1] = byte(g)
		dst[dstIdx+2] = byte(b)
		dst[dstIdx+3] = 255

		srcIdx += 2
		dstIdx += 4
	}
}

// Package codec implements the byte-level transforms of BMP decoding:
// RLE4/RLE8 run-length decompression and pixel channel rearrangement.
package codec

// RLE escape opcodes. A zero count byte switches on the byte after it;
// any other second byte value starts an absolute-mode literal run.
const (
	rleEndOfLine   = 0
	rleEndOfBitmap = 1
	rleDelta       = 2
)

// RLEDecompress8 expands an RLE8 stream into dest, one palette index
// per byte. width is the image width in pixels, used by the delta
// opcode to skip across rows.
//
// Every source read and destination write is bounds checked and
// decoding stops the moment either buffer is exhausted, even
// mid-opcode. The return value reports a clean finish: true when the
// end-of-bitmap marker was reached or the destination was completely
// filled, false when the source ran out first. Destination cells never
// written keep their zero value either way.
func RLEDecompress8(src, dest []byte, width int) bool {
	return rleDecompress(src, dest, width, false)
}

// RLEDecompress4 expands an RLE4 stream into dest, unpacking each
// nibble to one palette index byte. Semantics match RLEDecompress8.
func RLEDecompress4(src, dest []byte, width int) bool {
	return rleDecompress(src, dest, width, true)
}

func rleDecompress(src, dest []byte, width int, fourBit bool) bool {
	srcIdx := 0
	destIdx := 0

	for {
		if destIdx >= len(dest) {
			return true
		}
		if srcIdx >= len(src) {
			return false
		}

		count := int(src[srcIdx])
		srcIdx++

		if count > 0 {
			// Encoded run: count pixels derived from one index byte.
			// RLE4 alternates the high and low nibble, high first.
			if srcIdx >= len(src) {
				return false
			}
			pix := src[srcIdx]
			srcIdx++
			for k := 0; k < count && destIdx < len(dest); k++ {
				if !fourBit {
					dest[destIdx] = pix
				} else if k&1 == 0 {
					dest[destIdx] = pix >> 4
				} else {
					dest[destIdx] = pix & 0x0F
				}
				destIdx++
			}
			continue
		}

		if srcIdx >= len(src) {
			return false
		}
		op := src[srcIdx]
		srcIdx++

		switch op {
		case rleEndOfLine:
			// The flat output layout needs no explicit row advance;
			// tolerated as a no-op.

		case rleEndOfBitmap:
			return true

		case rleDelta:
			// Skip (dx, dy) pixels; skipped cells stay at index 0.
			if srcIdx+1 >= len(src) {
				return false
			}
			destIdx += int(src[srcIdx]) + int(src[srcIdx+1])*width
			srcIdx += 2

		default:
			// Absolute mode: op literal indices follow, padded to an
			// even byte count in the stream.
			count = int(op)
			var k int
			if fourBit {
				for k = 0; k < count && destIdx < len(dest) && srcIdx < len(src); k++ {
					if k&1 == 0 {
						dest[destIdx] = src[srcIdx] >> 4
					} else {
						dest[destIdx] = src[srcIdx] & 0x0F
						srcIdx++
					}
					destIdx++
				}
			} else {
				for k = 0; k < count && destIdx < len(dest) && srcIdx < len(src); k++ {
					dest[destIdx] = src[srcIdx]
					srcIdx++
					destIdx++
				}
			}
			if k&1 == 1 {
				srcIdx++
			}
		}
	}
}

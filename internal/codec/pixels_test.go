package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwapBGR(t *testing.T) {
	row := []byte{1, 2, 3, 4, 5, 6}

	SwapBGR(row, 2)

	assert.Equal(t, []byte{3, 2, 1, 6, 5, 4}, row)
}

func TestSwapBGR_LeavesPaddingAlone(t *testing.T) {
	row := []byte{1, 2, 3, 0xEE, 0xEE, 0xEE}

	SwapBGR(row, 1)

	assert.Equal(t, []byte{3, 2, 1, 0xEE, 0xEE, 0xEE}, row)
}

func TestCompactBGRA(t *testing.T) {
	row := []byte{
		0x01, 0x02, 0x03, 0xFF,
		0x0A, 0x0B, 0x0C, 0x00,
	}

	out := CompactBGRA(row, 2)

	require.Len(t, out, 6)
	assert.Equal(t, []byte{0x03, 0x02, 0x01, 0x0C, 0x0B, 0x0A}, out)
}

func TestRearrangePixels(t *testing.T) {
	tests := []struct {
		name     string
		row      []byte
		width    int
		bitCount int
		want     []byte
	}{
		{
			name:     "24-bit swaps and trims padding",
			row:      []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 0xEE, 0xEE, 0xEE},
			width:    3,
			bitCount: 24,
			want:     []byte{3, 2, 1, 6, 5, 4, 9, 8, 7},
		},
		{
			name:     "32-bit compacts to three bands",
			row:      []byte{1, 2, 3, 255, 4, 5, 6, 255},
			width:    2,
			bitCount: 32,
			want:     []byte{3, 2, 1, 6, 5, 4},
		},
		{
			name:     "16-bit passes through",
			row:      []byte{0x34, 0x12, 0x78, 0x56, 0xEE, 0xEE, 0xEE, 0xEE},
			width:    2,
			bitCount: 16,
			want:     []byte{0x34, 0x12, 0x78, 0x56},
		},
		{
			name:     "4-bit passes through packed",
			row:      []byte{0x12, 0x34, 0x50, 0xEE},
			width:    5,
			bitCount: 4,
			want:     []byte{0x12, 0x34, 0x50},
		},
		{
			name:     "1-bit passes through packed",
			row:      []byte{0xA5, 0xEE, 0xEE, 0xEE},
			width:    8,
			bitCount: 1,
			want:     []byte{0xA5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RearrangePixels(tt.row, tt.width, tt.bitCount)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRGB555ToRGBA(t *testing.T) {
	src := []byte{
		0xFF, 0x7F, // 0x7FFF: white
		0x00, 0x7C, // 0x7C00: pure red
		0xE0, 0x03, // 0x03E0: pure green
		0x1F, 0x00, // 0x001F: pure blue
	}
	dst := make([]byte, 16)

	RGB555ToRGBA(src, dst)

	assert.Equal(t, []byte{255, 255, 255, 255}, dst[0:4])
	assert.Equal(t, []byte{255, 0, 0, 255}, dst[4:8])
	assert.Equal(t, []byte{0, 255, 0, 255}, dst[8:12])
	assert.Equal(t, []byte{0, 0, 255, 255}, dst[12:16])
}

func TestRGB555ToRGBA_FiveBitExpansion(t *testing.T) {
	// Sample 0x10 (16) expands to (16<<3)|(16>>2) = 132.
	src := []byte{0x00, 0x40} // red channel = 0x10
	dst := make([]byte, 4)

	RGB555ToRGBA(src, dst)

	assert.Equal(t, []byte{132, 0, 0, 255}, dst)
}

package handler

import (
	"github.com/gorilla/websocket"

	"github.com/okiselev/bmp-html5/internal/bmp"
	"github.com/okiselev/bmp-html5/internal/codec"
)

// canvasSink converts decoded rows to RGBA and pushes each one over the
// websocket as a binary frame. Palette resolution happens here, through
// the decoder's color table, so the core decoder stays format-agnostic.
type canvasSink struct {
	conn  *websocket.Conn
	width int
	table *bmp.ColorTable
	rgba  []byte
}

func newCanvasSink(conn *websocket.Conn, width int, table *bmp.ColorTable) *canvasSink {
	return &canvasSink{
		conn:  conn,
		width: width,
		table: table,
		rgba:  make([]byte, width*4),
	}
}

// WriteRow implements bmp.Sink.
func (s *canvasSink) WriteRow(row int, pix []byte, samplesPerPixel, bitsPerSample int) error {
	switch {
	case samplesPerPixel == 1:
		s.expandPalette(pix, bitsPerSample)
	case bitsPerSample == 5:
		// 16-bit rows pass through the decoder unconverted; expand
		// with default 5-5-5 masks for display.
		codec.RGB555ToRGBA(pix, s.rgba)
	default:
		s.expandRGB(pix)
	}

	return s.conn.WriteMessage(websocket.BinaryMessage, s.rgba)
}

// expandPalette resolves packed 1/4/8-bit samples, or the run-length
// path's one-index-per-byte rows, through the color table.
func (s *canvasSink) expandPalette(pix []byte, bits int) {
	for i := 0; i < s.width; i++ {
		var idx int
		switch bits {
		case 1:
			if i/8 < len(pix) {
				idx = int(pix[i/8] >> uint(7-i%8) & 1)
			}
		case 4:
			if i/2 < len(pix) {
				if i&1 == 0 {
					idx = int(pix[i/2] >> 4)
				} else {
					idx = int(pix[i/2] & 0x0F)
				}
			}
		default:
			if i < len(pix) {
				idx = int(pix[i])
			}
		}

		var r, g, b byte
		if s.table != nil && idx < s.table.Len() {
			r = byte(s.table.Red[idx] >> 8)
			g = byte(s.table.Green[idx] >> 8)
			b = byte(s.table.Blue[idx] >> 8)
		}
		s.rgba[i*4] = r
		s.rgba[i*4+1] = g
		s.rgba[i*4+2] = b
		s.rgba[i*4+3] = 255
	}
}

func (s *canvasSink) expandRGB(pix []byte) {
	for i := 0; i < s.width; i++ {
		var r, g, b byte
		if i*3+2 < len(pix) {
			r = pix[i*3]
			g = pix[i*3+1]
			b = pix[i*3+2]
		}
		s.rgba[i*4] = r
		s.rgba[i*4+1] = g
		s.rgba[i*4+2] = b
		s.rgba[i*4+3] = 255
	}
}

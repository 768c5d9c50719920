package bmp

import (
	"fmt"
	"io"

	"github.com/okiselev/bmp-html5/internal/codec"
	"github.com/okiselev/bmp-html5/internal/logging"
)

// Sink consumes decoded rows. WriteRow is called exactly once per row,
// in increasing row order, top row first. The pixel slice is only valid
// until WriteRow returns; sinks that keep rows must copy them.
type Sink interface {
	WriteRow(row int, pix []byte, samplesPerPixel, bitsPerSample int) error
}

// Decoder reads one bitmap from a random-access byte source.
type Decoder struct {
	r     io.ReadSeeker
	desc  *Descriptor
	table *ColorTable
}

// NewDecoder parses the file and info headers and, for palette depths,
// the color table. Header validation failures are fatal; anything that
// goes wrong later is tolerated per row.
func NewDecoder(r io.ReadSeeker) (*Decoder, error) {
	desc, err := DecodeHeader(r)
	if err != nil {
		return nil, err
	}

	table, err := readColorTable(r, desc)
	if err != nil {
		return nil, err
	}

	return &Decoder{r: r, desc: desc, table: table}, nil
}

// Descriptor returns the decoded header fields.
func (d *Decoder) Descriptor() *Descriptor { return d.desc }

// ColorTable returns the palette lookup tables, or nil for depths above
// 8 bits.
func (d *Decoder) ColorTable() *ColorTable { return d.table }

// Result reports how a decode finished. A non-nil Result with entries
// in RowErrors or Truncated set still means every row was emitted.
type Result struct {
	RowErrors []RowError // uncompressed path: rows whose seek or read failed
	Truncated bool       // run-length path: stream ended before the end-of-bitmap marker
}

// Decode extracts every row and hands it to sink in display order.
func (d *Decoder) Decode(sink Sink) (*Result, error) {
	switch d.desc.Compression {
	case CompressionRGB:
		return d.decodeUncompressed(sink)
	case CompressionRLE8, CompressionRLE4:
		return d.decodeRunLength(sink)
	default:
		return nil, UnsupportedCompressionError{Compression: d.desc.Compression}
	}
}

// decodeUncompressed seeks to each stored row and reads it directly.
// A failing row is recorded and emitted from whatever the row buffer
// holds, then decoding moves on.
func (d *Decoder) decodeUncompressed(sink Sink) (*Result, error) {
	var (
		res     Result
		rows    = d.desc.Rows()
		stride  = d.desc.Stride()
		width   = int(d.desc.Width)
		bits    = int(d.desc.BitCount)
		samples = d.desc.SamplesPerPixel()
		depth   = d.desc.BitsPerSample()
	)

	buf := make([]byte, stride)
	for row := 0; row < rows; row++ {
		offset := int64(d.desc.DataOffset) + int64(d.desc.fileRow(row))*int64(stride)
		if err := d.readAt(offset, buf); err != nil {
			rowErr := RowError{Row: row, Err: err}
			res.RowErrors = append(res.RowErrors, rowErr)
			logging.Warn("%v", rowErr)
		}

		pix := codec.RearrangePixels(buf, width, bits)
		if err := sink.WriteRow(row, pix, samples, depth); err != nil {
			return &res, fmt.Errorf("write row %d: %w", row, err)
		}
	}

	return &res, nil
}

// decodeRunLength expands the whole RLE payload into a flat buffer of
// one palette index per byte, then emits it row by row. The compressed
// stream is always interpreted bottom-up, even for negative heights;
// the uncompressed path respects the sign but this one never did in the
// original converter, and the behavior is kept.
func (d *Decoder) decodeRunLength(sink Sink) (*Result, error) {
	var (
		res   Result
		rows  = d.desc.Rows()
		width = int(d.desc.Width)
	)

	end, err := d.r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("measure source: %w", err)
	}
	comprSize := end - int64(d.desc.DataOffset)
	if comprSize < 0 {
		comprSize = 0
	}

	compr := make([]byte, comprSize)
	if err := d.readAt(int64(d.desc.DataOffset), compr); err != nil {
		return nil, fmt.Errorf("read compressed payload: %w", err)
	}

	flat := make([]byte, width*rows)
	var complete bool
	if d.desc.Compression == CompressionRLE8 {
		complete = codec.RLEDecompress8(compr, flat, width)
	} else {
		complete = codec.RLEDecompress4(compr, flat, width)
	}
	if !complete {
		res.Truncated = true
		logging.Warn("bmp: run-length stream truncated, undecoded pixels stay at index 0")
	}

	for row := 0; row < rows; row++ {
		off := (rows - 1 - row) * width
		if err := sink.WriteRow(row, flat[off:off+width], 1, 8); err != nil {
			return &res, fmt.Errorf("write row %d: %w", row, err)
		}
	}

	return &res, nil
}

func (d *Decoder) readAt(offset int64, buf []byte) error {
	if _, err := d.r.Seek(offset, io.SeekStart); err != nil {
		return err
	}
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return err
	}
	return nil
}

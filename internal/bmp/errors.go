package bmp

import (
	"errors"
	"fmt"
)

// ErrNotBitmap reports that the source does not begin with the "BM"
// signature. It is fatal: no row is read after it.
var ErrNotBitmap = errors.New("bmp: not a bitmap file")

// UnsupportedBitDepthError reports a bit count outside {1, 4, 8, 16, 24, 32}.
type UnsupportedBitDepthError struct {
	Bits int16
}

func (e UnsupportedBitDepthError) Error() string {
	return fmt.Sprintf("bmp: unsupported bit depth %d", e.Bits)
}

// UnsupportedCompressionError reports a compression method this decoder
// cannot expand (anything outside RGB, RLE4 and RLE8).
type UnsupportedCompressionError struct {
	Compression uint32
}

func (e UnsupportedCompressionError) Error() string {
	return fmt.Sprintf("bmp: unsupported compression %s", CompressionName(e.Compression))
}

// RowError records a seek or read failure for a single row of the
// uncompressed path. It is non-fatal: the row is reported and decoding
// continues with the remaining rows.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("bmp: row %d: %v", e.Row, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// Package wire parses the attested cross-chain message format: an outer
// routing header wrapping a burn payload, both with fixed byte offsets.
// All parsing is built on bounds-checked views that alias the caller's
// buffer; no field is copied for validation.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds is returned when a read or sub-view would exceed the
	// view's window.
	ErrOutOfBounds = errors.New("read exceeds view bounds")

	// ErrValueOverflow is returned when a 32-byte amount field does not fit
	// in 64 bits.
	ErrValueOverflow = errors.New("value does not fit in 64 bits")
)

// View is a read-only window over a byte buffer. Sub-views and field reads
// are validated against the window; the underlying bytes are aliased, never
// copied. The zero value is an empty view.
type View struct {
	buf []byte
}

// NewView wraps an entire buffer.
func NewView(b []byte) View {
	return View{buf: b}
}

// Len returns the window length in bytes.
func (v View) Len() int {
	return len(v.buf)
}

// Sub derives a view of n bytes starting at off, validated against this
// view's own bounds.
func (v View) Sub(off, n int) (View, error) {
	if off < 0 || n < 0 || off+n > len(v.buf) {
		return View{}, fmt.Errorf("sub-view [%d:%d) of %d bytes: %w", off, off+n, len(v.buf), ErrOutOfBounds)
	}
	return View{buf: v.buf[off : off+n]}, nil
}

// Tail derives a view of everything from off to the end of the window.
// The tail may be empty.
func (v View) Tail(off int) (View, error) {
	if off < 0 || off > len(v.buf) {
		return View{}, fmt.Errorf("tail at %d of %d bytes: %w", off, len(v.buf), ErrOutOfBounds)
	}
	return View{buf: v.buf[off:]}, nil
}

// Uint32 reads a 4-byte big-endian integer at off.
func (v View) Uint32(off int) (uint32, error) {
	if off < 0 || off+4 > len(v.buf) {
		return 0, fmt.Errorf("uint32 at %d of %d bytes: %w", off, len(v.buf), ErrOutOfBounds)
	}
	return binary.BigEndian.Uint32(v.buf[off:]), nil
}

// Bytes32 returns the 32-byte field at off, aliasing the underlying buffer.
func (v View) Bytes32(off int) ([]byte, error) {
	if off < 0 || off+32 > len(v.buf) {
		return nil, fmt.Errorf("bytes32 at %d of %d bytes: %w", off, len(v.buf), ErrOutOfBounds)
	}
	return v.buf[off : off+32 : off+32], nil
}

// Amount reads a 32-byte big-endian unsigned integer at off and requires it
// to fit in 64 bits, since every amount in the ledger is a uint64 of minor
// currency units.
func (v View) Amount(off int) (uint64, error) {
	b, err := v.Bytes32(off)
	if err != nil {
		return 0, err
	}
	for _, c := range b[:24] {
		if c != 0 {
			return 0, fmt.Errorf("amount at %d: %w", off, ErrValueOverflow)
		}
	}
	return binary.BigEndian.Uint64(b[24:]), nil
}

// Bytes returns the whole window, aliased.
func (v View) Bytes() []byte {
	return v.buf
}

package flp

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Reader provides bounds-checked little-endian primitive reads at caller
// offsets over the raw file bytes. Every accessor validates the requested
// range against the file length instead of panicking on truncated input.
type Reader struct {
	data []byte
}

// NewReader wraps raw file bytes.
func NewReader(data []byte) *Reader { return &Reader{data: data} }

// Len reports the underlying length.
func (r *Reader) Len() int { return len(r.data) }

func (r *Reader) require(off, n int) error {
	if off < 0 || n < 0 || off+n > len(r.data) {
		return fmt.Errorf("read %d bytes at %d beyond file length %d", n, off, len(r.data))
	}
	return nil
}

// U8 reads one byte at off.
func (r *Reader) U8(off int) (uint8, error) {
	if err := r.require(off, 1); err != nil {
		return 0, err
	}
	return r.data[off], nil
}

// U16 reads a little-endian uint16 at off.
func (r *Reader) U16(off int) (uint16, error) {
	if err := r.require(off, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(r.data[off:]), nil
}

// U32 reads a little-endian uint32 at off.
func (r *Reader) U32(off int) (uint32, error) {
	if err := r.require(off, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(r.data[off:]), nil
}

// F32 reads a little-endian float32 at off.
func (r *Reader) F32(off int) (float32, error) {
	bits, err := r.U32(off)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

// F64 reads a little-endian float64 at off.
func (r *Reader) F64(off int) (float64, error) {
	if err := r.require(off, 8); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(r.data[off:])), nil
}

// Bytes reads n bytes at off.
func (r *Reader) Bytes(off, n int) ([]byte, error) {
	if err := r.require(off, n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r.data[off:off+n])
	return out, nil
}

// CString reads a null-terminated string starting at off, scanning at
// most max bytes.
func (r *Reader) CString(off, max int) (string, error) {
	if err := r.require(off, 0); err != nil {
		return "", err
	}
	end := off + max
	if end > len(r.data) {
		end = len(r.data)
	}
	for i := off; i < end; i++ {
		if r.data[i] == 0 {
			return string(r.data[off:i]), nil
		}
	}
	return "", fmt.Errorf("unterminated string at %d", off)
}

// String reads a length-terminated string of n bytes at off.
func (r *Reader) String(off, n int) (string, error) {
	b, err := r.Bytes(off, n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

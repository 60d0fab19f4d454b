// Package conv provides checked integer conversion helpers for bytecode
// encoding.
//
// These functions perform bounds checking before narrowing integer conversions
// to prevent silent overflow. They panic on overflow since callers are expected
// to have validated operands first; reaching the panic is a programming error.
package conv

import "math"

// IntToUint32 safely converts an int to uint32.
// Panics if n < 0 or n > math.MaxUint32.
func IntToUint32(n int) uint32 {
	// Use uint for comparison to avoid overflow on 32-bit platforms
	// where int cannot represent math.MaxUint32
	if n < 0 || uint(n) > math.MaxUint32 {
		panic("integer overflow: int value out of uint32 range")
	}
	return uint32(n)
}

// IntToUint16 safely converts an int to uint16.
// Panics if n < 0 or n > math.MaxUint16.
func IntToUint16(n int) uint16 {
	if n < 0 || n > math.MaxUint16 {
		panic("integer overflow: int value out of uint16 range")
	}
	return uint16(n)
}

// IntToUint8 safely converts an int to uint8.
// Panics if n < 0 or n > math.MaxUint8.
func IntToUint8(n int) uint8 {
	if n < 0 || n > math.MaxUint8 {
		panic("integer overflow: int value out of uint8 range")
	}
	return uint8(n)
}

// PutUint16 appends n to dst as a big-endian 16-bit operand.
// Panics if n does not fit.
func PutUint16(dst []byte, n int) []byte {
	v := IntToUint16(n)
	return append(dst, byte(v>>8), byte(v))
}

// SPDX-License-Identifier: MIT

// Package bitint provides power-of-two helpers used for FFT sizing.
// All operations are O(1), allocation-free and safe for real-time paths.
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of 2 >= size.
// Exact powers of 2 are returned unchanged; the size-1 subtraction
// is what prevents them from being doubled. Non-positive sizes
// return 1.
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}

	// 64-bit platforms (where int is 64-bit)
	if ^uint(0)>>63 == 0 {
		return int(1 << (bits.Len64(uint64(size - 1))))
	}

	// 32-bit platforms
	return int(1 << (bits.Len32(uint32(size - 1))))
}

// IsPowerOfTwo reports whether n is a power of 2. Powers of 2 have
// exactly one bit set, so n&(n-1) clears it and leaves zero.
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}

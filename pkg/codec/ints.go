// Package codec converts raw bytes to CJK ideograph strings and back.
//
// The pipeline has two independent stages: bytes are grouped pairwise into
// 16-bit integers, and integers are mapped bijectively onto codepoints drawn
// from three contiguous CJK blocks. Both stages are pure and safe for
// concurrent use.
package codec

import (
	"fmt"

	"github.com/moxune/sealscript/pkg/protocol"
)

// BytesToInts groups data pairwise and decodes each pair as a little-endian
// unsigned 16-bit integer. The input length must be even.
func BytesToInts(data []byte) ([]int, error) {
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("codec: odd byte length %d: %w", len(data), protocol.ErrInvalidInput)
	}
	ints := make([]int, len(data)/2)
	for i := range ints {
		ints[i] = int(data[2*i]) | int(data[2*i+1])<<8
	}
	return ints, nil
}

// IntsToBytes is the inverse of BytesToInts. Values are masked to their low
// 16 bits, so any output of BytesToInts round-trips exactly.
func IntsToBytes(ints []int) []byte {
	data := make([]byte, 2*len(ints))
	for i, n := range ints {
		data[2*i] = byte(n)
		data[2*i+1] = byte(n >> 8)
	}
	return data
}

package codec

import (
	"fmt"

	"github.com/moxune/sealscript/pkg/protocol"
)

// The alphabet is built from three contiguous CJK blocks, densest first:
// CJK Unified Ideographs Extension B, the base Unified Ideographs block,
// and Extension A. Together they cover exactly [0, 70304).
const (
	extBBase = 0x20000
	extBSize = 0xA6E0 // 42720

	uniBase = 0x4E00
	uniSize = 0x5200 // 20992

	extABase = 0x3400
	extASize = 0x19C0 // 6592

	// Domain is the number of integers representable as a single codepoint.
	Domain = extBSize + uniSize + extASize
)

// IntToCodepoint maps n in [0, Domain) onto its CJK codepoint.
func IntToCodepoint(n int) (rune, error) {
	switch {
	case n < 0 || n >= Domain:
		return 0, fmt.Errorf("codec: integer %d outside [0, %d): %w", n, Domain, protocol.ErrInvalidInput)
	case n < extBSize:
		return rune(extBBase + n), nil
	case n < extBSize+uniSize:
		return rune(uniBase + n - extBSize), nil
	default:
		return rune(extABase + n - extBSize - uniSize), nil
	}
}

// CodepointToInt is the inverse of IntToCodepoint. Codepoints outside the
// three blocks fail with ErrInvalidInput.
func CodepointToInt(cp rune) (int, error) {
	switch {
	case cp >= extBBase && cp < extBBase+extBSize:
		return int(cp - extBBase), nil
	case cp >= uniBase && cp < uniBase+uniSize:
		return int(cp-uniBase) + extBSize, nil
	case cp >= extABase && cp < extABase+extASize:
		return int(cp-extABase) + extBSize + uniSize, nil
	default:
		return 0, fmt.Errorf("codec: codepoint %U outside CJK alphabet: %w", cp, protocol.ErrInvalidInput)
	}
}

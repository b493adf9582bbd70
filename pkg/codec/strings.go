package codec

import "strings"

// IntsToString maps each integer through the CJK alphabet and concatenates
// the codepoints in order.
func IntsToString(ints []int) (string, error) {
	var b strings.Builder
	b.Grow(4 * len(ints)) // extension B codepoints encode as 4 UTF-8 bytes
	for _, n := range ints {
		cp, err := IntToCodepoint(n)
		if err != nil {
			return "", err
		}
		b.WriteRune(cp)
	}
	return b.String(), nil
}

// StringToInts walks s one codepoint at a time and maps each back through
// the CJK alphabet. Invalid UTF-8 decodes to U+FFFD, which is outside the
// alphabet and rejected.
func StringToInts(s string) ([]int, error) {
	ints := make([]int, 0, len(s)/3)
	for _, cp := range s {
		n, err := CodepointToInt(cp)
		if err != nil {
			return nil, err
		}
		ints = append(ints, n)
	}
	return ints, nil
}

// BytesToString renders an even-length byte sequence as CJK text.
func BytesToString(data []byte) (string, error) {
	ints, err := BytesToInts(data)
	if err != nil {
		return "", err
	}
	return IntsToString(ints)
}

// StringToBytes is the inverse of BytesToString.
func StringToBytes(s string) ([]byte, error) {
	ints, err := StringToInts(s)
	if err != nil {
		return nil, err
	}
	return IntsToBytes(ints), nil
}

package fragment

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/moxune/sealscript/pkg/crypt"
	"github.com/moxune/sealscript/pkg/protocol"
	"github.com/moxune/sealscript/pkg/unit"
)

func testEngine(t *testing.T, fill byte) *Engine {
	t.Helper()
	keys, err := crypt.DeriveKeys(bytes.Repeat([]byte{fill}, protocol.MasterKeySize))
	require.NoError(t, err)
	engine, err := NewDefaultEngine(keys)
	require.NoError(t, err)
	return engine
}

func TestSingleUnitRoundTrip(t *testing.T) {
	e := testEngine(t, 0x01)

	for _, text := range []string{
		"",
		"x",
		"hello world",
		"漢字も大丈夫",
		strings.Repeat("a", 271), // largest single-unit payload
	} {
		units, err := e.EncodeText(text)
		require.NoError(t, err)
		require.Len(t, units, 1, "len=%d", len(text))

		id, value, err := e.Decode(units)
		require.NoError(t, err)
		require.Equal(t, protocol.ProtocolText, id)
		require.Equal(t, text, value)
	}
}

func TestMultiUnitRoundTrip(t *testing.T) {
	e := testEngine(t, 0x02)

	cases := []struct {
		payloadLen int
		wantUnits  int
	}{
		{272, 2}, // exact slot multiple: terminal unit holds only the padding block
		{273, 2},
		{300, 2},
		{544, 3},
		{545, 3},
		{815, 3},
		{816, 4},
	}
	for _, tc := range cases {
		text := strings.Repeat("b", tc.payloadLen)

		units, err := e.EncodeText(text)
		require.NoError(t, err)
		require.Len(t, units, tc.wantUnits, "payloadLen=%d", tc.payloadLen)

		got, err := e.DecodeText(units)
		require.NoError(t, err)
		require.Equal(t, text, got, "payloadLen=%d", tc.payloadLen)
	}
}

func TestUnitsAreExactly140Codepoints(t *testing.T) {
	e := testEngine(t, 0x03)

	for _, text := range []string{"short", strings.Repeat("c", 900)} {
		units, err := e.EncodeText(text)
		require.NoError(t, err)
		for i, u := range units {
			if n := utf8.RuneCountInString(u); n != protocol.UnitRunes {
				t.Fatalf("unit %d has %d codepoints, want %d", i, n, protocol.UnitRunes)
			}
		}
	}
}

func TestFalsifiedContinuationFlag(t *testing.T) {
	e := testEngine(t, 0x04)

	units, err := e.EncodeText(strings.Repeat("d", 600))
	require.NoError(t, err)
	require.Len(t, units, 3)

	// A terminal unit smuggled into a continuation slot must be rejected.
	tampered := []string{units[2], units[1], units[2]}
	_, _, err = e.Decode(tampered)
	require.ErrorIs(t, err, protocol.ErrProtocolViolation)
}

func TestReorderedSequenceRejected(t *testing.T) {
	e := testEngine(t, 0x05)

	units, err := e.EncodeText(strings.Repeat("e", 400))
	require.NoError(t, err)
	require.Len(t, units, 2)

	// The terminal unit is positional. With a continuation unit in last
	// place the sequence is inconsistent.
	_, _, err = e.Decode([]string{units[1], units[0]})
	require.ErrorIs(t, err, protocol.ErrProtocolViolation)

	// A lone continuation unit has no authoritative header at all.
	_, _, err = e.Decode([]string{units[0]})
	require.ErrorIs(t, err, protocol.ErrProtocolViolation)
}

func TestEmptySequenceRejected(t *testing.T) {
	e := testEngine(t, 0x06)
	_, _, err := e.Decode(nil)
	require.ErrorIs(t, err, protocol.ErrProtocolViolation)
}

func TestUnsupportedProtocol(t *testing.T) {
	e := testEngine(t, 0x07)
	_, err := e.Encode(7, "x")
	require.ErrorIs(t, err, protocol.ErrUnsupportedProtocol)
}

func TestMalformedUnitString(t *testing.T) {
	e := testEngine(t, 0x08)
	_, _, err := e.Decode([]string{"not a unit"})
	require.ErrorIs(t, err, protocol.ErrInvalidInput)
}

// forgeTerminalUnit builds a unit whose terminal header carries an arbitrary
// block count, something the header codec itself refuses to encode.
func forgeTerminalUnit(t *testing.T, fill byte, blocks uint64) string {
	t.Helper()
	keys, err := crypt.DeriveKeys(bytes.Repeat([]byte{fill}, protocol.MasterKeySize))
	require.NoError(t, err)
	cipher, err := crypt.NewHeaderCipher(keys.HeaderKey)
	require.NoError(t, err)

	v := uint64(protocol.ProtocolText)<<protocol.ProtocolShift | blocks<<protocol.BlockCountShift
	plain := make([]byte, protocol.HeaderSize)
	binary.BigEndian.PutUint64(plain, v)
	raw, err := cipher.EncryptBlock(plain)
	require.NoError(t, err)

	s, err := unit.NewPacker(crypt.CryptoRandom{}).Pack(raw, nil)
	require.NoError(t, err)
	return s
}

func TestForgedTerminalSlotLength(t *testing.T) {
	e := testEngine(t, 0x0C)

	// Block count zero claims an empty ciphertext, which no genuine header
	// produces. It must classify as a protocol violation, not a cipher error.
	_, _, err := e.Decode([]string{forgeTerminalUnit(t, 0x0C, 0)})
	require.ErrorIs(t, err, protocol.ErrProtocolViolation)

	// Block count 31 claims 496 slot bytes, more than the slot holds.
	_, _, err = e.Decode([]string{forgeTerminalUnit(t, 0x0C, 31)})
	require.ErrorIs(t, err, protocol.ErrProtocolViolation)
}

func TestWrongKeysFailOpaquely(t *testing.T) {
	sender := testEngine(t, 0x09)
	receiver := testEngine(t, 0x0A)

	units, err := sender.EncodeText("between the lines")
	require.NoError(t, err)

	if _, _, err := receiver.Decode(units); err == nil {
		t.Fatal("decode succeeded under the wrong keys")
	}
}

func TestEncodePreservesChunkOrder(t *testing.T) {
	e := testEngine(t, 0x0B)

	// Distinct quarters make any chunk reordering visible after decode.
	text := strings.Repeat("1", 272) + strings.Repeat("2", 272) +
		strings.Repeat("3", 272) + strings.Repeat("4", 100)

	units, err := e.EncodeText(text)
	require.NoError(t, err)
	got, err := e.DecodeText(units)
	require.NoError(t, err)
	require.Equal(t, text, got)
}

package payload

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/moxune/sealscript/pkg/protocol"
)

func TestTextRoundTrip(t *testing.T) {
	r := NewRegistry()
	for _, s := range []string{"", "hello", "你好,世界", "mixed 中英 text"} {
		data, err := r.Render(protocol.ProtocolText, s)
		require.NoError(t, err)
		back, err := r.Interpret(protocol.ProtocolText, data)
		require.NoError(t, err)
		require.Equal(t, s, back)
	}
}

func TestTextRejectsNonString(t *testing.T) {
	r := NewRegistry()
	_, err := r.Render(protocol.ProtocolText, 42)
	require.ErrorIs(t, err, protocol.ErrInvalidInput)
}

func TestTextRejectsInvalidUTF8(t *testing.T) {
	r := NewRegistry()
	_, err := r.Interpret(protocol.ProtocolText, []byte{0xFF, 0xFE, 0xFD})
	require.ErrorIs(t, err, protocol.ErrInvalidInput)
}

func TestUnknownProtocol(t *testing.T) {
	r := NewRegistry()
	_, err := r.Render(7, "x")
	require.ErrorIs(t, err, protocol.ErrUnsupportedProtocol)
	_, err = r.Interpret(7, []byte("x"))
	require.ErrorIs(t, err, protocol.ErrUnsupportedProtocol)
}

type rawBytes struct{}

func (rawBytes) Render(value any) ([]byte, error)   { return value.([]byte), nil }
func (rawBytes) Interpret(data []byte) (any, error) { return data, nil }

func TestRegisterExtension(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(3, rawBytes{}))

	data, err := r.Render(3, []byte{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, data)

	require.ErrorIs(t, r.Register(64, rawBytes{}), protocol.ErrInvalidInput)
	require.ErrorIs(t, r.Register(-1, rawBytes{}), protocol.ErrInvalidInput)
}

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/wasm-printnf/encoder"
	"github.com/wippyai/wasm-printnf/errors"
)

func TestParseArg(t *testing.T) {
	tests := []struct {
		in   string
		kind encoder.ArgKind
		bits uint32
		text string
	}{
		{"u:42", encoder.ArgUnsigned, 42, ""},
		{"u:0x10", encoder.ArgUnsigned, 16, ""},
		{"i:-1", encoder.ArgSigned, 0xffffffff, ""},
		{"b:7", encoder.ArgByte, 7, ""},
		{"c:x", encoder.ArgChar, 'x', ""},
		{"f:1.5", encoder.ArgFloat, 0x3fc00000, ""},
		{"p:0x10", encoder.ArgPointer, 16, ""},
		{"s:abc", encoder.ArgString, 0, "abc"},
		{"s:", encoder.ArgString, 0, ""},
		{"s:a:b", encoder.ArgString, 0, "a:b"},
		{"null", encoder.ArgNullString, 0, ""},
		{"{Rect}:0x20", encoder.ArgStruct, 32, "Rect"},
		{"{ Vec2 }:8", encoder.ArgStruct, 8, "Vec2"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			a, err := parseArg(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, a.Kind())
			assert.Equal(t, tt.bits, a.Bits())
			assert.Equal(t, tt.text, a.Text())
		})
	}
}

func TestParseArg_Invalid(t *testing.T) {
	for _, in := range []string{
		"42",
		"x:1",
		"u:-1",
		"u:4294967296",
		"b:256",
		"i:abc",
		"f:nope",
		"c:",
		"c:xy",
		"c:é",
		"{Rect}",
		"{Rect}:zz",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := parseArg(in)
			assert.ErrorIs(t, err, &errors.Error{Phase: errors.PhaseConfig, Kind: errors.KindInvalidInput})
		})
	}
}

func TestParseArgs_StopsAtFirstError(t *testing.T) {
	_, err := parseArgs([]string{"u:1", "bad", "i:2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"bad"`)

	args, err := parseArgs(nil)
	require.NoError(t, err)
	assert.Empty(t, args)
}

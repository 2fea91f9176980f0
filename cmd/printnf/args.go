package main

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/wippyai/wasm-printnf/encoder"
	"github.com/wippyai/wasm-printnf/errors"
)

// parseArg reads a typed command-line argument:
//
//	u:42  i:-1  s:text  null  b:7  c:x  f:1.5  p:0x10  {Rect}:0x20
//
// Integers accept any Go base prefix.
func parseArg(s string) (encoder.Arg, error) {
	if s == "null" {
		return encoder.Null(), nil
	}
	if strings.HasPrefix(s, "{") {
		end := strings.Index(s, "}:")
		if end < 0 {
			return encoder.Arg{}, badArg(s, "struct argument must be {Name}:ptr")
		}
		ptr, err := parseUint(s, s[end+2:], 32)
		if err != nil {
			return encoder.Arg{}, err
		}
		return encoder.Struct(strings.TrimSpace(s[1:end]), uint32(ptr)), nil
	}

	kind, val, ok := strings.Cut(s, ":")
	if !ok {
		return encoder.Arg{}, badArg(s, "expected TYPE:VALUE")
	}
	switch kind {
	case "s":
		return encoder.String(val), nil
	case "u":
		v, err := parseUint(s, val, 32)
		return encoder.Uint(uint32(v)), err
	case "b":
		v, err := parseUint(s, val, 8)
		return encoder.Byte(byte(v)), err
	case "p":
		v, err := parseUint(s, val, 32)
		return encoder.Pointer(uint32(v)), err
	case "i":
		v, err := strconv.ParseInt(val, 0, 32)
		if err != nil {
			return encoder.Arg{}, badArg(s, err.Error())
		}
		return encoder.Int(int32(v)), nil
	case "f":
		v, err := strconv.ParseFloat(val, 32)
		if err != nil {
			return encoder.Arg{}, badArg(s, err.Error())
		}
		return encoder.Float(v), nil
	case "c":
		if len(val) != 1 || val[0] >= utf8.RuneSelf {
			return encoder.Arg{}, badArg(s, "char argument must be a single ASCII character")
		}
		return encoder.Char(val[0]), nil
	}
	return encoder.Arg{}, badArg(s, "unknown type "+strconv.Quote(kind))
}

func parseArgs(raw []string) ([]encoder.Arg, error) {
	args := make([]encoder.Arg, 0, len(raw))
	for _, s := range raw {
		a, err := parseArg(s)
		if err != nil {
			return nil, err
		}
		args = append(args, a)
	}
	return args, nil
}

func parseUint(arg, val string, bits int) (uint64, error) {
	v, err := strconv.ParseUint(val, 0, bits)
	if err != nil {
		return 0, badArg(arg, err.Error())
	}
	return v, nil
}

func badArg(arg, detail string) error {
	return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
		Value(arg).
		Detail("argument %q: %s", arg, detail).
		Build()
}

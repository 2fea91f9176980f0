package guestgen

import (
	"encoding/binary"
	"math"

	"github.com/tetratelabs/wazero/api"
)

// Demo guest memory map.
const (
	DemoHello     = 16
	DemoTitle     = 32
	DemoBGFormat  = 48
	DemoRGBFormat = 80
	DemoBG        = 112
	DemoRed       = 116
	DemoBGRef     = 120
	DemoBGItems   = 128
	DemoBGList    = 136
	DemoRGBItems  = 148
	DemoRGBList   = 164
	DemoRect      = 176
	DemoWindow    = 192
	DemoHeapBase  = 1024
)

// Demo builds a guest that behaves like the printnf example program with a
// fixed rectangle: init prints a greeting and its background color through
// printnf_void_list, draw clears the screen and fills one red rectangle.
func Demo() []byte {
	i32 := []api.ValueType{api.ValueTypeI32}
	none := []api.ValueType{}

	b := New("env").
		Import("printn", i32, none).
		Import("printnf_void_list", []api.ValueType{api.ValueTypeI32, api.ValueTypeI32}, none).
		Import("clear_background", i32, none).
		Import("set_fill_rgba", i32, none).
		Import("draw_rect", i32, none).
		Calls("init", none,
			Call{Import: "printn", Args: []int32{DemoHello}},
			Call{Import: "printnf_void_list", Args: []int32{DemoBGFormat, DemoBGList}},
			Call{Import: "printnf_void_list", Args: []int32{DemoRGBFormat, DemoRGBList}},
			Call{Import: "clear_background", Args: []int32{DemoBG}},
		).
		Calls("draw", []api.ValueType{api.ValueTypeF32},
			Call{Import: "clear_background", Args: []int32{DemoBG}},
			Call{Import: "set_fill_rgba", Args: []int32{DemoRed}},
			Call{Import: "draw_rect", Args: []int32{DemoRect}},
		).
		Const("get_window_handle", DemoWindow).
		Memory(1).
		Global("__heap_base", DemoHeapBase).
		Global("__heap_end", 65536)

	b.Data(DemoHello, []byte("Hello, world!\x00"))
	b.Data(DemoTitle, []byte("Foo, Bar"))
	b.Data(DemoBGFormat, []byte("BG Color = %{Color_RGBa}\x00"))
	b.Data(DemoRGBFormat, []byte("r = %b, g = %b, b = %b, a = %b\x00"))
	b.Data(DemoBG, []byte{51, 51, 51, 255, 255, 0, 0, 255})
	b.Data(DemoBGRef, words(DemoBG))
	b.Data(DemoBGItems, words(DemoBGRef))
	b.Data(DemoBGList, words(1, 1, DemoBGItems))
	b.Data(DemoRGBItems, words(DemoBG, DemoBG+1, DemoBG+2, DemoBG+3))
	b.Data(DemoRGBList, words(4, 4, DemoRGBItems))
	b.Data(DemoRect, words(math.Float32bits(670), math.Float32bits(355), 100, 100))
	b.Data(DemoWindow, words(8, DemoTitle, 0, 0, 0, 0))
	return b.MustBuild()
}

func words(vs ...uint32) []byte {
	out := make([]byte, 0, 4*len(vs))
	for _, v := range vs {
		out = binary.LittleEndian.AppendUint32(out, v)
	}
	return out
}

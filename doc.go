// Package printnf provides a typed printf-style argument encoder and the host
// side that displays its output for WebAssembly guests.
//
// A format string such as "r = %b, pos = %{Vec2}" is scanned once. Every
// specifier consumes one typed argument, whose raw little-endian bytes are
// appended to a reusable byte arena, and whose starting offset is recorded in a
// parallel reference list. The (format, arena, references) triple is handed to
// a sink that scans the format again to know how to reinterpret each slot.
//
// # Architecture Overview
//
//	printnf/              Root package with Memory and Allocator interfaces
//	├── arena/            Growable buffers (doubling from 512) and the byte accumulator
//	├── format/           Specifier scanner shared by encoder and sink
//	├── encoder/          Typed arguments and the single-pass encoder
//	├── numtext/          Decimal text writers used by the accumulator and the host
//	├── render/           Sink: re-scans the format and renders each slot
//	├── layout/           Struct layouts for %{NAME} pointers in guest memory
//	├── memory/           wazero memory adapter, byte-slice memory, guest heap
//	├── capture/          msgpack transport of encoded messages
//	├── host/             wazero "env" host module exposed to guests
//	├── runtime/          Guest loading, init/draw lifecycle, frame stepping
//	├── errors/           Structured error types
//	├── internal/guestgen Synthetic guest modules for tests and the demo
//	└── cmd/printnf/      CLI: encode, render, layouts, run
//
// # Quick Start
//
// Encode and display in-process:
//
//	enc := encoder.New(encoder.WithSink(render.NewTextSink(os.Stdout, render.New())))
//	err := enc.Printf("%s and %d", encoder.String("x"), encoder.Int(7))
//	// x and 7
//
// Run a guest module that imports the env host functions:
//
//	rt, err := runtime.New(ctx, &runtime.Config{})
//	defer rt.Close(ctx)
//	inst, err := rt.Load(ctx, wasmBytes)
//	err = inst.Init(ctx)
//
// # References and Growth
//
// References are offsets from the start of the arena, never addresses. The
// arena may be reallocated by a later argument in the same call, and an offset
// survives that where a pointer would not. Addresses are produced only at final
// consumption, through Message.Resolve.
//
// # Thread Safety
//
// An Encoder is not safe for concurrent use and must not be re-entered from
// its own sink. Use encoder.Pool for one encoder per goroutine, or
// encoder.Locked to serialize the encode-and-deliver sequence.
package printnf

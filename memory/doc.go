// Package memory provides guest memory adapters and the host-side heap.
//
// # Memory Wrapper
//
// Wraps wazero api.Memory for the printnf.Memory interface:
//
//	mem := memory.WrapMemory(mod.ExportedMemory("memory"))
//
// # Slice
//
// Slice is a printnf.Memory over a plain byte slice. It lets the renderer and
// layout decoder read an encoder arena the same way they read guest memory.
//
// # Heap
//
// Heap serves the guest's malloc, realloc, and free imports from the region
// between the module's __heap_base and __heap_end globals.
package memory

package pcode

import "unsafe"

// Number is the constraint satisfied by every scalar width the operand
// stack can hold. The ten concrete types in typedesc.NumericWidths map
// onto it one-for-one.
type Number interface {
	~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Integer is Number restricted to the eight fixed-width integer widths,
// for the integer DIV with its divide-by-zero check.
type Integer interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Float is Number restricted to the two floating widths, for the
// transcendental math opcodes.
type Float interface {
	~float32 | ~float64
}

// popValue pops sizeof(T) bytes from ctx and reinterprets them as T. The
// operand stack stores every numeric cell in native byte layout, so this
// is a plain reinterpret cast, not a decode.
func popValue[T Number](ctx Context) T {
	var zero T
	b := ctx.Pop(uint32(unsafe.Sizeof(zero)))
	return *(*T)(unsafe.Pointer(&b[0]))
}

// peekValue reads the top sizeof(T) bytes without removing them. DUP
// does not use it: it copies the raw bytes with ctx.Peek.
func peekValue[T Number](ctx Context) T {
	var zero T
	b := ctx.Peek(uint32(unsafe.Sizeof(zero)))
	return *(*T)(unsafe.Pointer(&b[0]))
}

// pushValue pushes the native byte layout of v onto ctx's operand stack.
func pushValue[T Number](ctx Context, v T) {
	size := unsafe.Sizeof(v)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&v)), size)
	ctx.Push(b)
}

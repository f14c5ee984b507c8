package progressive

import (
	"strconv"
	"unsafe"

	"pcvm/internal/evalerrors"
	"pcvm/internal/typedesc"
)

// parseElement parses one text element as td and returns its native
// byte layout, ready for Arena.Allocate-sized storage. Grounded on the
// same strconv-based literal parsing the expression runtime's CONST
// handling uses (internal/evaluator/const.go) - duplicated rather than
// exported across packages since each caller needs its own small
// type-to-parser switch and the logic is a few lines either way.
//
// For typedesc.String the "conversion" is the identity - spec.md's
// Start(T) "looks up a string→T converter"; for T=string that converter
// is trivial - and the returned bytes carry the spec-mandated trailing
// 0 terminator (spec.md §4.5 Invariants).
func parseElement(td typedesc.TypeDescriptor, text string) ([]byte, error) {
	switch td {
	case typedesc.String:
		return append([]byte(text), 0), nil
	case typedesc.Int8:
		return parseInt[int8](text, 8)
	case typedesc.Int16:
		return parseInt[int16](text, 16)
	case typedesc.Int32:
		return parseInt[int32](text, 32)
	case typedesc.Int64:
		return parseInt[int64](text, 64)
	case typedesc.Uint8:
		return parseUint[uint8](text, 8)
	case typedesc.Uint16:
		return parseUint[uint16](text, 16)
	case typedesc.Uint32:
		return parseUint[uint32](text, 32)
	case typedesc.Uint64:
		return parseUint[uint64](text, 64)
	case typedesc.Float32:
		f, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return nil, evalerrors.New(evalerrors.InvalidOperation, "bad float32 element "+text)
		}
		v := float32(f)
		return toBytes(unsafe.Pointer(&v), unsafe.Sizeof(v)), nil
	case typedesc.Float64:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, evalerrors.New(evalerrors.InvalidOperation, "bad float64 element "+text)
		}
		return toBytes(unsafe.Pointer(&f), unsafe.Sizeof(f)), nil
	default:
		return nil, evalerrors.New(evalerrors.Unsupported, "progressive creator only accepts numeric types or string")
	}
}

func parseInt[T ~int8 | ~int16 | ~int32 | ~int64](text string, bits int) ([]byte, error) {
	n, err := strconv.ParseInt(text, 10, bits)
	if err != nil {
		return nil, evalerrors.New(evalerrors.InvalidOperation, "bad integer element "+text)
	}
	v := T(n)
	return toBytes(unsafe.Pointer(&v), unsafe.Sizeof(v)), nil
}

func parseUint[T ~uint8 | ~uint16 | ~uint32 | ~uint64](text string, bits int) ([]byte, error) {
	n, err := strconv.ParseUint(text, 10, bits)
	if err != nil {
		return nil, evalerrors.New(evalerrors.InvalidOperation, "bad integer element "+text)
	}
	v := T(n)
	return toBytes(unsafe.Pointer(&v), unsafe.Sizeof(v)), nil
}

func toBytes(p unsafe.Pointer, size uintptr) []byte {
	return append([]byte(nil), unsafe.Slice((*byte)(p), size)...)
}

// ElementAt reinterprets the size-matching slice beginning at index*W
// bytes of data as T, for callers that have recovered a Shape via a
// type switch and know its Descriptor statically. Panics if T's size
// does not match the shape's element width - a programmer error, the
// same contract as evaluator.InputRef/OutputRef.
func ElementAt[T any](data []byte, index int, td typedesc.TypeDescriptor) T {
	var zero T
	width := int(td.StorageSize())
	if uintptr(width) != unsafe.Sizeof(zero) {
		panic("progressive: type size mismatch reading element")
	}
	start := index * width
	return *(*T)(unsafe.Pointer(&data[start]))
}

package evaluator

import (
	"strconv"
	"unsafe"

	"pcvm/internal/evalerrors"
	"pcvm/internal/typedesc"
)

// encodeConstant parses literal per td's Go type and writes its native
// byte layout into mem at offset. Integer literals must fit in T's
// range; float literals follow Go's strconv.ParseFloat, which is the
// same grammar as C99 strtod for the decimal forms the language allows.
func encodeConstant(mem []byte, offset uint32, td typedesc.TypeDescriptor, literal string) error {
	switch td {
	case typedesc.Int8:
		return putInt[int8](mem, offset, literal, 8)
	case typedesc.Int16:
		return putInt[int16](mem, offset, literal, 16)
	case typedesc.Int32:
		return putInt[int32](mem, offset, literal, 32)
	case typedesc.Int64:
		return putInt[int64](mem, offset, literal, 64)
	case typedesc.Uint8:
		return putUint[uint8](mem, offset, literal, 8)
	case typedesc.Uint16:
		return putUint[uint16](mem, offset, literal, 16)
	case typedesc.Uint32:
		return putUint[uint32](mem, offset, literal, 32)
	case typedesc.Uint64:
		return putUint[uint64](mem, offset, literal, 64)
	case typedesc.Float32:
		f, err := strconv.ParseFloat(literal, 32)
		if err != nil {
			return evalerrors.New(evalerrors.InvalidOperation, "bad float32 literal "+literal)
		}
		v := float32(f)
		putBytes(mem, offset, unsafe.Pointer(&v), unsafe.Sizeof(v))
		return nil
	case typedesc.Float64:
		f, err := strconv.ParseFloat(literal, 64)
		if err != nil {
			return evalerrors.New(evalerrors.InvalidOperation, "bad float64 literal "+literal)
		}
		putBytes(mem, offset, unsafe.Pointer(&f), unsafe.Sizeof(f))
		return nil
	default:
		return evalerrors.New(evalerrors.Unsupported, "unsupported constant type")
	}
}

func putInt[T ~int8 | ~int16 | ~int32 | ~int64](mem []byte, offset uint32, literal string, bits int) error {
	n, err := strconv.ParseInt(literal, 10, bits)
	if err != nil {
		return evalerrors.New(evalerrors.InvalidOperation, "bad integer literal "+literal)
	}
	v := T(n)
	putBytes(mem, offset, unsafe.Pointer(&v), unsafe.Sizeof(v))
	return nil
}

func putUint[T ~uint8 | ~uint16 | ~uint32 | ~uint64](mem []byte, offset uint32, literal string, bits int) error {
	n, err := strconv.ParseUint(literal, 10, bits)
	if err != nil {
		return evalerrors.New(evalerrors.InvalidOperation, "bad integer literal "+literal)
	}
	v := T(n)
	putBytes(mem, offset, unsafe.Pointer(&v), unsafe.Sizeof(v))
	return nil
}

func putBytes(mem []byte, offset uint32, p unsafe.Pointer, size uintptr) {
	src := unsafe.Slice((*byte)(p), size)
	copy(mem[offset:], src)
}

package evaluator

import (
	"fmt"
	"math"
	"unsafe"

	"pcvm/internal/typedesc"
)

// valueToString renders a raw data-area or stack cell for Decompile's
// CONST folding and for the Debug-mode trace line.
func valueToString(td typedesc.TypeDescriptor, b []byte) string {
	if len(b) == 0 {
		return "?"
	}
	switch td {
	case typedesc.Int8:
		return fmt.Sprintf("%d", *(*int8)(unsafe.Pointer(&b[0])))
	case typedesc.Int16:
		return fmt.Sprintf("%d", *(*int16)(unsafe.Pointer(&b[0])))
	case typedesc.Int32:
		return fmt.Sprintf("%d", *(*int32)(unsafe.Pointer(&b[0])))
	case typedesc.Int64:
		return fmt.Sprintf("%d", *(*int64)(unsafe.Pointer(&b[0])))
	case typedesc.Uint8:
		return fmt.Sprintf("%d", *(*uint8)(unsafe.Pointer(&b[0])))
	case typedesc.Uint16:
		return fmt.Sprintf("%d", *(*uint16)(unsafe.Pointer(&b[0])))
	case typedesc.Uint32:
		return fmt.Sprintf("%d", *(*uint32)(unsafe.Pointer(&b[0])))
	case typedesc.Uint64:
		return fmt.Sprintf("%d", *(*uint64)(unsafe.Pointer(&b[0])))
	case typedesc.Float32:
		return strconvFloat(float64(*(*float32)(unsafe.Pointer(&b[0]))))
	case typedesc.Float64:
		return strconvFloat(*(*float64)(unsafe.Pointer(&b[0])))
	default:
		return "?"
	}
}

func strconvFloat(f float64) string {
	if math.IsInf(f, 1) {
		return "+Inf"
	}
	if math.IsInf(f, -1) {
		return "-Inf"
	}
	if math.IsNaN(f) {
		return "NaN"
	}
	return fmt.Sprintf("%g", f)
}

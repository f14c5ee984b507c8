package pcode

import "pcvm/internal/typedesc"

// Comparisons return typedesc.Bool (a uint8, 0 or 1), matching the
// expression language's lack of a dedicated boolean storage type.
func init() {
	for _, t := range typedesc.NumericWidths() {
		registerCompare(t)
	}
}

func boolByte(v bool) uint8 {
	if v {
		return 1
	}
	return 0
}

func registerCompare(td typedesc.TypeDescriptor) {
	switch td.Kind {
	case typedesc.Signed:
		switch td.Width {
		case 1:
			registerCompareOps[int8](td)
		case 2:
			registerCompareOps[int16](td)
		case 4:
			registerCompareOps[int32](td)
		case 8:
			registerCompareOps[int64](td)
		}
	case typedesc.Unsigned:
		switch td.Width {
		case 1:
			registerCompareOps[uint8](td)
		case 2:
			registerCompareOps[uint16](td)
		case 4:
			registerCompareOps[uint32](td)
		case 8:
			registerCompareOps[uint64](td)
		}
	case typedesc.Float:
		switch td.Width {
		case 4:
			registerCompareOps[float32](td)
		case 8:
			registerCompareOps[float64](td)
		}
	}
}

func registerCompareOps[T Number](td typedesc.TypeDescriptor) {
	type entry struct {
		name string
		cmp  func(a, b T) bool
	}
	entries := []entry{
		{"EQ", func(a, b T) bool { return a == b }},
		{"NEQ", func(a, b T) bool { return a != b }},
		{"GT", func(a, b T) bool { return a > b }},
		{"LT", func(a, b T) bool { return a < b }},
		{"GTE", func(a, b T) bool { return a >= b }},
		{"LTE", func(a, b T) bool { return a <= b }},
	}
	for _, e := range entries {
		cmp := e.cmp
		RegisterFunction(FunctionRecord{
			Name: e.name, NumInputs: 2, NumOutputs: 1,
			Types: []typedesc.TypeDescriptor{td, td, typedesc.Bool},
			Fn: func(ctx Context) {
				b := popValue[T](ctx)
				a := popValue[T](ctx)
				ctx.Push([]byte{boolByte(cmp(a, b))})
			},
		})
	}
}

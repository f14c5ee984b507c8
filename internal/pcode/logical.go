package pcode

import "pcvm/internal/typedesc"

// AND/OR/XOR operate on typedesc.Bool cells (uint8, expected to hold
// only 0 or 1 - the output of a comparison opcode or a literal 0/1
// constant). Any nonzero byte is treated as true.
func init() {
	RegisterFunction(FunctionRecord{
		Name: "AND", NumInputs: 2, NumOutputs: 1,
		Types: []typedesc.TypeDescriptor{typedesc.Bool, typedesc.Bool, typedesc.Bool},
		Fn: func(ctx Context) {
			b := popValue[uint8](ctx) != 0
			a := popValue[uint8](ctx) != 0
			ctx.Push([]byte{boolByte(a && b)})
		},
	})
	RegisterFunction(FunctionRecord{
		Name: "OR", NumInputs: 2, NumOutputs: 1,
		Types: []typedesc.TypeDescriptor{typedesc.Bool, typedesc.Bool, typedesc.Bool},
		Fn: func(ctx Context) {
			b := popValue[uint8](ctx) != 0
			a := popValue[uint8](ctx) != 0
			ctx.Push([]byte{boolByte(a || b)})
		},
	})
	RegisterFunction(FunctionRecord{
		Name: "XOR", NumInputs: 2, NumOutputs: 1,
		Types: []typedesc.TypeDescriptor{typedesc.Bool, typedesc.Bool, typedesc.Bool},
		Fn: func(ctx Context) {
			b := popValue[uint8](ctx) != 0
			a := popValue[uint8](ctx) != 0
			ctx.Push([]byte{boolByte(a != b)})
		},
	})
	RegisterFunction(FunctionRecord{
		Name: "NOT", NumInputs: 1, NumOutputs: 1,
		Types: []typedesc.TypeDescriptor{typedesc.Bool, typedesc.Bool},
		Fn: func(ctx Context) {
			a := popValue[uint8](ctx) != 0
			ctx.Push([]byte{boolByte(!a)})
		},
	})
}

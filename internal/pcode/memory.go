package pcode

import "pcvm/internal/typedesc"

// READ/WRITE/DUP move raw bytes between the data area and the operand
// stack; none of them interpret the bytes as a number, so a single width
// parametrised implementation serves all ten numeric widths - there is
// nothing here for Go generics to buy, the C++ original templates these
// only because C++ has no other way to write "a function of a constant".
func init() {
	for _, t := range typedesc.NumericWidths() {
		registerMemoryOps(t)
	}
}

func registerMemoryOps(t typedesc.TypeDescriptor) {
	width := t.StorageSize()

	RegisterFunction(FunctionRecord{
		Name:       "READ",
		NumInputs:  0,
		NumOutputs: 1,
		Types:      []typedesc.TypeDescriptor{t},
		Fn: func(ctx Context) {
			offset := ctx.NextOperand()
			ctx.Push(ctx.DataAt(offset, width))
		},
	})

	RegisterFunction(FunctionRecord{
		Name:       "WRITE",
		NumInputs:  1,
		NumOutputs: 0,
		// The second entry has no corresponding runtime output (none is
		// pushed back - NumOutputs is 0) but TryConsume's matchOutput
		// peek always reads Types[NumInputs], so WRITE carries a
		// trailing type slot purely for that match against the
		// destination variable's type marker Compile pushes ahead of
		// dispatch.
		Types: []typedesc.TypeDescriptor{t, t},
		Fn: func(ctx Context) {
			offset := ctx.NextOperand()
			ctx.SetDataAt(offset, ctx.Pop(width))
		},
	})

	RegisterFunction(FunctionRecord{
		Name:       "DUP",
		NumInputs:  1,
		NumOutputs: 2,
		Types:      []typedesc.TypeDescriptor{t, t, t},
		Fn: func(ctx Context) {
			ctx.Push(ctx.Peek(width))
		},
	})
}

package pcode

import (
	"pcvm/internal/evalerrors"
	"pcvm/internal/typedesc"
)

// Binary operand order: the first value pushed is the left/base operand
// a, the second (the one sitting on top of the stack when the opcode
// runs) is the right operand b, and every binary opcode computes a OP b.
// ADD/SUB/MUL/DIV/POW and the comparisons all follow this convention.
func init() {
	registerAddSubMul[int8](typedesc.Int8)
	registerAddSubMul[int16](typedesc.Int16)
	registerAddSubMul[int32](typedesc.Int32)
	registerAddSubMul[int64](typedesc.Int64)
	registerAddSubMul[uint8](typedesc.Uint8)
	registerAddSubMul[uint16](typedesc.Uint16)
	registerAddSubMul[uint32](typedesc.Uint32)
	registerAddSubMul[uint64](typedesc.Uint64)
	registerAddSubMul[float32](typedesc.Float32)
	registerAddSubMul[float64](typedesc.Float64)

	registerDivInt[int8](typedesc.Int8)
	registerDivInt[int16](typedesc.Int16)
	registerDivInt[int32](typedesc.Int32)
	registerDivInt[int64](typedesc.Int64)
	registerDivInt[uint8](typedesc.Uint8)
	registerDivInt[uint16](typedesc.Uint16)
	registerDivInt[uint32](typedesc.Uint32)
	registerDivInt[uint64](typedesc.Uint64)
	registerDivFloat[float32](typedesc.Float32)
	registerDivFloat[float64](typedesc.Float64)
}

func registerAddSubMul[T Number](td typedesc.TypeDescriptor) {
	RegisterFunction(FunctionRecord{
		Name: "ADD", NumInputs: 2, NumOutputs: 1,
		Types: []typedesc.TypeDescriptor{td, td, td},
		Fn: func(ctx Context) {
			b := popValue[T](ctx)
			a := popValue[T](ctx)
			pushValue(ctx, a+b)
		},
	})
	RegisterFunction(FunctionRecord{
		Name: "SUB", NumInputs: 2, NumOutputs: 1,
		Types: []typedesc.TypeDescriptor{td, td, td},
		Fn: func(ctx Context) {
			b := popValue[T](ctx)
			a := popValue[T](ctx)
			pushValue(ctx, a-b)
		},
	})
	RegisterFunction(FunctionRecord{
		Name: "MUL", NumInputs: 2, NumOutputs: 1,
		Types: []typedesc.TypeDescriptor{td, td, td},
		Fn: func(ctx Context) {
			b := popValue[T](ctx)
			a := popValue[T](ctx)
			pushValue(ctx, a*b)
		},
	})
}

// registerDivInt sets OutOfRange and pushes zero on divide-by-zero
// instead of reproducing Go's runtime-panic-on-integer-divide-by-zero;
// the expression runtime has no panic/recover story for Fast mode, so
// this has to be a checked branch rather than letting the machine trap.
func registerDivInt[T Integer](td typedesc.TypeDescriptor) {
	RegisterFunction(FunctionRecord{
		Name: "DIV", NumInputs: 2, NumOutputs: 1,
		Types: []typedesc.TypeDescriptor{td, td, td},
		Fn: func(ctx Context) {
			b := popValue[T](ctx)
			a := popValue[T](ctx)
			if b == 0 {
				ctx.Fail(evalerrors.OutOfRange)
				pushValue[T](ctx, 0)
				return
			}
			pushValue(ctx, a/b)
		},
	})
}

// registerDivFloat leaves zero-divisor handling to IEEE 754: the result
// is +-Inf or NaN and no flag is raised.
func registerDivFloat[T Float](td typedesc.TypeDescriptor) {
	RegisterFunction(FunctionRecord{
		Name: "DIV", NumInputs: 2, NumOutputs: 1,
		Types: []typedesc.TypeDescriptor{td, td, td},
		Fn: func(ctx Context) {
			b := popValue[T](ctx)
			a := popValue[T](ctx)
			pushValue(ctx, a/b)
		},
	})
}

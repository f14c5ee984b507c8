package pcode

import (
	"math"

	"pcvm/internal/typedesc"
)

// The transcendental functions are defined only for the two floating
// widths - PseudoCode.cpp's REGISTER_1_FUNCTION/REGISTER_2_FUNCTION never
// instantiate them for integers either.
func init() {
	registerUnaryFloat("SIN", typedesc.Float32, func(x float32) float32 { return float32(math.Sin(float64(x))) })
	registerUnaryFloat("COS", typedesc.Float32, func(x float32) float32 { return float32(math.Cos(float64(x))) })
	registerUnaryFloat("TAN", typedesc.Float32, func(x float32) float32 { return float32(math.Tan(float64(x))) })
	registerUnaryFloat("EXP", typedesc.Float32, func(x float32) float32 { return float32(math.Exp(float64(x))) })
	registerUnaryFloat("LOG", typedesc.Float32, func(x float32) float32 { return float32(math.Log(float64(x))) })
	registerUnaryFloat("LOG10", typedesc.Float32, func(x float32) float32 { return float32(math.Log10(float64(x))) })

	registerUnaryFloat("SIN", typedesc.Float64, math.Sin)
	registerUnaryFloat("COS", typedesc.Float64, math.Cos)
	registerUnaryFloat("TAN", typedesc.Float64, math.Tan)
	registerUnaryFloat("EXP", typedesc.Float64, math.Exp)
	registerUnaryFloat("LOG", typedesc.Float64, math.Log)
	registerUnaryFloat("LOG10", typedesc.Float64, math.Log10)

	registerPow[float32](typedesc.Float32, func(a, b float32) float32 { return float32(math.Pow(float64(a), float64(b))) })
	registerPow[float64](typedesc.Float64, math.Pow)
}

func registerUnaryFloat[T Float](name string, td typedesc.TypeDescriptor, fn func(T) T) {
	RegisterFunction(FunctionRecord{
		Name: name, NumInputs: 1, NumOutputs: 1,
		Types: []typedesc.TypeDescriptor{td, td},
		Fn: func(ctx Context) {
			x := popValue[T](ctx)
			pushValue(ctx, fn(x))
		},
	})
}

// registerPow follows the same a-OP-b operand convention as the other
// binary opcodes: the base is pushed first, the exponent second, so
// POW computes pow(base, exponent).
func registerPow[T Float](td typedesc.TypeDescriptor, fn func(a, b T) T) {
	RegisterFunction(FunctionRecord{
		Name: "POW", NumInputs: 2, NumOutputs: 1,
		Types: []typedesc.TypeDescriptor{td, td, td},
		Fn: func(ctx Context) {
			exp := popValue[T](ctx)
			base := popValue[T](ctx)
			pushValue(ctx, fn(base, exp))
		},
	})
}

package pcode

import (
	"pcvm/internal/evalerrors"
	"pcvm/internal/typedesc"
)

// CAST converts a single cell from one of the ten numeric widths to
// another. Semantics are wrapping, not saturating: the destination gets
// whatever bits a native Go conversion produces (two's-complement
// truncation for narrowing integers, IEEE truncation-toward-zero for
// float-to-int, ordinary widening otherwise). OutOfRange is reported
// whenever converting the result back to the source type does not
// reproduce the original value bit-for-bit - this uniformly covers
// integer narrowing, sign overflow, and float-to-int fraction loss as
// "lossy" without needing a separate range table per pair. The one
// caveat is NaN, which never round-trips equal to itself; a CAST of a
// NaN payload always reports OutOfRange, which is an acceptable
// approximation for a value that was already unrepresentable exactly.
func init() {
	registerCastsFrom[int8](typedesc.Int8)
	registerCastsFrom[int16](typedesc.Int16)
	registerCastsFrom[int32](typedesc.Int32)
	registerCastsFrom[int64](typedesc.Int64)
	registerCastsFrom[uint8](typedesc.Uint8)
	registerCastsFrom[uint16](typedesc.Uint16)
	registerCastsFrom[uint32](typedesc.Uint32)
	registerCastsFrom[uint64](typedesc.Uint64)
	registerCastsFrom[float32](typedesc.Float32)
	registerCastsFrom[float64](typedesc.Float64)
}

// registerCastsFrom registers CAST<From,To> for From fixed and To
// ranging over all ten numeric widths, including the identity cast
// (From == To), which is a legal no-op CAST in the expression language.
func registerCastsFrom[From Number](fromTd typedesc.TypeDescriptor) {
	registerCastPair[From, int8](fromTd, typedesc.Int8)
	registerCastPair[From, int16](fromTd, typedesc.Int16)
	registerCastPair[From, int32](fromTd, typedesc.Int32)
	registerCastPair[From, int64](fromTd, typedesc.Int64)
	registerCastPair[From, uint8](fromTd, typedesc.Uint8)
	registerCastPair[From, uint16](fromTd, typedesc.Uint16)
	registerCastPair[From, uint32](fromTd, typedesc.Uint32)
	registerCastPair[From, uint64](fromTd, typedesc.Uint64)
	registerCastPair[From, float32](fromTd, typedesc.Float32)
	registerCastPair[From, float64](fromTd, typedesc.Float64)
}

func registerCastPair[From, To Number](fromTd, toTd typedesc.TypeDescriptor) {
	RegisterFunction(FunctionRecord{
		Name: "CAST", NumInputs: 1, NumOutputs: 1,
		Types: []typedesc.TypeDescriptor{fromTd, toTd},
		Fn: func(ctx Context) {
			v := popValue[From](ctx)
			converted := To(v)
			back := From(converted)
			if back != v {
				ctx.Fail(evalerrors.OutOfRange)
			}
			pushValue(ctx, converted)
		},
	})
}

package replconsole

import (
	"fmt"
	"strconv"

	"pcvm/internal/evaluator"
	"pcvm/internal/typedesc"
)

// writeInput and readOutput bridge the console's text values to
// InputRef/OutputRef's compile-time-typed generic accessors; since the
// console only learns a variable's type at runtime, it must switch on
// it explicitly - the same dispatch evaluator's own encodeConstant and
// valueToString use for CONST literals and Decompile/Debug rendering.
func writeInput(e *evaluator.RuntimeEvaluator, name string, td typedesc.TypeDescriptor, literal string) error {
	switch td {
	case typedesc.Int8:
		return writeInt[int8](e, name, literal, 8)
	case typedesc.Int16:
		return writeInt[int16](e, name, literal, 16)
	case typedesc.Int32:
		return writeInt[int32](e, name, literal, 32)
	case typedesc.Int64:
		return writeInt[int64](e, name, literal, 64)
	case typedesc.Uint8:
		return writeUint[uint8](e, name, literal, 8)
	case typedesc.Uint16:
		return writeUint[uint16](e, name, literal, 16)
	case typedesc.Uint32:
		return writeUint[uint32](e, name, literal, 32)
	case typedesc.Uint64:
		return writeUint[uint64](e, name, literal, 64)
	case typedesc.Float32:
		f, err := strconv.ParseFloat(literal, 32)
		if err != nil {
			return fmt.Errorf("bad float32 literal %s", literal)
		}
		*evaluator.InputRef[float32](e, name) = float32(f)
		return nil
	case typedesc.Float64:
		f, err := strconv.ParseFloat(literal, 64)
		if err != nil {
			return fmt.Errorf("bad float64 literal %s", literal)
		}
		*evaluator.InputRef[float64](e, name) = f
		return nil
	default:
		return fmt.Errorf("unsupported type for variable %s", name)
	}
}

func writeInt[T ~int8 | ~int16 | ~int32 | ~int64](e *evaluator.RuntimeEvaluator, name, literal string, bits int) error {
	n, err := strconv.ParseInt(literal, 10, bits)
	if err != nil {
		return fmt.Errorf("bad integer literal %s", literal)
	}
	*evaluator.InputRef[T](e, name) = T(n)
	return nil
}

func writeUint[T ~uint8 | ~uint16 | ~uint32 | ~uint64](e *evaluator.RuntimeEvaluator, name, literal string, bits int) error {
	n, err := strconv.ParseUint(literal, 10, bits)
	if err != nil {
		return fmt.Errorf("bad integer literal %s", literal)
	}
	*evaluator.InputRef[T](e, name) = T(n)
	return nil
}

func readOutput(e *evaluator.RuntimeEvaluator, name string, td typedesc.TypeDescriptor) (string, error) {
	switch td {
	case typedesc.Int8:
		return fmt.Sprintf("%d", *evaluator.OutputRef[int8](e, name)), nil
	case typedesc.Int16:
		return fmt.Sprintf("%d", *evaluator.OutputRef[int16](e, name)), nil
	case typedesc.Int32:
		return fmt.Sprintf("%d", *evaluator.OutputRef[int32](e, name)), nil
	case typedesc.Int64:
		return fmt.Sprintf("%d", *evaluator.OutputRef[int64](e, name)), nil
	case typedesc.Uint8:
		return fmt.Sprintf("%d", *evaluator.OutputRef[uint8](e, name)), nil
	case typedesc.Uint16:
		return fmt.Sprintf("%d", *evaluator.OutputRef[uint16](e, name)), nil
	case typedesc.Uint32:
		return fmt.Sprintf("%d", *evaluator.OutputRef[uint32](e, name)), nil
	case typedesc.Uint64:
		return fmt.Sprintf("%d", *evaluator.OutputRef[uint64](e, name)), nil
	case typedesc.Float32:
		return fmt.Sprintf("%g", *evaluator.OutputRef[float32](e, name)), nil
	case typedesc.Float64:
		return fmt.Sprintf("%g", *evaluator.OutputRef[float64](e, name)), nil
	default:
		return "", fmt.Errorf("unsupported type for variable %s", name)
	}
}

package evaluator

import (
	"fmt"
	"io"
	"strings"

	"pcvm/internal/evalerrors"
	"pcvm/internal/pcode"
	"pcvm/internal/typedesc"
)

// Mode selects one of the three execution strategies.
type Mode int

const (
	// Fast performs no bounds or completion checking - maximum
	// throughput, for already-validated programs on a hot path.
	Fast Mode = iota
	// Safe checks the operand stack stays within its compiled bounds
	// after every opcode and stops at the first violation. An OutOfRange
	// raised by an opcode (a lossy CAST, an integer divide by zero) is
	// recorded and execution continues.
	Safe
	// Debug runs like Safe but additionally writes one human-readable
	// trace line per opcode to a caller-supplied sink.
	Debug
)

// stopsExecution reports whether the accumulated runtime error ends a
// Safe or Debug run: every flag except OutOfRange does.
func (e *RuntimeEvaluator) stopsExecution() bool {
	return e.runtimeError&^evalerrors.OutOfRange != 0
}

// Execute runs the compiled program once. sink is required (and must be
// non-nil) only in Debug mode.
func (e *RuntimeEvaluator) Execute(mode Mode, sink io.Writer) error {
	e.codePtr = 0
	e.stack = e.stack[:0]
	e.runtimeError = 0

	switch mode {
	case Fast:
		e.executeFast()
	case Safe:
		e.executeSafe()
	case Debug:
		if sink == nil {
			e.runtimeError = e.runtimeError.Set(evalerrors.ParametersError)
			return evalerrors.New(evalerrors.ParametersError, "debug mode requested with nil sink")
		}
		e.executeDebug(sink)
	default:
		e.executeSafe()
	}

	if len(e.stack) != 0 {
		e.runtimeError = e.runtimeError.Set(evalerrors.InternalSetupError)
	}
	if !e.runtimeError.OK() {
		return evalerrors.New(e.runtimeError, "execution error")
	}
	return nil
}

func (e *RuntimeEvaluator) executeFast() {
	for e.codePtr < len(e.code) {
		code := e.NextOperand()
		pcode.Lookup(code).Fn(e)
	}
}

func (e *RuntimeEvaluator) executeSafe() {
	for e.codePtr < len(e.code) && !e.stopsExecution() {
		code := e.NextOperand()
		pcode.Lookup(code).Fn(e)
		if len(e.stack) > int(e.maxStackSize) {
			e.runtimeError = e.runtimeError.Set(evalerrors.OutOfRange)
			break
		}
	}
	if e.codePtr < len(e.code) {
		e.runtimeError = e.runtimeError.Set(evalerrors.NotCompleted)
	}
}

func (e *RuntimeEvaluator) executeDebug(sink io.Writer) {
	io.WriteString(sink, "[line]-[stackPtr]-[codePtr]::[CODE] stack-in => stack-out\n")
	line := 1
	for e.codePtr < len(e.code) && !e.stopsExecution() {
		stackBefore := len(e.stack)
		codeBefore := e.codePtr

		code := e.code[e.codePtr]
		fr := pcode.Lookup(code)

		var sb strings.Builder
		fmt.Fprintf(&sb, "%d - %d - %d :: %s", line, stackBefore, codeBefore, fr.Name)
		sb.WriteString(inputsPreview(e, fr))

		e.codePtr++ // consume opcode slot; Fn consumes any further operand
		fr.Fn(e)

		sb.WriteString(" => ")
		sb.WriteString(outputsPreview(e, fr, stackBefore))
		if !e.runtimeError.OK() {
			sb.WriteString(" <ERROR>")
		}
		sb.WriteString("\n")
		io.WriteString(sink, sb.String())

		if len(e.stack) > int(e.maxStackSize) {
			e.runtimeError = e.runtimeError.Set(evalerrors.OutOfRange)
			break
		}
		line++
	}
	if e.runtimeError.OK() {
		fmt.Fprintf(sink, "%d - %d :: END\n", len(e.stack), e.codePtr)
	}
}

// inputsPreview renders the stack cells an opcode is about to consume,
// for the debug trace; it never mutates e.stack.
func inputsPreview(e *RuntimeEvaluator, fr *pcode.FunctionRecord) string {
	if fr.NumInputs == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(" (")
	offset := uint32(0)
	for i := fr.NumInputs - 1; i >= 0; i-- {
		td := fr.Types[i]
		offset += td.StorageSize()
		start := len(e.stack) - int(offset)
		if start < 0 {
			continue
		}
		if i != fr.NumInputs-1 {
			sb.WriteString(",")
		}
		sb.WriteString(valueToString(td, e.stack[start:start+int(td.StorageSize())]))
	}
	sb.WriteString(")")
	return sb.String()
}

func outputsPreview(e *RuntimeEvaluator, fr *pcode.FunctionRecord, stackBefore int) string {
	if fr.NumOutputs == 0 {
		return "()"
	}
	var sb strings.Builder
	sb.WriteString("(")
	// The outputs start where the consumed inputs started.
	off := stackBefore
	for i := 0; i < fr.NumInputs; i++ {
		off -= int(fr.Types[i].StorageSize())
	}
	for i := 0; i < fr.NumOutputs; i++ {
		td := fr.Types[fr.NumInputs+i]
		if i != 0 {
			sb.WriteString(",")
		}
		if off >= 0 && off+int(td.StorageSize()) <= len(e.stack) {
			sb.WriteString(valueToString(td, e.stack[off:off+int(td.StorageSize())]))
		}
		off += int(td.StorageSize())
	}
	sb.WriteString(")")
	return sb.String()
}

// Decompile renders the compiled code stream back to RPN text. A plain
// READ of a constant address (below startOfVariables) is rendered as
// CONST <type> <value>, mirroring how Compile folded CONST into READ.
func (e *RuntimeEvaluator) Decompile() (string, error) {
	var sb strings.Builder
	ptr := 0
	for ptr < len(e.code) {
		code := e.code[ptr]
		ptr++
		fr := pcode.Lookup(code)
		if fr == nil {
			return "", evalerrors.New(evalerrors.InternalSetupError, "unknown opcode in code stream")
		}

		name := fr.Name
		var operand uint32
		hasOperand := fr.Name == readToken || fr.Name == writeToken
		if hasOperand && ptr < len(e.code) {
			operand = e.code[ptr]
			ptr++
		}

		if fr.Name == readToken && operand < e.startOfVariables {
			v := e.variableAt(operand)
			sb.WriteString(constToken)
			sb.WriteString(" ")
			sb.WriteString(v.Type.String())
			sb.WriteString(" ")
			sb.WriteString(valueToString(v.Type, e.dataMemory[operand:operand+v.Type.StorageSize()]))
		} else if fr.Name == readToken || fr.Name == writeToken {
			v := e.variableAt(operand)
			sb.WriteString(name)
			sb.WriteString(" ")
			sb.WriteString(v.Name)
		} else if fr.Name == castToken {
			sb.WriteString(name)
			sb.WriteString(" ")
			sb.WriteString(fr.Types[fr.NumInputs].String())
		} else {
			sb.WriteString(name)
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func (e *RuntimeEvaluator) variableAt(location uint32) *variableInfo {
	for _, v := range e.outputVars {
		if v.Location == location {
			return v
		}
	}
	for _, v := range e.inputVars {
		if v.Location == location {
			return v
		}
	}
	return &variableInfo{Name: "?", Type: typedesc.TypeDescriptor{}}
}

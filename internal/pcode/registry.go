// Package pcode is the process-wide function registry: the global,
// append-only table of typed opcode implementations the expression
// runtime compiles against and dispatches through.
//
// Grounded on PseudoCode.cpp's FunctionRecord/RegisterFunction/
// FindPCodeAndUpdateTypeStack: lookup is a deliberate linear scan over
// registration order, since it only ever runs at compile time and
// overload resolution is itself an ordered-matching problem.
package pcode

import (
	"fmt"

	"pcvm/internal/evalerrors"
	"pcvm/internal/typedesc"
)

// maxFunctions bounds the registry exactly as PseudoCode.cpp's
// maxFunctions = 16384 does.
const maxFunctions = 16384

// Context is the minimal surface a registered function needs from the
// evaluator: push/pop typed bytes on the value stack, read the next
// code-stream operand (for READ/WRITE/CONST-as-READ), and read/write
// the data area. *evaluator.RuntimeEvaluator implements this.
type Context interface {
	// NextOperand reads the code-stream element following the current
	// opcode and advances the code pointer past it.
	NextOperand() uint32
	// Pop removes and returns the top n bytes of the value stack.
	Pop(n uint32) []byte
	// Peek returns a copy of the top n bytes without removing them.
	Peek(n uint32) []byte
	// Push appends b to the top of the value stack.
	Push(b []byte)
	// DataAt returns a view of n bytes at offset in the data area.
	DataAt(offset, n uint32) []byte
	// SetDataAt overwrites len(b) bytes at offset in the data area with b.
	SetDataAt(offset uint32, b []byte)
	// Fail records a non-fatal runtime error flag (e.g. OutOfRange on a
	// lossy cast or an integer divide by zero) without interrupting Fast
	// mode execution.
	Fail(flag evalerrors.Result)
}

// Fn is the executable body of a registered opcode.
type Fn func(ctx Context)

// FunctionRecord is one entry of the registry.
type FunctionRecord struct {
	Name       string
	NumInputs  int
	NumOutputs int
	Types      []typedesc.TypeDescriptor // inputs first, outputs last
	Fn         Fn
}

var functionRecords []FunctionRecord

// RegisterFunction appends a record to the process-wide table. Intended
// to be called only from package init() functions, before any Compile
// runs - the Go equivalent of PseudoCode.cpp's static-constructor
// registration. Panics past the bound; that is a build-time programmer
// error, not a runtime condition to recover from.
func RegisterFunction(r FunctionRecord) {
	if len(functionRecords) >= maxFunctions {
		panic(fmt.Sprintf("pcode: registry full, cannot register %q", r.Name))
	}
	functionRecords = append(functionRecords, r)
}

// TypeStack is the minimal interface TryConsume needs over the compile-time
// type stack; kept separate from Context so the compiler package can
// pass its own bounded stack implementation without importing Context.
type TypeStack interface {
	Peek(depth int) (typedesc.TypeDescriptor, bool)
	Pop() (typedesc.TypeDescriptor, bool)
	Push(t typedesc.TypeDescriptor) bool
}

// TryConsume reports whether r matches nameIn and the types currently on
// top of typeStack; on success it commits the match: it pops the sink
// (if matchOutput) and the inputs, pushes the outputs, and adjusts
// dataStackSize by the net change in byte storage.
//
// Grounded on PseudoCode.cpp's FunctionRecord::TryConsume.
func (r *FunctionRecord) TryConsume(nameIn string, typeStack TypeStack, matchOutput bool, dataStackSize *uint32) bool {
	if r.Name != nameIn {
		return false
	}

	depth := 0
	if matchOutput {
		t, ok := typeStack.Peek(depth)
		depth++
		if !ok || !t.Equal(r.Types[r.NumInputs]) {
			return false
		}
	}

	for i := 0; i < r.NumInputs; i++ {
		t, ok := typeStack.Peek(depth)
		depth++
		if !ok || !t.Equal(r.Types[i]) {
			return false
		}
	}

	// Matched: commit.
	if matchOutput {
		typeStack.Pop()
	}
	for i := 0; i < r.NumInputs; i++ {
		t, _ := typeStack.Pop()
		*dataStackSize -= t.StorageSize()
	}
	for i := 0; i < r.NumOutputs; i++ {
		out := r.Types[r.NumInputs+i]
		typeStack.Push(out)
		*dataStackSize += out.StorageSize()
	}
	return true
}

// FindPCodeAndUpdateTypeStack walks the registry in registration order
// and returns the index of the first record whose TryConsume succeeds.
// Overload order is therefore a global property of registration order.
func FindPCodeAndUpdateTypeStack(name string, typeStack TypeStack, matchOutput bool, dataStackSize *uint32) (code uint32, found bool) {
	for i := range functionRecords {
		if functionRecords[i].TryConsume(name, typeStack, matchOutput, dataStackSize) {
			return uint32(i), true
		}
	}
	return 0, false
}

// Lookup returns the record at code, for Execute/Decompile dispatch.
func Lookup(code uint32) *FunctionRecord {
	if int(code) >= len(functionRecords) {
		return nil
	}
	return &functionRecords[code]
}

// Count returns the number of registered functions.
func Count() int { return len(functionRecords) }

// CheckComplete verifies that every numeric width has the mandatory
// opcode set registered (READ/WRITE/DUP and the arithmetic/compare
// sets), per the design note in spec.md section 9: fail to start rather
// than silently compiling a program that can never match.
func CheckComplete() error {
	required := []string{"READ", "WRITE", "DUP", "ADD", "SUB", "MUL", "DIV", "EQ", "NEQ", "GT", "LT", "GTE", "LTE"}
	for _, t := range typedesc.NumericWidths() {
		for _, name := range required {
			if !hasRecordFor(name, t) {
				return fmt.Errorf("pcode: missing required opcode %s<%s>", name, t)
			}
		}
	}
	return nil
}

func hasRecordFor(name string, t typedesc.TypeDescriptor) bool {
	for i := range functionRecords {
		r := &functionRecords[i]
		if r.Name != name || len(r.Types) == 0 {
			continue
		}
		if r.Types[0].Equal(t) {
			return true
		}
	}
	return false
}

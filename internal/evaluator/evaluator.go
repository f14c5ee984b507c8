package evaluator

import (
	"fmt"
	"unsafe"

	"pcvm/internal/evalerrors"
	"pcvm/internal/pcode"
	"pcvm/internal/typedesc"
)

const (
	readToken  = "READ"
	writeToken = "WRITE"
	constToken = "CONST"
	castToken  = "CAST"
)

// RuntimeEvaluator compiles and runs a single RPN program. Zero value is
// ready to use; call ExtractVariables then Compile before Execute.
type RuntimeEvaluator struct {
	inputVars  []*variableInfo
	outputVars []*variableInfo

	startOfVariables uint32
	dataMemory       []byte

	code    []uint32
	codePtr int

	stack        []byte
	maxStackSize uint32

	runtimeError evalerrors.Result
}

// New returns a RuntimeEvaluator ready for ExtractVariables.
func New() *RuntimeEvaluator {
	return &RuntimeEvaluator{}
}

func (e *RuntimeEvaluator) findVariable(name string, vars []*variableInfo) *variableInfo {
	for _, v := range vars {
		if v.Name == name {
			return v
		}
	}
	return nil
}

func (e *RuntimeEvaluator) findInput(name string) *variableInfo  { return e.findVariable(name, e.inputVars) }
func (e *RuntimeEvaluator) findOutput(name string) *variableInfo { return e.findVariable(name, e.outputVars) }

// ExtractVariables is compilation pass 1: it discovers every READ/WRITE
// variable name and every CONST literal's storage requirement, without
// assigning non-constant variables an address yet. It must run before
// Compile.
func (e *RuntimeEvaluator) ExtractVariables(rpn string) error {
	e.inputVars = nil
	e.outputVars = nil

	var nextConstantAddress uint32

	for _, line := range splitLines(rpn) {
		command, p1, _ := tokenizeLine(line)
		if command == "" {
			continue
		}

		switch command {
		case readToken:
			if p1 == "" {
				return evalerrors.New(evalerrors.InvalidOperation, readToken+" without variable name")
			}
			// If an output of this name exists, it will already be in
			// memory by the time this READ runs - no separate input slot.
			if e.findOutput(p1) == nil && e.findInput(p1) == nil {
				e.inputVars = append(e.inputVars, &variableInfo{Name: p1, Location: NoLocation})
			}

		case writeToken:
			if p1 == "" {
				return evalerrors.New(evalerrors.InvalidOperation, writeToken+" without variable name")
			}
			if e.findOutput(p1) != nil {
				return evalerrors.New(evalerrors.InvalidOperation, "output variable "+p1+" already registered")
			}
			e.outputVars = append(e.outputVars, &variableInfo{Name: p1, Location: NoLocation})

		case constToken:
			if p1 == "" {
				return evalerrors.New(evalerrors.InvalidOperation, constToken+" without type name")
			}
			td, ok := typedesc.ParseTypeName(p1)
			if !ok {
				return evalerrors.New(evalerrors.Unsupported, "type "+p1+" is not a numeric supported format")
			}
			name := fmt.Sprintf("Constant@%d", nextConstantAddress)
			e.inputVars = append(e.inputVars, &variableInfo{Name: name, Type: td, Location: nextConstantAddress})
			nextConstantAddress += td.StorageSize()
		}
	}

	e.startOfVariables = nextConstantAddress
	return nil
}

// SetInputType binds the type of an input variable surfaced by
// ExtractVariables. Constants already carry the type fixed by their
// CONST declaration and SetInputType on one of them is a no-op other
// than overwriting it, which callers should not do.
func (e *RuntimeEvaluator) SetInputType(name string, td typedesc.TypeDescriptor) error {
	v := e.findInput(name)
	if v == nil {
		return evalerrors.New(evalerrors.InvalidOperation, "no such input variable "+name)
	}
	v.Type = td
	return nil
}

// SetOutputType binds the type of an output variable surfaced by
// ExtractVariables.
func (e *RuntimeEvaluator) SetOutputType(name string, td typedesc.TypeDescriptor) error {
	v := e.findOutput(name)
	if v == nil {
		return evalerrors.New(evalerrors.InvalidOperation, "no such output variable "+name)
	}
	v.Type = td
	return nil
}

// Compile is pass 2: it finalises variable addresses, re-walks the RPN
// source emitting one code-stream entry (and, for READ/WRITE/CONST, a
// second operand entry) per line, and type-checks every line against
// the function registry via pcode.FindPCodeAndUpdateTypeStack.
func (e *RuntimeEvaluator) Compile(rpn string) error {
	nextVariableAddress := e.startOfVariables
	for _, v := range e.inputVars {
		if !v.Type.IsNumeric() {
			return evalerrors.New(evalerrors.Unsupported, "input variable "+v.Name+" has no numeric type bound")
		}
		if v.Location == NoLocation {
			v.Location = nextVariableAddress
			nextVariableAddress += v.Type.StorageSize()
		}
	}
	for _, v := range e.outputVars {
		if !v.Type.IsNumeric() {
			return evalerrors.New(evalerrors.Unsupported, "output variable "+v.Name+" has no numeric type bound")
		}
		v.Location = nextVariableAddress
		nextVariableAddress += v.Type.StorageSize()
	}
	e.dataMemory = make([]byte, nextVariableAddress)

	var ts typeStack
	var dataStackSize uint32
	var maxDataStackSize uint32
	var nextConstantAddress uint32

	e.code = e.code[:0]

	for _, line := range splitLines(rpn) {
		command, p1, p2 := tokenizeLine(line)
		if command == "" {
			continue
		}

		var code2 uint32 = NoLocation
		matchOutput := false

		switch command {
		case castToken:
			if p1 == "" {
				return evalerrors.New(evalerrors.InvalidOperation, castToken+" without type name")
			}
			td, ok := typedesc.ParseTypeName(p1)
			if !ok {
				return evalerrors.New(evalerrors.Unsupported, "type "+p1+" is not a numeric supported format")
			}
			if !ts.Push(td) {
				return evalerrors.New(evalerrors.FatalError, "failed to push type into stack")
			}
			matchOutput = true

		case writeToken:
			if p1 == "" {
				return evalerrors.New(evalerrors.InvalidOperation, writeToken+" without variable name")
			}
			v := e.findOutput(p1)
			if v == nil {
				return evalerrors.New(evalerrors.InvalidOperation, "output variable "+p1+" not found")
			}
			if !v.Type.IsNumeric() {
				return evalerrors.New(evalerrors.Unsupported, "variable "+p1+" does not have a numeric supported format")
			}
			if !ts.Push(v.Type) {
				return evalerrors.New(evalerrors.FatalError, "failed to push type into stack")
			}
			matchOutput = true
			code2 = v.Location
			v.Used = true

		case readToken:
			if p1 == "" {
				return evalerrors.New(evalerrors.InvalidOperation, readToken+" without variable name")
			}
			v := e.findOutput(p1)
			if v != nil && !v.Used {
				return evalerrors.New(evalerrors.NotCompleted, "variable "+p1+" read before written")
			}
			if v == nil {
				v = e.findInput(p1)
				if v == nil {
					return evalerrors.New(evalerrors.InvalidOperation, "input variable "+p1+" not found")
				}
			}
			if !v.Type.IsNumeric() {
				return evalerrors.New(evalerrors.Unsupported, "variable "+p1+" does not have a numeric supported format")
			}
			if !ts.Push(v.Type) {
				return evalerrors.New(evalerrors.FatalError, "failed to push type into stack")
			}
			matchOutput = true
			code2 = v.Location

		case constToken:
			if p1 == "" || p2 == "" {
				return evalerrors.New(evalerrors.InvalidOperation, constToken+" without type name and value")
			}
			td, ok := typedesc.ParseTypeName(p1)
			if !ok {
				return evalerrors.New(evalerrors.Unsupported, "type "+p1+" is not a numeric supported format")
			}
			if err := encodeConstant(e.dataMemory, nextConstantAddress, td, p2); err != nil {
				return err
			}
			if !ts.Push(td) {
				return evalerrors.New(evalerrors.FatalError, "failed to push type into stack")
			}
			matchOutput = true
			code2 = nextConstantAddress
			nextConstantAddress += td.StorageSize()
			command = readToken
		}

		code, found := pcode.FindPCodeAndUpdateTypeStack(command, &ts, matchOutput, &dataStackSize)
		if !found {
			return evalerrors.New(evalerrors.Unsupported, "command "+command+" has no matching overload")
		}
		if dataStackSize > maxDataStackSize {
			maxDataStackSize = dataStackSize
		}

		e.code = append(e.code, code)
		if code2 != NoLocation {
			e.code = append(e.code, code2)
		}
	}

	// The code stream and data area are fully built at this point even
	// if the final check below fails: a non-empty type stack means the
	// program leaves a dangling value, which is reported but does not
	// prevent Execute from running the (well-formed, if wasteful) code
	// that was compiled.
	e.maxStackSize = maxDataStackSize
	e.stack = make([]byte, 0, maxDataStackSize)

	if ts.Size() > 0 {
		return evalerrors.New(evalerrors.InternalSetupError, fmt.Sprintf("operation sequence is incomplete: %d data left on stack", ts.Size()))
	}
	return nil
}

// InputRef returns a pointer into the data area for a bound input
// variable of type T, for the caller to write external sensor values
// into before Execute. Panics if name is not a declared input or T's
// size does not match the variable's registered type - both are
// programmer errors caught at wiring time, not runtime conditions.
func InputRef[T any](e *RuntimeEvaluator, name string) *T {
	return dataRef[T](e, e.findInput(name))
}

// OutputRef is InputRef's counterpart for variables written by WRITE.
func OutputRef[T any](e *RuntimeEvaluator, name string) *T {
	return dataRef[T](e, e.findOutput(name))
}

func dataRef[T any](e *RuntimeEvaluator, v *variableInfo) *T {
	if v == nil {
		panic("evaluator: no such variable")
	}
	var zero T
	if uint32(unsafe.Sizeof(zero)) != v.Type.StorageSize() {
		panic(fmt.Sprintf("evaluator: type size mismatch for variable %s", v.Name))
	}
	return (*T)(unsafe.Pointer(&e.dataMemory[v.Location]))
}

// InputNames and OutputNames expose the variable list in declaration
// order, for callers that bind by introspection rather than by name.
func (e *RuntimeEvaluator) InputNames() []string  { return varNames(e.inputVars) }
func (e *RuntimeEvaluator) OutputNames() []string { return varNames(e.outputVars) }

// BrowseInputVariable and BrowseOutputVariable expose the variable
// tables by index (name, bound type), restoring RuntimeEvaluator.cpp's
// index-based browsing that the distillation dropped - the console
// front end uses it, since it only learns a variable's type at runtime.
func (e *RuntimeEvaluator) BrowseInputVariable(i int) (name string, td typedesc.TypeDescriptor, ok bool) {
	return browseVariable(e.inputVars, i)
}

func (e *RuntimeEvaluator) BrowseOutputVariable(i int) (name string, td typedesc.TypeDescriptor, ok bool) {
	return browseVariable(e.outputVars, i)
}

func browseVariable(vars []*variableInfo, i int) (string, typedesc.TypeDescriptor, bool) {
	if i < 0 || i >= len(vars) {
		return "", typedesc.TypeDescriptor{}, false
	}
	v := vars[i]
	return v.Name, v.Type, true
}

func varNames(vars []*variableInfo) []string {
	names := make([]string, 0, len(vars))
	for _, v := range vars {
		names = append(names, v.Name)
	}
	return names
}

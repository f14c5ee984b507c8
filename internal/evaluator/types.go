// Package evaluator implements the RPN expression compiler and virtual
// machine: two-pass compilation (ExtractVariables, Compile) into a flat
// code stream plus data area, three execution modes (Fast, Safe, Debug)
// and a Decompile that renders a compiled program back to RPN text.
//
// Grounded on RuntimeEvaluator.cpp/.h: the Go types below map directly
// onto RuntimeEvaluatorInfo::VariableInformation, the codeMemory/
// dataMemory/stack triple, and the fastMode/safeMode/debugMode switch.
package evaluator

import "pcvm/internal/typedesc"

// NoLocation marks a variable whose data-area address has not been
// assigned yet (the Go analogue of MAXDataMemoryAddress).
const NoLocation = ^uint32(0)

// MaxTypeStackDepth bounds the compile-time type stack, matching
// StaticStack<TypeDescriptor,32> in the original.
const MaxTypeStackDepth = 32

type variableInfo struct {
	Name     string
	Type     typedesc.TypeDescriptor
	Location uint32
	Used     bool // set once a WRITE to this output variable has compiled
}

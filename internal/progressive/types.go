// Package progressive implements the progressive type creator: a
// streaming builder that accepts scalar elements one at a time from a
// parser that does not know the final shape in advance, and produces,
// at End, a typed aggregate (scalar, vector, matrix or sparse matrix)
// matching the sequence of AddElement/EndVector calls it observed.
//
// Grounded on ProgressiveTypeCreator.h's state enum and field layout;
// no corresponding .cpp was available in the reference material, so the
// exact AddElement/EndVector/End transition table below is this
// package's own derivation from the header's state comments and
// spec.md's prose - recorded as an Open Question resolution in
// DESIGN.md, not a byte-for-byte port.
package progressive

import "pcvm/internal/typedesc"

// State mirrors ProgressiveTypeCreator::PTCState.
type State uint8

const (
	NotStarted State = iota
	Started
	ScalarState
	VectorState
	VectorEnd
	MatrixRow
	MatrixRowEnd
	SparseMatrixRow
	SparseMatrixRE
	FinishedScalar
	FinishedVector
	FinishedMatrix
	FinishedSparseMatrix
	Error
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "notStarted"
	case Started:
		return "started"
	case ScalarState:
		return "scalar"
	case VectorState:
		return "vector"
	case VectorEnd:
		return "vectorEnd"
	case MatrixRow:
		return "matrixRow"
	case MatrixRowEnd:
		return "matrixRowEnd"
	case SparseMatrixRow:
		return "sparseMatrixRow"
	case SparseMatrixRE:
		return "sparseMatrixRE"
	case FinishedScalar:
		return "finishedS"
	case FinishedVector:
		return "finishedV"
	case FinishedMatrix:
		return "finishedM"
	case FinishedSparseMatrix:
		return "finishedSM"
	case Error:
		return "error"
	default:
		return "invalid"
	}
}

// Finished reports whether s is one of the four terminal shapes.
func (s State) Finished() bool {
	switch s {
	case FinishedScalar, FinishedVector, FinishedMatrix, FinishedSparseMatrix:
		return true
	default:
		return false
	}
}

// SizeStack records the actual length of each row once a creator has
// discovered it is building a sparse matrix (rows of unequal length).
type SizeStack []uint32

// StringHeader is one entry of the parallel index vector spec.md's
// storage-layout section describes for variable-width payloads: it
// locates one string's bytes (without its 0 terminator) inside Data.
// Mirrors ProgressiveTypeCreator.h's Vector<T> header over page storage.
type StringHeader struct {
	Offset uint32
	Length uint32
}

// Shape is the typed result GetReference hands back once a creator
// reaches a finished state. Go has no equivalent of the original's
// dynamic Reference/class-registry mechanism, so callers recover the
// concrete shape with a type switch over Scalar/Vector/Matrix/
// SparseMatrix instead of querying a class hierarchy at runtime - the
// one place this package's surface structurally diverges from its
// source, per the Open Question resolution in DESIGN.md.
type Shape interface {
	isShape()
	// Descriptor returns the element type every cell in this Shape
	// shares, fixed once at Start.
	Descriptor() typedesc.TypeDescriptor
}

// stringAt slices data at headers[i] into the string it records. Index
// is nil for every numeric Shape - only a Shape whose Descriptor is
// typedesc.String populates it.
func stringAt(data []byte, headers []StringHeader, i int) string {
	h := headers[i]
	return string(data[h.Offset : h.Offset+h.Length])
}

// Scalar is a single element.
type Scalar struct {
	Type typedesc.TypeDescriptor
	Data []byte
	// Index holds the single string header when Type is typedesc.String;
	// nil for numeric scalars.
	Index []StringHeader
}

func (Scalar) isShape() {}

// Descriptor implements Shape.
func (s Scalar) Descriptor() typedesc.TypeDescriptor { return s.Type }

// StringValue returns the scalar's string value. Only meaningful when
// Type is typedesc.String; named to avoid colliding with fmt.Stringer,
// since a numeric Scalar must keep its default %v formatting.
func (s Scalar) StringValue() string { return stringAt(s.Data, s.Index, 0) }

// Vector is a single row of Count elements.
type Vector struct {
	Type  typedesc.TypeDescriptor
	Data  []byte
	Count uint32
	// Index holds one header per element when Type is typedesc.String;
	// nil for numeric vectors.
	Index []StringHeader
}

func (Vector) isShape() {}

// Descriptor implements Shape.
func (v Vector) Descriptor() typedesc.TypeDescriptor { return v.Type }

// StringAt returns element i's string value. Only meaningful when Type
// is typedesc.String.
func (v Vector) StringAt(i int) string { return stringAt(v.Data, v.Index, i) }

// Matrix is Rows rows of Cols elements each, contiguous in row-major
// order.
type Matrix struct {
	Type typedesc.TypeDescriptor
	Data []byte
	Rows uint32
	Cols uint32
	// Index holds one header per element, row-major, when Type is
	// typedesc.String; nil for numeric matrices.
	Index []StringHeader
}

func (Matrix) isShape() {}

// Descriptor implements Shape.
func (m Matrix) Descriptor() typedesc.TypeDescriptor { return m.Type }

// StringAt returns the string value at (row, col). Only meaningful when
// Type is typedesc.String.
func (m Matrix) StringAt(row, col int) string {
	return stringAt(m.Data, m.Index, row*int(m.Cols)+col)
}

// SparseMatrix is len(RowSizes) rows, each of its own length, packed
// contiguously (row i starts at the sum of RowSizes[:i] elements).
type SparseMatrix struct {
	Type     typedesc.TypeDescriptor
	Data     []byte
	RowSizes SizeStack
	// Index holds one header per element, packed the same way Data is,
	// when Type is typedesc.String; nil for numeric sparse matrices.
	Index []StringHeader
}

func (SparseMatrix) isShape() {}

// Descriptor implements Shape.
func (s SparseMatrix) Descriptor() typedesc.TypeDescriptor { return s.Type }

// StringAt returns the string value at (row, col). Only meaningful when
// Type is typedesc.String.
func (s SparseMatrix) StringAt(row, col int) string {
	offset := 0
	for r := 0; r < row; r++ {
		offset += int(s.RowSizes[r])
	}
	return stringAt(s.Data, s.Index, offset+col)
}

// Package typedesc is the type system facade shared by the function
// registry, the expression runtime and the progressive type creator.
//
// A TypeDescriptor classifies a single typed cell: a kind tag, a storage
// width in bytes, and (for bit-packed numerics) a bit offset and width.
// It is in-memory only - nothing here is ever persisted to disk, so the
// encoding is free to change between runs.
package typedesc

import "fmt"

// Kind classifies the family a TypeDescriptor belongs to.
type Kind uint8

const (
	Invalid Kind = iota
	Unsigned
	Signed
	Float
	Char
	Pointer
	CString
	DynamicString
	ManagedString
	Stream
	Structured
)

func (k Kind) String() string {
	switch k {
	case Unsigned:
		return "uint"
	case Signed:
		return "int"
	case Float:
		return "float"
	case Char:
		return "char"
	case Pointer:
		return "pointer"
	case CString:
		return "cstring"
	case DynamicString:
		return "string"
	case ManagedString:
		return "managed_string"
	case Stream:
		return "stream"
	case Structured:
		return "structured"
	default:
		return "invalid"
	}
}

// TypeDescriptor is a small, structurally-comparable value type.
type TypeDescriptor struct {
	Kind      Kind
	Width     uint8 // storage size in bytes for non-bit-packed cells
	BitOffset uint8 // only meaningful when BitWidth != 0
	BitWidth  uint8 // 0 means "not bit-packed"
	Const     bool
}

// Equal reports structural equality - the only equality this package
// defines; there is no notion of implicit numeric compatibility here.
func (t TypeDescriptor) Equal(o TypeDescriptor) bool {
	return t.Kind == o.Kind && t.Width == o.Width &&
		t.BitOffset == o.BitOffset && t.BitWidth == o.BitWidth
}

// IsNumeric reports whether t is one of the ten scalar numeric widths
// the expression runtime accepts on its operand stack.
func (t TypeDescriptor) IsNumeric() bool {
	return t.Kind == Unsigned || t.Kind == Signed || t.Kind == Float
}

// IsString reports whether t is the variable-width dynamic-string kind
// the progressive type creator accepts alongside the ten numeric
// widths. Strings never appear on the expression runtime's stack.
func (t TypeDescriptor) IsString() bool {
	return t.Kind == DynamicString
}

// IsBitPacked reports whether t occupies less than its nominal storage
// width, requiring masking on read/write.
func (t TypeDescriptor) IsBitPacked() bool {
	return t.BitWidth != 0
}

// StorageSize returns the number of bytes a single cell of this type
// occupies in the runtime's data area.
func (t TypeDescriptor) StorageSize() uint32 {
	return uint32(t.Width)
}

func (t TypeDescriptor) String() string {
	name, ok := nameOf[t]
	if ok {
		return name
	}
	return fmt.Sprintf("%s%d", t.Kind, t.Width*8)
}

// The ten numeric widths recognised by CONST/CAST (spec.md section 6).
var (
	Uint8   = TypeDescriptor{Kind: Unsigned, Width: 1}
	Int8    = TypeDescriptor{Kind: Signed, Width: 1}
	Uint16  = TypeDescriptor{Kind: Unsigned, Width: 2}
	Int16   = TypeDescriptor{Kind: Signed, Width: 2}
	Uint32  = TypeDescriptor{Kind: Unsigned, Width: 4}
	Int32   = TypeDescriptor{Kind: Signed, Width: 4}
	Uint64  = TypeDescriptor{Kind: Unsigned, Width: 8}
	Int64   = TypeDescriptor{Kind: Signed, Width: 8}
	Float32 = TypeDescriptor{Kind: Float, Width: 4}
	Float64 = TypeDescriptor{Kind: Float, Width: 8}

	// Bool is not a CONST/CAST keyword but is used internally for the
	// logical opcodes (AND/OR/XOR) and comparison results.
	Bool = TypeDescriptor{Kind: Unsigned, Width: 1}

	// String is the variable-width payload type the progressive type
	// creator accepts in addition to the ten numeric widths. Width is
	// meaningless for it - StorageSize is never called against a string
	// TypeDescriptor, since each element's length varies.
	String = TypeDescriptor{Kind: DynamicString}
)

var byName = map[string]TypeDescriptor{
	"uint8":   Uint8,
	"int8":    Int8,
	"uint16":  Uint16,
	"int16":   Int16,
	"uint32":  Uint32,
	"int32":   Int32,
	"uint64":  Uint64,
	"int64":   Int64,
	"float32": Float32,
	"float64": Float64,
	"string":  String,
}

var nameOf = map[TypeDescriptor]string{
	Uint8:   "uint8",
	Int8:    "int8",
	Uint16:  "uint16",
	Int16:   "int16",
	Uint32:  "uint32",
	Int32:   "int32",
	Uint64:  "uint64",
	Int64:   "int64",
	Float32: "float32",
	Float64: "float64",
	String:  "string",
}

// ParseTypeName looks up one of the ten numeric keywords accepted by
// CONST/CAST, or "string" for the progressive type creator's
// variable-width payload. ok is false for anything else, including
// "bool".
func ParseTypeName(name string) (td TypeDescriptor, ok bool) {
	td, ok = byName[name]
	return td, ok
}

// NumericWidths returns the ten scalar numeric TypeDescriptors, in a
// fixed, stable order. Used by pcode.CheckComplete and by tests that
// need to exercise every width identically.
func NumericWidths() []TypeDescriptor {
	return []TypeDescriptor{
		Uint8, Int8, Uint16, Int16, Uint32, Int32, Uint64, Int64, Float32, Float64,
	}
}

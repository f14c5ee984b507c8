package progressive

import (
	"encoding/binary"

	"pcvm/internal/evalerrors"
	"pcvm/internal/mempage"
	"pcvm/internal/typedesc"
)

// stringHeaderSize is the encoded width of one StringHeader (two
// little-endian uint32 fields) when it is written into the arena as
// part of the index vector.
const stringHeaderSize = 8

// Creator is the progressive type creator. Zero value is ready to use;
// call Start before AddElement/EndVector/End.
type Creator struct {
	state State
	typ   typedesc.TypeDescriptor
	arena *mempage.Arena

	defaultPageSize uint32

	vectorSize        uint32
	matrixRowSize     uint32
	currentVectorSize uint32
	numberOfElements  uint64
	sizeStack         SizeStack

	// stringBytes and headers are only used when typ.IsString(): the
	// char data (each element followed by its 0 terminator) accumulates
	// under its own running offset, and headers records the index
	// vector entry for every element in arrival order.
	stringBytes uint32
	headers     []StringHeader
}

// NewCreator returns a Creator in the notStarted state.
func NewCreator() *Creator {
	return &Creator{state: NotStarted}
}

// State returns the creator's current state, mainly for tests and
// diagnostics.
func (c *Creator) State() State { return c.state }

// NumberOfElements returns the total element count accepted so far.
func (c *Creator) NumberOfElements() uint64 { return c.numberOfElements }

// DefaultPageSize returns the arena's actual page size, after Start.
func (c *Creator) DefaultPageSize() uint32 { return c.defaultPageSize }

// Start fixes the payload type and opens a fresh paged arena. Callable
// from notStarted or error; any other state means a build is already
// in progress and must be finished (End) or discarded (Clean) first.
func (c *Creator) Start(t typedesc.TypeDescriptor, pageSize uint32) error {
	if c.state != NotStarted && c.state != Error {
		return evalerrors.New(evalerrors.IllegalOperation, "progressive creator: Start called while a build is in progress")
	}
	if !t.IsNumeric() && !t.IsString() {
		return evalerrors.New(evalerrors.Unsupported, "progressive creator: type must be numeric or string")
	}
	c.typ = t
	c.arena = mempage.NewArena(pageSize)
	c.defaultPageSize = c.arena.PageSize()
	c.vectorSize = 0
	c.matrixRowSize = 0
	c.currentVectorSize = 0
	c.numberOfElements = 0
	c.sizeStack = nil
	c.stringBytes = 0
	c.headers = nil
	c.state = Started
	return nil
}

// reserveContiguous returns n fresh, contiguous bytes for one string
// element. Allocate alone already guarantees contiguity (it opens a
// page sized at least n when the current one cannot fit), but that
// would abandon whatever room was left in a non-empty current page; a
// small Grow first keeps using that space instead of stranding it -
// the common case of a string slightly longer than what remains.
func (c *Creator) reserveContiguous(n uint32) []byte {
	if rem := c.arena.Remaining(); rem > 0 && rem < n {
		c.arena.Grow(n - rem)
	}
	return c.arena.Allocate(n)
}

func (c *Creator) fail(msg string) error {
	c.state = Error
	return evalerrors.New(evalerrors.IllegalOperation, "progressive creator: "+msg)
}

// AddElement parses text as the type fixed by Start and appends it to
// the row currently being built.
func (c *Creator) AddElement(text string) error {
	switch c.state {
	case NotStarted, Error:
		return c.fail("AddElement called before Start")
	case FinishedScalar, FinishedVector, FinishedMatrix, FinishedSparseMatrix:
		return c.fail("AddElement called after End")
	}

	b, err := parseElement(c.typ, text)
	if err != nil {
		c.state = Error
		return err
	}

	if c.typ.IsString() {
		dst := c.reserveContiguous(uint32(len(b)))
		copy(dst, b)
		c.headers = append(c.headers, StringHeader{Offset: c.stringBytes, Length: uint32(len(b) - 1)})
		c.stringBytes += uint32(len(b))
	} else {
		dst := c.arena.Allocate(c.typ.StorageSize())
		copy(dst, b)
	}
	c.numberOfElements++

	switch c.state {
	case Started:
		c.currentVectorSize = 1
		c.state = ScalarState
	case ScalarState:
		c.currentVectorSize++
		c.state = VectorState
	case VectorState:
		c.currentVectorSize++
	case VectorEnd, MatrixRowEnd:
		c.currentVectorSize = 1
		c.state = MatrixRow
	case MatrixRow:
		c.currentVectorSize++
	case SparseMatrixRE:
		c.currentVectorSize = 1
		c.state = SparseMatrixRow
	case SparseMatrixRow:
		c.currentVectorSize++
	}
	return nil
}

// EndVector closes the row currently being built. The first row it
// closes fixes vectorSize, the reference length every later row is
// checked against; a later row of a different length flips the build
// into the sparse path for good - there is no way back to the dense
// matrix path once a mismatch is recorded.
func (c *Creator) EndVector() error {
	switch c.state {
	case ScalarState, VectorState:
		c.vectorSize = c.currentVectorSize
		c.matrixRowSize = 1
		c.state = VectorEnd

	case MatrixRow:
		if c.currentVectorSize == c.vectorSize {
			c.matrixRowSize++
			c.state = MatrixRowEnd
			return nil
		}
		// First mismatch: every row completed so far matched vectorSize
		// exactly (that is what kept us on the matrixRow path), so
		// back-fill the size stack with vectorSize before recording
		// this row's actual, differing size.
		c.sizeStack = make(SizeStack, 0, c.matrixRowSize+1)
		for i := uint32(0); i < c.matrixRowSize; i++ {
			c.sizeStack = append(c.sizeStack, c.vectorSize)
		}
		c.sizeStack = append(c.sizeStack, c.currentVectorSize)
		c.matrixRowSize++
		c.state = SparseMatrixRE

	case SparseMatrixRow:
		c.sizeStack = append(c.sizeStack, c.currentVectorSize)
		c.matrixRowSize++
		c.state = SparseMatrixRE

	default:
		return c.fail("EndVector called in state " + c.state.String())
	}
	return nil
}

// End closes the builder into one of the four finished states.
func (c *Creator) End() error {
	switch c.state {
	case ScalarState:
		c.state = FinishedScalar
	case VectorState:
		c.vectorSize = c.currentVectorSize
		c.matrixRowSize = 1
		c.state = FinishedVector
	case VectorEnd:
		c.state = FinishedVector
	case MatrixRowEnd:
		c.state = FinishedMatrix
	case SparseMatrixRE:
		c.state = FinishedSparseMatrix
	default:
		return c.fail("End called in state " + c.state.String())
	}
	return nil
}

// GetReference materialises the finished build into a Shape and resets
// the creator to notStarted. Callable only once a finished state has
// been reached.
func (c *Creator) GetReference() (Shape, error) {
	if !c.state.Finished() {
		return nil, evalerrors.New(evalerrors.IllegalOperation, "progressive creator: GetReference called before End")
	}

	if c.typ.IsString() {
		// spec.md §4.5: "the index vector sits at the start of a newly
		// opened page" - Seal closes out whatever char-data page is
		// current so every header record lands in a fresh page instead
		// of sharing one with string bytes.
		c.arena.Seal()
		for _, h := range c.headers {
			buf := c.arena.Allocate(stringHeaderSize)
			binary.LittleEndian.PutUint32(buf[0:4], h.Offset)
			binary.LittleEndian.PutUint32(buf[4:8], h.Length)
		}
	}

	c.arena.Flip()
	flat := flattenPages(c.arena.Pages())

	data := flat
	var headers []StringHeader
	if c.typ.IsString() {
		data = flat[:c.stringBytes]
		headerBytes := flat[c.stringBytes:]
		headers = make([]StringHeader, len(c.headers))
		for i := range headers {
			off := i * stringHeaderSize
			headers[i] = StringHeader{
				Offset: binary.LittleEndian.Uint32(headerBytes[off : off+4]),
				Length: binary.LittleEndian.Uint32(headerBytes[off+4 : off+8]),
			}
		}
	}

	var shape Shape
	switch c.state {
	case FinishedScalar:
		shape = Scalar{Type: c.typ, Data: data, Index: headers}
	case FinishedVector:
		shape = Vector{Type: c.typ, Data: data, Count: c.vectorSize, Index: headers}
	case FinishedMatrix:
		shape = Matrix{Type: c.typ, Data: data, Rows: c.matrixRowSize, Cols: c.vectorSize, Index: headers}
	case FinishedSparseMatrix:
		shape = SparseMatrix{Type: c.typ, Data: data, RowSizes: c.sizeStack, Index: headers}
	}

	c.arena.Clean()
	c.state = NotStarted
	return shape, nil
}

func flattenPages(pages [][]byte) []byte {
	var total int
	for _, p := range pages {
		total += len(p)
	}
	out := make([]byte, 0, total)
	for _, p := range pages {
		out = append(out, p...)
	}
	return out
}

// Clean discards any in-progress build and its paged memory. Callable
// from any state.
func (c *Creator) Clean() {
	if c.arena != nil {
		c.arena.Clean()
	}
	*c = Creator{state: NotStarted}
}

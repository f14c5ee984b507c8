package progressive

import (
	"testing"

	"pcvm/internal/typedesc"
)

func TestScalar(t *testing.T) {
	c := NewCreator()
	if err := c.Start(typedesc.Int32, 1024); err != nil {
		t.Fatal(err)
	}
	if err := c.AddElement("42"); err != nil {
		t.Fatal(err)
	}
	if err := c.End(); err != nil {
		t.Fatal(err)
	}
	shape, err := c.GetReference()
	if err != nil {
		t.Fatal(err)
	}
	s, ok := shape.(Scalar)
	if !ok {
		t.Fatalf("GetReference returned %T, want Scalar", shape)
	}
	if got := ElementAt[int32](s.Data, 0, s.Type); got != 42 {
		t.Errorf("scalar value = %d, want 42", got)
	}
}

func TestVectorWithoutSecondRow(t *testing.T) {
	c := NewCreator()
	if err := c.Start(typedesc.Int32, 1024); err != nil {
		t.Fatal(err)
	}
	for _, v := range []string{"1", "2", "3"} {
		if err := c.AddElement(v); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.EndVector(); err != nil {
		t.Fatal(err)
	}
	if err := c.End(); err != nil {
		t.Fatal(err)
	}
	shape, err := c.GetReference()
	if err != nil {
		t.Fatal(err)
	}
	v, ok := shape.(Vector)
	if !ok {
		t.Fatalf("GetReference returned %T, want Vector", shape)
	}
	if v.Count != 3 {
		t.Fatalf("Count = %d, want 3", v.Count)
	}
	for i, want := range []int32{1, 2, 3} {
		if got := ElementAt[int32](v.Data, i, v.Type); got != want {
			t.Errorf("element %d = %d, want %d", i, got, want)
		}
	}
}

// TestMatrix2x3 is spec scenario 4: T=int32, default page 1024,
// Start; Add(1,2,3); EndVector; Add(4,5,6); EndVector; End -> finishedM,
// shape 2x3, values [[1,2,3],[4,5,6]].
func TestMatrix2x3(t *testing.T) {
	c := NewCreator()
	if err := c.Start(typedesc.Int32, 1024); err != nil {
		t.Fatal(err)
	}
	for _, v := range []string{"1", "2", "3"} {
		if err := c.AddElement(v); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.EndVector(); err != nil {
		t.Fatal(err)
	}
	for _, v := range []string{"4", "5", "6"} {
		if err := c.AddElement(v); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.EndVector(); err != nil {
		t.Fatal(err)
	}
	if err := c.End(); err != nil {
		t.Fatal(err)
	}
	if c.State() != FinishedMatrix {
		t.Fatalf("state = %v, want finishedM", c.State())
	}

	shape, err := c.GetReference()
	if err != nil {
		t.Fatal(err)
	}
	m, ok := shape.(Matrix)
	if !ok {
		t.Fatalf("GetReference returned %T, want Matrix", shape)
	}
	if m.Rows != 2 || m.Cols != 3 {
		t.Fatalf("shape = %dx%d, want 2x3", m.Rows, m.Cols)
	}
	want := [][]int32{{1, 2, 3}, {4, 5, 6}}
	for row := 0; row < int(m.Rows); row++ {
		for col := 0; col < int(m.Cols); col++ {
			idx := row*int(m.Cols) + col
			if got := ElementAt[int32](m.Data, idx, m.Type); got != want[row][col] {
				t.Errorf("[%d][%d] = %d, want %d", row, col, got, want[row][col])
			}
		}
	}
}

// TestSparseMatrix is spec scenario 5: same as scenario 4 but the
// second row has only 2 elements -> finishedSM, sizeStack=[3,2].
func TestSparseMatrix(t *testing.T) {
	c := NewCreator()
	if err := c.Start(typedesc.Int32, 1024); err != nil {
		t.Fatal(err)
	}
	for _, v := range []string{"1", "2", "3"} {
		if err := c.AddElement(v); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.EndVector(); err != nil {
		t.Fatal(err)
	}
	for _, v := range []string{"4", "5"} {
		if err := c.AddElement(v); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.EndVector(); err != nil {
		t.Fatal(err)
	}
	if err := c.End(); err != nil {
		t.Fatal(err)
	}
	if c.State() != FinishedSparseMatrix {
		t.Fatalf("state = %v, want finishedSM", c.State())
	}

	shape, err := c.GetReference()
	if err != nil {
		t.Fatal(err)
	}
	sm, ok := shape.(SparseMatrix)
	if !ok {
		t.Fatalf("GetReference returned %T, want SparseMatrix", shape)
	}
	if len(sm.RowSizes) != 2 || sm.RowSizes[0] != 3 || sm.RowSizes[1] != 2 {
		t.Fatalf("RowSizes = %v, want [3 2]", sm.RowSizes)
	}
	want := []int32{1, 2, 3, 4, 5}
	for i, w := range want {
		if got := ElementAt[int32](sm.Data, i, sm.Type); got != w {
			t.Errorf("element %d = %d, want %d", i, got, w)
		}
	}
}

func TestNumberOfElementsInvariantNonSparse(t *testing.T) {
	c := NewCreator()
	if err := c.Start(typedesc.Int32, 1024); err != nil {
		t.Fatal(err)
	}
	for _, row := range [][]string{{"1", "2", "3"}, {"4", "5", "6"}, {"7", "8", "9"}} {
		for _, v := range row {
			if err := c.AddElement(v); err != nil {
				t.Fatal(err)
			}
		}
		if err := c.EndVector(); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.End(); err != nil {
		t.Fatal(err)
	}
	if c.NumberOfElements() != 9 {
		t.Fatalf("numberOfElements = %d, want 9 (= matrixRowSize x vectorSize)", c.NumberOfElements())
	}
}

func TestAddElementAfterEndIsError(t *testing.T) {
	c := NewCreator()
	if err := c.Start(typedesc.Int32, 1024); err != nil {
		t.Fatal(err)
	}
	if err := c.AddElement("1"); err != nil {
		t.Fatal(err)
	}
	if err := c.End(); err != nil {
		t.Fatal(err)
	}
	if err := c.AddElement("2"); err == nil {
		t.Fatalf("expected error adding to a finished creator")
	}
}

func TestCleanResetsAfterError(t *testing.T) {
	c := NewCreator()
	if err := c.Start(typedesc.Int32, 1024); err != nil {
		t.Fatal(err)
	}
	if err := c.AddElement("not-a-number"); err == nil {
		t.Fatalf("expected parse error")
	}
	if c.State() != Error {
		t.Fatalf("state = %v, want error", c.State())
	}
	c.Clean()
	if c.State() != NotStarted {
		t.Fatalf("state after Clean = %v, want notStarted", c.State())
	}
	if err := c.Start(typedesc.Int32, 1024); err != nil {
		t.Fatalf("Start after Clean: %v", err)
	}
}

func TestDefaultPageSizeFallsBackWhenZero(t *testing.T) {
	c := NewCreator()
	if err := c.Start(typedesc.Float64, 0); err != nil {
		t.Fatal(err)
	}
	if c.DefaultPageSize() == 0 {
		t.Errorf("DefaultPageSize() = 0, want the arena's fallback default")
	}
}

func TestStringScalar(t *testing.T) {
	c := NewCreator()
	if err := c.Start(typedesc.String, 1024); err != nil {
		t.Fatal(err)
	}
	if err := c.AddElement("hello"); err != nil {
		t.Fatal(err)
	}
	if err := c.End(); err != nil {
		t.Fatal(err)
	}
	shape, err := c.GetReference()
	if err != nil {
		t.Fatal(err)
	}
	s, ok := shape.(Scalar)
	if !ok {
		t.Fatalf("GetReference returned %T, want Scalar", shape)
	}
	if got := s.StringValue(); got != "hello" {
		t.Errorf("StringValue() = %q, want %q", got, "hello")
	}
	// spec.md §4.5 Invariants: each char sequence is followed by a 0
	// terminator inside the page.
	if s.Data[s.Index[0].Length] != 0 {
		t.Errorf("expected a 0 terminator immediately after the string bytes")
	}
}

func TestStringVector(t *testing.T) {
	c := NewCreator()
	if err := c.Start(typedesc.String, 1024); err != nil {
		t.Fatal(err)
	}
	for _, v := range []string{"alpha", "beta", "gamma"} {
		if err := c.AddElement(v); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.EndVector(); err != nil {
		t.Fatal(err)
	}
	if err := c.End(); err != nil {
		t.Fatal(err)
	}
	shape, err := c.GetReference()
	if err != nil {
		t.Fatal(err)
	}
	v, ok := shape.(Vector)
	if !ok {
		t.Fatalf("GetReference returned %T, want Vector", shape)
	}
	want := []string{"alpha", "beta", "gamma"}
	for i, w := range want {
		if got := v.StringAt(i); got != w {
			t.Errorf("element %d = %q, want %q", i, got, w)
		}
	}
}

func TestStringMatrix(t *testing.T) {
	c := NewCreator()
	if err := c.Start(typedesc.String, 1024); err != nil {
		t.Fatal(err)
	}
	for _, v := range []string{"a", "b"} {
		if err := c.AddElement(v); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.EndVector(); err != nil {
		t.Fatal(err)
	}
	for _, v := range []string{"c", "d"} {
		if err := c.AddElement(v); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.EndVector(); err != nil {
		t.Fatal(err)
	}
	if err := c.End(); err != nil {
		t.Fatal(err)
	}
	shape, err := c.GetReference()
	if err != nil {
		t.Fatal(err)
	}
	m, ok := shape.(Matrix)
	if !ok {
		t.Fatalf("GetReference returned %T, want Matrix", shape)
	}
	want := [][]string{{"a", "b"}, {"c", "d"}}
	for row := 0; row < int(m.Rows); row++ {
		for col := 0; col < int(m.Cols); col++ {
			if got := m.StringAt(row, col); got != want[row][col] {
				t.Errorf("[%d][%d] = %q, want %q", row, col, got, want[row][col])
			}
		}
	}
}

// TestStringForcesPageSealAndGrow uses a page size smaller than the
// combined length of the strings written to it, so GetReference's
// index-vector write must Seal a populated data page and reserveContiguous
// must Grow a too-small remaining page, exercising both operations via
// the string path rather than leaving them unwired.
func TestStringForcesPageSealAndGrow(t *testing.T) {
	c := NewCreator()
	if err := c.Start(typedesc.String, 4); err != nil {
		t.Fatal(err)
	}
	for _, v := range []string{"ab", "cdefgh", "ij"} {
		if err := c.AddElement(v); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.EndVector(); err != nil {
		t.Fatal(err)
	}
	if err := c.End(); err != nil {
		t.Fatal(err)
	}
	shape, err := c.GetReference()
	if err != nil {
		t.Fatal(err)
	}
	v := shape.(Vector)
	want := []string{"ab", "cdefgh", "ij"}
	for i, w := range want {
		if got := v.StringAt(i); got != w {
			t.Errorf("element %d = %q, want %q", i, got, w)
		}
	}
}

func TestStringSparseMatrix(t *testing.T) {
	c := NewCreator()
	if err := c.Start(typedesc.String, 1024); err != nil {
		t.Fatal(err)
	}
	for _, v := range []string{"one", "two", "three"} {
		if err := c.AddElement(v); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.EndVector(); err != nil {
		t.Fatal(err)
	}
	for _, v := range []string{"four", "five"} {
		if err := c.AddElement(v); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.EndVector(); err != nil {
		t.Fatal(err)
	}
	if err := c.End(); err != nil {
		t.Fatal(err)
	}
	shape, err := c.GetReference()
	if err != nil {
		t.Fatal(err)
	}
	sm, ok := shape.(SparseMatrix)
	if !ok {
		t.Fatalf("GetReference returned %T, want SparseMatrix", shape)
	}
	if len(sm.RowSizes) != 2 || sm.RowSizes[0] != 3 || sm.RowSizes[1] != 2 {
		t.Fatalf("RowSizes = %v, want [3 2]", sm.RowSizes)
	}
	want := [][]string{{"one", "two", "three"}, {"four", "five"}}
	for row, cols := range want {
		for col, w := range cols {
			if got := sm.StringAt(row, col); got != w {
				t.Errorf("[%d][%d] = %q, want %q", row, col, got, w)
			}
		}
	}
}

func TestStartRejectsUnsupportedKind(t *testing.T) {
	c := NewCreator()
	structured := typedesc.TypeDescriptor{Kind: typedesc.Structured, Width: 8}
	if err := c.Start(structured, 1024); err == nil {
		t.Fatalf("expected Start to reject a structured type")
	}
}

func TestMultiPageVectorSpansPages(t *testing.T) {
	// A tiny page size forces the arena to chain multiple pages; Flip
	// at GetReference must still present the data in write order.
	c := NewCreator()
	if err := c.Start(typedesc.Int32, 4); err != nil {
		t.Fatal(err)
	}
	for _, v := range []string{"10", "20", "30", "40"} {
		if err := c.AddElement(v); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.EndVector(); err != nil {
		t.Fatal(err)
	}
	if err := c.End(); err != nil {
		t.Fatal(err)
	}
	shape, err := c.GetReference()
	if err != nil {
		t.Fatal(err)
	}
	v := shape.(Vector)
	want := []int32{10, 20, 30, 40}
	for i, w := range want {
		if got := ElementAt[int32](v.Data, i, v.Type); got != w {
			t.Errorf("element %d = %d, want %d", i, got, w)
		}
	}
}

// Package mempage implements the chained fixed-capacity memory page
// arena used by the progressive type creator (and, for constants and
// variables, conceptually by the expression runtime's data area).
//
// Pages are owned by the Arena and form a singly linked list with no
// cycles. There is no compaction and no per-element freeing: Clean frees
// every page in chain order.
package mempage

// DefaultPageSize is used when the caller does not request a specific
// size.
const DefaultPageSize = 4096

// page is one fixed-capacity buffer in the chain.
type page struct {
	buf    []byte
	used   int
	next   *page
	sealed bool
}

// Arena is a singly linked chain of pages, growable from the head.
type Arena struct {
	pageSize uint32
	head     *page // most recently opened page
	tail     *page // last page in chain order (for Flip bookkeeping only)
}

// NewArena creates an arena whose pages default to pageSize bytes; a
// zero pageSize falls back to DefaultPageSize.
func NewArena(pageSize uint32) *Arena {
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	return &Arena{pageSize: pageSize}
}

// PageSize returns the arena's configured page size.
func (a *Arena) PageSize() uint32 { return a.pageSize }

// Allocate returns n fresh bytes from the current page, opening a new
// page sized max(pageSize, n) if the current one (if any) cannot fit n
// more bytes.
func (a *Arena) Allocate(n uint32) []byte {
	if a.head == nil || a.head.sealed || uint32(len(a.head.buf)-a.head.used) < n {
		a.openPage(n)
	}
	p := a.head
	start := p.used
	p.used += int(n)
	return p.buf[start:p.used]
}

// Remaining returns the free byte count in the current page, or 0 if
// there is no current page or it has been sealed.
func (a *Arena) Remaining() uint32 {
	if a.head == nil || a.head.sealed {
		return 0
	}
	return uint32(len(a.head.buf) - a.head.used)
}

// Grow enlarges the current page in place by n bytes via reallocation;
// pointers returned by earlier Allocate calls on this page become
// invalid (callers must re-slice), but pointers into earlier, already
// sealed pages remain valid since those pages are never touched.
func (a *Arena) Grow(n uint32) {
	if a.head == nil {
		a.openPage(n)
		return
	}
	grown := make([]byte, len(a.head.buf)+int(n))
	copy(grown, a.head.buf)
	a.head.buf = grown
}

// Seal closes the current page: the next Allocate call always opens a
// fresh page rather than appending to this one. The sealed page stays
// linked into the chain (reachable from the new head via next) so its
// data survives Flip/Pages/Clean exactly like any other page.
func (a *Arena) Seal() {
	if a.head != nil {
		a.head.sealed = true
	}
}

// Flip reverses the page chain. Allocate always prepends, so before Flip
// the chain runs newest-to-oldest; after Flip it runs oldest-to-newest,
// i.e. in write order - the order a consumer needs to read fragmented
// data contiguously from first element to last.
func (a *Arena) Flip() {
	var nodes []*page
	for n := a.head; n != nil; n = n.next {
		nodes = append(nodes, n)
	}
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
	for i := range nodes {
		if i+1 < len(nodes) {
			nodes[i].next = nodes[i+1]
		} else {
			nodes[i].next = nil
		}
	}
	if len(nodes) > 0 {
		a.tail = a.head
		a.head = nodes[0]
	}
}

// Pages returns the page chain's data slices in current chain order,
// head first - the view an external consumer (e.g. the progressive
// type creator's GetReference) uses to present contiguous data.
func (a *Arena) Pages() [][]byte {
	var out [][]byte
	for n := a.head; n != nil; n = n.next {
		out = append(out, n.buf[:n.used])
	}
	return out
}

// Clean frees every page in the chain.
func (a *Arena) Clean() {
	a.head = nil
	a.tail = nil
}

func (a *Arena) openPage(minSize uint32) {
	size := a.pageSize
	if minSize > size {
		size = minSize
	}
	p := &page{buf: make([]byte, size)}
	if a.head == nil {
		a.tail = p
	}
	p.next = a.head
	a.head = p
}

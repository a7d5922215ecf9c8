package memory

import (
	"fmt"

	"github.com/colorfulnotion/intcode/vmerrors"
	"golang.org/x/exp/slices"
)

// PageSize is the number of cells held by one page: a 64-byte cache line of 8-byte cells.
const PageSize = 8

type page [PageSize]int64

// Memory is a sparse, paged address space of signed 64-bit cells.
// Pages are allocated on first write and never released.
type Memory struct {
	pages map[uint64]*page

	// single entry cache of the most recently touched page
	lastBase uint64
	lastPage *page
}

// Cell is a single non-zero memory cell, used for snapshots.
type Cell struct {
	Address uint64 `json:"address"`
	Value   int64  `json:"value"`
}

func New() *Memory {
	return &Memory{pages: make(map[uint64]*page)}
}

func pageBase(addr uint64) uint64 {
	return addr - addr%PageSize
}

func (m *Memory) lookup(base uint64) *page {
	if m.lastPage != nil && m.lastBase == base {
		return m.lastPage
	}
	p, ok := m.pages[base]
	if !ok {
		return nil
	}
	m.lastBase, m.lastPage = base, p
	return p
}

// Read returns the cell at addr. Unallocated cells read as zero and are not allocated.
func (m *Memory) Read(addr uint64) int64 {
	p := m.lookup(pageBase(addr))
	if p == nil {
		return 0
	}
	return p[addr%PageSize]
}

// Write stores v at addr, allocating the containing page zero-filled if needed.
func (m *Memory) Write(addr uint64, v int64) {
	base := pageBase(addr)
	p := m.lookup(base)
	if p == nil {
		p = new(page)
		m.pages[base] = p
		m.lastBase, m.lastPage = base, p
	}
	p[addr%PageSize] = v
}

// LoadContiguous copies values into memory starting at start, which must be page aligned.
// Whole chunks replace their pages; a trailing partial chunk is merged cell by cell so the
// remaining cells of that page keep their values.
func (m *Memory) LoadContiguous(start uint64, values []int64) error {
	if start%PageSize != 0 {
		return fmt.Errorf("%w (start %d, page size %d)", vmerrors.ErrMemoryAlignment, start, PageSize)
	}
	m.lastPage = nil
	for off := 0; off < len(values); off += PageSize {
		base := start + uint64(off)
		end := off + PageSize
		if end <= len(values) {
			p := new(page)
			copy(p[:], values[off:end])
			m.pages[base] = p
			continue
		}
		for i, v := range values[off:] {
			m.Write(base+uint64(i), v)
		}
	}
	return nil
}

// PageCount returns the number of allocated pages.
func (m *Memory) PageCount() int {
	return len(m.pages)
}

// Pages returns the base addresses of all allocated pages in ascending order.
func (m *Memory) Pages() []uint64 {
	bases := make([]uint64, 0, len(m.pages))
	for base := range m.pages {
		bases = append(bases, base)
	}
	slices.Sort(bases)
	return bases
}

// PageCells returns a copy of the page starting at base, or nil when it is not allocated.
func (m *Memory) PageCells(base uint64) []int64 {
	p, ok := m.pages[base]
	if !ok {
		return nil
	}
	out := make([]int64, PageSize)
	copy(out, p[:])
	return out
}

// Cells returns every non-zero cell in address order.
func (m *Memory) Cells() []Cell {
	var cells []Cell
	for _, base := range m.Pages() {
		for i, v := range m.pages[base] {
			if v != 0 {
				cells = append(cells, Cell{Address: base + uint64(i), Value: v})
			}
		}
	}
	return cells
}

// Slice returns n cells starting at start without allocating anything.
func (m *Memory) Slice(start uint64, n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = m.Read(start + uint64(i))
	}
	return out
}

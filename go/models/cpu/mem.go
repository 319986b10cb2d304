package cpu

import (
	"fmt"

	"github.com/google/btree"
	"github.com/pkg/errors"
)

// Fault is a guest access that touched unmapped memory.
type Fault struct {
	Addr  uint64
	Size  int
	Write bool
}

func (f *Fault) Error() string {
	op := "read"
	if f.Write {
		op = "write"
	}
	return fmt.Sprintf("unmapped %s at %#x(%d)", op, f.Addr, f.Size)
}

type region struct {
	addr uint64
	data []byte
}

// last is the address of the final byte, which cannot overflow.
func (r *region) last() uint64 {
	return r.addr + uint64(len(r.data)) - 1
}

func regionLess(a, b *region) bool {
	return a.addr < b.addr
}

// Mem is guest memory as non-overlapping regions ordered by address.
// Protections are the Task's bookkeeping; handler accesses ignore them.
type Mem struct {
	mask uint64
	tree *btree.BTreeG[*region]
}

func NewMem(bits uint) *Mem {
	return &Mem{
		mask: ^uint64(0) >> (64 - bits),
		tree: btree.NewG(8, regionLess),
	}
}

// at returns the region holding addr, or nil.
func (m *Mem) at(addr uint64) *region {
	var hit *region
	m.tree.DescendLessOrEqual(&region{addr: addr}, func(r *region) bool {
		if addr <= r.last() {
			hit = r
		}
		return false
	})
	return hit
}

// mapped reports whether every byte of [addr, addr+size) is mapped.
func (m *Mem) mapped(addr, size uint64) bool {
	if size == 0 {
		return true
	}
	last := addr + size - 1
	if last < addr {
		return false
	}
	for {
		r := m.at(addr)
		if r == nil {
			return false
		}
		if r.last() >= last {
			return true
		}
		addr = r.last() + 1
	}
}

// cut removes [addr, addr+size) from every region, keeping what is left on
// either side.
func (m *Mem) cut(addr, size uint64) {
	last := addr + size - 1
	var hit []*region
	m.tree.DescendLessOrEqual(&region{addr: last}, func(r *region) bool {
		if r.last() < addr {
			return false
		}
		hit = append(hit, r)
		return true
	})
	for _, r := range hit {
		m.tree.Delete(r)
		if r.addr < addr {
			m.tree.ReplaceOrInsert(&region{addr: r.addr, data: r.data[:addr-r.addr]})
		}
		if r.last() > last {
			m.tree.ReplaceOrInsert(&region{addr: last + 1, data: r.data[last+1-r.addr:]})
		}
	}
}

// MemMapProt maps zeroed memory over [addr, addr+size), replacing anything
// mapped there.
func (m *Mem) MemMapProt(addr, size uint64, prot int) error {
	if size == 0 {
		return errors.New("empty mapping")
	}
	last := addr + size - 1
	if last < addr || last&m.mask != last {
		return errors.Errorf("region %#x+%#x outside memory range", addr, size)
	}
	m.cut(addr, size)
	m.tree.ReplaceOrInsert(&region{addr: addr, data: make([]byte, size)})
	return nil
}

func (m *Mem) MemUnmap(addr, size uint64) error {
	if size == 0 || !m.mapped(addr, size) {
		return errors.Errorf("range %#x+%#x not mapped", addr, size)
	}
	m.cut(addr, size)
	return nil
}

// move copies between p and guest memory at addr. Nothing is copied unless
// the whole range is mapped.
func (m *Mem) move(addr uint64, p []byte, write bool) error {
	if !m.mapped(addr, uint64(len(p))) {
		return &Fault{Addr: addr, Size: len(p), Write: write}
	}
	for len(p) > 0 {
		r := m.at(addr)
		off := addr - r.addr
		var n int
		if write {
			n = copy(r.data[off:], p)
		} else {
			n = copy(p, r.data[off:])
		}
		addr, p = addr+uint64(n), p[n:]
	}
	return nil
}

func (m *Mem) MemReadInto(p []byte, addr uint64) error {
	return m.move(addr, p, false)
}

func (m *Mem) MemRead(addr, size uint64) ([]byte, error) {
	p := make([]byte, size)
	if err := m.MemReadInto(p, addr); err != nil {
		return nil, err
	}
	return p, nil
}

func (m *Mem) MemWrite(addr uint64, p []byte) error {
	return m.move(addr, p, true)
}

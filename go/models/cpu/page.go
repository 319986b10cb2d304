package cpu

// Page describes one guest mapping for bookkeeping. It holds no data.
type Page struct {
	Addr uint64
	Size uint64
	Prot int
	Desc string
}

// Overlaps reports whether p shares a byte with [addr, addr+size).
func (p *Page) Overlaps(addr, size uint64) bool {
	return size > 0 && p.Size > 0 && addr <= p.Addr+p.Size-1 && p.Addr <= addr+size-1
}

// Pages sorts by address.
type Pages []*Page

func (p Pages) Len() int           { return len(p) }
func (p Pages) Swap(i, j int)      { p[i], p[j] = p[j], p[i] }
func (p Pages) Less(i, j int) bool { return p[i].Addr < p[j].Addr }

// FindRange returns the pages overlapping [addr, addr+size), in order.
func (p Pages) FindRange(addr, size uint64) Pages {
	var out Pages
	for _, pg := range p {
		if pg.Overlaps(addr, size) {
			out = append(out, pg)
		}
	}
	return out
}

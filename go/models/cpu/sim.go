package cpu

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Regs is a register file truncating writes to the guest word width.
type Regs struct {
	mask uint64
	vals map[int]uint64
}

func NewRegs(bits uint, enums []int) *Regs {
	r := &Regs{mask: ^uint64(0) >> (64 - bits), vals: make(map[int]uint64, len(enums))}
	for _, e := range enums {
		r.vals[e] = 0
	}
	return r
}

func (r *Regs) RegRead(reg int) (uint64, error) {
	val, ok := r.vals[reg]
	if !ok {
		return 0, errors.Errorf("invalid register: %d", reg)
	}
	return val, nil
}

func (r *Regs) RegWrite(reg int, val uint64) error {
	if _, ok := r.vals[reg]; !ok {
		return errors.Errorf("invalid register: %d", reg)
	}
	r.vals[reg] = val & r.mask
	return nil
}

// Sim is a Cpu with simulated memory and registers and no execution engine.
// Syscall handlers only need guest state, so Sim backs them in tests and in
// the command line tools.
type Sim struct {
	*Regs
	*Mem
}

func NewSim(bits uint, regs []int) *Sim {
	return &Sim{
		Regs: NewRegs(bits, regs),
		Mem:  NewMem(bits),
	}
}

func (s *Sim) Close() error {
	return nil
}

var _ Cpu = &Sim{}

// PackUint stores n as a size byte guest word, into buf when it is not nil.
func PackUint(order binary.ByteOrder, size int, buf []byte, n uint64) ([]byte, error) {
	if buf == nil {
		buf = make([]byte, size)
	}
	if len(buf) < size {
		return nil, errors.Errorf("buffer too small (%d < %d)", len(buf), size)
	}
	switch size {
	case 8:
		order.PutUint64(buf, n)
	case 4:
		order.PutUint32(buf, uint32(n))
	default:
		return nil, errors.Errorf("unsupported word size: %d", size)
	}
	return buf[:size], nil
}

// UnpackUint reads a size byte guest word from buf.
func UnpackUint(order binary.ByteOrder, size int, buf []byte) (uint64, error) {
	if len(buf) < size {
		return 0, errors.Errorf("buffer too small (%d < %d)", len(buf), size)
	}
	switch size {
	case 8:
		return order.Uint64(buf), nil
	case 4:
		return uint64(order.Uint32(buf)), nil
	}
	return 0, errors.Errorf("unsupported word size: %d", size)
}

package darwincorn

import (
	"bytes"
	"encoding/binary"
	"io"
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	co "github.com/lunixbochs/darwincorn/go/kernel/common"
	"github.com/lunixbochs/darwincorn/go/models"
	"github.com/lunixbochs/darwincorn/go/models/cpu"
	"github.com/lunixbochs/darwincorn/go/native/enum"
)

const (
	BASE      = 0x1000000
	PAGE_SIZE = 0x1000

	// longest guest string ReadStrAt accepts, including the NUL
	MAXPATHLEN = 1024
)

func align(addr, size uint64) (uint64, uint64) {
	end := (addr + size + PAGE_SIZE - 1) &^ (PAGE_SIZE - 1)
	addr &^= PAGE_SIZE - 1
	return addr, end - addr
}

// Task is a guest process: a cpu plus the state kernels need around it.
type Task struct {
	cpu.Cpu

	arch   *models.Arch
	os     *models.OS
	config *models.Config
	log    logrus.FieldLogger
	bits   int
	Bsz    int
	order  binary.ByteOrder
	mapped cpu.Pages

	kernels []co.Kernel

	// guest address of the errno slot, 0 if the guest has none
	ErrnoAddr uint64
	errno     enum.Errno
}

func NewTask(c cpu.Cpu, arch *models.Arch, os *models.OS, order binary.ByteOrder, config *models.Config, log logrus.FieldLogger) *Task {
	if config == nil {
		config = models.DefaultConfig()
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Task{
		Cpu:    c,
		arch:   arch,
		os:     os,
		config: config,
		log:    log,
		bits:   arch.Bits,
		Bsz:    arch.Bits / 8,
		order:  order,
	}
}

// AddKernel appends k to the kernels Syscall searches, in order.
func (t *Task) AddKernel(k co.Kernel) {
	t.kernels = append(t.kernels, k)
}

func (t *Task) Kernels() []co.Kernel {
	return t.kernels
}

func (t *Task) Arch() *models.Arch {
	return t.arch
}

func (t *Task) OS() string {
	return t.os.Name
}

func (t *Task) Bits() uint {
	return uint(t.bits)
}

func (t *Task) ByteOrder() binary.ByteOrder {
	return t.order
}

func (t *Task) Config() *models.Config {
	return t.config
}

func (t *Task) Log() logrus.FieldLogger {
	return t.log
}

func (t *Task) Mappings() cpu.Pages {
	return t.mapped
}

// forget drops [addr, addr+size) from the mapping list, keeping the parts of
// partially covered pages.
func (t *Task) forget(addr, size uint64) {
	end := addr + size
	keep := make(cpu.Pages, 0, len(t.mapped))
	for _, p := range t.mapped {
		if !p.Overlaps(addr, size) {
			keep = append(keep, p)
			continue
		}
		if p.Addr < addr {
			keep = append(keep, &cpu.Page{Addr: p.Addr, Size: addr - p.Addr, Prot: p.Prot, Desc: p.Desc})
		}
		if pend := p.Addr + p.Size; pend > end {
			keep = append(keep, &cpu.Page{Addr: end, Size: pend - end, Prot: p.Prot, Desc: p.Desc})
		}
	}
	sort.Sort(keep)
	t.mapped = keep
}

func (t *Task) MemUnmap(addr, size uint64) error {
	addr, size = align(addr, size)
	if err := t.Cpu.MemUnmap(addr, size); err != nil {
		return errors.Wrap(err, "t.MemUnmap() failed")
	}
	t.forget(addr, size)
	return nil
}

func (t *Task) reserve(size uint64) (uint64, error) {
	last := ^uint64(0) >> uint(64-t.bits)
	for addr := uint64(BASE); addr < last && last-addr >= size-1; {
		hits := t.mapped.FindRange(addr, size)
		if len(hits) == 0 {
			return addr, nil
		}
		top := hits[len(hits)-1]
		addr = top.Addr + top.Size
	}
	return 0, errors.New("failed to reserve memory")
}

// Mmap maps size bytes at addr, or at the first free address from BASE when
// addr is 0. A fixed mapping replaces whatever was there.
func (t *Task) Mmap(addr, size uint64, prot int, desc string) (uint64, error) {
	if addr == 0 {
		_, size = align(0, size)
		var err error
		if addr, err = t.reserve(size); err != nil {
			return 0, err
		}
	} else {
		addr, size = align(addr, size)
		t.forget(addr, size)
	}
	if err := t.Cpu.MemMapProt(addr, size, prot); err != nil {
		return 0, errors.Wrap(err, "t.Mmap() failed")
	}
	t.mapped = append(t.mapped, &cpu.Page{Addr: addr, Size: size, Prot: prot, Desc: desc})
	sort.Sort(t.mapped)
	return addr, nil
}

func (t *Task) Malloc(size uint64, desc string) (uint64, error) {
	return t.Mmap(0, size, cpu.PROT_READ|cpu.PROT_WRITE, desc)
}

func (t *Task) StrucAt(addr uint64) *models.StrucStream {
	return &models.StrucStream{Stream: &models.MemIO{Cpu: t, Addr: addr}, Order: t.order}
}

// ReadStrAt reads a NUL-terminated string one page at a time, so a string
// that ends just before unmapped memory still reads.
func (t *Task) ReadStrAt(addr uint64) (string, error) {
	var out []byte
	for cur := addr; len(out) < MAXPATHLEN; {
		n := PAGE_SIZE - cur%PAGE_SIZE
		chunk, err := t.Cpu.MemRead(cur, n)
		if err != nil {
			return "", errors.Wrapf(err, "reading string at %#x", addr)
		}
		if i := bytes.IndexByte(chunk, 0); i >= 0 {
			out = append(out, chunk[:i]...)
			if len(out) >= MAXPATHLEN {
				break
			}
			return string(out), nil
		}
		out = append(out, chunk...)
		cur += n
	}
	return "", errors.Wrapf(enum.ENAMETOOLONG, "string at %#x", addr)
}

func (t *Task) PackAddr(buf []byte, n uint64) ([]byte, error) {
	return cpu.PackUint(t.order, t.Bsz, buf, n)
}

func (t *Task) UnpackAddr(buf []byte) uint64 {
	n, err := cpu.UnpackUint(t.order, t.Bsz, buf)
	if err != nil {
		panic(err)
	}
	return n
}

func (t *Task) ReadRegs(regs []int) ([]uint64, error) {
	vals := make([]uint64, len(regs))
	for i, enum := range regs {
		val, err := t.Cpu.RegRead(enum)
		if err != nil {
			return nil, errors.Wrap(err, "t.ReadRegs() failed")
		}
		vals[i] = val
	}
	return vals, nil
}

func (t *Task) RegDump() ([]models.RegVal, error) {
	return t.arch.RegDump(t.Cpu)
}

func (t *Task) RegRead(enum int) (uint64, error) {
	val, err := t.Cpu.RegRead(enum)
	return val, errors.Wrap(err, "t.RegRead() failed")
}

func (t *Task) RegWrite(enum int, val uint64) error {
	err := t.Cpu.RegWrite(enum, val)
	return errors.Wrap(err, "t.RegWrite() failed")
}

func (t *Task) MemRead(addr, size uint64) ([]byte, error) {
	data, err := t.Cpu.MemRead(addr, size)
	return data, errors.Wrap(err, "t.MemRead() failed")
}

func (t *Task) MemWrite(addr uint64, p []byte) error {
	err := t.Cpu.MemWrite(addr, p)
	return errors.Wrap(err, "t.MemWrite() failed")
}

func (t *Task) MemReadInto(p []byte, addr uint64) error {
	err := t.Cpu.MemReadInto(p, addr)
	return errors.Wrap(err, "t.MemReadInto() failed")
}

// SetErrno records e and, if the guest has an errno slot, stores it there.
func (t *Task) SetErrno(e enum.Errno) error {
	t.errno = e
	if t.ErrnoAddr == 0 {
		return nil
	}
	var buf [4]byte
	t.order.PutUint32(buf[:], uint32(e))
	return errors.Wrap(t.Cpu.MemWrite(t.ErrnoAddr, buf[:]), "writing errno")
}

func (t *Task) Errno() enum.Errno {
	return t.errno
}

// Syscall runs the first registered handler named name. Arguments the
// handler cannot decode fail the call with -1 and an errno, the same as a
// handler failure would.
func (t *Task) Syscall(num int, name string, getArgs func(n int) ([]uint64, error)) (uint64, error) {
	for _, k := range t.kernels {
		sys := co.Lookup(t, k, name)
		if sys == nil {
			continue
		}
		args, err := getArgs(len(sys.In))
		if err != nil {
			return 0, errors.Wrapf(err, "reading arguments for %s", name)
		}
		ret, err := sys.Call(args)
		if err != nil {
			t.log.WithError(err).WithField("syscall", name).Debug("argument decode failed")
			if err := t.SetErrno(co.ArgErrno(err)); err != nil {
				return 0, err
			}
			ret = ^uint64(0)
		}
		if t.config.TraceSys {
			t.log.Info(sys.Trace(args) + sys.TraceRet(args, ret))
		}
		return ret, nil
	}
	return 0, errors.Wrapf(co.UnknownSyscall, "%s (%d)", name, num)
}

var _ models.Usercorn = &Task{}

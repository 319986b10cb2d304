package models

import (
	"encoding/binary"

	"github.com/sirupsen/logrus"

	"github.com/lunixbochs/darwincorn/go/models/cpu"
	"github.com/lunixbochs/darwincorn/go/native/enum"
)

// Usercorn is the view of a guest process a kernel works against.
type Usercorn interface {
	cpu.Cpu
	Arch() *Arch
	OS() string
	Bits() uint
	ByteOrder() binary.ByteOrder
	Config() *Config
	Log() logrus.FieldLogger

	Mmap(addr, size uint64, prot int, desc string) (uint64, error)
	Malloc(size uint64, desc string) (uint64, error)
	StrucAt(addr uint64) *StrucStream
	ReadStrAt(addr uint64) (string, error)

	PackAddr(buf []byte, n uint64) ([]byte, error)
	UnpackAddr(buf []byte) uint64
	ReadRegs(regs []int) ([]uint64, error)
	RegDump() ([]RegVal, error)

	// Errno is the guest-visible error channel. SetErrno stores e in the
	// process errno slot, Errno returns the last value stored.
	SetErrno(e enum.Errno) error
	Errno() enum.Errno

	Syscall(num int, name string, getArgs func(n int) ([]uint64, error)) (uint64, error)
}

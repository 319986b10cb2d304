package cpu

// Cpu is the guest state syscall handlers touch: mapped memory and the
// register file. Instruction execution belongs to whatever engine drives the
// guest and is not part of this interface.
type Cpu interface {
	MemMapProt(addr, size uint64, prot int) error
	MemUnmap(addr, size uint64) error

	MemRead(addr, size uint64) ([]byte, error)
	MemReadInto(p []byte, addr uint64) error
	MemWrite(addr uint64, p []byte) error

	RegRead(reg int) (uint64, error)
	RegWrite(reg int, val uint64) error

	Close() error
}

// mmap protections, as the guest passes them
const (
	PROT_NONE  = 0
	PROT_READ  = 1
	PROT_WRITE = 2
	PROT_EXEC  = 4
)

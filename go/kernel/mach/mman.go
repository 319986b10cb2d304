package mach

import (
	co "github.com/lunixbochs/darwincorn/go/kernel/common"
	"github.com/lunixbochs/darwincorn/go/models/cpu"
)

// VM_FLAGS_ANYWHERE lets the kernel pick the address.
const VM_FLAGS_ANYWHERE = 0x1

// mach_vm_address_t is 64 bits for 32-bit guests too
type vmAddress struct {
	Addr uint64 `struc:"uint64"`
}

// MachVmAllocate is _kernelrpc_mach_vm_allocate_trap. addr points at a
// 64-bit mach_vm_address_t that holds the fixed address on the way in and
// the result on the way out.
func (k *MachKernel) MachVmAllocate(target uint32, addr co.Buf, size co.Len, flags int) int32 {
	var at vmAddress
	if flags&VM_FLAGS_ANYWHERE == 0 {
		if err := addr.Unpack(&at); err != nil || at.Addr == 0 {
			return KERN_INVALID_ADDRESS
		}
	}
	got, err := k.U.Mmap(at.Addr, uint64(size), cpu.PROT_READ|cpu.PROT_WRITE, "mach_vm_allocate")
	if err != nil {
		k.Entry().WithError(err).Info("mach_vm_allocate failed")
		return KERN_NO_SPACE
	}
	at.Addr = got
	if err := addr.Pack(&at); err != nil {
		return KERN_INVALID_ADDRESS
	}
	return KERN_SUCCESS
}

func (k *MachKernel) MachVmDeallocate(target uint32, addr uint64, size co.Len) int32 {
	if size == 0 {
		return KERN_SUCCESS
	}
	if err := k.U.MemUnmap(addr, uint64(size)); err != nil {
		return KERN_INVALID_ADDRESS
	}
	return KERN_SUCCESS
}

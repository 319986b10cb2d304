package common

import (
	"github.com/pkg/errors"

	"github.com/lunixbochs/darwincorn/go/models"
)

// StackArgs reads arguments from the guest stack, starting at sp.
func StackArgs(u models.Usercorn) func(n int) ([]uint64, error) {
	return func(n int) ([]uint64, error) {
		sp, err := u.RegRead(u.Arch().SP)
		if err != nil {
			return nil, err
		}
		return readStack(u, sp, n)
	}
}

func readStack(u models.Usercorn, sp uint64, n int) ([]uint64, error) {
	size := uint64(u.Bits() / 8)
	buf, err := u.MemRead(sp, size*uint64(n))
	if err != nil {
		return nil, errors.Wrap(err, "reading stack arguments")
	}
	ret := make([]uint64, n)
	for i := range ret {
		ret[i] = u.UnpackAddr(buf[uint64(i)*size:])
	}
	return ret, nil
}

// RegArgs reads arguments from regs in calling convention order.
func RegArgs(u models.Usercorn, regs []int) func(n int) ([]uint64, error) {
	return RegArgsShifted(u, regs, 0)
}

// RegArgsShifted is RegArgs starting at regs[shift], for traps where the
// first argument registers are taken (like the syscall number of an
// indirect syscall).
func RegArgsShifted(u models.Usercorn, regs []int, shift int) func(n int) ([]uint64, error) {
	return func(n int) ([]uint64, error) {
		if shift+n > len(regs) {
			return nil, errors.Errorf("wanted %d register arguments from offset %d, only %d available", n, shift, len(regs)-shift)
		}
		return u.ReadRegs(regs[shift : shift+n])
	}
}

// MixedArgs reads from regs[shift:] first, then continues on the stack.
func MixedArgs(u models.Usercorn, regs []int, shift int) func(n int) ([]uint64, error) {
	return func(n int) ([]uint64, error) {
		avail := len(regs) - shift
		if avail < 0 {
			avail = 0
		}
		if n <= avail {
			return u.ReadRegs(regs[shift : shift+n])
		}
		ret, err := u.ReadRegs(regs[shift:])
		if err != nil {
			return nil, err
		}
		sp, err := u.RegRead(u.Arch().SP)
		if err != nil {
			return nil, err
		}
		// stack arguments skip the ones an indirect syscall consumed
		skip := 0
		if shift > len(regs) {
			skip = shift - len(regs)
		}
		extra, err := readStack(u, sp+uint64(skip)*uint64(u.Bits()/8), n-avail)
		if err != nil {
			return nil, err
		}
		return append(ret, extra...), nil
	}
}

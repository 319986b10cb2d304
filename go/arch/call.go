package arch

import (
	"github.com/pkg/errors"

	"github.com/lunixbochs/darwincorn/go/arch/arm"
	"github.com/lunixbochs/darwincorn/go/arch/arm64"
	"github.com/lunixbochs/darwincorn/go/models"
)

// register roles of the svc #0x80 convention
type abi struct {
	num  int
	args []int
	ret  int
	// arguments past args go on the stack
	stack bool
}

var darwinABI = map[string]abi{
	"arm":   {arm.R12, arm.DarwinRegs, arm.R0, true},
	"arm64": {arm64.X16, arm64.DarwinRegs, arm64.X0, false},
}

// Call loads trap num and its arguments into u's registers the way guest
// code would, runs the OS syscall hook, and returns the sign-extended
// result register. Stack arguments are written at sp, which must be mapped.
func Call(u models.Usercorn, num int, args ...uint64) (int64, error) {
	a, ok := darwinABI[u.Arch().Name]
	if !ok {
		return 0, errors.Errorf("no trap convention for arch '%s'", u.Arch().Name)
	}
	o, ok := u.Arch().OS[u.OS()]
	if !ok || o.Syscall == nil {
		return 0, errors.Errorf("OS '%s' has no syscall hook", u.OS())
	}
	if len(args) > len(a.args) && !a.stack {
		return 0, errors.Errorf("%d arguments, only %d fit in registers", len(args), len(a.args))
	}
	if err := u.RegWrite(a.num, uint64(num)); err != nil {
		return 0, err
	}
	for i, v := range args {
		if i >= len(a.args) {
			if err := pushArgs(u, args[i:]); err != nil {
				return 0, err
			}
			break
		}
		if err := u.RegWrite(a.args[i], v); err != nil {
			return 0, err
		}
	}
	o.Syscall(u)
	ret, err := u.RegRead(a.ret)
	if err != nil {
		return 0, err
	}
	if u.Bits() == 32 {
		return int64(int32(ret)), nil
	}
	return int64(ret), nil
}

func pushArgs(u models.Usercorn, args []uint64) error {
	sp, err := u.RegRead(u.Arch().SP)
	if err != nil {
		return err
	}
	size := uint64(u.Bits() / 8)
	buf := make([]byte, size*uint64(len(args)))
	for i, v := range args {
		if _, err := u.PackAddr(buf[uint64(i)*size:], v); err != nil {
			return err
		}
	}
	return errors.Wrap(u.MemWrite(sp, buf), "writing stack arguments")
}

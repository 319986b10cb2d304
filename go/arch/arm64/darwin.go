package arm64

import (
	co "github.com/lunixbochs/darwincorn/go/kernel/common"
	"github.com/lunixbochs/darwincorn/go/kernel/darwin"
	"github.com/lunixbochs/darwincorn/go/models"
)

// svc raises this interrupt number
const EXCP_SWI = 2

var DarwinRegs = []int{X0, X1, X2, X3, X4, X5, X6, X7}

func darwinArgs(u models.Usercorn) darwin.ArgReader {
	return func(shift int) func(int) ([]uint64, error) {
		return co.RegArgsShifted(u, DarwinRegs, shift)
	}
}

// DarwinSyscall handles svc #0x80: the number is in x16, negative for Mach
// traps, and the result goes back in x0.
func DarwinSyscall(u models.Usercorn) {
	x16, _ := u.RegRead(X16)
	ret := darwin.Dispatch(u, int(int64(x16)), darwinArgs(u))
	u.RegWrite(X0, ret)
}

func DarwinInterrupt(u models.Usercorn, intno uint32) {
	if intno == EXCP_SWI {
		DarwinSyscall(u)
		return
	}
	u.Log().WithField("intno", intno).Error("unhandled interrupt")
}

func init() {
	Arch.RegisterOS(&models.OS{Name: "darwin", Syscall: DarwinSyscall, Interrupt: DarwinInterrupt})
}

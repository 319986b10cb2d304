package arm

import (
	co "github.com/lunixbochs/darwincorn/go/kernel/common"
	"github.com/lunixbochs/darwincorn/go/kernel/darwin"
	"github.com/lunixbochs/darwincorn/go/models"
)

const EXCP_SWI = 2

// Arguments past r3 are on the stack.
var DarwinRegs = []int{R0, R1, R2, R3}

func darwinArgs(u models.Usercorn) darwin.ArgReader {
	return func(shift int) func(int) ([]uint64, error) {
		return co.MixedArgs(u, DarwinRegs, shift)
	}
}

// DarwinSyscall handles svc #0x80 with the number in r12.
func DarwinSyscall(u models.Usercorn) {
	r12, _ := u.RegRead(R12)
	ret := darwin.Dispatch(u, int(int32(r12)), darwinArgs(u))
	u.RegWrite(R0, ret)
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

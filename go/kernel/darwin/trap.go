package darwin

import (
	"github.com/pkg/errors"

	co "github.com/lunixbochs/darwincorn/go/kernel/common"
	"github.com/lunixbochs/darwincorn/go/models"
	"github.com/lunixbochs/darwincorn/go/native/enum"
)

// ArgReader builds an argument reader that skips the first shift arguments.
type ArgReader func(shift int) func(n int) ([]uint64, error)

// Dispatch runs trap num for u and returns the value for the return
// register. SYS_syscall reads the real number from the first argument and
// shifts the rest down by one. Numbers with no handler fail with ENOSYS.
func Dispatch(u models.Usercorn, num int, args ArgReader) uint64 {
	shift := 0
	if num == SYS_syscall {
		first, err := args(0)(1)
		if err != nil {
			return fail(u, enum.EFAULT)
		}
		num = int(int32(first[0]))
		shift = 1
	}
	name, ok := SyscallName(num)
	if !ok {
		u.Log().WithField("num", num).Warn("unknown syscall")
		return fail(u, enum.ENOSYS)
	}
	ret, err := u.Syscall(num, name, args(shift))
	if err != nil {
		log := u.Log().WithError(err).WithField("syscall", name)
		if errors.Cause(err) == co.UnknownSyscall {
			log.Warn("no handler")
			return fail(u, enum.ENOSYS)
		}
		log.Error("syscall failed")
		return fail(u, enum.EFAULT)
	}
	return ret
}

func fail(u models.Usercorn, e enum.Errno) uint64 {
	u.SetErrno(e)
	return ^uint64(0)
}

package arm64

import (
	"testing"

	darwincorn "github.com/lunixbochs/darwincorn/go"
	"github.com/lunixbochs/darwincorn/go/kernel/darwin"
	"github.com/lunixbochs/darwincorn/go/native/enum"
	"github.com/lunixbochs/darwincorn/go/vfs"
)

func newTask(t *testing.T) (*darwincorn.Task, uint64) {
	task := darwincorn.NewTask(NewCpu(), Arch, Arch.OS["darwin"], Arch.Order, nil, nil)
	fs := vfs.NewMemFS()
	fs.WriteFile("/usr/lib/dyld", []byte("\xcf\xfa\xed\xfe"), 0755)
	task.AddKernel(darwin.NewKernel(task, fs, nil, nil))
	errno, err := task.Malloc(0x1000, "errno")
	if err != nil {
		t.Fatal(err)
	}
	task.ErrnoAddr = errno
	scratch, err := task.Malloc(0x1000, "scratch")
	if err != nil {
		t.Fatal(err)
	}
	task.MemWrite(scratch, []byte("/usr/lib/dyld\x00"))
	return task, scratch
}

func trap(task *darwincorn.Task, num int64, args ...uint64) uint64 {
	task.RegWrite(X16, uint64(num))
	for i, a := range args {
		task.RegWrite(DarwinRegs[i], a)
	}
	DarwinSyscall(task)
	x0, _ := task.RegRead(X0)
	return x0
}

func TestDarwinOpen(t *testing.T) {
	task, path := newTask(t)
	if fd := trap(task, 5, path, uint64(enum.O_RDONLY), 0); fd != 3 {
		t.Fatalf("open: %d", int64(fd))
	}
	if fd := trap(task, 398, path, uint64(enum.O_RDONLY), 0); fd != 4 {
		t.Fatalf("open_nocancel: %d", int64(fd))
	}
}

func TestDarwinIndirect(t *testing.T) {
	task, path := newTask(t)
	if ret := trap(task, darwin.SYS_syscall, 33, path, enum.X_OK); ret != 0 {
		t.Fatalf("indirect access: %d", int64(ret))
	}
	task.MemWrite(path, []byte("/usr/lib/nope\x00"))
	if ret := trap(task, darwin.SYS_syscall, 33, path, enum.F_OK); ret != ^uint64(0) || task.Errno() != enum.ENOENT {
		t.Fatalf("indirect access missing: %d %v", int64(ret), task.Errno())
	}
}

func TestDarwinMachTrap(t *testing.T) {
	task, _ := newTask(t)
	host := trap(task, -29)
	if host == 0 || trap(task, -29) != host {
		t.Fatalf("host_self_trap: %#x", host)
	}
}

func TestDarwinUnknown(t *testing.T) {
	task, _ := newTask(t)
	for _, num := range []int64{9999, -1000} {
		task.SetErrno(0)
		if ret := trap(task, num); ret != ^uint64(0) || task.Errno() != enum.ENOSYS {
			t.Fatalf("%d: %d %v", num, int64(ret), task.Errno())
		}
	}
}

func TestDarwinInterrupt(t *testing.T) {
	task, path := newTask(t)
	task.RegWrite(X16, 33)
	task.RegWrite(X0, path)
	task.RegWrite(X1, enum.R_OK)
	Arch.OS["darwin"].Interrupt(task, EXCP_SWI)
	if x0, _ := task.RegRead(X0); x0 != 0 {
		t.Fatalf("access via svc: %d", int64(x0))
	}
}

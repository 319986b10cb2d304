package common_test

import (
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"

	darwincorn "github.com/lunixbochs/darwincorn/go"
	co "github.com/lunixbochs/darwincorn/go/kernel/common"
	"github.com/lunixbochs/darwincorn/go/models"
	"github.com/lunixbochs/darwincorn/go/models/cpu"
	"github.com/lunixbochs/darwincorn/go/native/enum"
)

var testArch = &models.Arch{
	Name: "test",
	Bits: 64,
	PC:   0,
	SP:   1,
	LR:   2,
	Regs: map[string]int{"pc": 0, "sp": 1, "lr": 2, "a0": 3, "a1": 4, "a2": 5},
}

var argRegs = []int{3, 4, 5}

type testKernel struct {
	*co.KernelBase
	exitCode int
	path     string
}

func (k *testKernel) Exit(code int) uint64 {
	k.exitCode = code
	return 44
}

func (k *testKernel) GetPath(path string, n co.Len) int {
	k.path = path
	return int(n)
}

func (k *testKernel) private() {}

func newTask(t *testing.T) (*darwincorn.Task, *testKernel) {
	c := cpu.NewSim(64, testArch.RegEnums())
	task := darwincorn.NewTask(c, testArch, &models.OS{Name: "test"}, binary.LittleEndian, nil, nil)
	k := &testKernel{KernelBase: co.NewKernelBase(nil)}
	task.AddKernel(k)
	return task, k
}

func TestKernel(t *testing.T) {
	task, kernel := newTask(t)
	sys := co.Lookup(task, kernel, "exit")
	if sys == nil {
		t.Fatal("exit not registered")
	}
	ret, err := sys.Call([]uint64{43})
	if err != nil {
		t.Fatal(err)
	}
	if kernel.exitCode != 43 {
		t.Fatal("Syscall failed.")
	}
	if ret != 44 {
		t.Fatal("Syscall return failed.")
	}
	if co.Lookup(task, kernel, "private") != nil {
		t.Fatal("private method registered as a syscall")
	}
}

func TestCamelCaseNames(t *testing.T) {
	task, kernel := newTask(t)
	if co.Lookup(task, kernel, "get_path") == nil {
		t.Fatal("GetPath should register as get_path")
	}
}

func TestStringArg(t *testing.T) {
	task, kernel := newTask(t)
	addr, err := task.Malloc(0x1000, "str")
	if err != nil {
		t.Fatal(err)
	}
	if err := task.MemWrite(addr, []byte("/etc/hosts\x00")); err != nil {
		t.Fatal(err)
	}
	task.RegWrite(3, addr)
	task.RegWrite(4, 7)
	ret, err := task.Syscall(0, "get_path", co.RegArgs(task, argRegs))
	if err != nil {
		t.Fatal(err)
	}
	if ret != 7 || kernel.path != "/etc/hosts" {
		t.Fatalf("got ret=%d path=%q", ret, kernel.path)
	}
}

func TestBadStringArg(t *testing.T) {
	task, kernel := newTask(t)
	task.RegWrite(3, 0xdead0000)
	ret, err := task.Syscall(0, "get_path", co.RegArgs(task, argRegs))
	if err != nil {
		t.Fatal(err)
	}
	if int64(ret) != -1 {
		t.Fatalf("expected -1, got %#x", ret)
	}
	if kernel.path != "" {
		t.Fatal("handler ran with an unreadable path")
	}
	if task.Errno() != enum.EFAULT {
		t.Fatalf("expected EFAULT, got %v", task.Errno())
	}
}

func TestUnknownSyscall(t *testing.T) {
	task, _ := newTask(t)
	_, err := task.Syscall(1234, "nope", co.RegArgs(task, argRegs))
	if errors.Cause(err) != co.UnknownSyscall {
		t.Fatalf("expected UnknownSyscall, got %v", err)
	}
}

func TestRegArgsShifted(t *testing.T) {
	task, _ := newTask(t)
	for i, r := range argRegs {
		task.RegWrite(r, uint64(10+i))
	}
	args, err := co.RegArgsShifted(task, argRegs, 1)(2)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]uint64{11, 12}, args); diff != "" {
		t.Fatal(diff)
	}
	if _, err := co.RegArgsShifted(task, argRegs, 2)(2); err == nil {
		t.Fatal("reading past the last argument register should fail")
	}
}

func TestMixedArgs(t *testing.T) {
	task, _ := newTask(t)
	for i, r := range argRegs {
		task.RegWrite(r, uint64(10+i))
	}
	sp, err := task.Malloc(0x1000, "stack")
	if err != nil {
		t.Fatal(err)
	}
	task.RegWrite(testArch.SP, sp)
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:], 20)
	binary.LittleEndian.PutUint64(buf[8:], 21)
	task.MemWrite(sp, buf[:])

	args, err := co.MixedArgs(task, argRegs, 0)(5)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]uint64{10, 11, 12, 20, 21}, args); diff != "" {
		t.Fatal(diff)
	}
	args, err = co.MixedArgs(task, argRegs, 1)(3)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]uint64{11, 12, 20}, args); diff != "" {
		t.Fatal(diff)
	}
}

func TestArgErrno(t *testing.T) {
	if e := co.ArgErrno(errors.Wrap(enum.ENAMETOOLONG, "x")); e != enum.ENAMETOOLONG {
		t.Fatalf("got %v", e)
	}
	if e := co.ArgErrno(errors.New("bad address")); e != enum.EFAULT {
		t.Fatalf("got %v", e)
	}
}

func TestRepr(t *testing.T) {
	if s := co.Repr([]byte("hello\n"), 0); s != `"hello\n"` {
		t.Fatal(s)
	}
	if s := co.Repr([]byte("hello world"), 5); s != `"hello"...` {
		t.Fatal(s)
	}
}

package darwincorn

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"

	"github.com/lunixbochs/darwincorn/go/models"
	"github.com/lunixbochs/darwincorn/go/models/cpu"
	"github.com/lunixbochs/darwincorn/go/native/enum"
)

var testArch = &models.Arch{
	Name: "test",
	Bits: 32,
	PC:   0,
	SP:   1,
	LR:   2,
	Regs: map[string]int{"pc": 0, "sp": 1, "lr": 2, "r10": 3, "r2": 4},
}

func newTask(order binary.ByteOrder) *Task {
	return NewTask(cpu.NewSim(32, testArch.RegEnums()), testArch, &models.OS{Name: "darwin"}, order, nil, nil)
}

func TestMmap(t *testing.T) {
	task := newTask(binary.LittleEndian)
	a, err := task.Malloc(0x1800, "a")
	if err != nil {
		t.Fatal(err)
	}
	b, err := task.Malloc(0x1000, "b")
	if err != nil {
		t.Fatal(err)
	}
	if a != BASE || b != BASE+0x2000 {
		t.Fatalf("a=%#x b=%#x", a, b)
	}
	if err := task.MemUnmap(a, 0x1000); err != nil {
		t.Fatal(err)
	}
	// the hole is reused
	c, err := task.Malloc(0x1000, "c")
	if err != nil {
		t.Fatal(err)
	}
	if c != a {
		t.Fatalf("c=%#x, want %#x", c, a)
	}
	var got []string
	for _, p := range task.Mappings() {
		got = append(got, p.Desc)
	}
	if diff := cmp.Diff([]string{"c", "a", "b"}, got); diff != "" {
		t.Fatalf("mappings (-want +got):\n%s", diff)
	}
	fixed, err := task.Mmap(0x7000123, 0x10, cpu.PROT_READ, "fixed")
	if err != nil || fixed != 0x7000000 {
		t.Fatalf("fixed mmap: %#x %v", fixed, err)
	}
}

func TestReadStrAt(t *testing.T) {
	task := newTask(binary.LittleEndian)
	addr, _ := task.Malloc(0x2000, "str")
	// crosses a page boundary and ends right at the mapping's end
	end := addr + 0x2000
	s := "/private/var/mobile/Library"
	task.MemWrite(end-uint64(len(s))-1, append([]byte(s), 0))
	if got, err := task.ReadStrAt(end - uint64(len(s)) - 1); err != nil || got != s {
		t.Fatalf("got %q, %v", got, err)
	}
	long := strings.Repeat("a", MAXPATHLEN)
	task.MemWrite(addr, []byte(long+"\x00"))
	if _, err := task.ReadStrAt(addr); errors.Cause(err) != enum.ENAMETOOLONG {
		t.Fatalf("long string: %v", err)
	}
	if _, err := task.ReadStrAt(0x10); err == nil {
		t.Fatal("read from NULL page succeeded")
	}
}

func TestSetErrno(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		task := newTask(order)
		if err := task.SetErrno(enum.ENOENT); err != nil {
			t.Fatal(err)
		}
		slot, _ := task.Malloc(4, "errno")
		task.ErrnoAddr = slot
		task.SetErrno(enum.EACCES)
		p, _ := task.MemRead(slot, 4)
		if enum.Errno(order.Uint32(p)) != enum.EACCES || task.Errno() != enum.EACCES {
			t.Fatalf("%v: slot %x, errno %v", order, p, task.Errno())
		}
	}
}

func TestPackAddr(t *testing.T) {
	task := newTask(binary.BigEndian)
	buf := make([]byte, 4)
	if _, err := task.PackAddr(buf, 0x01020304); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{1, 2, 3, 4}, buf); diff != "" {
		t.Fatal(diff)
	}
	if n := task.UnpackAddr(buf); n != 0x01020304 {
		t.Fatalf("%#x", n)
	}
}

func TestRegDump(t *testing.T) {
	task := newTask(binary.LittleEndian)
	task.RegWrite(3, 10)
	task.RegWrite(4, 2)
	dump, err := task.RegDump()
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, r := range dump {
		names = append(names, r.Name)
	}
	// natural order puts r2 before r10
	if diff := cmp.Diff([]string{"lr", "pc", "r2", "r10", "sp"}, names); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

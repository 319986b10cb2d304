package arch

import (
	"testing"

	darwincorn "github.com/lunixbochs/darwincorn/go"
	"github.com/lunixbochs/darwincorn/go/kernel/darwin"
	"github.com/lunixbochs/darwincorn/go/native/enum"
	"github.com/lunixbochs/darwincorn/go/vfs"
)

func TestGetArch(t *testing.T) {
	for _, name := range Names() {
		a, o, c, err := GetArch(name, "darwin")
		if err != nil {
			t.Fatal(err)
		}
		if a.Name != name || o.Name != "darwin" || c == nil {
			t.Fatalf("%s: got %s/%s", name, a.Name, o.Name)
		}
	}
	if _, _, _, err := GetArch("x86_64", "darwin"); err == nil {
		t.Fatal("unknown arch found")
	}
	if _, _, _, err := GetArch("arm64", "linux"); err == nil {
		t.Fatal("unknown OS found")
	}
}

func TestCall(t *testing.T) {
	for _, name := range Names() {
		a, o, c, err := GetArch(name, "darwin")
		if err != nil {
			t.Fatal(err)
		}
		task := darwincorn.NewTask(c, a, o, a.Order, nil, nil)
		fs := vfs.NewMemFS()
		fs.WriteFile("/bin/ls", nil, 0755)
		task.AddKernel(darwin.NewKernel(task, fs, nil, nil))
		path, err := task.Malloc(0x1000, "path")
		if err != nil {
			t.Fatal(err)
		}
		task.MemWrite(path, []byte("/bin/ls\x00"))
		if ret, err := Call(task, 33, path, enum.X_OK); err != nil || ret != 0 {
			t.Fatalf("%s: access: %d %v", name, ret, err)
		}
		if ret, err := Call(task, 15, path, 0700); err != nil || ret != 0 {
			t.Fatalf("%s: chmod: %d %v", name, ret, err)
		}
		if mode, _ := fs.Mode("/bin/ls"); mode&07777 != 0700 {
			t.Fatalf("%s: mode %o", name, mode)
		}
		task.MemWrite(path, []byte("/bin/sh\x00"))
		if ret, err := Call(task, 33, path, enum.F_OK); err != nil || ret != -1 || task.Errno() != enum.ENOENT {
			t.Fatalf("%s: missing access: %d %v %v", name, ret, err, task.Errno())
		}
		if _, err := Call(task, 33, 1, 2, 3, 4, 5, 6, 7, 8, 9); err == nil {
			t.Fatalf("%s: too many arguments accepted", name)
		}
	}
}

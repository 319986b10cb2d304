package vfs

import (
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lunixbochs/darwincorn/go/native/enum"
)

func newTestFS(t *testing.T) *MemFS {
	fs := NewMemFS()
	if err := fs.WriteFile("/etc/hosts", []byte("127.0.0.1 localhost\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := fs.WriteFile("/secret", nil, 0); err != nil {
		t.Fatal(err)
	}
	if err := fs.Mkdir("/var/mobile", 0755); err != nil {
		t.Fatal(err)
	}
	return fs
}

func TestMemFSResolve(t *testing.T) {
	fs := newTestFS(t)
	tests := []struct {
		path  string
		flags enum.OpenFlag
		ok    bool
		errno enum.Errno
	}{
		{"/etc/hosts", enum.O_RDONLY, true, 0},
		{"etc/../etc/hosts", enum.O_RDONLY, true, 0},
		{"/missing", enum.O_RDONLY, false, 0},
		{"/etc/hosts/x", enum.O_RDONLY, true, enum.ENOTDIR},
		{"/secret", enum.O_RDONLY, true, enum.EACCES},
		{"/secret", enum.O_WRONLY, true, enum.EACCES},
		{"/var", enum.O_RDWR, true, enum.EISDIR},
		{"/var", enum.O_RDONLY, true, 0},
		{"/etc/hosts", enum.O_RDONLY | enum.O_DIRECTORY, true, enum.ENOTDIR},
		{"/etc/hosts", enum.O_WRONLY | enum.O_CREAT | enum.O_EXCL, true, enum.EEXIST},
		{"/nodir/new", enum.O_WRONLY | enum.O_CREAT, true, enum.ENOENT},
	}
	for _, test := range tests {
		res, ok := fs.Resolve(test.path, test.flags)
		if ok != test.ok {
			t.Errorf("%s %v: ok=%v, want %v", test.path, test.flags, ok, test.ok)
			continue
		}
		if ok && res.Errno != test.errno {
			t.Errorf("%s %v: errno %v, want %v", test.path, test.flags, res.Errno, test.errno)
		}
		if res.OK() {
			res.File.Close()
		}
	}
}

func TestMemFSReadWrite(t *testing.T) {
	fs := newTestFS(t)
	res := Resolve(fs, "/tmp/new", enum.O_WRONLY|enum.O_CREAT)
	if res.Errno != enum.ENOENT {
		t.Fatalf("create without parent: %v", res.Errno)
	}
	if err := fs.Mkdir("/tmp", 0777); err != nil {
		t.Fatal(err)
	}
	res = Resolve(fs, "/tmp/new", enum.O_WRONLY|enum.O_CREAT)
	if !res.OK() || !res.Created {
		t.Fatalf("create: %v created=%v", res.Err(), res.Created)
	}
	if _, err := res.File.Write([]byte("hello")); err != nil {
		t.Fatal(err)
	}
	if _, err := res.File.Read(make([]byte, 1)); err != enum.EBADF {
		t.Fatalf("read on write-only file: %v", err)
	}
	res.File.Close()

	res = Resolve(fs, "/tmp/new", enum.O_WRONLY|enum.O_APPEND|enum.O_CREAT)
	if res.Created {
		t.Fatal("existing file reported as created")
	}
	res.File.Write([]byte(" world"))
	res.File.Close()

	res = Resolve(fs, "/tmp/new", enum.O_RDONLY)
	data, err := io.ReadAll(res.File)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello world" {
		t.Fatalf("got %q", data)
	}
	if err := res.File.Close(); err != nil {
		t.Fatal(err)
	}
	if err := res.File.Close(); err != enum.EBADF {
		t.Fatalf("double close: %v", err)
	}

	res = Resolve(fs, "/tmp/new", enum.O_RDWR|enum.O_TRUNC)
	res.File.Close()
	res = Resolve(fs, "/tmp/new", enum.O_RDONLY)
	if n, _ := res.File.Read(make([]byte, 10)); n != 0 {
		t.Fatalf("O_TRUNC left %d bytes", n)
	}
}

func TestMemFSListxattr(t *testing.T) {
	fs := newTestFS(t)
	fs.SetXattr("/etc/hosts", "com.apple.quarantine", []byte("q"))
	fs.SetXattr("/etc/hosts", "com.apple.FinderInfo", []byte("f"))
	res := Resolve(fs, "/etc/hosts", enum.O_RDONLY)
	if !res.OK() {
		t.Fatal(res.Err())
	}
	size, err := res.File.Listxattr(nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	want := "com.apple.FinderInfo\x00com.apple.quarantine\x00"
	if size != len(want) {
		t.Fatalf("size query: %d, want %d", size, len(want))
	}
	if _, err := res.File.Listxattr(make([]byte, size-1), 0); err != enum.ERANGE {
		t.Fatalf("short buffer: %v", err)
	}
	if _, err := res.File.Listxattr(nil, 0x4); err != enum.EINVAL {
		t.Fatalf("bad options: %v", err)
	}
	buf := make([]byte, 64)
	n, err := res.File.Listxattr(buf, enum.XATTR_NOFOLLOW)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf[:n]) != want {
		t.Fatalf("got %q", buf[:n])
	}
	if diff := cmp.Diff([]string{"com.apple.FinderInfo", "com.apple.quarantine"}, SplitXattrs(buf[:n])); diff != "" {
		t.Fatal(diff)
	}
}

func TestMemFSChmod(t *testing.T) {
	fs := newTestFS(t)
	res := Resolve(fs, "/var/mobile", enum.O_RDONLY)
	if err := res.File.Chmod(0xffff); err != nil {
		t.Fatal(err)
	}
	mode, _ := fs.Mode("/var/mobile")
	if mode != enum.S_IFDIR|07777 {
		t.Fatalf("mode %o", mode)
	}
}

func TestMemFSRemove(t *testing.T) {
	fs := newTestFS(t)
	if err := fs.Remove("/var"); err != enum.ENOTEMPTY {
		t.Fatalf("remove non-empty dir: %v", err)
	}
	if err := fs.Remove("/var/mobile"); err != nil {
		t.Fatal(err)
	}
	if err := fs.Remove("/var"); err != nil {
		t.Fatal(err)
	}
	want := []string{"/", "/etc", "/etc/hosts", "/secret"}
	if diff := cmp.Diff(want, fs.Paths()); diff != "" {
		t.Fatal(diff)
	}
}

func TestOutcome(t *testing.T) {
	if res := Outcome(Result{}, false); res.Errno != enum.ENOENT {
		t.Fatalf("absent: %v", res.Errno)
	}
	if res := Outcome(Result{}, true); res.Errno != enum.ENOENT {
		t.Fatalf("empty: %v", res.Errno)
	}
	if res := Outcome(Failure(enum.EACCES), true); res.Errno != enum.EACCES {
		t.Fatalf("failure: %v", res.Errno)
	}
}

func TestOverlay(t *testing.T) {
	lower := newTestFS(t)
	upper := NewMemFS()
	upper.WriteFile("/etc/hosts", []byte("upper"), 0644)
	var asked []string
	hook := ResolverFunc(func(path string, flags enum.OpenFlag) (Result, bool) {
		asked = append(asked, path)
		return Result{}, false
	})
	o := NewOverlay(hook, lower)
	o.Push(upper)

	res := Resolve(o, "/etc/hosts", enum.O_RDONLY)
	data, _ := io.ReadAll(res.File)
	if string(data) != "upper" {
		t.Fatalf("got %q", data)
	}
	if len(asked) != 0 {
		t.Fatal("lower layer consulted after an opinion")
	}
	if res := Resolve(o, "/var/mobile", enum.O_RDONLY); !res.OK() {
		t.Fatal(res.Err())
	}
	if res := Resolve(o, "/nope", enum.O_RDONLY); res.Errno != enum.ENOENT {
		t.Fatalf("got %v", res.Errno)
	}
	if diff := cmp.Diff([]string{"/var/mobile", "/nope"}, asked); diff != "" {
		t.Fatal(diff)
	}
}

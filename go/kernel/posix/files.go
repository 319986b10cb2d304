package posix

import (
	"io"
	"sort"
	"sync"

	co "github.com/lunixbochs/darwincorn/go/kernel/common"
	"github.com/lunixbochs/darwincorn/go/native/enum"
	"github.com/lunixbochs/darwincorn/go/vfs"
)

// first descriptor open() hands out, below it are the standard streams
const firstFd = 3

type File struct {
	Fd    co.Fd
	Path  string
	Flags enum.OpenFlag
	Mode  int
	IO    vfs.FileIO
}

// FileTable maps guest descriptors to open files. It is shared by every
// thread of the guest.
type FileTable struct {
	sync.Mutex
	files map[co.Fd]*File
}

func NewFileTable() *FileTable {
	return &FileTable{files: make(map[co.Fd]*File)}
}

// Add stores f under the lowest free descriptor from firstFd up.
func (t *FileTable) Add(f *File) co.Fd {
	t.Lock()
	defer t.Unlock()
	fd := co.Fd(firstFd)
	for {
		if _, ok := t.files[fd]; !ok {
			break
		}
		fd++
	}
	f.Fd = fd
	t.files[fd] = f
	return fd
}

// Set stores f under f.Fd, replacing what was there.
func (t *FileTable) Set(f *File) {
	t.Lock()
	t.files[f.Fd] = f
	t.Unlock()
}

func (t *FileTable) Get(fd co.Fd) (*File, bool) {
	t.Lock()
	defer t.Unlock()
	f, ok := t.files[fd]
	return f, ok
}

func (t *FileTable) Remove(fd co.Fd) (*File, bool) {
	t.Lock()
	defer t.Unlock()
	f, ok := t.files[fd]
	delete(t.files, fd)
	return f, ok
}

// Fds lists the open descriptors in order.
func (t *FileTable) Fds() []co.Fd {
	t.Lock()
	defer t.Unlock()
	fds := make([]co.Fd, 0, len(t.files))
	for fd := range t.files {
		fds = append(fds, fd)
	}
	sort.Slice(fds, func(i, j int) bool { return fds[i] < fds[j] })
	return fds
}

// stream adapts a host reader or writer into a vfs.FileIO for the
// standard descriptors.
type stream struct {
	name string
	r    io.Reader
	w    io.Writer
}

func (s *stream) Path() string { return s.name }

func (s *stream) Read(p []byte) (int, error) {
	if s.r == nil {
		return 0, enum.EBADF
	}
	return s.r.Read(p)
}

func (s *stream) Write(p []byte) (int, error) {
	if s.w == nil {
		return 0, enum.EBADF
	}
	return s.w.Write(p)
}

func (s *stream) Close() error { return nil }

func (s *stream) Listxattr(buf []byte, options int) (int, error) {
	return 0, nil
}

func (s *stream) Chmod(mode uint32) error {
	return enum.EPERM
}

// SetStdio attaches host streams to descriptors 0, 1 and 2. A nil stream
// leaves its descriptor closed.
func (t *FileTable) SetStdio(stdin io.Reader, stdout, stderr io.Writer) {
	if stdin != nil {
		t.Set(&File{Fd: 0, Path: "/dev/stdin", Flags: enum.O_RDONLY, IO: &stream{name: "/dev/stdin", r: stdin}})
	}
	if stdout != nil {
		t.Set(&File{Fd: 1, Path: "/dev/stdout", Flags: enum.O_WRONLY, IO: &stream{name: "/dev/stdout", w: stdout}})
	}
	if stderr != nil {
		t.Set(&File{Fd: 2, Path: "/dev/stderr", Flags: enum.O_WRONLY, IO: &stream{name: "/dev/stderr", w: stderr}})
	}
}

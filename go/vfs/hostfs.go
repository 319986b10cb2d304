package vfs

import (
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/lunixbochs/darwincorn/go/native"
	"github.com/lunixbochs/darwincorn/go/native/enum"
)

const maxSymlinks = 32

// HostFS exposes a host directory as the guest root. Guest paths, including
// absolute symlink targets, are re-rooted so nothing resolves outside Root.
type HostFS struct {
	Root string
}

func NewHostFS(root string) (*HostFS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(err, "host root")
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return nil, errors.Wrap(err, "host root")
	}
	if !fi.IsDir() {
		return nil, errors.Errorf("host root %s is not a directory", abs)
	}
	return &HostFS{Root: abs}, nil
}

func (h *HostFS) host(guest string) string {
	return filepath.Join(h.Root, filepath.FromSlash(guest))
}

// resolve walks p one element at a time from the guest root, expanding
// symlinks. The final element is only expanded when follow is set.
func (h *HostFS) resolve(p string, follow bool) (string, error) {
	parts := strings.Split(Clean(p), "/")
	cur := "/"
	hops := 0
	for len(parts) > 0 {
		name := parts[0]
		parts = parts[1:]
		switch name {
		case "", ".":
			continue
		case "..":
			cur = path.Dir(cur)
			continue
		}
		next := path.Join(cur, name)
		if len(parts) == 0 && !follow {
			cur = next
			break
		}
		var st unix.Stat_t
		if err := unix.Lstat(h.host(next), &st); err != nil {
			if err == unix.ENOENT {
				return path.Join(append([]string{next}, parts...)...), nil
			}
			return "", err
		}
		if st.Mode&unix.S_IFMT != unix.S_IFLNK {
			cur = next
			continue
		}
		if hops++; hops > maxSymlinks {
			return "", enum.ELOOP
		}
		target, err := os.Readlink(h.host(next))
		if err != nil {
			return "", err
		}
		if strings.HasPrefix(target, "/") {
			cur = "/"
		}
		parts = append(strings.Split(target, "/"), parts...)
	}
	return cur, nil
}

// Resolve opens p on the host. A path the host does not have is no opinion.
func (h *HostFS) Resolve(p string, flags enum.OpenFlag) (Result, bool) {
	guest, err := h.resolve(p, !flags.Has(enum.O_NOFOLLOW))
	if err != nil {
		return Failure(native.Errno(err)), true
	}
	fd, created, err := openHost(h.host(guest), native.OpenFlag(flags)|unix.O_CLOEXEC)
	if err != nil {
		if err == unix.ENOENT && !flags.Has(enum.O_CREAT) {
			return Result{}, false
		}
		return Failure(native.Errno(err)), true
	}
	res := Success(&hostFile{path: Clean(p), fd: fd}, flags)
	res.Created = created
	return res, true
}

// openHost opens name and reports whether O_CREAT made it. Without O_EXCL
// the create is tried exclusively first so an existing file is told apart.
func openHost(name string, oflags int) (fd int, created bool, err error) {
	if oflags&unix.O_CREAT == 0 {
		fd, err = unix.Open(name, oflags, 0)
		return fd, false, err
	}
	if oflags&unix.O_EXCL != 0 {
		fd, err = unix.Open(name, oflags, 0644)
		return fd, err == nil, err
	}
	fd, err = unix.Open(name, oflags|unix.O_EXCL, 0644)
	if err == unix.EEXIST {
		fd, err = unix.Open(name, oflags&^unix.O_CREAT, 0)
		return fd, false, err
	}
	return fd, err == nil, err
}

type hostFile struct {
	path string
	fd   int
}

func hostErr(err error) error {
	if err == nil {
		return nil
	}
	return native.Errno(err)
}

func (f *hostFile) Path() string {
	return f.path
}

func (f *hostFile) Read(p []byte) (int, error) {
	if f.fd < 0 {
		return 0, enum.EBADF
	}
	n, err := unix.Read(f.fd, p)
	if err == nil && n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return n, hostErr(err)
}

func (f *hostFile) Write(p []byte) (int, error) {
	if f.fd < 0 {
		return 0, enum.EBADF
	}
	n, err := unix.Write(f.fd, p)
	return n, hostErr(err)
}

func (f *hostFile) Close() error {
	if f.fd < 0 {
		return enum.EBADF
	}
	err := unix.Close(f.fd)
	f.fd = -1
	return hostErr(err)
}

func (f *hostFile) Listxattr(buf []byte, options int) (int, error) {
	if options&^xattrOptions != 0 {
		return -1, enum.EINVAL
	}
	if f.fd < 0 {
		return -1, enum.EBADF
	}
	n, err := unix.Flistxattr(f.fd, buf)
	if err != nil {
		return -1, hostErr(err)
	}
	return n, nil
}

func (f *hostFile) Chmod(mode uint32) error {
	if f.fd < 0 {
		return enum.EBADF
	}
	return hostErr(unix.Fchmod(f.fd, mode&07777))
}

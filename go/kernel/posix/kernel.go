package posix

import (
	"path"

	"github.com/sirupsen/logrus"

	co "github.com/lunixbochs/darwincorn/go/kernel/common"
	"github.com/lunixbochs/darwincorn/go/native"
	"github.com/lunixbochs/darwincorn/go/native/enum"
	"github.com/lunixbochs/darwincorn/go/vfs"
)

// PosixKernel implements file syscalls against a vfs.Resolver.
type PosixKernel struct {
	*co.KernelBase
	VFS   vfs.Resolver
	Cwd   string
	Files *FileTable
}

// NewKernel builds a kernel on base, which may be shared with other kernels
// of the same guest. A nil base gets a fresh one.
func NewKernel(base *co.KernelBase, fs vfs.Resolver) *PosixKernel {
	if base == nil {
		base = co.NewKernelBase(nil)
	}
	k := &PosixKernel{
		KernelBase: base,
		VFS:        fs,
		Cwd:        "/",
		Files:      NewFileTable(),
	}
	registerUnpack(k)
	return k
}

// fail reports e to the guest and returns the -1 every failing call returns.
func (k *PosixKernel) fail(e enum.Errno) int {
	if err := k.U.SetErrno(e); err != nil {
		k.Log.WithError(err).Error("could not store errno")
	}
	return -1
}

// failErr is fail for an error from a capability. Errors that carry no
// errno are EIO.
func (k *PosixKernel) failErr(log logrus.FieldLogger, op string, err error) int {
	e := native.Errno(err)
	log.WithError(err).WithField("errno", e).Info(op + " failed")
	return k.fail(e)
}

// abs joins a relative guest path to the working directory.
func (k *PosixKernel) abs(p string) string {
	if path.IsAbs(p) {
		return p
	}
	return path.Join(k.Cwd, p)
}

// at joins p to the directory open as dirfd, for the *at syscalls.
func (k *PosixKernel) at(dirfd co.Fd, p string) (string, error) {
	if path.IsAbs(p) {
		return p, nil
	}
	if dirfd == enum.AT_FDCWD {
		return k.abs(p), nil
	}
	f, ok := k.Files.Get(dirfd)
	if !ok {
		return "", enum.EBADF
	}
	return path.Join(f.Path, p), nil
}

func (k *PosixKernel) resolve(p string, flags enum.OpenFlag) vfs.Result {
	if k.VFS == nil {
		return vfs.Failure(enum.ENOENT)
	}
	return vfs.Resolve(k.VFS, k.abs(p), flags)
}

package native

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/lunixbochs/darwincorn/go/native/enum"
)

var errnoMap = map[unix.Errno]enum.Errno{
	unix.EPERM:        enum.EPERM,
	unix.ENOENT:       enum.ENOENT,
	unix.EIO:          enum.EIO,
	unix.EBADF:        enum.EBADF,
	unix.ENOMEM:       enum.ENOMEM,
	unix.EACCES:       enum.EACCES,
	unix.EFAULT:       enum.EFAULT,
	unix.EBUSY:        enum.EBUSY,
	unix.EEXIST:       enum.EEXIST,
	unix.EXDEV:        enum.EXDEV,
	unix.ENOTDIR:      enum.ENOTDIR,
	unix.EISDIR:       enum.EISDIR,
	unix.EINVAL:       enum.EINVAL,
	unix.ENFILE:       enum.ENFILE,
	unix.EMFILE:       enum.EMFILE,
	unix.EFBIG:        enum.EFBIG,
	unix.ENOSPC:       enum.ENOSPC,
	unix.EROFS:        enum.EROFS,
	unix.ERANGE:       enum.ERANGE,
	unix.EAGAIN:       enum.EAGAIN,
	unix.ENOTSUP:      enum.ENOTSUP,
	unix.ELOOP:        enum.ELOOP,
	unix.ENAMETOOLONG: enum.ENAMETOOLONG,
	unix.ENOTEMPTY:    enum.ENOTEMPTY,
	unix.ENOSYS:       enum.ENOSYS,
}

// Errno converts a host error into the Darwin errno the guest expects.
// Errors that already carry a guest errno pass through. Anything else is EIO.
func Errno(err error) enum.Errno {
	if err == nil {
		return 0
	}
	var guest enum.Errno
	if errors.As(err, &guest) {
		return guest
	}
	var host unix.Errno
	if errors.As(err, &host) {
		if e, ok := errnoMap[host]; ok {
			return e
		}
		// linux reports a missing xattr as ENODATA
		if host == unix.ENODATA {
			return enum.ENOATTR
		}
		return enum.EIO
	}
	if os.IsNotExist(err) {
		return enum.ENOENT
	}
	if os.IsPermission(err) {
		return enum.EACCES
	}
	return enum.EIO
}

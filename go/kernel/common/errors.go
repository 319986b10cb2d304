package common

import (
	"github.com/pkg/errors"

	"github.com/lunixbochs/darwincorn/go/native/enum"
)

var UnknownSyscall = errors.New("unknown syscall")

// ArgErrno picks the errno for an argument that could not be decoded. A
// guest pointer that cannot be read is EFAULT unless the reader said otherwise.
func ArgErrno(err error) enum.Errno {
	var e enum.Errno
	if errors.As(err, &e) {
		return e
	}
	return enum.EFAULT
}

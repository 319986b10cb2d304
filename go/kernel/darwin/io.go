package darwin

import (
	co "github.com/lunixbochs/darwincorn/go/kernel/common"
	"github.com/lunixbochs/darwincorn/go/native/enum"
)

// The _nocancel variants skip the pthread cancellation point. A guest with
// one thread has nothing to cancel, so they are the plain calls.

func (k *DarwinKernel) OpenNocancel(path string, flags enum.OpenFlag, mode int) int {
	return k.PosixKernel.Open(path, flags, mode)
}

func (k *DarwinKernel) ReadNocancel(fd co.Fd, buf co.Obuf, size co.Len) int {
	return k.PosixKernel.Read(fd, buf, size)
}

func (k *DarwinKernel) WriteNocancel(fd co.Fd, buf co.Buf, size co.Len) int {
	return k.PosixKernel.Write(fd, buf, size)
}

func (k *DarwinKernel) CloseNocancel(fd co.Fd) int {
	return k.PosixKernel.Close(fd)
}

package posix

import (
	"github.com/sirupsen/logrus"

	co "github.com/lunixbochs/darwincorn/go/kernel/common"
	"github.com/lunixbochs/darwincorn/go/native/enum"
)

// Access collapses every mode to "exists and is readable".
func (k *PosixKernel) Access(path string, amode int) int {
	k.Entry().WithFields(logrus.Fields{"path": path, "mode": amode}).Debug("access")
	return k.faccessat(path)
}

func (k *PosixKernel) Faccessat(dirfd co.Fd, path string, amode int, flag int) int {
	full, err := k.at(dirfd, path)
	if err != nil {
		return k.fail(enum.EBADF)
	}
	k.Entry().WithFields(logrus.Fields{"fd": dirfd, "path": path, "mode": amode, "flag": flag}).Debug("faccessat")
	return k.faccessat(full)
}

// faccessat succeeds when path resolves for reading. A path the filesystem
// has no opinion about is ENOENT.
func (k *PosixKernel) faccessat(path string) int {
	res := k.resolve(path, enum.O_RDONLY)
	if !res.OK() {
		k.Entry().WithFields(logrus.Fields{"path": path, "errno": res.Errno}).Info("access failed")
		return k.fail(res.Errno)
	}
	res.File.Close()
	return 0
}

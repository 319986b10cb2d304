package posix

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	co "github.com/lunixbochs/darwincorn/go/kernel/common"
	"github.com/lunixbochs/darwincorn/go/native/enum"
	"github.com/lunixbochs/darwincorn/go/vfs"
)

// largest listxattr buffer handed to a capability
const maxXattrList = 1 << 20

func (k *PosixKernel) Chmod(path string, mode int) int {
	mode &= 0xffff
	log := k.Entry().WithFields(logrus.Fields{"path": path, "mode": fmt.Sprintf("%#o", mode)})
	res := k.resolve(path, enum.O_RDONLY)
	if !res.OK() {
		log.WithField("errno", res.Errno).Info("chmod: no such path")
		return k.fail(enum.ENOENT)
	}
	defer res.File.Close()
	return k.chmod(log, res.File, mode)
}

func (k *PosixKernel) Fchmod(fd co.Fd, mode int) int {
	mode &= 0xffff
	f, ok := k.Files.Get(fd)
	if !ok {
		return k.fail(enum.EBADF)
	}
	log := k.Entry().WithFields(logrus.Fields{"fd": fd, "mode": fmt.Sprintf("%#o", mode)})
	return k.chmod(log, f.IO, mode)
}

func (k *PosixKernel) chmod(log logrus.FieldLogger, f vfs.FileIO, mode int) int {
	if err := f.Chmod(uint32(mode)); err != nil {
		return k.failErr(log, "chmod", err)
	}
	log.Debug("chmod")
	return 0
}

func (k *PosixKernel) Listxattr(path string, namebuf co.Ptr, size co.Len, options int) int {
	log := k.Entry().WithFields(logrus.Fields{
		"path":    path,
		"namebuf": fmt.Sprintf("%#x", uint64(namebuf)),
		"size":    size,
		"options": options,
	})
	res := k.resolve(path, enum.O_RDONLY)
	if !res.OK() {
		log.WithField("errno", res.Errno).Info("listxattr: no such path")
		return k.fail(enum.ENOENT)
	}
	defer res.File.Close()
	return k.listxattr(log, res.File, namebuf, size, options)
}

func (k *PosixKernel) Flistxattr(fd co.Fd, namebuf co.Ptr, size co.Len, options int) int {
	f, ok := k.Files.Get(fd)
	if !ok {
		return k.fail(enum.EBADF)
	}
	log := k.Entry().WithFields(logrus.Fields{
		"fd":      fd,
		"namebuf": fmt.Sprintf("%#x", uint64(namebuf)),
		"size":    size,
		"options": options,
	})
	return k.listxattr(log, f.IO, namebuf, size, options)
}

// listxattr hands the capability a host buffer standing in for the guest's
// and copies what it wrote back out. A null namebuf or zero size is a size
// query and gets a nil buffer.
func (k *PosixKernel) listxattr(log logrus.FieldLogger, f vfs.FileIO, namebuf co.Ptr, size co.Len, options int) int {
	var buf []byte
	if namebuf != 0 && size > 0 {
		if size > maxXattrList {
			size = maxXattrList
		}
		buf = make([]byte, size)
	}
	n, err := f.Listxattr(buf, options)
	if err == nil && n < 0 {
		err = errors.New("capability failed without an errno")
	}
	if err != nil {
		return k.failErr(log, "listxattr", err)
	}
	if buf != nil && n > 0 {
		if err := k.U.MemWrite(uint64(namebuf), buf[:n]); err != nil {
			log.WithError(err).Info("listxattr: namebuf not writable")
			return k.fail(enum.EFAULT)
		}
	}
	log.WithField("ret", n).Debug("listxattr")
	return n
}

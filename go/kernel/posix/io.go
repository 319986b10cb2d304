package posix

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	co "github.com/lunixbochs/darwincorn/go/kernel/common"
	"github.com/lunixbochs/darwincorn/go/native/enum"
)

// largest single read or write buffered on the host
const maxIO = 1 << 24

func (k *PosixKernel) Open(path string, flags enum.OpenFlag, mode int) int {
	log := k.Entry().WithFields(logrus.Fields{
		"path":   path,
		"oflags": flags,
		"mode":   fmt.Sprintf("%#o", mode),
	})
	res := k.resolve(path, flags)
	if !res.OK() {
		log.WithField("errno", res.Errno).Info("open failed")
		return k.fail(res.Errno)
	}
	if res.Created {
		if err := res.File.Chmod(uint32(mode) & 07777); err != nil {
			res.File.Close()
			return k.failErr(log, "open: chmod new file", err)
		}
	}
	fd := k.Files.Add(&File{
		Path:  res.File.Path(),
		Flags: flags,
		Mode:  mode,
		IO:    res.File,
	})
	log.WithField("fd", fd).Debug("open")
	return int(fd)
}

func (k *PosixKernel) Close(fd co.Fd) int {
	f, ok := k.Files.Remove(fd)
	if !ok {
		return k.fail(enum.EBADF)
	}
	if err := f.IO.Close(); err != nil {
		return k.failErr(k.Entry().WithField("fd", fd), "close", err)
	}
	return 0
}

func (k *PosixKernel) Read(fd co.Fd, buf co.Obuf, size co.Len) int {
	f, ok := k.Files.Get(fd)
	if !ok {
		return k.fail(enum.EBADF)
	}
	if size > maxIO {
		size = maxIO
	}
	tmp := make([]byte, size)
	n, err := f.IO.Read(tmp)
	if err != nil && err != io.EOF {
		return k.failErr(k.Entry().WithField("fd", fd), "read", err)
	}
	if n > 0 {
		if err := buf.Write(tmp[:n]); err != nil {
			return k.fail(enum.EFAULT)
		}
	}
	return n
}

func (k *PosixKernel) Write(fd co.Fd, buf co.Buf, size co.Len) int {
	f, ok := k.Files.Get(fd)
	if !ok {
		return k.fail(enum.EBADF)
	}
	if size > maxIO {
		size = maxIO
	}
	tmp, err := buf.Read(uint64(size))
	if err != nil {
		return k.fail(enum.EFAULT)
	}
	n, err := f.IO.Write(tmp)
	if err != nil {
		return k.failErr(k.Entry().WithField("fd", fd), "write", err)
	}
	return n
}

// Package enum holds Darwin guest ABI values. These are the numbers a guest
// binary was compiled against, not the host's.
package enum

import (
	"fmt"
	"strings"
)

type OpenFlag int

const (
	O_RDONLY    OpenFlag = 0x0
	O_WRONLY    OpenFlag = 0x1
	O_RDWR      OpenFlag = 0x2
	O_ACCMODE   OpenFlag = 0x3
	O_NONBLOCK  OpenFlag = 0x4
	O_APPEND    OpenFlag = 0x8
	O_SHLOCK    OpenFlag = 0x10
	O_EXLOCK    OpenFlag = 0x20
	O_ASYNC     OpenFlag = 0x40
	O_SYNC      OpenFlag = 0x80
	O_NOFOLLOW  OpenFlag = 0x100
	O_CREAT     OpenFlag = 0x200
	O_TRUNC     OpenFlag = 0x400
	O_EXCL      OpenFlag = 0x800
	O_EVTONLY   OpenFlag = 0x8000
	O_NOCTTY    OpenFlag = 0x20000
	O_DIRECTORY OpenFlag = 0x100000
	O_SYMLINK   OpenFlag = 0x200000
	O_DSYNC     OpenFlag = 0x400000
	O_CLOEXEC   OpenFlag = 0x1000000
)

var openFlagNames = []struct {
	flag OpenFlag
	name string
}{
	{O_NONBLOCK, "O_NONBLOCK"},
	{O_APPEND, "O_APPEND"},
	{O_SHLOCK, "O_SHLOCK"},
	{O_EXLOCK, "O_EXLOCK"},
	{O_ASYNC, "O_ASYNC"},
	{O_SYNC, "O_SYNC"},
	{O_NOFOLLOW, "O_NOFOLLOW"},
	{O_CREAT, "O_CREAT"},
	{O_TRUNC, "O_TRUNC"},
	{O_EXCL, "O_EXCL"},
	{O_EVTONLY, "O_EVTONLY"},
	{O_NOCTTY, "O_NOCTTY"},
	{O_DIRECTORY, "O_DIRECTORY"},
	{O_SYMLINK, "O_SYMLINK"},
	{O_DSYNC, "O_DSYNC"},
	{O_CLOEXEC, "O_CLOEXEC"},
}

// Mask of every bit the Darwin kernel defines for open(2).
const O_VALID OpenFlag = O_ACCMODE | O_NONBLOCK | O_APPEND | O_SHLOCK | O_EXLOCK | O_ASYNC |
	O_SYNC | O_NOFOLLOW | O_CREAT | O_TRUNC | O_EXCL | O_EVTONLY | O_NOCTTY |
	O_DIRECTORY | O_SYMLINK | O_DSYNC | O_CLOEXEC

func (f OpenFlag) Access() OpenFlag {
	return f & O_ACCMODE
}

func (f OpenFlag) Readable() bool {
	return f.Access() == O_RDONLY || f.Access() == O_RDWR
}

func (f OpenFlag) Writable() bool {
	return f.Access() == O_WRONLY || f.Access() == O_RDWR
}

func (f OpenFlag) Has(flag OpenFlag) bool {
	return f&flag == flag
}

func (f OpenFlag) String() string {
	var out []string
	switch f.Access() {
	case O_RDONLY:
		out = append(out, "O_RDONLY")
	case O_WRONLY:
		out = append(out, "O_WRONLY")
	case O_RDWR:
		out = append(out, "O_RDWR")
	default:
		out = append(out, fmt.Sprintf("O_ACCMODE(%d)", int(f.Access())))
	}
	for _, v := range openFlagNames {
		if f&v.flag != 0 {
			out = append(out, v.name)
		}
	}
	if extra := f &^ O_VALID; extra != 0 {
		out = append(out, fmt.Sprintf("%#x", int(extra)))
	}
	return strings.Join(out, "|")
}

// Errno is a Darwin errno value. It doubles as a Go error so filesystem
// layers can return it directly.
type Errno int32

const (
	EPERM        Errno = 1
	ENOENT       Errno = 2
	EIO          Errno = 5
	EBADF        Errno = 9
	ENOMEM       Errno = 12
	EACCES       Errno = 13
	EFAULT       Errno = 14
	EBUSY        Errno = 16
	EEXIST       Errno = 17
	EXDEV        Errno = 18
	ENOTDIR      Errno = 20
	EISDIR       Errno = 21
	EINVAL       Errno = 22
	ENFILE       Errno = 23
	EMFILE       Errno = 24
	EFBIG        Errno = 27
	ENOSPC       Errno = 28
	EROFS        Errno = 30
	ERANGE       Errno = 34
	EAGAIN       Errno = 35
	ENOTSUP      Errno = 45
	ELOOP        Errno = 62
	ENAMETOOLONG Errno = 63
	ENOTEMPTY    Errno = 66
	ENOSYS       Errno = 78
	ENOATTR      Errno = 93
)

var errnoNames = map[Errno]string{
	EPERM:        "EPERM",
	ENOENT:       "ENOENT",
	EIO:          "EIO",
	EBADF:        "EBADF",
	ENOMEM:       "ENOMEM",
	EACCES:       "EACCES",
	EFAULT:       "EFAULT",
	EBUSY:        "EBUSY",
	EEXIST:       "EEXIST",
	EXDEV:        "EXDEV",
	ENOTDIR:      "ENOTDIR",
	EISDIR:       "EISDIR",
	EINVAL:       "EINVAL",
	ENFILE:       "ENFILE",
	EMFILE:       "EMFILE",
	EFBIG:        "EFBIG",
	ENOSPC:       "ENOSPC",
	EROFS:        "EROFS",
	ERANGE:       "ERANGE",
	EAGAIN:       "EAGAIN",
	ENOTSUP:      "ENOTSUP",
	ELOOP:        "ELOOP",
	ENAMETOOLONG: "ENAMETOOLONG",
	ENOTEMPTY:    "ENOTEMPTY",
	ENOSYS:       "ENOSYS",
	ENOATTR:      "ENOATTR",
}

func (e Errno) Error() string {
	if name, ok := errnoNames[e]; ok {
		return name
	}
	return fmt.Sprintf("errno %d", int32(e))
}

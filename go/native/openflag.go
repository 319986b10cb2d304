package native

import (
	"golang.org/x/sys/unix"

	"github.com/lunixbochs/darwincorn/go/native/enum"
)

// Darwin open(2) bits and their host equivalents. Darwin-only bits with no
// host meaning (O_EVTONLY, O_SYMLINK, O_SHLOCK, O_EXLOCK) are dropped.
var openFlagMap = []struct {
	guest enum.OpenFlag
	host  int
}{
	{enum.O_NONBLOCK, unix.O_NONBLOCK},
	{enum.O_APPEND, unix.O_APPEND},
	{enum.O_SYNC, unix.O_SYNC},
	{enum.O_NOFOLLOW, unix.O_NOFOLLOW},
	{enum.O_CREAT, unix.O_CREAT},
	{enum.O_TRUNC, unix.O_TRUNC},
	{enum.O_EXCL, unix.O_EXCL},
	{enum.O_NOCTTY, unix.O_NOCTTY},
	{enum.O_DIRECTORY, unix.O_DIRECTORY},
	{enum.O_DSYNC, unix.O_DSYNC},
	{enum.O_CLOEXEC, unix.O_CLOEXEC},
}

// OpenFlag translates guest open flags to the host's values.
func OpenFlag(flags enum.OpenFlag) int {
	var out int
	switch flags.Access() {
	case enum.O_WRONLY:
		out = unix.O_WRONLY
	case enum.O_RDWR:
		out = unix.O_RDWR
	default:
		out = unix.O_RDONLY
	}
	for _, v := range openFlagMap {
		if flags&v.guest != 0 {
			out |= v.host
		}
	}
	return out
}

// AccessMode returns the access(2) mode needed to honor flags on the host.
func AccessMode(flags enum.OpenFlag) uint32 {
	var mode uint32
	if flags.Readable() {
		mode |= unix.R_OK
	}
	if flags.Writable() {
		mode |= unix.W_OK
	}
	return mode
}

package native

import (
	"os"
	"testing"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/lunixbochs/darwincorn/go/native/enum"
)

func TestErrno(t *testing.T) {
	table := []struct {
		err  error
		want enum.Errno
	}{
		{nil, 0},
		{unix.ENOENT, enum.ENOENT},
		{unix.EACCES, enum.EACCES},
		{unix.ENOTSUP, enum.ENOTSUP},
		{&os.PathError{Op: "open", Path: "/x", Err: unix.ENOTDIR}, enum.ENOTDIR},
		{errors.Wrap(enum.ERANGE, "listxattr"), enum.ERANGE},
		{errors.New("something else"), enum.EIO},
	}
	for _, v := range table {
		if got := Errno(v.err); got != v.want {
			t.Errorf("Errno(%v) = %v, want %v", v.err, got, v.want)
		}
	}
}

func TestOpenFlag(t *testing.T) {
	if got := OpenFlag(enum.O_RDONLY); got != unix.O_RDONLY {
		t.Errorf("O_RDONLY -> %#x", got)
	}
	got := OpenFlag(enum.O_RDWR | enum.O_CREAT | enum.O_EVTONLY)
	if want := unix.O_RDWR | unix.O_CREAT; got != want {
		t.Errorf("O_RDWR|O_CREAT|O_EVTONLY -> %#x, want %#x", got, want)
	}
	if mode := AccessMode(enum.O_RDWR); mode != unix.R_OK|unix.W_OK {
		t.Errorf("AccessMode(O_RDWR) = %d", mode)
	}
}

package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/subcommands"
	"github.com/pkg/errors"

	"github.com/lunixbochs/darwincorn/go/kernel/darwin"
	"github.com/lunixbochs/darwincorn/go/native/enum"
	"github.com/lunixbochs/darwincorn/go/vfs"
)

// Access implements subcommands.Command for "access".
type Access struct {
	mode string
}

func (*Access) Name() string     { return "access" }
func (*Access) Synopsis() string { return "check a guest path with access(2)" }
func (*Access) Usage() string    { return "access [-mode rwx] <path>\n" }

func (a *Access) SetFlags(f *flag.FlagSet) {
	f.StringVar(&a.mode, "mode", "", "any of r, w, x (empty checks existence)")
}

func parseAmode(s string) (uint64, error) {
	var amode uint64 = enum.F_OK
	for _, c := range strings.ToLower(s) {
		switch c {
		case 'r':
			amode |= enum.R_OK
		case 'w':
			amode |= enum.W_OK
		case 'x':
			amode |= enum.X_OK
		default:
			return 0, errors.Errorf("bad access mode %q", s)
		}
	}
	return amode, nil
}

func (a *Access) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	g, status := setup(f, 1)
	if g == nil {
		return status
	}
	amode, err := parseAmode(a.mode)
	if err != nil {
		PrintError(err)
		return subcommands.ExitUsageError
	}
	path, err := g.CString(f.Arg(0))
	if err != nil {
		PrintError(err)
		return subcommands.ExitFailure
	}
	ret, err := g.Call(darwin.SYS_access, path, amode)
	if err != nil {
		PrintError(err)
		return subcommands.ExitFailure
	}
	return g.Result("access", ret)
}

// Chmod implements subcommands.Command for "chmod".
type Chmod struct{}

func (*Chmod) Name() string             { return "chmod" }
func (*Chmod) Synopsis() string         { return "change a guest file's mode with chmod(2)" }
func (*Chmod) Usage() string            { return "chmod <octal mode> <path>\n" }
func (*Chmod) SetFlags(f *flag.FlagSet) {}

func (*Chmod) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	g, status := setup(f, 2)
	if g == nil {
		return status
	}
	mode, err := strconv.ParseUint(f.Arg(0), 8, 16)
	if err != nil {
		PrintError(errors.Wrap(err, "mode"))
		return subcommands.ExitUsageError
	}
	path, err := g.CString(f.Arg(1))
	if err != nil {
		PrintError(err)
		return subcommands.ExitFailure
	}
	ret, err := g.Call(darwin.SYS_chmod, path, mode)
	if err != nil {
		PrintError(err)
		return subcommands.ExitFailure
	}
	return g.Result("chmod", ret)
}

// Listxattr implements subcommands.Command for "listxattr".
type Listxattr struct {
	nofollow bool
}

func (*Listxattr) Name() string     { return "listxattr" }
func (*Listxattr) Synopsis() string { return "list a guest file's extended attribute names" }
func (*Listxattr) Usage() string    { return "listxattr [-nofollow] <path>\n" }

func (l *Listxattr) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&l.nofollow, "nofollow", false, "pass XATTR_NOFOLLOW")
}

func (l *Listxattr) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	g, status := setup(f, 1)
	if g == nil {
		return status
	}
	var options uint64
	if l.nofollow {
		options = enum.XATTR_NOFOLLOW
	}
	names, err := l.list(g, f.Arg(0), options)
	if err != nil {
		PrintError(err)
		return subcommands.ExitFailure
	}
	if names == nil {
		return g.Result("listxattr", -1)
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return subcommands.ExitSuccess
}

// list asks for the size first, then for the names, like xattr(1) does.
// A nil result means the call failed and the guest errno says why.
func (l *Listxattr) list(g *Guest, p string, options uint64) ([]string, error) {
	path, err := g.CString(p)
	if err != nil {
		return nil, err
	}
	size, err := g.Call(darwin.SYS_listxattr, path, 0, 0, options)
	if err != nil || size < 0 {
		return nil, err
	}
	if size == 0 {
		return []string{}, nil
	}
	buf, err := g.Malloc(uint64(size), "namebuf")
	if err != nil {
		return nil, err
	}
	n, err := g.Call(darwin.SYS_listxattr, path, buf, uint64(size), options)
	if err != nil || n < 0 {
		return nil, err
	}
	data, err := g.MemRead(buf, uint64(n))
	if err != nil {
		return nil, err
	}
	return vfs.SplitXattrs(data), nil
}

// Cat implements subcommands.Command for "cat".
type Cat struct{}

func (*Cat) Name() string             { return "cat" }
func (*Cat) Synopsis() string         { return "copy a guest file to the guest's stdout" }
func (*Cat) Usage() string            { return "cat <path>\n" }
func (*Cat) SetFlags(f *flag.FlagSet) {}

const catBuf = 0x1000

func (*Cat) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	g, status := setup(f, 1)
	if g == nil {
		return status
	}
	if err := cat(g, f.Arg(0)); err != nil {
		PrintError(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func cat(g *Guest, p string) error {
	path, err := g.CString(p)
	if err != nil {
		return err
	}
	fd, err := g.Call(darwin.SYS_open_nocancel, path, uint64(enum.O_RDONLY), 0)
	if err != nil {
		return err
	}
	if fd < 0 {
		return errors.Wrap(g.Errno(), p)
	}
	defer g.Call(darwin.SYS_close_nocancel, uint64(fd))
	buf, err := g.Malloc(catBuf, "cat")
	if err != nil {
		return err
	}
	for {
		n, err := g.Call(darwin.SYS_read_nocancel, uint64(fd), buf, catBuf)
		if err != nil {
			return err
		}
		if n < 0 {
			return errors.Wrap(g.Errno(), "read")
		}
		if n == 0 {
			return nil
		}
		if w, err := g.Call(darwin.SYS_write_nocancel, 1, buf, uint64(n)); err != nil {
			return err
		} else if w < 0 {
			return errors.Wrap(g.Errno(), "write")
		}
	}
}

// Manifest implements subcommands.Command for "manifest".
type Manifest struct{}

func (*Manifest) Name() string             { return "manifest" }
func (*Manifest) Synopsis() string         { return "print the in-memory filesystem as a YAML manifest" }
func (*Manifest) Usage() string            { return "manifest\n" }
func (*Manifest) SetFlags(f *flag.FlagSet) {}

func (*Manifest) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	g, status := setup(f, 0)
	if g == nil {
		return status
	}
	if err := g.MemFS.Dump(os.Stdout); err != nil {
		PrintError(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

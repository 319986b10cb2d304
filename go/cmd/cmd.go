// Package cmd is the darwincorn command line. Each subcommand builds a
// guest from the shared flags and drives it through real trap calls.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/pkg/errors"

	darwincorn "github.com/lunixbochs/darwincorn/go"
	"github.com/lunixbochs/darwincorn/go/arch"
	"github.com/lunixbochs/darwincorn/go/kernel/darwin"
	"github.com/lunixbochs/darwincorn/go/kernel/mach"
	"github.com/lunixbochs/darwincorn/go/models"
	"github.com/lunixbochs/darwincorn/go/vfs"
)

// Flags shared by every subcommand.
type Flags struct {
	Config   string
	Arch     string
	Root     string
	Manifest string
	Verbose  bool
	Strace   bool
}

var global Flags

func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.Config, "config", "", "config file (default: config.toml in the user config dir)")
	fs.StringVar(&f.Arch, "arch", "arm64", "guest architecture: "+strings.Join(arch.Names(), ", "))
	fs.StringVar(&f.Root, "root", "", "host directory exposed to the guest as /")
	fs.StringVar(&f.Manifest, "manifest", "", "YAML manifest of in-memory files")
	fs.BoolVar(&f.Verbose, "v", false, "verbose output")
	fs.BoolVar(&f.Strace, "strace", false, "trace syscalls")
}

// LoadConfig reads the config file and applies flag overrides.
func (f *Flags) LoadConfig() (*models.Config, error) {
	var c *models.Config
	var err error
	if f.Config != "" {
		c, err = models.LoadConfig(f.Config)
	} else {
		c, err = models.FindConfig()
	}
	if err != nil {
		return nil, err
	}
	if f.Root != "" {
		c.Root = f.Root
	}
	if f.Manifest != "" {
		c.Manifest = f.Manifest
	}
	c.Verbose = c.Verbose || f.Verbose
	c.TraceSys = c.TraceSys || f.Strace
	return c, nil
}

const STACK_SIZE = 0x10000

// Guest is a task wired to a Darwin kernel, ready for trap calls.
type Guest struct {
	*darwincorn.Task
	Kernel *darwin.DarwinKernel
	MemFS  *vfs.MemFS
}

// NewGuest builds the filesystem and kernel described by c. In-memory
// files shadow the host root.
func NewGuest(c *models.Config, archName string) (*Guest, error) {
	log, err := c.Logger(os.Stderr)
	if err != nil {
		return nil, err
	}
	a, o, cpu, err := arch.GetArch(archName, "darwin")
	if err != nil {
		return nil, err
	}
	mem := vfs.NewMemFS()
	if c.Manifest != "" {
		if err := applyManifest(mem, c.Manifest); err != nil {
			return nil, err
		}
	}
	fs := vfs.NewOverlay(mem)
	if c.Root != "" {
		host, err := vfs.NewHostFS(c.Root)
		if err != nil {
			return nil, err
		}
		fs.Add(host)
	}
	stats, err := mach.NewStaticStats(c.VM)
	if err != nil {
		return nil, errors.Wrap(err, "[vm]")
	}
	task := darwincorn.NewTask(cpu, a, o, a.Order, c, log)
	k := darwin.NewKernel(task, fs, stats, log)
	k.Files.SetStdio(os.Stdin, os.Stdout, os.Stderr)
	task.AddKernel(k)
	errno, err := task.Malloc(darwincorn.PAGE_SIZE, "errno")
	if err != nil {
		return nil, err
	}
	task.ErrnoAddr = errno
	stack, err := task.Malloc(STACK_SIZE, "stack")
	if err != nil {
		return nil, err
	}
	if err := task.RegWrite(a.SP, stack+STACK_SIZE-darwincorn.PAGE_SIZE); err != nil {
		return nil, err
	}
	return &Guest{Task: task, Kernel: k, MemFS: mem}, nil
}

func applyManifest(fs *vfs.MemFS, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening manifest")
	}
	defer f.Close()
	m, err := vfs.LoadManifest(f)
	if err != nil {
		return errors.Wrapf(err, "loading manifest %s", path)
	}
	return m.Apply(fs)
}

// CString copies s into fresh guest memory with a NUL terminator.
func (g *Guest) CString(s string) (uint64, error) {
	addr, err := g.Malloc(uint64(len(s)+1), "string")
	if err != nil {
		return 0, err
	}
	return addr, g.MemWrite(addr, append([]byte(s), 0))
}

// Call runs trap num through the architecture's svc convention.
func (g *Guest) Call(num int, args ...uint64) (int64, error) {
	return arch.Call(g, num, args...)
}

// Result prints a trap's return the way a shell tool would: the value, and
// the errno name when it failed.
func (g *Guest) Result(name string, ret int64) subcommands.ExitStatus {
	if ret == -1 {
		fmt.Printf("%s: -1 %v\n", name, g.Errno())
		return subcommands.ExitFailure
	}
	fmt.Printf("%s: %d\n", name, ret)
	return subcommands.ExitSuccess
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// PrintError prints err and its innermost stack trace, if it carries one.
func PrintError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	var st stackTracer
	for e := err; e != nil; {
		if s, ok := e.(stackTracer); ok {
			st = s
		}
		c, ok := e.(interface{ Cause() error })
		if !ok {
			break
		}
		e = c.Cause()
	}
	if st == nil || !global.Verbose {
		return
	}
	for _, f := range st.StackTrace() {
		fmt.Fprintf(os.Stderr, "  %+v\n", f)
	}
}

// setup is what every Execute starts with.
func setup(f *flag.FlagSet, nargs int) (*Guest, subcommands.ExitStatus) {
	if f.NArg() != nargs {
		f.Usage()
		return nil, subcommands.ExitUsageError
	}
	c, err := global.LoadConfig()
	if err != nil {
		PrintError(err)
		return nil, subcommands.ExitFailure
	}
	g, err := NewGuest(c, global.Arch)
	if err != nil {
		PrintError(err)
		return nil, subcommands.ExitFailure
	}
	return g, subcommands.ExitSuccess
}

// Main registers every subcommand and runs the one named on the command line.
func Main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(&Access{}, "files")
	subcommands.Register(&Chmod{}, "files")
	subcommands.Register(&Listxattr{}, "files")
	subcommands.Register(&Cat{}, "files")
	subcommands.Register(&Manifest{}, "files")
	subcommands.Register(&HostStats{}, "mach")

	global.Register(flag.CommandLine)
	flag.Parse()
	os.Exit(int(subcommands.Execute(context.Background())))
}

// Package darwin assembles the kernel a Darwin guest sees: BSD file calls
// from posix and Mach traps from mach, sharing one argument decoder and one
// view of the guest.
package darwin

import (
	"github.com/sirupsen/logrus"

	co "github.com/lunixbochs/darwincorn/go/kernel/common"
	"github.com/lunixbochs/darwincorn/go/kernel/mach"
	"github.com/lunixbochs/darwincorn/go/kernel/posix"
	"github.com/lunixbochs/darwincorn/go/models"
	"github.com/lunixbochs/darwincorn/go/vfs"
)

type DarwinKernel struct {
	*co.KernelBase
	*posix.PosixKernel
	*mach.MachKernel
}

// NewKernel builds the kernel for guest u. fs answers every path lookup and
// stats backs host_statistics; a nil stats reports mach.DefaultStats.
func NewKernel(u models.Usercorn, fs vfs.Resolver, stats mach.VMStatsProvider, log logrus.FieldLogger) *DarwinKernel {
	if log == nil && u != nil {
		log = u.Log()
	}
	base := co.NewKernelBase(log)
	base.U = u
	return &DarwinKernel{
		KernelBase:  base,
		PosixKernel: posix.NewKernel(base, fs),
		MachKernel:  mach.NewKernel(base, stats),
	}
}

package mach

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	co "github.com/lunixbochs/darwincorn/go/kernel/common"
)

// port names are handed out like the kernel's: index in the upper bits,
// generation in the low byte
const (
	firstPort = 0x103
	portStep  = 0x100
)

type ports struct {
	sync.Mutex
	next  uint32
	named map[string]uint32
}

func (p *ports) alloc() uint32 {
	p.Lock()
	defer p.Unlock()
	return p.allocLocked()
}

func (p *ports) allocLocked() uint32 {
	if p.next == 0 {
		p.next = firstPort
	}
	port := p.next
	p.next += portStep
	return port
}

// get returns the port for a kernel object, the same name on every call.
func (p *ports) get(name string) uint32 {
	p.Lock()
	defer p.Unlock()
	if p.named == nil {
		p.named = make(map[string]uint32)
	}
	port, ok := p.named[name]
	if !ok {
		port = p.allocLocked()
		p.named[name] = port
	}
	return port
}

type MachKernel struct {
	*co.KernelBase
	Host  *Host
	ports ports
}

// NewKernel builds a Mach kernel on base, which may be shared. A nil stats
// provider reports DefaultStats.
func NewKernel(base *co.KernelBase, stats VMStatsProvider) *MachKernel {
	if base == nil {
		base = co.NewKernelBase(nil)
	}
	if stats == nil {
		stats = DefaultStats
	}
	return &MachKernel{
		KernelBase: base,
		Host:       &Host{Stats: stats, Log: base.Log},
	}
}

func (k *MachKernel) MachReplyPort() uint32 {
	return k.ports.alloc()
}

func (k *MachKernel) ThreadSelfTrap() uint32 {
	return k.ports.get("thread")
}

func (k *MachKernel) TaskSelfTrap() uint32 {
	return k.ports.get("task")
}

func (k *MachKernel) HostSelfTrap() uint32 {
	return k.ports.get("host")
}

// dispatch routes a request by msgh_id and leaves a reply in msg.
func (k *MachKernel) dispatch(msg *Msg) error {
	switch msg.Header.Id {
	case HOST_STATISTICS:
		handled, err := k.Host.Statistics(msg)
		if err != nil {
			return err
		}
		if !handled {
			return msg.ErrorReply(KERN_INVALID_ARGUMENT)
		}
		return nil
	default:
		return msg.ErrorReply(MIG_BAD_ID)
	}
}

func (k *MachKernel) MachMsgTrap(msg co.Ptr, option uint32, sendSize, rcvSize uint32, rcvName, timeout, notify uint32) int32 {
	log := k.Entry().WithFields(logrus.Fields{
		"msg":       uint64(msg),
		"option":    option,
		"send_size": sendSize,
		"rcv_size":  rcvSize,
	})
	if option&MACH_SEND_MSG == 0 {
		// nothing will ever arrive on a port nobody sent to
		log.Debug("mach_msg: receive only")
		return MACH_RCV_TIMED_OUT
	}
	buf, err := k.U.MemRead(uint64(msg), uint64(sendSize))
	if err != nil {
		log.WithError(err).Info("mach_msg: unreadable message")
		return MACH_SEND_INVALID_DATA
	}
	m, err := ParseMsg(buf, k.U.ByteOrder())
	if err == nil {
		log = log.WithField("id", m.Header.Id)
		err = k.dispatch(m)
	}
	if err != nil {
		if errors.Cause(err) == ErrMalformed {
			log.WithError(err).Error("mach_msg: malformed message")
			return MACH_SEND_MSG_TOO_SMALL
		}
		log.WithError(err).Error("mach_msg failed")
		return MACH_SEND_INVALID_DATA
	}
	if option&MACH_RCV_MSG == 0 {
		return MACH_MSG_SUCCESS
	}
	if m.Header.Size > rcvSize {
		log.WithField("reply_size", m.Header.Size).Info("mach_msg: reply too large")
		return MACH_RCV_TOO_LARGE
	}
	if err := k.U.MemWrite(uint64(msg), m.Reply()); err != nil {
		log.WithError(err).Info("mach_msg: reply not writable")
		return MACH_RCV_INVALID_DATA
	}
	log.WithField("reply_id", m.Header.Id).Debug("mach_msg")
	return MACH_MSG_SUCCESS
}

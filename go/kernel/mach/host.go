package mach

import (
	"io"
	"reflect"
	"sort"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// msgh_id of host_statistics in the mach_host subsystem
const HOST_STATISTICS = 219

// host_statistics flavors
const (
	HOST_LOAD_INFO     = 1
	HOST_VM_INFO       = 2
	HOST_CPU_LOAD_INFO = 3
	HOST_VM_INFO64     = 4
)

type HostStatisticsRequest struct {
	NDR    NDR    `struc:"[8]byte"`
	Flavor int32  `struc:"int32"`
	OutCnt uint32 `struc:"uint32"`
}

// VMStatistics is struct vm_statistics, the HOST_VM_INFO payload.
type VMStatistics struct {
	FreeCount        uint32 `struc:"uint32" toml:"free_count"`
	ActiveCount      uint32 `struc:"uint32" toml:"active_count"`
	InactiveCount    uint32 `struc:"uint32" toml:"inactive_count"`
	WireCount        uint32 `struc:"uint32" toml:"wire_count"`
	ZeroFillCount    uint32 `struc:"uint32" toml:"zero_fill_count"`
	Reactivations    uint32 `struc:"uint32" toml:"reactivations"`
	Pageins          uint32 `struc:"uint32" toml:"pageins"`
	Pageouts         uint32 `struc:"uint32" toml:"pageouts"`
	Faults           uint32 `struc:"uint32" toml:"faults"`
	CowFaults        uint32 `struc:"uint32" toml:"cow_faults"`
	Lookups          uint32 `struc:"uint32" toml:"lookups"`
	Hits             uint32 `struc:"uint32" toml:"hits"`
	PurgeableCount   uint32 `struc:"uint32" toml:"purgeable_count"`
	Purges           uint32 `struc:"uint32" toml:"purges"`
	SpeculativeCount uint32 `struc:"uint32" toml:"speculative_count"`
}

type HostStatisticsReply struct {
	NDR     NDR          `struc:"[8]byte"`
	RetCode int32        `struc:"int32"`
	OutCnt  uint32       `struc:"uint32"`
	Stats   VMStatistics
}

// VMStatsProvider supplies the numbers host_statistics reports.
type VMStatsProvider interface {
	VMStatistics() VMStatistics
}

// StaticStats reports the same numbers every time.
type StaticStats VMStatistics

func (s StaticStats) VMStatistics() VMStatistics {
	return VMStatistics(s)
}

// DefaultStats looks like a lightly loaded device with 16K pages.
var DefaultStats = StaticStats{
	FreeCount:        0x4a3c,
	ActiveCount:      0x3b21,
	InactiveCount:    0x3a0e,
	WireCount:        0x1f40,
	ZeroFillCount:    0x2d5b7a,
	Reactivations:    0x1c2,
	Pageins:          0x9e3,
	Pageouts:         0,
	Faults:           0x5f1c2a,
	CowFaults:        0x1b3f0,
	Lookups:          0x3c1,
	Hits:             0x1e7,
	PurgeableCount:   0x210,
	Purges:           0x12,
	SpeculativeCount: 0x6a1,
}

// StatsFieldNames lists the names NewStaticStats accepts.
func StatsFieldNames() []string {
	typ := reflect.TypeOf(VMStatistics{})
	names := make([]string, typ.NumField())
	for i := range names {
		names[i] = typ.Field(i).Tag.Get("toml")
	}
	sort.Strings(names)
	return names
}

// NewStaticStats is DefaultStats with fields replaced by overrides, keyed by
// their vm_statistics names.
func NewStaticStats(overrides map[string]uint32) (StaticStats, error) {
	stats := DefaultStats
	val := reflect.ValueOf(&stats).Elem()
	typ := val.Type()
	fields := make(map[string]int, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		fields[typ.Field(i).Tag.Get("toml")] = i
	}
	for name, v := range overrides {
		i, ok := fields[name]
		if !ok {
			return stats, errors.Errorf("unknown vm statistic %q", name)
		}
		val.Field(i).SetUint(uint64(v))
	}
	return stats, nil
}

// Host answers mach_host requests.
type Host struct {
	Stats VMStatsProvider
	Log   logrus.FieldLogger
}

var discardLog = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()

func (h *Host) logger() logrus.FieldLogger {
	if h.Log == nil {
		return discardLog
	}
	return h.Log
}

// Statistics builds the host_statistics reply over msg. It returns false,
// leaving msg untouched, for any flavor but HOST_VM_INFO. A body too short
// to hold a request is ErrMalformed.
func (h *Host) Statistics(msg *Msg) (bool, error) {
	var req HostStatisticsRequest
	if err := msg.UnpackBody(&req); err != nil {
		return false, errors.Wrap(err, "host_statistics")
	}
	log := h.logger().WithFields(logrus.Fields{"flavor": req.Flavor, "outCnt": req.OutCnt})
	if req.Flavor != HOST_VM_INFO {
		log.Debug("host_statistics: unhandled flavor")
		return false, nil
	}
	stats := h.Stats
	if stats == nil {
		stats = DefaultStats
	}
	reply := HostStatisticsReply{NDR: req.NDR, Stats: stats.VMStatistics()}
	size, err := struc.Sizeof(&reply.Stats)
	if err != nil {
		return false, errors.Wrap(err, "struc.Sizeof() failed")
	}
	replySize, err := struc.Sizeof(&reply)
	if err != nil {
		return false, errors.Wrap(err, "struc.Sizeof() failed")
	}
	msg.Header.Reply(replySize)
	if err := msg.PackHeader(); err != nil {
		return false, err
	}
	reply.RetCode = KERN_SUCCESS
	reply.OutCnt = uint32(size / 4)
	if err := msg.PackBody(&reply); err != nil {
		return false, err
	}
	log.WithField("reply", msg.Header.Id).Debug("host_statistics HOST_VM_INFO")
	return true, nil
}

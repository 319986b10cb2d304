package mach

import (
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHostStatisticsRoundTrip(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		req, err := HostStatisticsMsg(0x203, 0x303, HOST_VM_INFO, order)
		if err != nil {
			t.Fatal(err)
		}
		if len(req) != 40 {
			t.Fatalf("request is %d bytes", len(req))
		}
		m, err := ParseMsg(req, order)
		if err != nil {
			t.Fatal(err)
		}
		stats := StaticStats{FreeCount: 1, Hits: 2, SpeculativeCount: 3}
		host := &Host{Stats: stats}
		if ok, err := host.Statistics(m); !ok || err != nil {
			t.Fatalf("Statistics: %v %v", ok, err)
		}
		reply, err := ParseHostStatisticsReply(m.Reply(), order)
		if err != nil {
			t.Fatal(err)
		}
		if reply.OutCnt != 15 || reply.NDR != NDRRecord {
			t.Fatalf("reply %+v", reply)
		}
		if diff := cmp.Diff(stats.VMStatistics(), reply.Stats); diff != "" {
			t.Fatalf("stats (-want +got):\n%s", diff)
		}
	}
}

func TestHostStatisticsReplyError(t *testing.T) {
	req, _ := HostStatisticsMsg(0x203, 0x303, HOST_LOAD_INFO, binary.LittleEndian)
	m, _ := ParseMsg(req, binary.LittleEndian)
	if err := m.ErrorReply(KERN_INVALID_ARGUMENT); err != nil {
		t.Fatal(err)
	}
	if _, err := ParseHostStatisticsReply(m.Reply(), binary.LittleEndian); err == nil {
		t.Fatal("error reply decoded as stats")
	}
}

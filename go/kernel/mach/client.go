package mach

import (
	"encoding/binary"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

// NDR_record with int_rep set to little endian, as libSystem sends it.
var NDRRecord = NDR{0, 0, 0, 0, 1, 0, 0, 0}

// send right to the remote port, make-send-once for the reply port
const requestBits = 0x1513

// HostStatisticsMsg builds the host_statistics request a guest sends to
// host with a reply port of reply.
func HostStatisticsMsg(host, reply uint32, flavor int32, order binary.ByteOrder) ([]byte, error) {
	req := HostStatisticsRequest{NDR: NDRRecord, Flavor: flavor, OutCnt: 15}
	size, err := struc.Sizeof(&req)
	if err != nil {
		return nil, errors.Wrap(err, "struc.Sizeof() failed")
	}
	m := &Msg{
		Header: &MsgHeader{
			Bits:       requestBits,
			Size:       uint32(HeaderSize + size),
			RemotePort: host,
			LocalPort:  reply,
			Id:         HOST_STATISTICS,
		},
		Order: order,
	}
	if err := m.PackHeader(); err != nil {
		return nil, err
	}
	if err := m.PackBody(&req); err != nil {
		return nil, err
	}
	return m.Buf, nil
}

// ParseHostStatisticsReply decodes a host_statistics reply. A reply with a
// failing RetCode is an error carrying the code.
func ParseHostStatisticsReply(buf []byte, order binary.ByteOrder) (*HostStatisticsReply, error) {
	m, err := ParseMsg(buf, order)
	if err != nil {
		return nil, err
	}
	if m.Header.Id != HOST_STATISTICS+100 {
		return nil, errors.Errorf("host_statistics: unexpected reply id %d", m.Header.Id)
	}
	if int(m.Header.Size) < m.Len {
		m.Len = int(m.Header.Size)
	}
	var mig migError
	if err := m.UnpackBody(&mig); err != nil {
		return nil, err
	}
	if mig.RetCode != KERN_SUCCESS {
		return nil, errors.Errorf("host_statistics: kern_return %d", mig.RetCode)
	}
	var reply HostStatisticsReply
	if err := m.UnpackBody(&reply); err != nil {
		return nil, err
	}
	return &reply, nil
}

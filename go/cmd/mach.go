package cmd

import (
	"context"
	"flag"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/google/subcommands"
	"github.com/pkg/errors"

	"github.com/lunixbochs/darwincorn/go/kernel/darwin"
	"github.com/lunixbochs/darwincorn/go/kernel/mach"
)

// HostStats implements subcommands.Command for "hoststats".
type HostStats struct{}

func (*HostStats) Name() string             { return "hoststats" }
func (*HostStats) Synopsis() string         { return "send host_statistics(HOST_VM_INFO) and print the reply" }
func (*HostStats) Usage() string            { return "hoststats\n" }
func (*HostStats) SetFlags(f *flag.FlagSet) {}

const msgBuf = 0x400

func (*HostStats) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	g, status := setup(f, 0)
	if g == nil {
		return status
	}
	stats, err := hostStatistics(g)
	if err != nil {
		PrintError(err)
		return subcommands.ExitFailure
	}
	if err := toml.NewEncoder(os.Stdout).Encode(stats); err != nil {
		PrintError(err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func hostStatistics(g *Guest) (*mach.VMStatistics, error) {
	host, err := g.Call(darwin.MACH_host_self)
	if err != nil {
		return nil, err
	}
	reply, err := g.Call(darwin.MACH_reply_port)
	if err != nil {
		return nil, err
	}
	order := g.ByteOrder()
	req, err := mach.HostStatisticsMsg(uint32(host), uint32(reply), mach.HOST_VM_INFO, order)
	if err != nil {
		return nil, err
	}
	buf, err := g.Malloc(msgBuf, "mach_msg")
	if err != nil {
		return nil, err
	}
	if err := g.MemWrite(buf, req); err != nil {
		return nil, err
	}
	ret, err := g.Call(darwin.MACH_msg, buf, mach.MACH_SEND_MSG|mach.MACH_RCV_MSG,
		uint64(len(req)), msgBuf, uint64(reply), 0, 0)
	if err != nil {
		return nil, err
	}
	if ret != mach.MACH_MSG_SUCCESS {
		return nil, errors.Errorf("mach_msg returned %#x", ret)
	}
	raw, err := g.MemRead(buf, msgBuf)
	if err != nil {
		return nil, err
	}
	r, err := mach.ParseHostStatisticsReply(raw, order)
	if err != nil {
		return nil, err
	}
	return &r.Stats, nil
}

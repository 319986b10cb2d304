package models

import (
	"github.com/lunixbochs/darwincorn/go/models/cpu"
)

// MemIO streams reads and writes through guest memory, advancing Addr.
type MemIO struct {
	Cpu  cpu.Cpu
	Addr uint64
}

func (m *MemIO) Read(p []byte) (int, error) {
	if err := m.Cpu.MemReadInto(p, m.Addr); err != nil {
		return 0, err
	}
	m.Addr += uint64(len(p))
	return len(p), nil
}

func (m *MemIO) Write(p []byte) (int, error) {
	if err := m.Cpu.MemWrite(m.Addr, p); err != nil {
		return 0, err
	}
	m.Addr += uint64(len(p))
	return len(p), nil
}

package arm64

import (
	"encoding/binary"

	"github.com/lunixbochs/darwincorn/go/models"
	"github.com/lunixbochs/darwincorn/go/models/cpu"
)

// Register numbers for the simulated register file.
const (
	X0 = iota
	X1
	X2
	X3
	X4
	X5
	X6
	X7
	X8
	X9
	X10
	X11
	X12
	X13
	X14
	X15
	X16
	X17
	X18
	X19
	X20
	X21
	X22
	X23
	X24
	X25
	X26
	X27
	X28
	FP
	LR
	SP
	PC
	NZCV
)

var Arch = &models.Arch{
	Name:  "arm64",
	Bits:  64,
	Order: binary.LittleEndian,
	PC:    PC,
	SP:    SP,
	LR:    LR,
	Regs: map[string]int{
		"x0":   X0,
		"x1":   X1,
		"x2":   X2,
		"x3":   X3,
		"x4":   X4,
		"x5":   X5,
		"x6":   X6,
		"x7":   X7,
		"x8":   X8,
		"x9":   X9,
		"x10":  X10,
		"x11":  X11,
		"x12":  X12,
		"x13":  X13,
		"x14":  X14,
		"x15":  X15,
		"x16":  X16,
		"x17":  X17,
		"x18":  X18,
		"x19":  X19,
		"x20":  X20,
		"x21":  X21,
		"x22":  X22,
		"x23":  X23,
		"x24":  X24,
		"x25":  X25,
		"x26":  X26,
		"x27":  X27,
		"x28":  X28,
		"fp":   FP,
		"lr":   LR,
		"sp":   SP,
		"pc":   PC,
		"nzcv": NZCV,
	},
}

// NewCpu returns a register file and memory for an arm64 guest.
func NewCpu() cpu.Cpu {
	return cpu.NewSim(64, Arch.RegEnums())
}

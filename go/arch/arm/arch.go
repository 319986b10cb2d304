package arm

import (
	"encoding/binary"

	"github.com/lunixbochs/darwincorn/go/models"
	"github.com/lunixbochs/darwincorn/go/models/cpu"
)

const (
	R0 = iota
	R1
	R2
	R3
	R4
	R5
	R6
	R7
	R8
	R9
	R10
	R11
	R12
	SP
	LR
	PC
	CPSR
)

var Arch = &models.Arch{
	Name:  "arm",
	Bits:  32,
	Order: binary.LittleEndian,
	PC:    PC,
	SP:    SP,
	LR:    LR,
	Regs: map[string]int{
		"r0":   R0,
		"r1":   R1,
		"r2":   R2,
		"r3":   R3,
		"r4":   R4,
		"r5":   R5,
		"r6":   R6,
		"r7":   R7,
		"r8":   R8,
		"r9":   R9,
		"r10":  R10,
		"r11":  R11,
		"r12":  R12,
		"sp":   SP,
		"lr":   LR,
		"pc":   PC,
		"cpsr": CPSR,
	},
}

func NewCpu() cpu.Cpu {
	return cpu.NewSim(32, Arch.RegEnums())
}

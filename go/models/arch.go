package models

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/lunixbochs/fvbommel-util/sortorder"

	"github.com/lunixbochs/darwincorn/go/models/cpu"
)

type Reg struct {
	Enum int
	Name string
}

type RegVal struct {
	Reg
	Val uint64
}

func (r RegVal) String() string {
	return fmt.Sprintf("%s=%#x", r.Name, r.Val)
}

type regList []Reg

func (r regList) Len() int           { return len(r) }
func (r regList) Swap(i, j int)      { r[i], r[j] = r[j], r[i] }
func (r regList) Less(i, j int) bool { return sortorder.NaturalLess(r[i].Name, r[j].Name) }

type regMap map[string]int

func (r regMap) Items() regList {
	ret := make(regList, 0, len(r))
	for n, e := range r {
		ret = append(ret, Reg{e, n})
	}
	return ret
}

type Arch struct {
	Name  string
	Bits  int
	PC    int
	SP    int
	LR    int
	Order binary.ByteOrder
	OS    map[string]*OS
	Regs  regMap

	// sorted for RegDump
	regList regList
}

func (a *Arch) RegisterOS(os *OS) {
	if a.OS == nil {
		a.OS = make(map[string]*OS)
	}
	if _, ok := a.OS[os.Name]; ok {
		panic("Duplicate OS " + os.Name)
	}
	a.OS[os.Name] = os
}

// RegEnums lists every register enum, for building a register file.
func (a *Arch) RegEnums() []int {
	enums := make([]int, 0, len(a.Regs))
	for _, e := range a.Regs {
		enums = append(enums, e)
	}
	sort.Ints(enums)
	return enums
}

func (a *Arch) RegDump(c cpu.Cpu) ([]RegVal, error) {
	if a.regList == nil {
		rl := a.Regs.Items()
		sort.Sort(rl)
		a.regList = rl
	}
	ret := make([]RegVal, len(a.regList))
	for i, r := range a.regList {
		val, err := c.RegRead(r.Enum)
		if err != nil {
			return nil, err
		}
		ret[i] = RegVal{r, val}
	}
	return ret, nil
}

type OS struct {
	Name      string
	Syscall   func(Usercorn)
	Interrupt func(Usercorn, uint32)
}

func (o *OS) String() string {
	return fmt.Sprintf("<OS %s>", o.Name)
}

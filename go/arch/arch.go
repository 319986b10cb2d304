package arch

import (
	"github.com/pkg/errors"

	"github.com/lunixbochs/darwincorn/go/arch/arm"
	"github.com/lunixbochs/darwincorn/go/arch/arm64"
	"github.com/lunixbochs/darwincorn/go/models"
	"github.com/lunixbochs/darwincorn/go/models/cpu"
)

type entry struct {
	arch   *models.Arch
	newCpu func() cpu.Cpu
}

var archMap = map[string]entry{
	"arm":   {arm.Arch, arm.NewCpu},
	"arm64": {arm64.Arch, arm64.NewCpu},
}

// GetArch returns the named architecture, its OS hooks and a fresh CPU.
func GetArch(name, os string) (*models.Arch, *models.OS, cpu.Cpu, error) {
	e, ok := archMap[name]
	if !ok {
		return nil, nil, nil, errors.Errorf("Arch '%s' not found.", name)
	}
	o, ok := e.arch.OS[os]
	if !ok {
		return nil, nil, nil, errors.Errorf("OS '%s' not found for arch '%s'.", os, name)
	}
	return e.arch, o, e.newCpu(), nil
}

// Names lists the supported architectures.
func Names() []string {
	return []string{"arm", "arm64"}
}

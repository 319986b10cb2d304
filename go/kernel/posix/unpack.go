package posix

import (
	"github.com/lunixbochs/argjoy"

	"github.com/lunixbochs/darwincorn/go/native/enum"
)

// Unpack decodes register values into the enum types handlers take.
func Unpack(arg interface{}, vals []interface{}) error {
	reg, ok := vals[0].(uint64)
	if !ok {
		return argjoy.NoMatch
	}
	switch v := arg.(type) {
	case *enum.OpenFlag:
		// open(2) takes an int, the upper half of a 64-bit register is junk
		*v = enum.OpenFlag(uint32(reg))
	default:
		return argjoy.NoMatch
	}
	return nil
}

func registerUnpack(k *PosixKernel) {
	k.Argjoy.Register(Unpack)
}

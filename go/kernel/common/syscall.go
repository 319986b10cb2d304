package common

import (
	"reflect"

	"github.com/pkg/errors"
)

type Syscall struct {
	Name     string
	Kernel   *KernelBase
	Instance reflect.Value
	Method   reflect.Method
	In       []reflect.Type
	Out      []reflect.Type
	UintArr  bool
}

var uint64Type = reflect.TypeOf(uint64(0))

// Call converts raw register values to the handler's argument types and
// calls it. An error means the arguments could not be decoded (for example a
// string pointer into unmapped memory); the handler did not run.
func (sys Syscall) Call(args []uint64) (uint64, error) {
	extraArgs := 1
	if sys.UintArr {
		extraArgs += 1
	}
	if len(args) < len(sys.In) {
		return 0, errors.Errorf("not enough arguments to syscall '%s': wanted %d, got %d", sys.Name, len(sys.In), len(args))
	}
	in := make([]reflect.Value, len(sys.In)+extraArgs)
	in[0] = sys.Instance
	if sys.UintArr {
		in[1] = reflect.ValueOf(args)
	}
	converted, err := sys.Kernel.Argjoy.Convert(sys.In, false, args[:len(sys.In)])
	if err != nil {
		return 0, errors.Wrapf(err, "calling %s()", sys.Name)
	}
	copy(in[extraArgs:], converted)
	out := sys.Method.Func.Call(in)
	// return output if first return of function is representable as an int type
	if len(out) > 0 && out[0].Type().ConvertibleTo(uint64Type) {
		return out[0].Convert(uint64Type).Uint(), nil
	}
	return 0, nil
}

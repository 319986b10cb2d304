package common

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Repr quotes p for a trace line, cutting it at strsize bytes.
func Repr(p []byte, strsize int) string {
	if strsize > 0 && len(p) > strsize {
		return strconv.Quote(string(p[:strsize])) + "..."
	}
	return strconv.Quote(string(p))
}

func hex(a interface{}) string {
	tmp := fmt.Sprintf("0x%x", a)
	if strings.HasPrefix(tmp, "0x-") {
		tmp = "-0x" + tmp[3:]
	}
	return tmp
}

func (s Syscall) strsize() int {
	if c := s.Kernel.U.Config(); c != nil {
		return c.Strsize
	}
	return 0
}

func (s Syscall) traceArg(args ...interface{}) string {
	switch arg := args[0].(type) {
	case Obuf:
		return hex(arg.Addr)
	case Buf:
		if len(args) > 1 {
			if length, ok := args[1].(Len); ok {
				mem, _ := s.Kernel.U.MemRead(arg.Addr, uint64(length))
				return Repr(mem, s.strsize())
			}
		}
		return hex(arg.Addr)
	case Off:
		return hex(int64(arg))
	case Ptr:
		return hex(uint64(arg))
	case Fd:
		return fmt.Sprintf("%d", int32(arg))
	case string:
		return Repr([]byte(arg), s.strsize())
	case uint64:
		return hex(arg)
	case fmt.Stringer:
		return arg.String()
	default:
		return fmt.Sprintf("%v", arg)
	}
}

func (s Syscall) traceArgs(regs []uint64) string {
	if len(regs) < len(s.In) {
		return "<missing args>"
	}
	inRef, err := s.Kernel.Argjoy.Convert(s.In, false, regs[:len(s.In)])
	if err != nil {
		return err.Error()
	}
	in := make([]interface{}, len(inRef))
	for i, val := range inRef {
		in[i] = val.Interface()
	}
	ret := make([]string, len(in))
	for i := range in {
		ret[i] = s.traceArg(in[i:]...)
	}
	return strings.Join(ret, ", ")
}

func (s Syscall) Trace(regs []uint64) string {
	return fmt.Sprintf("%s(%s)", s.Name, s.traceArgs(regs))
}

func (s Syscall) TraceRet(args []uint64, ret uint64) string {
	var out []string
	for i, typ := range s.In {
		if typ == reflect.TypeOf(Obuf{}) && len(args) > i+1 {
			length := int64(ret)
			if uint64(length) <= args[i+1] && length > 0 {
				mem, _ := s.Kernel.U.MemRead(args[i], uint64(length))
				out = append(out, Repr(mem, s.strsize()))
			}
		}
	}
	if len(s.Out) > 0 {
		switch s.Out[0].Kind() {
		case reflect.Int, reflect.Int32, reflect.Int64:
			out = append(out, strconv.FormatInt(int64(ret), 10))
		default:
			out = append(out, s.traceArg(ret))
		}
	}
	if len(out) > 0 {
		return " = " + strings.Join(out, ", ")
	}
	return ""
}

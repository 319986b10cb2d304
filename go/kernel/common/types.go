package common

import (
	"github.com/lunixbochs/argjoy"
	"github.com/pkg/errors"

	"github.com/lunixbochs/darwincorn/go/models"
)

type (
	// Buf is a guest pointer to memory the handler reads.
	Buf struct {
		Addr uint64
		K    *KernelBase
	}
	// Obuf is a guest pointer to memory the handler writes.
	Obuf struct{ Buf }
	Len  uint64
	Off  int64
	Fd   int32
	Ptr  uint64
)

func NewBuf(k Kernel, addr uint64) Buf {
	return Buf{K: k.UsercornKernel(), Addr: addr}
}

func (b Buf) Struc() *models.StrucStream {
	return b.K.U.StrucAt(b.Addr)
}

func (b Buf) Pack(i interface{}) error {
	if b.K.Pack != nil {
		if err := b.K.Pack(b, i); err == nil {
			return nil
		} else if err != argjoy.NoMatch {
			return err
		}
	}
	return errors.Wrap(b.Struc().Pack(i), "struc.Pack() failed")
}

func (b Buf) Unpack(i interface{}) error {
	return errors.Wrap(b.Struc().Unpack(i), "struc.Unpack() failed")
}

func (b Buf) Sizeof(i interface{}) (int, error) {
	n, err := b.Struc().Sizeof(i)
	return n, errors.Wrap(err, "struc.Sizeof() failed")
}

// Read copies size bytes out of the guest.
func (b Buf) Read(size uint64) ([]byte, error) {
	p, err := b.K.U.MemRead(b.Addr, size)
	return p, errors.Wrap(err, "Buf.Read() failed")
}

// Write copies p into the guest.
func (b Buf) Write(p []byte) error {
	return errors.Wrap(b.K.U.MemWrite(b.Addr, p), "Buf.Write() failed")
}

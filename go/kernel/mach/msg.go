package mach

import (
	"bytes"
	"encoding/binary"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

const (
	MACH_MSGH_BITS_COMPLEX = 0x80000000

	MACH_SEND_MSG = 0x1
	MACH_RCV_MSG  = 0x2
)

// mach_msg return codes
const (
	MACH_MSG_SUCCESS        = 0
	MACH_SEND_INVALID_DATA  = 0x10000002
	MACH_SEND_MSG_TOO_SMALL = 0x10000008
	MACH_RCV_TIMED_OUT      = 0x10004003
	MACH_RCV_TOO_LARGE      = 0x10004004
	MACH_RCV_INVALID_DATA   = 0x10004008
)

// kern_return_t values
const (
	KERN_SUCCESS          = 0
	KERN_INVALID_ADDRESS  = 1
	KERN_NO_SPACE         = 3
	KERN_INVALID_ARGUMENT = 4
	MIG_BAD_ID            = -303
)

// ErrMalformed means a message body could not be decoded.
var ErrMalformed = errors.New("malformed mach message")

// MsgHeader is mach_msg_header_t.
type MsgHeader struct {
	Bits        uint32 `struc:"uint32"`
	Size        uint32 `struc:"uint32"`
	RemotePort  uint32 `struc:"uint32"`
	LocalPort   uint32 `struc:"uint32"`
	VoucherPort uint32 `struc:"uint32"`
	Id          int32  `struc:"int32"`
}

const HeaderSize = 24

// SetBits keeps the port disposition byte and sets or clears the complex bit.
func (h *MsgHeader) SetBits(complex bool) {
	h.Bits &= 0xff
	if complex {
		h.Bits |= MACH_MSGH_BITS_COMPLEX
	}
}

// Reply turns h into the header of the reply to it, for a reply body of
// bodySize bytes. Reply ids are request ids plus 100.
func (h *MsgHeader) Reply(bodySize int) {
	h.SetBits(false)
	h.Size = uint32(HeaderSize + bodySize)
	h.RemotePort = h.LocalPort
	h.LocalPort = 0
	h.Id += 100
}

// NDR record at the start of every MIG body
type NDR = [8]byte

// Msg is a message buffer with its decoded header. Replies are written over
// the request in place.
type Msg struct {
	Header *MsgHeader
	Buf    []byte
	// length of the request in Buf
	Len   int
	Order binary.ByteOrder
}

func ParseMsg(buf []byte, order binary.ByteOrder) (*Msg, error) {
	if len(buf) < HeaderSize {
		return nil, errors.Wrapf(ErrMalformed, "%d bytes is too short for a header", len(buf))
	}
	var h MsgHeader
	if err := struc.UnpackWithOrder(bytes.NewReader(buf), &h, order); err != nil {
		return nil, errors.Wrap(ErrMalformed, err.Error())
	}
	return &Msg{Header: &h, Buf: buf, Len: len(buf), Order: order}, nil
}

// Grow makes room for a reply of size bytes.
func (m *Msg) Grow(size int) {
	if size > len(m.Buf) {
		m.Buf = append(m.Buf, make([]byte, size-len(m.Buf))...)
	}
}

// UnpackBody decodes the request body into v.
func (m *Msg) UnpackBody(v interface{}) error {
	size, err := struc.Sizeof(v)
	if err != nil {
		return errors.Wrap(err, "struc.Sizeof() failed")
	}
	if HeaderSize+size > m.Len {
		return errors.Wrapf(ErrMalformed, "body is %d bytes, want %d", m.Len-HeaderSize, size)
	}
	if err := struc.UnpackWithOrder(bytes.NewReader(m.Buf[HeaderSize:m.Len]), v, m.Order); err != nil {
		return errors.Wrap(ErrMalformed, err.Error())
	}
	return nil
}

// PackHeader writes the header back over the start of Buf.
func (m *Msg) PackHeader() error {
	return m.packAt(0, m.Header)
}

// PackBody writes v over the body.
func (m *Msg) PackBody(v interface{}) error {
	return m.packAt(HeaderSize, v)
}

func (m *Msg) packAt(off int, v interface{}) error {
	var buf bytes.Buffer
	if err := struc.PackWithOrder(&buf, v, m.Order); err != nil {
		return errors.Wrap(err, "struc.Pack() failed")
	}
	m.Grow(off + buf.Len())
	copy(m.Buf[off:], buf.Bytes())
	return nil
}

// NDR returns the request's NDR record, zero if the body is too short.
func (m *Msg) NDR() NDR {
	var ndr NDR
	if m.Len >= HeaderSize+len(ndr) {
		copy(ndr[:], m.Buf[HeaderSize:])
	}
	return ndr
}

type migError struct {
	NDR     NDR   `struc:"[8]byte"`
	RetCode int32 `struc:"int32"`
}

// ErrorReply replaces the message with a MIG error reply carrying code.
func (m *Msg) ErrorReply(code int32) error {
	reply := migError{NDR: m.NDR(), RetCode: code}
	size, err := struc.Sizeof(&reply)
	if err != nil {
		return errors.Wrap(err, "struc.Sizeof() failed")
	}
	m.Header.Reply(size)
	if err := m.PackHeader(); err != nil {
		return err
	}
	return m.PackBody(&reply)
}

// Reply returns the reply bytes, the first Header.Size bytes of Buf.
func (m *Msg) Reply() []byte {
	m.Grow(int(m.Header.Size))
	return m.Buf[:m.Header.Size]
}

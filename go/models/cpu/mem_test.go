package cpu

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMemBounds(t *testing.T) {
	tests := []struct {
		bits       uint
		addr, size uint64
		ok         bool
	}{
		{8, 0x10, 0x10, true},
		{8, 0x0, 0x1000, false},
		{16, 0xf000, 0x1000, true},
		{16, 0xf000, 0x2000, false},
		{32, 0xfffff000, 0x1000, true},
		{32, 0xfffff000, 0x2000, false},
		{64, 0xfffffffffffff000, 0x1000, true},
		{64, 0xfffffffffffff000, 0x2000, false},
		{32, 0x1000, 0, false},
	}
	for _, test := range tests {
		mem := NewMem(test.bits)
		err := mem.MemMapProt(test.addr, test.size, PROT_READ)
		if (err == nil) != test.ok {
			t.Errorf("%d-bit map %#x+%#x: err = %v", test.bits, test.addr, test.size, err)
		}
	}
}

func TestMemReadWrite(t *testing.T) {
	mem := NewMem(32)
	mem.MemMapProt(0x1000, 0x1000, PROT_READ)
	mem.MemMapProt(0x2000, 0x1000, PROT_READ)
	// protections are not checked for guest accesses from handlers
	data := []byte("/usr/lib/libSystem.B.dylib")
	if err := mem.MemWrite(0x1ff0, data); err != nil {
		t.Fatal("write across mappings:", err)
	}
	if got, err := mem.MemRead(0x1ff0, uint64(len(data))); err != nil {
		t.Fatal(err)
	} else if !bytes.Equal(got, data) {
		t.Fatalf("read %q", got)
	}
	fault, _ := mem.MemWrite(0x2ffe, data).(*Fault)
	if diff := cmp.Diff(&Fault{Addr: 0x2ffe, Size: len(data), Write: true}, fault); diff != "" {
		t.Error(diff)
	}
	if _, err := mem.MemRead(0xff0, 0x20); err == nil {
		t.Error("read before a mapping succeeded")
	}
	// a failed write leaves memory alone
	if got, _ := mem.MemRead(0x2ffe, 2); !bytes.Equal(got, []byte{0, 0}) {
		t.Errorf("partial write: %x", got)
	}
	if err := mem.MemWrite(0x5000, nil); err != nil {
		t.Error("empty write:", err)
	}
}

func TestMemUnmap(t *testing.T) {
	mem := NewMem(64)
	mem.MemMapProt(0x1000, 0x3000, PROT_READ|PROT_WRITE)
	mem.MemWrite(0x1000, []byte{1})
	mem.MemWrite(0x3fff, []byte{2})
	if err := mem.MemUnmap(0x2000, 0x1000); err != nil {
		t.Fatal(err)
	}
	if _, err := mem.MemRead(0x2000, 1); err == nil {
		t.Error("read of unmapped hole succeeded")
	}
	// both sides of the hole keep their data
	if p, err := mem.MemRead(0x1000, 1); err != nil || p[0] != 1 {
		t.Errorf("left side: %v %v", p, err)
	}
	if p, err := mem.MemRead(0x3fff, 1); err != nil || p[0] != 2 {
		t.Errorf("right side: %v %v", p, err)
	}
	if err := mem.MemUnmap(0x2000, 0x1000); err == nil {
		t.Error("second unmap of the same range succeeded")
	}
	if err := mem.MemUnmap(0x1000, 0x3000); err == nil {
		t.Error("unmap across the hole succeeded")
	}
}

func TestMemRemap(t *testing.T) {
	mem := NewMem(32)
	mem.MemMapProt(0x1000, 0x2000, PROT_READ)
	mem.MemWrite(0x1800, []byte("old"))
	mem.MemWrite(0x2800, []byte("keep"))
	if err := mem.MemMapProt(0x1000, 0x1000, PROT_READ); err != nil {
		t.Fatal(err)
	}
	if p, _ := mem.MemRead(0x1800, 3); !bytes.Equal(p, []byte{0, 0, 0}) {
		t.Errorf("remap kept %q", p)
	}
	if p, _ := mem.MemRead(0x2800, 4); string(p) != "keep" {
		t.Errorf("remap clobbered neighbor: %q", p)
	}
	if _, err := mem.MemRead(0x1ffe, 4); err != nil {
		t.Error("read across the remap boundary:", err)
	}
}

func TestPagesFindRange(t *testing.T) {
	pages := Pages{
		{Addr: 0x1000, Size: 0x1000, Desc: "a"},
		{Addr: 0x2000, Size: 0x2000, Desc: "b"},
		{Addr: 0x8000, Size: 0x1000, Desc: "c"},
	}
	tests := []struct {
		addr, size uint64
		want       []string
	}{
		{0x0, 0x1000, nil},
		{0x0, 0x1001, []string{"a"}},
		{0x1fff, 0x2, []string{"a", "b"}},
		{0x4000, 0x4000, nil},
		{0x3fff, 0x10000, []string{"b", "c"}},
		{0x1000, 0, nil},
	}
	for _, test := range tests {
		var got []string
		for _, p := range pages.FindRange(test.addr, test.size) {
			got = append(got, p.Desc)
		}
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("%#x+%#x: %s", test.addr, test.size, diff)
		}
	}
}

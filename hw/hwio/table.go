// Package hwio implements a 16-bit memory-mapped bus on which memory areas,
// registers and devices are mapped.
package hwio

import "fmt"

// BankIO8 is implemented by anything mapped on a Table.
type BankIO8 interface {
	Read8(addr uint16) uint8
	// Peek8 reads without side effects (debugging/tracing).
	Peek8(addr uint16) uint8
	Write8(addr uint16, val uint8)
}

type RWFlags uint8

const (
	ReadWriteFlag RWFlags = 0
	ReadOnlyFlag  RWFlags = (1 << iota)
	WriteOnlyFlag
)

type mapping struct {
	io    BankIO8
	flags RWFlags
	name  string
}

// Table is a bus covering the whole 16-bit address space. Lookups are
// O(1): each address holds the index of the mapping it belongs to.
type Table struct {
	Name string

	// Unmapped, if set, serves accesses to unmapped addresses.
	Unmapped BankIO8

	maps []mapping // maps[0] is the unmapped entry
	idx  [0x10000]uint16
}

func NewTable(name string) *Table {
	t := &Table{Name: name}
	t.Reset()
	return t
}

// Reset unmaps everything.
func (t *Table) Reset() {
	t.maps = append(t.maps[:0], mapping{})
	clear(t.idx[:])
}

func (t *Table) insert(begin, end uint16, m mapping) {
	if end < begin {
		panic(fmt.Sprintf("hwio: %s: invalid range $%04X-$%04X", t.Name, begin, end))
	}
	for a := uint32(begin); a <= uint32(end); a++ {
		if i := t.idx[a]; i != 0 {
			panic(fmt.Sprintf("hwio: %s: mapping %q at $%04X overlaps %q", t.Name, m.name, a, t.maps[i].name))
		}
	}

	if len(t.maps) > 0xFFFF {
		panic(fmt.Sprintf("hwio: %s: too many mappings", t.Name))
	}
	t.maps = append(t.maps, m)
	n := uint16(len(t.maps) - 1)
	for a := uint32(begin); a <= uint32(end); a++ {
		t.idx[a] = n
	}
}

// MapMem maps a memory area at addr, for mem.VSize bytes.
func (t *Table) MapMem(addr uint16, mem *Mem) {
	if mem.VSize == 0 {
		mem.VSize = len(mem.Data)
	}
	var flags RWFlags
	if mem.Flags&MemFlag8ReadOnly != 0 {
		flags = ReadOnlyFlag
	}
	end := uint32(addr) + uint32(mem.VSize) - 1
	if end > 0xFFFF {
		panic(fmt.Sprintf("hwio: %s: memory %q overflows address space", t.Name, mem.Name))
	}
	t.insert(addr, uint16(end), mapping{io: mem.BankIO8(), flags: flags, name: mem.Name})
}

// MapMemorySlice maps buf between addr and end (inclusive), mirrored if the
// range is larger than the slice.
func (t *Table) MapMemorySlice(addr, end uint16, buf []uint8, readonly bool) {
	var flags MemFlags
	if readonly {
		flags |= MemFlag8ReadOnly
	}
	t.MapMem(addr, &Mem{
		Name:  fmt.Sprintf("slice@%04X", addr),
		Data:  buf,
		Flags: flags,
		VSize: int(end) - int(addr) + 1,
	})
}

func (t *Table) MapReg8(addr uint16, reg *Reg8) {
	t.insert(addr, addr, mapping{io: reg, flags: reg.Flags, name: reg.Name})
}

func (t *Table) MapDevice(addr uint16, dev *Device) {
	end := uint32(addr) + uint32(dev.Size) - 1
	if dev.Size == 0 || end > 0xFFFF {
		panic(fmt.Sprintf("hwio: %s: device %q has invalid size %d", t.Name, dev.Name, dev.Size))
	}
	t.insert(addr, uint16(end), mapping{io: dev, flags: dev.Flags, name: dev.Name})
}

// Unmap removes whatever is mapped between begin and end (inclusive).
func (t *Table) Unmap(begin, end uint16) {
	for a := uint32(begin); a <= uint32(end); a++ {
		t.idx[a] = 0
	}
}

// Probe reports whether addr is mapped and its access flags.
func (t *Table) Probe(addr uint16) (flags RWFlags, mapped bool) {
	i := t.idx[addr]
	return t.maps[i].flags, i != 0
}

// Read8 forwards the read to the mapping at addr. Unmapped addresses read
// from Unmapped, or 0.
func (t *Table) Read8(addr uint16) uint8 {
	m := &t.maps[t.idx[addr]]
	switch {
	case m.io != nil:
		if m.flags&WriteOnlyFlag != 0 {
			return 0
		}
		return m.io.Read8(addr)
	case t.Unmapped != nil:
		return t.Unmapped.Read8(addr)
	}
	return 0
}

func (t *Table) Peek8(addr uint16) uint8 {
	m := &t.maps[t.idx[addr]]
	switch {
	case m.io != nil:
		return m.io.Peek8(addr)
	case t.Unmapped != nil:
		return t.Unmapped.Peek8(addr)
	}
	return 0
}

// Write8 forwards the write to the mapping at addr. Writes to read-only or
// unmapped addresses are dropped (or go to Unmapped).
func (t *Table) Write8(addr uint16, val uint8) {
	m := &t.maps[t.idx[addr]]
	switch {
	case m.io != nil:
		if m.flags&ReadOnlyFlag == 0 {
			m.io.Write8(addr, val)
		}
	case t.Unmapped != nil:
		t.Unmapped.Write8(addr, val)
	}
}

// Read32 reads a little-endian 32-bit value.
func Read32(b BankIO8, addr uint16) uint32 {
	return uint32(b.Read8(addr)) |
		uint32(b.Read8(addr+1))<<8 |
		uint32(b.Read8(addr+2))<<16 |
		uint32(b.Read8(addr+3))<<24
}

// Peek32 is Read32 without side effects.
func Peek32(b BankIO8, addr uint16) uint32 {
	return uint32(b.Peek8(addr)) |
		uint32(b.Peek8(addr+1))<<8 |
		uint32(b.Peek8(addr+2))<<16 |
		uint32(b.Peek8(addr+3))<<24
}

// Write32 writes a little-endian 32-bit value.
func Write32(b BankIO8, addr uint16, val uint32) {
	b.Write8(addr, uint8(val))
	b.Write8(addr+1, uint8(val>>8))
	b.Write8(addr+2, uint8(val>>16))
	b.Write8(addr+3, uint8(val>>24))
}

package hwio

import "fmt"

// mem adapts a Mem to BankIO8. Addresses are masked so that the data is
// mirrored over the whole virtual size.
type mem struct {
	data []byte
	mask uint16
	wcb  func(uint16, uint8)
	ro   MemFlags
}

func newMem(buf []byte, wcb func(uint16, uint8), roflag MemFlags) *mem {
	if len(buf) == 0 || len(buf)&(len(buf)-1) != 0 || len(buf) > 0x10000 {
		panic(fmt.Sprintf("memory buffer size is not a power of 2: %d", len(buf)))
	}
	return &mem{
		data: buf,
		mask: uint16(len(buf) - 1),
		wcb:  wcb,
		ro:   roflag,
	}
}

func (m *mem) Read8(addr uint16) uint8 { return m.data[addr&m.mask] }
func (m *mem) Peek8(addr uint16) uint8 { return m.data[addr&m.mask] }

func (m *mem) Write8(addr uint16, val uint8) {
	if m.wcb != nil {
		m.wcb(addr, val)
		return
	}
	if m.ro == MemFlagReadWrite {
		m.data[addr&m.mask] = val
	}
}

type MemFlags int

const (
	MemFlagReadWrite MemFlags = 0
	MemFlag8ReadOnly MemFlags = (1 << iota) // read-only accesses
)

// Mem is a linear memory area that can be mapped into a Table.
type Mem struct {
	Name    string              // name of the memory area (for debugging)
	Data    []byte              // actual memory buffer, size must be a power of 2
	VSize   int                 // virtual size of the memory (can be bigger than physical size)
	Flags   MemFlags            // flags determining how the memory can be accessed
	WriteCb func(uint16, uint8) // optional write callback (if set, the callback is called instead of writing)
}

func (m *Mem) BankIO8() BankIO8 {
	return newMem(m.Data, m.WriteCb, m.Flags)
}

package hwio

// Device is a BankIO8 implementation that allows manual management of an entire
// range of memory. Callbacks receive the absolute bus address.
type Device struct {
	Name  string // name of the memory area (for debugging)
	Size  int    // size of the memory area
	Flags RWFlags

	ReadCb  func(addr uint16) uint8
	PeekCb  func(addr uint16) uint8
	WriteCb func(addr uint16, val uint8)
}

func (d *Device) Read8(addr uint16) uint8 {
	if d.Flags&WriteOnlyFlag != 0 || d.ReadCb == nil {
		return 0
	}
	return d.ReadCb(addr)
}

// Peek8 uses ReadCb when no PeekCb is set.
func (d *Device) Peek8(addr uint16) uint8 {
	switch {
	case d.PeekCb != nil:
		return d.PeekCb(addr)
	case d.ReadCb != nil && d.Flags&WriteOnlyFlag == 0:
		return d.ReadCb(addr)
	}
	return 0
}

func (d *Device) Write8(addr uint16, val uint8) {
	if d.Flags&ReadOnlyFlag != 0 || d.WriteCb == nil {
		return
	}
	d.WriteCb(addr, val)
}
